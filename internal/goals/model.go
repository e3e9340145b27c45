// Package goals is the per-user goal store.
package goals

import (
	"encoding/json"

	"goal-tracker-backend/internal/progress"
)

// Goal is one tracked target. ID is unique per owner only.
type Goal struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	GoalType    string            `json:"goalType"`
	TargetValue float64           `json:"targetValue"`
	StartDate   *string           `json:"startDate"`
	EndDate     *string           `json:"endDate"`
	Progress    progress.Progress `json:"progress"`
}

// Input holds the caller-supplied fields of a goal.
type Input struct {
	Name        string
	GoalType    string
	TargetValue float64
	StartDate   *string
	EndDate     *string
}

// MarshalJSON adds the derived percentage, null when the target makes it
// meaningless.
func (g Goal) MarshalJSON() ([]byte, error) {
	type plain Goal
	var pct *float64
	if p, ok := progress.Percentage(g.Progress.CurrentValue, g.TargetValue); ok {
		pct = &p
	}
	return json.Marshal(struct {
		plain
		Percentage *float64 `json:"percentage"`
	}{plain(g), pct})
}
