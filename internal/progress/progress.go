// Package progress turns raw progress input into stored values and
// derives the completion percentage shown for a goal.
package progress

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"goal-tracker-backend/internal/apperr"
)

const msgInvalidNumber = "Please enter a valid number."

// Progress is the progress record embedded in a goal.
type Progress struct {
	CurrentValue float64   `json:"currentValue"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// New returns a zeroed progress stamped with now.
func New(now time.Time) Progress {
	return Progress{CurrentValue: 0, UpdatedAt: now.UTC()}
}

// ParseValue accepts a JSON number or a JSON string holding a number.
// The result must be finite.
func ParseValue(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, apperr.Validation(msgInvalidNumber)
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, apperr.Validation(msgInvalidNumber)
		}
	} else {
		text = string(raw)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return 0, apperr.Validation(msgInvalidNumber)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperr.Validation(msgInvalidNumber)
	}
	return v, nil
}

// ApplyUpdate returns p with CurrentValue set to value and UpdatedAt set
// to now.
func ApplyUpdate(p Progress, value float64, now time.Time) (Progress, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return p, apperr.Validation(msgInvalidNumber)
	}
	p.CurrentValue = value
	p.UpdatedAt = now.UTC()
	return p, nil
}

// Percentage returns clamp(current/target*100, 0, 100). applicable is
// false when target is zero (or otherwise unusable); pct is then 0.
func Percentage(current, target float64) (pct float64, applicable bool) {
	if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return 0, false
	}
	if math.IsNaN(current) {
		return 0, true
	}

	pct = current / target * 100
	switch {
	case pct < 0:
		pct = 0
	case pct > 100:
		pct = 100
	}
	return pct, true
}
