package goals

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"goal-tracker-backend/internal/auth"
	"goal-tracker-backend/internal/httpx"
	"goal-tracker-backend/internal/progress"
)

// goalRequest keeps the fields loosely typed so a wrong JSON type gets the
// field's validation message rather than a decode error.
type goalRequest struct {
	Name        any `json:"name"`
	GoalType    any `json:"goalType"`
	TargetValue any `json:"targetValue"`
	StartDate   any `json:"startDate"`
	EndDate     any `json:"endDate"`
}

func (b goalRequest) input() Input {
	s := Input{}
	s.Name, _ = b.Name.(string)
	s.GoalType, _ = b.GoalType.(string)
	s.TargetValue, _ = b.TargetValue.(float64)
	if v, ok := b.StartDate.(string); ok {
		s.StartDate = &v
	}
	if v, ok := b.EndDate.(string); ok {
		s.EndDate = &v
	}
	return s
}

type goalResponse struct {
	Message string `json:"message"`
	Goal    *Goal  `json:"goal"`
}

func owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return id.ID, true
}

func ListGoalsHandler(svc *Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := owner(w, r)
		if !ok {
			return
		}

		list, err := svc.List(r.Context(), uid)
		if err != nil {
			httpx.WriteError(w, r, log, err, "Server error during goal retrieval")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, list)
	}
}

func CreateGoalHandler(svc *Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := owner(w, r)
		if !ok {
			return
		}

		var body goalRequest
		if err := httpx.DecodeJSON(w, r, &body); err != nil {
			httpx.WriteMessage(w, http.StatusBadRequest, "invalid json")
			return
		}

		g, err := svc.Create(r.Context(), uid, body.input())
		if err != nil {
			httpx.WriteError(w, r, log, err, "Server error during goal creation")
			return
		}

		log.InfoContext(r.Context(), "goal created", "user_id", uid, "goal_id", g.ID)
		httpx.WriteJSON(w, http.StatusCreated, goalResponse{Message: "Goal created successfully", Goal: g})
	}
}

func UpdateGoalHandler(svc *Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := owner(w, r)
		if !ok {
			return
		}

		var body goalRequest
		if err := httpx.DecodeJSON(w, r, &body); err != nil {
			httpx.WriteMessage(w, http.StatusBadRequest, "invalid json")
			return
		}

		g, err := svc.Update(r.Context(), uid, r.PathValue("goalId"), body.input())
		if err != nil {
			httpx.WriteError(w, r, log, err, "Server error during goal update")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, goalResponse{Message: "Goal updated successfully", Goal: g})
	}
}

func UpdateProgressHandler(svc *Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := owner(w, r)
		if !ok {
			return
		}

		var body struct {
			CurrentValue json.RawMessage `json:"currentValue"`
		}
		if err := httpx.DecodeJSON(w, r, &body); err != nil {
			httpx.WriteMessage(w, http.StatusBadRequest, "invalid json")
			return
		}

		value, err := progress.ParseValue(body.CurrentValue)
		if err != nil {
			httpx.WriteError(w, r, log, err, "Server error during progress update")
			return
		}

		g, err := svc.UpdateProgress(r.Context(), uid, r.PathValue("goalId"), value)
		if err != nil {
			httpx.WriteError(w, r, log, err, "Server error during progress update")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, goalResponse{Message: "Progress updated successfully", Goal: g})
	}
}

func DeleteGoalHandler(svc *Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := owner(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), uid, r.PathValue("goalId")); err != nil {
			httpx.WriteError(w, r, log, err, "Server error during goal deletion")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func GetGoalHandler(svc *Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := owner(w, r)
		if !ok {
			return
		}

		g, err := svc.Get(r.Context(), uid, r.PathValue("goalId"))
		if err != nil {
			httpx.WriteError(w, r, log, err, "Server error during goal retrieval")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, g)
	}
}
