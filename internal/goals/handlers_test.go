package goals

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goal-tracker-backend/internal/auth"
	"goal-tracker-backend/internal/logging"
)

type goalsEnv struct {
	mux *http.ServeMux
}

func newGoalsEnv(t *testing.T) *goalsEnv {
	t.Helper()
	svc := newTestService(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	log := logging.Discard()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /goals", ListGoalsHandler(svc, log))
	mux.HandleFunc("POST /goals", CreateGoalHandler(svc, log))
	mux.HandleFunc("GET /goals/{goalId}", GetGoalHandler(svc, log))
	mux.HandleFunc("PUT /goals/{goalId}", UpdateGoalHandler(svc, log))
	mux.HandleFunc("PUT /goals/{goalId}/progress", UpdateProgressHandler(svc, log))
	mux.HandleFunc("DELETE /goals/{goalId}", DeleteGoalHandler(svc, log))
	return &goalsEnv{mux: mux}
}

func (e *goalsEnv) do(method, path, body string, owner string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if owner != "" {
		req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{ID: owner, Username: "u", Email: "u@x.com"}))
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func TestGoalHandlers_CRUD(t *testing.T) {
	env := newGoalsEnv(t)

	rec := env.do(http.MethodPost, "/goals", `{"name":"Read","goalType":"books","targetValue":10,"startDate":"2026-01-01"}`, ownerA)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Message string         `json:"message"`
		Goal    map[string]any `json:"goal"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Goal created successfully", created.Message)
	id := created.Goal["id"].(string)
	assert.Equal(t, 0.0, created.Goal["percentage"])

	rec = env.do(http.MethodPut, "/goals/"+id+"/progress", `{"currentValue":"2.5"}`, ownerA)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"percentage":25`)

	rec = env.do(http.MethodPut, "/goals/"+id, `{"name":"Read more","goalType":"books","targetValue":5}`, ownerA)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Goal updated successfully"`)
	assert.Contains(t, rec.Body.String(), `"percentage":50`)

	rec = env.do(http.MethodGet, "/goals", "", ownerA)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Read more", list[0]["name"])

	rec = env.do(http.MethodDelete, "/goals/"+id, "", ownerA)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = env.do(http.MethodGet, "/goals/"+id, "", ownerA)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Goal not found"}`, rec.Body.String())
}

func TestGoalHandlers_Validation(t *testing.T) {
	env := newGoalsEnv(t)

	tests := []struct {
		body string
		msg  string
	}{
		{`{"name":"","goalType":"books","targetValue":10}`, msgNameRequired},
		{`{"name":42,"goalType":"books","targetValue":10}`, msgNameRequired},
		{`{"name":"Read","targetValue":10}`, msgTypeRequired},
		{`{"name":"Read","goalType":"books","targetValue":"10"}`, msgTargetRequired},
		{`{"name":"Read","goalType":"books","targetValue":0}`, msgTargetRequired},
		{`{"name":"Read"`, "invalid json"},
	}
	for _, tt := range tests {
		rec := env.do(http.MethodPost, "/goals", tt.body, ownerA)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tt.body)
		assert.JSONEq(t, `{"message":"`+tt.msg+`"}`, rec.Body.String(), tt.body)
	}
}

func TestGoalHandlers_BadProgressValue(t *testing.T) {
	env := newGoalsEnv(t)
	rec := env.do(http.MethodPost, "/goals", `{"name":"Read","goalType":"books","targetValue":10}`, ownerA)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Goal Goal `json:"goal"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	for _, body := range []string{`{"currentValue":"abc"}`, `{"currentValue":null}`, `{}`, `{"currentValue":true}`} {
		rec := env.do(http.MethodPut, "/goals/"+created.Goal.ID+"/progress", body, ownerA)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"message":"Please enter a valid number."}`, rec.Body.String(), body)
	}
}

func TestGoalHandlers_NoIdentity(t *testing.T) {
	rec := newGoalsEnv(t).do(http.MethodGet, "/goals", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGoalHandlers_UnknownOwner(t *testing.T) {
	rec := newGoalsEnv(t).do(http.MethodPost, "/goals", `{"name":"Read","goalType":"books","targetValue":10}`, "ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"User not found"}`, rec.Body.String())
}
