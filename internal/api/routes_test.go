package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"goal-tracker-backend/internal/auth"
	"goal-tracker-backend/internal/goals"
	"goal-tracker-backend/internal/logging"
	"goal-tracker-backend/internal/users"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	userSvc := users.NewService(users.NewMemoryRepository(), users.NewBcryptHasher(bcrypt.MinCost))
	tokens, err := auth.NewTokenService([]byte("scenario-secret"))
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(Deps{
		Users:  userSvc,
		Tokens: tokens,
		Goals:  goals.NewService(goals.NewMemoryRepository(), userSvc),
		Log:    logging.Discard(),
	}))
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) call(method, path, body string) (int, map[string]any) {
	c.t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, c.base+path, rdr)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	var out map[string]any
	if len(raw) > 0 {
		require.NoError(c.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestAliceScenario(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL}

	status, body := c.call(http.MethodPost, "/register", `{"username":"alice","email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["name"])

	status, body = c.call(http.MethodPost, "/login", `{"email":"a@x.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", body["message"])

	status, body = c.call(http.MethodPost, "/goals", `{"name":"Run","goalType":"distance","targetValue":10}`)
	assert.Equal(t, http.StatusUnauthorized, status, "goals need a token")
	assert.Equal(t, "Unauthorized", body["message"])

	c.token = token

	status, body = c.call(http.MethodPost, "/goals", `{"name":"Run","goalType":"distance","targetValue":10}`)
	require.Equal(t, http.StatusCreated, status)
	goal := body["goal"].(map[string]any)
	id := goal["id"].(string)
	assert.Equal(t, 0.0, goal["progress"].(map[string]any)["currentValue"])

	status, body = c.call(http.MethodPut, "/goals/"+id+"/progress", `{"currentValue":5}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 50.0, body["goal"].(map[string]any)["percentage"])

	status, body = c.call(http.MethodPut, "/goals/"+id+"/progress", `{"currentValue":12}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 100.0, body["goal"].(map[string]any)["percentage"])

	status, body = c.call(http.MethodGet, "/goals/"+id, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 12.0, body["progress"].(map[string]any)["currentValue"])

	status, _ = c.call(http.MethodDelete, "/goals/"+id, "")
	assert.Equal(t, http.StatusNoContent, status)

	status, body = c.call(http.MethodGet, "/goals/"+id, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Goal not found", body["message"])
}

func TestVerifyAndLogout(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL}

	_, body := c.call(http.MethodPost, "/register", `{"username":"bob","email":"bob@example.com","password":"hunter22"}`)
	c.token = body["token"].(string)

	status, body := c.call(http.MethodGet, "/verify", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "bob", body["username"])
	assert.Equal(t, "bob@example.com", body["email"])

	c.token = "garbage"
	status, body = c.call(http.MethodGet, "/verify", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid token", body["message"])

	status, body = c.call(http.MethodGet, "/logout", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Logout successful", body["message"])
}

func TestHealthAndCORS(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/goals", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.MethodPut, resp.Header.Get("Access-Control-Allow-Methods"))
}

func TestCORSPreflightMethods(t *testing.T) {
	srv := newTestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		req, err := http.NewRequest(http.MethodOptions, srv.URL+"/goals/1", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://app.example")
		req.Header.Set("Access-Control-Request-Method", method)
		req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode, method)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"), method)
		assert.Equal(t, method, resp.Header.Get("Access-Control-Allow-Methods"), method)
	}
}
