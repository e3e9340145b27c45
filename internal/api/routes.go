// Package api assembles the HTTP routes.
package api

import (
	"log/slog"
	"net/http"

	"github.com/rs/cors"

	"goal-tracker-backend/internal/auth"
	"goal-tracker-backend/internal/goals"
	"goal-tracker-backend/internal/httpx"
	"goal-tracker-backend/internal/users"
)

type Deps struct {
	Users          *users.Service
	Tokens         *auth.TokenService
	Goals          *goals.Service
	AllowedOrigins []string
	Log            *slog.Logger
}

// NewRouter returns the full handler chain: recovery, access log, CORS,
// then the route table.
func NewRouter(d Deps) http.Handler {
	log := d.Log
	gate := auth.New(d.Tokens)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /register", auth.RegisterHandler(d.Users, d.Tokens, log))
	mux.HandleFunc("POST /login", auth.LoginHandler(d.Users, d.Tokens, log))
	mux.HandleFunc("GET /verify", auth.VerifyHandler(gate))
	mux.HandleFunc("GET /logout", auth.LogoutHandler())

	mux.HandleFunc("GET /goals", gate.Wrap(goals.ListGoalsHandler(d.Goals, log)))
	mux.HandleFunc("POST /goals", gate.Wrap(goals.CreateGoalHandler(d.Goals, log)))
	mux.HandleFunc("GET /goals/{goalId}", gate.Wrap(goals.GetGoalHandler(d.Goals, log)))
	mux.HandleFunc("PUT /goals/{goalId}", gate.Wrap(goals.UpdateGoalHandler(d.Goals, log)))
	mux.HandleFunc("DELETE /goals/{goalId}", gate.Wrap(goals.DeleteGoalHandler(d.Goals, log)))
	mux.HandleFunc("PUT /goals/{goalId}/progress", gate.Wrap(goals.UpdateProgressHandler(d.Goals, log)))

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	return httpx.Recover(log, httpx.AccessLog(log, c.Handler(mux)))
}
