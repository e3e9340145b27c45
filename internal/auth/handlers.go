package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"goal-tracker-backend/internal/httpx"
	"goal-tracker-backend/internal/users"
)

type CredentialStore interface {
	Register(ctx context.Context, username, email, password string) (*users.Identity, error)
	Verify(ctx context.Context, email, password string) (*users.Identity, error)
}

type TokenIssuer interface {
	Issue(id Identity) (Token, error)
}

type userView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sessionResponse struct {
	User  userView `json:"user"`
	Token string   `json:"token"`
}

func newSession(u *users.Identity, tokens TokenIssuer) (sessionResponse, error) {
	tok, err := tokens.Issue(Identity{ID: u.ID, Username: u.Username, Email: u.Email})
	if err != nil {
		return sessionResponse{}, err
	}
	return sessionResponse{
		User:  userView{ID: u.ID, Name: u.Username, Email: u.Email},
		Token: tok.Text,
	}, nil
}

func RegisterHandler(creds CredentialStore, tokens TokenIssuer, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := httpx.DecodeJSON(w, r, &body); err != nil {
			httpx.WriteMessage(w, http.StatusBadRequest, "invalid json")
			return
		}

		u, err := creds.Register(r.Context(), body.Username, body.Email, body.Password)
		if err != nil {
			httpx.WriteError(w, r, log, err, "Server error during registration")
			return
		}

		resp, err := newSession(u, tokens)
		if err != nil {
			httpx.WriteError(w, r, log, err, "Server error during registration")
			return
		}

		log.InfoContext(r.Context(), "user registered", "user_id", u.ID)
		httpx.WriteJSON(w, http.StatusCreated, resp)
	}
}

func LoginHandler(creds CredentialStore, tokens TokenIssuer, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := httpx.DecodeJSON(w, r, &body); err != nil {
			httpx.WriteMessage(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(body.Email) == "" || strings.TrimSpace(body.Password) == "" {
			httpx.WriteMessage(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		u, err := creds.Verify(r.Context(), body.Email, body.Password)
		if err != nil {
			httpx.WriteError(w, r, log, err, "Server error during login")
			return
		}

		resp, err := newSession(u, tokens)
		if err != nil {
			httpx.WriteError(w, r, log, err, "Server error during login")
			return
		}

		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}
