package auth

import (
	"net/http"

	"goal-tracker-backend/internal/httpx"
)

// VerifyHandler echoes the identity carried by the request's bearer token.
func VerifyHandler(gate Middleware) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := gate.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			writeAuthError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, id)
	}
}

// LogoutHandler only acknowledges; tokens are stateless and the client
// discards its copy.
func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteMessage(w, http.StatusOK, "Logout successful")
	}
}
