package auth

import (
	"context"
	"net/http"
	"strings"

	"goal-tracker-backend/internal/apperr"
	"goal-tracker-backend/internal/httpx"
)

// Identity is the authenticated caller, as carried in a verified token.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type ctxKey string

const identityKey ctxKey = "identity"

type TokenVerifier interface {
	Verify(text string) (*Claims, error)
}

type Middleware struct {
	tokens TokenVerifier
}

func New(tokens TokenVerifier) Middleware {
	return Middleware{tokens: tokens}
}

// Authenticate resolves an Authorization header value of the form
// "Bearer <token>" to an identity. A missing or misshapen header is
// KindUnauthorized; any token failure is KindInvalidToken.
func (m Middleware) Authenticate(header string) (Identity, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return Identity{}, apperr.New(apperr.KindUnauthorized, "Unauthorized")
	}

	claims, err := m.tokens.Verify(parts[1])
	if err != nil {
		return Identity{}, apperr.Wrap(apperr.KindInvalidToken, "Invalid token", err)
	}
	return claims.Identity(), nil
}

func (m Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := m.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			writeAuthError(w, err)
			return
		}
		next(w, r.WithContext(WithIdentity(r.Context(), id)))
	}
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

func writeAuthError(w http.ResponseWriter, err error) {
	msg := "Unauthorized"
	if apperr.Is(err, apperr.KindInvalidToken) {
		msg = "Invalid token"
	}
	httpx.WriteMessage(w, http.StatusUnauthorized, msg)
}
