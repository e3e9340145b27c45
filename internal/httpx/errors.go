package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"goal-tracker-backend/internal/apperr"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized, apperr.KindInvalidCredential, apperr.KindInvalidToken:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError answers with the status and message carried by err.
// Anything else is logged and answered with a 500 carrying fallback.
func WriteError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, fallback string) {
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind != apperr.KindInternal {
		WriteMessage(w, StatusFor(ae.Kind), ae.Message)
		return
	}

	log.ErrorContext(r.Context(), fallback,
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	WriteMessage(w, http.StatusInternalServerError, fallback)
}
