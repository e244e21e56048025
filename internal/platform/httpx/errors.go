package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/accessd/accessd/internal/shared"
)

// RespondError maps domain errors to HTTP responses. The text wrapped
// around the sentinel is surfaced as the detail; the sentinel itself
// stands in when nothing was wrapped.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, detail(err, shared.ErrNotFound))
	case errors.Is(err, shared.ErrConflict):
		Error(w, http.StatusBadRequest, detail(err, shared.ErrConflict))
	case errors.Is(err, shared.ErrValidation):
		Error(w, http.StatusUnprocessableEntity, detail(err, shared.ErrValidation))
	case errors.Is(err, shared.ErrForbidden):
		Error(w, http.StatusForbidden, detail(err, shared.ErrForbidden))
	case errors.Is(err, shared.ErrInactiveUser):
		Error(w, http.StatusBadRequest, detail(err, shared.ErrInactiveUser))
	case errors.Is(err, shared.ErrUnauthorized):
		Error(w, http.StatusUnauthorized, detail(err, shared.ErrUnauthorized))
	case errors.Is(err, shared.ErrInvalidCredentials):
		Error(w, http.StatusUnauthorized, detail(err, shared.ErrInvalidCredentials))
	default:
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}

func detail(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}
