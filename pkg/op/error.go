package op

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	httphelper "github.com/kumarnvm/IdentityServer4/pkg/http"
	"github.com/kumarnvm/IdentityServer4/pkg/oidc"
)

// terminal failures of the end session routes
var (
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrSessionMismatch  = errors.New("session id missing or mismatched")
	ErrRouteNotFound    = errors.New("unknown route")

	// ErrStoreUnavailable wraps I/O failures of a backing store.
	// The provider never retries; that is up to the caller.
	ErrStoreUnavailable = errors.New("store unavailable")
)

type StatusError struct {
	parent     error
	statusCode int
}

func NewStatusError(parent error, statusCode int) StatusError {
	return StatusError{
		parent:     parent,
		statusCode: statusCode,
	}
}

func (e StatusError) Error() string {
	return fmt.Sprintf("%s: %s", http.StatusText(e.statusCode), e.parent.Error())
}

func (e StatusError) Unwrap() error {
	return e.parent
}

func (e StatusError) Is(err error) bool {
	var target StatusError
	if !errors.As(err, &target) {
		return false
	}
	return errors.Is(e.parent, target.parent) &&
		e.statusCode == target.statusCode
}

// AsStatusError maps err to a StatusError. Protocol errors keep their
// OAuth2 error body semantics (400), store failures become 500 and
// everything else defaults to the provided status.
func AsStatusError(err error, defaultStatus int) StatusError {
	var statusErr StatusError
	if errors.As(err, &statusErr) {
		return statusErr
	}
	switch {
	case errors.Is(err, ErrMethodNotAllowed):
		return NewStatusError(err, http.StatusMethodNotAllowed)
	case errors.Is(err, ErrSessionMismatch):
		return NewStatusError(err, http.StatusBadRequest)
	case errors.Is(err, ErrRouteNotFound):
		return NewStatusError(err, http.StatusNotFound)
	case errors.Is(err, ErrStoreUnavailable):
		return NewStatusError(err, http.StatusInternalServerError)
	}
	var oauthErr *oidc.Error
	if errors.As(err, &oauthErr) {
		if oauthErr.ErrorType == oidc.ServerError {
			return NewStatusError(err, http.StatusInternalServerError)
		}
		return NewStatusError(err, http.StatusBadRequest)
	}
	return NewStatusError(err, defaultStatus)
}

// WriteError writes err as a JSON error response and logs it.
// Client caused errors are logged on warn level, server failures on
// error level.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	statusErr := AsStatusError(err, http.StatusInternalServerError)
	level := slog.LevelWarn
	if statusErr.statusCode >= 500 {
		level = slog.LevelError
	}
	logger.Log(r.Context(), level, "request error",
		"status", statusErr.statusCode, "err", err)

	var oauthErr *oidc.Error
	if errors.As(err, &oauthErr) {
		httphelper.MarshalJSONWithStatus(w, oauthErr, statusErr.statusCode)
		return
	}
	http.Error(w, http.StatusText(statusErr.statusCode), statusErr.statusCode)
}
