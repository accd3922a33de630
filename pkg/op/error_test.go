package op

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kumarnvm/IdentityServer4/pkg/oidc"
)

func TestAsStatusError(t *testing.T) {
	for _, tt := range []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "method not allowed",
			err:        ErrMethodNotAllowed,
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "session mismatch",
			err:        ErrSessionMismatch,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "route not found",
			err:        ErrRouteNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "store unavailable",
			err:        ErrStoreUnavailable,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "wrapped store unavailable",
			err:        errors.Join(ErrStoreUnavailable, errors.New("disk full")),
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "oauth protocol error",
			err:        oidc.ErrInvalidRequest().WithDescription("code challenge required"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "oauth server error",
			err:        oidc.ErrServerError(),
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "already a status error",
			err:        NewStatusError(errors.New("teapot"), http.StatusTeapot),
			wantStatus: http.StatusTeapot,
		},
		{
			name:       "unknown error defaults",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, AsStatusError(tt.err, http.StatusInternalServerError).statusCode)
		})
	}
}

func TestWriteError(t *testing.T) {
	t.Run("oauth error body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		WriteError(rec, r, oidc.ErrInvalidRequest().WithDescription("code challenge required"), slog.Default())

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t,
			`{"error":"invalid_request","error_description":"code challenge required"}`,
			rec.Body.String(),
		)
	})

	t.Run("plain error body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		WriteError(rec, r, ErrSessionMismatch, slog.Default())

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, http.StatusText(http.StatusBadRequest)+"\n", rec.Body.String())
	})

	t.Run("log level by status", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		WriteError(rec, r, ErrSessionMismatch, logger)
		assert.Contains(t, buf.String(), "level=WARN")

		buf.Reset()
		WriteError(httptest.NewRecorder(), r, ErrStoreUnavailable, logger)
		assert.Contains(t, buf.String(), "level=ERROR")
	})
}

func TestStatusError_Is(t *testing.T) {
	err := NewStatusError(ErrSessionMismatch, http.StatusBadRequest)
	assert.ErrorIs(t, err, NewStatusError(ErrSessionMismatch, http.StatusBadRequest))
	assert.NotErrorIs(t, err, NewStatusError(ErrSessionMismatch, http.StatusForbidden))
	assert.ErrorIs(t, err, ErrSessionMismatch)
}
