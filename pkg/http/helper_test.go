package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalJSONWithStatus(t *testing.T) {
	t.Run("with body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		MarshalJSONWithStatus(rec, map[string]string{"status": "ok"}, http.StatusOK)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("content-type"))
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("nil body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		MarshalJSONWithStatus(rec, nil, http.StatusNoContent)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestMergeQueryParams(t *testing.T) {
	uri, err := url.Parse("https://rp.example.com/logout?foo=bar")
	require.NoError(t, err)

	got := MergeQueryParams(uri, url.Values{"state": {"xyz"}})
	assert.Equal(t, "https://rp.example.com/logout?foo=bar&state=xyz", got)
}

func TestAddQueryParam(t *testing.T) {
	got, err := AddQueryParam("https://rp.example.com/logout", "state", "a b")
	require.NoError(t, err)
	assert.Equal(t, "https://rp.example.com/logout?state=a+b", got)

	_, err = AddQueryParam("://broken", "state", "xyz")
	assert.Error(t, err)
}
