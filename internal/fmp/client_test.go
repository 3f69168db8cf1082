package fmp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Get(t *testing.T) {
	var gotQuery url.Values
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"symbol":"AAPL","price":190.5}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/stable/", time.Second)
	out, err := c.Get(context.Background(), "key-1", "/quote", url.Values{"symbol": {"AAPL"}, "limit": {""}})
	require.NoError(t, err)

	assert.Equal(t, "/stable/quote", gotPath)
	assert.Equal(t, "AAPL", gotQuery.Get("symbol"))
	assert.Equal(t, "key-1", gotQuery.Get("apikey"))
	assert.False(t, gotQuery.Has("limit"))

	rows, ok := out.([]any)
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, "AAPL", rows[0].(map[string]any)["symbol"])
}

func TestClient_GetMissingCredential(t *testing.T) {
	c := NewClient("http://unused.invalid", time.Second)
	_, err := c.Get(context.Background(), "", "quote", nil)
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestClient_GetAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"Error Message":"Invalid API KEY."}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Get(context.Background(), "bad", "profile", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Invalid API KEY")
}
