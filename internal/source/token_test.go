package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTokenServer(t *testing.T, calls *atomic.Int32, expiresIn int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		n := calls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-" + string(rune('0'+n)),
			"expires_in":   expiresIn,
		})
	}))
}

func TestTokenCache_CachesUntilMargin(t *testing.T) {
	var calls atomic.Int32
	server := newTokenServer(t, &calls, 3600)
	defer server.Close()

	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cache := NewTokenCache(TokenCacheConfig{
		AuthURL:      server.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Now:          clock.Now,
	})

	ctx := context.Background()
	tok, err := cache.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-1", tok)

	// Still inside expires_in minus the 60s margin.
	clock.Advance(3600*time.Second - 61*time.Second)
	tok, err = cache.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-1", tok)
	assert.Equal(t, int32(1), calls.Load())

	// Inside the final minute: refreshed.
	clock.Advance(2 * time.Second)
	tok, err = cache.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-2", tok)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTokenCache_Invalidate(t *testing.T) {
	var calls atomic.Int32
	server := newTokenServer(t, &calls, 3600)
	defer server.Close()

	cache := NewTokenCache(TokenCacheConfig{
		AuthURL:      server.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	})

	_, err := cache.Token(context.Background())
	require.NoError(t, err)

	cache.Invalidate()
	tok, err := cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", tok)
}

func TestTokenCache_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	cache := NewTokenCache(TokenCacheConfig{AuthURL: server.URL, ClientID: "x", ClientSecret: "y"})
	_, err := cache.Token(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}
