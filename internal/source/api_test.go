package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
	})

	mux.HandleFunc("/v1/artists/artist1/albums", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "album,single", r.URL.Query().Get("include_groups"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"id": "single1", "name": "Single"},
				{"id": "album1", "name": "Album"},
			},
		})
	})

	mux.HandleFunc("/v1/albums/single1/tracks", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"id": "t1", "name": "Song", "external_urls": map[string]string{"spotify": "https://open.spotify.com/track/t1"}},
			},
		})
	})

	mux.HandleFunc("/v1/albums/album1/tracks", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"id": "t1", "name": "Song", "external_urls": map[string]string{"spotify": "https://open.spotify.com/track/t1"}},
				{"id": "t2", "name": "Deep Cut"},
			},
		})
	})

	return httptest.NewServer(mux)
}

func TestAPISource_Fetch(t *testing.T) {
	server := newAPIServer(t)
	defer server.Close()

	src := NewAPISource(APIConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		ReleaseLimit: 2,
		BaseURL:      server.URL + "/v1",
		AuthURL:      server.URL + "/token",
	})

	tracks, err := src.Fetch(context.Background(), "https://open.spotify.com/artist/artist1")
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	assert.Equal(t, "Song", tracks[0].Name)
	assert.Equal(t, "https://open.spotify.com/track/t1", tracks[0].ID)
	assert.Equal(t, "Deep Cut", tracks[1].Name)
	assert.Equal(t, "https://open.spotify.com/track/t2", tracks[1].ID)
	assert.False(t, tracks[0].DiscoveredAt.IsZero())
}

func TestAPISource_ReleaseLimitClamp(t *testing.T) {
	assert.Equal(t, defaultReleaseLimit, NewAPISource(APIConfig{}).releaseLimit)
	assert.Equal(t, maxReleaseLimit, NewAPISource(APIConfig{ReleaseLimit: 500}).releaseLimit)
}

func TestAPISource_UnauthorizedInvalidatesToken(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
	})
	mux.HandleFunc("/v1/artists/a/albums", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	src := NewAPISource(APIConfig{
		ClientID: "id", ClientSecret: "secret",
		BaseURL: server.URL + "/v1", AuthURL: server.URL + "/token",
	})

	for i := 0; i < 2; i++ {
		_, err := src.Fetch(context.Background(), "https://open.spotify.com/artist/a")
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	}
	assert.Equal(t, 2, tokenCalls)
}

func TestAPISource_AllReleasesFail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
	})
	mux.HandleFunc("/v1/artists/a/albums", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{{"id": "r1", "name": "R"}}})
	})
	mux.HandleFunc("/v1/albums/r1/tracks", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	src := NewAPISource(APIConfig{
		ClientID: "id", ClientSecret: "secret",
		BaseURL: server.URL + "/v1", AuthURL: server.URL + "/token",
	})

	_, err := src.Fetch(context.Background(), "https://open.spotify.com/artist/a")
	assert.Error(t, err)
}

func TestAPISource_InvalidArtistURL(t *testing.T) {
	src := NewAPISource(APIConfig{ClientID: "id", ClientSecret: "secret"})
	_, err := src.Fetch(context.Background(), "https://example.com/nope")
	assert.True(t, errors.Is(err, ErrInvalidArtistURL))
}
