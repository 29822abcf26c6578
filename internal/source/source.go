// Package source implements the interchangeable track listing strategies:
// a headless browser scrape of the discography page, a parse of the public
// embed page, and the Web API with client credentials.
package source

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abdulachik/releasebot/internal/track"
)

const (
	spotifyWebBase  = "https://open.spotify.com"
	spotifyAPIBase  = "https://api.spotify.com/v1"
	spotifyAuthURL  = "https://accounts.spotify.com/api/token"
	maxBodySize     = 10 * 1024 * 1024 // 10MB
	defaultTimeout  = 30 * time.Second
	defaultUA       = "releasebot/1.0"
	maxReleaseLimit = 50
)

// Strategy names accepted by New.
const (
	StrategyBrowser = "browser"
	StrategyEmbed   = "embed"
	StrategyAPI     = "api"
)

var (
	// ErrInvalidArtistURL is returned when no artist id can be found in a URL.
	ErrInvalidArtistURL = errors.New("invalid artist url")

	// ErrNoTracks is returned when a page loaded but listed no tracks.
	ErrNoTracks = errors.New("no tracks found")
)

// StatusError is returned when a provider answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// RateLimited reports whether the provider asked us to slow down.
func (e *StatusError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Config selects and configures a strategy.
type Config struct {
	Strategy string
	Browser  BrowserConfig
	Embed    EmbedConfig
	API      APIConfig
}

// New builds the track source selected by cfg.Strategy.
func New(cfg Config) (track.Source, error) {
	switch strings.ToLower(cfg.Strategy) {
	case StrategyBrowser, "":
		return NewBrowserSource(cfg.Browser), nil
	case StrategyEmbed:
		return NewEmbedSource(cfg.Embed), nil
	case StrategyAPI:
		if cfg.API.ClientID == "" || cfg.API.ClientSecret == "" {
			return nil, fmt.Errorf("api strategy requires client credentials")
		}
		return NewAPISource(cfg.API), nil
	default:
		return nil, fmt.Errorf("unknown source strategy %q", cfg.Strategy)
	}
}

// ArtistID extracts the artist id from an open.spotify.com link or a
// spotify:artist: URI.
func ArtistID(artistURL string) (string, error) {
	artistURL = strings.TrimSpace(artistURL)
	if rest, ok := strings.CutPrefix(artistURL, "spotify:artist:"); ok && rest != "" {
		return rest, nil
	}

	u, err := url.Parse(artistURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArtistURL, err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "artist" && parts[i+1] != "" {
			return parts[i+1], nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidArtistURL, artistURL)
}

// TrackURL builds the canonical link for a track id.
func TrackURL(id string) string {
	return spotifyWebBase + "/track/" + id
}

// CanonicalTrackURL normalizes a track href, absolute or relative, or a
// spotify:track: URI into the canonical track link. Locale prefixes, query
// strings and fragments are dropped so the same track always maps to the
// same identifier.
func CanonicalTrackURL(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if rest, ok := strings.CutPrefix(ref, "spotify:track:"); ok {
		if rest == "" {
			return "", false
		}
		return TrackURL(rest), true
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}

	_, after, found := strings.Cut(u.Path, "/track/")
	if !found {
		return "", false
	}
	id, _, _ := strings.Cut(after, "/")
	if id == "" {
		return "", false
	}
	return TrackURL(id), true
}

func newHTTPClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: defaultTimeout}
}
