package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/abdulachik/releasebot/internal/logging"
	"github.com/abdulachik/releasebot/internal/track"
)

const defaultReleaseLimit = 20

// APISource lists tracks through the Spotify Web API.
type APISource struct {
	httpClient   *http.Client
	baseURL      string
	tokens       *TokenCache
	releaseLimit int
	now          func() time.Time
}

// APIConfig holds configuration for the API source.
type APIConfig struct {
	ClientID     string
	ClientSecret string
	ReleaseLimit int
	HTTPClient   *http.Client
	BaseURL      string
	AuthURL      string
	Now          func() time.Time
}

// NewAPISource creates a new API source.
func NewAPISource(cfg APIConfig) *APISource {
	limit := cfg.ReleaseLimit
	if limit <= 0 {
		limit = defaultReleaseLimit
	}
	if limit > maxReleaseLimit {
		limit = maxReleaseLimit
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = spotifyAPIBase
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	client := newHTTPClient(cfg.HTTPClient)
	return &APISource{
		httpClient: client,
		baseURL:    baseURL,
		tokens: NewTokenCache(TokenCacheConfig{
			HTTPClient:   client,
			AuthURL:      cfg.AuthURL,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Now:          now,
		}),
		releaseLimit: limit,
		now:          now,
	}
}

// Name returns the source name.
func (a *APISource) Name() string {
	return StrategyAPI
}

type apiRelease struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

type apiTrack struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

// Fetch lists the tracks of the artist's most recent releases.
func (a *APISource) Fetch(ctx context.Context, artistURL string) ([]track.Track, error) {
	artistID, err := ArtistID(artistURL)
	if err != nil {
		return nil, err
	}

	releases, err := a.fetchReleases(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("fetch releases: %w", err)
	}

	now := a.now()
	var tracks []track.Track
	failed := 0
	for _, release := range releases {
		items, err := a.fetchReleaseTracks(ctx, release.ID)
		if err != nil {
			failed++
			logging.FromContext(ctx).Warn("failed to fetch release tracks",
				"release", release.Name,
				"error", err,
			)
			continue
		}

		for _, item := range items {
			id := item.ExternalURLs.Spotify
			if canonical, ok := CanonicalTrackURL(id); ok {
				id = canonical
			} else if item.ID != "" {
				id = TrackURL(item.ID)
			}
			tracks = append(tracks, track.Track{
				Name:         item.Name,
				ID:           id,
				DiscoveredAt: now,
			})
		}
	}

	if failed > 0 && failed == len(releases) {
		return nil, fmt.Errorf("all %d release lookups failed", failed)
	}

	logging.FromContext(ctx).Debug("fetched tracks from API",
		"releases", len(releases),
		"tracks", len(tracks),
	)
	return track.Dedupe(tracks), nil
}

func (a *APISource) fetchReleases(ctx context.Context, artistID string) ([]apiRelease, error) {
	q := url.Values{}
	q.Set("include_groups", "album,single")
	q.Set("limit", strconv.Itoa(a.releaseLimit))
	endpoint := fmt.Sprintf("%s/artists/%s/albums?%s", a.baseURL, url.PathEscape(artistID), q.Encode())

	var page struct {
		Items []apiRelease `json:"items"`
	}
	if err := a.getJSON(ctx, endpoint, &page); err != nil {
		return nil, err
	}
	if len(page.Items) > a.releaseLimit {
		page.Items = page.Items[:a.releaseLimit]
	}
	return page.Items, nil
}

func (a *APISource) fetchReleaseTracks(ctx context.Context, releaseID string) ([]apiTrack, error) {
	endpoint := fmt.Sprintf("%s/albums/%s/tracks?limit=50", a.baseURL, url.PathEscape(releaseID))

	var page struct {
		Items []apiTrack `json:"items"`
	}
	if err := a.getJSON(ctx, endpoint, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (a *APISource) getJSON(ctx context.Context, endpoint string, out any) error {
	token, err := a.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("get access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", defaultUA)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusUnauthorized {
			a.tokens.Invalidate()
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
