package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/abdulachik/releasebot/internal/logging"
	"github.com/abdulachik/releasebot/internal/track"
)

// EmbedSource reads the artist's embeddable player page, which is served
// pre-rendered with its track list in the __NEXT_DATA__ script. No browser
// or credentials are needed.
type EmbedSource struct {
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

// EmbedConfig holds configuration for the embed source.
type EmbedConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Now        func() time.Time
}

// NewEmbedSource creates a new embed source.
func NewEmbedSource(cfg EmbedConfig) *EmbedSource {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = spotifyWebBase
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &EmbedSource{
		httpClient: newHTTPClient(cfg.HTTPClient),
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        now,
	}
}

// Name returns the source name.
func (e *EmbedSource) Name() string {
	return StrategyEmbed
}

// embedData mirrors the part of __NEXT_DATA__ that carries the track list.
type embedData struct {
	Props struct {
		PageProps struct {
			State struct {
				Data struct {
					Entity struct {
						Name      string `json:"name"`
						TrackList []struct {
							URI   string `json:"uri"`
							Title string `json:"title"`
						} `json:"trackList"`
					} `json:"entity"`
				} `json:"data"`
			} `json:"state"`
		} `json:"pageProps"`
	} `json:"props"`
}

// Fetch retrieves the tracks listed on the artist's embed page.
func (e *EmbedSource) Fetch(ctx context.Context, artistURL string) ([]track.Track, error) {
	artistID, err := ArtistID(artistURL)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/embed/artist/%s", e.baseURL, url.PathEscape(artistID))
	doc, err := e.fetchDocument(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch embed page: %w", err)
	}

	tracks, err := parseEmbedDocument(doc, e.now())
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, ErrNoTracks
	}

	logging.FromContext(ctx).Debug("fetched tracks from embed page", "tracks", len(tracks))
	return tracks, nil
}

func (e *EmbedSource) fetchDocument(ctx context.Context, endpoint string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUA)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return doc, nil
}

func parseEmbedDocument(doc *goquery.Document, now time.Time) ([]track.Track, error) {
	raw := strings.TrimSpace(doc.Find("script#__NEXT_DATA__").First().Text())
	if raw == "" {
		return nil, errors.New("__NEXT_DATA__ script tag not found")
	}

	var data embedData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("parse __NEXT_DATA__: %w", err)
	}

	list := data.Props.PageProps.State.Data.Entity.TrackList
	tracks := make([]track.Track, 0, len(list))
	for _, item := range list {
		id, ok := CanonicalTrackURL(item.URI)
		name := strings.TrimSpace(item.Title)
		if !ok || name == "" {
			continue
		}
		tracks = append(tracks, track.Track{
			Name:         name,
			ID:           id,
			DiscoveredAt: now,
		})
	}

	return track.Dedupe(tracks), nil
}
