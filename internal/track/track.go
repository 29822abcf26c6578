package track

import (
	"context"
	"time"
)

// Track is a single song entry discovered on the artist's page.
// ID is the dedup key; Name is display-only and may change between fetches.
type Track struct {
	Name         string
	ID           string
	DiscoveredAt time.Time
}

// Source is the interface for track listing providers.
type Source interface {
	// Name returns the name of this source strategy.
	Name() string

	// Fetch retrieves every track currently visible for the artist.
	// Implementations never return two tracks with the same ID.
	Fetch(ctx context.Context, artistURL string) ([]Track, error)
}

// Dedupe removes tracks with an empty or repeated ID, keeping the first
// occurrence so fetch order is preserved.
func Dedupe(tracks []Track) []Track {
	if len(tracks) == 0 {
		return tracks
	}

	seen := make(map[string]struct{}, len(tracks))
	out := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if t.ID == "" {
			continue
		}
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}
