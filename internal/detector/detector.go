// Package detector runs release detection cycles: fetch the artist's tracks,
// diff them against the seen set, announce what is new and record it.
package detector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abdulachik/releasebot/internal/announce"
	"github.com/abdulachik/releasebot/internal/logging"
	"github.com/abdulachik/releasebot/internal/seenset"
	"github.com/abdulachik/releasebot/internal/settings"
	"github.com/abdulachik/releasebot/internal/track"
)

// Skip reasons reported in CycleResult.SkipReason.
const (
	SkipNoChannel = "no_channel"
	SkipBusy      = "busy"
)

// SettingsProvider supplies the channel and role at the start of a cycle.
type SettingsProvider interface {
	Snapshot() settings.Settings
}

// trackRecorder is implemented by stores that keep the track name too.
type trackRecorder interface {
	AddTrack(ctx context.Context, id, name string) error
}

// CycleResult summarizes one cycle.
type CycleResult struct {
	ID               string
	Skipped          bool
	SkipReason       string
	Fetched          int
	New              int
	Announced        int
	DeliveryFailures int
	Duration         time.Duration
	Err              error
}

// Detector runs detection cycles. At most one cycle runs at a time.
type Detector struct {
	source     track.Source
	seen       seenset.Store
	announcer  announce.Announcer
	settings   SettingsProvider
	artistURL  string
	artistName string

	mu sync.Mutex
}

// Config holds the collaborators of a Detector.
type Config struct {
	Source     track.Source
	Seen       seenset.Store
	Announcer  announce.Announcer
	Settings   SettingsProvider
	ArtistURL  string
	ArtistName string
}

// New creates a new detector.
func New(cfg Config) *Detector {
	return &Detector{
		source:     cfg.Source,
		seen:       cfg.Seen,
		announcer:  cfg.Announcer,
		settings:   cfg.Settings,
		artistURL:  cfg.ArtistURL,
		artistName: cfg.ArtistName,
	}
}

// RunCycle performs one detection cycle. If another cycle is in progress it
// returns immediately with SkipReason "busy".
func (d *Detector) RunCycle(ctx context.Context) CycleResult {
	result := CycleResult{ID: uuid.NewString()}

	if !d.mu.TryLock() {
		result.Skipped = true
		result.SkipReason = SkipBusy
		slog.Debug("cycle already running, skipping", "cycle_id", result.ID)
		return result
	}
	defer d.mu.Unlock()

	start := time.Now()
	logger := logging.FromContext(ctx).With("cycle_id", result.ID)
	ctx = logging.WithLogger(ctx, logger)

	d.run(ctx, logger, &result)

	result.Duration = time.Since(start)
	return result
}

func (d *Detector) run(ctx context.Context, logger *slog.Logger, result *CycleResult) {
	snap := d.settings.Snapshot()
	if !snap.HasChannel() {
		result.Skipped = true
		result.SkipReason = SkipNoChannel
		logger.Info("announcement channel not set, use /set-ann-channel")
		return
	}

	logger.Debug("checking for new releases", "source", d.source.Name())

	tracks, err := d.source.Fetch(ctx, d.artistURL)
	if err != nil {
		result.Err = fmt.Errorf("fetch tracks: %w", err)
		logger.Warn("fetch failed", "source", d.source.Name(), "error", err)
		return
	}
	tracks = track.Dedupe(tracks)
	result.Fetched = len(tracks)
	if len(tracks) == 0 {
		logger.Info("no tracks found")
		return
	}

	var fresh []track.Track
	for _, t := range tracks {
		seen, err := d.seen.Contains(ctx, t.ID)
		if err != nil {
			result.Err = fmt.Errorf("check seen %s: %w", t.ID, err)
			logger.Error("seen set lookup failed", "track", t.ID, "error", err)
			return
		}
		if !seen {
			fresh = append(fresh, t)
		}
	}
	result.New = len(fresh)

	if len(fresh) == 0 {
		logger.Info("no new releases", "fetched", result.Fetched)
		return
	}

	for _, t := range fresh {
		logger.Info("new release found", "track", t.Name, "url", t.ID)

		err := d.announcer.Announce(ctx, announce.Announcement{
			Track:      t,
			ArtistURL:  d.artistURL,
			ArtistName: d.artistName,
			ChannelID:  snap.AnnouncementChannelID,
			RoleID:     snap.PingRoleID,
		})
		if err != nil {
			result.DeliveryFailures++
			logger.Error("failed to announce release", "track", t.Name, "error", err)
		} else {
			result.Announced++
		}

		// Recorded whether or not delivery succeeded.
		if err := d.record(ctx, t); err != nil {
			result.Err = fmt.Errorf("record %s: %w", t.ID, err)
			logger.Error("failed to record track, stopping cycle", "track", t.ID, "error", err)
			return
		}
	}

	logger.Info("cycle complete",
		"fetched", result.Fetched,
		"new", result.New,
		"announced", result.Announced,
		"delivery_failures", result.DeliveryFailures,
	)
}

func (d *Detector) record(ctx context.Context, t track.Track) error {
	if r, ok := d.seen.(trackRecorder); ok {
		return r.AddTrack(ctx, t.ID, t.Name)
	}
	return d.seen.Add(ctx, t.ID)
}
