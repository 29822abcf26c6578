// Package app wires configuration into the stores and the track source
// shared by every command.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdulachik/releasebot/internal/announce"
	"github.com/abdulachik/releasebot/internal/config"
	"github.com/abdulachik/releasebot/internal/db"
	"github.com/abdulachik/releasebot/internal/detector"
	"github.com/abdulachik/releasebot/internal/seenset"
	"github.com/abdulachik/releasebot/internal/settings"
	"github.com/abdulachik/releasebot/internal/source"
	"github.com/abdulachik/releasebot/internal/track"
)

// App is the main application container holding all dependencies.
type App struct {
	Config   *config.Config
	Settings *settings.Store
	Seen     seenset.Store
	Source   track.Source
}

// New creates a new application instance with all dependencies wired up.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	st, err := settings.Open(cfg.SettingsPath, settings.Settings{
		AnnouncementChannelID: cfg.AnnouncementChannelID,
		PingRoleID:            cfg.PingRoleID,
	})
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}

	seen, err := OpenSeenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	src, err := NewSource(cfg)
	if err != nil {
		seen.Close()
		return nil, err
	}

	return &App{
		Config:   cfg,
		Settings: st,
		Seen:     seen,
		Source:   src,
	}, nil
}

// OpenSeenStore opens the configured seen-set backend. The SQLite backend is
// migrated before use.
func OpenSeenStore(ctx context.Context, cfg *config.Config) (seenset.Store, error) {
	switch cfg.SeenStore {
	case config.SeenStoreSQLite:
		slog.Debug("opening seen set", "backend", cfg.SeenStore, "path", cfg.DatabasePath)
		store, err := db.NewStore(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return store, nil
	default:
		slog.Debug("opening seen set", "backend", cfg.SeenStore, "path", cfg.SeenPath)
		return seenset.NewFileStore(cfg.SeenPath), nil
	}
}

// NewSource builds the configured track source.
func NewSource(cfg *config.Config) (track.Source, error) {
	src, err := source.New(source.Config{
		Strategy: cfg.SourceStrategy,
		Browser: source.BrowserConfig{
			ExecPath:    cfg.ChromePath,
			ScrollPause: cfg.ScrollPause,
		},
		API: source.APIConfig{
			ClientID:     cfg.SpotifyClientID,
			ClientSecret: cfg.SpotifyClientSecret,
			ReleaseLimit: cfg.ReleaseLimit,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create track source: %w", err)
	}
	return src, nil
}

// Detector builds a detector that announces through a.
func (a *App) Detector(announcer announce.Announcer, seen seenset.Store) *detector.Detector {
	if seen == nil {
		seen = a.Seen
	}
	return detector.New(detector.Config{
		Source:     a.Source,
		Seen:       seen,
		Announcer:  announcer,
		Settings:   a.Settings,
		ArtistURL:  a.Config.ArtistURL,
		ArtistName: a.Config.ArtistName,
	})
}

// Close closes all resources.
func (a *App) Close() error {
	if a.Seen != nil {
		return a.Seen.Close()
	}
	return nil
}
