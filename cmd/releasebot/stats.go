package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abdulachik/releasebot/internal/app"
	"github.com/abdulachik/releasebot/internal/config"
	"github.com/abdulachik/releasebot/internal/db"
	"github.com/abdulachik/releasebot/internal/settings"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show bot statistics",
	Long:  `Display the configured artist, announcement target and seen-set statistics.`,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	st, err := settings.Open(cfg.SettingsPath, settings.Settings{
		AnnouncementChannelID: cfg.AnnouncementChannelID,
		PingRoleID:            cfg.PingRoleID,
	})
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}

	store, err := app.OpenSeenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	total, err := store.Len(ctx)
	if err != nil {
		return fmt.Errorf("count seen tracks: %w", err)
	}

	snap := st.Snapshot()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "=== releasebot Statistics ===")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Artist:               %s (%s)\n", cfg.ArtistName, cfg.ArtistURL)
	fmt.Fprintf(out, "Source strategy:      %s\n", cfg.SourceStrategy)
	fmt.Fprintf(out, "Check interval:       %s\n", cfg.CheckInterval)
	fmt.Fprintf(out, "Announcement channel: %s\n", orNone(snap.AnnouncementChannelID))
	fmt.Fprintf(out, "Ping role:            %s\n", orNone(snap.PingRoleID))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Seen store:           %s\n", cfg.SeenStore)
	fmt.Fprintf(out, "Announced tracks:     %d\n", total)

	if cfg.SeenStore != config.SeenStoreSQLite {
		return nil
	}

	sqlStore, ok := store.(*db.Store)
	if !ok {
		return nil
	}
	recent, err := sqlStore.Recent(ctx, 10)
	if err != nil {
		slog.Warn("failed to load recent tracks", "error", err)
		return nil
	}
	if len(recent) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Recently announced:")
		for _, t := range recent {
			name := t.Name
			if name == "" {
				name = t.ID
			}
			fmt.Fprintf(out, "  %s  %s\n", t.FirstSeenAt.Format("2006-01-02 15:04"), name)
		}
	}
	return nil
}

func orNone(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}
