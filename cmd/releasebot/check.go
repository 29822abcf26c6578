package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"

	"github.com/abdulachik/releasebot/internal/announce"
	"github.com/abdulachik/releasebot/internal/app"
	"github.com/abdulachik/releasebot/internal/config"
	"github.com/abdulachik/releasebot/internal/seenset"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single release check",
	Long: `Fetch the artist's tracks once and announce anything new.

With --dry-run nothing is posted and the seen set is left untouched; the
tracks that would be announced are logged instead.`,
	RunE: runCheck,
}

var checkDryRun bool

func init() {
	checkCmd.Flags().BoolVar(&checkDryRun, "dry-run", false, "log announcements instead of posting them")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	validate := cfg.ValidateForServe
	if checkDryRun {
		validate = cfg.Validate
	}
	if err := validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var (
		announcer announce.Announcer
		seen      seenset.Store
		overlay   *seenset.Overlay
	)
	if checkDryRun {
		overlay = seenset.NewOverlay(a.Seen)
		announcer = announce.NewLogAnnouncer()
		seen = overlay
	} else {
		// Posting only needs the REST API, so no gateway connection is opened.
		session, err := discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			return fmt.Errorf("create discord session: %w", err)
		}
		announcer = announce.NewDiscordAnnouncer(announce.DiscordConfig{Session: session})
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.CycleTimeout)
	defer cancel()

	result := a.Detector(announcer, seen).RunCycle(ctx)

	out := cmd.OutOrStdout()
	if result.Skipped {
		fmt.Fprintf(out, "Skipped: %s\n", result.SkipReason)
		return nil
	}

	fmt.Fprintf(out, "Source:             %s\n", a.Source.Name())
	fmt.Fprintf(out, "Tracks fetched:     %d\n", result.Fetched)
	fmt.Fprintf(out, "New tracks:         %d\n", result.New)
	fmt.Fprintf(out, "Announced:          %d\n", result.Announced)
	fmt.Fprintf(out, "Delivery failures:  %d\n", result.DeliveryFailures)
	fmt.Fprintf(out, "Duration:           %s\n", result.Duration.Round(time.Millisecond))

	if overlay != nil {
		for _, id := range overlay.Added() {
			fmt.Fprintf(out, "  would record %s\n", id)
		}
	}

	if result.Err != nil {
		return fmt.Errorf("check failed: %w", result.Err)
	}
	return nil
}
