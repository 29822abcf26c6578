package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abdulachik/releasebot/internal/announce"
	"github.com/abdulachik/releasebot/internal/app"
	"github.com/abdulachik/releasebot/internal/bot"
	"github.com/abdulachik/releasebot/internal/config"
	"github.com/abdulachik/releasebot/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot daemon",
	Long: `Connect to Discord, register the slash commands and check for
new releases on a schedule.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForServe(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	b, err := bot.New(bot.Config{
		Token:    cfg.DiscordToken,
		GuildID:  cfg.GuildID,
		Settings: a.Settings,
	})
	if err != nil {
		return err
	}
	if err := b.Open(); err != nil {
		return err
	}
	defer b.Close()

	det := a.Detector(announce.NewDiscordAnnouncer(announce.DiscordConfig{
		Session: b.Session(),
	}), nil)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	health := scheduler.NewHealth()

	sched := scheduler.New(scheduler.Config{
		Detector:     det,
		Interval:     cfg.CheckInterval,
		CycleTimeout: cfg.CycleTimeout,
		Health:       health,
		Metrics:      scheduler.NewMetrics(reg),
		Logger:       slog.Default(),
	})

	slog.Info("starting releasebot",
		"artist", cfg.ArtistURL,
		"source", a.Source.Name(),
		"seen_store", cfg.SeenStore,
		"check_interval", cfg.CheckInterval,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(gctx)
	})
	if cfg.MetricsAddr != "" {
		server := scheduler.NewServer(cfg.MetricsAddr, health, reg)
		g.Go(func() error {
			if err := server.Start(gctx); err != nil {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	err = g.Wait()
	slog.Info("shutting down...")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
