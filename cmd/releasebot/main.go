package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abdulachik/releasebot/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "releasebot",
	Short: "Announce new Spotify releases on Discord",
	Long: `releasebot watches an artist's Spotify page and posts every new
track to a Discord channel, exactly once.`,
	SilenceUsage: true,
}

func init() {
	// Load .env file if present
	_ = godotenv.Load()

	slog.SetDefault(logging.New(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT")))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
