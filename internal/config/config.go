package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Source strategies.
const (
	StrategyBrowser = "browser"
	StrategyEmbed   = "embed"
	StrategyAPI     = "api"
)

// Seen-set backends.
const (
	SeenStoreFile   = "file"
	SeenStoreSQLite = "sqlite"
)

// placeholderPrefix marks values copied verbatim from the example config.
const placeholderPrefix = "YOUR_"

// Config holds all application configuration.
type Config struct {
	// Discord
	DiscordToken string
	GuildID      string // Guild for command registration (empty: global)

	// Seed values for the settings document
	AnnouncementChannelID string
	PingRoleID            string
	SettingsPath          string

	// Artist
	ArtistURL  string
	ArtistName string

	// Track source
	SourceStrategy      string // "browser", "embed" or "api"
	SpotifyClientID     string
	SpotifyClientSecret string
	ReleaseLimit        int
	ChromePath          string
	ScrollPause         time.Duration

	// Seen-set storage
	SeenStore    string // "file" or "sqlite"
	SeenPath     string
	DatabasePath string

	// Scheduler settings
	CheckInterval time.Duration
	CycleTimeout  time.Duration

	// Observability
	MetricsAddr string
	LogLevel    string
	LogFormat   string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken:          getEnv("DISCORD_BOT_TOKEN", ""),
		GuildID:               getEnv("DISCORD_GUILD_ID", ""),
		AnnouncementChannelID: getEnv("ANNOUNCEMENT_CHANNEL_ID", ""),
		PingRoleID:            getEnv("PING_ROLE_ID", ""),
		SettingsPath:          getEnv("SETTINGS_PATH", "data/settings.yaml"),
		ArtistURL:             strings.TrimRight(getEnv("SPOTIFY_ARTIST_URL", ""), "/"),
		ArtistName:            getEnv("ARTIST_NAME", "bitcrush"),
		SourceStrategy:        strings.ToLower(getEnv("SOURCE_STRATEGY", StrategyBrowser)),
		SpotifyClientID:       getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret:   getEnv("SPOTIFY_CLIENT_SECRET", ""),
		ChromePath:            getEnv("CHROME_PATH", ""),
		SeenStore:             strings.ToLower(getEnv("SEEN_STORE", SeenStoreFile)),
		SeenPath:              getEnv("SEEN_PATH", "data/announced_tracks.txt"),
		DatabasePath:          getEnv("DATABASE_PATH", "data/releasebot.db"),
		MetricsAddr:           os.Getenv("METRICS_ADDR"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "text"),
	}
	if _, set := os.LookupEnv("METRICS_ADDR"); !set {
		cfg.MetricsAddr = ":9090"
	}

	// Parse durations
	var err error
	cfg.CheckInterval, err = time.ParseDuration(getEnv("CHECK_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECK_INTERVAL: %w", err)
	}

	cfg.CycleTimeout, err = time.ParseDuration(getEnv("CYCLE_TIMEOUT", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CYCLE_TIMEOUT: %w", err)
	}

	cfg.ScrollPause, err = time.ParseDuration(getEnv("SCROLL_PAUSE", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCROLL_PAUSE: %w", err)
	}

	// Parse integers
	limit, err := strconv.Atoi(getEnv("RELEASE_LIMIT", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RELEASE_LIMIT: %w", err)
	}
	cfg.ReleaseLimit = limit

	return cfg, nil
}

// Validate checks the configuration shared by every command.
func (c *Config) Validate() error {
	if err := requireValue("SPOTIFY_ARTIST_URL", c.ArtistURL); err != nil {
		return err
	}
	u, err := url.Parse(c.ArtistURL)
	if err != nil || u.Scheme == "" || u.Host == "" || !strings.Contains(u.Path, "/artist/") {
		return fmt.Errorf("SPOTIFY_ARTIST_URL must be an artist link, got %q", c.ArtistURL)
	}

	if err := c.ValidateForSource(); err != nil {
		return err
	}
	return c.ValidateForStorage()
}

// ValidateForSource checks the track source configuration.
func (c *Config) ValidateForSource() error {
	switch c.SourceStrategy {
	case StrategyBrowser:
		if c.ScrollPause <= 0 {
			return fmt.Errorf("SCROLL_PAUSE must be positive")
		}
	case StrategyEmbed:
	case StrategyAPI:
		if err := requireValue("SPOTIFY_CLIENT_ID", c.SpotifyClientID); err != nil {
			return fmt.Errorf("%w (required when SOURCE_STRATEGY is api)", err)
		}
		if err := requireValue("SPOTIFY_CLIENT_SECRET", c.SpotifyClientSecret); err != nil {
			return fmt.Errorf("%w (required when SOURCE_STRATEGY is api)", err)
		}
		if c.ReleaseLimit <= 0 {
			return fmt.Errorf("RELEASE_LIMIT must be positive")
		}
	default:
		return fmt.Errorf("invalid SOURCE_STRATEGY: %s (must be 'browser', 'embed' or 'api')", c.SourceStrategy)
	}
	return nil
}

// ValidateForStorage checks the seen-set configuration.
func (c *Config) ValidateForStorage() error {
	switch c.SeenStore {
	case SeenStoreFile:
		if c.SeenPath == "" {
			return fmt.Errorf("SEEN_PATH is required when SEEN_STORE is file")
		}
	case SeenStoreSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required when SEEN_STORE is sqlite")
		}
	default:
		return fmt.Errorf("invalid SEEN_STORE: %s (must be 'file' or 'sqlite')", c.SeenStore)
	}
	return nil
}

// ValidateForServe checks all configuration needed for serve mode.
func (c *Config) ValidateForServe() error {
	if err := requireValue("DISCORD_BOT_TOKEN", c.DiscordToken); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("CHECK_INTERVAL must be positive")
	}
	if c.CycleTimeout <= 0 {
		return fmt.Errorf("CYCLE_TIMEOUT must be positive")
	}
	if c.SettingsPath == "" {
		return fmt.Errorf("SETTINGS_PATH is required")
	}
	return nil
}

// requireValue rejects empty values and untouched placeholders.
func requireValue(key, val string) error {
	if val == "" {
		return fmt.Errorf("%s is required", key)
	}
	if strings.HasPrefix(val, placeholderPrefix) {
		return fmt.Errorf("%s still holds the placeholder value %q", key, val)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
