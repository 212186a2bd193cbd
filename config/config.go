package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"

	"github.com/marcus-crane/curator/utils"
)

const DefaultPath = "~/.curator/config.toml"

type Config struct {
	DailyCandidates int      `toml:"daily_candidates" env:"CURATOR_DAILY_CANDIDATES"`
	MinSeconds      int      `toml:"min_seconds" env:"CURATOR_MIN_SECONDS"`
	MaxSeconds      int      `toml:"max_seconds" env:"CURATOR_MAX_SECONDS"`
	SeedKeywords    []string `toml:"seed_keywords"`
	DownloadCapGB   float64  `toml:"download_cap_gb" env:"CURATOR_DOWNLOAD_CAP_GB"`
	RPSLimit        float64  `toml:"rps_limit" env:"CURATOR_RPS_LIMIT"`
	// Timeout is in seconds
	Timeout   float64 `toml:"timeout" env:"CURATOR_TIMEOUT"`
	UserAgent string  `toml:"user_agent" env:"CURATOR_USER_AGENT"`

	DbPath      string   `toml:"db_path" env:"DB_PATH"`
	DownloadDir string   `toml:"download_dir" env:"STORAGE_DIR"`
	LogLevel    string   `toml:"log_level" env:"LOG_LEVEL"`
	ScheduleAt  string   `toml:"schedule_at" env:"CURATOR_SCHEDULE_AT"`
	WebAddr     string   `toml:"web_addr" env:"CURATOR_WEB_ADDR"`
	CorsOrigins []string `toml:"cors_origins"`

	Pushover PushoverConfig `toml:"pushover"`
}

type PushoverConfig struct {
	Recipient string `toml:"recipient" env:"PUSHOVER_RECIPIENT"`
	Token     string `toml:"token" env:"PUSHOVER_TOKEN"`
}

func Default() Config {
	return Config{
		DailyCandidates: 30,
		MinSeconds:      5,
		MaxSeconds:      18000,
		SeedKeywords:    []string{"funny", "crazy", "interesting"},
		DownloadCapGB:   50,
		RPSLimit:        1.0,
		Timeout:         10.0,
		UserAgent:       utils.UserAgent,
		DbPath:          "curator.db",
		DownloadDir:     "downloads",
		LogLevel:        "info",
		ScheduleAt:      "03:00",
		WebAddr:         ":5000",
		CorsOrigins:     []string{"*"},
	}
}

// Load layers the TOML file at path (when it exists) and then the
// environment on top of the defaults. An empty path falls back to
// $CURATOR_CONFIG and then ~/.curator/config.toml.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = utils.GetEnv("CURATOR_CONFIG", DefaultPath)
	}
	path = utils.ExpandHome(path)

	c := config.New()
	if _, err := os.Stat(path); err == nil {
		c.AddFeeder(feeder.Toml{Path: path})
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	c.AddFeeder(feeder.Env{})
	c.AddStruct(&cfg)

	if err := c.Feed(); err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DailyCandidates <= 0 {
		return fmt.Errorf("daily_candidates must be positive (got %d)", c.DailyCandidates)
	}
	if c.MinSeconds < 0 || c.MinSeconds > c.MaxSeconds {
		return fmt.Errorf("min_seconds (%d) must be between 0 and max_seconds (%d)", c.MinSeconds, c.MaxSeconds)
	}
	if c.DownloadCapGB < 0 {
		return fmt.Errorf("download_cap_gb cannot be negative (got %g)", c.DownloadCapGB)
	}
	if len(c.SeedKeywords) == 0 {
		return errors.New("at least one seed keyword is required")
	}
	return nil
}

// CapBytes is the daily download cap in bytes, counting a GB as 1024^3
func (c Config) CapBytes() int64 {
	return int64(c.DownloadCapGB * 1024 * 1024 * 1024)
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout * float64(time.Second))
}

func (c *Config) GetLogLevel() slog.Leveler {
	logLevel := strings.ToLower(c.LogLevel)
	if logLevel == "error" {
		return slog.LevelError
	}
	if logLevel == "warning" || logLevel == "warn" {
		return slog.LevelWarn
	}
	if logLevel == "info" {
		return slog.LevelInfo
	}
	if logLevel == "debug" {
		return slog.LevelDebug
	}
	// default to info if unknown
	slog.With(slog.String("log_level", logLevel)).Info("Received invalid log level. Defaulting to INFO.")
	return slog.LevelInfo
}
