package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultConfigFile is read when no -c/-config flag is given and the file
// exists in the working directory.
const DefaultConfigFile = "api.json"

// ErrMissingSetting is returned when a required setting is empty.
var ErrMissingSetting = errors.New("missing required setting")

// Config holds runtime settings for the feedupload CLI.
//
// Units: SettleDelay and BackoffFactor are time.Duration values.
type Config struct {
	APIKey        string
	FeedURL       string
	Folder        string
	JournalPath   string
	MetricsAddr   string
	LogLevel      string
	LogFormat     string
	SettleDelay   time.Duration
	BackoffFactor time.Duration
	MaxRetries    int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Folder = "."
	c.JournalPath = "feedupload.db"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.SettleDelay = 5 * time.Second
	c.BackoffFactor = 300 * time.Millisecond
	c.MaxRetries = 3
}

// Validate checks required settings and normalizes the feed URL.
func (c *Config) Validate() error {
	c.FeedURL = strings.TrimRight(strings.TrimSpace(c.FeedURL), "/")

	if c.APIKey == "" {
		return fmt.Errorf("%w: api_key", ErrMissingSetting)
	}
	if c.FeedURL == "" {
		return fmt.Errorf("%w: microfeed_url", ErrMissingSetting)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle delay must not be negative, got %s", c.SettleDelay)
	}
	return nil
}

// LoadConfig constructs a Config from defaults, JSON, environment and the
// given command-line arguments (usually os.Args[1:]). Later sources take
// precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
