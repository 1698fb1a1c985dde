package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "FEEDUPLOAD"

// envConfig mirrors the settings that may come from the environment. It is
// pre-filled from Config so unset variables keep earlier values.
type envConfig struct {
	APIKey        string        `envconfig:"API_KEY"`
	FeedURL       string        `envconfig:"URL"`
	Folder        string        `envconfig:"FOLDER"`
	JournalPath   string        `envconfig:"JOURNAL"`
	MetricsAddr   string        `envconfig:"METRICS_ADDR"`
	LogLevel      string        `envconfig:"LOG_LEVEL"`
	LogFormat     string        `envconfig:"LOG_FORMAT"`
	SettleDelay   time.Duration `envconfig:"SETTLE_DELAY"`
	BackoffFactor time.Duration `envconfig:"BACKOFF_FACTOR"`
}

// parseEnv overlays cfg with FEEDUPLOAD_* environment variables.
func parseEnv(cfg *Config) error {
	ec := envConfig{
		APIKey:        cfg.APIKey,
		FeedURL:       cfg.FeedURL,
		Folder:        cfg.Folder,
		JournalPath:   cfg.JournalPath,
		MetricsAddr:   cfg.MetricsAddr,
		LogLevel:      cfg.LogLevel,
		LogFormat:     cfg.LogFormat,
		SettleDelay:   cfg.SettleDelay,
		BackoffFactor: cfg.BackoffFactor,
	}

	if err := envconfig.Process(envPrefix, &ec); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	cfg.APIKey = ec.APIKey
	cfg.FeedURL = ec.FeedURL
	cfg.Folder = ec.Folder
	cfg.JournalPath = ec.JournalPath
	cfg.MetricsAddr = ec.MetricsAddr
	cfg.LogLevel = ec.LogLevel
	cfg.LogFormat = ec.LogFormat
	cfg.SettleDelay = ec.SettleDelay
	cfg.BackoffFactor = ec.BackoffFactor
	return nil
}
