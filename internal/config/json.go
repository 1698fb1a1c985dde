package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/feedupload/internal/flagx"
	"github.com/dmitrijs2005/feedupload/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer and
// zero values mean "not set" so that only present keys override defaults.
type JsonConfig struct {
	APIKey        string          `json:"api_key"`
	FeedURL       string          `json:"microfeed_url"`
	Folder        string          `json:"folder"`
	JournalPath   *string         `json:"journal_path"`
	MetricsAddr   string          `json:"metrics_addr"`
	LogLevel      string          `json:"log_level"`
	LogFormat     string          `json:"log_format"`
	SettleDelay   *timex.Duration `json:"settle_delay"`
	BackoffFactor *timex.Duration `json:"backoff_factor"`
	MaxRetries    *int            `json:"max_retries"`
}

// parseJson overlays cfg with values from a JSON file.
//
// The path comes from -c/-config. Without the flag, DefaultConfigFile is
// used if it exists; a missing default file is not an error, a missing
// explicitly named file is.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	jc.apply(cfg)
	return nil
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.APIKey, jc.APIKey)
	setString(&cfg.FeedURL, jc.FeedURL)
	setString(&cfg.Folder, jc.Folder)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)

	if jc.JournalPath != nil {
		cfg.JournalPath = *jc.JournalPath
	}
	if jc.SettleDelay != nil {
		cfg.SettleDelay = jc.SettleDelay.Duration
	}
	if jc.BackoffFactor != nil {
		cfg.BackoffFactor = jc.BackoffFactor.Duration
	}
	if jc.MaxRetries != nil {
		cfg.MaxRetries = *jc.MaxRetries
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
