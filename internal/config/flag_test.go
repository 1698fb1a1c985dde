package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-d", "/videos", "-u", "https://feed.example", "-k", "key", "-j", "j.db", "-m", ":9100", "-l", "debug", "-settle", "1s"},
			expected: &Config{Folder: "/videos", FeedURL: "https://feed.example", APIKey: "key", JournalPath: "j.db",
				MetricsAddr: ":9100", LogLevel: "debug", SettleDelay: time.Second},
		},
		{
			name:     "foreign flags and commands ignored",
			args:     []string{"-c", "api.json", "orphans", "-d", "/v"},
			expected: &Config{Folder: "/v"},
		},
		{
			name:    "bad duration",
			args:    []string{"-settle", "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
