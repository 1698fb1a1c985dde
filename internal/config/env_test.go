package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_OverridesOnlySetVariables(t *testing.T) {
	t.Setenv("FEEDUPLOAD_API_KEY", "env-key")
	t.Setenv("FEEDUPLOAD_SETTLE_DELAY", "250ms")

	cfg := &Config{FeedURL: "https://kept.example", SettleDelay: 5 * time.Second}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "https://kept.example", cfg.FeedURL)
	assert.Equal(t, 250*time.Millisecond, cfg.SettleDelay)
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	t.Setenv("FEEDUPLOAD_BACKOFF_FACTOR", "fast")

	require.Error(t, parseEnv(&Config{}))
}
