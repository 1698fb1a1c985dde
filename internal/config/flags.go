package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/feedupload/internal/flagx"
)

// SettingFlags lists the value-taking flags handled by this package,
// including the config file flags. The CLI uses it to find the subcommand.
var SettingFlags = []string{"-c", "-config", "--config", "-d", "-u", "-k", "-j", "-m", "-l", "-settle"}

// parseFlags populates selected Config fields from command-line flags.
//
// The function filters args to the flags it knows about, using
// flagx.FilterArgs, so subcommands and foreign flags do not interfere.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, []string{"-d", "-u", "-k", "-j", "-m", "-l", "-settle"})

	fs := flag.NewFlagSet("feedupload", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Folder, "d", cfg.Folder, "folder to scan for video files")
	fs.StringVar(&cfg.FeedURL, "u", cfg.FeedURL, "base URL of the feed service")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "feed API key")
	fs.StringVar(&cfg.JournalPath, "j", cfg.JournalPath, "journal database path (empty disables)")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "address to serve /metrics on")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.DurationVar(&cfg.SettleDelay, "settle", cfg.SettleDelay, "delay between upload and finalize")

	if err := fs.Parse(filtered); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
