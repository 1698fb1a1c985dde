// Package app wires configuration, the feed client, the transfer engine,
// the journal and the console sink into the feedupload commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/feedupload/internal/config"
	"github.com/dmitrijs2005/feedupload/internal/console"
	"github.com/dmitrijs2005/feedupload/internal/feed"
	"github.com/dmitrijs2005/feedupload/internal/journal"
	"github.com/dmitrijs2005/feedupload/internal/logging"
	"github.com/dmitrijs2005/feedupload/internal/metrics"
	"github.com/dmitrijs2005/feedupload/internal/transfer"
)

// Commands understood by Run.
const (
	CommandUpload  = "upload"
	CommandOrphans = "orphans"
	CommandHistory = "history"
)

// DefaultHistoryLimit is how many journal entries the history command shows.
const DefaultHistoryLimit = 20

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrJournalDisabled = errors.New("journal is disabled")
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	out      io.Writer
	metrics  *metrics.Metrics
	journal  *journal.Journal
	feed     *feed.Client
	engine   *transfer.Engine
	sinkOpts []console.SinkOption
	feedOpts []feed.Option
	xferOpts []transfer.Option
}

type Option func(*App)

// WithOutput sets where progress and reports are written. Defaults to
// os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

func WithLogger(l logging.Logger) Option {
	return func(a *App) { a.logger = l }
}

func WithSinkOptions(opts ...console.SinkOption) Option {
	return func(a *App) { a.sinkOpts = append(a.sinkOpts, opts...) }
}

// WithFeedOptions appends options for the feed client, e.g. a custom
// http.Client.
func WithFeedOptions(opts ...feed.Option) Option {
	return func(a *App) { a.feedOpts = append(a.feedOpts, opts...) }
}

func WithTransferOptions(opts ...transfer.Option) Option {
	return func(a *App) { a.xferOpts = append(a.xferOpts, opts...) }
}

// NewApp builds an App from c. A journal that cannot be opened is logged
// and disabled; uploads still run without it.
func NewApp(ctx context.Context, c *config.Config, opts ...Option) (*App, error) {
	if c == nil {
		return nil, errors.New("nil config")
	}

	a := &App{config: c, out: os.Stdout}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.New(os.Stderr, c.LogLevel, c.LogFormat)
	}

	a.metrics = metrics.New()

	feedOpts := append([]feed.Option{
		feed.WithLogger(a.logger.With("component", "feed")),
		feed.WithObserver(a.metrics.ObserveCall),
	}, a.feedOpts...)
	a.feed = feed.New(c.FeedURL, c.APIKey, feedOpts...)

	xferOpts := append([]transfer.Option{
		transfer.WithLogger(a.logger.With("component", "transfer")),
		transfer.WithRetries(c.MaxRetries, c.BackoffFactor),
		transfer.WithRetryHook(a.metrics.ObserveRetry),
	}, a.xferOpts...)
	a.engine = transfer.New(xferOpts...)

	if c.JournalPath != "" {
		j, err := journal.Open(ctx, c.JournalPath, a.logger.With("component", "journal"))
		if err != nil {
			a.logger.Warn(ctx, "journal disabled", "path", c.JournalPath, "error", err)
		} else {
			a.journal = j
		}
	}

	return a, nil
}

// Close releases the journal, if any.
func (a *App) Close() error {
	if a.journal == nil {
		return nil
	}
	return a.journal.Close()
}

// Run executes one command. An empty command means upload.
func (a *App) Run(ctx context.Context, command string) error {
	switch command {
	case "", CommandUpload:
		_, err := a.Upload(ctx)
		return err
	case CommandOrphans:
		return a.Orphans(ctx)
	case CommandHistory:
		return a.History(ctx, DefaultHistoryLimit)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
}
