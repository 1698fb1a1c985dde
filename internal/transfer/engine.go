// Package transfer streams a local file to a pre-authorized upload URL with
// an HTTP PUT, retrying transient failures with exponential backoff.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/feedupload/internal/logging"
	"github.com/dmitrijs2005/feedupload/internal/netx"
)

// Defaults for an Engine created without options.
const (
	DefaultChunkSize     = 32 << 10
	DefaultMaxRetries    = 3
	DefaultBackoffFactor = 300 * time.Millisecond
	DefaultStallTimeout  = 5 * time.Minute
)

var (
	successStatuses   = []int{http.StatusOK, http.StatusCreated, http.StatusNoContent}
	retryableStatuses = []int{
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	}
)

// RetryFunc is told about every failed attempt that is about to be
// repeated after wait.
type RetryFunc func(attempt int, wait time.Duration)

// Engine performs uploads. It is safe for concurrent use; every Transfer
// call gets its own backoff state.
type Engine struct {
	http          *http.Client
	logger        logging.Logger
	chunkSize     int
	maxRetries    uint64
	backoffFactor time.Duration
	stallTimeout  time.Duration
	onRetry       RetryFunc
}

// Option configures an Engine.
type Option func(*Engine)

func WithHTTPClient(hc *http.Client) Option {
	return func(e *Engine) { e.http = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithChunkSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// WithRetries sets how many times a failed attempt is repeated and the
// backoff factor: the n-th retry waits factor * 2^(n-1).
func WithRetries(maxRetries int, factor time.Duration) Option {
	return func(e *Engine) {
		if maxRetries >= 0 {
			e.maxRetries = uint64(maxRetries)
		}
		e.backoffFactor = factor
	}
}

// WithStallTimeout cancels an attempt that makes no progress for d.
// Zero disables the watchdog.
func WithStallTimeout(d time.Duration) Option {
	return func(e *Engine) { e.stallTimeout = d }
}

func WithRetryHook(f RetryFunc) Option {
	return func(e *Engine) { e.onRetry = f }
}

func New(opts ...Option) *Engine {
	e := &Engine{
		http:          netx.NewHTTPClient(0),
		logger:        logging.Discard(),
		chunkSize:     DefaultChunkSize,
		maxRetries:    DefaultMaxRetries,
		backoffFactor: DefaultBackoffFactor,
		stallTimeout:  DefaultStallTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Transfer uploads the file at path to url. onProgress may be nil; it is
// called from the goroutine reading the file, after every chunk, and the
// count restarts from zero when an attempt is retried.
//
// The returned error, if any, is an *Error.
func (e *Engine) Transfer(ctx context.Context, path, url string, onProgress ProgressFunc) error {
	var (
		attempts int
		last     *statusError
	)

	err := retry.Do(ctx, e.backoff(&attempts), func(ctx context.Context) error {
		attempts++
		status, body, err := e.attempt(ctx, path, url, onProgress)
		switch {
		case err != nil:
			var pe *os.PathError
			if errors.As(err, &pe) {
				return err
			}
			if ctx.Err() != nil {
				return err
			}
			e.logger.Warn(ctx, "upload attempt failed", "attempt", attempts, "error", err)
			return retry.RetryableError(err)
		case netx.StatusIn(status, successStatuses...):
			return nil
		default:
			last = &statusError{code: status, body: body}
			if netx.StatusIn(status, retryableStatuses...) {
				e.logger.Warn(ctx, "upload attempt failed", "attempt", attempts, "status", status)
				return retry.RetryableError(last)
			}
			return last
		}
	})
	if err == nil {
		return nil
	}

	out := &Error{Attempts: attempts, Cause: err}
	if last != nil {
		out.StatusCode = last.code
		out.Body = last.body
	}

	var se *statusError
	var pe *os.PathError
	switch {
	case errors.As(err, &pe):
		out.Kind = ErrSource
	case errors.As(err, &se) && !netx.StatusIn(se.code, retryableStatuses...):
		out.Kind = ErrRejected
		out.Cause = nil
	case ctx.Err() != nil:
		out.Kind = ctx.Err()
		out.Cause = nil
	default:
		out.Kind = ErrRetriesExhausted
		if se != nil {
			out.Cause = nil
		}
	}
	return out
}

func (e *Engine) backoff(attempts *int) retry.Backoff {
	factor := e.backoffFactor
	if factor <= 0 {
		factor = time.Nanosecond
	}
	b := retry.WithMaxRetries(e.maxRetries, retry.NewExponential(factor))
	return retry.BackoffFunc(func() (time.Duration, bool) {
		next, stop := b.Next()
		if !stop && e.onRetry != nil {
			e.onRetry(*attempts, next)
		}
		return next, stop
	})
}

// attempt performs a single PUT. A non-nil error means no response was
// received.
func (e *Engine) attempt(ctx context.Context, path, url string, onProgress ProgressFunc) (int, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, "", err
	}
	size := info.Size()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	body := &progressReader{
		r:          f,
		chunk:      e.chunkSize,
		total:      size,
		onProgress: onProgress,
	}
	if onProgress != nil {
		onProgress(0, size)
	}

	if e.stallTimeout > 0 {
		watchdog := time.AfterFunc(e.stallTimeout, func() { cancel(ErrStalled) })
		defer watchdog.Stop()
		body.onRead = func() { watchdog.Reset(e.stallTimeout) }
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return 0, "", fmt.Errorf("build request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "application/octet-stream")
	if size == 0 {
		req.Body = http.NoBody
	}

	resp, err := e.http.Do(req)
	if err != nil {
		if cause := context.Cause(ctx); errors.Is(cause, ErrStalled) {
			return 0, "", fmt.Errorf("%w: no progress for %s", ErrStalled, e.stallTimeout)
		}
		return 0, "", err
	}
	defer netx.DrainAndClose(resp)

	var snippet string
	if !netx.StatusIn(resp.StatusCode, successStatuses...) {
		snippet = netx.Snippet(resp.Body)
	}
	e.logger.Debug(ctx, "upload attempt finished", "status", resp.StatusCode, "bytes", body.sent)
	return resp.StatusCode, snippet, nil
}
