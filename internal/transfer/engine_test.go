package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, size int) (string, []byte) {
	t.Helper()
	data := bytes.Repeat([]byte("0123456789abcdef"), size/16+1)[:size]
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path, data
}

func fastEngine(opts ...Option) *Engine {
	return New(append([]Option{WithRetries(3, time.Millisecond)}, opts...)...)
}

func TestTransfer_StreamsFileWithProgress(t *testing.T) {
	path, data := writeFile(t, 100_000)

	var (
		received []byte
		header   http.Header
		length   int64
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		header = r.Header.Clone()
		length = r.ContentLength
		received, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var (
		mu     sync.Mutex
		points [][2]int64
	)
	err := fastEngine(WithChunkSize(8<<10)).Transfer(context.Background(), path, srv.URL, func(sent, total int64) {
		mu.Lock()
		points = append(points, [2]int64{sent, total})
		mu.Unlock()
	})
	require.NoError(t, err)

	assert.Equal(t, data, received)
	assert.Equal(t, int64(len(data)), length)
	assert.Equal(t, "application/octet-stream", header.Get("Content-Type"))

	require.NotEmpty(t, points)
	prev := int64(0)
	for _, p := range points {
		assert.GreaterOrEqual(t, p[0], prev)
		assert.LessOrEqual(t, p[0]-prev, int64(8<<10))
		assert.Equal(t, int64(len(data)), p[1])
		prev = p[0]
	}
	assert.Equal(t, int64(len(data)), prev)
}

func TestTransfer_EachAttemptStartsAtZero(t *testing.T) {
	path, _ := writeFile(t, 10)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var (
		mu     sync.Mutex
		points [][2]int64
	)
	err := fastEngine().Transfer(context.Background(), path, srv.URL, func(sent, total int64) {
		mu.Lock()
		points = append(points, [2]int64{sent, total})
		mu.Unlock()
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, [][2]int64{{0, 10}, {10, 10}, {0, 10}, {10, 10}}, points)
}

func TestTransfer_AcceptedStatuses(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusCreated, http.StatusNoContent} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			path, _ := writeFile(t, 10)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				w.WriteHeader(code)
			}))
			defer srv.Close()

			require.NoError(t, fastEngine().Transfer(context.Background(), path, srv.URL, nil))
		})
	}
}

func TestTransfer_RetriesTransientStatusThenGivesUp(t *testing.T) {
	path, _ := writeFile(t, 1024)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var waits []time.Duration
	eng := fastEngine(WithRetryHook(func(attempt int, wait time.Duration) {
		waits = append(waits, wait)
	}))

	err := eng.Transfer(context.Background(), path, srv.URL, nil)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.EqualValues(t, 4, calls.Load())

	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 4, te.Attempts)
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond}, waits)
}

func TestTransfer_RecoversAfterTransientFailure(t *testing.T) {
	path, data := writeFile(t, 4096)

	var calls atomic.Int32
	var last []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		last = b
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	require.NoError(t, fastEngine().Transfer(context.Background(), path, srv.URL, nil))
	assert.EqualValues(t, 2, calls.Load())
	assert.Equal(t, data, last)
}

func TestTransfer_ClientErrorIsNotRetried(t *testing.T) {
	path, _ := writeFile(t, 10)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, "Request has expired")
	}))
	defer srv.Close()

	err := fastEngine().Transfer(context.Background(), path, srv.URL, nil)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrRejected)
	assert.False(t, errors.Is(err, ErrRetriesExhausted))
	assert.EqualValues(t, 1, calls.Load())

	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusForbidden, te.StatusCode)
	assert.Equal(t, "Request has expired", te.Body)
	assert.Contains(t, err.Error(), "403")
}

func TestTransfer_TransportErrorsAreRetried(t *testing.T) {
	path, _ := writeFile(t, 10)

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var retries int
	eng := fastEngine(WithRetryHook(func(int, time.Duration) { retries++ }))
	err := eng.Transfer(context.Background(), path, url, nil)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 3, retries)

	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 4, te.Attempts)
	assert.Zero(t, te.StatusCode)
	assert.NotNil(t, te.Cause)
}

func TestTransfer_MissingFile(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	err := fastEngine().Transfer(context.Background(), filepath.Join(t.TempDir(), "gone.mp4"), srv.URL, nil)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrSource)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, calls.Load())
}

func TestTransfer_StalledAttemptIsCancelled(t *testing.T) {
	path, _ := writeFile(t, 10)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	eng := New(WithRetries(0, time.Millisecond), WithStallTimeout(50*time.Millisecond))

	start := time.Now()
	err := eng.Transfer(context.Background(), path, srv.URL, nil)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrStalled)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestTransfer_ContextCancelledStopsRetrying(t *testing.T) {
	path, _ := writeFile(t, 10)

	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		cancel()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := New(WithRetries(3, time.Second)).Transfer(ctx, path, srv.URL, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
