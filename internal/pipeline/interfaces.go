package pipeline

import (
	"context"

	"github.com/dmitrijs2005/feedupload/internal/discovery"
	"github.com/dmitrijs2005/feedupload/internal/events"
	"github.com/dmitrijs2005/feedupload/internal/feed"
	"github.com/dmitrijs2005/feedupload/internal/transfer"
)

// Discoverer lists the targets of one folder, in processing order.
type Discoverer interface {
	Discover(ctx context.Context, dir string) ([]discovery.Target, error)
}

// FeedClient is the remote feed service.
type FeedClient interface {
	CreateRecord(ctx context.Context, title, status string) (string, error)
	RequestUploadCredential(ctx context.Context, recordID, category, localRef string) (feed.Credential, error)
	FetchRecord(ctx context.Context, recordID string) (*feed.Record, error)
	FinalizeRecord(ctx context.Context, recordID string, attachment feed.Attachment, title, status string) error
}

// Transferer moves the bytes of one file to an upload URL.
type Transferer interface {
	Transfer(ctx context.Context, path, url string, onProgress transfer.ProgressFunc) error
}

// Emitter accepts events without blocking.
type Emitter interface {
	Push(e events.Event)
}

// Recorder is handed every terminal Result, in processing order. Recorders
// must not fail the pipeline; they log their own errors.
type Recorder interface {
	Record(ctx context.Context, r Result)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, r Result)

func (f RecorderFunc) Record(ctx context.Context, r Result) { f(ctx, r) }
