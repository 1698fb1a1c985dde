// Package pipeline runs the per-file upload state machine: size gate,
// record creation, upload credential, byte transfer, settle delay, record
// finalization and relocation of the source file.
//
// Targets are processed one at a time in discovery order. Every failure is
// contained to its target; the run always moves on to the next file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/feedupload/internal/common"
	"github.com/dmitrijs2005/feedupload/internal/discovery"
	"github.com/dmitrijs2005/feedupload/internal/events"
	"github.com/dmitrijs2005/feedupload/internal/feed"
	"github.com/dmitrijs2005/feedupload/internal/filex"
	"github.com/dmitrijs2005/feedupload/internal/logging"
)

// DefaultSizeLimit is 4.8 GiB, rounded down: larger files are never sent.
const DefaultSizeLimit int64 = 5153960755

// DefaultSettleDelay is the pause between a finished transfer and the
// fetch/finalize calls.
const DefaultSettleDelay = 5 * time.Second

// Status lines that callers may match on.
const (
	MsgNoFiles      = "No video files to upload. Exiting."
	MsgAllProcessed = "All files processed."
	MsgCancelled    = "Upload cancelled."
)

// ErrCancelled marks a target interrupted between two steps.
var ErrCancelled = errors.New("cancelled before next step")

// Orchestrator drives targets through the upload state machine.
type Orchestrator struct {
	discoverer  Discoverer
	feed        FeedClient
	transfer    Transferer
	emit        Emitter
	recorders   []Recorder
	logger      logging.Logger
	sizeLimit   int64
	settleDelay time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	now         func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

func WithRecorders(r ...Recorder) Option {
	return func(o *Orchestrator) { o.recorders = append(o.recorders, r...) }
}

// WithSizeLimit overrides DefaultSizeLimit. Files strictly larger than n
// bytes are moved aside.
func WithSizeLimit(n int64) Option {
	return func(o *Orchestrator) { o.sizeLimit = n }
}

func WithSettleDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.settleDelay = d }
}

// WithSleep replaces the function used for the settle delay.
func WithSleep(f func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) { o.sleep = f }
}

// WithClock replaces time.Now for timestamps and throughput.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func New(d Discoverer, fc FeedClient, tr Transferer, emit Emitter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		discoverer:  d,
		feed:        fc,
		transfer:    tr,
		emit:        emit,
		logger:      logging.Discard(),
		sizeLimit:   DefaultSizeLimit,
		settleDelay: DefaultSettleDelay,
		sleep:       sleepContext,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run discovers the targets of folder and processes them in order.
//
// Cancelling ctx stops the run at the next step boundary. A transfer or
// remote call already in flight finishes first. Targets not yet started
// keep status Pending.
//
// The only error returned is a discovery failure; per-file failures are
// reported through events and the Summary.
func (o *Orchestrator) Run(ctx context.Context, folder string) (Summary, error) {
	sum := Summary{Folder: folder}
	defer o.emit.Push(events.ControlsEnabled())

	o.emit.Push(events.Statusf("Scanning folder %s for video files...", folder))
	targets, err := o.discoverer.Discover(ctx, folder)
	if err != nil {
		o.logger.Error(ctx, "discovery failed", "folder", folder, "error", err)
		o.emit.Push(events.Statusf("Failed to scan folder %s: %v", folder, err))
		return sum, fmt.Errorf("discover %s: %w", folder, err)
	}

	sum.Total = len(targets)
	if len(targets) == 0 {
		o.logger.Warn(ctx, "no video files found", "folder", folder)
		o.emit.Push(events.Status(MsgNoFiles))
		return sum, nil
	}

	for _, t := range targets {
		o.emit.Push(events.FileQueued(t.Name, t.Path, t.Size))
	}

	// Remote calls and transfers are not interrupted; ctx is only consulted
	// between steps.
	work := context.WithoutCancel(ctx)

	for i, t := range targets {
		if ctx.Err() != nil {
			sum.Cancelled = true
			break
		}

		o.emit.Push(events.Statusf("Processing file %s (%d/%d)", t.Name, i+1, len(targets)))
		o.emit.Push(events.FileStatusChanged(t.Name, events.StatusProcessing))

		res := o.process(ctx, work, t)
		sum.Results = append(sum.Results, res)
		if errors.Is(res.Err, ErrCancelled) {
			sum.Cancelled = true
		}
		for _, r := range o.recorders {
			r.Record(work, res)
		}

		o.emit.Push(events.OverallProgress(float64(i+1) / float64(len(targets)) * 100))
	}

	if sum.Cancelled {
		o.logger.Warn(ctx, "run cancelled", "processed", len(sum.Results), "total", sum.Total)
		o.emit.Push(events.Status(MsgCancelled))
		return sum, nil
	}

	o.logger.Info(ctx, "run finished",
		"total", sum.Total,
		"completed", sum.Count(OutcomeCompleted),
		"failed", sum.Failed())
	o.emit.Push(events.Status(MsgAllProcessed))
	return sum, nil
}

// fileRun tracks one target through the state machine.
type fileRun struct {
	o      *Orchestrator
	ctx    context.Context // cancellation
	work   context.Context // remote calls
	log    logging.Logger
	target discovery.Target
	state  State
	res    Result
}

func (o *Orchestrator) process(ctx, work context.Context, t discovery.Target) Result {
	fr := &fileRun{
		o:      o,
		ctx:    ctx,
		work:   work,
		log:    o.logger.With("file", t.Name),
		target: t,
		state:  StatePending,
		res:    Result{Target: t, Location: t.Path, StartedAt: o.now()},
	}
	fr.run()
	fr.res.FinishedAt = o.now()
	return fr.res
}

// proceed reports whether the next step may start.
func (fr *fileRun) proceed() error {
	if err := fr.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return nil
}

// enter moves to state to. The transition table is enforced; a violation
// is a programming error and is logged loudly.
func (fr *fileRun) enter(to State) {
	if err := ValidateTransition(fr.state, to); err != nil {
		fr.log.Error(fr.work, "state machine violation", "error", err)
	}
	fr.state = to
	if o, ok := OutcomeOf(to); ok {
		fr.res.Outcome = o
	}
}

// fail ends the target in a failure state with one status line and one
// per-file status.
func (fr *fileRun) fail(to State, err error, format string, args ...any) {
	fr.enter(to)
	fr.res.Err = err

	msg := fmt.Sprintf(format, args...)
	fr.log.Error(fr.work, msg, "outcome", fr.res.Outcome, "error", err)
	fr.o.emit.Push(events.Statusf("%s: %v", msg, err))
	fr.o.emit.Push(events.FileStatusChanged(fr.target.Name, fr.res.Outcome.FileStatus()))
}

func (fr *fileRun) run() {
	t := fr.target
	emit := fr.o.emit

	// 1. size gate
	if t.Size > fr.o.sizeLimit {
		fr.tooLarge()
		return
	}
	fr.enter(StateSizeChecked)

	// 2. record
	if err := fr.proceed(); err != nil {
		fr.fail(StateCreateFailed, err, "Skipping file %s", t.Name)
		return
	}
	id, err := fr.o.feed.CreateRecord(fr.work, t.Title, common.RecordStatusPublished)
	if err != nil {
		fr.fail(StateCreateFailed, err, "Skipping file %s due to record creation failure", t.Name)
		return
	}
	fr.enter(StateRecordCreated)
	fr.res.RecordID = id
	emit.Push(events.FileRecordID(t.Name, id))

	// 3. credential
	if err := fr.proceed(); err != nil {
		fr.fail(StateCredentialFailed, err, "Skipping upload for %s", t.Name)
		return
	}
	cred, err := fr.o.feed.RequestUploadCredential(fr.work, id, common.MediaCategoryVideo, t.Path)
	if err != nil {
		fr.fail(StateCredentialFailed, err, "Skipping upload for %s due to upload credential failure", t.Name)
		return
	}
	fr.enter(StateCredentialObtained)
	fr.res.MediaURL = cred.MediaURL
	emit.Push(events.FileMediaURL(t.Name, cred.MediaURL))

	// 4. transfer
	if err := fr.proceed(); err != nil {
		fr.fail(StateUploadFailed, err, "Skipping upload for %s", t.Name)
		return
	}
	fr.log.Info(fr.work, "uploading", "record_id", id, "size", t.Size)
	if err := fr.o.transfer.Transfer(fr.work, t.Path, cred.UploadURL, fr.progress()); err != nil {
		fr.fail(StateUploadFailed, err, "Failed to upload %s", t.Name)
		return
	}
	fr.enter(StateUploaded)

	size := t.Size
	if info, err := os.Stat(t.Path); err == nil {
		size = info.Size()
	} else {
		fr.log.Warn(fr.work, "cannot re-read size, using discovered size", "error", err)
	}
	fr.res.Uploaded = size

	// 5. settle
	if err := fr.o.sleep(fr.work, fr.o.settleDelay); err != nil {
		fr.fail(StateFinalizeFailed, err, "Failed to finalize record %s for %s", id, t.Name)
		return
	}

	// 6. fetch + finalize
	if err := fr.proceed(); err != nil {
		fr.fail(StateFinalizeFailed, err, "Failed to finalize record %s for %s", id, t.Name)
		return
	}
	if _, err := fr.o.feed.FetchRecord(fr.work, id); err != nil {
		fr.fail(StateFinalizeFailed, err, "Failed to fetch record %s. Skipping update", id)
		return
	}

	attachment := feed.Attachment{
		Category:    common.MediaCategoryVideo,
		URL:         cred.MediaURL,
		MimeType:    t.ContentType,
		SizeInBytes: size,
	}
	if err := fr.o.feed.FinalizeRecord(fr.work, id, attachment, t.Title, common.RecordStatusPublished); err != nil {
		fr.fail(StateFinalizeFailed, err, "Failed to update record %s with attachment for %s", id, t.Name)
		return
	}
	fr.enter(StateFinalized)

	// 7. completion
	fr.log.Info(fr.work, "processed", "record_id", id, "media_url", cred.MediaURL)
	emit.Push(events.Statusf("Successfully processed %s.", t.Name))
	emit.Push(events.FileStatusChanged(t.Name, events.StatusCompleted))
	fr.relocate(common.ProcessedDirName)
	emit.Push(events.FileProgress(t.Name, 100))
}

func (fr *fileRun) tooLarge() {
	t := fr.target
	fr.enter(StateTooLarge)

	fr.log.Warn(fr.work, "file exceeds size limit", "size", t.Size, "limit", fr.o.sizeLimit)
	if fr.relocate(common.TooLargeDirName) {
		fr.o.emit.Push(events.Statusf("File %s is too large (>4.8GB). Moved to '%s' folder.", t.Name, common.TooLargeDirName))
	}
	fr.o.emit.Push(events.FileStatusChanged(t.Name, events.StatusTooLarge))
}

// relocate moves the target into subdir of its folder. A failed move is
// reported and logged; the outcome stands.
func (fr *fileRun) relocate(subdir string) bool {
	t := fr.target
	dst, err := filex.MoveInto(t.Path, filepath.Dir(t.Path), subdir)
	if err != nil {
		fr.log.Error(fr.work, "move failed", "dir", subdir, "error", err)
		fr.o.emit.Push(events.Statusf("Failed to move %s to '%s' folder: %v", t.Name, subdir, err))
		if fr.res.Err == nil {
			fr.res.Err = err
		}
		return false
	}

	fr.res.Location = dst
	if subdir == common.ProcessedDirName {
		fr.o.emit.Push(events.Statusf("Moved %s to '%s' folder.", t.Name, subdir))
	}
	fr.o.emit.Push(events.FileLocation(t.Name, dst))
	return true
}

// progress turns transfer callbacks into percentage and throughput events.
// A zero count marks the start of an attempt and restarts the speed clock.
func (fr *fileRun) progress() func(sent, total int64) {
	name := fr.target.Name
	start := fr.o.now()

	return func(sent, total int64) {
		now := fr.o.now()
		if sent == 0 {
			start = now
			fr.o.emit.Push(events.FileProgress(name, 0))
			return
		}

		pct := 100.0
		if total > 0 {
			pct = float64(sent) / float64(total) * 100
		}
		fr.o.emit.Push(events.FileProgress(name, pct))
		fr.o.emit.Push(events.FileSpeed(name, events.FormatSpeed(sent, now.Sub(start).Seconds())))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
