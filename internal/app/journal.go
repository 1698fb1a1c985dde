package app

import (
	"context"
	"path/filepath"

	"github.com/dmitrijs2005/feedupload/internal/discovery"
	"github.com/dmitrijs2005/feedupload/internal/journal"
	"github.com/dmitrijs2005/feedupload/internal/logging"
	"github.com/dmitrijs2005/feedupload/internal/pipeline"
)

// journalRecorder writes one journal run per Upload call. The run is
// opened once discovery knows the total, so it is tied to the discoverer.
// Journal errors are logged only.
type journalRecorder struct {
	j      *journal.Journal
	logger logging.Logger
	runID  string
}

func newJournalRecorder(j *journal.Journal, logger logging.Logger) *journalRecorder {
	return &journalRecorder{j: j, logger: logger}
}

func (r *journalRecorder) wrap(d pipeline.Discoverer) pipeline.Discoverer {
	return &journalDiscoverer{next: d, rec: r}
}

func (r *journalRecorder) start(ctx context.Context, folder string, total int) {
	if abs, err := filepath.Abs(folder); err == nil {
		folder = abs
	}
	run, err := r.j.StartRun(ctx, folder, total)
	if err != nil {
		r.logger.Warn(ctx, "journal: start run failed", "folder", folder, "error", err)
		return
	}
	r.runID = run.ID
}

// Record implements pipeline.Recorder.
func (r *journalRecorder) Record(ctx context.Context, res pipeline.Result) {
	if r.runID == "" {
		return
	}
	if err := r.j.RecordResult(ctx, r.runID, uploadFromResult(res)); err != nil {
		r.logger.Warn(ctx, "journal: record failed", "file", res.Target.Name, "error", err)
	}
}

func (r *journalRecorder) finish(ctx context.Context) {
	if r.runID == "" {
		return
	}
	if err := r.j.FinishRun(ctx, r.runID); err != nil {
		r.logger.Warn(ctx, "journal: finish run failed", "run_id", r.runID, "error", err)
	}
}

type journalDiscoverer struct {
	next pipeline.Discoverer
	rec  *journalRecorder
}

func (d *journalDiscoverer) Discover(ctx context.Context, dir string) ([]discovery.Target, error) {
	targets, err := d.next.Discover(ctx, dir)
	if err != nil {
		return nil, err
	}
	d.rec.start(context.WithoutCancel(ctx), dir, len(targets))
	return targets, nil
}

func uploadFromResult(res pipeline.Result) journal.Upload {
	u := journal.Upload{
		FileName:   res.Target.Name,
		Path:       res.Target.Path,
		SizeBytes:  res.Target.Size,
		Outcome:    res.Outcome.String(),
		RecordID:   res.RecordID,
		MediaURL:   res.MediaURL,
		Location:   res.Location,
		Orphaned:   res.Outcome.Orphaned(),
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Completed:  res.Outcome == pipeline.OutcomeCompleted,
		Failed:     res.Outcome.Failed(),
	}
	if res.Err != nil {
		u.Error = res.Err.Error()
	}
	return u
}
