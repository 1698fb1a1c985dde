package app

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/feedupload/internal/journal"
	"github.com/dmitrijs2005/feedupload/internal/pipeline"
)

const reportTimeLayout = "2006-01-02 15:04:05"

// Orphans lists uploads whose bytes reached storage but whose record was
// never finalized.
func (a *App) Orphans(ctx context.Context) error {
	if a.journal == nil {
		return ErrJournalDisabled
	}

	uploads, err := a.journal.ListOrphans(ctx)
	if err != nil {
		return fmt.Errorf("list orphans: %w", err)
	}
	if len(uploads) == 0 {
		fmt.Fprintln(a.out, "No orphaned uploads.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FINISHED\tFILE\tRECORD\tMEDIA URL\tERROR")
	for _, u := range uploads {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			formatTime(u.FinishedAt), u.FileName, dash(u.RecordID), dash(u.MediaURL), dash(u.Error))
	}
	return tw.Flush()
}

// History lists the last limit journal entries, newest first.
func (a *App) History(ctx context.Context, limit int) error {
	if a.journal == nil {
		return ErrJournalDisabled
	}

	uploads, err := a.journal.ListRecent(ctx, limit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	if len(uploads) == 0 {
		fmt.Fprintln(a.out, "No uploads recorded yet.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FINISHED\tFILE\tSTATUS\tOUTCOME\tSIZE\tRECORD\tLOCATION")
	for _, u := range uploads {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			formatTime(u.FinishedAt), u.FileName, statusLabel(u.Outcome), outcomeLabel(u),
			u.SizeBytes, dash(u.RecordID), dash(u.Location))
	}
	return tw.Flush()
}

// statusLabel maps a stored outcome back to the per-file status shown
// during a run. Rows written by a newer version may carry outcomes this
// one does not know.
func statusLabel(outcome string) string {
	o, ok := pipeline.ParseOutcome(outcome)
	if !ok {
		return "-"
	}
	return string(o.FileStatus())
}

func outcomeLabel(u journal.Upload) string {
	if u.Orphaned {
		return u.Outcome + " (orphaned)"
	}
	return u.Outcome
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(reportTimeLayout)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
