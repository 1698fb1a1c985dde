// Package console renders pipeline events on a terminal: status lines as
// they arrive, a live progress line, and a summary table at the end.
package console

import "github.com/dmitrijs2005/feedupload/internal/events"

// Row is the display state of one file. Rows are values; Apply replaces
// them rather than mutating.
type Row struct {
	Name     string
	Status   events.FileStatus
	Progress float64
	Speed    string
	Location string
	RecordID string
	MediaURL string
	Size     int64
}

// Board aggregates events into per-file rows, keeping discovery order.
type Board struct {
	order   []string
	rows    map[string]Row
	status  string
	overall float64
	done    bool
}

func NewBoard() *Board {
	return &Board{rows: make(map[string]Row)}
}

// Apply folds one event into the board and returns the affected row, if
// the event concerns a file.
func (b *Board) Apply(e events.Event) (Row, bool) {
	switch e.Kind {
	case events.KindStatus:
		b.status = e.Text
		return Row{}, false
	case events.KindOverallProgress:
		b.overall = e.Percent
		return Row{}, false
	case events.KindControlsEnabled:
		b.done = true
		return Row{}, false
	}

	if e.File == "" {
		return Row{}, false
	}

	row, ok := b.rows[e.File]
	if !ok {
		b.order = append(b.order, e.File)
		row = Row{Name: e.File, Status: events.StatusPending, Speed: "0 KB/s"}
	}

	switch e.Kind {
	case events.KindFileQueued:
		row.Location = e.Text
		row.Size = e.Size
	case events.KindFileStatus:
		row.Status = e.Status
	case events.KindFileProgress:
		row.Progress = e.Percent
	case events.KindFileSpeed:
		row.Speed = e.Text
	case events.KindFileRecordID:
		row.RecordID = e.Text
	case events.KindFileMediaURL:
		row.MediaURL = e.Text
	case events.KindFileLocation:
		row.Location = e.Text
	}

	b.rows[e.File] = row
	return row, true
}

// Rows returns a snapshot of every row in discovery order.
func (b *Board) Rows() []Row {
	out := make([]Row, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.rows[name])
	}
	return out
}

func (b *Board) Row(name string) (Row, bool) {
	r, ok := b.rows[name]
	return r, ok
}

func (b *Board) Status() string   { return b.status }
func (b *Board) Overall() float64 { return b.overall }
func (b *Board) Done() bool       { return b.done }
