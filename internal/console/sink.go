package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/dmitrijs2005/feedupload/internal/events"
)

// DefaultInterval is how often the sink drains the queue.
const DefaultInterval = 100 * time.Millisecond

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// Source is the consumer side of an events.Queue.
type Source interface {
	Drain() []events.Event
	Wake() <-chan struct{}
	Done() <-chan struct{}
}

// Sink drains events on a timer and writes them to out.
type Sink struct {
	src         Source
	out         io.Writer
	board       *Board
	interval    time.Duration
	interactive bool
	liveLine    bool
	steps       map[string]int
	lastFlush   time.Time
}

type SinkOption func(*Sink)

func WithInterval(d time.Duration) SinkOption {
	return func(s *Sink) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithInteractive forces live-line rendering on or off.
func WithInteractive(on bool) SinkOption {
	return func(s *Sink) { s.interactive = on }
}

// NewSink renders to out. If out is a terminal, progress is redrawn on a
// single line; otherwise it is printed at 25% steps.
func NewSink(src Source, out io.Writer, opts ...SinkOption) *Sink {
	s := &Sink{
		src:      src,
		out:      out,
		board:    NewBoard(),
		interval: DefaultInterval,
		steps:    make(map[string]int),
	}
	if f, ok := out.(*os.File); ok {
		s.interactive = isTerminal(int(f.Fd()))
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sink) Board() *Board {
	return s.board
}

// Run drains until the source is closed and empty. It does not watch any
// context: the producer always closes the queue, also when cancelled.
//
// A push after a quiet period is drained at once; during bursts draining
// happens at most once per interval.
func (s *Sink) Run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flush()
		case <-s.src.Wake():
			if time.Since(s.lastFlush) >= s.interval {
				s.flush()
			}
		case <-s.src.Done():
			s.flush()
			s.clearLive()
			return
		}
	}
}

func (s *Sink) flush() {
	s.lastFlush = time.Now()
	for _, e := range s.src.Drain() {
		s.handle(e)
	}
}

func (s *Sink) handle(e events.Event) {
	row, isFile := s.board.Apply(e)

	switch e.Kind {
	case events.KindStatus:
		s.println(e.Text)
	case events.KindFileStatus:
		if e.Status != events.StatusProcessing && e.Status != events.StatusPending {
			s.println(fmt.Sprintf("  %s: %s", e.File, e.Status))
		}
	case events.KindFileProgress, events.KindFileSpeed:
		if isFile {
			s.progress(row)
		}
	case events.KindControlsEnabled:
		s.clearLive()
		s.summary()
	}
}

func (s *Sink) progress(r Row) {
	if s.interactive {
		fmt.Fprintf(s.out, "\r\033[K%s  %6.2f%%  %s  (overall %.0f%%)", r.Name, r.Progress, r.Speed, s.board.Overall())
		s.liveLine = true
		return
	}

	step := int(r.Progress) / 25
	if step > s.steps[r.Name] {
		s.steps[r.Name] = step
		fmt.Fprintf(s.out, "  %s: %d%% (%s)\n", r.Name, step*25, r.Speed)
	}
}

func (s *Sink) println(line string) {
	s.clearLive()
	fmt.Fprintln(s.out, line)
}

func (s *Sink) clearLive() {
	if s.liveLine {
		fmt.Fprint(s.out, "\r\033[K")
		s.liveLine = false
	}
}

func (s *Sink) summary() {
	rows := s.board.Rows()
	if len(rows) == 0 {
		return
	}

	fmt.Fprintln(s.out)
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSTATUS\tPROGRESS\tSPEED\tRECORD\tMEDIA URL\tLOCATION")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\t%s\t%s\n",
			r.Name, r.Status, r.Progress, r.Speed, dash(r.RecordID), dash(r.MediaURL), r.Location)
	}
	_ = tw.Flush()
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
