package pipeline

import (
	"time"

	"github.com/dmitrijs2005/feedupload/internal/discovery"
	"github.com/dmitrijs2005/feedupload/internal/events"
)

// Outcome is the terminal result of one target.
type Outcome int

const (
	OutcomeCompleted Outcome = iota + 1
	OutcomeTooLarge
	OutcomeCreateFailed
	OutcomeCredentialFailed
	OutcomeUploadFailed
	OutcomeFinalizeFailed
)

var outcomeNames = map[Outcome]string{
	OutcomeCompleted:        "completed",
	OutcomeTooLarge:         "too_large",
	OutcomeCreateFailed:     "create_failed",
	OutcomeCredentialFailed: "credential_failed",
	OutcomeUploadFailed:     "upload_failed",
	OutcomeFinalizeFailed:   "finalize_failed",
}

// Outcomes lists every outcome, in declaration order.
func Outcomes() []Outcome {
	return []Outcome{
		OutcomeCompleted,
		OutcomeTooLarge,
		OutcomeCreateFailed,
		OutcomeCredentialFailed,
		OutcomeUploadFailed,
		OutcomeFinalizeFailed,
	}
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return "unknown"
}

// ParseOutcome is the inverse of String.
func ParseOutcome(s string) (Outcome, bool) {
	for o, name := range outcomeNames {
		if name == s {
			return o, true
		}
	}
	return 0, false
}

// FileStatus is the per-file status shown for the outcome.
func (o Outcome) FileStatus() events.FileStatus {
	switch o {
	case OutcomeCompleted:
		return events.StatusCompleted
	case OutcomeTooLarge:
		return events.StatusTooLarge
	case OutcomeUploadFailed:
		return events.StatusUploadFailed
	default:
		return events.StatusError
	}
}

// Failed reports whether the outcome counts as a failure. TooLarge is a
// policy decision, not a failure.
func (o Outcome) Failed() bool {
	return o != OutcomeCompleted && o != OutcomeTooLarge
}

// Orphaned reports whether bytes may sit in storage without a finished
// record.
func (o Outcome) Orphaned() bool {
	return o == OutcomeFinalizeFailed
}

// Result describes what happened to one target.
type Result struct {
	Target     discovery.Target
	Outcome    Outcome
	RecordID   string
	MediaURL   string
	Location   string // where the file ended up
	Uploaded   int64  // bytes accepted by storage, 0 unless the transfer succeeded
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary is what a run produced.
type Summary struct {
	Folder    string
	Total     int // targets discovered
	Results   []Result
	Cancelled bool
}

// Count returns how many results have outcome o.
func (s Summary) Count(o Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == o {
			n++
		}
	}
	return n
}

// Failed returns how many results count as failures.
func (s Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome.Failed() {
			n++
		}
	}
	return n
}
