package journal

import "time"

// Run is one pass over a folder.
type Run struct {
	ID         string
	Folder     string
	StartedAt  time.Time
	FinishedAt *time.Time
	Total      int
	Completed  int
	Failed     int
}

// Upload is the outcome of one file within a run.
type Upload struct {
	ID         int64
	RunID      string
	FileName   string
	Path       string
	SizeBytes  int64
	Outcome    string
	RecordID   string
	MediaURL   string
	Location   string
	Error      string
	Orphaned   bool
	StartedAt  time.Time
	FinishedAt time.Time

	// Completed and Failed drive the run counters; they are not stored
	// on the upload row.
	Completed bool
	Failed    bool
}
