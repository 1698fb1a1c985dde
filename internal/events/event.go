// Package events carries pipeline notifications from the upload worker to
// whoever renders them. Events are plain values; once pushed they are never
// modified.
package events

import "fmt"

// Kind identifies what an Event reports.
type Kind int

const (
	KindStatus Kind = iota + 1
	KindOverallProgress
	KindFileQueued
	KindFileStatus
	KindFileProgress
	KindFileSpeed
	KindFileRecordID
	KindFileMediaURL
	KindFileLocation
	KindControlsEnabled
)

var kindNames = map[Kind]string{
	KindStatus:          "status",
	KindOverallProgress: "overall_progress",
	KindFileQueued:      "file_queued",
	KindFileStatus:      "file_status",
	KindFileProgress:    "file_progress",
	KindFileSpeed:       "file_speed",
	KindFileRecordID:    "file_record_id",
	KindFileMediaURL:    "file_media_url",
	KindFileLocation:    "file_location",
	KindControlsEnabled: "controls_enabled",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// FileStatus is the per-file status shown to the user.
type FileStatus string

const (
	StatusPending      FileStatus = "Pending"
	StatusProcessing   FileStatus = "Processing"
	StatusTooLarge     FileStatus = "Too Large"
	StatusError        FileStatus = "Error"
	StatusUploadFailed FileStatus = "Upload Failed"
	StatusCompleted    FileStatus = "Completed"
)

// Event is one notification. Only the fields relevant to Kind are set.
type Event struct {
	Kind    Kind
	File    string     // file name, for per-file kinds
	Text    string     // status line, speed, record ID, media URL or location
	Percent float64    // overall or per-file progress, 0..100
	Size    int64      // KindFileQueued
	Status  FileStatus // KindFileStatus
}

func Status(text string) Event {
	return Event{Kind: KindStatus, Text: text}
}

func Statusf(format string, args ...any) Event {
	return Status(fmt.Sprintf(format, args...))
}

func OverallProgress(pct float64) Event {
	return Event{Kind: KindOverallProgress, Percent: pct}
}

// FileQueued announces a discovered file before processing starts; path
// is its initial location.
func FileQueued(name, path string, size int64) Event {
	return Event{Kind: KindFileQueued, File: name, Text: path, Size: size}
}

func FileStatusChanged(name string, st FileStatus) Event {
	return Event{Kind: KindFileStatus, File: name, Status: st}
}

func FileProgress(name string, pct float64) Event {
	return Event{Kind: KindFileProgress, File: name, Percent: pct}
}

// FileSpeed carries a rendered throughput, e.g. "812.34 KB/s".
func FileSpeed(name, speed string) Event {
	return Event{Kind: KindFileSpeed, File: name, Text: speed}
}

func FileRecordID(name, id string) Event {
	return Event{Kind: KindFileRecordID, File: name, Text: id}
}

func FileMediaURL(name, url string) Event {
	return Event{Kind: KindFileMediaURL, File: name, Text: url}
}

func FileLocation(name, path string) Event {
	return Event{Kind: KindFileLocation, File: name, Text: path}
}

// ControlsEnabled is the last event of a run.
func ControlsEnabled() Event {
	return Event{Kind: KindControlsEnabled}
}

// FormatSpeed renders sent bytes over elapsed seconds as KB/s.
func FormatSpeed(sent int64, elapsedSeconds float64) string {
	var speed float64
	if elapsedSeconds > 0 {
		speed = float64(sent) / elapsedSeconds
	}
	return fmt.Sprintf("%.2f KB/s", speed/1024)
}
