package console

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/feedupload/internal/events"
)

func TestBoard_ApplyKeepsOrderAndReplacesRows(t *testing.T) {
	b := NewBoard()
	for _, e := range []events.Event{
		events.Status("Scanning"),
		events.FileQueued("b.mp4", "/v/b.mp4", 20),
		events.FileQueued("a.mp4", "/v/a.mp4", 10),
		events.FileStatusChanged("a.mp4", events.StatusProcessing),
		events.FileRecordID("a.mp4", "7"),
		events.FileMediaURL("a.mp4", "https://m/a"),
		events.FileProgress("a.mp4", 50),
		events.FileSpeed("a.mp4", "1.00 KB/s"),
		events.FileStatusChanged("a.mp4", events.StatusCompleted),
		events.FileLocation("a.mp4", "/v/processed/a.mp4"),
		events.OverallProgress(50),
	} {
		b.Apply(e)
	}

	want := []Row{
		{Name: "b.mp4", Status: events.StatusPending, Speed: "0 KB/s", Location: "/v/b.mp4", Size: 20},
		{
			Name:     "a.mp4",
			Status:   events.StatusCompleted,
			Progress: 50,
			Speed:    "1.00 KB/s",
			Location: "/v/processed/a.mp4",
			RecordID: "7",
			MediaURL: "https://m/a",
			Size:     10,
		},
	}
	if diff := cmp.Diff(want, b.Rows()); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Scanning", b.Status())
	assert.Equal(t, 50.0, b.Overall())
	assert.False(t, b.Done())
}

func TestBoard_RowsAreSnapshots(t *testing.T) {
	b := NewBoard()
	b.Apply(events.FileQueued("a.mp4", "/v/a.mp4", 1))

	before := b.Rows()
	b.Apply(events.FileProgress("a.mp4", 90))

	assert.Equal(t, 0.0, before[0].Progress)
	r, ok := b.Row("a.mp4")
	assert.True(t, ok)
	assert.Equal(t, 90.0, r.Progress)
}

func TestBoard_ControlsEnabled(t *testing.T) {
	b := NewBoard()
	_, isFile := b.Apply(events.ControlsEnabled())
	assert.False(t, isFile)
	assert.True(t, b.Done())
}
