package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue()
	q.Push(Status("a"))
	q.Push(FileProgress("x.mp4", 10))
	q.Push(ControlsEnabled())

	got := q.Drain()
	require.Len(t, got, 3)
	assert.Equal(t, KindStatus, got[0].Kind)
	assert.Equal(t, KindFileProgress, got[1].Kind)
	assert.Equal(t, KindControlsEnabled, got[2].Kind)

	assert.Nil(t, q.Drain())
	assert.Zero(t, q.Len())
}

func TestQueue_PushNeverBlocks(t *testing.T) {
	q := NewQueue()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100_000; i++ {
			q.Push(FileProgress("big.mkv", float64(i)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("push blocked without a consumer")
	}
	assert.Equal(t, 100_000, q.Len())
}

func TestQueue_ConcurrentDrainKeepsOrder(t *testing.T) {
	q := NewQueue()
	const n = 10_000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Push(OverallProgress(float64(i)))
		}
		q.Close()
	}()

	var got []Event
	for {
		select {
		case <-q.Wake():
			got = append(got, q.Drain()...)
			continue
		case <-q.Done():
		}
		break
	}
	got = append(got, q.Drain()...)
	wg.Wait()

	require.Len(t, got, n)
	for i, e := range got {
		assert.Equal(t, float64(i), e.Percent)
	}
}

func TestQueue_CloseDropsLatePushes(t *testing.T) {
	q := NewQueue()
	q.Push(Status("kept"))
	q.Close()
	q.Close()
	q.Push(Status("dropped"))

	got := q.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0].Text)

	select {
	case <-q.Done():
	default:
		t.Fatal("done not closed")
	}
}

func TestFormatSpeed(t *testing.T) {
	assert.Equal(t, "2.00 KB/s", FormatSpeed(4096, 2))
	assert.Equal(t, "0.00 KB/s", FormatSpeed(4096, 0))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "file_speed", KindFileSpeed.String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}
