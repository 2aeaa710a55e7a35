package sound

import (
	"encoding/binary"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorderClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *recorderClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *recorderClock) Advance(d time.Duration) {
	clock.mu.Lock()
	clock.now = clock.now.Add(d)
	clock.mu.Unlock()
}

// newTestRecorder returns a recorder without an audio backend; sessions are
// opened with prepare and driven through the device callbacks directly.
func newTestRecorder(t *testing.T) (*recorder, *recorderClock, chan Event) {
	t.Helper()
	events := make(chan Event, 8)
	clock := &recorderClock{now: time.Date(2026, 10, 20, 1, 0, 0, 0, time.UTC)}
	r := &recorder{
		logger: zerolog.Nop(),
		emit:   func(event Event) { events <- event },
		now:    clock.Now,
	}
	return r, clock, events
}

func pcm(frames int) []byte {
	data := make([]byte, frames*bytesPerSample)
	for i := 0; i < frames; i++ {
		binary.LittleEndian.PutUint16(data[i*bytesPerSample:], uint16(int16(i%100)))
	}
	return data
}

func nextEvent(t *testing.T, events chan Event, eventType EventType) Event {
	t.Helper()
	select {
	case event := <-events:
		require.Equal(t, eventType, event.Type)
		return event
	case <-time.After(time.Second):
		t.Fatalf("no %s event", eventType)
		return Event{}
	}
}

func TestRecorderFinishesAfterDuration(t *testing.T) {
	r, _, events := newTestRecorder(t)
	location := filepath.Join(t.TempDir(), "night.flac")
	session, err := r.prepare(location, 100*time.Millisecond)
	require.NoError(t, err)

	r.capture(session, pcm(1000))
	r.capture(session, pcm(1000))

	event := nextEvent(t, events, EventRecordingFinished)
	assert.Equal(t, location, event.Location)
	assert.True(t, event.Successful)

	decoded, err := DecodeFLAC(location, "night")
	require.NoError(t, err)
	assert.Len(t, decoded.Samples, int(framesFor(100*time.Millisecond)))
}

func TestRecorderDeviceStopFinishesInterrupted(t *testing.T) {
	r, _, events := newTestRecorder(t)
	location := filepath.Join(t.TempDir(), "unplugged.flac")
	session, err := r.prepare(location, time.Hour)
	require.NoError(t, err)
	r.capture(session, pcm(500))

	r.deviceStopped(session)

	event := nextEvent(t, events, EventRecordingFinished)
	assert.Equal(t, location, event.Location)
	assert.False(t, event.Successful)

	// The stop that finish itself causes must not report twice.
	r.deviceStopped(session)
	select {
	case extra := <-events:
		t.Fatalf("unexpected event %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRecorderDeviceStopWhilePausedIsIgnored(t *testing.T) {
	r, _, events := newTestRecorder(t)
	session, err := r.prepare(filepath.Join(t.TempDir(), "paused.flac"), time.Hour)
	require.NoError(t, err)

	r.mu.Lock()
	r.paused = true
	r.mu.Unlock()
	r.deviceStopped(session)

	select {
	case event := <-events:
		t.Fatalf("unexpected event %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
	r.cancel()
}

func TestRecorderDetectsCaptureStall(t *testing.T) {
	r, clock, events := newTestRecorder(t)
	location := filepath.Join(t.TempDir(), "stalled.flac")
	session, err := r.prepare(location, time.Hour)
	require.NoError(t, err)

	clock.Advance(stallTimeout / 2)
	r.capture(session, pcm(200))
	clock.Advance(stallTimeout - time.Second)
	stalled, active := r.checkStall(session)
	assert.False(t, stalled)
	assert.True(t, active)

	r.mu.Lock()
	r.paused = true
	r.mu.Unlock()
	clock.Advance(time.Hour)
	stalled, active = r.checkStall(session)
	assert.False(t, stalled, "paused time is not a stall")
	assert.True(t, active)

	r.mu.Lock()
	r.paused = false
	r.mu.Unlock()
	stalled, active = r.checkStall(session)
	require.True(t, stalled)
	assert.True(t, active)

	r.finish(session, false)
	event := nextEvent(t, events, EventRecordingFinished)
	assert.Equal(t, location, event.Location)
	assert.False(t, event.Successful)

	stalled, active = r.checkStall(session)
	assert.False(t, stalled)
	assert.False(t, active)
}
