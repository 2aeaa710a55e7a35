package notify

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (timer *fakeTimer) Stop() bool {
	wasActive := !timer.stopped
	timer.stopped = true
	return wasActive
}

type recordingSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (sender *recordingSender) Send(title, body string) error {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	sender.sent = append(sender.sent, title+": "+body)
	return sender.err
}

func newTestScheduler(enabled bool, sender Sender, now time.Time) (*Scheduler, *[]*fakeTimer) {
	timers := &[]*fakeTimer{}
	scheduler := NewScheduler(sender, Options{
		Enabled: enabled,
		Now:     func() time.Time { return now },
		AfterFunc: func(d time.Duration, f func()) Timer {
			timer := &fakeTimer{delay: d, fn: f}
			*timers = append(*timers, timer)
			return timer
		},
		Logger: zerolog.Nop(),
	})
	return scheduler, timers
}

func TestScheduleWithoutPermissionIsNoop(t *testing.T) {
	now := time.Date(2026, 10, 19, 22, 0, 0, 0, time.Local)
	scheduler, timers := newTestScheduler(false, &recordingSender{}, now)

	scheduler.Schedule(now.Add(time.Hour), "Alarm", "Time went off!")

	assert.Empty(t, *timers)
	assert.Zero(t, scheduler.Pending())
}

func TestScheduleFiresAtAlarmTime(t *testing.T) {
	now := time.Date(2026, 10, 19, 22, 0, 0, 0, time.Local)
	sender := &recordingSender{}
	scheduler, timers := newTestScheduler(true, sender, now)

	scheduler.Schedule(now.Add(90*time.Minute+500*time.Millisecond), "Alarm", "Time went off!")

	require.Len(t, *timers, 1)
	timer := (*timers)[0]
	assert.Equal(t, 90*time.Minute, timer.delay)
	assert.Equal(t, 1, scheduler.Pending())

	timer.fn()
	assert.Equal(t, []string{"Alarm: Time went off!"}, sender.sent)
	assert.Zero(t, scheduler.Pending())
}

func TestSchedulePastTimeFiresImmediately(t *testing.T) {
	now := time.Date(2026, 10, 19, 22, 0, 0, 0, time.Local)
	scheduler, timers := newTestScheduler(true, &recordingSender{}, now)

	scheduler.Schedule(now.Add(-time.Minute), "Alarm", "late")

	require.Len(t, *timers, 1)
	assert.Zero(t, (*timers)[0].delay)
}

func TestCancelAllStopsPending(t *testing.T) {
	now := time.Date(2026, 10, 19, 22, 0, 0, 0, time.Local)
	sender := &recordingSender{}
	scheduler, timers := newTestScheduler(true, sender, now)

	scheduler.Schedule(now.Add(time.Hour), "Alarm", "one")
	scheduler.Schedule(now.Add(2*time.Hour), "Alarm", "two")
	require.Equal(t, 2, scheduler.Pending())

	scheduler.CancelAll()

	assert.Zero(t, scheduler.Pending())
	for _, timer := range *timers {
		assert.True(t, timer.stopped)
	}
	// A timer that already started firing must not deliver after cancellation.
	(*timers)[0].fn()
	assert.Empty(t, sender.sent)
}

func TestPermissionCanBeGrantedLater(t *testing.T) {
	now := time.Date(2026, 10, 19, 22, 0, 0, 0, time.Local)
	scheduler, timers := newTestScheduler(false, &recordingSender{}, now)

	scheduler.SetEnabled(true)
	assert.True(t, scheduler.Enabled())
	scheduler.Schedule(now.Add(time.Hour), "Alarm", "body")

	assert.Len(t, *timers, 1)
}

func TestSendFailureIsSwallowed(t *testing.T) {
	now := time.Date(2026, 10, 19, 22, 0, 0, 0, time.Local)
	sender := &recordingSender{err: errors.New("no notification daemon")}
	scheduler, timers := newTestScheduler(true, sender, now)

	scheduler.Schedule(now.Add(time.Minute), "Alarm", "body")
	(*timers)[0].fn()

	assert.Len(t, sender.sent, 1)
	assert.Zero(t, scheduler.Pending())
}

func TestFireTimeUsesLocalCalendarComponents(t *testing.T) {
	at := time.Date(2026, 10, 20, 6, 30, 15, 999, time.UTC)
	fire := FireTime(at)

	assert.Equal(t, time.Local, fire.Location())
	assert.True(t, fire.Equal(at.Truncate(time.Second)))
	assert.Zero(t, fire.Nanosecond())
}

func TestSchedulerWithRealTimers(t *testing.T) {
	delivered := make(chan string, 1)
	scheduler := NewScheduler(SenderFunc(func(title, body string) error {
		delivered <- body
		return nil
	}), Options{Enabled: true, Logger: zerolog.Nop()})

	scheduler.Schedule(time.Now().Add(-time.Second), "Alarm", "now")

	select {
	case body := <-delivered:
		assert.Equal(t, "now", body)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}
}
