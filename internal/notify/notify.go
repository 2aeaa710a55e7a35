package notify

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Sender delivers a notification immediately.
type Sender interface {
	Send(title, body string) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(title, body string) error

func (fn SenderFunc) Send(title, body string) error {
	return fn(title, body)
}

// Timer is the part of *time.Timer the scheduler needs.
type Timer interface {
	Stop() bool
}

// Options contains runtime options for Scheduler.
type Options struct {
	// Enabled is the initial notification permission.
	Enabled   bool
	Now       func() time.Time
	AfterFunc func(d time.Duration, f func()) Timer
	Logger    zerolog.Logger
}

// Scheduler holds pending one-shot notifications.
type Scheduler struct {
	mu        sync.Mutex
	sender    Sender
	enabled   atomic.Bool
	now       func() time.Time
	afterFunc func(time.Duration, func()) Timer
	pending   map[string]Timer
	nextID    uint64
	logger    zerolog.Logger
}

// NewScheduler creates a scheduler that delivers through sender.
func NewScheduler(sender Sender, options Options) *Scheduler {
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.AfterFunc == nil {
		options.AfterFunc = func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		}
	}
	scheduler := &Scheduler{
		sender:    sender,
		now:       options.Now,
		afterFunc: options.AfterFunc,
		pending:   make(map[string]Timer),
		logger:    options.Logger.With().Str("component", "notify").Logger(),
	}
	scheduler.enabled.Store(options.Enabled)
	return scheduler
}

// SetEnabled grants or revokes notification permission.
func (scheduler *Scheduler) SetEnabled(enabled bool) {
	scheduler.enabled.Store(enabled)
}

// Enabled reports whether notifications are permitted.
func (scheduler *Scheduler) Enabled() bool {
	return scheduler.enabled.Load()
}

// Schedule queues a notification for at. It does nothing without permission.
func (scheduler *Scheduler) Schedule(at time.Time, title, body string) {
	if !scheduler.Enabled() {
		scheduler.logger.Debug().Msg("notification not permitted")
		return
	}

	fireAt := FireTime(at)
	delay := fireAt.Sub(scheduler.now())
	if delay < 0 {
		delay = 0
	}

	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.nextID++
	id := fmt.Sprintf("alarm-%d", scheduler.nextID)
	scheduler.pending[id] = scheduler.afterFunc(delay, func() {
		scheduler.fire(id, title, body)
	})
	scheduler.logger.Info().Str("id", id).Time("fire_at", fireAt).Msg("notification scheduled")
}

// CancelAll removes every pending notification.
func (scheduler *Scheduler) CancelAll() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	for id, timer := range scheduler.pending {
		timer.Stop()
		delete(scheduler.pending, id)
	}
}

// Pending returns the number of notifications waiting to fire.
func (scheduler *Scheduler) Pending() int {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return len(scheduler.pending)
}

func (scheduler *Scheduler) fire(id, title, body string) {
	scheduler.mu.Lock()
	_, ok := scheduler.pending[id]
	delete(scheduler.pending, id)
	scheduler.mu.Unlock()
	if !ok {
		return
	}

	if err := scheduler.sender.Send(title, body); err != nil {
		scheduler.logger.Error().Err(err).Str("id", id).Msg("send notification")
		return
	}
	scheduler.logger.Info().Str("id", id).Msg("notification delivered")
}

// FireTime rebuilds at from its local calendar components at second precision.
func FireTime(at time.Time) time.Time {
	local := at.In(time.Local)
	return time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), local.Second(), 0, time.Local)
}
