package countdown

import (
	"sync"
	"time"
)

// TickerFunc starts a ticker and returns its channel plus a stop function.
type TickerFunc func(interval time.Duration) (<-chan time.Time, func())

// Options contains runtime options for Countdown.
type Options struct {
	Interval time.Duration
	Ticker   TickerFunc
	// OnTick is called after every tick that leaves time remaining.
	OnTick func(remaining time.Duration)
}

// Countdown counts down a duration in fixed ticks and calls onElapsed once at zero.
type Countdown struct {
	mu        sync.Mutex
	options   Options
	remaining time.Duration
	onElapsed func()
	fired     bool
	stopped   bool
	stopCh    chan struct{}
}

// New creates a paused countdown. Call Resume to start ticking.
func New(duration time.Duration, options Options, onElapsed func()) *Countdown {
	if options.Interval <= 0 {
		options.Interval = time.Second
	}
	if options.Ticker == nil {
		options.Ticker = systemTicker
	}
	return &Countdown{
		options:   options,
		remaining: duration,
		onElapsed: onElapsed,
	}
}

// Resume starts ticking from the remaining duration.
func (countdown *Countdown) Resume() {
	countdown.mu.Lock()
	defer countdown.mu.Unlock()
	if countdown.fired || countdown.stopped || countdown.stopCh != nil {
		return
	}
	stopCh := make(chan struct{})
	countdown.stopCh = stopCh
	ticks, stopTicker := countdown.options.Ticker(countdown.options.Interval)
	go countdown.run(ticks, stopTicker, stopCh)
}

// Pause stops ticking and keeps the remaining duration.
func (countdown *Countdown) Pause() {
	countdown.mu.Lock()
	defer countdown.mu.Unlock()
	countdown.haltLocked()
}

// Stop makes the countdown inert without invoking the completion.
func (countdown *Countdown) Stop() {
	countdown.mu.Lock()
	defer countdown.mu.Unlock()
	countdown.stopped = true
	countdown.haltLocked()
}

// Tick advances the countdown by one interval.
func (countdown *Countdown) Tick() {
	countdown.advance(nil)
}

// Remaining returns the time left before the completion fires.
func (countdown *Countdown) Remaining() time.Duration {
	countdown.mu.Lock()
	defer countdown.mu.Unlock()
	return countdown.remaining
}

// Running reports whether the countdown is currently ticking.
func (countdown *Countdown) Running() bool {
	countdown.mu.Lock()
	defer countdown.mu.Unlock()
	return countdown.stopCh != nil
}

// Elapsed reports whether the completion has already fired.
func (countdown *Countdown) Elapsed() bool {
	countdown.mu.Lock()
	defer countdown.mu.Unlock()
	return countdown.fired
}

func (countdown *Countdown) run(ticks <-chan time.Time, stopTicker func(), stopCh chan struct{}) {
	defer stopTicker()
	for {
		select {
		case <-stopCh:
			return
		case <-ticks:
			countdown.advance(stopCh)
		}
	}
}

// advance applies one tick. A non-nil source must still be the active ticking
// loop, so ticks racing with Pause are dropped.
func (countdown *Countdown) advance(source chan struct{}) {
	countdown.mu.Lock()
	if countdown.fired || countdown.stopped {
		countdown.mu.Unlock()
		return
	}
	if source != nil && source != countdown.stopCh {
		countdown.mu.Unlock()
		return
	}
	countdown.remaining -= countdown.options.Interval
	if countdown.remaining > 0 {
		remaining := countdown.remaining
		onTick := countdown.options.OnTick
		countdown.mu.Unlock()
		if onTick != nil {
			onTick(remaining)
		}
		return
	}
	countdown.remaining = 0
	countdown.fired = true
	countdown.haltLocked()
	onElapsed := countdown.onElapsed
	countdown.mu.Unlock()

	if onElapsed != nil {
		onElapsed()
	}
}

func (countdown *Countdown) haltLocked() {
	if countdown.stopCh == nil {
		return
	}
	close(countdown.stopCh)
	countdown.stopCh = nil
}

func systemTicker(interval time.Duration) (<-chan time.Time, func()) {
	ticker := time.NewTicker(interval)
	return ticker.C, ticker.Stop
}
