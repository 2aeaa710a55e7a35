package sound

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"
)

// player renders one buffer at a time to the default playback device.
// The device callback runs on the audio thread, so device Stop/Uninit are
// always called without holding mu.
type player struct {
	logger zerolog.Logger
	ctx    *malgo.AllocatedContext
	emit   func(Event)

	mu        sync.Mutex
	session   uint64
	device    *malgo.Device
	cursor    *cursor
	source    string
	paused    bool
	finishing bool
}

func newPlayer(logger zerolog.Logger, ctx *malgo.AllocatedContext, emit func(Event)) *player {
	return &player{logger: logger, ctx: ctx, emit: emit}
}

func (p *player) play(source *Buffer, mode LoopMode) error {
	if source == nil || len(source.Samples) == 0 {
		return ErrEmptySource
	}
	p.stop()

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = source.Channels
	config.SampleRate = source.SampleRate

	p.mu.Lock()
	p.session++
	session := p.session
	p.cursor = newCursor(source, mode)
	p.source = source.Name
	p.paused = false
	p.finishing = false
	p.mu.Unlock()

	callbacks := malgo.DeviceCallbacks{
		Data: func(output, _ []byte, _ uint32) {
			p.fill(session, output)
		},
	}
	device, err := malgo.InitDevice(p.ctx.Context, config, callbacks)
	if err != nil {
		return fmt.Errorf("init playback device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("start playback device: %w", err)
	}

	p.mu.Lock()
	if session != p.session {
		// Stopped while the device was being opened.
		p.mu.Unlock()
		_ = device.Stop()
		device.Uninit()
		return nil
	}
	p.device = device
	p.mu.Unlock()

	p.logger.Info().Str("source", source.Name).Stringer("loop", mode).Dur("length", source.Duration()).Msg("playback started")
	return nil
}

func (p *player) pause() {
	p.mu.Lock()
	device := p.device
	if device == nil || p.paused {
		p.mu.Unlock()
		return
	}
	p.paused = true
	p.mu.Unlock()

	if err := device.Stop(); err != nil {
		p.logger.Warn().Err(err).Msg("pause playback")
	}
}

func (p *player) resume() {
	p.mu.Lock()
	device := p.device
	if device == nil || !p.paused {
		p.mu.Unlock()
		return
	}
	p.paused = false
	p.mu.Unlock()

	if err := device.Start(); err != nil {
		p.logger.Warn().Err(err).Msg("resume playback")
	}
}

func (p *player) stop() {
	p.mu.Lock()
	device := p.detachLocked()
	p.mu.Unlock()
	release(device)
}

func (p *player) fill(session uint64, output []byte) {
	p.mu.Lock()
	if session != p.session || p.cursor == nil {
		p.mu.Unlock()
		clear(output)
		return
	}
	done := p.cursor.fill(output)
	finishedNow := done && !p.finishing
	if finishedNow {
		p.finishing = true
	}
	p.mu.Unlock()

	if finishedNow {
		go p.finish(session)
	}
}

func (p *player) finish(session uint64) {
	p.mu.Lock()
	if session != p.session {
		p.mu.Unlock()
		return
	}
	source := p.source
	device := p.detachLocked()
	p.mu.Unlock()

	release(device)
	p.emit(Event{Type: EventPlaybackFinished, Location: source, Successful: true})
}

func (p *player) detachLocked() *malgo.Device {
	device := p.device
	p.session++
	p.device = nil
	p.cursor = nil
	p.paused = false
	return device
}

func release(device *malgo.Device) {
	if device == nil {
		return
	}
	_ = device.Stop()
	device.Uninit()
}
