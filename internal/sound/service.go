package sound

import (
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"
)

const eventBuffer = 16

// Service plays and records audio on the default devices and reports
// completions on the Events channel.
type Service struct {
	logger   zerolog.Logger
	ctx      *malgo.AllocatedContext
	player   *player
	recorder *recorder

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewService initialises the audio backend.
func NewService(logger zerolog.Logger) (*Service, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}

	service := &Service{
		logger: logger,
		ctx:    ctx,
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
	service.player = newPlayer(logger.With().Str("component", "player").Logger(), ctx, service.emit)
	service.recorder = newRecorder(logger.With().Str("component", "recorder").Logger(), ctx, service.emit)
	return service, nil
}

// Events returns the completion event stream.
func (service *Service) Events() <-chan Event {
	return service.events
}

// Play starts playing source, replacing any current playback.
func (service *Service) Play(source *Buffer, mode LoopMode) error {
	return service.player.play(source, mode)
}

// Pause pauses playback.
func (service *Service) Pause() {
	service.player.pause()
}

// Resume resumes paused playback.
func (service *Service) Resume() {
	service.player.resume()
}

// Stop stops playback.
func (service *Service) Stop() {
	service.player.stop()
}

// Record captures audio into a FLAC file at location until duration of audio
// has been captured.
func (service *Service) Record(location string, duration time.Duration) error {
	return service.recorder.record(location, duration)
}

// PauseRecording pauses capture; paused time does not count toward the duration.
func (service *Service) PauseRecording() {
	if err := service.recorder.pause(); err != nil {
		service.logger.Warn().Err(err).Msg("pause recording")
	}
}

// ResumeRecording resumes a paused capture.
func (service *Service) ResumeRecording() {
	if err := service.recorder.resume(); err != nil {
		service.logger.Warn().Err(err).Msg("resume recording")
	}
}

// StopRecording ends the capture early; RecordingFinished is still reported.
func (service *Service) StopRecording() {
	service.recorder.stop()
}

// Close stops all activity and releases the audio backend.
func (service *Service) Close() {
	service.closeOnce.Do(func() {
		close(service.done)
		service.player.stop()
		service.recorder.cancel()
		if err := service.ctx.Uninit(); err != nil {
			service.logger.Warn().Err(err).Msg("uninit audio context")
		}
		service.ctx.Free()
	})
}

func (service *Service) emit(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	logEvent := service.logger.Info()
	if event.Err != nil {
		logEvent = service.logger.Error().Err(event.Err)
	}
	logEvent.Str("event", string(event.Type)).Str("location", event.Location).Bool("successful", event.Successful).Msg("sound event")

	select {
	case service.events <- event:
	case <-service.done:
	}
}
