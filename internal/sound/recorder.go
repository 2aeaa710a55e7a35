package sound

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"
)

// Capture stalls longer than stallTimeout end the recording as interrupted.
const (
	stallTimeout       = 15 * time.Second
	stallCheckInterval = 5 * time.Second
)

// recorder captures the default input device into a FLAC file until a
// target amount of audio has been captured, the device stops, or capture
// stalls.
type recorder struct {
	logger zerolog.Logger
	ctx    *malgo.AllocatedContext
	emit   func(Event)
	now    func() time.Time

	mu           sync.Mutex
	session      uint64
	device       *malgo.Device
	file         *os.File
	writer       *flacWriter
	location     string
	limitFrames  uint64
	captured     uint64
	lastFrame    time.Time
	paused       bool
	finishing    bool
	encodeFailed bool
}

func newRecorder(logger zerolog.Logger, ctx *malgo.AllocatedContext, emit func(Event)) *recorder {
	return &recorder{logger: logger, ctx: ctx, emit: emit, now: time.Now}
}

// framesFor converts a capture duration to a frame budget, at least one frame.
func framesFor(duration time.Duration) uint64 {
	frames := uint64(duration.Seconds() * RecordSampleRate)
	if frames == 0 {
		frames = 1
	}
	return frames
}

func (r *recorder) record(location string, duration time.Duration) error {
	session, err := r.prepare(location, duration)
	if err != nil {
		return err
	}

	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.Capture.Format = malgo.FormatS16
	config.Capture.Channels = RecordChannels
	config.SampleRate = RecordSampleRate

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			r.capture(session, input)
		},
		Stop: func() {
			r.deviceStopped(session)
		},
	}
	device, err := malgo.InitDevice(r.ctx.Context, config, callbacks)
	if err != nil {
		r.abandon(session)
		return fmt.Errorf("init capture device: %w", err)
	}

	r.mu.Lock()
	r.device = device
	r.mu.Unlock()

	if err := device.Start(); err != nil {
		r.abandon(session)
		return fmt.Errorf("start capture device: %w", err)
	}
	go r.watch(session)

	r.logger.Info().Str("location", location).Dur("duration", duration).Msg("recording started")
	return nil
}

// prepare opens the target file and encoder and starts a new session.
func (r *recorder) prepare(location string, duration time.Duration) (uint64, error) {
	if location == "" {
		return 0, fmt.Errorf("record: location is empty")
	}
	if duration <= 0 {
		return 0, fmt.Errorf("record: duration must be positive, got %s", duration)
	}
	r.cancel()

	if err := os.MkdirAll(filepath.Dir(location), 0o755); err != nil {
		return 0, fmt.Errorf("create recordings directory: %w", err)
	}
	file, err := os.Create(location)
	if err != nil {
		return 0, fmt.Errorf("create recording file: %w", err)
	}
	writer, err := newFlacWriter(file, RecordSampleRate, RecordChannels)
	if err != nil {
		file.Close()
		os.Remove(location)
		return 0, err
	}

	r.mu.Lock()
	r.session++
	session := r.session
	r.file = file
	r.writer = writer
	r.location = location
	r.limitFrames = framesFor(duration)
	r.captured = 0
	r.lastFrame = r.now()
	r.paused = false
	r.finishing = false
	r.encodeFailed = false
	r.mu.Unlock()
	return session, nil
}

func (r *recorder) pause() error {
	r.mu.Lock()
	device := r.device
	if device == nil {
		r.mu.Unlock()
		return ErrNotRecording
	}
	if r.paused {
		r.mu.Unlock()
		return nil
	}
	r.paused = true
	r.mu.Unlock()
	return device.Stop()
}

func (r *recorder) resume() error {
	r.mu.Lock()
	device := r.device
	if device == nil {
		r.mu.Unlock()
		return ErrNotRecording
	}
	if !r.paused {
		r.mu.Unlock()
		return nil
	}
	r.paused = false
	r.lastFrame = r.now()
	r.mu.Unlock()
	return device.Start()
}

// stop ends the active recording early and reports it as interrupted.
func (r *recorder) stop() {
	r.mu.Lock()
	session := r.session
	active := r.writer != nil
	r.mu.Unlock()
	if active {
		r.finish(session, false)
	}
}

// cancel ends the active recording and keeps the file without reporting it.
func (r *recorder) cancel() {
	r.mu.Lock()
	session := r.session
	r.mu.Unlock()
	r.abandon(session)
}

func (r *recorder) capture(session uint64, input []byte) {
	r.mu.Lock()
	if session != r.session || r.writer == nil || r.paused || r.finishing {
		r.mu.Unlock()
		return
	}

	frames := uint64(len(input) / bytesPerSample)
	if remaining := r.limitFrames - r.captured; frames > remaining {
		frames = remaining
	}
	samples := make([]int16, frames)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(input[i*bytesPerSample:]))
	}

	var encodeErr error
	if err := r.writer.Write(samples); err != nil && !r.encodeFailed {
		r.encodeFailed = true
		encodeErr = err
	}
	r.captured += frames
	r.lastFrame = r.now()
	reached := r.captured >= r.limitFrames
	if reached {
		r.finishing = true
	}
	location := r.location
	r.mu.Unlock()

	if encodeErr != nil {
		go r.emit(Event{Type: EventEncodeError, Location: location, Err: encodeErr})
	}
	if reached {
		go r.finish(session, true)
	}
}

// deviceStopped ends the recording when the backend stops the device on its
// own, e.g. when the microphone is unplugged. Stops caused by pause or by
// finish are ignored.
func (r *recorder) deviceStopped(session uint64) {
	r.mu.Lock()
	if session != r.session || r.writer == nil || r.paused || r.finishing {
		r.mu.Unlock()
		return
	}
	r.finishing = true
	location := r.location
	r.mu.Unlock()

	r.logger.Warn().Str("location", location).Msg("capture device stopped")
	// Device callbacks must not uninit their own device.
	go r.finish(session, false)
}

// watch polls the session for capture stalls until it ends.
func (r *recorder) watch(session uint64) {
	ticker := time.NewTicker(stallCheckInterval)
	defer ticker.Stop()
	for range ticker.C {
		stalled, active := r.checkStall(session)
		if !active {
			return
		}
		if stalled {
			r.finish(session, false)
			return
		}
	}
}

// checkStall reports whether the session has received no frames for
// stallTimeout while running, and whether the session is still active.
func (r *recorder) checkStall(session uint64) (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session != r.session || r.writer == nil || r.finishing {
		return false, false
	}
	if r.paused || r.now().Sub(r.lastFrame) < stallTimeout {
		return false, true
	}
	r.finishing = true
	r.logger.Warn().Str("location", r.location).Time("last_frame", r.lastFrame).Msg("capture stalled")
	return true, true
}

func (r *recorder) finish(session uint64, successful bool) {
	device, writer, file, location, ok := r.detach(session)
	if !ok {
		return
	}
	release(device)

	if err := closeRecording(writer, file); err != nil {
		successful = false
		r.emit(Event{Type: EventEncodeError, Location: location, Err: err})
	}
	frames := writer.TotalFrames()
	r.logger.Info().
		Str("location", location).
		Uint64("frames", frames).
		Dur("captured", time.Duration(frames)*time.Second/RecordSampleRate).
		Bool("successful", successful).
		Msg("recording finished")
	r.emit(Event{Type: EventRecordingFinished, Location: location, Successful: successful})
}

func (r *recorder) abandon(session uint64) {
	device, writer, file, location, ok := r.detach(session)
	if !ok {
		return
	}
	release(device)
	if err := closeRecording(writer, file); err != nil {
		r.logger.Warn().Err(err).Str("location", location).Msg("close abandoned recording")
	}
}

func (r *recorder) detach(session uint64) (*malgo.Device, *flacWriter, *os.File, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session != r.session || r.writer == nil {
		return nil, nil, nil, "", false
	}
	device, writer, file, location := r.device, r.writer, r.file, r.location
	r.session++
	r.device = nil
	r.writer = nil
	r.file = nil
	r.location = ""
	r.paused = false
	return device, writer, file, location, true
}

func closeRecording(writer *flacWriter, file *os.File) error {
	writeErr := writer.Close()
	// The encoder may already have closed the file.
	if err := file.Close(); err != nil && !errors.Is(err, os.ErrClosed) && writeErr == nil {
		writeErr = fmt.Errorf("close recording file: %w", err)
	}
	return writeErr
}
