package sound

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

const (
	// RecordSampleRate is the capture rate used for recordings.
	RecordSampleRate = 16000
	// RecordChannels is the channel count used for recordings.
	RecordChannels = 1
	// RecordExtension is the file extension of recordings.
	RecordExtension = ".flac"

	bytesPerSample = 2
)

// ErrNotRecording indicates a recording command was issued with no active recording.
var ErrNotRecording = errors.New("no active recording")

// ErrEmptySource indicates a buffer without samples was passed to Play.
var ErrEmptySource = errors.New("sound source is empty")

// LoopMode controls how many times a source is played.
type LoopMode int

const (
	LoopOnce     LoopMode = 1
	LoopInfinite LoopMode = -1
)

func (mode LoopMode) String() string {
	switch mode {
	case LoopOnce:
		return "once"
	case LoopInfinite:
		return "infinite"
	default:
		return fmt.Sprintf("loop(%d)", int(mode))
	}
}

// Buffer is decoded PCM audio: interleaved signed 16-bit samples.
type Buffer struct {
	Name       string
	SampleRate uint32
	Channels   uint32
	Samples    []int16
}

// Frames returns the number of sample frames in the buffer.
func (buffer *Buffer) Frames() int {
	if buffer == nil || buffer.Channels == 0 {
		return 0
	}
	return len(buffer.Samples) / int(buffer.Channels)
}

// Duration returns the playback length of the buffer.
func (buffer *Buffer) Duration() time.Duration {
	if buffer == nil || buffer.SampleRate == 0 {
		return 0
	}
	return time.Duration(buffer.Frames()) * time.Second / time.Duration(buffer.SampleRate)
}

// EventType defines the type of sound service event.
type EventType string

const (
	EventPlaybackFinished  EventType = "playback_finished"
	EventRecordingFinished EventType = "recording_finished"
	EventDecodeError       EventType = "decode_error"
	EventEncodeError       EventType = "encode_error"
)

// Event is pushed by the sound service when an operation completes or fails.
type Event struct {
	Type       EventType
	Location   string
	Successful bool
	Err        error
	At         time.Time
}

// TimeBasedLocation returns the recording file path for a session started at now.
func TimeBasedLocation(dir string, now time.Time) string {
	return filepath.Join(dir, now.Format("2006-01-02_15-04-05")+RecordExtension)
}
