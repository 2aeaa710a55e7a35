package sound

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

const (
	recordBitsPerSample = 16
	recordBlockSize     = 4096
)

// DecodeFLAC reads a FLAC file into a 16-bit buffer.
func DecodeFLAC(path, name string) (*Buffer, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open flac %s: %w", path, err)
	}
	defer stream.Close()

	info := stream.Info
	if info.NChannels == 0 || info.SampleRate == 0 {
		return nil, fmt.Errorf("decode flac %s: invalid stream info", path)
	}
	shift := int(info.BitsPerSample) - recordBitsPerSample

	buffer := &Buffer{
		Name:       name,
		SampleRate: info.SampleRate,
		Channels:   uint32(info.NChannels),
	}
	if info.NSamples > 0 {
		buffer.Samples = make([]int16, 0, int(info.NSamples)*int(info.NChannels))
	}

	for {
		parsed, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decode flac %s: %w", path, err)
		}
		if len(parsed.Subframes) == 0 {
			continue
		}
		for i := 0; i < parsed.Subframes[0].NSamples; i++ {
			for _, subframe := range parsed.Subframes {
				buffer.Samples = append(buffer.Samples, toInt16(subframe.Samples[i], shift))
			}
		}
	}
	return buffer, nil
}

func toInt16(sample int32, shift int) int16 {
	switch {
	case shift > 0:
		sample >>= uint(shift)
	case shift < 0:
		sample <<= uint(-shift)
	}
	return int16(sample)
}

// flacWriter encodes interleaved 16-bit samples into a FLAC stream.
type flacWriter struct {
	enc         *flac.Encoder
	sampleRate  uint32
	channels    int
	layout      frame.Channels
	pending     []int16
	totalFrames uint64
}

func newFlacWriter(w io.Writer, sampleRate uint32, channels int) (*flacWriter, error) {
	var layout frame.Channels
	switch channels {
	case 1:
		layout = frame.ChannelsMono
	case 2:
		layout = frame.ChannelsLR
	default:
		return nil, fmt.Errorf("creating flac encoder: unsupported channel count %d", channels)
	}

	info := &meta.StreamInfo{
		BlockSizeMin:  recordBlockSize,
		BlockSizeMax:  recordBlockSize,
		SampleRate:    sampleRate,
		NChannels:     uint8(channels),
		BitsPerSample: recordBitsPerSample,
		NSamples:      0,
	}
	enc, err := flac.NewEncoder(w, info)
	if err != nil {
		return nil, fmt.Errorf("creating flac encoder: %w", err)
	}
	return &flacWriter{
		enc:        enc,
		sampleRate: sampleRate,
		channels:   channels,
		layout:     layout,
		pending:    make([]int16, 0, recordBlockSize*channels),
	}, nil
}

// Write buffers samples and encodes every complete block.
func (writer *flacWriter) Write(samples []int16) error {
	blockLen := recordBlockSize * writer.channels
	for len(samples) > 0 {
		room := blockLen - len(writer.pending)
		take := min(room, len(samples))
		writer.pending = append(writer.pending, samples[:take]...)
		samples = samples[take:]
		if len(writer.pending) == blockLen {
			if err := writer.flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close encodes the partial block and finalises the stream.
func (writer *flacWriter) Close() error {
	flushErr := writer.flush()
	closeErr := writer.enc.Close()
	if flushErr != nil {
		return flushErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing flac encoder: %w", closeErr)
	}
	return nil
}

// TotalFrames returns the number of frames encoded so far.
func (writer *flacWriter) TotalFrames() uint64 {
	return writer.totalFrames
}

func (writer *flacWriter) flush() error {
	frames := len(writer.pending) / writer.channels
	if frames == 0 {
		return nil
	}

	subframes := make([]*frame.Subframe, writer.channels)
	for ch := range subframes {
		samples32 := make([]int32, frames)
		for i := range samples32 {
			samples32[i] = int32(writer.pending[i*writer.channels+ch])
		}
		subframes[ch] = &frame.Subframe{
			SubHeader: frame.SubHeader{
				Pred: frame.PredVerbatim,
			},
			Samples:  samples32,
			NSamples: frames,
		}
	}

	f := &frame.Frame{
		Header: frame.Header{
			BlockSize:     uint16(frames),
			SampleRate:    writer.sampleRate,
			Channels:      writer.layout,
			BitsPerSample: recordBitsPerSample,
		},
		Subframes: subframes,
	}

	if err := writer.enc.WriteFrame(f); err != nil {
		return fmt.Errorf("writing flac frame: %w", err)
	}
	writer.totalFrames += uint64(frames)
	writer.pending = writer.pending[:0]
	return nil
}

// WriteFLAC encodes a mono or stereo buffer to a FLAC file at path.
func WriteFLAC(path string, buffer *Buffer) error {
	if buffer == nil || len(buffer.Samples) == 0 {
		return ErrEmptySource
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create sound directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sound file: %w", err)
	}
	writer, err := newFlacWriter(file, buffer.SampleRate, int(buffer.Channels))
	if err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	// Trailing samples of an incomplete frame are dropped.
	usable := len(buffer.Samples) - len(buffer.Samples)%int(buffer.Channels)
	if err := writer.Write(buffer.Samples[:usable]); err != nil {
		closeRecording(writer, file)
		return err
	}
	return closeRecording(writer, file)
}
