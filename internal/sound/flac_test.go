package sound

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlacWriterOutputDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.flac")
	file, err := os.Create(path)
	require.NoError(t, err)

	writer, err := newFlacWriter(file, RecordSampleRate, RecordChannels)
	require.NoError(t, err)

	samples := make([]int16, recordBlockSize+1000)
	for i := range samples {
		samples[i] = int16(i%2000 - 1000)
	}
	require.NoError(t, writer.Write(samples[:1500]))
	require.NoError(t, writer.Write(samples[1500:]))
	require.NoError(t, closeRecording(writer, file))
	assert.Equal(t, uint64(len(samples)), writer.TotalFrames())

	decoded, err := DecodeFLAC(path, "take")
	require.NoError(t, err)
	assert.Equal(t, "take", decoded.Name)
	assert.Equal(t, uint32(RecordSampleRate), decoded.SampleRate)
	assert.Equal(t, uint32(RecordChannels), decoded.Channels)
	assert.Equal(t, samples, decoded.Samples)
}

func TestWriteFLACStereoRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tone.flac")
	source := &Buffer{Name: "tone", SampleRate: 22050, Channels: 2}
	for i := 0; i < recordBlockSize+10; i++ {
		source.Samples = append(source.Samples, int16(i%300), int16(-(i % 300)))
	}

	require.NoError(t, WriteFLAC(path, source))

	decoded, err := DecodeFLAC(path, "tone")
	require.NoError(t, err)
	assert.Equal(t, uint32(22050), decoded.SampleRate)
	assert.Equal(t, uint32(2), decoded.Channels)
	assert.Equal(t, source.Samples, decoded.Samples)
}

func TestWriteFLACRejectsEmptyAndWideSources(t *testing.T) {
	dir := t.TempDir()
	assert.ErrorIs(t, WriteFLAC(filepath.Join(dir, "empty.flac"), &Buffer{Channels: 1, SampleRate: 8000}), ErrEmptySource)

	wide := &Buffer{SampleRate: 8000, Channels: 3, Samples: []int16{1, 2, 3}}
	require.Error(t, WriteFLAC(filepath.Join(dir, "wide.flac"), wide))
	assert.NoFileExists(t, filepath.Join(dir, "wide.flac"))
}

func TestDecodeFLACMissingFile(t *testing.T) {
	_, err := DecodeFLAC(filepath.Join(t.TempDir(), "missing.flac"), "missing")
	require.Error(t, err)
}

func TestFramesFor(t *testing.T) {
	assert.Equal(t, uint64(RecordSampleRate*90), framesFor(90*time.Second))
	assert.Equal(t, uint64(1), framesFor(1))
}
