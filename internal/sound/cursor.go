package sound

import "encoding/binary"

// cursor walks a buffer for playback, wrapping around according to the loop mode.
type cursor struct {
	buffer *Buffer
	mode   LoopMode
	pos    int
	done   bool
}

func newCursor(buffer *Buffer, mode LoopMode) *cursor {
	return &cursor{buffer: buffer, mode: mode}
}

// fill writes little-endian S16 samples into out and zero-pads after the end.
// It reports true once the source has been played out completely.
func (cur *cursor) fill(out []byte) bool {
	samples := cur.buffer.Samples
	written := 0
	for written+bytesPerSample <= len(out) {
		if cur.done || len(samples) == 0 {
			break
		}
		if cur.pos >= len(samples) {
			if cur.mode != LoopInfinite {
				cur.done = true
				break
			}
			cur.pos = 0
		}
		binary.LittleEndian.PutUint16(out[written:], uint16(samples[cur.pos]))
		cur.pos++
		written += bytesPerSample
	}
	for i := written; i < len(out); i++ {
		out[i] = 0
	}
	if !cur.done && cur.mode != LoopInfinite && cur.pos >= len(samples) {
		cur.done = true
	}
	return cur.done
}
