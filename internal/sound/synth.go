package sound

import (
	"fmt"
	"math"
	"math/rand"
)

// PresetKind selects the synthesis algorithm of a preset.
type PresetKind string

const (
	PresetBrownNoise  PresetKind = "brown_noise"
	PresetPulsedTone  PresetKind = "pulsed_tone"
	defaultSampleRate            = 44100
	fadeSeconds                  = 0.05
)

// Preset describes a synthesised sound.
type Preset struct {
	Name            string     `yaml:"name"`
	Kind            PresetKind `yaml:"kind"`
	SampleRate      uint32     `yaml:"sample_rate"`
	Channels        uint32     `yaml:"channels"`
	DurationSeconds float64    `yaml:"duration_seconds"`
	Volume          float64    `yaml:"volume"`
	Seed            int64      `yaml:"seed"`

	// Pulsed tone parameters.
	Frequency    float64 `yaml:"frequency"`
	PulseSeconds float64 `yaml:"pulse_seconds"`
	GapSeconds   float64 `yaml:"gap_seconds"`
	Repeat       int     `yaml:"repeat"`
}

// Synthesize renders a preset into a buffer.
func Synthesize(preset Preset) (*Buffer, error) {
	if preset.SampleRate == 0 {
		preset.SampleRate = defaultSampleRate
	}
	if preset.Channels == 0 {
		preset.Channels = 1
	}
	if preset.Volume <= 0 || preset.Volume > 1 {
		preset.Volume = 0.5
	}

	var mono []int16
	switch preset.Kind {
	case PresetBrownNoise:
		if preset.DurationSeconds <= 0 {
			return nil, fmt.Errorf("synthesize %s: duration must be positive", preset.Name)
		}
		mono = brownNoise(int(preset.SampleRate), preset.DurationSeconds, preset.Volume, preset.Seed)
	case PresetPulsedTone:
		if preset.Frequency <= 0 || preset.PulseSeconds <= 0 {
			return nil, fmt.Errorf("synthesize %s: frequency and pulse length must be positive", preset.Name)
		}
		repeat := preset.Repeat
		if repeat <= 0 {
			repeat = 1
		}
		mono = pulsedTone(int(preset.SampleRate), preset.Frequency, preset.PulseSeconds, preset.GapSeconds, preset.Volume, repeat)
	default:
		return nil, fmt.Errorf("synthesize %s: unknown preset kind %q", preset.Name, preset.Kind)
	}

	return &Buffer{
		Name:       preset.Name,
		SampleRate: preset.SampleRate,
		Channels:   preset.Channels,
		Samples:    interleave(mono, int(preset.Channels)),
	}, nil
}

// brownNoise integrates white noise with a leak so it stays centred; the ends
// are faded so the buffer loops without clicks.
func brownNoise(sampleRate int, duration, volume float64, seed int64) []int16 {
	n := int(float64(sampleRate) * duration)
	rng := rand.New(rand.NewSource(seed))
	samples := make([]int16, n)
	last := 0.0
	for i := range samples {
		white := rng.Float64()*2 - 1
		last = (last + 0.02*white) / 1.02
		samples[i] = int16(clamp(last*3.5*volume) * math.MaxInt16)
	}
	applyFade(samples, int(float64(sampleRate)*fadeSeconds))
	return samples
}

func pulsedTone(sampleRate int, freq, pulse, gap, volume float64, repeat int) []int16 {
	pulseLen := int(float64(sampleRate) * pulse)
	gapLen := int(float64(sampleRate) * gap)
	samples := make([]int16, 0, (pulseLen+gapLen)*repeat)
	for r := 0; r < repeat; r++ {
		tone := make([]int16, pulseLen)
		for i := range tone {
			t := float64(i) / float64(sampleRate)
			tone[i] = int16(math.Sin(2*math.Pi*freq*t) * math.MaxInt16 * volume)
		}
		applyFade(tone, pulseLen/20)
		samples = append(samples, tone...)
		samples = append(samples, make([]int16, gapLen)...)
	}
	return samples
}

func applyFade(samples []int16, length int) {
	if length <= 0 {
		return
	}
	if length > len(samples)/2 {
		length = len(samples) / 2
	}
	for i := 0; i < length; i++ {
		gain := float64(i) / float64(length)
		samples[i] = int16(float64(samples[i]) * gain)
		last := len(samples) - 1 - i
		samples[last] = int16(float64(samples[last]) * gain)
	}
}

func interleave(mono []int16, channels int) []int16 {
	if channels <= 1 {
		return mono
	}
	out := make([]int16, len(mono)*channels)
	for i, sample := range mono {
		for ch := 0; ch < channels; ch++ {
			out[i*channels+ch] = sample
		}
	}
	return out
}

func clamp(value float64) float64 {
	if value > 1 {
		return 1
	}
	if value < -1 {
		return -1
	}
	return value
}
