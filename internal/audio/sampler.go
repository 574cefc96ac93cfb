// Package audio renders the one bit audio pattern of the machine to a sample
// stream.
package audio

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"

	"github.com/retroenv/chip8vm/internal/chip8"
)

// Stream format.
const (
	DefaultSampleRate = 44100
	DefaultVolume     = 0.2

	sampleSize  = 4 // float32 little endian
	patternBits = chip8.PatternSize * 8
)

// Sampler converts the audio state to mono float32 little endian samples.
// Update and Read may be called from different goroutines.
type Sampler struct {
	state      atomic.Pointer[chip8.AudioState]
	sampleRate float64
	volume     float32

	mu    sync.Mutex // protects phase
	phase float64    // position inside the pattern in bits
}

// NewSampler returns a silent sampler for the given sample rate.
func NewSampler(sampleRate int, volume float32) *Sampler {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Sampler{
		sampleRate: float64(sampleRate),
		volume:     volume,
	}
}

// Update sets the audio state that subsequent samples are generated from.
func (s *Sampler) Update(state chip8.AudioState) {
	s.state.Store(&state)
}

// Read fills p with whole samples. It never returns an error.
func (s *Sampler) Read(p []byte) (int, error) {
	n := len(p) / sampleSize * sampleSize
	state := s.state.Load()

	s.mu.Lock()
	defer s.mu.Unlock()

	for offset := 0; offset < n; offset += sampleSize {
		var sample float32
		if state != nil && state.Beep {
			sample = s.next(state)
		}
		binary.LittleEndian.PutUint32(p[offset:], math.Float32bits(sample))
	}
	return n, nil
}

// next returns the sample at the current phase and advances it.
func (s *Sampler) next(state *chip8.AudioState) float32 {
	bit := int(s.phase) % patternBits
	sample := -s.volume
	if state.Pattern[bit/8]&(0x80>>(bit%8)) != 0 {
		sample = s.volume
	}

	s.phase = math.Mod(s.phase+state.Frequency/s.sampleRate, patternBits)
	return sample
}
