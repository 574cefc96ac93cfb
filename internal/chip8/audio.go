package chip8

import "math"

const (
	// PatternSize is the size of the audio pattern buffer in bytes.
	PatternSize = 16

	// DefaultPitch plays the pattern at 4000 Hz.
	DefaultPitch = 64
)

// AudioState is the information an audio consumer needs to produce sound.
type AudioState struct {
	Pattern   [PatternSize]byte // one period of 128 one bit samples, MSB first
	Frequency float64           // pattern bit rate in Hz
	Beep      bool              // whether the pattern should be played
}

// Frequency returns the playback rate in bits per second of the audio
// pattern for a pitch register value.
func Frequency(pitch byte) float64 {
	return 4000 * math.Pow(2, (float64(pitch)-64)/48)
}

// Audio returns the current audio state.
func (m *Machine) Audio() AudioState {
	var state AudioState
	copy(state.Pattern[:], m.Memory[PatternAddress:PatternAddress+PatternSize])
	state.Frequency = Frequency(m.Pitch)
	state.Beep = m.Beep
	return state
}

// resetPattern restores the default square wave with 50% duty cycle.
func (m *Machine) resetPattern() {
	for i := range PatternSize {
		value := byte(0x00)
		if i >= PatternSize/2 {
			value = 0xFF
		}
		m.Memory[PatternAddress+i] = value
	}
}

// loadPattern copies 16 bytes from I into the pattern buffer.
func (m *Machine) loadPattern() {
	for i := range PatternSize {
		m.Memory[PatternAddress+i] = m.read(m.I, i)
	}
}
