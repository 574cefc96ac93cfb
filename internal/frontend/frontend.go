// Package frontend contains the presentation and input side of the emulator.
package frontend

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/retroenv/chip8vm/internal/display"
)

// KeyEvent is a transition of a hexadecimal keypad key.
type KeyEvent struct {
	Key  int
	Down bool
}

// Control is a runtime request of the user that is not keypad input.
type Control int

// Runtime controls.
const (
	ControlPause     Control = iota // toggle pausing execution
	ControlSpeedUp                  // raise the CPU frequency
	ControlSlowDown                 // lower the CPU frequency
	ControlSaveState                // write a state dump
	ControlLoadState                // restore the last state dump
	ControlReset                    // soft reset the machine
)

var controlNames = [...]string{
	ControlPause:     "pause",
	ControlSpeedUp:   "speed up",
	ControlSlowDown:  "slow down",
	ControlSaveState: "save state",
	ControlLoadState: "load state",
	ControlReset:     "reset",
}

func (c Control) String() string {
	if c < 0 || int(c) >= len(controlNames) {
		return fmt.Sprintf("control(%d)", int(c))
	}
	return controlNames[c]
}

// Frontend presents frames and delivers keypad input.
type Frontend interface {
	// Present hands a new frame to the frontend. It must not block.
	Present(frame display.Frame)
	// KeyEvents returns the channel that keypad transitions are sent to.
	KeyEvents() <-chan KeyEvent
	// Controls returns the channel that runtime controls are sent to.
	Controls() <-chan Control
	// Done is closed when the user requested to quit.
	Done() <-chan struct{}
}

// keyBufferSize is the number of key events buffered before new events get
// dropped.
const keyBufferSize = 64

// Palette maps the combined plane bits of a pixel to a color.
var Palette = [4]color.RGBA{
	{R: 0x10, G: 0x10, B: 0x10, A: 0xFF}, // background
	{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}, // plane 1
	{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}, // plane 2
	{R: 0xFF, G: 0x90, B: 0x20, A: 0xFF}, // both planes
}

// RGBA converts a frame to a RGBA pixel buffer of display.Width x
// display.Height pixels.
func RGBA(frame *display.Frame, pixels []byte) []byte {
	size := display.Width * display.Height * 4
	if len(pixels) < size {
		pixels = make([]byte, size)
	}
	for y := range display.Height {
		for x := range display.Width {
			c := Palette[frame.Color(x, y)]
			offset := (y*display.Width + x) * 4
			pixels[offset] = c.R
			pixels[offset+1] = c.G
			pixels[offset+2] = c.B
			pixels[offset+3] = c.A
		}
	}
	return pixels[:size]
}

// Headless is a frontend without output device. It records presented frames
// and lets callers inject key events.
type Headless struct {
	mu     sync.Mutex
	last   display.Frame
	frames int

	keys     chan KeyEvent
	controls chan Control
	done     chan struct{}
	doneOnce sync.Once
}

// NewHeadless returns a new headless frontend.
func NewHeadless() *Headless {
	return &Headless{
		keys:     make(chan KeyEvent, keyBufferSize),
		controls: make(chan Control, keyBufferSize),
		done:     make(chan struct{}),
	}
}

// Present stores the frame as the last presented one.
func (h *Headless) Present(frame display.Frame) {
	h.mu.Lock()
	h.last = frame
	h.frames++
	h.mu.Unlock()
}

// KeyEvents returns the key event channel.
func (h *Headless) KeyEvents() <-chan KeyEvent {
	return h.keys
}

// Controls returns the runtime control channel.
func (h *Headless) Controls() <-chan Control {
	return h.controls
}

// Done returns a channel that is closed by Close.
func (h *Headless) Done() <-chan struct{} {
	return h.done
}

// Frames returns the number of presented frames.
func (h *Headless) Frames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

// Last returns the last presented frame.
func (h *Headless) Last() display.Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// Press queues a key transition. It returns false if the event buffer is
// full.
func (h *Headless) Press(key int, down bool) bool {
	return send(h.keys, KeyEvent{Key: key, Down: down})
}

// Control queues a runtime control. It returns false if the buffer is full.
func (h *Headless) Control(c Control) bool {
	return send(h.controls, c)
}

// Close signals that the frontend quit.
func (h *Headless) Close() {
	h.doneOnce.Do(func() { close(h.done) })
}

// send is a non blocking channel send.
func send[T any](ch chan<- T, value T) bool {
	select {
	case ch <- value:
		return true
	default:
		return false
	}
}
