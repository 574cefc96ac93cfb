//go:build headless

package audio

import (
	"errors"

	"github.com/retroenv/chip8vm/internal/chip8"
	"github.com/retroenv/retrogolib/log"
)

// ErrNoAudio is returned by NewPlayer in builds without audio support.
var ErrNoAudio = errors.New("audio support not compiled in")

// Player is unavailable in headless builds.
type Player struct{}

// NewPlayer returns ErrNoAudio.
func NewPlayer(_ *log.Logger, _ int) (*Player, error) {
	return nil, ErrNoAudio
}

// Update does nothing.
func (p *Player) Update(chip8.AudioState) {}

// Close does nothing.
func (p *Player) Close() error { return nil }
