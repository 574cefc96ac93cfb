//go:build !headless

package audio

import (
	"fmt"

	"github.com/ebitengine/oto/v3"
	"github.com/retroenv/chip8vm/internal/chip8"
	"github.com/retroenv/retrogolib/log"
)

// Player plays the machine audio on the default output device.
type Player struct {
	logger  *log.Logger
	sampler *Sampler
	ctx     *oto.Context
	player  *oto.Player
}

// NewPlayer opens the audio device and starts playback of silence.
func NewPlayer(logger *log.Logger, sampleRate int) (*Player, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("creating audio context: %w", err)
	}
	<-ready

	sampler := NewSampler(sampleRate, DefaultVolume)
	player := ctx.NewPlayer(sampler)
	player.Play()

	logger.Debug("Audio output opened", log.Int("sample_rate", sampleRate))
	return &Player{
		logger:  logger,
		sampler: sampler,
		ctx:     ctx,
		player:  player,
	}, nil
}

// Update passes the current audio state to the sample generator.
func (p *Player) Update(state chip8.AudioState) {
	p.sampler.Update(state)
}

// Close stops playback.
func (p *Player) Close() error {
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("closing audio player: %w", err)
	}
	return nil
}
