package detector

import (
	"testing"

	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/chip8vm/internal/quirks"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

//nolint:funlen // test functions can be long
func TestDetect(t *testing.T) {
	logger := log.NewTestLogger(t)
	d := New(logger)

	tests := []struct {
		name       string
		presetOpt  string
		inputFile  string
		wantPreset quirks.Preset
		wantErr    bool
	}{
		{
			name:       "explicit legacy preset option",
			presetOpt:  "chip8",
			inputFile:  "game.xo8",
			wantPreset: quirks.Legacy,
		},
		{
			name:       "explicit XO-CHIP preset option",
			presetOpt:  "xochip",
			inputFile:  "game.ch8",
			wantPreset: quirks.XOChip,
		},
		{
			name:      "invalid preset option",
			presetOpt: "nes",
			inputFile: "game.ch8",
			wantErr:   true,
		},
		{
			name:       "detect from .xo8 extension",
			inputFile:  "game.xo8",
			wantPreset: quirks.XOChip,
		},
		{
			name:       "detect from .sc8 extension",
			inputFile:  "game.sc8",
			wantPreset: quirks.SuperChip,
		},
		{
			name:       "detect from .c8 extension",
			inputFile:  "game.c8",
			wantPreset: quirks.Legacy,
		},
		{
			name:       "detect from .ch8 extension",
			inputFile:  "game.ch8",
			wantPreset: quirks.SuperChip,
		},
		{
			name:       "unknown extension defaults to SUPER-CHIP",
			inputFile:  "game.bin",
			wantPreset: quirks.SuperChip,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := options.Program{
				Parameters: options.Parameters{Input: tt.inputFile},
				Flags:      options.Flags{Preset: tt.presetOpt},
			}

			got, err := d.Detect(opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantPreset, got)
		})
	}
}

func TestDetectFromFile(t *testing.T) {
	logger := log.NewTestLogger(t)
	d := New(logger)

	tests := []struct {
		name       string
		filename   string
		wantPreset quirks.Preset
	}{
		{
			name:       ".XO8 extension (uppercase)",
			filename:   "SUPERNEATBOY.XO8",
			wantPreset: quirks.XOChip,
		},
		{
			name:       ".c8 extension with path",
			filename:   "/roms/classic/pong.c8",
			wantPreset: quirks.Legacy,
		},
		{
			name:       "no extension",
			filename:   "pong",
			wantPreset: quirks.SuperChip,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantPreset, d.detectFromFile(tt.filename))
		})
	}
}
