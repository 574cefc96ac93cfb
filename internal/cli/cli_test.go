package cli

import (
	"errors"
	"os"
	"testing"

	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

//nolint:funlen // test functions can be long
func TestParseFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, opts options.Program)
	}{
		{
			name: "defaults",
			args: []string{"prog", "game.ch8"},
			check: func(t *testing.T, opts options.Program) {
				t.Helper()
				assert.Equal(t, "game.ch8", opts.Input)
				assert.Equal(t, 1000, opts.CPUFrequency)
				assert.Equal(t, 60, opts.TimerFrequency)
				assert.Equal(t, 60, opts.RefreshFrequency)
				assert.Equal(t, uint16(0x200), opts.StartAddress)
				assert.Equal(t, DefaultScale, opts.Scale)
				assert.Empty(t, opts.Preset)
				assert.Empty(t, opts.Quirks)
			},
		},
		{
			name: "input flag",
			args: []string{"prog", "-i", "game.ch8"},
			check: func(t *testing.T, opts options.Program) {
				t.Helper()
				assert.Equal(t, "game.ch8", opts.Input)
			},
		},
		{
			name: "machine flags",
			args: []string{"prog", "-cpu", "0", "-timer", "50", "-refresh", "30", "-start", "0x600", "-cycles", "500", "game.ch8"},
			check: func(t *testing.T, opts options.Program) {
				t.Helper()
				assert.Equal(t, 0, opts.CPUFrequency)
				assert.Equal(t, 50, opts.TimerFrequency)
				assert.Equal(t, 30, opts.RefreshFrequency)
				assert.Equal(t, uint16(0x600), opts.StartAddress)
				assert.Equal(t, 500, opts.Cycles)
			},
		},
		{
			name: "preset and quirks",
			args: []string{"prog", "-preset", "XOCHIP", "-quirk", "0=true", "-quirk", "clip=false", "game.ch8"},
			check: func(t *testing.T, opts options.Program) {
				t.Helper()
				assert.Equal(t, "xochip", opts.Preset)
				assert.Equal(t, []string{"0=true", "clip=false"}, opts.Quirks)
			},
		},
		{
			name: "behavior flags",
			args: []string{"prog", "-headless", "-mute", "-debug", "-trace", "-q", "-scale", "0", "game.ch8"},
			check: func(t *testing.T, opts options.Program) {
				t.Helper()
				assert.True(t, opts.Headless)
				assert.True(t, opts.Mute)
				assert.True(t, opts.Debug)
				assert.True(t, opts.Trace)
				assert.True(t, opts.Quiet)
				assert.Equal(t, 1, opts.Scale)
			},
		},
		{
			name: "state flags",
			args: []string{"prog", "-load-state", "-save-state", "-save-dir", "saves", "game.ch8"},
			check: func(t *testing.T, opts options.Program) {
				t.Helper()
				assert.True(t, opts.LoadState)
				assert.True(t, opts.SaveState)
				assert.Equal(t, "saves", opts.SaveDir)
				assert.Empty(t, opts.State)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			t.Cleanup(func() { os.Args = oldArgs })

			os.Args = tt.args

			opts, err := ParseFlags()
			assert.NoError(t, err)
			tt.check(t, opts)
		})
	}
}

func TestParseFlagsErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		usage bool
	}{
		{name: "no ROM", args: []string{"prog"}, usage: true},
		{name: "flag after ROM", args: []string{"prog", "game.ch8", "-debug"}, usage: true},
		{name: "invalid start", args: []string{"prog", "-start", "0x10000", "game.ch8"}, usage: true},
		{name: "unknown preset", args: []string{"prog", "-preset", "nes", "game.ch8"}},
		{name: "invalid quirk", args: []string{"prog", "-quirk", "12=true", "game.ch8"}},
		{name: "negative frequency", args: []string{"prog", "-cpu", "-5", "game.ch8"}},
		{name: "two state sources", args: []string{"prog", "-load-state", "-state", "game.ch8.dmp", "game.ch8"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			oldStderr := os.Stderr
			t.Cleanup(func() {
				os.Args = oldArgs
				os.Stderr = oldStderr
			})
			devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
			assert.NoError(t, err)
			t.Cleanup(func() { _ = devNull.Close() })
			os.Stderr = devNull

			os.Args = tt.args

			_, err = ParseFlags()
			assert.Error(t, err)

			var usageErr *UsageError
			assert.Equal(t, tt.usage, errors.As(err, &usageErr))
		})
	}
}
