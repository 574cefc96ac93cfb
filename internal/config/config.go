// Package config handles application configuration and setup
package config

import (
	"fmt"
	"path/filepath"

	"github.com/retroenv/chip8vm/internal/chip8"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/chip8vm/internal/quirks"
	"github.com/retroenv/chip8vm/internal/storage"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// Quirks returns the quirks of the preset with the command line overrides
// applied.
func Quirks(preset quirks.Preset, overrides []string) (quirks.Quirks, error) {
	q, err := quirks.ForPreset(preset)
	if err != nil {
		return quirks.Quirks{}, fmt.Errorf("selecting preset: %w", err)
	}
	for _, override := range overrides {
		if err := q.Apply(override); err != nil {
			return quirks.Quirks{}, fmt.Errorf("applying quirk override: %w", err)
		}
	}
	return q, nil
}

// MachineConfig creates the machine configuration from the program options.
func MachineConfig(opts options.Program, preset quirks.Preset, store storage.Store) (chip8.Config, error) {
	q, err := Quirks(preset, opts.Quirks)
	if err != nil {
		return chip8.Config{}, err
	}

	cfg := chip8.DefaultConfig()
	cfg.CPUFrequency = opts.CPUFrequency
	cfg.TimerFrequency = opts.TimerFrequency
	cfg.RefreshFrequency = opts.RefreshFrequency
	cfg.StartAddress = opts.StartAddress
	cfg.Quirks = q
	cfg.Store = store
	cfg.Program = filepath.Base(opts.Input)
	cfg.Trace = opts.Trace && opts.Debug
	return cfg, nil
}

// SaveDir returns the directory that persisted program data is stored in.
func SaveDir(opts options.Program) string {
	if opts.SaveDir != "" {
		return opts.SaveDir
	}
	return filepath.Dir(opts.Input)
}
