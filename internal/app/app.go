// Package app provides the main application helpers for the emulator.
package app

import (
	"github.com/retroenv/chip8vm/internal/loader"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/chip8vm/internal/quirks"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// PrintBanner prints the program name and version.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}
	logger.Info("chip8vm - CHIP-8 / SUPER-CHIP / XO-CHIP emulator",
		log.String("version", buildinfo.Version(version, commit, date)))
}

// PrintInfo prints the information about the loaded ROM and the selected
// dialect.
func PrintInfo(logger *log.Logger, opts options.Program, rom *loader.ROM, preset quirks.Preset, q quirks.Quirks) {
	if opts.Quiet {
		return
	}

	logger.Info("Running ROM",
		log.String("file", opts.Input),
		log.Int("size", len(rom.Data)),
		log.String("preset", string(preset)),
		log.Hex("start", opts.StartAddress),
	)
	logger.Debug("Quirks", log.String("quirks", q.String()))

	if opts.CPUFrequency == 0 {
		logger.Warn("CPU frequency 0, running unthrottled")
	}
	if opts.Trace && !opts.Debug {
		logger.Warn("Instruction trace requires debug logging, use -debug")
	}
}
