// Package detector handles dialect detection.
package detector

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/chip8vm/internal/quirks"
	"github.com/retroenv/retrogolib/log"
)

// Detector handles dialect detection from file extensions and options.
type Detector struct {
	logger *log.Logger
}

// New creates a new dialect detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the dialect preset from options or file auto-detection.
// It first checks if a preset is explicitly specified in options, otherwise
// attempts to detect the dialect from the input filename extension.
func (d *Detector) Detect(opts options.Program) (quirks.Preset, error) {
	if opts.Preset != "" {
		preset, err := quirks.ParsePreset(opts.Preset)
		if err != nil {
			return "", fmt.Errorf("parsing preset: %w", err)
		}
		return preset, nil
	}

	preset := d.detectFromFile(opts.Input)
	d.logger.Debug("Auto-detected preset",
		log.String("preset", string(preset)),
		log.String("file", opts.Input))
	return preset, nil
}

// detectFromFile determines the dialect based on file extension.
func (d *Detector) detectFromFile(filename string) quirks.Preset {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xo8":
		return quirks.XOChip
	case ".c8":
		return quirks.Legacy
	case ".sc8":
		return quirks.SuperChip
	default:
		// .ch8 and unknown extensions
		return quirks.SuperChip
	}
}
