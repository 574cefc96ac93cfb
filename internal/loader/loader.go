// Package loader handles ROM and state file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/retroenv/chip8vm/internal/chip8"
	"github.com/retroenv/chip8vm/internal/options"
)

// ErrEmptyROM is returned for ROM files without content.
var ErrEmptyROM = errors.New("ROM file is empty")

// ROM is a program image read from disk.
type ROM struct {
	Name string // file name without directory
	Data []byte
}

// Loader handles loading ROM files from disk.
type Loader struct{}

// New creates a new ROM loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the ROM file given in the options. Returns the ROM and the
// content of the state dump file if one is specified.
func (l *Loader) Load(opts options.Program) (*ROM, []byte, error) {
	data, err := readFile(opts.Input, chip8.MemorySize)
	if err != nil {
		return nil, nil, fmt.Errorf("reading ROM: %w", err)
	}
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("loading %s: %w", opts.Input, ErrEmptyROM)
	}

	rom := &ROM{
		Name: filepath.Base(opts.Input),
		Data: data,
	}

	var state []byte
	if opts.State != "" {
		state, err = readFile(opts.State, int64(chip8.SnapshotSize))
		if err != nil {
			return nil, nil, fmt.Errorf("reading state dump: %w", err)
		}
	}

	return rom, state, nil
}

// readFile reads at most limit bytes of a file.
func readFile(name string, limit int64) ([]byte, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", name, err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, limit))
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", name, err)
	}
	return data, nil
}
