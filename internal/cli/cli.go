// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/chip8vm/internal/quirks"
	"github.com/retroenv/chip8vm/internal/timing"
)

// Defaults of the machine flags.
const (
	DefaultStartAddress = 0x200
	DefaultScale        = 6
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "") {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if opts.Input == "" {
		opts.Input = args[0]
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}

	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: chip8vm [options] <ROM file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Preset = strings.ToLower(opts.Preset)
	if opts.Preset != "" {
		if _, err := quirks.ParsePreset(opts.Preset); err != nil {
			return fmt.Errorf("parsing preset: %w", err)
		}
	}

	// validate overrides against any preset, they only depend on the syntax
	q := quirks.Default()
	for _, override := range opts.Quirks {
		if err := q.Apply(override); err != nil {
			return fmt.Errorf("parsing quirk override: %w", err)
		}
	}

	switch {
	case opts.LoadState && opts.State != "":
		return errors.New("-state and -load-state are mutually exclusive")
	case opts.CPUFrequency < 0:
		return fmt.Errorf("invalid CPU frequency %d", opts.CPUFrequency)
	case opts.TimerFrequency < 0:
		return fmt.Errorf("invalid timer frequency %d", opts.TimerFrequency)
	case opts.RefreshFrequency < 0:
		return fmt.Errorf("invalid refresh frequency %d", opts.RefreshFrequency)
	case opts.Cycles < 0:
		return fmt.Errorf("invalid cycle limit %d", opts.Cycles)
	}

	if opts.Scale < 1 {
		opts.Scale = 1
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.StringVar(&opts.State, "state", "", "name of a state dump file to restore after loading the ROM")
	flags.StringVar(&opts.SaveDir, "save-dir", "", "directory to store user flags and state dumps in, defaults to the ROM directory")
	flags.StringVar(&opts.Preset, "preset", "", "dialect preset (chip8/schip/xochip) - if not auto-detected from file extension")
	flags.Var((*options.QuirkList)(&opts.Quirks), "quirk", "override a quirk of the preset as index=bool or name=bool, can be repeated")
	flags.BoolVar(&opts.Headless, "headless", false, "run without window and audio and print the final frame to the console")
	flags.BoolVar(&opts.SaveState, "save-state", false, "write a state dump to the save directory when the emulation ends")
	flags.BoolVar(&opts.LoadState, "load-state", false, "restore the state dump of the ROM from the save directory after loading the ROM")
	flags.BoolVar(&opts.Mute, "mute", false, "disable audio output")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, requires -debug")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	defaults := timing.DefaultConfig()
	flags.IntVar(&opts.CPUFrequency, "cpu", defaults.CPUFrequency, "instructions per second, 0 runs unthrottled")
	flags.IntVar(&opts.TimerFrequency, "timer", defaults.TimerFrequency, "timer decrements per second")
	flags.IntVar(&opts.RefreshFrequency, "refresh", defaults.RefreshFrequency, "display refreshes per second")
	flags.IntVar(&opts.Cycles, "cycles", 0, "stop after executing this many instructions, 0 runs until the program exits")
	flags.IntVar(&opts.Scale, "scale", DefaultScale, "window scale factor")

	opts.StartAddress = DefaultStartAddress
	flags.Func("start", "program load address (default 0x200)", func(s string) error {
		address, err := strconv.ParseUint(s, 0, 16)
		if err != nil {
			return fmt.Errorf("parsing start address: %w", err)
		}
		opts.StartAddress = uint16(address)
		return nil
	})
}
