// Package options contains the program options.
package options

import (
	"strings"
)

// Parameters contains file path options.
type Parameters struct {
	Input   string `flag:"i" usage:"input ROM file"`
	State   string `flag:"state" usage:"state dump file to restore after loading the ROM"`
	SaveDir string `flag:"save-dir" usage:"directory for user flags and state dumps (default: ROM directory)"`
}

// Flags contains behavior options.
type Flags struct {
	Preset    string   `flag:"preset" usage:"dialect preset: chip8, schip, xochip (default: auto-detect)"`
	Quirks    []string `flag:"quirk" usage:"quirk override index=bool or name=bool, repeatable"`
	Headless  bool     `flag:"headless" usage:"run without window and audio, print the final frame"`
	SaveState bool     `flag:"save-state" usage:"write a state dump to the save directory on exit"`
	LoadState bool     `flag:"load-state" usage:"restore the state dump of the ROM from the save directory"`
	Mute      bool     `flag:"mute" usage:"disable audio output"`
	Trace     bool     `flag:"trace" usage:"log every executed instruction, requires -debug"`
	Debug     bool     `flag:"debug" usage:"enable debug logging"`
	Quiet     bool     `flag:"q" usage:"quiet mode"`
}

// MachineFlags contains the machine timing and layout options.
type MachineFlags struct {
	CPUFrequency     int    `flag:"cpu" usage:"instructions per second, 0 runs unthrottled" default:"1000"`
	TimerFrequency   int    `flag:"timer" usage:"timer decrements per second" default:"60"`
	RefreshFrequency int    `flag:"refresh" usage:"display refreshes per second" default:"60"`
	StartAddress     uint16 `flag:"start" usage:"program load address" default:"0x200"`
	Cycles           int    `flag:"cycles" usage:"stop after executing this many instructions, 0 runs until exit"`
	Scale            int    `flag:"scale" usage:"window scale factor" default:"6"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
	MachineFlags
}

// QuirkList is a repeatable flag value collecting quirk overrides.
type QuirkList []string

func (l *QuirkList) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ",")
}

// Set appends a quirk override.
func (l *QuirkList) Set(value string) error {
	*l = append(*l, value)
	return nil
}
