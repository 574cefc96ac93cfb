// Package quirks contains the compatibility switches that select between the
// CHIP-8, SUPER-CHIP and XO-CHIP dialect behaviours of the interpreter.
package quirks

import (
	"fmt"
	"strconv"
	"strings"
)

// Count is the number of independent quirks.
const Count = 10

// Quirks holds one switch per dialect difference. A set field selects the
// SUPER-CHIP behaviour, a cleared field the original machine behaviour.
type Quirks struct {
	ZeroMemoryOnReset             bool // 0: clear all of memory on reset
	ShiftInPlace                  bool // 1: 8xy6/8xyE shift Vx instead of copying Vy first
	KeepIndexOnTransfer           bool // 2: Fx55/Fx65 leave I unchanged
	JumpWithVx                    bool // 3: Bnnn jumps to Vx+nnn instead of V0+nnn
	LoresDxy0Is8x16               bool // 4: Dxy0 draws an 8x16 sprite in low resolution
	KeepDisplayOnResolutionSwitch bool // 5: 00FE/00FF do not clear the display
	ClipSprites                   bool // 6: sprites are clipped at the display edges instead of wrapping
	CountRowCollisions            bool // 7: high resolution Dxyn reports the number of colliding rows
	CountBottomClip               bool // 8: high resolution Dxyn adds rows drawn past the bottom edge
	KeepFlagOnLogic               bool // 9: 8xy1/8xy2/8xy3 leave VF unchanged
}

// Preset names a dialect quirk configuration.
type Preset string

// Supported presets.
const (
	Legacy    Preset = "chip8"
	SuperChip Preset = "schip"
	XOChip    Preset = "xochip"
)

// Presets lists all supported presets.
var Presets = []Preset{Legacy, SuperChip, XOChip}

var names = [Count]string{
	"zero-memory",
	"shift-in-place",
	"keep-index",
	"jump-vx",
	"lores-8x16",
	"keep-display",
	"clip",
	"row-collisions",
	"bottom-clip",
	"keep-flag",
}

// Default returns the SUPER-CHIP configuration with all quirks enabled.
func Default() Quirks {
	return FromFlags([Count]bool{true, true, true, true, true, true, true, true, true, true})
}

// ForPreset returns the quirk configuration of the given preset.
func ForPreset(preset Preset) (Quirks, error) {
	switch preset {
	case Legacy:
		// CHIP-8 clips sprites like SUPER-CHIP, only XO-CHIP wraps them
		return Quirks{ClipSprites: true}, nil
	case XOChip:
		return Quirks{KeepFlagOnLogic: true}, nil
	case SuperChip:
		return Default(), nil
	default:
		return Quirks{}, fmt.Errorf("unsupported preset '%s'", preset)
	}
}

// ParsePreset converts a preset name given on the command line. Common
// spellings of the dialect names are accepted.
func ParsePreset(s string) (Preset, error) {
	switch strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(s)) {
	case "chip8", "legacy", "cosmac":
		return Legacy, nil
	case "schip", "superchip", "default", "":
		return SuperChip, nil
	case "xochip", "xo":
		return XOChip, nil
	default:
		return "", fmt.Errorf("unsupported preset '%s'", s)
	}
}

// FromFlags builds a configuration from the indexed flag form.
func FromFlags(flags [Count]bool) Quirks {
	return Quirks{
		ZeroMemoryOnReset:             flags[0],
		ShiftInPlace:                  flags[1],
		KeepIndexOnTransfer:           flags[2],
		JumpWithVx:                    flags[3],
		LoresDxy0Is8x16:               flags[4],
		KeepDisplayOnResolutionSwitch: flags[5],
		ClipSprites:                   flags[6],
		CountRowCollisions:            flags[7],
		CountBottomClip:               flags[8],
		KeepFlagOnLogic:               flags[9],
	}
}

// Flags returns the indexed flag form of the configuration.
func (q Quirks) Flags() [Count]bool {
	return [Count]bool{
		q.ZeroMemoryOnReset,
		q.ShiftInPlace,
		q.KeepIndexOnTransfer,
		q.JumpWithVx,
		q.LoresDxy0Is8x16,
		q.KeepDisplayOnResolutionSwitch,
		q.ClipSprites,
		q.CountRowCollisions,
		q.CountBottomClip,
		q.KeepFlagOnLogic,
	}
}

// Set changes the quirk with the given index.
func (q *Quirks) Set(index int, value bool) error {
	if index < 0 || index >= Count {
		return fmt.Errorf("quirk index %d out of range 0-%d", index, Count-1)
	}
	flags := q.Flags()
	flags[index] = value
	*q = FromFlags(flags)
	return nil
}

// Apply parses an override of the form "index=bool" or "name=bool" and sets
// the matching quirk.
func (q *Quirks) Apply(override string) error {
	key, value, ok := strings.Cut(override, "=")
	if !ok {
		return fmt.Errorf("invalid quirk override '%s', expected index=bool", override)
	}
	enabled, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("parsing quirk value '%s': %w", value, err)
	}

	key = strings.TrimSpace(key)
	index, err := strconv.Atoi(key)
	if err != nil {
		index = indexOf(key)
		if index < 0 {
			return fmt.Errorf("unknown quirk '%s'", key)
		}
	}
	return q.Set(index, enabled)
}

// Name returns the command line name of the quirk with the given index.
func Name(index int) string {
	if index < 0 || index >= Count {
		return ""
	}
	return names[index]
}

// String returns the enabled quirks as a compact list, used for logging.
func (q Quirks) String() string {
	var enabled []string
	for i, set := range q.Flags() {
		if set {
			enabled = append(enabled, names[i])
		}
	}
	if len(enabled) == 0 {
		return "none"
	}
	return strings.Join(enabled, ",")
}

func indexOf(name string) int {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return i
		}
	}
	return -1
}
