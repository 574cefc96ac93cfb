// Package chip8 implements a CHIP-8 virtual machine with the SUPER-CHIP and
// XO-CHIP extensions. A Machine is owned by its caller and driven by calling
// Cycle, which paces instruction execution, timers and display refresh
// against a clock.
package chip8

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/retroenv/chip8vm/internal/display"
	"github.com/retroenv/chip8vm/internal/quirks"
	"github.com/retroenv/chip8vm/internal/storage"
	"github.com/retroenv/chip8vm/internal/timing"
	"github.com/retroenv/retrogolib/log"
)

// Memory layout. Addresses are 16 bit wide, every address computation wraps
// around inside the 64 KiB address space.
const (
	MemorySize = 0x10000

	FontAddress    = 0x000 // 16 glyphs of 5 bytes
	BigFontAddress = 0x050 // 16 glyphs of 10 bytes
	PatternAddress = 0x0F0 // 16 byte audio pattern

	DefaultStartAddress = 0x200

	// StackDepth is the maximum number of nested subroutine calls.
	StackDepth = 16

	// RegisterCount is the number of V registers, VF is the flag register.
	RegisterCount = 16
	flagRegister  = 0xF

	// UserFlagCount is the number of registers that Fx75/Fx85 can persist.
	UserFlagCount = 16
)

// Errors returned by the machine.
var (
	ErrStackOverflow    = errors.New("stack overflow")
	ErrStackUnderflow   = errors.New("stack underflow")
	ErrNoStore          = errors.New("no persistence store configured")
	ErrSnapshotTooShort = errors.New("snapshot too short")
	ErrSnapshotFormat   = errors.New("invalid snapshot format")
)

// Config contains the settings of a machine that are fixed at construction.
type Config struct {
	CPUFrequency     int           // instructions per second, 0 runs unthrottled
	TimerFrequency   int           // timer decrements per second
	RefreshFrequency int           // display refresh signals per second
	MaxElapsed       time.Duration // upper bound of time accounted per cycle

	StartAddress uint16        // program load address and initial PC, 0 selects 0x200
	Quirks       quirks.Quirks // dialect behaviour

	Store   storage.Store // persistence of user flags and state dumps, optional
	Program string        // program name used as persistence key

	Clock timing.Clock // time source, defaults to the system clock
	Seed  uint64       // random number seed, 0 uses a random seed
	Trace bool         // log every executed instruction at debug level
}

// DefaultConfig returns the SUPER-CHIP configuration with default timing.
func DefaultConfig() Config {
	pacing := timing.DefaultConfig()
	return Config{
		CPUFrequency:     pacing.CPUFrequency,
		TimerFrequency:   pacing.TimerFrequency,
		RefreshFrequency: pacing.RefreshFrequency,
		MaxElapsed:       pacing.MaxElapsed,
		StartAddress:     DefaultStartAddress,
		Quirks:           quirks.Default(),
	}
}

// State is the complete architectural state of the machine.
type State struct {
	Memory [MemorySize]byte
	V      [RegisterCount]byte
	I      uint16
	PC     uint16

	Stack [StackDepth]uint16
	SP    int // number of return addresses on the stack

	DT    byte
	ST    byte
	Pitch byte

	Display display.Display
	Plane   display.Plane
	Hires   bool
	Keypad  [KeyCount]KeyState

	Exit           bool // the program requested to stop
	Beep           bool // the sound timer is active
	DisplayUpdated bool // the display should be repainted
}

// Machine is a CHIP-8 interpreter instance.
type Machine struct {
	State

	logger *log.Logger
	quirks quirks.Quirks
	pacer  *timing.Pacer
	rng    *rand.Rand

	store   storage.Store
	program string
	rom     []byte

	startAddress uint16
	trace        bool

	sprite [2 * 32]byte // scratch buffer for the largest dual plane sprite
}

// New returns a reset machine for the given configuration.
func New(logger *log.Logger, cfg Config) *Machine {
	start := cfg.StartAddress
	if start == 0 {
		start = DefaultStartAddress
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	m := &Machine{
		logger: logger,
		quirks: cfg.Quirks,
		pacer: timing.New(logger, cfg.Clock, timing.Config{
			CPUFrequency:     cfg.CPUFrequency,
			TimerFrequency:   cfg.TimerFrequency,
			RefreshFrequency: cfg.RefreshFrequency,
			MaxElapsed:       cfg.MaxElapsed,
		}),
		rng:          rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
		store:        cfg.Store,
		program:      cfg.Program,
		startAddress: start,
		trace:        cfg.Trace,
	}
	m.Reset()
	return m
}

// Quirks returns the dialect configuration of the machine.
func (m *Machine) Quirks() quirks.Quirks {
	return m.quirks
}

// StartAddress returns the program load address.
func (m *Machine) StartAddress() uint16 {
	return m.startAddress
}

// Program returns the name used to key persisted data.
func (m *Machine) Program() string {
	return m.program
}

// Reset performs a power cycle: memory is cleared if the matching quirk is
// set, fonts and the audio pattern are reloaded, the last loaded program is
// copied back to memory and all registers are reset.
func (m *Machine) Reset() {
	if m.quirks.ZeroMemoryOnReset {
		m.Memory = [MemorySize]byte{}
	}
	m.loadFonts()
	m.resetPattern()
	if m.rom != nil {
		m.copyProgram(m.rom)
	}
	m.SoftReset()
}

// SoftReset resets registers, display, keypad and timers but keeps the
// memory contents including the loaded program.
func (m *Machine) SoftReset() {
	m.V = [RegisterCount]byte{}
	m.I = 0
	m.PC = m.startAddress
	m.Stack = [StackDepth]uint16{}
	m.SP = 0
	m.DT = 0
	m.ST = 0
	m.Pitch = DefaultPitch

	m.Display.Reset(display.Both)
	m.Plane = display.Plane1
	m.Hires = false
	m.resetKeypad()

	m.Exit = false
	m.Beep = false
	m.DisplayUpdated = false

	m.pacer.Reset()
}

// LoadProgram copies a program into memory at the start address. Programs
// that do not fit are truncated to the remaining address space.
func (m *Machine) LoadProgram(program []byte) int {
	available := MemorySize - int(m.startAddress)
	if len(program) > available {
		m.logger.Warn("Program truncated to fit into memory",
			log.Int("size", len(program)), log.Int("available", available))
		program = program[:available]
	}

	m.rom = append([]byte(nil), program...)
	m.copyProgram(m.rom)
	m.PC = m.startAddress
	return len(m.rom)
}

// LoadROM reads a program from the reader and loads it into memory. The
// machine is not modified if reading fails.
func (m *Machine) LoadROM(r io.Reader) (int, error) {
	data, err := io.ReadAll(io.LimitReader(r, MemorySize))
	if err != nil {
		return 0, fmt.Errorf("reading program: %w", err)
	}
	return m.LoadProgram(data), nil
}

func (m *Machine) copyProgram(program []byte) {
	copy(m.Memory[m.startAddress:], program)
}

// SetCPUFrequency changes the instruction rate at runtime.
func (m *Machine) SetCPUFrequency(hz int) {
	m.pacer.SetCPUFrequency(hz)
}

// SetTimerFrequency changes the timer rate at runtime.
func (m *Machine) SetTimerFrequency(hz int) {
	m.pacer.SetTimerFrequency(hz)
}

// SetRefreshFrequency changes the display refresh rate at runtime.
func (m *Machine) SetRefreshFrequency(hz int) {
	m.pacer.SetRefreshFrequency(hz)
}

// CPUFrequency returns the active instruction rate.
func (m *Machine) CPUFrequency() int {
	return m.pacer.CPUFrequency()
}

// TimerFrequency returns the active timer rate.
func (m *Machine) TimerFrequency() int {
	return m.pacer.TimerFrequency()
}

// RefreshFrequency returns the active display refresh rate.
func (m *Machine) RefreshFrequency() int {
	return m.pacer.RefreshFrequency()
}

// ResetClock discards the time elapsed since the previous cycle, execution
// continues as if the machine was never halted.
func (m *Machine) ResetClock() {
	m.pacer.Reset()
}

// Cycle advances the machine by the time elapsed since the previous call. It
// executes at most one instruction and reports whether it did. Timers and the
// display refresh signal are updated independently of instruction execution.
func (m *Machine) Cycle() (bool, error) {
	m.DisplayUpdated = false
	tick := m.pacer.Advance()

	var err error
	executed := false
	if tick.Execute && !m.Exit {
		err = m.Execute()
		executed = true
	}

	for range tick.TimerTicks {
		m.tickTimers()
	}
	if tick.Refresh {
		m.DisplayUpdated = true
	}

	return executed, err
}

// tickTimers decrements the delay and sound timers once.
func (m *Machine) tickTimers() {
	if m.DT > 0 {
		m.DT--
	}
	if m.ST > 0 {
		m.Beep = true
		m.ST--
	} else {
		m.Beep = false
	}
}

// Frame returns a copy of the display for renderers.
func (m *Machine) Frame() display.Frame {
	return m.Display.Frame(m.Hires)
}

// read returns the byte at the address offset from base, wrapping around the
// address space.
func (m *Machine) read(base uint16, offset int) byte {
	return m.Memory[base+uint16(offset)]
}

// write stores a byte at the address offset from base, wrapping around the
// address space.
func (m *Machine) write(base uint16, offset int, value byte) {
	m.Memory[base+uint16(offset)] = value
}
