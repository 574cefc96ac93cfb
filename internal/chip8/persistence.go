package chip8

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/retroenv/chip8vm/internal/display"
	"github.com/retroenv/chip8vm/internal/quirks"
	"github.com/retroenv/chip8vm/internal/storage"
	"github.com/retroenv/retrogolib/log"
)

const snapshotVersion = 2

var snapshotMagic = [4]byte{'C', 'H', '8', 'S'}

// snapshot is the serialized machine state, encoded big endian with a fixed
// layout.
type snapshot struct {
	Magic   [4]byte
	Version uint16

	Quirks           [quirks.Count]bool
	CPUFrequency     uint32
	TimerFrequency   uint32
	RefreshFrequency uint32
	StartAddress     uint16

	Memory [MemorySize]byte
	V      [RegisterCount]byte
	I      uint16
	PC     uint16
	SP     uint8
	Stack  [StackDepth]uint16

	DT    uint8
	ST    uint8
	Pitch uint8

	Plane   uint8
	Hires   bool
	Exit    bool
	Keypad  [KeyCount]uint8
	Display [display.EncodedSize]byte
}

// SnapshotSize is the size of a state dump in bytes.
var SnapshotSize = binary.Size(snapshot{})

// Dump serializes the complete machine state.
func (m *Machine) Dump() ([]byte, error) {
	s := &snapshot{
		Magic:   snapshotMagic,
		Version: snapshotVersion,

		Quirks:           m.quirks.Flags(),
		CPUFrequency:     uint32(m.pacer.CPUFrequency()),
		TimerFrequency:   uint32(m.pacer.TimerFrequency()),
		RefreshFrequency: uint32(m.pacer.RefreshFrequency()),
		StartAddress:     m.startAddress,

		Memory: m.Memory,
		V:      m.V,
		I:      m.I,
		PC:     m.PC,
		SP:     uint8(m.SP),
		Stack:  m.Stack,
		DT:     m.DT,
		ST:     m.ST,
		Pitch:  m.Pitch,
		Plane:  uint8(m.Plane),
		Hires:  m.Hires,
		Exit:   m.Exit,
	}
	for i, state := range m.Keypad {
		s.Keypad[i] = uint8(state)
	}

	pixels, err := m.Display.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encoding display: %w", err)
	}
	copy(s.Display[:], pixels)

	buf := bytes.NewBuffer(make([]byte, 0, SnapshotSize))
	if err := binary.Write(buf, binary.BigEndian, s); err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Restore replaces the machine state with a dump created by Dump, including
// the quirks, the frequencies and the start address it was created with. The
// state is left untouched if the dump is invalid.
func (m *Machine) Restore(data []byte) error {
	if len(data) < SnapshotSize {
		return fmt.Errorf("%w: %d of %d bytes", ErrSnapshotTooShort, len(data), SnapshotSize)
	}

	s := &snapshot{}
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, s); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}
	if s.Magic != snapshotMagic {
		return fmt.Errorf("%w: bad magic %q", ErrSnapshotFormat, s.Magic[:])
	}
	if s.Version != snapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrSnapshotFormat, s.Version)
	}
	if int(s.SP) > StackDepth || s.Plane > uint8(display.Both) || s.StartAddress == 0 {
		return fmt.Errorf("%w: register out of range", ErrSnapshotFormat)
	}
	var keypad [KeyCount]KeyState
	for i, state := range s.Keypad {
		if state > uint8(KeyReleased) {
			return fmt.Errorf("%w: invalid key state %d", ErrSnapshotFormat, state)
		}
		keypad[i] = KeyState(state)
	}

	var screen display.Display
	if err := screen.UnmarshalBinary(s.Display[:]); err != nil {
		return fmt.Errorf("decoding display: %w", err)
	}

	m.quirks = quirks.FromFlags(s.Quirks)
	m.startAddress = s.StartAddress
	m.pacer.SetCPUFrequency(int(s.CPUFrequency))
	m.pacer.SetTimerFrequency(int(s.TimerFrequency))
	m.pacer.SetRefreshFrequency(int(s.RefreshFrequency))

	m.Memory = s.Memory
	m.V = s.V
	m.I = s.I
	m.PC = s.PC
	m.SP = int(s.SP)
	m.Stack = s.Stack
	m.DT = s.DT
	m.ST = s.ST
	m.Pitch = s.Pitch
	m.Plane = display.Plane(s.Plane)
	m.Hires = s.Hires
	m.Exit = s.Exit
	m.Keypad = keypad
	m.Display = screen
	m.Beep = false
	m.DisplayUpdated = true
	m.pacer.Reset()
	return nil
}

// SaveState writes a state dump to the persistence store.
func (m *Machine) SaveState() error {
	if m.store == nil {
		return ErrNoStore
	}
	data, err := m.Dump()
	if err != nil {
		return err
	}
	key := storage.StateKey(m.program)
	if err := m.store.Save(key, data); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	m.logger.Debug("Saved state", log.String("key", key), log.Int("size", len(data)))
	return nil
}

// LoadState restores a state dump from the persistence store.
func (m *Machine) LoadState() error {
	if m.store == nil {
		return ErrNoStore
	}
	key := storage.StateKey(m.program)
	data, err := m.store.Load(key)
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}
	if err := m.Restore(data); err != nil {
		return fmt.Errorf("restoring state %s: %w", key, err)
	}
	m.logger.Debug("Restored state", log.String("key", key))
	return nil
}

// SaveUserFlags persists the first count V registers. Previously stored
// registers beyond count are preserved.
func (m *Machine) SaveUserFlags(count int) error {
	if m.store == nil {
		return ErrNoStore
	}
	count = min(count, UserFlagCount)
	key := storage.UserFlagsKey(m.program)

	flags := make([]byte, UserFlagCount)
	existing, err := m.store.Load(key)
	switch {
	case err == nil:
		copy(flags, existing)
	case !errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("reading user flags: %w", err)
	}

	copy(flags, m.V[:count])
	if err := m.store.Save(key, flags); err != nil {
		return fmt.Errorf("writing user flags: %w", err)
	}
	return nil
}

// LoadUserFlags restores the first count V registers. Registers without
// stored data are set to zero.
func (m *Machine) LoadUserFlags(count int) error {
	if m.store == nil {
		return ErrNoStore
	}
	count = min(count, UserFlagCount)

	data, err := m.store.Load(storage.UserFlagsKey(m.program))
	if err != nil {
		return fmt.Errorf("reading user flags: %w", err)
	}

	flags := make([]byte, UserFlagCount)
	copy(flags, data)
	copy(m.V[:count], flags[:count])
	return nil
}
