package chip8

// KeyCount is the number of keys of the hexadecimal keypad.
const KeyCount = 16

// KeyState is the state of a single key.
type KeyState byte

// Key states. KeyReleased lasts until the end of the next executed
// instruction and then reverts to KeyUp.
const (
	KeyUp KeyState = iota
	KeyDown
	KeyReleased
)

func (s KeyState) String() string {
	switch s {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyReleased:
		return "released"
	default:
		return "unknown"
	}
}

// SetKey reports a key transition from the input device. Releasing a key that
// was down marks it as released for the next instruction.
func (m *Machine) SetKey(key int, down bool) {
	if key < 0 || key >= KeyCount {
		return
	}
	switch {
	case down:
		m.Keypad[key] = KeyDown
	case m.Keypad[key] == KeyDown:
		m.Keypad[key] = KeyReleased
	}
}

func (m *Machine) resetKeypad() {
	m.Keypad = [KeyCount]KeyState{}
}

// resetReleasedKeys runs after every instruction.
func (m *Machine) resetReleasedKeys() {
	for i, state := range m.Keypad {
		if state == KeyReleased {
			m.Keypad[i] = KeyUp
		}
	}
}

// releasedKey returns the first key in released state.
func (m *Machine) releasedKey() (byte, bool) {
	for i, state := range m.Keypad {
		if state == KeyReleased {
			return byte(i), true
		}
	}
	return 0, false
}
