package frontend

import (
	"strings"
	"unicode"
)

// keyLayout lists the host keys in keypad order: the left block of a QWERTY
// keyboard maps onto the 4x4 hexadecimal keypad
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
const keyLayout = "X123QWEASDZC4RFV"

// KeypadKey returns the keypad key for a host keyboard character.
func KeypadKey(r rune) (int, bool) {
	index := strings.IndexRune(keyLayout, unicode.ToUpper(r))
	if index < 0 {
		return 0, false
	}
	return index, true
}

// HostKey returns the host keyboard character for a keypad key.
func HostKey(key int) rune {
	if key < 0 || key >= len(keyLayout) {
		return 0
	}
	return rune(keyLayout[key])
}

// keyName returns the physical key name of a host keyboard character as used
// by window toolkits, for example "Digit1" or "Q".
func keyName(r rune) string {
	r = unicode.ToUpper(r)
	if unicode.IsDigit(r) {
		return "Digit" + string(r)
	}
	return string(r)
}
