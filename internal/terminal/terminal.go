// Package terminal renders display frames as text.
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/chip8vm/internal/display"
	"golang.org/x/term"
)

const (
	upperHalf = '▀'
	lowerHalf = '▄'
	fullBlock = '█'
)

// Columns returns the width of the terminal connected to the file
// descriptor, 0 is returned if it is not a terminal.
func Columns(fd int) int {
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}

// Render writes the frame using half block characters, every character
// covers two vertically adjacent pixels. Frames are downscaled by two if
// columns is positive and smaller than the display width.
func Render(w io.Writer, frame *display.Frame, columns int) error {
	step := 1
	if columns > 0 && columns < display.Width {
		step = 2
	}

	var b strings.Builder
	for y := 0; y < display.Height; y += 2 * step {
		for x := 0; x < display.Width; x += step {
			top := frame.Color(x, y) != 0
			bottom := frame.Color(x, y+step) != 0
			b.WriteRune(cell(top, bottom))
		}
		b.WriteByte('\n')
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

func cell(top, bottom bool) rune {
	switch {
	case top && bottom:
		return fullBlock
	case top:
		return upperHalf
	case bottom:
		return lowerHalf
	default:
		return ' '
	}
}
