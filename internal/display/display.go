// Package display implements the two XO-CHIP bitplanes together with the
// sprite drawing, scrolling and collision rules of the supported dialects.
package display

import (
	"errors"
	"fmt"
)

// Physical dimensions of each bitplane. Low resolution mode addresses the
// same grid with every logical pixel covering a 2x2 block.
const (
	Width       = 128
	Height      = 64
	LoresWidth  = Width / 2
	LoresHeight = Height / 2

	// PlaneCount is the number of independent bitplanes.
	PlaneCount = 2

	// EncodedSize is the size of the packed representation of both planes.
	EncodedSize = PlaneCount * Width * Height / 8
)

// ErrEncodedSize is returned when decoding a packed display of the wrong size.
var ErrEncodedSize = errors.New("invalid encoded display size")

// Plane selects the bitplanes affected by draw, clear and scroll operations.
type Plane byte

// Plane selectors, usable as a bit mask.
const (
	None   Plane = 0
	Plane1 Plane = 1
	Plane2 Plane = 2
	Both   Plane = Plane1 | Plane2
)

func (p Plane) String() string {
	switch p {
	case None:
		return "none"
	case Plane1:
		return "plane1"
	case Plane2:
		return "plane2"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("plane(%d)", byte(p))
	}
}

// selects reports whether the selector includes the plane with the given index.
func (p Plane) selects(index int) bool {
	return p&(1<<index) != 0
}

// Grid is a single bitplane indexed by row then column.
type Grid [Height][Width]bool

// Display holds both bitplanes.
type Display struct {
	planes [PlaneCount]Grid
}

// Pixel returns the pixel of the plane with the given index (0 or 1).
func (d *Display) Pixel(plane, x, y int) bool {
	return d.planes[plane][y][x]
}

// SetPixel sets the pixel of the plane with the given index (0 or 1).
func (d *Display) SetPixel(plane, x, y int, value bool) {
	d.planes[plane][y][x] = value
}

// Reset clears the selected planes.
func (d *Display) Reset(p Plane) {
	for i := range d.planes {
		if p.selects(i) {
			d.planes[i] = Grid{}
		}
	}
}

// Scroll shifts the selected planes by n physical pixels along one axis.
// dx and dy give the direction and are each -1, 0 or 1. Pixels shifted in
// from the edge are cleared, unselected planes are left untouched.
func (d *Display) Scroll(dx, dy, n int, p Plane) {
	var shadow [PlaneCount]Grid
	for i := range d.planes {
		for y := range Height {
			for x := range Width {
				sx := x - dx*n
				sy := y - dy*n
				if sx < 0 || sx >= Width || sy < 0 || sy >= Height {
					continue
				}
				shadow[i][y][x] = d.planes[i][sy][sx]
			}
		}
	}

	for i := range d.planes {
		if p.selects(i) {
			d.planes[i] = shadow[i]
		}
	}
}

// Frame returns a copy of both planes for consumers outside the machine.
func (d *Display) Frame(hires bool) Frame {
	return Frame{
		Planes: d.planes,
		Hires:  hires,
	}
}

// MarshalBinary packs both planes into EncodedSize bytes, most significant
// bit first.
func (d *Display) MarshalBinary() ([]byte, error) {
	data := make([]byte, EncodedSize)
	bit := 0
	for i := range d.planes {
		for y := range Height {
			for x := range Width {
				if d.planes[i][y][x] {
					data[bit/8] |= 0x80 >> (bit % 8)
				}
				bit++
			}
		}
	}
	return data, nil
}

// UnmarshalBinary restores both planes from a packed representation.
func (d *Display) UnmarshalBinary(data []byte) error {
	if len(data) != EncodedSize {
		return fmt.Errorf("%w: %d bytes", ErrEncodedSize, len(data))
	}
	bit := 0
	for i := range d.planes {
		for y := range Height {
			for x := range Width {
				d.planes[i][y][x] = data[bit/8]&(0x80>>(bit%8)) != 0
				bit++
			}
		}
	}
	return nil
}

// Frame is an immutable copy of the display handed to renderers.
type Frame struct {
	Planes [PlaneCount]Grid
	Hires  bool
}

// Color returns the combined plane bits of a physical pixel: bit 0 is set for
// plane 1 and bit 1 for plane 2.
func (f *Frame) Color(x, y int) int {
	c := 0
	if f.Planes[0][y][x] {
		c |= 1
	}
	if f.Planes[1][y][x] {
		c |= 2
	}
	return c
}
