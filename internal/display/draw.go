package display

import "github.com/retroenv/chip8vm/internal/quirks"

// SpriteLayout describes the shape of a sprite for a given Dxyn instruction.
type SpriteLayout struct {
	Rows        int // number of sprite rows
	BytesPerRow int // 1 for 8 pixel wide, 2 for 16 pixel wide sprites
}

// Width returns the sprite width in logical pixels.
func (l SpriteLayout) Width() int {
	return l.BytesPerRow * 8
}

// PlaneBytes returns the number of sprite bytes consumed per bitplane.
func (l SpriteLayout) PlaneBytes() int {
	return l.Rows * l.BytesPerRow
}

// Layout returns the sprite layout for the row count n of a Dxyn instruction.
// A zero row count selects a 16x16 sprite, or an 8x16 sprite in low resolution
// when the matching quirk is set.
func Layout(n int, hires bool, q quirks.Quirks) SpriteLayout {
	if n != 0 {
		return SpriteLayout{Rows: n, BytesPerRow: 1}
	}
	if !hires && q.LoresDxy0Is8x16 {
		return SpriteLayout{Rows: 16, BytesPerRow: 1}
	}
	return SpriteLayout{Rows: 16, BytesPerRow: 2}
}

// Draw XORs a sprite onto the selected planes and returns the value for the
// flag register. The sprite contains layout.PlaneBytes() bytes per selected
// plane: when both planes are selected the first half is drawn on plane 1 and
// the second half on plane 2.
func (d *Display) Draw(sprite []byte, x, y int, layout SpriteLayout, p Plane, hires bool, q quirks.Quirks) byte {
	if p == None {
		return 0
	}

	width, height, scale := LoresWidth, LoresHeight, 2
	if hires {
		width, height, scale = Width, Height, 1
	}
	x %= width
	y %= height

	var flag byte
	if hires && q.CountBottomClip {
		for row := range layout.Rows {
			if y+row >= height {
				flag++
			}
		}
	}

	planeBytes := layout.PlaneBytes()
	collided := false
	collidedRows := 0

	for row := range layout.Rows {
		rowCollided := false

		for col := range layout.Width() {
			px, py := x+col, y+row
			if px >= width || py >= height {
				if q.ClipSprites {
					continue
				}
				px %= width
				py %= height
			}

			source := 0
			for plane := range PlaneCount {
				if !p.selects(plane) {
					continue
				}
				b := sprite[source+row*layout.BytesPerRow+col/8]
				source += planeBytes
				if b&(0x80>>(col%8)) == 0 {
					continue
				}
				if d.toggle(plane, px*scale, py*scale, scale) {
					rowCollided = true
				}
			}
		}

		if rowCollided {
			collided = true
			collidedRows++
		}
	}

	switch {
	case hires && q.CountRowCollisions:
		return flag + byte(collidedRows)
	case collided:
		return flag + 1
	default:
		return flag
	}
}

// toggle flips a scale x scale block of physical pixels and reports whether
// any of them was set before.
func (d *Display) toggle(plane, x, y, scale int) bool {
	hit := false
	for dy := range scale {
		for dx := range scale {
			pixel := &d.planes[plane][y+dy][x+dx]
			if *pixel {
				hit = true
			}
			*pixel = !*pixel
		}
	}
	return hit
}
