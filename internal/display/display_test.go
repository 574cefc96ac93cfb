package display

import (
	"testing"

	"github.com/retroenv/chip8vm/internal/quirks"
	"github.com/retroenv/retrogolib/assert"
)

func TestDrawLoresOverlap(t *testing.T) {
	var d Display
	for y := range 6 {
		for x := range 6 {
			d.SetPixel(0, x, y, true)
		}
	}

	sprite := []byte{0xFF, 0xFF, 0xFF}
	vf := d.Draw(sprite, 2, 2, Layout(3, false, quirks.Default()), Plane1, false, quirks.Default())
	assert.Equal(t, byte(1), vf)

	for y := range 6 {
		for x := range 6 {
			want := y < 4 || x < 4
			assert.Equal(t, want, d.Pixel(0, x, y), "pixel", x, y)
		}
	}
	assert.True(t, d.Pixel(0, 6, 6))
	assert.True(t, d.Pixel(0, 19, 9))
	assert.False(t, d.Pixel(0, 20, 9))
	assert.False(t, d.Pixel(0, 19, 10))
}

func TestDrawPlaneSelection(t *testing.T) {
	q := quirks.Default()
	layout := Layout(1, true, q)

	t.Run("none", func(t *testing.T) {
		var d Display
		vf := d.Draw([]byte{0xFF}, 0, 0, layout, None, true, q)
		assert.Equal(t, byte(0), vf)
		assert.False(t, d.Pixel(0, 0, 0))
	})

	t.Run("plane2 uses first bytes", func(t *testing.T) {
		var d Display
		d.Draw([]byte{0x80}, 0, 0, layout, Plane2, true, q)
		assert.False(t, d.Pixel(0, 0, 0))
		assert.True(t, d.Pixel(1, 0, 0))
	})

	t.Run("both planes use separate bytes", func(t *testing.T) {
		var d Display
		vf := d.Draw([]byte{0x80, 0x40}, 0, 0, layout, Both, true, q)
		assert.Equal(t, byte(0), vf)
		assert.True(t, d.Pixel(0, 0, 0))
		assert.False(t, d.Pixel(0, 1, 0))
		assert.False(t, d.Pixel(1, 0, 0))
		assert.True(t, d.Pixel(1, 1, 0))

		vf = d.Draw([]byte{0x00, 0x40}, 0, 0, layout, Both, true, q)
		assert.Equal(t, byte(1), vf)
		assert.True(t, d.Pixel(0, 0, 0))
		assert.False(t, d.Pixel(1, 1, 0))
	})
}

func TestDrawEdges(t *testing.T) {
	tests := []struct {
		name  string
		clip  bool
		x     int
		lit   []int
		unlit []int
	}{
		{"wrap", false, 126, []int{126, 127, 0, 5}, []int{6, 125}},
		{"clip", true, 126, []int{126, 127}, []int{0, 5}},
		{"start coordinate reduced", true, 130, []int{2, 9}, []int{1, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := quirks.Quirks{ClipSprites: tt.clip}
			var d Display
			d.Draw([]byte{0xFF}, tt.x, 0, Layout(1, true, q), Plane1, true, q)
			for _, x := range tt.lit {
				assert.True(t, d.Pixel(0, x, 0), "lit", x)
			}
			for _, x := range tt.unlit {
				assert.False(t, d.Pixel(0, x, 0), "unlit", x)
			}
		})
	}
}

func TestDrawCollisionCounting(t *testing.T) {
	sprite := []byte{0xFF, 0xFF, 0x00}

	t.Run("any collision", func(t *testing.T) {
		q := quirks.Quirks{}
		var d Display
		d.Draw(sprite, 0, 0, Layout(3, true, q), Plane1, true, q)
		assert.Equal(t, byte(1), d.Draw(sprite, 0, 0, Layout(3, true, q), Plane1, true, q))
	})

	t.Run("row collisions in hires", func(t *testing.T) {
		q := quirks.Quirks{CountRowCollisions: true}
		var d Display
		d.Draw(sprite, 0, 0, Layout(3, true, q), Plane1, true, q)
		assert.Equal(t, byte(2), d.Draw(sprite, 0, 0, Layout(3, true, q), Plane1, true, q))
	})

	t.Run("row collisions ignored in lores", func(t *testing.T) {
		q := quirks.Quirks{CountRowCollisions: true}
		var d Display
		d.Draw(sprite, 0, 0, Layout(3, false, q), Plane1, false, q)
		assert.Equal(t, byte(1), d.Draw(sprite, 0, 0, Layout(3, false, q), Plane1, false, q))
	})

	t.Run("big sprite byte pair counts as one row", func(t *testing.T) {
		q := quirks.Quirks{CountRowCollisions: true}
		big := make([]byte, 32)
		big[0], big[1] = 0x80, 0x01
		var d Display
		layout := Layout(0, true, q)
		d.Draw(big, 0, 0, layout, Plane1, true, q)
		assert.True(t, d.Pixel(0, 0, 0))
		assert.True(t, d.Pixel(0, 15, 0))
		assert.False(t, d.Pixel(0, 0, 1))
		assert.Equal(t, byte(1), d.Draw(big, 0, 0, layout, Plane1, true, q))
	})

	t.Run("bottom clip rows", func(t *testing.T) {
		q := quirks.Quirks{ClipSprites: true, CountBottomClip: true}
		var d Display
		vf := d.Draw([]byte{0x80, 0x80, 0x80, 0x80}, 0, 62, Layout(4, true, q), Plane1, true, q)
		assert.Equal(t, byte(2), vf)
		assert.True(t, d.Pixel(0, 0, 63))
		assert.False(t, d.Pixel(0, 0, 0))
	})
}

func TestLayout(t *testing.T) {
	lores8x16 := quirks.Quirks{LoresDxy0Is8x16: true}

	assert.Equal(t, SpriteLayout{Rows: 5, BytesPerRow: 1}, Layout(5, true, lores8x16))
	assert.Equal(t, SpriteLayout{Rows: 16, BytesPerRow: 2}, Layout(0, true, lores8x16))
	assert.Equal(t, SpriteLayout{Rows: 16, BytesPerRow: 1}, Layout(0, false, lores8x16))
	assert.Equal(t, SpriteLayout{Rows: 16, BytesPerRow: 2}, Layout(0, false, quirks.Quirks{}))
	assert.Equal(t, 32, Layout(0, true, lores8x16).PlaneBytes())
}

func TestScroll(t *testing.T) {
	t.Run("left", func(t *testing.T) {
		var d Display
		d.SetPixel(0, 9, 6, true)
		d.SetPixel(0, 0, 6, true)
		d.SetPixel(1, 9, 6, true)

		d.Scroll(-1, 0, 4, Plane1)
		assert.False(t, d.Pixel(0, 9, 6))
		assert.True(t, d.Pixel(0, 5, 6))
		assert.False(t, d.Pixel(0, 0, 6))
		assert.True(t, d.Pixel(1, 9, 6))
	})

	t.Run("right", func(t *testing.T) {
		var d Display
		d.SetPixel(0, 126, 0, true)
		d.SetPixel(0, 2, 0, true)

		d.Scroll(1, 0, 4, Both)
		assert.True(t, d.Pixel(0, 6, 0))
		assert.False(t, d.Pixel(0, 2, 0))
		assert.False(t, d.Pixel(0, 126, 0))
	})

	t.Run("down and up", func(t *testing.T) {
		var d Display
		d.SetPixel(1, 3, 0, true)

		d.Scroll(0, 1, 2, Plane2)
		assert.True(t, d.Pixel(1, 3, 2))
		assert.False(t, d.Pixel(1, 3, 0))

		d.Scroll(0, -1, 1, Plane2)
		assert.True(t, d.Pixel(1, 3, 1))
	})

	t.Run("none leaves planes", func(t *testing.T) {
		var d Display
		d.SetPixel(0, 3, 3, true)
		d.Scroll(0, 1, 4, None)
		assert.True(t, d.Pixel(0, 3, 3))
	})
}

func TestReset(t *testing.T) {
	var d Display
	d.SetPixel(0, 1, 1, true)
	d.SetPixel(1, 1, 1, true)

	d.Reset(Plane2)
	assert.True(t, d.Pixel(0, 1, 1))
	assert.False(t, d.Pixel(1, 1, 1))

	d.Reset(None)
	assert.True(t, d.Pixel(0, 1, 1))

	d.SetPixel(1, 1, 1, true)
	d.Reset(Both)
	assert.False(t, d.Pixel(0, 1, 1))
	assert.False(t, d.Pixel(1, 1, 1))
}

func TestBinaryRoundTrip(t *testing.T) {
	var d Display
	d.SetPixel(0, 0, 0, true)
	d.SetPixel(0, 127, 63, true)
	d.SetPixel(1, 17, 33, true)

	data, err := d.MarshalBinary()
	assert.NoError(t, err)
	assert.Len(t, data, EncodedSize)

	var restored Display
	assert.NoError(t, restored.UnmarshalBinary(data))
	assert.Equal(t, d, restored)

	assert.Error(t, restored.UnmarshalBinary(data[:10]))
}

func TestFrameColor(t *testing.T) {
	var d Display
	d.SetPixel(0, 1, 0, true)
	d.SetPixel(1, 2, 0, true)
	d.SetPixel(0, 3, 0, true)
	d.SetPixel(1, 3, 0, true)

	frame := d.Frame(true)
	assert.True(t, frame.Hires)
	assert.Equal(t, 0, frame.Color(0, 0))
	assert.Equal(t, 1, frame.Color(1, 0))
	assert.Equal(t, 2, frame.Color(2, 0))
	assert.Equal(t, 3, frame.Color(3, 0))
	assert.Equal(t, "both", Both.String())
}
