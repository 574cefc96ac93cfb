package frontend

import (
	"testing"

	"github.com/retroenv/chip8vm/internal/display"
	"github.com/retroenv/retrogolib/assert"
)

func TestKeypadKey(t *testing.T) {
	tests := []struct {
		name string
		r    rune
		key  int
		ok   bool
	}{
		{name: "digit", r: '1', key: 0x1, ok: true},
		{name: "upper case", r: 'Q', key: 0x4, ok: true},
		{name: "lower case", r: 'q', key: 0x4, ok: true},
		{name: "key 0", r: 'x', key: 0x0, ok: true},
		{name: "key C", r: '4', key: 0xC, ok: true},
		{name: "key F", r: 'v', key: 0xF, ok: true},
		{name: "lower case key B", r: 'c', key: 0xB, ok: true},
		{name: "unmapped", r: 'p', ok: false},
		{name: "non ascii", r: 'ß', ok: false},
		{name: "non ascii lower case", r: 'ä', ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := KeypadKey(tt.r)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.key, key)
			}
		})
	}
}

func TestHostKey(t *testing.T) {
	for key := range 16 {
		r := HostKey(key)
		back, ok := KeypadKey(r)
		assert.True(t, ok)
		assert.Equal(t, key, back)
	}
	assert.Equal(t, rune(0), HostKey(16))
}

func TestKeyName(t *testing.T) {
	tests := []struct {
		r    rune
		want string
	}{
		{'1', "Digit1"},
		{'4', "Digit4"},
		{'Q', "Q"},
		{'v', "V"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, keyName(tt.r))
	}

	names := map[string]bool{}
	for key := range 16 {
		names[keyName(HostKey(key))] = true
	}
	assert.Len(t, names, 16)
}

func TestControlString(t *testing.T) {
	assert.Equal(t, "pause", ControlPause.String())
	assert.Equal(t, "load state", ControlLoadState.String())
	assert.Equal(t, "reset", ControlReset.String())
	assert.Equal(t, "control(42)", Control(42).String())
}

func TestRGBA(t *testing.T) {
	var frame display.Frame
	frame.Planes[0][0][1] = true
	frame.Planes[1][0][2] = true
	frame.Planes[0][0][3] = true
	frame.Planes[1][0][3] = true

	pixels := RGBA(&frame, nil)
	assert.Len(t, pixels, display.Width*display.Height*4)

	for x := range 4 {
		c := Palette[x]
		assert.Equal(t, []byte{c.R, c.G, c.B, c.A}, pixels[x*4:x*4+4])
	}
}

func TestHeadless(t *testing.T) {
	h := NewHeadless()
	assert.Equal(t, 0, h.Frames())

	var frame display.Frame
	frame.Hires = true
	h.Present(frame)
	assert.Equal(t, 1, h.Frames())
	last := h.Last()
	assert.True(t, last.Hires)

	assert.True(t, h.Press(5, true))
	event := <-h.KeyEvents()
	assert.Equal(t, KeyEvent{Key: 5, Down: true}, event)

	assert.True(t, h.Control(ControlPause))
	control := <-h.Controls()
	assert.Equal(t, ControlPause, control)

	select {
	case <-h.Done():
		t.Fatal("done closed before Close")
	default:
	}
	h.Close()
	h.Close()
	<-h.Done()
}

func TestHeadlessKeyBufferFull(t *testing.T) {
	h := NewHeadless()
	for range keyBufferSize {
		assert.True(t, h.Press(1, true))
	}
	assert.False(t, h.Press(1, false))

	for range keyBufferSize {
		assert.True(t, h.Control(ControlSpeedUp))
	}
	assert.False(t, h.Control(ControlSlowDown))
}
