package terminal

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/retroenv/chip8vm/internal/display"
	"github.com/retroenv/retrogolib/assert"
)

func TestRender(t *testing.T) {
	var frame display.Frame
	frame.Planes[0][0][0] = true
	frame.Planes[0][0][1] = true
	frame.Planes[1][1][1] = true
	frame.Planes[1][1][2] = true

	var buf bytes.Buffer
	assert.NoError(t, Render(&buf, &frame, 0))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, display.Height/2)
	assert.True(t, strings.HasPrefix(lines[0], "▀█▄ "))
	assert.Equal(t, display.Width, len([]rune(lines[0])))
	assert.Equal(t, strings.Repeat(" ", display.Width), lines[1])
}

func TestRenderDownscaled(t *testing.T) {
	var frame display.Frame
	frame.Planes[0][0][0] = true
	frame.Planes[0][2][0] = true

	var buf bytes.Buffer
	assert.NoError(t, Render(&buf, &frame, 80))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, display.Height/4)
	assert.Equal(t, display.Width/2, len([]rune(lines[0])))
	assert.True(t, strings.HasPrefix(lines[0], "█ "))
}

func TestColumnsNoTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	assert.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, 0, Columns(int(f.Fd())))
}
