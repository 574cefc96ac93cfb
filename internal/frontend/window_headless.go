//go:build headless

package frontend

import (
	"errors"

	"github.com/retroenv/retrogolib/log"
)

// ErrNoWindow is returned by Run in builds without window support.
var ErrNoWindow = errors.New("window support not compiled in")

// Window is unavailable in headless builds, it behaves like a Headless
// frontend whose Run fails.
type Window struct {
	*Headless
}

// NewWindow returns a window stub.
func NewWindow(_ *log.Logger, _ string, _ int) *Window {
	return &Window{Headless: NewHeadless()}
}

// Run returns ErrNoWindow.
func (w *Window) Run() error {
	w.Close()
	return ErrNoWindow
}

// Stop closes the frontend.
func (w *Window) Stop() {
	w.Close()
}
