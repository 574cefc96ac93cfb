//go:build !headless

package frontend

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/chip8vm/internal/display"
	"github.com/retroenv/retrogolib/log"
)

// windowKeys maps keypad keys to keyboard keys.
var windowKeys = layoutKeys()

// windowControls maps keyboard keys to runtime controls.
var windowControls = map[ebiten.Key]Control{
	ebiten.KeySpace:      ControlPause,
	ebiten.KeyArrowRight: ControlSpeedUp,
	ebiten.KeyArrowLeft:  ControlSlowDown,
	ebiten.KeyEnter:      ControlSaveState,
	ebiten.KeyF9:         ControlLoadState,
	ebiten.KeyEscape:     ControlReset,
}

// layoutKeys resolves the characters of keyLayout to ebiten keys.
func layoutKeys() [16]ebiten.Key {
	var keys [16]ebiten.Key
	for _, r := range keyLayout {
		key, _ := KeypadKey(r)
		if err := keys[key].UnmarshalText([]byte(keyName(r))); err != nil {
			panic(fmt.Sprintf("resolving keypad key %c: %s", r, err))
		}
	}
	return keys
}

// Window is a desktop window frontend. Run has to be called from the main
// goroutine, all other methods are safe for concurrent use.
type Window struct {
	logger *log.Logger
	title  string
	scale  int

	mu     sync.Mutex
	pixels []byte
	image  *ebiten.Image

	keys     chan KeyEvent
	controls chan Control
	done     chan struct{}
	doneOnce sync.Once
	stopped  atomic.Bool
}

// NewWindow returns a new window frontend. The window is opened by Run.
func NewWindow(logger *log.Logger, title string, scale int) *Window {
	if scale < 1 {
		scale = 1
	}
	return &Window{
		logger: logger,
		title:  title,
		scale:  scale,
		pixels: make([]byte, display.Width*display.Height*4),
		keys:     make(chan KeyEvent, keyBufferSize),
		controls: make(chan Control, keyBufferSize),
		done:     make(chan struct{}),
	}
}

// Run opens the window and blocks until it is closed or Stop is called.
func (w *Window) Run() error {
	ebiten.SetWindowSize(display.Width*w.scale, display.Height*w.scale)
	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowResizable(true)

	w.logger.Debug("Opening window", log.String("title", w.title), log.Int("scale", w.scale))
	err := ebiten.RunGame(w)
	w.markDone()
	if err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	return nil
}

// Stop closes the window at the next update.
func (w *Window) Stop() {
	w.stopped.Store(true)
}

// Present converts the frame to pixels for the next draw.
func (w *Window) Present(frame display.Frame) {
	w.mu.Lock()
	w.pixels = RGBA(&frame, w.pixels)
	w.mu.Unlock()
}

// KeyEvents returns the key event channel.
func (w *Window) KeyEvents() <-chan KeyEvent {
	return w.keys
}

// Controls returns the runtime control channel.
func (w *Window) Controls() <-chan Control {
	return w.controls
}

// Done is closed when the window was closed.
func (w *Window) Done() <-chan struct{} {
	return w.done
}

// Update implements ebiten.Game.
func (w *Window) Update() error {
	if w.stopped.Load() {
		w.markDone()
		return ebiten.Termination
	}

	for key, hostKey := range windowKeys {
		if inpututil.IsKeyJustPressed(hostKey) {
			w.sendKey(KeyEvent{Key: key, Down: true})
		}
		if inpututil.IsKeyJustReleased(hostKey) {
			w.sendKey(KeyEvent{Key: key, Down: false})
		}
	}
	for hostKey, control := range windowControls {
		if inpututil.IsKeyJustPressed(hostKey) && !send(w.controls, control) {
			w.logger.Debug("Control dropped", log.Stringer("control", control))
		}
	}
	return nil
}

// Draw implements ebiten.Game.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.image == nil {
		w.image = ebiten.NewImage(display.Width, display.Height)
	}

	w.mu.Lock()
	w.image.WritePixels(w.pixels)
	w.mu.Unlock()
	screen.DrawImage(w.image, nil)
}

// Layout implements ebiten.Game.
func (w *Window) Layout(_, _ int) (int, int) {
	return display.Width, display.Height
}

func (w *Window) sendKey(event KeyEvent) {
	if !send(w.keys, event) {
		w.logger.Debug("Key event dropped",
			log.Int("key", event.Key), log.String("host", string(HostKey(event.Key))))
	}
}

func (w *Window) markDone() {
	w.doneOnce.Do(func() { close(w.done) })
}
