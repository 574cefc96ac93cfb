// Package host drives a machine: it feeds input from a frontend into the
// machine, runs cycles and publishes frames and audio state.
package host

import (
	"context"
	"fmt"
	"time"

	"github.com/retroenv/chip8vm/internal/chip8"
	"github.com/retroenv/chip8vm/internal/frontend"
	"github.com/retroenv/retrogolib/log"
)

// DefaultIdleSleep is the pause after a cycle that did not execute an
// instruction.
const DefaultIdleSleep = 200 * time.Microsecond

// SpeedStep is the CPU frequency change of a speed control.
const SpeedStep = 100

// AudioSink consumes the audio state of the machine.
type AudioSink interface {
	Update(state chip8.AudioState)
}

// Options configure a driver.
type Options struct {
	MaxCycles int           // stop after this many executed instructions, 0 runs until exit
	IdleSleep time.Duration // pause when no instruction was due, 0 selects DefaultIdleSleep
}

// Result summarizes a finished run.
type Result struct {
	Instructions int  // number of executed instructions
	Frames       int  // number of presented frames
	Exited       bool // the program requested to stop
	Paused       bool // execution was paused when the run ended
}

// Driver runs a machine against a frontend.
type Driver struct {
	logger   *log.Logger
	machine  *chip8.Machine
	frontend frontend.Frontend
	audio    AudioSink
	opts     Options

	paused bool
}

// New returns a new driver. The audio sink is optional.
func New(logger *log.Logger, machine *chip8.Machine, fe frontend.Frontend, audio AudioSink, opts Options) *Driver {
	if opts.IdleSleep <= 0 {
		opts.IdleSleep = DefaultIdleSleep
	}
	return &Driver{
		logger:   logger,
		machine:  machine,
		frontend: fe,
		audio:    audio,
		opts:     opts,
	}
}

// Run executes the machine until the program exits, the frontend quits, the
// cycle limit is reached or the context is canceled. Machine errors stop the
// run and are returned. Runtime controls of the frontend are applied between
// cycles, no cycles run while paused.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	var result Result
	beep := false

	for {
		select {
		case <-ctx.Done():
			result.Paused = d.paused
			return result, fmt.Errorf("running machine: %w", ctx.Err())
		case <-d.frontend.Done():
			d.logger.Debug("Frontend closed")
			result.Paused = d.paused
			return result, nil
		default:
		}

		d.processControls()
		d.processKeys()

		if d.paused {
			time.Sleep(d.opts.IdleSleep)
			continue
		}

		executed, err := d.machine.Cycle()
		if err != nil {
			return result, fmt.Errorf("running machine: %w", err)
		}

		if d.machine.DisplayUpdated {
			d.frontend.Present(d.machine.Frame())
			result.Frames++
		}
		if d.audio != nil && (d.machine.DisplayUpdated || d.machine.Beep != beep) {
			d.audio.Update(d.machine.Audio())
			beep = d.machine.Beep
		}

		if executed {
			result.Instructions++
		}
		if d.machine.Exit {
			d.logger.Debug("Program exited", log.Hex("pc", d.machine.PC))
			result.Exited = true
			return result, nil
		}

		if !executed {
			time.Sleep(d.opts.IdleSleep)
			continue
		}
		if d.opts.MaxCycles > 0 && result.Instructions >= d.opts.MaxCycles {
			d.logger.Debug("Cycle limit reached", log.Int("cycles", result.Instructions))
			return result, nil
		}
	}
}

// processControls applies all pending runtime controls.
func (d *Driver) processControls() {
	for {
		select {
		case control := <-d.frontend.Controls():
			d.applyControl(control)
		default:
			return
		}
	}
}

func (d *Driver) applyControl(control frontend.Control) {
	switch control {
	case frontend.ControlPause:
		d.paused = !d.paused
		if !d.paused {
			d.machine.ResetClock()
		}
		d.logger.Info("Execution paused", log.Bool("paused", d.paused))

	case frontend.ControlSpeedUp, frontend.ControlSlowDown:
		hz := d.machine.CPUFrequency()
		if hz == 0 {
			d.logger.Debug("CPU runs unthrottled, ignoring speed change")
			return
		}
		if control == frontend.ControlSpeedUp {
			hz += SpeedStep
		} else {
			hz = max(hz-SpeedStep, SpeedStep)
		}
		d.machine.SetCPUFrequency(hz)
		d.logger.Info("CPU frequency changed", log.Int("frequency", hz))

	case frontend.ControlSaveState:
		if err := d.machine.SaveState(); err != nil {
			d.logger.Warn("Saving state failed", log.Err(err))
			return
		}
		d.logger.Info("State saved")

	case frontend.ControlLoadState:
		if err := d.machine.LoadState(); err != nil {
			d.logger.Warn("Loading state failed", log.Err(err))
			return
		}
		d.presentFrame()
		d.logger.Info("State loaded")

	case frontend.ControlReset:
		d.machine.SoftReset()
		d.presentFrame()
		d.logger.Info("Machine reset")

	default:
		d.logger.Debug("Unknown control", log.Stringer("control", control))
	}
}

// presentFrame shows a display that changed outside of a cycle.
func (d *Driver) presentFrame() {
	d.frontend.Present(d.machine.Frame())
}

// processKeys applies all pending key events to the machine.
func (d *Driver) processKeys() {
	for {
		select {
		case event := <-d.frontend.KeyEvents():
			d.machine.SetKey(event.Key, event.Down)
		default:
			return
		}
	}
}
