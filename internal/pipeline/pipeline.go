// Package pipeline orchestrates the emulation workflow stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/chip8vm/internal/app"
	"github.com/retroenv/chip8vm/internal/audio"
	"github.com/retroenv/chip8vm/internal/chip8"
	"github.com/retroenv/chip8vm/internal/config"
	"github.com/retroenv/chip8vm/internal/detector"
	"github.com/retroenv/chip8vm/internal/frontend"
	"github.com/retroenv/chip8vm/internal/host"
	"github.com/retroenv/chip8vm/internal/loader"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/chip8vm/internal/storage"
	"github.com/retroenv/chip8vm/internal/terminal"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates the complete emulation workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
}

// New creates a new emulation pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
}

// Execute runs the complete emulation pipeline. In headless mode the final
// frame is rendered as text to the writer.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, writer io.Writer) (host.Result, error) {
	machine, err := p.Prepare(opts)
	if err != nil {
		return host.Result{}, err
	}

	var result host.Result
	if opts.Headless {
		result, err = p.runHeadless(ctx, opts, machine, writer)
	} else {
		result, err = p.runWindow(ctx, opts, machine)
	}
	if err != nil {
		return result, err
	}

	p.logger.Debug("Emulation finished",
		log.Int("instructions", result.Instructions),
		log.Int("frames", result.Frames))

	if opts.SaveState {
		if err := machine.SaveState(); err != nil {
			return result, fmt.Errorf("saving state: %w", err)
		}
		p.logger.Info("State saved", log.String("key", storage.StateKey(machine.Program())))
	}
	return result, nil
}

// Prepare detects the dialect, loads the ROM and an optional state dump and
// returns the ready to run machine.
func (p *Pipeline) Prepare(opts options.Program) (*chip8.Machine, error) {
	preset, err := p.detector.Detect(opts)
	if err != nil {
		return nil, fmt.Errorf("detecting preset: %w", err)
	}

	rom, state, err := p.loader.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("loading ROM: %w", err)
	}

	store := storage.NewFileStore(config.SaveDir(opts))
	cfg, err := config.MachineConfig(opts, preset, store)
	if err != nil {
		return nil, fmt.Errorf("configuring machine: %w", err)
	}

	machine := chip8.New(p.logger, cfg)
	machine.LoadProgram(rom.Data)

	if state != nil {
		if err := machine.Restore(state); err != nil {
			return nil, fmt.Errorf("restoring state: %w", err)
		}
		p.logger.Debug("State restored", log.String("file", opts.State))
	}
	if opts.LoadState {
		if err := machine.LoadState(); err != nil {
			return nil, fmt.Errorf("restoring state: %w", err)
		}
	}

	app.PrintInfo(p.logger, opts, rom, preset, cfg.Quirks)
	return machine, nil
}

func (p *Pipeline) runHeadless(ctx context.Context, opts options.Program, machine *chip8.Machine,
	writer io.Writer) (host.Result, error) {

	fe := frontend.NewHeadless()
	driver := host.New(p.logger, machine, fe, nil, host.Options{MaxCycles: opts.Cycles})

	result, err := driver.Run(ctx)
	if err != nil {
		return result, fmt.Errorf("running headless: %w", err)
	}

	frame := machine.Frame()
	if err := terminal.Render(writer, &frame, columns(writer)); err != nil {
		return result, fmt.Errorf("rendering frame: %w", err)
	}
	return result, nil
}

// runWindow runs the machine on a separate goroutine while the window owns
// the calling goroutine.
func (p *Pipeline) runWindow(ctx context.Context, opts options.Program, machine *chip8.Machine) (host.Result, error) {
	window := frontend.NewWindow(p.logger, "chip8vm - "+machine.Program(), opts.Scale)

	var sink host.AudioSink
	if !opts.Mute {
		player, err := audio.NewPlayer(p.logger, audio.DefaultSampleRate)
		if err != nil {
			p.logger.Warn("Audio output disabled", log.Err(err))
		} else {
			sink = player
			defer func() { _ = player.Close() }()
		}
	}

	driver := host.New(p.logger, machine, window, sink, host.Options{MaxCycles: opts.Cycles})

	type runResult struct {
		result host.Result
		err    error
	}
	done := make(chan runResult, 1)
	go func() {
		result, err := driver.Run(ctx)
		window.Stop()
		done <- runResult{result: result, err: err}
	}()

	windowErr := window.Run()
	run := <-done

	if err := errors.Join(run.err, windowErr); err != nil {
		return run.result, fmt.Errorf("running window: %w", err)
	}
	return run.result, nil
}

// columns returns the terminal width of the writer, 0 if it is not a
// terminal.
func columns(writer io.Writer) int {
	f, ok := writer.(*os.File)
	if !ok {
		return 0
	}
	return terminal.Columns(int(f.Fd()))
}
