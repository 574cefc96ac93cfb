// Package timing converts elapsed wall clock time into instruction, timer and
// display refresh ticks for the interpreter.
package timing

import (
	"time"

	"github.com/retroenv/retrogolib/log"
)

// Default frequencies in Hz.
const (
	DefaultCPUFrequency     = 1000
	DefaultTimerFrequency   = 60
	DefaultRefreshFrequency = 60

	// DefaultMaxElapsed limits the time accounted for a single sample.
	DefaultMaxElapsed = 250 * time.Millisecond
)

// Clock returns the current time. It has to be monotonic.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the monotonic system clock.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Config contains the frequencies used by a Pacer.
type Config struct {
	CPUFrequency     int           // instructions per second, 0 executes one instruction per sample
	TimerFrequency   int           // delay and sound timer decrements per second
	RefreshFrequency int           // display refresh signals per second
	MaxElapsed       time.Duration // upper bound for a single sample, 0 disables the bound
}

// DefaultConfig returns the default pacing configuration.
func DefaultConfig() Config {
	return Config{
		CPUFrequency:     DefaultCPUFrequency,
		TimerFrequency:   DefaultTimerFrequency,
		RefreshFrequency: DefaultRefreshFrequency,
		MaxElapsed:       DefaultMaxElapsed,
	}
}

// Tick is the result of a single Advance call.
type Tick struct {
	Execute    bool          // execute one instruction
	TimerTicks int           // number of timer decrements due
	Refresh    bool          // the display should be repainted
	Elapsed    time.Duration // time accounted for this sample after clamping
}

// Pacer tracks three independent clocks that share one time source.
type Pacer struct {
	logger *log.Logger
	clock  Clock

	cpuFrequency     int
	timerFrequency   int
	refreshFrequency int
	maxElapsed       time.Duration

	cpuThreshold     time.Duration
	timerThreshold   time.Duration
	refreshThreshold time.Duration

	cpuElapsed     time.Duration
	timerElapsed   time.Duration
	refreshElapsed time.Duration

	last time.Time
}

// New returns a pacer using the given clock. Invalid frequencies are replaced
// by their defaults.
func New(logger *log.Logger, clock Clock, cfg Config) *Pacer {
	if clock == nil {
		clock = SystemClock{}
	}
	p := &Pacer{
		logger:     logger,
		clock:      clock,
		maxElapsed: cfg.MaxElapsed,
	}
	p.SetCPUFrequency(cfg.CPUFrequency)
	p.SetTimerFrequency(cfg.TimerFrequency)
	p.SetRefreshFrequency(cfg.RefreshFrequency)
	p.Reset()
	return p
}

// Reset clears all accumulated time and restarts measuring from now.
func (p *Pacer) Reset() {
	p.cpuElapsed = 0
	p.timerElapsed = 0
	p.refreshElapsed = 0
	p.last = p.clock.Now()
}

// SetCPUFrequency changes the instruction rate. Zero runs unthrottled, negative
// values select the default.
func (p *Pacer) SetCPUFrequency(hz int) {
	if hz < 0 {
		p.logger.Debug("Invalid CPU frequency, using default",
			log.Int("frequency", hz), log.Int("default", DefaultCPUFrequency))
		hz = DefaultCPUFrequency
	}
	p.cpuFrequency = hz
	p.cpuThreshold = threshold(hz)
}

// SetTimerFrequency changes the timer decrement rate. Values below 1 select
// the default.
func (p *Pacer) SetTimerFrequency(hz int) {
	if hz <= 0 {
		p.logger.Debug("Invalid timer frequency, using default",
			log.Int("frequency", hz), log.Int("default", DefaultTimerFrequency))
		hz = DefaultTimerFrequency
	}
	p.timerFrequency = hz
	p.timerThreshold = threshold(hz)
}

// SetRefreshFrequency changes the display refresh rate. Values below 1 select
// the default.
func (p *Pacer) SetRefreshFrequency(hz int) {
	if hz <= 0 {
		p.logger.Debug("Invalid refresh frequency, using default",
			log.Int("frequency", hz), log.Int("default", DefaultRefreshFrequency))
		hz = DefaultRefreshFrequency
	}
	p.refreshFrequency = hz
	p.refreshThreshold = threshold(hz)
}

// CPUFrequency returns the active instruction rate.
func (p *Pacer) CPUFrequency() int { return p.cpuFrequency }

// TimerFrequency returns the active timer rate.
func (p *Pacer) TimerFrequency() int { return p.timerFrequency }

// RefreshFrequency returns the active refresh rate.
func (p *Pacer) RefreshFrequency() int { return p.refreshFrequency }

// Advance samples the clock and returns the work due since the last sample.
func (p *Pacer) Advance() Tick {
	now := p.clock.Now()
	elapsed := now.Sub(p.last)
	p.last = now

	if elapsed < 0 {
		elapsed = 0
	}
	if p.maxElapsed > 0 && elapsed > p.maxElapsed {
		p.logger.Debug("Clamping elapsed time",
			log.String("elapsed", elapsed.String()), log.String("max", p.maxElapsed.String()))
		elapsed = p.maxElapsed
	}

	tick := Tick{Elapsed: elapsed}

	p.cpuElapsed += elapsed
	if p.cpuFrequency == 0 || p.cpuElapsed >= p.cpuThreshold {
		p.cpuElapsed = 0
		tick.Execute = true
	}

	p.timerElapsed += elapsed
	for p.timerElapsed >= p.timerThreshold {
		p.timerElapsed -= p.timerThreshold
		tick.TimerTicks++
	}

	p.refreshElapsed += elapsed
	if p.refreshElapsed >= p.refreshThreshold {
		p.refreshElapsed %= p.refreshThreshold
		tick.Refresh = true
	}

	return tick
}

// threshold returns the period of the given frequency, 0 for 0 Hz.
func threshold(hz int) time.Duration {
	if hz == 0 {
		return 0
	}
	return time.Second / time.Duration(hz)
}
