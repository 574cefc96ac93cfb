package timing

import (
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestPacer(t *testing.T, cfg Config) (*Pacer, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1000, 0)}
	return New(log.NewTestLogger(t), clock, cfg), clock
}

func TestAdvanceCPU(t *testing.T) {
	p, clock := newTestPacer(t, Config{CPUFrequency: 1000, TimerFrequency: 60, RefreshFrequency: 60})

	tick := p.Advance()
	assert.False(t, tick.Execute)

	clock.advance(500 * time.Microsecond)
	assert.False(t, p.Advance().Execute)

	clock.advance(500 * time.Microsecond)
	assert.True(t, p.Advance().Execute)

	// the accumulator is reset after executing, excess time is discarded
	clock.advance(1500 * time.Microsecond)
	assert.True(t, p.Advance().Execute)
	clock.advance(600 * time.Microsecond)
	assert.False(t, p.Advance().Execute)
}

func TestAdvanceUnthrottled(t *testing.T) {
	p, _ := newTestPacer(t, Config{CPUFrequency: 0, TimerFrequency: 60, RefreshFrequency: 60})

	for range 3 {
		assert.True(t, p.Advance().Execute)
	}
	assert.Equal(t, 0, p.CPUFrequency())
}

func TestAdvanceTimers(t *testing.T) {
	p, clock := newTestPacer(t, Config{CPUFrequency: 1000, TimerFrequency: 100, RefreshFrequency: 50})

	clock.advance(9 * time.Millisecond)
	tick := p.Advance()
	assert.Equal(t, 0, tick.TimerTicks)
	assert.False(t, tick.Refresh)

	clock.advance(1 * time.Millisecond)
	tick = p.Advance()
	assert.Equal(t, 1, tick.TimerTicks)
	assert.False(t, tick.Refresh)

	clock.advance(35 * time.Millisecond)
	tick = p.Advance()
	assert.Equal(t, 3, tick.TimerTicks)
	assert.True(t, tick.Refresh)

	// 5ms remainder carried over from the previous sample
	clock.advance(5 * time.Millisecond)
	assert.Equal(t, 1, p.Advance().TimerTicks)
}

func TestAdvanceClamp(t *testing.T) {
	p, clock := newTestPacer(t, Config{
		CPUFrequency:     1000,
		TimerFrequency:   60,
		RefreshFrequency: 60,
		MaxElapsed:       100 * time.Millisecond,
	})

	clock.advance(10 * time.Second)
	tick := p.Advance()
	assert.Equal(t, 100*time.Millisecond, tick.Elapsed)
	assert.Equal(t, 6, tick.TimerTicks)
	assert.True(t, tick.Execute)

	clock.advance(-time.Second)
	tick = p.Advance()
	assert.Equal(t, time.Duration(0), tick.Elapsed)
}

func TestInvalidFrequencies(t *testing.T) {
	p, _ := newTestPacer(t, Config{CPUFrequency: -5, TimerFrequency: 0, RefreshFrequency: -1})

	assert.Equal(t, DefaultCPUFrequency, p.CPUFrequency())
	assert.Equal(t, DefaultTimerFrequency, p.TimerFrequency())
	assert.Equal(t, DefaultRefreshFrequency, p.RefreshFrequency())
}

func TestSetFrequencyRecomputesThreshold(t *testing.T) {
	p, clock := newTestPacer(t, DefaultConfig())

	p.SetCPUFrequency(100)
	clock.advance(5 * time.Millisecond)
	assert.False(t, p.Advance().Execute)
	clock.advance(5 * time.Millisecond)
	assert.True(t, p.Advance().Execute)

	// 10ms already accumulated below the 60 Hz period
	p.SetTimerFrequency(1000)
	clock.advance(3 * time.Millisecond)
	assert.Equal(t, 13, p.Advance().TimerTicks)
}
