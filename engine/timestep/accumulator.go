// Package timestep decouples variable frame time from constant-rate simulation stepping.
package timestep

import (
	"sync"
	"time"
)

// DefaultStep is the fixed simulation step used when no step option is supplied (60Hz).
const DefaultStep = time.Second / 60

// Accumulator collects elapsed wall-clock time and pays it down in fixed-size steps.
//
// Time is tracked in integer nanoseconds, so the number of steps produced for a sequence of
// deltas depends only on their sum and never on how the deltas were chunked.
type Accumulator struct {
	mu *sync.Mutex

	step         time.Duration
	surplus      time.Duration
	maxFrameTime time.Duration // 0 = unbounded
	paused       bool
	steps        uint64
}

// NewAccumulator creates a new Accumulator with the provided options.
// The step defaults to DefaultStep and the per-call elapsed time is unbounded.
//
// Parameters:
//   - options: functional options for accumulator configuration
//
// Returns:
//   - *Accumulator: the newly created accumulator
func NewAccumulator(options ...AccumulatorBuilderOption) *Accumulator {
	a := &Accumulator{
		mu:   &sync.Mutex{},
		step: DefaultStep,
	}
	for _, opt := range options {
		opt(a)
	}
	if a.step <= 0 {
		a.step = DefaultStep
	}
	return a
}

// Advance adds elapsed to the surplus and invokes stepFn once per whole step that fits in it,
// subtracting the step each time. Negative elapsed values are treated as zero. While paused,
// elapsed time is discarded and no steps run.
//
// When a max frame time is configured, elapsed is clamped to it before accumulation. The clamp
// drops simulation time on long stalls.
//
// Parameters:
//   - elapsed: wall-clock time since the previous call
//   - stepFn: called with the fixed step for every step taken (may be nil)
//
// Returns:
//   - int: the number of steps executed by this call
func (a *Accumulator) Advance(elapsed time.Duration, stepFn func(dt time.Duration)) int {
	a.mu.Lock()
	if a.paused {
		a.mu.Unlock()
		return 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if a.maxFrameTime > 0 && elapsed > a.maxFrameTime {
		elapsed = a.maxFrameTime
	}
	a.surplus += elapsed
	step := a.step
	a.mu.Unlock()

	n := 0
	for {
		a.mu.Lock()
		if a.surplus < step {
			a.mu.Unlock()
			break
		}
		a.surplus -= step
		a.steps++
		a.mu.Unlock()

		if stepFn != nil {
			stepFn(step)
		}
		n++
	}
	return n
}

// SetPaused pauses or resumes accumulation. The surplus held when pausing is kept as-is, so
// resuming never produces catch-up steps for the paused interval.
func (a *Accumulator) SetPaused(paused bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.paused = paused
}

// Paused reports whether accumulation is paused.
func (a *Accumulator) Paused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.paused
}

// Step returns the fixed step size.
func (a *Accumulator) Step() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.step
}

// Surplus returns the unconsumed accumulated time. Always less than Step after Advance returns.
func (a *Accumulator) Surplus() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.surplus
}

// Steps returns the total number of steps executed since creation.
func (a *Accumulator) Steps() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.steps
}

// Alpha returns the fraction of a step currently held in the surplus, in [0, 1).
func (a *Accumulator) Alpha() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return float64(a.surplus) / float64(a.step)
}

// MaxFrameTime returns the per-call clamp, or 0 when accumulation is unbounded.
func (a *Accumulator) MaxFrameTime() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.maxFrameTime
}
