package timestep

import "time"

// AccumulatorBuilderOption is a functional option for configuring an Accumulator.
type AccumulatorBuilderOption func(*Accumulator)

// WithStep sets the fixed step size. Values <= 0 fall back to DefaultStep.
//
// Parameters:
//   - step: the fixed simulation step
//
// Returns:
//   - AccumulatorBuilderOption: option function to apply
func WithStep(step time.Duration) AccumulatorBuilderOption {
	return func(a *Accumulator) {
		a.step = step
	}
}

// WithTickRate sets the fixed step from a rate in steps per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - hz: steps per second
//
// Returns:
//   - AccumulatorBuilderOption: option function to apply
func WithTickRate(hz float64) AccumulatorBuilderOption {
	return func(a *Accumulator) {
		if hz <= 0 {
			hz = 60
		}
		a.step = time.Duration(float64(time.Second) / hz)
	}
}

// WithMaxFrameTime clamps the elapsed time accepted by a single Advance call.
// Pass 0 to leave accumulation unbounded (default).
//
// Parameters:
//   - d: the maximum elapsed time accumulated per call
//
// Returns:
//   - AccumulatorBuilderOption: option function to apply
func WithMaxFrameTime(d time.Duration) AccumulatorBuilderOption {
	return func(a *Accumulator) {
		if d < 0 {
			d = 0
		}
		a.maxFrameTime = d
	}
}
