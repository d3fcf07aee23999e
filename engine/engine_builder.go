package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/camera"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/profiler"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/scene"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/timestep"
	"github.com/charmbracelet/log"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithCamera sets the camera the loop flies and draws from.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithAccumulator sets the fixed-step accumulator that paces the simulation.
//
// Parameters:
//   - a: the accumulator
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAccumulator(a *timestep.Accumulator) EngineBuilderOption {
	return func(e *engine) {
		e.accumulator = a
	}
}

// WithSpawnController sets the controller that turns clicks into spawned objects.
//
// Parameters:
//   - c: the spawn controller
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSpawnController(c *scene.SpawnController) EngineBuilderOption {
	return func(e *engine) {
		e.spawner = c
	}
}

// WithProfiler sets the profiler ticked once per presented frame.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTuning sets the starting tuning values.
//
// Parameters:
//   - t: the tuning
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTuning(t common.Tuning) EngineBuilderOption {
	return func(e *engine) {
		e.tuning = t
	}
}

// WithFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.frameLimit = 0
			return
		}
		e.frameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithTitle sets the base window title the FPS readout is appended to.
func WithTitle(title string) EngineBuilderOption {
	return func(e *engine) {
		e.title = title
	}
}

// WithStartPaused starts the loop paused with the cursor released.
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStartPaused() EngineBuilderOption {
	return func(e *engine) {
		e.startPaused = true
	}
}

// WithClock replaces time.Now and time.Sleep.
//
// Parameters:
//   - now: the clock
//   - sleep: the frame limiter's sleep
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(now func() time.Time, sleep func(time.Duration)) EngineBuilderOption {
	return func(e *engine) {
		if now != nil {
			e.now = now
		}
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// WithLogger sets the engine logger.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *log.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
