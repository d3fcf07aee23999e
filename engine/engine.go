package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/camera"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/input"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/profiler"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/scene"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/timestep"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/window"
	"github.com/charmbracelet/log"
)

// engine implements the Engine interface.
// Everything runs on the goroutine that called Run, which must be the one that created the window.
type engine struct {
	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	events   *input.Queue
	renderer renderer.Renderer
	registry scene.Registry

	camera      camera.Camera
	accumulator *timestep.Accumulator
	spawner     *scene.SpawnController
	profiler    *profiler.Profiler

	tuning common.Tuning
	held   map[int]bool
	title  string
	frames uint64

	startPaused bool

	frameLimit time.Duration // minimum frame duration; 0 = uncapped
	now        func() time.Time
	sleep      func(time.Duration)

	logger *log.Logger
}

// Engine is the sandbox main loop.
// Each iteration polls the window, applies queued input, advances the fixed-step simulation,
// spawns at most one requested object and draws one frame.
type Engine interface {
	// Run drives the loop until the window closes, Quit is called, ctx is cancelled or a fatal
	// error occurs. On return the GPU is idle and the renderer released.
	//
	// Parameters:
	//   - ctx: cancellation for the loop
	//
	// Returns:
	//   - error: the fatal renderer or spawn error that stopped the loop, nil on a normal exit
	Run(ctx context.Context) error

	// Quit asks the loop to stop after the current iteration.
	// Safe to call multiple times and from any goroutine.
	Quit()

	// Paused reports whether the simulation is paused.
	//
	// Returns:
	//   - bool: true while paused
	Paused() bool

	// SetPaused pauses or resumes the simulation. Pausing releases the cursor, resuming
	// captures it again and resets the mouse-look reference.
	//
	// Parameters:
	//   - paused: the new state
	SetPaused(paused bool)

	// Tuning returns the tuning values currently in effect.
	//
	// Returns:
	//   - common.Tuning: the tuning
	Tuning() common.Tuning

	// ApplyTuning replaces the tuning values and pushes the camera-facing ones to the camera.
	//
	// Parameters:
	//   - t: the new tuning
	ApplyTuning(t common.Tuning)

	// Camera returns the camera the loop drives.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Frames returns the number of loop iterations completed.
	//
	// Returns:
	//   - uint64: the iteration count
	Frames() uint64
}

var _ Engine = &engine{}

// NewEngine creates a sandbox loop over a window, its event queue, a renderer and a registry.
// The camera, accumulator, spawn controller and profiler default to their zero-option
// constructors. Panics if any argument is nil.
//
// Parameters:
//   - w: the window
//   - events: the queue the window and config watcher push to
//   - r: the frame pipeline coordinator
//   - registry: the scene registry
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(w window.Window, events *input.Queue, r renderer.Renderer, registry scene.Registry, options ...EngineBuilderOption) Engine {
	if w == nil || events == nil || r == nil || registry == nil {
		panic("engine: window, event queue, renderer and registry are required")
	}
	e := &engine{
		quitChannel: make(chan struct{}),
		window:      w,
		events:      events,
		renderer:    r,
		registry:    registry,
		tuning:      common.DefaultTuning(),
		held:        make(map[int]bool),
		title:       "Sandbox",
		now:         time.Now,
		sleep:       time.Sleep,
		logger:      log.WithPrefix("engine"),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.camera == nil {
		e.camera = camera.NewCamera()
	}
	if e.accumulator == nil {
		e.accumulator = timestep.NewAccumulator()
	}
	if e.startPaused {
		e.accumulator.SetPaused(true)
	}
	if e.spawner == nil {
		e.spawner = scene.NewSpawnController()
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithClock(e.now))
	}

	if w, h := e.window.Width(), e.window.Height(); w > 0 && h > 0 {
		e.camera.SetAspect(float32(w) / float32(h))
	}
	e.ApplyTuning(e.tuning)
	return e
}

func (e *engine) Run(ctx context.Context) error {
	defer func() {
		if werr := e.renderer.WaitIdle(); werr != nil {
			e.logger.Error("wait for gpu failed", "err", werr)
		}
		e.renderer.Release()
		e.logger.Info("stopped", "frames", e.frames, "objects", e.registry.Len())
	}()

	e.window.CaptureCursor(!e.accumulator.Paused())
	sim := e.registry.Simulation()
	stepFn := func(dt time.Duration) {
		sim.Step(dt)
	}

	last := e.now()
	for {
		if e.stopping(ctx) {
			return nil
		}

		e.window.PollEvents()
		for _, ev := range e.events.Drain() {
			e.handleEvent(ev)
		}
		if e.stopping(ctx) {
			return nil
		}

		frameStart := e.now()
		elapsed := frameStart.Sub(last)
		last = frameStart

		if !e.accumulator.Paused() {
			e.camera.Controller().Move(e.moveInput(), float32(elapsed.Seconds()), e.tuning.MovementSpeed)
		}
		e.camera.Update()

		if e.accumulator.Advance(elapsed, stepFn) > 0 {
			e.registry.Reconcile()
		}

		if _, err := e.spawner.Tick(e.camera, e.registry, e.spawnTuning()); err != nil {
			return fmt.Errorf("engine: spawn failed: %w", err)
		}

		outcome, err := e.renderer.DrawFrame(renderer.FrameInput{
			Camera: e.camera.Uniform(),
			Scene:  e.registry,
		})
		if err != nil {
			return fmt.Errorf("engine: frame %d: %w", e.frames, err)
		}
		e.frames++

		if outcome == renderer.FramePresented {
			counts := profiler.Counts{Bodies: sim.BodyCount(), Objects: e.registry.Len()}
			if report, ok := e.profiler.Tick(counts); ok {
				e.window.SetTitle(fmt.Sprintf("%s | %.0f FPS | %d objects", e.title, report.FPS, report.Objects))
			}
		}

		// Frame rate limiting
		if e.frameLimit > 0 {
			if remaining := e.frameLimit - e.now().Sub(frameStart); remaining > 0 {
				e.sleep(remaining)
			}
		}
	}
}

// stopping reports whether the loop should exit before starting another iteration.
func (e *engine) stopping(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-e.quitChannel:
		return true
	default:
	}
	return e.window.ShouldClose()
}

// Quit signals the loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) Paused() bool {
	return e.accumulator.Paused()
}

func (e *engine) SetPaused(paused bool) {
	e.accumulator.SetPaused(paused)
	e.window.CaptureCursor(!paused)
	if !paused {
		e.camera.Controller().ResetMouse()
	}
	e.logger.Debug("pause toggled", "paused", paused)
}

func (e *engine) Tuning() common.Tuning {
	return e.tuning
}

func (e *engine) ApplyTuning(t common.Tuning) {
	e.tuning = t
	e.camera.SetFov(t.Fov)
	e.camera.Controller().SetSensitivity(t.MouseSensitivity)
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Frames() uint64 {
	return e.frames
}

func (e *engine) spawnTuning() scene.SpawnTuning {
	return scene.SpawnTuning{
		Velocity: e.tuning.SpawnVelocity,
		Mass:     e.tuning.SpawnMass,
		Scale:    e.tuning.SpawnScale,
	}
}
