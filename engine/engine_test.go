package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/input"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/loader"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/physics"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/profiler"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = time.Second / 60

// fakeClock advances one frame per window poll.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

// fakeWindow replays scripted events. script[i] is pushed on poll i; the poll after the script
// runs out makes the window report it should close.
type fakeWindow struct {
	events *input.Queue
	clock  *fakeClock
	script [][]input.Event

	polls      int
	captured   bool
	fullscreen bool
	titles     []string
}

func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }

func (w *fakeWindow) PollEvents() {
	if w.polls < len(w.script) {
		w.events.Push(w.script[w.polls]...)
	}
	w.polls++
	w.clock.t = w.clock.t.Add(frame)
}

func (w *fakeWindow) ShouldClose() bool { return w.polls > len(w.script) }
func (w *fakeWindow) SetTitle(title string) { w.titles = append(w.titles, title) }
func (w *fakeWindow) CaptureCursor(c bool) { w.captured = c }
func (w *fakeWindow) CursorCaptured() bool { return w.captured }
func (w *fakeWindow) ToggleFullscreen() { w.fullscreen = !w.fullscreen }
func (w *fakeWindow) Fullscreen() bool { return w.fullscreen }
func (w *fakeWindow) Width() int { return 1280 }
func (w *fakeWindow) Height() int { return 720 }
func (w *fakeWindow) Close() error { return nil }

// fakeRenderer records what the loop asks of the frame pipeline.
type fakeRenderer struct {
	draws    []renderer.FrameInput
	resizes  [][2]int
	drawErr  error
	failAt   int
	outcome  renderer.FrameOutcome
	idled    bool
	released bool
	textures int
}

func (r *fakeRenderer) DrawFrame(in renderer.FrameInput) (renderer.FrameOutcome, error) {
	if r.drawErr != nil && len(r.draws) == r.failAt {
		return renderer.FrameSkipped, r.drawErr
	}
	r.draws = append(r.draws, in)
	return r.outcome, nil
}

func (r *fakeRenderer) Resize(width, height int) { r.resizes = append(r.resizes, [2]int{width, height}) }
func (r *fakeRenderer) SlotState(int) renderer.SlotState { return renderer.SlotIdle }
func (r *fakeRenderer) CurrentSlot() int { return 0 }
func (r *fakeRenderer) FramesInFlight() int { return 2 }
func (r *fakeRenderer) Stats() renderer.Stats { return renderer.Stats{} }
func (r *fakeRenderer) WaitIdle() error { r.idled = true; return nil }
func (r *fakeRenderer) Release() { r.released = true }

func (r *fakeRenderer) UploadTexture(common.TextureStagingData) (int, error) {
	r.textures++
	return r.textures - 1, nil
}

type harness struct {
	engine   Engine
	window   *fakeWindow
	renderer *fakeRenderer
	registry scene.Registry
	clock    *fakeClock
	sleeps   []time.Duration
}

func newHarness(t *testing.T, script [][]input.Event, options ...EngineBuilderOption) *harness {
	t.Helper()
	h := &harness{
		clock:    &fakeClock{t: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)},
		renderer: &fakeRenderer{},
	}
	events := input.NewQueue()
	h.window = &fakeWindow{events: events, clock: h.clock, script: script}
	h.registry = scene.NewRegistry(
		physics.NewSimulation(physics.WithWorkers(1)),
		loader.NewLoader(loader.BackendTypeOBJ),
		scene.WithTextureSink(h.renderer),
		scene.WithArchetypes(scene.ArchetypeDef{Key: "box"}),
	)
	opts := append([]EngineBuilderOption{
		WithClock(h.clock.now, func(d time.Duration) { h.sleeps = append(h.sleeps, d) }),
	}, options...)
	h.engine = NewEngine(h.window, events, h.renderer, h.registry, opts...)
	return h
}

func (h *harness) run(t *testing.T) {
	t.Helper()
	require.NoError(t, h.engine.Run(context.Background()))
}

// frames builds a script of n quiet polls.
func frames(n int) [][]input.Event {
	return make([][]input.Event, n)
}

func TestRunStepsOncePerFrameAndTearsDown(t *testing.T) {
	h := newHarness(t, frames(5))
	h.run(t)

	assert.Len(t, h.renderer.draws, 5)
	assert.Equal(t, uint64(5), h.engine.Frames())
	assert.True(t, h.window.captured)
	assert.True(t, h.renderer.idled)
	assert.True(t, h.renderer.released)
	for _, in := range h.renderer.draws {
		assert.Same(t, h.registry, in.Scene)
	}
}

func TestCloseEventStopsBeforeDrawing(t *testing.T) {
	script := frames(5)
	script[2] = []input.Event{input.CloseEvent{}}
	h := newHarness(t, script)
	h.run(t)

	assert.Len(t, h.renderer.draws, 2)
	assert.True(t, h.renderer.released)
}

func TestQuitKeyAndQuitAreIdempotent(t *testing.T) {
	script := frames(5)
	script[1] = []input.Event{input.KeyEvent{Key: common.KeyQ, Down: true}}
	h := newHarness(t, script)
	h.run(t)
	assert.Len(t, h.renderer.draws, 1)
	assert.NotPanics(t, func() { h.engine.Quit() })
}

func TestCancelledContextExitsImmediately(t *testing.T) {
	h := newHarness(t, frames(5))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, h.engine.Run(ctx))
	assert.Empty(t, h.renderer.draws)
	assert.True(t, h.renderer.released)
}

func TestLeftClickSpawnsOneObject(t *testing.T) {
	script := frames(4)
	script[1] = []input.Event{
		input.MouseButtonEvent{Button: common.MouseButtonLeft, Down: true},
		input.MouseButtonEvent{Button: common.MouseButtonLeft},
		input.MouseButtonEvent{Button: common.MouseButtonRight, Down: true},
	}
	h := newHarness(t, script)
	h.run(t)

	assert.Equal(t, 1, h.registry.Len())
	assert.Equal(t, 1, h.registry.Simulation().BodyCount())
}

func TestPauseStopsSimulationAndIgnoresClicks(t *testing.T) {
	script := frames(6)
	script[1] = []input.Event{input.KeyEvent{Key: common.KeyEsc, Down: true}}
	script[2] = []input.Event{
		input.MouseButtonEvent{Button: common.MouseButtonLeft, Down: true},
		input.MouseMoveEvent{X: 10, Y: 10},
		input.MouseMoveEvent{X: 500, Y: 10},
	}
	h := newHarness(t, script)
	forward := h.engine.Camera().Forward()

	h.run(t)

	assert.True(t, h.engine.Paused())
	assert.False(t, h.window.captured)
	assert.Equal(t, 0, h.registry.Len())
	assert.Equal(t, forward, h.engine.Camera().Forward())
}

func TestTabResumesAndCapturesCursor(t *testing.T) {
	script := frames(3)
	script[1] = []input.Event{input.KeyEvent{Key: common.KeyTab, Down: true}}
	h := newHarness(t, script, WithStartPaused())
	assert.True(t, h.engine.Paused())

	h.run(t)

	assert.False(t, h.engine.Paused())
	assert.True(t, h.window.captured)
}

func TestKeyReleaseDoesNotToggle(t *testing.T) {
	script := frames(3)
	script[1] = []input.Event{
		input.KeyEvent{Key: common.KeyEsc},
		input.KeyEvent{Key: common.KeyF11},
	}
	h := newHarness(t, script)
	h.run(t)

	assert.False(t, h.engine.Paused())
	assert.False(t, h.window.fullscreen)
}

func TestF11TogglesFullscreen(t *testing.T) {
	script := frames(3)
	script[1] = []input.Event{input.KeyEvent{Key: common.KeyF11, Down: true}}
	h := newHarness(t, script)
	h.run(t)
	assert.True(t, h.window.fullscreen)
}

func TestScrollAdjustsFov(t *testing.T) {
	script := frames(3)
	script[1] = []input.Event{input.ScrollEvent{Delta: 5}}
	script[2] = []input.Event{input.ScrollEvent{Delta: -500}}
	h := newHarness(t, script[:2])
	h.run(t)
	assert.InDelta(t, 55.0, h.engine.Camera().Fov(), 1e-4)

	h = newHarness(t, script)
	h.run(t)
	assert.InDelta(t, 145.0, h.engine.Camera().Fov(), 1e-4)
}

func TestResizeUpdatesRendererAndAspect(t *testing.T) {
	script := frames(3)
	script[1] = []input.Event{input.ResizeEvent{W: 800, H: 400}}
	script[2] = []input.Event{input.ResizeEvent{W: 0, H: 0}}
	h := newHarness(t, script)
	assert.InDelta(t, 1280.0/720.0, h.engine.Camera().Aspect(), 1e-4)

	h.run(t)

	assert.Equal(t, [][2]int{{800, 400}, {0, 0}}, h.renderer.resizes)
	assert.InDelta(t, 2.0, h.engine.Camera().Aspect(), 1e-4)
}

func TestTuningEventAppliesToCameraAndSpawns(t *testing.T) {
	tuning := common.DefaultTuning()
	tuning.Fov = 90
	tuning.SpawnScale = 0.5
	script := frames(3)
	script[1] = []input.Event{input.TuningEvent{Tuning: tuning}}
	h := newHarness(t, script)
	h.run(t)

	assert.Equal(t, tuning, h.engine.Tuning())
	assert.InDelta(t, 90.0, h.engine.Camera().Fov(), 1e-4)
}

func TestHeldKeysFlyTheCamera(t *testing.T) {
	script := frames(4)
	script[1] = []input.Event{input.KeyEvent{Key: common.KeyW, Down: true}}
	script[3] = []input.Event{input.KeyEvent{Key: common.KeyW}}
	h := newHarness(t, script)
	start := h.engine.Camera().Position()

	h.run(t)

	moved := h.engine.Camera().Position().Sub(start)
	speed := common.DefaultTuning().MovementSpeed
	assert.InDelta(t, 2*speed/60, moved.Len(), 1e-4)
	assert.Less(t, moved.Z(), float32(0))
}

func TestFatalDrawErrorStopsLoop(t *testing.T) {
	boom := errors.New("device lost")
	h := newHarness(t, frames(5))
	h.renderer.drawErr = boom
	h.renderer.failAt = 2

	err := h.engine.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, h.renderer.draws, 2)
	assert.True(t, h.renderer.released)
}

func TestTitleShowsFPSOncePerSecond(t *testing.T) {
	h := newHarness(t, frames(125))
	h.run(t)

	require.Len(t, h.window.titles, 2)
	assert.Contains(t, h.window.titles[0], "Sandbox | 60 FPS")
}

func TestSkippedFramesDoNotTickProfiler(t *testing.T) {
	h := newHarness(t, frames(125))
	h.renderer.outcome = renderer.FrameSkipped
	h.run(t)
	assert.Empty(t, h.window.titles)
}

func TestFrameLimitSleepsRemainder(t *testing.T) {
	h := newHarness(t, frames(3), WithFrameLimit(30))
	h.run(t)

	require.Len(t, h.sleeps, 3)
	for _, d := range h.sleeps {
		assert.Equal(t, time.Second/30, d)
	}
}

func TestProfilerOptionIsUsed(t *testing.T) {
	p := profiler.NewProfiler(profiler.WithSession("custom"))
	h := newHarness(t, frames(2), WithProfiler(p))
	h.run(t)
	assert.Equal(t, "custom", p.Session())
}

func TestNewEnginePanicsOnMissingDependencies(t *testing.T) {
	assert.Panics(t, func() { NewEngine(nil, input.NewQueue(), &fakeRenderer{}, nil) })
}
