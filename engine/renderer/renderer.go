package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/charmbracelet/log"
)

// maxConsecutiveStale bounds how many frames in a row may be skipped for a stale surface
// before the surface is considered lost.
const maxConsecutiveStale = 8

// Stats counts frame outcomes since the renderer was created.
type Stats struct {
	Presented uint64
	Skipped   uint64
	Rebuilds  uint64
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend RendererBackend
	logger  *log.Logger

	framesInFlight int
	clearColor     [4]float64

	prepared bool
	slots    []SlotState
	current  int

	width, height  int
	pendingRebuild bool
	staleRun       int

	geometryVersion uint64
	geometryLoaded  bool

	draws []DrawCommand
	stats Stats
}

// Renderer is the frame pipeline coordinator. It owns a ring of frame slots and drives the
// backend through wait, acquire, record, submit and present for one slot per frame, so the CPU
// records frame K+1 while the GPU still works on frame K.
//
// A slot never begins recording before the GPU has signalled that the slot's previous frame is
// finished. This wait is the only point at which DrawFrame blocks.
type Renderer interface {
	// DrawFrame renders one frame into the current slot and advances to the next slot,
	// whatever the outcome.
	//
	// Parameters:
	//   - in: the camera uniform and scene to draw
	//
	// Returns:
	//   - FrameOutcome: FramePresented, or FrameSkipped when the surface was stale or the window minimized
	//   - error: a fatal GPU, surface or synchronization failure
	DrawFrame(in FrameInput) (FrameOutcome, error)

	// Resize records a new framebuffer size. The surface is rebuilt after the next present.
	// A zero size pauses drawing until a non-zero size arrives.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// SlotState reports the state of frame slot i.
	//
	// Parameters:
	//   - i: the slot index
	//
	// Returns:
	//   - SlotState: the slot's state, SlotIdle for an out-of-range index
	SlotState(i int) SlotState

	// CurrentSlot returns the slot the next DrawFrame will use.
	//
	// Returns:
	//   - int: the slot index
	CurrentSlot() int

	// FramesInFlight returns the number of frame slots.
	FramesInFlight() int

	// UploadTexture uploads a texture through the backend. The renderer is the registry's
	// texture sink.
	//
	// Parameters:
	//   - data: RGBA8 pixels
	//
	// Returns:
	//   - int: the texture slot
	//   - error: an error if the upload fails
	UploadTexture(data common.TextureStagingData) (int, error)

	// Stats returns frame outcome counters.
	Stats() Stats

	// WaitIdle blocks until the GPU has finished all submitted frames. Call before teardown.
	//
	// Returns:
	//   - error: device loss
	WaitIdle() error

	// Release waits for the GPU and destroys the backend's resources.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a frame pipeline coordinator over backend.
//
// Parameters:
//   - backend: the GPU backend (must not be nil)
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the coordinator
func NewRenderer(backend RendererBackend, options ...RendererBuilderOption) Renderer {
	if backend == nil {
		panic("renderer: NewRenderer requires a backend")
	}
	r := &renderer{
		mu:             &sync.Mutex{},
		backend:        backend,
		logger:         log.WithPrefix("renderer"),
		framesInFlight: 2,
		clearColor:     [4]float64{0.1, 0.1, 0.1, 1.0},
		width:          1,
		height:         1,
	}
	for _, opt := range options {
		opt(r)
	}
	r.slots = make([]SlotState, r.framesInFlight)
	return r
}

func (r *renderer) DrawFrame(in FrameInput) (FrameOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.prepared {
		if err := r.backend.PrepareSlots(r.framesInFlight); err != nil {
			return FrameSkipped, fmt.Errorf("prepare %d frame slots: %w", r.framesInFlight, err)
		}
		r.prepared = true
	}

	slot := r.current
	defer func() {
		r.current = (r.current + 1) % r.framesInFlight
	}()

	if err := r.backend.WaitForFence(slot); err != nil {
		return FrameSkipped, fmt.Errorf("wait for slot %d: %w", slot, err)
	}
	r.slots[slot] = SlotIdle

	if r.width <= 0 || r.height <= 0 {
		r.stats.Skipped++
		return FrameSkipped, nil
	}

	image, status, err := r.backend.AcquireNextImage(slot)
	if status == SurfaceSuccess && errors.Is(err, ErrSurfaceStale) {
		status = SurfaceStale
	}
	switch status {
	case SurfaceStale:
		r.stats.Skipped++
		r.staleRun++
		if r.staleRun > maxConsecutiveStale {
			return FrameSkipped, fmt.Errorf("surface stale for %d frames: %w", r.staleRun, common.Coalesce(err, ErrSurfaceStale))
		}
		r.logger.Debug("stale surface on acquire", "slot", slot, "err", err)
		if err := r.rebuild(); err != nil {
			return FrameSkipped, err
		}
		return FrameSkipped, nil
	case SurfaceFatal:
		return FrameSkipped, fmt.Errorf("acquire image: %w", common.Coalesce(err, errors.New("surface lost")))
	}
	if err != nil {
		return FrameSkipped, fmt.Errorf("acquire image: %w", err)
	}
	r.staleRun = 0

	if err := r.backend.ResetFence(slot); err != nil {
		return FrameSkipped, fmt.Errorf("reset fence %d: %w", slot, err)
	}
	r.slots[slot] = SlotRecording

	if in.Scene != nil {
		geo := in.Scene.Geometry()
		if !r.geometryLoaded || geo.Version != r.geometryVersion {
			if len(geo.Indices) > 0 {
				if err := r.backend.UploadGeometry(geo.Vertices, geo.Indices); err != nil {
					return FrameSkipped, fmt.Errorf("upload geometry v%d: %w", geo.Version, err)
				}
				r.logger.Debug("geometry uploaded", "version", geo.Version, "vertices", len(geo.Vertices), "indices", len(geo.Indices))
				r.geometryLoaded = true
			}
			r.geometryVersion = geo.Version
		}
	}

	r.draws = buildDraws(r.draws, in.Scene)
	if err := r.backend.Record(FrameData{
		Slot:       slot,
		Image:      image,
		ClearColor: r.clearColor,
		Camera:     in.Camera,
		Draws:      r.draws,
	}); err != nil {
		return FrameSkipped, fmt.Errorf("record slot %d: %w", slot, err)
	}

	if err := r.backend.Submit(slot); err != nil {
		return FrameSkipped, fmt.Errorf("submit slot %d: %w", slot, err)
	}
	r.slots[slot] = SlotSubmitted

	status, err = r.backend.Present(slot, image)
	if status == SurfaceSuccess && errors.Is(err, ErrSurfaceStale) {
		status = SurfaceStale
	}
	if status == SurfaceFatal {
		return FrameSkipped, fmt.Errorf("present: %w", common.Coalesce(err, errors.New("surface lost")))
	}
	r.slots[slot] = SlotPresented
	r.stats.Presented++

	if status == SurfaceStale || r.pendingRebuild {
		if err := r.rebuild(); err != nil {
			return FramePresented, err
		}
	}
	return FramePresented, nil
}

// rebuild waits for in-flight frames and reconfigures the surface. Caller must hold the mutex.
func (r *renderer) rebuild() error {
	if err := r.backend.WaitIdle(); err != nil {
		return fmt.Errorf("wait idle before rebuild: %w", err)
	}
	if err := r.backend.RebuildSurface(r.width, r.height); err != nil {
		return fmt.Errorf("rebuild surface %dx%d: %w", r.width, r.height, err)
	}
	r.pendingRebuild = false
	r.stats.Rebuilds++
	r.logger.Debug("surface rebuilt", "width", r.width, "height", r.height)
	return nil
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if width == r.width && height == r.height {
		return
	}
	r.width, r.height = width, height
	if width > 0 && height > 0 {
		r.pendingRebuild = true
	}
}

func (r *renderer) SlotState(i int) SlotState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.slots) {
		return SlotIdle
	}
	return r.slots[i]
}

func (r *renderer) CurrentSlot() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *renderer) FramesInFlight() int {
	return r.framesInFlight
}

func (r *renderer) UploadTexture(data common.TextureStagingData) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, err := r.backend.UploadTexture(data)
	if err != nil {
		return 0, fmt.Errorf("upload texture %dx%d: %w", data.Width, data.Height, err)
	}
	return slot, nil
}

func (r *renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer) WaitIdle() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.backend.WaitIdle(); err != nil {
		return err
	}
	for i := range r.slots {
		r.slots[i] = SlotIdle
	}
	return nil
}

func (r *renderer) Release() {
	if err := r.WaitIdle(); err != nil {
		r.logger.Warn("wait idle on release", "err", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Release()
}
