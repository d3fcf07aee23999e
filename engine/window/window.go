package window

import (
	"github.com/Carmen-Shannon/oxy-sandbox/engine/input"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the platform window. It owns the presentation surface handle and turns platform
// callbacks into events on an input.Queue. All methods must be called from the main thread.
type Window interface {
	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// PollEvents processes pending platform events without blocking. Callbacks run inside this
	// call and push onto the window's queue.
	PollEvents()

	// ShouldClose reports whether the user asked to close the window.
	//
	// Returns:
	//   - bool: true once a close was requested or the window was closed
	ShouldClose() bool

	// SetTitle sets the title bar text.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// CaptureCursor hides and locks the cursor for mouse look when capture is true, and
	// restores the normal cursor otherwise.
	//
	// Parameters:
	//   - capture: whether to capture the cursor
	CaptureCursor(capture bool)

	// CursorCaptured reports whether the cursor is captured.
	CursorCaptured() bool

	// ToggleFullscreen switches between windowed mode and fullscreen on the primary monitor.
	ToggleFullscreen()

	// Fullscreen reports whether the window is fullscreen.
	Fullscreen() bool

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never created
	Close() error
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and the event queue.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// minWidth and minHeight limit how small the window may be resized.
	minWidth, minHeight int

	// width and height are the current framebuffer size in pixels.
	width, height int

	// events receives every input event produced by the platform callbacks.
	events *input.Queue

	logger *log.Logger

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow *glfwWindow
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window whose input is delivered to events.
//
// Parameters:
//   - events: the queue platform callbacks push onto (must not be nil)
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
//   - error: an error if the platform window could not be created
func NewWindow(events *input.Queue, options ...WindowBuilderOption) (Window, error) {
	if events == nil {
		panic("window: NewWindow requires an event queue")
	}
	w := &engineWindow{
		title:     "oxy sandbox",
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,
		events:    events,
		logger:    log.WithPrefix("window"),
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	w.logger.Debug("window created", "title", w.title, "width", w.width, "height", w.height)
	return w, nil
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) PollEvents() {
	platformProcessMessages(w)
}

func (w *engineWindow) ShouldClose() bool {
	return !platformIsRunningCheck(w)
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	platformSetTitle(w, title)
}

func (w *engineWindow) CaptureCursor(capture bool) {
	platformCaptureCursor(w, capture)
}

func (w *engineWindow) CursorCaptured() bool {
	return w.internalWindow != nil && w.internalWindow.captured
}

func (w *engineWindow) ToggleFullscreen() {
	platformToggleFullscreen(w)
}

func (w *engineWindow) Fullscreen() bool {
	return w.internalWindow != nil && w.internalWindow.fullscreen
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}
