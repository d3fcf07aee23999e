package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/input"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	window     *glfw.Window
	running    bool
	captured   bool
	fullscreen bool

	// windowed position and size restored when leaving fullscreen
	savedX, savedY int
	savedW, savedH int
}

// newPlatformWindow creates the GLFW window with input callbacks and stores it as the internal window.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, glfw.DontCare, glfw.DontCare)

	gw := &glfwWindow{
		window:  win,
		running: true,
	}
	w.internalWindow = gw

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if ev, ok := keyEvent(key, action); ok {
			w.events.Push(ev)
		}
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if ev, ok := mouseButtonEvent(button, action); ok {
			w.events.Push(ev)
		}
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		w.events.Push(input.MouseMoveEvent{X: xpos, Y: ypos})
	})

	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		w.events.Push(input.ScrollEvent{Delta: yoff})
	})

	// Framebuffer size, not window size: on high-DPI displays the two differ and the surface
	// needs pixels.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width = width
		w.height = height
		w.events.Push(input.ResizeEvent{W: width, H: height})
	})

	win.SetCloseCallback(func(_ *glfw.Window) {
		w.events.Push(input.CloseEvent{})
	})

	fbWidth, fbHeight := win.GetFramebufferSize()
	w.width = fbWidth
	w.height = fbHeight

	return nil
}

// keyEvent translates a GLFW key action. Repeats are dropped: the engine tracks held keys.
func keyEvent(key glfw.Key, action glfw.Action) (input.KeyEvent, bool) {
	if key == glfw.KeyUnknown {
		return input.KeyEvent{}, false
	}
	switch action {
	case glfw.Press:
		return input.KeyEvent{Key: int(key), Down: true}, true
	case glfw.Release:
		return input.KeyEvent{Key: int(key), Down: false}, true
	default:
		return input.KeyEvent{}, false
	}
}

// mouseButtonEvent translates a GLFW mouse button action.
func mouseButtonEvent(button glfw.MouseButton, action glfw.Action) (input.MouseButtonEvent, bool) {
	switch action {
	case glfw.Press:
		return input.MouseButtonEvent{Button: int(button), Down: true}, true
	case glfw.Release:
		return input.MouseButtonEvent{Button: int(button), Down: false}, true
	default:
		return input.MouseButtonEvent{}, false
	}
}

// platformGetSurfaceDescriptor creates a platform-appropriate wgpu.SurfaceDescriptor from the GLFW window.
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	if w.internalWindow == nil {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(w.internalWindow.window)
}

// platformIsRunningCheck returns whether the GLFW window is still active.
func platformIsRunningCheck(w *engineWindow) bool {
	if w.internalWindow == nil {
		return false
	}
	gw := w.internalWindow
	return gw.running && !gw.window.ShouldClose()
}

func platformSetTitle(w *engineWindow, title string) {
	if w.internalWindow == nil {
		return
	}
	w.internalWindow.window.SetTitle(title)
}

// platformCaptureCursor switches between a disabled (hidden, unbounded) cursor for mouse look
// and the normal cursor. Raw motion is used when the platform supports it.
func platformCaptureCursor(w *engineWindow, capture bool) {
	if w.internalWindow == nil {
		return
	}
	gw := w.internalWindow
	if capture {
		gw.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
		if glfw.RawMouseMotionSupported() {
			gw.window.SetInputMode(glfw.RawMouseMotion, glfw.True)
		}
	} else {
		if glfw.RawMouseMotionSupported() {
			gw.window.SetInputMode(glfw.RawMouseMotion, glfw.False)
		}
		gw.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
	gw.captured = capture
}

// platformToggleFullscreen moves the window onto the primary monitor at its current video mode,
// or back to the saved windowed placement.
func platformToggleFullscreen(w *engineWindow) {
	if w.internalWindow == nil {
		return
	}
	gw := w.internalWindow
	if gw.fullscreen {
		gw.window.SetMonitor(nil, gw.savedX, gw.savedY, gw.savedW, gw.savedH, glfw.DontCare)
		gw.fullscreen = false
		return
	}

	monitor := glfw.GetPrimaryMonitor()
	if monitor == nil {
		w.logger.Warn("no primary monitor, staying windowed")
		return
	}
	mode := monitor.GetVideoMode()
	gw.savedX, gw.savedY = gw.window.GetPos()
	gw.savedW, gw.savedH = gw.window.GetSize()
	gw.window.SetMonitor(monitor, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
	gw.fullscreen = true
}

// platformCloseWindow destroys the GLFW window and terminates the GLFW library.
func platformCloseWindow(w *engineWindow) error {
	if w.internalWindow == nil {
		return fmt.Errorf("window is not initialized")
	}
	gw := w.internalWindow
	gw.running = false
	gw.window.SetShouldClose(true)
	gw.window.Destroy()
	glfw.Terminate()
	w.internalWindow = nil
	return nil
}

// platformProcessMessages polls GLFW for pending events without blocking.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func platformProcessMessages(w *engineWindow) bool {
	if w.internalWindow == nil {
		return false
	}
	glfw.PollEvents()
	return platformIsRunningCheck(w)
}
