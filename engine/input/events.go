// Package input carries discrete window and configuration events from their producers to the
// engine loop, which drains them once per iteration.
package input

import (
	"github.com/Carmen-Shannon/oxy-sandbox/common"
)

// Event is any value deliverable through a Queue.
type Event interface{ isEvent() }

// KeyEvent reports a key press or release. Key uses the common.Key* codes.
type KeyEvent struct {
	Key  int
	Down bool
}

func (KeyEvent) isEvent() {}

// MouseButtonEvent reports a mouse button press or release. Button uses the common.MouseButton* codes.
type MouseButtonEvent struct {
	Button int
	Down   bool
}

func (MouseButtonEvent) isEvent() {}

// MouseMoveEvent reports the cursor position in window coordinates.
type MouseMoveEvent struct{ X, Y float64 }

func (MouseMoveEvent) isEvent() {}

// ScrollEvent reports vertical scroll wheel movement.
type ScrollEvent struct{ Delta float64 }

func (ScrollEvent) isEvent() {}

// ResizeEvent reports a new framebuffer size in pixels.
type ResizeEvent struct{ W, H int }

func (ResizeEvent) isEvent() {}

// CloseEvent reports that the window was asked to close.
type CloseEvent struct{}

func (CloseEvent) isEvent() {}

// TuningEvent delivers reloaded tuning values.
type TuningEvent struct{ Tuning common.Tuning }

func (TuningEvent) isEvent() {}
