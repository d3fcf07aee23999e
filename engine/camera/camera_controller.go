package camera

import "github.com/go-gl/mathgl/mgl32"

// MoveInput is the set of fly directions held during a frame.
type MoveInput struct {
	Forward, Backward bool
	Left, Right       bool
	Up, Down          bool
}

// Any reports whether any direction is held.
func (m MoveInput) Any() bool {
	return m.Forward || m.Backward || m.Left || m.Right || m.Up || m.Down
}

// CameraController defines a first-person fly controller.
// Controllers own positional state (position, view direction). Camera reads from the controller
// and computes view/projection matrices.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space camera position
	Position() mgl32.Vec3

	// Forward returns the unit view direction derived from yaw and pitch.
	//
	// Returns:
	//   - mgl32.Vec3: the view direction
	Forward() mgl32.Vec3

	// Right returns the unit vector to the right of the view direction.
	//
	// Returns:
	//   - mgl32.Vec3: the right vector
	Right() mgl32.Vec3

	// Target returns the look-at point one unit along the view direction.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target position
	Target() mgl32.Vec3

	// Yaw returns the horizontal view angle in degrees.
	Yaw() float32

	// Pitch returns the vertical view angle in degrees.
	Pitch() float32

	// SetPosition sets the camera's world-space position directly.
	//
	// Parameters:
	//   - p: world-space coordinates
	SetPosition(p mgl32.Vec3)

	// SetSensitivity sets the degrees of rotation per pixel of mouse movement.
	//
	// Parameters:
	//   - s: mouse sensitivity
	SetSensitivity(s float32)

	// ApplyMouse rotates the view from a cursor position. The first call after construction
	// or ResetMouse only records the position.
	//
	// Parameters:
	//   - x, y: cursor position in window coordinates
	ApplyMouse(x, y float64)

	// ResetMouse forgets the last cursor position so the next ApplyMouse does not jump.
	ResetMouse()

	// Move flies the camera along its local axes and the world up axis.
	//
	// Parameters:
	//   - in: the held directions
	//   - dt: frame time in seconds
	//   - speed: units per second
	Move(in MoveInput, dt, speed float32)
}
