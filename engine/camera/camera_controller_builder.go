package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*fpsController)

// WithPosition sets the initial camera position.
//
// Parameters:
//   - p: world-space position
//
// Returns:
//   - CameraControllerOption: functional option to set the position
func WithPosition(p mgl32.Vec3) CameraControllerOption {
	return func(cc *fpsController) {
		cc.position = p
	}
}

// WithYaw sets the initial horizontal view angle.
//
// Parameters:
//   - degrees: yaw in degrees (-90 looks down -Z)
//
// Returns:
//   - CameraControllerOption: functional option to set the yaw
func WithYaw(degrees float32) CameraControllerOption {
	return func(cc *fpsController) {
		cc.yaw = degrees
	}
}

// WithPitch sets the initial vertical view angle. Clamped to the pitch limit.
//
// Parameters:
//   - degrees: pitch in degrees
//
// Returns:
//   - CameraControllerOption: functional option to set the pitch
func WithPitch(degrees float32) CameraControllerOption {
	return func(cc *fpsController) {
		cc.pitch = degrees
	}
}

// WithPitchLimit sets the maximum absolute pitch.
//
// Parameters:
//   - degrees: limit in degrees, in (0, 90)
//
// Returns:
//   - CameraControllerOption: functional option to set the pitch limit
func WithPitchLimit(degrees float32) CameraControllerOption {
	return func(cc *fpsController) {
		if degrees > 0 && degrees < 90 {
			cc.pitchLimit = degrees
		}
	}
}

// WithSensitivity sets the degrees of rotation per pixel of mouse movement.
//
// Parameters:
//   - s: mouse sensitivity
//
// Returns:
//   - CameraControllerOption: functional option to set the sensitivity
func WithSensitivity(s float32) CameraControllerOption {
	return func(cc *fpsController) {
		if s > 0 {
			cc.sensitivity = s
		}
	}
}
