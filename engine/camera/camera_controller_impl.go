package camera

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// fpsController is the single implementation of CameraController.
type fpsController struct {
	mu *sync.Mutex

	position mgl32.Vec3
	front    mgl32.Vec3
	worldUp  mgl32.Vec3

	yaw        float32 // degrees
	pitch      float32 // degrees
	pitchLimit float32

	sensitivity float32

	lastX, lastY float64
	hasLast      bool
}

// Compile-time interface compliance check
var _ CameraController = &fpsController{}

// NewCameraController creates a first-person controller at (0, 2, 3) looking down -Z.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &fpsController{
		mu:          &sync.Mutex{},
		position:    mgl32.Vec3{0, 2, 3},
		worldUp:     mgl32.Vec3{0, 1, 0},
		yaw:         -90,
		pitch:       0,
		pitchLimit:  89,
		sensitivity: 0.1,
	}

	for _, option := range options {
		option(cc)
	}

	cc.pitch = mgl32.Clamp(cc.pitch, -cc.pitchLimit, cc.pitchLimit)
	cc.updateFront()
	return cc
}

// updateFront recomputes the view direction from yaw and pitch.
// Caller must hold the mutex.
func (cc *fpsController) updateFront() {
	yaw := mgl32.DegToRad(cc.yaw)
	pitch := mgl32.DegToRad(cc.pitch)
	cc.front = mgl32.Vec3{
		math32.Cos(yaw) * math32.Cos(pitch),
		math32.Sin(pitch),
		math32.Sin(yaw) * math32.Cos(pitch),
	}.Normalize()
}

// right returns normalize(front x worldUp). Caller must hold the mutex.
func (cc *fpsController) right() mgl32.Vec3 {
	r := cc.front.Cross(cc.worldUp)
	if r.LenSqr() == 0 {
		return mgl32.Vec3{1, 0, 0}
	}
	return r.Normalize()
}

func (cc *fpsController) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *fpsController) Forward() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.front
}

func (cc *fpsController) Right() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.right()
}

func (cc *fpsController) Target() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position.Add(cc.front)
}

func (cc *fpsController) Yaw() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.yaw
}

func (cc *fpsController) Pitch() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.pitch
}

func (cc *fpsController) SetPosition(p mgl32.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = p
}

func (cc *fpsController) SetSensitivity(s float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if s > 0 {
		cc.sensitivity = s
	}
}

func (cc *fpsController) ApplyMouse(x, y float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if !cc.hasLast {
		cc.lastX, cc.lastY = x, y
		cc.hasLast = true
		return
	}

	xOffset := float32(x-cc.lastX) * cc.sensitivity
	yOffset := float32(y-cc.lastY) * cc.sensitivity
	cc.lastX, cc.lastY = x, y

	cc.yaw += xOffset
	cc.pitch = mgl32.Clamp(cc.pitch-yOffset, -cc.pitchLimit, cc.pitchLimit)
	cc.updateFront()
}

func (cc *fpsController) ResetMouse() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.hasLast = false
}

func (cc *fpsController) Move(in MoveInput, dt, speed float32) {
	if !in.Any() || dt <= 0 {
		return
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()

	step := speed * dt
	right := cc.right()
	if in.Forward {
		cc.position = cc.position.Add(cc.front.Mul(step))
	}
	if in.Backward {
		cc.position = cc.position.Sub(cc.front.Mul(step))
	}
	if in.Left {
		cc.position = cc.position.Sub(right.Mul(step))
	}
	if in.Right {
		cc.position = cc.position.Add(right.Mul(step))
	}
	if in.Down {
		cc.position = cc.position.Sub(cc.worldUp.Mul(step))
	}
	if in.Up {
		cc.position = cc.position.Add(cc.worldUp.Mul(step))
	}
}
