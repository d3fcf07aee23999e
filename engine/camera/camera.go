package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MinFov and MaxFov bound the vertical field of view in degrees.
	MinFov float32 = 10
	MaxFov float32 = 145
)

type cameraImpl struct {
	mu *sync.Mutex

	up mgl32.Vec3

	fov    float32 // degrees
	aspect float32
	near   float32
	far    float32

	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32

	controller CameraController
}

// Camera defines the interface for the camera system.
// The camera holds perspective settings and computes view/projection matrices
// from its CameraController each frame via Update().
type Camera interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the camera position
	Position() mgl32.Vec3

	// Target returns the point the camera looks at.
	//
	// Returns:
	//   - mgl32.Vec3: position + forward
	Target() mgl32.Vec3

	// Forward returns the unit view direction.
	//
	// Returns:
	//   - mgl32.Vec3: the view direction
	Forward() mgl32.Vec3

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// Right returns the unit vector to the right of the view direction.
	//
	// Returns:
	//   - mgl32.Vec3: the right vector
	Right() mgl32.Vec3

	// Fov returns the vertical field of view in degrees.
	//
	// Returns:
	//   - float32: field of view in degrees
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ViewMatrix returns the current 4x4 view matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the current combined view-projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix
	ViewProjectionMatrix() [16]float32

	// Uniform returns the GPU layout of the camera state for this frame.
	//
	// Returns:
	//   - GPUCameraUniform: view-projection and camera position
	Uniform() GPUCameraUniform

	// SpawnPositionInFront returns a point in front of the camera.
	// The point is target + forward*distance + left*x + up*y, where left is up x forward.
	//
	// Parameters:
	//   - distance: offset along the view direction
	//   - x: offset along the camera's left axis
	//   - y: offset along the up axis
	//
	// Returns:
	//   - mgl32.Vec3: the world-space point
	SpawnPositionInFront(distance, x, y float32) mgl32.Vec3

	// Controller returns the attached CameraController.
	//
	// Returns:
	//   - CameraController: the attached controller
	Controller() CameraController

	// Update reads position/target from the controller and recomputes matrices.
	// Should be called once per frame.
	Update()

	// SetFov sets the vertical field of view in degrees, clamped to [MinFov, MaxFov].
	//
	// Parameters:
	//   - fov: field of view in degrees
	SetFov(fov float32)

	// AddFov adjusts the field of view by delta degrees, clamped to [MinFov, MaxFov].
	//
	// Parameters:
	//   - delta: change in degrees
	AddFov(delta float32)

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	// Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetController attaches a CameraController to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with a 60 degree field of view and a first-person controller.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		up:     mgl32.Vec3{0, 1, 0},
		fov:    60,
		aspect: 1.0,
		near:   0.05,
		far:    256.0,
	}
	for _, option := range options {
		option(c)
	}
	if c.controller == nil {
		c.controller = NewCameraController()
	}
	c.fov = mgl32.Clamp(c.fov, MinFov, MaxFov)
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	return c.Controller().Position()
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	return c.Controller().Target()
}

func (c *cameraImpl) Forward() mgl32.Vec3 {
	return c.Controller().Forward()
}

func (c *cameraImpl) Right() mgl32.Vec3 {
	return c.Controller().Right()
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	pos := c.controller.Position()
	return GPUCameraUniform{
		ViewProj:       c.viewProjectionMatrix,
		CameraPosition: [3]float32{pos[0], pos[1], pos[2]},
	}
}

func (c *cameraImpl) SpawnPositionInFront(distance, x, y float32) mgl32.Vec3 {
	c.mu.Lock()
	up := c.up
	ctrl := c.controller
	c.mu.Unlock()

	forward := ctrl.Forward()
	left := up.Cross(forward)
	if left.LenSqr() > 0 {
		left = left.Normalize()
	}
	return ctrl.Target().
		Add(forward.Mul(distance)).
		Add(left.Mul(x)).
		Add(up.Mul(y))
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = mgl32.Clamp(fov, MinFov, MaxFov)
	c.updateMatrices()
}

func (c *cameraImpl) AddFov(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = mgl32.Clamp(c.fov+delta, MinFov, MaxFov)
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	if ctrl == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.updateMatrices()
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	p := c.controller.Position()
	t := c.controller.Target()

	common.LookAt(c.viewMatrix[:],
		p[0], p[1], p[2],
		t[0], t[1], t[2],
		c.up[0], c.up[1], c.up[2],
	)

	common.Perspective(c.projectionMatrix[:],
		mgl32.DegToRad(c.fov), c.aspect, c.near, c.far,
	)

	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
}
