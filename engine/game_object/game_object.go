package game_object

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/physics"
	"github.com/go-gl/mathgl/mgl32"
)

type gameObject struct {
	id           uint64
	enabled      atomic.Bool
	archetypeKey string
	scale        mgl32.Vec3
	matrix       mgl32.Mat4
	body         physics.BodyHandle
}

// GameObject defines the interface for a renderable scene entity.
// The object references its archetype (shared mesh and texture) by key and, optionally,
// a rigid body by handle. The simulation owns the body; the object only holds the handle.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// ArchetypeKey returns the key of the archetype whose mesh and texture this object draws.
	//
	// Returns:
	//   - string: the archetype key
	ArchetypeKey() string

	// Scale returns the object's fixed per-instance scale.
	//
	// Returns:
	//   - mgl32.Vec3: scale along each local axis
	Scale() mgl32.Vec3

	// Matrix returns the object's current world matrix.
	//
	// Returns:
	//   - mgl32.Mat4: column-major world matrix
	Matrix() mgl32.Mat4

	// Body returns the rigid-body handle driving this object, if any.
	//
	// Returns:
	//   - physics.BodyHandle: the handle, or physics.InvalidHandle
	//   - bool: true if the object has a body
	Body() (physics.BodyHandle, bool)

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object is enabled for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetMatrix replaces the object's world matrix.
	//
	// Parameters:
	//   - m: the new world matrix
	SetMatrix(m mgl32.Mat4)

	// SetBody attaches a rigid-body handle. Pass physics.InvalidHandle to detach.
	//
	// Parameters:
	//   - h: the body handle
	SetBody(h physics.BodyHandle)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
// Objects start enabled with unit scale and an identity matrix.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		scale:  mgl32.Vec3{1, 1, 1},
		matrix: mgl32.Ident4(),
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) ArchetypeKey() string {
	return g.archetypeKey
}

func (g *gameObject) Scale() mgl32.Vec3 {
	return g.scale
}

func (g *gameObject) Matrix() mgl32.Mat4 {
	return g.matrix
}

func (g *gameObject) Body() (physics.BodyHandle, bool) {
	return g.body, g.body != physics.InvalidHandle
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetMatrix(m mgl32.Mat4) {
	g.matrix = m
}

func (g *gameObject) SetBody(h physics.BodyHandle) {
	g.body = h
}
