package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// BodyKind classifies how the solver treats a body.
type BodyKind int

const (
	// BodyKindStatic bodies never move and have infinite mass.
	BodyKindStatic BodyKind = iota

	// BodyKindDynamic bodies are affected by gravity, contacts, and velocity changes.
	BodyKindDynamic

	// BodyKindKinematic bodies move by their velocity but are never pushed by contacts.
	BodyKindKinematic
)

// String returns the lowercase name of the kind.
func (k BodyKind) String() string {
	switch k {
	case BodyKindStatic:
		return "static"
	case BodyKindDynamic:
		return "dynamic"
	case BodyKindKinematic:
		return "kinematic"
	default:
		return "unknown"
	}
}

// BodyHandle addresses a body in the simulation's arena.
// The low 32 bits hold the slot index and the high 32 bits the slot generation,
// so a handle to a removed body never resolves to the slot's next occupant.
// The zero value is never a valid handle.
type BodyHandle uint64

// InvalidHandle is the zero handle. It never resolves to a body.
const InvalidHandle BodyHandle = 0

func newBodyHandle(index, generation uint32) BodyHandle {
	return BodyHandle(uint64(generation)<<32 | uint64(index))
}

func (h BodyHandle) index() uint32 {
	return uint32(h)
}

func (h BodyHandle) generation() uint32 {
	return uint32(h >> 32)
}

// Transform is a rigid transform: a world-space position and a unit orientation quaternion.
type Transform struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
}

// NewTransform builds a Transform at the given position with identity orientation.
//
// Parameters:
//   - position: world-space position
//
// Returns:
//   - Transform: the transform
func NewTransform(position mgl32.Vec3) Transform {
	return Transform{Position: position, Orientation: mgl32.QuatIdent()}
}

// rigidBody is the arena-resident body state. Only the simulation touches it.
type rigidBody struct {
	kind BodyKind

	pos    mgl32.Vec3
	rot    mgl32.Quat
	vel    mgl32.Vec3
	angVel mgl32.Vec3

	mass        float32
	invMass     float32
	halfExtents mgl32.Vec3
	invInertia  mgl32.Vec3 // body-space diagonal inverse inertia

	friction    float32
	restitution float32

	sleeping bool
	idleTime float32
}

// BodyBuilderOption is a functional option applied to a body created via Simulation.CreateBody.
type BodyBuilderOption func(*rigidBody)

// WithHalfExtents sets the half extents of the body's box collider.
//
// Parameters:
//   - h: half extents along each local axis
//
// Returns:
//   - BodyBuilderOption: option function to apply
func WithHalfExtents(h mgl32.Vec3) BodyBuilderOption {
	return func(b *rigidBody) {
		b.halfExtents = h
	}
}

// WithMass sets the body mass. Ignored for static and kinematic bodies. Values <= 0 are ignored.
//
// Parameters:
//   - m: mass in kilograms
//
// Returns:
//   - BodyBuilderOption: option function to apply
func WithMass(m float32) BodyBuilderOption {
	return func(b *rigidBody) {
		if m > 0 {
			b.mass = m
		}
	}
}

// WithFriction sets the friction coefficient of the body's collider.
//
// Parameters:
//   - f: friction coefficient (>= 0)
//
// Returns:
//   - BodyBuilderOption: option function to apply
func WithFriction(f float32) BodyBuilderOption {
	return func(b *rigidBody) {
		b.friction = max(f, 0)
	}
}

// WithRestitution sets the bounciness of the body's collider.
//
// Parameters:
//   - r: restitution in [0, 1]
//
// Returns:
//   - BodyBuilderOption: option function to apply
func WithRestitution(r float32) BodyBuilderOption {
	return func(b *rigidBody) {
		b.restitution = mgl32.Clamp(r, 0, 1)
	}
}

// WithLinearVelocity sets the initial linear velocity.
//
// Parameters:
//   - v: velocity in world units per second
//
// Returns:
//   - BodyBuilderOption: option function to apply
func WithLinearVelocity(v mgl32.Vec3) BodyBuilderOption {
	return func(b *rigidBody) {
		b.vel = v
	}
}

// WithAngularVelocity sets the initial angular velocity.
//
// Parameters:
//   - w: angular velocity in radians per second around each world axis
//
// Returns:
//   - BodyBuilderOption: option function to apply
func WithAngularVelocity(w mgl32.Vec3) BodyBuilderOption {
	return func(b *rigidBody) {
		b.angVel = w
	}
}

// updateMassProperties recomputes inverse mass and the body-space inverse inertia of a solid box.
func (b *rigidBody) updateMassProperties() {
	if b.kind != BodyKindDynamic || b.mass <= 0 {
		b.invMass = 0
		b.invInertia = mgl32.Vec3{}
		return
	}
	b.invMass = 1 / b.mass

	hx, hy, hz := b.halfExtents.X(), b.halfExtents.Y(), b.halfExtents.Z()
	ix := b.mass / 3 * (hy*hy + hz*hz)
	iy := b.mass / 3 * (hx*hx + hz*hz)
	iz := b.mass / 3 * (hx*hx + hy*hy)
	b.invInertia = mgl32.Vec3{safeInv(ix), safeInv(iy), safeInv(iz)}
}

// worldInvInertia returns R * diag(invInertia) * R^T for the body's current orientation.
func (b *rigidBody) worldInvInertia() mgl32.Mat3 {
	if b.invMass == 0 {
		return mgl32.Mat3{}
	}
	r := b.rot.Mat4().Mat3()
	return r.Mul3(mgl32.Diag3(b.invInertia)).Mul3(r.Transpose())
}

// wake clears the sleep state.
func (b *rigidBody) wake() {
	b.sleeping = false
	b.idleTime = 0
}

func (b *rigidBody) movable() bool {
	return b.kind != BodyKindStatic
}

func safeInv(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return 1 / v
}
