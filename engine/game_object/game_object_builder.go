package game_object

import (
	"github.com/Carmen-Shannon/oxy-sandbox/engine/physics"
	"github.com/go-gl/mathgl/mgl32"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithEnabled sets whether the GameObject is enabled for rendering.
//
// Parameters:
//   - enabled: true to render the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithArchetype sets the archetype key the object draws with.
//
// Parameters:
//   - key: the archetype key
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the archetype
func WithArchetype(key string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.archetypeKey = key
	}
}

// WithScale sets the fixed per-instance scale.
//
// Parameters:
//   - scale: scale along each local axis
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the scale
func WithScale(scale mgl32.Vec3) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.scale = scale
	}
}

// WithMatrix sets the initial world matrix.
//
// Parameters:
//   - m: the world matrix
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the matrix
func WithMatrix(m mgl32.Mat4) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.matrix = m
	}
}

// WithBody attaches a rigid-body handle.
//
// Parameters:
//   - h: the body handle
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the body
func WithBody(h physics.BodyHandle) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.body = h
	}
}
