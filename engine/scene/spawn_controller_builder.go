package scene

import (
	"github.com/charmbracelet/log"
)

// SpawnControllerBuilderOption is a functional option for configuring a SpawnController.
type SpawnControllerBuilderOption func(c *SpawnController)

// WithSpawnArchetype sets the archetype spawned objects use.
//
// Parameters:
//   - key: the archetype key
//
// Returns:
//   - SpawnControllerBuilderOption: option function to apply
func WithSpawnArchetype(key string) SpawnControllerBuilderOption {
	return func(c *SpawnController) {
		if key != "" {
			c.archetype = key
		}
	}
}

// WithSpawnOffsets sets the spawn placement relative to the view target.
//
// Parameters:
//   - distance: distance along the view direction
//   - x: offset along the view's right vector
//   - y: offset along the up vector
//
// Returns:
//   - SpawnControllerBuilderOption: option function to apply
func WithSpawnOffsets(distance, x, y float32) SpawnControllerBuilderOption {
	return func(c *SpawnController) {
		c.distance = distance
		c.xOffset = x
		c.yOffset = y
	}
}

// WithSpawnLogger sets the controller's logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - SpawnControllerBuilderOption: option function to apply
func WithSpawnLogger(l *log.Logger) SpawnControllerBuilderOption {
	return func(c *SpawnController) {
		if l != nil {
			c.logger = l
		}
	}
}
