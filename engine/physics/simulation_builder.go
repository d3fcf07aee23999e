package physics

import (
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
)

// SimulationBuilderOption is a functional option for configuring a Simulation.
type SimulationBuilderOption func(*simulation)

// WithGravity sets the world gravity vector.
//
// Parameters:
//   - g: gravitational acceleration in world units per second squared
//
// Returns:
//   - SimulationBuilderOption: option function to apply
func WithGravity(g mgl32.Vec3) SimulationBuilderOption {
	return func(s *simulation) {
		s.gravity = g
	}
}

// WithVelocityIterations sets how many sequential-impulse passes the solver runs per step.
// Values < 1 are ignored.
//
// Parameters:
//   - n: iteration count
//
// Returns:
//   - SimulationBuilderOption: option function to apply
func WithVelocityIterations(n int) SimulationBuilderOption {
	return func(s *simulation) {
		if n >= 1 {
			s.velocityIterations = n
		}
	}
}

// WithSleeping enables or disables putting resting bodies to sleep.
//
// Parameters:
//   - enabled: whether sleeping is allowed
//
// Returns:
//   - SimulationBuilderOption: option function to apply
func WithSleeping(enabled bool) SimulationBuilderOption {
	return func(s *simulation) {
		s.sleepingEnabled = enabled
	}
}

// WithLinearDamping sets the linear velocity damping coefficient.
//
// Parameters:
//   - d: damping per second (>= 0)
//
// Returns:
//   - SimulationBuilderOption: option function to apply
func WithLinearDamping(d float32) SimulationBuilderOption {
	return func(s *simulation) {
		s.linearDamping = max(d, 0)
	}
}

// WithAngularDamping sets the angular velocity damping coefficient.
//
// Parameters:
//   - d: damping per second (>= 0)
//
// Returns:
//   - SimulationBuilderOption: option function to apply
func WithAngularDamping(d float32) SimulationBuilderOption {
	return func(s *simulation) {
		s.angularDamping = max(d, 0)
	}
}

// WithWorkers sets the narrow-phase worker count. Values < 1 are ignored.
//
// Parameters:
//   - n: number of workers
//
// Returns:
//   - SimulationBuilderOption: option function to apply
func WithWorkers(n int) SimulationBuilderOption {
	return func(s *simulation) {
		if n >= 1 {
			s.workers = n
		}
	}
}

// WithParallelThreshold sets the candidate pair count at which the narrow phase fans out
// over the worker pool. Below it, pairs are tested on the stepping goroutine.
//
// Parameters:
//   - n: minimum pair count for parallel testing (0 always fans out)
//
// Returns:
//   - SimulationBuilderOption: option function to apply
func WithParallelThreshold(n int) SimulationBuilderOption {
	return func(s *simulation) {
		s.parallelThreshold = max(n, 0)
	}
}

// WithCellSize sets the edge length of the broad-phase grid cells. A cell about twice the size
// of a typical body keeps each body in at most eight cells. Values <= 0 are ignored.
//
// Parameters:
//   - size: cell edge length in world units
//
// Returns:
//   - SimulationBuilderOption: option function to apply
func WithCellSize(size float32) SimulationBuilderOption {
	return func(s *simulation) {
		if size > 0 {
			s.cellSize = size
		}
	}
}

// WithLogger sets the logger used by the simulation.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - SimulationBuilderOption: option function to apply
func WithLogger(l *log.Logger) SimulationBuilderOption {
	return func(s *simulation) {
		if l != nil {
			s.logger = l
		}
	}
}
