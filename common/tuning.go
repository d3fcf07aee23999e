package common

// Tuning holds the sandbox values a user adjusts while the sandbox runs.
type Tuning struct {
	// SpawnVelocity is the launch speed of spawned objects along the view direction.
	SpawnVelocity float32 `yaml:"spawn_velocity" toml:"spawn_velocity"`
	// SpawnMass is the mass of spawned objects.
	SpawnMass float32 `yaml:"spawn_mass" toml:"spawn_mass"`
	// SpawnScale is the uniform scale of spawned objects.
	SpawnScale float32 `yaml:"spawn_scale" toml:"spawn_scale"`
	// MovementSpeed is the camera fly speed in world units per second.
	MovementSpeed float32 `yaml:"movement_speed" toml:"movement_speed"`
	// Fov is the vertical field of view in degrees.
	Fov float32 `yaml:"fov" toml:"fov"`
	// MouseSensitivity scales mouse movement into degrees of yaw and pitch.
	MouseSensitivity float32 `yaml:"mouse_sensitivity" toml:"mouse_sensitivity"`
}

// DefaultTuning returns the values the sandbox starts with when no configuration overrides them.
//
// Returns:
//   - Tuning: the default tuning
func DefaultTuning() Tuning {
	return Tuning{
		SpawnVelocity:    25,
		SpawnMass:        0.3,
		SpawnScale:       0.2,
		MovementSpeed:    2.5,
		Fov:              60,
		MouseSensitivity: 0.1,
	}
}
