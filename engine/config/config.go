// Package config loads the sandbox configuration from YAML or TOML and watches it for
// tuning changes while the sandbox runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/loader"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config contains all configuration for a sandbox session.
type Config struct {
	Window  WindowConfig  `yaml:"window" toml:"window"`
	Render  RenderConfig  `yaml:"render" toml:"render"`
	Physics PhysicsConfig `yaml:"physics" toml:"physics"`
	Tuning  common.Tuning `yaml:"tuning" toml:"tuning"`
	Spawn   SpawnConfig   `yaml:"spawn" toml:"spawn"`
	Assets  AssetsConfig  `yaml:"assets" toml:"assets"`

	// Source is the file the configuration was read from, empty for the embedded default.
	Source string `yaml:"-" toml:"-"`
}

// WindowConfig defines the initial window.
type WindowConfig struct {
	Title  string `yaml:"title" toml:"title"`
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
}

// RenderConfig defines the frame pipeline.
type RenderConfig struct {
	FramesInFlight int `yaml:"frames_in_flight" toml:"frames_in_flight"`
	// PresentMode is one of "fifo", "mailbox" or "immediate".
	PresentMode string `yaml:"present_mode" toml:"present_mode"`
	// MSAA is the sample count, 1 or 4.
	MSAA int `yaml:"msaa" toml:"msaa"`
	// FrameLimit caps frames per second. Zero leaves the loop unthrottled.
	FrameLimit int        `yaml:"frame_limit" toml:"frame_limit"`
	ClearColor [4]float64 `yaml:"clear_color" toml:"clear_color"`
}

// PhysicsConfig defines the simulation and its fixed step.
type PhysicsConfig struct {
	TickRate float64 `yaml:"tick_rate" toml:"tick_rate"`
	// MaxFrameTimeMs clamps the wall-clock time accumulated per frame. Zero leaves it unbounded.
	MaxFrameTimeMs     int        `yaml:"max_frame_time_ms" toml:"max_frame_time_ms"`
	Gravity            [3]float32 `yaml:"gravity" toml:"gravity"`
	VelocityIterations int        `yaml:"velocity_iterations" toml:"velocity_iterations"`
	Sleeping           bool       `yaml:"sleeping" toml:"sleeping"`
	// Workers is the narrow phase worker count. Zero picks one per spare CPU.
	Workers int `yaml:"workers" toml:"workers"`
}

// SpawnConfig places spawned objects relative to the camera target.
type SpawnConfig struct {
	Archetype string  `yaml:"archetype" toml:"archetype"`
	Distance  float32 `yaml:"distance" toml:"distance"`
	XOffset   float32 `yaml:"x_offset" toml:"x_offset"`
	YOffset   float32 `yaml:"y_offset" toml:"y_offset"`
}

// AssetsConfig lists the archetypes and where their files live.
type AssetsConfig struct {
	Root       string            `yaml:"root" toml:"root"`
	Archetypes []ArchetypeConfig `yaml:"archetypes" toml:"archetypes"`
}

// ArchetypeConfig is one archetype entry.
type ArchetypeConfig struct {
	Key              string  `yaml:"key" toml:"key"`
	Mesh             string  `yaml:"mesh" toml:"mesh"`
	Texture          string  `yaml:"texture" toml:"texture"`
	HalfExtentFactor float32 `yaml:"half_extent_factor" toml:"half_extent_factor"`
	// Optional falls back to the built-in cube and checker texture when a file is missing.
	Optional bool `yaml:"optional" toml:"optional"`
}

// MaxFrameTime returns the accumulation clamp as a duration.
func (p PhysicsConfig) MaxFrameTime() time.Duration {
	return time.Duration(p.MaxFrameTimeMs) * time.Millisecond
}

// GravityVec returns gravity as a vector.
func (p PhysicsConfig) GravityVec() mgl32.Vec3 {
	return mgl32.Vec3(p.Gravity)
}

// SpawnTuning returns the spawn-related tuning values.
func (c Config) SpawnTuning() scene.SpawnTuning {
	return scene.SpawnTuning{
		Velocity: c.Tuning.SpawnVelocity,
		Mass:     c.Tuning.SpawnMass,
		Scale:    c.Tuning.SpawnScale,
	}
}

// ArchetypeDefs converts the configured archetypes into registry definitions.
// Optional entries whose files are missing under the asset root resolve to the built-in assets.
//
// Returns:
//   - []scene.ArchetypeDef: the definitions in configuration order
func (a AssetsConfig) ArchetypeDefs() []scene.ArchetypeDef {
	defs := make([]scene.ArchetypeDef, 0, len(a.Archetypes))
	for _, ac := range a.Archetypes {
		def := scene.ArchetypeDef{
			Key:              ac.Key,
			MeshPath:         ac.Mesh,
			TexturePath:      ac.Texture,
			HalfExtentFactor: ac.HalfExtentFactor,
		}
		if ac.Optional {
			if !a.exists(def.MeshPath) {
				def.MeshPath = loader.BuiltinCube
			}
			if !a.exists(def.TexturePath) {
				def.TexturePath = loader.BuiltinChecker
			}
		}
		defs = append(defs, def)
	}
	return defs
}

func (a AssetsConfig) exists(path string) bool {
	if path == "" {
		return false
	}
	if a.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(a.Root, path)
	}
	_, err := os.Stat(path)
	return err == nil
}

// Validate checks structural settings and clamps tuning values into their usable ranges.
//
// Returns:
//   - error: wraps ErrInvalid when a setting cannot be corrected
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Render.FramesInFlight < 1 || c.Render.FramesInFlight > 4 {
		return fmt.Errorf("%w: frames_in_flight %d not in [1, 4]", ErrInvalid, c.Render.FramesInFlight)
	}
	switch c.Render.PresentMode {
	case "fifo", "mailbox", "immediate":
	default:
		return fmt.Errorf("%w: present_mode %q", ErrInvalid, c.Render.PresentMode)
	}
	if c.Render.MSAA != 1 && c.Render.MSAA != 4 {
		return fmt.Errorf("%w: msaa %d must be 1 or 4", ErrInvalid, c.Render.MSAA)
	}
	if c.Render.FrameLimit < 0 {
		return fmt.Errorf("%w: frame_limit %d", ErrInvalid, c.Render.FrameLimit)
	}
	if c.Physics.TickRate <= 0 {
		return fmt.Errorf("%w: tick_rate %v", ErrInvalid, c.Physics.TickRate)
	}
	if c.Physics.MaxFrameTimeMs < 0 {
		return fmt.Errorf("%w: max_frame_time_ms %d", ErrInvalid, c.Physics.MaxFrameTimeMs)
	}
	if c.Physics.VelocityIterations < 1 {
		return fmt.Errorf("%w: velocity_iterations %d", ErrInvalid, c.Physics.VelocityIterations)
	}
	if c.Physics.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Physics.Workers)
	}

	seen := make(map[string]bool, len(c.Assets.Archetypes))
	for _, a := range c.Assets.Archetypes {
		if a.Key == "" {
			return fmt.Errorf("%w: archetype with empty key", ErrInvalid)
		}
		if seen[a.Key] {
			return fmt.Errorf("%w: duplicate archetype %q", ErrInvalid, a.Key)
		}
		seen[a.Key] = true
	}
	if c.Spawn.Archetype != "" && !seen[c.Spawn.Archetype] {
		return fmt.Errorf("%w: spawn archetype %q is not defined", ErrInvalid, c.Spawn.Archetype)
	}

	c.Tuning = ClampTuning(c.Tuning)
	return nil
}

// ClampTuning limits every tuning value to the range the sandbox accepts.
// Mass and scale keep a small positive minimum so spawned bodies stay valid.
//
// Parameters:
//   - t: the tuning to clamp
//
// Returns:
//   - common.Tuning: the clamped tuning
func ClampTuning(t common.Tuning) common.Tuning {
	t.SpawnVelocity = mgl32.Clamp(t.SpawnVelocity, 0, 75)
	t.SpawnMass = mgl32.Clamp(t.SpawnMass, 0.01, 40)
	t.SpawnScale = mgl32.Clamp(t.SpawnScale, 0.01, 2)
	t.MovementSpeed = mgl32.Clamp(t.MovementSpeed, 0.1, 20)
	t.Fov = mgl32.Clamp(t.Fov, 10, 145)
	t.MouseSensitivity = mgl32.Clamp(t.MouseSensitivity, 0.01, 1)
	return t
}
