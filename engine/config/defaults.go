package config

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
)

//go:embed defaults/sandbox.yaml
var defaultSandboxYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "oxy sandbox",
			Width:  1280,
			Height: 720,
		},
		Render: RenderConfig{
			FramesInFlight: 2,
			PresentMode:    "fifo",
			MSAA:           1,
			ClearColor:     [4]float64{0.1, 0.1, 0.12, 1},
		},
		Physics: PhysicsConfig{
			TickRate:           60,
			MaxFrameTimeMs:     250,
			Gravity:            [3]float32{0, -9.80665, 0},
			VelocityIterations: 20,
		},
		Tuning: common.DefaultTuning(),
		Spawn: SpawnConfig{
			Archetype: "box",
			Distance:  1.0,
			XOffset:   -1.0,
			YOffset:   -0.2,
		},
		Assets: AssetsConfig{
			Root: "assets",
			Archetypes: []ArchetypeConfig{
				{
					Key:      "box",
					Mesh:     "models/cube.obj",
					Texture:  "textures/cube_rough.png",
					Optional: true,
				},
			},
		},
	}
}
