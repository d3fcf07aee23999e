package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/physics"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	wallHeight    float32 = 7.0
	wallRowStep   float32 = 0.5
	wallXStart    float32 = -10.0
	wallXEnd      float32 = 10.0
	wallZStart    float32 = -15.0
	wallZEnd      float32 = 0.0
	structureZ    float32 = -10.0
	brickRowShift float32 = 0.5
)

var (
	floorPosition = mgl32.Vec3{0, -0.5, 0}
	floorScale    = mgl32.Vec3{20, 0.5, 20}
	brickScale    = mgl32.Vec3{0.5, 0.25, 0.5}
)

// BuildDefaultLayout spawns the sandbox's starting scene: a static floor and four dynamic brick
// walls around it. Alternate rows are shifted by half a brick.
//
// Parameters:
//   - r: the registry to spawn into
//   - archetype: the archetype used for the floor and every brick
//
// Returns:
//   - int: the number of objects spawned
//   - error: the first spawn error, wrapped
func BuildDefaultLayout(r Registry, archetype string) (int, error) {
	count := 0
	spawn := func(pos, scale mgl32.Vec3, kind physics.BodyKind) error {
		if _, err := r.Spawn(archetype, SpawnParams{Position: pos, Scale: scale, Physics: true, Kind: kind}); err != nil {
			return fmt.Errorf("build default layout: %w", err)
		}
		count++
		return nil
	}

	if err := spawn(floorPosition, floorScale, physics.BodyKindStatic); err != nil {
		return count, err
	}

	brick := func(pos mgl32.Vec3) error {
		return spawn(pos, brickScale, physics.BodyKindDynamic)
	}
	shift := func(shifted bool) float32 {
		if shifted {
			return brickRowShift
		}
		return 0
	}
	z0 := structureZ + 10

	// front wall along X
	shifted := true
	for y := float32(0); y < wallHeight; y += wallRowStep {
		for x := wallXStart; x < wallXEnd; x++ {
			if err := brick(mgl32.Vec3{x + shift(shifted), y, z0}); err != nil {
				return count, err
			}
		}
		shifted = !shifted
	}

	// left and right walls along Z
	for _, side := range []struct {
		x       float32
		shifted bool
	}{
		{wallXStart - 0.25, false},
		{wallXEnd - 0.25, true},
	} {
		shifted = side.shifted
		for y := float32(0); y < wallHeight; y += wallRowStep {
			for z := wallZStart; z < wallZEnd; z++ {
				if err := brick(mgl32.Vec3{side.x, y, z + shift(shifted) + 0.25 + z0}); err != nil {
					return count, err
				}
			}
			shifted = !shifted
		}
	}

	// back wall along X at the far end
	shifted = false
	for y := float32(0); y < wallHeight; y += wallRowStep {
		for x := wallXStart; x < wallXEnd; x++ {
			if err := brick(mgl32.Vec3{x + shift(shifted), y, wallZStart + z0}); err != nil {
				return count, err
			}
		}
		shifted = !shifted
	}

	return count, nil
}
