package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/physics"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
)

// Viewpoint is the camera state the spawn controller places objects relative to.
type Viewpoint interface {
	// Target returns the point the viewpoint looks at.
	Target() mgl32.Vec3
	// Forward returns the unit view direction.
	Forward() mgl32.Vec3
	// Up returns the world up vector.
	Up() mgl32.Vec3
}

// SpawnTuning holds the user-tunable properties of spawned objects.
type SpawnTuning struct {
	// Velocity is the launch speed along the view direction.
	Velocity float32
	// Mass is the body mass.
	Mass float32
	// Scale is the uniform object scale.
	Scale float32
}

// SpawnController converts spawn requests into at most one spawned object per tick.
type SpawnController struct {
	mu *sync.Mutex

	archetype string
	distance  float32
	xOffset   float32
	yOffset   float32

	created  int
	intended int

	logger *log.Logger
}

// NewSpawnController creates a SpawnController. Objects spawn one unit in front of the view
// target, one unit to the left and slightly below, using the "box" archetype.
//
// Parameters:
//   - options: functional options for controller configuration
//
// Returns:
//   - *SpawnController: the newly created controller
func NewSpawnController(options ...SpawnControllerBuilderOption) *SpawnController {
	c := &SpawnController{
		mu:        &sync.Mutex{},
		archetype: "box",
		distance:  1.0,
		xOffset:   -1.0,
		yOffset:   -0.2,
		logger:    log.WithPrefix("spawn"),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Request raises the number of objects the controller intends to create.
//
// Parameters:
//   - n: additional objects to create (values <= 0 are ignored)
func (c *SpawnController) Request(n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intended += n
}

// Tick spawns one object if fewer have been created than intended.
//
// Parameters:
//   - view: the viewpoint to spawn in front of
//   - registry: the registry to spawn into
//   - tuning: velocity, mass, and scale for the new object
//
// Returns:
//   - bool: true if an object was spawned
//   - error: wrapped registry error; the request stays pending
func (c *SpawnController) Tick(view Viewpoint, registry Registry, tuning SpawnTuning) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.created >= c.intended {
		return false, nil
	}

	forward := view.Forward()
	scale := tuning.Scale
	_, err := registry.Spawn(c.archetype, SpawnParams{
		Position: c.spawnPosition(view),
		Scale:    mgl32.Vec3{scale, scale, scale},
		Physics:  true,
		Kind:     physics.BodyKindDynamic,
		Velocity: forward.Mul(tuning.Velocity),
		Mass:     tuning.Mass,
	})
	if err != nil {
		return false, err
	}
	c.created++
	c.logger.Debug("spawned", "created", c.created, "intended", c.intended)
	return true, nil
}

// SpawnPosition returns where the next object would spawn for the given viewpoint.
//
// Parameters:
//   - view: the viewpoint
//
// Returns:
//   - mgl32.Vec3: target + forward*distance + right*xOffset + up*yOffset
func (c *SpawnController) SpawnPosition(view Viewpoint) mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spawnPosition(view)
}

func (c *SpawnController) spawnPosition(view Viewpoint) mgl32.Vec3 {
	forward := view.Forward()
	up := view.Up()
	right := up.Cross(forward)
	if right.LenSqr() > 0 {
		right = right.Normalize()
	}
	return view.Target().
		Add(forward.Mul(c.distance)).
		Add(right.Mul(c.xOffset)).
		Add(up.Mul(c.yOffset))
}

// Created returns how many objects the controller has spawned.
func (c *SpawnController) Created() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.created
}

// Intended returns how many objects have been requested in total.
func (c *SpawnController) Intended() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.intended
}
