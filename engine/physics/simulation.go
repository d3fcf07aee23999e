// Package physics implements the rigid-body simulation stepped by the sandbox's fixed-timestep loop.
//
// Bodies live in an arena owned by the Simulation and are addressed by generation-checked handles.
// Callers never hold pointers into simulation storage.
package physics

import (
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrInvalidHandle is returned when a handle does not address a live body.
	ErrInvalidHandle = errors.New("physics: invalid body handle")

	// ErrInvalidMass is returned when a non-positive mass is assigned to a body.
	ErrInvalidMass = errors.New("physics: mass must be positive")
)

// StandardGravity is the default gravitational acceleration (m/s²) along -Y.
const StandardGravity = 9.80665

// Simulation owns the physics world state and advances it in fixed steps.
type Simulation interface {
	// CreateBody adds a body to the world. It always succeeds.
	// Dynamic bodies default to a mass of 1 and a unit box collider (half extents 0.5).
	//
	// Parameters:
	//   - t: the initial position and orientation
	//   - kind: static, dynamic, or kinematic
	//   - options: functional options for collider and mass configuration
	//
	// Returns:
	//   - BodyHandle: the handle addressing the new body
	CreateBody(t Transform, kind BodyKind, options ...BodyBuilderOption) BodyHandle

	// RemoveBody frees the body's arena slot. Existing handles to it become invalid.
	//
	// Parameters:
	//   - h: the body to remove
	//
	// Returns:
	//   - error: ErrInvalidHandle if h does not address a live body
	RemoveBody(h BodyHandle) error

	// Step advances every dynamic and kinematic body by exactly dt.
	//
	// Parameters:
	//   - dt: the fixed step duration
	Step(dt time.Duration)

	// Transform returns the body's current position and orientation.
	//
	// Parameters:
	//   - h: the body to read
	//
	// Returns:
	//   - Transform: the current transform
	//   - error: ErrInvalidHandle if h does not address a live body
	Transform(h BodyHandle) (Transform, error)

	// Kind returns the body's classification.
	//
	// Parameters:
	//   - h: the body to read
	//
	// Returns:
	//   - BodyKind: the body kind
	//   - error: ErrInvalidHandle if h does not address a live body
	Kind(h BodyHandle) (BodyKind, error)

	// LinearVelocity returns the body's linear velocity.
	//
	// Parameters:
	//   - h: the body to read
	//
	// Returns:
	//   - mgl32.Vec3: world-space velocity
	//   - error: ErrInvalidHandle if h does not address a live body
	LinearVelocity(h BodyHandle) (mgl32.Vec3, error)

	// AngularVelocity returns the body's angular velocity.
	//
	// Parameters:
	//   - h: the body to read
	//
	// Returns:
	//   - mgl32.Vec3: world-space angular velocity in radians per second
	//   - error: ErrInvalidHandle if h does not address a live body
	AngularVelocity(h BodyHandle) (mgl32.Vec3, error)

	// Mass returns the body's mass. Static and kinematic bodies report their configured mass
	// even though the solver treats them as immovable.
	//
	// Parameters:
	//   - h: the body to read
	//
	// Returns:
	//   - float32: the mass
	//   - error: ErrInvalidHandle if h does not address a live body
	Mass(h BodyHandle) (float32, error)

	// Sleeping reports whether the body is currently asleep.
	//
	// Parameters:
	//   - h: the body to read
	//
	// Returns:
	//   - bool: true if asleep
	//   - error: ErrInvalidHandle if h does not address a live body
	Sleeping(h BodyHandle) (bool, error)

	// SetLinearVelocity sets the body's linear velocity and wakes it.
	//
	// Parameters:
	//   - h: the body to modify
	//   - v: the new velocity
	//
	// Returns:
	//   - error: ErrInvalidHandle if h does not address a live body
	SetLinearVelocity(h BodyHandle, v mgl32.Vec3) error

	// SetAngularVelocity sets the body's angular velocity and wakes it.
	//
	// Parameters:
	//   - h: the body to modify
	//   - w: the new angular velocity
	//
	// Returns:
	//   - error: ErrInvalidHandle if h does not address a live body
	SetAngularVelocity(h BodyHandle, w mgl32.Vec3) error

	// SetMass sets the body's mass and recomputes its inertia.
	//
	// Parameters:
	//   - h: the body to modify
	//   - m: the new mass (must be > 0)
	//
	// Returns:
	//   - error: ErrInvalidHandle or ErrInvalidMass
	SetMass(h BodyHandle, m float32) error

	// BodyCount returns the number of live bodies.
	//
	// Returns:
	//   - int: live body count
	BodyCount() int

	// Gravity returns the world gravity vector.
	//
	// Returns:
	//   - mgl32.Vec3: gravitational acceleration
	Gravity() mgl32.Vec3

	// Release stops the narrow-phase workers. Later steps test pairs on the calling goroutine.
	// Calling it more than once is a no-op.
	Release()
}

type bodySlot struct {
	body       rigidBody
	generation uint32
	alive      bool
}

type simulation struct {
	mu *sync.RWMutex

	slots []bodySlot
	free  []uint32
	live  int

	gravity            mgl32.Vec3
	velocityIterations int
	linearDamping      float32
	angularDamping     float32

	sleepingEnabled bool
	sleepThreshold  float32
	sleepTime       float32

	cellSize          float32
	workers           int
	parallelThreshold int
	pool              worker.DynamicWorkerPool

	logger *log.Logger

	// per-step scratch reused across steps
	bounds   []aabb
	entries  []cellEntry
	large    []int
	pairs    []bodyPair
	contacts []manifold

	// last step's manifolds, indexed by pair, for warm starting
	prevContacts []manifold
	previous     map[contactKey]int
}

var _ Simulation = &simulation{}

// NewSimulation creates a new Simulation with the given options.
// Defaults mirror a typical sandbox world: standard gravity along -Y, 20 velocity iterations,
// sleeping disabled, and a 2 unit broad-phase grid.
//
// Parameters:
//   - options: functional options for world configuration
//
// Returns:
//   - Simulation: the newly created simulation
func NewSimulation(options ...SimulationBuilderOption) Simulation {
	s := &simulation{
		mu:                 &sync.RWMutex{},
		gravity:            mgl32.Vec3{0, -StandardGravity, 0},
		velocityIterations: 20,
		linearDamping:      0.01,
		angularDamping:     0.05,
		sleepingEnabled:    false,
		sleepThreshold:     0.05,
		sleepTime:          1.0,
		cellSize:           DefaultCellSize,
		previous:           make(map[contactKey]int),
		workers:            max(runtime.NumCPU()-1, 1),
		parallelThreshold:  256,
		logger:             log.WithPrefix("physics"),
	}

	for _, opt := range options {
		opt(s)
	}

	// Narrow-phase workers persist across steps until Release.
	if s.workers > 1 {
		s.pool = worker.NewDynamicWorkerPool(s.workers, 256, 1*time.Second)
	}

	s.logger.Debug("simulation created",
		"gravity", s.gravity,
		"velocityIterations", s.velocityIterations,
		"sleeping", s.sleepingEnabled,
		"cellSize", s.cellSize,
		"workers", s.workers,
	)

	return s
}

func (s *simulation) CreateBody(t Transform, kind BodyKind, options ...BodyBuilderOption) BodyHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	rot := t.Orientation
	if rot.Len() == 0 {
		rot = mgl32.QuatIdent()
	}

	b := rigidBody{
		kind:        kind,
		pos:         t.Position,
		rot:         rot.Normalize(),
		mass:        1,
		halfExtents: mgl32.Vec3{0.5, 0.5, 0.5},
		friction:    0.3,
		restitution: 0.1,
	}
	for _, opt := range options {
		opt(&b)
	}
	if kind == BodyKindStatic {
		b.vel = mgl32.Vec3{}
		b.angVel = mgl32.Vec3{}
	}
	b.updateMassProperties()

	var index uint32
	if n := len(s.free); n > 0 {
		index = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.slots = append(s.slots, bodySlot{})
		index = uint32(len(s.slots) - 1)
	}

	slot := &s.slots[index]
	slot.generation++
	if slot.generation == 0 {
		slot.generation = 1
	}
	slot.body = b
	slot.alive = true
	s.live++

	return newBodyHandle(index, slot.generation)
}

func (s *simulation) RemoveBody(h BodyHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, err := s.slot(h)
	if err != nil {
		return err
	}
	slot.alive = false
	slot.body = rigidBody{}
	s.free = append(s.free, h.index())
	s.live--
	return nil
}

func (s *simulation) Step(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seconds := float32(dt.Seconds())
	if seconds <= 0 || s.live == 0 {
		return
	}
	s.step(seconds)
}

func (s *simulation) Transform(h BodyHandle) (Transform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, err := s.slot(h)
	if err != nil {
		return Transform{}, err
	}
	return Transform{Position: slot.body.pos, Orientation: slot.body.rot}, nil
}

func (s *simulation) Kind(h BodyHandle) (BodyKind, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, err := s.slot(h)
	if err != nil {
		return 0, err
	}
	return slot.body.kind, nil
}

func (s *simulation) LinearVelocity(h BodyHandle) (mgl32.Vec3, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, err := s.slot(h)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return slot.body.vel, nil
}

func (s *simulation) AngularVelocity(h BodyHandle) (mgl32.Vec3, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, err := s.slot(h)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return slot.body.angVel, nil
}

func (s *simulation) Mass(h BodyHandle) (float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, err := s.slot(h)
	if err != nil {
		return 0, err
	}
	return slot.body.mass, nil
}

func (s *simulation) Sleeping(h BodyHandle) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, err := s.slot(h)
	if err != nil {
		return false, err
	}
	return slot.body.sleeping, nil
}

func (s *simulation) SetLinearVelocity(h BodyHandle, v mgl32.Vec3) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, err := s.slot(h)
	if err != nil {
		return err
	}
	if slot.body.kind == BodyKindStatic {
		return nil
	}
	slot.body.vel = v
	slot.body.wake()
	return nil
}

func (s *simulation) SetAngularVelocity(h BodyHandle, w mgl32.Vec3) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, err := s.slot(h)
	if err != nil {
		return err
	}
	if slot.body.kind == BodyKindStatic {
		return nil
	}
	slot.body.angVel = w
	slot.body.wake()
	return nil
}

func (s *simulation) SetMass(h BodyHandle, m float32) error {
	if m <= 0 {
		return ErrInvalidMass
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	slot, err := s.slot(h)
	if err != nil {
		return err
	}
	slot.body.mass = m
	slot.body.updateMassProperties()
	return nil
}

func (s *simulation) BodyCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

func (s *simulation) Gravity() mgl32.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gravity
}

func (s *simulation) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool == nil {
		return
	}
	s.pool.Stop()
	s.pool = nil
	s.logger.Debug("narrow-phase workers stopped")
}

// slot resolves a handle to its live arena slot. Caller must hold the mutex.
func (s *simulation) slot(h BodyHandle) (*bodySlot, error) {
	if h == InvalidHandle {
		return nil, ErrInvalidHandle
	}
	idx := h.index()
	if int(idx) >= len(s.slots) {
		return nil, ErrInvalidHandle
	}
	slot := &s.slots[idx]
	if !slot.alive || slot.generation != h.generation() {
		return nil, ErrInvalidHandle
	}
	return slot, nil
}
