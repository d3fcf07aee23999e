package scene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/game_object"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/physics"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
)

// SpawnParams describes a single object to spawn.
type SpawnParams struct {
	// Position is the world-space spawn position.
	Position mgl32.Vec3
	// Orientation is the initial orientation. The zero value is treated as identity.
	Orientation mgl32.Quat
	// Scale is the fixed per-instance scale. The zero value is treated as (1, 1, 1).
	Scale mgl32.Vec3

	// Physics creates a rigid body for the object when true.
	Physics bool
	// Kind is the body kind used when Physics is set.
	Kind physics.BodyKind
	// Velocity is the initial linear velocity.
	Velocity mgl32.Vec3
	// AngularVelocity is the initial angular velocity.
	AngularVelocity mgl32.Vec3
	// Mass overrides the body mass when > 0.
	Mass float32
}

type registry struct {
	mu *sync.RWMutex

	sim      physics.Simulation
	assets   AssetSource
	textures TextureSink
	logger   *log.Logger

	nextID      uint64
	objects     []game_object.GameObject
	byID        map[uint64]game_object.GameObject
	archetypes  map[string]*archetypeEntry
	nextTexture int

	vertices        []common.Vertex
	indices         []uint32
	geometryVersion uint64
}

// Registry owns the sandbox's simulated objects and the archetype table they draw from.
// Objects are kept in insertion order, which is also draw order.
type Registry interface {
	// Define registers an archetype. Assets load lazily on the first spawn of the key.
	// Redefining a key that has not been spawned yet replaces its definition.
	//
	// Parameters:
	//   - def: the archetype definition
	//
	// Returns:
	//   - error: error if the key is empty or already loaded
	Define(def ArchetypeDef) error

	// Spawn creates an object of the given archetype. The first spawn of a key loads its mesh
	// into the shared buffers and uploads its texture; later spawns reuse that entry.
	// A physics-enabled spawn creates a box body whose half extents follow the object scale.
	//
	// Parameters:
	//   - key: the archetype key
	//   - params: placement and physics parameters
	//
	// Returns:
	//   - uint64: the new object's ID
	//   - error: ErrUnknownArchetype, or a wrapped asset load failure
	Spawn(key string, params SpawnParams) (uint64, error)

	// Objects returns the registered objects in insertion order.
	//
	// Returns:
	//   - []game_object.GameObject: a copy of the object list
	Objects() []game_object.GameObject

	// Object looks up an object by ID.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - game_object.GameObject: the object, or nil
	//   - bool: true if found
	Object(id uint64) (game_object.GameObject, bool)

	// Archetype returns the loaded state of an archetype.
	//
	// Parameters:
	//   - key: the archetype key
	//
	// Returns:
	//   - Archetype: the archetype entry
	//   - bool: true if the key has been spawned at least once
	Archetype(key string) (Archetype, bool)

	// Geometry returns the shared vertex and index buffers with their version.
	//
	// Returns:
	//   - Geometry: a snapshot referencing the current buffers
	Geometry() Geometry

	// Len returns the number of registered objects.
	//
	// Returns:
	//   - int: object count
	Len() int

	// Reconcile rebuilds the world matrix of every physics-driven object from its body.
	//
	// Returns:
	//   - int: the number of objects updated
	Reconcile() int

	// Simulation returns the simulation backing this registry's bodies.
	//
	// Returns:
	//   - physics.Simulation: the simulation
	Simulation() physics.Simulation
}

var _ Registry = &registry{}

// NewRegistry creates a Registry whose bodies live in sim and whose assets come from assets.
//
// Parameters:
//   - sim: the physics simulation (must not be nil)
//   - assets: the mesh and texture source (must not be nil)
//   - options: functional options for registry configuration
//
// Returns:
//   - Registry: the newly created registry
func NewRegistry(sim physics.Simulation, assets AssetSource, options ...RegistryBuilderOption) Registry {
	if sim == nil || assets == nil {
		panic("scene: NewRegistry requires a simulation and an asset source")
	}
	r := &registry{
		mu:         &sync.RWMutex{},
		sim:        sim,
		assets:     assets,
		logger:     log.WithPrefix("scene"),
		nextID:     1,
		byID:       make(map[uint64]game_object.GameObject),
		archetypes: make(map[string]*archetypeEntry),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *registry) Define(def ArchetypeDef) error {
	if def.Key == "" {
		return errors.New("scene: archetype key must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.archetypes[def.Key]; ok && e.loaded {
		return fmt.Errorf("scene: archetype %q is already loaded", def.Key)
	}
	r.archetypes[def.Key] = &archetypeEntry{def: def.withDefaults()}
	return nil
}

func (r *registry) Spawn(key string, params SpawnParams) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.archetypes[key]
	if !ok {
		return 0, fmt.Errorf("spawn %q: %w", key, ErrUnknownArchetype)
	}
	if !entry.loaded {
		if err := r.loadArchetype(entry); err != nil {
			return 0, err
		}
	}

	scale := params.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	rot := params.Orientation
	if rot == (mgl32.Quat{}) {
		rot = mgl32.QuatIdent()
	}

	options := []game_object.GameObjectBuilderOption{
		game_object.WithID(r.nextID),
		game_object.WithArchetype(key),
		game_object.WithScale(scale),
		game_object.WithMatrix(common.ComposeTRS(params.Position, rot, scale)),
	}

	if params.Physics {
		bodyOptions := []physics.BodyBuilderOption{
			physics.WithHalfExtents(scale.Mul(entry.def.HalfExtentFactor)),
			physics.WithLinearVelocity(params.Velocity),
			physics.WithAngularVelocity(params.AngularVelocity),
		}
		if params.Mass > 0 {
			bodyOptions = append(bodyOptions, physics.WithMass(params.Mass))
		}
		h := r.sim.CreateBody(physics.Transform{Position: params.Position, Orientation: rot}, params.Kind, bodyOptions...)
		options = append(options, game_object.WithBody(h))
	}

	obj := game_object.NewGameObject(options...)
	r.objects = append(r.objects, obj)
	r.byID[obj.ID()] = obj
	r.nextID++
	entry.arch.InstanceCount++

	return obj.ID(), nil
}

// loadArchetype appends the archetype's mesh to the shared buffers and uploads its texture.
// Caller must hold the write lock.
func (r *registry) loadArchetype(entry *archetypeEntry) error {
	def := entry.def

	mesh, err := r.assets.LoadMesh(def.MeshPath)
	if err != nil {
		return fmt.Errorf("load archetype %q mesh: %w", def.Key, err)
	}
	tex, err := r.assets.LoadTexture(def.TexturePath)
	if err != nil {
		return fmt.Errorf("load archetype %q texture: %w", def.Key, err)
	}

	slot := r.nextTexture
	if r.textures != nil {
		slot, err = r.textures.UploadTexture(tex)
		if err != nil {
			return fmt.Errorf("upload archetype %q texture: %w", def.Key, err)
		}
	}
	r.nextTexture = slot + 1

	entry.arch = Archetype{
		Key:              def.Key,
		VertexOffset:     uint32(len(r.vertices)),
		IndexOffset:      uint32(len(r.indices)),
		IndexCount:       uint32(len(mesh.Indices)),
		TextureSlot:      slot,
		HalfExtentFactor: def.HalfExtentFactor,
	}
	r.vertices = append(r.vertices, mesh.Vertices...)
	r.indices = append(r.indices, mesh.Indices...)
	r.geometryVersion++
	entry.loaded = true

	r.logger.Info("archetype loaded",
		"key", def.Key,
		"mesh", def.MeshPath,
		"texture", def.TexturePath,
		"indices", entry.arch.IndexCount,
		"textureSlot", slot,
	)
	return nil
}

func (r *registry) Objects() []game_object.GameObject {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game_object.GameObject, len(r.objects))
	copy(out, r.objects)
	return out
}

func (r *registry) Object(id uint64) (game_object.GameObject, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	obj, ok := r.byID[id]
	return obj, ok
}

func (r *registry) Archetype(key string) (Archetype, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.archetypes[key]
	if !ok || !e.loaded {
		return Archetype{}, false
	}
	return e.arch, true
}

func (r *registry) Geometry() Geometry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return Geometry{
		Vertices: r.vertices,
		Indices:  r.indices,
		Version:  r.geometryVersion,
	}
}

func (r *registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}

func (r *registry) Reconcile() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Reconcile(r.objects, r.sim)
}

func (r *registry) Simulation() physics.Simulation {
	return r.sim
}
