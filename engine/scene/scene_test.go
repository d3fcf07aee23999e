package scene

import (
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/loader"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/physics"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const physicsStep = time.Second / 60

type fakeAssets struct {
	meshLoads    map[string]int
	textureLoads map[string]int
	meshErr      error
	textureErr   error
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{meshLoads: map[string]int{}, textureLoads: map[string]int{}}
}

func (f *fakeAssets) LoadMesh(path string) (loader.Mesh, error) {
	f.meshLoads[path]++
	if f.meshErr != nil {
		return loader.Mesh{}, f.meshErr
	}
	return loader.CubeMesh(), nil
}

func (f *fakeAssets) LoadTexture(path string) (common.TextureStagingData, error) {
	f.textureLoads[path]++
	if f.textureErr != nil {
		return common.TextureStagingData{}, f.textureErr
	}
	return common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1}, nil
}

type fakeSink struct {
	uploads int
}

func (s *fakeSink) UploadTexture(common.TextureStagingData) (int, error) {
	s.uploads++
	return s.uploads + 10, nil
}

type fixedView struct {
	target, forward, up mgl32.Vec3
}

func (v fixedView) Target() mgl32.Vec3  { return v.target }
func (v fixedView) Forward() mgl32.Vec3 { return v.forward }
func (v fixedView) Up() mgl32.Vec3      { return v.up }

func newTestRegistry(t *testing.T, options ...RegistryBuilderOption) (Registry, *fakeAssets) {
	t.Helper()
	assets := newFakeAssets()
	sim := physics.NewSimulation(physics.WithWorkers(1))
	t.Cleanup(sim.Release)
	r := NewRegistry(sim, assets, options...)
	require.NoError(t, r.Define(ArchetypeDef{Key: "box", MeshPath: "models/cube.obj", TexturePath: "textures/cube.png"}))
	return r, assets
}

func TestArchetypeLoadedOnce(t *testing.T) {
	sink := &fakeSink{}
	r, assets := newTestRegistry(t, WithTextureSink(sink))

	for i := 0; i < 3; i++ {
		_, err := r.Spawn("box", SpawnParams{Position: mgl32.Vec3{float32(i), 0, 0}})
		require.NoError(t, err)
	}

	assert.Equal(t, 1, assets.meshLoads["models/cube.obj"])
	assert.Equal(t, 1, assets.textureLoads["textures/cube.png"])
	assert.Equal(t, 1, sink.uploads)

	arch, ok := r.Archetype("box")
	require.True(t, ok)
	assert.Equal(t, 3, arch.InstanceCount)
	assert.Equal(t, uint32(0), arch.VertexOffset)
	assert.Equal(t, uint32(36), arch.IndexCount)
	assert.Equal(t, 11, arch.TextureSlot)

	geo := r.Geometry()
	assert.Equal(t, uint64(1), geo.Version)
	assert.Len(t, geo.Vertices, 24)
	assert.Len(t, geo.Indices, 36)
}

func TestSecondArchetypeAppendsGeometry(t *testing.T) {
	r, _ := newTestRegistry(t)
	require.NoError(t, r.Define(ArchetypeDef{Key: "crate"}))

	_, err := r.Spawn("box", SpawnParams{})
	require.NoError(t, err)
	_, err = r.Spawn("crate", SpawnParams{})
	require.NoError(t, err)

	box, _ := r.Archetype("box")
	crate, ok := r.Archetype("crate")
	require.True(t, ok)
	assert.Equal(t, uint32(24), crate.VertexOffset)
	assert.Equal(t, uint32(36), crate.IndexOffset)
	assert.Equal(t, box.TextureSlot+1, crate.TextureSlot)
	assert.Equal(t, uint64(2), r.Geometry().Version)

	assert.Error(t, r.Define(ArchetypeDef{Key: "crate"}))
}

func TestSpawnUnknownArchetype(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Spawn("sphere", SpawnParams{})
	assert.ErrorIs(t, err, ErrUnknownArchetype)
	assert.Equal(t, 0, r.Len())

	_, ok := r.Archetype("sphere")
	assert.False(t, ok)
}

func TestSpawnAssetFailureIsWrapped(t *testing.T) {
	errMissing := errors.New("missing file")
	r, assets := newTestRegistry(t)
	assets.meshErr = errMissing

	_, err := r.Spawn("box", SpawnParams{})
	assert.ErrorIs(t, err, errMissing)
	assert.Equal(t, 0, r.Len())

	assets.meshErr = nil
	assets.textureErr = errMissing
	_, err = r.Spawn("box", SpawnParams{})
	assert.ErrorIs(t, err, errMissing)
}

func TestSpawnBakesMatrixAndBody(t *testing.T) {
	r, _ := newTestRegistry(t)
	pos := mgl32.Vec3{1, 2, 3}
	scale := mgl32.Vec3{0.5, 0.25, 0.5}

	id, err := r.Spawn("box", SpawnParams{
		Position: pos,
		Scale:    scale,
		Physics:  true,
		Kind:     physics.BodyKindDynamic,
		Velocity: mgl32.Vec3{0, 0, -25},
		Mass:     0.3,
	})
	require.NoError(t, err)

	obj, ok := r.Object(id)
	require.True(t, ok)
	assert.Equal(t, "box", obj.ArchetypeKey())
	assert.Equal(t, pos, obj.Matrix().Col(3).Vec3())
	assert.Equal(t, scale, obj.Scale())

	h, ok := obj.Body()
	require.True(t, ok)
	sim := r.Simulation()
	v, err := sim.LinearVelocity(h)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{0, 0, -25}, v)
	m, err := sim.Mass(h)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, m, 1e-6)
}

func TestReconcileRebuildsFromBodyOnly(t *testing.T) {
	r, _ := newTestRegistry(t)
	scale := mgl32.Vec3{0.2, 0.2, 0.2}

	id, err := r.Spawn("box", SpawnParams{Position: mgl32.Vec3{0, 5, 0}, Scale: scale, Physics: true, Kind: physics.BodyKindDynamic})
	require.NoError(t, err)
	obj, _ := r.Object(id)
	h, _ := obj.Body()

	sim := r.Simulation()
	require.NoError(t, sim.SetAngularVelocity(h, mgl32.Vec3{1, 2, 3}))
	for i := 0; i < 30; i++ {
		sim.Step(physicsStep)
	}

	// garbage in the previous matrix must not leak into the result
	var garbage mgl32.Mat4
	for i := range garbage {
		garbage[i] = 123
	}
	obj.SetMatrix(garbage)

	assert.Equal(t, 1, r.Reconcile())

	tr, err := sim.Transform(h)
	require.NoError(t, err)
	want := common.ComposeTRS(tr.Position, tr.Orientation, scale)
	assert.True(t, obj.Matrix().ApproxEqual(want))
	assert.Equal(t, tr.Position, obj.Matrix().Col(3).Vec3())

	// reconciling twice yields the same matrix
	first := obj.Matrix()
	r.Reconcile()
	assert.Equal(t, first, obj.Matrix())
}

func TestReconcileSkipsStaticAndBodyless(t *testing.T) {
	r, _ := newTestRegistry(t)

	staticID, err := r.Spawn("box", SpawnParams{Physics: true, Kind: physics.BodyKindStatic})
	require.NoError(t, err)
	plainID, err := r.Spawn("box", SpawnParams{Position: mgl32.Vec3{3, 0, 0}})
	require.NoError(t, err)

	marker := mgl32.Translate3D(9, 9, 9)
	for _, id := range []uint64{staticID, plainID} {
		obj, _ := r.Object(id)
		obj.SetMatrix(marker)
	}

	assert.Equal(t, 0, r.Reconcile())
	for _, id := range []uint64{staticID, plainID} {
		obj, _ := r.Object(id)
		assert.Equal(t, marker, obj.Matrix())
	}
}

func TestReconcileSkipsRemovedBodies(t *testing.T) {
	r, _ := newTestRegistry(t)
	id, err := r.Spawn("box", SpawnParams{Physics: true, Kind: physics.BodyKindDynamic})
	require.NoError(t, err)
	obj, _ := r.Object(id)
	h, _ := obj.Body()
	require.NoError(t, r.Simulation().RemoveBody(h))

	before := obj.Matrix()
	assert.Equal(t, 0, r.Reconcile())
	assert.Equal(t, before, obj.Matrix())
}

func TestObjectsKeepInsertionOrder(t *testing.T) {
	r, _ := newTestRegistry(t)
	var ids []uint64
	for i := 0; i < 5; i++ {
		id, err := r.Spawn("box", SpawnParams{})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	objs := r.Objects()
	require.Len(t, objs, 5)
	for i, obj := range objs {
		assert.Equal(t, ids[i], obj.ID())
	}
	assert.Equal(t, 5, r.Len())
}

func TestSpawnControllerThrottle(t *testing.T) {
	r, _ := newTestRegistry(t)
	c := NewSpawnController()
	view := fixedView{forward: mgl32.Vec3{0, 0, -1}, up: mgl32.Vec3{0, 1, 0}}
	tuning := SpawnTuning{Velocity: 25, Mass: 0.3, Scale: 0.2}

	spawned, err := c.Tick(view, r, tuning)
	require.NoError(t, err)
	assert.False(t, spawned)

	c.Request(100)
	assert.Equal(t, 100, c.Intended())

	for i := 0; i < 50; i++ {
		spawned, err := c.Tick(view, r, tuning)
		require.NoError(t, err)
		assert.True(t, spawned)
	}
	assert.Equal(t, 50, c.Created())
	assert.Equal(t, 50, r.Len())

	for i := 0; i < 100; i++ {
		_, err := c.Tick(view, r, tuning)
		require.NoError(t, err)
	}
	assert.Equal(t, 100, c.Created())
	assert.Equal(t, 100, r.Len())
	assert.LessOrEqual(t, c.Created(), c.Intended())
}

func TestSpawnControllerPlacement(t *testing.T) {
	r, _ := newTestRegistry(t)
	c := NewSpawnController()
	view := fixedView{forward: mgl32.Vec3{0, 0, -1}, up: mgl32.Vec3{0, 1, 0}}

	pos := c.SpawnPosition(view)
	assert.InDelta(t, 1.0, pos.X(), 1e-6)
	assert.InDelta(t, -0.2, pos.Y(), 1e-6)
	assert.InDelta(t, -1.0, pos.Z(), 1e-6)

	c.Request(1)
	spawned, err := c.Tick(view, r, SpawnTuning{Velocity: 25, Mass: 0.3, Scale: 0.2})
	require.NoError(t, err)
	require.True(t, spawned)

	obj := r.Objects()[0]
	assert.Equal(t, mgl32.Vec3{0.2, 0.2, 0.2}, obj.Scale())
	h, ok := obj.Body()
	require.True(t, ok)
	v, err := r.Simulation().LinearVelocity(h)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{0, 0, -25}, v)
}

func TestSpawnControllerKeepsRequestOnError(t *testing.T) {
	assets := newFakeAssets()
	r := NewRegistry(physics.NewSimulation(physics.WithWorkers(1)), assets)
	c := NewSpawnController(WithSpawnArchetype("missing"))
	c.Request(1)

	spawned, err := c.Tick(fixedView{forward: mgl32.Vec3{0, 0, -1}, up: mgl32.Vec3{0, 1, 0}}, r, SpawnTuning{Scale: 1})
	assert.ErrorIs(t, err, ErrUnknownArchetype)
	assert.False(t, spawned)
	assert.Equal(t, 0, c.Created())
}

func TestBuildDefaultLayout(t *testing.T) {
	r, _ := newTestRegistry(t)

	n, err := BuildDefaultLayout(r, "box")
	require.NoError(t, err)
	assert.Equal(t, 981, n)
	assert.Equal(t, 981, r.Len())
	assert.Equal(t, 981, r.Simulation().BodyCount())

	floor := r.Objects()[0]
	assert.Equal(t, mgl32.Vec3{20, 0.5, 20}, floor.Scale())
	h, _ := floor.Body()
	kind, err := r.Simulation().Kind(h)
	require.NoError(t, err)
	assert.Equal(t, physics.BodyKindStatic, kind)

	// first brick of the front wall sits on the shifted row
	assert.Equal(t, mgl32.Vec3{-9.5, 0, 0}, r.Objects()[1].Matrix().Col(3).Vec3())

	arch, _ := r.Archetype("box")
	assert.Equal(t, 981, arch.InstanceCount)
}

func TestBuildDefaultLayoutUnknownArchetype(t *testing.T) {
	r, _ := newTestRegistry(t)
	n, err := BuildDefaultLayout(r, "nope")
	assert.ErrorIs(t, err, ErrUnknownArchetype)
	assert.Equal(t, 0, n)
}
