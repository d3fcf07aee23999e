package physics

import (
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStep = time.Second / 60

func stepN(s Simulation, n int) {
	for i := 0; i < n; i++ {
		s.Step(testStep)
	}
}

func newTestSimulation(t *testing.T, options ...SimulationBuilderOption) Simulation {
	t.Helper()
	s := NewSimulation(options...)
	t.Cleanup(s.Release)
	return s
}

func addFloor(s Simulation) BodyHandle {
	return s.CreateBody(NewTransform(mgl32.Vec3{0, -0.5, 0}), BodyKindStatic,
		WithHalfExtents(mgl32.Vec3{20, 0.5, 20}))
}

func TestFreeFall(t *testing.T) {
	s := newTestSimulation(t)
	h := s.CreateBody(NewTransform(mgl32.Vec3{0, 10, 0}), BodyKindDynamic)

	stepN(s, 60)

	tr, err := s.Transform(h)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, tr.Position.Y(), 0.1)
	assert.InDelta(t, 0, tr.Position.X(), 1e-6)

	v, err := s.LinearVelocity(h)
	require.NoError(t, err)
	assert.InDelta(t, -StandardGravity, v.Y(), 0.1)
}

func TestStaticBodyNeverMoves(t *testing.T) {
	s := newTestSimulation(t)
	h := addFloor(s)
	require.NoError(t, s.SetLinearVelocity(h, mgl32.Vec3{5, 5, 5}))

	stepN(s, 30)

	tr, err := s.Transform(h)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{0, -0.5, 0}, tr.Position)

	v, err := s.LinearVelocity(h)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{}, v)
}

func TestKinematicMovesByVelocityOnly(t *testing.T) {
	s := newTestSimulation(t)
	h := s.CreateBody(NewTransform(mgl32.Vec3{0, 3, 0}), BodyKindKinematic,
		WithLinearVelocity(mgl32.Vec3{1, 0, 0}))

	stepN(s, 60)

	tr, err := s.Transform(h)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, tr.Position.X(), 1e-3)
	assert.InDelta(t, 3.0, tr.Position.Y(), 1e-6)

	kind, err := s.Kind(h)
	require.NoError(t, err)
	assert.Equal(t, BodyKindKinematic, kind)
}

func TestBoxRestsOnFloor(t *testing.T) {
	s := newTestSimulation(t)
	addFloor(s)
	box := s.CreateBody(NewTransform(mgl32.Vec3{0, 1, 0}), BodyKindDynamic)

	stepN(s, 180)

	tr, err := s.Transform(box)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, tr.Position.Y(), 0.05)

	v, err := s.LinearVelocity(box)
	require.NoError(t, err)
	assert.Less(t, v.Len(), float32(0.5))
}

func TestDynamicBoxesCollide(t *testing.T) {
	s := newTestSimulation(t, WithGravity(mgl32.Vec3{}))
	a := s.CreateBody(NewTransform(mgl32.Vec3{-2, 0, 0}), BodyKindDynamic,
		WithLinearVelocity(mgl32.Vec3{4, 0, 0}))
	b := s.CreateBody(NewTransform(mgl32.Vec3{2, 0, 0}), BodyKindDynamic,
		WithLinearVelocity(mgl32.Vec3{-4, 0, 0}))

	stepN(s, 90)

	ta, err := s.Transform(a)
	require.NoError(t, err)
	tb, err := s.Transform(b)
	require.NoError(t, err)
	assert.Less(t, ta.Position.X(), tb.Position.X())
	assert.GreaterOrEqual(t, tb.Position.X()-ta.Position.X(), float32(0.9))
}

func TestHandleInvalidation(t *testing.T) {
	s := newTestSimulation(t)

	_, err := s.Transform(InvalidHandle)
	assert.ErrorIs(t, err, ErrInvalidHandle)

	h := s.CreateBody(NewTransform(mgl32.Vec3{}), BodyKindDynamic)
	assert.Equal(t, 1, s.BodyCount())
	require.NoError(t, s.RemoveBody(h))
	assert.Equal(t, 0, s.BodyCount())

	_, err = s.Transform(h)
	assert.ErrorIs(t, err, ErrInvalidHandle)
	assert.ErrorIs(t, s.RemoveBody(h), ErrInvalidHandle)

	reused := s.CreateBody(NewTransform(mgl32.Vec3{1, 2, 3}), BodyKindDynamic)
	assert.NotEqual(t, h, reused)
	assert.Equal(t, h.index(), reused.index())

	_, err = s.Transform(h)
	assert.ErrorIs(t, err, ErrInvalidHandle)

	tr, err := s.Transform(reused)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, tr.Position)
}

func TestSetMass(t *testing.T) {
	s := newTestSimulation(t)
	h := s.CreateBody(NewTransform(mgl32.Vec3{}), BodyKindDynamic, WithMass(0.3))

	m, err := s.Mass(h)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, m, 1e-6)

	assert.ErrorIs(t, s.SetMass(h, 0), ErrInvalidMass)
	assert.ErrorIs(t, s.SetMass(h, -1), ErrInvalidMass)
	require.NoError(t, s.SetMass(h, 2))

	m, err = s.Mass(h)
	require.NoError(t, err)
	assert.Equal(t, float32(2), m)
}

func TestSleepingAndWake(t *testing.T) {
	s := newTestSimulation(t, WithGravity(mgl32.Vec3{}), WithSleeping(true))
	h := s.CreateBody(NewTransform(mgl32.Vec3{}), BodyKindDynamic)

	stepN(s, 90)

	asleep, err := s.Sleeping(h)
	require.NoError(t, err)
	assert.True(t, asleep)

	require.NoError(t, s.SetLinearVelocity(h, mgl32.Vec3{0, 1, 0}))
	asleep, err = s.Sleeping(h)
	require.NoError(t, err)
	assert.False(t, asleep)
}

func TestSleepingDisabledByDefault(t *testing.T) {
	s := newTestSimulation(t, WithGravity(mgl32.Vec3{}))
	h := s.CreateBody(NewTransform(mgl32.Vec3{}), BodyKindDynamic)

	stepN(s, 120)

	asleep, err := s.Sleeping(h)
	require.NoError(t, err)
	assert.False(t, asleep)
}

func TestParallelNarrowPhaseMatchesSerial(t *testing.T) {
	build := func(options ...SimulationBuilderOption) (Simulation, []BodyHandle) {
		s := newTestSimulation(t, options...)
		addFloor(s)
		var hs []BodyHandle
		for x := -3; x <= 3; x++ {
			for y := 0; y < 4; y++ {
				pos := mgl32.Vec3{float32(x) * 0.9, 0.25 + float32(y)*0.5, 0}
				hs = append(hs, s.CreateBody(NewTransform(pos), BodyKindDynamic,
					WithHalfExtents(mgl32.Vec3{0.5, 0.25, 0.5})))
			}
		}
		return s, hs
	}

	serial, hs1 := build(WithWorkers(1))
	parallel, hs2 := build(WithWorkers(4), WithParallelThreshold(0))

	stepN(serial, 30)
	stepN(parallel, 30)

	require.Len(t, hs2, len(hs1))
	for i := range hs1 {
		a, err := serial.Transform(hs1[i])
		require.NoError(t, err)
		b, err := parallel.Transform(hs2[i])
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestWorldBoundsOfRotatedBox(t *testing.T) {
	b := rigidBody{
		pos:         mgl32.Vec3{},
		rot:         mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{0, 1, 0}),
		halfExtents: mgl32.Vec3{1, 1, 1},
	}
	bounds := worldBounds(&b)
	assert.InDelta(t, 1.41421, bounds.max.X(), 1e-3)
	assert.InDelta(t, 1.0, bounds.max.Y(), 1e-5)
}

func box(pos, half mgl32.Vec3) rigidBody {
	return rigidBody{pos: pos, rot: mgl32.QuatIdent(), halfExtents: half}
}

func TestCollideBoxesNormalPointsTowardsFirstBody(t *testing.T) {
	unit := mgl32.Vec3{0.5, 0.5, 0.5}
	a := box(mgl32.Vec3{0, 0.9, 0}, unit)
	b := box(mgl32.Vec3{0, 0, 0}, unit)

	var m manifold
	require.True(t, collideBoxes(&a, &b, &m))
	assert.InDelta(t, 1.0, m.normal.Y(), 1e-5)
	assert.InDelta(t, 0.1, m.penetration, 1e-4)

	// one point per corner of the shared face, halfway through the overlap
	require.Equal(t, 4, m.count)
	for i := 0; i < m.count; i++ {
		p := m.points[i]
		assert.InDelta(t, 0.45, p.point.Y(), 1e-4)
		assert.InDelta(t, 0.5, math32.Abs(p.point.X()), 1e-3)
		assert.InDelta(t, 0.5, math32.Abs(p.point.Z()), 1e-3)
		assert.InDelta(t, 0.1, p.penetration, 1e-4)
	}

	far := box(mgl32.Vec3{3, 0, 0}, unit)
	assert.False(t, collideBoxes(&a, &far, &manifold{}))
}

func TestCollideBoxesTouchingWithinMargin(t *testing.T) {
	brick := mgl32.Vec3{0.5, 0.25, 0.5}
	lower := box(mgl32.Vec3{0, 0.25, 0}, brick)
	upper := box(mgl32.Vec3{0, 0.75, 0}, brick)

	var m manifold
	require.True(t, collideBoxes(&upper, &lower, &m))
	require.Equal(t, 4, m.count)
	for i := 0; i < m.count; i++ {
		assert.InDelta(t, 0, m.points[i].penetration, 1e-5)
	}

	apart := box(mgl32.Vec3{0, 0.8, 0}, brick)
	assert.False(t, collideBoxes(&apart, &lower, &manifold{}))
}

func TestCollideBoxesClipsToSharedArea(t *testing.T) {
	brick := mgl32.Vec3{0.5, 0.25, 0.5}
	lower := box(mgl32.Vec3{0, 0.25, 0}, brick)
	upper := box(mgl32.Vec3{0.5, 0.74, 0}, brick)

	var m manifold
	require.True(t, collideBoxes(&upper, &lower, &m))
	require.Equal(t, 4, m.count)
	for i := 0; i < m.count; i++ {
		x := m.points[i].point.X()
		assert.GreaterOrEqual(t, x, float32(-1e-3))
		assert.LessOrEqual(t, x, float32(0.5+1e-3))
		assert.InDelta(t, 0.01, m.points[i].penetration, 1e-4)
	}
}

func TestCollideBoxesEdgeOnFace(t *testing.T) {
	unit := mgl32.Vec3{0.5, 0.5, 0.5}
	// resting on one edge, the lowest edge is 0.05 below the top face
	tilted := rigidBody{
		pos:         mgl32.Vec3{0, 0.5 + math32.Sqrt(2)*0.5 - 0.05, 0},
		rot:         mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{0, 0, 1}),
		halfExtents: unit,
	}
	ground := box(mgl32.Vec3{}, unit)

	var m manifold
	require.True(t, collideBoxes(&tilted, &ground, &m))
	assert.InDelta(t, 1.0, m.normal.Y(), 1e-4)
	require.Equal(t, 2, m.count)
	for i := 0; i < m.count; i++ {
		p := m.points[i]
		assert.InDelta(t, 0, p.point.X(), 1e-3)
		assert.InDelta(t, 0.5, math32.Abs(p.point.Z()), 1e-3)
		assert.InDelta(t, 0.05, p.penetration, 1e-3)
	}
}

func TestClipPolygon(t *testing.T) {
	square := []mgl32.Vec3{{1, 0, 1}, {-1, 0, 1}, {-1, 0, -1}, {1, 0, -1}}
	out := clipPolygon(square, mgl32.Vec3{1, 0, 0}, 0, nil)

	require.Len(t, out, 4)
	for _, p := range out {
		assert.LessOrEqual(t, p.X(), float32(1e-6))
	}
	assert.Empty(t, clipPolygon(square, mgl32.Vec3{1, 0, 0}, -2, nil))
}

func TestReduceContactsKeepsDeepestAndSpread(t *testing.T) {
	var pts []mgl32.Vec3
	var depth []float32
	for i := 0; i < 8; i++ {
		angle := float32(i) * math32.Pi / 4
		pts = append(pts, mgl32.Vec3{math32.Cos(angle), 0, math32.Sin(angle)})
		depth = append(depth, 0.01)
	}
	depth[3] = 0.05

	idx, n := reduceContacts(pts, depth, mgl32.Vec3{0, 1, 0})
	require.Equal(t, 4, n)
	assert.Equal(t, 3, idx[0])
	// the farthest point from the deepest one is diametrically opposite
	assert.Equal(t, 7, idx[1])
	seen := map[int]bool{}
	for _, i := range idx[:n] {
		seen[i] = true
	}
	assert.Len(t, seen, 4)
}

func TestColumnOfBricksStaysStanding(t *testing.T) {
	for _, height := range []int{3, 6} {
		s := newTestSimulation(t, WithWorkers(1))
		addFloor(s)
		var bricks []BodyHandle
		for k := 0; k < height; k++ {
			bricks = append(bricks, s.CreateBody(NewTransform(mgl32.Vec3{0, 0.25 + 0.5*float32(k), 0}),
				BodyKindDynamic, WithHalfExtents(mgl32.Vec3{0.5, 0.25, 0.5})))
		}

		stepN(s, 300)

		for k, h := range bricks {
			tr, err := s.Transform(h)
			require.NoError(t, err)
			start := mgl32.Vec3{0, 0.25 + 0.5*float32(k), 0}
			assert.Less(t, tr.Position.Sub(start).Len(), float32(0.01), "height %d brick %d", height, k)
			assert.InDelta(t, 1, math32.Abs(tr.Orientation.W), 1e-3, "height %d brick %d", height, k)
		}
	}
}

func TestStaggeredWallStaysStanding(t *testing.T) {
	s := newTestSimulation(t, WithWorkers(1))
	addFloor(s)
	type placed struct {
		h     BodyHandle
		start mgl32.Vec3
	}
	var bricks []placed
	for row := 0; row < 4; row++ {
		// shifted rows are one brick shorter so no brick overhangs the row below
		shift, cols := float32(0), 4
		if row%2 == 1 {
			shift, cols = 0.5, 3
		}
		for col := 0; col < cols; col++ {
			pos := mgl32.Vec3{float32(col) + shift, 0.25 + 0.5*float32(row), 0}
			h := s.CreateBody(NewTransform(pos), BodyKindDynamic, WithHalfExtents(mgl32.Vec3{0.5, 0.25, 0.5}))
			bricks = append(bricks, placed{h: h, start: pos})
		}
	}

	stepN(s, 300)

	for i, b := range bricks {
		tr, err := s.Transform(b.h)
		require.NoError(t, err)
		assert.Less(t, tr.Position.Sub(b.start).Len(), float32(0.05), "brick %d", i)
	}
}

func TestOverlapIsPushedOutWithoutLaunching(t *testing.T) {
	s := newTestSimulation(t, WithWorkers(1))
	addFloor(s)
	// sunk halfway into the floor
	h := s.CreateBody(NewTransform(mgl32.Vec3{0, 0, 0}), BodyKindDynamic,
		WithHalfExtents(mgl32.Vec3{0.5, 0.25, 0.5}))

	var highest float32
	for i := 0; i < 120; i++ {
		s.Step(testStep)
		tr, err := s.Transform(h)
		require.NoError(t, err)
		highest = max(highest, tr.Position.Y())
	}

	tr, err := s.Transform(h)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, tr.Position.Y(), 0.02)
	assert.Less(t, highest, float32(0.3))

	v, err := s.LinearVelocity(h)
	require.NoError(t, err)
	assert.Less(t, v.Len(), float32(0.1))
}

func TestRestingContactImpulseCarriesOver(t *testing.T) {
	s := newTestSimulation(t, WithWorkers(1))
	floor := addFloor(s)
	brick := s.CreateBody(NewTransform(mgl32.Vec3{0, 0.25, 0}), BodyKindDynamic,
		WithHalfExtents(mgl32.Vec3{0.5, 0.25, 0.5}))

	stepN(s, 60)

	sim := s.(*simulation)
	idx, ok := sim.previous[contactKey{a: floor, b: brick}]
	require.True(t, ok)
	m := sim.prevContacts[idx]
	require.Equal(t, 4, m.count)

	// the contact carries exactly the weight of the brick each step
	var total float32
	for i := 0; i < m.count; i++ {
		total += m.points[i].normalImpulse
	}
	assert.InDelta(t, StandardGravity*testStep.Seconds(), total, 0.01)
}

func TestGridPairsMatchBruteForce(t *testing.T) {
	for _, size := range []float32{DefaultCellSize, 0.75, -1} {
		s := newTestSimulation(t, WithWorkers(1), WithCellSize(size))
		addFloor(s)
		// a wall along Z puts every brick at the same X
		for y := 0; y < 6; y++ {
			for z := 0; z < 12; z++ {
				s.CreateBody(NewTransform(mgl32.Vec3{-10.25, 0.25 + 0.5*float32(y), float32(z) - 6}),
					BodyKindDynamic, WithHalfExtents(mgl32.Vec3{0.5, 0.25, 0.5}))
			}
		}
		// a few scattered cubes, one straddling cell borders
		s.CreateBody(NewTransform(mgl32.Vec3{3, 1, 3}), BodyKindDynamic)
		s.CreateBody(NewTransform(mgl32.Vec3{3.9, 1.9, 3.9}), BodyKindDynamic)
		s.CreateBody(NewTransform(mgl32.Vec3{-0.01, 0.5, 0.01}), BodyKindDynamic)

		sim := s.(*simulation)
		if size <= 0 {
			assert.Equal(t, DefaultCellSize, sim.cellSize)
		}
		sim.broadPhase()

		var want []bodyPair
		for i := range sim.slots {
			for j := i + 1; j < len(sim.slots); j++ {
				bi, bj := &sim.slots[i].body, &sim.slots[j].body
				if bi.invMass == 0 && bj.invMass == 0 {
					continue
				}
				if sim.bounds[i].overlaps(sim.bounds[j]) {
					want = append(want, bodyPair{a: uint32(i), b: uint32(j)})
				}
			}
		}
		assert.Equal(t, want, sim.pairs, "cell size %v", size)
		assert.Equal(t, []int{0}, sim.large, "cell size %v", size)
	}
}

func TestReleaseStopsWorkersAndKeepsStepping(t *testing.T) {
	s := NewSimulation(WithWorkers(4), WithParallelThreshold(0))
	addFloor(s)
	h := s.CreateBody(NewTransform(mgl32.Vec3{0, 2, 0}), BodyKindDynamic)

	s.Release()
	s.Release()

	stepN(s, 60)
	tr, err := s.Transform(h)
	require.NoError(t, err)
	assert.Less(t, tr.Position.Y(), float32(2))
}
