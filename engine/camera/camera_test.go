package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], eps, "component %d of %v", i, got)
	}
}

func TestControllerDefaultsLookDownNegativeZ(t *testing.T) {
	cc := NewCameraController()
	assertVec(t, mgl32.Vec3{0, 2, 3}, cc.Position())
	assertVec(t, mgl32.Vec3{0, 0, -1}, cc.Forward())
	assertVec(t, mgl32.Vec3{1, 0, 0}, cc.Right())
	assertVec(t, mgl32.Vec3{0, 2, 2}, cc.Target())
	assert.Equal(t, float32(-90), cc.Yaw())
}

func TestApplyMouseFirstSampleOnlyRecords(t *testing.T) {
	cc := NewCameraController()
	cc.ApplyMouse(100, 100)
	assert.Equal(t, float32(-90), cc.Yaw())
	assert.Equal(t, float32(0), cc.Pitch())

	cc.ApplyMouse(110, 100)
	assert.InDelta(t, -89, cc.Yaw(), eps)

	// moving the cursor up raises the pitch
	cc.ApplyMouse(110, 0)
	assert.InDelta(t, 10, cc.Pitch(), eps)
	assert.Greater(t, cc.Forward().Y(), float32(0))
}

func TestPitchIsClamped(t *testing.T) {
	cc := NewCameraController()
	cc.ApplyMouse(0, 0)
	cc.ApplyMouse(0, -100000)
	assert.Equal(t, float32(89), cc.Pitch())
	cc.ApplyMouse(0, 100000)
	assert.Equal(t, float32(-89), cc.Pitch())

	cc = NewCameraController(WithPitch(120))
	assert.Equal(t, float32(89), cc.Pitch())
}

func TestResetMouseAvoidsJump(t *testing.T) {
	cc := NewCameraController()
	cc.ApplyMouse(0, 0)
	cc.ResetMouse()
	cc.ApplyMouse(5000, 5000)
	assert.Equal(t, float32(-90), cc.Yaw())
	assert.Equal(t, float32(0), cc.Pitch())
}

func TestMoveAlongLocalAxes(t *testing.T) {
	cases := []struct {
		name string
		in   MoveInput
		want mgl32.Vec3
	}{
		{"forward", MoveInput{Forward: true}, mgl32.Vec3{0, 2, 1}},
		{"backward", MoveInput{Backward: true}, mgl32.Vec3{0, 2, 5}},
		{"left", MoveInput{Left: true}, mgl32.Vec3{-2, 2, 3}},
		{"right", MoveInput{Right: true}, mgl32.Vec3{2, 2, 3}},
		{"up", MoveInput{Up: true}, mgl32.Vec3{0, 4, 3}},
		{"down", MoveInput{Down: true}, mgl32.Vec3{0, 0, 3}},
		{"opposites cancel", MoveInput{Forward: true, Backward: true}, mgl32.Vec3{0, 2, 3}},
		{"none", MoveInput{}, mgl32.Vec3{0, 2, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cc := NewCameraController()
			cc.Move(tc.in, 0.5, 4)
			assertVec(t, tc.want, cc.Position())
		})
	}
}

func TestFovIsClamped(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, float32(60), c.Fov())

	c.AddFov(-100)
	assert.Equal(t, MinFov, c.Fov())
	c.SetFov(500)
	assert.Equal(t, MaxFov, c.Fov())

	assert.Equal(t, MaxFov, NewCamera(WithFov(1000)).Fov())
}

func TestViewProjectionCentersTarget(t *testing.T) {
	c := NewCamera(WithAspect(16.0 / 9.0))
	c.Controller().SetPosition(mgl32.Vec3{3, 1, -2})
	c.Update()

	vp := mgl32.Mat4(c.ViewProjectionMatrix())
	target := c.Target().Mul(1).Add(c.Forward().Mul(9))
	clip := vp.Mul4x1(target.Vec4(1))
	require.Greater(t, clip.W(), float32(0))
	assert.InDelta(t, 0, clip.X()/clip.W(), eps)
	assert.InDelta(t, 0, clip.Y()/clip.W(), eps)
	depth := clip.Z() / clip.W()
	assert.True(t, depth > 0 && depth < 1, "depth %v outside [0,1]", depth)
}

func TestSetAspectIgnoresNonPositive(t *testing.T) {
	c := NewCamera(WithAspect(2))
	c.SetAspect(0)
	c.SetAspect(-1)
	assert.Equal(t, float32(2), c.Aspect())
}

func TestSpawnPositionMatchesSpawnController(t *testing.T) {
	c := NewCamera()
	c.Controller().ApplyMouse(0, 0)
	c.Controller().ApplyMouse(237, -121)
	c.Update()

	var view scene.Viewpoint = c
	sc := scene.NewSpawnController()
	assertVec(t, c.SpawnPositionInFront(1, -1, -0.2), sc.SpawnPosition(view))

	// default view: target (0,2,2), one ahead, one to the right, slightly down
	fresh := NewCamera()
	assertVec(t, mgl32.Vec3{1, 1.8, 1}, fresh.SpawnPositionInFront(1, -1, -0.2))
}

func TestUniformMarshal(t *testing.T) {
	c := NewCamera()
	u := c.Uniform()
	assert.Equal(t, 80, u.Size())

	buf := u.Marshal()
	require.Len(t, buf, 80)
	assert.Equal(t, u.ViewProj[5], math.Float32frombits(binary.LittleEndian.Uint32(buf[20:])))
	assert.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(buf[68:])))

	reused := make([]byte, 0, 128)
	out := u.MarshalTo(reused)
	assert.Equal(t, buf, out)
	assert.Equal(t, &reused[:1][0], &out[0], "a large enough buffer is reused")
}
