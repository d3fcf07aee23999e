package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeTRS(t *testing.T) {
	pos := mgl32.Vec3{1, 2, 3}
	rot := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	scale := mgl32.Vec3{2, 1, 1}

	m := ComposeTRS(pos, rot, scale)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, m.Col(3).Vec3())

	// local +x is scaled by 2 then turned onto -z
	x := m.Mul4x1(mgl32.Vec4{1, 0, 0, 0}).Vec3()
	assert.InDelta(t, 0, x.X(), 1e-5)
	assert.InDelta(t, -2, x.Z(), 1e-5)

	zero := ComposeTRS(pos, mgl32.Quat{}, mgl32.Vec3{1, 1, 1})
	assert.True(t, zero.ApproxEqual(mgl32.Translate3D(1, 2, 3)))
}

func TestMul4MatchesMathgl(t *testing.T) {
	a := mgl32.Translate3D(1, 2, 3)
	b := mgl32.Scale3D(2, 3, 4)
	out := make([]float32, 16)
	Mul4(out, a[:], b[:])
	want := a.Mul4(b)
	assert.Equal(t, want[:], out)
}

func TestPerspectiveDepthRange(t *testing.T) {
	out := make([]float32, 16)
	for i := range out {
		out[i] = 7
	}
	Perspective(out, mgl32.DegToRad(90), 2, 0.1, 100)
	m := mgl32.Mat4(out)

	assert.InDelta(t, 0.5, m[0], 1e-5)
	assert.InDelta(t, 1, m[5], 1e-5)
	for _, i := range []int{1, 2, 3, 4, 6, 7, 8, 9, 12, 13, 15} {
		assert.Zero(t, m[i], "element %d", i)
	}

	near := m.Mul4x1(mgl32.Vec4{0, 0, -0.1, 1})
	far := m.Mul4x1(mgl32.Vec4{0, 0, -100, 1})
	assert.InDelta(t, 0, near.Z()/near.W(), 1e-5)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-4)
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	var m mgl32.Mat4
	LookAt(m[:], 0, 2, 3, 0, 2, 2, 0, 1, 0)
	eye := m.Mul4x1(mgl32.Vec4{0, 2, 3, 1})
	assert.InDelta(t, 0, eye.Vec3().Len(), 1e-5)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}

func TestDecodeTexture(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{B: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	tex, err := DecodeTexture(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), tex.Width)
	assert.Equal(t, uint32(1), tex.Height)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 255, 255}, tex.Pixels)

	_, err = DecodeTexture(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}
