package loader

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadOBJ = `# unit quad
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1 2/2 3/3 4/4
f -4/-4 -2/-2 -1/-1
`

func TestOBJBackendTriangulatesAndDeduplicates(t *testing.T) {
	mesh, err := newOBJLoaderBackend().LoadMesh(strings.NewReader(quadOBJ))
	require.NoError(t, err)

	// quad fans into two triangles; the second face reuses existing corners
	assert.Len(t, mesh.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3, 0, 2, 3}, mesh.Indices)

	assert.Equal(t, [2]float32{0, 1}, mesh.Vertices[0].TexCoord)
	assert.Equal(t, [2]float32{1, 0}, mesh.Vertices[2].TexCoord)
	assert.Equal(t, [3]float32{1, 1, 1}, mesh.Vertices[0].Color)
}

func TestOBJBackendFaceFormats(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2//1 3//1\n"
	mesh, err := newOBJLoaderBackend().LoadMesh(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, mesh.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
}

func TestOBJBackendErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no faces", "v 0 0 0\n"},
		{"bad index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"bad number", "v 0 x 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newOBJLoaderBackend().LoadMesh(strings.NewReader(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestLoadMeshFromRootAndCache(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quad.obj"), []byte(quadOBJ), 0o644))

	l := NewLoader(BackendTypeOBJ, WithRoot(dir))
	mesh, err := l.LoadMesh("quad.obj")
	require.NoError(t, err)
	assert.Len(t, mesh.Vertices, 4)

	require.NoError(t, os.Remove(filepath.Join(dir, "quad.obj")))
	cached, err := l.LoadMesh("quad.obj")
	require.NoError(t, err)
	assert.Equal(t, mesh, cached)
}

func TestLoadMeshFailures(t *testing.T) {
	l := NewLoader(BackendTypeOBJ, WithRoot(t.TempDir()))

	_, err := l.LoadMesh("missing.obj")
	assert.Error(t, err)

	_, err = l.LoadMesh("model.fbx")
	assert.ErrorContains(t, err, "unsupported mesh format")
}

func TestLoadTexturePNG(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	img.Set(1, 2, color.NRGBA{R: 255, A: 255})
	f, err := os.Create(filepath.Join(dir, "tex.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	tex, err := NewLoader(BackendTypeOBJ, WithRoot(dir)).LoadTexture("tex.png")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), tex.Width)
	assert.Equal(t, uint32(3), tex.Height)
	require.Len(t, tex.Pixels, 2*3*4)

	o := (2*2 + 1) * 4
	assert.Equal(t, []byte{255, 0, 0, 255}, tex.Pixels[o:o+4])
}

func TestLoadTextureFailures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.png"), []byte("not an image"), 0o644))
	l := NewLoader(BackendTypeOBJ, WithRoot(dir))

	_, err := l.LoadTexture("junk.png")
	assert.Error(t, err)
	_, err = l.LoadTexture("absent.png")
	assert.Error(t, err)
}

func TestBuiltinAssets(t *testing.T) {
	l := NewLoader(BackendTypeOBJ)

	mesh, err := l.LoadMesh(BuiltinCube)
	require.NoError(t, err)
	assert.Len(t, mesh.Vertices, 24)
	assert.Len(t, mesh.Indices, 36)
	for _, v := range mesh.Vertices {
		for _, c := range v.Position {
			assert.InDelta(t, 1, abs(c), 1e-6)
		}
	}

	tex, err := l.LoadTexture(BuiltinChecker)
	require.NoError(t, err)
	assert.Equal(t, uint32(64), tex.Width)
	assert.Len(t, tex.Pixels, 64*64*4)
	assert.NotEqual(t, tex.Pixels[0], tex.Pixels[8*4])
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
