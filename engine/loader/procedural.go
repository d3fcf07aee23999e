package loader

import (
	"github.com/Carmen-Shannon/oxy-sandbox/common"
)

// CubeMesh returns a cube with extents ±1 on every axis. Each face has its own four vertices
// so texture coordinates cover the full texture per face.
//
// Returns:
//   - Mesh: 24 vertices and 36 indices, counter-clockwise front faces
func CubeMesh() Mesh {
	// outward normal, then the face's right and up axes
	faces := [6][3][3]float32{
		{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
		{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
		{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
		{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
		{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	mesh := Mesh{
		Vertices: make([]common.Vertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	for _, f := range faces {
		n, right, up := f[0], f[1], f[2]
		base := uint32(len(mesh.Vertices))
		for _, c := range corners {
			var p [3]float32
			for i := 0; i < 3; i++ {
				p[i] = n[i] + right[i]*c[0] + up[i]*c[1]
			}
			mesh.Vertices = append(mesh.Vertices, common.Vertex{
				Position: p,
				Color:    [3]float32{1, 1, 1},
				TexCoord: [2]float32{(c[0] + 1) / 2, 1 - (c[1]+1)/2},
			})
		}
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return mesh
}

// CheckerTexture generates a two-tone checkerboard in RGBA8.
//
// Parameters:
//   - size: width and height in pixels
//   - cells: number of cells along each edge
//
// Returns:
//   - common.TextureStagingData: the generated pixels
func CheckerTexture(size, cells int) common.TextureStagingData {
	if size <= 0 {
		size = 1
	}
	if cells <= 0 {
		cells = 1
	}
	cell := max(size/cells, 1)
	pix := make([]byte, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			shade := byte(200)
			if (x/cell+y/cell)%2 == 1 {
				shade = 90
			}
			o := (y*size + x) * 4
			pix[o], pix[o+1], pix[o+2], pix[o+3] = shade, shade, shade, 255
		}
	}
	return common.TextureStagingData{Pixels: pix, Width: uint32(size), Height: uint32(size)}
}
