package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
)

type objLoaderBackend struct{}

var _ loaderBackend = &objLoaderBackend{}

func newOBJLoaderBackend() loaderBackend {
	return &objLoaderBackend{}
}

type objVertexKey struct {
	pos [3]float32
	uv  [2]float32
}

// LoadMesh reads positions (v), texture coordinates (vt) and faces (f) from a Wavefront OBJ
// stream. Polygons are fan-triangulated. Vertices are de-duplicated by position and texcoord.
func (b *objLoaderBackend) LoadMesh(r io.Reader) (Mesh, error) {
	var (
		positions [][3]float32
		texCoords [][2]float32
		mesh      Mesh
		lookup    = make(map[objVertexKey]uint32)
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return Mesh{}, fmt.Errorf("line %d: %w", lineNo, err)
			}
			positions = append(positions, [3]float32{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return Mesh{}, fmt.Errorf("line %d: %w", lineNo, err)
			}
			texCoords = append(texCoords, [2]float32{v[0], 1 - v[1]})
		case "f":
			if len(fields) < 4 {
				return Mesh{}, fmt.Errorf("line %d: face needs at least 3 vertices", lineNo)
			}
			corners := make([]uint32, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				key, err := resolveFaceRef(ref, positions, texCoords)
				if err != nil {
					return Mesh{}, fmt.Errorf("line %d: %w", lineNo, err)
				}
				idx, ok := lookup[key]
				if !ok {
					idx = uint32(len(mesh.Vertices))
					lookup[key] = idx
					mesh.Vertices = append(mesh.Vertices, common.Vertex{
						Position: key.pos,
						Color:    [3]float32{1, 1, 1},
						TexCoord: key.uv,
					})
				}
				corners = append(corners, idx)
			}
			for i := 1; i+1 < len(corners); i++ {
				mesh.Indices = append(mesh.Indices, corners[0], corners[i], corners[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Mesh{}, fmt.Errorf("failed to read obj: %w", err)
	}
	if len(mesh.Indices) == 0 {
		return Mesh{}, fmt.Errorf("obj contains no faces")
	}
	return mesh, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d components, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", fields[i], err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// resolveFaceRef parses a v, v/vt, v//vn, or v/vt/vn reference. Negative indices count back
// from the most recent element.
func resolveFaceRef(ref string, positions [][3]float32, texCoords [][2]float32) (objVertexKey, error) {
	parts := strings.Split(ref, "/")

	pi, err := resolveIndex(parts[0], len(positions))
	if err != nil {
		return objVertexKey{}, fmt.Errorf("position %q: %w", ref, err)
	}
	key := objVertexKey{pos: positions[pi]}

	if len(parts) > 1 && parts[1] != "" {
		ti, err := resolveIndex(parts[1], len(texCoords))
		if err != nil {
			return objVertexKey{}, fmt.Errorf("texcoord %q: %w", ref, err)
		}
		key.uv = texCoords[ti]
	}
	return key, nil
}

func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += count
	default:
		return 0, fmt.Errorf("index 0 is not valid")
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("index out of range (%d elements)", count)
	}
	return i, nil
}
