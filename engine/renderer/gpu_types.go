package renderer

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
)

const (
	// VertexStride is the size of one packed common.Vertex: position, color, texcoord.
	VertexStride = 32

	// ModelUniformSize is the size of one model matrix uniform.
	ModelUniformSize = 64

	// UniformOffsetAlignment is the dynamic uniform offset alignment guaranteed by WebGPU.
	UniformOffsetAlignment = 256
)

// MarshalVertices packs vertices into the layout the sandbox pipeline reads.
//
// Parameters:
//   - vertices: the vertices to pack
//
// Returns:
//   - []byte: len(vertices) * VertexStride little-endian bytes
func MarshalVertices(vertices []common.Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexStride)
	for i, v := range vertices {
		o := i * VertexStride
		putFloats(buf[o:], v.Position[:]...)
		putFloats(buf[o+12:], v.Color[:]...)
		putFloats(buf[o+24:], v.TexCoord[:]...)
	}
	return buf
}

// MarshalIndices packs uint32 indices.
//
// Parameters:
//   - indices: the indices to pack
//
// Returns:
//   - []byte: len(indices) * 4 little-endian bytes
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// marshalModels packs one model matrix per draw at UniformOffsetAlignment stride, reusing dst.
func marshalModels(dst []byte, draws []DrawCommand) []byte {
	need := len(draws) * UniformOffsetAlignment
	if cap(dst) < need {
		dst = make([]byte, need)
	}
	dst = dst[:need]
	for i, d := range draws {
		m := d.Model
		putFloats(dst[i*UniformOffsetAlignment:], m[:]...)
	}
	return dst
}

func putFloats(dst []byte, values ...float32) {
	for i, f := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}

// modelOffset returns the dynamic offset of draw i in the model uniform buffer.
func modelOffset(i int) uint32 {
	return uint32(i * UniformOffsetAlignment)
}
