package camera

import (
	"encoding/binary"
	"math"
)

// UniformSize is the byte size of the camera uniform block in the sandbox shader.
const UniformSize = 80

// GPUCameraUniform is the per-frame camera block bound at group 0.
// Layout: mat4x4<f32> view_proj at 0, vec3<f32> position at 64, padded to 80 bytes.
type GPUCameraUniform struct {
	ViewProj       [16]float32
	CameraPosition [3]float32
}

// Size returns the encoded size in bytes.
func (g *GPUCameraUniform) Size() int {
	return UniformSize
}

// Marshal encodes the uniform into a new buffer.
//
// Returns:
//   - []byte: UniformSize little-endian bytes
func (g *GPUCameraUniform) Marshal() []byte {
	return g.MarshalTo(nil)
}

// MarshalTo encodes the uniform into dst, growing it when it is too small, so a frame slot can
// reuse one buffer.
//
// Parameters:
//   - dst: the buffer to reuse, may be nil
//
// Returns:
//   - []byte: dst resliced to UniformSize with the encoded uniform
func (g *GPUCameraUniform) MarshalTo(dst []byte) []byte {
	if cap(dst) < UniformSize {
		dst = make([]byte, UniformSize)
	}
	dst = dst[:UniformSize]
	for i, f := range g.ViewProj {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
	for i, f := range g.CameraPosition {
		binary.LittleEndian.PutUint32(dst[64+i*4:], math.Float32bits(f))
	}
	clear(dst[76:])
	return dst
}
