package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlign(t *testing.T) {
	tests := []struct {
		n, alignment, want uint64
	}{
		{0, 256, 0},
		{1, 256, 256},
		{64, 256, 256},
		{256, 256, 256},
		{257, 256, 512},
		{80, 16, 80},
		{81, 16, 96},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Align(tt.n, tt.alignment), "Align(%d, %d)", tt.n, tt.alignment)
	}
}

func TestGrowCapacity(t *testing.T) {
	assert.Equal(t, uint64(1024), GrowCapacity(1024, 512, 256), "fits already")
	assert.Equal(t, uint64(256), GrowCapacity(0, 64, 256), "minimum applies")
	assert.Equal(t, uint64(2048), GrowCapacity(1024, 1025, 256))
	assert.Equal(t, uint64(4096), GrowCapacity(256, 4000, 256))
}

func TestEmptyProvider(t *testing.T) {
	p := NewBindGroupProvider("slot 0 camera")

	assert.Equal(t, "slot 0 camera", p.Label())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
	assert.Zero(t, p.Capacity(0))
	assert.Nil(t, p.TextureView(0))
	assert.Nil(t, p.Sampler(1))
	assert.Nil(t, p.VertexBuffer())
	assert.Zero(t, p.IndexCount())

	p.SetBuffer(0, nil, 512)
	assert.Equal(t, uint64(512), p.Capacity(0))

	p.SetGeometry(nil, nil, 36)
	assert.Equal(t, 36, p.IndexCount())

	assert.NotPanics(t, p.Release)
	assert.Zero(t, p.Capacity(0))
	assert.Zero(t, p.IndexCount())
	assert.NotPanics(t, p.Release)
}

func TestWithBufferOption(t *testing.T) {
	p := NewBindGroupProvider("opt", WithBuffer(2, nil, 128))
	assert.Equal(t, uint64(128), p.Capacity(2))
}
