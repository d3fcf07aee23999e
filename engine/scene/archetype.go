package scene

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/loader"
)

// ErrUnknownArchetype is returned when spawning a key that was never defined.
var ErrUnknownArchetype = errors.New("scene: unknown archetype")

// ArchetypeDef describes a kind of spawnable object: which mesh and texture it draws with
// and how its collider relates to its scale.
type ArchetypeDef struct {
	// Key is the unique name objects reference the archetype by.
	Key string
	// MeshPath is the mesh file. Empty selects loader.BuiltinCube.
	MeshPath string
	// TexturePath is the texture file. Empty selects loader.BuiltinChecker.
	TexturePath string
	// HalfExtentFactor scales an object's scale into its box collider half extents.
	// Zero is treated as 1, which fits meshes authored with ±1 extents.
	HalfExtentFactor float32
}

// Archetype is a loaded archetype: its ranges within the shared geometry buffers,
// its texture slot, and the number of objects spawned from it in this registry.
type Archetype struct {
	Key              string
	VertexOffset     uint32
	IndexOffset      uint32
	IndexCount       uint32
	TextureSlot      int
	InstanceCount    int
	HalfExtentFactor float32
}

// Geometry is a snapshot of the registry's shared vertex and index buffers.
// Version increases every time an archetype appends to the buffers.
type Geometry struct {
	Vertices []common.Vertex
	Indices  []uint32
	Version  uint64
}

// AssetSource loads meshes and textures by path. loader.Loader satisfies it.
type AssetSource interface {
	LoadMesh(path string) (loader.Mesh, error)
	LoadTexture(path string) (common.TextureStagingData, error)
}

// TextureSink receives decoded textures and returns the slot they are bound at.
// The renderer satisfies it.
type TextureSink interface {
	UploadTexture(data common.TextureStagingData) (int, error)
}

type archetypeEntry struct {
	def    ArchetypeDef
	loaded bool
	arch   Archetype
}

func (d ArchetypeDef) withDefaults() ArchetypeDef {
	d.MeshPath = common.Coalesce(d.MeshPath, loader.BuiltinCube)
	d.TexturePath = common.Coalesce(d.TexturePath, loader.BuiltinChecker)
	if d.HalfExtentFactor <= 0 {
		d.HalfExtentFactor = 1
	}
	return d
}
