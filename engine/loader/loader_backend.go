package loader

import (
	"io"
)

// loaderBackend defines the generic interface for decoding meshes from streams.
// Concrete implementations (e.g., objLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// LoadMesh decodes a mesh from the reader.
	//
	// Parameters:
	//   - r: the reader providing mesh data
	//
	// Returns:
	//   - Mesh: the decoded indexed mesh
	//   - error: error if decoding fails
	LoadMesh(r io.Reader) (Mesh, error)
}
