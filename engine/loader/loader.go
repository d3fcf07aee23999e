package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/charmbracelet/log"

	// extra texture formats beyond the png/jpeg decoders registered by common
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// BuiltinCube names the procedural unit cube mesh (extents ±1).
	BuiltinCube = "builtin:cube"

	// BuiltinChecker names the procedural checker texture.
	BuiltinChecker = "builtin:checker"
)

// LoaderBackendType identifies the mesh file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeOBJ selects the Wavefront OBJ loader backend.
	BackendTypeOBJ LoaderBackendType = iota
)

// Mesh is CPU-side indexed triangle geometry.
type Mesh struct {
	Vertices []common.Vertex
	Indices  []uint32
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	root    string
	backend loaderBackend
	logger  *log.Logger

	meshCache    map[string]Mesh
	textureCache map[string]common.TextureStagingData
}

// Loader defines the public-facing interface for loading and caching meshes and textures.
// Paths are resolved against the loader's root directory unless absolute.
// The BuiltinCube and BuiltinChecker names resolve to procedural assets without touching disk.
type Loader interface {
	// LoadMesh imports a mesh file and caches the result.
	// If the mesh is already cached (by path), the cached version is returned.
	// The backend is selected based on the file extension (.obj → OBJ backend).
	//
	// Parameters:
	//   - path: the file path to the mesh file, or BuiltinCube
	//
	// Returns:
	//   - Mesh: the loaded mesh
	//   - error: error if loading fails
	LoadMesh(path string) (Mesh, error)

	// LoadTexture decodes an image file to RGBA8 pixels and caches the result.
	//
	// Parameters:
	//   - path: the file path to the image, or BuiltinChecker
	//
	// Returns:
	//   - common.TextureStagingData: the decoded pixels
	//   - error: error if loading or decoding fails
	LoadTexture(path string) (common.TextureStagingData, error)
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeOBJ)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		meshCache:    make(map[string]Mesh),
		textureCache: make(map[string]common.TextureStagingData),
		logger:       log.WithPrefix("loader"),
	}

	switch backendType {
	case BackendTypeOBJ:
		l.backend = newOBJLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) LoadMesh(path string) (Mesh, error) {
	l.mu.RLock()
	if cached, ok := l.meshCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	var mesh Mesh
	if path == BuiltinCube {
		mesh = CubeMesh()
	} else {
		backend, err := l.resolveBackend(path)
		if err != nil {
			return Mesh{}, err
		}

		f, err := os.Open(l.resolvePath(path))
		if err != nil {
			return Mesh{}, fmt.Errorf("failed to open mesh %s: %w", path, err)
		}
		defer f.Close()

		mesh, err = backend.LoadMesh(f)
		if err != nil {
			return Mesh{}, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	l.logger.Debug("mesh loaded", "path", path, "vertices", len(mesh.Vertices), "indices", len(mesh.Indices))

	l.mu.Lock()
	l.meshCache[path] = mesh
	l.mu.Unlock()

	return mesh, nil
}

func (l *loader) LoadTexture(path string) (common.TextureStagingData, error) {
	l.mu.RLock()
	if cached, ok := l.textureCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	var tex common.TextureStagingData
	if path == BuiltinChecker {
		tex = CheckerTexture(64, 8)
	} else {
		f, err := os.Open(l.resolvePath(path))
		if err != nil {
			return common.TextureStagingData{}, fmt.Errorf("failed to open texture file %s: %w", path, err)
		}
		defer f.Close()

		tex, err = common.DecodeTexture(f)
		if err != nil {
			return common.TextureStagingData{}, fmt.Errorf("failed to decode texture file %s: %w", path, err)
		}
	}

	l.logger.Debug("texture loaded", "path", path, "width", tex.Width, "height", tex.Height)

	l.mu.Lock()
	l.textureCache[path] = tex
	l.mu.Unlock()

	return tex, nil
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only OBJ is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".obj":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

func (l *loader) resolvePath(path string) string {
	if l.root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.root, path)
}
