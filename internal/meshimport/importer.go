package meshimport

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrImport            = errors.New("mesh import failed")
	ErrUnsupportedFormat = errors.New("unsupported mesh format")
	ErrEmptyScene        = errors.New("mesh file contains no faces")
)

// Importer turns a mesh file into flat triangle buffers. Implementations
// triangulate and honour the import-stage options (vertex merging, smooth
// normals, cache locality, winding flip). The remaining options are applied
// afterwards by PostProcess so they behave the same for every backend.
type Importer interface {
	Import(path string, opts Options) (*Mesh, error)
}

// ImporterFunc adapts a function to Importer.
type ImporterFunc func(path string, opts Options) (*Mesh, error)

func (f ImporterFunc) Import(path string, opts Options) (*Mesh, error) { return f(path, opts) }

// FileImporter picks a backend by file extension.
type FileImporter struct {
	backends map[string]Importer
}

// NewFileImporter returns an importer that understands Wavefront OBJ.
func NewFileImporter() *FileImporter {
	fi := &FileImporter{backends: make(map[string]Importer)}
	fi.Register(".obj", OBJ{})
	return fi
}

// Register installs imp for files ending in ext (case insensitive, leading dot).
func (fi *FileImporter) Register(ext string, imp Importer) {
	fi.backends[strings.ToLower(ext)] = imp
}

func (fi *FileImporter) Import(path string, opts Options) (*Mesh, error) {
	ext := strings.ToLower(filepath.Ext(path))
	imp, ok := fi.backends[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return imp.Import(path, opts)
}

// Load imports path and runs PostProcess. On import failure it returns an
// empty, non-nil mesh together with the error so callers can carry on with a
// degenerate object. A degenerate rescale is reported but the mesh is kept.
func Load(imp Importer, path string, opts Options) (*Mesh, error) {
	m, err := imp.Import(path, opts)
	if err != nil {
		if !errors.Is(err, ErrImport) {
			err = fmt.Errorf("%w: %s: %w", ErrImport, path, err)
		}
		return &Mesh{}, err
	}
	if m.Empty() {
		return &Mesh{}, fmt.Errorf("%w: %s: %w", ErrImport, path, ErrEmptyScene)
	}
	if err := m.Validate(); err != nil {
		return &Mesh{}, fmt.Errorf("%w: %s: %v", ErrImport, path, err)
	}
	if err := PostProcess(m, opts); err != nil {
		return m, fmt.Errorf("post-process %s: %w", path, err)
	}
	return m, nil
}
