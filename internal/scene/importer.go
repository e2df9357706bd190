package scene

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/forge/internal/corelog"
	"github.com/spaghettifunk/forge/internal/pathutil"
)

// ErrUnsupportedFlavour is returned by Loader.Load for a detected flavour
// with no registered Importer (spec.md §1: FBX is named but a real FBX SDK
// binding is out of scope).
var ErrUnsupportedFlavour = fmt.Errorf("%w: unsupported scene flavour", corelog.ErrDecode)

// Importer is the narrow reader interface spec.md §1 and §4.5 describe:
// external collaborators specified only at their interface, one concrete
// adapter per supported file flavour.
type Importer interface {
	Import(path pathutil.Path) (*Graph, error)
}

// DetectFlavour infers the scene flavour from a file extension.
func DetectFlavour(path pathutil.Path) Flavour {
	switch strings.ToLower(path.Ext()) {
	case ".obj":
		return FlavourOBJ
	case ".fbx":
		return FlavourFBX
	case ".gltf", ".glb":
		return FlavourGLTF
	default:
		return FlavourUnknown
	}
}

// Loader caches the most recently loaded scene keyed by path (spec.md §4.5:
// "caches the most recently loaded scene keyed by path") and exposes the
// detected flavour for callers needing to branch (Material Pipeline's
// glTF-vs-other uniform seeding rule, §4.6 step 4).
type Loader struct {
	importers map[Flavour]Importer

	lastPath    pathutil.Path
	lastGraph   *Graph
	lastFlavour Flavour
}

// NewLoader wires the default importer set: OBJ (fully implemented) and
// glTF (minimal JSON). FBX is deliberately left unregistered.
func NewLoader() *Loader {
	return &Loader{
		importers: map[Flavour]Importer{
			FlavourOBJ:  &ObjImporter{},
			FlavourGLTF: &GLTFImporter{},
		},
	}
}

// Register overrides or adds an importer for a flavour, mainly for tests.
func (l *Loader) Register(f Flavour, imp Importer) { l.importers[f] = imp }

// Load returns the cached Graph for path if it was the last one loaded,
// otherwise imports it fresh and updates the cache.
func (l *Loader) Load(path pathutil.Path) (*Graph, Flavour, error) {
	if l.lastGraph != nil && l.lastPath == path {
		return l.lastGraph, l.lastFlavour, nil
	}

	flavour := DetectFlavour(path)
	imp, ok := l.importers[flavour]
	if !ok {
		return nil, flavour, ErrUnsupportedFlavour
	}
	graph, err := imp.Import(path)
	if err != nil {
		return nil, flavour, err
	}
	graph.Flavour = flavour

	l.lastPath = path
	l.lastGraph = graph
	l.lastFlavour = flavour
	return graph, flavour, nil
}
