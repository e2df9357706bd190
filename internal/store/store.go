// Package store implements the generic, persistent Package Store described
// in spec.md §4.1: a key→blob map per asset kind, with registration,
// deduplication by ID, cache file I/O, deletion and existence checks.
package store

import (
	"fmt"
	"os"

	"github.com/spaghettifunk/forge/internal/assetkind"
	"github.com/spaghettifunk/forge/internal/binarycodec"
	"github.com/spaghettifunk/forge/internal/corelog"
	"github.com/spaghettifunk/forge/internal/pathutil"
)

// PackageableAsset is the capability spec.md §9 asks every asset kind to
// provide so the Package Store can be a single generic type instead of a
// pipeline-base-class hierarchy.
type PackageableAsset interface {
	binarycodec.Serializable
	AssetName() assetkind.Name
	AssetID() assetkind.ID
	DefaultFileExtension() string
	CacheName() string
}

// PackagePtr is the persisted cache entry for one asset (spec.md §3).
type PackagePtr struct {
	AssetOrigin string
	Filepath    string
}

func (p *PackagePtr) WriteTo(w *binarycodec.Writer) {
	w.WriteString(p.AssetOrigin)
	w.WriteString(p.Filepath)
}

func (p *PackagePtr) ReadFrom(r *binarycodec.Reader) {
	p.AssetOrigin = r.ReadString()
	p.Filepath = r.ReadString()
}

const maxSuffixAttempts = 255

// Store is a generic Package Store parameterised on the asset kind T
// (spec.md §9 redesign note: "a generic PackageStore<Kind>").
type Store[T PackageableAsset] struct {
	assets map[assetkind.ID]*PackagePtr

	outputRoot  pathutil.Path
	packageDir  string
	cacheName   string
	extension   string
	compression binarycodec.CompressionLevel

	// newEmpty constructs a zero-value T (e.g. &Texture{}) so ReadFrom has
	// something to decode into.
	newEmpty func() T
	// defaultAssets returns the built-in assets PackageDefaultAssets should
	// idempotently (re-)insert, e.g. the default magenta texture.
	defaultAssets func() []T
}

// New creates a Package Store rooted at outputRoot, with packages written
// under outputRoot/packageDir and the cache at outputRoot/<cacheName>.cache.
func New[T PackageableAsset](outputRoot pathutil.Path, packageDir string, cacheName string, extension string, newEmpty func() T, defaultAssets func() []T) *Store[T] {
	return &Store[T]{
		assets:        make(map[assetkind.ID]*PackagePtr),
		outputRoot:    outputRoot,
		packageDir:    packageDir,
		cacheName:     cacheName,
		extension:     extension,
		compression:   binarycodec.CompressionNone,
		newEmpty:      newEmpty,
		defaultAssets: defaultAssets,
	}
}

func (s *Store[T]) SetCompression(level binarycodec.CompressionLevel) { s.compression = level }

func (s *Store[T]) cachePath() pathutil.Path {
	return s.outputRoot.Join(s.cacheName + ".cache")
}

func (s *Store[T]) packageDirPath() pathutil.Path {
	return s.outputRoot.Join(s.packageDir)
}

// Initialize reads the cache file, rebuilds the in-memory map, evicts
// entries whose blob is missing, then (re-)inserts default assets
// (spec.md §4.1 "Initialize").
func (s *Store[T]) Initialize() error {
	s.assets = make(map[assetkind.ID]*PackagePtr)

	raw, err := os.ReadFile(s.cachePath().String())
	if err == nil {
		decoded, derr := binarycodec.DecodeFile(raw)
		if derr != nil {
			corelog.LogWarn("store(%s): failed to decode cache, starting empty: %v", s.cacheName, derr)
		} else {
			r := binarycodec.NewReader(decoded)
			s.assets = binarycodec.ReadMap(r,
				func(r *binarycodec.Reader) assetkind.ID { return assetkind.ID(r.ReadU64()) },
				func(r *binarycodec.Reader) *PackagePtr {
					p := &PackagePtr{}
					p.ReadFrom(r)
					return p
				})
		}
	} else if !os.IsNotExist(err) {
		corelog.LogWarn("store(%s): failed to read cache: %v", s.cacheName, err)
	}

	s.RefreshCache()
	return s.packageDefaultAssets()
}

// packageDefaultAssets idempotently inserts the built-in assets for this
// kind (spec.md §4.1, §4.3, §4.4).
func (s *Store[T]) packageDefaultAssets() error {
	if s.defaultAssets == nil {
		return nil
	}
	for _, def := range s.defaultAssets() {
		if s.AssetExistsByName(def.AssetName()) {
			continue
		}
		if _, _, ok := s.registerAndWrite(assetkind.OriginUser, def, true); !ok {
			corelog.LogError("store(%s): failed to insert default asset %q", s.cacheName, def.AssetName())
		}
	}
	return nil
}

// RegisterAsset computes id = hash(name) and reserves a PackagePtr for it,
// resolving collisions per spec.md §4.1.
func (s *Store[T]) RegisterAsset(assetOrigin string, name assetkind.Name, allowSuffix bool) (packagePath string, id assetkind.ID, ok bool) {
	finalName := name
	candidateID := assetkind.HashName(finalName)

	if existing, exists := s.assets[candidateID]; exists {
		if existing.AssetOrigin == assetOrigin && assetOrigin != assetkind.OriginUser {
			return existing.Filepath, candidateID, true
		}
		if !allowSuffix {
			corelog.LogError("store(%s): collision registering %q, no suffixing allowed", s.cacheName, name)
			return "", 0, false
		}
		found := false
		for suffix := 1; suffix <= maxSuffixAttempts; suffix++ {
			candidate := assetkind.Name(fmt.Sprintf("%s%d", name, suffix))
			cid := assetkind.HashName(candidate)
			if _, taken := s.assets[cid]; !taken {
				finalName = candidate
				candidateID = cid
				found = true
				break
			}
		}
		if !found {
			corelog.LogError("store(%s): could not find free id for %q within %d suffix attempts", s.cacheName, name, maxSuffixAttempts)
			return "", 0, false
		}
	}

	if err := s.packageDirPath().EnsureDir(); err != nil {
		corelog.LogWarn("store(%s): failed to create package dir: %v", s.cacheName, err)
		return "", 0, false
	}

	ptr := &PackagePtr{
		AssetOrigin: assetOrigin,
		Filepath:    fmt.Sprintf("%s/%s.%s", s.packageDir, finalName, s.extension),
	}
	s.assets[candidateID] = ptr
	s.persist()
	if err := s.packageDefaultAssets(); err != nil {
		corelog.LogWarn("store(%s): default-asset repackage failed: %v", s.cacheName, err)
	}
	return ptr.Filepath, candidateID, true
}

// registerAndWrite registers and immediately serialises asset to its blob
// path. Used for default-asset insertion and by pipelines packaging real
// content in one call.
func (s *Store[T]) registerAndWrite(assetOrigin string, asset T, allowSuffix bool) (string, assetkind.ID, bool) {
	path, id, ok := s.RegisterAsset(assetOrigin, asset.AssetName(), allowSuffix)
	if !ok {
		return "", 0, false
	}
	if err := s.writeBlob(path, asset); err != nil {
		corelog.LogWarn("store(%s): failed to write blob for %q: %v", s.cacheName, asset.AssetName(), err)
		return "", 0, false
	}
	return path, id, true
}

// Package registers asset (if not already registered under this origin)
// and writes its blob, returning the final id.
func (s *Store[T]) Package(assetOrigin string, asset T) (assetkind.ID, bool) {
	_, id, ok := s.registerAndWrite(assetOrigin, asset, true)
	return id, ok
}

func (s *Store[T]) writeBlob(relativePath string, asset T) error {
	w := binarycodec.NewWriter()
	asset.WriteTo(w)
	encoded, err := binarycodec.EncodeFile(w.Bytes(), s.compression)
	if err != nil {
		return err
	}
	return os.WriteFile(s.outputRoot.Join(relativePath).String(), encoded, 0o644)
}

// resolveID looks up an ID either directly or by hashing a display name.
func (s *Store[T]) resolveID(idOrName any) (assetkind.ID, bool) {
	switch v := idOrName.(type) {
	case assetkind.ID:
		_, ok := s.assets[v]
		return v, ok
	case string:
		id := assetkind.HashName(assetkind.Name(v))
		_, ok := s.assets[id]
		return id, ok
	case assetkind.Name:
		id := assetkind.HashName(v)
		_, ok := s.assets[id]
		return id, ok
	default:
		return 0, false
	}
}

// LoadAssetFromPackage loads and decodes the asset identified by id or name.
func (s *Store[T]) LoadAssetFromPackage(idOrName any) (T, bool) {
	var zero T
	id, ok := s.resolveID(idOrName)
	if !ok {
		return zero, false
	}
	ptr := s.assets[id]
	raw, err := os.ReadFile(s.outputRoot.Join(ptr.Filepath).String())
	if err != nil {
		corelog.LogWarn("store(%s): failed to read blob %s: %v", s.cacheName, ptr.Filepath, err)
		return zero, false
	}
	decoded, err := binarycodec.DecodeFile(raw)
	if err != nil {
		corelog.LogWarn("store(%s): failed to decode blob %s: %v", s.cacheName, ptr.Filepath, err)
		return zero, false
	}
	out := s.newEmpty()
	out.ReadFrom(binarycodec.NewReader(decoded))
	return out, true
}

// AssetExists reports whether id or name is a live entry.
func (s *Store[T]) AssetExists(idOrName any) bool {
	_, ok := s.resolveID(idOrName)
	return ok
}

// AssetExistsByName is a typed convenience wrapper over AssetExists.
func (s *Store[T]) AssetExistsByName(name assetkind.Name) bool {
	return s.AssetExists(name)
}

// DeleteAsset deletes the blob then the entry, persisting the cache.
func (s *Store[T]) DeleteAsset(idOrName any) bool {
	id, ok := s.resolveID(idOrName)
	if !ok {
		return false
	}
	ptr := s.assets[id]
	if err := os.Remove(s.outputRoot.Join(ptr.Filepath).String()); err != nil && !os.IsNotExist(err) {
		corelog.LogWarn("store(%s): failed to delete blob %s: %v", s.cacheName, ptr.Filepath, err)
	}
	delete(s.assets, id)
	s.persist()
	return true
}

// RefreshCache drops entries whose blob file is absent and persists.
func (s *Store[T]) RefreshCache() {
	for id, ptr := range s.assets {
		if !s.outputRoot.Join(ptr.Filepath).Exists() {
			delete(s.assets, id)
		}
	}
	s.persist()
}

// ExportCache writes the map under the same length-prefixed dictionary
// format used by any map-of-T payload (spec.md §4.1 "ExportCache").
func (s *Store[T]) ExportCache() error { return s.persistErr() }

func (s *Store[T]) persist() {
	if err := s.persistErr(); err != nil {
		corelog.LogWarn("store(%s): failed to persist cache: %v", s.cacheName, err)
	}
}

func (s *Store[T]) persistErr() error {
	if err := s.outputRoot.EnsureDir(); err != nil {
		return err
	}
	w := binarycodec.NewWriter()
	binarycodec.WriteMap(w, s.assets,
		func(w *binarycodec.Writer, id assetkind.ID) { w.WriteU64(uint64(id)) },
		func(w *binarycodec.Writer, p *PackagePtr) { p.WriteTo(w) })
	encoded, err := binarycodec.EncodeFile(w.Bytes(), binarycodec.CompressionNone)
	if err != nil {
		return err
	}
	return os.WriteFile(s.cachePath().String(), encoded, 0o644)
}

// SetOutputLocation reconfigures the output root and reinitialises.
func (s *Store[T]) SetOutputLocation(root pathutil.Path) error {
	s.outputRoot = root
	return s.Initialize()
}

// SetPackageOutputLocation reconfigures the package sub-directory.
func (s *Store[T]) SetPackageOutputLocation(dir string) {
	s.packageDir = dir
}

// Count returns the number of live entries, mainly for tests/diagnostics.
func (s *Store[T]) Count() int { return len(s.assets) }

// ClearOutput implements the per-kind half of `--clear_output` (spec.md
// §4.8): remove every file under this kind's package directory, delete its
// cache file, then re-initialise so defaults are repackaged.
func (s *Store[T]) ClearOutput() error {
	entries, err := os.ReadDir(s.packageDirPath().String())
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if rmErr := os.Remove(s.packageDirPath().Join(e.Name()).String()); rmErr != nil {
				corelog.LogWarn("store(%s): failed to remove %q: %v", s.cacheName, e.Name(), rmErr)
			}
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if rmErr := os.Remove(s.cachePath().String()); rmErr != nil && !os.IsNotExist(rmErr) {
		corelog.LogWarn("store(%s): failed to remove cache file: %v", s.cacheName, rmErr)
	}
	return s.Initialize()
}
