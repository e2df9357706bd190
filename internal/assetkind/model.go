package assetkind

import "github.com/spaghettifunk/forge/internal/binarycodec"

// MeshRef, SkeletonRef and MaterialRef are the persisted cross-store
// references a Model carries (spec.md §9: "Store only IDs in persisted
// records; resolve lazily via the owning Package Store").
type MeshRef struct {
	ID ID
}
type SkeletonRef struct {
	ID ID
}
type MaterialRef struct {
	ID ID
}

type Model struct {
	Name      Name
	ID        ID
	Mesh      MeshRef
	Skeletons []SkeletonRef
	Materials []MaterialRef
}

func (m *Model) WriteTo(w *binarycodec.Writer) {
	w.WriteString(string(m.Name))
	w.WriteU64(uint64(m.ID))
	w.WriteU64(uint64(m.Mesh.ID))
	binarycodec.WriteSlice(w, m.Skeletons, func(w *binarycodec.Writer, s SkeletonRef) { w.WriteU64(uint64(s.ID)) })
	binarycodec.WriteSlice(w, m.Materials, func(w *binarycodec.Writer, mr MaterialRef) { w.WriteU64(uint64(mr.ID)) })
}

func (m *Model) ReadFrom(r *binarycodec.Reader) {
	m.Name = Name(r.ReadString())
	m.ID = ID(r.ReadU64())
	m.Mesh = MeshRef{ID: ID(r.ReadU64())}
	m.Skeletons = binarycodec.ReadSlice(r, func(r *binarycodec.Reader) SkeletonRef { return SkeletonRef{ID: ID(r.ReadU64())} })
	m.Materials = binarycodec.ReadSlice(r, func(r *binarycodec.Reader) MaterialRef { return MaterialRef{ID: ID(r.ReadU64())} })

	// spec.md §9 open question (ii): the original ModelInfo deserialisation
	// reads a skeleton count through the asset-ID read path (8 raw bytes
	// read and treated as a count). That looks like a latent bug in the
	// source and is intentionally NOT reproduced here -- Skeletons above is
	// read as an ordinary length-prefixed slice.
}

func (m *Model) AssetName() Name           { return m.Name }
func (m *Model) AssetID() ID                { return m.ID }
func (*Model) DefaultFileExtension() string { return "smo" }
func (*Model) CacheName() string            { return "models" }

// ModelTextureCache pre-materialises textures discovered while importing one
// scene so that identical source paths resolve to a single TextureAsset
// (spec.md §3 invariant 5, §4.7).
type ModelTextureCache struct {
	Textures      []*Texture
	TextureLookup map[string]int // source path -> index into Textures
}

func NewModelTextureCache() *ModelTextureCache {
	return &ModelTextureCache{TextureLookup: make(map[string]int)}
}

// Resolve returns the cached texture for path, loading it with load if it
// hasn't been seen yet in this scene import.
func (c *ModelTextureCache) Resolve(path string, load func(path string) (*Texture, error)) (*Texture, error) {
	if idx, ok := c.TextureLookup[path]; ok {
		return c.Textures[idx], nil
	}
	tex, err := load(path)
	if err != nil {
		return nil, err
	}
	c.TextureLookup[path] = len(c.Textures)
	c.Textures = append(c.Textures, tex)
	return tex, nil
}
