// Package modelpipeline implements the Model Pipeline of spec.md §4.7, the
// top-level orchestrator tying the Scene Loader, Mesh/Skeleton/Animation
// Pipelines, Material Pipeline and Texture Pipeline together into one
// persisted Model asset per sub-model.
package modelpipeline

import (
	"fmt"

	"github.com/spaghettifunk/forge/internal/assetkind"
	"github.com/spaghettifunk/forge/internal/buildctx"
	"github.com/spaghettifunk/forge/internal/corelog"
	"github.com/spaghettifunk/forge/internal/materialpipeline"
	"github.com/spaghettifunk/forge/internal/pathutil"
	"github.com/spaghettifunk/forge/internal/scene"
	"github.com/spaghettifunk/forge/internal/scenepipeline"
	"github.com/spaghettifunk/forge/internal/store"
	"github.com/spaghettifunk/forge/internal/texturepipeline"
)

// SubModelInfo is one entry GetModelInfo reports: a candidate sub-model name
// and whether the caller currently wants it built (spec.md §4.7: "a set of
// per-model 'load' booleans for the caller to toggle").
type SubModelInfo struct {
	Name string
	Load bool
}

// ModelInfo is GetModelInfo's result.
type ModelInfo struct {
	Path       pathutil.Path
	SubModels  []SubModelInfo
	SingleModel bool
}

// ModelAsset is the in-memory result of Create, not yet packaged: one mesh,
// its skeleton (if any), and the subset of scene materials its sub-meshes
// actually reference.
type ModelAsset struct {
	Name      string
	Mesh      *assetkind.Mesh
	Skeleton  *assetkind.Skeleton
	Materials []*assetkind.Material
}

// Pipeline owns the Model package store.
type Pipeline struct {
	ctx   *buildctx.Context
	store *store.Store[*assetkind.Model]
}

func New(ctx *buildctx.Context) (*Pipeline, error) {
	s := store.New[*assetkind.Model](
		ctx.OutputRoot, ctx.KindDir("models"), "models", "smo",
		func() *assetkind.Model { return &assetkind.Model{} },
		func() []*assetkind.Model { return []*assetkind.Model{} },
	)
	s.SetCompression(ctx.Compression)
	p := &Pipeline{ctx: ctx, store: s}
	if err := s.Initialize(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) Store() *store.Store[*assetkind.Model] { return p.store }

// GetModelInfo resolves and canonicalises file, loads the scene through
// loader, and enumerates its sub-models (spec.md §4.7).
func GetModelInfo(loader *scene.Loader, file pathutil.Path, singleModel bool) (*ModelInfo, error) {
	canonical := pathutil.Normalize(file.String())
	graph, _, err := loader.Load(canonical)
	if err != nil {
		return nil, err
	}
	groups := scenepipeline.CollectMeshGroups(graph, canonical.Stem(), singleModel)
	info := &ModelInfo{Path: canonical, SingleModel: singleModel}
	for _, g := range groups {
		info.SubModels = append(info.SubModels, SubModelInfo{Name: g.Name, Load: true})
	}
	return info, nil
}

// Create validates that path matches info, then runs the Mesh/Skeleton
// Pipelines, the Material Pipeline and the texture-cache prepass, producing
// one ModelAsset per enabled sub-model (spec.md §4.7).
func Create(info *ModelInfo, path pathutil.Path, loader *scene.Loader, materialPipe *materialpipeline.Pipeline, vertexShaderName, pixelShaderName assetkind.Name) ([]*ModelAsset, *assetkind.ModelTextureCache, error) {
	canonical := pathutil.Normalize(path.String())
	if canonical != info.Path {
		return nil, nil, fmt.Errorf("%w: path %q does not match resolved ModelInfo path %q", corelog.ErrInvalidCommand, canonical, info.Path)
	}

	graph, _, err := loader.Load(canonical)
	if err != nil {
		return nil, nil, err
	}

	groups := scenepipeline.CollectMeshGroups(graph, canonical.Stem(), info.SingleModel)
	meshes, err := scenepipeline.BuildMeshes(graph, canonical.Stem(), info.SingleModel)
	if err != nil {
		return nil, nil, err
	}
	skeletons := scenepipeline.BuildSkeletonsForGraph(graph, groups)

	texCache := assetkind.NewModelTextureCache()
	allMaterials, err := materialPipe.CreateMaterials(graph.Materials, canonical.Dir(), vertexShaderName, pixelShaderName, texCache)
	if err != nil {
		return nil, nil, err
	}

	enabled := make(map[string]bool, len(info.SubModels))
	for _, sm := range info.SubModels {
		enabled[sm.Name] = sm.Load
	}

	var out []*ModelAsset
	for i, g := range groups {
		if !enabled[g.Name] {
			continue
		}
		mesh := meshes[i]
		subset := materialSubset(mesh, allMaterials)
		out = append(out, &ModelAsset{
			Name:      g.Name,
			Mesh:      mesh,
			Skeleton:  skeletons[i],
			Materials: subset,
		})
	}
	return out, texCache, nil
}

// materialSubset discovers which scene materials a mesh's sub-meshes
// actually reference by walking their material_index (spec.md §4.7).
func materialSubset(mesh *assetkind.Mesh, allMaterials []*assetkind.Material) []*assetkind.Material {
	seen := make(map[int]bool)
	var order []int
	for _, sub := range mesh.SubMeshes {
		idx := sub.MaterialIndex
		if idx < 0 || idx >= len(allMaterials) || seen[idx] {
			continue
		}
		seen[idx] = true
		order = append(order, idx)
	}
	out := make([]*assetkind.Material, 0, len(order))
	for _, idx := range order {
		out = append(out, allMaterials[idx])
	}
	return out
}

// PackageTextureCache packages every texture a scene's Material Pipeline
// run resolved, once per scene (spec.md §4.7: "packages the texture cache
// *before* materials so textures get real IDs that materials can cite").
// Call this exactly once per Create() result, before PackageModel, since
// every sub-model's ModelAsset shares the same texCache.
func PackageTextureCache(assetOrigin string, texCache *assetkind.ModelTextureCache, texturePipe *texturepipeline.Pipeline) error {
	for _, tex := range texCache.Textures {
		if _, ok := texturePipe.Store().Package(assetOrigin, tex); !ok {
			return fmt.Errorf("%w: failed to package cached texture %q", corelog.ErrPersistenceFailure, tex.Name)
		}
	}
	return nil
}

// PackageModel registers the model, packages its mesh, each skeleton and
// each material, finally writing the model record (spec.md §4.7). The
// scene's texture cache must already have been packaged via
// PackageTextureCache.
func PackageModel(assetOrigin string, asset *ModelAsset, scenePipe *scenepipeline.Pipeline, materialPipe *materialpipeline.Pipeline, modelPipe *Pipeline) (assetkind.ID, error) {
	meshID, err := scenePipe.PackageMesh(assetOrigin, asset.Mesh)
	if err != nil {
		return 0, err
	}

	var skelRefs []assetkind.SkeletonRef
	if asset.Skeleton != nil {
		skelID, err := scenePipe.PackageSkeleton(assetOrigin, asset.Skeleton)
		if err != nil {
			return 0, err
		}
		skelRefs = append(skelRefs, assetkind.SkeletonRef{ID: skelID})
	}

	var matRefs []assetkind.MaterialRef
	for _, mat := range asset.Materials {
		matID, err := materialPipe.PackageMaterial(assetOrigin, mat)
		if err != nil {
			return 0, err
		}
		matRefs = append(matRefs, assetkind.MaterialRef{ID: matID})
	}

	model := &assetkind.Model{
		Name:      assetkind.Name(asset.Name).Clamp(),
		ID:        assetkind.HashName(assetkind.Name(asset.Name)),
		Mesh:      assetkind.MeshRef{ID: meshID},
		Skeletons: skelRefs,
		Materials: matRefs,
	}
	id, ok := modelPipe.store.Package(assetOrigin, model)
	if !ok {
		return 0, fmt.Errorf("%w: failed to package model %q", corelog.ErrPersistenceFailure, model.Name)
	}
	return id, nil
}
