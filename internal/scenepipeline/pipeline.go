package scenepipeline

import (
	"fmt"

	"github.com/spaghettifunk/forge/internal/assetkind"
	"github.com/spaghettifunk/forge/internal/buildctx"
	"github.com/spaghettifunk/forge/internal/corelog"
	"github.com/spaghettifunk/forge/internal/scene"
	"github.com/spaghettifunk/forge/internal/store"
)

// Pipeline owns the Mesh, Skeleton and Animation package stores and the
// shared Scene Loader they all read from (spec.md §4.5).
type Pipeline struct {
	ctx       *buildctx.Context
	loader    *scene.Loader
	meshes    *store.Store[*assetkind.Mesh]
	skeletons *store.Store[*assetkind.Skeleton]
	anims     *store.Store[*assetkind.Animation]
}

func New(ctx *buildctx.Context) (*Pipeline, error) {
	meshes := store.New[*assetkind.Mesh](
		ctx.OutputRoot, ctx.KindDir("meshes"), "meshes", "sme",
		func() *assetkind.Mesh { return &assetkind.Mesh{} },
		func() []*assetkind.Mesh { return []*assetkind.Mesh{} },
	)
	meshes.SetCompression(ctx.Compression)
	skeletons := store.New[*assetkind.Skeleton](
		ctx.OutputRoot, ctx.KindDir("skeletons"), "skeletons", "ssk",
		func() *assetkind.Skeleton { return &assetkind.Skeleton{} },
		func() []*assetkind.Skeleton { return []*assetkind.Skeleton{} },
	)
	skeletons.SetCompression(ctx.Compression)
	anims := store.New[*assetkind.Animation](
		ctx.OutputRoot, ctx.KindDir("animations"), "animations", "san",
		func() *assetkind.Animation { return &assetkind.Animation{} },
		func() []*assetkind.Animation { return []*assetkind.Animation{} },
	)
	anims.SetCompression(ctx.Compression)

	for _, init := range []func() error{meshes.Initialize, skeletons.Initialize, anims.Initialize} {
		if err := init(); err != nil {
			return nil, err
		}
	}
	return &Pipeline{ctx: ctx, loader: scene.NewLoader(), meshes: meshes, skeletons: skeletons, anims: anims}, nil
}

func (p *Pipeline) Loader() *scene.Loader                       { return p.loader }
func (p *Pipeline) MeshStore() *store.Store[*assetkind.Mesh]         { return p.meshes }
func (p *Pipeline) SkeletonStore() *store.Store[*assetkind.Skeleton] { return p.skeletons }
func (p *Pipeline) AnimationStore() *store.Store[*assetkind.Animation] { return p.anims }

// PackageMesh writes a pre-built Mesh into the package store.
func (p *Pipeline) PackageMesh(assetOrigin string, mesh *assetkind.Mesh) (assetkind.ID, error) {
	id, ok := p.meshes.Package(assetOrigin, mesh)
	if !ok {
		return 0, fmt.Errorf("%w: failed to package mesh %q", corelog.ErrPersistenceFailure, mesh.Name)
	}
	return id, nil
}

// PackageSkeleton writes a pre-built Skeleton into the package store.
func (p *Pipeline) PackageSkeleton(assetOrigin string, skel *assetkind.Skeleton) (assetkind.ID, error) {
	id, ok := p.skeletons.Package(assetOrigin, skel)
	if !ok {
		return 0, fmt.Errorf("%w: failed to package skeleton %q", corelog.ErrPersistenceFailure, skel.Name)
	}
	return id, nil
}

// PackageAnimation writes a pre-built Animation into the package store.
func (p *Pipeline) PackageAnimation(assetOrigin string, anim *assetkind.Animation) (assetkind.ID, error) {
	id, ok := p.anims.Package(assetOrigin, anim)
	if !ok {
		return 0, fmt.Errorf("%w: failed to package animation %q", corelog.ErrPersistenceFailure, anim.Name)
	}
	return id, nil
}
