package command

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/forge/internal/assetkind"
	"github.com/spaghettifunk/forge/internal/audiopipeline"
	"github.com/spaghettifunk/forge/internal/buildctx"
	"github.com/spaghettifunk/forge/internal/corelog"
	"github.com/spaghettifunk/forge/internal/materialpipeline"
	"github.com/spaghettifunk/forge/internal/modelpipeline"
	"github.com/spaghettifunk/forge/internal/pathutil"
	"github.com/spaghettifunk/forge/internal/scenepipeline"
	"github.com/spaghettifunk/forge/internal/scriptpipeline"
	"github.com/spaghettifunk/forge/internal/shaderpkg"
	"github.com/spaghettifunk/forge/internal/texturepipeline"
)

// Registry bundles every pipeline the built-in commands dispatch into, so
// each Command implementation stays a thin adapter over already-built
// pipeline APIs rather than re-deriving orchestration logic.
type Registry struct {
	Ctx       *buildctx.Context
	Textures  *texturepipeline.Pipeline
	Shaders   *shaderpkg.Pipeline
	Scenes    *scenepipeline.Pipeline
	Materials *materialpipeline.Pipeline
	Models    *modelpipeline.Pipeline
	Audio     *audiopipeline.Pipeline
	Scripts   *scriptpipeline.Pipeline
}

// NewRegistry wires every pipeline over the same BuilderContext, in the
// dependency order each New requires (shaders/textures before materials).
func NewRegistry(ctx *buildctx.Context) (*Registry, error) {
	textures, err := texturepipeline.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("texture pipeline: %w", err)
	}
	shaders, err := shaderpkg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("shader pipeline: %w", err)
	}
	scenes, err := scenepipeline.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("scene pipeline: %w", err)
	}
	materials, err := materialpipeline.New(ctx, shaders, textures)
	if err != nil {
		return nil, fmt.Errorf("material pipeline: %w", err)
	}
	models, err := modelpipeline.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("model pipeline: %w", err)
	}
	audio, err := audiopipeline.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("audio pipeline: %w", err)
	}
	scripts, err := scriptpipeline.New(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("script pipeline: %w", err)
	}
	return &Registry{
		Ctx: ctx, Textures: textures, Shaders: shaders, Scenes: scenes,
		Materials: materials, Models: models, Audio: audio, Scripts: scripts,
	}, nil
}

// ClearOutput implements `--clear_output` across every pipeline's store
// (spec.md §4.8).
func (r *Registry) ClearOutput() error {
	stores := []interface{ ClearOutput() error }{
		r.Textures.Store(), r.Shaders.Store(), r.Scenes.MeshStore(),
		r.Scenes.SkeletonStore(), r.Scenes.AnimationStore(), r.Materials.Store(),
		r.Models.Store(), r.Audio.Store(), r.Scripts.Store(),
	}
	for _, s := range stores {
		if err := s.ClearOutput(); err != nil {
			return err
		}
	}
	return nil
}

// RefreshCache implements `--refresh_cache`.
func (r *Registry) RefreshCache() {
	r.Textures.Store().RefreshCache()
	r.Shaders.Store().RefreshCache()
	r.Scenes.MeshStore().RefreshCache()
	r.Scenes.SkeletonStore().RefreshCache()
	r.Scenes.AnimationStore().RefreshCache()
	r.Materials.Store().RefreshCache()
	r.Models.Store().RefreshCache()
	r.Audio.Store().RefreshCache()
	r.Scripts.Store().RefreshCache()
}

// resolveFiles expands the -dir/-file/-r flags into a concrete file list
// (spec.md §6): one or more search directories, optionally filtered to an
// explicit comma-separated file list, optionally recursive.
func resolveFiles(flags ParsedFlags, extFilter func(ext string) bool) ([]pathutil.Path, error) {
	dirs := flags["-dir"]
	if len(dirs) == 0 {
		return nil, fmt.Errorf("%w: -dir is required", corelog.ErrInvalidCommand)
	}
	recurse := flags.Has("-r")

	var explicit map[string]bool
	if csv := flags.First("-file"); csv != "" {
		explicit = make(map[string]bool)
		for _, name := range strings.Split(csv, ",") {
			explicit[strings.TrimSpace(name)] = true
		}
	}

	var out []pathutil.Path
	for _, d := range dirs {
		files, err := pathutil.ListRecursive(pathutil.Normalize(d), recurse)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", corelog.ErrInputIO, err)
		}
		for _, f := range files {
			if explicit != nil && !explicit[f.Base()] {
				continue
			}
			if extFilter != nil && !extFilter(strings.ToLower(f.Ext())) {
				continue
			}
			out = append(out, f)
		}
	}
	return out, nil
}

func assetName(p pathutil.Path) assetkind.Name { return assetkind.Name(p.Stem()) }
