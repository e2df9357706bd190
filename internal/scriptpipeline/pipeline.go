// Package scriptpipeline implements the pass-through Script Pipeline
// (spec.md §4 table): Lua source is handed to an external `luajit`
// compiler and the resulting bytecode blob is packaged as-is.
package scriptpipeline

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/cespare/xxhash/v2"

	"github.com/spaghettifunk/forge/internal/assetkind"
	"github.com/spaghettifunk/forge/internal/buildctx"
	"github.com/spaghettifunk/forge/internal/corelog"
	"github.com/spaghettifunk/forge/internal/pathutil"
	"github.com/spaghettifunk/forge/internal/store"
)

type Pipeline struct {
	ctx        *buildctx.Context
	store      *store.Store[*assetkind.Script]
	luajitPath string
}

// New builds a Script Pipeline that shells out to luajitPath (expected on
// PATH as "luajit" unless overridden).
func New(ctx *buildctx.Context, luajitPath string) (*Pipeline, error) {
	if luajitPath == "" {
		luajitPath = "luajit"
	}
	s := store.New[*assetkind.Script](
		ctx.OutputRoot, ctx.KindDir("scripts"), "scripts", "ssc",
		func() *assetkind.Script { return &assetkind.Script{} },
		func() []*assetkind.Script { return []*assetkind.Script{} },
	)
	s.SetCompression(ctx.Compression)
	p := &Pipeline{ctx: ctx, store: s, luajitPath: luajitPath}
	if err := s.Initialize(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) Store() *store.Store[*assetkind.Script] { return p.store }

// Create compiles the Lua source at srcPath into bytecode by invoking
// `luajit -b src dst` against a temporary output file (spec.md §6: "Lua
// bytecode from an external compiler").
func (p *Pipeline) Create(name assetkind.Name, srcPath pathutil.Path) (*assetkind.Script, error) {
	source, err := os.ReadFile(srcPath.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", corelog.ErrInputIO, err)
	}

	dst, err := os.CreateTemp("", "forge-luajit-*.bc")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", corelog.ErrInputIO, err)
	}
	dstPath := dst.Name()
	dst.Close()
	defer os.Remove(dstPath)

	cmd := exec.Command(p.luajitPath, "-b", srcPath.String(), dstPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%w: luajit -b failed for %q: %v: %s", corelog.ErrDecode, srcPath, err, out)
	}

	bytecode, err := os.ReadFile(dstPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read luajit output: %v", corelog.ErrInputIO, err)
	}

	return &assetkind.Script{
		Name:       name.Clamp(),
		ID:         assetkind.HashName(name),
		Bytecode:   bytecode,
		SourceHash: xxhash.Sum64(source),
	}, nil
}

// PackageScript compiles srcPath and writes the resulting Script into the
// package store.
func (p *Pipeline) PackageScript(assetOrigin string, name assetkind.Name, srcPath pathutil.Path) (assetkind.ID, error) {
	script, err := p.Create(name, srcPath)
	if err != nil {
		return 0, err
	}
	id, ok := p.store.Package(assetOrigin, script)
	if !ok {
		return 0, fmt.Errorf("%w: failed to package script %q", corelog.ErrPersistenceFailure, name)
	}
	return id, nil
}
