// Package buildctx defines BuilderContext, the explicit struct that
// replaces the original source's mutable global singletons for output
// directories and compression level (spec.md §9, redesign note "Global
// state").
package buildctx

import (
	"github.com/spaghettifunk/forge/internal/binarycodec"
	"github.com/spaghettifunk/forge/internal/pathutil"
)

type Context struct {
	OutputRoot  pathutil.Path
	PackageSubdir string // relative to OutputRoot; each pipeline appends its own kind folder
	Compression binarycodec.CompressionLevel
}

func New(outputRoot string) *Context {
	return &Context{
		OutputRoot:    pathutil.Normalize(outputRoot),
		PackageSubdir: "packages",
		Compression:   binarycodec.CompressionNone,
	}
}

// KindDir returns PackageSubdir/kind, the directory (relative to OutputRoot)
// one pipeline writes its package files into.
func (c *Context) KindDir(kind string) string {
	return c.PackageSubdir + "/" + kind
}
