package texturepipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/spaghettifunk/forge/internal/assetkind"
	"github.com/spaghettifunk/forge/internal/buildctx"
	"github.com/spaghettifunk/forge/internal/corelog"
	"github.com/spaghettifunk/forge/internal/pathutil"
	"github.com/spaghettifunk/forge/internal/store"
)

// Pipeline implements spec.md §4.3: decode raster/DDS input, normalise to
// RGBA8 with a bottom-origin flip, and package the result as a Texture.
type Pipeline struct {
	ctx     *buildctx.Context
	store   *store.Store[*assetkind.Texture]
	decoder RasterDecoder
}

// New builds a Texture Pipeline over ctx, seeding the store's default asset
// (ps_default_texture) on Initialize.
func New(ctx *buildctx.Context) (*Pipeline, error) {
	s := store.New[*assetkind.Texture](
		ctx.OutputRoot,
		ctx.KindDir("textures"),
		"textures",
		"ste",
		func() *assetkind.Texture { return &assetkind.Texture{} },
		func() []*assetkind.Texture { return []*assetkind.Texture{assetkind.DefaultMagentaTexture()} },
	)
	s.SetCompression(ctx.Compression)
	p := &Pipeline{ctx: ctx, store: s, decoder: NewDefaultDecoder()}
	if err := s.Initialize(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) Store() *store.Store[*assetkind.Texture] { return p.store }

// Create decodes the raster or DDS image at srcPath and returns a fully
// populated Texture record (not yet packaged).
func (p *Pipeline) Create(name assetkind.Name, srcPath pathutil.Path) (*assetkind.Texture, error) {
	data, err := os.ReadFile(srcPath.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", corelog.ErrInputIO, err)
	}

	ext := strings.ToLower(srcPath.Ext())
	tex := &assetkind.Texture{
		Name:   name.Clamp(),
		ID:     assetkind.HashName(name),
		Type:   assetkind.TextureType2D,
		Format: assetkind.TextureFormatRGBA8,
		Depth:  1,
		Mips:   1,
	}

	switch {
	case ext == ".dds":
		surface, derr := decodeDDS(data)
		if derr != nil {
			return nil, fmt.Errorf("%w: %v", corelog.ErrDecode, derr)
		}
		tex.Width = surface.Width
		tex.Height = surface.Height
		tex.Depth = surface.Depth
		tex.Mips = surface.Mips
		tex.Type = surface.Type
		tex.PixelData = surface.Pixels
	case ext == ".tga":
		pixels, w, h, derr := decodeTGA(data)
		if derr != nil {
			return nil, fmt.Errorf("%w: %v", corelog.ErrDecode, derr)
		}
		tex.Width = int32(w)
		tex.Height = int32(h)
		tex.PixelData = pixels
	case isRasterExt(ext):
		pixels, w, h, derr := p.decoder.Decode(data)
		if derr != nil {
			return nil, fmt.Errorf("%w: %v", corelog.ErrDecode, derr)
		}
		tex.Width = int32(w)
		tex.Height = int32(h)
		tex.PixelData = flipVertical(pixels, w, h)
	default:
		return nil, fmt.Errorf("%w: unrecognised texture extension %q", corelog.ErrDecode, ext)
	}

	return tex, nil
}

// PackageTexture decodes srcPath and writes the resulting Texture into the
// package store, returning its asset ID.
func (p *Pipeline) PackageTexture(assetOrigin string, name assetkind.Name, srcPath pathutil.Path) (assetkind.ID, error) {
	tex, err := p.Create(name, srcPath)
	if err != nil {
		return 0, err
	}
	id, ok := p.store.Package(assetOrigin, tex)
	if !ok {
		return 0, fmt.Errorf("%w: failed to package texture %q", corelog.ErrPersistenceFailure, name)
	}
	return id, nil
}
