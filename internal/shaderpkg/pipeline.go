package shaderpkg

import (
	"fmt"

	"github.com/spaghettifunk/forge/internal/assetkind"
	"github.com/spaghettifunk/forge/internal/buildctx"
	"github.com/spaghettifunk/forge/internal/corelog"
	"github.com/spaghettifunk/forge/internal/pathutil"
	"github.com/spaghettifunk/forge/internal/store"
)

// Pipeline implements spec.md §4.4's six steps end to end: ingest, compile,
// reflect, optional extra backends, package, default assets.
type Pipeline struct {
	ctx          *buildctx.Context
	store        *store.Store[*assetkind.Shader]
	extraBackend []Backend // optional HLSL/PSSL targets enabled for this build
}

// New builds a Shader Pipeline, seeding ps_default_vertex_shader and
// ps_default_pixel_shader on Initialize if absent (spec.md §4.4 step 6).
func New(ctx *buildctx.Context, extraBackends ...Backend) (*Pipeline, error) {
	s := store.New[*assetkind.Shader](
		ctx.OutputRoot,
		ctx.KindDir("shaders"),
		"shaders",
		"ssp",
		func() *assetkind.Shader { return &assetkind.Shader{} },
		func() []*assetkind.Shader { return []*assetkind.Shader{} },
	)
	s.SetCompression(ctx.Compression)
	p := &Pipeline{ctx: ctx, store: s, extraBackend: extraBackends}
	if err := s.Initialize(); err != nil {
		return nil, err
	}
	if err := p.packageDefaults(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) Store() *store.Store[*assetkind.Shader] { return p.store }

func (p *Pipeline) packageDefaults() error {
	if !p.store.AssetExistsByName("ps_default_vertex_shader") {
		shader, err := p.compileFromSource("ps_default_vertex_shader", assetkind.DefaultVertexShaderSource, assetkind.ShaderStageVertex, nil)
		if err != nil {
			return fmt.Errorf("default vertex shader: %w", err)
		}
		if _, ok := p.store.Package(assetkind.OriginUser, shader); !ok {
			corelog.LogError("shaderpkg: failed to package default vertex shader")
		}
	}
	if !p.store.AssetExistsByName("ps_default_pixel_shader") {
		shader, err := p.compileFromSource("ps_default_pixel_shader", assetkind.DefaultPixelShaderSource, assetkind.ShaderStagePixel, nil)
		if err != nil {
			return fmt.Errorf("default pixel shader: %w", err)
		}
		if _, ok := p.store.Package(assetkind.OriginUser, shader); !ok {
			corelog.LogError("shaderpkg: failed to package default pixel shader")
		}
	}
	return nil
}

// Create runs ingest+compile+reflect+extra-backends for the shader source
// at srcPath, returning the populated Shader record (spec.md §4.4 steps 1-5).
func (p *Pipeline) Create(name assetkind.Name, srcPath pathutil.Path, opts *CompileOptions) (*assetkind.Shader, error) {
	stage, err := StageFromExtension(srcPath.Ext())
	if err != nil {
		return nil, err
	}
	source, err := ReadSource(srcPath)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = NewCompileOptions(srcPath.Dir())
	}
	return p.compileFromSource(name, source, stage, opts)
}

func (p *Pipeline) compileFromSource(name assetkind.Name, source string, stage assetkind.ShaderStage, opts *CompileOptions) (*assetkind.Shader, error) {
	spirv, err := Compile(BackendSpirv, source, stage, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: spirv compile failed for %q: %v", corelog.ErrDecode, name, err)
	}

	resources, err := Reflect(spirv)
	if err != nil {
		return nil, fmt.Errorf("%w: reflection failed for %q: %v", corelog.ErrDecode, name, err)
	}

	shader := &assetkind.Shader{
		Name:      name.Clamp(),
		ID:        assetkind.HashName(name),
		Stage:     stage,
		Resources: resources,
		SpirvData: spirv,
	}

	for _, backend := range p.extraBackend {
		blob, berr := Compile(backend, source, stage, opts)
		if berr != nil {
			corelog.LogWarn("shaderpkg: extra backend compile failed for %q: %v", name, berr)
			continue
		}
		switch backend {
		case BackendHlsl:
			shader.HlslData = blob
		case BackendPssl:
			shader.PsslData = blob
		}
	}

	return shader, nil
}

// PackageShader compiles srcPath and writes the resulting Shader into the
// package store.
func (p *Pipeline) PackageShader(assetOrigin string, name assetkind.Name, srcPath pathutil.Path) (assetkind.ID, error) {
	shader, err := p.Create(name, srcPath, nil)
	if err != nil {
		return 0, err
	}
	id, ok := p.store.Package(assetOrigin, shader)
	if !ok {
		return 0, fmt.Errorf("%w: failed to package shader %q", corelog.ErrPersistenceFailure, name)
	}
	return id, nil
}
