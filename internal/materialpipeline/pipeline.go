// Package materialpipeline implements the Material Pipeline of spec.md
// §4.6: shader-pair resolution with default fallback, cross-stage
// resource-compatibility checking, per-material uniform seeding and
// texture-slot resolution through a ModelTextureCache.
package materialpipeline

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/spaghettifunk/forge/internal/assetkind"
	"github.com/spaghettifunk/forge/internal/buildctx"
	"github.com/spaghettifunk/forge/internal/corelog"
	"github.com/spaghettifunk/forge/internal/mathutil"
	"github.com/spaghettifunk/forge/internal/pathutil"
	"github.com/spaghettifunk/forge/internal/scene"
	"github.com/spaghettifunk/forge/internal/shaderpkg"
	"github.com/spaghettifunk/forge/internal/store"
	"github.com/spaghettifunk/forge/internal/texturepipeline"
)

// Pipeline wires the Shader and Texture Pipelines together to build
// Material assets from a scene's materials.
type Pipeline struct {
	ctx      *buildctx.Context
	store    *store.Store[*assetkind.Material]
	shaders  *shaderpkg.Pipeline
	textures *texturepipeline.Pipeline
}

// New builds a Material Pipeline. The store carries no default asset of its
// own (spec.md §4.6 names no default material; only shaders and textures
// fall back to built-ins).
func New(ctx *buildctx.Context, shaders *shaderpkg.Pipeline, textures *texturepipeline.Pipeline) (*Pipeline, error) {
	s := store.New[*assetkind.Material](
		ctx.OutputRoot,
		ctx.KindDir("materials"),
		"materials",
		"sma",
		func() *assetkind.Material { return &assetkind.Material{} },
		func() []*assetkind.Material { return []*assetkind.Material{} },
	)
	s.SetCompression(ctx.Compression)
	p := &Pipeline{ctx: ctx, store: s, shaders: shaders, textures: textures}
	if err := s.Initialize(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) Store() *store.Store[*assetkind.Material] { return p.store }

// resourceKey identifies a merged resource slot (spec.md §4.6 step 3:
// "uniqueness is keyed by (binding, desc_set)").
type resourceKey struct {
	binding uint32
	descSet uint32
}

var slotUniformName = map[scene.TextureSlot]string{
	scene.TextureSlotDiffuse:   "ps_texture_albedo",
	scene.TextureSlotNormals:   "ps_texture_normals",
	scene.TextureSlotSpecular:  "ps_texture_metallic",
	scene.TextureSlotShininess: "ps_texture_roughness",
}

// CreateMaterials runs the Material Pipeline for every material in a scene,
// in the order scene materials appear (spec.md §4.6).
func (p *Pipeline) CreateMaterials(sceneMaterials []*scene.Material, sceneDir pathutil.Path, vertexShaderName, pixelShaderName assetkind.Name, texCache *assetkind.ModelTextureCache) ([]*assetkind.Material, error) {
	vs, ps, err := p.resolveShaderPair(vertexShaderName, pixelShaderName)
	if err != nil {
		return nil, err
	}
	if vs.Stage != assetkind.ShaderStageVertex {
		return nil, fmt.Errorf("%w: shader %q is not a vertex shader", corelog.ErrInvalidCommand, vs.Name)
	}
	if ps.Stage != assetkind.ShaderStagePixel {
		return nil, fmt.Errorf("%w: shader %q is not a pixel shader", corelog.ErrInvalidCommand, ps.Name)
	}

	uniformBuffers, err := mergeCategory(vs.Resources[assetkind.CategoryUniformBuffers], ps.Resources[assetkind.CategoryUniformBuffers])
	if err != nil {
		return nil, err
	}
	sepImages, err := mergeCategory(vs.Resources[assetkind.CategorySeparateImages], ps.Resources[assetkind.CategorySeparateImages])
	if err != nil {
		return nil, err
	}
	sepSamplers, err := mergeCategory(vs.Resources[assetkind.CategorySeparateSamplers], ps.Resources[assetkind.CategorySeparateSamplers])
	if err != nil {
		return nil, err
	}

	out := make([]*assetkind.Material, 0, len(sceneMaterials))
	for _, src := range sceneMaterials {
		mat, err := p.buildMaterial(src, sceneDir, vs.ID, ps.ID, uniformBuffers, sepImages, sepSamplers, texCache)
		if err != nil {
			return nil, err
		}
		out = append(out, mat)
	}
	return out, nil
}

func (p *Pipeline) resolveShaderPair(vertexName, pixelName assetkind.Name) (*assetkind.Shader, *assetkind.Shader, error) {
	vs, ok := p.shaders.Store().LoadAssetFromPackage(vertexName)
	if !ok {
		vs, ok = p.shaders.Store().LoadAssetFromPackage(assetkind.Name("ps_default_vertex_shader"))
		if !ok {
			return nil, nil, fmt.Errorf("%w: vertex shader %q missing and no default vertex shader available", corelog.ErrInvalidCommand, vertexName)
		}
		corelog.LogWarn("materialpipeline: vertex shader %q not found, falling back to default", vertexName)
	}
	ps, ok := p.shaders.Store().LoadAssetFromPackage(pixelName)
	if !ok {
		ps, ok = p.shaders.Store().LoadAssetFromPackage(assetkind.Name("ps_default_pixel_shader"))
		if !ok {
			return nil, nil, fmt.Errorf("%w: pixel shader %q missing and no default pixel shader available", corelog.ErrInvalidCommand, pixelName)
		}
		corelog.LogWarn("materialpipeline: pixel shader %q not found, falling back to default", pixelName)
	}
	return vs, ps, nil
}

// mergeCategory folds two stages' resource lists of the same category into
// one unique-by-(binding,desc_set) list, aborting on an incompatible pair
// (spec.md §4.6 step 3, linking §4.4's compatibility check).
func mergeCategory(a, b []*assetkind.ShaderResource) ([]*assetkind.ShaderResource, error) {
	byKey := make(map[resourceKey]*assetkind.ShaderResource)
	var order []*assetkind.ShaderResource
	add := func(r *assetkind.ShaderResource) error {
		key := resourceKey{binding: r.Binding, descSet: r.DescSet}
		if existing, ok := byKey[key]; ok {
			if !shaderpkg.Compatible(existing, r) {
				return fmt.Errorf("%w: shader resource %q at (binding=%d, set=%d) is incompatible across stages", corelog.ErrInvalidCommand, r.Name, r.Binding, r.DescSet)
			}
			return nil
		}
		byKey[key] = r
		order = append(order, r)
		return nil
	}
	for _, r := range a {
		if err := add(r); err != nil {
			return nil, err
		}
	}
	for _, r := range b {
		if err := add(r); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (p *Pipeline) buildMaterial(src *scene.Material, sceneDir pathutil.Path, vertexShaderID, pixelShaderID assetkind.ID, uniformBuffers, sepImages, sepSamplers []*assetkind.ShaderResource, texCache *assetkind.ModelTextureCache) (*assetkind.Material, error) {
	mat := &assetkind.Material{
		Name:             assetkind.Name(src.Name).Clamp(),
		ID:               assetkind.HashName(assetkind.Name(src.Name)),
		VertexShaderID:   vertexShaderID,
		PixelShaderID:    pixelShaderID,
		Wireframe:        src.Wireframe,
		BackfaceCulling:  !src.TwoSided,
		BlendFunction:    assetkind.BlendFunctionNone,
	}
	if src.Opacity < 1 {
		mat.BlendFunction = assetkind.BlendFunctionDefault
	}

	mat.UniformBuffers = make([]*assetkind.UniformBufferData, len(uniformBuffers))
	for i, res := range uniformBuffers {
		mat.UniformBuffers[i] = &assetkind.UniformBufferData{Name: res.Name, Data: make([]byte, res.Size)}
	}

	if src.IsGLTF {
		setNamedFloat(mat.UniformBuffers, uniformBuffers, "ps_float_metallic", src.MetallicFactor)
		setNamedFloat(mat.UniformBuffers, uniformBuffers, "ps_float_roughness", src.RoughnessFactor)
	} else {
		setNamedFloat(mat.UniformBuffers, uniformBuffers, "ps_float_roughness", 1-src.Shininess*0.001)
	}
	setNamedVec4(mat.UniformBuffers, uniformBuffers, "ps_color_ambient", src.AmbientColor)
	setNamedVec4(mat.UniformBuffers, uniformBuffers, "ps_color_diffuse", src.DiffuseColor)
	setNamedVec4(mat.UniformBuffers, uniformBuffers, "ps_color_specular", src.SpecularColor)
	setNamedVec4(mat.UniformBuffers, uniformBuffers, "ps_color_emissive", src.EmissiveColor)
	setNamedFloat(mat.UniformBuffers, uniformBuffers, "ps_float_opacity", src.Opacity)

	mat.SeparateSamplers = make([]*assetkind.SamplerData, len(sepSamplers))
	for i := range sepSamplers {
		s := &assetkind.SamplerData{Filter: assetkind.TextureFilterLinear, MaxAnisotropy: 1, Address: assetkind.TextureAddressRepeat}
		s.ClampAnisotropy()
		mat.SeparateSamplers[i] = s
	}

	mat.SeparateImages = make([]assetkind.ID, len(sepImages))
	for slot, texPath := range src.Textures {
		uniformName, ok := slotUniformName[slot]
		if !ok || texPath == "" {
			continue
		}
		idx := indexByName(sepImages, uniformName)
		if idx < 0 {
			continue // shader doesn't declare this slot; nothing to bind
		}
		id, err := p.resolveTexture(sceneDir, texPath, texCache)
		if err != nil {
			return nil, err
		}
		mat.SeparateImages[idx] = id
	}

	return mat, nil
}

func (p *Pipeline) resolveTexture(sceneDir pathutil.Path, texPath string, texCache *assetkind.ModelTextureCache) (assetkind.ID, error) {
	fullPath := sceneDir.Join(texPath)
	tex, err := texCache.Resolve(fullPath.String(), func(path string) (*assetkind.Texture, error) {
		p2 := pathutil.Normalize(path)
		return p.textures.Create(assetkind.Name(p2.Stem()), p2)
	})
	if err != nil {
		return 0, fmt.Errorf("material texture %q: %w", texPath, err)
	}
	return tex.ID, nil
}

func indexByName(resources []*assetkind.ShaderResource, name string) int {
	for i, r := range resources {
		if r.Name == name {
			return i
		}
	}
	return -1
}

// setNamedFloat writes value into the first uniform-buffer member named
// name, provided its reflected type is actually a scalar float. A type
// mismatch logs and skips; a missing name is silently ignored (spec.md
// §4.6: "materials with shaders that don't use them are valid").
func setNamedFloat(buffers []*assetkind.UniformBufferData, resources []*assetkind.ShaderResource, name string, value float32) {
	bi, member, ok := findMember(resources, name)
	if !ok {
		return
	}
	if member.ConcreteType != assetkind.ResourceConcreteFloat {
		corelog.LogError("materialpipeline: uniform %q is not a float, skipping write", name)
		return
	}
	data := buffers[bi].Data
	if int(member.Offset)+4 > len(data) {
		corelog.LogError("materialpipeline: uniform %q offset out of range", name)
		return
	}
	binary.LittleEndian.PutUint32(data[member.Offset:], math.Float32bits(value))
}

func setNamedVec4(buffers []*assetkind.UniformBufferData, resources []*assetkind.ShaderResource, name string, value mathutil.Vec4) {
	bi, member, ok := findMember(resources, name)
	if !ok {
		return
	}
	if member.ConcreteType != assetkind.ResourceConcreteVec4 {
		corelog.LogError("materialpipeline: uniform %q is not a vec4, skipping write", name)
		return
	}
	data := buffers[bi].Data
	if int(member.Offset)+16 > len(data) {
		corelog.LogError("materialpipeline: uniform %q offset out of range", name)
		return
	}
	comps := [4]float32{value.X, value.Y, value.Z, value.W}
	for i, c := range comps {
		binary.LittleEndian.PutUint32(data[int(member.Offset)+i*4:], math.Float32bits(c))
	}
}

func findMember(resources []*assetkind.ShaderResource, name string) (int, *assetkind.ShaderResource, bool) {
	for bi, res := range resources {
		for _, m := range res.Members {
			if m.Name == name {
				return bi, m, true
			}
		}
	}
	return 0, nil, false
}

// PackageMaterial writes a pre-built Material into the package store.
func (p *Pipeline) PackageMaterial(assetOrigin string, mat *assetkind.Material) (assetkind.ID, error) {
	id, ok := p.store.Package(assetOrigin, mat)
	if !ok {
		return 0, fmt.Errorf("%w: failed to package material %q", corelog.ErrPersistenceFailure, mat.Name)
	}
	return id, nil
}
