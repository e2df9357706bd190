package assetkind

import "github.com/spaghettifunk/forge/internal/binarycodec"

type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageDomain
	ShaderStageHull
	ShaderStageGeometry
	ShaderStagePixel
	ShaderStageCompute
)

// ResourceBaseType classifies what a shader resource binds to (spec.md §3).
type ResourceBaseType int

const (
	ResourceBaseUniformBuffer ResourceBaseType = iota
	ResourceBaseInput
	ResourceBaseOutput
	ResourceBaseStorageImage
	ResourceBaseSampledImage
	ResourceBaseAtomicCounter
	ResourceBasePushConstantBuffer
	ResourceBaseSeparateImage
	ResourceBaseSeparateSampler
)

// ResourceConcreteType classifies the scalar/vector/matrix/struct shape of a
// shader resource (spec.md §3 and §4.4 step 3).
type ResourceConcreteType int

const (
	ResourceConcreteStruct ResourceConcreteType = iota
	ResourceConcreteBool
	ResourceConcreteFloat
	ResourceConcreteInt
	ResourceConcreteUInt
	ResourceConcreteDouble
	ResourceConcreteChar
	ResourceConcreteVec2
	ResourceConcreteVec3
	ResourceConcreteVec4
	ResourceConcreteMat3x3
	ResourceConcreteMat4x3
	ResourceConcreteMat4x4
	ResourceConcreteUnknown
)

type ImageDim int

const (
	ImageDim1D ImageDim = iota
	ImageDim2D
	ImageDim3D
	ImageDimCube
)

// ImageInfo is populated only for image-shaped resources.
type ImageInfo struct {
	Dim     ImageDim
	Arrayed bool
}

// ShaderResource is one node of a shader's reflected resource tree
// (spec.md §3: "ShaderResource (reflection node)").
type ShaderResource struct {
	Name         string
	BaseType     ResourceBaseType
	ConcreteType ResourceConcreteType
	Binding      uint32
	DescSet      uint32
	ArraySize    []uint32
	Cols         uint32
	VecSize      uint32
	Offset       uint32
	Size         uint32
	Members      []*ShaderResource
	HasImage     bool
	Image        ImageInfo
}

func (r *ShaderResource) WriteTo(w *binarycodec.Writer) {
	w.WriteString(r.Name)
	w.WriteI32(int32(r.BaseType))
	w.WriteI32(int32(r.ConcreteType))
	w.WriteU32(r.Binding)
	w.WriteU32(r.DescSet)
	binarycodec.WriteSlice(w, r.ArraySize, func(w *binarycodec.Writer, v uint32) { w.WriteU32(v) })
	w.WriteU32(r.Cols)
	w.WriteU32(r.VecSize)
	w.WriteU32(r.Offset)
	w.WriteU32(r.Size)
	binarycodec.WriteSlice(w, r.Members, func(w *binarycodec.Writer, m *ShaderResource) { m.WriteTo(w) })
	w.WriteBool(r.HasImage)
	if r.HasImage {
		w.WriteI32(int32(r.Image.Dim))
		w.WriteBool(r.Image.Arrayed)
	}
}

func (r *ShaderResource) ReadFrom(rd *binarycodec.Reader) {
	r.Name = rd.ReadString()
	r.BaseType = ResourceBaseType(rd.ReadI32())
	r.ConcreteType = ResourceConcreteType(rd.ReadI32())
	r.Binding = rd.ReadU32()
	r.DescSet = rd.ReadU32()
	r.ArraySize = binarycodec.ReadSlice(rd, func(rd *binarycodec.Reader) uint32 { return rd.ReadU32() })
	r.Cols = rd.ReadU32()
	r.VecSize = rd.ReadU32()
	r.Offset = rd.ReadU32()
	r.Size = rd.ReadU32()
	r.Members = binarycodec.ReadSlice(rd, func(rd *binarycodec.Reader) *ShaderResource {
		m := &ShaderResource{}
		m.ReadFrom(rd)
		return m
	})
	r.HasImage = rd.ReadBool()
	if r.HasImage {
		r.Image.Dim = ImageDim(rd.ReadI32())
		r.Image.Arrayed = rd.ReadBool()
	}
}

// ShaderResourceCategory indexes the nine fixed resource lists a Shader
// carries, in the fixed order required by spec.md §4.4 step 5.
type ShaderResourceCategory int

const (
	CategoryUniformBuffers ShaderResourceCategory = iota
	CategoryStageInputs
	CategoryStageOutputs
	CategoryStorageImages
	CategorySampledImages
	CategoryAtomicCounters
	CategoryPushConstantBuffers
	CategorySeparateImages
	CategorySeparateSamplers
	numShaderResourceCategories
)

type Shader struct {
	Name          Name
	ID            ID
	Stage         ShaderStage
	WorkgroupSize [3]uint32
	Resources     [numShaderResourceCategories][]*ShaderResource
	SpirvData     []byte
	HlslData      []byte
	PsslData      []byte
}

func (s *Shader) WriteTo(w *binarycodec.Writer) {
	w.WriteString(string(s.Name))
	w.WriteU64(uint64(s.ID))
	w.WriteI32(int32(s.Stage))
	w.WriteU32(s.WorkgroupSize[0])
	w.WriteU32(s.WorkgroupSize[1])
	w.WriteU32(s.WorkgroupSize[2])
	for _, list := range s.Resources {
		binarycodec.WriteSlice(w, list, func(w *binarycodec.Writer, r *ShaderResource) { r.WriteTo(w) })
	}
	w.WriteRawBytes(s.SpirvData)
	w.WriteRawBytes(s.HlslData)
	w.WriteRawBytes(s.PsslData)
}

func (s *Shader) ReadFrom(r *binarycodec.Reader) {
	s.Name = Name(r.ReadString())
	s.ID = ID(r.ReadU64())
	s.Stage = ShaderStage(r.ReadI32())
	s.WorkgroupSize[0] = r.ReadU32()
	s.WorkgroupSize[1] = r.ReadU32()
	s.WorkgroupSize[2] = r.ReadU32()
	for i := range s.Resources {
		s.Resources[i] = binarycodec.ReadSlice(r, func(r *binarycodec.Reader) *ShaderResource {
			res := &ShaderResource{}
			res.ReadFrom(r)
			return res
		})
	}
	s.SpirvData = r.ReadRawBytes()
	s.HlslData = r.ReadRawBytes()
	s.PsslData = r.ReadRawBytes()
}

func (s *Shader) AssetName() Name           { return s.Name }
func (s *Shader) AssetID() ID               { return s.ID }
func (*Shader) DefaultFileExtension() string { return "ssp" }
func (*Shader) CacheName() string            { return "shaders" }

// DefaultVertexShaderSource and DefaultPixelShaderSource are the embedded
// HLSL-dialect fallbacks inserted when ps_default_vertex_shader /
// ps_default_pixel_shader are missing (spec.md §4.4 step 6).
const DefaultVertexShaderSource = `
cbuffer SceneCB : register(b0) {
	float4x4 model;
	float4x4 view;
	float4x4 projection;
};
struct VSInput { float3 position : POSITION; float2 uv : TEXCOORD0; };
struct VSOutput { float4 position : SV_Position; float2 uv : TEXCOORD0; };
VSOutput main(VSInput input) {
	VSOutput o;
	float4 worldPos = mul(model, float4(input.position, 1.0));
	o.position = mul(projection, mul(view, worldPos));
	o.uv = input.uv;
	return o;
}
`

const DefaultPixelShaderSource = `
Texture2D ps_texture_albedo : register(t0);
SamplerState ps_sampler_albedo : register(s0);
struct PSInput { float4 position : SV_Position; float2 uv : TEXCOORD0; };
float4 main(PSInput input) : SV_Target {
	return ps_texture_albedo.Sample(ps_sampler_albedo, input.uv);
}
`
