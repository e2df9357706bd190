// Package shaderpkg implements the Shader Pipeline of spec.md §4.4: ingest,
// compile to SPIR-V, reflect resources, optional extra backends, package,
// and the link-compatibility check the Material Pipeline depends on.
package shaderpkg

// BuiltInResource is the explicit resource-limits block fed to the SPIR-V
// front end at compile time (spec.md §9 design note: "this is a semantic
// input to the front-end, not a style choice"). The values are reproduced
// verbatim from the original source's default_built_in_resources table.
type BuiltInResource struct {
	MaxLights                                uint32
	MaxClipPlanes                             uint32
	MaxTextureUnits                           uint32
	MaxTextureCoords                          uint32
	MaxVertexAttribs                          uint32
	MaxVertexUniformComponents                uint32
	MaxVaryingFloats                          uint32
	MaxVertexTextureImageUnits                uint32
	MaxCombinedTextureImageUnits              uint32
	MaxTextureImageUnits                      uint32
	MaxFragmentUniformComponents              uint32
	MaxDrawBuffers                            uint32
	MaxVertexUniformVectors                   uint32
	MaxVaryingVectors                         uint32
	MaxFragmentUniformVectors                 uint32
	MaxVertexOutputVectors                    uint32
	MaxFragmentInputVectors                   uint32
	MinProgramTexelOffset                     int32
	MaxProgramTexelOffset                     int32
	MaxClipDistances                          uint32
	MaxComputeWorkGroupCountX                 uint32
	MaxComputeWorkGroupCountY                 uint32
	MaxComputeWorkGroupCountZ                 uint32
	MaxComputeWorkGroupSizeX                  uint32
	MaxComputeWorkGroupSizeY                  uint32
	MaxComputeWorkGroupSizeZ                  uint32
	MaxComputeUniformComponents               uint32
	MaxComputeTextureImageUnits               uint32
	MaxComputeImageUniforms                   uint32
	MaxComputeAtomicCounters                  uint32
	MaxComputeAtomicCounterBuffers            uint32
	MaxVaryingComponents                      uint32
	MaxVertexOutputComponents                 uint32
	MaxGeometryInputComponents                uint32
	MaxGeometryOutputComponents               uint32
	MaxFragmentInputComponents                uint32
	MaxImageUnits                             uint32
	MaxCombinedImageUnitsAndFragmentOutputs   uint32
	MaxCombinedShaderOutputResources          uint32
	MaxImageSamples                           uint32
	MaxVertexImageUniforms                    uint32
	MaxTessControlImageUniforms               uint32
	MaxTessEvaluationImageUniforms            uint32
	MaxGeometryImageUniforms                  uint32
	MaxFragmentImageUniforms                  uint32
	MaxCombinedImageUniforms                  uint32
	MaxGeometryTextureImageUnits              uint32
	MaxGeometryOutputVertices                 uint32
	MaxGeometryTotalOutputComponents          uint32
	MaxGeometryUniformComponents              uint32
	MaxGeometryVaryingComponents              uint32
	MaxTessControlInputComponents             uint32
	MaxTessControlOutputComponents            uint32
	MaxTessControlTextureImageUnits           uint32
	MaxTessControlUniformComponents           uint32
	MaxTessControlTotalOutputComponents       uint32
	MaxTessEvaluationInputComponents          uint32
	MaxTessEvaluationOutputComponents         uint32
	MaxTessEvaluationTextureImageUnits        uint32
	MaxTessEvaluationUniformComponents        uint32
	MaxTessPatchComponents                    uint32
	MaxPatchVertices                          uint32
	MaxTessGenLevel                           uint32
	MaxViewports                              uint32
	MaxVertexAtomicCounters                   uint32
	MaxTessControlAtomicCounters              uint32
	MaxTessEvaluationAtomicCounters           uint32
	MaxGeometryAtomicCounters                 uint32
	MaxFragmentAtomicCounters                 uint32
	MaxCombinedAtomicCounters                 uint32
	MaxAtomicCounterBindings                  uint32
	MaxVertexAtomicCounterBuffers             uint32
	MaxTessControlAtomicCounterBuffers        uint32
	MaxTessEvaluationAtomicCounterBuffers     uint32
	MaxGeometryAtomicCounterBuffers           uint32
	MaxFragmentAtomicCounterBuffers           uint32
	MaxCombinedAtomicCounterBuffers           uint32
	MaxAtomicCounterBufferSize                uint32
	MaxTransformFeedbackBuffers               uint32
	MaxTransformFeedbackInterleavedComponents uint32
	MaxCullDistances                          uint32
	MaxCombinedClipAndCullDistances           uint32
	MaxSamples                                uint32

	NonInductiveForLoops                bool
	WhileLoops                           bool
	DoWhileLoops                        bool
	GeneralUniformIndexing              bool
	GeneralAttributeMatrixVectorIndexing bool
	GeneralVaryingIndexing              bool
	GeneralSamplerIndexing              bool
	GeneralVariableIndexing             bool
	GeneralConstantMatrixVectorIndexing bool
}

// DefaultBuiltInResources is the fixed limits block every compile uses.
func DefaultBuiltInResources() BuiltInResource {
	return BuiltInResource{
		MaxLights: 32, MaxClipPlanes: 6, MaxTextureUnits: 32, MaxTextureCoords: 32,
		MaxVertexAttribs: 64, MaxVertexUniformComponents: 4096, MaxVaryingFloats: 64,
		MaxVertexTextureImageUnits: 32, MaxCombinedTextureImageUnits: 80, MaxTextureImageUnits: 32,
		MaxFragmentUniformComponents: 4096, MaxDrawBuffers: 32, MaxVertexUniformVectors: 128,
		MaxVaryingVectors: 8, MaxFragmentUniformVectors: 16, MaxVertexOutputVectors: 16,
		MaxFragmentInputVectors: 15, MinProgramTexelOffset: -8, MaxProgramTexelOffset: 7,
		MaxClipDistances: 8, MaxComputeWorkGroupCountX: 65535, MaxComputeWorkGroupCountY: 65535,
		MaxComputeWorkGroupCountZ: 65535, MaxComputeWorkGroupSizeX: 1024, MaxComputeWorkGroupSizeY: 1024,
		MaxComputeWorkGroupSizeZ: 64, MaxComputeUniformComponents: 1024, MaxComputeTextureImageUnits: 16,
		MaxComputeImageUniforms: 8, MaxComputeAtomicCounters: 8, MaxComputeAtomicCounterBuffers: 1,
		MaxVaryingComponents: 60, MaxVertexOutputComponents: 64, MaxGeometryInputComponents: 64,
		MaxGeometryOutputComponents: 128, MaxFragmentInputComponents: 128, MaxImageUnits: 8,
		MaxCombinedImageUnitsAndFragmentOutputs: 8, MaxCombinedShaderOutputResources: 8,
		MaxImageSamples: 0, MaxVertexImageUniforms: 0, MaxTessControlImageUniforms: 0,
		MaxTessEvaluationImageUniforms: 0, MaxGeometryImageUniforms: 0, MaxFragmentImageUniforms: 8,
		MaxCombinedImageUniforms: 8, MaxGeometryTextureImageUnits: 16, MaxGeometryOutputVertices: 256,
		MaxGeometryTotalOutputComponents: 1024, MaxGeometryUniformComponents: 1024,
		MaxGeometryVaryingComponents: 64, MaxTessControlInputComponents: 128,
		MaxTessControlOutputComponents: 128, MaxTessControlTextureImageUnits: 16,
		MaxTessControlUniformComponents: 1024, MaxTessControlTotalOutputComponents: 4096,
		MaxTessEvaluationInputComponents: 128, MaxTessEvaluationOutputComponents: 128,
		MaxTessEvaluationTextureImageUnits: 16, MaxTessEvaluationUniformComponents: 1024,
		MaxTessPatchComponents: 120, MaxPatchVertices: 32, MaxTessGenLevel: 64, MaxViewports: 16,
		MaxVertexAtomicCounters: 0, MaxTessControlAtomicCounters: 0, MaxTessEvaluationAtomicCounters: 0,
		MaxGeometryAtomicCounters: 0, MaxFragmentAtomicCounters: 8, MaxCombinedAtomicCounters: 8,
		MaxAtomicCounterBindings: 1, MaxVertexAtomicCounterBuffers: 0, MaxTessControlAtomicCounterBuffers: 0,
		MaxTessEvaluationAtomicCounterBuffers: 0, MaxGeometryAtomicCounterBuffers: 0,
		MaxFragmentAtomicCounterBuffers: 1, MaxCombinedAtomicCounterBuffers: 1,
		MaxAtomicCounterBufferSize: 16384, MaxTransformFeedbackBuffers: 4,
		MaxTransformFeedbackInterleavedComponents: 64, MaxCullDistances: 8,
		MaxCombinedClipAndCullDistances: 8, MaxSamples: 4,

		NonInductiveForLoops: true, WhileLoops: true, DoWhileLoops: true,
		GeneralUniformIndexing: true, GeneralAttributeMatrixVectorIndexing: true,
		GeneralVaryingIndexing: true, GeneralSamplerIndexing: true,
		GeneralVariableIndexing: true, GeneralConstantMatrixVectorIndexing: true,
	}
}
