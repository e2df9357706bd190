package shaderpkg

import (
	"encoding/binary"
	"fmt"

	"github.com/spaghettifunk/forge/internal/assetkind"
	"github.com/spaghettifunk/forge/internal/corelog"
)

// Hand-rolled because no SPIR-V reflection library exists anywhere in the
// retrieval pack (spec.md §9 design note on shader resource limits; see
// DESIGN.md for the stdlib justification). This walks the SPIR-V word
// stream directly, the way spec.md §4.4 step 3 specifies, rather than
// linking a C++ reflection library through cgo.

const spirvMagic = 0x07230203

// SPIR-V opcodes this reflector needs. Values from the stable SPIR-V spec.
const (
	opName                 = 5
	opMemberName           = 6
	opExtInstImport        = 11
	opTypeVoid             = 19
	opTypeBool             = 20
	opTypeInt              = 21
	opTypeFloat            = 22
	opTypeVector           = 23
	opTypeMatrix           = 24
	opTypeImage            = 25
	opTypeSampler          = 26
	opTypeSampledImage     = 27
	opTypeArray            = 28
	opTypeRuntimeArray     = 29
	opTypeStruct           = 30
	opTypePointer          = 32
	opConstant             = 43
	opVariable             = 59
	opDecorate             = 71
	opMemberDecorate       = 72
	opEntryPoint           = 15
	opExecutionMode        = 16
)

// Decoration numbers this reflector cares about.
const (
	decorationBinding       = 33
	decorationDescriptorSet = 34
	decorationOffset        = 35
)

// Storage classes this reflector cares about.
const (
	storageUniformConstant = 0
	storageUniform         = 2
	storageOutput          = 3
	storageInput           = 1
	storagePushConstant    = 9
	storageStorageBuffer   = 12
)

type spirvType struct {
	op         uint32
	width      uint32 // OpTypeInt/OpTypeFloat bit width
	signedness uint32
	compType   uint32 // OpTypeVector/OpTypeMatrix component type id
	count      uint32 // OpTypeVector component count, OpTypeMatrix column count, OpTypeArray length
	memberTypes []uint32 // OpTypeStruct member type ids
	dim        uint32
	arrayed    uint32
	pointee    uint32 // OpTypePointer target type id
	storage    uint32 // OpTypePointer storage class
}

type reflector struct {
	names         map[uint32]string
	memberNames   map[uint32]map[uint32]string
	types         map[uint32]*spirvType
	constants     map[uint32]uint32
	bindings      map[uint32]uint32
	descSets      map[uint32]uint32
	memberOffsets map[uint32]map[uint32]uint32
	variables     map[uint32]uint32 // id -> pointer type id
}

// Reflect walks spirv and converts every module-scope resource into the
// ShaderResource model (spec.md §4.4 step 3), bucketed into the nine fixed
// categories in the order spec.md §3 requires.
func Reflect(spirv []byte) ([assetkindNumCategories][]*assetkind.ShaderResource, error) {
	var out [assetkindNumCategories][]*assetkind.ShaderResource
	if len(spirv) < 20 || len(spirv)%4 != 0 {
		return out, fmt.Errorf("%w: spirv module too short", corelog.ErrDecode)
	}
	words := make([]uint32, len(spirv)/4)
	bo := binary.LittleEndian
	if bo.Uint32(spirv[0:4]) != spirvMagic {
		bo = binary.BigEndian
		if bo.Uint32(spirv[0:4]) != spirvMagic {
			return out, fmt.Errorf("%w: not a SPIR-V module", corelog.ErrDecode)
		}
	}
	for i := range words {
		words[i] = bo.Uint32(spirv[i*4 : i*4+4])
	}

	r := &reflector{
		names:         map[uint32]string{},
		memberNames:   map[uint32]map[uint32]string{},
		types:         map[uint32]*spirvType{},
		constants:     map[uint32]uint32{},
		bindings:      map[uint32]uint32{},
		descSets:      map[uint32]uint32{},
		memberOffsets: map[uint32]map[uint32]uint32{},
		variables:     map[uint32]uint32{},
	}

	idx := 5 // skip the 5-word header
	for idx < len(words) {
		instrWord := words[idx]
		wordCount := instrWord >> 16
		op := instrWord & 0xFFFF
		if wordCount == 0 || idx+int(wordCount) > len(words) {
			break
		}
		operands := words[idx+1 : idx+int(wordCount)]
		r.visit(op, operands)
		idx += int(wordCount)
	}

	for varID, ptrTypeID := range r.variables {
		ptrType, ok := r.types[ptrTypeID]
		if !ok || ptrType.op != opTypePointer {
			continue
		}
		category, baseType := classifyStorage(ptrType.storage)
		if category < 0 {
			continue // function-local or built-in variable, not a module resource
		}
		res := r.buildResource(varID, ptrType.pointee, baseType)
		if ptrType.storage == storageUniformConstant {
			category = categoryForOpaqueResource(res)
		}
		out[category] = append(out[category], res)
	}
	return out, nil
}

// categoryForOpaqueResource resolves the fixed category index for a
// UniformConstant-storage variable once its concrete shape (image, sampled
// image, bare sampler) is known -- classifyStorage alone can't tell these
// apart before the type is walked.
func categoryForOpaqueResource(res *assetkind.ShaderResource) int {
	switch res.BaseType {
	case assetkind.ResourceBaseSeparateImage:
		return 7 // CategorySeparateImages
	case assetkind.ResourceBaseSeparateSampler:
		return 8 // CategorySeparateSamplers
	default:
		return 4 // CategorySampledImages
	}
}

// assetkindNumCategories mirrors assetkind's unexported sentinel so this
// package can size its own return array without exporting the sentinel.
const assetkindNumCategories = 9

func classifyStorage(storage uint32) (int, assetkind.ResourceBaseType) {
	switch storage {
	case storageUniform:
		return 0, assetkind.ResourceBaseUniformBuffer // CategoryUniformBuffers
	case storageInput:
		return 1, assetkind.ResourceBaseInput // CategoryStageInputs
	case storageOutput:
		return 2, assetkind.ResourceBaseOutput // CategoryStageOutputs
	case storagePushConstant:
		return 6, assetkind.ResourceBasePushConstantBuffer // CategoryPushConstantBuffers
	case storageUniformConstant:
		return 4, assetkind.ResourceBaseSampledImage // CategorySampledImages; refined in buildResource
	case storageStorageBuffer:
		return 0, assetkind.ResourceBaseUniformBuffer
	default:
		return -1, assetkind.ResourceBaseUniformBuffer // category<0 means the caller discards this
	}
}

func (r *reflector) visit(op uint32, ops []uint32) {
	switch op {
	case opName:
		if len(ops) >= 2 {
			r.names[ops[0]] = decodeLiteralString(ops[1:])
		}
	case opMemberName:
		if len(ops) >= 3 {
			if r.memberNames[ops[0]] == nil {
				r.memberNames[ops[0]] = map[uint32]string{}
			}
			r.memberNames[ops[0]][ops[1]] = decodeLiteralString(ops[2:])
		}
	case opTypeVoid, opTypeBool:
		if len(ops) >= 1 {
			r.types[ops[0]] = &spirvType{op: op}
		}
	case opTypeInt:
		if len(ops) >= 3 {
			r.types[ops[0]] = &spirvType{op: op, width: ops[1], signedness: ops[2]}
		}
	case opTypeFloat:
		if len(ops) >= 2 {
			r.types[ops[0]] = &spirvType{op: op, width: ops[1]}
		}
	case opTypeVector:
		if len(ops) >= 3 {
			r.types[ops[0]] = &spirvType{op: op, compType: ops[1], count: ops[2]}
		}
	case opTypeMatrix:
		if len(ops) >= 3 {
			r.types[ops[0]] = &spirvType{op: op, compType: ops[1], count: ops[2]}
		}
	case opTypeImage:
		if len(ops) >= 3 {
			r.types[ops[0]] = &spirvType{op: op, dim: ops[2]}
		}
	case opTypeSampler:
		if len(ops) >= 1 {
			r.types[ops[0]] = &spirvType{op: op}
		}
	case opTypeSampledImage:
		if len(ops) >= 2 {
			r.types[ops[0]] = &spirvType{op: op, compType: ops[1]}
		}
	case opTypeArray:
		if len(ops) >= 3 {
			count := r.constants[ops[2]]
			r.types[ops[0]] = &spirvType{op: op, compType: ops[1], count: count}
		}
	case opTypeRuntimeArray:
		if len(ops) >= 2 {
			r.types[ops[0]] = &spirvType{op: op, compType: ops[1], count: 0}
		}
	case opTypeStruct:
		if len(ops) >= 1 {
			r.types[ops[0]] = &spirvType{op: op, memberTypes: append([]uint32(nil), ops[1:]...)}
		}
	case opTypePointer:
		if len(ops) >= 3 {
			r.types[ops[0]] = &spirvType{op: op, storage: ops[1], pointee: ops[2]}
		}
	case opConstant:
		if len(ops) >= 3 {
			r.constants[ops[1]] = ops[2]
		}
	case opVariable:
		if len(ops) >= 3 {
			r.variables[ops[1]] = ops[0]
		}
	case opDecorate:
		if len(ops) >= 3 {
			switch ops[1] {
			case decorationBinding:
				r.bindings[ops[0]] = ops[2]
			case decorationDescriptorSet:
				r.descSets[ops[0]] = ops[2]
			}
		}
	case opMemberDecorate:
		if len(ops) >= 4 && ops[2] == decorationOffset {
			if r.memberOffsets[ops[0]] == nil {
				r.memberOffsets[ops[0]] = map[uint32]uint32{}
			}
			r.memberOffsets[ops[0]][ops[1]] = ops[3]
		}
	}
}

func decodeLiteralString(words []uint32) string {
	b := make([]byte, 0, len(words)*4)
	for _, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			c := byte(w >> shift)
			if c == 0 {
				return string(b)
			}
			b = append(b, c)
		}
	}
	return string(b)
}

func (r *reflector) buildResource(varID, typeID uint32, base assetkind.ResourceBaseType) *assetkind.ShaderResource {
	res := &assetkind.ShaderResource{
		Name:     r.names[varID],
		BaseType: base,
		Binding:  r.bindings[varID],
		DescSet:  r.descSets[varID],
	}
	r.fillConcrete(res, typeID)
	return res
}

func (r *reflector) fillConcrete(res *assetkind.ShaderResource, typeID uint32) {
	t, ok := r.types[typeID]
	if !ok {
		res.ConcreteType = assetkind.ResourceConcreteUnknown
		return
	}

	resolvedTypeID := typeID
	for t.op == opTypeArray || t.op == opTypeRuntimeArray {
		res.ArraySize = append(res.ArraySize, t.count)
		resolvedTypeID = t.compType
		t = r.types[resolvedTypeID]
		if t == nil {
			res.ConcreteType = assetkind.ResourceConcreteUnknown
			return
		}
	}

	switch t.op {
	case opTypeStruct:
		res.ConcreteType = assetkind.ResourceConcreteStruct
		res.BaseType = resolveAggregateBase(res.BaseType)
		r.fillStructMembers(res, resolvedTypeID, t)
	case opTypeBool:
		res.ConcreteType = assetkind.ResourceConcreteBool
	case opTypeInt:
		if t.signedness == 1 {
			res.ConcreteType = assetkind.ResourceConcreteInt
		} else {
			res.ConcreteType = assetkind.ResourceConcreteUInt
		}
		res.VecSize, res.Cols = 1, 1
	case opTypeFloat:
		if t.width == 64 {
			res.ConcreteType = assetkind.ResourceConcreteDouble
		} else {
			res.ConcreteType = assetkind.ResourceConcreteFloat
		}
		res.VecSize, res.Cols = 1, 1
	case opTypeVector:
		res.VecSize = t.count
		res.Cols = 1
		switch t.count {
		case 2:
			res.ConcreteType = assetkind.ResourceConcreteVec2
		case 3:
			res.ConcreteType = assetkind.ResourceConcreteVec3
		case 4:
			res.ConcreteType = assetkind.ResourceConcreteVec4
		default:
			res.ConcreteType = assetkind.ResourceConcreteUnknown
		}
	case opTypeMatrix:
		colType := r.types[t.compType]
		rows := uint32(0)
		if colType != nil {
			rows = colType.count
		}
		res.Cols = t.count
		res.VecSize = rows
		switch {
		case rows == 3 && t.count == 3:
			res.ConcreteType = assetkind.ResourceConcreteMat3x3
		case rows == 3 && t.count == 4, rows == 4 && t.count == 3:
			res.ConcreteType = assetkind.ResourceConcreteMat4x3
		case rows == 4 && t.count == 4:
			res.ConcreteType = assetkind.ResourceConcreteMat4x4
		default:
			res.ConcreteType = assetkind.ResourceConcreteUnknown
		}
	case opTypeImage:
		res.HasImage = true
		res.BaseType = assetkind.ResourceBaseSeparateImage
		switch t.dim {
		case 0:
			res.Image.Dim = assetkind.ImageDim1D
		case 1:
			res.Image.Dim = assetkind.ImageDim2D
		case 2:
			res.Image.Dim = assetkind.ImageDim3D
		case 3:
			res.Image.Dim = assetkind.ImageDimCube
		}
		res.ConcreteType = assetkind.ResourceConcreteUnknown
	case opTypeSampledImage:
		res.HasImage = true
		res.BaseType = assetkind.ResourceBaseSampledImage
		res.ConcreteType = assetkind.ResourceConcreteUnknown
	case opTypeSampler:
		res.BaseType = assetkind.ResourceBaseSeparateSampler
		res.ConcreteType = assetkind.ResourceConcreteUnknown
	default:
		res.ConcreteType = assetkind.ResourceConcreteUnknown
	}
}

func resolveAggregateBase(current assetkind.ResourceBaseType) assetkind.ResourceBaseType {
	if current == assetkind.ResourceBaseSampledImage {
		return assetkind.ResourceBaseUniformBuffer
	}
	return current
}

func (r *reflector) fillStructMembers(res *assetkind.ShaderResource, structTypeID uint32, t *spirvType) {
	names := r.memberNames[structTypeID]
	offsets := r.memberOffsets[structTypeID]
	for i, memberTypeID := range t.memberTypes {
		mi := uint32(i)
		member := &assetkind.ShaderResource{}
		if names != nil {
			member.Name = names[mi]
		}
		if offsets != nil {
			member.Offset = offsets[mi]
		}
		r.fillConcrete(member, memberTypeID)
		res.Members = append(res.Members, member)
	}
}
