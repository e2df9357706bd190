// Package scene implements the Scene Loader narrow reader interface spec.md
// §4.5 asks for: "an adapter over a general-purpose importer configured for
// normals, tangents, joined vertices, limited bone weights, triangulation,
// redundant-material removal, primitive-type split, cache-locality
// optimisation" feeding the Mesh/Skeleton/Animation/Material Pipelines from
// a single shared in-memory Graph.
package scene

import "github.com/spaghettifunk/forge/internal/mathutil"

// Flavour is the detected source file format (spec.md §4.5).
type Flavour int

const (
	FlavourUnknown Flavour = iota
	FlavourOBJ
	FlavourFBX
	FlavourGLTF
)

// PrimitiveType mirrors assetkind.PrimitiveType for the subset the importers
// emit before the Mesh Pipeline classifies it properly.
type PrimitiveType int

const (
	PrimitivePoint PrimitiveType = iota
	PrimitiveLine
	PrimitiveTriangle
)

// BoneWeight is one (bone_index, weight) pair attached to a vertex.
type BoneWeight struct {
	BoneIndex int
	Weight    float32
}

// Mesh is one raw imported mesh, prior to Mesh Pipeline classification.
type Mesh struct {
	Name          string
	Positions     []mathutil.Vec3
	Normals       []mathutil.Vec3
	Colors        []mathutil.Vec4
	UVs           []mathutil.Vec2
	Tangents      []mathutil.Vec3
	BoneWeights   [][]BoneWeight // up to 4 per vertex; 5th entry is a hard error upstream
	Indices       []uint32
	Primitive     PrimitiveType
	MaterialIndex int
	Bones         []Bone // bones that influence this mesh, in the owning skeleton's order
}

// Bone is one joint referenced by a mesh's skinning data.
type Bone struct {
	Name          string
	OffsetMatrix  mathutil.Mat4 // maps mesh-space to bone-space at bind time
}

// Node is one entry in the scene graph tree.
type Node struct {
	Name        string
	Transform   mathutil.Mat4
	MeshIndices []int
	Children    []*Node
	Parent      *Node
}

// Material is one raw imported material, prior to Material Pipeline uniform
// seeding (spec.md §4.6).
type Material struct {
	Name string

	DiffuseColor  mathutil.Vec4
	AmbientColor  mathutil.Vec4
	SpecularColor mathutil.Vec4
	EmissiveColor mathutil.Vec4
	Opacity       float32
	Shininess     float32
	Wireframe     bool
	TwoSided      bool

	IsGLTF            bool
	MetallicFactor    float32
	RoughnessFactor   float32

	// Textures maps an assimp-style texture usage (TextureSlotDiffuse, ...)
	// to the source-relative file path (spec.md §4.6 step 5).
	Textures map[TextureSlot]string
}

// TextureSlot is the assimp texture-type subset the Material Pipeline maps
// onto the engine's named slots (spec.md §4.6 step 5).
type TextureSlot int

const (
	TextureSlotDiffuse TextureSlot = iota
	TextureSlotNormals
	TextureSlotSpecular
	TextureSlotShininess
)

// AnimationChannel is one bone's independently-sampled position/rotation/
// scale key streams (spec.md §4.5 "Animation Pipeline").
type AnimationChannel struct {
	BoneName      string
	PositionTimes []float32
	Positions     []mathutil.Vec3
	RotationTimes []float32
	Rotations     []mathutil.Quaternion
	ScaleTimes    []float32
	Scales        []mathutil.Vec3
}

// Animation is one raw imported animation clip.
type Animation struct {
	Name           string
	Duration       float32
	TicksPerSecond float32
	Channels       []*AnimationChannel
}

// Graph is the whole imported scene: node tree plus flat mesh/material/
// animation tables referenced by index from nodes and sub-meshes.
type Graph struct {
	Flavour    Flavour
	Root       *Node
	Meshes     []*Mesh
	Materials  []*Material
	Animations []*Animation
}

// NodeHasMeshes reports whether n or any descendant references a mesh,
// matching spec.md §4.5/§4.7's "recursively containing meshes" test.
func NodeHasMeshes(n *Node) bool {
	if n == nil {
		return false
	}
	if len(n.MeshIndices) > 0 {
		return true
	}
	for _, c := range n.Children {
		if NodeHasMeshes(c) {
			return true
		}
	}
	return false
}

// CollectMeshIndices gathers every mesh index referenced anywhere under n,
// in depth-first order.
func CollectMeshIndices(n *Node) []int {
	if n == nil {
		return nil
	}
	out := append([]int(nil), n.MeshIndices...)
	for _, c := range n.Children {
		out = append(out, CollectMeshIndices(c)...)
	}
	return out
}
