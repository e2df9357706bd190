package scene

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spaghettifunk/forge/internal/corelog"
	"github.com/spaghettifunk/forge/internal/mathutil"
	"github.com/spaghettifunk/forge/internal/pathutil"
)

// GLTFImporter is a minimal glTF 2.0 JSON importer: no third-party glTF
// library exists anywhere in the retrieval pack (see DESIGN.md), so this
// hand-rolls just enough of the format (stdlib encoding/json) to exercise
// skeletons and animations end-to-end: embedded (data-URI) buffers only,
// node hierarchy, one mesh primitive per mesh, skins, and TRS animation
// channels. Binary .glb containers and external .bin files are rejected.
type GLTFImporter struct{}

type gltfDocument struct {
	Scenes      []struct{ Nodes []int } `json:"scenes"`
	Scene       int                     `json:"scene"`
	Nodes       []gltfNode              `json:"nodes"`
	Meshes      []gltfMesh              `json:"meshes"`
	Materials   []gltfMaterial          `json:"materials"`
	Accessors   []gltfAccessor          `json:"accessors"`
	BufferViews []gltfBufferView        `json:"bufferViews"`
	Buffers     []gltfBuffer            `json:"buffers"`
	Skins       []gltfSkin              `json:"skins"`
	Animations  []gltfAnimation         `json:"animations"`
}

type gltfNode struct {
	Name        string    `json:"name"`
	Children    []int     `json:"children"`
	Mesh        *int      `json:"mesh"`
	Skin        *int      `json:"skin"`
	Translation []float32 `json:"translation"`
	Rotation    []float32 `json:"rotation"`
	Scale       []float32 `json:"scale"`
}

type gltfMesh struct {
	Primitives []struct {
		Attributes map[string]int `json:"attributes"`
		Indices    *int           `json:"indices"`
		Material   *int           `json:"material"`
	} `json:"primitives"`
	Name string `json:"name"`
}

type gltfMaterial struct {
	Name                 string `json:"name"`
	PbrMetallicRoughness struct {
		BaseColorFactor []float32 `json:"baseColorFactor"`
		MetallicFactor  *float32  `json:"metallicFactor"`
		RoughnessFactor *float32  `json:"roughnessFactor"`
		BaseColorTexture *struct {
			Index int `json:"index"`
		} `json:"baseColorTexture"`
	} `json:"pbrMetallicRoughness"`
	NormalTexture *struct {
		Index int `json:"index"`
	} `json:"normalTexture"`
	DoubleSided bool `json:"doubleSided"`
}

type gltfAccessor struct {
	BufferView    *int   `json:"bufferView"`
	ComponentType int    `json:"componentType"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
}

type gltfBufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
}

type gltfBuffer struct {
	URI        string `json:"uri"`
	ByteLength int    `json:"byteLength"`
}

type gltfSkin struct {
	Joints              []int `json:"joints"`
	InverseBindMatrices *int  `json:"inverseBindMatrices"`
}

type gltfAnimation struct {
	Name     string `json:"name"`
	Channels []struct {
		Sampler int `json:"sampler"`
		Target  struct {
			Node *int   `json:"node"`
			Path string `json:"path"`
		} `json:"target"`
	} `json:"channels"`
	Samplers []struct {
		Input  int    `json:"input"`
		Output int    `json:"output"`
		Interpolation string `json:"interpolation"`
	} `json:"samplers"`
}

func (GLTFImporter) Import(path pathutil.Path) (*Graph, error) {
	if strings.EqualFold(path.Ext(), ".glb") {
		return nil, fmt.Errorf("%w: binary .glb containers are not supported", ErrUnsupportedFlavour)
	}
	raw, err := os.ReadFile(path.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", corelog.ErrInputIO, err)
	}
	var doc gltfDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", corelog.ErrDecode, err)
	}

	buffers := make([][]byte, len(doc.Buffers))
	for i, b := range doc.Buffers {
		data, err := decodeDataURI(b.URI)
		if err != nil {
			return nil, fmt.Errorf("%w: gltf buffer %d: %v", corelog.ErrDecode, i, err)
		}
		buffers[i] = data
	}

	g := &gltfGraphBuilder{doc: &doc, buffers: buffers}
	return g.build()
}

func decodeDataURI(uri string) ([]byte, error) {
	const marker = ";base64,"
	i := strings.Index(uri, marker)
	if i < 0 {
		return nil, fmt.Errorf("only embedded base64 data-URI buffers are supported, got %q", uri)
	}
	return base64.StdEncoding.DecodeString(uri[i+len(marker):])
}

type gltfGraphBuilder struct {
	doc     *gltfDocument
	buffers [][]byte
	nodes   []*Node
}

func (g *gltfGraphBuilder) build() (*Graph, error) {
	graph := &Graph{Root: &Node{Name: "root", Transform: mathutil.NewMat4Identity()}}

	for _, mat := range g.doc.Materials {
		sm := &Material{Name: mat.Name, IsGLTF: true, Opacity: 1, Textures: map[TextureSlot]string{}}
		if len(mat.PbrMetallicRoughness.BaseColorFactor) == 4 {
			f := mat.PbrMetallicRoughness.BaseColorFactor
			sm.DiffuseColor = mathutil.Vec4{X: f[0], Y: f[1], Z: f[2], W: f[3]}
			sm.Opacity = f[3]
		} else {
			sm.DiffuseColor = mathutil.Vec4{X: 1, Y: 1, Z: 1, W: 1}
		}
		sm.MetallicFactor = 1
		sm.RoughnessFactor = 1
		if mat.PbrMetallicRoughness.MetallicFactor != nil {
			sm.MetallicFactor = *mat.PbrMetallicRoughness.MetallicFactor
		}
		if mat.PbrMetallicRoughness.RoughnessFactor != nil {
			sm.RoughnessFactor = *mat.PbrMetallicRoughness.RoughnessFactor
		}
		sm.TwoSided = mat.DoubleSided
		graph.Materials = append(graph.Materials, sm)
	}
	if len(graph.Materials) == 0 {
		graph.Materials = append(graph.Materials, &Material{Name: "default", IsGLTF: true, Opacity: 1, DiffuseColor: mathutil.Vec4{X: 1, Y: 1, Z: 1, W: 1}})
	}

	for _, m := range g.doc.Meshes {
		mesh, err := g.buildMesh(m)
		if err != nil {
			return nil, err
		}
		graph.Meshes = append(graph.Meshes, mesh)
	}

	g.nodes = make([]*Node, len(g.doc.Nodes))
	for i, n := range g.doc.Nodes {
		node := &Node{Name: n.Name, Transform: nodeTransform(n)}
		if n.Mesh != nil {
			node.MeshIndices = []int{*n.Mesh}
		}
		g.nodes[i] = node
	}
	roots := g.sceneRoots()
	for _, ni := range roots {
		g.linkChildren(ni)
		g.nodes[ni].Parent = graph.Root
		graph.Root.Children = append(graph.Root.Children, g.nodes[ni])
	}

	for si, skin := range g.doc.Skins {
		bones, err := g.buildSkinBones(skin)
		if err != nil {
			return nil, fmt.Errorf("%w: skin %d: %v", corelog.ErrDecode, si, err)
		}
		for mi := range graph.Meshes {
			// Attach every skin's bones to meshes referenced by a node carrying
			// that skin -- minimal glTF doesn't need a tighter join for this
			// importer's purposes (single-skeleton scenes, scenario S5).
			for _, n := range g.doc.Nodes {
				if n.Skin != nil && *n.Skin == si && n.Mesh != nil && *n.Mesh == mi {
					graph.Meshes[mi].Bones = bones
				}
			}
		}
	}

	for _, anim := range g.doc.Animations {
		sa, err := g.buildAnimation(anim)
		if err != nil {
			return nil, err
		}
		graph.Animations = append(graph.Animations, sa)
	}

	return graph, nil
}

func (g *gltfGraphBuilder) sceneRoots() []int {
	if len(g.doc.Scenes) > 0 {
		return g.doc.Scenes[g.doc.Scene].Nodes
	}
	referenced := map[int]bool{}
	for _, n := range g.doc.Nodes {
		for _, c := range n.Children {
			referenced[c] = true
		}
	}
	var roots []int
	for i := range g.doc.Nodes {
		if !referenced[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (g *gltfGraphBuilder) linkChildren(ni int) {
	node := g.nodes[ni]
	for _, ci := range g.doc.Nodes[ni].Children {
		child := g.nodes[ci]
		child.Parent = node
		node.Children = append(node.Children, child)
		g.linkChildren(ci)
	}
}

func nodeTransform(n gltfNode) mathutil.Mat4 {
	t := mathutil.Vec3{}
	if len(n.Translation) == 3 {
		t = mathutil.Vec3{X: n.Translation[0], Y: n.Translation[1], Z: n.Translation[2]}
	}
	s := mathutil.Vec3{X: 1, Y: 1, Z: 1}
	if len(n.Scale) == 3 {
		s = mathutil.Vec3{X: n.Scale[0], Y: n.Scale[1], Z: n.Scale[2]}
	}
	m := mathutil.NewMat4Identity()
	m.Data[0], m.Data[5], m.Data[10] = s.X, s.Y, s.Z
	m.Data[12], m.Data[13], m.Data[14] = t.X, t.Y, t.Z
	return m
}

func (g *gltfGraphBuilder) buildMesh(m gltfMesh) (*Mesh, error) {
	if len(m.Primitives) == 0 {
		return &Mesh{Name: m.Name, Primitive: PrimitiveTriangle}, nil
	}
	prim := m.Primitives[0]
	mesh := &Mesh{Name: m.Name, Primitive: PrimitiveTriangle}
	if prim.Material != nil {
		mesh.MaterialIndex = *prim.Material
	}

	if posIdx, ok := prim.Attributes["POSITION"]; ok {
		vals, err := g.readFloatAccessor(posIdx, 3)
		if err != nil {
			return nil, err
		}
		for i := 0; i+2 < len(vals); i += 3 {
			mesh.Positions = append(mesh.Positions, mathutil.Vec3{X: vals[i], Y: vals[i+1], Z: vals[i+2]})
		}
	} else {
		return nil, fmt.Errorf("%w: gltf mesh %q has no POSITION attribute", corelog.ErrDecode, m.Name)
	}
	if nIdx, ok := prim.Attributes["NORMAL"]; ok {
		vals, err := g.readFloatAccessor(nIdx, 3)
		if err != nil {
			return nil, err
		}
		for i := 0; i+2 < len(vals); i += 3 {
			mesh.Normals = append(mesh.Normals, mathutil.Vec3{X: vals[i], Y: vals[i+1], Z: vals[i+2]})
		}
	}
	if tIdx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		vals, err := g.readFloatAccessor(tIdx, 2)
		if err != nil {
			return nil, err
		}
		for i := 0; i+1 < len(vals); i += 2 {
			mesh.UVs = append(mesh.UVs, mathutil.Vec2{X: vals[i], Y: vals[i+1]})
		}
	}

	if prim.Indices != nil {
		idx, err := g.readIntAccessor(*prim.Indices)
		if err != nil {
			return nil, err
		}
		mesh.Indices = idx
	} else {
		for i := range mesh.Positions {
			mesh.Indices = append(mesh.Indices, uint32(i))
		}
	}
	return mesh, nil
}

func (g *gltfGraphBuilder) buildSkinBones(skin gltfSkin) ([]Bone, error) {
	var inverseBind []float32
	if skin.InverseBindMatrices != nil {
		vals, err := g.readFloatAccessor(*skin.InverseBindMatrices, 16)
		if err != nil {
			return nil, err
		}
		inverseBind = vals
	}
	bones := make([]Bone, len(skin.Joints))
	for i, nodeIdx := range skin.Joints {
		bones[i].Name = g.doc.Nodes[nodeIdx].Name
		if len(inverseBind) >= (i+1)*16 {
			copy(bones[i].OffsetMatrix.Data[:], inverseBind[i*16:(i+1)*16])
		} else {
			bones[i].OffsetMatrix = mathutil.NewMat4Identity()
		}
	}
	return bones, nil
}

func (g *gltfGraphBuilder) buildAnimation(anim gltfAnimation) (*Animation, error) {
	sa := &Animation{Name: anim.Name, TicksPerSecond: 1}
	channelsByBone := map[string]*AnimationChannel{}

	for _, ch := range anim.Channels {
		if ch.Target.Node == nil {
			continue
		}
		boneName := g.doc.Nodes[*ch.Target.Node].Name
		sampler := anim.Samplers[ch.Sampler]

		times, err := g.readFloatAccessor(sampler.Input, 1)
		if err != nil {
			return nil, err
		}
		c, ok := channelsByBone[boneName]
		if !ok {
			c = &AnimationChannel{BoneName: boneName}
			channelsByBone[boneName] = c
			sa.Channels = append(sa.Channels, c)
		}

		switch ch.Target.Path {
		case "translation":
			vals, err := g.readFloatAccessor(sampler.Output, 3)
			if err != nil {
				return nil, err
			}
			c.PositionTimes = times
			for i := 0; i+2 < len(vals); i += 3 {
				c.Positions = append(c.Positions, mathutil.Vec3{X: vals[i], Y: vals[i+1], Z: vals[i+2]})
			}
		case "rotation":
			vals, err := g.readFloatAccessor(sampler.Output, 4)
			if err != nil {
				return nil, err
			}
			c.RotationTimes = times
			for i := 0; i+3 < len(vals); i += 4 {
				c.Rotations = append(c.Rotations, mathutil.Quaternion{X: vals[i], Y: vals[i+1], Z: vals[i+2], W: vals[i+3]})
			}
		case "scale":
			vals, err := g.readFloatAccessor(sampler.Output, 3)
			if err != nil {
				return nil, err
			}
			c.ScaleTimes = times
			for i := 0; i+2 < len(vals); i += 3 {
				c.Scales = append(c.Scales, mathutil.Vec3{X: vals[i], Y: vals[i+1], Z: vals[i+2]})
			}
		}
		for _, t := range times {
			if t > sa.Duration {
				sa.Duration = t
			}
		}
	}
	return sa, nil
}

const (
	gltfComponentFloat  = 5126
	gltfComponentUShort = 5123
	gltfComponentUInt   = 5125
	gltfComponentUByte  = 5121
)

func (g *gltfGraphBuilder) readFloatAccessor(accessorIdx, componentsPerElement int) ([]float32, error) {
	acc := g.doc.Accessors[accessorIdx]
	if acc.ComponentType != gltfComponentFloat {
		return nil, fmt.Errorf("%w: accessor %d is not float32", corelog.ErrDecode, accessorIdx)
	}
	raw, err := g.accessorBytes(acc)
	if err != nil {
		return nil, err
	}
	n := acc.Count * componentsPerElement
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
		out[i] = math.Float32frombits(bits)
	}
	return out, nil
}

func (g *gltfGraphBuilder) readIntAccessor(accessorIdx int) ([]uint32, error) {
	acc := g.doc.Accessors[accessorIdx]
	raw, err := g.accessorBytes(acc)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, acc.Count)
	switch acc.ComponentType {
	case gltfComponentUShort:
		for i := 0; i < acc.Count; i++ {
			out[i] = uint32(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
		}
	case gltfComponentUInt:
		for i := 0; i < acc.Count; i++ {
			out[i] = binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
		}
	case gltfComponentUByte:
		for i := 0; i < acc.Count; i++ {
			out[i] = uint32(raw[i])
		}
	default:
		return nil, fmt.Errorf("%w: unsupported index component type %d", corelog.ErrDecode, acc.ComponentType)
	}
	return out, nil
}

func (g *gltfGraphBuilder) accessorBytes(acc gltfAccessor) ([]byte, error) {
	if acc.BufferView == nil {
		return nil, fmt.Errorf("%w: sparse/zero-filled accessors are not supported", corelog.ErrDecode)
	}
	bv := g.doc.BufferViews[*acc.BufferView]
	if bv.Buffer >= len(g.buffers) {
		return nil, fmt.Errorf("%w: buffer view references missing buffer", corelog.ErrDecode)
	}
	buf := g.buffers[bv.Buffer]
	start := bv.ByteOffset
	end := start + bv.ByteLength
	if end > len(buf) {
		return nil, fmt.Errorf("%w: buffer view out of range", corelog.ErrDecode)
	}
	return buf[start:end], nil
}
