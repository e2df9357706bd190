package assetkind

import (
	"github.com/spaghettifunk/forge/internal/binarycodec"
	"github.com/spaghettifunk/forge/internal/mathutil"
)

// VertexConfig is a bitset over the optional vertex streams a SubMesh may
// carry (spec.md §3: "vertex_config — a bitset over {Base, Color, Textured,
// Bones}").
type VertexConfig uint8

const (
	VertexConfigBase     VertexConfig = 1 << 0
	VertexConfigColor    VertexConfig = 1 << 1
	VertexConfigTextured VertexConfig = 1 << 2
	VertexConfigBones    VertexConfig = 1 << 3
)

func (c VertexConfig) Has(flag VertexConfig) bool { return c&flag != 0 }

type PrimitiveType int

const (
	PrimitiveTypePoint PrimitiveType = iota
	PrimitiveTypeLine
	PrimitiveTypeTriangle
	PrimitiveTypeLineStrip
	PrimitiveTypeTriangleStrip
)

// AABB is the axis-aligned bounding box shape carried on every sub-mesh and
// mesh. The general-purpose shape library (Ray/AABB/Sphere/Frustum) is out
// of core scope (spec.md §1); this is the minimal struct + the handful of
// combine operations the Mesh Pipeline itself is specified to compute
// (spec.md §4.5).
type AABB struct {
	Min mathutil.Vec3
	Max mathutil.Vec3
}

func (b AABB) WriteTo(w *binarycodec.Writer) { writeVec3(w, b.Min); writeVec3(w, b.Max) }
func (b *AABB) ReadFrom(r *binarycodec.Reader) { b.Min = readVec3(r); b.Max = readVec3(r) }

// Union returns the smallest AABB enclosing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: mathutil.NewVec3(minf(a.Min.X, b.Min.X), minf(a.Min.Y, b.Min.Y), minf(a.Min.Z, b.Min.Z)),
		Max: mathutil.NewVec3(maxf(a.Max.X, b.Max.X), maxf(a.Max.Y, b.Max.Y), maxf(a.Max.Z, b.Max.Z)),
	}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Sphere is the minimal bounding-sphere shape (see AABB's doc comment).
type Sphere struct {
	Center mathutil.Vec3
	Radius float32
}

func (s Sphere) WriteTo(w *binarycodec.Writer) { writeVec3(w, s.Center); w.WriteF32(s.Radius) }
func (s *Sphere) ReadFrom(r *binarycodec.Reader) { s.Center = readVec3(r); s.Radius = r.ReadF32() }

// Combine returns a sphere enclosing both a and b (spec.md §4.5: "if one
// encloses the other keep it; else new centre on the line between centres,
// new radius (r1+r2+d)/2").
func (a Sphere) Combine(b Sphere) Sphere {
	d := a.Center.Distance(b.Center)
	if d+b.Radius <= a.Radius {
		return a
	}
	if d+a.Radius <= b.Radius {
		return b
	}
	newRadius := (a.Radius + b.Radius + d) / 2
	if d == 0 {
		return Sphere{Center: a.Center, Radius: newRadius}
	}
	t := (newRadius - a.Radius) / d
	dir := b.Center.Sub(a.Center)
	center := a.Center.Add(dir.MulScalar(t))
	return Sphere{Center: center, Radius: newRadius}
}

func writeVec3(w *binarycodec.Writer, v mathutil.Vec3) {
	w.WriteF32(v.X)
	w.WriteF32(v.Y)
	w.WriteF32(v.Z)
}
func readVec3(r *binarycodec.Reader) mathutil.Vec3 {
	return mathutil.NewVec3(r.ReadF32(), r.ReadF32(), r.ReadF32())
}
func writeVec2(w *binarycodec.Writer, v mathutil.Vec2) { w.WriteF32(v.X); w.WriteF32(v.Y) }
func readVec2(r *binarycodec.Reader) mathutil.Vec2     { return mathutil.Vec2{X: r.ReadF32(), Y: r.ReadF32()} }
func writeVec4(w *binarycodec.Writer, v mathutil.Vec4) {
	w.WriteF32(v.X)
	w.WriteF32(v.Y)
	w.WriteF32(v.Z)
	w.WriteF32(v.W)
}
func readVec4(r *binarycodec.Reader) mathutil.Vec4 {
	return mathutil.Vec4{X: r.ReadF32(), Y: r.ReadF32(), Z: r.ReadF32(), W: r.ReadF32()}
}
func writeMat4(w *binarycodec.Writer, m mathutil.Mat4) {
	for _, f := range m.Data {
		w.WriteF32(f)
	}
}
func readMat4(r *binarycodec.Reader) mathutil.Mat4 {
	var m mathutil.Mat4
	for i := range m.Data {
		m.Data[i] = r.ReadF32()
	}
	return m
}

// BoneWeight is one (bone_index, weight) pair; at most 4 are kept per
// vertex (spec.md §4.5).
type BoneWeight struct {
	BoneIndex uint32
	Weight    float32
}

type SubMesh struct {
	VertexConfig   VertexConfig
	Positions      []mathutil.Vec3
	Normals        []mathutil.Vec3
	Colors         []mathutil.Vec4
	UVs            []mathutil.Vec2
	Tangents       []mathutil.Vec3
	BoneWeights    [][4]BoneWeight // one slot per vertex, only valid when VertexConfigBones is set
	Indices        []uint32
	PrimitiveType  PrimitiveType
	Box            AABB
	Sphere         Sphere
	RootTransform  mathutil.Mat4
	MaterialIndex  int
}

func (m *SubMesh) WriteTo(w *binarycodec.Writer) {
	w.WriteU8(uint8(m.VertexConfig))
	binarycodec.WriteSlice(w, m.Positions, writeVec3)
	binarycodec.WriteSlice(w, m.Normals, writeVec3)
	binarycodec.WriteSlice(w, m.Colors, writeVec4)
	binarycodec.WriteSlice(w, m.UVs, writeVec2)
	binarycodec.WriteSlice(w, m.Tangents, writeVec3)
	binarycodec.WriteSlice(w, m.BoneWeights, func(w *binarycodec.Writer, bw [4]BoneWeight) {
		for _, b := range bw {
			w.WriteU32(b.BoneIndex)
			w.WriteF32(b.Weight)
		}
	})
	binarycodec.WriteSlice(w, m.Indices, func(w *binarycodec.Writer, i uint32) { w.WriteU32(i) })
	w.WriteI32(int32(m.PrimitiveType))
	m.Box.WriteTo(w)
	m.Sphere.WriteTo(w)
	writeMat4(w, m.RootTransform)
	w.WriteI32(int32(m.MaterialIndex))
}

func (m *SubMesh) ReadFrom(r *binarycodec.Reader) {
	m.VertexConfig = VertexConfig(r.ReadU8())
	m.Positions = binarycodec.ReadSlice(r, readVec3)
	m.Normals = binarycodec.ReadSlice(r, readVec3)
	m.Colors = binarycodec.ReadSlice(r, readVec4)
	m.UVs = binarycodec.ReadSlice(r, readVec2)
	m.Tangents = binarycodec.ReadSlice(r, readVec3)
	m.BoneWeights = binarycodec.ReadSlice(r, func(r *binarycodec.Reader) [4]BoneWeight {
		var bw [4]BoneWeight
		for i := range bw {
			bw[i] = BoneWeight{BoneIndex: r.ReadU32(), Weight: r.ReadF32()}
		}
		return bw
	})
	m.Indices = binarycodec.ReadSlice(r, func(r *binarycodec.Reader) uint32 { return r.ReadU32() })
	m.PrimitiveType = PrimitiveType(r.ReadI32())
	m.Box.ReadFrom(r)
	m.Sphere.ReadFrom(r)
	m.RootTransform = readMat4(r)
	m.MaterialIndex = int(r.ReadI32())
}

type Mesh struct {
	Name      Name
	ID        ID
	SubMeshes []*SubMesh
	Box       AABB
	Sphere    Sphere
}

func (m *Mesh) WriteTo(w *binarycodec.Writer) {
	w.WriteString(string(m.Name))
	w.WriteU64(uint64(m.ID))
	binarycodec.WriteSlice(w, m.SubMeshes, func(w *binarycodec.Writer, s *SubMesh) { s.WriteTo(w) })
	m.Box.WriteTo(w)
	m.Sphere.WriteTo(w)
}

func (m *Mesh) ReadFrom(r *binarycodec.Reader) {
	m.Name = Name(r.ReadString())
	m.ID = ID(r.ReadU64())
	m.SubMeshes = binarycodec.ReadSlice(r, func(r *binarycodec.Reader) *SubMesh {
		s := &SubMesh{}
		s.ReadFrom(r)
		return s
	})
	m.Box.ReadFrom(r)
	m.Sphere.ReadFrom(r)
}

func (m *Mesh) AssetName() Name           { return m.Name }
func (m *Mesh) AssetID() ID                { return m.ID }
func (*Mesh) DefaultFileExtension() string { return "sme" }
func (*Mesh) CacheName() string            { return "meshes" }

// ComputeAggregate recomputes Box/Sphere as the union/combine of every
// sub-mesh's shapes (spec.md §4.5, invariant 8: "mesh bounds monotonicity").
func (m *Mesh) ComputeAggregate() {
	if len(m.SubMeshes) == 0 {
		return
	}
	box := m.SubMeshes[0].Box
	sph := m.SubMeshes[0].Sphere
	for _, s := range m.SubMeshes[1:] {
		box = box.Union(s.Box)
		sph = sph.Combine(s.Sphere)
	}
	m.Box = box
	m.Sphere = sph
}

const InvalidBoneIndex uint32 = 0xFFFFFFFF

type Bone struct {
	Parent    uint32 // InvalidBoneIndex == root
	Transform mathutil.Mat4
	Children  []uint32
}

func (b *Bone) WriteTo(w *binarycodec.Writer) {
	w.WriteU32(b.Parent)
	writeMat4(w, b.Transform)
	binarycodec.WriteSlice(w, b.Children, func(w *binarycodec.Writer, c uint32) { w.WriteU32(c) })
}

func (b *Bone) ReadFrom(r *binarycodec.Reader) {
	b.Parent = r.ReadU32()
	b.Transform = readMat4(r)
	b.Children = binarycodec.ReadSlice(r, func(r *binarycodec.Reader) uint32 { return r.ReadU32() })
}

type Skeleton struct {
	Name      Name
	ID        ID
	BoneNames map[string]uint32
	Bones     []*Bone
}

func (s *Skeleton) WriteTo(w *binarycodec.Writer) {
	w.WriteString(string(s.Name))
	w.WriteU64(uint64(s.ID))
	binarycodec.WriteMap(w, s.BoneNames,
		func(w *binarycodec.Writer, k string) { w.WriteString(k) },
		func(w *binarycodec.Writer, v uint32) { w.WriteU32(v) })
	binarycodec.WriteSlice(w, s.Bones, func(w *binarycodec.Writer, b *Bone) { b.WriteTo(w) })
}

func (s *Skeleton) ReadFrom(r *binarycodec.Reader) {
	s.Name = Name(r.ReadString())
	s.ID = ID(r.ReadU64())
	s.BoneNames = binarycodec.ReadMap(r,
		func(r *binarycodec.Reader) string { return r.ReadString() },
		func(r *binarycodec.Reader) uint32 { return r.ReadU32() })
	s.Bones = binarycodec.ReadSlice(r, func(r *binarycodec.Reader) *Bone {
		b := &Bone{}
		b.ReadFrom(r)
		return b
	})
}

func (s *Skeleton) AssetName() Name           { return s.Name }
func (s *Skeleton) AssetID() ID                { return s.ID }
func (*Skeleton) DefaultFileExtension() string { return "ssk" }
func (*Skeleton) CacheName() string            { return "skeletons" }
