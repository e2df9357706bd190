// Package scenepipeline implements the Mesh, Skeleton and Animation
// Pipelines of spec.md §4.5, all three consuming a single scene.Graph
// loaded once by the Scene Loader.
package scenepipeline

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/forge/internal/assetkind"
	"github.com/spaghettifunk/forge/internal/corelog"
	"github.com/spaghettifunk/forge/internal/mathutil"
	"github.com/spaghettifunk/forge/internal/scene"
)

// stripAssimpSuffix removes an `_$Assimp...` style suffix and any trailing
// file-extension dot from a node/scene name (spec.md §4.5, Mesh Pipeline
// first bullet).
func stripAssimpSuffix(name string) string {
	if i := strings.Index(name, "_$Assimp"); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[:i]
	}
	return name
}

// MeshGroup is one mesh-producing unit of the scene: either the whole scene
// (root has meshes, or single_mesh requested) or one top-level node
// recursively containing meshes (spec.md §4.5).
type MeshGroup struct {
	Name        string
	Node        *scene.Node
	MeshIndices []int
}

// CollectMeshGroups determines the mesh-producing node groups the Mesh and
// Skeleton Pipelines both iterate over, per spec.md §4.5's first bullet.
func CollectMeshGroups(graph *scene.Graph, sceneName string, singleMesh bool) []MeshGroup {
	if graph.Root == nil {
		return nil
	}
	if singleMesh || len(graph.Root.MeshIndices) > 0 {
		return []MeshGroup{{
			Name:        stripAssimpSuffix(sceneName),
			Node:        graph.Root,
			MeshIndices: scene.CollectMeshIndices(graph.Root),
		}}
	}
	var groups []MeshGroup
	for _, child := range graph.Root.Children {
		if !scene.NodeHasMeshes(child) {
			continue
		}
		groups = append(groups, MeshGroup{
			Name:        stripAssimpSuffix(child.Name),
			Node:        child,
			MeshIndices: scene.CollectMeshIndices(child),
		})
	}
	return groups
}

// BuildMeshes runs the Mesh Pipeline over graph: if the root has meshes or
// singleMesh is set, the whole scene produces one mesh named sceneName;
// otherwise each top-level child recursively containing meshes becomes one
// mesh (spec.md §4.5).
func BuildMeshes(graph *scene.Graph, sceneName string, singleMesh bool) ([]*assetkind.Mesh, error) {
	groups := CollectMeshGroups(graph, sceneName, singleMesh)
	if groups == nil {
		return nil, fmt.Errorf("%w: empty scene graph", corelog.ErrDecode)
	}
	var out []*assetkind.Mesh
	for _, g := range groups {
		mesh, err := buildOneMesh(graph, g.Name, g.MeshIndices)
		if err != nil {
			return nil, err
		}
		out = append(out, mesh)
	}
	return out, nil
}

func buildOneMesh(graph *scene.Graph, name string, meshIndices []int) (*assetkind.Mesh, error) {
	out := &assetkind.Mesh{Name: assetkind.Name(name).Clamp(), ID: assetkind.HashName(assetkind.Name(name))}
	for _, mi := range meshIndices {
		if mi < 0 || mi >= len(graph.Meshes) {
			continue
		}
		sub, err := buildSubMesh(graph.Meshes[mi])
		if err != nil {
			return nil, err
		}
		out.SubMeshes = append(out.SubMeshes, sub)
	}
	if len(out.SubMeshes) == 0 {
		return nil, fmt.Errorf("%w: mesh %q has no usable sub-meshes", corelog.ErrDecode, name)
	}
	out.ComputeAggregate()
	return out, nil
}

func buildSubMesh(src *scene.Mesh) (*assetkind.SubMesh, error) {
	primitive, err := convertPrimitive(src.Primitive)
	if err != nil {
		return nil, err
	}
	if len(src.Positions) == 0 {
		return nil, fmt.Errorf("%w: sub-mesh %q has no positions", corelog.ErrDecode, src.Name)
	}

	sub := &assetkind.SubMesh{
		VertexConfig:  assetkind.VertexConfigBase,
		Positions:     src.Positions,
		Indices:       src.Indices,
		PrimitiveType: primitive,
		MaterialIndex: src.MaterialIndex,
		RootTransform: mathutil.NewMat4Identity(),
	}
	if len(src.Normals) > 0 {
		sub.Normals = src.Normals
	}
	if len(src.Colors) > 0 {
		sub.VertexConfig |= assetkind.VertexConfigColor
		sub.Colors = src.Colors
	}
	if len(src.UVs) > 0 {
		sub.VertexConfig |= assetkind.VertexConfigTextured
		sub.UVs = src.UVs
	}
	if len(src.Tangents) > 0 {
		sub.Tangents = src.Tangents
	}
	if len(src.BoneWeights) > 0 {
		sub.VertexConfig |= assetkind.VertexConfigBones
		bw, err := convertBoneWeights(src.BoneWeights)
		if err != nil {
			return nil, fmt.Errorf("sub-mesh %q: %w", src.Name, err)
		}
		sub.BoneWeights = bw
	}

	sub.Box = computeAABB(sub.Positions)
	sub.Sphere = computeBoundingSphere(sub.Positions)
	return sub, nil
}

func convertPrimitive(p scene.PrimitiveType) (assetkind.PrimitiveType, error) {
	switch p {
	case scene.PrimitivePoint:
		return assetkind.PrimitiveTypePoint, nil
	case scene.PrimitiveLine:
		return assetkind.PrimitiveTypeLine, nil
	case scene.PrimitiveTriangle:
		return assetkind.PrimitiveTypeTriangle, nil
	default:
		return 0, fmt.Errorf("%w: primitive type %v is not {Point, Line, Triangle}", corelog.ErrInvalidCommand, p)
	}
}

// convertBoneWeights enforces the ≤4-bone-per-vertex invariant (spec.md
// §4.5: "a fifth entry is a hard error").
func convertBoneWeights(src [][]scene.BoneWeight) ([][4]assetkind.BoneWeight, error) {
	out := make([][4]assetkind.BoneWeight, len(src))
	for vi, weights := range src {
		if len(weights) > 4 {
			return nil, fmt.Errorf("%w: vertex %d has %d bone weights, max is 4", corelog.ErrInvalidCommand, vi, len(weights))
		}
		for i, w := range weights {
			out[vi][i] = assetkind.BoneWeight{BoneIndex: uint32(w.BoneIndex), Weight: w.Weight}
		}
	}
	return out, nil
}

func computeAABB(positions []mathutil.Vec3) assetkind.AABB {
	box := assetkind.AABB{Min: positions[0], Max: positions[0]}
	for _, p := range positions[1:] {
		box = box.Union(assetkind.AABB{Min: p, Max: p})
	}
	return box
}

// computeBoundingSphere implements the Ritter-style 2-pass heuristic
// (spec.md §4.5): pick any point A, find B maximising |A-·|², find C
// maximising |B-·|², centre (B+C)/2, radius |B-C|/2.
func computeBoundingSphere(positions []mathutil.Vec3) assetkind.Sphere {
	a := positions[0]
	b := farthestFrom(positions, a)
	c := farthestFrom(positions, b)
	center := b.Add(c).MulScalar(0.5)
	radius := b.Distance(c) / 2
	return assetkind.Sphere{Center: center, Radius: radius}
}

func farthestFrom(positions []mathutil.Vec3, from mathutil.Vec3) mathutil.Vec3 {
	best := positions[0]
	bestDistSq := float32(-1)
	for _, p := range positions {
		d := p.Sub(from)
		distSq := d.X*d.X + d.Y*d.Y + d.Z*d.Z
		if distSq > bestDistSq {
			bestDistSq = distSq
			best = p
		}
	}
	return best
}
