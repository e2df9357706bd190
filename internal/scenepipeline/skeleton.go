package scenepipeline

import (
	"github.com/spaghettifunk/forge/internal/assetkind"
	"github.com/spaghettifunk/forge/internal/mathutil"
	"github.com/spaghettifunk/forge/internal/scene"
)

// BuildSkeletonsForGraph runs the Skeleton Pipeline once per mesh group
// (spec.md §4.5: "per mesh-node"), returning one *assetkind.Skeleton (or
// nil) per group in the same order CollectMeshGroups produced them.
func BuildSkeletonsForGraph(graph *scene.Graph, groups []MeshGroup) []*assetkind.Skeleton {
	out := make([]*assetkind.Skeleton, len(groups))
	for i, g := range groups {
		meshes := make([]*scene.Mesh, 0, len(g.MeshIndices))
		for _, mi := range g.MeshIndices {
			if mi >= 0 && mi < len(graph.Meshes) {
				meshes = append(meshes, graph.Meshes[mi])
			}
		}
		out[i] = BuildSkeletons(g.Name, meshes, graph.Root)
	}
	return out
}

// BuildSkeletons runs the Skeleton Pipeline for a whole mesh group (the
// same set of mesh-producing nodes the Mesh Pipeline collapsed into one
// Mesh asset): bone names are pooled across every sub-mesh in the group,
// then parents are resolved by walking the full scene node tree
// (sceneRoot), since a bone's node may live outside the mesh node's own
// subtree. A group with no bones at all is discarded (nil).
func BuildSkeletons(name string, meshes []*scene.Mesh, sceneRoot *scene.Node) *assetkind.Skeleton {
	var allBones []scene.Bone
	seen := map[string]bool{}
	for _, m := range meshes {
		for _, b := range m.Bones {
			if seen[b.Name] {
				continue
			}
			seen[b.Name] = true
			allBones = append(allBones, b)
		}
	}
	if len(allBones) == 0 {
		return nil
	}

	boneNames := make(map[string]uint32, len(allBones))
	bones := make([]*assetkind.Bone, len(allBones))
	for i, b := range allBones {
		boneNames[b.Name] = uint32(i)
		bones[i] = &assetkind.Bone{
			Parent:    assetkind.InvalidBoneIndex,
			Transform: transposeMat4(b.OffsetMatrix),
		}
	}

	nodesByName := indexNodesByName(sceneRoot)
	for i, b := range allBones {
		boneNode, ok := nodesByName[b.Name]
		if !ok {
			continue
		}
		parentIdx, ok := findParentBone(boneNode.Parent, boneNames)
		if !ok {
			continue
		}
		bones[i].Parent = parentIdx
		bones[parentIdx].Children = append(bones[parentIdx].Children, uint32(i))
	}

	return &assetkind.Skeleton{
		Name:      assetkind.Name(name).Clamp(),
		ID:        assetkind.HashName(assetkind.Name(name)),
		BoneNames: boneNames,
		Bones:     bones,
	}
}

// findParentBone walks up from n until a node's name appears in boneNames.
func findParentBone(n *scene.Node, boneNames map[string]uint32) (uint32, bool) {
	for cur := n; cur != nil; cur = cur.Parent {
		if idx, ok := boneNames[cur.Name]; ok {
			return idx, true
		}
	}
	return 0, false
}

func indexNodesByName(root *scene.Node) map[string]*scene.Node {
	out := map[string]*scene.Node{}
	var walk func(n *scene.Node)
	walk = func(n *scene.Node) {
		if n == nil {
			return
		}
		out[n.Name] = n
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return out
}

func transposeMat4(m mathutil.Mat4) mathutil.Mat4 {
	var out mathutil.Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out.Data[row*4+col] = m.Data[col*4+row]
		}
	}
	return out
}
