package scene

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spaghettifunk/forge/internal/corelog"
	"github.com/spaghettifunk/forge/internal/mathutil"
	"github.com/spaghettifunk/forge/internal/pathutil"
)

// ObjImporter is a Wavefront OBJ adapter generalized from gazed-vu's
// src/vu/load/obj.go: that loader builds flat float32 buffers for a single
// GL mesh; this one builds the same per-vertex combination-indexing scheme
// (position/texcoord/normal triplet identity) but targets the shared Graph
// model and tolerates multiple `o`-delimited objects, each becoming one
// Mesh plus one Node under the scene root.
type ObjImporter struct{}

type objVertex struct{ x, y, z float32 }
type objUV struct{ u, v float32 }

type objObject struct {
	name  string
	lines []string
}

func (ObjImporter) Import(path pathutil.Path) (*Graph, error) {
	f, err := os.Open(path.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", corelog.ErrInputIO, err)
	}
	defer f.Close()

	objects := splitObjects(f, path.Stem())
	if len(objects) == 0 {
		return nil, fmt.Errorf("%w: no objects in %s", corelog.ErrDecode, path)
	}

	graph := &Graph{
		Root:      &Node{Name: path.Stem(), Transform: mathutil.NewMat4Identity()},
		Materials: []*Material{{Name: "default", DiffuseColor: mathutil.Vec4{X: 1, Y: 1, Z: 1, W: 1}, Opacity: 1}},
	}

	for _, obj := range objects {
		mesh, err := obj2Mesh(obj)
		if err != nil {
			return nil, err
		}
		idx := len(graph.Meshes)
		graph.Meshes = append(graph.Meshes, mesh)
		graph.Root.Children = append(graph.Root.Children, &Node{
			Name:        obj.name,
			Transform:   mathutil.NewMat4Identity(),
			MeshIndices: []int{idx},
			Parent:      graph.Root,
		})
	}
	return graph, nil
}

// splitObjects groups the file's lines by `o` marker, matching
// gazed-vu's obj2Strings; a file with no `o` lines is treated as one
// object named after the file stem.
func splitObjects(r *os.File, fallbackName string) []*objObject {
	var objs []*objObject
	name := fallbackName
	curr := &objObject{name: name}
	objs = append(objs, curr)

	scanner := bufio.NewScanner(r)
	seenExplicitObject := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		tokens := strings.Fields(line)
		if len(tokens) == 2 && tokens[0] == "o" {
			name = strings.TrimSpace(tokens[1])
			curr = &objObject{name: name}
			if !seenExplicitObject {
				objs = objs[:0]
			}
			seenExplicitObject = true
			objs = append(objs, curr)
			continue
		}
		curr.lines = append(curr.lines, line)
	}
	return objs
}

// obj2Mesh turns one object's lines into a Graph Mesh, following the same
// vertex/texcoord/normal combination-indexing scheme as gazed-vu's
// obj2Data + obj2MshData, adapted to populate Positions/Normals/UVs/Indices
// directly instead of flat float32 slices.
func obj2Mesh(obj *objObject) (*Mesh, error) {
	var verts []objVertex
	var normals []objVertex
	var uvs []objUV
	var faces [][3]string

	for _, line := range obj.lines {
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		switch tokens[0] {
		case "v":
			var x, y, z float32
			if _, err := fmt.Sscanf(line, "v %f %f %f", &x, &y, &z); err != nil {
				return nil, fmt.Errorf("%w: bad vertex %q", corelog.ErrDecode, line)
			}
			verts = append(verts, objVertex{x, y, z})
		case "vn":
			var x, y, z float32
			if _, err := fmt.Sscanf(line, "vn %f %f %f", &x, &y, &z); err != nil {
				return nil, fmt.Errorf("%w: bad normal %q", corelog.ErrDecode, line)
			}
			normals = append(normals, objVertex{x, y, z})
		case "vt":
			var u, v float32
			if _, err := fmt.Sscanf(line, "vt %f %f", &u, &v); err != nil {
				return nil, fmt.Errorf("%w: bad texcoord %q", corelog.ErrDecode, line)
			}
			uvs = append(uvs, objUV{u, 1 - v})
		case "f":
			var s1, s2, s3 string
			if _, err := fmt.Sscanf(line, "f %s %s %s", &s1, &s2, &s3); err != nil {
				return nil, fmt.Errorf("%w: bad face %q", corelog.ErrDecode, line)
			}
			faces = append(faces, [3]string{s1, s2, s3})
		}
	}

	mesh := &Mesh{Name: obj.name, Primitive: PrimitiveTriangle, MaterialIndex: 0}
	vmap := make(map[string]uint32)

	for _, face := range faces {
		for _, token := range face {
			v, t, n, err := parseFaceIndex(token)
			if err != nil {
				return nil, err
			}
			key := fmt.Sprintf("%d/%d/%d", v, t, n)
			idx, ok := vmap[key]
			if !ok {
				idx = uint32(len(mesh.Positions))
				vmap[key] = idx
				if v < 0 || v >= len(verts) {
					return nil, fmt.Errorf("%w: vertex index out of range in %q", corelog.ErrDecode, obj.name)
				}
				mesh.Positions = append(mesh.Positions, mathutil.Vec3{X: verts[v].x, Y: verts[v].y, Z: verts[v].z})
				if n >= 0 && n < len(normals) {
					mesh.Normals = append(mesh.Normals, mathutil.Vec3{X: normals[n].x, Y: normals[n].y, Z: normals[n].z})
				}
				if t >= 0 && t < len(uvs) {
					mesh.UVs = append(mesh.UVs, mathutil.Vec2{X: uvs[t].u, Y: uvs[t].v})
				}
			}
			mesh.Indices = append(mesh.Indices, idx)
		}
	}

	if len(mesh.Positions) == 0 || len(mesh.Indices) == 0 {
		return nil, fmt.Errorf("%w: %q has no usable vertex/face data", corelog.ErrDecode, obj.name)
	}
	return mesh, nil
}

// parseFaceIndex turns one "v/t/n" or "v//n" face token into zero-based
// indices, mirroring gazed-vu's parseFaceIndex.
func parseFaceIndex(token string) (v, t, n int, err error) {
	v, t, n = -1, -1, -1
	if _, err = fmt.Sscanf(token, "%d//%d", &v, &n); err != nil {
		t = -1
		if _, err = fmt.Sscanf(token, "%d/%d/%d", &v, &t, &n); err != nil {
			if _, err = fmt.Sscanf(token, "%d", &v); err != nil {
				return -1, -1, -1, fmt.Errorf("%w: bad face index %q", corelog.ErrDecode, token)
			}
			err = nil
		}
	}
	v--
	if t > 0 {
		t--
	} else {
		t = -1
	}
	if n > 0 {
		n--
	} else {
		n = -1
	}
	return v, t, n, nil
}
