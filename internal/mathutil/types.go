package mathutil

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

// A quaternion, used to represent rotational orientation.
type Quaternion Vec4

// a 4x4 matrix, typically used to represent object transformations.
type Mat4 struct {
	// The matrix elements
	Data [16]float32
}

// Represents the extents of a 2d object.
type Extents2D struct {
	// The minimum extents of the object.
	Min Vec2
	// The maximum extents of the object.
	Max Vec2
}

// Represents the extents of a 3d object.
type Extents3D struct {
	// The minimum extents of the object.
	Min Vec3
	// The maximum extents of the object.
	Max Vec3
}

// Represents a single vertex in 3D space.
type Vertex3D struct {
	// The position of the vertex
	Position Vec3
	// The normal of the vertex.
	Normal Vec3
	// The texture coordinate of the vertex.
	Texcoord Vec2
	// The colour of the vertex.
	Colour Vec4
	// The tangent of the vertex.
	Tangent Vec3
}

// Represents a single vertex in 2D space.
type Vertex2D struct {
	// The position of the vertex
	Position Vec2
	// The texture coordinate of the vertex.
	Texcoord Vec2
}
