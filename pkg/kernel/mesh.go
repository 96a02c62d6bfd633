package kernel

import v3 "github.com/deadsy/sdfx/vec/v3"

// Mesh is a triangle soup. Vertices holds 3 floats per vertex (x,y,z) and
// Indices holds 3 vertex indices per triangle. Coincident corners of
// neighboring triangles may be stored as separate vertices.
type Mesh struct {
	Vertices []float64 `json:"vertices"`
	Indices  []uint32  `json:"indices"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns the position of vertex i.
func (m *Mesh) Vertex(i int) v3.Vec {
	return v3.Vec{X: m.Vertices[3*i], Y: m.Vertices[3*i+1], Z: m.Vertices[3*i+2]}
}

// AddVertex appends p and returns its index.
func (m *Mesh) AddVertex(p v3.Vec) uint32 {
	m.Vertices = append(m.Vertices, p.X, p.Y, p.Z)
	return uint32(m.VertexCount() - 1)
}

// AddTriangle appends a triangle with three fresh corners.
func (m *Mesh) AddTriangle(a, b, c v3.Vec) {
	m.Indices = append(m.Indices, m.AddVertex(a), m.AddVertex(b), m.AddVertex(c))
}
