// Package kernel defines the geometry kernel used to seed edge sets from
// solids. Implementations (sdfx) tessellate solids into triangle soups,
// which Wireframe welds and imports into an edgeset.EdgeSet.
package kernel

import v3 "github.com/deadsy/sdfx/vec/v3"

// Solid is an opaque handle to a geometry kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max v3.Vec)
}

// Kernel builds solids and tessellates them.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) (Solid, error)
	Sphere(radius float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)

	Union(a, b Solid) Solid
	Translate(s Solid, x, y, z float64) Solid

	// ToMesh tessellates s into a triangle soup.
	ToMesh(s Solid) (*Mesh, error)
}
