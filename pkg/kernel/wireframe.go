package kernel

import (
	"math"
	"slices"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/samber/lo"

	"github.com/chazu/edgeset/pkg/edgeset"
)

// ErrBadMesh is returned when a mesh's index array does not describe
// whole triangles or points past its vertex array.
var ErrBadMesh = errors.New("malformed mesh")

// Import summarizes a Wireframe call.
type Import struct {
	// Vertices maps each mesh vertex to its welded edge set vertex.
	Vertices []edgeset.Vertex
	// Edges is the number of edges inserted.
	Edges int
	// Faces is the number of triangles whose halfedges were marked interior.
	Faces int
	// Degenerate is the number of triangles skipped because two of their
	// corners welded together.
	Degenerate int
}

// Wireframe adds the edges of every triangle in m to es. Vertices closer
// than tol (per coordinate, after rounding to a tol grid) are welded into
// one edge set vertex; tol <= 0 welds only exact duplicates. A triangle
// whose three halfedges end up forming a next cycle of es has them marked
// interior so that normals can be computed. For consistently wound
// manifold input every triangle becomes a face.
func Wireframe(m *Mesh, es *edgeset.EdgeSet, tol float64) (*Import, error) {
	if len(m.Vertices)%3 != 0 || len(m.Indices)%3 != 0 {
		return nil, errors.Wrapf(ErrBadMesh, "%d coordinates, %d indices", len(m.Vertices), len(m.Indices))
	}
	for _, i := range m.Indices {
		if int(i) >= m.VertexCount() {
			return nil, errors.Wrapf(ErrBadMesh, "index %d past %d vertices", i, m.VertexCount())
		}
	}

	imp := &Import{Vertices: weld(m, es, tol)}

	triangles := lo.Chunk(m.Indices, 3)
	corners := make([][3]edgeset.Vertex, 0, len(triangles))
	for _, tri := range triangles {
		c := [3]edgeset.Vertex{imp.Vertices[tri[0]], imp.Vertices[tri[1]], imp.Vertices[tri[2]]}
		if c[0] == c[1] || c[1] == c[2] || c[2] == c[0] {
			imp.Degenerate++
			continue
		}
		corners = append(corners, c)

		for j := range 3 {
			a, b := c[j], c[(j+1)%3]
			e, err := es.FindEdge(a, b)
			if err != nil {
				return nil, err
			}
			if e.IsValid() {
				continue
			}
			if _, err := es.InsertEdge(a, b); err != nil {
				return nil, err
			}
			imp.Edges++
		}
	}

	if err := orderFans(es, corners); err != nil {
		return nil, err
	}

	for _, c := range corners {
		h, err := es.FindHalfedge(c[0], c[1])
		if err != nil {
			return nil, err
		}
		n := es.Next(h)
		if es.Target(n) != c[2] || es.Target(es.Next(n)) != c[0] || es.Next(es.Next(n)) != h {
			continue
		}
		es.SetInterior(h, true)
		es.SetInterior(n, true)
		es.SetInterior(es.Next(n), true)
		imp.Faces++
	}

	klog.V(2).Infof("kernel: imported %d triangles as %d edges, %d faces, %d degenerate",
		m.TriangleCount(), imp.Edges, imp.Faces, imp.Degenerate)
	return imp, nil
}

type weldKey [3]int64

// weld adds one edge set vertex per distinct grid cell of m's vertices.
func weld(m *Mesh, es *edgeset.EdgeSet, tol float64) []edgeset.Vertex {
	out := make([]edgeset.Vertex, m.VertexCount())
	seen := make(map[weldKey]edgeset.Vertex)
	for i := range out {
		p := m.Vertex(i)
		k := keyOf(p, tol)
		v, ok := seen[k]
		if !ok {
			v = es.AddVertex(p)
			seen[k] = v
		}
		out[i] = v
	}
	return out
}

func keyOf(p v3.Vec, tol float64) weldKey {
	if tol <= 0 {
		return weldKey{
			int64(math.Float64bits(p.X)),
			int64(math.Float64bits(p.Y)),
			int64(math.Float64bits(p.Z)),
		}
	}
	return weldKey{
		int64(math.Round(p.X / tol)),
		int64(math.Round(p.Y / tol)),
		int64(math.Round(p.Z / tol)),
	}
}

type directed [2]edgeset.Vertex

// orderFans relinks the fan of every triangle corner so that next follows
// the triangles: for a triangle (a, b, c) next(a->b) becomes b->c. A
// directed edge claimed by two triangles counts as open boundary. A vertex
// whose triangles close into several cycles keeps its insertion order.
func orderFans(es *edgeset.EdgeSet, corners [][3]edgeset.Vertex) error {
	// third corner of the triangle left of each directed edge
	third := make(map[directed]edgeset.Vertex, 3*len(corners))
	for _, c := range corners {
		for j := range 3 {
			k := directed{c[j], c[(j+1)%3]}
			if _, dup := third[k]; dup {
				third[k] = edgeset.InvalidVertex
				continue
			}
			third[k] = c[(j+2)%3]
		}
	}

	done := make(map[edgeset.Vertex]bool)
	kept := 0
	for _, c := range corners {
		for _, v := range c {
			if done[v] {
				continue
			}
			done[v] = true
			order := fanOrder(es, v, third)
			if order == nil {
				kept++
				continue
			}
			if err := es.ReorderFan(v, order); err != nil {
				return err
			}
		}
	}
	if kept > 0 {
		klog.V(2).Infof("kernel: %d vertices have several closed fans, left in insertion order", kept)
	}
	return nil
}

// fanOrder returns the clockwise order of the halfedges leaving v implied
// by the triangles, or nil if they do not form one fan. Runs of triangles
// separated by open boundary are chained in their current fan order.
func fanOrder(es *edgeset.EdgeSet, v edgeset.Vertex, third map[directed]edgeset.Vertex) []edgeset.Halfedge {
	fan := slices.Collect(es.HalfedgesAround(v))
	if len(fan) < 2 {
		return fan
	}
	toward := make(map[edgeset.Vertex]edgeset.Halfedge, len(fan))
	for _, h := range fan {
		toward[es.Target(h)] = h
	}

	// cw(v->x) = next(x->v) = v->y for the triangle (x, v, y)
	succ := make(map[edgeset.Halfedge]edgeset.Halfedge, len(fan))
	hasPred := make(map[edgeset.Halfedge]bool, len(fan))
	for _, h := range fan {
		y, ok := third[directed{es.Target(h), v}]
		if !ok || !y.IsValid() {
			continue
		}
		n, ok := toward[y]
		if !ok || hasPred[n] {
			return nil
		}
		succ[h] = n
		hasPred[n] = true
	}

	order := make([]edgeset.Halfedge, 0, len(fan))
	seen := make(map[edgeset.Halfedge]bool, len(fan))
	walk := func(h edgeset.Halfedge) {
		for !seen[h] {
			seen[h] = true
			order = append(order, h)
			n, ok := succ[h]
			if !ok {
				return
			}
			h = n
		}
	}
	for _, h := range fan {
		if !hasPred[h] {
			walk(h)
		}
	}
	if len(order) == 0 {
		// closed fan, all one cycle if it is manifold
		walk(fan[0])
	}
	if len(order) != len(fan) {
		return nil
	}
	return order
}
