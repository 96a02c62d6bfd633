// Package spatial indexes the live vertices of an edge set in a 3D R-tree.
//
// An Index is a snapshot: it must be rebuilt after the edge set moves,
// adds or collects vertices.
package spatial

import (
	"slices"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"
	"github.com/pkg/errors"

	"github.com/chazu/edgeset/pkg/edgeset"
)

// pointTol is the half extent of the box stored for each vertex.
const pointTol = 1e-9

// node branching factors
const (
	minChildren = 25
	maxChildren = 50
)

type entry struct {
	v edgeset.Vertex
	p v3.Vec
}

func (e *entry) Bounds() rtreego.Rect {
	return toPoint(e.p).ToRect(pointTol)
}

func toPoint(p v3.Vec) rtreego.Point {
	return rtreego.Point{p.X, p.Y, p.Z}
}

// Index answers proximity queries over vertex positions.
type Index struct {
	tree *rtreego.Rtree
}

// New bulk-loads the live vertices of es.
func New(es *edgeset.EdgeSet) *Index {
	var objs []rtreego.Spatial
	for v := range es.Vertices() {
		objs = append(objs, &entry{v: v, p: es.Position(v)})
	}
	return &Index{tree: rtreego.NewTree(3, minChildren, maxChildren, objs...)}
}

// Len returns the number of indexed vertices.
func (ix *Index) Len() int { return ix.tree.Size() }

// Nearest returns the vertex closest to p. ok is false on an empty index.
func (ix *Index) Nearest(p v3.Vec) (v edgeset.Vertex, ok bool) {
	if ix.tree.Size() == 0 {
		return edgeset.InvalidVertex, false
	}
	obj := ix.tree.NearestNeighbor(toPoint(p))
	if obj == nil {
		return edgeset.InvalidVertex, false
	}
	return obj.(*entry).v, true
}

// Within returns the vertices inside the box [min, max], sorted by handle.
func (ix *Index) Within(min, max v3.Vec) ([]edgeset.Vertex, error) {
	if min.X > max.X || min.Y > max.Y || min.Z > max.Z {
		return nil, errors.Errorf("spatial: empty box %v..%v", min, max)
	}
	// widen by pointTol so boxes touching a vertex find it
	lo := toPoint(min.Sub(v3.Vec{X: pointTol, Y: pointTol, Z: pointTol}))
	hi := toPoint(max.Add(v3.Vec{X: pointTol, Y: pointTol, Z: pointTol}))
	rect, err := rtreego.NewRectFromPoints(lo, hi)
	if err != nil {
		return nil, errors.Wrap(err, "spatial: query box")
	}

	var out []edgeset.Vertex
	for _, obj := range ix.tree.SearchIntersect(rect) {
		e := obj.(*entry)
		if inside(e.p, min, max) {
			out = append(out, e.v)
		}
	}
	slices.Sort(out)
	return out, nil
}

func inside(p, min, max v3.Vec) bool {
	return p.X >= min.X && p.X <= max.X &&
		p.Y >= min.Y && p.Y <= max.Y &&
		p.Z >= min.Z && p.Z <= max.Z
}
