package edgeset

import (
	"fmt"

	"github.com/chazu/edgeset/pkg/pointset"
)

// Vertex is the handle type of the underlying point set.
type Vertex = pointset.Vertex

// InvalidVertex is the sentinel for "no vertex".
const InvalidVertex = pointset.InvalidVertex

// Halfedge is an index into the halfedge columns.
type Halfedge int32

// InvalidHalfedge is the sentinel for "no halfedge".
const InvalidHalfedge Halfedge = -1

// IsValid reports whether h is not the sentinel. It does not check range.
func (h Halfedge) IsValid() bool { return h >= 0 }

// Idx returns the row index.
func (h Halfedge) Idx() int { return int(h) }

// Opposite returns the other direction of the same edge.
func (h Halfedge) Opposite() Halfedge { return h ^ 1 }

// Edge returns the edge h belongs to.
func (h Halfedge) Edge() Edge { return Edge(h >> 1) }

func (h Halfedge) String() string {
	if !h.IsValid() {
		return "h-"
	}
	return fmt.Sprintf("h%d", int32(h))
}

// Edge is an index into the edge columns.
type Edge int32

// InvalidEdge is the sentinel for "no edge".
const InvalidEdge Edge = -1

// IsValid reports whether e is not the sentinel. It does not check range.
func (e Edge) IsValid() bool { return e >= 0 }

// Idx returns the row index.
func (e Edge) Idx() int { return int(e) }

// Halfedge returns direction i (0 or 1) of e.
func (e Edge) Halfedge(i int) Halfedge { return Halfedge(int32(e)<<1 | int32(i&1)) }

func (e Edge) String() string {
	if !e.IsValid() {
		return "e-"
	}
	return fmt.Sprintf("e%d", int32(e))
}

// vertexConnectivity is the row type of the v:connectivity column.
type vertexConnectivity struct {
	halfedge Halfedge
}

// halfedgeConnectivity is the row type of the h:connectivity column.
type halfedgeConnectivity struct {
	vertex Vertex
	next   Halfedge
}
