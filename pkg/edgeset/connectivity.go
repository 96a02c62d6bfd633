package edgeset

import (
	"math"
	"slices"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/samber/lo"

	"github.com/chazu/edgeset/pkg/property"
)

// minNormal is the smallest positive normal float64.
const minNormal = 0x1p-1022

// FindHalfedge returns the halfedge from start to end, or InvalidHalfedge
// if the two vertices are not connected.
func (es *EdgeSet) FindHalfedge(start, end Vertex) (Halfedge, error) {
	if err := es.checkVertex(start); err != nil {
		return InvalidHalfedge, err
	}
	if err := es.checkVertex(end); err != nil {
		return InvalidHalfedge, err
	}
	for h := range es.HalfedgesAround(start) {
		if es.Target(h) == end {
			return h, nil
		}
	}
	return InvalidHalfedge, nil
}

// FindEdge returns the edge between a and b, or InvalidEdge.
func (es *EdgeSet) FindEdge(a, b Vertex) (Edge, error) {
	h, err := es.FindHalfedge(a, b)
	if err != nil || !h.IsValid() {
		return InvalidEdge, err
	}
	return h.Edge(), nil
}

// Valence returns the number of edges incident to v.
func (es *EdgeSet) Valence(v Vertex) int {
	n := 0
	for range es.HalfedgesAround(v) {
		n++
	}
	return n
}

// EdgeLength returns the distance between the endpoints of e.
func (es *EdgeSet) EdgeLength(e Edge) float64 {
	p0 := es.Position(es.EdgeVertex(e, 0))
	p1 := es.Position(es.EdgeVertex(e, 1))
	return p0.Sub(p1).Length()
}

// ComputeVertexNormal estimates the normal at v by summing the corner
// normals of its non-boundary halfedges, each weighted by the corner angle.
// Degenerate corners are skipped. The zero vector is returned when nothing
// contributes.
func (es *EdgeSet) ComputeVertexNormal(v Vertex) v3.Vec {
	var nn v3.Vec
	if es.IsIsolated(v) {
		return nn
	}
	p0 := es.Position(v)

	for h := range es.HalfedgesAround(v) {
		if es.IsBoundary(h) {
			continue
		}
		prev := es.Prev(h)
		if !prev.IsValid() {
			continue
		}
		p1 := es.Position(es.Target(h)).Sub(p0)
		p2 := es.Position(es.Origin(prev)).Sub(p0)

		denom := math.Sqrt(p1.Dot(p1) * p2.Dot(p2))
		if denom <= minNormal {
			continue
		}
		cosine := math.Max(-1, math.Min(1, p1.Dot(p2)/denom))
		angle := math.Acos(cosine)

		n := p1.Cross(p2)
		length := n.Length()
		if length <= minNormal {
			continue
		}
		nn = nn.Add(n.MulScalar(angle / length))
	}

	if length := nn.Length(); length > minNormal {
		nn = nn.DivScalar(length)
	}
	return nn
}

// UpdateVertexNormals stores ComputeVertexNormal for every live vertex in
// the v:normal column and returns that column.
func (es *EdgeSet) UpdateVertexNormals() property.Property[v3.Vec] {
	normals, _ := property.GetOrAdd(es.VertexContainer(), vertexNormalProperty, v3.Vec{})
	for v := range es.Vertices() {
		normals.Set(v.Idx(), es.ComputeVertexNormal(v))
	}
	return normals
}

// InsertVertex splits the edge of h0 by the isolated vertex v and returns
// the new halfedge pointing from the old target of h0 to v.
//
//	before:  v0 ---h0--> v2        after:  v0 -h0-> v -h1-> v2
//	         v0 <--o0--- v2                v0 <-o0- v <-o1- v2
func (es *EdgeSet) InsertVertex(h0 Halfedge, v Vertex) (Halfedge, error) {
	if err := es.checkHalfedge(h0); err != nil {
		return InvalidHalfedge, err
	}
	if err := es.checkVertex(v); err != nil {
		return InvalidHalfedge, err
	}
	if !es.IsIsolated(v) {
		return InvalidHalfedge, errors.Wrapf(ErrPrecondition, "insert vertex: %v is not isolated", v)
	}

	h2 := es.Next(h0)
	o0 := h0.Opposite()
	o2 := es.Prev(o0)
	v2 := es.Target(h0)
	if !o2.IsValid() {
		return InvalidHalfedge, errors.Wrapf(ErrBrokenFan, "insert vertex: around %v", v2)
	}

	h1 := es.newEdge(v, v2)
	o1 := h1.Opposite()

	// When v2 is a dead end its fan is just o0, which now becomes o1.
	if h2 == o0 {
		h2 = o1
	}
	if o2 == h0 {
		o2 = h1
	}

	es.setNext(h1, h2)
	es.setNext(h0, h1)
	es.setVertex(h0, v)

	es.setNext(o1, o0)
	es.setNext(o2, o1)

	es.setHalfedge(v2, o1)
	es.setHalfedge(v, h1)

	// the new halfedges continue the face cycles of h0 and o0
	if es.hinterior.IsValid() {
		es.hinterior.Set(h1.Idx(), es.hinterior.Get(h0.Idx()))
		es.hinterior.Set(o1.Idx(), es.hinterior.Get(o0.Idx()))
	}

	return o1, nil
}

// InsertEdge connects v0 and v1 and returns the halfedge from v0 to v1.
// Each new halfedge is placed in its origin's fan just before the previous
// outgoing halfedge. It fails with ErrPrecondition if the vertices are
// already connected or equal.
//
//	v0 ---h0--> v1
//	v0 <--h1--- v1
func (es *EdgeSet) InsertEdge(v0, v1 Vertex) (Halfedge, error) {
	existing, err := es.FindHalfedge(v0, v1)
	if err != nil {
		return InvalidHalfedge, err
	}
	if v0 == v1 {
		return InvalidHalfedge, errors.Wrapf(ErrPrecondition, "insert edge: loop at %v", v0)
	}
	if existing.IsValid() {
		return InvalidHalfedge, errors.Wrapf(ErrPrecondition, "insert edge: %v-%v already exists as %v",
			v0, v1, existing.Edge())
	}

	he0 := es.OutgoingHalfedge(v0)
	he1 := es.OutgoingHalfedge(v1)

	// Both predecessors are looked up before any link changes.
	p0, p1 := InvalidHalfedge, InvalidHalfedge
	if he0.IsValid() {
		if p0 = es.Prev(he0); !p0.IsValid() {
			return InvalidHalfedge, errors.Wrapf(ErrBrokenFan, "insert edge: around %v", v0)
		}
	}
	if he1.IsValid() {
		if p1 = es.Prev(he1); !p1.IsValid() {
			return InvalidHalfedge, errors.Wrapf(ErrBrokenFan, "insert edge: around %v", v1)
		}
	}

	if he0.IsValid() {
		es.clearFace(p0)
	}
	if he1.IsValid() {
		es.clearFace(p1)
	}

	h0 := es.newEdge(v0, v1)
	h1 := h0.Opposite()

	if he1.IsValid() {
		es.setNext(h0, he1)
		es.setNext(p1, h1)
	} else {
		es.setNext(h0, h1)
	}

	if he0.IsValid() {
		es.setNext(h1, he0)
		es.setNext(p0, h0)
	} else {
		es.setNext(h1, h0)
	}

	es.setHalfedge(v0, h0)
	es.setHalfedge(v1, h1)

	return h0, nil
}

// DeleteVertex deletes every edge incident to v and then v itself.
// Deleting a deleted vertex is a no-op.
func (es *EdgeSet) DeleteVertex(v Vertex) error {
	if !v.IsValid() || v.Idx() >= es.VerticesSize() {
		return errors.Wrapf(ErrInvalidHandle, "vertex %v", v)
	}
	if es.IsDeleted(v) {
		return nil
	}

	edges := lo.Map(slices.Collect(es.HalfedgesAround(v)), func(h Halfedge, _ int) Edge {
		return h.Edge()
	})
	for _, e := range edges {
		if err := es.DeleteEdge(e); err != nil {
			return err
		}
	}

	es.removeVertex(v)
	return nil
}

// DeleteEdge unlinks e from both endpoint fans and tombstones it. An
// endpoint left without edges is deleted too unless the set keeps isolated
// vertices. Deleting a deleted edge is a no-op.
func (es *EdgeSet) DeleteEdge(e Edge) error {
	if err := es.checkEdge(e); err != nil {
		return err
	}
	if es.IsEdgeDeleted(e) {
		return nil
	}

	h0 := e.Halfedge(0)
	v0 := es.Target(h0)
	next0 := es.Next(h0)
	prev0 := es.Prev(h0)

	h1 := e.Halfedge(1)
	v1 := es.Target(h1)
	next1 := es.Next(h1)
	prev1 := es.Prev(h1)

	if !prev0.IsValid() || !prev1.IsValid() {
		return errors.Wrapf(ErrBrokenFan, "delete edge %v", e)
	}

	es.clearFace(h0)
	es.clearFace(h1)

	es.setNext(prev0, next1)
	es.setNext(prev1, next0)

	if es.OutgoingHalfedge(v0) == h1 {
		if next0 == h1 {
			es.strand(v0)
		} else {
			es.setHalfedge(v0, next0)
		}
	}

	if es.OutgoingHalfedge(v1) == h0 {
		if next1 == h0 {
			es.strand(v1)
		} else {
			es.setHalfedge(v1, next1)
		}
	}

	es.markEdgeRemoved(e)
	return nil
}

// ReorderFan relinks the halfedges leaving v so that CWRotated visits them
// in the given order, which must hold each halfedge of v's fan exactly
// once. Face cycles passing through v change, so their interior marks are
// cleared.
func (es *EdgeSet) ReorderFan(v Vertex, order []Halfedge) error {
	if err := es.checkVertex(v); err != nil {
		return err
	}
	fan := slices.Collect(es.HalfedgesAround(v))
	if len(order) != len(fan) {
		return errors.Wrapf(ErrPrecondition, "reorder fan of %v: %d halfedges given, fan has %d",
			v, len(order), len(fan))
	}
	pending := make(map[Halfedge]bool, len(fan))
	for _, h := range fan {
		pending[h] = true
	}
	for _, h := range order {
		if !pending[h] {
			return errors.Wrapf(ErrPrecondition, "reorder fan of %v: %v is repeated or not in the fan", v, h)
		}
		delete(pending, h)
	}

	for _, h := range fan {
		es.clearFace(h.Opposite())
	}
	for i, h := range order {
		es.setNext(h.Opposite(), order[(i+1)%len(order)])
	}
	return nil
}

// clearFace unmarks the next cycle through h.
func (es *EdgeSet) clearFace(h Halfedge) {
	if !es.hinterior.IsValid() {
		return
	}
	start := h
	for range es.HalfedgesSize() {
		es.hinterior.Set(h.Idx(), false)
		h = es.Next(h)
		if h == start || !h.IsValid() {
			return
		}
	}
}

// strand handles a vertex that just lost its last edge.
func (es *EdgeSet) strand(v Vertex) {
	es.setHalfedge(v, InvalidHalfedge)
	if es.keepIsolated {
		return
	}
	klog.V(3).Infof("edgeset: %v lost its last edge, deleting it", v)
	es.PointSet.DeleteVertex(v)
}

func (es *EdgeSet) removeVertex(v Vertex) {
	es.setHalfedge(v, InvalidHalfedge)
	es.PointSet.DeleteVertex(v)
}

func (es *EdgeSet) markEdgeRemoved(e Edge) {
	es.edeleted.Set(e.Idx(), true)
	es.deletedEdges++
	es.SetGarbage()
}
