package edgeset

import "iter"

// HalfedgesAround yields the outgoing halfedges of v, rotating clockwise
// from OutgoingHalfedge(v). Nothing is yielded for an isolated vertex.
// The walk stops after one revolution or, on a corrupted fan, after
// HalfedgesSize steps.
func (es *EdgeSet) HalfedgesAround(v Vertex) iter.Seq[Halfedge] {
	return func(yield func(Halfedge) bool) {
		start := es.OutgoingHalfedge(v)
		if !start.IsValid() {
			return
		}
		h := start
		for range es.HalfedgesSize() {
			if !yield(h) {
				return
			}
			h = es.CWRotated(h)
			if h == start {
				return
			}
		}
	}
}

// VerticesAround yields the neighbors of v in the order of
// HalfedgesAround.
func (es *EdgeSet) VerticesAround(v Vertex) iter.Seq[Vertex] {
	return func(yield func(Vertex) bool) {
		for h := range es.HalfedgesAround(v) {
			if !yield(es.Target(h)) {
				return
			}
		}
	}
}

// Edges yields every live edge in index order.
func (es *EdgeSet) Edges() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for i := range es.EdgesSize() {
			if es.edeleted.Get(i) {
				continue
			}
			if !yield(Edge(i)) {
				return
			}
		}
	}
}

// Halfedges yields every live halfedge in index order.
func (es *EdgeSet) Halfedges() iter.Seq[Halfedge] {
	return func(yield func(Halfedge) bool) {
		for e := range es.Edges() {
			if !yield(e.Halfedge(0)) || !yield(e.Halfedge(1)) {
				return
			}
		}
	}
}
