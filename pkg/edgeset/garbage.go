package edgeset

import (
	"github.com/plan-systems/klog"

	"github.com/chazu/edgeset/pkg/pointset"
	"github.com/chazu/edgeset/pkg/property"
)

// GarbageCollection removes every tombstoned vertex and edge and compacts
// storage. All handles obtained before the call are invalid afterwards.
func (es *EdgeSet) GarbageCollection() {
	if !es.HasGarbage() {
		return
	}
	es.collect()
}

// collect runs both phases of both layers. The vertex pass must come first
// since halfedge targets are rewritten through its remap.
func (es *EdgeSet) collect() {
	vmap := es.PointSet.BeginGarbage()
	es.beginGarbage(vmap)
	es.finalizeGarbage()
	es.PointSet.FinalizeGarbage()
}

func (es *EdgeSet) beginGarbage(vmap pointset.VertexRemap) {
	nV := vmap.NumVertices
	nE, nH := es.EdgesSize(), es.HalfedgesSize()

	es.hprops.Remove(halfedgeGarbageProperty)
	hmap, _ := property.Add(es.hprops, halfedgeGarbageProperty, InvalidHalfedge)
	for i := range nH {
		hmap.Set(i, Halfedge(i))
	}

	if nE > 0 {
		i0, i1 := 0, nE-1
		for {
			// first deleted and last live edge
			for !es.edeleted.Get(i0) && i0 < i1 {
				i0++
			}
			for es.edeleted.Get(i1) && i0 < i1 {
				i1--
			}
			if i0 >= i1 {
				break
			}

			es.eprops.Swap(i0, i1)
			es.hprops.Swap(2*i0, 2*i1)
			es.hprops.Swap(2*i0+1, 2*i1+1)
		}

		if es.edeleted.Get(i0) {
			nE = i0
		} else {
			nE = i0 + 1
		}
		nH = 2 * nE
	}

	// Every row takes part in at most one swap, so hmap is a product of
	// disjoint transpositions and maps old indices to new ones as well as
	// the other way round.
	for i := range nV {
		v := Vertex(i)
		if !es.IsIsolated(v) {
			es.setHalfedge(v, hmap.Get(es.OutgoingHalfedge(v).Idx()))
		}
	}

	for i := range nH {
		h := Halfedge(i)
		es.setVertex(h, vmap.Lookup(es.Target(h)))
		es.setNext(h, hmap.Get(es.Next(h).Idx()))
	}

	klog.V(2).Infof("edgeset: collecting %d of %d edges", es.EdgesSize()-nE, es.EdgesSize())

	es.pendingHalfedges = nH
	es.pendingEdges = nE
}

func (es *EdgeSet) finalizeGarbage() {
	es.hprops.Remove(halfedgeGarbageProperty)

	es.hprops.Resize(es.pendingHalfedges)
	es.hprops.FreeMemory()
	es.eprops.Resize(es.pendingEdges)
	es.eprops.FreeMemory()

	es.deletedEdges = 0
}
