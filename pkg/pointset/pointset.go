// Package pointset provides the base vertex set that the edge layer is built
// on: vertex handles, positions, tombstoning and the vertex half of the
// two-phase garbage collection.
package pointset

import (
	"fmt"
	"iter"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/plan-systems/klog"

	"github.com/chazu/edgeset/pkg/property"
)

// Standard column names.
const (
	PointProperty   = "v:point"
	DeletedProperty = "v:deleted"
	GarbageProperty = "v:garbage-collection"
)

// Vertex is an index into the vertex columns.
type Vertex int32

// InvalidVertex is the sentinel for "no vertex".
const InvalidVertex Vertex = -1

// IsValid reports whether v is not the sentinel. It does not check range.
func (v Vertex) IsValid() bool { return v >= 0 }

// Idx returns the row index.
func (v Vertex) Idx() int { return int(v) }

func (v Vertex) String() string {
	if !v.IsValid() {
		return "v-"
	}
	return fmt.Sprintf("v%d", int32(v))
}

// VertexRemap is produced by BeginGarbage. Map is indexed by the
// pre-collection vertex index and yields the post-collection handle.
// NumVertices is the live count after collection.
type VertexRemap struct {
	Map         property.Property[Vertex]
	NumVertices int
}

// Lookup returns the new handle for an old one.
func (r VertexRemap) Lookup(v Vertex) Vertex {
	if !v.IsValid() {
		return v
	}
	return r.Map.Get(v.Idx())
}

// PointSet owns the vertex container.
type PointSet struct {
	vprops *property.Container

	vpoint   property.Property[v3.Vec]
	vdeleted property.Property[bool]

	deletedVertices int
	garbage         bool
	pendingVertices int
}

// New returns an empty point set with the standard columns declared.
func New() *PointSet {
	ps := &PointSet{vprops: property.NewContainer()}
	ps.declareStandard()
	return ps
}

func (ps *PointSet) declareStandard() {
	ps.vpoint, _ = property.Add(ps.vprops, PointProperty, v3.Vec{})
	ps.vdeleted, _ = property.Add(ps.vprops, DeletedProperty, false)
}

func (ps *PointSet) fetchStandard() {
	ps.vpoint, _ = property.Get[v3.Vec](ps.vprops, PointProperty)
	ps.vdeleted, _ = property.Get[bool](ps.vprops, DeletedProperty)
}

// VertexContainer exposes the vertex columns for typed declarations by
// layers built on top of the point set.
func (ps *PointSet) VertexContainer() *property.Container { return ps.vprops }

// VertexProperties lists declared vertex column names.
func (ps *PointSet) VertexProperties() []string { return ps.vprops.Names() }

// AddVertex appends a live vertex at p.
func (ps *PointSet) AddVertex(p v3.Vec) Vertex {
	ps.vprops.PushBack()
	v := Vertex(ps.vprops.Len() - 1)
	ps.vpoint.Set(v.Idx(), p)
	return v
}

// DeleteVertex tombstones v. Deleting a deleted vertex is a no-op.
func (ps *PointSet) DeleteVertex(v Vertex) {
	if ps.IsDeleted(v) {
		return
	}
	ps.vdeleted.Set(v.Idx(), true)
	ps.deletedVertices++
	ps.garbage = true
}

// IsDeleted reports whether v is tombstoned.
func (ps *PointSet) IsDeleted(v Vertex) bool {
	return ps.vdeleted.Get(v.Idx())
}

// IsValid reports whether v is in range and not tombstoned.
func (ps *PointSet) IsValid(v Vertex) bool {
	return v.IsValid() && v.Idx() < ps.vprops.Len() && !ps.vdeleted.Get(v.Idx())
}

// Position returns the coordinates of v.
func (ps *PointSet) Position(v Vertex) v3.Vec { return ps.vpoint.Get(v.Idx()) }

// SetPosition moves v.
func (ps *PointSet) SetPosition(v Vertex, p v3.Vec) { ps.vpoint.Set(v.Idx(), p) }

// Points exposes the position column.
func (ps *PointSet) Points() property.Property[v3.Vec] { return ps.vpoint }

// VerticesSize is the number of allocated vertex rows, tombstones included.
func (ps *PointSet) VerticesSize() int { return ps.vprops.Len() }

// NumVertices is the number of live vertices.
func (ps *PointSet) NumVertices() int { return ps.vprops.Len() - ps.deletedVertices }

// NumDeletedVertices is the number of tombstoned vertex rows.
func (ps *PointSet) NumDeletedVertices() int { return ps.deletedVertices }

// Vertices yields every live vertex in index order.
func (ps *PointSet) Vertices() iter.Seq[Vertex] {
	return func(yield func(Vertex) bool) {
		for i := 0; i < ps.vprops.Len(); i++ {
			if ps.vdeleted.Get(i) {
				continue
			}
			if !yield(Vertex(i)) {
				return
			}
		}
	}
}

// HasGarbage reports whether any element was tombstoned since the last
// collection.
func (ps *PointSet) HasGarbage() bool { return ps.garbage }

// SetGarbage raises the pending-garbage flag. Layers built on top call it
// when they tombstone their own elements.
func (ps *PointSet) SetGarbage() { ps.garbage = true }

// BoundingBox returns the axis-aligned bounds of the live vertices. ok is
// false when there are none.
func (ps *PointSet) BoundingBox() (lo, hi v3.Vec, ok bool) {
	lo = v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi = v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for v := range ps.Vertices() {
		p := ps.vpoint.Get(v.Idx())
		lo = v3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = v3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
		ok = true
	}
	if !ok {
		return v3.Vec{}, v3.Vec{}, false
	}
	return lo, hi, true
}

// GarbageCollection compacts the vertex rows on their own. Layers that keep
// references to vertices must drive BeginGarbage/FinalizeGarbage instead.
func (ps *PointSet) GarbageCollection() {
	if !ps.garbage {
		return
	}
	ps.BeginGarbage()
	ps.FinalizeGarbage()
}

// BeginGarbage moves all live vertices to the front of the vertex columns
// and returns the old-to-new map. The map lives in a temporary column until
// FinalizeGarbage.
func (ps *PointSet) BeginGarbage() VertexRemap {
	nV := ps.vprops.Len()

	// the scratch column replaces anything declared under its name
	ps.vprops.Remove(GarbageProperty)
	vmap, _ := property.Add(ps.vprops, GarbageProperty, InvalidVertex)
	for i := 0; i < nV; i++ {
		vmap.Set(i, Vertex(i))
	}

	if nV > 0 {
		i0, i1 := 0, nV-1
		for {
			for !ps.vdeleted.Get(i0) && i0 < i1 {
				i0++
			}
			for ps.vdeleted.Get(i1) && i0 < i1 {
				i1--
			}
			if i0 >= i1 {
				break
			}
			ps.vprops.Swap(i0, i1)
		}
		if ps.vdeleted.Get(i0) {
			nV = i0
		} else {
			nV = i0 + 1
		}
	}

	// The swaps carried vmap rows along with their vertices, so vmap[new]
	// holds the old index. Invert it.
	old := make([]Vertex, ps.vprops.Len())
	copy(old, vmap.Data())
	for i := range old {
		vmap.Set(i, InvalidVertex)
	}
	for i := 0; i < nV; i++ {
		vmap.Set(old[i].Idx(), Vertex(i))
	}

	klog.V(2).Infof("pointset: collecting %d of %d vertices", ps.vprops.Len()-nV, ps.vprops.Len())

	ps.pendingVertices = nV
	return VertexRemap{Map: vmap, NumVertices: nV}
}

// FinalizeGarbage drops the remap column and truncates vertex storage.
func (ps *PointSet) FinalizeGarbage() {
	ps.vprops.Remove(GarbageProperty)
	ps.vprops.Resize(ps.pendingVertices)
	ps.vprops.FreeMemory()
	ps.deletedVertices = 0
	ps.garbage = false
}

// Clear drops every vertex but keeps the declared columns.
func (ps *PointSet) Clear() {
	ps.vprops.Resize(0)
	ps.FreeMemory()
	ps.deletedVertices = 0
	ps.garbage = false
}

// FreeMemory releases unused vertex capacity.
func (ps *PointSet) FreeMemory() { ps.vprops.FreeMemory() }

// Reserve pre-sizes vertex capacity.
func (ps *PointSet) Reserve(n int) { ps.vprops.Reserve(n) }

// Clone returns a structural copy: every vertex column including custom
// ones, with the standard handles fetched from the copy.
func (ps *PointSet) Clone() *PointSet {
	out := &PointSet{
		vprops:          ps.vprops.Clone(),
		deletedVertices: ps.deletedVertices,
		garbage:         ps.garbage,
	}
	out.fetchStandard()
	return out
}

// Assign rebuilds ps from src keeping only the standard vertex columns.
func (ps *PointSet) Assign(src *PointSet) {
	if ps == src {
		return
	}
	ps.vprops.Clear()
	ps.declareStandard()
	ps.vpoint.Copy(src.vpoint)
	ps.vdeleted.Copy(src.vdeleted)
	ps.vprops.Resize(src.VerticesSize())
	ps.deletedVertices = src.deletedVertices
	ps.garbage = src.garbage
}
