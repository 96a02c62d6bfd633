package edgeset

import (
	"github.com/pkg/errors"

	"github.com/chazu/edgeset/pkg/pointset"
	"github.com/chazu/edgeset/pkg/property"
)

// Standard column names. The same list is declared by New and Assign.
const (
	VertexConnectivityProperty   = "v:connectivity"
	HalfedgeConnectivityProperty = "h:connectivity"
	EdgeDeletedProperty          = "e:deleted"

	halfedgeGarbageProperty  = "h:garbage-collection"
	halfedgeInteriorProperty = "h:interior"
	vertexNormalProperty     = "v:normal"
)

// EdgeSet is a half-edge graph layered on a point set.
type EdgeSet struct {
	*pointset.PointSet

	hprops *property.Container
	eprops *property.Container

	vconn     property.Property[vertexConnectivity]
	hconn     property.Property[halfedgeConnectivity]
	edeleted  property.Property[bool]
	hinterior property.Property[bool]

	deletedEdges int
	keepIsolated bool

	// sizes computed by beginGarbage, applied by finalizeGarbage
	pendingHalfedges int
	pendingEdges     int
}

// New returns an empty edge set.
func New(opts ...Option) *EdgeSet {
	es := &EdgeSet{
		PointSet: pointset.New(),
		hprops:   property.NewContainer(),
		eprops:   property.NewContainer(),
	}
	es.declareStandard()
	for _, opt := range opts {
		opt(es)
	}
	return es
}

func (es *EdgeSet) declareStandard() {
	es.vconn, _ = property.Add(es.VertexContainer(), VertexConnectivityProperty,
		vertexConnectivity{halfedge: InvalidHalfedge})
	es.hconn, _ = property.Add(es.hprops, HalfedgeConnectivityProperty,
		halfedgeConnectivity{vertex: InvalidVertex, next: InvalidHalfedge})
	es.edeleted, _ = property.Add(es.eprops, EdgeDeletedProperty, false)
	es.hinterior = property.Property[bool]{}
}

func (es *EdgeSet) fetchStandard() {
	es.vconn, _ = property.Get[vertexConnectivity](es.VertexContainer(), VertexConnectivityProperty)
	es.hconn, _ = property.Get[halfedgeConnectivity](es.hprops, HalfedgeConnectivityProperty)
	es.edeleted, _ = property.Get[bool](es.eprops, EdgeDeletedProperty)
	es.hinterior, _ = property.Get[bool](es.hprops, halfedgeInteriorProperty)
}

// Clone returns a structural copy: every column of every element kind is
// copied, including custom ones, and the connectivity handles are fetched
// from the copy.
func (es *EdgeSet) Clone() *EdgeSet {
	out := &EdgeSet{
		PointSet:     es.PointSet.Clone(),
		hprops:       es.hprops.Clone(),
		eprops:       es.eprops.Clone(),
		deletedEdges: es.deletedEdges,
		keepIsolated: es.keepIsolated,
	}
	out.fetchStandard()
	return out
}

// Assign rebuilds es from src with only the standard columns, dropping any
// custom column on either side.
func (es *EdgeSet) Assign(src *EdgeSet) {
	if es == src {
		return
	}
	es.PointSet.Assign(src.PointSet)

	es.hprops.Clear()
	es.eprops.Clear()
	es.declareStandard()

	es.vconn.Copy(src.vconn)
	es.hconn.Copy(src.hconn)
	es.edeleted.Copy(src.edeleted)

	es.hprops.Resize(src.HalfedgesSize())
	es.eprops.Resize(src.EdgesSize())

	es.deletedEdges = src.deletedEdges
}

// Clear removes every element. Declared columns are kept.
func (es *EdgeSet) Clear() {
	es.hprops.Resize(0)
	es.eprops.Resize(0)
	es.FreeMemory()
	es.deletedEdges = 0
	es.PointSet.Clear()
}

// FreeMemory releases unused capacity of every column.
func (es *EdgeSet) FreeMemory() {
	es.hprops.FreeMemory()
	es.eprops.FreeMemory()
	es.PointSet.FreeMemory()
}

// Reserve pre-sizes storage for the given element counts without changing
// the number of elements.
func (es *EdgeSet) Reserve(nvertices, nedges int) {
	es.PointSet.Reserve(nvertices)
	es.hprops.Reserve(2 * nedges)
	es.eprops.Reserve(nedges)
}

// HalfedgesSize is the number of halfedge rows, tombstones included.
func (es *EdgeSet) HalfedgesSize() int { return es.hprops.Len() }

// EdgesSize is the number of edge rows, tombstones included.
func (es *EdgeSet) EdgesSize() int { return es.eprops.Len() }

// NumEdges is the number of live edges.
func (es *EdgeSet) NumEdges() int { return es.eprops.Len() - es.deletedEdges }

// NumHalfedges is the number of live halfedges.
func (es *EdgeSet) NumHalfedges() int { return 2 * es.NumEdges() }

// NumDeletedEdges is the number of tombstoned edges since the last
// collection.
func (es *EdgeSet) NumDeletedEdges() int { return es.deletedEdges }

// KeepsIsolated reports whether stranded vertices survive edge deletion.
func (es *EdgeSet) KeepsIsolated() bool { return es.keepIsolated }

// --- column declarations ---

// checkDeclarable rejects the scratch columns used by garbage collection.
func checkDeclarable(name string) error {
	if name == pointset.GarbageProperty || name == halfedgeGarbageProperty {
		return errors.Wrapf(ErrPrecondition, "%q is reserved", name)
	}
	return nil
}

// AddVertexProperty declares a vertex column.
func AddVertexProperty[T any](es *EdgeSet, name string, def T) (property.Property[T], error) {
	if err := checkDeclarable(name); err != nil {
		return property.Property[T]{}, err
	}
	return property.Add(es.VertexContainer(), name, def)
}

// GetVertexProperty fetches a vertex column.
func GetVertexProperty[T any](es *EdgeSet, name string) (property.Property[T], bool) {
	return property.Get[T](es.VertexContainer(), name)
}

// VertexProperty fetches a vertex column, declaring it if needed.
func VertexProperty[T any](es *EdgeSet, name string, def T) (property.Property[T], error) {
	if err := checkDeclarable(name); err != nil {
		return property.Property[T]{}, err
	}
	return property.GetOrAdd(es.VertexContainer(), name, def)
}

// AddHalfedgeProperty declares a halfedge column.
func AddHalfedgeProperty[T any](es *EdgeSet, name string, def T) (property.Property[T], error) {
	if err := checkDeclarable(name); err != nil {
		return property.Property[T]{}, err
	}
	return property.Add(es.hprops, name, def)
}

// GetHalfedgeProperty fetches a halfedge column.
func GetHalfedgeProperty[T any](es *EdgeSet, name string) (property.Property[T], bool) {
	return property.Get[T](es.hprops, name)
}

// HalfedgeProperty fetches a halfedge column, declaring it if needed.
func HalfedgeProperty[T any](es *EdgeSet, name string, def T) (property.Property[T], error) {
	if err := checkDeclarable(name); err != nil {
		return property.Property[T]{}, err
	}
	return property.GetOrAdd(es.hprops, name, def)
}

// AddEdgeProperty declares an edge column.
func AddEdgeProperty[T any](es *EdgeSet, name string, def T) (property.Property[T], error) {
	return property.Add(es.eprops, name, def)
}

// GetEdgeProperty fetches an edge column.
func GetEdgeProperty[T any](es *EdgeSet, name string) (property.Property[T], bool) {
	return property.Get[T](es.eprops, name)
}

// EdgeProperty fetches an edge column, declaring it if needed.
func EdgeProperty[T any](es *EdgeSet, name string, def T) (property.Property[T], error) {
	return property.GetOrAdd(es.eprops, name, def)
}

// RemoveHalfedgeProperty drops a custom halfedge column. Standard columns
// cannot be removed.
func (es *EdgeSet) RemoveHalfedgeProperty(name string) error {
	if name == HalfedgeConnectivityProperty {
		return errors.Wrapf(ErrPrecondition, "cannot remove %q", name)
	}
	if name == halfedgeInteriorProperty {
		es.hinterior = property.Property[bool]{}
	}
	es.hprops.Remove(name)
	return nil
}

// RemoveEdgeProperty drops a custom edge column. Standard columns cannot be
// removed.
func (es *EdgeSet) RemoveEdgeProperty(name string) error {
	if name == EdgeDeletedProperty {
		return errors.Wrapf(ErrPrecondition, "cannot remove %q", name)
	}
	es.eprops.Remove(name)
	return nil
}

// HalfedgeProperties lists declared halfedge column names.
func (es *EdgeSet) HalfedgeProperties() []string { return es.hprops.Names() }

// EdgeProperties lists declared edge column names.
func (es *EdgeSet) EdgeProperties() []string { return es.eprops.Names() }

// --- raw connectivity access ---

// Target returns the vertex h points to.
func (es *EdgeSet) Target(h Halfedge) Vertex { return es.hconn.Get(h.Idx()).vertex }

// Origin returns the vertex h starts from.
func (es *EdgeSet) Origin(h Halfedge) Vertex { return es.Target(h.Opposite()) }

// Next returns the successor of h in its cycle.
func (es *EdgeSet) Next(h Halfedge) Halfedge { return es.hconn.Get(h.Idx()).next }

// OutgoingHalfedge returns the representative outgoing halfedge of v, or
// InvalidHalfedge when v is isolated.
func (es *EdgeSet) OutgoingHalfedge(v Vertex) Halfedge { return es.vconn.Get(v.Idx()).halfedge }

// IsIsolated reports whether v has no incident edge.
func (es *EdgeSet) IsIsolated(v Vertex) bool { return !es.OutgoingHalfedge(v).IsValid() }

// EdgeVertex returns the target of direction i of e.
func (es *EdgeSet) EdgeVertex(e Edge, i int) Vertex { return es.Target(e.Halfedge(i)) }

// IsEdgeDeleted reports whether e is tombstoned.
func (es *EdgeSet) IsEdgeDeleted(e Edge) bool { return es.edeleted.Get(e.Idx()) }

// IsValidEdge reports whether e is in range and live.
func (es *EdgeSet) IsValidEdge(e Edge) bool {
	return e.IsValid() && e.Idx() < es.EdgesSize() && !es.edeleted.Get(e.Idx())
}

// IsValidHalfedge reports whether h is in range and its edge is live.
func (es *EdgeSet) IsValidHalfedge(h Halfedge) bool {
	return h.IsValid() && h.Idx() < es.HalfedgesSize() && !es.edeleted.Get(h.Edge().Idx())
}

// CWRotated returns the next outgoing halfedge clockwise around Origin(h).
func (es *EdgeSet) CWRotated(h Halfedge) Halfedge { return es.Next(h.Opposite()) }

// CCWRotated returns the next outgoing halfedge counter-clockwise around
// Origin(h).
func (es *EdgeSet) CCWRotated(h Halfedge) Halfedge { return es.Prev(h).Opposite() }

// Prev returns the halfedge whose successor is h. It walks the fan of
// Origin(h) and returns InvalidHalfedge if the fan does not lead back to h.
func (es *EdgeSet) Prev(h Halfedge) Halfedge {
	x := h
	for range es.HalfedgesSize() {
		o := x.Opposite()
		n := es.Next(o)
		if n == h {
			return o
		}
		x = n
	}
	return InvalidHalfedge
}

// IsBoundary reports whether h has no face on its left. Without a face
// layer marking interior halfedges every halfedge is a boundary.
func (es *EdgeSet) IsBoundary(h Halfedge) bool {
	if !es.hinterior.IsValid() {
		return true
	}
	return !es.hinterior.Get(h.Idx())
}

// SetInterior marks h as having (or not having) a face on its left.
func (es *EdgeSet) SetInterior(h Halfedge, interior bool) {
	if !es.hinterior.IsValid() {
		es.hinterior, _ = property.GetOrAdd(es.hprops, halfedgeInteriorProperty, false)
	}
	es.hinterior.Set(h.Idx(), interior)
}

// IsBoundaryVertex reports whether v is isolated or any of its outgoing
// halfedges is a boundary.
func (es *EdgeSet) IsBoundaryVertex(v Vertex) bool {
	if es.IsIsolated(v) {
		return true
	}
	for h := range es.HalfedgesAround(v) {
		if es.IsBoundary(h) {
			return true
		}
	}
	return false
}

func (es *EdgeSet) setHalfedge(v Vertex, h Halfedge) {
	es.vconn.Ptr(v.Idx()).halfedge = h
}

func (es *EdgeSet) setVertex(h Halfedge, v Vertex) {
	es.hconn.Ptr(h.Idx()).vertex = v
}

func (es *EdgeSet) setNext(h, next Halfedge) {
	es.hconn.Ptr(h.Idx()).next = next
}

// newEdge appends an edge from start to end and returns the halfedge
// pointing to end. Its next links are left unset.
func (es *EdgeSet) newEdge(start, end Vertex) Halfedge {
	es.eprops.PushBack()
	es.hprops.PushBack()
	es.hprops.PushBack()

	h0 := Halfedge(es.HalfedgesSize() - 2)
	h1 := h0.Opposite()
	es.setVertex(h0, end)
	es.setVertex(h1, start)
	return h0
}

// checkVertex fails with ErrInvalidHandle unless v is live.
func (es *EdgeSet) checkVertex(v Vertex) error {
	if !es.PointSet.IsValid(v) {
		return errors.Wrapf(ErrInvalidHandle, "vertex %v", v)
	}
	return nil
}

// checkHalfedge fails with ErrInvalidHandle unless h is live.
func (es *EdgeSet) checkHalfedge(h Halfedge) error {
	if !es.IsValidHalfedge(h) {
		return errors.Wrapf(ErrInvalidHandle, "halfedge %v", h)
	}
	return nil
}

// checkEdge fails with ErrInvalidHandle unless e is in range.
func (es *EdgeSet) checkEdge(e Edge) error {
	if !e.IsValid() || e.Idx() >= es.EdgesSize() {
		return errors.Wrapf(ErrInvalidHandle, "edge %v", e)
	}
	return nil
}
