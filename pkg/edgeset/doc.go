// Package edgeset is the connectivity kernel of the mesh: a directed
// half-edge graph over the vertices of a pointset.PointSet.
//
// Halfedges 2k and 2k+1 are the two directions of edge k, so the opposite
// of a halfedge is found by flipping its lowest bit and is never stored.
// Each halfedge records the vertex it points to and the next halfedge in
// its cycle; each vertex records one outgoing halfedge. Rotating clockwise
// around a vertex is next(opposite(h)).
//
// Deletion only tombstones edges. GarbageCollection compacts the columns,
// after which every handle held by a caller is stale.
//
// An EdgeSet is not safe for concurrent use, not even for readers while a
// mutating call is running.
package edgeset
