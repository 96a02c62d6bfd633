package edgeset

import "fmt"

// ValidationSeverity indicates whether a finding means the connectivity is
// corrupt or is merely worth knowing about.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // connectivity is corrupt
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ElementKind names the element a finding is about.
type ElementKind int

const (
	KindMesh ElementKind = iota
	KindVertex
	KindHalfedge
	KindEdge
)

func (k ElementKind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindVertex:
		return "vertex"
	case KindHalfedge:
		return "halfedge"
	case KindEdge:
		return "edge"
	default:
		return fmt.Sprintf("ElementKind(%d)", int(k))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Kind     ElementKind
	Index    int // row of the offending element, -1 for mesh-level findings
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Kind == KindMesh {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s %d: %s", e.Severity, e.Kind, e.Index, e.Message)
}

// Validate checks the structural invariants of es and returns every
// finding. An empty result means the connectivity is consistent. Validate
// never mutates es.
func Validate(es *EdgeSet) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateCounts(es)...)
	if len(errs) > 0 {
		// the remaining checks index by these counts
		return errs
	}
	errs = append(errs, validateOutgoing(es)...)
	errs = append(errs, validateHalfedges(es)...)
	errs = append(errs, validateFans(es)...)
	errs = append(errs, validateFaces(es)...)
	return errs
}

// HasErrors reports whether any finding has error severity.
func HasErrors(findings []ValidationError) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// validateCounts checks the halfedge/edge pairing and the tombstone count.
func validateCounts(es *EdgeSet) []ValidationError {
	var errs []ValidationError
	if es.HalfedgesSize() != 2*es.EdgesSize() {
		errs = append(errs, ValidationError{
			Kind:     KindMesh,
			Index:    -1,
			Message:  fmt.Sprintf("%d halfedges for %d edges", es.HalfedgesSize(), es.EdgesSize()),
			Severity: SeverityError,
		})
	}
	deleted := 0
	for i := range es.EdgesSize() {
		if es.edeleted.Get(i) {
			deleted++
		}
	}
	if deleted != es.deletedEdges {
		errs = append(errs, ValidationError{
			Kind:     KindMesh,
			Index:    -1,
			Message:  fmt.Sprintf("%d edges marked deleted, counter says %d", deleted, es.deletedEdges),
			Severity: SeverityError,
		})
	}
	return errs
}

// validateOutgoing checks that every live vertex's outgoing halfedge is live
// and starts at that vertex.
func validateOutgoing(es *EdgeSet) []ValidationError {
	var errs []ValidationError
	for v := range es.Vertices() {
		h := es.OutgoingHalfedge(v)
		if !h.IsValid() {
			// a live vertex with no edges yet
			continue
		}
		if !es.IsValidHalfedge(h) {
			errs = append(errs, ValidationError{
				Kind:     KindVertex,
				Index:    v.Idx(),
				Message:  fmt.Sprintf("outgoing halfedge %v is deleted or out of range", h),
				Severity: SeverityError,
			})
			continue
		}
		if o := es.Origin(h); o != v {
			errs = append(errs, ValidationError{
				Kind:     KindVertex,
				Index:    v.Idx(),
				Message:  fmt.Sprintf("outgoing halfedge %v starts at %v", h, o),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateHalfedges checks that next links stay among live halfedges,
// chain head to tail, and form a permutation.
func validateHalfedges(es *EdgeSet) []ValidationError {
	var errs []ValidationError
	seen := make(map[Halfedge]Halfedge)
	for h := range es.Halfedges() {
		t := es.Target(h)
		if !es.PointSet.IsValid(t) {
			errs = append(errs, ValidationError{
				Kind:     KindHalfedge,
				Index:    h.Idx(),
				Message:  fmt.Sprintf("target %v is deleted or out of range", t),
				Severity: SeverityError,
			})
		}
		n := es.Next(h)
		if !es.IsValidHalfedge(n) {
			errs = append(errs, ValidationError{
				Kind:     KindHalfedge,
				Index:    h.Idx(),
				Message:  fmt.Sprintf("next %v is deleted or out of range", n),
				Severity: SeverityError,
			})
			continue
		}
		if o := es.Origin(n); o != t {
			errs = append(errs, ValidationError{
				Kind:     KindHalfedge,
				Index:    h.Idx(),
				Message:  fmt.Sprintf("next %v starts at %v, not at target %v", n, o, t),
				Severity: SeverityError,
			})
		}
		if other, dup := seen[n]; dup {
			errs = append(errs, ValidationError{
				Kind:     KindHalfedge,
				Index:    h.Idx(),
				Message:  fmt.Sprintf("%v is also the successor of %v", n, other),
				Severity: SeverityError,
			})
		}
		seen[n] = h
	}
	return errs
}

// validateFans checks that every fan closes and only holds halfedges
// leaving its vertex.
func validateFans(es *EdgeSet) []ValidationError {
	var errs []ValidationError
	for v := range es.Vertices() {
		start := es.OutgoingHalfedge(v)
		if !es.IsValidHalfedge(start) {
			continue
		}
		h := start
		reported := false
		closed := false
		for range es.HalfedgesSize() {
			if !es.IsValidHalfedge(h) {
				reported = true
				break
			}
			if o := es.Origin(h); o != v {
				errs = append(errs, ValidationError{
					Kind:     KindVertex,
					Index:    v.Idx(),
					Message:  fmt.Sprintf("fan reaches %v which starts at %v", h, o),
					Severity: SeverityError,
				})
				reported = true
				break
			}
			h = es.CWRotated(h)
			if h == start {
				closed = true
				break
			}
		}
		if !closed && !reported {
			errs = append(errs, ValidationError{
				Kind:     KindVertex,
				Index:    v.Idx(),
				Message:  "fan does not return to its outgoing halfedge",
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateFaces warns about interior marks on next cycles that are only
// partly marked.
func validateFaces(es *EdgeSet) []ValidationError {
	var errs []ValidationError
	for h := range es.Halfedges() {
		if es.IsBoundary(h) {
			continue
		}
		n := es.Next(h)
		for range es.HalfedgesSize() {
			if n == h || !es.IsValidHalfedge(n) {
				break
			}
			if es.IsBoundary(n) {
				errs = append(errs, ValidationError{
					Kind:     KindHalfedge,
					Index:    h.Idx(),
					Message:  fmt.Sprintf("interior but %v on its cycle is not", n),
					Severity: SeverityWarning,
				})
				break
			}
			n = es.Next(n)
		}
	}
	return errs
}
