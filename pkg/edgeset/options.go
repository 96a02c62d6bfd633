package edgeset

// Option configures an EdgeSet at construction.
type Option func(*EdgeSet)

// WithKeepIsolated controls what happens to a vertex whose last edge is
// deleted. By default the vertex is deleted along with the edge; with
// keep set it stays live and isolated.
func WithKeepIsolated(keep bool) Option {
	return func(es *EdgeSet) {
		es.keepIsolated = keep
	}
}
