package engine

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/chazu/edgeset/pkg/edgeset"
)

// DefaultTimeout is the limit for a single evaluation when Options leaves
// it unset.
const DefaultTimeout = 5 * time.Second

// ErrTimeout is returned when a script runs past its deadline.
var ErrTimeout = errors.New("evaluation timed out")

// ErrSuperseded is returned when a newer evaluation started before this
// one finished.
var ErrSuperseded = errors.New("evaluation superseded by newer request")

type evalResult struct {
	edges  *edgeset.EdgeSet
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, giving up after timeout. A
// result whose generation is no longer current is discarded.
//
// On timeout the goroutine may still be running; its edge set is private
// to it and is dropped when it eventually completes.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
	timeout time.Duration,
) (*edgeset.EdgeSet, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, nil, ErrSuperseded
		}

		return res.edges, res.errors, res.err

	case <-timer.C:
		return nil, nil, errors.Wrapf(ErrTimeout, "after %s", timeout)
	}
}
