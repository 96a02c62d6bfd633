package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/samber/lo"

	"github.com/chazu/edgeset/pkg/edgeset"
	"github.com/chazu/edgeset/pkg/engine"
	"github.com/chazu/edgeset/pkg/spatial"
)

type config struct {
	collect      bool
	validate     bool
	keepIsolated bool
	timeout      time.Duration
	cells        int
	near         *v3.Vec
}

// report is what a run produced.
type report struct {
	Vertices     int
	Edges        int
	DeletedEdges int
	Collected    int

	Errors   []engine.EvalError
	Findings []edgeset.ValidationError

	Nearest         edgeset.Vertex
	NearestPosition v3.Vec
	HasNearest      bool
}

// run evaluates source and applies the requested post-processing. A
// script error is reported in the result, not returned.
func run(cfg config, source string) (*report, error) {
	eng := engine.NewEngine(engine.Options{
		Timeout:      cfg.timeout,
		KeepIsolated: cfg.keepIsolated,
		MeshCells:    cfg.cells,
	})

	es, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		return nil, errors.Wrap(err, "evaluate")
	}
	rep := &report{Errors: evalErrs}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			klog.Warningf("script: %v", e)
		}
		return rep, nil
	}

	if cfg.collect {
		rep.Collected = es.NumDeletedEdges()
		es.GarbageCollection()
	}

	if cfg.validate {
		rep.Findings = edgeset.Validate(es)
		for _, f := range rep.Findings {
			klog.Warningf("validate: %v", f)
		}
	}

	if cfg.near != nil {
		ix := spatial.New(es)
		rep.Nearest, rep.HasNearest = ix.Nearest(*cfg.near)
		if rep.HasNearest {
			rep.NearestPosition = es.Position(rep.Nearest)
		}
	}

	rep.Vertices = es.NumVertices()
	rep.Edges = es.NumEdges()
	rep.DeletedEdges = es.NumDeletedEdges()
	return rep, nil
}

// ok reports whether the script ran and validation found no errors.
func (r *report) ok() bool {
	return len(r.Errors) == 0 && !edgeset.HasErrors(r.Findings)
}

func (r *report) print(w io.Writer) {
	for _, e := range r.Errors {
		fmt.Fprintf(w, "error: %v\n", e)
	}
	if len(r.Errors) > 0 {
		return
	}
	fmt.Fprintf(w, "vertices: %d\nedges: %d\ndeleted edges: %d\n", r.Vertices, r.Edges, r.DeletedEdges)
	if r.Collected > 0 {
		fmt.Fprintf(w, "collected: %d\n", r.Collected)
	}
	for _, f := range r.Findings {
		fmt.Fprintf(w, "%v\n", f)
	}
	if r.HasNearest {
		p := r.NearestPosition
		fmt.Fprintf(w, "nearest: %v at (%g, %g, %g)\n", r.Nearest, p.X, p.Y, p.Z)
	}
}

// parsePoint reads "x,y,z".
func parsePoint(s string) (v3.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v3.Vec{}, errors.Errorf("want x,y,z, got %q", s)
	}
	var bad error
	xyz := lo.Map(parts, func(part string, i int) float64 {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil && bad == nil {
			bad = errors.Wrapf(err, "coordinate %d", i+1)
		}
		return f
	})
	if bad != nil {
		return v3.Vec{}, bad
	}
	return v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}
