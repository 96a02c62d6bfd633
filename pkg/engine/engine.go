// Package engine evaluates edge set edit scripts. It wraps zygomys in a
// sandboxed environment whose builtins create, split, delete and query
// the elements of a fresh edgeset.EdgeSet.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/plan-systems/klog"

	"github.com/chazu/edgeset/pkg/edgeset"
	"github.com/chazu/edgeset/pkg/kernel/sdfx"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Options configures an Engine.
type Options struct {
	// Timeout bounds a single evaluation. Zero means DefaultTimeout.
	Timeout time.Duration
	// KeepIsolated is passed to edgeset.WithKeepIsolated for every script.
	KeepIsolated bool
	// MeshCells is the tessellation resolution of the wireframe builtin.
	// Zero means sdfx.DefaultMeshCells.
	MeshCells int
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each call to Evaluate creates a fresh sandbox and a fresh edge set.
type Engine struct {
	opts Options

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine(opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MeshCells <= 0 {
		opts.MeshCells = sdfx.DefaultMeshCells
	}
	return &Engine{opts: opts}
}

// Evaluate runs source against an empty edge set and returns the result.
//
// Return semantics:
//   - On success: returns edge set + nil errors + nil error
//   - On parse/eval failure: returns nil edge set + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*edgeset.EdgeSet, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		es, evalErrs, err := e.evaluate(source)
		ch <- evalResult{edges: es, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation, e.opts.Timeout)
}

func (e *Engine) evaluate(source string) (*edgeset.EdgeSet, []EvalError, error) {
	es := edgeset.New(edgeset.WithKeepIsolated(e.opts.KeepIsolated))

	// Empty source is a valid program that produces an empty edge set.
	if strings.TrimSpace(source) == "" {
		return es, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, es, sdfx.New(sdfx.WithCells(e.opts.MeshCells)))

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	klog.V(1).Infof("engine: script left %d vertices, %d edges (%d deleted)",
		es.NumVertices(), es.NumEdges(), es.NumDeletedEdges())
	return es, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
