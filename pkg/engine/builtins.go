package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/pkg/errors"

	"github.com/chazu/edgeset/pkg/edgeset"
	"github.com/chazu/edgeset/pkg/kernel"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms edit script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: delete-edge -> delete_edge
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing handles through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVertex wraps a vertex handle.
type sexpVertex struct {
	v edgeset.Vertex
}

func (s *sexpVertex) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vertex %s)", s.v)
}
func (s *sexpVertex) Type() *zygo.RegisteredType { return nil }

// sexpHalfedge wraps a halfedge handle.
type sexpHalfedge struct {
	h edgeset.Halfedge
}

func (s *sexpHalfedge) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(halfedge %s)", s.h)
}
func (s *sexpHalfedge) Type() *zygo.RegisteredType { return nil }

// sexpEdge wraps an edge handle.
type sexpEdge struct {
	e edgeset.Edge
}

func (s *sexpEdge) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(edge %s)", s.e)
}
func (s *sexpEdge) Type() *zygo.RegisteredType { return nil }

// sexpSolid wraps a kernel solid until it is imported with wireframe.
type sexpSolid struct {
	s kernel.Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	min, max := s.s.BoundingBox()
	return fmt.Sprintf("(solid %v %v)", min, max)
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			// trailing keyword is a flag
			result.kw[name] = zygo.SexpNull
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toFloats extracts exactly n numbers.
func toFloats(fn string, args []zygo.Sexp, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires exactly %d arguments, got %d", fn, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

func toVertex(s zygo.Sexp) (edgeset.Vertex, error) {
	if v, ok := s.(*sexpVertex); ok {
		return v.v, nil
	}
	return edgeset.InvalidVertex, fmt.Errorf("expected vertex, got %T (%s)", s, s.SexpString(nil))
}

func toHalfedge(s zygo.Sexp) (edgeset.Halfedge, error) {
	if h, ok := s.(*sexpHalfedge); ok {
		return h.h, nil
	}
	return edgeset.InvalidHalfedge, fmt.Errorf("expected halfedge, got %T (%s)", s, s.SexpString(nil))
}

// toEdge accepts an edge or either of its halfedges.
func toEdge(s zygo.Sexp) (edgeset.Edge, error) {
	switch v := s.(type) {
	case *sexpEdge:
		return v.e, nil
	case *sexpHalfedge:
		return v.h.Edge(), nil
	}
	return edgeset.InvalidEdge, fmt.Errorf("expected edge, got %T (%s)", s, s.SexpString(nil))
}

func toSolid(s zygo.Sexp) (kernel.Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.s, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// twoVertices extracts the (a b) argument pair shared by several builtins.
func twoVertices(fn string, args []zygo.Sexp) (edgeset.Vertex, edgeset.Vertex, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("%s requires two vertices, got %d arguments", fn, len(args))
	}
	a, err := toVertex(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: first: %w", fn, err)
	}
	b, err := toVertex(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: second: %w", fn, err)
	}
	return a, b, nil
}

func oneArg(fn string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s requires exactly 1 argument, got %d", fn, len(args))
	}
	return args[0], nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the edit builtins into a zygomys environment.
// They mutate es in place; k tessellates solids for wireframe.
//
// Source code must be preprocessed with preprocessSource() so that
// kebab-case names reach the underscore registrations below.
//
// Handles held by the script are invalidated by collect-garbage.
func registerBuiltins(env *zygo.Zlisp, es *edgeset.EdgeSet, k kernel.Kernel) {

	// (vertex x y z)
	env.AddFunction("vertex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		xyz, err := toFloats("vertex", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		v := es.AddVertex(v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})
		return &sexpVertex{v: v}, nil
	})

	// (edge a b) -> halfedge a->b
	env.AddFunction("edge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a, b, err := twoVertices("edge", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		h, err := es.InsertEdge(a, b)
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "edge")
		}
		return &sexpHalfedge{h: h}, nil
	})

	// (find-edge a b) -> edge or nil
	env.AddFunction("find_edge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a, b, err := twoVertices("find-edge", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		e, err := es.FindEdge(a, b)
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "find-edge")
		}
		if !e.IsValid() {
			return zygo.SexpNull, nil
		}
		return &sexpEdge{e: e}, nil
	})

	// (find-halfedge a b) -> halfedge a->b or nil
	env.AddFunction("find_halfedge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a, b, err := twoVertices("find-halfedge", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		h, err := es.FindHalfedge(a, b)
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "find-halfedge")
		}
		if !h.IsValid() {
			return zygo.SexpNull, nil
		}
		return &sexpHalfedge{h: h}, nil
	})

	// (insert-vertex h v) -> halfedge from the old target of h to v
	env.AddFunction("insert_vertex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("insert-vertex requires a halfedge and a vertex, got %d arguments", len(args))
		}
		h, err := toHalfedge(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("insert-vertex: %w", err)
		}
		v, err := toVertex(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("insert-vertex: %w", err)
		}
		o, err := es.InsertVertex(h, v)
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "insert-vertex")
		}
		return &sexpHalfedge{h: o}, nil
	})

	// (delete-edge e)
	env.AddFunction("delete_edge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		arg, err := oneArg("delete-edge", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		e, err := toEdge(arg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("delete-edge: %w", err)
		}
		return zygo.SexpNull, errors.Wrap(es.DeleteEdge(e), "delete-edge")
	})

	// (delete-vertex v)
	env.AddFunction("delete_vertex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		arg, err := oneArg("delete-vertex", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		v, err := toVertex(arg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("delete-vertex: %w", err)
		}
		return zygo.SexpNull, errors.Wrap(es.DeleteVertex(v), "delete-vertex")
	})

	// (valence v)
	env.AddFunction("valence", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		arg, err := oneArg("valence", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		v, err := toVertex(arg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("valence: %w", err)
		}
		if !es.IsValid(v) {
			return zygo.SexpNull, errors.Wrapf(edgeset.ErrInvalidHandle, "valence: vertex %v", v)
		}
		return &zygo.SexpInt{Val: int64(es.Valence(v))}, nil
	})

	// (edge-length e)
	env.AddFunction("edge_length", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		arg, err := oneArg("edge-length", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		e, err := toEdge(arg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge-length: %w", err)
		}
		if !es.IsValidEdge(e) {
			return zygo.SexpNull, errors.Wrapf(edgeset.ErrInvalidHandle, "edge-length: edge %v", e)
		}
		return &zygo.SexpFloat{Val: es.EdgeLength(e)}, nil
	})

	// (halfedge e i)
	env.AddFunction("halfedge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("halfedge requires an edge and a direction, got %d arguments", len(args))
		}
		e, err := toEdge(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("halfedge: %w", err)
		}
		i, err := toInt(args[1])
		if err != nil || (i != 0 && i != 1) {
			return zygo.SexpNull, fmt.Errorf("halfedge: direction must be 0 or 1")
		}
		return &sexpHalfedge{h: e.Halfedge(i)}, nil
	})

	// (target h) and (origin h)
	for _, fn := range []struct {
		name string
		get  func(edgeset.Halfedge) edgeset.Vertex
	}{
		{"target", es.Target},
		{"origin", es.Origin},
	} {
		env.AddFunction(fn.name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			arg, err := oneArg(fn.name, args)
			if err != nil {
				return zygo.SexpNull, err
			}
			h, err := toHalfedge(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn.name, err)
			}
			if !es.IsValidHalfedge(h) {
				return zygo.SexpNull, errors.Wrapf(edgeset.ErrInvalidHandle, "%s: halfedge %v", fn.name, h)
			}
			return &sexpVertex{v: fn.get(h)}, nil
		})
	}

	// (num-vertices) and (num-edges)
	env.AddFunction("num_vertices", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return &zygo.SexpInt{Val: int64(es.NumVertices())}, nil
	})
	env.AddFunction("num_edges", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return &zygo.SexpInt{Val: int64(es.NumEdges())}, nil
	})

	// (collect-garbage) -> number of edges removed
	env.AddFunction("collect_garbage", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		removed := es.NumDeletedEdges()
		es.GarbageCollection()
		return &zygo.SexpInt{Val: int64(removed)}, nil
	})

	// -----------------------------------------------------------------------
	// Solids: (box x y z) (sphere r) (cylinder h r) (translate s x y z)
	// (union a b) (wireframe s :tol 1e-6)
	// -----------------------------------------------------------------------

	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		xyz, err := toFloats("box", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := k.Box(xyz[0], xyz[1], xyz[2])
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{s: s}, nil
	})

	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r, err := toFloats("sphere", args, 1)
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := k.Sphere(r[0])
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{s: s}, nil
	})

	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		hr, err := toFloats("cylinder", args, 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := k.Cylinder(hr[0], hr[1])
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{s: s}, nil
	})

	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("translate requires a solid and 3 offsets, got %d arguments", len(args))
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		xyz, err := toFloats("translate", args[1:], 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{s: k.Translate(s, xyz[0], xyz[1], xyz[2])}, nil
	})

	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("union requires at least 2 solids, got %d", len(args))
		}
		acc, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("union: %w", err)
		}
		for i, a := range args[1:] {
			s, err := toSolid(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("union: solid %d: %w", i+2, err)
			}
			acc = k.Union(acc, s)
		}
		return &sexpSolid{s: acc}, nil
	})

	// (wireframe s :tol 1e-6) -> number of edges inserted
	env.AddFunction("wireframe", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("wireframe requires exactly one solid")
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("wireframe: %w", err)
		}
		tol := 1e-6
		if v, ok := pa.kw["tol"]; ok {
			if tol, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("wireframe: tol: %w", err)
			}
		}
		m, err := k.ToMesh(s)
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "wireframe")
		}
		imp, err := kernel.Wireframe(m, es, tol)
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "wireframe")
		}
		return &zygo.SexpInt{Val: int64(imp.Edges)}, nil
	})
}
