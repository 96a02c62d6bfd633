package pointset

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/edgeset/pkg/property"
)

func TestAddVertex(t *testing.T) {
	ps := New()
	a := ps.AddVertex(v3.Vec{X: 1})
	b := ps.AddVertex(v3.Vec{Y: 2})

	if a != 0 || b != 1 {
		t.Fatalf("handles = %v, %v, want v0, v1", a, b)
	}
	if got := ps.Position(b); got.Y != 2 {
		t.Errorf("Position(b).Y = %v, want 2", got.Y)
	}
	if ps.NumVertices() != 2 || ps.VerticesSize() != 2 {
		t.Errorf("counts = %d/%d, want 2/2", ps.NumVertices(), ps.VerticesSize())
	}
}

func TestDeleteVertexIdempotent(t *testing.T) {
	ps := New()
	v := ps.AddVertex(v3.Vec{})
	ps.DeleteVertex(v)
	ps.DeleteVertex(v)

	if ps.NumDeletedVertices() != 1 {
		t.Errorf("NumDeletedVertices = %d, want 1", ps.NumDeletedVertices())
	}
	if ps.IsValid(v) {
		t.Error("deleted vertex reported valid")
	}
	if !ps.HasGarbage() {
		t.Error("garbage flag not raised")
	}
}

func TestIsValidRange(t *testing.T) {
	ps := New()
	ps.AddVertex(v3.Vec{})
	tests := []struct {
		name string
		v    Vertex
		want bool
	}{
		{"live", 0, true},
		{"sentinel", InvalidVertex, false},
		{"out of range", 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ps.IsValid(tt.v); got != tt.want {
				t.Errorf("IsValid(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestGarbageCollectionCompacts(t *testing.T) {
	ps := New()
	for i := 0; i < 5; i++ {
		ps.AddVertex(v3.Vec{X: float64(i)})
	}
	ps.DeleteVertex(0)
	ps.DeleteVertex(3)

	remap := ps.BeginGarbage()
	if remap.NumVertices != 3 {
		t.Fatalf("NumVertices = %d, want 3", remap.NumVertices)
	}
	if got := remap.Lookup(0); got.IsValid() {
		t.Errorf("deleted vertex remapped to %v, want invalid", got)
	}
	// Every survivor must land on a row holding its old position.
	for _, old := range []Vertex{1, 2, 4} {
		nv := remap.Lookup(old)
		if !nv.IsValid() || nv.Idx() >= 3 {
			t.Fatalf("Lookup(%v) = %v, want a row < 3", old, nv)
		}
		if got := ps.Position(nv).X; got != float64(old) {
			t.Errorf("vertex %v moved to %v holding X=%v, want %v", old, nv, got, float64(old))
		}
	}
	ps.FinalizeGarbage()

	if ps.VerticesSize() != 3 || ps.NumDeletedVertices() != 0 {
		t.Errorf("after finalize: size=%d deleted=%d, want 3/0", ps.VerticesSize(), ps.NumDeletedVertices())
	}
	if ps.HasGarbage() {
		t.Error("garbage flag still raised")
	}
	if ps.VertexContainer().Exists(GarbageProperty) {
		t.Error("remap column survived FinalizeGarbage")
	}
}

func TestGarbageCollectionAllDeleted(t *testing.T) {
	ps := New()
	a := ps.AddVertex(v3.Vec{})
	b := ps.AddVertex(v3.Vec{})
	ps.DeleteVertex(a)
	ps.DeleteVertex(b)
	ps.GarbageCollection()
	if ps.VerticesSize() != 0 {
		t.Errorf("VerticesSize = %d, want 0", ps.VerticesSize())
	}
}

func TestVerticesSkipsDeleted(t *testing.T) {
	ps := New()
	for i := 0; i < 4; i++ {
		ps.AddVertex(v3.Vec{})
	}
	ps.DeleteVertex(1)
	var got []Vertex
	for v := range ps.Vertices() {
		got = append(got, v)
	}
	if len(got) != 3 || got[0] != 0 || got[1] != 2 || got[2] != 3 {
		t.Errorf("Vertices() = %v, want [v0 v2 v3]", got)
	}
}

func TestBoundingBox(t *testing.T) {
	ps := New()
	if _, _, ok := ps.BoundingBox(); ok {
		t.Fatal("empty set reported a bounding box")
	}
	ps.AddVertex(v3.Vec{X: -1, Y: 2, Z: 0})
	ps.AddVertex(v3.Vec{X: 3, Y: -4, Z: 5})
	lo, hi, ok := ps.BoundingBox()
	if !ok {
		t.Fatal("BoundingBox ok=false")
	}
	if lo != (v3.Vec{X: -1, Y: -4, Z: 0}) || hi != (v3.Vec{X: 3, Y: 2, Z: 5}) {
		t.Errorf("BoundingBox = %v..%v", lo, hi)
	}
}

func TestCloneAndAssign(t *testing.T) {
	ps := New()
	ps.AddVertex(v3.Vec{X: 1})
	ps.AddVertex(v3.Vec{X: 2})
	ps.DeleteVertex(0)
	custom, _ := property.Add(ps.VertexContainer(), "v:custom", 7)
	custom.Set(1, 8)

	c := ps.Clone()
	if !c.VertexContainer().Exists("v:custom") {
		t.Error("Clone dropped a custom column")
	}
	c.SetPosition(1, v3.Vec{X: 9})
	if ps.Position(1).X != 2 {
		t.Error("Clone shares storage with its source")
	}

	a := New()
	a.Assign(ps)
	if a.VertexContainer().Exists("v:custom") {
		t.Error("Assign kept a custom column")
	}
	if a.VerticesSize() != 2 || a.NumDeletedVertices() != 1 {
		t.Errorf("Assign counts = %d/%d, want 2/1", a.VerticesSize(), a.NumDeletedVertices())
	}
	if a.Position(1).X != 2 || !a.IsDeleted(0) {
		t.Error("Assign did not copy standard columns")
	}
}
