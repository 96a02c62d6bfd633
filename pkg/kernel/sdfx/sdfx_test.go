package sdfx

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/edgeset/pkg/edgeset"
	"github.com/chazu/edgeset/pkg/kernel"
)

func TestPrimitivesTessellate(t *testing.T) {
	k := New(WithCells(16))
	tests := []struct {
		name  string
		solid func() (kernel.Solid, error)
	}{
		{"box", func() (kernel.Solid, error) { return k.Box(10, 5, 2.5) }},
		{"sphere", func() (kernel.Solid, error) { return k.Sphere(4) }},
		{"cylinder", func() (kernel.Solid, error) { return k.Cylinder(10, 2) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.solid()
			if err != nil {
				t.Fatalf("constructor failed: %v", err)
			}
			mesh, err := k.ToMesh(s)
			if err != nil {
				t.Fatalf("ToMesh failed: %v", err)
			}
			if mesh.TriangleCount() == 0 {
				t.Fatal("expected non-zero triangle count")
			}
			if mesh.VertexCount() != 3*mesh.TriangleCount() {
				t.Fatalf("soup has %d vertices for %d triangles", mesh.VertexCount(), mesh.TriangleCount())
			}
			t.Logf("%s triangle count: %d", tt.name, mesh.TriangleCount())
		})
	}
}

func TestInvalidDimensions(t *testing.T) {
	k := New()
	if _, err := k.Sphere(-1); err == nil {
		t.Error("Sphere(-1) succeeded, want error")
	}
	if _, err := k.Cylinder(-1, 1); err == nil {
		t.Error("Cylinder(-1, 1) succeeded, want error")
	}
}

func TestBoundingBox(t *testing.T) {
	k := New()
	box, err := k.Box(100, 50, 25)
	if err != nil {
		t.Fatal(err)
	}
	min, max := box.BoundingBox()

	const tol = 0.01
	expectMin := v3.Vec{X: -50, Y: -25, Z: -12.5}
	expectMax := v3.Vec{X: 50, Y: 25, Z: 12.5}
	if min.Sub(expectMin).Length() > tol {
		t.Errorf("min = %v, expected %v", min, expectMin)
	}
	if max.Sub(expectMax).Length() > tol {
		t.Errorf("max = %v, expected %v", max, expectMax)
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	box, err := k.Box(10, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	min, max := k.Translate(box, 100, 200, 300).BoundingBox()

	const tol = 0.5
	if min.Sub(v3.Vec{X: 95, Y: 195, Z: 295}).Length() > tol {
		t.Errorf("min = %v, expected ~(95,195,295)", min)
	}
	if max.Sub(v3.Vec{X: 105, Y: 205, Z: 305}).Length() > tol {
		t.Errorf("max = %v, expected ~(105,205,305)", max)
	}
}

func TestUnion(t *testing.T) {
	k := New(WithCells(16))
	a, _ := k.Box(50, 50, 50)
	b, _ := k.Box(50, 50, 50)
	u := k.Union(a, k.Translate(b, 30, 0, 0))
	min, max := u.BoundingBox()
	if got := max.X - min.X; math.Abs(got-80) > 0.5 {
		t.Errorf("union X extent = %f, expected ~80", got)
	}
	mesh, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
}

func TestSphereWireframe(t *testing.T) {
	k := New(WithCells(12))
	s, err := k.Sphere(5)
	if err != nil {
		t.Fatal(err)
	}
	mesh, err := k.ToMesh(s)
	if err != nil {
		t.Fatal(err)
	}

	es := edgeset.New()
	imp, err := kernel.Wireframe(mesh, es, 1e-6)
	if err != nil {
		t.Fatalf("Wireframe failed: %v", err)
	}
	if es.NumVertices() >= mesh.VertexCount() {
		t.Errorf("welding kept %d of %d soup vertices", es.NumVertices(), mesh.VertexCount())
	}
	if imp.Edges != es.NumEdges() {
		t.Errorf("reported %d edges, edge set has %d", imp.Edges, es.NumEdges())
	}
	if findings := edgeset.Validate(es); edgeset.HasErrors(findings) {
		t.Errorf("Validate() reported errors: %v", findings[0])
	}
	for e := range es.Edges() {
		if l := es.EdgeLength(e); l <= 0 || l > 5 {
			t.Errorf("edge %v has length %v", e, l)
			break
		}
	}
}

func TestSphereWireframeFaces(t *testing.T) {
	k := New(WithCells(10))
	s, err := k.Sphere(3)
	if err != nil {
		t.Fatal(err)
	}
	mesh, err := k.ToMesh(s)
	if err != nil {
		t.Fatal(err)
	}

	es := edgeset.New()
	imp, err := kernel.Wireframe(mesh, es, 1e-6)
	if err != nil {
		t.Fatalf("Wireframe failed: %v", err)
	}
	if want := mesh.TriangleCount() - imp.Degenerate; imp.Faces != want {
		t.Errorf("Faces = %d, want %d", imp.Faces, want)
	}
	for v := range es.Vertices() {
		if n := es.ComputeVertexNormal(v); math.Abs(n.Length()-1) > 1e-9 {
			t.Errorf("ComputeVertexNormal(%v) = %v, want unit length", v, n)
			break
		}
	}
	if findings := edgeset.Validate(es); len(findings) > 0 {
		t.Errorf("Validate() = %v", findings[0])
	}
}
