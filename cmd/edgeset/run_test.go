package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func readExample(t *testing.T, name string) string {
	t.Helper()
	src, err := os.ReadFile("../../examples/" + name)
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(src)
}

func TestRunPathExample(t *testing.T) {
	tests := []struct {
		name          string
		cfg           config
		wantVertices  int
		wantDeleted   int
		wantCollected int
	}{
		{"tombstones kept", config{}, 3, 1, 0},
		{"collected", config{collect: true, validate: true}, 3, 0, 1},
		{"keep isolated", config{collect: true, keepIsolated: true}, 4, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := run(tt.cfg, readExample(t, "path.es"))
			if err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if !rep.ok() {
				t.Fatalf("report not ok: errors=%v findings=%v", rep.Errors, rep.Findings)
			}
			if rep.Vertices != tt.wantVertices {
				t.Errorf("Vertices = %d, want %d", rep.Vertices, tt.wantVertices)
			}
			if rep.Edges != 2 {
				t.Errorf("Edges = %d, want 2", rep.Edges)
			}
			if rep.DeletedEdges != tt.wantDeleted {
				t.Errorf("DeletedEdges = %d, want %d", rep.DeletedEdges, tt.wantDeleted)
			}
			if rep.Collected != tt.wantCollected {
				t.Errorf("Collected = %d, want %d", rep.Collected, tt.wantCollected)
			}
		})
	}
}

func TestRunNearest(t *testing.T) {
	p := v3.Vec{X: 1.9, Y: 0.2}
	rep, err := run(config{collect: true, near: &p}, readExample(t, "path.es"))
	if err != nil {
		t.Fatal(err)
	}
	if !rep.HasNearest || rep.NearestPosition != (v3.Vec{X: 2}) {
		t.Errorf("nearest = %v at %v, want the vertex at (2,0,0)", rep.Nearest, rep.NearestPosition)
	}
	var buf bytes.Buffer
	rep.print(&buf)
	if !strings.Contains(buf.String(), "nearest:") {
		t.Errorf("print() output missing nearest line:\n%s", buf.String())
	}
}

func TestRunScriptError(t *testing.T) {
	rep, err := run(config{}, "(edge 1 2)")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if rep.ok() || len(rep.Errors) == 0 {
		t.Fatal("expected script errors in report")
	}
	var buf bytes.Buffer
	rep.print(&buf)
	if !strings.HasPrefix(buf.String(), "error:") {
		t.Errorf("print() = %q, want error lines", buf.String())
	}
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		want    v3.Vec
		wantErr bool
	}{
		{"1,2,3", v3.Vec{X: 1, Y: 2, Z: 3}, false},
		{" -1.5, 0 ,2e1", v3.Vec{X: -1.5, Z: 20}, false},
		{"1,2", v3.Vec{}, true},
		{"1,x,3", v3.Vec{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePoint(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePoint(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parsePoint(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
