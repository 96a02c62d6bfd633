package property

import (
	"errors"
	"testing"
)

func TestAddAndGet(t *testing.T) {
	c := NewContainer()
	c.Resize(3)

	p, err := Add(c, "v:weight", 1.5)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if p.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", p.Len())
	}
	for i := 0; i < 3; i++ {
		if got := p.Get(i); got != 1.5 {
			t.Errorf("Get(%d) = %v, want default 1.5", i, got)
		}
	}

	got, ok := Get[float64](c, "v:weight")
	if !ok {
		t.Fatal("Get returned ok=false for declared column")
	}
	got.Set(1, 7)
	if p.Get(1) != 7 {
		t.Errorf("handles do not share storage: got %v, want 7", p.Get(1))
	}
}

func TestAddDuplicate(t *testing.T) {
	c := NewContainer()
	if _, err := Add(c, "e:deleted", false); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	_, err := Add(c, "e:deleted", false)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second Add error = %v, want ErrDuplicate", err)
	}
}

func TestGetWrongType(t *testing.T) {
	c := NewContainer()
	if _, err := Add(c, "h:flag", true); err != nil {
		t.Fatal(err)
	}
	if _, ok := Get[int](c, "h:flag"); ok {
		t.Error("Get[int] on a bool column returned ok=true")
	}
	if _, ok := Get[bool](c, "missing"); ok {
		t.Error("Get on a missing column returned ok=true")
	}
}

func TestGetOrAdd(t *testing.T) {
	c := NewContainer()
	a, err := GetOrAdd(c, "x", 3)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GetOrAdd(c, "x", 9)
	if err != nil {
		t.Fatal(err)
	}
	c.PushBack()
	if a.Get(0) != 3 || b.Get(0) != 3 {
		t.Errorf("GetOrAdd redeclared column: got %d/%d, want 3/3", a.Get(0), b.Get(0))
	}
}

func TestNamesKeepDeclarationOrder(t *testing.T) {
	c := NewContainer()
	for _, name := range []string{"z", "a", "m"} {
		if _, err := Add(c, name, 0); err != nil {
			t.Fatal(err)
		}
	}
	c.Remove("a")
	names := c.Names()
	want := []string{"z", "m"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if c.Remove("a") {
		t.Error("Remove of missing column returned true")
	}
}

func TestSwapMovesEveryColumn(t *testing.T) {
	c := NewContainer()
	ints, _ := Add(c, "i", 0)
	strs, _ := Add(c, "s", "")
	c.Resize(2)
	ints.Set(0, 10)
	ints.Set(1, 20)
	strs.Set(0, "a")
	strs.Set(1, "b")

	c.Swap(0, 1)

	if ints.Get(0) != 20 || ints.Get(1) != 10 {
		t.Errorf("int column after swap = %v, want [20 10]", ints.Data())
	}
	if strs.Get(0) != "b" || strs.Get(1) != "a" {
		t.Errorf("string column after swap = %v, want [b a]", strs.Data())
	}
}

func TestResizeReserveFreeMemory(t *testing.T) {
	c := NewContainer()
	p, _ := Add(c, "v", 0)
	c.Reserve(64)
	if cap(p.Data()) < 64 {
		t.Errorf("cap after Reserve = %d, want >= 64", cap(p.Data()))
	}
	if c.Len() != 0 {
		t.Errorf("Len after Reserve = %d, want 0", c.Len())
	}

	c.Resize(10)
	c.Resize(4)
	c.FreeMemory()
	if cap(p.Data()) != 4 {
		t.Errorf("cap after FreeMemory = %d, want 4", cap(p.Data()))
	}

	// Rows exposed by regrowth get the default again.
	p.Set(3, 99)
	c.Resize(3)
	c.Resize(4)
	if p.Get(3) != 0 {
		t.Errorf("regrown row = %d, want default 0", p.Get(3))
	}
}

func TestCloneIsDeep(t *testing.T) {
	c := NewContainer()
	p, _ := Add(c, "v", 0)
	c.Resize(2)
	p.Set(0, 5)

	d := c.Clone()
	q, ok := Get[int](d, "v")
	if !ok {
		t.Fatal("clone lost column")
	}
	q.Set(0, 6)
	if p.Get(0) != 5 {
		t.Errorf("writing the clone changed the source: got %d, want 5", p.Get(0))
	}
	if d.Len() != 2 {
		t.Errorf("clone Len() = %d, want 2", d.Len())
	}
}

func TestClear(t *testing.T) {
	c := NewContainer()
	_, _ = Add(c, "v", 0)
	c.Resize(5)
	c.Clear()
	if c.Len() != 0 || c.NumProperties() != 0 {
		t.Errorf("after Clear: Len=%d NumProperties=%d, want 0/0", c.Len(), c.NumProperties())
	}
	if c.Exists("v") {
		t.Error("column still exists after Clear")
	}
}

func TestTypeOf(t *testing.T) {
	c := NewContainer()
	_, _ = Add(c, "e:deleted", false)
	if got := c.TypeOf("e:deleted"); got != "bool" {
		t.Errorf("TypeOf = %q, want bool", got)
	}
	if got := c.TypeOf("nope"); got != "" {
		t.Errorf("TypeOf(missing) = %q, want empty", got)
	}
}
