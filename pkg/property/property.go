// Package property implements the attribute store shared by the vertex,
// halfedge, and edge layers: named, typed columns that all grow, shrink,
// and swap rows together.
package property

import (
	"fmt"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/pkg/errors"
)

// ErrDuplicate is returned when a column name is declared twice.
var ErrDuplicate = errors.New("property already exists")

// column is the type-erased view of a typed array used by Container for
// bulk operations.
type column interface {
	name() string
	typeName() string
	reserve(n int)
	resize(n int)
	pushBack()
	swap(i, j int)
	freeMemory()
	clone() column
}

// array is the storage behind a Property.
type array[T any] struct {
	label string
	data  []T
	def   T
}

func (a *array[T]) name() string     { return a.label }
func (a *array[T]) typeName() string { return fmt.Sprintf("%T", a.def) }

func (a *array[T]) reserve(n int) {
	if cap(a.data) >= n {
		return
	}
	grown := make([]T, len(a.data), n)
	copy(grown, a.data)
	a.data = grown
}

func (a *array[T]) resize(n int) {
	if n <= len(a.data) {
		a.data = a.data[:n]
		return
	}
	a.reserve(n)
	old := len(a.data)
	a.data = a.data[:n]
	for i := old; i < n; i++ {
		a.data[i] = a.def
	}
}

func (a *array[T]) pushBack() {
	a.data = append(a.data, a.def)
}

func (a *array[T]) swap(i, j int) {
	a.data[i], a.data[j] = a.data[j], a.data[i]
}

// freeMemory drops capacity beyond the current length.
func (a *array[T]) freeMemory() {
	if cap(a.data) == len(a.data) {
		return
	}
	shrunk := make([]T, len(a.data))
	copy(shrunk, a.data)
	a.data = shrunk
}

func (a *array[T]) clone() column {
	c := &array[T]{label: a.label, def: a.def, data: make([]T, len(a.data))}
	copy(c.data, a.data)
	return c
}

// Property is a typed handle to one column. The zero value is invalid.
// Handles point into the owning Container; after Container.Clone they must
// be fetched again from the copy.
type Property[T any] struct {
	arr *array[T]
}

// IsValid reports whether the handle refers to a column.
func (p Property[T]) IsValid() bool { return p.arr != nil }

// Name returns the column name.
func (p Property[T]) Name() string { return p.arr.label }

// Get returns the value stored at row i.
func (p Property[T]) Get(i int) T { return p.arr.data[i] }

// Set stores v at row i.
func (p Property[T]) Set(i int, v T) { p.arr.data[i] = v }

// Ptr returns a pointer to row i, valid until the next resize.
func (p Property[T]) Ptr(i int) *T { return &p.arr.data[i] }

// Data exposes the backing slice.
func (p Property[T]) Data() []T { return p.arr.data }

// Len returns the number of rows.
func (p Property[T]) Len() int { return len(p.arr.data) }

// Copy overwrites this column's rows with src's rows. Lengths must agree.
func (p Property[T]) Copy(src Property[T]) {
	p.arr.data = p.arr.data[:0]
	p.arr.data = append(p.arr.data, src.arr.data...)
}

// Container keeps a set of equally sized columns in declaration order.
type Container struct {
	cols *linkedhashmap.Map
	size int
}

// NewContainer returns an empty container.
func NewContainer() *Container {
	return &Container{cols: linkedhashmap.New()}
}

// Add declares a new column filled with def.
func Add[T any](c *Container, name string, def T) (Property[T], error) {
	if _, found := c.cols.Get(name); found {
		return Property[T]{}, errors.Wrapf(ErrDuplicate, "property %q", name)
	}
	a := &array[T]{label: name, def: def, data: make([]T, 0, c.size)}
	a.resize(c.size)
	c.cols.Put(name, column(a))
	return Property[T]{arr: a}, nil
}

// Get fetches a column by name. ok is false if it is missing or holds a
// different element type.
func Get[T any](c *Container, name string) (p Property[T], ok bool) {
	v, found := c.cols.Get(name)
	if !found {
		return Property[T]{}, false
	}
	a, ok := v.(*array[T])
	if !ok {
		return Property[T]{}, false
	}
	return Property[T]{arr: a}, true
}

// GetOrAdd fetches a column, declaring it with def when absent.
func GetOrAdd[T any](c *Container, name string, def T) (Property[T], error) {
	if p, ok := Get[T](c, name); ok {
		return p, nil
	}
	return Add(c, name, def)
}

// Exists reports whether a column with the given name is declared.
func (c *Container) Exists(name string) bool {
	_, found := c.cols.Get(name)
	return found
}

// Remove drops a column. It returns false if no such column exists.
func (c *Container) Remove(name string) bool {
	if _, found := c.cols.Get(name); !found {
		return false
	}
	c.cols.Remove(name)
	return true
}

// Names lists column names in declaration order.
func (c *Container) Names() []string {
	names := make([]string, 0, c.cols.Size())
	it := c.cols.Iterator()
	for it.Next() {
		names = append(names, it.Key().(string))
	}
	return names
}

// TypeOf returns the element type name of a column, or "" if missing.
func (c *Container) TypeOf(name string) string {
	v, found := c.cols.Get(name)
	if !found {
		return ""
	}
	return v.(column).typeName()
}

// Len returns the shared row count.
func (c *Container) Len() int { return c.size }

// NumProperties returns the number of declared columns.
func (c *Container) NumProperties() int { return c.cols.Size() }

func (c *Container) each(fn func(column)) {
	it := c.cols.Iterator()
	for it.Next() {
		fn(it.Value().(column))
	}
}

// Reserve grows the capacity of every column without changing length.
func (c *Container) Reserve(n int) {
	c.each(func(col column) { col.reserve(n) })
}

// Resize sets the row count of every column.
func (c *Container) Resize(n int) {
	c.each(func(col column) { col.resize(n) })
	c.size = n
}

// PushBack appends one default row to every column.
func (c *Container) PushBack() {
	c.each(func(col column) { col.pushBack() })
	c.size++
}

// Swap exchanges rows i and j in every column.
func (c *Container) Swap(i, j int) {
	c.each(func(col column) { col.swap(i, j) })
}

// FreeMemory releases capacity beyond the current row count.
func (c *Container) FreeMemory() {
	c.each(func(col column) { col.freeMemory() })
}

// Clear drops every column and resets the row count.
func (c *Container) Clear() {
	c.cols.Clear()
	c.size = 0
}

// Clone returns a deep copy with the same columns, order, and rows.
func (c *Container) Clone() *Container {
	out := &Container{cols: linkedhashmap.New(), size: c.size}
	c.each(func(col column) { out.cols.Put(col.name(), col.clone()) })
	return out
}
