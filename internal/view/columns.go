package view

import "strings"

// SortKey is a typed ordering value. Keys of different kinds order by kind:
// bools before integers before floats before strings.
type SortKey struct {
	kind keyKind
	u    uint64
	i    int64
	f    float64
	s    string
}

type keyKind int

const (
	kindBool keyKind = iota
	kindUint
	kindInt
	kindFloat
	kindString
)

func BoolKey(b bool) SortKey {
	k := SortKey{kind: kindBool}
	if b {
		k.u = 1
	}
	return k
}

func UintKey(v uint64) SortKey   { return SortKey{kind: kindUint, u: v} }
func IntKey(v int64) SortKey     { return SortKey{kind: kindInt, i: v} }
func FloatKey(v float64) SortKey { return SortKey{kind: kindFloat, f: v} }
func StringKey(v string) SortKey { return SortKey{kind: kindString, s: v} }

// Compare returns -1, 0 or +1.
func (k SortKey) Compare(o SortKey) int {
	if k.kind != o.kind {
		return cmpInt(int64(k.kind), int64(o.kind))
	}
	switch k.kind {
	case kindBool, kindUint:
		switch {
		case k.u < o.u:
			return -1
		case k.u > o.u:
			return 1
		}
		return 0
	case kindInt:
		return cmpInt(k.i, o.i)
	case kindFloat:
		switch {
		case k.f < o.f:
			return -1
		case k.f > o.f:
			return 1
		}
		return 0
	default:
		return strings.Compare(k.s, o.s)
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Column describes one table column over rows of type T.
type Column[T any] struct {
	ID         string
	Title      string
	Filterable bool
	Sortable   bool
	// Accessor renders the cell text. It is also the filter haystack and the
	// ordering fallback when SortKey is nil.
	Accessor func(T) string
	SortKey  func(T) SortKey
	// AlignRight marks numeric cells.
	AlignRight bool
}

// Compare orders a and b ascending by this column.
func (c Column[T]) Compare(a, b T) int {
	if c.SortKey != nil {
		return c.SortKey(a).Compare(c.SortKey(b))
	}
	return strings.Compare(c.Accessor(a), c.Accessor(b))
}

// Columns is an ordered column registry.
type Columns[T any] []Column[T]

// Titles returns the header row.
func (cs Columns[T]) Titles() []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Title
	}
	return out
}

// Row renders every cell of item.
func (cs Columns[T]) Row(item T) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Accessor(item)
	}
	return out
}

// Sortable returns the indices of sortable columns in display order.
func (cs Columns[T]) Sortable() []int {
	var idx []int
	for i, c := range cs {
		if c.Sortable {
			idx = append(idx, i)
		}
	}
	return idx
}

// Index finds a column by ID, or -1.
func (cs Columns[T]) Index(id string) int {
	for i, c := range cs {
		if c.ID == id {
			return i
		}
	}
	return -1
}
