package ts

import "fmt"

// Set is an unordered set of comparable values.
type Set[T comparable] map[T]struct{}

// NewSet returns a set holding the given items.
func NewSet[T comparable](items ...T) Set[T] {
	s := make(Set[T], len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

func (s Set[T]) Add(v T) {
	s[v] = struct{}{}
}

func (s Set[T]) Len() int {
	return len(s)
}

// AddAll adds every member of other to s.
func (s Set[T]) AddAll(other Set[T]) {
	for k := range other {
		s[k] = struct{}{}
	}
}

func (s Set[T]) Copy() Set[T] {
	out := make(Set[T], len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func (s Set[T]) Union(other Set[T]) Set[T] {
	out := s.Copy()
	out.AddAll(other)
	return out
}

func (s Set[T]) Intersect(other Set[T]) Set[T] {
	out := NewSet[T]()
	for k := range s {
		if other.Has(k) {
			out.Add(k)
		}
	}
	return out
}

func (s Set[T]) Difference(other Set[T]) Set[T] {
	out := NewSet[T]()
	for k := range s {
		if !other.Has(k) {
			out.Add(k)
		}
	}
	return out
}

// Equal reports whether both sets hold exactly the same members.
func (s Set[T]) Equal(other Set[T]) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// Slice returns the members in unspecified order.
func (s Set[T]) Slice() []T {
	out := make([]T, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}

// Pair is a product state or location.
type Pair[X, Y comparable] struct {
	First  X
	Second Y
}

// PairOf builds a Pair.
func PairOf[X, Y comparable](x X, y Y) Pair[X, Y] {
	return Pair[X, Y]{First: x, Second: y}
}

func (p Pair[X, Y]) String() string {
	return fmt.Sprintf("<%v, %v>", p.First, p.Second)
}

// ordered keeps a set together with its insertion order so that iteration
// is deterministic.
type ordered[T comparable] struct {
	index map[T]int
	items []T
}

func newOrdered[T comparable]() ordered[T] {
	return ordered[T]{index: make(map[T]int)}
}

func (o *ordered[T]) has(v T) bool {
	_, ok := o.index[v]
	return ok
}

func (o *ordered[T]) add(v T) bool {
	if o.has(v) {
		return false
	}
	o.index[v] = len(o.items)
	o.items = append(o.items, v)
	return true
}

func (o *ordered[T]) remove(v T) bool {
	i, ok := o.index[v]
	if !ok {
		return false
	}
	delete(o.index, v)
	o.items = append(o.items[:i], o.items[i+1:]...)
	for j := i; j < len(o.items); j++ {
		o.index[o.items[j]] = j
	}
	return true
}

func (o *ordered[T]) slice() []T {
	out := make([]T, len(o.items))
	copy(out, o.items)
	return out
}

func (o *ordered[T]) set() Set[T] {
	out := make(Set[T], len(o.items))
	for _, v := range o.items {
		out[v] = struct{}{}
	}
	return out
}
