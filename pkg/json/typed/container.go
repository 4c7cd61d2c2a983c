package typed

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// Container is anything a [Collection] field can clear and patch.
type Container[T any] interface {
	Clear()
	Insert(v T)
	Erase(v T)
}

// Set is an unordered collection without duplicates. The zero value is an
// empty set ready to use.
type Set[T comparable] struct {
	m map[T]struct{}
}

// NewSet returns a set holding vs.
func NewSet[T comparable](vs ...T) *Set[T] {
	s := &Set[T]{}
	for _, v := range vs {
		s.Insert(v)
	}
	return s
}

func (s *Set[T]) Clear() { clear(s.m) }

func (s *Set[T]) Insert(v T) {
	if s.m == nil {
		s.m = make(map[T]struct{})
	}
	s.m[v] = struct{}{}
}

func (s *Set[T]) Erase(v T) { delete(s.m, v) }

// Has reports whether v is in the set.
func (s *Set[T]) Has(v T) bool {
	_, ok := s.m[v]
	return ok
}

// Len returns the number of elements.
func (s *Set[T]) Len() int { return len(s.m) }

// All iterates over the elements in no particular order.
func (s *Set[T]) All() iter.Seq[T] { return maps.Keys(s.m) }

// Sorted returns the elements of s in ascending order.
func Sorted[T cmp.Ordered](s *Set[T]) []T {
	return slices.Sorted(s.All())
}

// List is an ordered collection that keeps duplicates. Erase removes the
// first matching element only.
type List[T comparable] struct {
	items []T
}

// NewList returns a list holding vs.
func NewList[T comparable](vs ...T) *List[T] {
	return &List[T]{items: slices.Clone(vs)}
}

func (l *List[T]) Clear() { l.items = l.items[:0] }

func (l *List[T]) Insert(v T) { l.items = append(l.items, v) }

func (l *List[T]) Erase(v T) {
	if i := slices.Index(l.items, v); i >= 0 {
		l.items = slices.Delete(l.items, i, i+1)
	}
}

// Items returns the elements in insertion order.
func (l *List[T]) Items() []T { return l.items }

// Len returns the number of elements.
func (l *List[T]) Len() int { return len(l.items) }

// Bits is a set of up to 64 flags addressed by index. Pair it with an
// [Enum] decoder that maps flag names to indices.
type Bits uint64

func (b *Bits) Clear() { *b = 0 }

func (b *Bits) Insert(i int) { *b |= 1 << uint(i) }

func (b *Bits) Erase(i int) { *b &^= 1 << uint(i) }

// Has reports whether flag i is set.
func (b Bits) Has(i int) bool { return b&(1<<uint(i)) != 0 }
