package wrapt

import "fmt"

// Store is the logical object space: the objects of an immutable base file
// with in-memory overrides on top. The base is never modified. A Store is
// not safe for concurrent mutation.
type Store struct {
	base      *ObjectFile // nil for a store without a base file
	baseCount uint64
	count     uint64
	overrides map[Index]Value
}

// NewStore returns a store layered over base, which may be nil. If the base
// has no objects, index 0 is still valid and reads as Null.
func NewStore(base *ObjectFile) *Store {
	var n uint64
	if base != nil {
		n = base.ObjectCount()
	}
	count := n
	if count == 0 {
		count = 1
	}
	return &Store{
		base:      base,
		baseCount: n,
		count:     count,
		overrides: make(map[Index]Value),
	}
}

// Count returns the number of allocated indices.
func (s *Store) Count() uint64 {
	return s.count
}

// BaseCount returns the number of objects in the base file.
func (s *Store) BaseCount() uint64 {
	return s.baseCount
}

// IsOverridden reports whether index i has an in-memory value.
func (s *Store) IsOverridden(i Index) bool {
	_, ok := s.overrides[i]
	return ok
}

// Object returns a copy of the current value at index i. Changing the
// result does not change the store; use SetObject for that.
func (s *Store) Object(i Index) (Value, error) {
	if v, ok := s.overrides[i]; ok {
		return cloneValue(v), nil
	}
	if uint64(i) >= s.count {
		return nil, &IndexError{i, s.count}
	}
	if uint64(i) < s.baseCount {
		return s.base.Object(i)
	}
	if i == RootIndex {
		return Null{}, nil
	}
	return nil, fmt.Errorf("%w: index %d", ErrUninitialized, i)
}

// SetObject replaces the value at index i, which must already be allocated.
// The store keeps its own copy of v.
func (s *Store) SetObject(i Index, v Value) error {
	if uint64(i) >= s.count {
		return &IndexError{i, s.count}
	}
	if v == nil {
		return fmt.Errorf("%w: nil value for index %d", ErrInvalidState, i)
	}
	s.overrides[i] = cloneValue(v)
	return nil
}

// Allocate reserves a new index. It must be set before it is read.
func (s *Store) Allocate() Index {
	i := Index(s.count)
	s.count++
	return i
}
