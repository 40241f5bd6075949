package wrapt

import (
	"fmt"
	"iter"
)

type builderState int

const (
	builderEmpty builderState = iota
	builderAccumulating
	builderBuilt
)

// MapBuilder accumulates entries for a map and commits them to its
// destination slot exactly once.
type MapBuilder struct {
	dest    Handle
	state   builderState
	entries []MapEntry
	tagName string
	hash    Handle
}

// Put appends an entry referring to h's slot. A repeated key keeps its
// first position and takes the last value.
func (b *MapBuilder) Put(key string, h Handle) error {
	if b.state == builderBuilt {
		return fmt.Errorf("%w: put %q into a map that is already built", ErrInvalidState, key)
	}
	if h.store == nil || h.store != b.dest.store {
		return fmt.Errorf("%w: put %q with a handle from another store", ErrInvalidState, key)
	}
	b.entries = append(b.entries, MapEntry{key, h.index})
	b.state = builderAccumulating
	return nil
}

// SetTag sets the map's tag string.
func (b *MapBuilder) SetTag(tag string) error {
	if b.state == builderBuilt {
		return fmt.Errorf("%w: map is already built", ErrInvalidState)
	}
	b.tagName = tag
	return nil
}

// SetHash sets the content-hash blob the map refers to. The blob is opaque
// here; computing it is up to the caller.
func (b *MapBuilder) SetHash(h Handle) error {
	if b.state == builderBuilt {
		return fmt.Errorf("%w: map is already built", ErrInvalidState)
	}
	if h.store == nil || h.store != b.dest.store {
		return fmt.Errorf("%w: hash handle from another store", ErrInvalidState)
	}
	b.hash = h
	return nil
}

// Build writes the map into the destination slot. If no hash blob was set,
// a new empty blob is allocated for it.
func (b *MapBuilder) Build() error {
	if b.state == builderBuilt {
		return fmt.Errorf("%w: map already built", ErrInvalidState)
	}
	s := b.dest.store
	if s == nil {
		return fmt.Errorf("%w: map builder of a zero handle", ErrInvalidState)
	}
	// a failed Build must not allocate
	if uint64(b.dest.index) >= s.Count() {
		return &IndexError{b.dest.index, s.Count()}
	}
	hash := b.hash
	if hash.IsZero() {
		hash = Handle{s, s.Allocate()}
		if err := hash.CreateBlob(nil); err != nil {
			return err
		}
	}
	m := &Map{
		TagName: b.tagName,
		Hash:    hash.index,
		Entries: normalizeEntries(b.entries),
	}
	if err := s.SetObject(b.dest.index, m); err != nil {
		return err
	}
	b.state = builderBuilt
	b.entries = nil
	return nil
}

// MapView is a read-only view of a built map.
type MapView struct {
	store *Store
	m     *Map
}

func newMapView(s *Store, m *Map) *MapView {
	return &MapView{s, m}
}

func (v *MapView) Len() int        { return len(v.m.Entries) }
func (v *MapView) TagName() string { return v.m.TagName }
func (v *MapView) Hash() Handle    { return Handle{v.store, v.m.Hash} }

// Get returns a handle for the object stored under key.
func (v *MapView) Get(key string) (Handle, bool) {
	i, ok := v.m.Lookup(key)
	if !ok {
		return Handle{}, false
	}
	return Handle{v.store, i}, true
}

// Keys returns the keys in insertion order.
func (v *MapView) Keys() []string {
	keys := make([]string, len(v.m.Entries))
	for i, e := range v.m.Entries {
		keys[i] = e.Key
	}
	return keys
}

// All iterates over the entries in insertion order.
func (v *MapView) All() iter.Seq2[string, Handle] {
	return func(yield func(string, Handle) bool) {
		for _, e := range v.m.Entries {
			if !yield(e.Key, Handle{v.store, e.Value}) {
				return
			}
		}
	}
}

// Set always fails: built maps are immutable. Use a MapBuilder on the
// owning handle to replace the map.
func (v *MapView) Set(key string, _ Handle) error {
	return fmt.Errorf("%w: cannot set %q on a built map", ErrInvalidState, key)
}
