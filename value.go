package wrapt

import (
	"bytes"
	"slices"
)

// Index identifies a logical object slot. Index 0 is always the root.
type Index uint64

// RootIndex is the index of the root object.
const RootIndex Index = 0

// Value is a tagged value. The concrete types are Int, Float, String,
// Boolean, Null, Blob, *Map, Array and MapRecord; nothing outside this
// package can implement Value.
type Value interface {
	Tag() Tag
	value()
}

type (
	Int     int64
	Float   float64
	String  string
	Boolean bool
	Null    struct{}
	Blob    []byte

	// Array holds the verbatim payload of an object tagged TagArray. Arrays
	// have no defined encoding, so the payload is carried opaquely and any
	// attempt to write one fails with ErrUnsupportedType.
	Array []byte
)

func (Int) Tag() Tag       { return TagInt }
func (Float) Tag() Tag     { return TagFloat }
func (String) Tag() Tag    { return TagString }
func (Boolean) Tag() Tag   { return TagBoolean }
func (Null) Tag() Tag      { return TagNull }
func (Blob) Tag() Tag      { return TagBlob }
func (Array) Tag() Tag     { return TagArray }
func (*Map) Tag() Tag      { return TagMap }
func (MapRecord) Tag() Tag { return TagMap }

func (Int) value()       {}
func (Float) value()     {}
func (String) value()    {}
func (Boolean) value()   {}
func (Null) value()      {}
func (Blob) value()      {}
func (Array) value()     {}
func (*Map) value()      {}
func (MapRecord) value() {}

// MapEntry is a key and the index of the object it refers to.
type MapEntry struct {
	Key   string
	Value Index
}

// Map is the in-memory form of a map object: a tag string, a reference to an
// opaque content-hash blob, and string-keyed references in insertion order.
// Keys are unique; see normalizeEntries.
type Map struct {
	TagName string
	Hash    Index
	Entries []MapEntry
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.Entries)
}

// Lookup returns the index stored under key.
func (m *Map) Lookup(key string) (Index, bool) {
	for _, e := range m.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return 0, false
}

// MapRecord is the on-disk normal form of a map: every field is an index,
// including the tag string and the key strings. It is produced by the
// output processor and consumed by writers; it never lives in a Store.
type MapRecord struct {
	TagIndex  Index
	HashIndex Index
	Entries   []MapRecordEntry
}

type MapRecordEntry struct {
	KeyIndex   Index
	ValueIndex Index
}

// normalizeEntries collapses duplicate keys: each key keeps the position of
// its first insertion and the value of its last one.
func normalizeEntries(entries []MapEntry) []MapEntry {
	result := make([]MapEntry, 0, len(entries))
	pos := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := pos[e.Key]; ok {
			result[i].Value = e.Value
			continue
		}
		pos[e.Key] = len(result)
		result = append(result, e)
	}
	return result
}

// cloneValue returns a copy of v that shares no mutable memory with it.
// Values handed out of or into a Store go through it, so a caller holding
// a *Map or Blob cannot edit stored state behind SetObject's back.
func cloneValue(v Value) Value {
	switch v := v.(type) {
	case *Map:
		return &Map{
			TagName: v.TagName,
			Hash:    v.Hash,
			Entries: slices.Clone(v.Entries),
		}
	case Blob:
		return Blob(bytes.Clone(v))
	case Array:
		return Array(bytes.Clone(v))
	case MapRecord:
		v.Entries = slices.Clone(v.Entries)
		return v
	default:
		return v
	}
}
