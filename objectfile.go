package wrapt

import (
	"bytes"
	"encoding/binary"
	"math"
	"sync"
	"unicode/utf8"
)

const mapRecordHeaderSize = 16
const mapRecordEntrySize = 16

// ObjectFile decodes the objects of a RawFile into Values and memoizes the
// results. Base file content never changes, so the cache is never invalidated.
type ObjectFile struct {
	raw *RawFile

	mu    sync.Mutex
	cache map[Index]Value
}

func NewObjectFile(raw *RawFile) *ObjectFile {
	return &ObjectFile{
		raw:   raw,
		cache: make(map[Index]Value),
	}
}

func (f *ObjectFile) ObjectCount() uint64 {
	return f.raw.ObjectCount()
}

// Object returns the decoded value of object i. The result is a copy the
// caller may keep and modify; it does not alias the byte source. Decoding
// happens outside the lock; concurrent misses on the same index may both
// decode, and the last result wins.
func (f *ObjectFile) Object(i Index) (Value, error) {
	f.mu.Lock()
	v, ok := f.cache[i]
	f.mu.Unlock()
	if ok {
		return cloneValue(v), nil
	}

	tag, data, err := f.raw.Object(i)
	if err != nil {
		return nil, err
	}
	v, err = f.decode(i, tag, data)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.cache[i] = v
	f.mu.Unlock()
	return cloneValue(v), nil
}

func (f *ObjectFile) decode(i Index, tag Tag, data []byte) (Value, error) {
	switch tag {
	case TagInt:
		if len(data) != 8 {
			return nil, dataErrf(i, tag, data, nil, "want 8 bytes, got %d", len(data))
		}
		return Int(int64(binary.BigEndian.Uint64(data))), nil
	case TagFloat:
		if len(data) != 8 {
			return nil, dataErrf(i, tag, data, nil, "want 8 bytes, got %d", len(data))
		}
		return Float(math.Float64frombits(binary.BigEndian.Uint64(data))), nil
	case TagBoolean:
		if len(data) != 8 {
			return nil, dataErrf(i, tag, data, nil, "want 8 bytes, got %d", len(data))
		}
		switch binary.BigEndian.Uint64(data) {
		case 0:
			return Boolean(false), nil
		case 1:
			return Boolean(true), nil
		default:
			return nil, dataErrf(i, tag, data, nil, "boolean must be 0 or 1")
		}
	case TagString:
		if !utf8.Valid(data) {
			return nil, dataErrf(i, tag, data, nil, "invalid UTF-8")
		}
		return String(data), nil
	case TagNull:
		if len(data) != 0 {
			return nil, dataErrf(i, tag, data, nil, "null must be empty")
		}
		return Null{}, nil
	// byte sources may hand out views of a mapping that goes away on Close
	case TagBlob:
		return Blob(bytes.Clone(data)), nil
	case TagArray:
		return Array(bytes.Clone(data)), nil
	case TagMap:
		rec, err := decodeMapRecord(i, data)
		if err != nil {
			return nil, err
		}
		return f.resolveMap(i, rec)
	default:
		panic("unreachable")
	}
}

func decodeMapRecord(i Index, data []byte) (MapRecord, error) {
	n := len(data)
	if n < mapRecordHeaderSize || (n-mapRecordHeaderSize)%mapRecordEntrySize != 0 {
		return MapRecord{}, dataErrf(i, TagMap, data, nil, "bad map payload length %d", n)
	}
	rec := MapRecord{
		TagIndex:  Index(binary.BigEndian.Uint64(data[0:8])),
		HashIndex: Index(binary.BigEndian.Uint64(data[8:16])),
		Entries:   make([]MapRecordEntry, (n-mapRecordHeaderSize)/mapRecordEntrySize),
	}
	for j := range rec.Entries {
		off := mapRecordHeaderSize + j*mapRecordEntrySize
		rec.Entries[j] = MapRecordEntry{
			KeyIndex:   Index(binary.BigEndian.Uint64(data[off : off+8])),
			ValueIndex: Index(binary.BigEndian.Uint64(data[off+8 : off+16])),
		}
	}
	return rec, nil
}

// resolveMap turns a map record into a Map by reading its tag and key strings.
func (f *ObjectFile) resolveMap(i Index, rec MapRecord) (*Map, error) {
	tagName, err := f.stringAt(i, rec.TagIndex)
	if err != nil {
		return nil, err
	}
	entries := make([]MapEntry, len(rec.Entries))
	for j, e := range rec.Entries {
		key, err := f.stringAt(i, e.KeyIndex)
		if err != nil {
			return nil, err
		}
		entries[j] = MapEntry{Key: key, Value: e.ValueIndex}
	}
	return &Map{
		TagName: tagName,
		Hash:    rec.HashIndex,
		Entries: normalizeEntries(entries),
	}, nil
}

func (f *ObjectFile) stringAt(owner, i Index) (string, error) {
	// check the tag before decoding so that a map naming another map as
	// its key cannot recurse
	tag, _, err := f.raw.indexEntry(i)
	if err != nil {
		return "", err
	}
	if tag != TagString {
		return "", dataErrf(owner, TagMap, nil, nil, "object %d is %v, map tag and keys must be strings", i, tag)
	}
	v, err := f.Object(i)
	if err != nil {
		return "", err
	}
	s, ok := v.(String)
	if !ok {
		return "", dataErrf(owner, TagMap, nil, nil, "object %d is %v, map tag and keys must be strings", i, v.Tag())
	}
	return string(s), nil
}
