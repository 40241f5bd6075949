package wrapt

import (
	"bytes"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"
)

// ExportMsgpack renders the graph reachable from h as a msgpack document.
// Maps become msgpack maps with keys in entry order; their tag string and
// hash blob are not exported. Shared objects are written once per
// reference, and a cycle fails with ErrUnsupportedType.
func ExportMsgpack(h Handle) ([]byte, error) {
	bb := bytesBuilder{}
	enc := msgpack.GetEncoder()
	enc.ResetDict(&bb, nil)
	err := exportValue(enc, h.store, h.index, make(map[Index]bool))
	msgpack.PutEncoder(enc)
	if err != nil {
		return nil, err
	}
	return bb.Buf, nil
}

func exportValue(enc *msgpack.Encoder, s *Store, i Index, path map[Index]bool) error {
	v, err := s.Object(i)
	if err != nil {
		return err
	}
	switch v := v.(type) {
	case Int:
		return enc.EncodeInt(int64(v))
	case Float:
		return enc.EncodeFloat64(float64(v))
	case String:
		return enc.EncodeString(string(v))
	case Boolean:
		return enc.EncodeBool(bool(v))
	case Null:
		return enc.EncodeNil()
	case Blob:
		return enc.EncodeBytes(v)
	case *Map:
		if path[i] {
			return fmt.Errorf("%w: cycle through object %d cannot be exported", ErrUnsupportedType, i)
		}
		path[i] = true
		defer delete(path, i)
		if err := enc.EncodeMapLen(len(v.Entries)); err != nil {
			return err
		}
		for _, e := range v.Entries {
			if err := enc.EncodeString(e.Key); err != nil {
				return err
			}
			if err := exportValue(enc, s, e.Value, path); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: cannot export object %d of type %v", ErrUnsupportedType, i, v.Tag())
	}
}

type orderedMap []orderedMapEntry

type orderedMapEntry struct {
	key   string
	value any
}

func decodeOrderedMap(dec *msgpack.Decoder) (any, error) {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	m := make(orderedMap, 0, n)
	for range n {
		key, err := dec.DecodeString()
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		value, err := dec.DecodeInterface()
		if err != nil {
			return nil, err
		}
		m = append(m, orderedMapEntry{key, value})
	}
	return m, nil
}

// ImportMsgpack decodes a msgpack document and stores it at dst, allocating
// a new object for every nested value. Arrays and extension types fail with
// ErrUnsupportedType.
func ImportMsgpack(data []byte, dst Handle) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetMapDecoder(decodeOrderedMap)
	v, err := dec.DecodeInterface()
	if err != nil {
		return fmt.Errorf("%w: msgpack: %v", ErrFormat, err)
	}
	return importValue(dst, v)
}

func importValue(h Handle, v any) error {
	switch v := v.(type) {
	case nil:
		return h.CreateNull()
	case bool:
		return h.CreateBoolean(v)
	case int8:
		return h.CreateInt(int64(v))
	case int16:
		return h.CreateInt(int64(v))
	case int32:
		return h.CreateInt(int64(v))
	case int64:
		return h.CreateInt(v)
	case uint8:
		return h.CreateInt(int64(v))
	case uint16:
		return h.CreateInt(int64(v))
	case uint32:
		return h.CreateInt(int64(v))
	case uint64:
		if v > math.MaxInt64 {
			return fmt.Errorf("%w: integer %d does not fit into int64", ErrUnsupportedType, v)
		}
		return h.CreateInt(int64(v))
	case float32:
		return h.CreateFloat(float64(v))
	case float64:
		return h.CreateFloat(v)
	case string:
		return h.CreateString(v)
	case []byte:
		return h.CreateBlob(v)
	case orderedMap:
		b := h.CreateMap()
		for _, e := range v {
			child := Handle{h.store, h.store.Allocate()}
			if err := importValue(child, e.value); err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			if err := b.Put(e.key, child); err != nil {
				return err
			}
		}
		return b.Build()
	default:
		return fmt.Errorf("%w: cannot import msgpack %T", ErrUnsupportedType, v)
	}
}
