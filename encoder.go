package wrapt

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// Encoder is an ObjectWriter that builds a complete Wrapt file in memory.
type Encoder struct {
	entries []uint64
	data    bytesBuilder
}

var _ ObjectWriter = (*Encoder)(nil)

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Count returns the number of objects appended so far.
func (e *Encoder) Count() int {
	return len(e.entries)
}

// AppendObject encodes v as the next object. v's concrete type must match
// tag; maps must be given in their MapRecord form.
func (e *Encoder) AppendObject(tag Tag, v Value) error {
	if v == nil || v.Tag() != tag {
		return fmt.Errorf("%w: value %T does not match tag %v", ErrUnsupportedType, v, tag)
	}
	off := uint64(e.data.Len())
	if off > maxDataOffset {
		return fmt.Errorf("wrapt: data segment too large (%d bytes)", off)
	}
	switch v := v.(type) {
	case Int:
		e.data.AppendFixedUint64(uint64(v))
	case Float:
		e.data.AppendFixedUint64(math.Float64bits(float64(v)))
	case Boolean:
		if v {
			e.data.AppendFixedUint64(1)
		} else {
			e.data.AppendFixedUint64(0)
		}
	case String:
		if !utf8.ValidString(string(v)) {
			return fmt.Errorf("%w: string is not valid UTF-8", ErrUnsupportedType)
		}
		e.data.Write([]byte(v))
	case Null:
		// empty payload
	case Blob:
		e.data.Write(v)
	case MapRecord:
		e.data.AppendFixedUint64(uint64(v.TagIndex))
		e.data.AppendFixedUint64(uint64(v.HashIndex))
		for _, entry := range v.Entries {
			e.data.AppendFixedUint64(uint64(entry.KeyIndex))
			e.data.AppendFixedUint64(uint64(entry.ValueIndex))
		}
	default:
		return fmt.Errorf("%w: cannot encode %T", ErrUnsupportedType, v)
	}
	e.entries = append(e.entries, packIndexEntry(tag, off))
	return nil
}

// Bytes returns the encoded file.
func (e *Encoder) Bytes() []byte {
	dataOffset := headerSize + len(e.entries)*indexEntrySize
	buf := make([]byte, dataOffset, dataOffset+e.data.Len())
	copy(buf[0:8], Magic)
	binary.BigEndian.PutUint64(buf[8:16], uint64(dataOffset))
	for i, entry := range e.entries {
		binary.BigEndian.PutUint64(buf[headerSize+i*indexEntrySize:], entry)
	}
	return append(buf, e.data.Buf...)
}

// WriteTo writes the encoded file to w.
func (e *Encoder) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(e.Bytes())
	return int64(n), err
}
