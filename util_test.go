package wrapt

import (
	"encoding/binary"
	"errors"
	"reflect"
	"testing"
)

func eq[T comparable](t testing.TB, a, e T) {
	if a != e {
		t.Helper()
		t.Fatalf("** got %v, wanted %v", a, e)
	}
}

func deepEq[T any](t testing.TB, a, e T) {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Fatalf("** got %#v, wanted %#v", a, e)
	}
}

func isErr(t testing.TB, err, target error) {
	if !errors.Is(err, target) {
		t.Helper()
		t.Fatalf("** got error %v, wanted %v", err, target)
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func ensure(err error) {
	if err != nil {
		panic(err)
	}
}

type rawObject struct {
	tag     Tag
	payload []byte
}

// rawFile assembles a file by hand, bypassing Encoder.
func rawFile(objs ...rawObject) []byte {
	dataOffset := headerSize + len(objs)*indexEntrySize
	buf := make([]byte, dataOffset)
	copy(buf, Magic)
	binary.BigEndian.PutUint64(buf[8:], uint64(dataOffset))
	var off uint64
	for i, o := range objs {
		binary.BigEndian.PutUint64(buf[headerSize+i*indexEntrySize:], packIndexEntry(o.tag, off))
		off += uint64(len(o.payload))
	}
	for _, o := range objs {
		buf = append(buf, o.payload...)
	}
	return buf
}

func u64s(vs ...uint64) []byte {
	buf := make([]byte, 8*len(vs))
	for i, v := range vs {
		binary.BigEndian.PutUint64(buf[8*i:], v)
	}
	return buf
}

func openBytes(t testing.TB, data []byte) *File {
	t.Helper()
	f, err := Open(BytesSource(data), Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return f
}

func TestHexstr(t *testing.T) {
	eq(t, hexstr(nil), "<nil>")
	eq(t, hexstr([]byte{}), "<empty>")
	eq(t, hexstr([]byte{0xCA, 0xFE}), "cafe")
}
