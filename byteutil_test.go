package wrapt

import (
	"bytes"
	"testing"
)

func TestBytesBuilder_Basics(t *testing.T) {
	var bb bytesBuilder
	off := bb.Grow(3)
	copy(bb.Buf[off:], []byte{1, 2, 3})
	bb.AppendFixedUint64(0x0102030405060708)
	_, _ = bb.Write([]byte{9, 8})

	want := []byte{1, 2, 3, 1, 2, 3, 4, 5, 6, 7, 8, 9, 8}
	if !bytes.Equal(bb.Buf, want) {
		t.Fatalf("bb.Buf = %x, wanted %x", bb.Buf, want)
	}
	eq(t, bb.Len(), len(want))
}

func TestEnsureCapacity(t *testing.T) {
	buf := ensureCapacity(nil, 1)
	eq(t, cap(buf), 16)

	buf = append(buf, 1, 2, 3)
	buf = ensureCapacity(buf, 40)
	eq(t, cap(buf), 64)
	deepEq(t, buf, []byte{1, 2, 3})

	same := ensureCapacity(buf, 10)
	eq(t, &same[0], &buf[0])
}
