package wrapt

import (
	"errors"
	"strings"
	"testing"
)

func TestDataError_ErrorAndUnwrap(t *testing.T) {
	t.Run("small data", func(t *testing.T) {
		inner := errors.New("inner")
		err := dataErrf(3, TagInt, []byte{0xAA, 0xBB}, inner, "oops")
		var de *DataError
		if !errors.As(err, &de) {
			t.Fatalf("err = %T, wanted *DataError", err)
		}
		if !errors.Is(err, inner) {
			t.Fatalf("errors.Is(err, inner) = false, wanted true")
		}
		isErr(t, err, ErrFormat)
		s := err.Error()
		if !strings.Contains(s, "oops") || !strings.Contains(s, "inner") || !strings.Contains(s, "(2) aabb") || !strings.Contains(s, "object 3 (int)") {
			t.Fatalf("err.Error() = %q, wanted message with object/oops/inner/data", s)
		}
	})

	t.Run("large data includes prefix+suffix", func(t *testing.T) {
		data := make([]byte, 200)
		for i := range data {
			data[i] = byte(i)
		}
		err := dataErrf(0, TagBlob, data, nil, "oops")
		s := err.Error()
		if !strings.Contains(s, "(200)") || !strings.Contains(s, "...") {
			t.Fatalf("err.Error() = %q, wanted message with (200) and ...", s)
		}
		isErr(t, err, ErrFormat)
	})
}

func TestIndexError(t *testing.T) {
	var err error = &IndexError{Index: 7, Count: 3}
	isErr(t, err, ErrIndexOutOfBounds)
	eq(t, err.Error(), "wrapt: index 7 out of bounds (count = 3)")
	if errors.Is(err, ErrFormat) {
		t.Fatalf("IndexError must not match ErrFormat")
	}
}

func TestHeaderError(t *testing.T) {
	err := headerErrf("bad magic %q", "nope")
	isErr(t, err, ErrFormat)
	if !strings.Contains(err.Error(), `bad magic "nope"`) {
		t.Fatalf("err.Error() = %q", err.Error())
	}
}
