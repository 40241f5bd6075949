package wrapt

import (
	"math"
	"testing"
)

func TestEncoder_TagMismatch(t *testing.T) {
	e := NewEncoder()
	isErr(t, e.AppendObject(TagString, Int(1)), ErrUnsupportedType)
	isErr(t, e.AppendObject(TagMap, &Map{}), ErrUnsupportedType)
	isErr(t, e.AppendObject(TagArray, Array{1}), ErrUnsupportedType)
	isErr(t, e.AppendObject(TagInt, nil), ErrUnsupportedType)
	isErr(t, e.AppendObject(TagString, String("\xff")), ErrUnsupportedType)
	eq(t, e.Count(), 0)
}

func TestEncoder_Layout(t *testing.T) {
	e := NewEncoder()
	ensure(e.AppendObject(TagInt, Int(-2)))
	ensure(e.AppendObject(TagString, String("ab")))
	ensure(e.AppendObject(TagNull, Null{}))
	ensure(e.AppendObject(TagFloat, Float(math.Inf(1))))
	eq(t, e.Count(), 4)

	want := rawFile(
		rawObject{TagInt, u64s(uint64(math.MaxUint64 - 1))},
		rawObject{TagString, []byte("ab")},
		rawObject{TagNull, nil},
		rawObject{TagFloat, u64s(math.Float64bits(math.Inf(1)))},
	)
	deepEq(t, e.Bytes(), want)

	f := openBytes(t, e.Bytes())
	eq(t, Dump(HandleAt(f.Store(), 3)), "+Inf")
}

func TestEncoder_Empty(t *testing.T) {
	data := NewEncoder().Bytes()
	eq(t, len(data), headerSize)
	raw := must(OpenRawFile(BytesSource(data)))
	eq(t, raw.ObjectCount(), uint64(0))
}
