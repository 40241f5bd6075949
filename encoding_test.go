package wrapt

import (
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestMsgpack_RoundTrip(t *testing.T) {
	f := New(Options{})
	z := f.NewHandle()
	ensure(z.CreateNull())
	inner := f.NewHandle()
	ib := inner.CreateMap()
	ensure(ib.SetTag("dropped"))
	ensure(ib.Put("z", z))
	ensure(ib.Build())

	rb := f.Root().CreateMap()
	for _, kv := range []struct {
		k string
		c func(Handle) error
	}{
		{"int", func(h Handle) error { return h.CreateInt(-7) }},
		{"float", func(h Handle) error { return h.CreateFloat(3.5) }},
		{"str", func(h Handle) error { return h.CreateString("héllo") }},
		{"bool", func(h Handle) error { return h.CreateBoolean(true) }},
		{"blob", func(h Handle) error { return h.CreateBlob([]byte{1, 2}) }},
	} {
		h := f.NewHandle()
		ensure(kv.c(h))
		ensure(rb.Put(kv.k, h))
	}
	ensure(rb.Put("inner", inner))
	ensure(rb.Build())

	data := must(ExportMsgpack(f.Root()))

	var generic map[string]any
	ensure(msgpack.Unmarshal(data, &generic))
	eq(t, generic["str"], any("héllo"))
	eq(t, generic["int"], any(int8(-7)))

	g := New(Options{})
	ensure(ImportMsgpack(data, g.Root()))
	eq(t, Dump(g.Root()), `{int: -7, float: 3.5, str: "héllo", bool: true, blob: blob(0102), inner: {z: null}}`)
}

func TestMsgpack_ExportCycle(t *testing.T) {
	f := New(Options{})
	mb := f.Root().CreateMap()
	ensure(mb.Put("self", f.Root()))
	ensure(mb.Build())

	_, err := ExportMsgpack(f.Root())
	isErr(t, err, ErrUnsupportedType)
}

func TestMsgpack_ExportShared(t *testing.T) {
	f := New(Options{})
	shared := f.NewHandle()
	ensure(shared.CreateInt(1))
	mb := f.Root().CreateMap()
	ensure(mb.Put("a", shared))
	ensure(mb.Put("b", shared))
	ensure(mb.Build())

	g := New(Options{})
	ensure(ImportMsgpack(must(ExportMsgpack(f.Root())), g.Root()))
	eq(t, Dump(g.Root()), "{a: 1, b: 1}")
}

func TestMsgpack_ImportScalars(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{uint64(1 << 40), "1099511627776"},
		{float32(0.5), "0.5"},
		{"s", `"s"`},
	}
	for _, tt := range tests {
		f := New(Options{})
		ensure(ImportMsgpack(must(msgpack.Marshal(tt.in)), f.Root()))
		eq(t, Dump(f.Root()), tt.want)
	}
}

func TestMsgpack_ImportUnsupported(t *testing.T) {
	for _, in := range []any{
		[]int{1, 2},
		uint64(1 << 63),
	} {
		f := New(Options{})
		err := ImportMsgpack(must(msgpack.Marshal(in)), f.Root())
		isErr(t, err, ErrUnsupportedType)
	}

	f := New(Options{})
	err := ImportMsgpack([]byte{0xc1}, f.Root())
	isErr(t, err, ErrFormat)
}
