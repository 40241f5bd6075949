package wrapt

import (
	"math"
	"sync"
	"testing"
)

func openObjectFile(t testing.TB, objs ...rawObject) *ObjectFile {
	t.Helper()
	return NewObjectFile(must(OpenRawFile(BytesSource(rawFile(objs...)))))
}

func TestObjectFile_Scalars(t *testing.T) {
	f := openObjectFile(t,
		rawObject{TagInt, u64s(uint64(0xFFFFFFFFFFFFFFFF))},
		rawObject{TagFloat, u64s(math.Float64bits(2.5))},
		rawObject{TagBoolean, u64s(1)},
		rawObject{TagBoolean, u64s(0)},
		rawObject{TagString, []byte("héllo")},
		rawObject{TagNull, nil},
		rawObject{TagBlob, []byte{0xCA, 0xFE}},
		rawObject{TagArray, []byte{1, 2}},
	)
	tests := []struct {
		i    Index
		want Value
	}{
		{0, Int(-1)},
		{1, Float(2.5)},
		{2, Boolean(true)},
		{3, Boolean(false)},
		{4, String("héllo")},
		{5, Null{}},
		{6, Blob{0xCA, 0xFE}},
		{7, Array{1, 2}},
	}
	for _, tt := range tests {
		deepEq(t, must(f.Object(tt.i)), tt.want)
	}
	eq(t, f.ObjectCount(), uint64(8))
}

func TestObjectFile_FormatErrors(t *testing.T) {
	tests := []struct {
		name string
		obj  rawObject
	}{
		{"short int", rawObject{TagInt, []byte{1, 2, 3}}},
		{"long float", rawObject{TagFloat, make([]byte, 9)}},
		{"short boolean", rawObject{TagBoolean, []byte{1}}},
		{"boolean 2", rawObject{TagBoolean, u64s(2)}},
		{"invalid utf-8", rawObject{TagString, []byte{0xFF, 0xFE}}},
		{"non-empty null", rawObject{TagNull, []byte{0}}},
		{"short map", rawObject{TagMap, make([]byte, 8)}},
		{"ragged map", rawObject{TagMap, make([]byte, 24)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := openObjectFile(t, tt.obj)
			_, err := f.Object(0)
			isErr(t, err, ErrFormat)
		})
	}
}

func TestObjectFile_Map(t *testing.T) {
	f := openObjectFile(t,
		rawObject{TagMap, u64s(1, 2, 3, 4, 5, 6, 3, 7)},
		rawObject{TagString, []byte("point")},
		rawObject{TagBlob, []byte{0xAB}},
		rawObject{TagString, []byte("x")},
		rawObject{TagInt, u64s(10)},
		rawObject{TagString, []byte("y")},
		rawObject{TagInt, u64s(20)},
		rawObject{TagInt, u64s(30)},
	)
	deepEq(t, must(f.Object(0)), Value(&Map{
		TagName: "point",
		Hash:    2,
		Entries: []MapEntry{{"x", 7}, {"y", 6}},
	}))
}

func TestObjectFile_MapKeysMustBeStrings(t *testing.T) {
	f := openObjectFile(t,
		rawObject{TagMap, u64s(1, 1, 2, 1)},
		rawObject{TagString, []byte("")},
		rawObject{TagInt, u64s(1)},
	)
	_, err := f.Object(0)
	isErr(t, err, ErrFormat)

	// a map naming itself as its key must not recurse
	f = openObjectFile(t,
		rawObject{TagMap, u64s(1, 1, 0, 1)},
		rawObject{TagString, []byte("")},
	)
	_, err = f.Object(0)
	isErr(t, err, ErrFormat)

	f = openObjectFile(t,
		rawObject{TagMap, u64s(9, 0)},
	)
	_, err = f.Object(0)
	isErr(t, err, ErrIndexOutOfBounds)
}

type countingSource struct {
	BytesSource
	mu    sync.Mutex
	reads int
}

func (s *countingSource) ReadBytes(off, n int64) ([]byte, error) {
	s.mu.Lock()
	s.reads++
	s.mu.Unlock()
	return s.BytesSource.ReadBytes(off, n)
}

func TestObjectFile_Caches(t *testing.T) {
	src := &countingSource{BytesSource: rawFile(rawObject{TagString, []byte("cached")})}
	f := NewObjectFile(must(OpenRawFile(src)))

	deepEq(t, must(f.Object(0)), Value(String("cached")))
	before := src.reads
	for range 10 {
		deepEq(t, must(f.Object(0)), Value(String("cached")))
	}
	eq(t, src.reads, before)
}

func TestObjectFile_ConcurrentReads(t *testing.T) {
	objs := make([]rawObject, 64)
	for i := range objs {
		objs[i] = rawObject{TagInt, u64s(uint64(i * 3))}
	}
	f := openObjectFile(t, objs...)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range objs {
				v, err := f.Object(Index(i))
				if err != nil {
					t.Errorf("Object(%d): %v", i, err)
					return
				}
				if v != Int(i*3) {
					t.Errorf("Object(%d) = %v, wanted %d", i, v, i*3)
					return
				}
			}
		}()
	}
	wg.Wait()
}
