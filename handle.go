package wrapt

import "fmt"

// Handle is a typed cursor over one slot of a Store. Handles are small
// values; two handles are equal iff they address the same slot.
//
// The As* accessors return ok == false when the slot holds a different kind
// of value, and also when the slot cannot be read at all; use Value to see
// the error.
type Handle struct {
	store *Store
	index Index
}

// HandleAt returns a handle for index i of s.
func HandleAt(s *Store, i Index) Handle {
	return Handle{s, i}
}

func (h Handle) Index() Index  { return h.index }
func (h Handle) Store() *Store { return h.store }

func (h Handle) IsZero() bool {
	return h.store == nil
}

// Value returns a copy of the current value of the slot.
func (h Handle) Value() (Value, error) {
	if h.store == nil {
		return nil, fmt.Errorf("%w: zero handle", ErrInvalidState)
	}
	return h.store.Object(h.index)
}

func (h Handle) set(v Value) error {
	if h.store == nil {
		return fmt.Errorf("%w: zero handle", ErrInvalidState)
	}
	return h.store.SetObject(h.index, v)
}

// Tag returns the current tag of the slot.
func (h Handle) Tag() (Tag, error) {
	v, err := h.Value()
	if err != nil {
		return 0, err
	}
	return v.Tag(), nil
}

func typed[T Value](h Handle) (T, bool) {
	v, err := h.Value()
	if err != nil {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

func (h Handle) AsInt() (int64, bool) {
	v, ok := typed[Int](h)
	return int64(v), ok
}

func (h Handle) AsFloat() (float64, bool) {
	v, ok := typed[Float](h)
	return float64(v), ok
}

func (h Handle) AsBoolean() (bool, bool) {
	v, ok := typed[Boolean](h)
	return bool(v), ok
}

func (h Handle) AsString() (string, bool) {
	v, ok := typed[String](h)
	return string(v), ok
}

// AsBlob returns a copy of the blob payload.
func (h Handle) AsBlob() ([]byte, bool) {
	v, ok := typed[Blob](h)
	return []byte(v), ok
}

// AsMap returns a read-only view of the map held by the slot.
func (h Handle) AsMap() (*MapView, bool) {
	m, ok := typed[*Map](h)
	if !ok {
		return nil, false
	}
	return newMapView(h.store, m), true
}

func (h Handle) IsNull() bool {
	_, ok := typed[Null](h)
	return ok
}

func (h Handle) CreateInt(v int64) error {
	return h.set(Int(v))
}

func (h Handle) CreateFloat(v float64) error {
	return h.set(Float(v))
}

func (h Handle) CreateString(v string) error {
	return h.set(String(v))
}

func (h Handle) CreateBoolean(v bool) error {
	return h.set(Boolean(v))
}

func (h Handle) CreateNull() error {
	return h.set(Null{})
}

// CreateBlob stores a copy of v.
func (h Handle) CreateBlob(v []byte) error {
	return h.set(Blob(append([]byte{}, v...)))
}

// CreateMap returns a builder bound to this slot. The slot is not touched
// until the builder's Build succeeds.
func (h Handle) CreateMap() *MapBuilder {
	return &MapBuilder{dest: h}
}
