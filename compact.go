package wrapt

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// ObjectWriter receives the objects of a compacted file. AppendObject is
// called once per output slot, in ascending slot order starting at 0, so
// the k-th call is slot k.
type ObjectWriter interface {
	AppendObject(tag Tag, v Value) error
}

// Allocations maps store indices to output slots.
type Allocations map[Index]Index

// OutputProcessor renumbers the objects reachable from a root into a dense
// sequence of output slots and emits them to an ObjectWriter. It reads the
// store but never modifies it.
type OutputProcessor struct {
	store  *Store
	logger *slog.Logger

	allocations Allocations
	next        Index
}

func NewOutputProcessor(store *Store, logger *slog.Logger) *OutputProcessor {
	if logger == nil {
		logger = discardLogger
	}
	return &OutputProcessor{store: store, logger: logger}
}

// Allocate walks the graph from root and assigns each reachable object one
// output slot range. Calling it again on an unchanged store yields the same
// numbering.
func (p *OutputProcessor) Allocate(root Index) (Allocations, error) {
	p.allocations = make(Allocations)
	p.next = 0
	if err := p.visit(root, root); err != nil {
		p.allocations = nil
		return nil, err
	}
	return p.allocations, nil
}

// visit allocates i, which owner refers to (owner == i for the root).
func (p *OutputProcessor) visit(owner, i Index) error {
	// mark before recursing: this is what terminates cycles and gives a
	// shared object a single slot
	if _, ok := p.allocations[i]; ok {
		return nil
	}
	v, err := p.store.Object(i)
	if err != nil {
		if owner != i && (errors.Is(err, ErrIndexOutOfBounds) || errors.Is(err, ErrUninitialized)) {
			return fmt.Errorf("%w: object %d refers to %d: %w", ErrIntegrity, owner, i, err)
		}
		return err
	}
	p.allocations[i] = p.next
	p.next += Index(footprint(v))

	m, ok := v.(*Map)
	if !ok {
		return nil
	}
	if err := p.visit(i, m.Hash); err != nil {
		return err
	}
	for _, e := range m.Entries {
		if err := p.visit(i, e.Value); err != nil {
			return err
		}
	}
	return nil
}

// footprint is the number of output slots v expands into. A map takes its
// base record, its tag string and one key string per entry.
func footprint(v Value) int {
	if m, ok := v.(*Map); ok {
		return 2 + len(m.Entries)
	}
	return 1
}

// SlotCount returns the number of output slots assigned by the last Allocate.
func (p *OutputProcessor) SlotCount() uint64 {
	return uint64(p.next)
}

// Write emits every allocated object to w in output order, allocating from
// the root first if Allocate has not been called. A failed write leaves w
// with partial output that must be discarded.
func (p *OutputProcessor) Write(w ObjectWriter) error {
	if p.allocations == nil {
		if _, err := p.Allocate(RootIndex); err != nil {
			return err
		}
	}

	order := make([]Index, 0, len(p.allocations))
	for i := range p.allocations {
		order = append(order, i)
	}
	slices.SortFunc(order, func(a, b Index) int {
		return cmp.Compare(p.allocations[a], p.allocations[b])
	})

	var slot Index
	for _, i := range order {
		base := p.allocations[i]
		if base != slot {
			return fmt.Errorf("%w: object %d allocated slot %d, but next slot is %d", ErrIntegrity, i, base, slot)
		}
		v, err := p.store.Object(i)
		if err != nil {
			return err
		}
		n, err := p.emit(w, i, base, v)
		if err != nil {
			return err
		}
		slot += Index(n)
	}
	if slot != p.next {
		return fmt.Errorf("%w: emitted %d slots, allocated %d", ErrIntegrity, slot, p.next)
	}
	p.logger.Debug("wrapt: compacted", "objects", len(order), "slots", uint64(slot))
	return nil
}

func (p *OutputProcessor) emit(w ObjectWriter, i, base Index, v Value) (int, error) {
	if v.Tag().IsScalar() {
		return 1, w.AppendObject(v.Tag(), v)
	}
	switch v := v.(type) {
	case *Map:
		hash, err := p.resolve(i, v.Hash)
		if err != nil {
			return 0, err
		}
		rec := MapRecord{
			TagIndex:  base + 1,
			HashIndex: hash,
			Entries:   make([]MapRecordEntry, len(v.Entries)),
		}
		for j, e := range v.Entries {
			value, err := p.resolve(i, e.Value)
			if err != nil {
				return 0, err
			}
			rec.Entries[j] = MapRecordEntry{KeyIndex: base + 2 + Index(j), ValueIndex: value}
		}
		if err := w.AppendObject(TagMap, rec); err != nil {
			return 0, err
		}
		if err := w.AppendObject(TagString, String(v.TagName)); err != nil {
			return 0, err
		}
		for _, e := range v.Entries {
			if err := w.AppendObject(TagString, String(e.Key)); err != nil {
				return 0, err
			}
		}
		return footprint(v), nil
	default:
		return 0, fmt.Errorf("%w: cannot write object %d of type %v", ErrUnsupportedType, i, v.Tag())
	}
}

func (p *OutputProcessor) resolve(owner, ref Index) (Index, error) {
	out, ok := p.allocations[ref]
	if !ok {
		return 0, fmt.Errorf("%w: object %d refers to %d, which has no output slot", ErrIntegrity, owner, ref)
	}
	return out, nil
}
