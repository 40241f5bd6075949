// Package mmap maps Wrapt base files into memory for reading, and provides
// the durable sync used when saving compacted files.
package mmap

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

type Options uint

const (
	// SequentialAccess is a hint requesting aggressive read-ahead.
	// Incompatible with RandomAccess. Maps to MADV_SEQUENTIAL on Unix.
	SequentialAccess Options = 1 << 1

	// RandomAccess is a hint that read ahead is less useful than normally.
	// Incompatible with SequentialAccess. Maps to MADV_RANDOM on Unix.
	RandomAccess Options = 1 << 2

	// Prefault is a hint requesting the entire file to be loaded in memory
	// for fastest access. Maps to MAP_POPULATE on Linux.
	Prefault Options = 1 << 3
)

func (o Options) Has(v Options) bool {
	return o&v != 0
}

var (
	ErrClosed     = errors.New("mmap: mapping closed")
	ErrOutOfRange = errors.New("mmap: read out of range")
)

// Mapping is a read-only memory mapping of a whole file. Reads are safe for
// concurrent use, and Close waits for reads in progress. The slices returned
// by ReadBytes alias the mapping and must not be used after Close; copy
// anything that has to outlive it.
type Mapping struct {
	mu     sync.RWMutex
	data   []byte
	closed bool
}

// Open maps the file at path read-only. The mapping stays valid until Close,
// independently of the file, which is closed before Open returns.
func Open(path string, opt Options) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("mmap: stat %s: %w", path, err)
	}
	size := st.Size()
	if size == 0 {
		return &Mapping{}, nil
	}
	if size != int64(int(size)) {
		return nil, fmt.Errorf("mmap: %s is too large to map (%d bytes)", path, size)
	}
	data, err := mmap(f, int(size), opt)
	if err != nil {
		return nil, fmt.Errorf("mmap: %s: %w", path, err)
	}
	return &Mapping{data: data}, nil
}

// Len returns the mapped size, or 0 after Close.
func (m *Mapping) Len() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.data))
}

// ReadBytes returns the n bytes at off without copying.
func (m *Mapping) ReadBytes(off, n int64) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	if off < 0 || n < 0 || off+n > int64(len(m.data)) {
		return nil, fmt.Errorf("%w: %d bytes at %d (len %d)", ErrOutOfRange, n, off, len(m.data))
	}
	return m.data[off : off+n : off+n], nil
}

// Close unmaps the file. It is safe to call more than once.
func (m *Mapping) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	data := m.data
	m.data = nil
	if len(data) == 0 {
		return nil
	}
	return munmap(data)
}
