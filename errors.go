package wrapt

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat means the file header or an object payload is malformed.
	ErrFormat = errors.New("wrapt: invalid format")

	// ErrIndexOutOfBounds means an index is not below the known object count.
	ErrIndexOutOfBounds = errors.New("wrapt: index out of bounds")

	// ErrInvalidState is returned for a second Build on a MapBuilder, for
	// puts after Build, and for any mutation of a built map view.
	ErrInvalidState = errors.New("wrapt: invalid state")

	// ErrIntegrity means the output processor found a reference it cannot
	// resolve: the target does not exist, was never set, or has no output
	// slot.
	ErrIntegrity = errors.New("wrapt: dangling reference")

	// ErrUnsupportedType is returned when writing a value the on-disk
	// expansion does not know, e.g. an Array.
	ErrUnsupportedType = errors.New("wrapt: unsupported type")

	// ErrUninitialized is returned when reading a freshly allocated index
	// that has not been set yet.
	ErrUninitialized = errors.New("wrapt: object not initialized")

	// ErrShortRead is returned by byte sources that cannot supply the
	// requested number of bytes.
	ErrShortRead = errors.New("wrapt: short read")
)

// DataError describes a malformed header or payload. It unwraps to ErrFormat
// and, if set, to the underlying cause.
type DataError struct {
	Index Index
	Tag   Tag
	Data  []byte
	Err   error
	Msg   string
}

func dataErrf(index Index, tag Tag, data []byte, err error, format string, args ...any) error {
	return &DataError{index, tag, data, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrFormat, e.Err}
	}
	return []error{ErrFormat}
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	var data string
	if n <= prefixLen+suffixLen {
		data = fmt.Sprintf("(%d) %x", n, e.Data)
	} else {
		data = fmt.Sprintf("(%d) %x...%x", n, e.Data[:prefixLen], e.Data[n-suffixLen:])
	}
	if e.Err != nil {
		return fmt.Sprintf("wrapt: object %d (%v): %s: %v: %s", e.Index, e.Tag, e.Msg, e.Err, data)
	}
	return fmt.Sprintf("wrapt: object %d (%v): %s: %s", e.Index, e.Tag, e.Msg, data)
}

func headerErrf(format string, args ...any) error {
	return fmt.Errorf("%w: header: %s", ErrFormat, fmt.Sprintf(format, args...))
}

// IndexError reports an index at or beyond the object count.
type IndexError struct {
	Index Index
	Count uint64
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfBounds
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("wrapt: index %d out of bounds (count = %d)", e.Index, e.Count)
}
