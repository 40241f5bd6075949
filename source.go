package wrapt

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ByteSource is an immutable random-access byte range holding a Wrapt file.
// Implementations must be safe for concurrent use.
type ByteSource interface {
	// ReadBytes returns exactly n bytes starting at off, or an error.
	ReadBytes(off, n int64) ([]byte, error)
	Len() int64
}

// BytesSource serves reads from an in-memory slice.
type BytesSource []byte

func (s BytesSource) ReadBytes(off, n int64) ([]byte, error) {
	if off < 0 || n < 0 || off+n > int64(len(s)) {
		return nil, fmt.Errorf("%w: %d bytes at %d (len %d)", ErrShortRead, n, off, len(s))
	}
	return s[off : off+n : off+n], nil
}

func (s BytesSource) Len() int64 {
	return int64(len(s))
}

// FileSource reads from an *os.File through its shared cursor. Every read
// holds the lock for the whole seek-then-read sequence.
type FileSource struct {
	mu sync.Mutex
	f  *os.File
}

func NewFileSource(f *os.File) *FileSource {
	return &FileSource{f: f}
}

func (s *FileSource) ReadBytes(off, n int64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.Seek(off, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %d: %w", off, err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.f, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: %d bytes at %d: %v", ErrShortRead, n, off, err)
		}
		return nil, fmt.Errorf("read %d bytes at %d: %w", n, off, err)
	}
	return buf, nil
}

// Len returns the current file size, or -1 if it cannot be determined.
func (s *FileSource) Len() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	size, err := s.f.Seek(0, io.SeekEnd)
	if err != nil {
		return -1
	}
	return size
}

func (s *FileSource) Close() error {
	return s.f.Close()
}
