package wrapt

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/andreyvit/wrapt/mmap"
)

type Options struct {
	// Logger receives debug records when Verbose is set. Defaults to
	// discarding everything.
	Logger  *slog.Logger
	Verbose bool

	// NoMmap makes OpenPath read through a locked *os.File instead of
	// mapping the file into memory.
	NoMmap bool

	// MmapOptions are passed to mmap.Open. Defaults to mmap.RandomAccess.
	MmapOptions mmap.Options
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil || !o.Verbose {
		return discardLogger
	}
	return o.Logger
}

// File is an editable Wrapt object graph: an optional immutable base file
// plus the edits made through its handles. Edits are kept in memory until
// the graph is written out with WriteTo, Bytes or Save.
type File struct {
	store  *Store
	logger *slog.Logger
	closer io.Closer
}

// New returns an empty file whose root is Null.
func New(opt Options) *File {
	return &File{
		store:  NewStore(nil),
		logger: opt.logger(),
	}
}

// Open reads the header of src and returns a file layered over it. src must
// stay readable until the File is no longer used.
func Open(src ByteSource, opt Options) (*File, error) {
	raw, err := OpenRawFile(src)
	if err != nil {
		return nil, err
	}
	f := &File{
		store:  NewStore(NewObjectFile(raw)),
		logger: opt.logger(),
	}
	f.logger.Debug("wrapt: opened", "objects", raw.ObjectCount(), "size", src.Len())
	return f, nil
}

// OpenPath opens the Wrapt file at path. Close releases the file.
func OpenPath(path string, opt Options) (*File, error) {
	var src ByteSource
	var closer io.Closer
	if opt.NoMmap {
		osf, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		fs := NewFileSource(osf)
		src, closer = fs, fs
	} else {
		mopt := opt.MmapOptions
		if mopt == 0 {
			mopt = mmap.RandomAccess
		}
		m, err := mmap.Open(path, mopt)
		if err != nil {
			return nil, err
		}
		src, closer = m, m
	}

	f, err := Open(src, opt)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.closer = closer
	return f, nil
}

func (f *File) Store() *Store {
	return f.store
}

// Root returns the handle of object 0.
func (f *File) Root() Handle {
	return Handle{f.store, RootIndex}
}

// NewHandle allocates a new object and returns its handle. The object must
// be given a value before it is read.
func (f *File) NewHandle() Handle {
	return Handle{f.store, f.store.Allocate()}
}

// Bytes compacts the graph reachable from the root into a new file image.
func (f *File) Bytes() ([]byte, error) {
	enc := NewEncoder()
	if err := NewOutputProcessor(f.store, f.logger).Write(enc); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

// WriteTo writes the compacted graph to w.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	data, err := f.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Save writes the compacted graph to path, replacing any existing file only
// after the new content is durably on disk. The result is read-only.
func (f *File) Save(path string) error {
	data, err := f.Bytes()
	if err != nil {
		return err
	}

	path, err = filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("filepath.Abs: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "wrapt-*.tmp")
	if err != nil {
		return fmt.Errorf("CreateTemp failed (may need permissions for dir %q): %w", dir, err)
	}
	ok := false
	defer func() {
		if !ok {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := mmap.Fdatasync(tmp); err != nil {
		return fmt.Errorf("fdatasync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0444); err != nil {
		return fmt.Errorf("os.Chmod(0444): %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}
	ok = true
	f.logger.Debug("wrapt: saved", "path", path, "size", len(data))
	return nil
}

// Close releases the base file opened by OpenPath. Handles must not be used
// afterwards; values read before Close are copies and stay valid.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	c := f.closer
	f.closer = nil
	return c.Close()
}
