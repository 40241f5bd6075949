package mmap

import "os"

// Fdatasync flushes the data written to f to stable storage, without the
// metadata-only updates a full fsync would also wait for.
//
// Errors are not recoverable: after a failed sync the state of the file on
// disk is unknown, and the file must be treated as lost.
func Fdatasync(f *os.File) error {
	return fdatasync(f)
}
