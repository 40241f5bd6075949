package wrapt

import (
	"encoding/binary"
	"fmt"
)

const (
	// Magic is the literal stored in the first 8 bytes of every Wrapt file.
	Magic = "WraptDat"

	headerSize     = 16
	indexEntrySize = 8
	maxDataOffset  = 1<<(64-tagBits) - 1
)

// RawFile parses the header and index table of a Wrapt file and resolves
// object indices to a tag and a raw payload. It does no caching and no
// interpretation of payloads.
type RawFile struct {
	src        ByteSource
	size       int64
	dataOffset int64
	count      uint64
}

// OpenRawFile validates the header of src.
func OpenRawFile(src ByteSource) (*RawFile, error) {
	size := src.Len()
	if size < headerSize {
		return nil, headerErrf("file too short: %d < %d", size, headerSize)
	}
	header, err := src.ReadBytes(0, headerSize)
	if err != nil {
		return nil, fmt.Errorf("wrapt: reading header: %w", err)
	}
	if string(header[:8]) != Magic {
		return nil, headerErrf("bad magic %q", header[:8])
	}
	dataOffset := binary.BigEndian.Uint64(header[8:16])
	if dataOffset < headerSize || dataOffset > uint64(size) {
		return nil, headerErrf("data offset %d outside [%d, %d]", dataOffset, headerSize, size)
	}
	if (dataOffset-headerSize)%indexEntrySize != 0 {
		return nil, headerErrf("index table length %d is not a multiple of %d", dataOffset-headerSize, indexEntrySize)
	}
	return &RawFile{
		src:        src,
		size:       size,
		dataOffset: int64(dataOffset),
		count:      (dataOffset - headerSize) / indexEntrySize,
	}, nil
}

// ObjectCount returns the number of objects in the index table.
func (f *RawFile) ObjectCount() uint64 {
	return f.count
}

func (f *RawFile) indexEntry(i Index) (Tag, int64, error) {
	if uint64(i) >= f.count {
		return 0, 0, &IndexError{i, f.count}
	}
	raw, err := f.src.ReadBytes(headerSize+int64(i)*indexEntrySize, indexEntrySize)
	if err != nil {
		return 0, 0, fmt.Errorf("wrapt: reading index entry %d: %w", i, err)
	}
	tag, off := unpackIndexEntry(binary.BigEndian.Uint64(raw))
	if off > uint64(f.size-f.dataOffset) {
		return 0, 0, dataErrf(i, tag, raw, nil, "data offset %d beyond end of data segment", off)
	}
	return tag, int64(off), nil
}

// Object returns the tag and raw payload of object i. The payload runs up to
// the next object's offset, or to the end of the file for the last object.
func (f *RawFile) Object(i Index) (Tag, []byte, error) {
	tag, start, err := f.indexEntry(i)
	if err != nil {
		return 0, nil, err
	}
	end := f.size - f.dataOffset
	if uint64(i)+1 < f.count {
		_, end, err = f.indexEntry(i + 1)
		if err != nil {
			return 0, nil, err
		}
	}
	if end < start {
		return 0, nil, dataErrf(i, tag, nil, nil, "negative payload length (%d..%d)", start, end)
	}
	data, err := f.src.ReadBytes(f.dataOffset+start, end-start)
	if err != nil {
		return 0, nil, fmt.Errorf("wrapt: reading object %d: %w", i, err)
	}
	return tag, data, nil
}
