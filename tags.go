package wrapt

import "strconv"

// Tag identifies which of the eight value kinds an object holds. The numeric
// values are the 3-bit codes stored in the low bits of an index table entry.
type Tag uint8

const (
	TagInt     Tag = 0b000
	TagFloat   Tag = 0b001
	TagString  Tag = 0b010
	TagBoolean Tag = 0b011
	TagMap     Tag = 0b100
	TagArray   Tag = 0b101 // reserved, no encoding defined
	TagNull    Tag = 0b110
	TagBlob    Tag = 0b111

	tagMask = 0b111
	tagBits = 3
)

var tagNames = [...]string{
	TagInt:     "int",
	TagFloat:   "float",
	TagString:  "string",
	TagBoolean: "boolean",
	TagMap:     "map",
	TagArray:   "array",
	TagNull:    "null",
	TagBlob:    "blob",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "tag(" + strconv.Itoa(int(t)) + ")"
}

// IsScalar reports whether objects of this tag occupy exactly one output
// slot and reference no other objects.
func (t Tag) IsScalar() bool {
	switch t {
	case TagInt, TagFloat, TagString, TagBoolean, TagNull, TagBlob:
		return true
	default:
		return false
	}
}

func packIndexEntry(tag Tag, off uint64) uint64 {
	return off<<tagBits | uint64(tag)
}

func unpackIndexEntry(entry uint64) (tag Tag, off uint64) {
	return Tag(entry & tagMask), entry >> tagBits
}
