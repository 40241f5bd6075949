/*
Package wrapt implements Wrapt, a compact self-describing binary object
format, with a copy-on-write editing layer and a compaction pass that writes
the live object graph back out as a minimal file.

We implement:

1. Reading: RawFile parses the header and index table, ObjectFile decodes
payloads into Values and memoizes them.

2. Editing: Store layers in-memory overrides over the immutable base file,
and Handle/MapBuilder give a typed read/write API on top of it.

3. Writing: OutputProcessor renumbers the objects reachable from the root
into a dense sequence and drives an ObjectWriter such as Encoder.

# File Format

Everything is big-endian.

**Header** (16 bytes): the magic "WraptDat", then the data offset (uint64).

**Index table**: bytes [16, dataOffset), one uint64 per object. The low
3 bits are the tag, the rest is the payload offset within the data segment.
Object i's payload runs to object i+1's offset, or to the end of the file.

**Tags**: 0 int, 1 float, 2 string, 3 boolean, 4 map, 5 array (reserved),
6 null, 7 blob.

**Payloads**:
  - int, float: 8 bytes (two's complement, IEEE 754).
  - boolean: 8 bytes holding 0 or 1.
  - string: UTF-8 bytes. blob: raw bytes. null: empty.
  - map: tag string index, hash blob index, then a (key string index,
    value index) pair per entry, all uint64.

# Maps and compaction

In memory, a map is a tag string, a hash blob reference and an ordered list
of (key, index) entries. The tag and key strings only become objects of
their own when the map is written: a map allocated slot b is followed by its
tag string at b+1 and its keys at b+2.... The hash blob is an ordinary
object that is visited and deduplicated like any other.

Compaction marks an object before visiting its references, so shared
objects get one slot and cycles terminate.
*/
package wrapt
