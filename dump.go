package wrapt

import (
	"strconv"
	"strings"
)

// Dump renders the graph reachable from h on a single line, e.g.
// {hello: 12, nested: {x: "y"}}. An object reached a second time, whether
// shared or part of a cycle, is printed as @index.
func Dump(h Handle) string {
	var buf strings.Builder
	dump(&buf, h.store, h.index, make(map[Index]bool))
	return buf.String()
}

func dump(buf *strings.Builder, s *Store, i Index, seen map[Index]bool) {
	v, err := s.Object(i)
	if err != nil {
		buf.WriteString("<error: ")
		buf.WriteString(err.Error())
		buf.WriteByte('>')
		return
	}
	m, ok := v.(*Map)
	if !ok {
		buf.WriteString(formatScalar(v))
		return
	}
	if seen[i] {
		buf.WriteByte('@')
		buf.WriteString(strconv.FormatUint(uint64(i), 10))
		return
	}
	seen[i] = true
	if m.TagName != "" {
		buf.WriteString(m.TagName)
	}
	buf.WriteByte('{')
	for j, e := range m.Entries {
		if j > 0 {
			buf.WriteByte(',')
			buf.WriteByte(' ')
		}
		buf.WriteString(e.Key)
		buf.WriteByte(':')
		buf.WriteByte(' ')
		dump(buf, s, e.Value, seen)
	}
	buf.WriteByte('}')
}

func formatScalar(v Value) string {
	switch v := v.(type) {
	case Int:
		return strconv.FormatInt(int64(v), 10)
	case Float:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case String:
		return strconv.Quote(string(v))
	case Boolean:
		return strconv.FormatBool(bool(v))
	case Null:
		return "null"
	case Blob:
		return "blob(" + hexstr(v) + ")"
	case Array:
		return "array(" + strconv.Itoa(len(v)) + " bytes)"
	default:
		return "<" + v.Tag().String() + ">"
	}
}
