package channel

import (
	"strconv"
	"strings"
)

// Tuple is a location of a merged channel system: one location name per
// process, in process order. It is stored as comma-joined quoted parts so
// that it stays comparable.
type Tuple string

// TupleOf builds a tuple from per-process location names.
func TupleOf(parts ...string) Tuple {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(p))
	}
	return Tuple(b.String())
}

// Append returns t extended by one more location.
func (t Tuple) Append(part string) Tuple {
	if t == "" {
		return TupleOf(part)
	}
	return t + "," + Tuple(strconv.Quote(part))
}

// Parts returns the per-process location names.
func (t Tuple) Parts() []string {
	var out []string
	rest := string(t)
	for rest != "" {
		q, err := strconv.QuotedPrefix(rest)
		if err != nil {
			// Only TupleOf and Append build tuples.
			panic("channel: malformed tuple " + string(t))
		}
		s, _ := strconv.Unquote(q)
		out = append(out, s)
		rest = strings.TrimPrefix(rest[len(q):], ",")
	}
	return out
}

// Len returns the number of processes in t.
func (t Tuple) Len() int {
	return len(t.Parts())
}

func (t Tuple) String() string {
	return "<" + strings.Join(t.Parts(), ", ") + ">"
}
