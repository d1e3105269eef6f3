package column

import (
	"cmp"
	"strings"
)

// CompareRows orders row i against row j under the key ordering: missing
// values first, then ascending values.
func (c *Column) CompareRows(i, j int) int {
	mi, mj := c.IsMissing(i), c.IsMissing(j)
	switch {
	case mi && mj:
		return 0
	case mi:
		return -1
	case mj:
		return 1
	}
	switch c.typ {
	case Int, Timestamp:
		return cmp.Compare(c.ints[i], c.ints[j])
	case Float:
		return cmp.Compare(c.floats[i], c.floats[j])
	case Text:
		return strings.Compare(c.strs[i], c.strs[j])
	case Bool:
		return compareBool(c.bools[i], c.bools[j])
	case Categorical:
		if c.codes[i] == c.codes[j] {
			return 0
		}
		return strings.Compare(c.dict.Level(c.codes[i]), c.dict.Level(c.codes[j]))
	default:
		return 0
	}
}

// CompareValue orders row i against v under the key ordering (missing first).
// ok is false when v's kind cannot be ordered against the column type.
func (c *Column) CompareValue(i int, v Value) (result int, ok bool) {
	if v.Kind == KindNull {
		if c.IsMissing(i) {
			return 0, true
		}
		return 1, true
	}
	if c.IsMissing(i) {
		return -1, true
	}
	switch c.typ {
	case Int:
		switch v.Kind {
		case KindInt:
			return cmp.Compare(c.ints[i], v.I64), true
		case KindFloat:
			return cmp.Compare(float64(c.ints[i]), v.F64), true
		}
	case Float:
		if f, isNum := v.AsFloat64(); isNum {
			return cmp.Compare(c.floats[i], f), true
		}
	case Text, Categorical:
		if v.Kind == KindString {
			return strings.Compare(c.Text(i), v.Str()), true
		}
	case Bool:
		if v.Kind == KindBool {
			return compareBool(c.bools[i], v.B), true
		}
	case Timestamp:
		if v.Kind == KindTime {
			return cmp.Compare(c.ints[i], v.I64), true
		}
	}
	return 0, false
}

// CompareAcross orders row i of c against row j of o under the key ordering.
// Both columns must be Comparable.
func (c *Column) CompareAcross(i int, o *Column, j int) int {
	if c.typ == o.typ && c.typ != Categorical {
		mi, mj := c.IsMissing(i), o.IsMissing(j)
		switch {
		case mi && mj:
			return 0
		case mi:
			return -1
		case mj:
			return 1
		}
		switch c.typ {
		case Int, Timestamp:
			return cmp.Compare(c.ints[i], o.ints[j])
		case Float:
			return cmp.Compare(c.floats[i], o.floats[j])
		case Text:
			return strings.Compare(c.strs[i], o.strs[j])
		case Bool:
			return compareBool(c.bools[i], o.bools[j])
		}
	}
	return Order(c.Get(i), o.Get(j))
}
