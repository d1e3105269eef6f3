package column

import (
	"fmt"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/dtable/core"
)

// Column is a named, typed, contiguous sequence of values.
//
// Storage is one typed backing slice per column (never per row):
//   - Int, Timestamp: []int64 (timestamps as Unix nanoseconds)
//   - Float: []float64
//   - Text: []string
//   - Bool: []bool
//   - Categorical: []uint32 codes into a shared Dictionary
//
// Missing values are tracked in a bitset that stays nil until the first
// missing value is written. The slot under a missing bit holds the zero value.
//
// Thread safety: concurrent reads are safe; writes require exclusive access.
type Column struct {
	name string
	typ  Type
	n    int

	ints   []int64
	floats []float64
	strs   []string
	bools  []bool
	codes  []uint32
	dict   *Dictionary

	missing *bitset.BitSet
}

// NewInt creates an Int column that takes ownership of values.
func NewInt(name string, values []int64) *Column {
	return &Column{name: name, typ: Int, n: len(values), ints: values}
}

// NewFloat creates a Float column that takes ownership of values.
func NewFloat(name string, values []float64) *Column {
	return &Column{name: name, typ: Float, n: len(values), floats: values}
}

// NewText creates a Text column that takes ownership of values.
func NewText(name string, values []string) *Column {
	return &Column{name: name, typ: Text, n: len(values), strs: values}
}

// NewBool creates a Bool column that takes ownership of values.
func NewBool(name string, values []bool) *Column {
	return &Column{name: name, typ: Bool, n: len(values), bools: values}
}

// NewTimestamp creates a Timestamp column from time values.
func NewTimestamp(name string, values []time.Time) *Column {
	ns := make([]int64, len(values))
	for i, t := range values {
		ns[i] = t.UnixNano()
	}
	return &Column{name: name, typ: Timestamp, n: len(ns), ints: ns}
}

// NewTimestampNanos creates a Timestamp column that takes ownership of Unix
// nanosecond values.
func NewTimestampNanos(name string, values []int64) *Column {
	return &Column{name: name, typ: Timestamp, n: len(values), ints: values}
}

// NewCategorical creates a Categorical column, dictionary-encoding values in
// first-seen order.
func NewCategorical(name string, values []string) *Column {
	d := NewDictionary()
	codes := make([]uint32, len(values))
	for i, s := range values {
		codes[i] = d.Code(s)
	}
	return &Column{name: name, typ: Categorical, n: len(values), codes: codes, dict: d}
}

// NewMissing creates a column of n missing values.
func NewMissing(name string, typ Type, n int) *Column {
	c := alloc(name, typ, n)
	if n > 0 {
		c.missing = bitset.New(uint(n))
		c.missing.FlipRange(0, uint(n))
	}
	return c
}

// FromValues builds a column of type typ from values.
// Returns a TypeError if a value does not fit the type.
func FromValues(name string, typ Type, values []Value) (*Column, error) {
	c := alloc(name, typ, len(values))
	for i, v := range values {
		if err := c.Set(i, v); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func alloc(name string, typ Type, n int) *Column {
	c := &Column{name: name, typ: typ, n: n}
	switch typ {
	case Int, Timestamp:
		c.ints = make([]int64, n)
	case Float:
		c.floats = make([]float64, n)
	case Text:
		c.strs = make([]string, n)
	case Bool:
		c.bools = make([]bool, n)
	case Categorical:
		c.codes = make([]uint32, n)
		c.dict = NewDictionary()
	}
	return c
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Rename sets the column name. Only the owning table should call it.
func (c *Column) Rename(name string) { c.name = name }

// Type returns the declared element type.
func (c *Column) Type() Type { return c.typ }

// Len returns the number of rows.
func (c *Column) Len() int { return c.n }

// IsMissing reports whether row i holds the missing-value sentinel.
func (c *Column) IsMissing(i int) bool {
	return c.missing != nil && c.missing.Test(uint(i))
}

// HasMissing reports whether any row is missing.
func (c *Column) HasMissing() bool {
	return c.missing != nil && c.missing.Any()
}

// MissingCount returns the number of missing rows.
func (c *Column) MissingCount() int {
	if c.missing == nil {
		return 0
	}
	return int(c.missing.Count())
}

// Get returns the value at row i.
func (c *Column) Get(i int) Value {
	if c.IsMissing(i) {
		return Null()
	}
	switch c.typ {
	case Int:
		return IntValue(c.ints[i])
	case Float:
		return FloatValue(c.floats[i])
	case Text:
		return StringValue(c.strs[i])
	case Bool:
		return BoolValue(c.bools[i])
	case Timestamp:
		return NanosValue(c.ints[i])
	case Categorical:
		return StringValue(c.dict.Level(c.codes[i]))
	default:
		return Value{}
	}
}

// Float returns row i widened to float64. Only valid for numeric columns.
func (c *Column) Float(i int) float64 {
	if c.typ == Int {
		return float64(c.ints[i])
	}
	return c.floats[i]
}

// Text returns row i as a string. Only valid for Text and Categorical columns.
func (c *Column) Text(i int) string {
	if c.typ == Categorical {
		return c.dict.Level(c.codes[i])
	}
	return c.strs[i]
}

// Ints exposes the backing slice of an Int or Timestamp column.
func (c *Column) Ints() []int64 { return c.ints }

// Floats exposes the backing slice of a Float column.
func (c *Column) Floats() []float64 { return c.floats }

// Texts exposes the backing slice of a Text column.
func (c *Column) Texts() []string { return c.strs }

// Bools exposes the backing slice of a Bool column.
func (c *Column) Bools() []bool { return c.bools }

// Codes exposes the dictionary codes of a Categorical column.
func (c *Column) Codes() []uint32 { return c.codes }

// Dictionary returns the level dictionary of a Categorical column.
func (c *Column) Dictionary() *Dictionary { return c.dict }

// Set writes v at row i. A missing v marks the row missing.
func (c *Column) Set(i int, v Value) error {
	if i < 0 || i >= c.n {
		return core.NewShapeErrorf(c.name, "row %d out of range [0,%d)", i, c.n)
	}
	if !c.typ.Accepts(v.Kind) {
		return core.NewTypeError(c.name, "assign", v.Kind.String(), c.typ.String())
	}
	if v.Kind == KindNull {
		c.setMissing(i)
		return nil
	}
	c.clearMissing(i)
	switch c.typ {
	case Int, Timestamp:
		c.ints[i] = v.I64
	case Float:
		f, _ := v.AsFloat64()
		c.floats[i] = f
	case Text:
		c.strs[i] = v.Str()
	case Bool:
		c.bools[i] = v.B
	case Categorical:
		c.codes[i] = c.dict.Code(v.Str())
	}
	return nil
}

// Assign broadcasts v into every row of rows, in place.
func (c *Column) Assign(rows []int, v Value) error {
	if !c.typ.Accepts(v.Kind) {
		return core.NewTypeError(c.name, "assign", v.Kind.String(), c.typ.String())
	}
	if err := c.checkRows(rows); err != nil {
		return err
	}
	for _, r := range rows {
		_ = c.Set(r, v)
	}
	return nil
}

// AssignFrom writes src[k] into row rows[k] for every k, in place.
// src must have exactly len(rows) entries.
func (c *Column) AssignFrom(rows []int, src *Column) error {
	if src.n != len(rows) {
		return core.NewShapeError(src.name, len(rows), src.n)
	}
	if !assignable(c.typ, src.typ) {
		return core.NewTypeError(c.name, "assign", src.typ.String(), c.typ.String())
	}
	if err := c.checkRows(rows); err != nil {
		return err
	}
	switch {
	case c.typ == src.typ && c.typ != Categorical:
		for k, r := range rows {
			if src.IsMissing(k) {
				c.setMissing(r)
				continue
			}
			c.clearMissing(r)
			switch c.typ {
			case Int, Timestamp:
				c.ints[r] = src.ints[k]
			case Float:
				c.floats[r] = src.floats[k]
			case Text:
				c.strs[r] = src.strs[k]
			case Bool:
				c.bools[r] = src.bools[k]
			}
		}
	default:
		for k, r := range rows {
			_ = c.Set(r, src.Get(k))
		}
	}
	return nil
}

func assignable(dst, src Type) bool {
	switch {
	case dst == src:
		return true
	case dst == Float && src == Int:
		return true
	case dst.IsStringLike() && src.IsStringLike():
		return true
	default:
		return false
	}
}

func (c *Column) checkRows(rows []int) error {
	for _, r := range rows {
		if r < 0 || r >= c.n {
			return core.NewShapeErrorf(c.name, "row %d out of range [0,%d)", r, c.n)
		}
	}
	return nil
}

func (c *Column) setMissing(i int) {
	if c.missing == nil {
		c.missing = bitset.New(uint(c.n))
	}
	c.missing.Set(uint(i))
	switch c.typ {
	case Int, Timestamp:
		c.ints[i] = 0
	case Float:
		c.floats[i] = 0
	case Text:
		c.strs[i] = ""
	case Bool:
		c.bools[i] = false
	case Categorical:
		c.codes[i] = 0
	}
}

func (c *Column) clearMissing(i int) {
	if c.missing != nil {
		c.missing.Clear(uint(i))
	}
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	out := &Column{name: c.name, typ: c.typ, n: c.n}
	if c.ints != nil {
		out.ints = append([]int64(nil), c.ints...)
	}
	if c.floats != nil {
		out.floats = append([]float64(nil), c.floats...)
	}
	if c.strs != nil {
		out.strs = append([]string(nil), c.strs...)
	}
	if c.bools != nil {
		out.bools = append([]bool(nil), c.bools...)
	}
	if c.codes != nil {
		out.codes = append([]uint32(nil), c.codes...)
	}
	if c.dict != nil {
		out.dict = c.dict.Clone()
	}
	if c.missing != nil {
		out.missing = c.missing.Clone()
	}
	return out
}

// String returns a short description of the column.
func (c *Column) String() string {
	return fmt.Sprintf("%s<%s>[%d]", c.name, c.typ, c.n)
}

// Equal reports whether two columns have the same name, type and values.
func (c *Column) Equal(o *Column) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.name != o.name || c.typ != o.typ || c.n != o.n {
		return false
	}
	for i := 0; i < c.n; i++ {
		a, b := c.IsMissing(i), o.IsMissing(i)
		if a != b {
			return false
		}
		if a {
			continue
		}
		if Order(c.Get(i), o.Get(i)) != 0 {
			return false
		}
	}
	return true
}
