package column

import (
	"cmp"
	"math"
	"strconv"
	"time"
	"unique"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindNull represents the missing-value sentinel.
	KindNull
	// KindInt represents an integer value.
	KindInt
	// KindFloat represents a float value.
	KindFloat
	// KindString represents a string value.
	KindString
	// KindBool represents a boolean value.
	KindBool
	// KindTime represents a timestamp value.
	KindTime
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "invalid"
	}
}

// Value is a small typed scalar used for literals, lookups and reducer results.
//
// No reflection and no fmt-based stringification: comparisons switch on Kind.
// Timestamps are stored as Unix nanoseconds in I64.
type Value struct {
	Kind Kind
	I64  int64
	F64  float64
	B    bool
	s    unique.Handle[string]
}

// Null returns the missing-value sentinel.
func Null() Value { return Value{Kind: KindNull} }

// IntValue returns an int64 Value.
func IntValue(v int64) Value { return Value{Kind: KindInt, I64: v} }

// FloatValue returns a float64 Value.
func FloatValue(v float64) Value { return Value{Kind: KindFloat, F64: v} }

// StringValue returns a string Value.
func StringValue(v string) Value { return Value{Kind: KindString, s: unique.Make(v)} }

// BoolValue returns a boolean Value.
func BoolValue(v bool) Value { return Value{Kind: KindBool, B: v} }

// TimeValue returns a timestamp Value.
func TimeValue(v time.Time) Value { return Value{Kind: KindTime, I64: v.UnixNano()} }

// NanosValue returns a timestamp Value from Unix nanoseconds.
func NanosValue(ns int64) Value { return Value{Kind: KindTime, I64: ns} }

// Of converts a Go scalar into a Value. Unsupported types yield KindInvalid.
func Of(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case int:
		return IntValue(int64(x))
	case int32:
		return IntValue(int64(x))
	case int64:
		return IntValue(x)
	case float32:
		return FloatValue(float64(x))
	case float64:
		return FloatValue(x)
	case string:
		return StringValue(x)
	case bool:
		return BoolValue(x)
	case time.Time:
		return TimeValue(x)
	default:
		return Value{}
	}
}

// IsNull reports whether v is the missing-value sentinel.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// IsValid reports whether v carries a known kind.
func (v Value) IsValid() bool { return v.Kind != KindInvalid }

// Str returns the string value if Kind is KindString, otherwise empty string.
func (v Value) Str() string {
	if v.Kind == KindString {
		return v.s.Value()
	}
	return ""
}

// AsInt64 returns the int64 value if Kind is KindInt.
func (v Value) AsInt64() (int64, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	return v.I64, true
}

// AsFloat64 returns the numeric value widened to float64 for KindInt and KindFloat.
func (v Value) AsFloat64() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.I64), true
	case KindFloat:
		return v.F64, true
	default:
		return 0, false
	}
}

// AsString returns the string value if Kind is KindString.
func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.s.Value(), true
}

// AsBool returns the boolean value if Kind is KindBool.
func (v Value) AsBool() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.B, true
}

// AsTime returns the timestamp value if Kind is KindTime.
func (v Value) AsTime() (time.Time, bool) {
	if v.Kind != KindTime {
		return time.Time{}, false
	}
	return time.Unix(0, v.I64).UTC(), true
}

// IsNumber reports whether v is an int or a float.
func (v Value) IsNumber() bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

// Key returns a stable string representation for use in maps.
func (v Value) Key() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindInt:
		return "i:" + strconv.FormatInt(v.I64, 10)
	case KindFloat:
		f := v.F64
		switch {
		case f == 0:
			f = 0
		case math.IsNaN(f):
			f = math.NaN()
		}
		return "f:" + strconv.FormatUint(math.Float64bits(f), 16)
	case KindString:
		return "s:" + v.s.Value()
	case KindBool:
		if v.B {
			return "b:1"
		}
		return "b:0"
	case KindTime:
		return "t:" + strconv.FormatInt(v.I64, 10)
	default:
		return "invalid"
	}
}

// String renders v for display.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NA"
	case KindInt:
		return strconv.FormatInt(v.I64, 10)
	case KindFloat:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case KindString:
		return v.s.Value()
	case KindBool:
		return strconv.FormatBool(v.B)
	case KindTime:
		return time.Unix(0, v.I64).UTC().Format(time.RFC3339Nano)
	default:
		return "<invalid>"
	}
}

// Equal reports whether two non-missing values are equal. Ints and floats
// compare numerically. Any comparison involving a missing value is false.
func Equal(a, b Value) bool {
	c, ok := Compare(a, b)
	return ok && c == 0
}

// Compare orders two values. ok is false when either value is missing or the
// kinds cannot be ordered against each other.
func Compare(a, b Value) (int, bool) {
	if a.Kind == KindNull || b.Kind == KindNull {
		return 0, false
	}
	if a.IsNumber() && b.IsNumber() {
		if a.Kind == KindInt && b.Kind == KindInt {
			return cmp.Compare(a.I64, b.I64), true
		}
		fa, _ := a.AsFloat64()
		fb, _ := b.AsFloat64()
		return cmp.Compare(fa, fb), true
	}
	if a.Kind != b.Kind {
		return 0, false
	}
	switch a.Kind {
	case KindString:
		if a.s == b.s {
			return 0, true
		}
		return cmp.Compare(a.s.Value(), b.s.Value()), true
	case KindBool:
		return compareBool(a.B, b.B), true
	case KindTime:
		return cmp.Compare(a.I64, b.I64), true
	default:
		return 0, false
	}
}

// Order is a total order over values used for sorting: missing values sort
// first, then values by Compare. Incomparable kinds order by Kind.
func Order(a, b Value) int {
	switch {
	case a.Kind == KindNull && b.Kind == KindNull:
		return 0
	case a.Kind == KindNull:
		return -1
	case b.Kind == KindNull:
		return 1
	}
	if c, ok := Compare(a, b); ok {
		return c
	}
	return cmp.Compare(a.Kind, b.Kind)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
