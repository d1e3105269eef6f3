package column

// Type is the declared element type of a Column.
type Type uint8

const (
	// Invalid is the zero Type.
	Invalid Type = iota
	// Int is a 64-bit signed integer column.
	Int
	// Float is a 64-bit floating-point column.
	Float
	// Text is a free-form string column.
	Text
	// Bool is a boolean column.
	Bool
	// Timestamp is a nanosecond-precision UTC instant column.
	Timestamp
	// Categorical is a dictionary-encoded string column.
	Categorical
)

// String returns the string representation of the Type.
func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	case Text:
		return "text"
	case Bool:
		return "bool"
	case Timestamp:
		return "timestamp"
	case Categorical:
		return "categorical"
	default:
		return "invalid"
	}
}

// IsNumeric reports whether arithmetic reducers accept the type.
func (t Type) IsNumeric() bool {
	return t == Int || t == Float
}

// IsStringLike reports whether values of the type surface as strings.
func (t Type) IsStringLike() bool {
	return t == Text || t == Categorical
}

// Kind returns the Value kind produced by Get for this type.
func (t Type) Kind() Kind {
	switch t {
	case Int:
		return KindInt
	case Float:
		return KindFloat
	case Text, Categorical:
		return KindString
	case Bool:
		return KindBool
	case Timestamp:
		return KindTime
	default:
		return KindInvalid
	}
}

// Accepts reports whether a value of kind k can be stored in a column of type t.
// Missing values are accepted everywhere; ints widen into float columns.
func (t Type) Accepts(k Kind) bool {
	if k == KindNull {
		return true
	}
	switch t {
	case Int:
		return k == KindInt
	case Float:
		return k == KindFloat || k == KindInt
	case Text, Categorical:
		return k == KindString
	case Bool:
		return k == KindBool
	case Timestamp:
		return k == KindTime
	default:
		return false
	}
}

// Comparable reports whether values of types a and b can be ordered against
// each other.
func Comparable(a, b Type) bool {
	switch {
	case a.IsNumeric() && b.IsNumeric():
		return true
	case a.IsStringLike() && b.IsStringLike():
		return true
	default:
		return a == b && a != Invalid
	}
}

// TypeOf returns the natural column type for a value kind.
func TypeOf(k Kind) Type {
	switch k {
	case KindInt:
		return Int
	case KindFloat:
		return Float
	case KindString:
		return Text
	case KindBool:
		return Bool
	case KindTime:
		return Timestamp
	default:
		return Invalid
	}
}
