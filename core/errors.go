package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds. Every typed error below matches exactly one of them via errors.Is.
var (
	// ErrShape indicates a column length mismatch or an out-of-range row id.
	ErrShape = errors.New("shape error")
	// ErrType indicates an operation applied to an incompatible column type.
	ErrType = errors.New("type error")
	// ErrKey indicates a missing column or a key operation on an unkeyed table.
	ErrKey = errors.New("key error")
	// ErrReducer indicates a reducer failure for a specific group.
	ErrReducer = errors.New("reducer error")
	// ErrJoin indicates mismatched or absent join columns.
	ErrJoin = errors.New("join error")
)

// ShapeError reports a column whose length does not match the table row count,
// or a row id outside [0, Rows).
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ShapeError struct {
	Column   string
	Expected int
	Actual   int
	Msg      string
	cause    error
}

// NewShapeError returns a ShapeError for a length mismatch.
func NewShapeError(column string, expected, actual int) *ShapeError {
	return &ShapeError{Column: column, Expected: expected, Actual: actual}
}

// NewShapeErrorf returns a ShapeError with a free-form message.
func NewShapeErrorf(column string, format string, args ...any) *ShapeError {
	return &ShapeError{Column: column, Expected: -1, Actual: -1, Msg: fmt.Sprintf(format, args...)}
}

func (e *ShapeError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("shape error: column %q: %s", e.Column, e.Msg)
	}
	return fmt.Sprintf("shape error: column %q has length %d, expected %d", e.Column, e.Actual, e.Expected)
}

func (e *ShapeError) Unwrap() error { return e.cause }

// Is reports whether target is ErrShape.
func (e *ShapeError) Is(target error) bool { return target == ErrShape }

// TypeError reports an operation that does not accept the column's type.
type TypeError struct {
	Column string
	Op     string
	Got    string
	Want   string
	cause  error
}

// NewTypeError returns a TypeError.
func NewTypeError(column, op, got, want string) *TypeError {
	return &TypeError{Column: column, Op: op, Got: got, Want: want}
}

func (e *TypeError) Error() string {
	var b strings.Builder
	b.WriteString("type error: ")
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Column != "" {
		fmt.Fprintf(&b, "column %q ", e.Column)
	}
	fmt.Fprintf(&b, "has type %s", e.Got)
	if e.Want != "" {
		fmt.Fprintf(&b, ", expected %s", e.Want)
	}
	return b.String()
}

func (e *TypeError) Unwrap() error { return e.cause }

// Is reports whether target is ErrType.
func (e *TypeError) Is(target error) bool { return target == ErrType }

// KeyError reports a reference to an absent column, or a binary-search lookup
// requested on a table without an active key.
type KeyError struct {
	Column string
	Msg    string
	cause  error
}

// NewKeyError returns a KeyError for an absent column.
func NewKeyError(column string) *KeyError {
	return &KeyError{Column: column}
}

// NewKeyErrorf returns a KeyError with a free-form message.
func NewKeyErrorf(format string, args ...any) *KeyError {
	return &KeyError{Msg: fmt.Sprintf(format, args...)}
}

func (e *KeyError) Error() string {
	if e.Msg != "" {
		return "key error: " + e.Msg
	}
	return fmt.Sprintf("key error: column %q not found", e.Column)
}

func (e *KeyError) Unwrap() error { return e.cause }

// Is reports whether target is ErrKey.
func (e *KeyError) Is(target error) bool { return target == ErrKey }

// ReducerError reports a reducer that failed or returned an invalid value for
// one group.
type ReducerError struct {
	Reducer string
	Column  string
	Group   []string
	Msg     string
	cause   error
}

// NewReducerError returns a ReducerError wrapping cause.
func NewReducerError(reducer, column string, group []string, cause error) *ReducerError {
	return &ReducerError{Reducer: reducer, Column: column, Group: group, cause: cause}
}

// NewReducerErrorf returns a ReducerError with a free-form message.
func NewReducerErrorf(reducer, column string, group []string, format string, args ...any) *ReducerError {
	return &ReducerError{Reducer: reducer, Column: column, Group: group, Msg: fmt.Sprintf(format, args...)}
}

func (e *ReducerError) Error() string {
	msg := e.Msg
	if msg == "" && e.cause != nil {
		msg = e.cause.Error()
	}
	return fmt.Sprintf("reducer error: %s(%s) for group (%s): %s",
		e.Reducer, e.Column, strings.Join(e.Group, ", "), msg)
}

func (e *ReducerError) Unwrap() error { return e.cause }

// Is reports whether target is ErrReducer.
func (e *ReducerError) Is(target error) bool { return target == ErrReducer }

// JoinError reports join columns that are absent from, or incompatible between,
// the two tables.
type JoinError struct {
	Column string
	Msg    string
	cause  error
}

// NewJoinError returns a JoinError.
func NewJoinError(column string, format string, args ...any) *JoinError {
	return &JoinError{Column: column, Msg: fmt.Sprintf(format, args...)}
}

// WrapJoinError returns a JoinError carrying cause.
func WrapJoinError(column string, cause error) *JoinError {
	return &JoinError{Column: column, Msg: cause.Error(), cause: cause}
}

func (e *JoinError) Error() string {
	if e.Column == "" {
		return "join error: " + e.Msg
	}
	return fmt.Sprintf("join error: column %q: %s", e.Column, e.Msg)
}

func (e *JoinError) Unwrap() error { return e.cause }

// Is reports whether target is ErrJoin.
func (e *JoinError) Is(target error) bool { return target == ErrJoin }
