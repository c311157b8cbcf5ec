package genmeta

import "encoding/json"

// FieldState distinguishes "not found" from "found but empty".
type FieldState uint8

const (
	StateAbsent FieldState = iota
	StateEmpty
	StatePresent
)

func (s FieldState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePresent:
		return "present"
	default:
		return "absent"
	}
}

// Field is a tri-state optional value. The zero value is Absent.
type Field[T any] struct {
	state FieldState
	value T
}

// Present wraps a found value.
func Present[T any](v T) Field[T] {
	return Field[T]{state: StatePresent, value: v}
}

// Empty marks a field that the source stated explicitly with no content.
func Empty[T any]() Field[T] {
	return Field[T]{state: StateEmpty}
}

// Text maps "" to Empty and anything else to Present.
func Text(s string) Field[string] {
	if s == "" {
		return Empty[string]()
	}
	return Present(s)
}

func (f Field[T]) State() FieldState { return f.state }
func (f Field[T]) IsAbsent() bool    { return f.state == StateAbsent }
func (f Field[T]) IsEmpty() bool     { return f.state == StateEmpty }
func (f Field[T]) IsPresent() bool   { return f.state == StatePresent }

// Get returns the value and whether it is Present.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.state == StatePresent
}

// Or returns the value when Present, else fallback.
func (f Field[T]) Or(fallback T) T {
	if f.state == StatePresent {
		return f.value
	}
	return fallback
}

// MarshalJSON encodes Present as the value, Empty as "" whatever T is,
// and Absent as null. An Empty number therefore never reads as 0. Text
// fields are built with Text, so a Present string is never "".
func (f Field[T]) MarshalJSON() ([]byte, error) {
	switch f.state {
	case StatePresent:
		return json.Marshal(f.value)
	case StateEmpty:
		return []byte(`""`), nil
	default:
		return []byte("null"), nil
	}
}

// plain returns the value for ToMap: the value when Present, "" when Empty.
func (f Field[T]) plain() (any, bool) {
	switch f.state {
	case StatePresent:
		return f.value, true
	case StateEmpty:
		return "", true
	default:
		return nil, false
	}
}
