package domain

import (
	"bytes"
	"encoding/json"
)

type fieldState uint8

const (
	fieldAbsent fieldState = iota
	fieldNull
	fieldSet
)

// Field is a tri-state optional value used by partial updates.
//
// The zero value is Absent. When decoded from JSON, a key that is missing
// from the object leaves the field Absent (encoding/json never calls
// UnmarshalJSON for it), a literal null yields Null, and anything else is
// decoded into T and yields Set.
type Field[T any] struct {
	state fieldState
	value T
}

// Absent returns a field that leaves the stored value unchanged.
func Absent[T any]() Field[T] { return Field[T]{} }

// Null returns a field that clears the stored value.
func Null[T any]() Field[T] { return Field[T]{state: fieldNull} }

// Set returns a field that replaces the stored value with v.
func Set[T any](v T) Field[T] { return Field[T]{state: fieldSet, value: v} }

func (f Field[T]) IsAbsent() bool { return f.state == fieldAbsent }
func (f Field[T]) IsNull() bool   { return f.state == fieldNull }
func (f Field[T]) IsSet() bool    { return f.state == fieldSet }

// Get returns the value and true when the field is Set.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.state == fieldSet
}

// Ptr returns a pointer to a copy of the value, or nil unless Set.
func (f Field[T]) Ptr() *T {
	if f.state != fieldSet {
		return nil
	}
	v := f.value
	return &v
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.state, f.value = fieldNull, zero
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.state, f.value = fieldSet, v
	return nil
}

// MarshalJSON renders Set as the value and both Absent and Null as null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.state != fieldSet {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

func (f Field[T]) String() string {
	switch f.state {
	case fieldNull:
		return "null"
	case fieldSet:
		b, err := json.Marshal(f.value)
		if err != nil {
			return "set"
		}
		return string(b)
	default:
		return "absent"
	}
}
