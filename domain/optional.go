package domain

import "encoding/json"

// Optional is a patch field that distinguishes "leave unchanged" from "set to null".
// Unset values are dropped from request bodies through the omitzero tag.
type Optional[T any] struct {
	set   bool
	value *T
}

// Set returns a present Optional holding v.
func Set[T any](v T) Optional[T] {
	return Optional[T]{set: true, value: &v}
}

// Null returns a present Optional that clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{set: true}
}

func (o Optional[T]) IsZero() bool {
	return !o.set
}

func (o Optional[T]) IsSet() bool {
	return o.set
}

// Value returns the held pointer; nil for Null or unset.
func (o Optional[T]) Value() *T {
	if o.value == nil {
		return nil
	}
	v := *o.value
	return &v
}

// ApplyTo overwrites *dst when the Optional is present.
func (o Optional[T]) ApplyTo(dst **T) {
	if !o.set {
		return
	}
	*dst = o.Value()
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if string(data) == "null" {
		o.value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.value = &v
	return nil
}
