package models

// Outcome is the result of an upstream lookup that may have produced nothing.
type Outcome[T any] struct {
	Value T
	OK    bool
}

// Ok wraps a value that was read successfully.
func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v, OK: true}
}

// Unavailable reports that the upstream had no usable data.
func Unavailable[T any]() Outcome[T] {
	return Outcome[T]{}
}

// Or returns the value, or def when the outcome is unavailable.
func (o Outcome[T]) Or(def T) T {
	if !o.OK {
		return def
	}
	return o.Value
}
