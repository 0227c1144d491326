package input

import (
	"reflect"

	"golang.org/x/text/cases"
)

// Comparer decides whether two values are the same for the purpose of
// suppressing updates.
type Comparer[T any] interface {
	Equal(a, b T) bool
}

// ComparerFunc adapts a function to a Comparer.
type ComparerFunc[T any] func(a, b T) bool

// Equal calls f(a, b).
func (f ComparerFunc[T]) Equal(a, b T) bool {
	return f(a, b)
}

// DeepEqual compares values structurally with reflect.DeepEqual. It is the
// default comparer.
func DeepEqual[T any]() Comparer[T] {
	return ComparerFunc[T](func(a, b T) bool {
		return reflect.DeepEqual(a, b)
	})
}

// Equal compares values with ==.
func Equal[T comparable]() Comparer[T] {
	return ComparerFunc[T](func(a, b T) bool {
		return a == b
	})
}

// FoldString compares strings case-insensitively using Unicode case folding.
func FoldString() Comparer[string] {
	return ComparerFunc[string](func(a, b string) bool {
		if a == b {
			return true
		}
		// Casers keep state and are not shared.
		fold := cases.Fold()
		return fold.String(a) == fold.String(b)
	})
}

// Assigner turns an accepted value into the value that is stored, for
// example to normalize it.
type Assigner[T any] interface {
	Assign(v T) T
}

// AssignerFunc adapts a function to an Assigner.
type AssignerFunc[T any] func(v T) T

// Assign calls f(v).
func (f AssignerFunc[T]) Assign(v T) T {
	return f(v)
}

type identity[T any] struct{}

func (identity[T]) Assign(v T) T { return v }
