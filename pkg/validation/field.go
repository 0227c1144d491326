// Package validation provides the form-validation context that bound inputs
// notify when their value changes.
//
// Inputs only depend on [Notifier]. [EditContext] is a complete
// implementation that tracks modified fields, runs per-field validators and
// fans change notifications out to subscribers.
package validation

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNotStructPointer is returned by FieldOf when the model is not a
	// non-nil pointer to a struct.
	ErrNotStructPointer = errors.New("validation: model must be a non-nil struct pointer")

	// ErrFieldNotFound is returned by FieldOf when the field pointer does
	// not point at a field of the model.
	ErrFieldNotFound = errors.New("validation: field not found in model")
)

// FieldTag overrides the field name derived by FieldOf.
const FieldTag = "field"

// FieldIdentifier identifies one field of one model. Model must be
// comparable, which in practice means a pointer to the model. Build
// identifiers with NewFieldIdentifier or FieldOf; an EditContext ignores
// state for identifiers whose Model is not comparable.
type FieldIdentifier struct {
	Model     any
	FieldName string
}

// NewFieldIdentifier returns the identifier of fieldName on model.
// It panics if model is not comparable.
func NewFieldIdentifier(model any, fieldName string) FieldIdentifier {
	if model != nil && !reflect.TypeOf(model).Comparable() {
		panic(fmt.Sprintf("validation: model of type %T is not comparable", model))
	}
	return FieldIdentifier{Model: model, FieldName: fieldName}
}

// trackable reports whether f can be used as a map key.
func (f FieldIdentifier) trackable() bool {
	return f.Model == nil || reflect.TypeOf(f.Model).Comparable()
}

// IsZero reports whether the identifier names no field.
func (f FieldIdentifier) IsZero() bool {
	return f.FieldName == ""
}

func (f FieldIdentifier) String() string {
	if f.Model == nil {
		return f.FieldName
	}
	return fmt.Sprintf("%T.%s", f.Model, f.FieldName)
}

// FieldSelector derives a field identifier on demand. Selectors are
// evaluated each time they are needed, so a selector may return a different
// field between calls.
type FieldSelector func() FieldIdentifier

// FieldOf returns the identifier of the struct field fieldPtr points at.
// model must be a pointer to a struct and fieldPtr the address of one of its
// direct fields. The field name is the Go field name unless the field
// carries a `field:"name"` tag.
//
//	type Person struct {
//	    Age int `field:"age"`
//	}
//	p := &Person{}
//	id, _ := validation.FieldOf(p, &p.Age) // {p, "age"}
func FieldOf(model, fieldPtr any) (FieldIdentifier, error) {
	mv := reflect.ValueOf(model)
	if mv.Kind() != reflect.Pointer || mv.IsNil() || mv.Elem().Kind() != reflect.Struct {
		return FieldIdentifier{}, ErrNotStructPointer
	}
	fv := reflect.ValueOf(fieldPtr)
	if fv.Kind() != reflect.Pointer || fv.IsNil() {
		return FieldIdentifier{}, fmt.Errorf("%w: %T is not a field pointer", ErrFieldNotFound, fieldPtr)
	}

	sv := mv.Elem()
	st := sv.Type()
	addr := fv.Pointer()
	for i := 0; i < st.NumField(); i++ {
		field := sv.Field(i)
		if field.Addr().Pointer() != addr || field.Type() != fv.Elem().Type() {
			continue
		}
		name := st.Field(i).Name
		if tag := st.Field(i).Tag.Get(FieldTag); tag != "" {
			name = tag
		}
		return FieldIdentifier{Model: model, FieldName: name}, nil
	}
	return FieldIdentifier{}, fmt.Errorf("%w: %T", ErrFieldNotFound, fieldPtr)
}

// Select returns a selector resolving to the field fieldPtr points at.
// The selector yields the zero identifier when the field cannot be found.
func Select(model, fieldPtr any) FieldSelector {
	return func() FieldIdentifier {
		id, err := FieldOf(model, fieldPtr)
		if err != nil {
			return FieldIdentifier{}
		}
		return id
	}
}
