package schema

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrFieldNotFound is returned when a record is asked for a field its type
// does not declare.
var ErrFieldNotFound = errors.New("field not found")

// Record is an instance of a RecordType: a fixed set of named, typed values.
// Values keep the exact declared field type, so callers can read results
// back without boxing ambiguity.
type Record struct {
	rtype  *RecordType
	values []any
}

func (r *Record) Type() *RecordType {
	return r.rtype
}

// Get returns the value of the named field.
func (r *Record) Get(name string) (any, error) {
	i, exists := r.rtype.index[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q on record %s", ErrFieldNotFound, name, r.rtype.signature)
	}
	return r.values[i], nil
}

// Set assigns the named field. The value must be assignable to the field's
// declared type; nil is accepted for nullable field kinds.
func (r *Record) Set(name string, value any) error {
	i, exists := r.rtype.index[name]
	if !exists {
		return fmt.Errorf("%w: %q on record %s", ErrFieldNotFound, name, r.rtype.signature)
	}
	fieldType := r.rtype.fields[i].Type
	if value == nil {
		if !isNullableKind(fieldType) {
			return fmt.Errorf("cannot assign nil to field %q of type %s", name, fieldType)
		}
		r.values[i] = reflect.Zero(fieldType).Interface()
		return nil
	}
	valueType := reflect.TypeOf(value)
	if !valueType.AssignableTo(fieldType) {
		return fmt.Errorf("cannot assign %s to field %q of type %s", valueType, name, fieldType)
	}
	r.values[i] = value
	return nil
}

// Columns returns the field names in declaration order.
func (r *Record) Columns() []string {
	names := make([]string, len(r.rtype.fields))
	for i, f := range r.rtype.fields {
		names[i] = f.Name
	}
	return names
}

// FieldValue reads a field back at its static type.
func FieldValue[T any](r *Record, name string) (T, error) {
	var zero T
	value, err := r.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("field %q holds %T, not %T", name, value, zero)
	}
	return typed, nil
}

func isNullableKind(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}
