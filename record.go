package goshape

import (
	"github.com/shepherrrd/goshape/internal/schema"
)

// Record is a runtime-synthesized value holder: a fixed, named, typed set of
// fields produced by SelectPartially.
type Record = schema.Record

// RecordType describes a Record's shape.
type RecordType = schema.RecordType

type FieldDescriptor = schema.FieldDescriptor

// ErrFieldNotFound is returned when a record field name does not resolve.
var ErrFieldNotFound = schema.ErrFieldNotFound

// FieldValue reads a record field back at its static type.
func FieldValue[T any](r *Record, name string) (T, error) {
	return schema.FieldValue[T](r, name)
}
