package expr

import (
	"fmt"

	"github.com/shepherrrd/goshape/internal/schema"
)

// BuildProjection emits the projection lambda `row -> Record{field_i: expr_i}`
// for a record type. Every field of the record type must have a binding; a
// partially-applied projection is an internal error, never built.
func BuildProjection(row *Param, recordType *schema.RecordType, bindings map[string]Expr) (*Lambda, error) {
	fields := recordType.Fields()
	ordered := make([]FieldBinding, 0, len(fields))
	for _, field := range fields {
		value, bound := bindings[field.Name]
		if !bound {
			return nil, fmt.Errorf("no binding for field %q", field.Name)
		}
		if value.Type() != nil && field.Type != nil && !value.Type().AssignableTo(field.Type) {
			return nil, fmt.Errorf("binding for field %q has type %s, want %s", field.Name, value.Type(), field.Type)
		}
		ordered = append(ordered, FieldBinding{Field: field.Name, Value: value})
	}
	if len(bindings) != len(fields) {
		return nil, fmt.Errorf("projection has %d bindings for %d fields", len(bindings), len(fields))
	}
	return NewLambda(NewRecordInit(recordType, ordered), row), nil
}
