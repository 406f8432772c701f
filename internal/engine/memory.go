package engine

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/shepherrrd/goshape/internal/expr"
)

// MemorySource is a slice-backed deferred query. Materialize hands out the
// same backing slice every time, so related-data population written into a
// row is visible on the rows the caller already holds; that is the in-memory
// analog of a materializer linking objects by identity in one round trip.
type MemorySource[T any] struct {
	rows  []T
	hints []NavigationHint
}

func NewMemorySource[T any](rows []T) *MemorySource[T] {
	return &MemorySource[T]{rows: rows}
}

func (m *MemorySource[T]) RowType() reflect.Type {
	rowType := reflect.TypeOf((*T)(nil)).Elem()
	if rowType.Kind() == reflect.Ptr {
		rowType = rowType.Elem()
	}
	return rowType
}

// WithNavigation returns a new source carrying the hint; the receiver's hint
// list is untouched. Both sources still share the backing row slice.
func (m *MemorySource[T]) WithNavigation(hint NavigationHint) DeferredQuery[T] {
	hints := make([]NavigationHint, len(m.hints), len(m.hints)+1)
	copy(hints, m.hints)
	return &MemorySource[T]{rows: m.rows, hints: append(hints, hint)}
}

func (m *MemorySource[T]) Materialize(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, hint := range m.hints {
		segments := strings.Split(hint.Path, ".")
		for i := range m.rows {
			row := reflect.ValueOf(&m.rows[i]).Elem()
			if err := applyHint(row, segments, hint.Ops); err != nil {
				return nil, err
			}
		}
	}
	return m.rows, nil
}

// applyHint walks the navigation path down to its final collection and
// rewrites that collection field with the hint's modifiers applied.
func applyHint(row reflect.Value, segments []string, ops []NavigationOp) error {
	if row.Kind() == reflect.Ptr {
		if row.IsNil() {
			return nil
		}
		row = row.Elem()
	}
	if row.Kind() != reflect.Struct {
		return fmt.Errorf("navigation %q through non-struct %s", segments[0], row.Type())
	}
	field := row.FieldByName(segments[0])
	if !field.IsValid() {
		return fmt.Errorf("navigation %q not found on %s", segments[0], row.Type())
	}

	if len(segments) > 1 {
		switch field.Kind() {
		case reflect.Slice:
			for i := 0; i < field.Len(); i++ {
				if err := applyHint(field.Index(i), segments[1:], ops); err != nil {
					return err
				}
			}
			return nil
		default:
			return applyHint(field, segments[1:], ops)
		}
	}

	if field.Kind() != reflect.Slice {
		// Single navigations carry no collection modifiers to apply.
		return nil
	}
	modified, err := applyOps(field, ops)
	if err != nil {
		return err
	}
	field.Set(modified)
	return nil
}

func applyOps(collection reflect.Value, ops []NavigationOp) (reflect.Value, error) {
	result := collection
	for i := 0; i < len(ops); i++ {
		op := ops[i]
		switch op.Kind {
		case NavWhere:
			filtered := reflect.MakeSlice(result.Type(), 0, result.Len())
			for j := 0; j < result.Len(); j++ {
				elem := result.Index(j)
				got, err := elemField(elem, op.Field)
				if err != nil {
					return reflect.Value{}, err
				}
				if reflect.DeepEqual(got.Interface(), op.Value) {
					filtered = reflect.Append(filtered, elem)
				}
			}
			result = filtered

		case NavOrder, NavOrderDesc:
			// A run of consecutive ordering modifiers is one composite sort.
			run := []NavigationOp{op}
			for i+1 < len(ops) && (ops[i+1].Kind == NavOrder || ops[i+1].Kind == NavOrderDesc) {
				i++
				run = append(run, ops[i])
			}
			sorted, err := sortCollection(result, run)
			if err != nil {
				return reflect.Value{}, err
			}
			result = sorted

		case NavLimit:
			count := op.Count
			if count > result.Len() {
				count = result.Len()
			}
			if count < 0 {
				count = 0
			}
			result = result.Slice(0, count)

		case NavOffset:
			count := op.Count
			if count > result.Len() {
				count = result.Len()
			}
			if count < 0 {
				count = 0
			}
			result = result.Slice(count, result.Len())

		default:
			return reflect.Value{}, fmt.Errorf("unknown navigation modifier %q", op.Kind)
		}
	}
	return result, nil
}

func sortCollection(collection reflect.Value, keys []NavigationOp) (reflect.Value, error) {
	sorted := reflect.MakeSlice(collection.Type(), collection.Len(), collection.Len())
	reflect.Copy(sorted, collection)

	var sortErr error
	sort.SliceStable(sorted.Interface(), func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		for _, key := range keys {
			a, err := elemField(sorted.Index(i), key.Field)
			if err != nil {
				sortErr = err
				return false
			}
			b, err := elemField(sorted.Index(j), key.Field)
			if err != nil {
				sortErr = err
				return false
			}
			cmp, err := expr.Compare(a, b)
			if err != nil {
				sortErr = err
				return false
			}
			if cmp == 0 {
				continue
			}
			if key.Kind == NavOrderDesc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	if sortErr != nil {
		return reflect.Value{}, sortErr
	}
	return sorted, nil
}

func elemField(elem reflect.Value, name string) (reflect.Value, error) {
	if elem.Kind() == reflect.Ptr {
		if elem.IsNil() {
			return reflect.Value{}, fmt.Errorf("field %q read through nil pointer", name)
		}
		elem = elem.Elem()
	}
	field := elem.FieldByName(name)
	if !field.IsValid() {
		return reflect.Value{}, fmt.Errorf("field %q not found on %s", name, elem.Type())
	}
	return field, nil
}
