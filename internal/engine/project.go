package engine

import (
	"context"
	"reflect"
)

// Project registers a pure projection stage over source. Nothing executes
// until the returned query materializes; at that point the source
// materializes once and every row is mapped through fn.
func Project[T, R any](source DeferredQuery[T], resultType reflect.Type, fn func(T) (R, error)) DeferredQuery[R] {
	return &projectedQuery[T, R]{
		source:     source,
		resultType: resultType,
		fn:         fn,
	}
}

type projectedQuery[T, R any] struct {
	source     DeferredQuery[T]
	resultType reflect.Type
	fn         func(T) (R, error)
}

func (q *projectedQuery[T, R]) RowType() reflect.Type {
	return q.resultType
}

func (q *projectedQuery[T, R]) Materialize(ctx context.Context) ([]R, error) {
	rows, err := q.source.Materialize(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]R, 0, len(rows))
	for _, row := range rows {
		result, err := q.fn(row)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}
