package goshape

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/shepherrrd/goshape/internal/engine"
	"github.com/shepherrrd/goshape/internal/expr"
	"github.com/shepherrrd/goshape/internal/schema"
)

// ErrNilSource is returned when an operation is handed no source query.
var ErrNilSource = errors.New("source query is nil")

// sourceObjectField carries the original row through an include projection.
const sourceObjectField = "sourceObject"

var recordResultType = reflect.TypeOf((*schema.Record)(nil))

// FieldPolicy decides what happens to a requested field name that does not
// resolve against the row type.
type FieldPolicy int

const (
	// Permissive drops unresolved names silently. Callers cannot tell a
	// deliberately omitted field from a misspelled one; this is the
	// compatible default.
	Permissive FieldPolicy = iota

	// Strict makes an unresolved name an error.
	Strict
)

type ProjectionOption func(*projectionConfig)

type projectionConfig struct {
	policy FieldPolicy
}

// WithStrictFields makes SelectPartially fail on field names that do not
// resolve, instead of dropping them.
func WithStrictFields() ProjectionOption {
	return func(cfg *projectionConfig) {
		cfg.policy = Strict
	}
}

func WithFieldPolicy(policy FieldPolicy) ProjectionOption {
	return func(cfg *projectionConfig) {
		cfg.policy = policy
	}
}

// SelectPartially projects source down to the named fields. The result is a
// deferred query of records whose shape is exactly the resolved subset, in
// the caller's order; nothing executes until the caller materializes it.
func SelectPartially[T any](source DeferredQuery[T], fieldNames []string, opts ...ProjectionOption) (DeferredQuery[*Record], error) {
	if source == nil {
		return nil, ErrNilSource
	}

	var cfg projectionConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	rowType := source.RowType()
	row := expr.NewParam("row", rowType)
	catalog := schema.NewFieldCatalog()
	bindings := make(map[string]expr.Expr)
	var selected []string

	for _, name := range fieldNames {
		field, found := rowType.FieldByName(name)
		if !found || field.PkgPath != "" {
			if cfg.policy == Strict {
				return nil, fmt.Errorf("unknown field %q on %s", name, rowType.Name())
			}
			continue
		}
		if err := catalog.Add(name, field.Type); err != nil {
			return nil, err
		}
		bindings[name] = expr.Property(row, name)
		selected = append(selected, name)
	}

	recordType := schema.RecordTypeFor(catalog)
	lambda, err := expr.BuildProjection(row, recordType, bindings)
	if err != nil {
		return nil, err
	}

	if selector, ok := any(source).(engine.ColumnSelector[T]); ok && len(selected) > 0 {
		source = selector.WithColumns(selected)
	}

	return engine.Project(source, recordResultType, func(rowValue T) (*Record, error) {
		out, err := expr.EvalLambda1(lambda, reflect.ValueOf(rowValue))
		if err != nil {
			return nil, err
		}
		return out.Interface().(*schema.Record), nil
	}), nil
}

// SelectIncluding materializes source eagerly with every include sub-query
// fetched in the same round trip, so the engine's materializer can attach
// the related data to the returned rows. The synthesized projection fields
// exist only to force those sub-queries; their values are discarded and the
// original rows are returned.
func SelectIncluding[T any](ctx context.Context, source DeferredQuery[T], includes ...*Lambda) ([]T, error) {
	if source == nil {
		return nil, ErrNilSource
	}

	rowType := source.RowType()
	// The materialized elements carry T's own type, pointer or not; RowType
	// reports the unwrapped struct type for field resolution only.
	elemType := reflect.TypeOf((*T)(nil)).Elem()
	row := expr.NewParam("row", elemType)
	catalog := schema.NewFieldCatalog()
	bindings := make(map[string]expr.Expr)

	for i, include := range includes {
		if include == nil {
			return nil, fmt.Errorf("include expression %d is nil", i)
		}
		params := include.Params()
		if len(params) != 1 {
			return nil, fmt.Errorf("include expression %d must have exactly one parameter", i)
		}
		if params[0].Type() != rowType {
			return nil, fmt.Errorf("include expression %d is over %s, want %s", i, params[0].Type(), rowType)
		}

		body := unwrapConvert(include.Body())
		rewritten := expr.ReplaceParameter(body, params[0], row)

		name := fmt.Sprintf("f%d", i)
		if err := catalog.Add(name, body.Type()); err != nil {
			return nil, err
		}
		bindings[name] = rewritten

		if hint, ok := navigationHint(rewritten, row); ok {
			if loader, ok := any(source).(engine.NavigationLoader[T]); ok {
				source = loader.WithNavigation(hint)
			}
		}
	}

	if err := catalog.Add(sourceObjectField, elemType); err != nil {
		return nil, err
	}
	bindings[sourceObjectField] = row

	recordType := schema.RecordTypeFor(catalog)
	lambda, err := expr.BuildProjection(row, recordType, bindings)
	if err != nil {
		return nil, err
	}

	projected := engine.Project(source, recordResultType, func(rowValue T) (*Record, error) {
		out, err := expr.EvalLambda1(lambda, reflect.ValueOf(rowValue))
		if err != nil {
			return nil, err
		}
		return out.Interface().(*schema.Record), nil
	})

	// The one eager point: sub-queries must run while the source is live.
	records, err := projected.Materialize(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]T, 0, len(records))
	for _, record := range records {
		rowValue, err := schema.FieldValue[T](record, sourceObjectField)
		if err != nil {
			return nil, err
		}
		rows = append(rows, rowValue)
	}
	return rows, nil
}

// unwrapConvert strips type-annotation wrappers so result-type detection
// always sees the operand's own static type.
func unwrapConvert(e expr.Expr) expr.Expr {
	for {
		convert, ok := e.(*expr.Convert)
		if !ok {
			return e
		}
		e = convert.Operand()
	}
}

// navigationHint recognizes an include body shaped as an operator chain over
// a navigation path of the row and translates it for the source's
// materializer. Bodies in any other shape produce no hint; their binding
// still evaluates.
func navigationHint(body expr.Expr, row *expr.Param) (engine.NavigationHint, bool) {
	var ops []engine.NavigationOp
	node := body
	for {
		call, ok := node.(*expr.Call)
		if !ok {
			break
		}
		op, ok := hintOp(call)
		if !ok {
			return engine.NavigationHint{}, false
		}
		// Walking out-in, so prepend to restore application order.
		ops = append([]engine.NavigationOp{op}, ops...)
		node = call.Target()
	}

	var segments []string
	for {
		prop, ok := node.(*expr.Prop)
		if !ok {
			break
		}
		segments = append([]string{prop.Name()}, segments...)
		node = prop.Target()
	}
	if len(segments) == 0 {
		return engine.NavigationHint{}, false
	}
	if param, ok := node.(*expr.Param); !ok || param != row {
		return engine.NavigationHint{}, false
	}

	return engine.NavigationHint{
		Path: strings.Join(segments, "."),
		Ops:  ops,
	}, true
}

func hintOp(call *expr.Call) (engine.NavigationOp, bool) {
	args := call.Args()
	switch call.Op() {
	case expr.OpWhere:
		// Only the field-equality form translates; predicate lambdas stay
		// in-memory.
		if len(args) != 2 {
			return engine.NavigationOp{}, false
		}
		field, ok := constString(args[0])
		if !ok {
			return engine.NavigationOp{}, false
		}
		value, ok := args[1].(*expr.Const)
		if !ok {
			return engine.NavigationOp{}, false
		}
		return engine.NavigationOp{Kind: engine.NavWhere, Field: field, Value: value.Value()}, true

	case expr.OpOrderBy, expr.OpThenBy:
		field, ok := constString(args[0])
		if !ok {
			return engine.NavigationOp{}, false
		}
		return engine.NavigationOp{Kind: engine.NavOrder, Field: field}, true

	case expr.OpOrderByDescending, expr.OpThenByDescending:
		field, ok := constString(args[0])
		if !ok {
			return engine.NavigationOp{}, false
		}
		return engine.NavigationOp{Kind: engine.NavOrderDesc, Field: field}, true

	case expr.OpTake:
		count, ok := constInt(args[0])
		if !ok {
			return engine.NavigationOp{}, false
		}
		return engine.NavigationOp{Kind: engine.NavLimit, Count: count}, true

	case expr.OpSkip:
		count, ok := constInt(args[0])
		if !ok {
			return engine.NavigationOp{}, false
		}
		return engine.NavigationOp{Kind: engine.NavOffset, Count: count}, true
	}
	return engine.NavigationOp{}, false
}

func constString(e expr.Expr) (string, bool) {
	konst, ok := e.(*expr.Const)
	if !ok {
		return "", false
	}
	value, ok := konst.Value().(string)
	return value, ok
}

func constInt(e expr.Expr) (int, bool) {
	konst, ok := e.(*expr.Const)
	if !ok {
		return 0, false
	}
	value, ok := konst.Value().(int)
	return value, ok
}
