// Package engine supplies the deferred-query abstraction the projection
// layer drives: a lazy, composable description of a row fetch with one
// eager Materialize point, plus optional capabilities a source may offer
// (column pushdown, related-data loading).
package engine

import (
	"context"
	"reflect"
)

// DeferredQuery describes a data fetch that does not execute until
// Materialize is called. Implementations must keep building stages pure.
type DeferredQuery[R any] interface {
	// RowType is the declared row type, used to resolve requested field
	// names against the source shape.
	RowType() reflect.Type

	// Materialize executes the query once and returns all rows.
	Materialize(ctx context.Context) ([]R, error)
}

// ColumnSelector is implemented by sources that can restrict the fetched
// columns to a projected subset. WithColumns returns a new source; the
// receiver is left untouched.
type ColumnSelector[R any] interface {
	WithColumns(columns []string) DeferredQuery[R]
}

// NavigationLoader is implemented by sources whose materializer can fetch a
// related collection in the same round trip and attach it to each row by
// identity. WithNavigation returns a new source; the receiver is left
// untouched.
type NavigationLoader[R any] interface {
	WithNavigation(hint NavigationHint) DeferredQuery[R]
}

// NavigationOpKind names one modifier applied to a related collection.
type NavigationOpKind string

const (
	NavWhere     NavigationOpKind = "where"
	NavOrder     NavigationOpKind = "order"
	NavOrderDesc NavigationOpKind = "orderDesc"
	NavLimit     NavigationOpKind = "limit"
	NavOffset    NavigationOpKind = "offset"
)

// NavigationOp is one modifier in a navigation sub-query: an equality
// filter, an ordering key, or paging.
type NavigationOp struct {
	Kind  NavigationOpKind
	Field string
	Value any
	Count int
}

// NavigationHint asks a source's materializer to populate the navigation at
// Path on every row, with the given modifiers applied in order.
type NavigationHint struct {
	Path string
	Ops  []NavigationOp
}
