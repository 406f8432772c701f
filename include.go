package goshape

import (
	"reflect"
	"strings"

	"github.com/shepherrrd/goshape/internal/expr"
)

// Lambda is an include sub-query expression over one placeholder row
// variable.
type Lambda = expr.Lambda

// IncludeExpr builds one include sub-query. Each Include call authors its
// expression against its own placeholder row variable; SelectIncluding
// rewrites them all onto a single shared variable.
type IncludeExpr struct {
	row  *expr.Param
	body expr.Expr
}

// Include starts an include expression rooted at a navigation path of T,
// e.g. Include[User]("Posts") or Include[User]("Posts.Comments"). It panics
// when a path segment is not declared on the type, the same way an invalid
// preload field would.
func Include[T any](path string) *IncludeExpr {
	rowType := reflect.TypeOf((*T)(nil)).Elem()
	if rowType.Kind() == reflect.Ptr {
		rowType = rowType.Elem()
	}
	row := expr.NewParam("x", rowType)

	var body expr.Expr = row
	for _, segment := range strings.Split(path, ".") {
		body = expr.Property(body, segment)
	}
	return &IncludeExpr{row: row, body: body}
}

// Where keeps only related items whose field equals value.
func (e *IncludeExpr) Where(field string, value any) *IncludeExpr {
	return &IncludeExpr{row: e.row, body: expr.WhereEq(e.body, field, value)}
}

func (e *IncludeExpr) OrderBy(field string) *IncludeExpr {
	return &IncludeExpr{row: e.row, body: expr.OrderBy(e.body, field)}
}

func (e *IncludeExpr) OrderByDescending(field string) *IncludeExpr {
	return &IncludeExpr{row: e.row, body: expr.OrderByDescending(e.body, field)}
}

func (e *IncludeExpr) ThenBy(field string) *IncludeExpr {
	return &IncludeExpr{row: e.row, body: expr.ThenBy(e.body, field)}
}

func (e *IncludeExpr) ThenByDescending(field string) *IncludeExpr {
	return &IncludeExpr{row: e.row, body: expr.ThenByDescending(e.body, field)}
}

func (e *IncludeExpr) Take(count int) *IncludeExpr {
	return &IncludeExpr{row: e.row, body: expr.Take(e.body, count)}
}

func (e *IncludeExpr) Skip(count int) *IncludeExpr {
	return &IncludeExpr{row: e.row, body: expr.Skip(e.body, count)}
}

// Lambda closes the expression over its placeholder row variable.
func (e *IncludeExpr) Lambda() *Lambda {
	return expr.NewLambda(e.body, e.row)
}
