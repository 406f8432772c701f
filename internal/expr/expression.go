// Package expr holds the expression trees the projection engine builds and
// evaluates: free row variables, property paths, collection operator chains
// and record-construction nodes. Trees are immutable; rewrites share
// unchanged subtrees.
package expr

import (
	"fmt"
	"reflect"

	"github.com/shepherrrd/goshape/internal/schema"
)

// Expr is one node of an expression tree. Every node knows its static
// result type.
type Expr interface {
	Type() reflect.Type
}

// Param is a free variable. Identity is pointer identity: two Params with
// the same name and type are still distinct variables.
type Param struct {
	name string
	typ  reflect.Type
}

func NewParam(name string, typ reflect.Type) *Param {
	return &Param{name: name, typ: typ}
}

func (p *Param) Name() string       { return p.name }
func (p *Param) Type() reflect.Type { return p.typ }

// Const is a literal value.
type Const struct {
	value any
	typ   reflect.Type
}

func Constant(value any) *Const {
	return &Const{value: value, typ: reflect.TypeOf(value)}
}

func (c *Const) Value() any         { return c.value }
func (c *Const) Type() reflect.Type { return c.typ }

// Prop is a field access on a struct-typed target. The field type is
// resolved at construction time.
type Prop struct {
	target Expr
	name   string
	typ    reflect.Type
}

// Property builds a field access node. It panics when the target's type does
// not declare the field; expressions are authored against known entity
// types, so an unknown property is a programming error. A collection-typed
// target resolves the field against its element type, so navigation paths
// compose one level per segment; the access then fans out over the elements
// and collection-typed fields are flattened.
func Property(target Expr, name string) *Prop {
	structType := target.Type()
	if structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}
	collected := false
	if structType.Kind() == reflect.Slice || structType.Kind() == reflect.Array {
		collected = true
		structType = structType.Elem()
		if structType.Kind() == reflect.Ptr {
			structType = structType.Elem()
		}
	}
	field, found := structType.FieldByName(name)
	if !found {
		panic(fmt.Sprintf("Field '%s' not found on %s", name, structType.Name()))
	}
	typ := field.Type
	if collected && typ.Kind() != reflect.Slice {
		typ = reflect.SliceOf(typ)
	}
	return &Prop{target: target, name: name, typ: typ}
}

func (p *Prop) Target() Expr       { return p.target }
func (p *Prop) Name() string       { return p.name }
func (p *Prop) Type() reflect.Type { return p.typ }

// Op names a collection operator. The vocabulary matches the query surface:
// equality filters, ordering, paging.
type Op string

const (
	OpWhere             Op = "Where"
	OpOrderBy           Op = "OrderBy"
	OpOrderByDescending Op = "OrderByDescending"
	OpThenBy            Op = "ThenBy"
	OpThenByDescending  Op = "ThenByDescending"
	OpTake              Op = "Take"
	OpSkip              Op = "Skip"
)

// Call applies a collection operator to a slice-typed target. Every operator
// preserves the target's slice type.
type Call struct {
	target Expr
	op     Op
	args   []Expr
}

// WhereEq filters the target to elements whose field equals value.
func WhereEq(target Expr, field string, value any) *Call {
	return &Call{target: target, op: OpWhere, args: []Expr{Constant(field), Constant(value)}}
}

// WherePred filters the target with a one-parameter predicate lambda.
func WherePred(target Expr, predicate *Lambda) *Call {
	return &Call{target: target, op: OpWhere, args: []Expr{predicate}}
}

func OrderBy(target Expr, field string) *Call {
	return &Call{target: target, op: OpOrderBy, args: []Expr{Constant(field)}}
}

func OrderByDescending(target Expr, field string) *Call {
	return &Call{target: target, op: OpOrderByDescending, args: []Expr{Constant(field)}}
}

func ThenBy(target Expr, field string) *Call {
	return &Call{target: target, op: OpThenBy, args: []Expr{Constant(field)}}
}

func ThenByDescending(target Expr, field string) *Call {
	return &Call{target: target, op: OpThenByDescending, args: []Expr{Constant(field)}}
}

func Take(target Expr, count int) *Call {
	return &Call{target: target, op: OpTake, args: []Expr{Constant(count)}}
}

func Skip(target Expr, count int) *Call {
	return &Call{target: target, op: OpSkip, args: []Expr{Constant(count)}}
}

func (c *Call) Target() Expr       { return c.target }
func (c *Call) Op() Op             { return c.op }
func (c *Call) Args() []Expr       { return c.args }
func (c *Call) Type() reflect.Type { return c.target.Type() }

// Convert annotates an operand with a different static type. Its result type
// for detection purposes is the operand's type; the annotation only affects
// evaluation, where the value is converted when convertible.
type Convert struct {
	operand Expr
	typ     reflect.Type
}

func ConvertTo(operand Expr, typ reflect.Type) *Convert {
	return &Convert{operand: operand, typ: typ}
}

func (c *Convert) Operand() Expr      { return c.operand }
func (c *Convert) Type() reflect.Type { return c.typ }

// Lambda is a function-shaped node: parameters plus a body over them.
type Lambda struct {
	params []*Param
	body   Expr
}

func NewLambda(body Expr, params ...*Param) *Lambda {
	return &Lambda{params: params, body: body}
}

func (l *Lambda) Params() []*Param   { return l.params }
func (l *Lambda) Body() Expr         { return l.body }
func (l *Lambda) Type() reflect.Type { return l.body.Type() }

// FieldBinding assigns one record field from a source expression.
type FieldBinding struct {
	Field string
	Value Expr
}

// RecordInit constructs a record of the given type and assigns every field
// from its binding, in field order.
type RecordInit struct {
	recordType *schema.RecordType
	bindings   []FieldBinding
}

func NewRecordInit(recordType *schema.RecordType, bindings []FieldBinding) *RecordInit {
	return &RecordInit{recordType: recordType, bindings: bindings}
}

func (r *RecordInit) RecordType() *schema.RecordType { return r.recordType }
func (r *RecordInit) Bindings() []FieldBinding       { return r.bindings }

var recordPtrType = reflect.TypeOf((*schema.Record)(nil))

func (r *RecordInit) Type() reflect.Type { return recordPtrType }
