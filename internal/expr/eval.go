package expr

import (
	"fmt"
	"reflect"
	"sort"
	"time"
)

// environment binds free variables to values for one evaluation. Params are
// compared by identity.
type environment map[*Param]reflect.Value

// EvalLambda1 evaluates a one-parameter lambda against arg. Building a tree
// never evaluates it; this is only called when a query materializes.
func EvalLambda1(l *Lambda, arg reflect.Value) (reflect.Value, error) {
	return evalLambda(l, arg, nil)
}

func evalLambda(l *Lambda, arg reflect.Value, outer environment) (reflect.Value, error) {
	if len(l.params) != 1 {
		return reflect.Value{}, fmt.Errorf("expected a one-parameter lambda, got %d parameters", len(l.params))
	}
	env := make(environment, len(outer)+1)
	for p, v := range outer {
		env[p] = v
	}
	env[l.params[0]] = arg
	return eval(l.body, env)
}

func eval(e Expr, env environment) (reflect.Value, error) {
	switch node := e.(type) {
	case *Param:
		value, bound := env[node]
		if !bound {
			return reflect.Value{}, fmt.Errorf("unbound variable %q", node.name)
		}
		return value, nil

	case *Const:
		return reflect.ValueOf(node.value), nil

	case *Prop:
		target, err := eval(node.target, env)
		if err != nil {
			return reflect.Value{}, err
		}
		if target.Kind() == reflect.Slice || target.Kind() == reflect.Array {
			return gatherField(target, node.name, node.typ)
		}
		return fieldOf(target, node.name, node.typ)

	case *Convert:
		operand, err := eval(node.operand, env)
		if err != nil {
			return reflect.Value{}, err
		}
		if operand.Type() == node.typ {
			return operand, nil
		}
		if operand.Type().ConvertibleTo(node.typ) {
			return operand.Convert(node.typ), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot convert %s to %s", operand.Type(), node.typ)

	case *Call:
		return evalCall(node, env)

	case *RecordInit:
		record := node.recordType.New()
		for _, binding := range node.bindings {
			value, err := eval(binding.Value, env)
			if err != nil {
				return reflect.Value{}, err
			}
			var assigned any
			if value.IsValid() {
				assigned = value.Interface()
			}
			if err := record.Set(binding.Field, assigned); err != nil {
				return reflect.Value{}, err
			}
		}
		return reflect.ValueOf(record), nil

	case *Lambda:
		return reflect.Value{}, fmt.Errorf("lambda used as a value")

	default:
		return reflect.Value{}, fmt.Errorf("unknown expression node %T", e)
	}
}

func evalCall(c *Call, env environment) (reflect.Value, error) {
	if isSortOp(c.op) {
		return evalSortChain(c, env)
	}

	target, err := eval(c.target, env)
	if err != nil {
		return reflect.Value{}, err
	}
	if target.Kind() != reflect.Slice {
		return reflect.Value{}, fmt.Errorf("%s applied to non-collection %s", c.op, target.Type())
	}

	switch c.op {
	case OpWhere:
		return evalWhere(c, target, env)

	case OpTake:
		count, err := argInt(c, 0)
		if err != nil {
			return reflect.Value{}, err
		}
		if count < 0 {
			count = 0
		}
		if count > target.Len() {
			count = target.Len()
		}
		return target.Slice(0, count), nil

	case OpSkip:
		count, err := argInt(c, 0)
		if err != nil {
			return reflect.Value{}, err
		}
		if count < 0 {
			count = 0
		}
		if count > target.Len() {
			count = target.Len()
		}
		return target.Slice(count, target.Len()), nil

	default:
		return reflect.Value{}, fmt.Errorf("unknown operator %s", c.op)
	}
}

func evalWhere(c *Call, target reflect.Value, env environment) (reflect.Value, error) {
	result := reflect.MakeSlice(target.Type(), 0, target.Len())

	// Predicate form: Where(pred). The predicate may close over variables
	// already bound in the surrounding environment.
	if len(c.args) == 1 {
		predicate, ok := c.args[0].(*Lambda)
		if !ok {
			return reflect.Value{}, fmt.Errorf("Where expects a predicate lambda or a field and value")
		}
		for i := 0; i < target.Len(); i++ {
			elem := target.Index(i)
			out, err := evalLambda(predicate, elem, env)
			if err != nil {
				return reflect.Value{}, err
			}
			keep, ok := out.Interface().(bool)
			if !ok {
				return reflect.Value{}, fmt.Errorf("Where predicate returned %s, not bool", out.Type())
			}
			if keep {
				result = reflect.Append(result, elem)
			}
		}
		return result, nil
	}

	// Equality form: Where(field, value).
	field, err := argString(c, 0)
	if err != nil {
		return reflect.Value{}, err
	}
	wantConst, ok := c.args[1].(*Const)
	if !ok {
		return reflect.Value{}, fmt.Errorf("Where comparison value must be a constant")
	}
	for i := 0; i < target.Len(); i++ {
		elem := target.Index(i)
		got, err := fieldOf(elem, field, nil)
		if err != nil {
			return reflect.Value{}, err
		}
		if reflect.DeepEqual(got.Interface(), wantConst.value) {
			result = reflect.Append(result, elem)
		}
	}
	return result, nil
}

func isSortOp(op Op) bool {
	switch op {
	case OpOrderBy, OpOrderByDescending, OpThenBy, OpThenByDescending:
		return true
	}
	return false
}

type sortKey struct {
	field      string
	descending bool
}

// evalSortChain evaluates a run of consecutive ordering operators as one
// composite sort, so ThenBy keys stay subordinate to the OrderBy key.
func evalSortChain(c *Call, env environment) (reflect.Value, error) {
	var keys []sortKey
	node := c
	for {
		field, err := argString(node, 0)
		if err != nil {
			return reflect.Value{}, err
		}
		descending := node.op == OpOrderByDescending || node.op == OpThenByDescending
		// Outer operators are less significant, so prepend while walking out-in.
		keys = append([]sortKey{{field: field, descending: descending}}, keys...)

		inner, ok := node.target.(*Call)
		if !ok || !isSortOp(inner.op) {
			break
		}
		node = inner
	}

	target, err := eval(node.target, env)
	if err != nil {
		return reflect.Value{}, err
	}
	if target.Kind() != reflect.Slice {
		return reflect.Value{}, fmt.Errorf("%s applied to non-collection %s", c.op, target.Type())
	}

	sorted := reflect.MakeSlice(target.Type(), target.Len(), target.Len())
	reflect.Copy(sorted, target)

	var sortErr error
	sort.SliceStable(sorted.Interface(), func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		for _, key := range keys {
			a, err := fieldOf(sorted.Index(i), key.field, nil)
			if err != nil {
				sortErr = err
				return false
			}
			b, err := fieldOf(sorted.Index(j), key.field, nil)
			if err != nil {
				sortErr = err
				return false
			}
			cmp, err := Compare(a, b)
			if err != nil {
				sortErr = err
				return false
			}
			if cmp == 0 {
				continue
			}
			if key.descending {
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

// gatherField reads a named field from every element of a collection.
// Collection-typed fields are concatenated, scalar fields collected, so the
// result type matches what Property declared for the fan-out.
func gatherField(collection reflect.Value, name string, resultType reflect.Type) (reflect.Value, error) {
	out := reflect.MakeSlice(resultType, 0, collection.Len())
	for i := 0; i < collection.Len(); i++ {
		value, err := fieldOf(collection.Index(i), name, resultType)
		if err != nil {
			return reflect.Value{}, err
		}
		if value.Kind() == reflect.Slice {
			out = reflect.AppendSlice(out, value)
			continue
		}
		out = reflect.Append(out, value)
	}
	return out, nil
}

// fieldOf reads a named field from a struct or struct pointer. A nil pointer
// yields the zero value of fallbackType when known.
func fieldOf(v reflect.Value, name string, fallbackType reflect.Type) (reflect.Value, error) {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			if fallbackType != nil {
				return reflect.Zero(fallbackType), nil
			}
			return reflect.Value{}, fmt.Errorf("field %q read through nil pointer", name)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("field %q read on non-struct %s", name, v.Type())
	}
	field := v.FieldByName(name)
	if !field.IsValid() {
		return reflect.Value{}, fmt.Errorf("field %q not found on %s", name, v.Type())
	}
	return field, nil
}

// Compare orders two values of the same type. Signed and unsigned integers,
// floats, strings, bools and time.Time are orderable.
func Compare(a, b reflect.Value) (int, error) {
	if a.Type() != b.Type() {
		return 0, fmt.Errorf("cannot compare %s with %s", a.Type(), b.Type())
	}
	if a.Type() == reflect.TypeOf(time.Time{}) {
		at := a.Interface().(time.Time)
		bt := b.Interface().(time.Time)
		switch {
		case at.Before(bt):
			return -1, nil
		case at.After(bt):
			return 1, nil
		}
		return 0, nil
	}
	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return compareOrdered(a.Int(), b.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return compareOrdered(a.Uint(), b.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return compareOrdered(a.Float(), b.Float()), nil
	case reflect.String:
		return compareOrdered(a.String(), b.String()), nil
	case reflect.Bool:
		av, bv := a.Bool(), b.Bool()
		switch {
		case av == bv:
			return 0, nil
		case bv:
			return -1, nil
		}
		return 1, nil
	default:
		return 0, fmt.Errorf("type %s is not orderable", a.Type())
	}
}

func compareOrdered[T int64 | uint64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func argInt(c *Call, i int) (int, error) {
	konst, ok := c.args[i].(*Const)
	if !ok {
		return 0, fmt.Errorf("%s argument %d must be a constant", c.op, i)
	}
	value, ok := konst.value.(int)
	if !ok {
		return 0, fmt.Errorf("%s argument %d must be an int, got %T", c.op, i, konst.value)
	}
	return value, nil
}

func argString(c *Call, i int) (string, error) {
	konst, ok := c.args[i].(*Const)
	if !ok {
		return "", fmt.Errorf("%s argument %d must be a constant", c.op, i)
	}
	value, ok := konst.value.(string)
	if !ok {
		return "", fmt.Errorf("%s argument %d must be a string, got %T", c.op, i, konst.value)
	}
	return value, nil
}
