package expr

// ReplaceParameter substitutes every free occurrence of target with
// replacement. Unchanged subtrees are shared, not copied. Nested lambdas
// that redeclare the target (same variable, or same name and type) open a
// new scope and are left untouched.
func ReplaceParameter(e Expr, target, replacement *Param) Expr {
	switch node := e.(type) {
	case *Param:
		if node == target {
			return replacement
		}
		return node

	case *Const:
		return node

	case *Prop:
		newTarget := ReplaceParameter(node.target, target, replacement)
		if newTarget == node.target {
			return node
		}
		return &Prop{target: newTarget, name: node.name, typ: node.typ}

	case *Convert:
		newOperand := ReplaceParameter(node.operand, target, replacement)
		if newOperand == node.operand {
			return node
		}
		return &Convert{operand: newOperand, typ: node.typ}

	case *Call:
		newTarget := ReplaceParameter(node.target, target, replacement)
		changed := newTarget != node.target
		newArgs := make([]Expr, len(node.args))
		for i, arg := range node.args {
			newArgs[i] = ReplaceParameter(arg, target, replacement)
			if newArgs[i] != node.args[i] {
				changed = true
			}
		}
		if !changed {
			return node
		}
		return &Call{target: newTarget, op: node.op, args: newArgs}

	case *Lambda:
		if shadows(node, target) {
			return node
		}
		newBody := ReplaceParameter(node.body, target, replacement)
		if newBody == node.body {
			return node
		}
		return &Lambda{params: node.params, body: newBody}

	case *RecordInit:
		changed := false
		newBindings := make([]FieldBinding, len(node.bindings))
		for i, b := range node.bindings {
			newValue := ReplaceParameter(b.Value, target, replacement)
			newBindings[i] = FieldBinding{Field: b.Field, Value: newValue}
			if newValue != b.Value {
				changed = true
			}
		}
		if !changed {
			return node
		}
		return &RecordInit{recordType: node.recordType, bindings: newBindings}

	default:
		return e
	}
}

// shadows reports whether the lambda redeclares the target variable.
func shadows(l *Lambda, target *Param) bool {
	for _, p := range l.params {
		if p == target {
			return true
		}
		if p.name == target.name && p.typ == target.typ {
			return true
		}
	}
	return false
}
