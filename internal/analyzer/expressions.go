package analyzer

import (
	"github.com/ril-lang/ril/internal/ast"
	"github.com/ril-lang/ril/internal/diagnostics"
	"github.com/ril-lang/ril/internal/typed"
	"github.com/ril-lang/ril/internal/typesystem"
)

// checkExpr is the bidirectional entry point: when expected is non-nil
// it is pushed into sub-expressions, which is what lets lambda
// parameters and literals omit annotations.
func (a *Analyzer) checkExpr(expr ast.Expression, expected typesystem.Type) (typed.Expr, *diagnostics.DiagnosticError) {
	switch e := expr.(type) {
	case *ast.Identifier:
		id, err := a.readIdent(e, true)
		if err != nil {
			return nil, err
		}
		return a.confirm(id, expected)

	case *ast.IntegerLiteral:
		// The documented default: unannotated numeric literals are Int
		// unless the context pushes Float.
		if expected != nil && typesystem.Equals(expected, typesystem.Float) {
			return &typed.FloatLit{Token: e.GetToken(), Value: float64(e.Value)}, nil
		}
		return a.confirm(&typed.IntLit{Token: e.GetToken(), Value: e.Value, Typ: typesystem.Int}, expected)

	case *ast.FloatLiteral:
		return a.confirm(&typed.FloatLit{Token: e.GetToken(), Value: e.Value}, expected)

	case *ast.BooleanLiteral:
		return a.confirm(&typed.BoolLit{Token: e.GetToken(), Value: e.Value}, expected)

	case *ast.StringLiteral:
		return a.confirm(&typed.StringLit{Token: e.GetToken(), Value: e.Value}, expected)

	case *ast.CharLiteral:
		return a.confirm(&typed.CharLit{Token: e.GetToken(), Value: e.Value}, expected)

	case *ast.UnitLiteral:
		return a.confirm(&typed.UnitLit{Token: e.GetToken()}, expected)

	case *ast.ListLiteral:
		return a.checkListLiteral(e, expected)

	case *ast.RecordLiteral:
		return a.checkRecordLiteral(e, expected)

	case *ast.SomeExpression:
		var inner typesystem.Type
		if opt, ok := expected.(typesystem.TOption); ok {
			inner = opt.Elem
		}
		value, err := a.checkExpr(e.Value, inner)
		if err != nil {
			return nil, err
		}
		lit := &typed.SomeLit{Token: e.GetToken(), Value: value, Typ: typesystem.TOption{Elem: value.Type()}}
		return a.confirm(lit, expected)

	case *ast.NoneExpression:
		if opt, ok := expected.(typesystem.TOption); ok {
			return &typed.NoneLit{Token: e.GetToken(), Typ: opt}, nil
		}
		if expected != nil {
			return nil, diagnostics.NewError(diagnostics.ErrT003, e.GetToken(),
				"expected %s, found Option", expected)
		}
		// No context to infer from; Option<Int> is the default.
		return &typed.NoneLit{Token: e.GetToken(), Typ: typesystem.TOption{Elem: typesystem.Int}}, nil

	case *ast.LambdaExpression:
		return a.checkLambda(e, expected)

	case *ast.CallExpression:
		return a.checkCall(e, expected)

	case *ast.BinaryExpression:
		return a.checkBinary(e, expected)

	case *ast.UnaryExpression:
		return a.checkUnary(e, expected)

	case *ast.MemberExpression:
		return a.checkMember(e, expected)

	case *ast.BlockExpression:
		return a.checkBlock(e, expected)

	case *ast.IfExpression:
		return a.checkIf(e, expected)

	case *ast.MatchExpression:
		return a.checkMatch(e, expected)

	case *ast.ArenaExpression:
		return a.checkArena(e, expected)

	case *ast.CloneExpression:
		return a.checkClone(e, expected)
	}

	return nil, diagnostics.NewError(diagnostics.ErrT003, expr.GetToken(), "unsupported expression")
}

// confirm enforces the pushed-down expected type once a node's own type
// is known.
func (a *Analyzer) confirm(e typed.Expr, expected typesystem.Type) (typed.Expr, *diagnostics.DiagnosticError) {
	if expected != nil && !typesystem.Equals(e.Type(), expected) {
		return nil, diagnostics.NewError(diagnostics.ErrT003, e.GetToken(),
			"expected %s, found %s", expected, e.Type())
	}
	return e, nil
}

// readIdent resolves a name as a binding read or a function reference.
// Reading a non-mutable binding consumes it; a second read fails the
// affine invariant. When consume is false (clone) the flag is left alone.
func (a *Analyzer) readIdent(e *ast.Identifier, consume bool) (typed.Expr, *diagnostics.DiagnosticError) {
	b, idx := a.resolve(e.Value)
	if b == nil {
		if sig, ok := a.lookupFunction(e.Value); ok {
			if sig.ReturnType == nil {
				return nil, diagnostics.NewError(diagnostics.ErrT003, e.GetToken(),
					"function %s is used before its return type is known; annotate it with -> T", e.Value)
			}
			return &typed.FuncRef{Token: e.GetToken(), Name: e.Value, Typ: sig}, nil
		}
		return nil, diagnostics.NewError(diagnostics.ErrT001, e.GetToken(), "%s", e.Value)
	}

	if !b.mutable {
		if b.consumed && consume {
			return nil, diagnostics.NewError(diagnostics.ErrT004, e.GetToken(), "%s", e.Value)
		}
		if consume {
			b.consumed = true
		}
	}

	a.noteCapture(e.Value, b, idx)
	return &typed.Ident{Token: e.GetToken(), Name: e.Value, Typ: b.typ}, nil
}

// noteCapture records the read in every lambda whose boundary the
// binding sits below, innermost first.
func (a *Analyzer) noteCapture(name string, b *binding, scopeIdx int) {
	for i := len(a.funcStack) - 1; i >= 0; i-- {
		ctx := a.funcStack[i]
		if scopeIdx >= ctx.boundary {
			break
		}
		if !ctx.seen[name] {
			ctx.seen[name] = true
			ctx.captures = append(ctx.captures, typed.Capture{Name: name, Typ: b.typ})
		}
	}
}

func (a *Analyzer) checkListLiteral(e *ast.ListLiteral, expected typesystem.Type) (typed.Expr, *diagnostics.DiagnosticError) {
	var elemWant typesystem.Type
	if lst, ok := expected.(typesystem.TList); ok {
		elemWant = lst.Elem
	}

	lit := &typed.ListLit{Token: e.GetToken()}
	for _, el := range e.Elements {
		te, err := a.checkExpr(el, elemWant)
		if err != nil {
			return nil, err
		}
		if elemWant == nil {
			elemWant = te.Type()
		}
		lit.Elems = append(lit.Elems, te)
	}
	if elemWant == nil {
		elemWant = typesystem.Int
	}
	lit.Typ = typesystem.TList{Elem: elemWant}
	return a.confirm(lit, expected)
}

func (a *Analyzer) checkRecordLiteral(e *ast.RecordLiteral, expected typesystem.Type) (typed.Expr, *diagnostics.DiagnosticError) {
	rec, ok := a.records[e.Name.Value]
	if !ok {
		rec, ok = a.contexts[e.Name.Value]
	}
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrT003, e.GetToken(),
			"unknown record %s", e.Name.Value)
	}

	if len(e.Fields) != len(rec.Fields) {
		return nil, diagnostics.NewError(diagnostics.ErrT003, e.GetToken(),
			"record %s has %d fields, literal provides %d", rec.Name, len(rec.Fields), len(e.Fields))
	}

	// Reorder initializers to declaration order so codegen stores each
	// field at its fixed offset.
	lit := &typed.RecordLit{Token: e.GetToken(), Rec: rec, Fields: make([]typed.Expr, len(rec.Fields))}
	for _, init := range e.Fields {
		idx := rec.FieldIndex(init.Name.Value)
		if idx < 0 {
			return nil, diagnostics.NewError(diagnostics.ErrT003, init.Name.GetToken(),
				"record %s has no field %s", rec.Name, init.Name.Value)
		}
		if lit.Fields[idx] != nil {
			return nil, diagnostics.NewError(diagnostics.ErrT003, init.Name.GetToken(),
				"field %s initialized twice", init.Name.Value)
		}
		value, err := a.checkExpr(init.Value, rec.Fields[idx].Type)
		if err != nil {
			return nil, err
		}
		lit.Fields[idx] = value
	}
	return a.confirm(lit, expected)
}

// checkLambda infers unannotated parameters from the expected function
// type — the mechanism that makes |x| x + 1 check against Int -> Int.
func (a *Analyzer) checkLambda(e *ast.LambdaExpression, expected typesystem.Type) (typed.Expr, *diagnostics.DiagnosticError) {
	var expFn *typesystem.TFunc
	if expected != nil {
		f, ok := expected.(typesystem.TFunc)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrT003, e.GetToken(),
				"expected %s, found function", expected)
		}
		if len(f.Params) != len(e.Params) {
			return nil, diagnostics.NewError(diagnostics.ErrT003, e.GetToken(),
				"expected a %d-parameter function, found %d parameters", len(f.Params), len(e.Params))
		}
		expFn = &f
	}

	lam := &typed.Lambda{Token: e.GetToken()}
	for i, param := range e.Params {
		var pt typesystem.Type
		if param.TypeAnnotation != nil {
			t, err := a.resolveType(param.TypeAnnotation)
			if err != nil {
				return nil, err
			}
			pt = t
			if expFn != nil && !typesystem.Equals(pt, expFn.Params[i]) {
				return nil, diagnostics.NewError(diagnostics.ErrT003, param.GetToken(),
					"expected %s, found %s", expFn.Params[i], pt)
			}
		} else if expFn != nil {
			pt = expFn.Params[i]
		} else {
			return nil, diagnostics.NewError(diagnostics.ErrT003, param.GetToken(),
				"cannot infer type of parameter %s; annotate it or use the lambda where a function type is expected",
				param.Name.Value)
		}
		lam.Params = append(lam.Params, typed.Param{Name: param.Name.Value, Typ: pt})
	}

	ctx := &funcCtx{boundary: len(a.scopes), seen: make(map[string]bool)}
	a.funcStack = append(a.funcStack, ctx)
	a.pushScope()
	for _, p := range lam.Params {
		a.define(p.Name, p.Typ, false)
	}

	var bodyWant typesystem.Type
	if expFn != nil {
		bodyWant = expFn.ReturnType
	}
	body, err := a.checkExpr(e.Body, bodyWant)

	a.popScope()
	a.funcStack = a.funcStack[:len(a.funcStack)-1]
	if err != nil {
		return nil, err
	}

	lam.Body = body
	lam.Captures = ctx.captures
	sig := typesystem.TFunc{ReturnType: body.Type()}
	for _, p := range lam.Params {
		sig.Params = append(sig.Params, p.Typ)
	}
	lam.Typ = sig
	return lam, nil
}

func (a *Analyzer) checkBinary(e *ast.BinaryExpression, expected typesystem.Type) (typed.Expr, *diagnostics.DiagnosticError) {
	switch e.Operator {
	case "+", "-", "*", "/", "%":
		var operandWant typesystem.Type
		if expected != nil && typesystem.IsNumeric(expected) {
			operandWant = expected
		}
		left, err := a.checkExpr(e.Left, operandWant)
		if err != nil {
			return nil, err
		}
		if !typesystem.IsNumeric(left.Type()) {
			return nil, diagnostics.NewError(diagnostics.ErrT003, e.Left.GetToken(),
				"operator %s needs a numeric operand, found %s", e.Operator, left.Type())
		}
		right, err := a.checkExpr(e.Right, left.Type())
		if err != nil {
			return nil, err
		}
		bin := &typed.Binary{Token: e.GetToken(), Operator: e.Operator, Left: left, Right: right, Typ: left.Type()}
		return a.confirm(bin, expected)

	case "<", "<=", ">", ">=":
		left, err := a.checkExpr(e.Left, nil)
		if err != nil {
			return nil, err
		}
		if !typesystem.IsNumeric(left.Type()) && !typesystem.Equals(left.Type(), typesystem.Char) {
			return nil, diagnostics.NewError(diagnostics.ErrT003, e.Left.GetToken(),
				"operator %s needs an ordered operand, found %s", e.Operator, left.Type())
		}
		right, err := a.checkExpr(e.Right, left.Type())
		if err != nil {
			return nil, err
		}
		bin := &typed.Binary{Token: e.GetToken(), Operator: e.Operator, Left: left, Right: right, Typ: typesystem.Bool}
		return a.confirm(bin, expected)

	case "==", "!=":
		left, err := a.checkExpr(e.Left, nil)
		if err != nil {
			return nil, err
		}
		right, err := a.checkExpr(e.Right, left.Type())
		if err != nil {
			return nil, err
		}
		bin := &typed.Binary{Token: e.GetToken(), Operator: e.Operator, Left: left, Right: right, Typ: typesystem.Bool}
		return a.confirm(bin, expected)

	case "&&", "||":
		left, err := a.checkExpr(e.Left, typesystem.Bool)
		if err != nil {
			return nil, err
		}
		right, err := a.checkExpr(e.Right, typesystem.Bool)
		if err != nil {
			return nil, err
		}
		bin := &typed.Binary{Token: e.GetToken(), Operator: e.Operator, Left: left, Right: right, Typ: typesystem.Bool}
		return a.confirm(bin, expected)
	}

	return nil, diagnostics.NewError(diagnostics.ErrT003, e.GetToken(), "unknown operator %s", e.Operator)
}

func (a *Analyzer) checkUnary(e *ast.UnaryExpression, expected typesystem.Type) (typed.Expr, *diagnostics.DiagnosticError) {
	switch e.Operator {
	case "-":
		var want typesystem.Type
		if expected != nil && typesystem.IsNumeric(expected) {
			want = expected
		}
		operand, err := a.checkExpr(e.Operand, want)
		if err != nil {
			return nil, err
		}
		if !typesystem.IsNumeric(operand.Type()) {
			return nil, diagnostics.NewError(diagnostics.ErrT003, e.GetToken(),
				"unary - needs a numeric operand, found %s", operand.Type())
		}
		un := &typed.Unary{Token: e.GetToken(), Operator: "-", Operand: operand, Typ: operand.Type()}
		return a.confirm(un, expected)
	case "!":
		operand, err := a.checkExpr(e.Operand, typesystem.Bool)
		if err != nil {
			return nil, err
		}
		un := &typed.Unary{Token: e.GetToken(), Operator: "!", Operand: operand, Typ: typesystem.Bool}
		return a.confirm(un, expected)
	}
	return nil, diagnostics.NewError(diagnostics.ErrT003, e.GetToken(), "unknown operator %s", e.Operator)
}

// checkMember type-checks a field projection. Projecting a field out of
// a named binding does not consume it: only argument passing, rebinding
// and returning count as moves.
func (a *Analyzer) checkMember(e *ast.MemberExpression, expected typesystem.Type) (typed.Expr, *diagnostics.DiagnosticError) {
	var left typed.Expr
	var err *diagnostics.DiagnosticError
	if id, ok := e.Left.(*ast.Identifier); ok {
		left, err = a.readIdent(id, false)
	} else {
		left, err = a.checkExpr(e.Left, nil)
	}
	if err != nil {
		return nil, err
	}
	rec, ok := left.Type().(typesystem.TRecord)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrT003, e.GetToken(),
			"field access on non-record type %s", left.Type())
	}
	idx := rec.FieldIndex(e.Member.Value)
	if idx < 0 {
		return nil, diagnostics.NewError(diagnostics.ErrT003, e.Member.GetToken(),
			"record %s has no field %s", rec.Name, e.Member.Value)
	}
	m := &typed.Member{
		Token: e.GetToken(),
		Left:  left,
		Field: e.Member.Value,
		Index: idx,
		Typ:   rec.Fields[idx].Type,
	}
	return a.confirm(m, expected)
}

// checkIf checks both branches from the same affine snapshot, so a
// binding may be consumed on parallel paths but never twice on one.
func (a *Analyzer) checkIf(e *ast.IfExpression, expected typesystem.Type) (typed.Expr, *diagnostics.DiagnosticError) {
	cond, err := a.checkExpr(e.Condition, typesystem.Bool)
	if err != nil {
		return nil, err
	}

	snap := a.snapshotConsumed()
	merged := a.captureConsumed()

	thenBlock, err := a.checkBlock(e.Then, expected)
	if err != nil {
		return nil, err
	}
	mergeConsumed(merged, a.captureConsumed())
	a.restoreConsumed(snap)

	out := &typed.If{Token: e.GetToken(), Condition: cond, Then: thenBlock, Typ: thenBlock.Typ}

	if e.Else != nil {
		elseBlock, err := a.checkBlock(e.Else, thenBlock.Typ)
		if err != nil {
			return nil, err
		}
		mergeConsumed(merged, a.captureConsumed())
		a.restoreConsumed(snap)
		out.Else = elseBlock
	} else if !typesystem.Equals(thenBlock.Typ, typesystem.Unit) {
		return nil, diagnostics.NewError(diagnostics.ErrT003, e.GetToken(),
			"if without else must be Unit, found %s", thenBlock.Typ)
	}

	a.restoreConsumed(merged)
	return a.confirm(out, expected)
}

// checkArena checks a with-Arena block. Only scalar results may escape
// the reset; aggregate results are rejected here rather than copied out.
func (a *Analyzer) checkArena(e *ast.ArenaExpression, expected typesystem.Type) (typed.Expr, *diagnostics.DiagnosticError) {
	body, err := a.checkBlock(e.Body, expected)
	if err != nil {
		return nil, err
	}
	if typesystem.IsAggregate(body.Typ) {
		return nil, diagnostics.NewError(diagnostics.ErrT003, e.GetToken(),
			"aggregate value of type %s cannot escape an arena block; only scalar results survive the reset", body.Typ)
	}
	return &typed.Arena{Token: e.GetToken(), Body: body}, nil
}

// checkClone reads the operand without consuming it — the affine
// escape hatch.
func (a *Analyzer) checkClone(e *ast.CloneExpression, expected typesystem.Type) (typed.Expr, *diagnostics.DiagnosticError) {
	if id, ok := e.Operand.(*ast.Identifier); ok {
		operand, err := a.readIdent(id, false)
		if err != nil {
			return nil, err
		}
		return a.confirm(&typed.Clone{Token: e.GetToken(), Operand: operand}, expected)
	}
	operand, err := a.checkExpr(e.Operand, nil)
	if err != nil {
		return nil, err
	}
	return a.confirm(&typed.Clone{Token: e.GetToken(), Operand: operand}, expected)
}
