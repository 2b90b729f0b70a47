package analyzer

import (
	"github.com/ril-lang/ril/internal/ast"
	"github.com/ril-lang/ril/internal/diagnostics"
	"github.com/ril-lang/ril/internal/typed"
	"github.com/ril-lang/ril/internal/typesystem"
)

// checkCall resolves the callee of an object-subject-verb call, then
// checks the arguments left to right, each with the corresponding
// parameter type as its expected type. That ordering is what lets a
// lambda argument infer its parameter types from the callee signature.
func (a *Analyzer) checkCall(e *ast.CallExpression, expected typesystem.Type) (typed.Expr, *diagnostics.DiagnosticError) {
	callee, sig, err := a.resolveCallee(e.Callee)
	if err != nil {
		return nil, err
	}

	if len(e.Args) != len(sig.Params) {
		return nil, diagnostics.NewError(diagnostics.ErrT006, e.GetToken(),
			"expected %d arguments, found %d", len(sig.Params), len(e.Args))
	}

	call := &typed.Call{Token: e.GetToken(), Callee: callee, Typ: sig.ReturnType}
	for i, arg := range e.Args {
		ta, err := a.checkExpr(arg, sig.Params[i])
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, ta)
	}
	return a.confirm(call, expected)
}

// resolveCallee classifies the call target.
//
// A local binding of function type makes the call indirect (through the
// function table); a name in the global signature table makes it a
// direct, statically-resolved call. A dotted path (p) Point.norm names
// an impl method.
func (a *Analyzer) resolveCallee(callee ast.Expression) (typed.Expr, typesystem.TFunc, *diagnostics.DiagnosticError) {
	switch c := callee.(type) {
	case *ast.Identifier:
		if b, idx := a.resolve(c.Value); b != nil {
			fn, ok := b.typ.(typesystem.TFunc)
			if !ok {
				return nil, typesystem.TFunc{}, diagnostics.NewError(diagnostics.ErrT003, c.GetToken(),
					"%s is not callable (type %s)", c.Value, b.typ)
			}
			if !b.mutable {
				if b.consumed {
					return nil, typesystem.TFunc{}, diagnostics.NewError(diagnostics.ErrT004, c.GetToken(), "%s", c.Value)
				}
				b.consumed = true
			}
			a.noteCapture(c.Value, b, idx)
			return &typed.Ident{Token: c.GetToken(), Name: c.Value, Typ: fn}, fn, nil
		}
		if sig, ok := a.lookupFunction(c.Value); ok {
			if sig.ReturnType == nil {
				return nil, typesystem.TFunc{}, diagnostics.NewError(diagnostics.ErrT003, c.GetToken(),
					"function %s is called before its return type is known; annotate it with -> T", c.Value)
			}
			return &typed.FuncRef{Token: c.GetToken(), Name: c.Value, Typ: sig}, sig, nil
		}
		return nil, typesystem.TFunc{}, diagnostics.NewError(diagnostics.ErrT002, c.GetToken(), "%s", c.Value)

	case *ast.MemberExpression:
		// Impl method path: Record.method.
		if recName, ok := c.Left.(*ast.Identifier); ok {
			if _, isRec := a.records[recName.Value]; isRec {
				name := recName.Value + "." + c.Member.Value
				sig, ok := a.lookupFunction(name)
				if !ok {
					return nil, typesystem.TFunc{}, diagnostics.NewError(diagnostics.ErrT002, c.Member.GetToken(), "%s", name)
				}
				if sig.ReturnType == nil {
					return nil, typesystem.TFunc{}, diagnostics.NewError(diagnostics.ErrT003, c.Member.GetToken(),
						"function %s is called before its return type is known; annotate it with -> T", name)
				}
				return &typed.FuncRef{Token: c.GetToken(), Name: name, Typ: sig}, sig, nil
			}
		}
		// Otherwise a record field holding a function value.
		m, err := a.checkMember(c, nil)
		if err != nil {
			return nil, typesystem.TFunc{}, err
		}
		fn, ok := m.Type().(typesystem.TFunc)
		if !ok {
			return nil, typesystem.TFunc{}, diagnostics.NewError(diagnostics.ErrT003, c.GetToken(),
				"%s is not callable (type %s)", c.Member.Value, m.Type())
		}
		return m, fn, nil
	}

	return nil, typesystem.TFunc{}, diagnostics.NewError(diagnostics.ErrT002, callee.GetToken(),
		"%s", callee.TokenLiteral())
}
