package analyzer

import (
	"github.com/ril-lang/ril/internal/ast"
	"github.com/ril-lang/ril/internal/diagnostics"
	"github.com/ril-lang/ril/internal/typed"
	"github.com/ril-lang/ril/internal/typesystem"
)

// checkBlock checks a block in a fresh lexical scope. The expected type,
// if any, is pushed into the block's final expression statement; a block
// whose last statement is not an expression is Unit-typed.
func (a *Analyzer) checkBlock(b *ast.BlockExpression, expected typesystem.Type) (*typed.Block, *diagnostics.DiagnosticError) {
	a.pushScope()
	defer a.popScope()

	out := &typed.Block{Token: b.GetToken(), Typ: typesystem.Unit}

	for i, stmt := range b.Statements {
		last := i == len(b.Statements)-1
		switch s := stmt.(type) {
		case *ast.ExpressionStatement:
			var want typesystem.Type
			if last {
				want = expected
			}
			e, err := a.checkExpr(s.Expression, want)
			if err != nil {
				return nil, err
			}
			out.Stmts = append(out.Stmts, &typed.ExprStmt{Token: s.GetToken(), E: e})
			if last {
				out.Typ = e.Type()
			}
		case *ast.BindingDeclaration:
			let, err := a.checkBinding(s)
			if err != nil {
				return nil, err
			}
			out.Stmts = append(out.Stmts, let)
		case *ast.AssignStatement:
			as, err := a.checkAssign(s)
			if err != nil {
				return nil, err
			}
			out.Stmts = append(out.Stmts, as)
		case *ast.ReturnStatement:
			rs, err := a.checkReturn(s)
			if err != nil {
				return nil, err
			}
			out.Stmts = append(out.Stmts, rs)
			if last && expected != nil {
				// The tail never produces a value; the ret has already
				// been checked against the function's return type.
				out.Typ = expected
			}
		default:
			return nil, diagnostics.NewError(diagnostics.ErrT003, stmt.GetToken(),
				"declaration not allowed inside a block")
		}
	}

	if expected != nil && !typesystem.Equals(out.Typ, expected) {
		return nil, diagnostics.NewError(diagnostics.ErrT003, b.GetToken(),
			"expected %s, found %s", expected, out.Typ)
	}
	return out, nil
}

// checkBinding checks a val/mut declaration and defines the binding in
// the current scope. Defining a binding counts as a read of the
// right-hand side, per the affine rules.
func (a *Analyzer) checkBinding(d *ast.BindingDeclaration) (*typed.Let, *diagnostics.DiagnosticError) {
	var want typesystem.Type
	if d.TypeAnnotation != nil {
		t, err := a.resolveType(d.TypeAnnotation)
		if err != nil {
			return nil, err
		}
		want = t
	}

	value, err := a.checkExpr(d.Value, want)
	if err != nil {
		return nil, err
	}

	typ := value.Type()
	if want != nil {
		typ = want
	}
	a.define(d.Name.Value, typ, d.Mutable)

	return &typed.Let{
		Token:   d.GetToken(),
		Name:    d.Name.Value,
		Mutable: d.Mutable,
		Typ:     typ,
		Value:   value,
	}, nil
}

// checkAssign enforces that only mut bindings are re-assigned.
func (a *Analyzer) checkAssign(s *ast.AssignStatement) (*typed.Assign, *diagnostics.DiagnosticError) {
	b, _ := a.resolve(s.Name.Value)
	if b == nil {
		return nil, diagnostics.NewError(diagnostics.ErrT001, s.Name.GetToken(), "%s", s.Name.Value)
	}
	if !b.mutable {
		return nil, diagnostics.NewError(diagnostics.ErrT005, s.Name.GetToken(), "%s", s.Name.Value)
	}

	value, err := a.checkExpr(s.Value, b.typ)
	if err != nil {
		return nil, err
	}
	return &typed.Assign{Token: s.GetToken(), Name: s.Name.Value, Value: value}, nil
}

func (a *Analyzer) checkReturn(s *ast.ReturnStatement) (*typed.Return, *diagnostics.DiagnosticError) {
	if s.Value == nil {
		if a.retType != nil && !typesystem.Equals(a.retType, typesystem.Unit) {
			return nil, diagnostics.NewError(diagnostics.ErrT003, s.GetToken(),
				"expected %s, found Unit", a.retType)
		}
		return &typed.Return{Token: s.GetToken()}, nil
	}
	value, err := a.checkExpr(s.Value, a.retType)
	if err != nil {
		return nil, err
	}
	return &typed.Return{Token: s.GetToken(), Value: value}, nil
}
