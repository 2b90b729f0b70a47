package analyzer

import (
	"github.com/ril-lang/ril/internal/ast"
	"github.com/ril-lang/ril/internal/diagnostics"
	"github.com/ril-lang/ril/internal/token"
	"github.com/ril-lang/ril/internal/typed"
	"github.com/ril-lang/ril/internal/typesystem"
)

// checkMatch checks a match expression: every arm pattern against the
// scrutinee's static type, every arm body against one common result
// type, and the arm set for totality. Arms stay in source order — the
// first structurally-matching arm wins at runtime.
func (a *Analyzer) checkMatch(e *ast.MatchExpression, expected typesystem.Type) (typed.Expr, *diagnostics.DiagnosticError) {
	scrut, err := a.checkExpr(e.Scrutinee, nil)
	if err != nil {
		return nil, err
	}
	if len(e.Arms) == 0 {
		return nil, diagnostics.NewError(diagnostics.ErrT007, e.GetToken(), "match has no arms")
	}

	snap := a.snapshotConsumed()
	merged := a.captureConsumed()

	out := &typed.Match{Token: e.GetToken(), Scrutinee: scrut}
	want := expected
	for _, arm := range e.Arms {
		a.restoreConsumed(snap)
		a.pushScope()

		pat, err := a.checkPattern(arm.Pattern, scrut.Type())
		if err != nil {
			a.popScope()
			return nil, err
		}
		body, err := a.checkExpr(arm.Body, want)
		if err != nil {
			a.popScope()
			return nil, err
		}
		a.popScope()
		mergeConsumed(merged, a.captureConsumed())

		if want == nil {
			want = body.Type()
		}
		out.Arms = append(out.Arms, &typed.Arm{Token: arm.Token, Pattern: pat, Body: body})
	}
	a.restoreConsumed(merged)
	out.Typ = want

	if err := exhaustive(scrut.Type(), out.Arms, e.GetToken()); err != nil {
		return nil, err
	}
	return out, nil
}

// checkPattern validates a pattern against the scrutinee's static type
// and defines its bindings in the current (arm) scope.
func (a *Analyzer) checkPattern(p ast.Pattern, t typesystem.Type) (typed.Pattern, *diagnostics.DiagnosticError) {
	switch pt := p.(type) {
	case *ast.WildcardPattern:
		return &typed.WildcardPat{Token: pt.GetToken()}, nil

	case *ast.BindPattern:
		a.define(pt.Name.Value, t, false)
		return &typed.BindPat{Token: pt.GetToken(), Name: pt.Name.Value, Typ: t}, nil

	case *ast.LiteralPattern:
		value, err := a.checkExpr(pt.Value, t)
		if err != nil {
			return nil, err
		}
		return &typed.LiteralPat{Token: pt.GetToken(), Value: value}, nil

	case *ast.SomePattern:
		opt, ok := t.(typesystem.TOption)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrT003, pt.GetToken(),
				"Some pattern against non-Option type %s", t)
		}
		inner, err := a.checkPattern(pt.Inner, opt.Elem)
		if err != nil {
			return nil, err
		}
		return &typed.SomePat{Token: pt.GetToken(), Inner: inner, Elem: opt.Elem}, nil

	case *ast.NonePattern:
		if _, ok := t.(typesystem.TOption); !ok {
			return nil, diagnostics.NewError(diagnostics.ErrT003, pt.GetToken(),
				"None pattern against non-Option type %s", t)
		}
		return &typed.NonePat{Token: pt.GetToken()}, nil

	case *ast.EmptyListPattern:
		if _, ok := t.(typesystem.TList); !ok {
			return nil, diagnostics.NewError(diagnostics.ErrT003, pt.GetToken(),
				"list pattern against non-List type %s", t)
		}
		return &typed.EmptyListPat{Token: pt.GetToken()}, nil

	case *ast.ConsPattern:
		lst, ok := t.(typesystem.TList)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrT003, pt.GetToken(),
				"list pattern against non-List type %s", t)
		}
		head, err := a.checkPattern(pt.Head, lst.Elem)
		if err != nil {
			return nil, err
		}
		tail, err := a.checkPattern(pt.Tail, lst)
		if err != nil {
			return nil, err
		}
		return &typed.ConsPat{Token: pt.GetToken(), Head: head, Tail: tail, Elem: lst.Elem}, nil

	case *ast.ExactListPattern:
		lst, ok := t.(typesystem.TList)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrT003, pt.GetToken(),
				"list pattern against non-List type %s", t)
		}
		out := &typed.ExactListPat{Token: pt.GetToken(), Elem: lst.Elem}
		for _, el := range pt.Elements {
			te, err := a.checkPattern(el, lst.Elem)
			if err != nil {
				return nil, err
			}
			out.Elems = append(out.Elems, te)
		}
		return out, nil

	case *ast.RecordPattern:
		rec, ok := t.(typesystem.TRecord)
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrT003, pt.GetToken(),
				"record pattern against non-record type %s", t)
		}
		if pt.Name.Value != rec.Name {
			return nil, diagnostics.NewError(diagnostics.ErrT003, pt.GetToken(),
				"record pattern %s against scrutinee of type %s", pt.Name.Value, rec.Name)
		}
		if len(pt.Fields) != len(rec.Fields) {
			return nil, diagnostics.NewError(diagnostics.ErrT003, pt.GetToken(),
				"record pattern must bind all %d fields of %s", len(rec.Fields), rec.Name)
		}
		out := &typed.RecordPat{Token: pt.GetToken(), Rec: rec}
		for _, fp := range pt.Fields {
			idx := rec.FieldIndex(fp.Name.Value)
			if idx < 0 {
				return nil, diagnostics.NewError(diagnostics.ErrT003, fp.Name.GetToken(),
					"record %s has no field %s", rec.Name, fp.Name.Value)
			}
			sub, err := a.checkPattern(fp.Pattern, rec.Fields[idx].Type)
			if err != nil {
				return nil, err
			}
			out.Fields = append(out.Fields, typed.RecordFieldPat{Index: idx, Pattern: sub})
		}
		return out, nil
	}

	return nil, diagnostics.NewError(diagnostics.ErrT003, p.GetToken(), "unsupported pattern")
}

// exhaustive proves the arm set total for the scrutinee type, or fails
// with NonExhaustiveMatch.
//
//	Option(T)   both Some(_) and None, or a trailing wildcard
//	List(T)     both [] and a cons, or a trailing wildcard
//	Record      one pattern binding every field irrefutably
//	primitives  a trailing wildcard (literal enumeration never suffices)
func exhaustive(t typesystem.Type, arms []*typed.Arm, tok token.Token) *diagnostics.DiagnosticError {
	for _, arm := range arms {
		if irrefutable(arm.Pattern) {
			return nil
		}
	}

	switch tt := t.(type) {
	case typesystem.TOption:
		hasSome, hasNone := false, false
		for _, arm := range arms {
			switch p := arm.Pattern.(type) {
			case *typed.SomePat:
				if irrefutable(p.Inner) {
					hasSome = true
				}
			case *typed.NonePat:
				hasNone = true
			}
		}
		if hasSome && hasNone {
			return nil
		}
	case typesystem.TList:
		hasEmpty, hasCons := false, false
		for _, arm := range arms {
			switch p := arm.Pattern.(type) {
			case *typed.EmptyListPat:
				hasEmpty = true
			case *typed.ConsPat:
				if irrefutable(p.Head) && irrefutable(p.Tail) {
					hasCons = true
				}
			}
		}
		// Fixed-length patterns alone are never exhaustive: list length
		// is unbounded.
		if hasEmpty && hasCons {
			return nil
		}
	case typesystem.TRecord:
		for _, arm := range arms {
			if p, ok := arm.Pattern.(*typed.RecordPat); ok {
				all := true
				for _, f := range p.Fields {
					if !irrefutable(f.Pattern) {
						all = false
						break
					}
				}
				if all && len(p.Fields) == len(tt.Fields) {
					return nil
				}
			}
		}
	}

	return diagnostics.NewError(diagnostics.ErrT007, tok,
		"match over %s is not exhaustive", t)
}

// irrefutable reports whether a pattern matches every value of its type.
func irrefutable(p typed.Pattern) bool {
	switch pt := p.(type) {
	case *typed.WildcardPat, *typed.BindPat:
		return true
	case *typed.RecordPat:
		for _, f := range pt.Fields {
			if !irrefutable(f.Pattern) {
				return false
			}
		}
		return true
	}
	return false
}
