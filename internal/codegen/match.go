package codegen

import (
	"fmt"

	"github.com/ril-lang/ril/internal/diagnostics"
	"github.com/ril-lang/ril/internal/typed"
	"github.com/ril-lang/ril/internal/typesystem"
)

// Match lowering. Arms compile to a result block holding one test-and-
// branch section per arm in source order: the first arm whose test
// succeeds binds its sub-values, evaluates its body and breaks out.
// The checker has proven the arms exhaustive, so the fall-through tail
// is unreachable.
//
// When every arm is a small dense integer literal (plus a trailing
// catch-all), the whole match collapses into one br_table dispatch
// instead.

func (e *emitter) emitMatch(m *typed.Match) *diagnostics.DiagnosticError {
	st := m.Scrutinee.Type()
	if err := e.emitExpr(m.Scrutinee); err != nil {
		return err
	}
	holder := ""
	if wt := watType(st); wt != "" {
		holder = e.newLocal("scrut", wt)
		e.b.linef("local.set %s", holder)
	}

	if jt, ok := jumpTablePlan(m); ok {
		return e.emitJumpTable(m, jt, holder)
	}

	n := e.g.matchSeq
	e.g.matchSeq++
	label := fmt.Sprintf("$match$%d", n)
	result := watType(m.Typ)
	if result != "" {
		e.b.linef("block %s (result %s)", label, result)
	} else {
		e.b.linef("block %s", label)
	}
	e.b.indent++
	for _, arm := range m.Arms {
		e.pushScope()
		if err := e.emitTest(arm.Pattern, holder, st, 0); err != nil {
			return err
		}
		e.b.line("if")
		e.b.indent++
		if err := e.emitBinds(arm.Pattern, holder, st, 0); err != nil {
			return err
		}
		if err := e.emitExpr(arm.Body); err != nil {
			return err
		}
		if result != "" && watType(arm.Body.Type()) == "" {
			e.b.line("unreachable")
		} else {
			e.b.linef("br %s", label)
		}
		e.b.indent--
		e.b.line("end")
		e.popScope()
	}
	e.b.line("unreachable")
	e.b.indent--
	e.b.line("end")
	return nil
}

// --- tests ---

// emitTest leaves a single i32 truth value for one pattern against the
// value held in holder. skip is the number of already-consumed leading
// elements when the pattern is matching a list suffix.
func (e *emitter) emitTest(p typed.Pattern, holder string, typ typesystem.Type, skip int) *diagnostics.DiagnosticError {
	switch pt := p.(type) {
	case *typed.WildcardPat, *typed.BindPat:
		e.b.line("i32.const 1")
		return nil
	case *typed.LiteralPat:
		e.b.linef("local.get %s", holder)
		if err := e.emitExpr(pt.Value); err != nil {
			return err
		}
		if typesystem.Equals(pt.Value.Type(), typesystem.Float) {
			e.b.line("f64.eq")
		} else {
			e.b.line("i32.eq")
		}
		return nil
	case *typed.NonePat:
		e.b.linef("local.get %s", holder)
		e.b.line("i32.load")
		e.b.line("i32.eqz")
		return nil
	case *typed.SomePat:
		if typesystem.Equals(pt.Elem, typesystem.Float) {
			return diagnostics.NewError(diagnostics.ErrG004, pt.Token,
				"Option<Float> payloads do not fit the 4-byte payload slot")
		}
		e.b.linef("local.get %s", holder)
		e.b.line("i32.load")
		if irrefutable(pt.Inner) {
			return nil
		}
		e.b.line("if (result i32)")
		e.b.indent++
		inner := ""
		if wt := watType(pt.Elem); wt != "" {
			inner = e.newLocal("pay", wt)
			e.b.linef("local.get %s", holder)
			e.b.line("i32.load offset=4")
			e.b.linef("local.set %s", inner)
		}
		if err := e.emitTest(pt.Inner, inner, pt.Elem, 0); err != nil {
			return err
		}
		e.b.indent--
		e.b.line("else")
		e.b.indent++
		e.b.line("i32.const 0")
		e.b.indent--
		e.b.line("end")
		return nil
	case *typed.EmptyListPat:
		e.b.linef("local.get %s", holder)
		e.b.line("i32.load")
		e.b.linef("i32.const %d", skip)
		e.b.line("i32.eq")
		return nil
	case *typed.ConsPat:
		e.b.linef("local.get %s", holder)
		e.b.line("i32.load")
		e.b.linef("i32.const %d", skip)
		e.b.line("i32.gt_s")
		if err := e.andElemTest(pt.Head, holder, pt.Elem, skip); err != nil {
			return err
		}
		return e.andTailTest(pt.Tail, holder, typ, skip+1)
	case *typed.ExactListPat:
		e.b.linef("local.get %s", holder)
		e.b.line("i32.load")
		e.b.linef("i32.const %d", skip+len(pt.Elems))
		e.b.line("i32.eq")
		for i, el := range pt.Elems {
			if err := e.andElemTest(el, holder, pt.Elem, skip+i); err != nil {
				return err
			}
		}
		return nil
	case *typed.RecordPat:
		first := true
		for _, f := range pt.Fields {
			if irrefutable(f.Pattern) {
				continue
			}
			ft := pt.Rec.Fields[f.Index].Type
			test := func() *diagnostics.DiagnosticError {
				inner := ""
				if wt := watType(ft); wt != "" {
					inner = e.newLocal("fld", wt)
					e.b.linef("local.get %s", holder)
					e.loadField(pt.Rec, f.Index)
					e.b.linef("local.set %s", inner)
				}
				return e.emitTest(f.Pattern, inner, ft, 0)
			}
			if first {
				if err := test(); err != nil {
					return err
				}
				first = false
				continue
			}
			if err := e.andTest(test); err != nil {
				return err
			}
		}
		if first {
			e.b.line("i32.const 1")
		}
		return nil
	}
	return diagnostics.NewError(diagnostics.ErrG004, p.GetToken(), "no lowering for this pattern")
}

// andTest chains a further test onto the truth value already on the
// stack, short-circuiting on failure.
func (e *emitter) andTest(next func() *diagnostics.DiagnosticError) *diagnostics.DiagnosticError {
	e.b.line("if (result i32)")
	e.b.indent++
	if err := next(); err != nil {
		return err
	}
	e.b.indent--
	e.b.line("else")
	e.b.indent++
	e.b.line("i32.const 0")
	e.b.indent--
	e.b.line("end")
	return nil
}

// andElemTest chains a test of list element skip against the sub-pattern.
func (e *emitter) andElemTest(p typed.Pattern, holder string, elem typesystem.Type, skip int) *diagnostics.DiagnosticError {
	if irrefutable(p) {
		return nil
	}
	return e.andTest(func() *diagnostics.DiagnosticError {
		inner := ""
		if wt := watType(elem); wt != "" {
			inner = e.newLocal("elem", wt)
			e.b.linef("local.get %s", holder)
			e.b.linef("i32.load offset=%d", 8+4*skip)
			e.b.linef("local.set %s", inner)
		}
		return e.emitTest(p, inner, elem, 0)
	})
}

// andTailTest chains the cons tail test. List-shaped tails keep
// matching the same object at a deeper skip; a bind or wildcard tail
// always matches.
func (e *emitter) andTailTest(tail typed.Pattern, holder string, typ typesystem.Type, skip int) *diagnostics.DiagnosticError {
	switch tail.(type) {
	case *typed.EmptyListPat, *typed.ConsPat, *typed.ExactListPat:
		return e.andTest(func() *diagnostics.DiagnosticError {
			return e.emitTest(tail, holder, typ, skip)
		})
	}
	return nil
}

func (e *emitter) loadField(rec typesystem.TRecord, i int) {
	if watType(rec.Fields[i].Type) == "f64" {
		e.b.linef("f64.load offset=%d", fieldOffset(rec, i))
	} else {
		e.b.linef("i32.load offset=%d", fieldOffset(rec, i))
	}
}

func irrefutable(p typed.Pattern) bool {
	switch pt := p.(type) {
	case *typed.WildcardPat:
		return true
	case *typed.BindPat:
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

// --- binds ---

// emitBinds declares and fills the locals a matched pattern captures.
// It runs only after the pattern's test has succeeded.
func (e *emitter) emitBinds(p typed.Pattern, holder string, typ typesystem.Type, skip int) *diagnostics.DiagnosticError {
	switch pt := p.(type) {
	case *typed.BindPat:
		slot := e.define(pt.Name, pt.Typ)
		if slot.watName != "" {
			e.b.linef("local.get %s", holder)
			e.b.linef("local.set %s", slot.watName)
		}
		return nil
	case *typed.SomePat:
		if !hasBinds(pt.Inner) {
			return nil
		}
		inner := ""
		if wt := watType(pt.Elem); wt != "" {
			inner = e.newLocal("pay", wt)
			e.b.linef("local.get %s", holder)
			e.b.line("i32.load offset=4")
			e.b.linef("local.set %s", inner)
		}
		return e.emitBinds(pt.Inner, inner, pt.Elem, 0)
	case *typed.ConsPat:
		if err := e.bindElem(pt.Head, holder, pt.Elem, skip); err != nil {
			return err
		}
		switch tail := pt.Tail.(type) {
		case *typed.BindPat:
			e.g.needSuffix = true
			slot := e.define(tail.Name, tail.Typ)
			e.b.linef("local.get %s", holder)
			e.b.linef("i32.const %d", skip+1)
			e.b.line(e.arenaAddr())
			e.b.line("call $__list_suffix")
			e.b.linef("local.set %s", slot.watName)
			return nil
		case *typed.EmptyListPat, *typed.ConsPat, *typed.ExactListPat:
			return e.emitBinds(pt.Tail, holder, typ, skip+1)
		}
		return nil
	case *typed.ExactListPat:
		for i, el := range pt.Elems {
			if err := e.bindElem(el, holder, pt.Elem, skip+i); err != nil {
				return err
			}
		}
		return nil
	case *typed.RecordPat:
		for _, f := range pt.Fields {
			if !hasBinds(f.Pattern) {
				continue
			}
			ft := pt.Rec.Fields[f.Index].Type
			inner := ""
			if wt := watType(ft); wt != "" {
				inner = e.newLocal("fld", wt)
				e.b.linef("local.get %s", holder)
				e.loadField(pt.Rec, f.Index)
				e.b.linef("local.set %s", inner)
			}
			if err := e.emitBinds(f.Pattern, inner, ft, 0); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

func (e *emitter) bindElem(p typed.Pattern, holder string, elem typesystem.Type, skip int) *diagnostics.DiagnosticError {
	if !hasBinds(p) {
		return nil
	}
	inner := ""
	if wt := watType(elem); wt != "" {
		inner = e.newLocal("elem", wt)
		e.b.linef("local.get %s", holder)
		e.b.linef("i32.load offset=%d", 8+4*skip)
		e.b.linef("local.set %s", inner)
	}
	return e.emitBinds(p, inner, elem, 0)
}

func hasBinds(p typed.Pattern) bool {
	switch pt := p.(type) {
	case *typed.BindPat:
		return true
	case *typed.SomePat:
		return hasBinds(pt.Inner)
	case *typed.ConsPat:
		return hasBinds(pt.Head) || hasBinds(pt.Tail)
	case *typed.ExactListPat:
		for _, el := range pt.Elems {
			if hasBinds(el) {
				return true
			}
		}
		return false
	case *typed.RecordPat:
		for _, f := range pt.Fields {
			if hasBinds(f.Pattern) {
				return true
			}
		}
		return false
	}
	return false
}

// --- jump table ---

// jumpTable describes a dense integer dispatch: every arm except a
// trailing catch-all is a distinct integer literal, close enough
// together for one br_table.
type jumpTable struct {
	min    int64
	width  int64
	armFor map[int64]int // literal value -> arm index
	defArm int
}

const (
	jumpTableMinArms  = 3
	jumpTableMaxWidth = 64
)

func jumpTablePlan(m *typed.Match) (*jumpTable, bool) {
	if !typesystem.Equals(m.Scrutinee.Type(), typesystem.Int) {
		return nil, false
	}
	last := len(m.Arms) - 1
	switch m.Arms[last].Pattern.(type) {
	case *typed.WildcardPat, *typed.BindPat:
	default:
		return nil, false
	}
	if last < jumpTableMinArms {
		return nil, false
	}
	armFor := map[int64]int{}
	var min, max int64
	for i := 0; i < last; i++ {
		lit, ok := m.Arms[i].Pattern.(*typed.LiteralPat)
		if !ok {
			return nil, false
		}
		iv, ok := lit.Value.(*typed.IntLit)
		if !ok {
			return nil, false
		}
		if _, dup := armFor[iv.Value]; dup {
			// A duplicate literal would need first-match tie-breaking;
			// leave it to the sequential lowering.
			return nil, false
		}
		armFor[iv.Value] = i
		if i == 0 || iv.Value < min {
			min = iv.Value
		}
		if i == 0 || iv.Value > max {
			max = iv.Value
		}
	}
	width := max - min + 1
	if width > jumpTableMaxWidth {
		return nil, false
	}
	return &jumpTable{min: min, width: width, armFor: armFor, defArm: last}, true
}

func (e *emitter) emitJumpTable(m *typed.Match, jt *jumpTable, holder string) *diagnostics.DiagnosticError {
	n := e.g.matchSeq
	e.g.matchSeq++
	label := fmt.Sprintf("$match$%d", n)
	result := watType(m.Typ)
	if result != "" {
		e.b.linef("block %s (result %s)", label, result)
	} else {
		e.b.linef("block %s", label)
	}
	e.b.indent++

	caseLabel := func(i int) string { return fmt.Sprintf("$case$%d$%d", n, i) }
	defLabel := fmt.Sprintf("$default$%d", n)

	e.b.linef("block %s", defLabel)
	e.b.indent++
	for i := jt.defArm - 1; i >= 0; i-- {
		e.b.linef("block %s", caseLabel(i))
		e.b.indent++
	}
	e.b.linef("local.get %s", holder)
	e.b.linef("i32.const %d", jt.min)
	e.b.line("i32.sub")
	targets := ""
	for off := int64(0); off < jt.width; off++ {
		if arm, ok := jt.armFor[jt.min+off]; ok {
			targets += " " + caseLabel(arm)
		} else {
			targets += " " + defLabel
		}
	}
	e.b.linef("br_table%s %s", targets, defLabel)

	for i := 0; i < jt.defArm; i++ {
		e.b.indent--
		e.b.line("end")
		if err := e.emitExpr(m.Arms[i].Body); err != nil {
			return err
		}
		if result != "" && watType(m.Arms[i].Body.Type()) == "" {
			e.b.line("unreachable")
		} else {
			e.b.linef("br %s", label)
		}
	}
	e.b.indent--
	e.b.line("end")

	// Catch-all arm falls out of the result block.
	def := m.Arms[jt.defArm]
	e.pushScope()
	if err := e.emitBinds(def.Pattern, holder, m.Scrutinee.Type(), 0); err != nil {
		return err
	}
	if err := e.emitExpr(def.Body); err != nil {
		return err
	}
	e.popScope()
	if result != "" && watType(def.Body.Type()) == "" {
		e.b.line("unreachable")
	}
	e.b.indent--
	e.b.line("end")
	return nil
}
