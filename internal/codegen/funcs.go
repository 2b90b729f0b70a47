package codegen

import (
	"fmt"
	"strconv"

	"github.com/ril-lang/ril/internal/diagnostics"
	"github.com/ril-lang/ril/internal/token"
	"github.com/ril-lang/ril/internal/typed"
	"github.com/ril-lang/ril/internal/typesystem"
)

// emitter holds the per-function lowering state: the local-slot scope
// stack, declared locals, the active arena, and (inside a lambda body)
// the capture environment layout.
type emitter struct {
	g        *Generator
	b        *watBuilder
	scopes   []map[string]varSlot
	locals   []localDecl
	captures map[string]envSlot
	arenas   []string // instruction loading the active arena address
	seq      int
}

type varSlot struct {
	watName string // "" for Unit-typed bindings
	typ     typesystem.Type
}

type localDecl struct {
	name string
	wat  string
}

func (g *Generator) newEmitter(captures map[string]envSlot) *emitter {
	return &emitter{
		g:        g,
		b:        &watBuilder{},
		scopes:   []map[string]varSlot{{}},
		captures: captures,
	}
}

func (e *emitter) pushScope() { e.scopes = append(e.scopes, map[string]varSlot{}) }
func (e *emitter) popScope()  { e.scopes = e.scopes[:len(e.scopes)-1] }

func (e *emitter) arenaAddr() string {
	if len(e.arenas) == 0 {
		return fmt.Sprintf("i32.const %d", e.g.heapBase)
	}
	return e.arenas[len(e.arenas)-1]
}

// newLocal declares a fresh uniquely-named local.
func (e *emitter) newLocal(hint, wat string) string {
	e.seq++
	name := fmt.Sprintf("$%s$%d", hint, e.seq)
	e.locals = append(e.locals, localDecl{name: name, wat: wat})
	return name
}

// define binds a source name in the innermost scope, allocating a local
// for value-carrying types.
func (e *emitter) define(name string, typ typesystem.Type) varSlot {
	slot := varSlot{typ: typ}
	if wt := watType(typ); wt != "" {
		slot.watName = e.newLocal(name, wt)
	}
	e.scopes[len(e.scopes)-1][name] = slot
	return slot
}

func (e *emitter) defineParam(name string, typ typesystem.Type) {
	slot := varSlot{typ: typ}
	if watType(typ) != "" {
		slot.watName = "$p$" + name
	}
	e.scopes[len(e.scopes)-1][name] = slot
}

func (e *emitter) lookup(name string) (varSlot, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if slot, ok := e.scopes[i][name]; ok {
			return slot, true
		}
	}
	return varSlot{}, false
}

// emitVar pushes the value of a name: local, captured, or global.
func (e *emitter) emitVar(name string, tok token.Token) *diagnostics.DiagnosticError {
	if slot, ok := e.lookup(name); ok {
		if slot.watName != "" {
			e.b.linef("local.get %s", slot.watName)
		}
		return nil
	}
	if slot, ok := e.captures[name]; ok {
		if slotSize(slot.typ) == 0 {
			return nil
		}
		e.b.line("local.get $env")
		if watType(slot.typ) == "f64" {
			e.b.linef("f64.load offset=%d", slot.offset)
		} else {
			e.b.linef("i32.load offset=%d", slot.offset)
		}
		return nil
	}
	if typ, ok := e.g.globals[name]; ok {
		if watType(typ) != "" {
			e.b.linef("global.get $g$%s", name)
		}
		return nil
	}
	return diagnostics.NewError(diagnostics.ErrG001, tok, "no storage for variable '%s'", name)
}

func (e *emitter) writeLocals(out *watBuilder) {
	for _, l := range e.locals {
		out.linef("(local %s %s)", l.name, l.wat)
	}
}

// --- functions ---

func (g *Generator) emitFunction(fn *typed.Function) *diagnostics.DiagnosticError {
	em := g.newEmitter(nil)
	for _, p := range fn.Params {
		em.defineParam(p.Name, p.Typ)
	}
	result := watType(fn.ReturnType)
	if err := em.emitBlock(fn.Body, result != ""); err != nil {
		return err
	}
	if result != "" && watType(fn.Body.Typ) == "" {
		// every path returned explicitly
		em.b.line("unreachable")
	}

	out := &watBuilder{}
	decl := fmt.Sprintf("(func $f$%s", fn.Name)
	for _, p := range fn.Params {
		if wt := watType(p.Typ); wt != "" {
			decl += fmt.Sprintf(" (param $p$%s %s)", p.Name, wt)
		}
	}
	if result != "" {
		decl += fmt.Sprintf(" (result %s)", result)
	}
	out.line(decl)
	out.indent++
	em.writeLocals(out)
	out.append(em.b)
	out.indent--
	out.line(")")
	g.emitted = append(g.emitted, out)
	return nil
}

func (g *Generator) emitLambda(work *lambdaWork) *diagnostics.DiagnosticError {
	caps := map[string]envSlot{}
	for _, s := range work.env {
		caps[s.name] = s
	}
	em := g.newEmitter(caps)
	for _, p := range work.lam.Params {
		em.defineParam(p.Name, p.Typ)
	}
	result := watType(work.lam.Typ.ReturnType)
	if err := em.emitExpr(work.lam.Body); err != nil {
		return err
	}
	if result != "" && watType(work.lam.Body.Type()) == "" {
		em.b.line("unreachable")
	}

	out := &watBuilder{}
	decl := fmt.Sprintf("(func %s (param $env i32)", work.name)
	for _, p := range work.lam.Params {
		if wt := watType(p.Typ); wt != "" {
			decl += fmt.Sprintf(" (param $p$%s %s)", p.Name, wt)
		}
	}
	if result != "" {
		decl += fmt.Sprintf(" (result %s)", result)
	}
	out.line(decl)
	out.indent++
	em.writeLocals(out)
	out.append(em.b)
	out.indent--
	out.line(")")
	g.emitted = append(g.emitted, out)
	return nil
}

// --- statements ---

// emitBlock lowers a block in its own scope. With keep set, the value
// of the final expression statement stays on the stack.
func (e *emitter) emitBlock(b *typed.Block, keep bool) *diagnostics.DiagnosticError {
	e.pushScope()
	defer e.popScope()
	for i, stmt := range b.Stmts {
		last := i == len(b.Stmts)-1
		switch st := stmt.(type) {
		case *typed.Let:
			if err := e.emitExpr(st.Value); err != nil {
				return err
			}
			slot := e.define(st.Name, st.Typ)
			if slot.watName != "" {
				e.b.linef("local.set %s", slot.watName)
			}
		case *typed.Assign:
			if err := e.emitExpr(st.Value); err != nil {
				return err
			}
			if slot, ok := e.lookup(st.Name); ok {
				if slot.watName != "" {
					e.b.linef("local.set %s", slot.watName)
				}
			} else if typ, ok := e.g.globals[st.Name]; ok {
				if watType(typ) != "" {
					e.b.linef("global.set $g$%s", st.Name)
				}
			} else {
				return diagnostics.NewError(diagnostics.ErrG001, st.Token,
					"no storage for variable '%s'", st.Name)
			}
		case *typed.Return:
			if st.Value != nil {
				if err := e.emitExpr(st.Value); err != nil {
					return err
				}
			}
			e.b.line("return")
		case *typed.ExprStmt:
			if err := e.emitExpr(st.E); err != nil {
				return err
			}
			if watType(st.E.Type()) != "" && !(last && keep) {
				e.b.line("drop")
			}
		}
	}
	return nil
}

// --- expressions ---

func (e *emitter) emitExpr(expr typed.Expr) *diagnostics.DiagnosticError {
	switch ex := expr.(type) {
	case *typed.Ident:
		return e.emitVar(ex.Name, ex.Token)
	case *typed.FuncRef:
		return e.emitFuncValue(ex)
	case *typed.IntLit:
		e.b.linef("i32.const %d", ex.Value)
	case *typed.FloatLit:
		e.b.linef("f64.const %s", strconv.FormatFloat(ex.Value, 'g', -1, 64))
	case *typed.BoolLit:
		if ex.Value {
			e.b.line("i32.const 1")
		} else {
			e.b.line("i32.const 0")
		}
	case *typed.StringLit:
		e.b.linef("i32.const %d", e.g.strOffsets[ex.Value])
	case *typed.CharLit:
		e.b.linef("i32.const %d", ex.Value)
	case *typed.UnitLit:
		// no value
	case *typed.ListLit:
		return e.emitListLit(ex)
	case *typed.RecordLit:
		return e.emitRecordLit(ex)
	case *typed.SomeLit:
		return e.emitSomeLit(ex)
	case *typed.NoneLit:
		e.b.linef("i32.const %d", noneCellOffset)
	case *typed.Lambda:
		return e.emitLambdaValue(ex)
	case *typed.Call:
		return e.emitCall(ex)
	case *typed.Binary:
		return e.emitBinary(ex)
	case *typed.Unary:
		return e.emitUnary(ex)
	case *typed.Member:
		return e.emitMember(ex)
	case *typed.Block:
		return e.emitBlockExpr(ex)
	case *typed.If:
		return e.emitIf(ex)
	case *typed.Match:
		return e.emitMatch(ex)
	case *typed.Arena:
		return e.emitArena(ex)
	case *typed.Clone:
		return e.emitClone(ex)
	default:
		return diagnostics.NewError(diagnostics.ErrG004, expr.GetToken(),
			"no lowering for this expression")
	}
	return nil
}

func (e *emitter) emitBlockExpr(b *typed.Block) *diagnostics.DiagnosticError {
	return e.emitBlock(b, watType(b.Typ) != "")
}

// emitFuncValue lowers a named function used as a value to the table
// index of its environment-discarding wrapper.
func (e *emitter) emitFuncValue(ref *typed.FuncRef) *diagnostics.DiagnosticError {
	if ref.Name == "print" || ref.Name == "exit" {
		return diagnostics.NewError(diagnostics.ErrG004, ref.Token,
			"builtin '%s' cannot be used as a value", ref.Name)
	}
	sig, ok := e.g.funcs[ref.Name]
	if !ok {
		return diagnostics.NewError(diagnostics.ErrG002, ref.Token,
			"no emitted function named '%s'", ref.Name)
	}
	e.b.linef("i32.const %d", e.g.shimIndex(ref.Name, sig))
	return nil
}

func (e *emitter) emitListLit(l *typed.ListLit) *diagnostics.DiagnosticError {
	lt := l.Typ.(typesystem.TList)
	if _, err := elemSize(lt.Elem, l.Token); err != nil {
		return err
	}
	e.g.needAlloc = true
	n := len(l.Elems)
	ptr := e.newLocal("list", "i32")
	e.b.line(e.arenaAddr())
	e.b.linef("i32.const %d", 8+4*n)
	e.b.line("call $__alloc")
	e.b.linef("local.set %s", ptr)
	e.b.linef("local.get %s", ptr)
	e.b.linef("i32.const %d", n)
	e.b.line("i32.store")
	e.b.linef("local.get %s", ptr)
	e.b.linef("i32.const %d", n)
	e.b.line("i32.store offset=4")
	for i, el := range l.Elems {
		e.b.linef("local.get %s", ptr)
		if err := e.emitExpr(el); err != nil {
			return err
		}
		if watType(el.Type()) == "" {
			e.b.line("i32.const 0")
		}
		e.b.linef("i32.store offset=%d", 8+4*i)
	}
	e.b.linef("local.get %s", ptr)
	return nil
}

func (e *emitter) emitRecordLit(r *typed.RecordLit) *diagnostics.DiagnosticError {
	e.g.needAlloc = true
	ptr := e.newLocal("rec", "i32")
	e.b.line(e.arenaAddr())
	e.b.linef("i32.const %d", recordSize(r.Rec))
	e.b.line("call $__alloc")
	e.b.linef("local.set %s", ptr)
	for i, val := range r.Fields {
		ft := r.Rec.Fields[i].Type
		if watType(ft) == "" {
			if err := e.emitExpr(val); err != nil {
				return err
			}
			continue
		}
		e.b.linef("local.get %s", ptr)
		if err := e.emitExpr(val); err != nil {
			return err
		}
		if watType(ft) == "f64" {
			e.b.linef("f64.store offset=%d", fieldOffset(r.Rec, i))
		} else {
			e.b.linef("i32.store offset=%d", fieldOffset(r.Rec, i))
		}
	}
	e.b.linef("local.get %s", ptr)
	return nil
}

func (e *emitter) emitSomeLit(s *typed.SomeLit) *diagnostics.DiagnosticError {
	if typesystem.Equals(s.Value.Type(), typesystem.Float) {
		return diagnostics.NewError(diagnostics.ErrG004, s.Token,
			"Option<Float> payloads do not fit the 4-byte payload slot")
	}
	e.g.needAlloc = true
	ptr := e.newLocal("opt", "i32")
	e.b.line(e.arenaAddr())
	e.b.line("i32.const 8")
	e.b.line("call $__alloc")
	e.b.linef("local.set %s", ptr)
	e.b.linef("local.get %s", ptr)
	e.b.line("i32.const 1")
	e.b.line("i32.store")
	e.b.linef("local.get %s", ptr)
	if err := e.emitExpr(s.Value); err != nil {
		return err
	}
	if watType(s.Value.Type()) == "" {
		e.b.line("i32.const 0")
	}
	e.b.line("i32.store offset=4")
	e.b.linef("local.get %s", ptr)
	return nil
}

// emitLambdaValue assigns the lambda a table slot, queues its body, and
// builds its value: a bare index when nothing is captured, otherwise a
// [index][envPtr] pair. The pair and env come from the base arena, never
// the active one: a closure is a scalar and may outlive an enclosing
// with-Arena block, so its storage must survive that block's reset.
func (e *emitter) emitLambdaValue(lam *typed.Lambda) *diagnostics.DiagnosticError {
	name := fmt.Sprintf("$lambda$%d", e.g.lambdaSeq)
	e.g.lambdaSeq++
	idx := e.g.addTableEntry(name)

	var env []envSlot
	off := 0
	for _, c := range lam.Captures {
		env = append(env, envSlot{name: c.Name, typ: c.Typ, offset: off})
		off += align4(slotSize(c.Typ))
	}
	e.g.pending = append(e.g.pending, &lambdaWork{name: name, lam: lam, env: env})

	if len(lam.Captures) == 0 {
		e.b.linef("i32.const %d", idx)
		return nil
	}

	e.g.needAlloc = true
	envPtr := e.newLocal("envp", "i32")
	e.b.linef("i32.const %d", e.g.heapBase)
	e.b.linef("i32.const %d", off)
	e.b.line("call $__alloc")
	e.b.linef("local.set %s", envPtr)
	for _, slot := range env {
		if slotSize(slot.typ) == 0 {
			continue
		}
		e.b.linef("local.get %s", envPtr)
		if err := e.emitVar(slot.name, lam.Token); err != nil {
			return err
		}
		if watType(slot.typ) == "f64" {
			e.b.linef("f64.store offset=%d", slot.offset)
		} else {
			e.b.linef("i32.store offset=%d", slot.offset)
		}
	}
	pair := e.newLocal("clo", "i32")
	e.b.linef("i32.const %d", e.g.heapBase)
	e.b.line("i32.const 8")
	e.b.line("call $__alloc")
	e.b.linef("local.set %s", pair)
	e.b.linef("local.get %s", pair)
	e.b.linef("i32.const %d", idx)
	e.b.line("i32.store")
	e.b.linef("local.get %s", pair)
	e.b.linef("local.get %s", envPtr)
	e.b.line("i32.store offset=4")
	e.b.linef("local.get %s", pair)
	return nil
}

func (e *emitter) emitCall(c *typed.Call) *diagnostics.DiagnosticError {
	if ref, ok := c.Callee.(*typed.FuncRef); ok {
		switch ref.Name {
		case "print":
			return e.emitPrint(c)
		case "exit":
			if err := e.emitExpr(c.Args[0]); err != nil {
				return err
			}
			e.b.line("call $exit")
			return nil
		}
		if _, ok := e.g.funcs[ref.Name]; !ok {
			return diagnostics.NewError(diagnostics.ErrG002, ref.Token,
				"no emitted function named '%s'", ref.Name)
		}
		for _, a := range c.Args {
			if err := e.emitExpr(a); err != nil {
				return err
			}
		}
		e.b.linef("call $f$%s", ref.Name)
		return nil
	}
	// Indirect call through the function table.
	sig, ok := c.Callee.Type().(typesystem.TFunc)
	if !ok {
		return diagnostics.NewError(diagnostics.ErrG002, c.Token,
			"call target is not a function value")
	}
	if err := e.emitExpr(c.Callee); err != nil {
		return err
	}
	for _, a := range c.Args {
		if err := e.emitExpr(a); err != nil {
			return err
		}
	}
	e.b.linef("call $__invoke%s", e.g.indirectName(sig))
	return nil
}

// emitPrint unpacks the string descriptor into the (offset, length)
// pair the host import expects.
func (e *emitter) emitPrint(c *typed.Call) *diagnostics.DiagnosticError {
	if err := e.emitExpr(c.Args[0]); err != nil {
		return err
	}
	desc := e.newLocal("str", "i32")
	e.b.linef("local.set %s", desc)
	e.b.linef("local.get %s", desc)
	e.b.line("i32.load")
	e.b.linef("local.get %s", desc)
	e.b.line("i32.load offset=4")
	e.b.line("call $print")
	return nil
}

func (e *emitter) emitBinary(bin *typed.Binary) *diagnostics.DiagnosticError {
	switch bin.Operator {
	case "&&", "||":
		return e.emitShortCircuit(bin)
	}
	if err := e.emitExpr(bin.Left); err != nil {
		return err
	}
	if err := e.emitExpr(bin.Right); err != nil {
		return err
	}
	float := typesystem.Equals(bin.Left.Type(), typesystem.Float)
	op, ok := binaryOp(bin.Operator, float)
	if !ok {
		return diagnostics.NewError(diagnostics.ErrG004, bin.Token,
			"no lowering for operator '%s'", bin.Operator)
	}
	e.b.line(op)
	return nil
}

func binaryOp(op string, float bool) (string, bool) {
	if float {
		switch op {
		case "+":
			return "f64.add", true
		case "-":
			return "f64.sub", true
		case "*":
			return "f64.mul", true
		case "/":
			return "f64.div", true
		case "==":
			return "f64.eq", true
		case "!=":
			return "f64.ne", true
		case "<":
			return "f64.lt", true
		case "<=":
			return "f64.le", true
		case ">":
			return "f64.gt", true
		case ">=":
			return "f64.ge", true
		}
		return "", false
	}
	switch op {
	case "+":
		return "i32.add", true
	case "-":
		return "i32.sub", true
	case "*":
		return "i32.mul", true
	case "/":
		return "i32.div_s", true
	case "%":
		return "i32.rem_s", true
	case "==":
		return "i32.eq", true
	case "!=":
		return "i32.ne", true
	case "<":
		return "i32.lt_s", true
	case "<=":
		return "i32.le_s", true
	case ">":
		return "i32.gt_s", true
	case ">=":
		return "i32.ge_s", true
	}
	return "", false
}

func (e *emitter) emitShortCircuit(bin *typed.Binary) *diagnostics.DiagnosticError {
	if err := e.emitExpr(bin.Left); err != nil {
		return err
	}
	e.b.line("if (result i32)")
	e.b.indent++
	if bin.Operator == "&&" {
		if err := e.emitExpr(bin.Right); err != nil {
			return err
		}
	} else {
		e.b.line("i32.const 1")
	}
	e.b.indent--
	e.b.line("else")
	e.b.indent++
	if bin.Operator == "&&" {
		e.b.line("i32.const 0")
	} else {
		if err := e.emitExpr(bin.Right); err != nil {
			return err
		}
	}
	e.b.indent--
	e.b.line("end")
	return nil
}

func (e *emitter) emitUnary(u *typed.Unary) *diagnostics.DiagnosticError {
	switch u.Operator {
	case "-":
		if typesystem.Equals(u.Operand.Type(), typesystem.Float) {
			if err := e.emitExpr(u.Operand); err != nil {
				return err
			}
			e.b.line("f64.neg")
			return nil
		}
		e.b.line("i32.const 0")
		if err := e.emitExpr(u.Operand); err != nil {
			return err
		}
		e.b.line("i32.sub")
		return nil
	case "!":
		if err := e.emitExpr(u.Operand); err != nil {
			return err
		}
		e.b.line("i32.eqz")
		return nil
	}
	return diagnostics.NewError(diagnostics.ErrG004, u.Token,
		"no lowering for operator '%s'", u.Operator)
}

func (e *emitter) emitMember(m *typed.Member) *diagnostics.DiagnosticError {
	rec, ok := m.Left.Type().(typesystem.TRecord)
	if !ok {
		return diagnostics.NewError(diagnostics.ErrG003, m.Token,
			"field access on non-record type %s", m.Left.Type())
	}
	if err := e.emitExpr(m.Left); err != nil {
		return err
	}
	ft := rec.Fields[m.Index].Type
	switch watType(ft) {
	case "":
		e.b.line("drop")
	case "f64":
		e.b.linef("f64.load offset=%d", fieldOffset(rec, m.Index))
	default:
		e.b.linef("i32.load offset=%d", fieldOffset(rec, m.Index))
	}
	return nil
}

func (e *emitter) emitIf(i *typed.If) *diagnostics.DiagnosticError {
	if err := e.emitExpr(i.Condition); err != nil {
		return err
	}
	result := watType(i.Typ)
	if result != "" {
		e.b.linef("if (result %s)", result)
	} else {
		e.b.line("if")
	}
	e.b.indent++
	if err := e.emitBlock(i.Then, result != ""); err != nil {
		return err
	}
	if result != "" && watType(i.Then.Typ) == "" {
		e.b.line("unreachable")
	}
	e.b.indent--
	if i.Else != nil {
		e.b.line("else")
		e.b.indent++
		if err := e.emitBlock(i.Else, result != ""); err != nil {
			return err
		}
		if result != "" && watType(i.Else.Typ) == "" {
			e.b.line("unreachable")
		}
		e.b.indent--
	}
	e.b.line("end")
	return nil
}

// emitArena carves a child arena out of the active one, runs the body,
// then resets the child and rewinds the parent back over it. Nesting is
// strictly last-in first-out, so the rewind reclaims the child's whole
// region including its header.
func (e *emitter) emitArena(a *typed.Arena) *diagnostics.DiagnosticError {
	e.g.needAlloc = true
	e.g.needArenaPush = true
	e.g.needArenaReset = true
	parent := e.arenaAddr()
	h := e.newLocal("arena", "i32")
	e.b.line(parent)
	e.b.line("call $__arena_push")
	e.b.linef("local.set %s", h)

	e.arenas = append(e.arenas, "local.get "+h)
	keep := watType(a.Body.Typ) != ""
	if err := e.emitBlock(a.Body, keep); err != nil {
		return err
	}
	e.arenas = e.arenas[:len(e.arenas)-1]

	e.b.linef("local.get %s", h)
	e.b.line("call $__arena_reset")
	e.b.line(parent)
	e.b.linef("local.get %s", h)
	e.b.line("i32.store offset=4")
	return nil
}

func (e *emitter) emitClone(c *typed.Clone) *diagnostics.DiagnosticError {
	switch t := c.Operand.Type().(type) {
	case typesystem.TList:
		if _, err := elemSize(t.Elem, c.Token); err != nil {
			return err
		}
		e.g.needListClone = true
		if err := e.emitExpr(c.Operand); err != nil {
			return err
		}
		e.b.line(e.arenaAddr())
		e.b.line("call $__list_clone")
		return nil
	case typesystem.TOption:
		e.g.needOptClone = true
		if err := e.emitExpr(c.Operand); err != nil {
			return err
		}
		e.b.line(e.arenaAddr())
		e.b.line("call $__option_clone")
		return nil
	case typesystem.TArray:
		if _, err := elemSize(t.Elem, c.Token); err != nil {
			return err
		}
		return e.emitCopy(c, t.Size*4)
	case typesystem.TRecord:
		return e.emitCopy(c, recordSize(t))
	}
	// Scalars, strings and function values copy by value.
	return e.emitExpr(c.Operand)
}

// emitCopy clones a fixed-size object with a bulk copy.
func (e *emitter) emitCopy(c *typed.Clone, size int) *diagnostics.DiagnosticError {
	e.g.needAlloc = true
	src := e.newLocal("src", "i32")
	dst := e.newLocal("dst", "i32")
	if err := e.emitExpr(c.Operand); err != nil {
		return err
	}
	e.b.linef("local.set %s", src)
	e.b.line(e.arenaAddr())
	e.b.linef("i32.const %d", size)
	e.b.line("call $__alloc")
	e.b.linef("local.set %s", dst)
	e.b.linef("local.get %s", dst)
	e.b.linef("local.get %s", src)
	e.b.linef("i32.const %d", size)
	e.b.line("memory.copy")
	e.b.linef("local.get %s", dst)
	return nil
}
