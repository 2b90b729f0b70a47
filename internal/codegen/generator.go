// Package codegen lowers the typed tree to WebAssembly text.
//
// The generator owns every layout decision: static data placement,
// string interning, arena bump allocation, closure representation and
// match lowering. All of its state lives on the Generator value; one
// Generate call compiles one program.
package codegen

import (
	"fmt"

	"github.com/ril-lang/ril/internal/diagnostics"
	"github.com/ril-lang/ril/internal/token"
	"github.com/ril-lang/ril/internal/typed"
	"github.com/ril-lang/ril/internal/typesystem"
)

// closureTagBase separates function-table indices from heap pointers in
// a closure value: indices are below it, pointers at or above it. The
// static layout keeps the heap base at or above this boundary.
const closureTagBase = 4096

// noneCellOffset is the address of the static [tag=0][payload=0] cell
// every None evaluates to.
const noneCellOffset = 0

// Options configure a Generator.
type Options struct {
	// MemoryPages is the number of 64KiB linear-memory pages to declare.
	MemoryPages int
}

// Generator compiles one typed program to module text.
type Generator struct {
	prog  *typed.Program
	pages int

	// string interning
	strOffsets map[string]int // literal -> descriptor address
	strOrder   []string
	staticEnd  int
	heapBase   int

	// function table
	tableFuncs []string       // wat names in index order
	shims      map[string]int // named function -> table index of its shim
	lambdaSeq  int
	pending    []*lambdaWork

	// call_indirect plumbing, one entry per distinct signature
	sigNames map[string]int
	sigOrder []indirectSig

	globals map[string]typesystem.Type
	funcs   map[string]typesystem.TFunc

	// runtime helpers actually referenced
	needAlloc      bool
	needArenaPush  bool
	needArenaReset bool
	needSuffix     bool
	needListClone  bool
	needOptClone   bool

	matchSeq int

	emitted []*watBuilder // finished function bodies
}

type lambdaWork struct {
	name string
	lam  *typed.Lambda
	env  []envSlot
}

type envSlot struct {
	name   string
	typ    typesystem.Type
	offset int
}

type indirectSig struct {
	fn   typesystem.TFunc
	name string // numeric suffix shared by the type and the helper
}

// New returns a generator for the given typed program.
func New(prog *typed.Program, opts Options) *Generator {
	pages := opts.MemoryPages
	if pages <= 0 {
		pages = 1
	}
	return &Generator{
		prog:       prog,
		pages:      pages,
		strOffsets: map[string]int{},
		shims:      map[string]int{},
		sigNames:   map[string]int{},
		globals:    map[string]typesystem.Type{},
		funcs:      map[string]typesystem.TFunc{},
	}
}

// Generate emits the complete module text, or the first layout or
// lowering error.
func (g *Generator) Generate() (string, *diagnostics.DiagnosticError) {
	g.collectStrings()

	for _, fn := range g.prog.Functions {
		g.funcs[fn.Name] = signatureOf(fn)
	}
	for _, let := range g.prog.Globals {
		g.globals[let.Name] = let.Typ
	}

	for _, fn := range g.prog.Functions {
		if err := g.emitFunction(fn); err != nil {
			return "", err
		}
	}
	// Lambdas enqueue further lambdas; drain until settled.
	for len(g.pending) > 0 {
		work := g.pending[0]
		g.pending = g.pending[1:]
		if err := g.emitLambda(work); err != nil {
			return "", err
		}
	}

	init, err := g.emitInit()
	if err != nil {
		return "", err
	}
	g.emitted = append(g.emitted, init)
	g.emitted = append(g.emitted, g.emitStart())
	g.emitRuntime()

	return g.assemble(), nil
}

func signatureOf(fn *typed.Function) typesystem.TFunc {
	params := make([]typesystem.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Typ
	}
	return typesystem.TFunc{Params: params, ReturnType: fn.ReturnType}
}

// --- layout ---

// watType maps a semantic type to its stack representation. Unit is
// empty: no value on the stack.
func watType(t typesystem.Type) string {
	switch {
	case typesystem.Equals(t, typesystem.Unit):
		return ""
	case typesystem.Equals(t, typesystem.Float):
		return "f64"
	default:
		return "i32"
	}
}

// slotSize is the in-memory size of a field or capture slot.
func slotSize(t typesystem.Type) int {
	switch watType(t) {
	case "":
		return 0
	case "f64":
		return 8
	default:
		return 4
	}
}

// elemSize enforces the 4-byte element contract for lists and arrays.
func elemSize(elem typesystem.Type, tok token.Token) (int, *diagnostics.DiagnosticError) {
	if typesystem.Equals(elem, typesystem.Float) {
		return 0, diagnostics.NewError(diagnostics.ErrG003, tok,
			"Float elements do not fit the 4-byte element layout; box them in a record")
	}
	return 4, nil
}

// fieldOffset returns the byte offset of field i, declaration order,
// 4-byte aligned.
func fieldOffset(rec typesystem.TRecord, i int) int {
	off := 0
	for j := 0; j < i; j++ {
		off += align4(slotSize(rec.Fields[j].Type))
	}
	return off
}

func recordSize(rec typesystem.TRecord) int {
	return fieldOffset(rec, len(rec.Fields))
}

func align4(n int) int { return (n + 3) &^ 3 }
func align8(n int) int { return (n + 7) &^ 7 }

// --- function table ---

func (g *Generator) addTableEntry(name string) int {
	idx := len(g.tableFuncs)
	g.tableFuncs = append(g.tableFuncs, name)
	return idx
}

// shimIndex returns the table index of the env-discarding wrapper for a
// named function used as a value, emitting the wrapper on first use.
func (g *Generator) shimIndex(name string, sig typesystem.TFunc) int {
	if idx, ok := g.shims[name]; ok {
		return idx
	}
	watName := "$fv$" + name
	idx := g.addTableEntry(watName)
	g.shims[name] = idx

	b := &watBuilder{}
	decl := fmt.Sprintf("(func %s (param $env i32)", watName)
	for i, p := range sig.Params {
		if wt := watType(p); wt != "" {
			decl += fmt.Sprintf(" (param $a%d %s)", i, wt)
		}
	}
	if rt := watType(sig.ReturnType); rt != "" {
		decl += fmt.Sprintf(" (result %s)", rt)
	}
	b.line(decl)
	b.indent++
	for i, p := range sig.Params {
		if watType(p) != "" {
			b.linef("local.get $a%d", i)
		}
	}
	b.linef("call $f$%s", name)
	b.indent--
	b.line(")")
	g.emitted = append(g.emitted, b)
	return idx
}

// indirectName returns the suffix shared by the call_indirect type
// declaration and the dispatch helper for the given signature.
func (g *Generator) indirectName(sig typesystem.TFunc) string {
	key := sigKey(sig)
	if n, ok := g.sigNames[key]; ok {
		return fmt.Sprintf("%d", n)
	}
	n := len(g.sigOrder)
	g.sigNames[key] = n
	g.sigOrder = append(g.sigOrder, indirectSig{fn: sig, name: fmt.Sprintf("%d", n)})
	return fmt.Sprintf("%d", n)
}

func sigKey(sig typesystem.TFunc) string {
	key := ""
	for _, p := range sig.Params {
		key += watType(p) + ","
	}
	return key + ":" + watType(sig.ReturnType)
}

// --- module assembly ---

func (g *Generator) assemble() string {
	m := &watBuilder{}
	m.line("(module")
	m.indent++
	m.line(`(import "env" "print" (func $print (param i32 i32)))`)
	m.line(`(import "env" "exit" (func $exit (param i32)))`)
	for _, s := range g.sigOrder {
		decl := fmt.Sprintf("(type $sig%s (func (param i32)", s.name)
		for _, p := range s.fn.Params {
			if wt := watType(p); wt != "" {
				decl += fmt.Sprintf(" (param %s)", wt)
			}
		}
		if rt := watType(s.fn.ReturnType); rt != "" {
			decl += fmt.Sprintf(" (result %s)", rt)
		}
		m.line(decl + "))")
	}
	m.linef("(memory %d)", g.pages)
	g.emitData(m)
	for _, let := range g.prog.Globals {
		wt := watType(let.Typ)
		switch wt {
		case "":
			// Unit globals hold no value.
		case "f64":
			m.linef("(global $g$%s (mut f64) (f64.const 0))", let.Name)
		default:
			m.linef("(global $g$%s (mut i32) (i32.const 0))", let.Name)
		}
	}
	for _, b := range g.emitted {
		m.append(b)
	}
	if len(g.tableFuncs) > 0 {
		m.linef("(table %d funcref)", len(g.tableFuncs))
		elem := "(elem (i32.const 0)"
		for _, name := range g.tableFuncs {
			elem += " " + name
		}
		m.line(elem + ")")
	}
	m.line(`(export "memory" (memory 0))`)
	m.line(`(export "_start" (func $_start))`)
	m.indent--
	m.line(")")
	return m.String()
}

// emitInit builds $__init: global bindings evaluated in declaration
// order, then the base arena header.
func (g *Generator) emitInit() (*watBuilder, *diagnostics.DiagnosticError) {
	em := g.newEmitter(nil)
	body := em.b
	// Base arena header: start = heapBase, current = heapBase + 8.
	body.linef("i32.const %d", g.heapBase)
	body.linef("i32.const %d", g.heapBase)
	body.line("i32.store")
	body.linef("i32.const %d", g.heapBase)
	body.linef("i32.const %d", g.heapBase+8)
	body.line("i32.store offset=4")
	for _, let := range g.prog.Globals {
		if err := em.emitExpr(let.Value); err != nil {
			return nil, err
		}
		if watType(let.Typ) != "" {
			body.linef("global.set $g$%s", let.Name)
		}
	}
	out := &watBuilder{}
	out.line("(func $__init")
	out.indent++
	em.writeLocals(out)
	out.append(body)
	out.indent--
	out.line(")")
	return out, nil
}

func (g *Generator) emitStart() *watBuilder {
	b := &watBuilder{}
	b.line("(func $_start")
	b.indent++
	b.line("call $__init")
	if main, ok := g.funcs["main"]; ok && len(main.Params) == 0 {
		b.line("call $f$main")
		if watType(main.ReturnType) != "" {
			b.line("drop")
		}
	}
	b.indent--
	b.line(")")
	return b
}

// emitRuntime appends the allocation and copy helpers the program
// actually uses.
func (g *Generator) emitRuntime() {
	if g.needSuffix || g.needListClone || g.needOptClone || g.needArenaPush {
		g.needAlloc = true
	}
	if g.needAlloc {
		b := &watBuilder{}
		b.line("(func $__alloc (param $arena i32) (param $n i32) (result i32)")
		b.indent++
		b.line("(local $p i32)")
		b.line("local.get $n")
		b.line("i32.const 3")
		b.line("i32.add")
		b.line("i32.const -4")
		b.line("i32.and")
		b.line("local.set $n")
		b.line("local.get $arena")
		b.line("i32.load offset=4")
		b.line("local.set $p")
		b.line("local.get $arena")
		b.line("local.get $p")
		b.line("local.get $n")
		b.line("i32.add")
		b.line("i32.store offset=4")
		b.line("local.get $p")
		b.indent--
		b.line(")")
		g.emitted = append(g.emitted, b)
	}
	if g.needArenaReset {
		b := &watBuilder{}
		b.line("(func $__arena_reset (param $arena i32)")
		b.indent++
		b.line("local.get $arena")
		b.line("local.get $arena")
		b.line("i32.load")
		b.line("i32.const 8")
		b.line("i32.add")
		b.line("i32.store offset=4")
		b.indent--
		b.line(")")
		g.emitted = append(g.emitted, b)
	}
	if g.needArenaPush {
		b := &watBuilder{}
		b.line("(func $__arena_push (param $parent i32) (result i32)")
		b.indent++
		b.line("(local $h i32)")
		b.line("local.get $parent")
		b.line("i32.const 8")
		b.line("call $__alloc")
		b.line("local.set $h")
		b.line("local.get $h")
		b.line("local.get $h")
		b.line("i32.store")
		b.line("local.get $h")
		b.line("local.get $h")
		b.line("i32.const 8")
		b.line("i32.add")
		b.line("i32.store offset=4")
		b.line("local.get $h")
		b.indent--
		b.line(")")
		g.emitted = append(g.emitted, b)
	}
	if g.needSuffix {
		b := &watBuilder{}
		b.line("(func $__list_suffix (param $l i32) (param $skip i32) (param $arena i32) (result i32)")
		b.indent++
		b.line("(local $n i32)")
		b.line("(local $p i32)")
		b.line("local.get $l")
		b.line("i32.load")
		b.line("local.get $skip")
		b.line("i32.sub")
		b.line("local.set $n")
		b.line("local.get $arena")
		b.line("local.get $n")
		b.line("i32.const 4")
		b.line("i32.mul")
		b.line("i32.const 8")
		b.line("i32.add")
		b.line("call $__alloc")
		b.line("local.set $p")
		b.line("local.get $p")
		b.line("local.get $n")
		b.line("i32.store")
		b.line("local.get $p")
		b.line("local.get $n")
		b.line("i32.store offset=4")
		b.line("local.get $p")
		b.line("i32.const 8")
		b.line("i32.add")
		b.line("local.get $l")
		b.line("i32.const 8")
		b.line("i32.add")
		b.line("local.get $skip")
		b.line("i32.const 4")
		b.line("i32.mul")
		b.line("i32.add")
		b.line("local.get $n")
		b.line("i32.const 4")
		b.line("i32.mul")
		b.line("memory.copy")
		b.line("local.get $p")
		b.indent--
		b.line(")")
		g.emitted = append(g.emitted, b)
	}
	if g.needListClone {
		b := &watBuilder{}
		b.line("(func $__list_clone (param $l i32) (param $arena i32) (result i32)")
		b.indent++
		b.line("(local $size i32)")
		b.line("(local $p i32)")
		b.line("local.get $l")
		b.line("i32.load")
		b.line("i32.const 4")
		b.line("i32.mul")
		b.line("i32.const 8")
		b.line("i32.add")
		b.line("local.set $size")
		b.line("local.get $arena")
		b.line("local.get $size")
		b.line("call $__alloc")
		b.line("local.set $p")
		b.line("local.get $p")
		b.line("local.get $l")
		b.line("local.get $size")
		b.line("memory.copy")
		b.line("local.get $p")
		b.indent--
		b.line(")")
		g.emitted = append(g.emitted, b)
	}
	if g.needOptClone {
		b := &watBuilder{}
		b.line("(func $__option_clone (param $o i32) (param $arena i32) (result i32)")
		b.indent++
		b.line("(local $p i32)")
		b.line("local.get $o")
		b.line("i32.load")
		b.line("i32.eqz")
		b.line("if")
		b.indent++
		b.linef("i32.const %d", noneCellOffset)
		b.line("return")
		b.indent--
		b.line("end")
		b.line("local.get $arena")
		b.line("i32.const 8")
		b.line("call $__alloc")
		b.line("local.set $p")
		b.line("local.get $p")
		b.line("local.get $o")
		b.line("i32.const 8")
		b.line("memory.copy")
		b.line("local.get $p")
		b.indent--
		b.line(")")
		g.emitted = append(g.emitted, b)
	}
	for _, s := range g.sigOrder {
		g.emitted = append(g.emitted, emitInvoke(s))
	}
}

// emitInvoke builds the dispatch helper for one closure signature: a
// bare table index calls with a zero environment, a pair pointer loads
// its index and environment first.
func emitInvoke(s indirectSig) *watBuilder {
	b := &watBuilder{}
	decl := fmt.Sprintf("(func $__invoke%s (param $f i32)", s.name)
	for i, p := range s.fn.Params {
		if wt := watType(p); wt != "" {
			decl += fmt.Sprintf(" (param $a%d %s)", i, wt)
		}
	}
	if rt := watType(s.fn.ReturnType); rt != "" {
		decl += fmt.Sprintf(" (result %s)", rt)
	}
	b.line(decl)
	b.indent++
	b.line("(local $idx i32)")
	b.line("(local $env i32)")
	b.line("local.get $f")
	b.linef("i32.const %d", closureTagBase)
	b.line("i32.lt_u")
	b.line("if")
	b.indent++
	b.line("local.get $f")
	b.line("local.set $idx")
	b.indent--
	b.line("else")
	b.indent++
	b.line("local.get $f")
	b.line("i32.load")
	b.line("local.set $idx")
	b.line("local.get $f")
	b.line("i32.load offset=4")
	b.line("local.set $env")
	b.indent--
	b.line("end")
	b.line("local.get $env")
	for i, p := range s.fn.Params {
		if watType(p) != "" {
			b.linef("local.get $a%d", i)
		}
	}
	b.line("local.get $idx")
	b.linef("call_indirect (type $sig%s)", s.name)
	b.indent--
	b.line(")")
	return b
}
