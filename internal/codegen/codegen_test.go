package codegen_test

import (
	"strings"
	"testing"

	"github.com/ril-lang/ril/internal/analyzer"
	"github.com/ril-lang/ril/internal/codegen"
	"github.com/ril-lang/ril/internal/lexer"
	"github.com/ril-lang/ril/internal/parser"
)

// compile runs the source through the full front end and the generator.
func compile(t *testing.T, input string) string {
	t.Helper()
	p := parser.New(lexer.New(input))
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parse error: %v\ninput: %s", p.Errors()[0], input)
	}
	tp, err := analyzer.CheckProgram(prog)
	if err != nil {
		t.Fatalf("check error: %v\ninput: %s", err, input)
	}
	out, gerr := codegen.New(tp, codegen.Options{}).Generate()
	if gerr != nil {
		t.Fatalf("generate error: %v\ninput: %s", gerr, input)
	}
	return out
}

// flatten collapses all whitespace so assertions survive indentation.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func wantContains(t *testing.T, out, substr string) {
	t.Helper()
	if !strings.Contains(flatten(out), flatten(substr)) {
		t.Errorf("output missing %q\n%s", substr, out)
	}
}

func wantNotContains(t *testing.T, out, substr string) {
	t.Helper()
	if strings.Contains(flatten(out), flatten(substr)) {
		t.Errorf("output should not contain %q\n%s", substr, out)
	}
}

func TestGenerate_ModuleSkeleton(t *testing.T) {
	out := compile(t, `fun main = { (0) exit }`)
	wantContains(t, out, `(import "env" "print" (func $print (param i32 i32)))`)
	wantContains(t, out, `(import "env" "exit" (func $exit (param i32)))`)
	wantContains(t, out, `(memory 1)`)
	wantContains(t, out, `(export "memory" (memory 0))`)
	wantContains(t, out, `(export "_start" (func $_start))`)
	wantContains(t, out, `call $__init`)
	wantContains(t, out, `call $f$main`)
}

func TestGenerate_DirectCall(t *testing.T) {
	out := compile(t, `
fun add = x:Int, y:Int -> Int { x + y }
fun main = {
	val r = (5, 10) add
}
`)
	wantContains(t, out, `(func $f$add (param $p$x i32) (param $p$y i32) (result i32)`)
	wantContains(t, out, `i32.const 5 i32.const 10 call $f$add`)
}

func TestGenerate_FloatArithmetic(t *testing.T) {
	out := compile(t, `
fun scale = x:Float -> Float { x * 2.0 }
`)
	wantContains(t, out, `(param $p$x f64) (result f64)`)
	wantContains(t, out, `f64.mul`)
}

func TestGenerate_ListLiteralLayout(t *testing.T) {
	out := compile(t, `
fun f = -> Int {
	val xs = [7, 8, 9]
	0
}
`)
	// Header: len at +0, cap at +4, elements from +8.
	wantContains(t, out, `i32.const 3 i32.store`)
	wantContains(t, out, `i32.const 3 i32.store offset=4`)
	wantContains(t, out, `i32.const 7 i32.store offset=8`)
	wantContains(t, out, `i32.const 8 i32.store offset=12`)
	wantContains(t, out, `i32.const 9 i32.store offset=16`)
	wantContains(t, out, `call $__alloc`)
}

func TestGenerate_RecordFieldAccess(t *testing.T) {
	out := compile(t, `
record Point { x: Int, y: Int }
fun getY = p:Point -> Int { p.y }
`)
	wantContains(t, out, `i32.load offset=4`)
}

func TestGenerate_StringInterning(t *testing.T) {
	out := compile(t, `
fun main = {
	("hi") print
	("hi") print
}
`)
	if n := strings.Count(out, `\00hi`); n != 1 {
		t.Errorf("string %q interned %d times, want 1", "hi", n)
	}
	// print unpacks the descriptor: data offset then length.
	wantContains(t, out, `call $print`)
}

func TestGenerate_NoneIsStaticCell(t *testing.T) {
	out := compile(t, `
fun f = -> Option<Int> { None }
`)
	wantContains(t, out, `i32.const 0`)
	wantNotContains(t, out, `$__alloc`)
}

func TestGenerate_ArenaPushAndReset(t *testing.T) {
	out := compile(t, `
fun f = -> Int {
	with Arena {
		val xs = [1]
		match xs {
			[] => 0,
			[h | _] => h
		}
	}
}
`)
	wantContains(t, out, `call $__arena_push`)
	wantContains(t, out, `call $__arena_reset`)
	// Reset rewinds current back to just past the header.
	wantContains(t, out, `(func $__arena_reset (param $arena i32)`)
	wantContains(t, out, `i32.const 8 i32.add i32.store offset=4`)
}

func TestGenerate_ClosureSurvivesArenaReset(t *testing.T) {
	out := compile(t, `
fun mk = n:Int -> (Int) -> Int {
	with Arena {
		|x| x + n
	}
}
`)
	// The closure escapes the block, so its env and [index][envPtr] pair
	// must come from the base arena, not the one reset on exit.
	wantContains(t, out, `call $__arena_push`)
	wantContains(t, out, `call $__arena_reset`)
	wantContains(t, out, `i32.const 4096 i32.const 4 call $__alloc`)
	wantContains(t, out, `i32.const 4096 i32.const 8 call $__alloc`)
	wantNotContains(t, out, `local.get $arena$1 i32.const 4 call $__alloc`)
	wantNotContains(t, out, `local.get $arena$1 i32.const 8 call $__alloc`)
}

func TestGenerate_ClosureTableAndInvoke(t *testing.T) {
	out := compile(t, `
fun main = {
	val f: (Int) -> Int = |x| x + 1
	val r = (3) f
}
`)
	wantContains(t, out, `(table 1 funcref)`)
	wantContains(t, out, `(func $lambda$0 (param $env i32) (param $p$x i32) (result i32)`)
	wantContains(t, out, `call $__invoke0`)
	wantContains(t, out, `call_indirect`)
	// The invoke helper distinguishes table indices from heap pairs.
	wantContains(t, out, `i32.const 4096 i32.lt_u`)
}

func TestGenerate_CaptureEnvironment(t *testing.T) {
	out := compile(t, `
fun make = n:Int -> (Int) -> Int {
	|x| x + n
}
`)
	// Capturing lambda allocates an env and an [fnIndex][envPtr] pair.
	wantContains(t, out, `call $__alloc`)
	wantContains(t, out, `local.get $env i32.load`)
}

func TestGenerate_FunctionAsValueGetsShim(t *testing.T) {
	out := compile(t, `
fun double = x:Int -> Int { x * 2 }
fun main = {
	val f = double
	val r = (4) f
}
`)
	wantContains(t, out, `(func $fv$double (param $env i32) (param $a0 i32) (result i32)`)
	wantContains(t, out, `call $f$double`)
}

func TestGenerate_MatchOption(t *testing.T) {
	out := compile(t, `
fun unwrap = o:Option<Int> -> Int {
	match o {
		Some(n) => n,
		None => 0
	}
}
`)
	wantContains(t, out, `block $match$0 (result i32)`)
	wantContains(t, out, `br $match$0`)
	wantContains(t, out, `unreachable`)
	wantNotContains(t, out, `br_table`)
}

func TestGenerate_DenseIntMatchUsesJumpTable(t *testing.T) {
	out := compile(t, `
fun name = n:Int -> Int {
	match n {
		0 => 10,
		1 => 11,
		2 => 12,
		3 => 13,
		_ => 0
	}
}
`)
	wantContains(t, out, `br_table`)
}

func TestGenerate_SparseIntMatchStaysSequential(t *testing.T) {
	out := compile(t, `
fun f = n:Int -> Int {
	match n {
		0 => 1,
		1000 => 2,
		_ => 0
	}
}
`)
	wantNotContains(t, out, `br_table`)
}

func TestGenerate_ListPatternTests(t *testing.T) {
	out := compile(t, `
fun f = xs:List<Int> -> Int {
	match xs {
		[0 | [1 | _]] => 1,
		_ => 0
	}
}
`)
	// Element tests load past the 8-byte header at 4-byte stride.
	wantContains(t, out, `i32.load offset=8`)
	wantContains(t, out, `i32.load offset=12`)
}

func TestGenerate_CloneList(t *testing.T) {
	out := compile(t, `
fun f = xs:List<Int> -> Int {
	val ys = clone xs
	0
}
`)
	wantContains(t, out, `call $__list_clone`)
}

func TestGenerate_UnsupportedFloatList(t *testing.T) {
	p := parser.New(lexer.New(`val xs = [1.5, 2.5]`))
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parse error: %v", p.Errors()[0])
	}
	tp, err := analyzer.CheckProgram(prog)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	_, gerr := codegen.New(tp, codegen.Options{}).Generate()
	if gerr == nil {
		t.Fatal("expected a generation error for List<Float>")
	}
	if gerr.Code != "G003" {
		t.Fatalf("code = %s, want G003", gerr.Code)
	}
}

func TestGenerate_MemoryPagesOption(t *testing.T) {
	p := parser.New(lexer.New(`fun main = { (0) exit }`))
	prog := p.ParseProgram()
	tp, err := analyzer.CheckProgram(prog)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	out, gerr := codegen.New(tp, codegen.Options{MemoryPages: 4}).Generate()
	if gerr != nil {
		t.Fatalf("generate error: %v", gerr)
	}
	wantContains(t, out, `(memory 4)`)
}

func TestGenerate_GlobalBindings(t *testing.T) {
	out := compile(t, `
val limit = 100
fun main = {
	val r = limit + 1
}
`)
	wantContains(t, out, `(global $g$limit (mut i32) (i32.const 0))`)
	wantContains(t, out, `global.set $g$limit`)
	wantContains(t, out, `global.get $g$limit`)
}
