package analyzer_test

import (
	"testing"

	"github.com/ril-lang/ril/internal/analyzer"
	"github.com/ril-lang/ril/internal/diagnostics"
	"github.com/ril-lang/ril/internal/lexer"
	"github.com/ril-lang/ril/internal/parser"
	"github.com/ril-lang/ril/internal/typed"
	"github.com/ril-lang/ril/internal/typesystem"
)

// check parses and type-checks input, failing the test on any error.
func check(t *testing.T, input string) *typed.Program {
	t.Helper()
	p := parser.New(lexer.New(input))
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parse error: %v\ninput: %s", p.Errors()[0], input)
	}
	tp, err := analyzer.CheckProgram(prog)
	if err != nil {
		t.Fatalf("unexpected check error: %v\ninput: %s", err, input)
	}
	return tp
}

// expectError asserts that checking fails with the given code.
func expectError(t *testing.T, input string, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	p := parser.New(lexer.New(input))
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parse error: %v\ninput: %s", p.Errors()[0], input)
	}
	_, err := analyzer.CheckProgram(prog)
	if err == nil {
		t.Fatalf("expected %s, got no error\ninput: %s", code, input)
	}
	if err.Code != code {
		t.Fatalf("expected %s, got %s: %v\ninput: %s", code, err.Code, err, input)
	}
	return err
}

func TestCheck_SimpleFunction(t *testing.T) {
	tp := check(t, `fun add = x:Int, y:Int -> Int { x + y }`)
	if len(tp.Functions) != 1 {
		t.Fatalf("functions = %d, want 1", len(tp.Functions))
	}
	fn := tp.Functions[0]
	if fn.Name != "add" || !typesystem.Equals(fn.ReturnType, typesystem.Int) {
		t.Fatalf("fn = %s -> %s", fn.Name, fn.ReturnType)
	}
}

func TestCheck_InferredReturnType(t *testing.T) {
	tp := check(t, `fun truthy = { true }`)
	if !typesystem.Equals(tp.Functions[0].ReturnType, typesystem.Bool) {
		t.Fatalf("return type = %s, want Bool", tp.Functions[0].ReturnType)
	}
}

func TestCheck_ReturnTypeMismatch(t *testing.T) {
	expectError(t, `fun f = -> Int { true }`, diagnostics.ErrT003)
}

func TestAffine_DoubleUse(t *testing.T) {
	err := expectError(t, `
val x = 42
val y = x
val z = x
`, diagnostics.ErrT004)
	if err.Message != "x" {
		t.Errorf("message = %q, want the binding name", err.Message)
	}
}

func TestAffine_MutableReuse(t *testing.T) {
	check(t, `
mut x = 42
val y = x
val z = x
`)
}

func TestAffine_CloneDoesNotConsume(t *testing.T) {
	check(t, `
fun f = xs:List<Int> -> List<Int> {
	val copy = clone xs
	xs
}
`)
}

func TestAffine_ParamDoubleUse(t *testing.T) {
	expectError(t, `
fun f = xs:List<Int> -> List<Int> {
	val a = xs
	xs
}
`, diagnostics.ErrT004)
}

func TestAffine_ParallelBranchesEachConsumeOnce(t *testing.T) {
	check(t, `
fun pick = flag:Bool, n:Int -> Int {
	if flag { n } else { n }
}
`)
}

func TestAffine_DoubleUseInOneBranch(t *testing.T) {
	expectError(t, `
fun bad = flag:Bool, n:Int -> Int {
	if flag { n + n } else { 0 }
}
`, diagnostics.ErrT004)
}

func TestAffine_ConsumedInBranchStaysConsumed(t *testing.T) {
	expectError(t, `
fun bad = flag:Bool, n:Int -> Int {
	val a = if flag { n } else { 0 }
	n
}
`, diagnostics.ErrT004)
}

func TestAffine_MatchArmsEachConsumeOnce(t *testing.T) {
	check(t, `
fun f = o:Option<Int>, n:Int -> Int {
	match o {
		Some(v) => v + n,
		None => n
	}
}
`)
}

func TestAssign_ImmutableReassignment(t *testing.T) {
	err := expectError(t, `
fun f = -> Int {
	val x = 1
	x = 2
	x
}
`, diagnostics.ErrT005)
	if err.Message != "x" {
		t.Errorf("message = %q, want the binding name", err.Message)
	}
}

func TestAssign_MutableOK(t *testing.T) {
	check(t, `
fun f = -> Int {
	mut x = 1
	x = 2
	x
}
`)
}

func TestUndefinedVariable(t *testing.T) {
	expectError(t, `fun f = { y }`, diagnostics.ErrT001)
}

func TestUndefinedFunction(t *testing.T) {
	expectError(t, `val r = (1) nope`, diagnostics.ErrT002)
}

func TestArityMismatch(t *testing.T) {
	expectError(t, `
fun add = x:Int, y:Int -> Int { x + y }
val r = (1) add
`, diagnostics.ErrT006)
}

func TestTypeMismatch_Annotation(t *testing.T) {
	expectError(t, `val x: Int = true`, diagnostics.ErrT003)
}

func TestTypeMismatch_ArgumentType(t *testing.T) {
	expectError(t, `
fun inc = x:Int -> Int { x + 1 }
val r = (true) inc
`, diagnostics.ErrT003)
}

func TestLambda_InferredFromAnnotation(t *testing.T) {
	tp := check(t, `val f: (Int) -> Int = |x| x + 1`)
	g := tp.Globals[0]
	fn, ok := g.Typ.(typesystem.TFunc)
	if !ok || !typesystem.Equals(fn.Params[0], typesystem.Int) {
		t.Fatalf("global type = %s", g.Typ)
	}
}

func TestLambda_InferredFromCallSite(t *testing.T) {
	check(t, `
fun apply = f:(Int) -> Int, n:Int -> Int { (n) f }
fun main = {
	val r = (|x| x * 2, 21) apply
}
`)
}

func TestLambda_UninferableParameter(t *testing.T) {
	expectError(t, `val f = |x| x + 1`, diagnostics.ErrT003)
}

func TestLambda_RecordsCaptures(t *testing.T) {
	tp := check(t, `
fun make = n:Int -> (Int) -> Int {
	|x| x + n
}
`)
	fn := tp.Functions[0]
	stmt := fn.Body.Stmts[len(fn.Body.Stmts)-1].(*typed.ExprStmt)
	lam, ok := stmt.E.(*typed.Lambda)
	if !ok {
		t.Fatalf("tail is %T, want *typed.Lambda", stmt.E)
	}
	if len(lam.Captures) != 1 || lam.Captures[0].Name != "n" {
		t.Fatalf("captures = %+v, want [n]", lam.Captures)
	}
}

func TestFuncValue_BeforeReturnTypeKnown(t *testing.T) {
	expectError(t, `
val g = f
fun f = { 1 }
`, diagnostics.ErrT003)
}

func TestNumericLiteral_FloatContext(t *testing.T) {
	tp := check(t, `val x: Float = 1`)
	if !typesystem.Equals(tp.Globals[0].Typ, typesystem.Float) {
		t.Fatalf("type = %s, want Float", tp.Globals[0].Typ)
	}
}

func TestMatch_OptionExhaustive(t *testing.T) {
	check(t, `
fun f = o:Option<Int> -> Int {
	match o {
		Some(n) => n,
		None => 0
	}
}
`)
}

func TestMatch_OptionMissingNone(t *testing.T) {
	expectError(t, `
fun f = o:Option<Int> -> Int {
	match o {
		Some(n) => n
	}
}
`, diagnostics.ErrT007)
}

func TestMatch_BoolLiteralsNeverExhaustive(t *testing.T) {
	expectError(t, `
fun f = b:Bool -> Int {
	match b {
		true => 1,
		false => 0
	}
}
`, diagnostics.ErrT007)
}

func TestMatch_IntNeedsWildcard(t *testing.T) {
	expectError(t, `
fun f = n:Int -> Int {
	match n {
		0 => 1,
		1 => 2
	}
}
`, diagnostics.ErrT007)
	check(t, `
fun g = n:Int -> Int {
	match n {
		0 => 1,
		1 => 2,
		_ => 0
	}
}
`)
}

func TestMatch_ListExhaustive(t *testing.T) {
	check(t, `
fun f = xs:List<Int> -> Int {
	match xs {
		[] => 0,
		[h | _] => h
	}
}
`)
	expectError(t, `
fun g = xs:List<Int> -> Int {
	match xs {
		[] => 0
	}
}
`, diagnostics.ErrT007)
}

func TestMatch_RecordFullPattern(t *testing.T) {
	check(t, `
record Point { x: Int, y: Int }
fun sum = p:Point -> Int {
	match p {
		Point { x: a, y: b } => a + b
	}
}
`)
}

func TestMatch_SomePatternWrongScrutinee(t *testing.T) {
	expectError(t, `
fun f = n:Int -> Int {
	match n {
		Some(v) => v,
		_ => 0
	}
}
`, diagnostics.ErrT003)
}

func TestArena_ScalarResultEscapes(t *testing.T) {
	check(t, `
fun f = -> Int {
	with Arena {
		val xs = [1, 2, 3]
		match xs {
			[] => 0,
			[h | _] => h
		}
	}
}
`)
}

func TestArena_AggregateResultRejected(t *testing.T) {
	expectError(t, `
fun f = {
	with Arena {
		[1, 2]
	}
}
`, diagnostics.ErrT003)
}

func TestArena_OptionResultRejected(t *testing.T) {
	// Some allocates from the arena being reset, so an escaping option
	// would dangle just like a list or record.
	expectError(t, `
fun f = -> Option<Int> {
	with Arena {
		Some(5)
	}
}
`, diagnostics.ErrT003)
}

func TestArena_ClosureResultEscapes(t *testing.T) {
	// Closure storage comes from the base arena, so function-typed
	// results legitimately survive the block.
	check(t, `
fun mk = n:Int -> (Int) -> Int {
	with Arena {
		|x| x + n
	}
}
`)
}

func TestImpl_MethodChecksAgainstTarget(t *testing.T) {
	tp := check(t, `
record Point { x: Int, y: Int }
impl Point {
	fun sum = p:Point -> Int { p.x + p.y }
}
val total = (Point { x: 1, y: 2 }) Point.sum
`)
	var found bool
	for _, fn := range tp.Functions {
		if fn.Name == "Point.sum" {
			found = true
		}
	}
	if !found {
		t.Fatal("impl method Point.sum not registered")
	}
}

func TestBuiltin_PrintAndExit(t *testing.T) {
	check(t, `
fun main = {
	("hello") print
	(0) exit
}
`)
}

func TestMember_ProjectionDoesNotConsume(t *testing.T) {
	check(t, `
record Point { x: Int, y: Int }
fun sum = p:Point -> Int { p.x + p.y }
`)
}

func TestMember_OnNonRecord(t *testing.T) {
	expectError(t, `
fun f = n:Int -> Int { n.x }
`, diagnostics.ErrT003)
}

func TestIf_WithoutElseMustBeUnit(t *testing.T) {
	expectError(t, `
fun f = b:Bool -> Int {
	if b { 1 }
	0
}
`, diagnostics.ErrT003)
}
