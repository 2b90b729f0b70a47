package parser_test

import (
	"strings"
	"testing"

	"github.com/ril-lang/ril/internal/ast"
	"github.com/ril-lang/ril/internal/diagnostics"
	"github.com/ril-lang/ril/internal/lexer"
	"github.com/ril-lang/ril/internal/parser"
)

// parseProgram parses input and fails the test on any parse error.
func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(input))
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		var msgs []string
		for _, e := range p.Errors() {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("unexpected parse errors:\n%s\ninput: %s", strings.Join(msgs, "\n"), input)
	}
	return prog
}

// expectParseError asserts at least one P001 diagnostic.
func expectParseError(t *testing.T, input string) {
	t.Helper()
	p := parser.New(lexer.New(input))
	p.ParseProgram()
	for _, e := range p.Errors() {
		if e.Code == diagnostics.ErrP001 {
			return
		}
	}
	t.Fatalf("expected a syntax error, got none\ninput: %s", input)
}

func TestParse_FunctionDeclaration(t *testing.T) {
	prog := parseProgram(t, `fun add = x:Int, y:Int -> Int { x + y }`)
	if len(prog.Declarations) != 1 {
		t.Fatalf("declarations = %d, want 1", len(prog.Declarations))
	}
	fd, ok := prog.Declarations[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("declaration is %T, want *ast.FunctionDeclaration", prog.Declarations[0])
	}
	if fd.Name.Value != "add" {
		t.Errorf("name = %q, want add", fd.Name.Value)
	}
	if len(fd.Params) != 2 {
		t.Fatalf("params = %d, want 2", len(fd.Params))
	}
	if fd.Params[0].Name.Value != "x" || fd.Params[1].Name.Value != "y" {
		t.Errorf("param names = %q, %q", fd.Params[0].Name.Value, fd.Params[1].Name.Value)
	}
	if fd.ReturnType == nil {
		t.Error("return type missing")
	}
}

func TestParse_ZeroParamFunction(t *testing.T) {
	prog := parseProgram(t, `fun main = { 42 }`)
	fd := prog.Declarations[0].(*ast.FunctionDeclaration)
	if len(fd.Params) != 0 {
		t.Fatalf("params = %d, want 0", len(fd.Params))
	}
	if fd.ReturnType != nil {
		t.Error("return type should be nil when unannotated")
	}
}

func TestParse_OSVCall(t *testing.T) {
	prog := parseProgram(t, `val r = (5, 10) add`)
	bd := prog.Declarations[0].(*ast.BindingDeclaration)
	call, ok := bd.Value.(*ast.CallExpression)
	if !ok {
		t.Fatalf("value is %T, want *ast.CallExpression", bd.Value)
	}
	if len(call.Args) != 2 {
		t.Fatalf("args = %d, want 2", len(call.Args))
	}
	callee, ok := call.Callee.(*ast.Identifier)
	if !ok || callee.Value != "add" {
		t.Fatalf("callee = %v", call.Callee)
	}
}

func TestParse_MethodCall(t *testing.T) {
	prog := parseProgram(t, `val r = (p) Point.norm`)
	bd := prog.Declarations[0].(*ast.BindingDeclaration)
	call := bd.Value.(*ast.CallExpression)
	member, ok := call.Callee.(*ast.MemberExpression)
	if !ok {
		t.Fatalf("callee is %T, want *ast.MemberExpression", call.Callee)
	}
	if member.Member.Value != "norm" {
		t.Errorf("member = %q, want norm", member.Member.Value)
	}
}

func TestParse_GroupedExpressionIsNotACall(t *testing.T) {
	prog := parseProgram(t, `val r = (1 + 2) * 3`)
	bd := prog.Declarations[0].(*ast.BindingDeclaration)
	bin, ok := bd.Value.(*ast.BinaryExpression)
	if !ok || bin.Operator != "*" {
		t.Fatalf("value = %T, want * binary", bd.Value)
	}
}

func TestParse_TupleWithoutCalleeFails(t *testing.T) {
	expectParseError(t, `val r = (1, 2)`)
}

func TestParse_UnitLiteral(t *testing.T) {
	prog := parseProgram(t, `val u = ()`)
	bd := prog.Declarations[0].(*ast.BindingDeclaration)
	if _, ok := bd.Value.(*ast.UnitLiteral); !ok {
		t.Fatalf("value is %T, want *ast.UnitLiteral", bd.Value)
	}
}

func TestParse_Lambda(t *testing.T) {
	prog := parseProgram(t, `val f = |x: Int, y| x + y`)
	bd := prog.Declarations[0].(*ast.BindingDeclaration)
	lam, ok := bd.Value.(*ast.LambdaExpression)
	if !ok {
		t.Fatalf("value is %T, want *ast.LambdaExpression", bd.Value)
	}
	if len(lam.Params) != 2 {
		t.Fatalf("params = %d, want 2", len(lam.Params))
	}
	if lam.Params[0].TypeAnnotation == nil {
		t.Error("x should be annotated")
	}
	if lam.Params[1].TypeAnnotation != nil {
		t.Error("y should be unannotated")
	}
}

func TestParse_ZeroParamLambda(t *testing.T) {
	prog := parseProgram(t, `val f = || 42`)
	bd := prog.Declarations[0].(*ast.BindingDeclaration)
	lam, ok := bd.Value.(*ast.LambdaExpression)
	if !ok || len(lam.Params) != 0 {
		t.Fatalf("value = %T with %v", bd.Value, bd.Value)
	}
}

func TestParse_RecordDeclarationAndLiteral(t *testing.T) {
	prog := parseProgram(t, `
record Point { x: Int, y: Int }
val p = Point { x: 1, y: 2 }
`)
	rd := prog.Declarations[0].(*ast.RecordDeclaration)
	if rd.Frozen || rd.Name.Value != "Point" || len(rd.Fields) != 2 {
		t.Fatalf("record = %+v", rd)
	}
	bd := prog.Declarations[1].(*ast.BindingDeclaration)
	rl, ok := bd.Value.(*ast.RecordLiteral)
	if !ok || len(rl.Fields) != 2 {
		t.Fatalf("value = %T", bd.Value)
	}
}

func TestParse_FrozenRecord(t *testing.T) {
	prog := parseProgram(t, `frozen record Config { debug: Bool }`)
	rd := prog.Declarations[0].(*ast.RecordDeclaration)
	if !rd.Frozen {
		t.Fatal("record should be frozen")
	}
}

func TestParse_ImplDeclaration(t *testing.T) {
	prog := parseProgram(t, `
record Point { x: Int, y: Int }
impl Point {
	fun sum = p:Point -> Int { p.x + p.y }
}
`)
	id := prog.Declarations[1].(*ast.ImplDeclaration)
	if id.Target.Value != "Point" || len(id.Functions) != 1 {
		t.Fatalf("impl = %+v", id)
	}
}

func TestParse_MatchArms(t *testing.T) {
	prog := parseProgram(t, `
fun classify = o:Option<Int> -> Int {
	match o {
		Some(0) => 100,
		Some(n) => n,
		None => -1
	}
}
`)
	fd := prog.Declarations[0].(*ast.FunctionDeclaration)
	es := fd.Body.Statements[0].(*ast.ExpressionStatement)
	me := es.Expression.(*ast.MatchExpression)
	if len(me.Arms) != 3 {
		t.Fatalf("arms = %d, want 3", len(me.Arms))
	}
	some0 := me.Arms[0].Pattern.(*ast.SomePattern)
	if _, ok := some0.Inner.(*ast.LiteralPattern); !ok {
		t.Fatalf("first arm inner is %T, want literal", some0.Inner)
	}
	someN := me.Arms[1].Pattern.(*ast.SomePattern)
	if _, ok := someN.Inner.(*ast.BindPattern); !ok {
		t.Fatalf("second arm inner is %T, want bind", someN.Inner)
	}
	if _, ok := me.Arms[2].Pattern.(*ast.NonePattern); !ok {
		t.Fatalf("third arm is %T, want None", me.Arms[2].Pattern)
	}
}

func TestParse_ListPatterns(t *testing.T) {
	prog := parseProgram(t, `
fun first = xs:List<Int> -> Int {
	match xs {
		[] => 0,
		[h | _] => h
	}
}
`)
	fd := prog.Declarations[0].(*ast.FunctionDeclaration)
	me := fd.Body.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.MatchExpression)
	if _, ok := me.Arms[0].Pattern.(*ast.EmptyListPattern); !ok {
		t.Fatalf("first arm is %T", me.Arms[0].Pattern)
	}
	cons, ok := me.Arms[1].Pattern.(*ast.ConsPattern)
	if !ok {
		t.Fatalf("second arm is %T", me.Arms[1].Pattern)
	}
	if _, ok := cons.Tail.(*ast.WildcardPattern); !ok {
		t.Fatalf("tail is %T, want wildcard", cons.Tail)
	}
}

func TestParse_ArenaAndClone(t *testing.T) {
	prog := parseProgram(t, `
fun work = xs:List<Int> -> Int {
	with Arena {
		val ys = clone xs
		0
	}
}
`)
	fd := prog.Declarations[0].(*ast.FunctionDeclaration)
	ae, ok := fd.Body.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.ArenaExpression)
	if !ok {
		t.Fatalf("statement is %T, want arena", fd.Body.Statements[0])
	}
	bd := ae.Body.Statements[0].(*ast.BindingDeclaration)
	if _, ok := bd.Value.(*ast.CloneExpression); !ok {
		t.Fatalf("value is %T, want clone", bd.Value)
	}
}

func TestParse_WithRequiresArena(t *testing.T) {
	expectParseError(t, `fun f = { with Pool { 1 } }`)
}

func TestParse_TypeAnnotations(t *testing.T) {
	prog := parseProgram(t, `
val a: List<Int> = []
val b: Array<Int, 4> = [0, 0, 0, 0]
val c: (Int, Int) -> Int = |x, y| x + y
`)
	a := prog.Declarations[0].(*ast.BindingDeclaration).TypeAnnotation.(*ast.NamedType)
	if a.Name != "List" || len(a.Args) != 1 {
		t.Fatalf("a type = %+v", a)
	}
	b := prog.Declarations[1].(*ast.BindingDeclaration).TypeAnnotation.(*ast.NamedType)
	if b.Name != "Array" || !b.HasSize || b.Size != 4 {
		t.Fatalf("b type = %+v", b)
	}
	c := prog.Declarations[2].(*ast.BindingDeclaration).TypeAnnotation.(*ast.FunctionType)
	if len(c.Params) != 2 {
		t.Fatalf("c type = %+v", c)
	}
}

func TestParse_OperatorPrecedence(t *testing.T) {
	prog := parseProgram(t, `val r = 1 + 2 * 3 == 7 && true`)
	bd := prog.Declarations[0].(*ast.BindingDeclaration)
	top := bd.Value.(*ast.BinaryExpression)
	if top.Operator != "&&" {
		t.Fatalf("top operator = %q, want &&", top.Operator)
	}
	eq := top.Left.(*ast.BinaryExpression)
	if eq.Operator != "==" {
		t.Fatalf("left operator = %q, want ==", eq.Operator)
	}
}

func TestParse_RecoversAtDeclarationBoundary(t *testing.T) {
	p := parser.New(lexer.New("} garbage\nfun ok = { 1 }"))
	prog := p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected errors from the garbage prefix")
	}
	for _, d := range prog.Declarations {
		if fd, ok := d.(*ast.FunctionDeclaration); ok && fd.Name.Value == "ok" {
			return
		}
	}
	t.Fatal("parser did not recover to parse the following declaration")
}
