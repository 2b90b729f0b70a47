package targets

import (
	"strings"
	"testing"

	"github.com/ril-lang/ril/internal/analyzer"
	"github.com/ril-lang/ril/internal/codegen"
	"github.com/ril-lang/ril/internal/lexer"
	"github.com/ril-lang/ril/internal/parser"
	"github.com/ril-lang/ril/tests/fuzz/generators"
)

// FuzzCompiler drives generated programs through the whole compiler.
// Diagnostics are a fine outcome for mangled input; panics and
// non-module output for accepted input are not.
func FuzzCompiler(f *testing.F) {
	f.Add([]byte(`fun main = { ("hello") print }`))
	f.Add([]byte("val x = 1 + 2"))
	f.Add([]byte("fun add = a:Int, b:Int -> Int { a + b }"))

	f.Fuzz(func(t *testing.T, data []byte) {
		input := generators.NewFromData(data).GenerateProgram()

		p := parser.New(lexer.New(input))
		program := p.ParseProgram()
		if len(p.Errors()) > 0 {
			return
		}

		tp, err := analyzer.CheckProgram(program)
		if err != nil {
			return
		}

		out, gerr := codegen.New(tp, codegen.Options{}).Generate()
		if gerr != nil {
			return
		}
		if !strings.HasPrefix(out, "(module") {
			t.Fatalf("accepted program produced non-module output:\n%s\nsource:\n%s", out, input)
		}
	})
}

// FuzzParser feeds raw bytes straight at the front end: whatever the
// lexer and parser make of it, they must not panic.
func FuzzParser(f *testing.F) {
	f.Add("fun main = { (0) exit }")
	f.Add("match x { Some(")
	f.Add("val \x00\xff = |")

	f.Fuzz(func(t *testing.T, input string) {
		p := parser.New(lexer.New(input))
		p.ParseProgram()
	})
}
