// Package cli implements the ril command surface: compile, --check,
// --ast, --tokens. All user-visible diagnostics flow through the
// diagnostics renderer.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ril-lang/ril/internal/analyzer"
	"github.com/ril-lang/ril/internal/ast"
	"github.com/ril-lang/ril/internal/cache"
	"github.com/ril-lang/ril/internal/codegen"
	"github.com/ril-lang/ril/internal/config"
	"github.com/ril-lang/ril/internal/diagnostics"
	"github.com/ril-lang/ril/internal/lexer"
	"github.com/ril-lang/ril/internal/parser"
	"github.com/ril-lang/ril/internal/pipeline"
	"github.com/ril-lang/ril/internal/token"
)

const usage = `Usage:
  ril compile <input.rl> [output.wat]   compile to module text
  ril --check <input.rl>                type-check only
  ril --ast <input.rl>                  print the parsed tree
  ril --tokens <input.rl>               print the token stream
  ril --help                            show this help

Configuration is read from ril.yaml next to the input, when present.
`

// Run executes the CLI and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 1
	}
	switch args[0] {
	case "--help", "-help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	case "--check":
		if len(args) < 2 {
			fmt.Fprint(stderr, usage)
			return 1
		}
		return runCheck(args[1], stderr)
	case "--ast":
		if len(args) < 2 {
			fmt.Fprint(stderr, usage)
			return 1
		}
		return runAst(args[1], stdout, stderr)
	case "--tokens":
		if len(args) < 2 {
			fmt.Fprint(stderr, usage)
			return 1
		}
		return runTokens(args[1], stdout, stderr)
	case "compile":
		if len(args) < 2 {
			fmt.Fprint(stderr, usage)
			return 1
		}
		output := ""
		if len(args) > 2 {
			output = args[2]
		}
		return runCompile(args[1], output, stderr)
	}
	if isSourceFile(args[0]) {
		output := ""
		if len(args) > 1 {
			output = args[1]
		}
		return runCompile(args[0], output, stderr)
	}
	fmt.Fprintf(stderr, "ril: unknown command %q\n\n%s", args[0], usage)
	return 1
}

// isSourceFile checks if a file has a recognized source extension
func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func readSource(path string, stderr io.Writer) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "ril: %v\n", err)
		return "", false
	}
	return string(data), true
}

func runCompile(input, output string, stderr io.Writer) int {
	source, ok := readSource(input, stderr)
	if !ok {
		return 1
	}
	dir := filepath.Dir(input)
	cfg, err := config.Load(dir)
	if err != nil {
		fmt.Fprintf(stderr, "ril: %v\n", err)
		return 1
	}
	if output == "" {
		output = cfg.Output
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + config.OutputFileExt
	}

	var store *cache.Store
	key := cache.Key(source, cfg.MemoryPages)
	if cfg.Cache.Enabled {
		store, err = cache.Open(filepath.Join(dir, cfg.Cache.Path))
		if err != nil {
			fmt.Fprintf(stderr, "ril: %v\n", err)
		} else {
			defer store.Close()
			if cached, hit, err := store.Get(key); err == nil && hit {
				return writeOutput(output, cached, stderr)
			}
		}
	}

	ctx := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.CheckerProcessor{},
		&codegen.CodeGenProcessor{Opts: codegen.Options{MemoryPages: cfg.MemoryPages}},
	).Run(pipeline.NewContext(input, source))
	if ctx.Failed() {
		diagnostics.NewRenderer(stderr).RenderAll(ctx.Errors)
		return 1
	}
	if store != nil {
		if err := store.Put(key, ctx.Output); err != nil {
			fmt.Fprintf(stderr, "ril: %v\n", err)
		}
	}
	return writeOutput(output, ctx.Output, stderr)
}

func writeOutput(path, text string, stderr io.Writer) int {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		fmt.Fprintf(stderr, "ril: %v\n", err)
		return 1
	}
	return 0
}

func runCheck(input string, stderr io.Writer) int {
	source, ok := readSource(input, stderr)
	if !ok {
		return 1
	}
	ctx := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.CheckerProcessor{},
	).Run(pipeline.NewContext(input, source))
	if ctx.Failed() {
		diagnostics.NewRenderer(stderr).RenderAll(ctx.Errors)
		return 1
	}
	return 0
}

func runAst(input string, stdout, stderr io.Writer) int {
	source, ok := readSource(input, stderr)
	if !ok {
		return 1
	}
	ctx := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
	).Run(pipeline.NewContext(input, source))
	if ctx.Failed() {
		diagnostics.NewRenderer(stderr).RenderAll(ctx.Errors)
		return 1
	}
	fmt.Fprint(stdout, ast.Dump(ctx.AstRoot))
	return 0
}

func runTokens(input string, stdout, stderr io.Writer) int {
	source, ok := readSource(input, stderr)
	if !ok {
		return 1
	}
	ctx := pipeline.New(&lexer.LexerProcessor{}).Run(pipeline.NewContext(input, source))
	for _, tok := range ctx.Tokens {
		if tok.Type == token.EOF {
			break
		}
		fmt.Fprintf(stdout, "%d:%d\t%s\t%q\n", tok.Line, tok.Column, tok.Type, tok.Lexeme)
	}
	return 0
}
