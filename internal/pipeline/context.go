// Package pipeline wires the compiler stages together. Each stage is a
// Processor that reads and extends one PipelineContext; the context is
// the only channel between stages.
package pipeline

import (
	"github.com/google/uuid"

	"github.com/ril-lang/ril/internal/ast"
	"github.com/ril-lang/ril/internal/diagnostics"
	"github.com/ril-lang/ril/internal/token"
	"github.com/ril-lang/ril/internal/typed"
)

// PipelineContext carries one compilation through the stages.
type PipelineContext struct {
	// CompilationID tags log lines and diagnostics of one run.
	CompilationID string

	FilePath string
	Source   string

	// Tokens is filled by the lexer stage (kept for token dumps).
	Tokens []token.Token

	// AstRoot is filled by the parser stage.
	AstRoot *ast.Program

	// Typed is filled by the checker stage on a clean check.
	Typed *typed.Program

	// Output is the generated module text.
	Output string

	Errors []*diagnostics.DiagnosticError
}

// NewContext starts a compilation context for one source file.
func NewContext(filePath, source string) *PipelineContext {
	return &PipelineContext{
		CompilationID: uuid.NewString(),
		FilePath:      filePath,
		Source:        source,
	}
}

// Failed reports whether any stage has recorded an error.
func (ctx *PipelineContext) Failed() bool {
	return len(ctx.Errors) > 0
}

// AddError records a diagnostic, stamping the file path.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = ctx.FilePath
	}
	ctx.Errors = append(ctx.Errors, err)
}

// Processor is one compiler stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}
