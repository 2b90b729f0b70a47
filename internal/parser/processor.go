package parser

import (
	"github.com/ril-lang/ril/internal/lexer"
	"github.com/ril-lang/ril/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	p := New(lexer.New(ctx.Source))
	prog := p.ParseProgram()
	prog.File = ctx.FilePath
	ctx.AstRoot = prog
	for _, err := range p.Errors() {
		ctx.AddError(err)
	}
	return ctx
}
