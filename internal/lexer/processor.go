package lexer

import (
	"github.com/ril-lang/ril/internal/pipeline"
	"github.com/ril-lang/ril/internal/token"
)

type LexerProcessor struct{}

// Process tokenizes the source into the context. The parser stage runs
// its own lexer; the token slice here exists for token dumps and tools.
func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	l := New(ctx.Source)
	for {
		tok := l.NextToken()
		ctx.Tokens = append(ctx.Tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return ctx
}
