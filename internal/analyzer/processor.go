package analyzer

import (
	"github.com/ril-lang/ril/internal/pipeline"
)

type CheckerProcessor struct{}

// Process type-checks the parsed program. Checking is skipped when the
// parse already failed; generation only sees a clean typed tree.
func (cp *CheckerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || ctx.Failed() {
		return ctx
	}
	prog, err := CheckProgram(ctx.AstRoot)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	ctx.Typed = prog
	return ctx
}
