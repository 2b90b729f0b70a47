package codegen

import (
	"github.com/ril-lang/ril/internal/pipeline"
)

type CodeGenProcessor struct {
	Opts Options
}

func (gp *CodeGenProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Typed == nil || ctx.Failed() {
		return ctx
	}
	out, err := New(ctx.Typed, gp.Opts).Generate()
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	ctx.Output = out
	return ctx
}
