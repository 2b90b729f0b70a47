package pipeline_test

import (
	"testing"

	"github.com/ril-lang/ril/internal/diagnostics"
	"github.com/ril-lang/ril/internal/pipeline"
	"github.com/ril-lang/ril/internal/token"
)

type recordingProcessor struct {
	name string
	log  *[]string
	fail bool
}

func (p *recordingProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	*p.log = append(*p.log, p.name)
	if p.fail {
		ctx.AddError(diagnostics.NewError(diagnostics.ErrP001, token.Token{}, "boom"))
	}
	return ctx
}

func TestPipeline_RunsStagesInOrder(t *testing.T) {
	var log []string
	p := pipeline.New(
		&recordingProcessor{name: "a", log: &log},
		&recordingProcessor{name: "b", log: &log},
	)
	ctx := p.Run(pipeline.NewContext("x.rl", ""))
	if ctx.Failed() {
		t.Fatalf("unexpected failure: %v", ctx.Errors)
	}
	if len(log) != 2 || log[0] != "a" || log[1] != "b" {
		t.Fatalf("stage order = %v", log)
	}
}

func TestPipeline_LaterStagesStillRunAfterFailure(t *testing.T) {
	// Stages are responsible for skipping themselves; the pipeline
	// keeps going so multi-stage tools can collect diagnostics.
	var log []string
	p := pipeline.New(
		&recordingProcessor{name: "a", log: &log, fail: true},
		&recordingProcessor{name: "b", log: &log},
	)
	ctx := p.Run(pipeline.NewContext("x.rl", ""))
	if !ctx.Failed() {
		t.Fatal("expected failure")
	}
	if len(log) != 2 {
		t.Fatalf("stages run = %v, want both", log)
	}
}

func TestContext_AddErrorStampsFile(t *testing.T) {
	ctx := pipeline.NewContext("main.rl", "")
	ctx.AddError(diagnostics.NewError(diagnostics.ErrT001, token.Token{Line: 3, Column: 1}, "x"))
	if ctx.Errors[0].File != "main.rl" {
		t.Errorf("file = %q, want main.rl", ctx.Errors[0].File)
	}
}

func TestContext_HasCompilationID(t *testing.T) {
	a := pipeline.NewContext("x.rl", "")
	b := pipeline.NewContext("x.rl", "")
	if a.CompilationID == "" || a.CompilationID == b.CompilationID {
		t.Errorf("compilation IDs should be unique and non-empty: %q %q", a.CompilationID, b.CompilationID)
	}
}
