package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ril-lang/ril/internal/token"
)

func TestDiagnosticError_Format(t *testing.T) {
	err := NewError(ErrT004, token.Token{Line: 3, Column: 7}, "%s", "xs")
	got := err.Error()
	want := "3:7: [T004] affine violation: xs"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestDiagnosticError_IncludesFile(t *testing.T) {
	err := NewError(ErrP001, token.Token{Line: 1, Column: 2}, "unexpected token")
	err.File = "main.rl"
	if !strings.HasPrefix(err.Error(), "main.rl:1:2:") {
		t.Errorf("Error() = %q, want a main.rl:1:2: prefix", err.Error())
	}
}

func TestRenderer_PlainOnNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.RenderAll([]*DiagnosticError{
		NewError(ErrT001, token.Token{Line: 1, Column: 1}, "x"),
		NewError(ErrT002, token.Token{Line: 2, Column: 1}, "f"),
	})
	out := buf.String()
	if strings.Contains(out, "\033[") {
		t.Errorf("non-terminal output should not be colorized: %q", out)
	}
	if lines := strings.Count(out, "\n"); lines != 2 {
		t.Errorf("rendered %d lines, want 2:\n%s", lines, out)
	}
	if !strings.Contains(out, "[T001]") || !strings.Contains(out, "[T002]") {
		t.Errorf("missing codes in output:\n%s", out)
	}
}

func TestErrorCode_Title(t *testing.T) {
	if ErrT007.Title() != "non-exhaustive match" {
		t.Errorf("Title = %q", ErrT007.Title())
	}
	if ErrorCode("Z999").Title() != "Z999" {
		t.Errorf("unknown code Title = %q", ErrorCode("Z999").Title())
	}
}
