package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiRed   = "\033[31m"
	ansiBold  = "\033[1m"
	ansiReset = "\033[0m"
)

// Renderer writes diagnostics to a stream, colorized when the stream is
// a terminal.
type Renderer struct {
	out   io.Writer
	color bool
}

// NewRenderer builds a renderer for w. Color is enabled only when w is
// os.Stderr or os.Stdout attached to a terminal.
func NewRenderer(w io.Writer) *Renderer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Renderer{out: w, color: color}
}

// Render writes one diagnostic as "file:line:col: [CODE] title: message".
func (r *Renderer) Render(e *DiagnosticError) {
	if r.color {
		pos := fmt.Sprintf("%d:%d", e.Token.Line, e.Token.Column)
		if e.File != "" {
			pos = e.File + ":" + pos
		}
		fmt.Fprintf(r.out, "%s%s:%s %s[%s] %s%s: %s\n",
			ansiBold, pos, ansiReset, ansiRed, e.Code, e.Code.Title(), ansiReset, e.Message)
		return
	}
	fmt.Fprintln(r.out, e.Error())
}

// RenderAll writes every diagnostic in order.
func (r *Renderer) RenderAll(errs []*DiagnosticError) {
	for _, e := range errs {
		r.Render(e)
	}
}
