package codegen

import (
	"fmt"
	"strings"
)

// watBuilder accumulates WebAssembly text with indentation.
type watBuilder struct {
	sb     strings.Builder
	indent int
}

func (w *watBuilder) line(s string) {
	for i := 0; i < w.indent; i++ {
		w.sb.WriteString("  ")
	}
	w.sb.WriteString(s)
	w.sb.WriteByte('\n')
}

func (w *watBuilder) linef(format string, args ...interface{}) {
	w.line(fmt.Sprintf(format, args...))
}

// append copies another builder's lines at the current indent level.
func (w *watBuilder) append(other *watBuilder) {
	for _, ln := range strings.Split(strings.TrimRight(other.sb.String(), "\n"), "\n") {
		if ln == "" {
			continue
		}
		w.line(ln)
	}
}

func (w *watBuilder) String() string {
	return w.sb.String()
}
