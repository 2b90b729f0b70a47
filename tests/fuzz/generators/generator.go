// Package generators synthesizes source programs from fuzz data. The
// generator is deterministic in its input bytes, so the fuzzer can
// minimize crashing programs.
package generators

import (
	"fmt"
	"strings"
)

// Generator builds syntactically plausible programs from a byte stream.
type Generator struct {
	data []byte
	pos  int
}

func NewFromData(data []byte) *Generator {
	return &Generator{data: data}
}

func (g *Generator) next() byte {
	if len(g.data) == 0 {
		return 0
	}
	b := g.data[g.pos%len(g.data)]
	g.pos++
	return b
}

func (g *Generator) intLit() int {
	return int(g.next()) - 128
}

const maxDecls = 6

// GenerateProgram produces one complete program. Output is valid
// surface syntax most of the time; the byte stream steers declaration
// kinds, arities and literals.
func (g *Generator) GenerateProgram() string {
	var sb strings.Builder
	n := int(g.next())%maxDecls + 1
	for i := 0; i < n; i++ {
		switch g.next() % 5 {
		case 0:
			fmt.Fprintf(&sb, "val v%d = %d\n", i, g.intLit())
		case 1:
			fmt.Fprintf(&sb, "mut m%d = %d\n", i, g.intLit())
		case 2:
			fmt.Fprintf(&sb, "fun f%d = a:Int, b:Int -> Int { a %s b }\n",
				i, g.binaryOp())
		case 3:
			fmt.Fprintf(&sb, "record R%d { x: Int, y: Int }\n", i)
		case 4:
			fmt.Fprintf(&sb, `fun g%d = o:Option<Int> -> Int {
	match o {
		Some(v) => v %s %d,
		None => %d
	}
}
`, i, g.binaryOp(), g.intLit(), g.intLit())
		}
	}
	sb.WriteString("fun main = { (0) exit }\n")
	return sb.String()
}

func (g *Generator) binaryOp() string {
	ops := []string{"+", "-", "*", "/", "%"}
	return ops[int(g.next())%len(ops)]
}
