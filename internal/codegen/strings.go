package codegen

import (
	"fmt"

	"github.com/ril-lang/ril/internal/typed"
)

// collectStrings walks the whole program before any code is emitted and
// interns every string literal at a fixed static address. A string
// value at runtime is the address of its 8-byte descriptor,
// [dataOffset:i32][length:i32], with the bytes following immediately.
// Equal literals share one descriptor, so string equality is address
// equality.
//
// Address 0 holds the static None cell; strings start after it. The
// heap base lands above the closure table-index range so closure values
// stay unambiguous.
func (g *Generator) collectStrings() {
	cursor := noneCellOffset + 8
	intern := func(s string) {
		if _, ok := g.strOffsets[s]; ok {
			return
		}
		g.strOffsets[s] = cursor
		g.strOrder = append(g.strOrder, s)
		cursor = align4(cursor + 8 + len(s))
	}
	var walkExpr func(e typed.Expr)
	var walkStmt func(s typed.Stmt)
	var walkPattern func(p typed.Pattern)
	walkBlock := func(b *typed.Block) {
		if b == nil {
			return
		}
		for _, s := range b.Stmts {
			walkStmt(s)
		}
	}
	walkExpr = func(e typed.Expr) {
		switch ex := e.(type) {
		case *typed.StringLit:
			intern(ex.Value)
		case *typed.ListLit:
			for _, el := range ex.Elems {
				walkExpr(el)
			}
		case *typed.RecordLit:
			for _, f := range ex.Fields {
				walkExpr(f)
			}
		case *typed.SomeLit:
			walkExpr(ex.Value)
		case *typed.Lambda:
			walkExpr(ex.Body)
		case *typed.Call:
			walkExpr(ex.Callee)
			for _, a := range ex.Args {
				walkExpr(a)
			}
		case *typed.Binary:
			walkExpr(ex.Left)
			walkExpr(ex.Right)
		case *typed.Unary:
			walkExpr(ex.Operand)
		case *typed.Member:
			walkExpr(ex.Left)
		case *typed.Block:
			walkBlock(ex)
		case *typed.If:
			walkExpr(ex.Condition)
			walkBlock(ex.Then)
			walkBlock(ex.Else)
		case *typed.Match:
			walkExpr(ex.Scrutinee)
			for _, arm := range ex.Arms {
				walkPattern(arm.Pattern)
				walkExpr(arm.Body)
			}
		case *typed.Arena:
			walkBlock(ex.Body)
		case *typed.Clone:
			walkExpr(ex.Operand)
		}
	}
	walkStmt = func(s typed.Stmt) {
		switch st := s.(type) {
		case *typed.Let:
			walkExpr(st.Value)
		case *typed.Assign:
			walkExpr(st.Value)
		case *typed.Return:
			if st.Value != nil {
				walkExpr(st.Value)
			}
		case *typed.ExprStmt:
			walkExpr(st.E)
		}
	}
	walkPattern = func(p typed.Pattern) {
		switch pt := p.(type) {
		case *typed.LiteralPat:
			walkExpr(pt.Value)
		case *typed.SomePat:
			walkPattern(pt.Inner)
		case *typed.ConsPat:
			walkPattern(pt.Head)
			walkPattern(pt.Tail)
		case *typed.ExactListPat:
			for _, el := range pt.Elems {
				walkPattern(el)
			}
		case *typed.RecordPat:
			for _, f := range pt.Fields {
				walkPattern(f.Pattern)
			}
		}
	}
	for _, fn := range g.prog.Functions {
		walkBlock(fn.Body)
	}
	for _, let := range g.prog.Globals {
		walkExpr(let.Value)
	}
	g.staticEnd = cursor
	g.heapBase = align8(cursor)
	if g.heapBase < closureTagBase {
		g.heapBase = closureTagBase
	}
}

// emitData writes the static data segments: the None cell, then one
// segment per interned string holding its descriptor and bytes.
func (g *Generator) emitData(m *watBuilder) {
	m.linef(`(data (i32.const %d) "\00\00\00\00\00\00\00\00")`, noneCellOffset)
	for _, s := range g.strOrder {
		desc := g.strOffsets[s]
		data := desc + 8
		payload := encodeI32(data) + encodeI32(len(s)) + escapeData([]byte(s))
		m.linef(`(data (i32.const %d) "%s")`, desc, payload)
	}
}

// encodeI32 renders a little-endian i32 as data-segment escapes.
func encodeI32(v int) string {
	return fmt.Sprintf(`\%02x\%02x\%02x\%02x`,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// escapeData renders bytes for a data-segment string: printable ASCII
// stays literal, everything else becomes a hex escape.
func escapeData(b []byte) string {
	out := ""
	for _, c := range b {
		switch {
		case c == '"' || c == '\\':
			out += `\` + string(c)
		case c >= 0x20 && c < 0x7f:
			out += string(c)
		default:
			out += fmt.Sprintf(`\%02x`, c)
		}
	}
	return out
}
