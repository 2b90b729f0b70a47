package ast

import (
	"fmt"
	"strings"
)

// Dump renders the tree as an indented outline, one node per line with
// its source position. Used by the --ast flag.
func Dump(p *Program) string {
	d := &dumper{}
	d.linef(0, "Program %s", p.File)
	for _, decl := range p.Declarations {
		d.dumpStmt(1, decl)
	}
	return d.sb.String()
}

type dumper struct {
	sb strings.Builder
}

func (d *dumper) linef(depth int, format string, args ...interface{}) {
	d.sb.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(&d.sb, format, args...)
	d.sb.WriteByte('\n')
}

func (d *dumper) dumpStmt(depth int, s Statement) {
	switch st := s.(type) {
	case *FunctionDeclaration:
		params := make([]string, len(st.Params))
		for i, p := range st.Params {
			params[i] = p.Name.Value
			if p.TypeAnnotation != nil {
				params[i] += ":" + typeString(p.TypeAnnotation)
			}
		}
		ret := ""
		if st.ReturnType != nil {
			ret = " -> " + typeString(st.ReturnType)
		}
		d.linef(depth, "Fun %s(%s)%s %s", st.Name.Value, strings.Join(params, ", "), ret, pos(st))
		d.dumpExpr(depth+1, st.Body)
	case *BindingDeclaration:
		kind := "Val"
		if st.Mutable {
			kind = "Mut"
		}
		ann := ""
		if st.TypeAnnotation != nil {
			ann = ": " + typeString(st.TypeAnnotation)
		}
		d.linef(depth, "%s %s%s %s", kind, st.Name.Value, ann, pos(st))
		d.dumpExpr(depth+1, st.Value)
	case *RecordDeclaration:
		kind := "Record"
		if st.Frozen {
			kind = "FrozenRecord"
		}
		d.linef(depth, "%s %s %s", kind, st.Name.Value, pos(st))
		for _, f := range st.Fields {
			d.linef(depth+1, "Field %s: %s", f.Name.Value, typeString(f.TypeAnnotation))
		}
	case *ContextDeclaration:
		d.linef(depth, "Context %s %s", st.Name.Value, pos(st))
		for _, f := range st.Fields {
			d.linef(depth+1, "Field %s: %s", f.Name.Value, typeString(f.TypeAnnotation))
		}
	case *ImplDeclaration:
		d.linef(depth, "Impl %s %s", st.Target.Value, pos(st))
		for _, fn := range st.Functions {
			d.dumpStmt(depth+1, fn)
		}
	case *AssignStatement:
		d.linef(depth, "Assign %s %s", st.Name.Value, pos(st))
		d.dumpExpr(depth+1, st.Value)
	case *ReturnStatement:
		d.linef(depth, "Ret %s", pos(st))
		if st.Value != nil {
			d.dumpExpr(depth+1, st.Value)
		}
	case *ExpressionStatement:
		d.dumpExpr(depth, st.Expression)
	default:
		d.linef(depth, "%T %s", s, pos(s))
	}
}

func (d *dumper) dumpExpr(depth int, e Expression) {
	switch ex := e.(type) {
	case *Identifier:
		d.linef(depth, "Ident %s %s", ex.Value, pos(ex))
	case *IntegerLiteral:
		d.linef(depth, "Int %d %s", ex.Value, pos(ex))
	case *FloatLiteral:
		d.linef(depth, "Float %v %s", ex.Value, pos(ex))
	case *BooleanLiteral:
		d.linef(depth, "Bool %v %s", ex.Value, pos(ex))
	case *StringLiteral:
		d.linef(depth, "String %q %s", ex.Value, pos(ex))
	case *CharLiteral:
		d.linef(depth, "Char %q %s", ex.Value, pos(ex))
	case *UnitLiteral:
		d.linef(depth, "Unit %s", pos(ex))
	case *ListLiteral:
		d.linef(depth, "List %s", pos(ex))
		for _, el := range ex.Elements {
			d.dumpExpr(depth+1, el)
		}
	case *RecordLiteral:
		d.linef(depth, "RecordLit %s %s", ex.Name.Value, pos(ex))
		for _, f := range ex.Fields {
			d.linef(depth+1, "Field %s", f.Name.Value)
			d.dumpExpr(depth+2, f.Value)
		}
	case *SomeExpression:
		d.linef(depth, "Some %s", pos(ex))
		d.dumpExpr(depth+1, ex.Value)
	case *NoneExpression:
		d.linef(depth, "None %s", pos(ex))
	case *LambdaExpression:
		params := make([]string, len(ex.Params))
		for i, p := range ex.Params {
			params[i] = p.Name.Value
			if p.TypeAnnotation != nil {
				params[i] += ":" + typeString(p.TypeAnnotation)
			}
		}
		d.linef(depth, "Lambda |%s| %s", strings.Join(params, ", "), pos(ex))
		d.dumpExpr(depth+1, ex.Body)
	case *CallExpression:
		d.linef(depth, "Call %s", pos(ex))
		for _, a := range ex.Args {
			d.dumpExpr(depth+1, a)
		}
		d.linef(depth+1, "Callee")
		d.dumpExpr(depth+2, ex.Callee)
	case *BinaryExpression:
		d.linef(depth, "Binary %s %s", ex.Operator, pos(ex))
		d.dumpExpr(depth+1, ex.Left)
		d.dumpExpr(depth+1, ex.Right)
	case *UnaryExpression:
		d.linef(depth, "Unary %s %s", ex.Operator, pos(ex))
		d.dumpExpr(depth+1, ex.Operand)
	case *MemberExpression:
		d.linef(depth, "Member .%s %s", ex.Member.Value, pos(ex))
		d.dumpExpr(depth+1, ex.Left)
	case *BlockExpression:
		d.linef(depth, "Block %s", pos(ex))
		for _, s := range ex.Statements {
			d.dumpStmt(depth+1, s)
		}
	case *IfExpression:
		d.linef(depth, "If %s", pos(ex))
		d.dumpExpr(depth+1, ex.Condition)
		d.dumpExpr(depth+1, ex.Then)
		if ex.Else != nil {
			d.dumpExpr(depth+1, ex.Else)
		}
	case *MatchExpression:
		d.linef(depth, "Match %s", pos(ex))
		d.dumpExpr(depth+1, ex.Scrutinee)
		for _, arm := range ex.Arms {
			d.linef(depth+1, "Arm %s", patternString(arm.Pattern))
			d.dumpExpr(depth+2, arm.Body)
		}
	case *ArenaExpression:
		d.linef(depth, "Arena %s", pos(ex))
		d.dumpExpr(depth+1, ex.Body)
	case *CloneExpression:
		d.linef(depth, "Clone %s", pos(ex))
		d.dumpExpr(depth+1, ex.Operand)
	default:
		d.linef(depth, "%T %s", e, pos(e))
	}
}

func pos(n TokenProvider) string {
	t := n.GetToken()
	return fmt.Sprintf("@%d:%d", t.Line, t.Column)
}

func typeString(t Type) string {
	switch tt := t.(type) {
	case *NamedType:
		if len(tt.Args) == 0 && !tt.HasSize {
			return tt.Name
		}
		args := make([]string, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = typeString(a)
		}
		if tt.HasSize {
			args = append(args, fmt.Sprintf("%d", tt.Size))
		}
		return fmt.Sprintf("%s<%s>", tt.Name, strings.Join(args, ", "))
	case *FunctionType:
		params := make([]string, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = typeString(p)
		}
		return fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), typeString(tt.Return))
	}
	return "?"
}

func patternString(p Pattern) string {
	switch pt := p.(type) {
	case *WildcardPattern:
		return "_"
	case *BindPattern:
		return pt.Name.Value
	case *LiteralPattern:
		return pt.Token.Lexeme
	case *SomePattern:
		return "Some(" + patternString(pt.Inner) + ")"
	case *NonePattern:
		return "None"
	case *EmptyListPattern:
		return "[]"
	case *ConsPattern:
		return "[" + patternString(pt.Head) + " | " + patternString(pt.Tail) + "]"
	case *ExactListPattern:
		parts := make([]string, len(pt.Elements))
		for i, el := range pt.Elements {
			parts[i] = patternString(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *RecordPattern:
		parts := make([]string, len(pt.Fields))
		for i, f := range pt.Fields {
			parts[i] = f.Name.Value + ": " + patternString(f.Pattern)
		}
		return pt.Name.Value + " { " + strings.Join(parts, ", ") + " }"
	}
	return "?"
}
