package analyzer

import (
	"github.com/ril-lang/ril/internal/ast"
	"github.com/ril-lang/ril/internal/diagnostics"
	"github.com/ril-lang/ril/internal/typesystem"
)

// resolveType turns a syntactic annotation into a semantic type, against
// the registered record and context shapes.
func (a *Analyzer) resolveType(t ast.Type) (typesystem.Type, *diagnostics.DiagnosticError) {
	switch tt := t.(type) {
	case *ast.NamedType:
		return a.resolveNamedType(tt)
	case *ast.FunctionType:
		fn := typesystem.TFunc{}
		for _, param := range tt.Params {
			pt, err := a.resolveType(param)
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, pt)
		}
		rt, err := a.resolveType(tt.Return)
		if err != nil {
			return nil, err
		}
		fn.ReturnType = rt
		return fn, nil
	}
	return nil, diagnostics.NewError(diagnostics.ErrT003, t.GetToken(), "unresolvable type annotation")
}

func (a *Analyzer) resolveNamedType(t *ast.NamedType) (typesystem.Type, *diagnostics.DiagnosticError) {
	switch t.Name {
	case "Int", "Float", "Bool", "String", "Char", "Unit":
		if len(t.Args) > 0 {
			return nil, diagnostics.NewError(diagnostics.ErrT003, t.GetToken(),
				"%s does not take type arguments", t.Name)
		}
		switch t.Name {
		case "Int":
			return typesystem.Int, nil
		case "Float":
			return typesystem.Float, nil
		case "Bool":
			return typesystem.Bool, nil
		case "String":
			return typesystem.String, nil
		case "Char":
			return typesystem.Char, nil
		default:
			return typesystem.Unit, nil
		}
	case "Option", "List":
		if len(t.Args) != 1 || t.HasSize {
			return nil, diagnostics.NewError(diagnostics.ErrT003, t.GetToken(),
				"%s takes exactly one type argument", t.Name)
		}
		elem, err := a.resolveType(t.Args[0])
		if err != nil {
			return nil, err
		}
		if t.Name == "Option" {
			return typesystem.TOption{Elem: elem}, nil
		}
		return typesystem.TList{Elem: elem}, nil
	case "Array":
		if len(t.Args) != 1 || !t.HasSize {
			return nil, diagnostics.NewError(diagnostics.ErrT003, t.GetToken(),
				"Array takes an element type and a size: Array<T, n>")
		}
		elem, err := a.resolveType(t.Args[0])
		if err != nil {
			return nil, err
		}
		return typesystem.TArray{Elem: elem, Size: t.Size}, nil
	}

	if rec, ok := a.records[t.Name]; ok {
		return rec, nil
	}
	if ctx, ok := a.contexts[t.Name]; ok {
		return ctx, nil
	}
	return nil, diagnostics.NewError(diagnostics.ErrT003, t.GetToken(), "unknown type %s", t.Name)
}

func (a *Analyzer) resolveFieldDecls(decls []*ast.FieldDecl) ([]typesystem.Field, *diagnostics.DiagnosticError) {
	var fields []typesystem.Field
	for _, fld := range decls {
		ft, err := a.resolveType(fld.TypeAnnotation)
		if err != nil {
			return nil, err
		}
		fields = append(fields, typesystem.Field{Name: fld.Name.Value, Type: ft})
	}
	return fields, nil
}
