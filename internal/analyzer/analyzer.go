// Package analyzer implements the type checker: affine usage tracking,
// bidirectional type inference and pattern exhaustiveness checking.
//
// Checking runs in two passes. The first registers every top-level
// function signature, record shape and context shape without touching
// bodies, which permits forward references and mutual recursion. The
// second checks each body against its registered signature. The first
// error aborts the stage; no partial typed tree is ever returned.
package analyzer

import (
	"github.com/ril-lang/ril/internal/ast"
	"github.com/ril-lang/ril/internal/diagnostics"
	"github.com/ril-lang/ril/internal/typed"
	"github.com/ril-lang/ril/internal/typesystem"
)

// Analyzer performs semantic analysis on the AST.
type Analyzer struct {
	records   map[string]typesystem.TRecord
	contexts  map[string]typesystem.TRecord
	functions map[string]typesystem.TFunc
	// inferred marks functions whose unannotated return type has been
	// resolved by checking their body.
	inferred map[string]bool

	scopes    []*scope
	funcStack []*funcCtx
	retType   typesystem.Type // declared return type of the body being checked
}

// funcCtx tracks one lambda nesting level so identifier reads below the
// boundary are recorded as captures.
type funcCtx struct {
	boundary int // index of the first scope owned by the lambda
	captures []typed.Capture
	seen     map[string]bool
}

// Builtin host functions available to every program. The generator
// lowers them to the module's two host imports.
var builtins = map[string]typesystem.TFunc{
	"print": {Params: []typesystem.Type{typesystem.String}, ReturnType: typesystem.Unit},
	"exit":  {Params: []typesystem.Type{typesystem.Int}, ReturnType: typesystem.Unit},
}

func New() *Analyzer {
	return &Analyzer{
		records:   make(map[string]typesystem.TRecord),
		contexts:  make(map[string]typesystem.TRecord),
		functions: make(map[string]typesystem.TFunc),
		inferred:  make(map[string]bool),
	}
}

// CheckProgram type-checks the whole program and returns the typed tree,
// or the first error encountered.
func CheckProgram(prog *ast.Program) (*typed.Program, *diagnostics.DiagnosticError) {
	a := New()
	if err := a.registerDeclarations(prog); err != nil {
		return nil, err
	}
	return a.checkBodies(prog)
}

// registerDeclarations is pass one: record names first (so fields may
// reference records declared later), then field shapes and function
// signatures.
func (a *Analyzer) registerDeclarations(prog *ast.Program) *diagnostics.DiagnosticError {
	for _, decl := range prog.Declarations {
		switch d := decl.(type) {
		case *ast.RecordDeclaration:
			if _, ok := a.records[d.Name.Value]; ok {
				return diagnostics.NewError(diagnostics.ErrT003, d.GetToken(),
					"record %s declared twice", d.Name.Value)
			}
			a.records[d.Name.Value] = typesystem.TRecord{Name: d.Name.Value, Frozen: d.Frozen}
		case *ast.ContextDeclaration:
			if _, ok := a.contexts[d.Name.Value]; ok {
				return diagnostics.NewError(diagnostics.ErrT003, d.GetToken(),
					"context %s declared twice", d.Name.Value)
			}
			a.contexts[d.Name.Value] = typesystem.TRecord{Name: d.Name.Value}
		}
	}

	for _, decl := range prog.Declarations {
		switch d := decl.(type) {
		case *ast.RecordDeclaration:
			fields, err := a.resolveFieldDecls(d.Fields)
			if err != nil {
				return err
			}
			rec := a.records[d.Name.Value]
			rec.Fields = fields
			a.records[d.Name.Value] = rec
		case *ast.ContextDeclaration:
			fields, err := a.resolveFieldDecls(d.Fields)
			if err != nil {
				return err
			}
			ctx := a.contexts[d.Name.Value]
			ctx.Fields = fields
			a.contexts[d.Name.Value] = ctx
		}
	}

	for _, decl := range prog.Declarations {
		switch d := decl.(type) {
		case *ast.FunctionDeclaration:
			if err := a.registerFunction("", d); err != nil {
				return err
			}
		case *ast.ImplDeclaration:
			if _, ok := a.records[d.Target.Value]; !ok {
				return diagnostics.NewError(diagnostics.ErrT003, d.GetToken(),
					"impl target %s is not a declared record", d.Target.Value)
			}
			for _, fn := range d.Functions {
				if err := a.registerFunction(d.Target.Value+".", fn); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// registerFunction records a signature in the global table. An
// unannotated return type stays nil until the body is checked; calling
// such a function before its body has been checked requires an explicit
// annotation.
func (a *Analyzer) registerFunction(prefix string, d *ast.FunctionDeclaration) *diagnostics.DiagnosticError {
	name := prefix + d.Name.Value
	if _, ok := a.functions[name]; ok {
		return diagnostics.NewError(diagnostics.ErrT003, d.GetToken(),
			"function %s declared twice", name)
	}
	if _, ok := builtins[name]; ok {
		return diagnostics.NewError(diagnostics.ErrT003, d.GetToken(),
			"function %s shadows a builtin", name)
	}

	sig := typesystem.TFunc{}
	for _, param := range d.Params {
		pt, err := a.resolveType(param.TypeAnnotation)
		if err != nil {
			return err
		}
		sig.Params = append(sig.Params, pt)
	}
	if d.ReturnType != nil {
		rt, err := a.resolveType(d.ReturnType)
		if err != nil {
			return err
		}
		sig.ReturnType = rt
		a.inferred[name] = true
	}
	a.functions[name] = sig
	return nil
}

// checkBodies is pass two: function bodies in declaration order, then
// top-level bindings into the program's global list.
func (a *Analyzer) checkBodies(prog *ast.Program) (*typed.Program, *diagnostics.DiagnosticError) {
	out := &typed.Program{}

	for _, rec := range a.records {
		out.Records = append(out.Records, rec)
	}
	for _, ctx := range a.contexts {
		out.Contexts = append(out.Contexts, ctx)
	}

	a.pushScope()
	defer a.popScope()

	for _, decl := range prog.Declarations {
		switch d := decl.(type) {
		case *ast.FunctionDeclaration:
			fn, err := a.checkFunction("", d)
			if err != nil {
				return nil, err
			}
			out.Functions = append(out.Functions, fn)
		case *ast.ImplDeclaration:
			for _, f := range d.Functions {
				fn, err := a.checkFunction(d.Target.Value+".", f)
				if err != nil {
					return nil, err
				}
				out.Functions = append(out.Functions, fn)
			}
		case *ast.BindingDeclaration:
			let, err := a.checkBinding(d)
			if err != nil {
				return nil, err
			}
			out.Globals = append(out.Globals, let)
		}
	}
	return out, nil
}

// checkFunction checks one body against its registered signature and,
// for unannotated functions, completes the signature with the body's type.
func (a *Analyzer) checkFunction(prefix string, d *ast.FunctionDeclaration) (*typed.Function, *diagnostics.DiagnosticError) {
	name := prefix + d.Name.Value
	sig := a.functions[name]

	a.pushScope()
	defer a.popScope()

	fn := &typed.Function{Token: d.GetToken(), Name: name}
	for i, param := range d.Params {
		pt := sig.Params[i]
		a.define(param.Name.Value, pt, false)
		fn.Params = append(fn.Params, typed.Param{Name: param.Name.Value, Typ: pt})
	}

	prevRet := a.retType
	a.retType = sig.ReturnType
	defer func() { a.retType = prevRet }()

	body, err := a.checkBlock(d.Body, sig.ReturnType)
	if err != nil {
		return nil, err
	}

	if sig.ReturnType == nil {
		sig.ReturnType = body.Typ
		a.functions[name] = sig
		a.inferred[name] = true
	} else if !typesystem.Equals(body.Typ, sig.ReturnType) && !blockAlwaysReturns(d.Body) {
		return nil, diagnostics.NewError(diagnostics.ErrT003, d.GetToken(),
			"function %s: expected return type %s, found %s", name, sig.ReturnType, body.Typ)
	}

	fn.ReturnType = sig.ReturnType
	fn.Body = body
	return fn, nil
}

// blockAlwaysReturns reports whether every path through the block ends
// in an explicit ret, in which case the block's own tail type is moot.
func blockAlwaysReturns(b *ast.BlockExpression) bool {
	if len(b.Statements) == 0 {
		return false
	}
	last := b.Statements[len(b.Statements)-1]
	_, ok := last.(*ast.ReturnStatement)
	return ok
}

// lookupFunction resolves a callable name: builtins first, then the
// signature table.
func (a *Analyzer) lookupFunction(name string) (typesystem.TFunc, bool) {
	if sig, ok := builtins[name]; ok {
		return sig, true
	}
	sig, ok := a.functions[name]
	return sig, ok
}
