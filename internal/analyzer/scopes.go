package analyzer

import (
	"github.com/ril-lang/ril/internal/typesystem"
)

// binding is one lexical binding with its affine state. consumed flips
// to true the moment a non-mutable binding is read; mutable bindings
// never set it.
type binding struct {
	name     string
	typ      typesystem.Type
	mutable  bool
	consumed bool
}

type scope struct {
	bindings map[string]*binding
}

func (a *Analyzer) pushScope() {
	a.scopes = append(a.scopes, &scope{bindings: make(map[string]*binding)})
}

func (a *Analyzer) popScope() {
	a.scopes = a.scopes[:len(a.scopes)-1]
}

func (a *Analyzer) define(name string, typ typesystem.Type, mutable bool) *binding {
	b := &binding{name: name, typ: typ, mutable: mutable}
	a.scopes[len(a.scopes)-1].bindings[name] = b
	return b
}

// resolve finds a binding and the scope index it lives at. The index
// lets lambda checking decide whether a read crosses a capture boundary.
func (a *Analyzer) resolve(name string) (*binding, int) {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if b, ok := a.scopes[i].bindings[name]; ok {
			return b, i
		}
	}
	return nil, -1
}

// snapshotConsumed records the consumed flag of every visible binding.
// Branching constructs check each branch from the same snapshot and
// merge afterwards, so a value may be consumed on parallel paths but
// never twice on one path.
func (a *Analyzer) snapshotConsumed() map[*binding]bool {
	snap := make(map[*binding]bool)
	for _, s := range a.scopes {
		for _, b := range s.bindings {
			snap[b] = b.consumed
		}
	}
	return snap
}

func (a *Analyzer) restoreConsumed(snap map[*binding]bool) {
	for b, c := range snap {
		b.consumed = c
	}
}

// mergeConsumed ORs a branch outcome into the running merge: a binding
// consumed on any path is consumed after the construct.
func mergeConsumed(merged, branch map[*binding]bool) {
	for b, c := range branch {
		if c {
			merged[b] = true
		}
	}
}

// captureConsumed reads the current flags into a fresh map, for use as
// a branch outcome.
func (a *Analyzer) captureConsumed() map[*binding]bool {
	return a.snapshotConsumed()
}
