package typesystem

import (
	"fmt"
	"strings"
)

// Type is the interface for all types in our system.
// The set of implementations is closed; the checker and the generator
// both switch exhaustively over it.
type Type interface {
	String() string
	typeNode()
}

// TCon represents a primitive type constant (Int, Float, Bool, ...).
type TCon struct {
	Name string
}

func (t TCon) String() string { return t.Name }
func (t TCon) typeNode()      {}

// The primitive types. Int is 32-bit, Float is 64-bit in the target.
var (
	Int    = TCon{Name: "Int"}
	Float  = TCon{Name: "Float"}
	Bool   = TCon{Name: "Bool"}
	String = TCon{Name: "String"}
	Char   = TCon{Name: "Char"}
	Unit   = TCon{Name: "Unit"}
)

// TOption represents Option<T>.
type TOption struct {
	Elem Type
}

func (t TOption) String() string { return fmt.Sprintf("Option<%s>", t.Elem) }
func (t TOption) typeNode()      {}

// TList represents List<T>: length decided at runtime, growable capacity.
type TList struct {
	Elem Type
}

func (t TList) String() string { return fmt.Sprintf("List<%s>", t.Elem) }
func (t TList) typeNode()      {}

// TArray represents Array<T, n>: exactly n elements, size fixed at compile time.
type TArray struct {
	Elem Type
	Size int
}

func (t TArray) String() string { return fmt.Sprintf("Array<%s, %d>", t.Elem, t.Size) }
func (t TArray) typeNode()      {}

// Field is a named record field. Order in TRecord.Fields is declaration order
// and determines the field's memory offset.
type Field struct {
	Name string
	Type Type
}

// TRecord represents a named record shape. Records are nominal: two record
// types are equal iff their names are equal.
type TRecord struct {
	Name   string
	Frozen bool
	Fields []Field
}

func (t TRecord) String() string { return t.Name }
func (t TRecord) typeNode()      {}

// FieldIndex returns the declaration index of a field, or -1.
func (t TRecord) FieldIndex(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// TFunc represents a function type.
type TFunc struct {
	Params     []Type
	ReturnType Type
}

func (t TFunc) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), t.ReturnType)
}
func (t TFunc) typeNode() {}

// Equals compares two types structurally. Records compare by name
// (a record type has a single shape, registered once).
func Equals(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch at := a.(type) {
	case TCon:
		bt, ok := b.(TCon)
		return ok && at.Name == bt.Name
	case TOption:
		bt, ok := b.(TOption)
		return ok && Equals(at.Elem, bt.Elem)
	case TList:
		bt, ok := b.(TList)
		return ok && Equals(at.Elem, bt.Elem)
	case TArray:
		bt, ok := b.(TArray)
		return ok && at.Size == bt.Size && Equals(at.Elem, bt.Elem)
	case TRecord:
		bt, ok := b.(TRecord)
		return ok && at.Name == bt.Name
	case TFunc:
		bt, ok := b.(TFunc)
		if !ok || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !Equals(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return Equals(at.ReturnType, bt.ReturnType)
	}
	return false
}

// IsNumeric reports whether t is an arithmetic operand type.
func IsNumeric(t Type) bool {
	return Equals(t, Int) || Equals(t, Float)
}

// IsAggregate reports whether values of t are pointers into linear
// memory. Option counts: Some allocates a tag-plus-payload cell.
func IsAggregate(t Type) bool {
	switch t.(type) {
	case TList, TArray, TRecord, TOption:
		return true
	}
	return false
}
