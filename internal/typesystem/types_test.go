package typesystem

import "testing"

func TestEquals_Primitives(t *testing.T) {
	if !Equals(Int, Int) {
		t.Error("Int should equal Int")
	}
	if Equals(Int, Float) {
		t.Error("Int should not equal Float")
	}
	if Equals(Int, nil) {
		t.Error("Int should not equal nil")
	}
	if !Equals(nil, nil) {
		t.Error("nil should equal nil")
	}
}

func TestEquals_Structural(t *testing.T) {
	if !Equals(TList{Elem: Int}, TList{Elem: Int}) {
		t.Error("List<Int> should equal List<Int>")
	}
	if Equals(TList{Elem: Int}, TList{Elem: Float}) {
		t.Error("List<Int> should not equal List<Float>")
	}
	if Equals(TList{Elem: Int}, TOption{Elem: Int}) {
		t.Error("List<Int> should not equal Option<Int>")
	}
	if !Equals(TArray{Elem: Int, Size: 4}, TArray{Elem: Int, Size: 4}) {
		t.Error("Array<Int, 4> should equal itself")
	}
	if Equals(TArray{Elem: Int, Size: 4}, TArray{Elem: Int, Size: 5}) {
		t.Error("arrays of different sizes should differ")
	}
	if !Equals(TOption{Elem: TList{Elem: Bool}}, TOption{Elem: TList{Elem: Bool}}) {
		t.Error("nested structural types should compare deep")
	}
}

func TestEquals_RecordsAreNominal(t *testing.T) {
	a := TRecord{Name: "Point", Fields: []Field{{Name: "x", Type: Int}}}
	b := TRecord{Name: "Point", Fields: []Field{{Name: "y", Type: Float}}}
	c := TRecord{Name: "Vec", Fields: []Field{{Name: "x", Type: Int}}}
	if !Equals(a, b) {
		t.Error("records with the same name should be equal")
	}
	if Equals(a, c) {
		t.Error("records with different names should differ")
	}
}

func TestEquals_Functions(t *testing.T) {
	f := TFunc{Params: []Type{Int, Int}, ReturnType: Int}
	same := TFunc{Params: []Type{Int, Int}, ReturnType: Int}
	wider := TFunc{Params: []Type{Int, Int, Int}, ReturnType: Int}
	other := TFunc{Params: []Type{Int, Int}, ReturnType: Bool}
	if !Equals(f, same) {
		t.Error("identical function types should be equal")
	}
	if Equals(f, wider) {
		t.Error("arity should distinguish function types")
	}
	if Equals(f, other) {
		t.Error("return type should distinguish function types")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Int, "Int"},
		{TOption{Elem: String}, "Option<String>"},
		{TList{Elem: Int}, "List<Int>"},
		{TArray{Elem: Float, Size: 3}, "Array<Float, 3>"},
		{TRecord{Name: "Point"}, "Point"},
		{TFunc{Params: []Type{Int, Bool}, ReturnType: Unit}, "(Int, Bool) -> Unit"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestIsAggregate(t *testing.T) {
	if IsAggregate(Int) || IsAggregate(Bool) || IsAggregate(TFunc{ReturnType: Int}) {
		t.Error("scalars and functions are not aggregates")
	}
	if !IsAggregate(TList{Elem: Int}) || !IsAggregate(TArray{Elem: Int, Size: 2}) ||
		!IsAggregate(TRecord{Name: "P"}) || !IsAggregate(TOption{Elem: Int}) {
		t.Error("lists, arrays, records and options are aggregates")
	}
}

func TestIsNumeric(t *testing.T) {
	if !IsNumeric(Int) || !IsNumeric(Float) {
		t.Error("Int and Float are numeric")
	}
	if IsNumeric(Bool) || IsNumeric(String) {
		t.Error("Bool and String are not numeric")
	}
}
