package typesystem

import (
	"testing"

	"github.com/funvibe/geninst/internal/config"
)

func TestClassify(t *testing.T) {
	f := newFixture()
	tv := NewTVar("T", "<query>")
	listT := TParam{Class: f.list, Args: []Type{tv}}

	tests := []struct {
		name string
		d    *Descriptor
		is   func(*Descriptor) bool
		want bool
	}{
		{"raw", FromClass(f.str), (*Descriptor).IsRaw, true},
		{"generic class is parameterized", FromClass(f.list), (*Descriptor).IsParameterized, true},
		{"var", FromType(tv), (*Descriptor).IsTypeVariable, true},
		{"wildcard", FromType(Unbounded), (*Descriptor).IsWildcard, true},
		{"capture", FromType(TCapture{}), (*Descriptor).IsCapture, true},
		{"raw array", FromClass(ArrayOf(f.str)), (*Descriptor).IsArray, true},
		{"generic array", FromType(TArray{Component: tv}), (*Descriptor).IsArray, true},
		{"generic array unresolved", FromType(TArray{Component: listT}), (*Descriptor).IsGenericArray, true},
		{"raw array resolved", FromClass(ArrayOf(f.str)), (*Descriptor).IsGenericArray, false},
		{"owner", FromClass(f.inner), (*Descriptor).HasOwner, true},
		{"no owner", FromClass(f.list), (*Descriptor).HasOwner, false},
		{"type variables", FromType(listT), (*Descriptor).HasTypeVariables, true},
		{"wildcards are not variables", FromType(TParam{Class: f.list, Args: []Type{Unbounded}}), (*Descriptor).HasTypeVariables, false},
		{"no wildcards", FromType(listT), (*Descriptor).HasWildcards, false},
		{"wildcard argument", FromType(TParam{Class: f.list, Args: []Type{Unbounded}}), (*Descriptor).HasWildcards, true},
		{"object", FromClass(ObjectClass), (*Descriptor).IsObject, true},
		{"string", FromClass(f.str), (*Descriptor).IsString, true},
		{"class", FromClass(&Class{Name: config.ClassClassName, Modifiers: ModFinal}), (*Descriptor).IsClass, true},
		{"string is not class", FromClass(f.str), (*Descriptor).IsClass, false},
		{"void", FromClass(&Class{Name: "void", Modifiers: ModPrimitive}), (*Descriptor).IsVoid, true},
		{"void wrapper", FromClass(&Class{Name: config.VoidClassName, Modifiers: ModWrapper}), (*Descriptor).IsVoid, true},
		{"object is not void", FromClass(ObjectClass), (*Descriptor).IsVoid, false},
		{"wrapper", FromClass(f.integer), (*Descriptor).IsWrapper, true},
		{"abstract", FromClass(f.number), (*Descriptor).IsAbstract, true},
		{"interface is abstract", FromClass(f.comparable), (*Descriptor).IsAbstract, true},
		{"final is not abstract", FromClass(f.str), (*Descriptor).IsAbstract, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.is(tt.d); got != tt.want {
				t.Errorf("%s: got %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}

func TestOwner(t *testing.T) {
	f := newFixture()
	outer := TParam{Class: f.outer, Args: []Type{TClass{Class: f.integer}}}
	d := FromType(TParam{Class: f.inner, Args: []Type{TClass{Class: f.str}}, Owner: outer})

	owner := d.Owner()
	if owner == nil {
		t.Fatal("missing owner")
	}
	if got := owner.Name(); got != "p.Outer<java.lang.Integer>" {
		t.Errorf("Owner() = %s", got)
	}
	if FromType(TParam{Class: f.list, Args: []Type{TClass{Class: f.str}}}).Owner() != nil {
		t.Error("List<String> has no owner")
	}
	if FromClass(f.str).Owner() != nil {
		t.Error("raw class has no owner")
	}
}

func TestBoxing(t *testing.T) {
	f := newFixture()
	prim := &Class{Name: "int", Modifiers: ModPrimitive}
	prim.Box, f.integer.Box = f.integer, prim

	if got := FromClass(prim).Boxed(); got != f.integer {
		t.Errorf("Boxed(int) = %s", got)
	}
	if got := FromClass(f.integer).Unboxed(); got != prim {
		t.Errorf("Unboxed(Integer) = %s", got)
	}
	if got := FromClass(f.str).Boxed(); got != f.str {
		t.Errorf("Boxed(String) = %s", got)
	}
}

func TestParseModifier(t *testing.T) {
	m, ok := ParseModifier("interface")
	if !ok || m != ModInterface {
		t.Fatalf("ParseModifier(interface) = %v, %v", m, ok)
	}
	if _, ok := ParseModifier("sealed"); ok {
		t.Error("unknown modifier accepted")
	}
	if got := (ModAbstract | ModFinal).String(); got != "abstract final" {
		t.Errorf("String() = %q", got)
	}
}
