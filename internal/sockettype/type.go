package sockettype

import (
	"github.com/zclconf/go-cty/cty"
)

// Built-in type names.
const (
	NameNumber = "number"
	NameString = "string"
	NameBool   = "bool"
	NameAny    = "any"
)

// Built-in socket types. They are present in every registry.
var (
	Number = Type{name: NameNumber, ty: cty.Number}
	String = Type{name: NameString, ty: cty.String}
	Bool   = Type{name: NameBool, ty: cty.Bool}
	Any    = Type{name: NameAny, ty: cty.DynamicPseudoType}
)

// Type identifies a registered value kind. The zero Type is invalid.
type Type struct {
	name string
	ty   cty.Type
}

// Descriptor describes a type to register.
type Descriptor struct {
	Name string
	Type cty.Type
}

// Name returns the registered identifier.
func (t Type) Name() string { return t.name }

// Cty returns the underlying cty type.
func (t Type) Cty() cty.Type { return t.ty }

// String implements fmt.Stringer.
func (t Type) String() string {
	if t.IsZero() {
		return "<invalid>"
	}
	return t.name
}

// IsZero reports whether t is the zero Type.
func (t Type) IsZero() bool { return t.name == "" }

// IsAny reports whether t is the dynamic "any" kind.
func (t Type) IsAny() bool {
	return !t.IsZero() && t.ty.Equals(cty.DynamicPseudoType)
}

// Equals reports whether two types are identical.
func (t Type) Equals(other Type) bool {
	if t.name != other.name {
		return false
	}
	if t.IsZero() {
		return other.IsZero()
	}
	return t.ty.Equals(other.ty)
}

// Conforms reports whether v is a valid value for sockets of type t.
// Nulls of the exact type conform; "any" accepts every concrete value.
// Unknown and marked values never conform.
func Conforms(v cty.Value, t Type) bool {
	if t.IsZero() || v == cty.NilVal {
		return false
	}
	if v.IsMarked() || !v.IsWhollyKnown() {
		return false
	}
	if t.IsAny() {
		return true
	}
	return v.Type().Equals(t.ty)
}

// Null returns the null value for t.
func Null(t Type) cty.Value {
	if t.IsZero() {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	return cty.NullVal(t.ty)
}
