package ir

import (
	"fmt"
	"strings"

	"github.com/aaa-lang/aaa/frontend/ast"
)

// Type is the unit of all type comparisons. The set of implementations
// is closed: StructType, EnumType, FunctionPointerType, ParameterType.
type Type interface {
	fmt.Stringer
	// Kind is the lowercase noun used in error messages.
	Kind() string

	typ()
}

type StructType struct {
	Struct     *Struct
	Parameters []Type
}

type EnumType struct {
	Enum       *Enum
	Parameters []Type
}

type FunctionPointerType struct {
	ArgumentTypes []Type
	ReturnTypes   ReturnTypes
}

// ParameterType is an unbound generic parameter, a placeholder bound
// during call unification.
type ParameterType struct {
	Position ast.Position
	Name     string
}

func (t StructType) String() string {
	if len(t.Parameters) == 0 {
		return t.Struct.Name()
	}
	return fmt.Sprintf("%s[%s]", t.Struct.Name(), JoinTypes(", ", t.Parameters))
}

func (t EnumType) String() string {
	if len(t.Parameters) == 0 {
		return t.Enum.Name()
	}
	return fmt.Sprintf("%s[%s]", t.Enum.Name(), JoinTypes(", ", t.Parameters))
}

func (t FunctionPointerType) String() string {
	return fmt.Sprintf("fn[%s][%s]", JoinTypes(", ", t.ArgumentTypes), t.ReturnTypes)
}

func (t ParameterType) String() string {
	return t.Name
}

func (StructType) Kind() string          { return "struct" }
func (EnumType) Kind() string            { return "enum" }
func (FunctionPointerType) Kind() string { return "function pointer" }
func (ParameterType) Kind() string       { return "parameter" }

func (StructType) typ()          {}
func (EnumType) typ()            {}
func (FunctionPointerType) typ() {}
func (ParameterType) typ()       {}

// ReturnTypes is a two-state value: Never, or the exact stack suffix a
// returning call leaves behind. Never is compatible with any
// expectation; a Sometimes only with an equal one.
type ReturnTypes struct {
	Never bool
	Types []Type
}

func Sometimes(types ...Type) ReturnTypes {
	return ReturnTypes{Types: types}
}

func Never() ReturnTypes {
	return ReturnTypes{Never: true}
}

func (r ReturnTypes) String() string {
	if r.Never {
		return "never"
	}
	return JoinTypes(", ", r.Types)
}

// TypesEqual is the structural equality used everywhere: struct and
// enum types are equal iff they reference the same declaration and
// their parameters are recursively equal; parameters compare by name;
// function pointers compare structurally.
func TypesEqual(a, b Type) bool {
	switch a := a.(type) {
	case StructType:
		b, ok := b.(StructType)
		return ok && a.Struct.Key() == b.Struct.Key() && TypeSlicesEqual(a.Parameters, b.Parameters)
	case EnumType:
		b, ok := b.(EnumType)
		return ok && a.Enum.Key() == b.Enum.Key() && TypeSlicesEqual(a.Parameters, b.Parameters)
	case FunctionPointerType:
		b, ok := b.(FunctionPointerType)
		return ok && TypeSlicesEqual(a.ArgumentTypes, b.ArgumentTypes) &&
			ReturnTypesEqual(a.ReturnTypes, b.ReturnTypes)
	case ParameterType:
		b, ok := b.(ParameterType)
		return ok && a.Name == b.Name
	}
	return false
}

func TypeSlicesEqual(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !TypesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func ReturnTypesEqual(a, b ReturnTypes) bool {
	if a.Never || b.Never {
		return a.Never == b.Never
	}
	return TypeSlicesEqual(a.Types, b.Types)
}

// JoinTypes renders a stack or type list for error messages.
func JoinTypes(separator string, types []Type) string {
	parts := make([]string, len(types))
	for i, typ := range types {
		parts[i] = typ.String()
	}
	return strings.Join(parts, separator)
}
