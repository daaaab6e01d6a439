// Package ir is the resolved program graph: every named entity of a
// compilation as a shared, mutable node, plus the type model used for
// all type comparisons. Nodes start out unresolved; crossref fills in
// the Resolved payloads, and everything downstream may assume they are
// present.
package ir

import (
	"fmt"

	"github.com/aaa-lang/aaa/frontend/ast"
)

// Key identifies a top-level entity: the file it was declared (or
// imported) in, and its name there.
type Key struct {
	File string
	Name string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.File, k.Name)
}

// Identifiable is any top-level named entity. Implementations are
// *Struct, *Enum, *EnumConstructor, *Function and *Import; the same
// pointer is shared between the flat table, resolved types, and
// resolved call sites so all of them observe the resolved state.
type Identifiable interface {
	ast.Positioner
	Name() string
	Key() Key
	// Kind is the lowercase noun used in error messages.
	Kind() string
	IsBuiltin() bool

	identifiable()
}

type Struct struct {
	Parsed   ast.Struct
	Resolved *ResolvedStruct
}

type ResolvedStruct struct {
	TypeParameters map[string]Type
	Fields         map[string]Type
}

func (s *Struct) Name() string      { return s.Parsed.Name.Value }
func (s *Struct) Pos() ast.Position { return s.Parsed.Position }
func (s *Struct) Kind() string      { return "struct" }
func (s *Struct) IsBuiltin() bool   { return s.Parsed.IsBuiltin }
func (s *Struct) Key() Key {
	return Key{File: s.Parsed.Position.File, Name: s.Parsed.Name.Value}
}

// MustResolved panics when called before cross-referencing completed;
// that is a phase-ordering bug, not a user error.
func (s *Struct) MustResolved() *ResolvedStruct {
	if s.Resolved == nil {
		panic(fmt.Sprintf("struct %s used before it was cross-referenced", s.Key()))
	}
	return s.Resolved
}

// Field returns the declared type of a field, unsubstituted.
func (s *Struct) Field(name string) (Type, bool) {
	typ, ok := s.MustResolved().Fields[name]
	return typ, ok
}

func (s *Struct) ExpectedParameterCount() int {
	return len(s.Parsed.Parameters)
}

// ParameterMapping zips the declared parameter names with concrete
// types, for substitution into field types.
func (s *Struct) ParameterMapping(types []Type) map[string]Type {
	mapping := make(map[string]Type, len(types))
	for i, parameter := range s.Parsed.Parameters {
		if i < len(types) {
			mapping[parameter.Value] = types[i]
		}
	}
	return mapping
}

type Enum struct {
	Parsed   ast.Enum
	Resolved *ResolvedEnum
}

type ResolvedEnum struct {
	TypeParameters map[string]Type
	Variants       map[string][]Type
}

func (e *Enum) Name() string      { return e.Parsed.Name.Value }
func (e *Enum) Pos() ast.Position { return e.Parsed.Position }
func (e *Enum) Kind() string      { return "enum" }
func (e *Enum) IsBuiltin() bool   { return false }
func (e *Enum) Key() Key {
	return Key{File: e.Parsed.Position.File, Name: e.Parsed.Name.Value}
}

func (e *Enum) MustResolved() *ResolvedEnum {
	if e.Resolved == nil {
		panic(fmt.Sprintf("enum %s used before it was cross-referenced", e.Key()))
	}
	return e.Resolved
}

func (e *Enum) ExpectedParameterCount() int {
	return len(e.Parsed.Parameters)
}

func (e *Enum) ParameterMapping(types []Type) map[string]Type {
	mapping := make(map[string]Type, len(types))
	for i, parameter := range e.Parsed.Parameters {
		if i < len(types) {
			mapping[parameter.Value] = types[i]
		}
	}
	return mapping
}

// ZeroVariant is the variant used when the code generator needs a
// default value of this enum.
func (e *Enum) ZeroVariant() string {
	return e.Parsed.Variants[0].Name.Value
}

// EnumConstructor is the callable identity of one enum variant. It is
// owned by its Enum and registered in the flat table under the name
// "enum:variant".
type EnumConstructor struct {
	Enum    *Enum
	Variant ast.EnumVariant
}

func (c *EnumConstructor) Name() string {
	return c.Enum.Name() + ":" + c.Variant.Name.Value
}
func (c *EnumConstructor) Pos() ast.Position { return c.Variant.Name.Position }
func (c *EnumConstructor) Kind() string      { return "enum constructor" }
func (c *EnumConstructor) IsBuiltin() bool   { return false }
func (c *EnumConstructor) Key() Key {
	return Key{File: c.Enum.Parsed.Position.File, Name: c.Name()}
}

// Data returns the variant's associated types, unsubstituted.
func (c *EnumConstructor) Data() []Type {
	return c.Enum.MustResolved().Variants[c.Variant.Name.Value]
}

type Function struct {
	Parsed   ast.Function
	Resolved *ResolvedFunction

	// Body is nil for builtin functions, and unset until the body
	// resolution phase for everything else.
	Body *FunctionBody
}

type ResolvedFunction struct {
	TypeParameters map[string]Type
	Arguments      []Argument
	ReturnTypes    ReturnTypes
}

type Argument struct {
	Position ast.Position
	Name     string
	Type     Type
}

func (a Argument) Pos() ast.Position { return a.Position }

func (a Argument) String() string {
	return fmt.Sprintf("argument %s", a.Name)
}

func (f *Function) Name() string      { return f.Parsed.Name.String() }
func (f *Function) Pos() ast.Position { return f.Parsed.Position }
func (f *Function) Kind() string      { return "function" }
func (f *Function) IsBuiltin() bool   { return f.Parsed.IsBuiltin() }
func (f *Function) Key() Key {
	return Key{File: f.Parsed.Position.File, Name: f.Parsed.Name.String()}
}

// TypeName is the declaring type of a member function ("vec:push" has
// type name "vec"), empty for free functions.
func (f *Function) TypeName() string {
	return f.Parsed.Name.TypeName
}

func (f *Function) Signature() *ResolvedFunction {
	if f.Resolved == nil {
		panic(fmt.Sprintf("function %s used before it was cross-referenced", f.Key()))
	}
	return f.Resolved
}

func (f *Function) HasArgument(name string) bool {
	for _, argument := range f.Parsed.Arguments {
		if argument.Name.Value == name {
			return true
		}
	}
	return false
}

func (f *Function) Argument(name string) (Argument, bool) {
	for _, argument := range f.Signature().Arguments {
		if argument.Name == name {
			return argument, true
		}
	}
	return Argument{}, false
}

func (f *Function) ArgumentTypes() []Type {
	arguments := f.Signature().Arguments
	types := make([]Type, len(arguments))
	for i, argument := range arguments {
		types[i] = argument.Type
	}
	return types
}

// Import is one imported item. Target stays nil until the import is
// resolved against the target file's table.
type Import struct {
	Parsed     ast.Import
	Item       ast.ImportItem
	SourceFile string
	Target     Identifiable
}

func (i *Import) Name() string      { return i.Item.ImportedName() }
func (i *Import) Pos() ast.Position { return i.Item.Position }
func (i *Import) Kind() string      { return "import" }
func (i *Import) IsBuiltin() bool   { return false }
func (i *Import) Key() Key {
	return Key{File: i.Item.Position.File, Name: i.Name()}
}

// TargetKey is where the imported item must be declared.
func (i *Import) TargetKey() Key {
	return Key{File: i.SourceFile, Name: i.Item.Name.Value}
}

func (*Struct) identifiable()          {}
func (*Enum) identifiable()            {}
func (*EnumConstructor) identifiable() {}
func (*Function) identifiable()        {}
func (*Import) identifiable()          {}

// Describe renders an identifiable for collision messages, e.g.
// "function main".
func Describe(i Identifiable) string {
	return fmt.Sprintf("%s %s", i.Kind(), i.Name())
}
