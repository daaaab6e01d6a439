// Package ast holds the parser's output: per-file declaration trees
// with Position-tagged nodes and no resolved references. Everything in
// here is plain data; resolution happens in crossref.
package ast

import (
	"path/filepath"
	"strings"
)

type Identifier struct {
	Position Position
	Value    string
}

// SourceFile is one parsed file. Path is the absolute path the parser
// read it from and doubles as the file's identity everywhere else.
type SourceFile struct {
	Path      string
	Structs   []Struct
	Enums     []Enum
	Functions []Function
	Imports   []Import
}

// Dependencies lists the files this one imports, resolved against
// currentDir. The builtins file is not included; the cross-referencer
// adds it to every file's dependency set itself.
func (f *SourceFile) Dependencies(currentDir string) []string {
	var deps []string
	seen := map[string]bool{}
	for _, imp := range f.Imports {
		dep := imp.SourcePath(currentDir)
		if !seen[dep] {
			seen[dep] = true
			deps = append(deps, dep)
		}
	}
	return deps
}

type Struct struct {
	Position   Position
	Name       Identifier
	Parameters []Identifier

	// Fields is nil for builtin structs, whose layout lives in the
	// runtime. IsBuiltin is the authoritative marker; a user struct
	// with zero fields carries an empty non-nil slice.
	Fields    []StructField
	IsBuiltin bool
}

type StructField struct {
	Name Identifier
	Type Type
}

type Enum struct {
	Position   Position
	Name       Identifier
	Parameters []Identifier

	// Variants is never empty. The first variant backs default-value
	// synthesis in the code generator.
	Variants []EnumVariant
}

type EnumVariant struct {
	Name Identifier
	Data []Type
}

// FunctionName is either free ("foo") or member-style ("vec:push"),
// in which case TypeName is non-empty.
type FunctionName struct {
	Position   Position
	TypeName   string
	FuncName   string
	Parameters []Identifier
}

func (n FunctionName) String() string {
	if n.TypeName == "" {
		return n.FuncName
	}
	return n.TypeName + ":" + n.FuncName
}

type Function struct {
	Position    Position
	Name        FunctionName
	Arguments   []Argument
	ReturnTypes ReturnTypes

	// Body is nil for builtin functions.
	Body *FunctionBody
}

func (f *Function) IsBuiltin() bool {
	return f.Body == nil
}

type Argument struct {
	Position Position
	Name     Identifier
	Type     Type
}

// ReturnTypes is either Never (the function provably does not return)
// or the exact list of types it leaves on the stack.
type ReturnTypes struct {
	Never bool
	Types []Type
}

// Type is the parsed (unresolved) type syntax.
type Type interface {
	Positioner
	typeNode()
}

// RegularType is a named type, possibly with type arguments:
// "int", "vec[str]", or a bare type parameter "T".
type RegularType struct {
	Position   Position
	IsConst    bool
	Name       Identifier
	Parameters []Type
}

// FunctionType is function-pointer syntax: "fn[int, str][bool]".
type FunctionType struct {
	Position      Position
	ArgumentTypes []Type
	ReturnTypes   ReturnTypes
}

func (t RegularType) Pos() Position  { return t.Position }
func (t FunctionType) Pos() Position { return t.Position }
func (RegularType) typeNode()        {}
func (FunctionType) typeNode()       {}

type Import struct {
	Position Position
	Source   StringLiteral
	Items    []ImportItem
}

type ImportItem struct {
	Position Position
	Name     Identifier
	Alias    *Identifier
}

// ImportedName is the name the item is known by in the importing
// file: the alias when one was given, the original name otherwise.
func (i ImportItem) ImportedName() string {
	if i.Alias != nil {
		return i.Alias.Value
	}
	return i.Name.Value
}

// SourcePath maps the import's source string to a file path. A source
// ending in ".aaa" is used as a path directly: absolute paths are
// kept, relative ones are joined to the importing file's directory.
// Any other source is dotted notation, resolved under currentDir.
func (i Import) SourcePath(currentDir string) string {
	source := i.Source.Value
	if strings.HasSuffix(source, ".aaa") {
		if filepath.IsAbs(source) {
			return filepath.Clean(source)
		}
		return filepath.Clean(filepath.Join(filepath.Dir(i.Position.File), source))
	}
	relative := filepath.FromSlash(strings.ReplaceAll(source, ".", "/")) + ".aaa"
	return filepath.Join(currentDir, relative)
}

type StringLiteral struct {
	Position Position
	Value    string
}
