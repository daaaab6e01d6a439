package ir

import (
	"fmt"

	"github.com/aaa-lang/aaa/frontend/ast"
)

type FunctionBody struct {
	Position ast.Position
	Items    []BodyItem
}

// BodyItem is one resolved statement. Call-like syntax has been
// disambiguated into the Call* variants; the remaining name strings
// (local variables, arguments, field names) are guaranteed to exist by
// crossref.
type BodyItem interface {
	ast.Positioner
	bodyItem()
}

// Variable is a local name bound by use, a match case, or targeted by
// an assignment.
type Variable struct {
	Position ast.Position
	Name     string
}

func (v Variable) Pos() ast.Position { return v.Position }

func (v Variable) String() string {
	return fmt.Sprintf("local variable %s", v.Name)
}

type Assignment struct {
	Position  ast.Position
	Variables []Variable
	Body      FunctionBody
}

type Boolean struct {
	Position ast.Position
	Value    bool
}

type Branch struct {
	Position  ast.Position
	Condition FunctionBody
	IfBody    FunctionBody
	ElseBody  *FunctionBody
}

// Call pops a function pointer off the stack and calls it.
type Call struct {
	Position ast.Position
}

type CallArgument struct {
	Position ast.Position
	Name     string
}

type CallEnum struct {
	Position       ast.Position
	Enum           *Enum
	TypeParameters []Type
}

type CallEnumConstructor struct {
	Position        ast.Position
	EnumConstructor *EnumConstructor
	TypeParameters  []Type
}

type CallFunction struct {
	Position       ast.Position
	Function       *Function
	TypeParameters []Type
}

type CallLocalVariable struct {
	Position ast.Position
	Name     string
}

type CallStruct struct {
	Position       ast.Position
	Struct         *Struct
	TypeParameters []Type
}

type Char struct {
	Position ast.Position
	Value    rune
}

// PushFunctionType pushes a value of a function-pointer type literal.
type PushFunctionType struct {
	Position ast.Position
	Type     FunctionPointerType
}

type GetField struct {
	Position  ast.Position
	FieldName string

	target *Struct
}

type GetFunction struct {
	Position ast.Position
	Target   *Function
}

type Integer struct {
	Position ast.Position
	Value    int64
}

type Match struct {
	Position      ast.Position
	CaseBlocks    []*CaseBlock
	DefaultBlocks []*DefaultBlock

	target *Enum
}

type CaseBlock struct {
	Position  ast.Position
	EnumName  string
	Variant   string
	Variables []Variable
	Body      FunctionBody
}

type DefaultBlock struct {
	Position ast.Position
	Body     FunctionBody
}

type Return struct {
	Position ast.Position
}

type SetField struct {
	Position  ast.Position
	FieldName string
	Body      FunctionBody

	target *Struct
}

type String struct {
	Position ast.Position
	Value    string
}

type Use struct {
	Position  ast.Position
	Variables []Variable
	Body      FunctionBody
}

type While struct {
	Position  ast.Position
	Condition FunctionBody
	Body      FunctionBody
}

// The target slots below are write-once: empty when crossref finishes,
// filled by the type checker once it knows the concrete struct or enum,
// and read by the code generator afterward. A second write panics.

func (g *GetField) ResolveTarget(s *Struct) {
	if g.target != nil {
		panic(fmt.Sprintf("get-field target at %s resolved twice", g.Position))
	}
	g.target = s
}

func (g *GetField) Target() *Struct { return g.target }

func (s *SetField) ResolveTarget(target *Struct) {
	if s.target != nil {
		panic(fmt.Sprintf("set-field target at %s resolved twice", s.Position))
	}
	s.target = target
}

func (s *SetField) Target() *Struct { return s.target }

func (m *Match) ResolveTarget(e *Enum) {
	if m.target != nil {
		panic(fmt.Sprintf("match target at %s resolved twice", m.Position))
	}
	m.target = e
}

func (m *Match) Target() *Enum { return m.target }

func (i *Assignment) Pos() ast.Position          { return i.Position }
func (i *Boolean) Pos() ast.Position             { return i.Position }
func (i *Branch) Pos() ast.Position              { return i.Position }
func (i *Call) Pos() ast.Position                { return i.Position }
func (i *CallArgument) Pos() ast.Position        { return i.Position }
func (i *CallEnum) Pos() ast.Position            { return i.Position }
func (i *CallEnumConstructor) Pos() ast.Position { return i.Position }
func (i *CallFunction) Pos() ast.Position        { return i.Position }
func (i *CallLocalVariable) Pos() ast.Position   { return i.Position }
func (i *CallStruct) Pos() ast.Position          { return i.Position }
func (i *Char) Pos() ast.Position                { return i.Position }
func (i *PushFunctionType) Pos() ast.Position    { return i.Position }
func (i *GetField) Pos() ast.Position            { return i.Position }
func (i *GetFunction) Pos() ast.Position         { return i.Position }
func (i *Integer) Pos() ast.Position             { return i.Position }
func (i *Match) Pos() ast.Position               { return i.Position }
func (i *Return) Pos() ast.Position              { return i.Position }
func (i *SetField) Pos() ast.Position            { return i.Position }
func (i *String) Pos() ast.Position              { return i.Position }
func (i *Use) Pos() ast.Position                 { return i.Position }
func (i *While) Pos() ast.Position               { return i.Position }

func (*Assignment) bodyItem()          {}
func (*Boolean) bodyItem()             {}
func (*Branch) bodyItem()              {}
func (*Call) bodyItem()                {}
func (*CallArgument) bodyItem()        {}
func (*CallEnum) bodyItem()            {}
func (*CallEnumConstructor) bodyItem() {}
func (*CallFunction) bodyItem()        {}
func (*CallLocalVariable) bodyItem()   {}
func (*CallStruct) bodyItem()          {}
func (*Char) bodyItem()                {}
func (*PushFunctionType) bodyItem()    {}
func (*GetField) bodyItem()            {}
func (*GetFunction) bodyItem()         {}
func (*Integer) bodyItem()             {}
func (*Match) bodyItem()               {}
func (*Return) bodyItem()              {}
func (*SetField) bodyItem()            {}
func (*String) bodyItem()              {}
func (*Use) bodyItem()                 {}
func (*While) bodyItem()               {}
