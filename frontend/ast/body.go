package ast

type FunctionBody struct {
	Position Position
	Items    []FunctionBodyItem
}

// FunctionBodyItem is one statement-like node in a function body.
// The set of implementations is closed; crossref switches over all of
// them when resolving.
type FunctionBodyItem interface {
	Positioner
	bodyItem()
}

type Assignment struct {
	Position  Position
	Variables []Identifier
	Body      FunctionBody
}

type Boolean struct {
	Position Position
	Value    bool
}

type Branch struct {
	Position  Position
	Condition FunctionBody
	IfBody    FunctionBody
	ElseBody  *FunctionBody
}

// CallByPointer is the "call" keyword: pop a function pointer off the
// stack and call it.
type CallByPointer struct {
	Position Position
}

type Char struct {
	Position Position
	Value    rune
}

type Foreach struct {
	Position Position
	Body     FunctionBody
}

// FunctionCall is a bare name in a body. What it actually calls (an
// argument, a local, a function, a constructor) is decided during
// cross-referencing. TypeName is set for member-style calls.
type FunctionCall struct {
	Position   Position
	TypeName   string
	FuncName   string
	Parameters []Type
}

func (c FunctionCall) Name() string {
	if c.TypeName == "" {
		return c.FuncName
	}
	return c.TypeName + ":" + c.FuncName
}

// PushFunctionType is a function-pointer type literal in a body,
// pushing a value of that type.
type PushFunctionType struct {
	Position      Position
	ArgumentTypes []Type
	ReturnTypes   ReturnTypes
}

// GetFunction is the `fn "name"` form, pushing a pointer to the named
// function.
type GetFunction struct {
	Position Position
	Target   StringLiteral
}

type GetField struct {
	Position  Position
	FieldName StringLiteral
}

type SetField struct {
	Position  Position
	FieldName StringLiteral
	Body      FunctionBody
}

type Integer struct {
	Position Position
	Value    int64
}

type Match struct {
	Position      Position
	CaseBlocks    []CaseBlock
	DefaultBlocks []DefaultBlock
}

type CaseBlock struct {
	Position Position
	Label    CaseLabel
	Body     FunctionBody
}

type CaseLabel struct {
	Position  Position
	EnumName  Identifier
	Variant   Identifier
	Variables []Identifier
}

type DefaultBlock struct {
	Position Position
	Body     FunctionBody
}

type Return struct {
	Position Position
}

type String struct {
	Position Position
	Value    string
}

type Use struct {
	Position  Position
	Variables []Identifier
	Body      FunctionBody
}

type While struct {
	Position  Position
	Condition FunctionBody
	Body      FunctionBody
}

func (i Assignment) Pos() Position       { return i.Position }
func (i Boolean) Pos() Position          { return i.Position }
func (i Branch) Pos() Position           { return i.Position }
func (i CallByPointer) Pos() Position    { return i.Position }
func (i Char) Pos() Position             { return i.Position }
func (i Foreach) Pos() Position          { return i.Position }
func (i FunctionCall) Pos() Position     { return i.Position }
func (i PushFunctionType) Pos() Position { return i.Position }
func (i GetFunction) Pos() Position      { return i.Position }
func (i GetField) Pos() Position         { return i.Position }
func (i SetField) Pos() Position         { return i.Position }
func (i Integer) Pos() Position          { return i.Position }
func (i Match) Pos() Position            { return i.Position }
func (i Return) Pos() Position           { return i.Position }
func (i String) Pos() Position           { return i.Position }
func (i Use) Pos() Position              { return i.Position }
func (i While) Pos() Position            { return i.Position }

func (Assignment) bodyItem()       {}
func (Boolean) bodyItem()          {}
func (Branch) bodyItem()           {}
func (CallByPointer) bodyItem()    {}
func (Char) bodyItem()             {}
func (Foreach) bodyItem()          {}
func (FunctionCall) bodyItem()     {}
func (PushFunctionType) bodyItem() {}
func (GetFunction) bodyItem()      {}
func (GetField) bodyItem()         {}
func (SetField) bodyItem()         {}
func (Integer) bodyItem()          {}
func (Match) bodyItem()            {}
func (Return) bodyItem()           {}
func (String) bodyItem()           {}
func (Use) bodyItem()              {}
func (While) bodyItem()            {}
