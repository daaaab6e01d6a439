package aaaerr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aaa-lang/aaa/frontend/ast"
	"github.com/aaa-lang/aaa/frontend/ir"
)

// joinPrefixed renders a stack behind a fixed-width label, trimming the
// label's padding when the stack is empty.
func joinPrefixed(prefix string, types []ir.Type) string {
	return strings.TrimRight(prefix+ir.JoinTypes(" ", types), " ")
}

type NewBranch struct {
	ast.Position
	BeforeStack []ir.Type
	IfStack     []ir.Type
	ElseStack   []ir.Type
	stack       []byte
}

func (e NewBranch) Error() string {
	return "Mismatching branch types:\n" +
		joinPrefixed("before stack: ", e.BeforeStack) + "\n" +
		joinPrefixed("    if stack: ", e.IfStack) + "\n" +
		joinPrefixed("  else stack: ", e.ElseStack)
}
func (e NewBranch) Code() ErrCode    { return Branch }
func (e NewBranch) getStack() []byte { return e.stack }
func (e NewBranch) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewCondition struct {
	ast.Position
	BeforeStack   []ir.Type
	AfterStack    []ir.Type
	ExpectedStack []ir.Type
	stack         []byte
}

func (e NewCondition) Error() string {
	return "Unexpected stack after condition:\n" +
		joinPrefixed("  before: ", e.BeforeStack) + "\n" +
		joinPrefixed("   after: ", e.AfterStack) + "\n" +
		joinPrefixed("expected: ", e.ExpectedStack)
}
func (e NewCondition) Code() ErrCode    { return Condition }
func (e NewCondition) getStack() []byte { return e.stack }
func (e NewCondition) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewWhile struct {
	ast.Position
	BeforeStack []ir.Type
	AfterStack  []ir.Type
	stack       []byte
}

func (e NewWhile) Error() string {
	return "Stack types changed in loop:\n" +
		joinPrefixed("  before: ", e.BeforeStack) + "\n" +
		joinPrefixed("   after: ", e.AfterStack) + "\n" +
		joinPrefixed("expected: ", e.BeforeStack)
}
func (e NewWhile) Code() ErrCode    { return While }
func (e NewWhile) getStack() []byte { return e.stack }
func (e NewWhile) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewStackUnderflow struct {
	ast.Position
	Called           string
	BeforeStack      []ir.Type
	ExpectedStackTop []ir.Type
	stack            []byte
}

func (e NewStackUnderflow) Error() string {
	return fmt.Sprintf("Stack underflow when calling %s\n%s\n%s",
		e.Called,
		joinPrefixed("       stack: ", e.BeforeStack),
		joinPrefixed("expected top: ", e.ExpectedStackTop))
}
func (e NewStackUnderflow) Code() ErrCode    { return StackUnderflow }
func (e NewStackUnderflow) getStack() []byte { return e.stack }
func (e NewStackUnderflow) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewStackTypes struct {
	ast.Position
	Called           string
	BeforeStack      []ir.Type
	ExpectedStackTop []ir.Type
	stack            []byte
}

func (e NewStackTypes) Error() string {
	return fmt.Sprintf("Invalid stack when calling %s\n%s\n%s",
		e.Called,
		joinPrefixed("       stack: ", e.BeforeStack),
		joinPrefixed("expected top: ", e.ExpectedStackTop))
}
func (e NewStackTypes) Code() ErrCode    { return StackTypes }
func (e NewStackTypes) getStack() []byte { return e.stack }
func (e NewStackTypes) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewParameterCount struct {
	ast.Position
	Found    int
	Expected int
	stack    []byte
}

func (e NewParameterCount) Error() string {
	return fmt.Sprintf("Unexpected number of parameters\n   Found: %d\nExpected: %d",
		e.Found, e.Expected)
}
func (e NewParameterCount) Code() ErrCode    { return ParameterCount }
func (e NewParameterCount) getStack() []byte { return e.stack }
func (e NewParameterCount) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewFunctionType struct {
	ast.Position
	FuncName string
	Found    ir.ReturnTypes
	Expected ir.ReturnTypes
	stack    []byte
}

func (e NewFunctionType) Error() string {
	return fmt.Sprintf("Computed stack types don't match signature for function %q\n   Found: %s\nExpected: %s",
		e.FuncName, e.Found, e.Expected)
}
func (e NewFunctionType) Code() ErrCode    { return FunctionType }
func (e NewFunctionType) getStack() []byte { return e.stack }
func (e NewFunctionType) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewReturnStack struct {
	ast.Position
	Found    ir.ReturnTypes
	Expected ir.ReturnTypes
	stack    []byte
}

func (e NewReturnStack) Error() string {
	return fmt.Sprintf("Invalid stack when using \"return\"\n   Found: %s\nExpected: %s",
		e.Found, e.Expected)
}
func (e NewReturnStack) Code() ErrCode    { return ReturnStack }
func (e NewReturnStack) getStack() []byte { return e.stack }
func (e NewReturnStack) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewUnreachableCode struct {
	ast.Position
	stack []byte
}

func (e NewUnreachableCode) Error() string {
	return "Code is unreachable"
}
func (e NewUnreachableCode) Code() ErrCode    { return UnreachableCode }
func (e NewUnreachableCode) getStack() []byte { return e.stack }
func (e NewUnreachableCode) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewUseStackUnderflow struct {
	ast.Position
	Stack        []ir.Type
	UsedVarCount int
	stack        []byte
}

func (e NewUseStackUnderflow) Error() string {
	return fmt.Sprintf("Cannot use %d value(s), because the stack is too small.\n%s",
		e.UsedVarCount, joinPrefixed("Stack: ", e.Stack))
}
func (e NewUseStackUnderflow) Code() ErrCode    { return UseStackUnderflow }
func (e NewUseStackUnderflow) getStack() []byte { return e.stack }
func (e NewUseStackUnderflow) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

// CollisionItem is anything that can clash over a name: identifiables,
// arguments, local variables.
type CollisionItem interface {
	ast.Positioner
	fmt.Stringer
}

type describedIdentifiable struct {
	identifiable ir.Identifiable
}

func (d describedIdentifiable) Pos() ast.Position { return d.identifiable.Pos() }
func (d describedIdentifiable) String() string    { return ir.Describe(d.identifiable) }

// CollisionIdentifiable adapts an identifiable for use in a name
// collision error.
func CollisionIdentifiable(i ir.Identifiable) CollisionItem {
	return describedIdentifiable{identifiable: i}
}

type NewNameCollision struct {
	Items [2]CollisionItem
	stack []byte
}

func (e NewNameCollision) Error() string {
	items := []CollisionItem{e.Items[0], e.Items[1]}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Pos().Before(items[j].Pos())
	})
	return fmt.Sprintf("Found name collision:\n%s: %s\n%s: %s",
		items[0].Pos(), items[0], items[1].Pos(), items[1])
}
func (e NewNameCollision) Code() ErrCode { return NameCollision }
func (e NewNameCollision) Pos() ast.Position {
	if e.Items[1].Pos().Before(e.Items[0].Pos()) {
		return e.Items[1].Pos()
	}
	return e.Items[0].Pos()
}
func (e NewNameCollision) getStack() []byte { return e.stack }
func (e NewNameCollision) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewGetFieldStackUnderflow struct {
	ast.Position
	FieldName string
	stack     []byte
}

func (e NewGetFieldStackUnderflow) Error() string {
	return fmt.Sprintf("Cannot get field %s, because the stack is empty", e.FieldName)
}
func (e NewGetFieldStackUnderflow) Code() ErrCode    { return GetFieldStackUnderflow }
func (e NewGetFieldStackUnderflow) getStack() []byte { return e.stack }
func (e NewGetFieldStackUnderflow) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewGetFieldFromNonStruct struct {
	ast.Position
	FieldName string
	Target    ir.Type
	stack     []byte
}

func (e NewGetFieldFromNonStruct) Error() string {
	return fmt.Sprintf("Can only get field %s from a struct, found %s %s",
		e.FieldName, e.Target.Kind(), e.Target)
}
func (e NewGetFieldFromNonStruct) Code() ErrCode    { return GetFieldFromNonStruct }
func (e NewGetFieldFromNonStruct) getStack() []byte { return e.stack }
func (e NewGetFieldFromNonStruct) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewGetFieldNotFound struct {
	ast.Position
	FieldName  string
	StructName string
	stack      []byte
}

func (e NewGetFieldNotFound) Error() string {
	return fmt.Sprintf("Cannot get field %s from struct %s, because it doesn't exist",
		e.FieldName, e.StructName)
}
func (e NewGetFieldNotFound) Code() ErrCode    { return GetFieldNotFound }
func (e NewGetFieldNotFound) getStack() []byte { return e.stack }
func (e NewGetFieldNotFound) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewSetFieldStackUnderflow struct {
	ast.Position
	FieldName string
	stack     []byte
}

func (e NewSetFieldStackUnderflow) Error() string {
	return fmt.Sprintf("Cannot set field %s, because the stack is empty", e.FieldName)
}
func (e NewSetFieldStackUnderflow) Code() ErrCode    { return SetFieldStackUnderflow }
func (e NewSetFieldStackUnderflow) getStack() []byte { return e.stack }
func (e NewSetFieldStackUnderflow) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewSetFieldOnNonStruct struct {
	ast.Position
	FieldName string
	Target    ir.Type
	stack     []byte
}

func (e NewSetFieldOnNonStruct) Error() string {
	return fmt.Sprintf("Can only set field %s on a struct, found %s %s",
		e.FieldName, e.Target.Kind(), e.Target)
}
func (e NewSetFieldOnNonStruct) Code() ErrCode    { return SetFieldOnNonStruct }
func (e NewSetFieldOnNonStruct) getStack() []byte { return e.stack }
func (e NewSetFieldOnNonStruct) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewSetFieldNotFound struct {
	ast.Position
	FieldName  string
	StructName string
	stack      []byte
}

func (e NewSetFieldNotFound) Error() string {
	return fmt.Sprintf("Cannot set field %s on struct %s, because it doesn't exist",
		e.FieldName, e.StructName)
}
func (e NewSetFieldNotFound) Code() ErrCode    { return SetFieldNotFound }
func (e NewSetFieldNotFound) getStack() []byte { return e.stack }
func (e NewSetFieldNotFound) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewSetFieldType struct {
	ast.Position
	FieldName     string
	StructName    string
	ExpectedStack []ir.Type
	FoundStack    []ir.Type
	stack         []byte
}

func (e NewSetFieldType) Error() string {
	return fmt.Sprintf("Invalid stack types when setting field %s on struct %s:\n%s\n%s",
		e.FieldName, e.StructName,
		joinPrefixed("   Found: ", e.FoundStack),
		joinPrefixed("Expected: ", e.ExpectedStack))
}
func (e NewSetFieldType) Code() ErrCode    { return SetFieldType }
func (e NewSetFieldType) getStack() []byte { return e.stack }
func (e NewSetFieldType) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewAssignmentStackSize struct {
	ast.Position
	ExpectedStackSize int
	FoundStackSize    int
	stack             []byte
}

func (e NewAssignmentStackSize) Error() string {
	return fmt.Sprintf("Cannot assign %d value(s) to %d variable(s)",
		e.FoundStackSize, e.ExpectedStackSize)
}
func (e NewAssignmentStackSize) Code() ErrCode    { return AssignmentStackSize }
func (e NewAssignmentStackSize) getStack() []byte { return e.stack }
func (e NewAssignmentStackSize) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewAssignedVariableNotFound struct {
	ast.Position
	VariableName string
	stack        []byte
}

func (e NewAssignedVariableNotFound) Error() string {
	return fmt.Sprintf("Cannot set variable %s, because it doesn't exist.", e.VariableName)
}
func (e NewAssignedVariableNotFound) Code() ErrCode    { return AssignedVariableNotFound }
func (e NewAssignedVariableNotFound) getStack() []byte { return e.stack }
func (e NewAssignedVariableNotFound) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewAssignmentType struct {
	ast.Position
	VariableName string
	ExpectedType ir.Type
	FoundType    ir.Type
	stack        []byte
}

func (e NewAssignmentType) Error() string {
	return fmt.Sprintf("Cannot set variable %s, due to invalid type.\nExpected: %s\n   Found: %s",
		e.VariableName, e.ExpectedType, e.FoundType)
}
func (e NewAssignmentType) Code() ErrCode    { return AssignmentType }
func (e NewAssignmentType) getStack() []byte { return e.stack }
func (e NewAssignmentType) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewMatchStackUnderflow struct {
	ast.Position
	stack []byte
}

func (e NewMatchStackUnderflow) Error() string {
	return "Cannot match on an empty stack"
}
func (e NewMatchStackUnderflow) Code() ErrCode    { return MatchStackUnderflow }
func (e NewMatchStackUnderflow) getStack() []byte { return e.stack }
func (e NewMatchStackUnderflow) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewMatchNonEnum struct {
	ast.Position
	Type  ir.Type
	stack []byte
}

func (e NewMatchNonEnum) Error() string {
	return fmt.Sprintf("Cannot match on %s %s", e.Type.Kind(), e.Type)
}
func (e NewMatchNonEnum) Code() ErrCode    { return MatchNonEnum }
func (e NewMatchNonEnum) getStack() []byte { return e.stack }
func (e NewMatchNonEnum) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewMatchUnexpectedEnum struct {
	ast.Position
	ExpectedEnumName string
	FoundEnumName    string
	stack            []byte
}

func (e NewMatchUnexpectedEnum) Error() string {
	return fmt.Sprintf("Unexpected enum case:\nExpected: %s\n   Found: %s",
		e.ExpectedEnumName, e.FoundEnumName)
}
func (e NewMatchUnexpectedEnum) Code() ErrCode    { return MatchUnexpectedEnum }
func (e NewMatchUnexpectedEnum) getStack() []byte { return e.stack }
func (e NewMatchUnexpectedEnum) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewCollidingCaseBlocks struct {
	EnumName    string
	VariantName string
	Positions   [2]ast.Position
	stack       []byte
}

func (e NewCollidingCaseBlocks) Error() string {
	return fmt.Sprintf("Found colliding case blocks:\n%s: case %s:%s\n%s: case %s:%s",
		e.Positions[0], e.EnumName, e.VariantName,
		e.Positions[1], e.EnumName, e.VariantName)
}
func (e NewCollidingCaseBlocks) Code() ErrCode     { return CollidingCaseBlocks }
func (e NewCollidingCaseBlocks) Pos() ast.Position { return e.Positions[0] }
func (e NewCollidingCaseBlocks) getStack() []byte  { return e.stack }
func (e NewCollidingCaseBlocks) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewCollidingDefaultBlocks struct {
	Positions [2]ast.Position
	stack     []byte
}

func (e NewCollidingDefaultBlocks) Error() string {
	return fmt.Sprintf("Found colliding default blocks:\n%s: default\n%s: default",
		e.Positions[0], e.Positions[1])
}
func (e NewCollidingDefaultBlocks) Code() ErrCode     { return CollidingDefaultBlocks }
func (e NewCollidingDefaultBlocks) Pos() ast.Position { return e.Positions[0] }
func (e NewCollidingDefaultBlocks) getStack() []byte  { return e.stack }
func (e NewCollidingDefaultBlocks) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewUnhandledEnumVariants struct {
	ast.Position
	EnumName     string
	VariantNames []string
	stack        []byte
}

func (e NewUnhandledEnumVariants) Error() string {
	names := append([]string(nil), e.VariantNames...)
	sort.Strings(names)
	var sb strings.Builder
	sb.WriteString("Some enum variant(s) are unhandled:")
	for _, name := range names {
		fmt.Fprintf(&sb, "\ncase %s:%s", e.EnumName, name)
	}
	return sb.String()
}
func (e NewUnhandledEnumVariants) Code() ErrCode    { return UnhandledEnumVariants }
func (e NewUnhandledEnumVariants) getStack() []byte { return e.stack }
func (e NewUnhandledEnumVariants) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewUnreachableDefault struct {
	ast.Position
	stack []byte
}

func (e NewUnreachableDefault) Error() string {
	return "Default block is unreachable"
}
func (e NewUnreachableDefault) Code() ErrCode    { return UnreachableDefault }
func (e NewUnreachableDefault) getStack() []byte { return e.stack }
func (e NewUnreachableDefault) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

// MatchChild is one case or default block's outcome, for reporting
// disagreement between the blocks of a match.
type MatchChild struct {
	Name        string
	Position    ast.Position
	ReturnTypes ir.ReturnTypes
}

type NewInconsistentMatchChildren struct {
	ast.Position
	Children []MatchChild
	stack    []byte
}

func (e NewInconsistentMatchChildren) Error() string {
	var sb strings.Builder
	sb.WriteString("Children of match have inconsistent stacks:")
	for _, child := range e.Children {
		fmt.Fprintf(&sb, "\n%s: %s", child.Name, child.ReturnTypes)
	}
	return sb.String()
}
func (e NewInconsistentMatchChildren) Code() ErrCode    { return InconsistentMatchChildren }
func (e NewInconsistentMatchChildren) getStack() []byte { return e.stack }
func (e NewInconsistentMatchChildren) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewCaseVariableCount struct {
	ast.Position
	EnumName      string
	VariantName   string
	ExpectedCount int
	FoundCount    int
	stack         []byte
}

func (e NewCaseVariableCount) Error() string {
	expected := fmt.Sprintf("0 or %d", e.ExpectedCount)
	if e.ExpectedCount == 0 {
		expected = "0"
	}
	return fmt.Sprintf("Unexpected amount of variables for case %s:%s:\nExpected: %s\n   Found: %d",
		e.EnumName, e.VariantName, expected, e.FoundCount)
}
func (e NewCaseVariableCount) Code() ErrCode    { return CaseVariableCount }
func (e NewCaseVariableCount) getStack() []byte { return e.stack }
func (e NewCaseVariableCount) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewMemberFunctionWithoutArguments struct {
	ast.Position
	FunctionName string
	stack        []byte
}

func (e NewMemberFunctionWithoutArguments) Error() string {
	return fmt.Sprintf("Member function %s should have associated type as first argument",
		e.FunctionName)
}
func (e NewMemberFunctionWithoutArguments) Code() ErrCode    { return MemberFunctionWithoutArguments }
func (e NewMemberFunctionWithoutArguments) getStack() []byte { return e.stack }
func (e NewMemberFunctionWithoutArguments) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewMemberFunctionInvalidTarget struct {
	ast.Position
	FunctionName string
	Target       ir.Type
	stack        []byte
}

func (e NewMemberFunctionInvalidTarget) Error() string {
	return fmt.Sprintf("Invalid first argument of member function %s\nExpected: struct or enum\n   Found: %s",
		e.FunctionName, e.Target)
}
func (e NewMemberFunctionInvalidTarget) Code() ErrCode    { return MemberFunctionInvalidTarget }
func (e NewMemberFunctionInvalidTarget) getStack() []byte { return e.stack }
func (e NewMemberFunctionInvalidTarget) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewMemberFunctionUnexpectedTarget struct {
	ast.Position
	FunctionName       string
	ExpectedTargetName string
	FoundTargetName    string
	stack              []byte
}

func (e NewMemberFunctionUnexpectedTarget) Error() string {
	return fmt.Sprintf("First argument of member function %s has unexpected type\nExpected: %s\n   Found: %s",
		e.FunctionName, e.ExpectedTargetName, e.FoundTargetName)
}
func (e NewMemberFunctionUnexpectedTarget) Code() ErrCode    { return MemberFunctionUnexpectedTarget }
func (e NewMemberFunctionUnexpectedTarget) getStack() []byte { return e.stack }
func (e NewMemberFunctionUnexpectedTarget) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewMainFunctionNotFound struct {
	EntrypointPath string
	stack          []byte
}

func (e NewMainFunctionNotFound) Error() string {
	return "No main function found"
}
func (e NewMainFunctionNotFound) Code() ErrCode { return MainFunctionNotFound }
func (e NewMainFunctionNotFound) Pos() ast.Position {
	return ast.Position{File: e.EntrypointPath}
}
func (e NewMainFunctionNotFound) getStack() []byte { return e.stack }
func (e NewMainFunctionNotFound) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewMainNonFunction struct {
	ast.Position
	Identifiable ir.Identifiable
	stack        []byte
}

func (e NewMainNonFunction) Error() string {
	return fmt.Sprintf("main should be a function, found %s instead.",
		ir.Describe(e.Identifiable))
}
func (e NewMainNonFunction) Code() ErrCode    { return MainNonFunction }
func (e NewMainNonFunction) getStack() []byte { return e.stack }
func (e NewMainNonFunction) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewInvalidMainSignature struct {
	ast.Position
	stack []byte
}

func (e NewInvalidMainSignature) Error() string {
	return "Main function has wrong signature, it should have:\n" +
		"- no type parameters\n" +
		"- either no arguments or one vec[str] argument\n" +
		"- return either nothing or an int"
}
func (e NewInvalidMainSignature) Code() ErrCode    { return InvalidMainSignature }
func (e NewInvalidMainSignature) getStack() []byte { return e.stack }
func (e NewInvalidMainSignature) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewCallStackUnderflow struct {
	ast.Position
	stack []byte
}

func (e NewCallStackUnderflow) Error() string {
	return "Cannot call function pointer on an empty stack"
}
func (e NewCallStackUnderflow) Code() ErrCode    { return CallStackUnderflow }
func (e NewCallStackUnderflow) getStack() []byte { return e.stack }
func (e NewCallStackUnderflow) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewCallNonFunction struct {
	ast.Position
	Type  ir.Type
	stack []byte
}

func (e NewCallNonFunction) Error() string {
	return fmt.Sprintf("Can only call a function pointer, found %s %s",
		e.Type.Kind(), e.Type)
}
func (e NewCallNonFunction) Code() ErrCode    { return CallNonFunction }
func (e NewCallNonFunction) getStack() []byte { return e.stack }
func (e NewCallNonFunction) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}
