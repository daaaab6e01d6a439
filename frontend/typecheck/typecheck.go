// Package typecheck simulates the stack effect of every function body
// against its declared signature. Checking is per function: each body
// is walked with a virtual stack of types, and every operation either
// transforms that stack or fails with a diagnostic.
package typecheck

import (
	"fmt"
	"log/slog"

	"github.com/benbjohnson/immutable"
	"github.com/pkg/errors"

	"github.com/aaa-lang/aaa/frontend/aaaerr"
	"github.com/aaa-lang/aaa/frontend/ast"
	"github.com/aaa-lang/aaa/frontend/ir"
	"github.com/aaa-lang/aaa/internal/log"
)

// Check verifies all functions in the graph, in position order, plus
// the main function of the entrypoint file. Each function contributes
// at most one error; checking continues with the next function.
func Check(graph *ir.Graph) *aaaerr.Errors {
	t := &TypeChecker{
		graph:  graph,
		logger: log.DefaultLogger.With(slog.String("section", "typecheck")),
	}
	return t.Run()
}

type TypeChecker struct {
	graph  *ir.Graph
	logger *slog.Logger
}

func (t *TypeChecker) Run() *aaaerr.Errors {
	var errs *aaaerr.Errors

	for _, function := range t.graph.Functions() {
		checker := newFunctionTypeChecker(function, t)

		if err := checker.run(); err != nil {
			errs = errs.With(err)
		}
	}

	if err := t.checkMainFunction(); err != nil {
		errs = errs.With(err)
	}

	return errs
}

func (t *TypeChecker) checkMainFunction() aaaerr.AaaError {
	identifiable, ok := t.graph.Lookup(t.graph.EntrypointPath, "main")
	if !ok {
		return aaaerr.New(aaaerr.NewMainFunctionNotFound{EntrypointPath: t.graph.EntrypointPath})
	}

	function, ok := identifiable.(*ir.Function)
	if !ok {
		return aaaerr.New(aaaerr.NewMainNonFunction{
			Position:     identifiable.Pos(),
			Identifiable: identifiable,
		})
	}

	signature := function.Signature()

	if len(signature.TypeParameters) != 0 {
		return aaaerr.New(aaaerr.NewInvalidMainSignature{Position: function.Pos()})
	}

	switch len(signature.Arguments) {
	case 0:
	case 1:
		if !isValidMainArgumentType(signature.Arguments[0].Type) {
			return aaaerr.New(aaaerr.NewInvalidMainSignature{Position: function.Pos()})
		}
	default:
		return aaaerr.New(aaaerr.NewInvalidMainSignature{Position: function.Pos()})
	}

	if !signature.ReturnTypes.Never {
		switch types := signature.ReturnTypes.Types; len(types) {
		case 0:
		case 1:
			if !isValidMainReturnType(types[0]) {
				return aaaerr.New(aaaerr.NewInvalidMainSignature{Position: function.Pos()})
			}
		default:
			return aaaerr.New(aaaerr.NewInvalidMainSignature{Position: function.Pos()})
		}
	}

	return nil
}

func isValidMainArgumentType(type_ ir.Type) bool {
	structType, ok := type_.(ir.StructType)
	if !ok || structType.Struct.Name() != "vec" || len(structType.Parameters) != 1 {
		return false
	}

	parameter, ok := structType.Parameters[0].(ir.StructType)
	return ok && parameter.Struct.Name() == "str"
}

func isValidMainReturnType(type_ ir.Type) bool {
	structType, ok := type_.(ir.StructType)
	return ok && structType.Struct.Name() == "int"
}

// localVariable is a name bound by use, a case block, or an argument.
// Arguments are preloaded so assignments to them type check like any
// other local.
type localVariable struct {
	Position ast.Position
	Name     string
	Type     ir.Type
}

func (v localVariable) Pos() ast.Position { return v.Position }

func (v localVariable) String() string {
	return fmt.Sprintf("local variable %s", v.Name)
}

type functionTypeChecker struct {
	function       *ir.Function
	typeChecker    *TypeChecker
	localVariables map[string]localVariable
}

func newFunctionTypeChecker(function *ir.Function, typeChecker *TypeChecker) *functionTypeChecker {
	localVariables := map[string]localVariable{}

	if function.Resolved != nil {
		for _, argument := range function.Signature().Arguments {
			localVariables[argument.Name] = localVariable{
				Position: argument.Position,
				Name:     argument.Name,
				Type:     argument.Type,
			}
		}
	}

	return &functionTypeChecker{
		function:       function,
		typeChecker:    typeChecker,
		localVariables: localVariables,
	}
}

func (c *functionTypeChecker) run() aaaerr.AaaError {
	if c.function.IsBuiltin() {
		return nil
	}

	c.typeChecker.logger.Debug("checking function",
		slog.String("function", c.function.Name()),
		slog.String("position", c.function.Pos().String()),
	)

	if err := c.checkMemberFunctionSignature(); err != nil {
		return err
	}

	computed := ir.Never()
	stack, err := c.checkFunctionBody(nil, *c.function.Body)

	switch {
	case errors.Is(err, errDiverges):
	case err != nil:
		return err.(aaaerr.AaaError)
	default:
		computed = ir.Sometimes(stack...)
	}

	if !c.confirmReturnTypes(computed) {
		return aaaerr.New(aaaerr.NewFunctionType{
			Position: c.function.Pos(),
			FuncName: c.function.Name(),
			Found:    computed,
			Expected: c.function.Signature().ReturnTypes,
		})
	}

	return nil
}

func (c *functionTypeChecker) confirmReturnTypes(computed ir.ReturnTypes) bool {
	expected := c.function.Signature().ReturnTypes

	if computed.Never {
		return true
	}
	if expected.Never {
		return false
	}
	return ir.TypeSlicesEqual(computed.Types, expected.Types)
}

func (c *functionTypeChecker) checkMemberFunctionSignature() aaaerr.AaaError {
	typeName := c.function.TypeName()
	if typeName == "" {
		return nil
	}

	arguments := c.function.Signature().Arguments
	if len(arguments) == 0 {
		return aaaerr.New(aaaerr.NewMemberFunctionWithoutArguments{
			Position:     c.function.Pos(),
			FunctionName: c.function.Name(),
		})
	}

	var firstArgTypeName string
	switch type_ := arguments[0].Type.(type) {
	case ir.StructType:
		firstArgTypeName = type_.Struct.Name()
	case ir.EnumType:
		firstArgTypeName = type_.Enum.Name()
	default:
		return aaaerr.New(aaaerr.NewMemberFunctionInvalidTarget{
			Position:     c.function.Pos(),
			FunctionName: c.function.Name(),
			Target:       arguments[0].Type,
		})
	}

	if typeName != firstArgTypeName {
		return aaaerr.New(aaaerr.NewMemberFunctionUnexpectedTarget{
			Position:           c.function.Pos(),
			FunctionName:       c.function.Name(),
			ExpectedTargetName: typeName,
			FoundTargetName:    firstArgTypeName,
		})
	}

	return nil
}

// builtinType looks up a type the language itself depends on. Absence
// means the builtins file is broken, which is not a user error.
func (c *functionTypeChecker) builtinType(name string) ir.Type {
	identifiable, ok := c.typeChecker.graph.Lookup(c.typeChecker.graph.BuiltinsPath, name)
	if !ok {
		panic(fmt.Sprintf("builtin type %s not found in %s", name, c.typeChecker.graph.BuiltinsPath))
	}

	struct_, ok := identifiable.(*ir.Struct)
	if !ok {
		panic(fmt.Sprintf("builtin type %s is not a struct", name))
	}

	return ir.StructType{Struct: struct_}
}

func cloneStack(stack []ir.Type) []ir.Type {
	clone := make([]ir.Type, len(stack))
	copy(clone, stack)
	return clone
}

func (c *functionTypeChecker) checkFunctionBody(stack []ir.Type, body ir.FunctionBody) ([]ir.Type, error) {
	stack = cloneStack(stack)

	for i, item := range body.Items {
		c.typeChecker.logger.Debug("stack",
			slog.String("position", item.Pos().String()),
			slog.String("types", ir.JoinTypes(" ", stack)),
		)

		result, err := c.checkBodyItem(stack, item)

		if errors.Is(err, errDiverges) && i+1 < len(body.Items) {
			return nil, aaaerr.New(aaaerr.NewUnreachableCode{Position: body.Items[i+1].Pos()})
		}
		if err != nil {
			return nil, err
		}

		stack = result
	}

	return stack, nil
}

func (c *functionTypeChecker) checkBodyItem(stack []ir.Type, item ir.BodyItem) ([]ir.Type, error) {
	switch item := item.(type) {
	case *ir.Integer:
		return append(stack, c.builtinType("int")), nil
	case *ir.String:
		return append(stack, c.builtinType("str")), nil
	case *ir.Boolean:
		return append(stack, c.builtinType("bool")), nil
	case *ir.Char:
		return append(stack, c.builtinType("char")), nil
	case *ir.Branch:
		return c.checkBranch(stack, item)
	case *ir.While:
		return c.checkWhile(stack, item)
	case *ir.CallFunction:
		return c.checkCallFunction(stack, item)
	case *ir.CallStruct:
		return c.checkCallStruct(stack, item)
	case *ir.CallEnum:
		return c.checkCallEnum(stack, item)
	case *ir.CallEnumConstructor:
		return c.checkCallEnumConstructor(stack, item)
	case *ir.CallArgument:
		return c.checkCallArgument(stack, item)
	case *ir.CallLocalVariable:
		return c.checkCallLocalVariable(stack, item)
	case *ir.Call:
		return c.checkCall(stack, item)
	case *ir.PushFunctionType:
		return append(stack, item.Type), nil
	case *ir.GetFunction:
		return c.checkGetFunction(stack, item)
	case *ir.GetField:
		return c.checkGetField(stack, item)
	case *ir.SetField:
		return c.checkSetField(stack, item)
	case *ir.Assignment:
		return c.checkAssignment(stack, item)
	case *ir.Use:
		return c.checkUse(stack, item)
	case *ir.Return:
		return c.checkReturn(stack, item)
	case *ir.Match:
		return c.checkMatch(stack, item)
	}
	panic(fmt.Sprintf("unhandled body item at %s", item.Pos()))
}

// checkConditionBody verifies that a condition leaves the stack as it
// found it plus one bool, and pops that bool.
func (c *functionTypeChecker) checkConditionBody(stack []ir.Type, body ir.FunctionBody) ([]ir.Type, error) {
	after, err := c.checkFunctionBody(stack, body)
	if err != nil {
		return nil, err
	}

	expected := append(cloneStack(stack), c.builtinType("bool"))

	if !ir.TypeSlicesEqual(after, expected) {
		return nil, aaaerr.New(aaaerr.NewCondition{
			Position:      body.Position,
			BeforeStack:   stack,
			AfterStack:    after,
			ExpectedStack: expected,
		})
	}

	return after[:len(after)-1], nil
}

func (c *functionTypeChecker) checkBranch(stack []ir.Type, branch *ir.Branch) ([]ir.Type, error) {
	conditionStack, err := c.checkConditionBody(stack, branch.Condition)
	if err != nil {
		return nil, err
	}

	ifStack, ifErr := c.checkFunctionBody(conditionStack, branch.IfBody)

	elseStack, elseErr := conditionStack, error(nil)
	if branch.ElseBody != nil {
		elseStack, elseErr = c.checkFunctionBody(conditionStack, *branch.ElseBody)
	}

	// A diverging arm puts no constraint on the stack; the other arm
	// decides.
	if errors.Is(ifErr, errDiverges) {
		return elseStack, elseErr
	}
	if ifErr != nil {
		return nil, ifErr
	}
	if errors.Is(elseErr, errDiverges) {
		return ifStack, nil
	}
	if elseErr != nil {
		return nil, elseErr
	}

	if !ir.TypeSlicesEqual(ifStack, elseStack) {
		return nil, aaaerr.New(aaaerr.NewBranch{
			Position:    branch.Position,
			BeforeStack: conditionStack,
			IfStack:     ifStack,
			ElseStack:   elseStack,
		})
	}

	return ifStack, nil
}

func (c *functionTypeChecker) checkWhile(stack []ir.Type, while *ir.While) ([]ir.Type, error) {
	conditionStack, err := c.checkConditionBody(stack, while.Condition)
	if err != nil {
		return nil, err
	}

	bodyStack, err := c.checkFunctionBody(conditionStack, while.Body)
	if err != nil {
		return nil, err
	}

	if !ir.TypeSlicesEqual(bodyStack, conditionStack) {
		return nil, aaaerr.New(aaaerr.NewWhile{
			Position:    while.Position,
			BeforeStack: conditionStack,
			AfterStack:  bodyStack,
		})
	}

	return conditionStack, nil
}

func (c *functionTypeChecker) checkCallFunction(stack []ir.Type, call *ir.CallFunction) ([]ir.Type, error) {
	function := call.Function
	signature := function.Signature()

	typeParams := make(map[string]ir.Type, len(signature.TypeParameters))
	for name, type_ := range signature.TypeParameters {
		typeParams[name] = type_
	}

	// Explicit type arguments pin the bindings up front; without them
	// the stack decides.
	if len(call.TypeParameters) > 0 {
		declared := function.Parsed.Name.Parameters

		if len(call.TypeParameters) != len(declared) {
			return nil, aaaerr.New(aaaerr.NewParameterCount{
				Position: call.Position,
				Found:    len(call.TypeParameters),
				Expected: len(declared),
			})
		}

		for i, identifier := range declared {
			typeParams[identifier.Value] = call.TypeParameters[i]
		}
	}

	checker := callChecker{
		typeParams:    typeParams,
		argumentTypes: function.ArgumentTypes(),
		returnTypes:   signature.ReturnTypes,
		name:          function.Name(),
		position:      call.Position,
		stack:         stack,
	}

	return checker.check()
}

func (c *functionTypeChecker) checkCallStruct(stack []ir.Type, call *ir.CallStruct) ([]ir.Type, error) {
	expected := call.Struct.ExpectedParameterCount()

	if len(call.TypeParameters) != expected {
		return nil, aaaerr.New(aaaerr.NewParameterCount{
			Position: call.Position,
			Found:    len(call.TypeParameters),
			Expected: expected,
		})
	}

	return append(stack, ir.StructType{
		Struct:     call.Struct,
		Parameters: call.TypeParameters,
	}), nil
}

func (c *functionTypeChecker) checkCallEnum(stack []ir.Type, call *ir.CallEnum) ([]ir.Type, error) {
	expected := call.Enum.ExpectedParameterCount()

	if len(call.TypeParameters) != expected {
		return nil, aaaerr.New(aaaerr.NewParameterCount{
			Position: call.Position,
			Found:    len(call.TypeParameters),
			Expected: expected,
		})
	}

	return append(stack, ir.EnumType{
		Enum:       call.Enum,
		Parameters: call.TypeParameters,
	}), nil
}

func (c *functionTypeChecker) checkCallEnumConstructor(stack []ir.Type, call *ir.CallEnumConstructor) ([]ir.Type, error) {
	constructor := call.EnumConstructor
	enum := constructor.Enum

	expected := enum.ExpectedParameterCount()
	if len(call.TypeParameters) != expected {
		return nil, aaaerr.New(aaaerr.NewParameterCount{
			Position: call.Position,
			Found:    len(call.TypeParameters),
			Expected: expected,
		})
	}

	mapping := enum.ParameterMapping(call.TypeParameters)

	data := constructor.Data()
	argumentTypes := make([]ir.Type, len(data))
	for i, type_ := range data {
		argumentTypes[i] = ApplyTypeParameters(type_, mapping)
	}

	enumType := ir.EnumType{Enum: enum, Parameters: call.TypeParameters}

	checker := callChecker{
		typeParams:    map[string]ir.Type{},
		argumentTypes: argumentTypes,
		returnTypes:   ir.Sometimes(enumType),
		name:          constructor.Name(),
		position:      call.Position,
		stack:         stack,
	}

	return checker.check()
}

func (c *functionTypeChecker) checkCallArgument(stack []ir.Type, call *ir.CallArgument) ([]ir.Type, error) {
	// crossref guarantees the argument exists
	argument, _ := c.function.Argument(call.Name)
	return append(stack, argument.Type), nil
}

func (c *functionTypeChecker) checkCallLocalVariable(stack []ir.Type, call *ir.CallLocalVariable) ([]ir.Type, error) {
	return append(stack, c.localVariables[call.Name].Type), nil
}

func (c *functionTypeChecker) checkCall(stack []ir.Type, call *ir.Call) ([]ir.Type, error) {
	if len(stack) == 0 {
		return nil, aaaerr.New(aaaerr.NewCallStackUnderflow{Position: call.Position})
	}

	top := stack[len(stack)-1]
	stack = stack[:len(stack)-1]

	functionPointer, ok := top.(ir.FunctionPointerType)
	if !ok {
		return nil, aaaerr.New(aaaerr.NewCallNonFunction{Position: call.Position, Type: top})
	}

	checker := callChecker{
		typeParams:    map[string]ir.Type{},
		argumentTypes: functionPointer.ArgumentTypes,
		returnTypes:   functionPointer.ReturnTypes,
		name:          "function pointer",
		position:      call.Position,
		stack:         stack,
	}

	return checker.check()
}

func (c *functionTypeChecker) checkGetFunction(stack []ir.Type, getFunction *ir.GetFunction) ([]ir.Type, error) {
	signature := getFunction.Target.Signature()

	return append(stack, ir.FunctionPointerType{
		ArgumentTypes: getFunction.Target.ArgumentTypes(),
		ReturnTypes:   signature.ReturnTypes,
	}), nil
}

func (c *functionTypeChecker) checkGetField(stack []ir.Type, getField *ir.GetField) ([]ir.Type, error) {
	if len(stack) == 0 {
		return nil, aaaerr.New(aaaerr.NewGetFieldStackUnderflow{
			Position:  getField.Position,
			FieldName: getField.FieldName,
		})
	}

	top := stack[len(stack)-1]
	stack = stack[:len(stack)-1]

	structType, ok := top.(ir.StructType)
	if !ok {
		return nil, aaaerr.New(aaaerr.NewGetFieldFromNonStruct{
			Position:  getField.Position,
			FieldName: getField.FieldName,
			Target:    top,
		})
	}

	getField.ResolveTarget(structType.Struct)

	fieldType, ok := structType.Struct.Field(getField.FieldName)
	if !ok {
		return nil, aaaerr.New(aaaerr.NewGetFieldNotFound{
			Position:   getField.Position,
			FieldName:  getField.FieldName,
			StructName: structType.Struct.Name(),
		})
	}

	mapping := structType.Struct.ParameterMapping(structType.Parameters)

	return append(stack, ApplyTypeParameters(fieldType, mapping)), nil
}

func (c *functionTypeChecker) checkSetField(stack []ir.Type, setField *ir.SetField) ([]ir.Type, error) {
	if len(stack) == 0 {
		return nil, aaaerr.New(aaaerr.NewSetFieldStackUnderflow{
			Position:  setField.Position,
			FieldName: setField.FieldName,
		})
	}

	top := stack[len(stack)-1]
	stack = stack[:len(stack)-1]

	structType, ok := top.(ir.StructType)
	if !ok {
		return nil, aaaerr.New(aaaerr.NewSetFieldOnNonStruct{
			Position:  setField.Position,
			FieldName: setField.FieldName,
			Target:    top,
		})
	}

	setField.ResolveTarget(structType.Struct)

	fieldType, ok := structType.Struct.Field(setField.FieldName)
	if !ok {
		return nil, aaaerr.New(aaaerr.NewSetFieldNotFound{
			Position:   setField.Position,
			FieldName:  setField.FieldName,
			StructName: structType.Struct.Name(),
		})
	}

	bodyStack, err := c.checkFunctionBody(nil, setField.Body)
	if err != nil {
		return nil, err
	}

	mapping := structType.Struct.ParameterMapping(structType.Parameters)
	expectedBodyStack := []ir.Type{ApplyTypeParameters(fieldType, mapping)}

	if !ir.TypeSlicesEqual(bodyStack, expectedBodyStack) {
		return nil, aaaerr.New(aaaerr.NewSetFieldType{
			Position:      setField.Position,
			FieldName:     setField.FieldName,
			StructName:    structType.Struct.Name(),
			ExpectedStack: expectedBodyStack,
			FoundStack:    bodyStack,
		})
	}

	return stack, nil
}

func (c *functionTypeChecker) checkAssignment(stack []ir.Type, assignment *ir.Assignment) ([]ir.Type, error) {
	bodyStack, err := c.checkFunctionBody(nil, assignment.Body)
	if err != nil {
		return nil, err
	}

	if len(assignment.Variables) != len(bodyStack) {
		return nil, aaaerr.New(aaaerr.NewAssignmentStackSize{
			Position:          assignment.Position,
			ExpectedStackSize: len(assignment.Variables),
			FoundStackSize:    len(bodyStack),
		})
	}

	for i, variable := range assignment.Variables {
		local, ok := c.localVariables[variable.Name]
		if !ok {
			return nil, aaaerr.New(aaaerr.NewAssignedVariableNotFound{
				Position:     assignment.Position,
				VariableName: variable.Name,
			})
		}

		if !ir.TypesEqual(local.Type, bodyStack[i]) {
			return nil, aaaerr.New(aaaerr.NewAssignmentType{
				Position:     assignment.Position,
				VariableName: variable.Name,
				ExpectedType: local.Type,
				FoundType:    bodyStack[i],
			})
		}
	}

	return stack, nil
}

// checkVariableNameAvailability rejects a new binding that shadows an
// argument, a top-level name, a builtin, or another live local.
func (c *functionTypeChecker) checkVariableNameAvailability(local localVariable) aaaerr.AaaError {
	if argument, ok := c.function.Argument(local.Name); ok {
		return aaaerr.New(aaaerr.NewNameCollision{
			Items: [2]aaaerr.CollisionItem{local, argument},
		})
	}

	if identifiable, ok := c.typeChecker.graph.Lookup(local.Position.File, local.Name); ok {
		return aaaerr.New(aaaerr.NewNameCollision{
			Items: [2]aaaerr.CollisionItem{local, aaaerr.CollisionIdentifiable(identifiable)},
		})
	}

	if identifiable, ok := c.typeChecker.graph.Lookup(c.typeChecker.graph.BuiltinsPath, local.Name); ok {
		return aaaerr.New(aaaerr.NewNameCollision{
			Items: [2]aaaerr.CollisionItem{local, aaaerr.CollisionIdentifiable(identifiable)},
		})
	}

	if colliding, ok := c.localVariables[local.Name]; ok {
		return aaaerr.New(aaaerr.NewNameCollision{
			Items: [2]aaaerr.CollisionItem{local, colliding},
		})
	}

	return nil
}

func (c *functionTypeChecker) checkUse(stack []ir.Type, use *ir.Use) ([]ir.Type, error) {
	usedVarCount := len(use.Variables)

	if usedVarCount > len(stack) {
		return nil, aaaerr.New(aaaerr.NewUseStackUnderflow{
			Position:     use.Position,
			Stack:        stack,
			UsedVarCount: usedVarCount,
		})
	}

	remaining := len(stack) - usedVarCount
	top := stack[remaining:]
	stack = stack[:remaining]

	for i, variable := range use.Variables {
		local := localVariable{
			Position: variable.Position,
			Name:     variable.Name,
			Type:     top[i],
		}

		if err := c.checkVariableNameAvailability(local); err != nil {
			return nil, err
		}

		c.localVariables[variable.Name] = local
	}

	result, err := c.checkFunctionBody(stack, use.Body)

	for _, variable := range use.Variables {
		delete(c.localVariables, variable.Name)
	}

	return result, err
}

func (c *functionTypeChecker) checkReturn(stack []ir.Type, return_ *ir.Return) ([]ir.Type, error) {
	computed := ir.Sometimes(stack...)

	if !c.confirmReturnTypes(computed) {
		return nil, aaaerr.New(aaaerr.NewReturnStack{
			Position: return_.Position,
			Found:    computed,
			Expected: c.function.Signature().ReturnTypes,
		})
	}

	return nil, errDiverges
}

func (c *functionTypeChecker) checkMatch(stack []ir.Type, match *ir.Match) ([]ir.Type, error) {
	if len(stack) == 0 {
		return nil, aaaerr.New(aaaerr.NewMatchStackUnderflow{Position: match.Position})
	}

	top := stack[len(stack)-1]
	stack = stack[:len(stack)-1]

	enumType, ok := top.(ir.EnumType)
	if !ok {
		return nil, aaaerr.New(aaaerr.NewMatchNonEnum{Position: match.Position, Type: top})
	}

	match.ResolveTarget(enumType.Enum)

	if err := checkMatchIsExpectedEnum(enumType, match); err != nil {
		return nil, err
	}

	if err := checkMatchIsFullEnumeration(enumType, match); err != nil {
		return nil, err
	}

	return c.checkMatchChildStacks(stack, enumType, match)
}

func checkMatchIsExpectedEnum(enumType ir.EnumType, match *ir.Match) aaaerr.AaaError {
	for _, caseBlock := range match.CaseBlocks {
		if caseBlock.EnumName != enumType.Enum.Name() {
			return aaaerr.New(aaaerr.NewMatchUnexpectedEnum{
				Position:         caseBlock.Position,
				ExpectedEnumName: enumType.Enum.Name(),
				FoundEnumName:    caseBlock.EnumName,
			})
		}
	}
	return nil
}

func checkMatchIsFullEnumeration(enumType ir.EnumType, match *ir.Match) aaaerr.AaaError {
	foundCases := immutable.NewMap[string, ast.Position](nil)

	for _, caseBlock := range match.CaseBlocks {
		if colliding, ok := foundCases.Get(caseBlock.Variant); ok {
			return aaaerr.New(aaaerr.NewCollidingCaseBlocks{
				EnumName:    caseBlock.EnumName,
				VariantName: caseBlock.Variant,
				Positions:   [2]ast.Position{colliding, caseBlock.Position},
			})
		}
		foundCases = foundCases.Set(caseBlock.Variant, caseBlock.Position)
	}

	if len(match.DefaultBlocks) > 1 {
		return aaaerr.New(aaaerr.NewCollidingDefaultBlocks{
			Positions: [2]ast.Position{
				match.DefaultBlocks[0].Position,
				match.DefaultBlocks[1].Position,
			},
		})
	}

	var missingCases []string
	for variant := range enumType.Enum.MustResolved().Variants {
		if _, handled := foundCases.Get(variant); !handled {
			missingCases = append(missingCases, variant)
		}
	}

	if len(missingCases) > 0 && len(match.DefaultBlocks) == 0 {
		return aaaerr.New(aaaerr.NewUnhandledEnumVariants{
			Position:     match.Position,
			EnumName:     enumType.Enum.Name(),
			VariantNames: missingCases,
		})
	}

	if len(missingCases) == 0 && len(match.DefaultBlocks) > 0 {
		return aaaerr.New(aaaerr.NewUnreachableDefault{
			Position: match.DefaultBlocks[0].Position,
		})
	}

	return nil
}

func (c *functionTypeChecker) checkMatchChildStacks(stack []ir.Type, enumType ir.EnumType, match *ir.Match) ([]ir.Type, error) {
	var children []aaaerr.MatchChild

	for _, caseBlock := range match.CaseBlocks {
		variantData := enumType.Enum.MustResolved().Variants[caseBlock.Variant]

		returnTypes := ir.Never()
		caseStack, err := c.checkCaseBlock(stack, variantData, caseBlock)

		switch {
		case errors.Is(err, errDiverges):
		case err != nil:
			return nil, err
		default:
			returnTypes = ir.Sometimes(caseStack...)
		}

		children = append(children, aaaerr.MatchChild{
			Name:        fmt.Sprintf("case %s:%s", caseBlock.EnumName, caseBlock.Variant),
			Position:    caseBlock.Position,
			ReturnTypes: returnTypes,
		})
	}

	for _, defaultBlock := range match.DefaultBlocks {
		returnTypes := ir.Never()
		defaultStack, err := c.checkFunctionBody(stack, defaultBlock.Body)

		switch {
		case errors.Is(err, errDiverges):
		case err != nil:
			return nil, err
		default:
			returnTypes = ir.Sometimes(defaultStack...)
		}

		children = append(children, aaaerr.MatchChild{
			Name:        "default",
			Position:    defaultBlock.Position,
			ReturnTypes: returnTypes,
		})
	}

	var firstConvergent *aaaerr.MatchChild
	for i := range children {
		if !children[i].ReturnTypes.Never {
			firstConvergent = &children[i]
			break
		}
	}

	if firstConvergent == nil {
		return nil, errDiverges
	}

	for _, child := range children {
		if child.ReturnTypes.Never {
			continue
		}
		if !ir.TypeSlicesEqual(child.ReturnTypes.Types, firstConvergent.ReturnTypes.Types) {
			return nil, aaaerr.New(aaaerr.NewInconsistentMatchChildren{
				Position: match.Position,
				Children: children,
			})
		}
	}

	return firstConvergent.ReturnTypes.Types, nil
}

func (c *functionTypeChecker) checkCaseBlock(stack []ir.Type, variantData []ir.Type, caseBlock *ir.CaseBlock) ([]ir.Type, error) {
	if len(caseBlock.Variables) == 0 {
		// No binders: the variant's data is pushed on the stack.
		caseStack := append(cloneStack(stack), variantData...)
		return c.checkFunctionBody(caseStack, caseBlock.Body)
	}

	if len(caseBlock.Variables) != len(variantData) {
		return nil, aaaerr.New(aaaerr.NewCaseVariableCount{
			Position:      caseBlock.Position,
			EnumName:      caseBlock.EnumName,
			VariantName:   caseBlock.Variant,
			ExpectedCount: len(variantData),
			FoundCount:    len(caseBlock.Variables),
		})
	}

	for i, variable := range caseBlock.Variables {
		local := localVariable{
			Position: variable.Position,
			Name:     variable.Name,
			Type:     variantData[i],
		}

		if err := c.checkVariableNameAvailability(local); err != nil {
			return nil, err
		}

		c.localVariables[variable.Name] = local
	}

	result, err := c.checkFunctionBody(stack, caseBlock.Body)

	for _, variable := range caseBlock.Variables {
		delete(c.localVariables, variable.Name)
	}

	return result, err
}
