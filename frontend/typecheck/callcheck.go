package typecheck

import (
	"github.com/pkg/errors"

	"github.com/aaa-lang/aaa/frontend/aaaerr"
	"github.com/aaa-lang/aaa/frontend/ast"
	"github.com/aaa-lang/aaa/frontend/ir"
)

// errDiverges is the sentinel for "this code never returns". It flows
// through the checker like an error but is not reported; callers that
// see it know the stack after this point is unconstrained.
var errDiverges = errors.New("does not return")

// callChecker verifies a single call against the current stack: enough
// values, matching types (binding type parameters along the way), and
// pushes the substituted return types.
type callChecker struct {
	typeParams    map[string]ir.Type
	argumentTypes []ir.Type
	returnTypes   ir.ReturnTypes
	name          string
	position      ast.Position
	stack         []ir.Type
}

func (c callChecker) check() ([]ir.Type, error) {
	if len(c.argumentTypes) > len(c.stack) {
		return nil, aaaerr.New(aaaerr.NewStackUnderflow{
			Position:         c.position,
			Called:           c.name,
			BeforeStack:      c.stack,
			ExpectedStackTop: c.argumentTypes,
		})
	}

	remaining := len(c.stack) - len(c.argumentTypes)
	stackArgTypes := c.stack[remaining:]

	bindings := make(map[string]ir.Type, len(c.typeParams))
	for name, type_ := range c.typeParams {
		bindings[name] = type_
	}

	for i, argumentType := range c.argumentTypes {
		if !typesMatch(argumentType, stackArgTypes[i], bindings) {
			return nil, aaaerr.New(aaaerr.NewStackTypes{
				Position:         c.position,
				Called:           c.name,
				BeforeStack:      c.stack,
				ExpectedStackTop: c.argumentTypes,
			})
		}
	}

	if c.returnTypes.Never {
		return nil, errDiverges
	}

	stack := make([]ir.Type, remaining, remaining+len(c.returnTypes.Types))
	copy(stack, c.stack[:remaining])

	for _, returnType := range c.returnTypes.Types {
		stack = append(stack, ApplyTypeParameters(returnType, bindings))
	}

	return stack, nil
}

// typesMatch reports whether actual satisfies expected, binding any
// type parameters of expected in the process. A parameter that is
// already bound to a concrete type only matches that same type; a
// parameter bound to another parameter is still free.
func typesMatch(expected, actual ir.Type, bindings map[string]ir.Type) bool {
	switch expected := expected.(type) {
	case ir.FunctionPointerType:
		actual, ok := actual.(ir.FunctionPointerType)
		return ok && ir.TypesEqual(expected, actual)

	case ir.StructType:
		actual, ok := actual.(ir.StructType)
		if !ok || expected.Struct.Key() != actual.Struct.Key() {
			return false
		}
		return parametersMatch(expected.Parameters, actual.Parameters, bindings)

	case ir.EnumType:
		actual, ok := actual.(ir.EnumType)
		if !ok || expected.Enum.Key() != actual.Enum.Key() {
			return false
		}
		return parametersMatch(expected.Parameters, actual.Parameters, bindings)

	case ir.ParameterType:
		if bound, ok := bindings[expected.Name]; ok {
			if _, stillFree := bound.(ir.ParameterType); !stillFree && !ir.TypesEqual(bound, actual) {
				return false
			}
		}
		bindings[expected.Name] = actual
		return true
	}

	return false
}

func parametersMatch(expected, actual []ir.Type, bindings map[string]ir.Type) bool {
	if len(expected) != len(actual) {
		return false
	}
	for i := range expected {
		if !typesMatch(expected[i], actual[i], bindings) {
			return false
		}
	}
	return true
}

// ApplyTypeParameters substitutes bound type parameters into a type,
// recursing into struct and enum parameters. Unbound parameters stay
// as they are.
func ApplyTypeParameters(type_ ir.Type, bindings map[string]ir.Type) ir.Type {
	switch type_ := type_.(type) {
	case ir.ParameterType:
		if bound, ok := bindings[type_.Name]; ok {
			return bound
		}
		return type_

	case ir.StructType:
		parameters := make([]ir.Type, len(type_.Parameters))
		for i, parameter := range type_.Parameters {
			parameters[i] = ApplyTypeParameters(parameter, bindings)
		}
		return ir.StructType{Struct: type_.Struct, Parameters: parameters}

	case ir.EnumType:
		parameters := make([]ir.Type, len(type_.Parameters))
		for i, parameter := range type_.Parameters {
			parameters[i] = ApplyTypeParameters(parameter, bindings)
		}
		return ir.EnumType{Enum: type_.Enum, Parameters: parameters}
	}

	return type_
}
