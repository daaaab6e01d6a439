package aaaerr

import (
	"fmt"
	"strings"

	"github.com/aaa-lang/aaa/frontend/ast"
	"github.com/aaa-lang/aaa/frontend/ir"
)

type NewCyclicDependency struct {
	// Dependencies is the traversal path, ending with the file that
	// reappeared on it.
	Dependencies []string
	stack        []byte
}

func (e NewCyclicDependency) Error() string {
	var sb strings.Builder
	sb.WriteString("Cyclic dependency detected:")
	for _, dependency := range e.Dependencies {
		sb.WriteString("\n- ")
		sb.WriteString(dependency)
	}
	return sb.String()
}
func (e NewCyclicDependency) Code() ErrCode { return CyclicDependency }
func (e NewCyclicDependency) Pos() ast.Position {
	return ast.Position{File: e.Dependencies[len(e.Dependencies)-1]}
}
func (e NewCyclicDependency) getStack() []byte { return e.stack }
func (e NewCyclicDependency) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewImportNotFound struct {
	ast.Position
	stack []byte
}

func (e NewImportNotFound) Error() string {
	return "Cannot find imported item."
}
func (e NewImportNotFound) Code() ErrCode    { return ImportNotFound }
func (e NewImportNotFound) getStack() []byte { return e.stack }
func (e NewImportNotFound) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewIndirectImport struct {
	ast.Position
	stack []byte
}

func (e NewIndirectImport) Error() string {
	return "Indirect imports are forbidden."
}
func (e NewIndirectImport) Code() ErrCode    { return IndirectImport }
func (e NewIndirectImport) getStack() []byte { return e.stack }
func (e NewIndirectImport) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewUnexpectedBuiltin struct {
	ast.Position
	Identifiable ir.Identifiable
	stack        []byte
}

func (e NewUnexpectedBuiltin) Error() string {
	return fmt.Sprintf("Builtin %s is not allowed outside the builtins file", ir.Describe(e.Identifiable))
}
func (e NewUnexpectedBuiltin) Code() ErrCode    { return UnexpectedBuiltin }
func (e NewUnexpectedBuiltin) getStack() []byte { return e.stack }
func (e NewUnexpectedBuiltin) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewCollidingIdentifiables struct {
	Identifiables [2]ir.Identifiable
	stack         []byte
}

// First returns the earlier of the two colliding declarations.
func (e NewCollidingIdentifiables) First() ir.Identifiable {
	if e.Identifiables[1].Pos().Before(e.Identifiables[0].Pos()) {
		return e.Identifiables[1]
	}
	return e.Identifiables[0]
}

func (e NewCollidingIdentifiables) Second() ir.Identifiable {
	if e.Identifiables[1].Pos().Before(e.Identifiables[0].Pos()) {
		return e.Identifiables[0]
	}
	return e.Identifiables[1]
}

func (e NewCollidingIdentifiables) Error() string {
	first, second := e.First(), e.Second()
	return fmt.Sprintf("Found name collision:\n%s: %s\n%s: %s",
		first.Pos(), ir.Describe(first), second.Pos(), ir.Describe(second))
}
func (e NewCollidingIdentifiables) Code() ErrCode     { return CollidingIdentifiables }
func (e NewCollidingIdentifiables) Pos() ast.Position { return e.First().Pos() }
func (e NewCollidingIdentifiables) getStack() []byte  { return e.stack }
func (e NewCollidingIdentifiables) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewUnknownIdentifiable struct {
	ast.Position
	Name  string
	stack []byte
}

func (e NewUnknownIdentifiable) Error() string {
	return fmt.Sprintf("Unknown identifiable %s", e.Name)
}
func (e NewUnknownIdentifiable) Code() ErrCode    { return UnknownIdentifiable }
func (e NewUnknownIdentifiable) getStack() []byte { return e.stack }
func (e NewUnknownIdentifiable) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewInvalidArgument struct {
	ast.Position
	Identifiable ir.Identifiable
	stack        []byte
}

func (e NewInvalidArgument) Error() string {
	return fmt.Sprintf("Cannot use %s as argument type", ir.Describe(e.Identifiable))
}
func (e NewInvalidArgument) Code() ErrCode    { return InvalidArgument }
func (e NewInvalidArgument) getStack() []byte { return e.stack }
func (e NewInvalidArgument) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewInvalidReturnType struct {
	ast.Position
	Identifiable ir.Identifiable
	stack        []byte
}

func (e NewInvalidReturnType) Error() string {
	return fmt.Sprintf("Cannot use %s as return type", ir.Describe(e.Identifiable))
}
func (e NewInvalidReturnType) Code() ErrCode    { return InvalidReturnType }
func (e NewInvalidReturnType) getStack() []byte { return e.stack }
func (e NewInvalidReturnType) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewGetFunctionNotFound struct {
	ast.Position
	Name  string
	stack []byte
}

func (e NewGetFunctionNotFound) Error() string {
	return fmt.Sprintf("Cannot get function %s, because it doesn't exist", e.Name)
}
func (e NewGetFunctionNotFound) Code() ErrCode    { return GetFunctionNotFound }
func (e NewGetFunctionNotFound) getStack() []byte { return e.stack }
func (e NewGetFunctionNotFound) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewGetFunctionNotAFunction struct {
	ast.Position
	Identifiable ir.Identifiable
	stack        []byte
}

func (e NewGetFunctionNotAFunction) Error() string {
	return fmt.Sprintf("Cannot get function %s, because it is a %s",
		e.Identifiable.Name(), e.Identifiable.Kind())
}
func (e NewGetFunctionNotAFunction) Code() ErrCode    { return GetFunctionNotAFunction }
func (e NewGetFunctionNotAFunction) getStack() []byte { return e.stack }
func (e NewGetFunctionNotAFunction) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}

type NewUnsupportedForeach struct {
	ast.Position
	stack []byte
}

func (e NewUnsupportedForeach) Error() string {
	return "foreach loops are not supported"
}
func (e NewUnsupportedForeach) Code() ErrCode    { return UnsupportedForeach }
func (e NewUnsupportedForeach) getStack() []byte { return e.stack }
func (e NewUnsupportedForeach) withStack(stack []byte) AaaError {
	e.stack = stack
	return e
}
