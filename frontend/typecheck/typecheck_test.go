package typecheck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaa-lang/aaa/frontend/aaaerr"
	"github.com/aaa-lang/aaa/frontend/ast"
	"github.com/aaa-lang/aaa/frontend/crossref"
	"github.com/aaa-lang/aaa/frontend/ir"
	"github.com/aaa-lang/aaa/frontend/typecheck"
)

const (
	builtinsPath = "/std/builtins.aaa"
	mainPath     = "/src/main.aaa"
	currentDir   = "/src"
)

func at(line int) ast.Position {
	return ast.Position{File: mainPath, Line: line, Column: 1}
}

func name(line int, value string) ast.Identifier {
	return ast.Identifier{Position: at(line), Value: value}
}

func typ(line int, typeName string, parameters ...ast.Type) ast.RegularType {
	return ast.RegularType{
		Position:   at(line),
		Name:       name(line, typeName),
		Parameters: parameters,
	}
}

func argument(line int, argName string, argType ast.Type) ast.Argument {
	return ast.Argument{Position: at(line), Name: name(line, argName), Type: argType}
}

func returning(types ...ast.Type) ast.ReturnTypes {
	return ast.ReturnTypes{Types: types}
}

func body(line int, items ...ast.FunctionBodyItem) ast.FunctionBody {
	return ast.FunctionBody{Position: at(line), Items: items}
}

func function(line int, fnName ast.FunctionName, arguments []ast.Argument, returnTypes ast.ReturnTypes, items ...ast.FunctionBodyItem) ast.Function {
	b := body(line, items...)
	return ast.Function{
		Position:    at(line),
		Name:        fnName,
		Arguments:   arguments,
		ReturnTypes: returnTypes,
		Body:        &b,
	}
}

func freeName(line int, funcName string, typeParameters ...string) ast.FunctionName {
	n := ast.FunctionName{Position: at(line), FuncName: funcName}
	for _, parameter := range typeParameters {
		n.Parameters = append(n.Parameters, name(line, parameter))
	}
	return n
}

func intLit(line int, value int64) ast.Integer {
	return ast.Integer{Position: at(line), Value: value}
}

func strLit(line int, value string) ast.String {
	return ast.String{Position: at(line), Value: value}
}

func boolLit(line int, value bool) ast.Boolean {
	return ast.Boolean{Position: at(line), Value: value}
}

func call(line int, funcName string, parameters ...ast.Type) ast.FunctionCall {
	return ast.FunctionCall{Position: at(line), FuncName: funcName, Parameters: parameters}
}

func memberCall(line int, typeName, funcName string) ast.FunctionCall {
	return ast.FunctionCall{Position: at(line), TypeName: typeName, FuncName: funcName}
}

func builtinsFile() *ast.SourceFile {
	builtinAt := func(line int) ast.Position {
		return ast.Position{File: builtinsPath, Line: line, Column: 1}
	}
	builtinName := func(line int, value string) ast.Identifier {
		return ast.Identifier{Position: builtinAt(line), Value: value}
	}
	builtinType := func(line int, typeName string) ast.RegularType {
		return ast.RegularType{Position: builtinAt(line), Name: builtinName(line, typeName)}
	}
	builtinStruct := func(line int, structName string, parameters ...string) ast.Struct {
		s := ast.Struct{Position: builtinAt(line), Name: builtinName(line, structName), IsBuiltin: true}
		for _, parameter := range parameters {
			s.Parameters = append(s.Parameters, builtinName(line, parameter))
		}
		return s
	}

	return &ast.SourceFile{
		Path: builtinsPath,
		Structs: []ast.Struct{
			builtinStruct(1, "int"),
			builtinStruct(2, "str"),
			builtinStruct(3, "bool"),
			builtinStruct(4, "char"),
			builtinStruct(5, "vec", "T"),
		},
		Functions: []ast.Function{
			{
				Position: builtinAt(6),
				Name: ast.FunctionName{
					Position:   builtinAt(6),
					FuncName:   "drop",
					Parameters: []ast.Identifier{builtinName(6, "A")},
				},
				Arguments: []ast.Argument{{
					Position: builtinAt(6),
					Name:     builtinName(6, "x"),
					Type: ast.RegularType{
						Position: builtinAt(6),
						Name:     builtinName(6, "A"),
					},
				}},
			},
			{
				Position: builtinAt(7),
				Name: ast.FunctionName{
					Position:   builtinAt(7),
					FuncName:   "dup",
					Parameters: []ast.Identifier{builtinName(7, "A")},
				},
				Arguments: []ast.Argument{{
					Position: builtinAt(7),
					Name:     builtinName(7, "x"),
					Type: ast.RegularType{
						Position: builtinAt(7),
						Name:     builtinName(7, "A"),
					},
				}},
				ReturnTypes: ast.ReturnTypes{Types: []ast.Type{
					ast.RegularType{Position: builtinAt(7), Name: builtinName(7, "A")},
					ast.RegularType{Position: builtinAt(7), Name: builtinName(7, "A")},
				}},
			},
			{
				Position: builtinAt(8),
				Name:     ast.FunctionName{Position: builtinAt(8), FuncName: "inc"},
				Arguments: []ast.Argument{{
					Position: builtinAt(8),
					Name:     builtinName(8, "x"),
					Type:     builtinType(8, "int"),
				}},
				ReturnTypes: ast.ReturnTypes{Types: []ast.Type{builtinType(8, "int")}},
			},
			{
				Position: builtinAt(9),
				Name:     ast.FunctionName{Position: builtinAt(9), FuncName: "exit"},
				Arguments: []ast.Argument{{
					Position: builtinAt(9),
					Name:     builtinName(9, "code"),
					Type:     builtinType(9, "int"),
				}},
				ReturnTypes: ast.ReturnTypes{Never: true},
			},
		},
	}
}

func check(t *testing.T, mainFile *ast.SourceFile) (*ir.Graph, *aaaerr.Errors) {
	t.Helper()
	parsed := map[string]*ast.SourceFile{
		builtinsPath: builtinsFile(),
		mainPath:     mainFile,
	}
	graph, errs := crossref.CrossReference(parsed, mainPath, builtinsPath, currentDir)
	require.False(t, errs.HasError(), "cross-referencing failed: %+v", errs.Errors())
	return graph, typecheck.Check(graph)
}

func checkFunctions(t *testing.T, functions ...ast.Function) *aaaerr.Errors {
	t.Helper()
	_, errs := check(t, &ast.SourceFile{Path: mainPath, Functions: functions})
	return errs
}

// checkMain type-checks a program whose main has the given body.
func checkMain(t *testing.T, items ...ast.FunctionBodyItem) *aaaerr.Errors {
	t.Helper()
	return checkFunctions(t, function(1, freeName(1, "main"), nil, returning(), items...))
}

func requireSingleError(t *testing.T, errs *aaaerr.Errors, code aaaerr.ErrCode) aaaerr.AaaError {
	t.Helper()
	require.Equal(t, 1, errs.Len(), "expected exactly one error, got: %+v", errs.Errors())
	err := errs.Errors()[0]
	require.Equal(t, code, err.Code(), "unexpected error: %s", err.Error())
	return err
}

func requireNoErrors(t *testing.T, errs *aaaerr.Errors) {
	t.Helper()
	require.False(t, errs.HasError(), "unexpected errors: %+v", errs.Errors())
}

func TestCheckLiteralsAndCalls(t *testing.T) {
	t.Run("literals push their builtin types", func(t *testing.T) {
		errs := checkFunctions(t,
			function(1, freeName(1, "main"), nil, returning()),
			function(2, freeName(2, "literals"), nil,
				returning(typ(2, "int"), typ(2, "str"), typ(2, "bool"), typ(2, "char")),
				intLit(3, 5),
				strLit(4, "hello"),
				boolLit(5, true),
				ast.Char{Position: at(6), Value: 'x'},
			),
		)
		requireNoErrors(t, errs)
	})

	t.Run("generic call infers from the stack", func(t *testing.T) {
		errs := checkMain(t, intLit(2, 5), call(3, "dup"), call(4, "drop"), call(5, "drop"))
		requireNoErrors(t, errs)
	})

	t.Run("stack underflow", func(t *testing.T) {
		errs := checkMain(t, call(2, "drop"))
		err := requireSingleError(t, errs, aaaerr.StackUnderflow)
		assert.Contains(t, err.Error(), "Stack underflow when calling drop")
		assert.Equal(t, at(2), err.Pos())
	})

	t.Run("stack type mismatch", func(t *testing.T) {
		errs := checkMain(t, strLit(2, "s"), call(3, "inc"), call(4, "drop"))
		err := requireSingleError(t, errs, aaaerr.StackTypes)
		assert.Contains(t, err.Error(), "Invalid stack when calling inc")
	})

	t.Run("explicit type arguments pin the binding", func(t *testing.T) {
		errs := checkMain(t, intLit(2, 5), call(3, "drop", typ(3, "str")))
		requireSingleError(t, errs, aaaerr.StackTypes)
	})

	t.Run("explicit type argument count is checked", func(t *testing.T) {
		errs := checkMain(t, intLit(2, 5), call(3, "drop", typ(3, "int"), typ(3, "str")))
		err := requireSingleError(t, errs, aaaerr.ParameterCount)
		assert.Equal(t, "Unexpected number of parameters\n   Found: 2\nExpected: 1", err.Error())
	})

	t.Run("function body must leave the declared stack", func(t *testing.T) {
		errs := checkFunctions(t,
			function(1, freeName(1, "main"), nil, returning()),
			function(2, freeName(2, "f"), nil, returning(typ(2, "int"))),
		)
		err := requireSingleError(t, errs, aaaerr.FunctionType)
		assert.Contains(t, err.Error(), `for function "f"`)
	})

	t.Run("errors are reported in position order", func(t *testing.T) {
		errs := checkFunctions(t,
			function(1, freeName(1, "main"), nil, returning()),
			function(2, freeName(2, "first"), nil, returning(), call(3, "drop")),
			function(4, freeName(4, "second"), nil, returning(), call(5, "drop")),
		)
		require.Equal(t, 2, errs.Len())
		assert.Equal(t, at(3), errs.Errors()[0].Pos())
		assert.Equal(t, at(5), errs.Errors()[1].Pos())
	})
}

func TestCheckBranch(t *testing.T) {
	t.Run("matching arms", func(t *testing.T) {
		ifBody := body(3, intLit(3, 1))
		elseBody := body(4, intLit(4, 2))
		errs := checkMain(t,
			ast.Branch{
				Position:  at(2),
				Condition: body(2, boolLit(2, true)),
				IfBody:    ifBody,
				ElseBody:  &elseBody,
			},
			call(5, "drop"),
		)
		requireNoErrors(t, errs)
	})

	t.Run("condition must produce exactly one bool", func(t *testing.T) {
		errs := checkMain(t, ast.Branch{
			Position:  at(2),
			Condition: body(2, intLit(2, 5)),
			IfBody:    body(3),
		})
		err := requireSingleError(t, errs, aaaerr.Condition)
		assert.Contains(t, err.Error(), "Unexpected stack after condition:")
	})

	t.Run("mismatching arms", func(t *testing.T) {
		elseBody := body(4)
		errs := checkMain(t, ast.Branch{
			Position:  at(2),
			Condition: body(2, boolLit(2, true)),
			IfBody:    body(3, intLit(3, 1)),
			ElseBody:  &elseBody,
		})
		err := requireSingleError(t, errs, aaaerr.Branch)
		assert.Contains(t, err.Error(), "Mismatching branch types:")
	})

	t.Run("missing else arm behaves as identity", func(t *testing.T) {
		errs := checkMain(t, ast.Branch{
			Position:  at(2),
			Condition: body(2, boolLit(2, true)),
			IfBody:    body(3, intLit(3, 1)),
		})
		requireSingleError(t, errs, aaaerr.Branch)
	})

	t.Run("diverging arm puts no constraint on the stack", func(t *testing.T) {
		elseBody := body(4, intLit(4, 1))
		errs := checkMain(t,
			ast.Branch{
				Position:  at(2),
				Condition: body(2, boolLit(2, true)),
				IfBody:    body(3, intLit(3, 1), call(3, "exit")),
				ElseBody:  &elseBody,
			},
			call(5, "drop"),
		)
		requireNoErrors(t, errs)
	})
}

func TestCheckWhile(t *testing.T) {
	t.Run("body must preserve the stack", func(t *testing.T) {
		errs := checkMain(t, ast.While{
			Position:  at(2),
			Condition: body(2, boolLit(2, true)),
			Body:      body(3, intLit(3, 5)),
		})
		err := requireSingleError(t, errs, aaaerr.While)
		assert.Contains(t, err.Error(), "Stack types changed in loop:")
	})

	t.Run("stack-neutral body", func(t *testing.T) {
		errs := checkMain(t, ast.While{
			Position:  at(2),
			Condition: body(2, boolLit(2, true)),
			Body:      body(3, intLit(3, 5), call(3, "drop")),
		})
		requireNoErrors(t, errs)
	})
}

func TestCheckDivergence(t *testing.T) {
	t.Run("code after a never call is unreachable", func(t *testing.T) {
		errs := checkMain(t, intLit(2, 0), call(3, "exit"), intLit(4, 5))
		err := requireSingleError(t, errs, aaaerr.UnreachableCode)
		assert.Equal(t, "Code is unreachable", err.Error())
		assert.Equal(t, at(4), err.Pos())
	})

	t.Run("never function may end with a diverging call", func(t *testing.T) {
		errs := checkFunctions(t,
			function(1, freeName(1, "main"), nil, returning()),
			function(2, freeName(2, "crash"), nil, ast.ReturnTypes{Never: true},
				intLit(3, 1), call(4, "exit")),
		)
		requireNoErrors(t, errs)
	})

	t.Run("never function must not return", func(t *testing.T) {
		errs := checkFunctions(t,
			function(1, freeName(1, "main"), nil, returning()),
			function(2, freeName(2, "crash"), nil, ast.ReturnTypes{Never: true}),
		)
		requireSingleError(t, errs, aaaerr.FunctionType)
	})

	t.Run("return checks the stack against the signature", func(t *testing.T) {
		errs := checkFunctions(t,
			function(1, freeName(1, "main"), nil, returning()),
			function(2, freeName(2, "f"), nil, returning(typ(2, "int")),
				ast.Return{Position: at(3)}),
		)
		err := requireSingleError(t, errs, aaaerr.ReturnStack)
		assert.Contains(t, err.Error(), `Invalid stack when using "return"`)
	})

	t.Run("early return", func(t *testing.T) {
		elseBody := body(5)
		errs := checkFunctions(t,
			function(1, freeName(1, "main"), nil, returning()),
			function(2, freeName(2, "f"), nil, returning(typ(2, "int")),
				ast.Branch{
					Position:  at(3),
					Condition: body(3, boolLit(3, true)),
					IfBody:    body(4, intLit(4, 1), ast.Return{Position: at(4)}),
					ElseBody:  &elseBody,
				},
				intLit(6, 2),
			),
		)
		requireNoErrors(t, errs)
	})
}

func TestCheckUse(t *testing.T) {
	t.Run("binds stack values to names", func(t *testing.T) {
		errs := checkMain(t,
			intLit(2, 5),
			ast.Use{
				Position:  at(3),
				Variables: []ast.Identifier{name(3, "a")},
				Body:      body(3, call(4, "a"), call(4, "drop")),
			},
		)
		requireNoErrors(t, errs)
	})

	t.Run("underflow", func(t *testing.T) {
		errs := checkMain(t, ast.Use{
			Position:  at(2),
			Variables: []ast.Identifier{name(2, "a")},
			Body:      body(2),
		})
		err := requireSingleError(t, errs, aaaerr.UseStackUnderflow)
		assert.Contains(t, err.Error(), "Cannot use 1 value(s), because the stack is too small.")
	})

	t.Run("binder shadowing a builtin collides", func(t *testing.T) {
		errs := checkMain(t,
			intLit(2, 5),
			ast.Use{
				Position:  at(3),
				Variables: []ast.Identifier{name(3, "drop")},
				Body:      body(3),
			},
		)
		err := requireSingleError(t, errs, aaaerr.NameCollision)
		assert.Contains(t, err.Error(), "local variable drop")
		assert.Contains(t, err.Error(), "function drop")
	})

	t.Run("binder shadowing an argument collides", func(t *testing.T) {
		errs := checkFunctions(t,
			function(1, freeName(1, "main"), nil, returning()),
			function(2, freeName(2, "f"),
				[]ast.Argument{argument(2, "x", typ(2, "int"))}, returning(),
				intLit(3, 5),
				ast.Use{
					Position:  at(4),
					Variables: []ast.Identifier{name(4, "x")},
					Body:      body(4),
				},
			),
		)
		err := requireSingleError(t, errs, aaaerr.NameCollision)
		assert.Contains(t, err.Error(), "argument x")
	})
}

func TestCheckAssignment(t *testing.T) {
	argList := []ast.Argument{argument(2, "x", typ(2, "int"))}

	t.Run("assigns a matching type", func(t *testing.T) {
		errs := checkFunctions(t,
			function(1, freeName(1, "main"), nil, returning()),
			function(2, freeName(2, "f"), argList, returning(),
				ast.Assignment{
					Position:  at(3),
					Variables: []ast.Identifier{name(3, "x")},
					Body:      body(3, intLit(3, 7)),
				},
			),
		)
		requireNoErrors(t, errs)
	})

	t.Run("type mismatch", func(t *testing.T) {
		errs := checkFunctions(t,
			function(1, freeName(1, "main"), nil, returning()),
			function(2, freeName(2, "f"), argList, returning(),
				ast.Assignment{
					Position:  at(3),
					Variables: []ast.Identifier{name(3, "x")},
					Body:      body(3, strLit(3, "s")),
				},
			),
		)
		err := requireSingleError(t, errs, aaaerr.AssignmentType)
		assert.Equal(t, "Cannot set variable x, due to invalid type.\nExpected: int\n   Found: str", err.Error())
	})

	t.Run("unknown variable", func(t *testing.T) {
		errs := checkFunctions(t,
			function(1, freeName(1, "main"), nil, returning()),
			function(2, freeName(2, "f"), argList, returning(),
				ast.Assignment{
					Position:  at(3),
					Variables: []ast.Identifier{name(3, "y")},
					Body:      body(3, intLit(3, 7)),
				},
			),
		)
		requireSingleError(t, errs, aaaerr.AssignedVariableNotFound)
	})

	t.Run("value count mismatch", func(t *testing.T) {
		errs := checkFunctions(t,
			function(1, freeName(1, "main"), nil, returning()),
			function(2, freeName(2, "f"), argList, returning(),
				ast.Assignment{
					Position:  at(3),
					Variables: []ast.Identifier{name(3, "x")},
					Body:      body(3, intLit(3, 1), intLit(3, 2)),
				},
			),
		)
		err := requireSingleError(t, errs, aaaerr.AssignmentStackSize)
		assert.Equal(t, "Cannot assign 2 value(s) to 1 variable(s)", err.Error())
	})
}

func pointStruct(line int) ast.Struct {
	return ast.Struct{
		Position: at(line),
		Name:     name(line, "point"),
		Fields: []ast.StructField{
			{Name: name(line, "x"), Type: typ(line, "int")},
			{Name: name(line, "y"), Type: typ(line, "int")},
		},
	}
}

func checkWithPoint(t *testing.T, items ...ast.FunctionBodyItem) *aaaerr.Errors {
	t.Helper()
	_, errs := check(t, &ast.SourceFile{
		Path:      mainPath,
		Structs:   []ast.Struct{pointStruct(1)},
		Functions: []ast.Function{function(2, freeName(2, "main"), nil, returning(), items...)},
	})
	return errs
}

func TestCheckGetField(t *testing.T) {
	fieldName := func(line int, field string) ast.StringLiteral {
		return ast.StringLiteral{Position: at(line), Value: field}
	}

	t.Run("pushes the field type", func(t *testing.T) {
		errs := checkWithPoint(t,
			call(3, "point"),
			ast.GetField{Position: at(4), FieldName: fieldName(4, "x")},
			call(5, "inc"),
			call(6, "drop"),
		)
		requireNoErrors(t, errs)
	})

	t.Run("empty stack", func(t *testing.T) {
		errs := checkWithPoint(t, ast.GetField{Position: at(3), FieldName: fieldName(3, "x")})
		err := requireSingleError(t, errs, aaaerr.GetFieldStackUnderflow)
		assert.Equal(t, "Cannot get field x, because the stack is empty", err.Error())
	})

	t.Run("non-struct target", func(t *testing.T) {
		errs := checkWithPoint(t,
			intLit(3, 5),
			ast.GetField{Position: at(4), FieldName: fieldName(4, "x")},
		)
		err := requireSingleError(t, errs, aaaerr.GetFieldFromNonStruct)
		assert.Equal(t, "Can only get field x from a struct, found struct int", err.Error())
	})

	t.Run("unknown field", func(t *testing.T) {
		errs := checkWithPoint(t,
			call(3, "point"),
			ast.GetField{Position: at(4), FieldName: fieldName(4, "z")},
		)
		err := requireSingleError(t, errs, aaaerr.GetFieldNotFound)
		assert.Equal(t, "Cannot get field z from struct point, because it doesn't exist", err.Error())
	})
}

func TestCheckSetField(t *testing.T) {
	fieldName := func(line int, field string) ast.StringLiteral {
		return ast.StringLiteral{Position: at(line), Value: field}
	}

	t.Run("consumes the struct", func(t *testing.T) {
		errs := checkWithPoint(t,
			call(3, "point"),
			ast.SetField{
				Position:  at(4),
				FieldName: fieldName(4, "x"),
				Body:      body(4, intLit(4, 5)),
			},
		)
		requireNoErrors(t, errs)
	})

	t.Run("wrong value type", func(t *testing.T) {
		errs := checkWithPoint(t,
			call(3, "point"),
			ast.SetField{
				Position:  at(4),
				FieldName: fieldName(4, "x"),
				Body:      body(4, strLit(4, "s")),
			},
		)
		err := requireSingleError(t, errs, aaaerr.SetFieldType)
		assert.Contains(t, err.Error(), "Invalid stack types when setting field x on struct point:")
	})

	t.Run("unknown field", func(t *testing.T) {
		errs := checkWithPoint(t,
			call(3, "point"),
			ast.SetField{
				Position:  at(4),
				FieldName: fieldName(4, "z"),
				Body:      body(4, intLit(4, 5)),
			},
		)
		err := requireSingleError(t, errs, aaaerr.SetFieldNotFound)
		assert.Equal(t, "Cannot set field z on struct point, because it doesn't exist", err.Error())
	})
}

func lightEnum(line int) ast.Enum {
	return ast.Enum{
		Position: at(line),
		Name:     name(line, "light"),
		Variants: []ast.EnumVariant{
			{Name: name(line, "red")},
			{Name: name(line, "green"), Data: []ast.Type{typ(line, "int")}},
		},
	}
}

func caseBlock(line int, enumName, variant string, variables []string, items ...ast.FunctionBodyItem) ast.CaseBlock {
	label := ast.CaseLabel{
		Position: at(line),
		EnumName: name(line, enumName),
		Variant:  name(line, variant),
	}
	for _, variable := range variables {
		label.Variables = append(label.Variables, name(line, variable))
	}
	return ast.CaseBlock{Position: at(line), Label: label, Body: body(line, items...)}
}

func checkWithLight(t *testing.T, items ...ast.FunctionBodyItem) *aaaerr.Errors {
	t.Helper()
	_, errs := check(t, &ast.SourceFile{
		Path:      mainPath,
		Enums:     []ast.Enum{lightEnum(1)},
		Functions: []ast.Function{function(2, freeName(2, "main"), nil, returning(), items...)},
	})
	return errs
}

func TestCheckMatch(t *testing.T) {
	t.Run("consistent children", func(t *testing.T) {
		errs := checkWithLight(t,
			call(3, "light"),
			ast.Match{
				Position: at(4),
				CaseBlocks: []ast.CaseBlock{
					caseBlock(5, "light", "red", nil, intLit(5, 0)),
					caseBlock(6, "light", "green", []string{"n"}, call(6, "n")),
				},
			},
			call(7, "drop"),
		)
		requireNoErrors(t, errs)
	})

	t.Run("case without binders pushes the variant data", func(t *testing.T) {
		errs := checkWithLight(t,
			call(3, "light"),
			ast.Match{
				Position: at(4),
				CaseBlocks: []ast.CaseBlock{
					caseBlock(5, "light", "red", nil, intLit(5, 0)),
					caseBlock(6, "light", "green", nil),
				},
			},
			call(7, "drop"),
		)
		requireNoErrors(t, errs)
	})

	t.Run("empty stack", func(t *testing.T) {
		errs := checkWithLight(t, ast.Match{Position: at(3)})
		err := requireSingleError(t, errs, aaaerr.MatchStackUnderflow)
		assert.Equal(t, "Cannot match on an empty stack", err.Error())
	})

	t.Run("non-enum", func(t *testing.T) {
		errs := checkWithLight(t, intLit(3, 5), ast.Match{Position: at(4)})
		err := requireSingleError(t, errs, aaaerr.MatchNonEnum)
		assert.Equal(t, "Cannot match on struct int", err.Error())
	})

	t.Run("case from the wrong enum", func(t *testing.T) {
		errs := checkWithLight(t,
			call(3, "light"),
			ast.Match{
				Position: at(4),
				CaseBlocks: []ast.CaseBlock{
					caseBlock(5, "shape", "red", nil),
				},
			},
		)
		err := requireSingleError(t, errs, aaaerr.MatchUnexpectedEnum)
		assert.Equal(t, "Unexpected enum case:\nExpected: light\n   Found: shape", err.Error())
	})

	t.Run("colliding case blocks", func(t *testing.T) {
		errs := checkWithLight(t,
			call(3, "light"),
			ast.Match{
				Position: at(4),
				CaseBlocks: []ast.CaseBlock{
					caseBlock(5, "light", "red", nil),
					caseBlock(6, "light", "red", nil),
				},
			},
		)
		err := requireSingleError(t, errs, aaaerr.CollidingCaseBlocks)
		assert.Contains(t, err.Error(), "Found colliding case blocks:")
		assert.Equal(t, at(5), err.Pos())
	})

	t.Run("unhandled variants", func(t *testing.T) {
		errs := checkWithLight(t,
			call(3, "light"),
			ast.Match{
				Position: at(4),
				CaseBlocks: []ast.CaseBlock{
					caseBlock(5, "light", "red", nil),
				},
			},
		)
		err := requireSingleError(t, errs, aaaerr.UnhandledEnumVariants)
		assert.Equal(t, "Some enum variant(s) are unhandled:\ncase light:green", err.Error())
	})

	t.Run("default covers the rest", func(t *testing.T) {
		errs := checkWithLight(t,
			call(3, "light"),
			ast.Match{
				Position: at(4),
				CaseBlocks: []ast.CaseBlock{
					caseBlock(5, "light", "red", nil),
				},
				DefaultBlocks: []ast.DefaultBlock{
					{Position: at(6), Body: body(6)},
				},
			},
		)
		requireNoErrors(t, errs)
	})

	t.Run("unreachable default", func(t *testing.T) {
		errs := checkWithLight(t,
			call(3, "light"),
			ast.Match{
				Position: at(4),
				CaseBlocks: []ast.CaseBlock{
					caseBlock(5, "light", "red", nil),
					caseBlock(6, "light", "green", nil, call(6, "drop")),
				},
				DefaultBlocks: []ast.DefaultBlock{
					{Position: at(7), Body: body(7)},
				},
			},
		)
		err := requireSingleError(t, errs, aaaerr.UnreachableDefault)
		assert.Equal(t, "Default block is unreachable", err.Error())
		assert.Equal(t, at(7), err.Pos())
	})

	t.Run("wrong binder count", func(t *testing.T) {
		errs := checkWithLight(t,
			call(3, "light"),
			ast.Match{
				Position: at(4),
				CaseBlocks: []ast.CaseBlock{
					caseBlock(5, "light", "red", nil),
					caseBlock(6, "light", "green", []string{"a", "b"}),
				},
			},
		)
		err := requireSingleError(t, errs, aaaerr.CaseVariableCount)
		assert.Equal(t, "Unexpected amount of variables for case light:green:\nExpected: 0 or 1\n   Found: 2", err.Error())
	})

	t.Run("inconsistent children", func(t *testing.T) {
		errs := checkWithLight(t,
			call(3, "light"),
			ast.Match{
				Position: at(4),
				CaseBlocks: []ast.CaseBlock{
					caseBlock(5, "light", "red", nil),
					caseBlock(6, "light", "green", nil),
				},
			},
		)
		err := requireSingleError(t, errs, aaaerr.InconsistentMatchChildren)
		assert.Contains(t, err.Error(), "Children of match have inconsistent stacks:")
		assert.Contains(t, err.Error(), "case light:red")
		assert.Contains(t, err.Error(), "case light:green")
	})

	t.Run("all children diverging makes the match diverge", func(t *testing.T) {
		errs := checkWithLight(t,
			call(3, "light"),
			ast.Match{
				Position: at(4),
				CaseBlocks: []ast.CaseBlock{
					caseBlock(5, "light", "red", nil, intLit(5, 1), call(5, "exit")),
					caseBlock(6, "light", "green", []string{"n"}, call(6, "n"), call(6, "exit")),
				},
			},
			intLit(7, 5),
		)
		err := requireSingleError(t, errs, aaaerr.UnreachableCode)
		assert.Equal(t, at(7), err.Pos())
	})
}

func TestCheckEnumConstructor(t *testing.T) {
	t.Run("consumes the data and pushes the enum", func(t *testing.T) {
		_, errs := check(t, &ast.SourceFile{
			Path:  mainPath,
			Enums: []ast.Enum{lightEnum(1)},
			Functions: []ast.Function{
				function(2, freeName(2, "main"), nil, returning()),
				function(3, freeName(3, "make"), nil, returning(typ(3, "light")),
					intLit(4, 5),
					memberCall(5, "light", "green"),
				),
			},
		})
		requireNoErrors(t, errs)
	})

	t.Run("generic enum requires explicit type arguments", func(t *testing.T) {
		opt := ast.Enum{
			Position:   at(1),
			Name:       name(1, "opt"),
			Parameters: []ast.Identifier{name(1, "T")},
			Variants: []ast.EnumVariant{
				{Name: name(1, "none")},
				{Name: name(1, "some"), Data: []ast.Type{typ(1, "T")}},
			},
		}

		t.Run("with them", func(t *testing.T) {
			_, errs := check(t, &ast.SourceFile{
				Path:  mainPath,
				Enums: []ast.Enum{opt},
				Functions: []ast.Function{
					function(2, freeName(2, "main"), nil, returning()),
					function(3, freeName(3, "make"), nil,
						returning(typ(3, "opt", typ(3, "int"))),
						intLit(4, 5),
						ast.FunctionCall{
							Position:   at(5),
							TypeName:   "opt",
							FuncName:   "some",
							Parameters: []ast.Type{typ(5, "int")},
						},
					),
				},
			})
			requireNoErrors(t, errs)
		})

		t.Run("without them", func(t *testing.T) {
			_, errs := check(t, &ast.SourceFile{
				Path:  mainPath,
				Enums: []ast.Enum{opt},
				Functions: []ast.Function{
					function(2, freeName(2, "main"), nil, returning()),
					function(3, freeName(3, "make"), nil,
						returning(typ(3, "opt", typ(3, "int"))),
						intLit(4, 5),
						memberCall(5, "opt", "some"),
					),
				},
			})
			requireSingleError(t, errs, aaaerr.ParameterCount)
		})
	})
}

func TestCheckStructAndEnumCalls(t *testing.T) {
	t.Run("struct call pushes a zero value", func(t *testing.T) {
		errs := checkFunctions(t,
			function(1, freeName(1, "main"), nil, returning()),
			function(2, freeName(2, "make"), nil,
				returning(typ(2, "vec", typ(2, "int"))),
				call(3, "vec", typ(3, "int")),
			),
		)
		requireNoErrors(t, errs)
	})

	t.Run("generic struct call without type arguments", func(t *testing.T) {
		errs := checkMain(t, call(2, "vec"), call(3, "drop"))
		err := requireSingleError(t, errs, aaaerr.ParameterCount)
		assert.Equal(t, "Unexpected number of parameters\n   Found: 0\nExpected: 1", err.Error())
	})
}

func TestCheckFunctionPointers(t *testing.T) {
	t.Run("push and call a function pointer literal", func(t *testing.T) {
		errs := checkMain(t,
			intLit(2, 5),
			ast.PushFunctionType{
				Position:      at(3),
				ArgumentTypes: []ast.Type{typ(3, "int")},
			},
			ast.CallByPointer{Position: at(4)},
		)
		requireNoErrors(t, errs)
	})

	t.Run("get a function and call it", func(t *testing.T) {
		errs := checkFunctions(t,
			function(1, freeName(1, "main"), nil, returning(),
				intLit(2, 5),
				ast.GetFunction{
					Position: at(3),
					Target:   ast.StringLiteral{Position: at(3), Value: "consume"},
				},
				ast.CallByPointer{Position: at(4)},
			),
			function(5, freeName(5, "consume"),
				[]ast.Argument{argument(5, "x", typ(5, "int"))}, returning(),
				call(6, "x"), call(6, "drop")),
		)
		requireNoErrors(t, errs)
	})

	t.Run("call on an empty stack", func(t *testing.T) {
		errs := checkMain(t, ast.CallByPointer{Position: at(2)})
		err := requireSingleError(t, errs, aaaerr.CallStackUnderflow)
		assert.Equal(t, "Cannot call function pointer on an empty stack", err.Error())
	})

	t.Run("call a non-function", func(t *testing.T) {
		errs := checkMain(t, intLit(2, 5), ast.CallByPointer{Position: at(3)})
		err := requireSingleError(t, errs, aaaerr.CallNonFunction)
		assert.Equal(t, "Can only call a function pointer, found struct int", err.Error())
	})
}

func TestCheckMemberFunctions(t *testing.T) {
	memberName := func(line int, typeName, funcName string) ast.FunctionName {
		return ast.FunctionName{Position: at(line), TypeName: typeName, FuncName: funcName}
	}

	checkMember := func(t *testing.T, member ast.Function) *aaaerr.Errors {
		t.Helper()
		_, errs := check(t, &ast.SourceFile{
			Path:    mainPath,
			Structs: []ast.Struct{pointStruct(1)},
			Functions: []ast.Function{
				function(2, freeName(2, "main"), nil, returning()),
				member,
			},
		})
		return errs
	}

	t.Run("associated type as first argument", func(t *testing.T) {
		errs := checkMember(t, function(3, memberName(3, "point", "norm"),
			[]ast.Argument{argument(3, "p", typ(3, "point"))}, returning()))
		requireNoErrors(t, errs)
	})

	t.Run("no arguments", func(t *testing.T) {
		errs := checkMember(t, function(3, memberName(3, "point", "norm"), nil, returning()))
		err := requireSingleError(t, errs, aaaerr.MemberFunctionWithoutArguments)
		assert.Equal(t, "Member function point:norm should have associated type as first argument", err.Error())
	})

	t.Run("wrong first argument type", func(t *testing.T) {
		errs := checkMember(t, function(3, memberName(3, "point", "norm"),
			[]ast.Argument{argument(3, "p", typ(3, "int"))}, returning()))
		err := requireSingleError(t, errs, aaaerr.MemberFunctionUnexpectedTarget)
		assert.Equal(t, "First argument of member function point:norm has unexpected type\nExpected: point\n   Found: int", err.Error())
	})

	t.Run("first argument is not a struct or enum", func(t *testing.T) {
		errs := checkMember(t, function(3, memberName(3, "point", "norm"),
			[]ast.Argument{argument(3, "p", ast.FunctionType{Position: at(3)})}, returning()))
		err := requireSingleError(t, errs, aaaerr.MemberFunctionInvalidTarget)
		assert.Contains(t, err.Error(), "Invalid first argument of member function point:norm")
	})
}

func TestCheckMainFunction(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		errs := checkFunctions(t, function(1, freeName(1, "helper"), nil, returning()))
		err := requireSingleError(t, errs, aaaerr.MainFunctionNotFound)
		assert.Equal(t, "No main function found", err.Error())
		assert.Equal(t, mainPath, err.Pos().File)
	})

	t.Run("not a function", func(t *testing.T) {
		_, errs := check(t, &ast.SourceFile{
			Path: mainPath,
			Structs: []ast.Struct{{
				Position: at(1),
				Name:     name(1, "main"),
				Fields:   []ast.StructField{},
			}},
		})
		err := requireSingleError(t, errs, aaaerr.MainNonFunction)
		assert.Equal(t, "main should be a function, found struct main instead.", err.Error())
	})

	t.Run("argv and exit code", func(t *testing.T) {
		errs := checkFunctions(t, function(1, freeName(1, "main"),
			[]ast.Argument{argument(1, "argv", typ(1, "vec", typ(1, "str")))},
			returning(typ(1, "int")),
			intLit(2, 0),
		))
		requireNoErrors(t, errs)
	})

	t.Run("type parameters are rejected", func(t *testing.T) {
		errs := checkFunctions(t, function(1, freeName(1, "main", "T"), nil, returning()))
		requireSingleError(t, errs, aaaerr.InvalidMainSignature)
	})

	t.Run("wrong argument type", func(t *testing.T) {
		errs := checkFunctions(t, function(1, freeName(1, "main"),
			[]ast.Argument{argument(1, "x", typ(1, "int"))}, returning()))
		requireSingleError(t, errs, aaaerr.InvalidMainSignature)
	})

	t.Run("wrong return type", func(t *testing.T) {
		errs := checkFunctions(t, function(1, freeName(1, "main"), nil,
			returning(typ(1, "str")),
			strLit(2, "done"),
		))
		requireSingleError(t, errs, aaaerr.InvalidMainSignature)
	})
}
