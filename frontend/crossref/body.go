package crossref

import (
	"fmt"

	"github.com/aaa-lang/aaa/frontend/aaaerr"
	"github.com/aaa-lang/aaa/frontend/ast"
	"github.com/aaa-lang/aaa/frontend/ir"
	"github.com/aaa-lang/aaa/util"
)

// functionBodyResolver resolves one function body. It tracks the local
// variables in scope so a bare name can be disambiguated: an argument
// wins over a local variable, which wins over a top-level name.
type functionBodyResolver struct {
	crossReferencer *crossReferencer
	function        *ir.Function
	localVariables  util.MSet[string]
}

func (r *functionBodyResolver) resolveFunctionBody(parsed ast.FunctionBody) (ir.FunctionBody, aaaerr.AaaError) {
	items := make([]ir.BodyItem, 0, len(parsed.Items))

	for _, parsedItem := range parsed.Items {
		item, err := r.resolveBodyItem(parsedItem)
		if err != nil {
			return ir.FunctionBody{}, err
		}
		items = append(items, item)
	}

	return ir.FunctionBody{Position: parsed.Position, Items: items}, nil
}

func (r *functionBodyResolver) resolveBodyItem(parsed ast.FunctionBodyItem) (ir.BodyItem, aaaerr.AaaError) {
	switch parsed := parsed.(type) {
	case ast.Assignment:
		return r.resolveAssignment(parsed)
	case ast.Boolean:
		return &ir.Boolean{Position: parsed.Position, Value: parsed.Value}, nil
	case ast.Branch:
		return r.resolveBranch(parsed)
	case ast.CallByPointer:
		return &ir.Call{Position: parsed.Position}, nil
	case ast.Char:
		return &ir.Char{Position: parsed.Position, Value: parsed.Value}, nil
	case ast.Foreach:
		return nil, aaaerr.New(aaaerr.NewUnsupportedForeach{Position: parsed.Position})
	case ast.FunctionCall:
		return r.resolveFunctionCall(parsed)
	case ast.PushFunctionType:
		return r.resolvePushFunctionType(parsed)
	case ast.GetFunction:
		return r.resolveGetFunction(parsed)
	case ast.GetField:
		return &ir.GetField{Position: parsed.Position, FieldName: parsed.FieldName.Value}, nil
	case ast.SetField:
		return r.resolveSetField(parsed)
	case ast.Integer:
		return &ir.Integer{Position: parsed.Position, Value: parsed.Value}, nil
	case ast.Match:
		return r.resolveMatch(parsed)
	case ast.Return:
		return &ir.Return{Position: parsed.Position}, nil
	case ast.String:
		return &ir.String{Position: parsed.Position, Value: parsed.Value}, nil
	case ast.Use:
		return r.resolveUse(parsed)
	case ast.While:
		return r.resolveWhile(parsed)
	}
	panic(fmt.Sprintf("unhandled body item at %s", parsed.Pos()))
}

func (r *functionBodyResolver) resolveAssignment(parsed ast.Assignment) (ir.BodyItem, aaaerr.AaaError) {
	body, err := r.resolveFunctionBody(parsed.Body)
	if err != nil {
		return nil, err
	}

	return &ir.Assignment{
		Position:  parsed.Position,
		Variables: toVariables(parsed.Variables),
		Body:      body,
	}, nil
}

func (r *functionBodyResolver) resolveBranch(parsed ast.Branch) (ir.BodyItem, aaaerr.AaaError) {
	condition, err := r.resolveFunctionBody(parsed.Condition)
	if err != nil {
		return nil, err
	}

	ifBody, err := r.resolveFunctionBody(parsed.IfBody)
	if err != nil {
		return nil, err
	}

	var elseBody *ir.FunctionBody
	if parsed.ElseBody != nil {
		resolved, err := r.resolveFunctionBody(*parsed.ElseBody)
		if err != nil {
			return nil, err
		}
		elseBody = &resolved
	}

	return &ir.Branch{
		Position:  parsed.Position,
		Condition: condition,
		IfBody:    ifBody,
		ElseBody:  elseBody,
	}, nil
}

// resolveFunctionCall decides what a bare name refers to and resolves
// any explicit type arguments at the call site against the enclosing
// function's type parameters.
func (r *functionBodyResolver) resolveFunctionCall(parsed ast.FunctionCall) (ir.BodyItem, aaaerr.AaaError) {
	name := parsed.Name()

	if r.function.HasArgument(name) {
		return &ir.CallArgument{Position: parsed.Position, Name: name}, nil
	}

	if r.localVariables.Contains(name) {
		return &ir.CallLocalVariable{Position: parsed.Position, Name: name}, nil
	}

	identifiable, err := r.crossReferencer.getIdentifiable(parsed.Position, name)
	if err != nil {
		return nil, err
	}

	signatureTypeParameters := r.function.Signature().TypeParameters

	typeParameters := make([]ir.Type, 0, len(parsed.Parameters))
	for _, parsedParameter := range parsed.Parameters {
		parameter, err := r.crossReferencer.resolveType(parsedParameter, signatureTypeParameters)
		if err != nil {
			return nil, r.crossReferencer.asInvalidArgument(err, parsedParameter.Pos())
		}
		typeParameters = append(typeParameters, parameter)
	}

	switch identifiable := identifiable.(type) {
	case *ir.Function:
		return &ir.CallFunction{
			Position:       parsed.Position,
			Function:       identifiable,
			TypeParameters: typeParameters,
		}, nil
	case *ir.Enum:
		return &ir.CallEnum{
			Position:       parsed.Position,
			Enum:           identifiable,
			TypeParameters: typeParameters,
		}, nil
	case *ir.Struct:
		return &ir.CallStruct{
			Position:       parsed.Position,
			Struct:         identifiable,
			TypeParameters: typeParameters,
		}, nil
	case *ir.EnumConstructor:
		return &ir.CallEnumConstructor{
			Position:        parsed.Position,
			EnumConstructor: identifiable,
			TypeParameters:  typeParameters,
		}, nil
	}

	// getIdentifiable follows imports, so an import cannot get here.
	panic(fmt.Sprintf("cannot call %s at %s", ir.Describe(identifiable), parsed.Position))
}

func (r *functionBodyResolver) resolvePushFunctionType(parsed ast.PushFunctionType) (ir.BodyItem, aaaerr.AaaError) {
	parsedType := ast.FunctionType{
		Position:      parsed.Position,
		ArgumentTypes: parsed.ArgumentTypes,
		ReturnTypes:   parsed.ReturnTypes,
	}

	resolved, err := r.crossReferencer.resolveFunctionPointerType(parsedType, r.function.Signature().TypeParameters)
	if err != nil {
		return nil, r.crossReferencer.asInvalidArgument(err, parsed.Position)
	}

	return &ir.PushFunctionType{
		Position: parsed.Position,
		Type:     resolved.(ir.FunctionPointerType),
	}, nil
}

func (r *functionBodyResolver) resolveGetFunction(parsed ast.GetFunction) (ir.BodyItem, aaaerr.AaaError) {
	name := parsed.Target.Value

	identifiable, err := r.crossReferencer.getIdentifiable(parsed.Position, name)
	if err != nil {
		return nil, aaaerr.New(aaaerr.NewGetFunctionNotFound{Position: parsed.Position, Name: name})
	}

	function, ok := identifiable.(*ir.Function)
	if !ok {
		return nil, aaaerr.New(aaaerr.NewGetFunctionNotAFunction{
			Position:     parsed.Position,
			Identifiable: identifiable,
		})
	}

	return &ir.GetFunction{Position: parsed.Position, Target: function}, nil
}

func (r *functionBodyResolver) resolveSetField(parsed ast.SetField) (ir.BodyItem, aaaerr.AaaError) {
	body, err := r.resolveFunctionBody(parsed.Body)
	if err != nil {
		return nil, err
	}

	return &ir.SetField{
		Position:  parsed.Position,
		FieldName: parsed.FieldName.Value,
		Body:      body,
	}, nil
}

func (r *functionBodyResolver) resolveMatch(parsed ast.Match) (ir.BodyItem, aaaerr.AaaError) {
	caseBlocks := make([]*ir.CaseBlock, 0, len(parsed.CaseBlocks))
	for _, parsedBlock := range parsed.CaseBlocks {
		caseBlock, err := r.resolveCaseBlock(parsedBlock)
		if err != nil {
			return nil, err
		}
		caseBlocks = append(caseBlocks, caseBlock)
	}

	defaultBlocks := make([]*ir.DefaultBlock, 0, len(parsed.DefaultBlocks))
	for _, parsedBlock := range parsed.DefaultBlocks {
		body, err := r.resolveFunctionBody(parsedBlock.Body)
		if err != nil {
			return nil, err
		}
		defaultBlocks = append(defaultBlocks, &ir.DefaultBlock{
			Position: parsedBlock.Position,
			Body:     body,
		})
	}

	return &ir.Match{
		Position:      parsed.Position,
		CaseBlocks:    caseBlocks,
		DefaultBlocks: defaultBlocks,
	}, nil
}

func (r *functionBodyResolver) resolveCaseBlock(parsed ast.CaseBlock) (*ir.CaseBlock, aaaerr.AaaError) {
	variables := toVariables(parsed.Label.Variables)

	for _, variable := range variables {
		r.localVariables.Add(variable.Name)
	}

	body, err := r.resolveFunctionBody(parsed.Body)

	for _, variable := range variables {
		r.localVariables.Remove(variable.Name)
	}

	if err != nil {
		return nil, err
	}

	return &ir.CaseBlock{
		Position:  parsed.Position,
		EnumName:  parsed.Label.EnumName.Value,
		Variant:   parsed.Label.Variant.Value,
		Variables: variables,
		Body:      body,
	}, nil
}

func (r *functionBodyResolver) resolveUse(parsed ast.Use) (ir.BodyItem, aaaerr.AaaError) {
	variables := toVariables(parsed.Variables)

	for _, variable := range variables {
		r.localVariables.Add(variable.Name)
	}

	body, err := r.resolveFunctionBody(parsed.Body)

	for _, variable := range variables {
		r.localVariables.Remove(variable.Name)
	}

	if err != nil {
		return nil, err
	}

	return &ir.Use{
		Position:  parsed.Position,
		Variables: variables,
		Body:      body,
	}, nil
}

func (r *functionBodyResolver) resolveWhile(parsed ast.While) (ir.BodyItem, aaaerr.AaaError) {
	condition, err := r.resolveFunctionBody(parsed.Condition)
	if err != nil {
		return nil, err
	}

	body, err := r.resolveFunctionBody(parsed.Body)
	if err != nil {
		return nil, err
	}

	return &ir.While{
		Position:  parsed.Position,
		Condition: condition,
		Body:      body,
	}, nil
}

func toVariables(parsed []ast.Identifier) []ir.Variable {
	variables := make([]ir.Variable, 0, len(parsed))
	for _, identifier := range parsed {
		variables = append(variables, ir.Variable{
			Position: identifier.Position,
			Name:     identifier.Value,
		})
	}
	return variables
}
