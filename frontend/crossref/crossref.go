// Package crossref turns parsed source files into a resolved program
// graph. It walks files depth-first along their imports, loads every
// top-level declaration into a flat table, and then resolves all names
// against that table: imports first, then struct fields, enum variants,
// function signatures, and finally function bodies.
package crossref

import (
	"log/slog"

	"github.com/aaa-lang/aaa/frontend/aaaerr"
	"github.com/aaa-lang/aaa/frontend/ast"
	"github.com/aaa-lang/aaa/frontend/ir"
	"github.com/aaa-lang/aaa/internal/log"
	"github.com/aaa-lang/aaa/util"
)

// CrossReference resolves all files reachable from entrypointPath. The
// returned graph is complete only when the error collection is empty;
// a file whose resolution failed is still present with whatever got
// resolved before the failure.
func CrossReference(
	parsedFiles map[string]*ast.SourceFile,
	entrypointPath string,
	builtinsPath string,
	currentDir string,
) (*ir.Graph, *aaaerr.Errors) {
	r := &crossReferencer{
		parsedFiles:     parsedFiles,
		entrypointPath:  entrypointPath,
		builtinsPath:    builtinsPath,
		currentDir:      currentDir,
		crossReferenced: util.NewEmptySet[string](),
		dependencyStack: &util.Stack[string]{},
		identifiables:   make(map[ir.Key]ir.Identifiable),
		logger:          log.DefaultLogger.With(slog.String("section", "crossref")),
	}

	r.crossReferenceFileWithDependencies(entrypointPath)

	graph := &ir.Graph{
		Identifiables:  r.identifiables,
		EntrypointPath: entrypointPath,
		BuiltinsPath:   builtinsPath,
	}

	r.logger.Debug("cross-referencing finished",
		slog.Int("identifiables", len(r.identifiables)),
		slog.Int("errors", r.errors.Len()),
	)

	return graph, r.errors
}

type crossReferencer struct {
	parsedFiles     map[string]*ast.SourceFile
	entrypointPath  string
	builtinsPath    string
	currentDir      string
	crossReferenced util.MSet[string]
	dependencyStack *util.Stack[string]
	identifiables   map[ir.Key]ir.Identifiable
	errors          *aaaerr.Errors
	logger          *slog.Logger
}

// crossReferenceFileWithDependencies visits path after all of its
// dependencies. A dependency cycle is reported and only that branch of
// the traversal stops; sibling dependencies are still visited.
func (r *crossReferencer) crossReferenceFileWithDependencies(path string) {
	if r.dependencyStack.Contains(path) {
		dependencies := append(r.dependencyStack.Items(), path)
		r.errors = r.errors.With(aaaerr.New(aaaerr.NewCyclicDependency{Dependencies: dependencies}))
		return
	}

	r.dependencyStack.Push(path)

	for _, dependency := range r.remainingDependencies(path) {
		r.crossReferenceFileWithDependencies(dependency)
	}

	if !r.crossReferenced.Contains(path) {
		r.crossReferenceFile(path)
	}

	r.dependencyStack.Pop()
	r.crossReferenced.Add(path)
}

func (r *crossReferencer) remainingDependencies(path string) []string {
	if path == r.builtinsPath {
		return nil
	}

	sourceFile, ok := r.parsedFiles[path]
	if !ok {
		// An import points at a file that was never parsed. The import
		// itself is reported when its target lookup fails.
		return nil
	}

	return append(sourceFile.Dependencies(r.currentDir), r.builtinsPath)
}

func (r *crossReferencer) crossReferenceFile(path string) {
	sourceFile, ok := r.parsedFiles[path]
	if !ok {
		return
	}

	r.logger.Debug("cross-referencing file", slog.String("path", path))

	identifiables := r.loadFile(sourceFile)

	for _, identifiable := range identifiables {
		if identifiable.IsBuiltin() && identifiable.Key().File != r.builtinsPath {
			r.errors = r.errors.With(aaaerr.New(aaaerr.NewUnexpectedBuiltin{
				Position:     identifiable.Pos(),
				Identifiable: identifiable,
			}))
		}
	}

	for _, identifiable := range identifiables {
		key := identifiable.Key()

		if existing, occupied := r.identifiables[key]; occupied {
			r.errors = r.errors.With(aaaerr.New(aaaerr.NewCollidingIdentifiables{
				Identifiables: [2]ir.Identifiable{existing, identifiable},
			}))
			continue
		}
		r.identifiables[key] = identifiable
	}

	var structs []*ir.Struct
	var enums []*ir.Enum
	var functions []*ir.Function
	var imports []*ir.Import

	for _, identifiable := range identifiables {
		switch identifiable := identifiable.(type) {
		case *ir.Struct:
			structs = append(structs, identifiable)
		case *ir.Enum:
			enums = append(enums, identifiable)
		case *ir.Function:
			functions = append(functions, identifiable)
		case *ir.Import:
			imports = append(imports, identifiable)
		}
	}

	for _, import_ := range imports {
		if err := r.resolveImport(import_); err != nil {
			r.errors = r.errors.With(err)
		}
	}

	for _, struct_ := range structs {
		if err := r.resolveStruct(struct_); err != nil {
			r.errors = r.errors.With(err)
		}
	}

	for _, enum := range enums {
		if err := r.resolveEnum(enum); err != nil {
			r.errors = r.errors.With(err)
		}
	}

	for _, function := range functions {
		if err := r.resolveFunctionSignature(function); err != nil {
			r.errors = r.errors.With(err)
		}
	}

	for _, function := range functions {
		if err := r.resolveFunctionBody(function); err != nil {
			r.errors = r.errors.With(err)
		}
	}
}

func (r *crossReferencer) loadFile(sourceFile *ast.SourceFile) []ir.Identifiable {
	var identifiables []ir.Identifiable

	for _, parsed := range sourceFile.Structs {
		identifiables = append(identifiables, &ir.Struct{Parsed: parsed})
	}

	for _, parsed := range sourceFile.Enums {
		enum := &ir.Enum{Parsed: parsed}
		identifiables = append(identifiables, enum)

		for _, variant := range parsed.Variants {
			identifiables = append(identifiables, &ir.EnumConstructor{
				Enum:    enum,
				Variant: variant,
			})
		}
	}

	for _, parsed := range sourceFile.Functions {
		identifiables = append(identifiables, &ir.Function{Parsed: parsed})
	}

	for _, parsedImport := range sourceFile.Imports {
		for _, item := range parsedImport.Items {
			identifiables = append(identifiables, &ir.Import{
				Parsed:     parsedImport,
				Item:       item,
				SourceFile: parsedImport.SourcePath(r.currentDir),
			})
		}
	}

	return identifiables
}

func (r *crossReferencer) resolveImport(import_ *ir.Import) aaaerr.AaaError {
	target, ok := r.identifiables[import_.TargetKey()]
	if !ok {
		return aaaerr.New(aaaerr.NewImportNotFound{Position: import_.Parsed.Position})
	}

	if _, indirect := target.(*ir.Import); indirect {
		return aaaerr.New(aaaerr.NewIndirectImport{Position: import_.Item.Position})
	}

	import_.Target = target
	return nil
}

// invalidTypeError signals that a name used in type syntax resolved to
// something that is not a struct or enum. Callers translate it into
// the error kind fitting their context.
type invalidTypeError struct {
	position     ast.Position
	identifiable ir.Identifiable
}

func (e invalidTypeError) Error() string {
	return "not a type: " + ir.Describe(e.identifiable)
}

func (r *crossReferencer) resolveStruct(struct_ *ir.Struct) aaaerr.AaaError {
	typeParameters, err := r.resolveDeclaredTypeParameters(struct_, struct_.Parsed.Parameters)
	if err != nil {
		return err
	}

	fields := make(map[string]ir.Type, len(struct_.Parsed.Fields))
	for _, parsedField := range struct_.Parsed.Fields {
		fieldType, err := r.resolveType(parsedField.Type, typeParameters)
		if err != nil {
			return r.asInvalidArgument(err, parsedField.Type.Pos())
		}
		fields[parsedField.Name.Value] = fieldType
	}

	struct_.Resolved = &ir.ResolvedStruct{
		TypeParameters: typeParameters,
		Fields:         fields,
	}

	return nil
}

func (r *crossReferencer) resolveEnum(enum *ir.Enum) aaaerr.AaaError {
	typeParameters, err := r.resolveDeclaredTypeParameters(enum, enum.Parsed.Parameters)
	if err != nil {
		return err
	}

	variants := make(map[string][]ir.Type, len(enum.Parsed.Variants))
	for _, parsedVariant := range enum.Parsed.Variants {
		data := make([]ir.Type, 0, len(parsedVariant.Data))
		for _, parsedItem := range parsedVariant.Data {
			item, err := r.resolveType(parsedItem, typeParameters)
			if err != nil {
				return r.asInvalidArgument(err, parsedItem.Pos())
			}
			data = append(data, item)
		}
		variants[parsedVariant.Name.Value] = data
	}

	enum.Resolved = &ir.ResolvedEnum{
		TypeParameters: typeParameters,
		Variants:       variants,
	}

	return nil
}

// resolveDeclaredTypeParameters maps the parameter names of a struct,
// enum, or function declaration to fresh parameter types. A parameter
// shadowing a top-level name in the same file is a collision.
func (r *crossReferencer) resolveDeclaredTypeParameters(
	owner ir.Identifiable,
	parsedParameters []ast.Identifier,
) (map[string]ir.Type, aaaerr.AaaError) {
	resolved := make(map[string]ir.Type, len(parsedParameters))

	for _, parsedParameter := range parsedParameters {
		key := ir.Key{File: owner.Pos().File, Name: parsedParameter.Value}

		if existing, occupied := r.identifiables[key]; occupied {
			return nil, aaaerr.New(aaaerr.NewCollidingIdentifiables{
				Identifiables: [2]ir.Identifiable{owner, existing},
			})
		}

		resolved[parsedParameter.Value] = ir.ParameterType{
			Position: parsedParameter.Position,
			Name:     parsedParameter.Value,
		}
	}

	return resolved, nil
}

// resolveType maps parsed type syntax to a resolved type. Names are
// tried against the enclosing declaration's type parameters first and
// the identifiable table second. Resolution of a name to anything
// other than a struct or enum comes back as invalidTypeError.
func (r *crossReferencer) resolveType(
	parsed ast.Type,
	typeParameters map[string]ir.Type,
) (ir.Type, error) {
	switch parsed := parsed.(type) {
	case ast.FunctionType:
		return r.resolveFunctionPointerType(parsed, typeParameters)
	case ast.RegularType:
		return r.resolveRegularType(parsed, typeParameters)
	}
	panic("unhandled parsed type")
}

func (r *crossReferencer) resolveFunctionPointerType(
	parsed ast.FunctionType,
	typeParameters map[string]ir.Type,
) (ir.Type, error) {
	argumentTypes := make([]ir.Type, 0, len(parsed.ArgumentTypes))
	for _, parsedArgumentType := range parsed.ArgumentTypes {
		argumentType, err := r.resolveType(parsedArgumentType, typeParameters)
		if err != nil {
			return nil, err
		}
		argumentTypes = append(argumentTypes, argumentType)
	}

	returnTypes := ir.Never()
	if !parsed.ReturnTypes.Never {
		types := make([]ir.Type, 0, len(parsed.ReturnTypes.Types))
		for _, parsedReturnType := range parsed.ReturnTypes.Types {
			returnType, err := r.resolveType(parsedReturnType, typeParameters)
			if err != nil {
				return nil, err
			}
			types = append(types, returnType)
		}
		returnTypes = ir.Sometimes(types...)
	}

	return ir.FunctionPointerType{
		ArgumentTypes: argumentTypes,
		ReturnTypes:   returnTypes,
	}, nil
}

func (r *crossReferencer) resolveRegularType(
	parsed ast.RegularType,
	typeParameters map[string]ir.Type,
) (ir.Type, error) {
	if type_, ok := typeParameters[parsed.Name.Value]; ok {
		return type_, nil
	}

	identifiable, err := r.getIdentifiable(parsed.Position, parsed.Name.Value)
	if err != nil {
		return nil, err
	}

	parameters := make([]ir.Type, 0, len(parsed.Parameters))
	for _, parsedParameter := range parsed.Parameters {
		parameter, err := r.resolveType(parsedParameter, typeParameters)
		if err != nil {
			return nil, err
		}
		parameters = append(parameters, parameter)
	}

	switch identifiable := identifiable.(type) {
	case *ir.Struct:
		return ir.StructType{Struct: identifiable, Parameters: parameters}, nil
	case *ir.Enum:
		return ir.EnumType{Enum: identifiable, Parameters: parameters}, nil
	}

	return nil, invalidTypeError{position: parsed.Position, identifiable: identifiable}
}

// asInvalidArgument converts a type resolution failure into the error
// reported for argument, field, and variant positions.
func (r *crossReferencer) asInvalidArgument(err error, position ast.Position) aaaerr.AaaError {
	if invalid, ok := err.(invalidTypeError); ok {
		return aaaerr.New(aaaerr.NewInvalidArgument{
			Position:     position,
			Identifiable: invalid.identifiable,
		})
	}
	return err.(aaaerr.AaaError)
}

func (r *crossReferencer) asInvalidReturnType(err error, position ast.Position) aaaerr.AaaError {
	if invalid, ok := err.(invalidTypeError); ok {
		return aaaerr.New(aaaerr.NewInvalidReturnType{
			Position:     position,
			Identifiable: invalid.identifiable,
		})
	}
	return err.(aaaerr.AaaError)
}

// getIdentifiable looks a name up the way source code sees it: the
// builtins file first, the local file second. A hit on an import is
// followed to its resolved target.
func (r *crossReferencer) getIdentifiable(position ast.Position, name string) (ir.Identifiable, aaaerr.AaaError) {
	identifiable, ok := r.identifiables[ir.Key{File: r.builtinsPath, Name: name}]
	if !ok {
		identifiable, ok = r.identifiables[ir.Key{File: position.File, Name: name}]
	}
	if !ok {
		return r.getIdentifiableWithTypeName(position, name)
	}

	if import_, isImport := identifiable.(*ir.Import); isImport {
		if import_.Target == nil {
			return nil, aaaerr.New(aaaerr.NewUnknownIdentifiable{Position: position, Name: name})
		}
		return import_.Target, nil
	}

	return identifiable, nil
}

// getIdentifiableWithTypeName handles member-function names such as
// "vec:push" where only the type was imported: the lookup is retried
// in the file the type's import points at.
func (r *crossReferencer) getIdentifiableWithTypeName(position ast.Position, name string) (ir.Identifiable, aaaerr.AaaError) {
	if typeName, _, isMember := splitMemberName(name); isMember {
		typeKey := ir.Key{File: position.File, Name: typeName}

		if typeImport, ok := r.identifiables[typeKey].(*ir.Import); ok {
			typePath := typeImport.Parsed.SourcePath(r.currentDir)
			return r.getIdentifiable(ast.Position{File: typePath}, name)
		}
	}

	return nil, aaaerr.New(aaaerr.NewUnknownIdentifiable{Position: position, Name: name})
}

func splitMemberName(name string) (typeName, funcName string, ok bool) {
	for i := 0; i < len(name); i++ {
		if name[i] == ':' {
			return name[:i], name[i+1:], true
		}
	}
	return "", "", false
}

func (r *crossReferencer) resolveFunctionSignature(function *ir.Function) aaaerr.AaaError {
	typeParameters, err := r.resolveDeclaredTypeParameters(function, function.Parsed.Name.Parameters)
	if err != nil {
		return err
	}

	arguments := make([]ir.Argument, 0, len(function.Parsed.Arguments))
	for _, parsedArgument := range function.Parsed.Arguments {
		argumentType, err := r.resolveType(parsedArgument.Type, typeParameters)
		if err != nil {
			return r.asInvalidArgument(err, parsedArgument.Position)
		}
		arguments = append(arguments, ir.Argument{
			Position: parsedArgument.Position,
			Name:     parsedArgument.Name.Value,
			Type:     argumentType,
		})
	}

	returnTypes := ir.Never()
	if !function.Parsed.ReturnTypes.Never {
		types := make([]ir.Type, 0, len(function.Parsed.ReturnTypes.Types))
		for _, parsedReturnType := range function.Parsed.ReturnTypes.Types {
			returnType, err := r.resolveType(parsedReturnType, typeParameters)
			if err != nil {
				return r.asInvalidReturnType(err, parsedReturnType.Pos())
			}
			types = append(types, returnType)
		}
		returnTypes = ir.Sometimes(types...)
	}

	function.Resolved = &ir.ResolvedFunction{
		TypeParameters: typeParameters,
		Arguments:      arguments,
		ReturnTypes:    returnTypes,
	}

	return nil
}

func (r *crossReferencer) resolveFunctionBody(function *ir.Function) aaaerr.AaaError {
	if function.Resolved == nil {
		// Signature resolution failed, there is nothing to resolve the
		// body against.
		return nil
	}

	if function.Parsed.Body == nil {
		return nil
	}

	resolver := &functionBodyResolver{
		crossReferencer: r,
		function:        function,
		localVariables:  util.NewEmptySet[string](),
	}

	body, err := resolver.resolveFunctionBody(*function.Parsed.Body)
	if err != nil {
		return err
	}

	function.Body = &body

	r.logger.Debug("resolved function body",
		slog.String("function", function.Name()),
		slog.Int("items", len(body.Items)),
	)

	return nil
}
