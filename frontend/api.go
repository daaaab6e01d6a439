// Package frontend is the semantic core's entry point: it takes parsed
// source files and produces a resolved, type-checked program graph.
// Parsing happens before this package; code generation after it.
package frontend

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/aaa-lang/aaa/frontend/aaaerr"
	"github.com/aaa-lang/aaa/frontend/ast"
	"github.com/aaa-lang/aaa/frontend/crossref"
	"github.com/aaa-lang/aaa/frontend/ir"
	"github.com/aaa-lang/aaa/frontend/typecheck"
	"github.com/aaa-lang/aaa/internal/log"
)

// Check cross-references and type-checks the files reachable from the
// config's entrypoint. The returned error collection being non-empty
// means the graph must not be handed to code generation; an error
// return means the input itself was unusable and nothing ran.
func Check(parsedFiles map[string]*ast.SourceFile, cfg Config) (*ir.Graph, *aaaerr.Errors, error) {
	if err := cfg.validate(parsedFiles); err != nil {
		return nil, nil, err
	}

	if cfg.Verbose {
		log.SetLevel(slog.LevelDebug)
	}

	graph, errs := crossref.CrossReference(
		parsedFiles,
		cfg.EntrypointPath,
		cfg.BuiltinsPath,
		cfg.CurrentDir,
	)
	if errs.HasError() {
		return graph, errs, nil
	}

	return graph, typecheck.Check(graph), nil
}

func (c Config) validate(parsedFiles map[string]*ast.SourceFile) error {
	if c.EntrypointPath == "" {
		return errors.New("config: entrypoint path is empty")
	}
	if c.BuiltinsPath == "" {
		return errors.New("config: builtins path is empty")
	}
	if _, ok := parsedFiles[c.EntrypointPath]; !ok {
		return errors.Errorf("config: entrypoint %s is not among the parsed files", c.EntrypointPath)
	}
	if _, ok := parsedFiles[c.BuiltinsPath]; !ok {
		return errors.Errorf("config: builtins file %s is not among the parsed files", c.BuiltinsPath)
	}
	return nil
}
