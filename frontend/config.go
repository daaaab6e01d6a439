package frontend

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config describes one compilation.
type Config struct {
	// EntrypointPath is the file whose main function starts the
	// program. Must be a key of the parsed-files map given to Check.
	EntrypointPath string
	// BuiltinsPath is the file declaring the builtin types and
	// functions the runtime provides.
	BuiltinsPath string
	// CurrentDir anchors dotted import paths ("foo.bar" resolves to
	// CurrentDir/foo/bar.aaa).
	CurrentDir string
	// Verbose enables debug tracing of the crossref and typecheck
	// sections.
	Verbose bool
}

// tomlProject is a compilation as encoded in an aaa.toml project file.
type tomlProject struct {
	Entrypoint string `toml:"entrypoint"`
	Builtins   string `toml:"builtins"`
	Verbose    bool   `toml:"verbose"`
}

// LoadConfig reads an aaa.toml project file. Relative entrypoint and
// builtins paths are resolved against the file's directory, which also
// becomes CurrentDir.
func LoadConfig(path string) (Config, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading project file %s", path)
	}

	project := &tomlProject{}
	if err := toml.Unmarshal(buff, project); err != nil {
		return Config{}, errors.Wrapf(err, "parsing project file %s", path)
	}

	if project.Entrypoint == "" {
		return Config{}, errors.Errorf("project file %s: missing entrypoint", path)
	}
	if project.Builtins == "" {
		return Config{}, errors.Errorf("project file %s: missing builtins", path)
	}

	projectDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return Config{}, errors.Wrapf(err, "resolving project directory of %s", path)
	}

	return Config{
		EntrypointPath: absIn(projectDir, project.Entrypoint),
		BuiltinsPath:   absIn(projectDir, project.Builtins),
		CurrentDir:     projectDir,
		Verbose:        project.Verbose,
	}, nil
}

func absIn(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}
