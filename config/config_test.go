package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rubiojr/wrapgen/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

const minimalConfig = `
module:
  name: sample
inputs:
  typesystem: [typesystem_sample.yaml]
  metamodel: sample_model.yaml
`

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "out", cfg.Module.OutputDir)
	assert.Equal(t, "Sbk", cfg.Generator.Prefix)
	assert.Positive(t, cfg.Generator.Jobs)
	assert.True(t, cfg.Diagnostics.SuppressWarnings)
	assert.Equal(t, "info", cfg.Diagnostics.Level)
	assert.Equal(t, "none", cfg.Diagnostics.Debug)

	// defaults alone lack a module and inputs
	err := Validate(cfg)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
}

func TestLoadFromRootDir(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "wrapgen.yaml", minimalConfig+`
generator:
  avoid_protected_hack: true
  jobs: 2
`)

	cfg, err := NewLoader(dir, "").Load()
	require.NoError(t, err)
	assert.Equal(t, "sample", cfg.Module.Name)
	assert.Equal(t, "sample", cfg.PackageName())
	assert.Equal(t, "out", cfg.Module.OutputDir)
	assert.True(t, cfg.Generator.AvoidProtectedHack)
	assert.Equal(t, 2, cfg.Generator.Jobs)
	assert.Equal(t, "Sbk", cfg.Generator.Prefix)
	assert.Equal(t, []string{"typesystem_sample.yaml"}, cfg.Inputs.Typesystem)
	assert.Equal(t, filepath.Join(dir, "sample_model.yaml"), cfg.Path(cfg.Inputs.Metamodel))
	assert.Equal(t, "/abs/model.yaml", cfg.Path("/abs/model.yaml"))
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "conf")
	require.NoError(t, os.Mkdir(sub, 0o755))
	p := writeConfig(t, sub, "bindings.yml", `
module:
  name: geometry
  package: org.geometry
inputs:
  typesystem: [typesystem_geometry.yaml]
  metamodel: geometry_model.yaml
`)

	cfg, err := NewLoader(dir, p).Load()
	require.NoError(t, err)
	assert.Equal(t, "geometry", cfg.Module.Name)
	assert.Equal(t, "org.geometry", cfg.PackageName())
	assert.Equal(t, sub, cfg.BaseDir)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := NewLoader(t.TempDir(), "/nonexistent/wrapgen.yaml").Load()
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "wrapgen.yaml", "module: [unterminated\n")

	_, err := NewLoader(dir, "").Load()
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "wrapgen.yaml", minimalConfig)
	t.Setenv("WRAPGEN_GENERATOR_JOBS", "7")
	t.Setenv("WRAPGEN_MODULE_NAME", "fromenv")
	t.Setenv("WRAPGEN_DIAGNOSTICS_DEBUG", "sparse")

	cfg, err := NewLoader(dir, "").Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Generator.Jobs)
	assert.Equal(t, "fromenv", cfg.Module.Name)
	assert.Equal(t, "sparse", cfg.Diagnostics.Debug)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Module.Name = "sample"
		cfg.Inputs.Typesystem = []string{"ts.yaml"}
		cfg.Inputs.Metamodel = "model.yaml"
		return cfg
	}
	require.NoError(t, Validate(valid()))

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"missing module", func(c *Config) { c.Module.Name = "" }, ErrMissingModule},
		{"module not an identifier", func(c *Config) { c.Module.Name = "my-module" }, ErrInvalidModuleName},
		{"empty output", func(c *Config) { c.Module.OutputDir = " " }, ErrMissingOutput},
		{"zero jobs", func(c *Config) { c.Generator.Jobs = 0 }, ErrInvalidJobs},
		{"bad prefix", func(c *Config) { c.Generator.Prefix = "9x" }, ErrInvalidPrefix},
		{"no rule files", func(c *Config) { c.Inputs.Typesystem = nil }, ErrMissingInputs},
		{"no metamodel", func(c *Config) { c.Inputs.Metamodel = "" }, ErrMissingInputs},
		{"bad level", func(c *Config) { c.Diagnostics.Level = "loud" }, ErrInvalidLevel},
		{"bad debug", func(c *Config) { c.Diagnostics.Debug = "everything" }, ErrInvalidLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Generator.Jobs = -1
	cfg.Diagnostics.Level = "loud"

	errs := multierr.Errors(Validate(cfg))
	assert.Len(t, errs, 5)
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Module.Name = "sample"
	cfg.Generator.QObjectExtensions = true
	cfg.Generator.Jobs = 3

	opts := cfg.Options("// license")
	assert.Equal(t, "sample", opts.ModuleName)
	assert.Equal(t, "sample", opts.PackageName)
	assert.True(t, opts.UseQObjectExtensions)
	assert.False(t, opts.AvoidProtectedHack)
	assert.Equal(t, 3, opts.Jobs)
	assert.Equal(t, "// license", opts.LicenseComment)
}
