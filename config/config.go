// Package config loads the generator settings of a binding project.
package config

import (
	"path/filepath"
	"runtime"

	"github.com/rubiojr/wrapgen/headergen"
)

// Config is the complete wrapgen configuration. It is read from wrapgen.yaml
// with WRAPGEN_* environment variable overrides.
type Config struct {
	Module      ModuleConfig      `yaml:"module" mapstructure:"module"`
	Generator   GeneratorConfig   `yaml:"generator" mapstructure:"generator"`
	Inputs      InputsConfig      `yaml:"inputs" mapstructure:"inputs"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics" mapstructure:"diagnostics"`

	// BaseDir is the directory relative paths are resolved against: the
	// directory of the config file, or the loader's root.
	BaseDir string `yaml:"-" mapstructure:"-"`
}

// ModuleConfig names the binding module and where its headers go.
type ModuleConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`                 // module name, e.g. "sample"
	Package     string `yaml:"package" mapstructure:"package"`           // dotted target package; defaults to the module name
	OutputDir   string `yaml:"output_dir" mapstructure:"output_dir"`     // root of the generated tree
	LicenseFile string `yaml:"license_file" mapstructure:"license_file"` // comment copied to the top of every header
}

// GeneratorConfig shapes the generated code.
type GeneratorConfig struct {
	AvoidProtectedHack bool   `yaml:"avoid_protected_hack" mapstructure:"avoid_protected_hack"`
	QObjectExtensions  bool   `yaml:"qobject_extensions" mapstructure:"qobject_extensions"`
	Prefix             string `yaml:"prefix" mapstructure:"prefix"`
	Jobs               int    `yaml:"jobs" mapstructure:"jobs"`
}

// InputsConfig lists the rule files and the extracted metamodel.
type InputsConfig struct {
	Typesystem []string `yaml:"typesystem" mapstructure:"typesystem"`
	Metamodel  string   `yaml:"metamodel" mapstructure:"metamodel"`
	// TypesystemPaths is a list of directories, separated like PATH, where
	// rule files are searched when not found as given.
	TypesystemPaths string `yaml:"typesystem_paths" mapstructure:"typesystem_paths"`
}

// DiagnosticsConfig controls logging and warning suppression.
type DiagnosticsConfig struct {
	SuppressWarnings bool   `yaml:"suppress_warnings" mapstructure:"suppress_warnings"`
	JSON             bool   `yaml:"json" mapstructure:"json"`
	Level            string `yaml:"level" mapstructure:"level"` // debug, info, warn or error
	Debug            string `yaml:"debug" mapstructure:"debug"` // none, sparse, medium or full
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Module: ModuleConfig{
			OutputDir: "out",
		},
		Generator: GeneratorConfig{
			Prefix: headergen.DefaultPrefix,
			Jobs:   runtime.NumCPU(),
		},
		Diagnostics: DiagnosticsConfig{
			SuppressWarnings: true,
			Level:            "info",
			Debug:            "none",
		},
	}
}

// Path resolves p against BaseDir unless it is absolute or empty.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// PackageName is the target package, falling back to the module name.
func (c *Config) PackageName() string {
	if c.Module.Package != "" {
		return c.Module.Package
	}
	return c.Module.Name
}

// Options converts the configuration to generator options. The license
// comment is read separately since it lives in its own file.
func (c *Config) Options(license string) headergen.Options {
	return headergen.Options{
		ModuleName:           c.Module.Name,
		PackageName:          c.PackageName(),
		AvoidProtectedHack:   c.Generator.AvoidProtectedHack,
		UseQObjectExtensions: c.Generator.QObjectExtensions,
		Prefix:               c.Generator.Prefix,
		LicenseComment:       license,
		Jobs:                 c.Generator.Jobs,
	}
}
