package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rubiojr/wrapgen/errors"
	"github.com/spf13/viper"
)

// Loader reads the configuration of one project.
type Loader struct {
	rootDir string
	file    string
}

// NewLoader returns a loader searching rootDir for wrapgen.yaml. A non-empty
// file names the config file explicitly instead.
func NewLoader(rootDir, file string) *Loader {
	return &Loader{rootDir: rootDir, file: file}
}

// Load applies, from lowest to highest priority: defaults, the config file,
// WRAPGEN_* environment variables. The result is validated.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()
	if l.file != "" {
		v.SetConfigFile(l.file)
	} else {
		v.SetConfigName("wrapgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(l.rootDir)
	}

	v.SetEnvPrefix("WRAPGEN")
	v.AutomaticEnv()
	// WRAPGEN_GENERATOR_JOBS sets generator.jobs
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || l.file != "" {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	cfg.BaseDir = l.rootDir
	if used := v.ConfigFileUsed(); used != "" {
		cfg.BaseDir = filepath.Dir(used)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

var envKeys = []string{
	"module.name",
	"module.package",
	"module.output_dir",
	"module.license_file",
	"generator.avoid_protected_hack",
	"generator.qobject_extensions",
	"generator.prefix",
	"generator.jobs",
	"inputs.metamodel",
	"inputs.typesystem_paths",
	"diagnostics.suppress_warnings",
	"diagnostics.json",
	"diagnostics.level",
	"diagnostics.debug",
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("module.output_dir", d.Module.OutputDir)

	v.SetDefault("generator.prefix", d.Generator.Prefix)
	v.SetDefault("generator.jobs", d.Generator.Jobs)

	v.SetDefault("diagnostics.suppress_warnings", d.Diagnostics.SuppressWarnings)
	v.SetDefault("diagnostics.level", d.Diagnostics.Level)
	v.SetDefault("diagnostics.debug", d.Diagnostics.Debug)
}

// Load reads the configuration of the working directory, or of file when
// it is set.
func Load(file string) (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "getting working directory")
	}
	return NewLoader(wd, file).Load()
}
