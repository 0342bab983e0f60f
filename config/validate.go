package config

import (
	"strings"

	"github.com/rubiojr/wrapgen/errors"
	"github.com/rubiojr/wrapgen/report"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

var (
	// ErrMissingModule indicates the module has no name.
	ErrMissingModule = errors.New("missing module name")

	// ErrInvalidModuleName indicates a module name that cannot appear in
	// generated identifiers.
	ErrInvalidModuleName = errors.New("invalid module name")

	// ErrMissingOutput indicates an empty output directory.
	ErrMissingOutput = errors.New("missing output directory")

	// ErrInvalidJobs indicates a non-positive job count.
	ErrInvalidJobs = errors.New("invalid job count")

	// ErrInvalidPrefix indicates a symbol prefix that is not an identifier.
	ErrInvalidPrefix = errors.New("invalid symbol prefix")

	// ErrMissingInputs indicates that no rule file or no metamodel is set.
	ErrMissingInputs = errors.New("missing inputs")

	// ErrInvalidLevel indicates an unknown log or debug level.
	ErrInvalidLevel = errors.New("invalid level")
)

// Validate checks the whole configuration and returns every problem found,
// combined into one error.
func Validate(cfg *Config) error {
	var errs error

	if strings.TrimSpace(cfg.Module.Name) == "" {
		errs = multierr.Append(errs, errors.Wrap(ErrMissingModule, "module.name is required"))
	} else if !isIdentifier(cfg.Module.Name) {
		errs = multierr.Append(errs, errors.Wrapf(ErrInvalidModuleName, "module.name %q", cfg.Module.Name))
	}
	if strings.TrimSpace(cfg.Module.OutputDir) == "" {
		errs = multierr.Append(errs, errors.Wrap(ErrMissingOutput, "module.output_dir is required"))
	}

	if cfg.Generator.Jobs <= 0 {
		errs = multierr.Append(errs, errors.Wrapf(ErrInvalidJobs, "generator.jobs must be positive, got %d", cfg.Generator.Jobs))
	}
	if cfg.Generator.Prefix != "" && !isIdentifier(cfg.Generator.Prefix) {
		errs = multierr.Append(errs, errors.Wrapf(ErrInvalidPrefix, "generator.prefix %q", cfg.Generator.Prefix))
	}

	if len(cfg.Inputs.Typesystem) == 0 {
		errs = multierr.Append(errs, errors.Wrap(ErrMissingInputs, "inputs.typesystem needs at least one file"))
	}
	if strings.TrimSpace(cfg.Inputs.Metamodel) == "" {
		errs = multierr.Append(errs, errors.Wrap(ErrMissingInputs, "inputs.metamodel is required"))
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(cfg.Diagnostics.Level)); err != nil {
		errs = multierr.Append(errs, errors.Wrapf(ErrInvalidLevel, "diagnostics.level %q", cfg.Diagnostics.Level))
	}
	if _, err := report.ParseDebugLevel(cfg.Diagnostics.Debug); err != nil {
		errs = multierr.Append(errs, errors.Wrapf(ErrInvalidLevel, "diagnostics.debug %q", cfg.Diagnostics.Debug))
	}

	return errs
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
