package cmd

import (
	"context"
	"path/filepath"

	"github.com/rubiojr/wrapgen/config"
	"github.com/rubiojr/wrapgen/errors"
	"github.com/rubiojr/wrapgen/headergen"
	"github.com/rubiojr/wrapgen/metamodel"
	"github.com/rubiojr/wrapgen/output"
	"github.com/rubiojr/wrapgen/report"
	"github.com/rubiojr/wrapgen/ruleset"
	"github.com/rubiojr/wrapgen/typedb"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Pipeline runs one generation: rules, metamodel, synthesis, output.
type Pipeline struct {
	Config   *config.Config
	DB       *typedb.Database
	Reporter *report.Reporter

	fs afero.Fs
}

// NewPipeline prepares an empty database configured from cfg. Warnings
// logged through the pipeline's reporter are checked against the
// database's suppression patterns. A nil fs means the OS filesystem.
func NewPipeline(cfg *config.Config, log *zap.SugaredLogger, fs afero.Fs) *Pipeline {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	db := typedb.New()
	db.SetSuppressWarnings(cfg.Diagnostics.SuppressWarnings)
	for _, dir := range filepath.SplitList(cfg.Inputs.TypesystemPaths) {
		if dir != "" {
			db.AddTypesystemPath(cfg.Path(dir))
		}
	}

	rep := report.New(log, db)
	if debug, err := report.ParseDebugLevel(cfg.Diagnostics.Debug); err == nil {
		rep.SetDebugLevel(debug)
	}
	return &Pipeline{Config: cfg, DB: db, Reporter: rep, fs: fs}
}

// LoadRules loads every configured rule file into the database.
func (p *Pipeline) LoadRules() error {
	l := ruleset.NewLoader(p.fs, p.DB)
	for _, f := range p.Config.Inputs.Typesystem {
		p.Reporter.Debug(report.DebugSparse, "loading rules", "file", f)
		if err := l.LoadFile(p.Config.Path(f)); err != nil {
			return err
		}
	}
	return nil
}

// LoadModel reads the configured metamodel against the loaded rules.
func (p *Pipeline) LoadModel() (*metamodel.Model, error) {
	return ruleset.LoadModelFile(p.fs, p.Config.Path(p.Config.Inputs.Metamodel), p.DB)
}

func (p *Pipeline) license() (string, error) {
	if p.Config.Module.LicenseFile == "" {
		return "", nil
	}
	data, err := afero.ReadFile(p.fs, p.Config.Path(p.Config.Module.LicenseFile))
	if err != nil {
		return "", errors.Wrap(err, "reading license file")
	}
	return string(data), nil
}

// Generate loads the inputs and synthesizes the headers without writing
// them.
func (p *Pipeline) Generate(ctx context.Context) (*headergen.Result, error) {
	if err := p.LoadRules(); err != nil {
		return nil, err
	}
	model, err := p.LoadModel()
	if err != nil {
		return nil, err
	}
	license, err := p.license()
	if err != nil {
		return nil, err
	}

	gen := &headergen.Generator{
		DB:       p.DB,
		Model:    model,
		Options:  p.Config.Options(license),
		Reporter: p.Reporter,
	}
	return gen.Run(ctx)
}

// Write stores the artifacts below the configured output directory.
// onWrite may be nil.
func (p *Pipeline) Write(res *headergen.Result, onWrite func(output.Artifact, error)) error {
	sink := output.NewSink(p.fs, p.Config.Path(p.Config.Module.OutputDir))
	sink.OnWrite = func(a output.Artifact, err error) {
		if err != nil {
			p.Reporter.Report(err, "artifact", a.Name)
		} else {
			p.Reporter.Debug(report.DebugMedium, "wrote header", "path", sink.Path(a))
		}
		if onWrite != nil {
			onWrite(a, err)
		}
	}
	return sink.WriteAll(res.Artifacts())
}
