// Package headergen synthesizes the C++ headers that expose a native class
// library to the CPython runtime: one wrapper header per class and one
// aggregate header per module.
//
// Synthesis reads a type database and a metamodel that are complete before
// Run is called and are never modified by it. Type indices and include order
// are fixed sequentially first; class bodies may then be rendered
// concurrently, and the output is identical for any number of jobs.
package headergen

import (
	"context"
	"path"

	"github.com/rubiojr/wrapgen/errors"
	"github.com/rubiojr/wrapgen/metamodel"
	"github.com/rubiojr/wrapgen/output"
	"github.com/rubiojr/wrapgen/report"
	"github.com/rubiojr/wrapgen/typedb"
	ts "github.com/rubiojr/wrapgen/typesystem"
	"golang.org/x/sync/errgroup"
)

// Options shape the generated code.
type Options struct {
	ModuleName  string
	PackageName string

	// AvoidProtectedHack generates forwarders for protected members instead
	// of redefining "protected" as "public".
	AvoidProtectedHack   bool
	UseQObjectExtensions bool

	Prefix         string
	LicenseComment string

	// Jobs bounds the number of class headers rendered at once.
	Jobs int
}

// Generator produces the headers of one module.
type Generator struct {
	DB       *typedb.Database
	Model    *metamodel.Model
	Options  Options
	Reporter *report.Reporter
}

// Result holds the generated artifacts, paths relative to the output root.
type Result struct {
	Classes []output.Artifact
	Module  output.Artifact
	Indices []TypeIndex
}

// Artifacts returns every artifact, class headers first.
func (r *Result) Artifacts() []output.Artifact {
	out := make([]output.Artifact, 0, len(r.Classes)+1)
	out = append(out, r.Classes...)
	return append(out, r.Module)
}

// run is the read-only state shared by the renderers of one Run.
type run struct {
	db      *typedb.Database
	model   *metamodel.Model
	opts    Options
	rep     *report.Reporter
	naming  Naming
	classes []*metamodel.Class
	enums   []*metamodel.Enum
	indices []TypeIndex
	index   indexTable

	generated  map[*metamodel.Class]bool
	classEnums map[*metamodel.Class][]*metamodel.Enum
	convs      map[*ts.TypeEntry][]*metamodel.Function
}

// Run synthesizes all headers.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	r, err := g.prepare()
	if err != nil {
		return nil, err
	}

	for _, err := range r.validate() {
		r.rep.Report(err)
	}

	classes := make([]output.Artifact, len(r.classes))
	eg, ctx := errgroup.WithContext(ctx)
	jobs := g.Options.Jobs
	if jobs < 1 {
		jobs = 1
	}
	eg.SetLimit(jobs)
	for i, c := range r.classes {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.rep.Debug(report.DebugSparse, "generating header", "class", c.Name)
			classes[i] = output.Artifact{
				Name:    r.artifactPath(FileNameForClass(c)),
				Content: r.renderClass(c),
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, errors.Wrap(err, "rendering class headers")
	}

	return &Result{
		Classes: classes,
		Module: output.Artifact{
			Name:    r.artifactPath(ModuleHeaderFileName(r.opts.ModuleName)),
			Content: r.renderModule(),
		},
		Indices: r.indices,
	}, nil
}

// prepare fixes the class order, the generated set and the type indices.
func (g *Generator) prepare() (*run, error) {
	if g.DB == nil || g.Model == nil {
		return nil, errors.New("generator needs a type database and a model")
	}
	if g.Options.ModuleName == "" {
		return nil, errors.New("generator needs a module name")
	}
	rep := g.Reporter
	if rep == nil {
		rep = report.Nop()
	}
	if g.Model.DB == nil {
		g.Model.DB = g.DB
	}

	ordered, err := g.Model.Ordered()
	if err != nil {
		return nil, err
	}
	r := &run{
		db:     g.DB,
		model:  g.Model,
		opts:   g.Options,
		rep:    rep,
		naming: Naming{Prefix: g.Options.Prefix, Module: g.Options.ModuleName},

		generated:  make(map[*metamodel.Class]bool),
		classEnums: make(map[*metamodel.Class][]*metamodel.Enum),
		convs:      make(map[*ts.TypeEntry][]*metamodel.Function),
	}
	for _, c := range ordered {
		if !r.shouldGenerate(c) {
			continue
		}
		r.classes = append(r.classes, c)
		r.generated[c] = true
		for _, e := range c.Enums {
			if r.shouldGenerateEnum(e) {
				r.classEnums[c] = append(r.classEnums[c], e)
			}
		}
	}
	for _, e := range g.Model.GlobalEnums {
		if r.shouldGenerateEnum(e) {
			r.enums = append(r.enums, e)
		}
	}
	r.indices = assignTypeIndices(r.classes, r.enums, r.enumsOf)
	r.index = newIndexTable(r.indices)
	return r, nil
}

func (r *run) artifactPath(file string) string {
	pkg := r.opts.PackageName
	if pkg == "" {
		pkg = r.opts.ModuleName
	}
	return path.Join(PackageDir(pkg), file)
}

// shouldGenerate reports whether c gets a header: it needs a generated
// value, object or namespace entry and must not be rejected.
func (r *run) shouldGenerate(c *metamodel.Class) bool {
	e := c.Entry
	if e == nil {
		r.rep.Report(errors.Wrapf(errors.ErrTypeNotFound, "class %s", c.Name))
		return false
	}
	if !e.GenerateCode() || r.db.IsClassRejected(c.Name) {
		return false
	}
	return e.IsObject() || e.IsValue() || e.IsNamespace()
}

func (r *run) shouldGenerateEnum(e *metamodel.Enum) bool {
	if e.Entry == nil {
		r.rep.Report(errors.Wrapf(errors.ErrTypeNotFound, "enum %s", e.Name))
		return false
	}
	class := ""
	if e.Enclosing != nil {
		class = e.Enclosing.Name
	}
	return !r.db.IsEnumRejected(class, lastName(e.Name))
}

// enumsOf returns the enums of c that are not rejected.
func (r *run) enumsOf(c *metamodel.Class) []*metamodel.Enum { return r.classEnums[c] }

func lastName(name string) string {
	for i := len(name) - 1; i > 0; i-- {
		if name[i] == ':' && name[i-1] == ':' {
			return name[i+1:]
		}
	}
	return name
}
