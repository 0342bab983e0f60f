package ruleset

import (
	"io"
	"strings"

	"github.com/rubiojr/wrapgen/errors"
	"github.com/rubiojr/wrapgen/metamodel"
	"github.com/rubiojr/wrapgen/typedb"
	ts "github.com/rubiojr/wrapgen/typesystem"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// ModelFile is the document format of an extracted metamodel.
type ModelFile struct {
	Package   string         `yaml:"package"`
	Classes   []ClassSpec    `yaml:"classes"`
	Enums     []EnumSpec     `yaml:"enums,omitempty"`
	Functions []FunctionSpec `yaml:"functions,omitempty"`
}

type ClassSpec struct {
	Name              string         `yaml:"name"`
	Include           string         `yaml:"include,omitempty"`
	Abstract          bool           `yaml:"abstract,omitempty"`
	Polymorphic       bool           `yaml:"polymorphic,omitempty"`
	VirtualDestructor bool           `yaml:"virtual_destructor,omitempty"`
	Base              string         `yaml:"base,omitempty"`
	Functions         []FunctionSpec `yaml:"functions,omitempty"`
	Fields            []FieldSpec    `yaml:"fields,omitempty"`
	Enums             []EnumSpec     `yaml:"enums,omitempty"`
}

type FunctionSpec struct {
	Name      string         `yaml:"name"`
	Flags     []string       `yaml:"flags,omitempty"`
	Access    string         `yaml:"access,omitempty"`
	Arguments []ArgumentSpec `yaml:"arguments,omitempty"`
	Return    string         `yaml:"return,omitempty"`
}

type ArgumentSpec struct {
	Name    string `yaml:"name,omitempty"`
	Type    string `yaml:"type"`
	Default string `yaml:"default,omitempty"`
}

type FieldSpec struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Access string `yaml:"access,omitempty"`
	Static bool   `yaml:"static,omitempty"`
}

type EnumSpec struct {
	Name    string          `yaml:"name"`
	Include string          `yaml:"include,omitempty"`
	Values  []EnumValueSpec `yaml:"values,omitempty"`
}

type EnumValueSpec struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value,omitempty"`
}

// LoadModelFile reads the metamodel at path. Type names are bound to the
// entries of db; names db does not know stay opaque.
func LoadModelFile(fs afero.Fs, path string, db *typedb.Database) (*metamodel.Model, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	m, err := LoadModel(f, db)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return m, nil
}

// LoadModel reads a metamodel document from r.
func LoadModel(r io.Reader, db *typedb.Database) (*metamodel.Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading metamodel")
	}
	var doc ModelFile
	if err := decodeStrict(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing metamodel")
	}
	b := &modelBuilder{db: db, model: metamodel.New(doc.Package, db)}
	return b.model, b.build(&doc)
}

type modelBuilder struct {
	db    *typedb.Database
	model *metamodel.Model
}

func (b *modelBuilder) build(doc *ModelFile) error {
	var errs error
	bases := make(map[*metamodel.Class]string)
	for i := range doc.Classes {
		c, err := b.addClass(&doc.Classes[i])
		errs = multierr.Append(errs, err)
		if c != nil && doc.Classes[i].Base != "" {
			bases[c] = doc.Classes[i].Base
		}
	}

	for _, c := range b.model.Classes {
		if c.Enclosing == nil {
			if q, _ := splitQualified(c.Name); q != "" {
				if outer := b.model.FindClass(q); outer != nil {
					outer.AddInner(c)
				}
			}
		}
		if base, ok := bases[c]; ok {
			c.BaseClass = b.model.FindClass(base)
			if c.BaseClass == nil {
				errs = multierr.Append(errs, errors.Newf("class %s: unknown base class %s", c.Name, base))
			}
		}
		b.addUserFunctions(c)
	}

	for _, spec := range doc.Enums {
		e, err := b.enum(spec, "")
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		b.model.AddGlobalEnum(e)
	}
	for _, spec := range doc.Functions {
		fn, err := b.function(spec, "")
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		b.model.AddGlobalFunction(fn)
	}
	for _, af := range b.db.AddedFunctions() {
		b.model.AddGlobalFunction(b.addedFunction(af, ""))
	}
	return errs
}

func (b *modelBuilder) addClass(spec *ClassSpec) (*metamodel.Class, error) {
	if spec.Name == "" {
		return nil, errors.New("class without a name")
	}
	c := metamodel.NewClass(spec.Name, b.db.FindType(spec.Name))
	c.IncludeFile = spec.Include
	c.Abstract = spec.Abstract
	c.Polymorphic = spec.Polymorphic
	c.HasVirtualDestructor = spec.VirtualDestructor

	var errs error
	for _, fs := range spec.Functions {
		fn, err := b.function(fs, spec.Name)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "class %s", spec.Name))
			continue
		}
		c.AddFunction(fn)
	}
	for _, fs := range spec.Fields {
		access, ok := metamodel.ParseAccess(fs.Access)
		if !ok {
			errs = multierr.Append(errs, errors.Newf("class %s: field %s: unknown access %q", spec.Name, fs.Name, fs.Access))
			continue
		}
		c.AddField(&metamodel.Field{
			Name:   fs.Name,
			Type:   b.typeRef(fs.Type, spec.Name),
			Access: access,
			Static: fs.Static,
		})
	}
	for _, es := range spec.Enums {
		e, err := b.enum(es, spec.Name)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "class %s", spec.Name))
			continue
		}
		c.AddEnum(e)
	}
	b.model.AddClass(c)
	return c, errs
}

func (b *modelBuilder) function(spec FunctionSpec, owner string) (*metamodel.Function, error) {
	if spec.Name == "" {
		return nil, errors.New("function without a name")
	}
	access, ok := metamodel.ParseAccess(spec.Access)
	if !ok {
		return nil, errors.Newf("%s: unknown access %q", spec.Name, spec.Access)
	}
	fn := &metamodel.Function{
		Name:   spec.Name,
		Access: access,
		Return: b.typeRef(spec.Return, owner),
	}
	for _, f := range spec.Flags {
		flag, ok := metamodel.ParseFunctionFlag(f)
		if !ok {
			return nil, errors.Newf("%s: unknown flag %q", spec.Name, f)
		}
		fn.Flags |= flag
	}
	for _, a := range spec.Arguments {
		fn.Arguments = append(fn.Arguments, metamodel.Argument{
			Name:         a.Name,
			Type:         b.typeRef(a.Type, owner),
			DefaultValue: a.Default,
		})
	}
	return fn, nil
}

func (b *modelBuilder) enum(spec EnumSpec, owner string) (*metamodel.Enum, error) {
	if spec.Name == "" {
		return nil, errors.New("enum without a name")
	}
	qualified := spec.Name
	if owner != "" {
		qualified = owner + "::" + spec.Name
	}
	e := &metamodel.Enum{
		Name:        spec.Name,
		Entry:       b.findEntry(qualified, (*ts.TypeEntry).IsEnum),
		IncludeFile: spec.Include,
	}
	for _, v := range spec.Values {
		e.Values = append(e.Values, metamodel.EnumValue{Name: v.Name, Value: v.Value})
	}
	return e, nil
}

func (b *modelBuilder) findEntry(name string, pred func(*ts.TypeEntry) bool) *ts.TypeEntry {
	for _, e := range b.db.FindTypes(name) {
		if pred(e) {
			return e
		}
	}
	return nil
}

// typeRef parses a declaration such as "const Point&" or "char**". The
// name is looked up inside owner first, then at global scope.
func (b *modelBuilder) typeRef(decl, owner string) metamodel.TypeRef {
	s := strings.TrimSpace(decl)
	if s == "" || s == "void" {
		return metamodel.TypeRef{Name: s}
	}
	var ref metamodel.TypeRef
	if rest, ok := strings.CutPrefix(s, "const "); ok {
		ref.Const = true
		s = strings.TrimSpace(rest)
	}
	if rest, ok := strings.CutSuffix(s, "&"); ok {
		ref.Reference = true
		s = strings.TrimSpace(rest)
	}
	for strings.HasSuffix(s, "*") {
		ref.Indirections++
		s = strings.TrimSpace(strings.TrimSuffix(s, "*"))
	}
	ref.Name = s
	if owner != "" {
		ref.Entry = b.db.FindType(owner + "::" + s)
	}
	if ref.Entry == nil {
		ref.Entry = b.db.FindType(s)
	}
	return ref
}

// addUserFunctions gives c the functions its rules add.
func (b *modelBuilder) addUserFunctions(c *metamodel.Class) {
	if c.Entry == nil {
		return
	}
	cp, ok := c.Entry.Complex()
	if !ok {
		return
	}
	for _, af := range cp.AddedFunctions() {
		c.AddFunction(b.addedFunction(af, c.Name))
	}
}

func (b *modelBuilder) addedFunction(af ts.AddedFunction, owner string) *metamodel.Function {
	fn := &metamodel.Function{
		Name:   af.Name,
		Flags:  metamodel.UserAdded,
		Return: b.addedType(af.ReturnType, owner),
	}
	if af.Access == ts.AddedProtected {
		fn.Access = metamodel.Protected
	}
	if af.IsStatic {
		fn.Flags |= metamodel.Static
	}
	if af.IsConstant {
		fn.Flags |= metamodel.Const
	}
	if _, short := splitQualified(owner); owner != "" && af.Name == short {
		fn.Flags |= metamodel.Constructor
	}
	for _, ti := range af.Arguments {
		fn.Arguments = append(fn.Arguments, metamodel.Argument{
			Type:         b.addedType(ti, owner),
			DefaultValue: ti.DefaultValue,
		})
	}
	return fn
}

func (b *modelBuilder) addedType(ti ts.TypeInfo, owner string) metamodel.TypeRef {
	if ti.Name == "" {
		return metamodel.TypeRef{}
	}
	ref := b.typeRef(ti.Name, owner)
	ref.Const = ti.IsConstant
	ref.Reference = ti.IsReference
	ref.Indirections = ti.Indirections
	return ref
}
