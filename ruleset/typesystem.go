// Package ruleset reads the YAML rule files that describe a binding: the
// type-system rules that fill a typedb.Database and the extracted class
// descriptions that fill a metamodel.Model.
package ruleset

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/rubiojr/wrapgen/errors"
	"github.com/rubiojr/wrapgen/typedb"
	ts "github.com/rubiojr/wrapgen/typesystem"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// TypesystemFile is the document format of a type-system rule file.
type TypesystemFile struct {
	Package          string              `yaml:"package"`
	Imports          []ImportSpec        `yaml:"imports,omitempty"`
	RequiredImports  []string            `yaml:"required_imports,omitempty"`
	TypesystemPaths  string              `yaml:"typesystem_paths,omitempty"`
	SuppressWarnings []string            `yaml:"suppress_warnings,omitempty"`
	Rejections       []RejectionSpec     `yaml:"rejections,omitempty"`
	Templates        []TemplateSpec      `yaml:"templates,omitempty"`
	ModifyFunctions  []FunctionModSpec   `yaml:"modify_functions,omitempty"`
	AddFunctions     []AddedFunctionSpec `yaml:"add_functions,omitempty"`
	Types            []TypeSpec          `yaml:"types"`
}

// ImportSpec loads another rule file. Its types are generated only when
// Generate is true.
type ImportSpec struct {
	File     string `yaml:"file"`
	Generate bool   `yaml:"generate,omitempty"`
}

type RejectionSpec struct {
	Class    string `yaml:"class,omitempty"`
	Function string `yaml:"function,omitempty"`
	Field    string `yaml:"field,omitempty"`
	Enum     string `yaml:"enum,omitempty"`
}

// RedirectSpec emits the rejected enum value as another value.
type RedirectSpec struct {
	Rejected string `yaml:"rejected"`
	Used     string `yaml:"used"`
}

type TemplateSpec struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

type IncludeSpec struct {
	File   string `yaml:"file"`
	Local  bool   `yaml:"local,omitempty"`
	Import bool   `yaml:"import,omitempty"`
}

func (s IncludeSpec) include() ts.Include {
	inc := ts.Include{Type: ts.IncludePath, Name: s.File}
	switch {
	case s.Import:
		inc.Type = ts.TargetLangImport
	case s.Local:
		inc.Type = ts.LocalPath
	}
	return inc
}

// SnipSpec is a code injection: literal code followed by template uses.
type SnipSpec struct {
	Position  string                 `yaml:"position"`
	Language  string                 `yaml:"language"`
	Code      string                 `yaml:"code,omitempty"`
	Templates []TemplateInstanceSpec `yaml:"templates,omitempty"`
}

type TemplateInstanceSpec struct {
	Name    string            `yaml:"name"`
	Replace map[string]string `yaml:"replace,omitempty"`
}

type ArgumentModSpec struct {
	Index                    int               `yaml:"index"`
	RemoveDefaultExpression  bool              `yaml:"remove_default_expression,omitempty"`
	ReplaceDefaultExpression string            `yaml:"replace_default_expression,omitempty"`
	Remove                   bool              `yaml:"remove,omitempty"`
	NoNullPointers           bool              `yaml:"no_null_pointers,omitempty"`
	ReplaceType              string            `yaml:"replace_type,omitempty"`
	Ownership                map[string]string `yaml:"ownership,omitempty"`
}

type FunctionModSpec struct {
	Signature   string            `yaml:"signature"`
	Access      string            `yaml:"access,omitempty"`
	Rename      string            `yaml:"rename,omitempty"`
	Remove      string            `yaml:"remove,omitempty"`
	Deprecated  bool              `yaml:"deprecated,omitempty"`
	Thread      bool              `yaml:"thread,omitempty"`
	AllowThread bool              `yaml:"allow_thread,omitempty"`
	InjectCode  []SnipSpec        `yaml:"inject_code,omitempty"`
	Arguments   []ArgumentModSpec `yaml:"arguments,omitempty"`
}

type FieldModSpec struct {
	Name   string `yaml:"name"`
	Read   *bool  `yaml:"read,omitempty"`
	Write  *bool  `yaml:"write,omitempty"`
	Rename string `yaml:"rename,omitempty"`
}

type AddedFunctionSpec struct {
	Signature string `yaml:"signature"`
	Return    string `yaml:"return,omitempty"`
	Access    string `yaml:"access,omitempty"`
	Static    bool   `yaml:"static,omitempty"`
}

// TypeSpec declares one type entry. Which fields apply depends on Kind.
type TypeSpec struct {
	Kind           string        `yaml:"kind"`
	Name           string        `yaml:"name"`
	Generate       string        `yaml:"generate,omitempty"`
	Include        *IncludeSpec  `yaml:"include,omitempty"`
	ExtraIncludes  []IncludeSpec `yaml:"extra_includes,omitempty"`
	ConversionRule string        `yaml:"conversion_rule,omitempty"`
	InjectCode     []SnipSpec    `yaml:"inject_code,omitempty"`

	// primitive
	TargetLangName      string `yaml:"target_lang_name,omitempty"`
	TargetLangAPIName   string `yaml:"target_lang_api_name,omitempty"`
	PreferredConversion *bool  `yaml:"preferred_conversion,omitempty"`
	PreferredTargetType *bool  `yaml:"preferred_target_lang_type,omitempty"`

	// enum
	Flags          string         `yaml:"flags,omitempty"`
	FlagsNative    string         `yaml:"flags_native,omitempty"`
	RejectValues   []string       `yaml:"reject_values,omitempty"`
	Extensible     bool           `yaml:"extensible,omitempty"`
	ForceInteger   bool           `yaml:"force_integer,omitempty"`
	LowerBound     string         `yaml:"lower_bound,omitempty"`
	UpperBound     string         `yaml:"upper_bound,omitempty"`
	ValueRedirects []RedirectSpec `yaml:"value_redirections,omitempty"`

	// value, object, namespace, interface
	Copyable           *bool               `yaml:"copyable,omitempty"`
	QObject            bool                `yaml:"qobject,omitempty"`
	ForceAbstract      bool                `yaml:"force_abstract,omitempty"`
	Deprecated         bool                `yaml:"deprecated,omitempty"`
	DeleteInMainThread bool                `yaml:"delete_in_main_thread,omitempty"`
	PolymorphicBase    bool                `yaml:"polymorphic_base,omitempty"`
	PolymorphicIDValue string              `yaml:"polymorphic_id_value,omitempty"`
	HashFunction       string              `yaml:"hash_function,omitempty"`
	HeldType           string              `yaml:"held_type,omitempty"`
	TargetType         string              `yaml:"target_type,omitempty"`
	DefaultSuperclass  string              `yaml:"default_superclass,omitempty"`
	Interface          bool                `yaml:"interface,omitempty"`
	CustomConstructor  string              `yaml:"custom_constructor,omitempty"`
	CustomDestructor   string              `yaml:"custom_destructor,omitempty"`
	ModifyFunctions    []FunctionModSpec   `yaml:"modify_functions,omitempty"`
	ModifyFields       []FieldModSpec      `yaml:"modify_fields,omitempty"`
	AddFunctions       []AddedFunctionSpec `yaml:"add_functions,omitempty"`

	// container
	Container string `yaml:"container,omitempty"`
}

// Loader reads type-system rule files into a database. Files are read
// through an afero filesystem and each file is loaded at most once.
type Loader struct {
	fs     afero.Fs
	db     *typedb.Database
	loaded map[string]bool
}

// NewLoader returns a loader filling db. A nil fs reads the OS filesystem.
func NewLoader(fs afero.Fs, db *typedb.Database) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{fs: fs, db: db, loaded: make(map[string]bool)}
}

// LoadFile loads the rule file at path, searching the database's
// type-system paths when it does not exist as given. Imports are resolved
// the same way, starting from the importing file's directory.
func (l *Loader) LoadFile(path string) error {
	return l.loadFile(path, "", true)
}

func (l *Loader) loadFile(name, fromDir string, generate bool) error {
	p, err := l.resolve(name, fromDir)
	if err != nil {
		return err
	}
	if l.loaded[p] {
		return nil
	}
	l.loaded[p] = true

	data, err := afero.ReadFile(l.fs, p)
	if err != nil {
		return errors.Wrapf(err, "reading %s", p)
	}
	var doc TypesystemFile
	if err := decodeStrict(data, &doc); err != nil {
		return errors.Wrapf(err, "parsing %s", p)
	}
	if doc.TypesystemPaths != "" {
		l.db.AddTypesystemPath(doc.TypesystemPaths)
	}

	var errs error
	for _, imp := range doc.Imports {
		errs = multierr.Append(errs, l.loadFile(imp.File, filepath.Dir(p), imp.Generate && generate))
	}
	errs = multierr.Append(errs, l.apply(&doc, generate))
	if errs != nil {
		return errors.Wrapf(errs, "loading %s", p)
	}
	return nil
}

func (l *Loader) resolve(name, fromDir string) (string, error) {
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		if fromDir != "" {
			candidates = append([]string{filepath.Join(fromDir, name)}, candidates...)
		}
		for _, dir := range l.db.TypesystemPaths() {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}
	for _, c := range candidates {
		if ok, _ := afero.Exists(l.fs, c); ok {
			return filepath.Clean(c), nil
		}
	}
	return "", errors.WithHint(errors.Newf("rule file %s not found", name),
		"add its directory to typesystem_paths")
}

// Load applies one rule document read from r.
func (l *Loader) Load(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "reading rules")
	}
	var doc TypesystemFile
	if err := decodeStrict(data, &doc); err != nil {
		return errors.Wrap(err, "parsing rules")
	}
	return l.apply(&doc, true)
}

func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// apply registers the document's contents. Problems with single entries are
// collected and the remaining entries are still registered.
func (l *Loader) apply(doc *TypesystemFile, generate bool) error {
	db := l.db
	var errs error

	for _, m := range doc.RequiredImports {
		db.AddRequiredTargetImport(m)
	}
	for _, w := range doc.SuppressWarnings {
		db.AddSuppressedWarning(w)
	}
	for _, r := range doc.Rejections {
		errs = multierr.Append(errs, db.AddRejection(typedb.TypeRejection{
			Class: r.Class, Function: r.Function, Field: r.Field, Enum: r.Enum,
		}))
	}
	for _, t := range doc.Templates {
		if t.Name == "" {
			errs = multierr.Append(errs, errors.New("template without a name"))
			continue
		}
		db.AddTemplate(&ts.TemplateEntry{Name: t.Name, Code: t.Code})
	}
	for _, spec := range doc.ModifyFunctions {
		fm, err := functionModification(spec)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		db.AddFunctionModification(fm)
	}
	for _, spec := range doc.AddFunctions {
		af, err := addedFunction(spec)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		db.AddAddedFunction(af)
	}
	for i := range doc.Types {
		errs = multierr.Append(errs, l.addType(&doc.Types[i], doc.Package, generate))
	}
	return errs
}

func (l *Loader) addType(spec *TypeSpec, pkg string, generate bool) error {
	kind, ok := ts.ParseKind(spec.Kind)
	if !ok {
		return errors.Newf("type %s: unknown kind %q", spec.Name, spec.Kind)
	}
	cg, ok := ts.ParseCodeGeneration(spec.Generate)
	if !ok {
		return errors.Newf("type %s: unknown generation policy %q", spec.Name, spec.Generate)
	}

	e, err := newEntry(kind, spec)
	if err != nil {
		return err
	}
	if spec.Generate != "" {
		e.SetCodeGeneration(cg)
	}
	if !generate {
		e.SetCodeGeneration(ts.GenerateForSubclass)
	}
	if spec.Include != nil {
		e.SetInclude(spec.Include.include())
	}
	for _, inc := range spec.ExtraIncludes {
		e.AddExtraInclude(inc.include())
	}
	if spec.ConversionRule != "" {
		e.SetConversionRule(spec.ConversionRule)
	}
	for _, s := range spec.InjectCode {
		cs, err := codeSnip(s)
		if err != nil {
			return errors.Wrapf(err, "type %s", spec.Name)
		}
		e.AddCodeSnip(cs)
	}

	l.db.AddType(e)

	var errs error
	switch {
	case e.IsPrimitive():
		configurePrimitive(e, spec)
	case e.IsEnum():
		errs = multierr.Append(errs, l.configureEnum(e, spec, pkg, generate))
	case e.IsComplex():
		errs = multierr.Append(errs, l.configureComplex(e, spec, pkg))
	}
	if errs != nil {
		return errors.Wrapf(errs, "type %s", spec.Name)
	}
	return nil
}

func newEntry(kind ts.Kind, spec *TypeSpec) (*ts.TypeEntry, error) {
	switch kind {
	case ts.KindEnum:
		qualifier, name := splitQualified(spec.Name)
		if name == "" {
			return nil, errors.New("enum without a name")
		}
		return ts.NewEnum(qualifier, name), nil
	case ts.KindFlags:
		return nil, errors.Newf("type %s: flags are declared on their enum", spec.Name)
	case ts.KindContainer:
		ck, ok := ts.ParseContainerKind(spec.Container)
		if !ok {
			return nil, errors.Newf("container %s: unknown container type %q", spec.Name, spec.Container)
		}
		if spec.Name == "" {
			return nil, errors.New("container without a name")
		}
		return ts.NewContainer(spec.Name, ck), nil
	}
	return ts.New(kind, spec.Name, nil)
}

func splitQualified(name string) (qualifier, last string) {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[:i], name[i+2:]
	}
	return "", name
}

func configurePrimitive(e *ts.TypeEntry, spec *TypeSpec) {
	pp, _ := e.Primitive()
	pp.TargetLangName = spec.TargetLangName
	pp.TargetLangAPIName = spec.TargetLangAPIName
	if spec.PreferredConversion != nil {
		e.SetPreferredConversion(*spec.PreferredConversion)
	}
	if spec.PreferredTargetType != nil {
		pp.PreferredTargetLangType = *spec.PreferredTargetType
	}
}

func (l *Loader) configureEnum(e *ts.TypeEntry, spec *TypeSpec, pkg string, generate bool) error {
	ep, _ := e.Enum()
	ep.Package = pkg
	ep.Extensible = spec.Extensible
	ep.ForceInteger = spec.ForceInteger
	ep.LowerBound = spec.LowerBound
	ep.UpperBound = spec.UpperBound
	for _, v := range spec.RejectValues {
		ep.AddRejectedValue(v)
	}
	for _, r := range spec.ValueRedirects {
		ep.AddRedirection(r.Rejected, r.Used)
	}
	if spec.Flags == "" {
		return nil
	}

	native := spec.FlagsNative
	if native == "" {
		native = "QFlags<" + e.Name() + ">"
	}
	name := spec.Flags
	if q, _ := splitQualified(e.Name()); q != "" && !strings.Contains(name, "::") {
		name = q + "::" + name
	}
	flags := ts.NewFlags(name, native)
	if !generate {
		flags.SetCodeGeneration(ts.GenerateForSubclass)
	}
	if err := typedb.LinkFlags(e, flags); err != nil {
		return err
	}
	if err := l.db.AddFlagsType(flags); err != nil {
		return err
	}
	l.db.AddType(flags)
	return nil
}

func (l *Loader) configureComplex(e *ts.TypeEntry, spec *TypeSpec, pkg string) error {
	cp, _ := e.Complex()
	cp.Package = pkg
	cp.QObject = spec.QObject
	cp.PolymorphicBase = spec.PolymorphicBase
	cp.PolymorphicIDValue = spec.PolymorphicIDValue
	cp.HashFunction = spec.HashFunction
	cp.HeldType = spec.HeldType
	cp.TargetType = spec.TargetType
	cp.DefaultSuperclass = spec.DefaultSuperclass
	if spec.Copyable != nil {
		cp.Copyable = ts.NonCopyable
		if *spec.Copyable {
			cp.Copyable = ts.Copyable
		}
	}
	if spec.ForceAbstract {
		cp.TypeFlags |= ts.ForceAbstract
	}
	if spec.Deprecated {
		cp.TypeFlags |= ts.Deprecated
	}
	if spec.DeleteInMainThread {
		cp.TypeFlags |= ts.DeleteInMainThread
	}
	e.CustomConstructor = ts.CustomFunction{Name: spec.CustomConstructor}
	e.CustomDestructor = ts.CustomFunction{Name: spec.CustomDestructor}

	var errs error
	for _, s := range spec.ModifyFunctions {
		fm, err := functionModification(s)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		fm.Signature = typedb.NormalizedSignature(fm.Signature)
		cp.AddFunctionModification(fm)
	}
	for _, s := range spec.ModifyFields {
		cp.AddFieldModification(fieldModification(s))
	}
	for _, s := range spec.AddFunctions {
		af, err := addedFunction(s)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		cp.AddAddedFunction(af)
	}

	if spec.Interface && e.IsObject() {
		iface := ts.NewInterface(ts.InterfaceName(e.Name()))
		iface.SetCodeGeneration(e.CodeGeneration())
		if err := ts.LinkInterface(e, iface); err != nil {
			errs = multierr.Append(errs, err)
		} else {
			l.db.AddType(iface)
		}
	}
	return errs
}

var accessModifiers = map[string]uint{
	"private":   ts.ModPrivate,
	"protected": ts.ModProtected,
	"public":    ts.ModPublic,
	"friendly":  ts.ModFriendly,
}

var ownerships = map[string]ts.Ownership{
	"default": ts.DefaultOwnership,
	"target":  ts.TargetLangOwnership,
	"native":  ts.NativeOwnership,
}

func functionModification(spec FunctionModSpec) (ts.FunctionModification, error) {
	fm := ts.FunctionModification{
		Signature:   spec.Signature,
		Thread:      spec.Thread,
		AllowThread: spec.AllowThread,
	}
	if strings.TrimSpace(spec.Signature) == "" {
		return fm, errors.New("function modification without a signature")
	}
	if spec.Access != "" {
		mod, ok := accessModifiers[strings.ToLower(spec.Access)]
		if !ok {
			return fm, errors.Newf("%s: unknown access %q", spec.Signature, spec.Access)
		}
		fm.Modifiers |= mod
	}
	if spec.Rename != "" {
		fm.Rename(spec.Rename)
	}
	if spec.Deprecated {
		fm.Modifiers |= ts.ModDeprecated
	}
	if spec.Remove != "" {
		lang, ok := ts.ParseLanguage(spec.Remove)
		if !ok {
			return fm, errors.Newf("%s: unknown removal language %q", spec.Signature, spec.Remove)
		}
		fm.Removal = lang
	}
	for _, s := range spec.InjectCode {
		cs, err := codeSnip(s)
		if err != nil {
			return fm, errors.Wrapf(err, "%s", spec.Signature)
		}
		fm.Snips = append(fm.Snips, cs)
		fm.Modifiers |= ts.ModCodeInjection
	}
	for _, a := range spec.Arguments {
		am := ts.ArgumentModification{
			Index:                     a.Index,
			RemovedDefaultExpression:  a.RemoveDefaultExpression,
			ReplacedDefaultExpression: a.ReplaceDefaultExpression,
			Removed:                   a.Remove,
			NoNullPointers:            a.NoNullPointers,
			ModifiedType:              a.ReplaceType,
		}
		for langName, ownerName := range a.Ownership {
			lang, ok := ts.ParseLanguage(langName)
			if !ok {
				return fm, errors.Newf("%s: unknown ownership language %q", spec.Signature, langName)
			}
			owner, ok := ownerships[strings.ToLower(ownerName)]
			if !ok {
				return fm, errors.Newf("%s: unknown ownership %q", spec.Signature, ownerName)
			}
			if am.Ownerships == nil {
				am.Ownerships = make(map[ts.Language]ts.Ownership)
			}
			am.Ownerships[lang] = owner
		}
		fm.ArgumentMods = append(fm.ArgumentMods, am)
	}
	return fm, nil
}

func fieldModification(spec FieldModSpec) ts.FieldModification {
	fm := ts.FieldModification{Name: spec.Name}
	if spec.Read == nil || *spec.Read {
		fm.Modifiers |= ts.ModReadable
	}
	if spec.Write == nil || *spec.Write {
		fm.Modifiers |= ts.ModWritable
	}
	if spec.Rename != "" {
		fm.Rename(spec.Rename)
	}
	return fm
}

func addedFunction(spec AddedFunctionSpec) (ts.AddedFunction, error) {
	if strings.TrimSpace(spec.Signature) == "" {
		return ts.AddedFunction{}, errors.New("added function without a signature")
	}
	af := ts.NewAddedFunction(spec.Signature, spec.Return)
	af.IsStatic = spec.Static
	switch strings.ToLower(spec.Access) {
	case "", "public":
	case "protected":
		af.Access = ts.AddedProtected
	default:
		return af, errors.Newf("%s: unknown access %q", spec.Signature, spec.Access)
	}
	return af, nil
}

func codeSnip(spec SnipSpec) (ts.CodeSnip, error) {
	pos, ok := ts.ParsePosition(spec.Position)
	if !ok {
		return ts.CodeSnip{}, errors.Newf("unknown code position %q", spec.Position)
	}
	lang, ok := ts.ParseLanguage(spec.Language)
	if !ok || lang == ts.NoLanguage {
		return ts.CodeSnip{}, errors.Newf("unknown code language %q", spec.Language)
	}
	cs := ts.CodeSnip{Language: lang, Position: pos}
	if spec.Code != "" {
		cs.AddCode(spec.Code)
	}
	for _, t := range spec.Templates {
		ti := &ts.TemplateInstance{Name: t.Name}
		for k, v := range t.Replace {
			ti.AddReplaceRule(k, v)
		}
		cs.AddTemplateInstance(ti)
	}
	return cs, nil
}
