// Package typedb holds the type database: every type entry of a generation
// run together with the rules that are not attached to a single entry
// (rejections, suppressed warnings, templates, global modifications and
// cross-module imports).
//
// A Database is built once per run, before synthesis, and is only read
// afterwards. Lookups never fail: a missing entry is reported as nil and the
// caller treats the type as opaque.
package typedb

import (
	"path/filepath"
	"strings"

	"github.com/rubiojr/wrapgen/errors"
	ts "github.com/rubiojr/wrapgen/typesystem"
)

// Database is the aggregate root of the type system.
type Database struct {
	names   []string
	entries map[string][]*ts.TypeEntry

	flagsNames []string
	flags      map[string]*ts.TypeEntry

	templates map[string]*ts.TemplateEntry

	rejections []*rejection

	suppressWarnings bool
	suppressed       []*warningPattern

	functionMods   []ts.FunctionModification
	addedFunctions []ts.AddedFunction

	requiredImports []string
	typesystemPaths []string
}

// New returns an empty database with warning suppression enabled.
func New() *Database {
	return &Database{
		entries:          make(map[string][]*ts.TypeEntry),
		flags:            make(map[string]*ts.TypeEntry),
		templates:        make(map[string]*ts.TemplateEntry),
		suppressWarnings: true,
	}
}

// AddType appends e to the entries registered under its qualified native
// name. Earlier entries with the same name are kept.
func (db *Database) AddType(e *ts.TypeEntry) {
	name := e.QualifiedNativeName()
	if _, ok := db.entries[name]; !ok {
		db.names = append(db.names, name)
	}
	db.entries[name] = append(db.entries[name], e)
}

// Names returns every registered name in first-registration order.
func (db *Database) Names() []string { return db.names }

// FindTypes returns every entry registered under name, in registration order.
func (db *Database) FindTypes(name string) []*ts.TypeEntry { return db.entries[name] }

// FindType resolves name to a single entry: the first one that is not a
// non-preferred primitive alias. When every entry is such an alias the first
// registered entry is returned. Unknown names yield nil.
func (db *Database) FindType(name string) *ts.TypeEntry {
	list := db.entries[name]
	for _, e := range list {
		if !e.IsNonPreferredPrimitive() {
			return e
		}
	}
	if len(list) > 0 {
		return list[0]
	}
	return nil
}

func (db *Database) findFirst(name string, pred func(*ts.TypeEntry) bool) *ts.TypeEntry {
	for _, e := range db.entries[name] {
		if pred(e) {
			return e
		}
	}
	return nil
}

// FindPrimitiveType returns the preferred primitive registered under name,
// falling back to the first primitive.
func (db *Database) FindPrimitiveType(name string) *ts.TypeEntry {
	if e := db.findFirst(name, func(e *ts.TypeEntry) bool {
		return e.IsPrimitive() && !e.IsNonPreferredPrimitive()
	}); e != nil {
		return e
	}
	return db.findFirst(name, (*ts.TypeEntry).IsPrimitive)
}

func (db *Database) FindComplexType(name string) *ts.TypeEntry {
	return db.findFirst(name, (*ts.TypeEntry).IsComplex)
}

func (db *Database) FindObjectType(name string) *ts.TypeEntry {
	return db.findFirst(name, (*ts.TypeEntry).IsObject)
}

func (db *Database) FindNamespaceType(name string) *ts.TypeEntry {
	return db.findFirst(name, (*ts.TypeEntry).IsNamespace)
}

// FindContainerType looks up a container by its template name; template
// arguments are ignored, so "QList<int>" finds "QList".
func (db *Database) FindContainerType(name string) *ts.TypeEntry {
	if i := strings.IndexByte(name, '<'); i > 0 {
		name = strings.TrimSpace(name[:i])
	}
	return db.findFirst(name, (*ts.TypeEntry).IsContainer)
}

// FindTargetLangPrimitiveType returns the preferred primitive whose target
// language name is targetName.
func (db *Database) FindTargetLangPrimitiveType(targetName string) *ts.TypeEntry {
	for _, e := range db.PrimitiveTypes() {
		if e.TargetLangName() == targetName && !e.IsNonPreferredPrimitive() {
			return e
		}
	}
	return nil
}

// Entries returns one resolved entry per name, in registration order.
func (db *Database) Entries() []*ts.TypeEntry {
	out := make([]*ts.TypeEntry, 0, len(db.names))
	for _, name := range db.names {
		if e := db.FindType(name); e != nil {
			out = append(out, e)
		}
	}
	return out
}

// AllEntries returns every registered entry, grouped by name in registration
// order.
func (db *Database) AllEntries() []*ts.TypeEntry {
	var out []*ts.TypeEntry
	for _, name := range db.names {
		out = append(out, db.entries[name]...)
	}
	return out
}

func (db *Database) filter(pred func(*ts.TypeEntry) bool) []*ts.TypeEntry {
	var out []*ts.TypeEntry
	for _, e := range db.AllEntries() {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

func (db *Database) PrimitiveTypes() []*ts.TypeEntry {
	return db.filter((*ts.TypeEntry).IsPrimitive)
}

func (db *Database) ContainerTypes() []*ts.TypeEntry {
	return db.filter((*ts.TypeEntry).IsContainer)
}

// AddFlagsType indexes a flags entry by the name of its native bitmask type.
func (db *Database) AddFlagsType(flags *ts.TypeEntry) error {
	fp, ok := flags.Flags()
	if !ok {
		return errors.Wrapf(errors.ErrKindMismatch, "AddFlagsType: %s", flags)
	}
	if _, seen := db.flags[fp.OriginalName]; !seen {
		db.flagsNames = append(db.flagsNames, fp.OriginalName)
	}
	db.flags[fp.OriginalName] = flags
	return nil
}

// FindFlagsType returns the flags entry for a native bitmask name, falling
// back to a flags entry registered as a regular type.
func (db *Database) FindFlagsType(name string) *ts.TypeEntry {
	if e, ok := db.flags[name]; ok {
		return e
	}
	return db.findFirst(name, (*ts.TypeEntry).IsFlags)
}

// FlagsEntries returns the indexed flags entries in registration order.
func (db *Database) FlagsEntries() []*ts.TypeEntry {
	out := make([]*ts.TypeEntry, 0, len(db.flagsNames))
	for _, name := range db.flagsNames {
		out = append(out, db.flags[name])
	}
	return out
}

// LinkFlags associates an enum with its flags entry in both directions.
func LinkFlags(enum, flags *ts.TypeEntry) error {
	ep, ok := enum.Enum()
	if !ok {
		return errors.Wrapf(errors.ErrKindMismatch, "LinkFlags: %s is not an enum", enum)
	}
	fp, ok := flags.Flags()
	if !ok {
		return errors.Wrapf(errors.ErrKindMismatch, "LinkFlags: %s is not a flags type", flags)
	}
	ep.Flags = flags
	fp.Originator = enum
	return nil
}

func (db *Database) AddTemplate(t *ts.TemplateEntry) { db.templates[t.Name] = t }

// FindTemplate implements typesystem.TemplateResolver.
func (db *Database) FindTemplate(name string) *ts.TemplateEntry { return db.templates[name] }

// AddRequiredTargetImport records a module the generated module imports.
// Duplicates are ignored.
func (db *Database) AddRequiredTargetImport(module string) {
	for _, m := range db.requiredImports {
		if m == module {
			return
		}
	}
	db.requiredImports = append(db.requiredImports, module)
}

func (db *Database) RequiredTargetImports() []string { return db.requiredImports }

// AddTypesystemPath adds the entries of an OS path list.
func (db *Database) AddTypesystemPath(list string) {
	for _, p := range filepath.SplitList(list) {
		if p != "" {
			db.typesystemPaths = append(db.typesystemPaths, p)
		}
	}
}

func (db *Database) TypesystemPaths() []string { return db.typesystemPaths }

// ExtraIncludes returns the extra includes of the complex type className.
func (db *Database) ExtraIncludes(className string) []ts.Include {
	if e := db.FindComplexType(className); e != nil {
		return e.ExtraIncludes()
	}
	return nil
}

// GlobalNamespaceClassName is the name of the synthetic class that holds the
// free functions and global enums of a module.
func GlobalNamespaceClassName(*ts.TypeEntry) string { return "Global" }
