package headergen

import (
	"path"
	"strings"

	"github.com/rubiojr/wrapgen/metamodel"
	ts "github.com/rubiojr/wrapgen/typesystem"
)

// DefaultPrefix is the symbol prefix used when Options.Prefix is empty.
const DefaultPrefix = "Sbk"

// Naming derives every generated identifier from a qualified native name.
// All names are pure functions of the prefix, the module and the name, so
// other artifacts can reference them by construction.
type Naming struct {
	Prefix string
	Module string
}

func (n Naming) prefix() string {
	if n.Prefix == "" {
		return DefaultPrefix
	}
	return n.Prefix
}

func (n Naming) macroPrefix() string { return strings.ToUpper(n.prefix()) }

// mangle turns a qualified native name into an identifier fragment:
// "ns::Outer::Inner" becomes "ns_Outer_Inner", and any other character that
// cannot appear in an identifier becomes an underscore.
func mangle(name string) string {
	name = strings.ReplaceAll(name, "::", "_")
	return strings.Map(func(r rune) rune {
		if r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return r
		}
		return '_'
	}, strings.TrimSpace(name))
}

// WrapperName is the name of the generated subclass of c.
func WrapperName(c *metamodel.Class) string {
	return strings.ReplaceAll(c.Name, "::", "_") + "Wrapper"
}

// FileNameForClass is the header file name of c's wrapper.
func FileNameForClass(c *metamodel.Class) string {
	return strings.ReplaceAll(strings.ToLower(c.Name), "::", "_") + "_wrapper.h"
}

// ModuleHeaderFileName is the aggregate header file name of module.
func ModuleHeaderFileName(module string) string {
	return strings.ToLower(module) + "_python.h"
}

// PackageDir is the slash-separated directory of a dotted package name.
func PackageDir(pkg string) string {
	return path.Clean(strings.ReplaceAll(pkg, ".", "/"))
}

// ClassGuard is the include guard of c's wrapper header.
func (n Naming) ClassGuard(c *metamodel.Class) string {
	return n.macroPrefix() + "_" + strings.ToUpper(WrapperName(c)) + "_H"
}

// ModuleGuard is the include guard of the module header.
func (n Naming) ModuleGuard() string {
	return n.macroPrefix() + "_" + strings.ToUpper(n.Module) + "_PYTHON_H"
}

// TypeIndexName is the macro holding the type index of e.
func (n Naming) TypeIndexName(e *ts.TypeEntry) string {
	return n.macroPrefix() + "_" + strings.ToUpper(mangle(e.Name())) + "_IDX"
}

// IndexCountName is the macro holding the number of type indices.
func (n Naming) IndexCountName() string {
	return n.macroPrefix() + "_" + n.Module + "_IDX_COUNT"
}

// TypesArrayName is the runtime array of type objects of the module.
func (n Naming) TypesArrayName() string {
	return n.prefix() + n.Module + "Types"
}

// TypeObject is the expression reading e's type object from the array.
func (n Naming) TypeObject(e *ts.TypeEntry) string {
	return n.TypesArrayName() + "[" + n.TypeIndexName(e) + "]"
}

// CheckFunction is the instance-or-subclass check macro of e; the exact
// check appends "Exact".
func (n Naming) CheckFunction(e *ts.TypeEntry) string {
	return n.prefix() + mangle(e.Name()) + "_Check"
}

// ExportMacro is the symbol visibility macro of the module.
func (n Naming) ExportMacro() string {
	return n.macroPrefix() + "_" + strings.ToUpper(n.Module) + "_API"
}
