package headergen

import (
	"sort"

	"github.com/rubiojr/wrapgen/metamodel"
	ts "github.com/rubiojr/wrapgen/typesystem"
)

// moduleSections accumulates the parts of the module header while classes
// are visited.
type moduleSections struct {
	includes      headerWriter
	seenIncludes  map[string]bool
	macros        headerWriter
	typeFunctions headerWriter
	decls         headerWriter
	impls         headerWriter
}

func (s *moduleSections) addInclude(inc ts.Include) {
	if !inc.IsValid() {
		return
	}
	line := inc.String()
	if s.seenIncludes[line] {
		return
	}
	s.seenIncludes[line] = true
	s.includes.Raw(line + "\n")
}

// renderModule produces the aggregate header of the module.
func (r *run) renderModule() string {
	s := &moduleSections{seenIncludes: make(map[string]bool)}

	for _, e := range r.enums {
		if !r.index.has(e.Entry) {
			continue
		}
		r.writeTypeCheckMacros(&s.macros, e.Entry)
		if flags := r.flagsOf(e.Entry); flags != nil {
			r.writeTypeCheckMacros(&s.macros, flags)
		}
		s.macros.Blank()
		r.writeEnumDecls(&s.decls, e.Entry)
		r.writeEnumTypeFunctions(&s.typeFunctions, e.Entry)
	}

	for _, c := range r.classes {
		if c.Enclosing != nil && r.generated[c.Enclosing] {
			continue
		}
		r.visitClass(s, c)
	}

	w := &headerWriter{}
	guard := r.naming.ModuleGuard()
	r.licenseHeader(w)
	w.Rawf("#ifndef %s\n", guard)
	w.Rawf("#define %s\n\n", guard)
	if !r.opts.AvoidProtectedHack {
		w.Raw("//workaround to access protected functions\n")
		w.Raw("#define protected public\n\n")
	}
	w.Raw("#include <Python.h>\n")
	w.Raw("#include <conversions.h>\n")
	w.Raw("#include <pyenum.h>\n")
	w.Raw("#include <basewrapper.h>\n")
	w.Raw("#include <bindingmanager.h>\n\n")
	w.Raw("#include <memory>\n\n")
	r.writeExportMacros(w)

	if imports := r.db.RequiredTargetImports(); len(imports) > 0 {
		w.Raw("// Module Includes\n")
		for _, m := range imports {
			w.Rawf("#include <%s>\n", ModuleHeaderFileName(m))
		}
		w.Blank()
	}

	w.Raw("// Class Includes\n")
	w.Raw(s.includes.String())
	w.Blank()

	if incs := r.enumIncludes(); len(incs) > 0 {
		w.Raw("// Enum Includes\n")
		for _, inc := range incs {
			w.Rawf("#include <%s>\n", inc)
		}
		w.Blank()
	}
	r.writeConversionIncludes(w, "Primitive Types", r.db.PrimitiveTypes())
	r.writeConversionIncludes(w, "Container Types", r.db.ContainerTypes())

	w.Raw("extern \"C\"\n{\n\n")
	r.naming.writeTypeIndices(w, r.indices)
	w.Blank()
	w.Raw("// This variable stores all python types exported by this module\n")
	w.Rawf("extern PyTypeObject** %s;\n\n", r.naming.TypesArrayName())
	w.Raw("// Useful macros\n")
	w.Raw(s.macros.String())
	w.Blank()
	w.Raw("} // extern \"C\"\n\n")

	w.Raw("namespace Shiboken\n{\n\n")
	w.Raw("// PyType functions, to get the PyObjectType for a type T\n")
	w.Raw(s.typeFunctions.String())
	w.Blank()
	w.Raw("// Generated converters declarations ----------------------------------\n\n")
	w.Raw(s.decls.String())
	w.Blank()
	w.Raw("} // namespace Shiboken\n\n")

	w.Raw("// User defined converters --------------------------------------------\n")
	for _, e := range r.db.Entries() {
		if e.HasConversionRule() {
			w.Rawf("// Conversion rule for: %s\n", e.Name())
			w.Raw(e.ConversionRule())
		}
	}
	w.Raw("// Generated converters implementations -------------------------------\n\n")
	w.Raw(s.impls.String())
	w.Blank()

	w.Rawf("#endif // %s\n\n", guard)
	return w.String()
}

// visitClass adds c, its enums and its inner classes to the module
// sections. Namespaces contribute their enums and inner classes only.
func (r *run) visitClass(s *moduleSections, c *metamodel.Class) {
	s.addInclude(c.Entry.Include())

	for _, e := range r.enumsOf(c) {
		if !r.index.has(e.Entry) {
			continue
		}
		r.writeTypeCheckMacros(&s.macros, e.Entry)
		if flags := r.flagsOf(e.Entry); flags != nil {
			r.writeTypeCheckMacros(&s.macros, flags)
		}
		s.macros.Blank()
		r.writeEnumDecls(&s.decls, e.Entry)
		r.writeEnumTypeFunctions(&s.typeFunctions, e.Entry)
	}

	namespace := c.Namespace || c.Entry.IsNamespace()
	if !namespace {
		r.writeClassTypeFunction(&s.typeFunctions, c)
		r.writeTypeInfo(&s.decls, c)
	}

	for _, inner := range c.Inner {
		if r.generated[inner] {
			r.visitClass(s, inner)
		}
	}

	if !namespace {
		r.writeTypeCheckMacros(&s.macros, c.Entry)
		r.writeConverterDecl(&s.decls, c.Entry)
		r.writeConverterImpl(&s.impls, c.Entry)
		s.decls.Blank()
	}
}

func (r *run) writeEnumDecls(w *headerWriter, e *ts.TypeEntry) {
	r.writeConverterDecl(w, e)
	if flags := r.flagsOf(e); flags != nil {
		r.writeConverterDecl(w, flags)
	}
	w.Blank()
}

// enumIncludes lists the header files of the global enums, sorted and
// without duplicates.
func (r *run) enumIncludes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range r.enums {
		if e.IncludeFile == "" || seen[e.IncludeFile] {
			continue
		}
		seen[e.IncludeFile] = true
		out = append(out, e.IncludeFile)
	}
	sort.Strings(out)
	return out
}

func (r *run) writeConversionIncludes(w *headerWriter, title string, entries []*ts.TypeEntry) {
	seen := make(map[string]bool)
	var lines []string
	for _, e := range entries {
		inc := e.Include()
		if !inc.IsValid() || seen[inc.String()] {
			continue
		}
		seen[inc.String()] = true
		lines = append(lines, inc.String())
	}
	if len(lines) == 0 {
		return
	}
	w.Rawf("// Conversion Includes - %s\n", title)
	for _, l := range lines {
		w.Raw(l + "\n")
	}
	w.Blank()
}

// writeExportMacros defines the symbol visibility macro of the module.
func (r *run) writeExportMacros(w *headerWriter) {
	macro := r.naming.ExportMacro()
	w.Raw("#if defined _WIN32 || defined __CYGWIN__\n")
	w.Rawf("%s#define %s __declspec(dllexport)\n", indentUnit, macro)
	w.Raw("#else\n")
	w.Raw("#if __GNUC__ >= 4\n")
	w.Rawf("%s#define %s __attribute__ ((visibility(\"default\")))\n", indentUnit, macro)
	w.Raw("#else\n")
	w.Rawf("%s#define %s\n", indentUnit, macro)
	w.Raw("#endif\n")
	w.Raw("#endif\n\n")
}
