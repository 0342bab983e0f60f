package headergen

import (
	"github.com/rubiojr/wrapgen/errors"
	"github.com/rubiojr/wrapgen/metamodel"
	ts "github.com/rubiojr/wrapgen/typesystem"
)

// writeTypeCheckMacros writes the instance and exact check macros of e.
func (r *run) writeTypeCheckMacros(w *headerWriter, e *ts.TypeEntry) {
	obj := r.naming.TypeObject(e)
	check := r.naming.CheckFunction(e)
	w.Rawf("#define %s(op) PyObject_TypeCheck(op, (PyTypeObject*)%s)\n", check, obj)
	w.Rawf("#define %sExact(op) ((op)->ob_type == (PyTypeObject*)%s)\n", check, obj)
}

// conversions returns the implicit conversions of a value type that the
// converter can use. User-added sources are left out, as are sources of an
// unknown type, which are reported once.
func (r *run) conversions(e *ts.TypeEntry) []*metamodel.Function {
	if !e.IsValue() {
		return nil
	}
	if convs, ok := r.convs[e]; ok {
		return convs
	}
	var out []*metamodel.Function
	for _, fn := range r.model.ImplicitConversions(e) {
		if fn.IsUserAdded() {
			continue
		}
		if src := fn.ConversionSource(); src.IsOpaque() {
			r.rep.Report(errors.Wrapf(errors.ErrTypeNotFound, "conversion source %s of %s", src.Name, e.Name()))
			continue
		}
		out = append(out, fn)
	}
	r.convs[e] = out
	return out
}

func (r *run) isPointerType(e *ts.TypeEntry) bool {
	if e.IsObject() {
		return true
	}
	c := r.model.ClassForEntry(e)
	return c != nil && c.Abstract
}

// writeConverterDecl writes the Converter<T> specialization of e.
func (r *run) writeConverterDecl(w *headerWriter, e *ts.TypeEntry) {
	name := e.Name()
	if r.isPointerType(e) {
		name += "*"
	}
	base := "ConverterBase"
	if e.IsEnum() || e.IsFlags() {
		base = "Converter_CppEnum"
	}
	w.Raw("template<>\n")
	w.Rawf("struct Converter<%s > : %s<%s >\n{\n", name, base, name)
	if len(r.conversions(e)) > 0 {
		w.Indent()
		w.Linef("static %s toCpp(PyObject* pyobj);", e.Name())
		w.Linef("static bool isConvertible(PyObject* pyobj);")
		w.Dedent()
	}
	w.Raw("};\n")
}

// sourceCheck is the predicate accepting a Python object convertible from
// src.
func (r *run) sourceCheck(src metamodel.TypeRef) string {
	e := src.Entry
	if r.index.has(e) {
		return r.naming.CheckFunction(e)
	}
	if pp, ok := e.Primitive(); ok && pp.TargetLangAPIName != "" {
		return pp.TargetLangAPIName + "_Check"
	}
	return "Shiboken::Converter<" + e.Name() + " >::isConvertible"
}

// sourceToCpp converts pyobj to the native type of src.
func (r *run) sourceToCpp(src metamodel.TypeRef) string {
	e := src.Entry
	if r.isPointerType(e) {
		return "*Shiboken::Converter<" + e.Name() + "* >::toCpp(pyobj)"
	}
	return "Shiboken::Converter<" + e.Name() + " >::toCpp(pyobj)"
}

// writeConverterImpl writes isConvertible and toCpp for value types with
// implicit conversions. Types carrying a user conversion rule get nothing.
func (r *run) writeConverterImpl(w *headerWriter, e *ts.TypeEntry) {
	if e.HasConversionRule() {
		return
	}
	convs := r.conversions(e)
	if len(convs) == 0 {
		return
	}
	name := e.Name()

	w.Rawf("inline bool Shiboken::Converter<%s >::isConvertible(PyObject* pyobj)\n{\n", name)
	w.Raw(indentUnit + "return ")
	for i, fn := range convs {
		if i > 0 {
			w.Raw("\n" + indentUnit + indentUnit + "|| ")
		}
		w.Raw(r.sourceCheck(fn.ConversionSource()) + "(pyobj)")
	}
	w.Raw(";\n}\n\n")

	w.Rawf("inline %s Shiboken::Converter<%s >::toCpp(PyObject* pyobj)\n{\n", name, name)
	w.Indent()
	w.Linef("if (!%s(pyobj)) {", r.naming.CheckFunction(e))
	w.Indent()
	first := true
	for _, fn := range convs {
		if r.model.IsModifiedRemoved(fn, ts.LangAll) {
			continue
		}
		src := fn.ConversionSource()
		keyword := "if"
		if !first {
			keyword = "else if"
		}
		first = false
		w.Linef("%s (%s(pyobj))", keyword, r.sourceCheck(src))
		w.Indent()
		w.Linef("return %s(%s);", name, r.sourceToCpp(src))
		w.Dedent()
	}
	w.Dedent()
	w.Linef("}")
	w.Linef("return *reinterpret_cast<%s*>(SbkBaseWrapper_cptr(pyobj));", name)
	w.Dedent()
	w.Raw("}\n\n")
}

// writeClassTypeFunction writes the SbkType<T>() accessor of a class.
func (r *run) writeClassTypeFunction(w *headerWriter, c *metamodel.Class) {
	w.Rawf("template<>\ninline PyTypeObject* SbkType<%s >() { return reinterpret_cast<PyTypeObject*>(%s); }\n",
		c.Name, r.naming.TypeObject(c.Entry))
}

// writeEnumTypeFunctions writes the SbkType<T>() accessors of an enum and
// its flags.
func (r *run) writeEnumTypeFunctions(w *headerWriter, e *ts.TypeEntry) {
	w.Rawf("template<>\ninline PyTypeObject* SbkType<%s >() { return %s; }\n", e.Name(), r.naming.TypeObject(e))
	if flags := r.flagsOf(e); flags != nil {
		w.Rawf("template<>\ninline PyTypeObject* SbkType<%s >() { return %s; }\n", flags.Name(), r.naming.TypeObject(flags))
	}
}

// writeTypeInfo marks value types with a wrapper as copyable through it.
func (r *run) writeTypeInfo(w *headerWriter, c *metamodel.Class) {
	if !c.Entry.IsValue() || !NeedsWrapper(r.model, c, r.opts) {
		return
	}
	w.Rawf("template <>\nstruct SbkTypeInfo<%s >\n{\n", c.Name)
	w.Raw(indentUnit + "static const bool isCppWrapper = true;\n")
	w.Raw("};\n")
}

// flagsOf returns the indexed flags entry of an enum entry.
func (r *run) flagsOf(e *ts.TypeEntry) *ts.TypeEntry {
	ep, ok := e.Enum()
	if !ok || !r.index.has(ep.Flags) {
		return nil
	}
	return ep.Flags
}
