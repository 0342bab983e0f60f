package headergen

import (
	"fmt"
	"strings"

	"github.com/rubiojr/wrapgen/metamodel"
	ts "github.com/rubiojr/wrapgen/typesystem"
)

// NeedsWrapper reports whether c needs a generated subclass: it has
// dynamically dispatched members, protected members that must be forwarded
// under avoidProtectedHack, or a native lifecycle hook. Namespaces never do.
func NeedsWrapper(m *metamodel.Model, c *metamodel.Class, opts Options) bool {
	if c.Namespace || c.Entry == nil || c.Entry.IsNamespace() {
		return false
	}
	if c.HasVirtualOrAbstract() || c.HasVirtualDestructor {
		return true
	}
	if opts.AvoidProtectedHack && hasProtectedMembers(m, c) {
		return true
	}
	if c.Entry.CustomDestructor.IsSet() {
		return true
	}
	return opts.UseQObjectExtensions && c.IsQObject()
}

func hasProtectedMembers(m *metamodel.Model, c *metamodel.Class) bool {
	for _, fn := range c.Functions {
		if m.IsProtected(fn) {
			return true
		}
	}
	for _, f := range c.Fields {
		if f.Access == metamodel.Protected {
			return true
		}
	}
	return false
}

func (r *run) licenseHeader(w *headerWriter) {
	if r.opts.LicenseComment == "" {
		return
	}
	w.Raw(strings.TrimRight(r.opts.LicenseComment, "\n"))
	w.Raw("\n\n")
}

// renderClass produces the wrapper header of c. Classes that need no wrapper
// still get a header holding the guard and the class include.
func (r *run) renderClass(c *metamodel.Class) string {
	w := &headerWriter{}
	guard := r.naming.ClassGuard(c)
	wrapper := WrapperName(c)

	r.licenseHeader(w)
	w.Rawf("#ifndef %s\n", guard)
	w.Rawf("#define %s\n\n", guard)
	if !r.opts.AvoidProtectedHack {
		w.Raw("#define protected public\n\n")
	}
	w.Raw("#include <shiboken.h>\n\n")
	if inc := c.Entry.Include(); inc.IsValid() {
		w.Raw(inc.String() + "\n\n")
	}

	if NeedsWrapper(r.model, c, r.opts) {
		qobject := r.opts.UseQObjectExtensions && c.IsQObject()
		if qobject {
			w.Raw("namespace PySide { class DynamicQMetaObject; }\n\n")
		}
		w.Rawf("class %s : public %s\n{\npublic:\n", wrapper, c.Name)
		w.Indent()
		if r.model.IsCopyable(c) {
			r.writeCopyCtor(w, c)
		}
		for _, fn := range c.Functions {
			if r.db.IsFunctionRejected(c.Name, fn.Name) {
				continue
			}
			r.writeFunction(w, fn)
		}
		virtual := ""
		if c.BaseHasVirtualDestructor() {
			virtual = "virtual "
		}
		w.Linef("%s~%s();", virtual, wrapper)
		r.writeCodeSnips(w, c.Entry, ts.PositionDeclaration, ts.NativeCode)
		w.Dedent()
		if qobject {
			w.Raw("public:\n")
			w.Raw(indentUnit + "virtual int qt_metacall(QMetaObject::Call call, int id, void** args);\n")
			w.Raw("private:\n")
			w.Raw(indentUnit + "mutable PySide::DynamicQMetaObject* m_metaObject;\n")
		}
		w.Raw("};\n\n")
	}

	w.Rawf("#endif // %s\n\n", guard)
	return w.String()
}

func (r *run) writeCopyCtor(w *headerWriter, c *metamodel.Class) {
	w.Linef("%s(const %s& self) : %s(self)", WrapperName(c), c.Name, c.Name)
	w.Linef("{")
	w.Linef("}")
	w.Blank()
}

// writeFunction applies the member emission policy to fn.
func (r *run) writeFunction(w *headerWriter, fn *metamodel.Function) {
	if fn.IsCopyConstructor() {
		return
	}
	if fn.IsConstructor() && fn.IsUserAdded() {
		return
	}
	if r.model.IsPrivate(fn) || r.model.IsModifiedRemoved(fn, ts.LangAll) && !fn.IsAbstract() {
		return
	}

	if r.opts.AvoidProtectedHack && r.model.IsProtected(fn) && !fn.IsConstructor() {
		static := ""
		if fn.IsStatic() {
			static = "static "
		}
		ret := ""
		if !fn.Return.IsVoid() {
			ret = "return "
		}
		w.Linef("inline %s%s { %s%s::%s; }", static,
			r.functionSignature(fn, "_protected", false), ret, fn.Owner.Name, functionCall(fn))
	}

	if fn.IsConstructor() || fn.IsAbstract() || fn.IsVirtual() {
		if fn.IsVirtual() || fn.IsAbstract() {
			w.Linef("virtual %s;", r.functionSignature(fn, "", true))
			return
		}
		w.Linef("%s;", r.functionSignature(fn, "", false))
	}
}

// functionSignature renders the declaration of fn. Constructors are named
// after the wrapper. With original set the declaration is reproduced as the
// extractor reported it; otherwise argument default expressions follow the
// function's argument modifications.
func (r *run) functionSignature(fn *metamodel.Function, suffix string, original bool) string {
	var sb strings.Builder
	if fn.IsConstructor() {
		sb.WriteString(WrapperName(fn.Owner))
	} else {
		sb.WriteString(fn.Return.String())
		sb.WriteByte(' ')
		sb.WriteString(fn.Name + suffix)
	}
	sb.WriteByte('(')
	var mods []ts.FunctionModification
	if !original {
		mods = r.model.Modifications(fn)
	}
	for i, arg := range fn.Arguments {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.Type.String())
		sb.WriteByte(' ')
		sb.WriteString(argumentName(arg, i))
		if dflt := defaultExpression(arg, i+1, mods); dflt != "" {
			sb.WriteString(" = ")
			sb.WriteString(dflt)
		}
	}
	sb.WriteByte(')')
	if fn.IsConstant() {
		sb.WriteString(" const")
	}
	return sb.String()
}

func argumentName(arg metamodel.Argument, i int) string {
	if arg.Name != "" {
		return arg.Name
	}
	return fmt.Sprintf("arg__%d", i+1)
}

// defaultExpression applies the argument modifications for the 1-based
// argument index to its default expression, in registration order.
func defaultExpression(arg metamodel.Argument, index int, mods []ts.FunctionModification) string {
	dflt := arg.DefaultValue
	for i := range mods {
		am, ok := mods[i].ArgumentMod(index)
		if !ok {
			continue
		}
		if am.RemovedDefaultExpression {
			dflt = ""
		}
		if am.ReplacedDefaultExpression != "" {
			dflt = am.ReplacedDefaultExpression
		}
	}
	return dflt
}

func functionCall(fn *metamodel.Function) string {
	names := make([]string, len(fn.Arguments))
	for i, arg := range fn.Arguments {
		names[i] = argumentName(arg, i)
	}
	return fn.Name + "(" + strings.Join(names, ", ") + ")"
}

// writeCodeSnips writes the entry's snippets for pos and lang, expanding
// templates through the database. Expansion problems are reported and the
// partially expanded text is still written.
func (r *run) writeCodeSnips(w *headerWriter, e *ts.TypeEntry, pos ts.Position, lang ts.Language) {
	for _, cs := range e.CodeSnipsFor(pos, lang) {
		code, err := cs.Code(r.db)
		if err != nil {
			r.rep.Report(err, "type", e.Name())
		}
		w.Block(code)
	}
}
