package metamodel

import (
	"strings"

	"github.com/rubiojr/wrapgen/typedb"
	ts "github.com/rubiojr/wrapgen/typesystem"
)

// FunctionFlags are the properties the extractor reports for a function.
type FunctionFlags uint

const (
	Virtual FunctionFlags = 1 << iota
	Abstract
	Static
	Constructor
	CopyConstructor
	ConversionOperator
	UserAdded
	Const
	Explicit
)

var functionFlagNames = []struct {
	flag FunctionFlags
	name string
}{
	{Virtual, "virtual"},
	{Abstract, "abstract"},
	{Static, "static"},
	{Constructor, "constructor"},
	{CopyConstructor, "copy-constructor"},
	{ConversionOperator, "conversion-operator"},
	{UserAdded, "user-added"},
	{Const, "const"},
	{Explicit, "explicit"},
}

// ParseFunctionFlag maps a flag name ("copy-constructor") to its bit.
func ParseFunctionFlag(s string) (FunctionFlags, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range functionFlagNames {
		if f.name == s {
			return f.flag, true
		}
	}
	return 0, false
}

func (f FunctionFlags) String() string {
	var parts []string
	for _, fn := range functionFlagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// TypeRef is a use of a type in a signature. A nil Entry marks an opaque
// type the database knows nothing about.
type TypeRef struct {
	Name         string
	Entry        *ts.TypeEntry
	Const        bool
	Reference    bool
	Indirections int
}

func (t TypeRef) IsOpaque() bool { return t.Entry == nil }
func (t TypeRef) IsVoid() bool { return t.Name == "" || t.Name == "void" && t.Indirections == 0 }

func (t TypeRef) String() string {
	if t.Name == "" {
		return "void"
	}
	var sb strings.Builder
	if t.Const {
		sb.WriteString("const ")
	}
	sb.WriteString(t.Name)
	sb.WriteString(strings.Repeat("*", t.Indirections))
	if t.Reference {
		sb.WriteByte('&')
	}
	return sb.String()
}

// Argument is one parameter of a function.
type Argument struct {
	Name         string
	Type         TypeRef
	DefaultValue string
}

// Function is a member or free function.
type Function struct {
	Name      string
	Access    Access
	Flags     FunctionFlags
	Arguments []Argument
	Return    TypeRef
	Owner     *Class
}

func (f *Function) Is(flag FunctionFlags) bool { return f.Flags&flag != 0 }

func (f *Function) IsVirtual() bool { return f.Is(Virtual) }
func (f *Function) IsAbstract() bool { return f.Is(Abstract) }
func (f *Function) IsStatic() bool { return f.Is(Static) }
func (f *Function) IsConstructor() bool { return f.Is(Constructor) || f.Is(CopyConstructor) }
func (f *Function) IsCopyConstructor() bool { return f.Is(CopyConstructor) }
func (f *Function) IsConversionOperator() bool { return f.Is(ConversionOperator) }
func (f *Function) IsUserAdded() bool { return f.Is(UserAdded) }
func (f *Function) IsConstant() bool { return f.Is(Const) }
func (f *Function) IsExplicit() bool { return f.Is(Explicit) }

// RequiredArguments counts the arguments without a default value.
func (f *Function) RequiredArguments() int {
	n := 0
	for _, a := range f.Arguments {
		if a.DefaultValue == "" {
			n++
		}
	}
	return n
}

// IsImplicitConstructor reports whether f converts its single required
// argument into an instance of its class.
func (f *Function) IsImplicitConstructor() bool {
	if !f.Is(Constructor) || f.IsCopyConstructor() || f.IsExplicit() {
		return false
	}
	return len(f.Arguments) == 1 || f.RequiredArguments() == 1 && len(f.Arguments) > 0
}

// ConversionSource is the type converted from: the argument of a converting
// constructor or the class owning a conversion operator.
func (f *Function) ConversionSource() TypeRef {
	if f.IsConversionOperator() {
		if f.Owner == nil {
			return TypeRef{}
		}
		return TypeRef{Name: f.Owner.Name, Entry: f.Owner.Entry}
	}
	if len(f.Arguments) == 0 {
		return TypeRef{}
	}
	return f.Arguments[0].Type
}

// MinimalSignature is the normalized name(T1,T2) key that function
// modifications are matched against. Const member functions end in "const".
func (f *Function) MinimalSignature() string {
	args := make([]string, len(f.Arguments))
	for i, a := range f.Arguments {
		args[i] = a.Type.String()
	}
	sig := f.Name + "(" + strings.Join(args, ",") + ")"
	if f.IsConstant() {
		sig += "const"
	}
	return typedb.NormalizedSignature(sig)
}

// Field is a data member.
type Field struct {
	Name   string
	Type   TypeRef
	Access Access
	Static bool
}

// EnumValue is one enumerator.
type EnumValue struct {
	Name  string
	Value string
}

// Enum is a native enumeration, nested in Enclosing or global when it is nil.
type Enum struct {
	Name        string
	Values      []EnumValue
	Entry       *ts.TypeEntry
	Enclosing   *Class
	IncludeFile string
}

// FlagsEntry returns the flags entry linked to the enum's entry, if any.
func (e *Enum) FlagsEntry() *ts.TypeEntry {
	if e.Entry == nil {
		return nil
	}
	ep, ok := e.Entry.Enum()
	if !ok {
		return nil
	}
	return ep.Flags
}

// Class is a class or namespace.
type Class struct {
	Name      string
	Enclosing *Class
	Inner     []*Class

	Namespace            bool
	Abstract             bool
	Polymorphic          bool
	HasVirtualDestructor bool

	// BaseClass is the primary base, or nil.
	BaseClass *Class

	Functions []*Function
	Fields    []*Field
	Enums     []*Enum

	Entry       *ts.TypeEntry
	IncludeFile string
}

// NewClass returns a class bound to entry. A nil entry marks a class the
// database does not describe.
func NewClass(name string, entry *ts.TypeEntry) *Class {
	c := &Class{Name: name, Entry: entry}
	if entry != nil {
		c.Namespace = entry.IsNamespace()
	}
	return c
}

// AddInner nests inner in c.
func (c *Class) AddInner(inner *Class) {
	inner.Enclosing = c
	c.Inner = append(c.Inner, inner)
}

func (c *Class) AddFunction(fn *Function) {
	fn.Owner = c
	c.Functions = append(c.Functions, fn)
}

func (c *Class) AddField(f *Field) { c.Fields = append(c.Fields, f) }

func (c *Class) AddEnum(e *Enum) {
	e.Enclosing = c
	c.Enums = append(c.Enums, e)
}

// FindFunctions returns the functions called name.
func (c *Class) FindFunctions(name string) []*Function {
	var out []*Function
	for _, fn := range c.Functions {
		if fn.Name == name {
			out = append(out, fn)
		}
	}
	return out
}

// Constructors returns the constructors, copy constructors included.
func (c *Class) Constructors() []*Function {
	var out []*Function
	for _, fn := range c.Functions {
		if fn.IsConstructor() {
			out = append(out, fn)
		}
	}
	return out
}

// HasVirtualOrAbstract reports whether any member is dynamically dispatched.
func (c *Class) HasVirtualOrAbstract() bool {
	for _, fn := range c.Functions {
		if fn.IsVirtual() || fn.IsAbstract() {
			return true
		}
	}
	return false
}

// BaseHasVirtualDestructor reports whether the destructor this class
// inherits, or declares, is virtual.
func (c *Class) BaseHasVirtualDestructor() bool {
	for k := c; k != nil; k = k.BaseClass {
		if k.HasVirtualDestructor {
			return true
		}
	}
	return false
}

// IsQObject reports whether the class entry is marked QObject-like.
func (c *Class) IsQObject() bool {
	if c.Entry == nil {
		return false
	}
	cp, ok := c.Entry.Complex()
	return ok && cp.QObject
}

// FunctionBySignature returns the function with minimal signature sig.
func (c *Class) FunctionBySignature(sig string) *Function {
	for _, fn := range c.Functions {
		if fn.MinimalSignature() == sig {
			return fn
		}
	}
	return nil
}
