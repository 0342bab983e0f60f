package typesystem

import (
	"strings"

	"github.com/rubiojr/wrapgen/errors"
)

// Payload is the kind-specific state of a TypeEntry. It is sealed: only the
// payload types of this package implement it.
type Payload interface {
	accepts(k Kind) bool
}

// TypeEntry is the generation metadata of one native type.
type TypeEntry struct {
	name    string
	kind    Kind
	payload Payload

	codeGeneration      CodeGeneration
	preferredConversion bool
	stream              bool

	CustomConstructor CustomFunction
	CustomDestructor  CustomFunction

	codeSnips      []CodeSnip
	docMods        []DocModification
	include        Include
	extraIncludes  []Include
	includesUsed   map[string]bool
	conversionRule string
}

// New builds an entry of kind k. It fails when name is empty or when the
// payload does not belong to k; a nil payload is accepted for kinds that
// carry no state and replaced by a zero payload for the others.
func New(k Kind, name string, p Payload) (*TypeEntry, error) {
	if name == "" {
		return nil, errors.Newf("%s type entry without a name", k)
	}
	if p == nil {
		p = zeroPayload(k)
	}
	if !p.accepts(k) {
		return nil, errors.Wrapf(errors.ErrKindMismatch, "%s: %T cannot describe a %s", name, p, k)
	}
	e := &TypeEntry{
		name:                name,
		kind:                k,
		payload:             p,
		codeGeneration:      GenerateAll,
		preferredConversion: true,
	}
	switch k {
	case KindContainer:
		e.codeGeneration = GenerateForSubclass
	case KindString, KindChar:
		e.codeGeneration = GenerateNothing
	}
	if cp, ok := p.(*ComplexPayload); ok && cp.QualifiedNativeName == "" {
		cp.QualifiedNativeName = name
	}
	if cp, ok := p.(*ContainerPayload); ok && cp.QualifiedNativeName == "" {
		cp.QualifiedNativeName = name
	}
	return e, nil
}

func mustNew(k Kind, name string, p Payload) *TypeEntry {
	e, err := New(k, name, p)
	if err != nil {
		panic(err)
	}
	return e
}

func zeroPayload(k Kind) Payload {
	switch k {
	case KindPrimitive:
		return &PrimitivePayload{PreferredConversion: true, PreferredTargetLangType: true}
	case KindEnum:
		return &EnumPayload{}
	case KindFlags:
		return &FlagsPayload{}
	case KindContainer:
		return &ContainerPayload{}
	case KindArray:
		return &ArrayPayload{}
	case KindTemplateArgument:
		return &TemplateArgPayload{}
	}
	if k.isComplex() {
		return &ComplexPayload{ExpensePolicy: ExpensePolicy{Limit: -1}, Copyable: CopyableUnknown}
	}
	return noPayload{}
}

// noPayload is the payload of kinds without extra state.
type noPayload struct{}

func (noPayload) accepts(k Kind) bool {
	switch k {
	case KindVoid, KindVarargs, KindThread, KindTypeSystem, KindCustom:
		return true
	}
	return false
}

// Constructors for kinds without required state. Names are validated by the
// caller: these panic on an empty name.

func NewVoid() *TypeEntry { return mustNew(KindVoid, "void", nil) }
func NewVarargs() *TypeEntry { return mustNew(KindVarargs, "...", nil) }
func NewThread(name string) *TypeEntry { return mustNew(KindThread, name, nil) }
func NewTypeSystem(name string) *TypeEntry { return mustNew(KindTypeSystem, name, nil) }
func NewCustom(name string) *TypeEntry { return mustNew(KindCustom, name, nil) }

func NewPrimitive(name string) *TypeEntry { return mustNew(KindPrimitive, name, nil) }
func NewValue(name string) *TypeEntry { return mustNew(KindValue, name, nil) }
func NewObject(name string) *TypeEntry { return mustNew(KindObject, name, nil) }
func NewNamespace(name string) *TypeEntry { return mustNew(KindNamespace, name, nil) }
func NewString(name string) *TypeEntry { return mustNew(KindString, name, nil) }
func NewChar(name string) *TypeEntry { return mustNew(KindChar, name, nil) }
func NewVariant(name string) *TypeEntry { return mustNew(KindVariant, name, nil) }

// NewInterface returns the interface entry for name (already suffixed).
func NewInterface(name string) *TypeEntry { return mustNew(KindInterface, name, nil) }

// NewContainer returns a container entry of the given container kind.
func NewContainer(name string, ck ContainerKind) *TypeEntry {
	return mustNew(KindContainer, name, &ContainerPayload{
		ComplexPayload: ComplexPayload{ExpensePolicy: ExpensePolicy{Limit: -1}, Copyable: CopyableUnknown},
		ContainerKind:  ck,
	})
}

// NewEnum returns an enum entry. The entry name is qualifier::name, or just
// name when the qualifier is empty.
func NewEnum(qualifier, name string) *TypeEntry {
	full := name
	if qualifier != "" {
		full = qualifier + "::" + name
	}
	return mustNew(KindEnum, full, &EnumPayload{Qualifier: qualifier, TargetLangName: name})
}

// NewFlags returns a flags entry for the native bitmask type originalName.
func NewFlags(name, originalName string) *TypeEntry {
	return mustNew(KindFlags, name, &FlagsPayload{OriginalName: originalName, FlagsName: lastSegment(name)})
}

// NewArray returns an array entry over nested.
func NewArray(nested *TypeEntry) *TypeEntry {
	return mustNew(KindArray, "Array", &ArrayPayload{Nested: nested})
}

// NewTemplateArgument returns the entry for the template parameter at ordinal.
func NewTemplateArgument(name string, ordinal int) *TypeEntry {
	return mustNew(KindTemplateArgument, name, &TemplateArgPayload{Ordinal: ordinal})
}

func (e *TypeEntry) Name() string { return e.name }
func (e *TypeEntry) Kind() Kind { return e.kind }

func (e *TypeEntry) IsPrimitive() bool { return e.kind == KindPrimitive }
func (e *TypeEntry) IsVoid() bool { return e.kind == KindVoid }
func (e *TypeEntry) IsVarargs() bool { return e.kind == KindVarargs }
func (e *TypeEntry) IsEnum() bool { return e.kind == KindEnum }
func (e *TypeEntry) IsFlags() bool { return e.kind == KindFlags }
func (e *TypeEntry) IsObject() bool { return e.kind == KindObject }
func (e *TypeEntry) IsInterface() bool { return e.kind == KindInterface }
func (e *TypeEntry) IsNamespace() bool { return e.kind == KindNamespace }
func (e *TypeEntry) IsContainer() bool { return e.kind == KindContainer }
func (e *TypeEntry) IsString() bool { return e.kind == KindString }
func (e *TypeEntry) IsChar() bool { return e.kind == KindChar }
func (e *TypeEntry) IsVariant() bool { return e.kind == KindVariant }
func (e *TypeEntry) IsArray() bool { return e.kind == KindArray }
func (e *TypeEntry) IsTemplateArgument() bool { return e.kind == KindTemplateArgument }
func (e *TypeEntry) IsCustom() bool { return e.kind == KindCustom }
func (e *TypeEntry) IsComplex() bool { return e.kind.isComplex() }
func (e *TypeEntry) IsValue() bool { return e.kind.isValue() }

// IsNativeIDBased reports whether instances are identified by their native
// object (value and object types, not strings, chars or variants).
func (e *TypeEntry) IsNativeIDBased() bool {
	switch e.kind {
	case KindValue, KindObject, KindInterface:
		return true
	}
	return false
}

func (e *TypeEntry) CodeGeneration() CodeGeneration { return e.codeGeneration }
func (e *TypeEntry) SetCodeGeneration(cg CodeGeneration) { e.codeGeneration = cg }

// GenerateCode reports whether code is generated for this entry. Entries
// loaded for reference only (subclass-only or nothing) return false.
func (e *TypeEntry) GenerateCode() bool {
	return e.codeGeneration != GenerateForSubclass && e.codeGeneration != GenerateNothing
}

// PreferredConversion reports whether the entry is the preferred conversion
// target. Enums and flags never are.
func (e *TypeEntry) PreferredConversion() bool {
	switch e.kind {
	case KindEnum, KindFlags:
		return false
	case KindPrimitive:
		return e.payload.(*PrimitivePayload).PreferredConversion
	}
	return e.preferredConversion
}

func (e *TypeEntry) SetPreferredConversion(b bool) {
	if p, ok := e.Primitive(); ok {
		p.PreferredConversion = b
		return
	}
	e.preferredConversion = b
}

func (e *TypeEntry) Stream() bool { return e.stream }
func (e *TypeEntry) SetStream(b bool) { e.stream = b }

func (e *TypeEntry) CodeSnips() []CodeSnip { return e.codeSnips }
func (e *TypeEntry) AddCodeSnip(cs CodeSnip) { e.codeSnips = append(e.codeSnips, cs) }

// CodeSnipsFor returns the snippets for position and language, in order.
func (e *TypeEntry) CodeSnipsFor(pos Position, lang Language) []CodeSnip {
	var out []CodeSnip
	for _, cs := range e.codeSnips {
		if cs.Position == pos && cs.Language&lang != 0 {
			out = append(out, cs)
		}
	}
	return out
}

func (e *TypeEntry) DocModifications() []DocModification { return e.docMods }
func (e *TypeEntry) AddDocModifications(mods ...DocModification) {
	e.docMods = append(e.docMods, mods...)
}

func (e *TypeEntry) Include() Include { return e.include }
func (e *TypeEntry) SetInclude(i Include) { e.include = i }

func (e *TypeEntry) ExtraIncludes() []Include { return e.extraIncludes }

// AddExtraInclude appends inc unless an include with the same name was
// already added.
func (e *TypeEntry) AddExtraInclude(inc Include) {
	if e.includesUsed == nil {
		e.includesUsed = make(map[string]bool)
	}
	if e.includesUsed[inc.Name] {
		return
	}
	e.includesUsed[inc.Name] = true
	e.extraIncludes = append(e.extraIncludes, inc)
}

// ConversionRule is user-supplied converter code. When set, the generator
// emits it verbatim instead of synthesizing a converter.
func (e *TypeEntry) ConversionRule() string { return e.conversionRule }
func (e *TypeEntry) SetConversionRule(rule string) { e.conversionRule = rule }
func (e *TypeEntry) HasConversionRule() bool { return e.conversionRule != "" }

// QualifiedNativeName is the fully qualified native name; it is the key the
// entry is registered under.
func (e *TypeEntry) QualifiedNativeName() string {
	switch p := e.payload.(type) {
	case *ComplexPayload:
		if e.kind == KindInterface {
			return strings.TrimSuffix(p.QualifiedNativeName, interfaceSuffix)
		}
		return p.QualifiedNativeName
	case *ContainerPayload:
		return p.QualifiedNativeName
	}
	return e.name
}

// TargetLangName is the type's name in the target language.
func (e *TypeEntry) TargetLangName() string {
	switch p := e.payload.(type) {
	case *PrimitivePayload:
		if p.TargetLangName != "" {
			return p.TargetLangName
		}
	case *EnumPayload:
		return p.TargetLangName
	case *FlagsPayload:
		return p.FlagsName
	case *ArrayPayload:
		if p.Nested != nil {
			return p.Nested.TargetLangName() + "[]"
		}
	case *ComplexPayload:
		if p.TargetLangName != "" {
			return p.TargetLangName
		}
	case *ContainerPayload:
		if p.TargetLangName != "" {
			return p.TargetLangName
		}
	}
	return e.name
}

// TargetLangPackage is the target-language package of the type, if any.
func (e *TypeEntry) TargetLangPackage() string {
	switch p := e.payload.(type) {
	case *EnumPayload:
		return p.Package
	case *FlagsPayload:
		if p.Originator != nil {
			return p.Originator.TargetLangPackage()
		}
	case *ComplexPayload:
		return p.Package
	case *ContainerPayload:
		return p.Package
	}
	return ""
}

// QualifiedTargetLangName joins package, enum qualifier and name with dots.
func (e *TypeEntry) QualifiedTargetLangName() string {
	var parts []string
	if pkg := e.TargetLangPackage(); pkg != "" {
		parts = append(parts, pkg)
	}
	switch p := e.payload.(type) {
	case *EnumPayload:
		if p.Qualifier != "" {
			parts = append(parts, strings.ReplaceAll(p.Qualifier, "::", "."))
		}
	case *FlagsPayload:
		if p.Originator != nil {
			if ep, ok := p.Originator.Enum(); ok && ep.Qualifier != "" {
				parts = append(parts, strings.ReplaceAll(ep.Qualifier, "::", "."))
			}
		}
	}
	parts = append(parts, e.TargetLangName())
	return strings.Join(parts, ".")
}

// LookupName is the name used when converting to the target language.
func (e *TypeEntry) LookupName() string {
	if cp, ok := e.Complex(); ok && cp.LookupName != "" {
		return cp.LookupName
	}
	return e.TargetLangName()
}

// Typed payload accessors.

func (e *TypeEntry) Primitive() (*PrimitivePayload, bool) {
	p, ok := e.payload.(*PrimitivePayload)
	return p, ok
}

func (e *TypeEntry) Enum() (*EnumPayload, bool) {
	p, ok := e.payload.(*EnumPayload)
	return p, ok
}

func (e *TypeEntry) Flags() (*FlagsPayload, bool) {
	p, ok := e.payload.(*FlagsPayload)
	return p, ok
}

// Complex returns the complex state of value, object, interface, namespace
// and container entries.
func (e *TypeEntry) Complex() (*ComplexPayload, bool) {
	switch p := e.payload.(type) {
	case *ComplexPayload:
		return p, true
	case *ContainerPayload:
		return &p.ComplexPayload, true
	}
	return nil, false
}

func (e *TypeEntry) Container() (*ContainerPayload, bool) {
	p, ok := e.payload.(*ContainerPayload)
	return p, ok
}

func (e *TypeEntry) Array() (*ArrayPayload, bool) {
	p, ok := e.payload.(*ArrayPayload)
	return p, ok
}

func (e *TypeEntry) TemplateArg() (*TemplateArgPayload, bool) {
	p, ok := e.payload.(*TemplateArgPayload)
	return p, ok
}

// IsNonPreferredPrimitive reports whether e is a primitive alias that lookups
// should skip in favour of a canonical primitive.
func (e *TypeEntry) IsNonPreferredPrimitive() bool {
	p, ok := e.Primitive()
	return ok && !p.PreferredTargetLangType
}

func (e *TypeEntry) String() string {
	return e.kind.String() + " " + e.name
}

func lastSegment(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}
