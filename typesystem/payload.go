package typesystem

import (
	"strings"

	"github.com/rubiojr/wrapgen/errors"
)

const interfaceSuffix = "Interface"

// InterfaceName returns the name of the interface entry synthesized for the
// object type name.
func InterfaceName(name string) string { return name + interfaceSuffix }

// PrimitivePayload is the state of a primitive entry.
type PrimitivePayload struct {
	TargetLangName    string
	TargetLangAPIName string

	PreferredConversion bool
	// PreferredTargetLangType is false for aliases that lookups should skip
	// in favour of the canonical primitive.
	PreferredTargetLangType bool

	Aliased *TypeEntry
}

func (*PrimitivePayload) accepts(k Kind) bool { return k == KindPrimitive }

// BasicAliased follows the alias chain and returns its root, or nil when the
// primitive aliases nothing.
func (p *PrimitivePayload) BasicAliased() *TypeEntry {
	root := p.Aliased
	for root != nil {
		next, ok := root.Primitive()
		if !ok || next.Aliased == nil || next.Aliased == root {
			break
		}
		root = next.Aliased
	}
	return root
}

// EnumPayload is the state of an enum entry.
type EnumPayload struct {
	Qualifier      string
	TargetLangName string
	Package        string
	LowerBound     string
	UpperBound     string

	Flags        *TypeEntry
	Extensible   bool
	ForceInteger bool

	rejected     map[string]bool
	redirections map[string]string
}

func (*EnumPayload) accepts(k Kind) bool { return k == KindEnum }

func (p *EnumPayload) AddRejectedValue(name string) {
	if p.rejected == nil {
		p.rejected = make(map[string]bool)
	}
	p.rejected[name] = true
}

func (p *EnumPayload) IsValueRejected(name string) bool { return p.rejected[name] }

// AddRedirection records that the rejected value should be emitted as used.
func (p *EnumPayload) AddRedirection(rejected, used string) {
	if p.redirections == nil {
		p.redirections = make(map[string]string)
	}
	p.redirections[rejected] = used
}

// Redirection returns the replacement of a rejected value, or "" if none.
func (p *EnumPayload) Redirection(value string) string { return p.redirections[value] }

// FlagsPayload is the state of a flags (bitmask) entry.
type FlagsPayload struct {
	OriginalName string
	FlagsName    string
	Originator   *TypeEntry
}

func (*FlagsPayload) accepts(k Kind) bool { return k == KindFlags }

// ForceInteger is inherited from the originating enum.
func (p *FlagsPayload) ForceInteger() bool {
	if p.Originator == nil {
		return false
	}
	ep, ok := p.Originator.Enum()
	return ok && ep.ForceInteger
}

// CopyableFlag is the tri-state copy policy of a complex type.
type CopyableFlag int

const (
	CopyableUnknown CopyableFlag = iota
	Copyable
	NonCopyable
)

func (c CopyableFlag) String() string {
	switch c {
	case Copyable:
		return "copyable"
	case NonCopyable:
		return "non-copyable"
	}
	return "unknown"
}

// ExpensePolicy limits the number of live objects by cost. A Limit of -1
// means no limit.
type ExpensePolicy struct {
	Limit int
	Cost  string
}

func (e ExpensePolicy) IsValid() bool { return e.Limit >= 0 }

// TypeFlags are per-type behaviour switches.
type TypeFlags uint

const (
	ForceAbstract      TypeFlags = 0x1
	DeleteInMainThread TypeFlags = 0x2
	Deprecated         TypeFlags = 0x4
)

// ComplexPayload is the state shared by value, object, interface, namespace
// and container entries.
type ComplexPayload struct {
	Package             string
	TargetLangName      string
	QualifiedNativeName string
	LookupName          string
	TargetType          string
	HeldType            string
	DefaultSuperclass   string
	PolymorphicIDValue  string
	HashFunction        string

	QObject         bool
	PolymorphicBase bool
	GenericClass    bool

	ExpensePolicy ExpensePolicy
	Copyable      CopyableFlag
	TypeFlags     TypeFlags

	// DesignatedInterface is set on objects, Origin on interfaces.
	DesignatedInterface *TypeEntry
	Origin              *TypeEntry

	funcMods       []FunctionModification
	fieldMods      []FieldModification
	addedFunctions []AddedFunction
}

func (*ComplexPayload) accepts(k Kind) bool { return k.isComplex() && k != KindContainer }

func (p *ComplexPayload) AddFunctionModification(fm FunctionModification) {
	p.funcMods = append(p.funcMods, fm)
}

// AllFunctionModifications returns every function rule in registration order.
func (p *ComplexPayload) AllFunctionModifications() []FunctionModification { return p.funcMods }

// FunctionModifications returns, in registration order, every rule whose
// signature equals signature.
func (p *ComplexPayload) FunctionModifications(signature string) []FunctionModification {
	var out []FunctionModification
	for _, fm := range p.funcMods {
		if fm.Signature == signature {
			out = append(out, fm)
		}
	}
	return out
}

func (p *ComplexPayload) AddFieldModification(fm FieldModification) {
	p.fieldMods = append(p.fieldMods, fm)
}

func (p *ComplexPayload) FieldModifications() []FieldModification { return p.fieldMods }

// FieldModification returns the first rule registered for the field name,
// or a readable and writable default.
func (p *ComplexPayload) FieldModification(name string) FieldModification {
	for _, fm := range p.fieldMods {
		if fm.Name == name {
			return fm
		}
	}
	return FieldModification{Name: name, Modification: Modification{Modifiers: ModReadable | ModWritable}}
}

func (p *ComplexPayload) AddAddedFunction(af AddedFunction) {
	p.addedFunctions = append(p.addedFunctions, af)
}

func (p *ComplexPayload) AddedFunctions() []AddedFunction { return p.addedFunctions }

func (p *ComplexPayload) HasTypeFlag(f TypeFlags) bool { return p.TypeFlags&f != 0 }

// ContainerKind is the shape of a container type.
type ContainerKind int

const (
	NoContainer ContainerKind = iota
	ListContainer
	StringListContainer
	LinkedListContainer
	VectorContainer
	StackContainer
	QueueContainer
	SetContainer
	MapContainer
	MultiMapContainer
	HashContainer
	MultiHashContainer
	PairContainer
)

var containerKindNames = [...]string{
	NoContainer:         "",
	ListContainer:       "list",
	StringListContainer: "string-list",
	LinkedListContainer: "linked-list",
	VectorContainer:     "vector",
	StackContainer:      "stack",
	QueueContainer:      "queue",
	SetContainer:        "set",
	MapContainer:        "map",
	MultiMapContainer:   "multi-map",
	HashContainer:       "hash",
	MultiHashContainer:  "multi-hash",
	PairContainer:       "pair",
}

func (c ContainerKind) String() string {
	if c <= NoContainer || int(c) >= len(containerKindNames) {
		return "none"
	}
	return containerKindNames[c]
}

// ParseContainerKind maps a rule-file container type ("multi-map") to its kind.
func ParseContainerKind(s string) (ContainerKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return NoContainer, false
	}
	for k, name := range containerKindNames {
		if name == s {
			return ContainerKind(k), true
		}
	}
	return NoContainer, false
}

// ContainerPayload is the state of a container entry.
type ContainerPayload struct {
	ComplexPayload
	ContainerKind ContainerKind
}

func (*ContainerPayload) accepts(k Kind) bool { return k == KindContainer }

// ArrayPayload is the state of an array entry.
type ArrayPayload struct {
	Nested *TypeEntry
}

func (*ArrayPayload) accepts(k Kind) bool { return k == KindArray }

// TemplateArgPayload is the state of a template-argument entry.
type TemplateArgPayload struct {
	Ordinal int
}

func (*TemplateArgPayload) accepts(k Kind) bool { return k == KindTemplateArgument }

// LinkInterface relates an object entry and the interface synthesized for it.
// Neither owns the other.
func LinkInterface(object, iface *TypeEntry) error {
	if !object.IsObject() || !iface.IsInterface() {
		return errors.Wrapf(errors.ErrKindMismatch, "cannot link %s to %s", object, iface)
	}
	op, _ := object.Complex()
	ip, _ := iface.Complex()
	op.DesignatedInterface = iface
	ip.Origin = object
	return nil
}
