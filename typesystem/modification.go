package typesystem

import (
	"fmt"
	"strings"
)

// Language scopes a rule or snippet to a part of the generated code.
type Language uint

const (
	NoLanguage         Language = 0x0000
	TargetLangCode     Language = 0x0001
	NativeCode         Language = 0x0002
	ShellCode          Language = 0x0004
	ShellDeclaration   Language = 0x0008
	PackageInitializer Language = 0x0010
	DestructorFunction Language = 0x0020
	Constructors       Language = 0x0040
	Interface          Language = 0x0080

	LangAll = TargetLangCode | NativeCode | ShellCode | ShellDeclaration |
		PackageInitializer | Constructors | Interface | DestructorFunction
	TargetLangAndNativeCode = TargetLangCode | NativeCode
)

var languageNames = map[string]Language{
	"":                    NoLanguage,
	"target":              TargetLangCode,
	"native":              NativeCode,
	"shell":               ShellCode,
	"shell-declaration":   ShellDeclaration,
	"library-initializer": PackageInitializer,
	"destructor-function": DestructorFunction,
	"constructors":        Constructors,
	"interface":           Interface,
	"all":                 LangAll,
}

// ParseLanguage maps a rule-file language name to a Language.
func ParseLanguage(s string) (Language, bool) {
	l, ok := languageNames[strings.ToLower(strings.TrimSpace(s))]
	return l, ok
}

// Ownership says which side owns an object after a call.
type Ownership int

const (
	InvalidOwnership Ownership = iota
	DefaultOwnership
	TargetLangOwnership
	NativeOwnership
)

func (o Ownership) String() string {
	switch o {
	case DefaultOwnership:
		return "default"
	case TargetLangOwnership:
		return "target"
	case NativeOwnership:
		return "native"
	}
	return "invalid"
}

// RefCountAction is a reference-count bookkeeping action on an argument.
type RefCountAction int

const (
	RefCountInvalid RefCountAction = 0x00
	RefCountAdd     RefCountAction = 0x01
	RefCountAddAll  RefCountAction = 0x02
	RefCountRemove  RefCountAction = 0x04
	RefCountSet     RefCountAction = 0x08
	RefCountIgnore  RefCountAction = 0x10
)

// ReferenceCount is one reference-count action scoped to a language.
type ReferenceCount struct {
	Action   RefCountAction
	Language Language
}

// OwnerAction is the parent/child relation action of an argument.
type OwnerAction int

const (
	OwnerInvalid OwnerAction = iota
	OwnerAdd
	OwnerRemove
)

// ArgumentOwner models "this argument becomes (or stops being) a child
// owned by argument Index". Index -1 is the return value, 0 is self.
type ArgumentOwner struct {
	Action OwnerAction
	Index  int
}

// ArgumentModification customizes one argument of a function.
// Index is 1-based; 0 denotes the return value.
type ArgumentModification struct {
	Index int

	RemovedDefaultExpression bool
	Removed                  bool
	NoNullPointers           bool
	ResetAfterUse            bool

	ModifiedType              string
	ReplaceValue              string
	NullPointerDefaultValue   string
	ReplacedDefaultExpression string

	Ownerships      map[Language]Ownership
	ConversionRules []CodeSnip
	ReferenceCounts []ReferenceCount
	Owner           ArgumentOwner
}

// Ownership returns the ownership transfer declared for lang.
func (am *ArgumentModification) Ownership(lang Language) Ownership {
	if o, ok := am.Ownerships[lang]; ok {
		return o
	}
	return InvalidOwnership
}

// Modifier bits of a Modification.
const (
	ModPrivate           uint = 0x0001
	ModProtected         uint = 0x0002
	ModPublic            uint = 0x0003
	ModFriendly          uint = 0x0004
	ModAccessMask        uint = 0x000f
	ModFinal             uint = 0x0010
	ModNonFinal          uint = 0x0020
	ModFinalMask              = ModFinal | ModNonFinal
	ModReadable          uint = 0x0100
	ModWritable          uint = 0x0200
	ModCodeInjection     uint = 0x1000
	ModRename            uint = 0x2000
	ModDeprecated        uint = 0x4000
	ModReplaceExpression uint = 0x8000
	ModVirtualSlot            = 0x10000 | ModNonFinal
)

// Modification holds the modifiers shared by function and field rules.
type Modification struct {
	Modifiers uint
	RenamedTo string
}

func (m Modification) IsAccessModifier() bool { return m.Modifiers&ModAccessMask != 0 }
func (m Modification) AccessModifier() uint { return m.Modifiers & ModAccessMask }
func (m Modification) IsPrivate() bool { return m.AccessModifier() == ModPrivate }
func (m Modification) IsProtected() bool { return m.AccessModifier() == ModProtected }
func (m Modification) IsPublic() bool { return m.AccessModifier() == ModPublic }
func (m Modification) IsFriendly() bool { return m.AccessModifier() == ModFriendly }
func (m Modification) IsFinal() bool { return m.Modifiers&ModFinal != 0 }
func (m Modification) IsNonFinal() bool { return m.Modifiers&ModNonFinal != 0 }
func (m Modification) IsVirtualSlot() bool { return m.Modifiers&ModVirtualSlot == ModVirtualSlot }
func (m Modification) IsDeprecated() bool { return m.Modifiers&ModDeprecated != 0 }
func (m Modification) IsRenameModifier() bool { return m.Modifiers&ModRename != 0 }

// Rename marks the modification as a rename to name.
func (m *Modification) Rename(name string) {
	m.Modifiers |= ModRename
	m.RenamedTo = name
}

// AccessModifierString renders the access modifier for diagnostics.
func (m Modification) AccessModifierString() string {
	switch m.AccessModifier() {
	case ModPrivate:
		return "private"
	case ModProtected:
		return "protected"
	case ModPublic:
		return "public"
	case ModFriendly:
		return "friendly"
	}
	return ""
}

// FunctionModification is a rule attached to a function by signature.
// Signature is a matching key compared by string equality against
// normalized function signatures, not a reference to a function.
type FunctionModification struct {
	Modification

	Signature    string
	Association  string
	Snips        []CodeSnip
	Removal      Language
	Thread       bool
	AllowThread  bool
	ArgumentMods []ArgumentModification
}

func (fm *FunctionModification) IsCodeInjection() bool { return fm.Modifiers&ModCodeInjection != 0 }
func (fm *FunctionModification) IsRemoveModifier() bool { return fm.Removal != NoLanguage }

// ArgumentMod returns the modification for argument idx, if any.
func (fm *FunctionModification) ArgumentMod(idx int) (*ArgumentModification, bool) {
	for i := range fm.ArgumentMods {
		if fm.ArgumentMods[i].Index == idx {
			return &fm.ArgumentMods[i], true
		}
	}
	return nil, false
}

func (fm *FunctionModification) String() string {
	var parts []string
	if fm.IsAccessModifier() {
		parts = append(parts, "access="+fm.AccessModifierString())
	}
	if fm.IsRenameModifier() {
		parts = append(parts, "rename="+fm.RenamedTo)
	}
	if fm.IsRemoveModifier() {
		parts = append(parts, fmt.Sprintf("remove=%#x", uint(fm.Removal)))
	}
	if fm.Thread {
		parts = append(parts, "thread")
	}
	if fm.AllowThread {
		parts = append(parts, "allow-thread")
	}
	if len(fm.Snips) > 0 {
		parts = append(parts, fmt.Sprintf("snips=%d", len(fm.Snips)))
	}
	if len(fm.ArgumentMods) > 0 {
		parts = append(parts, fmt.Sprintf("args=%d", len(fm.ArgumentMods)))
	}
	return fmt.Sprintf("%s{%s}", fm.Signature, strings.Join(parts, " "))
}

// FieldModification is a rule attached to a field by name.
type FieldModification struct {
	Modification
	Name string
}

func (fm FieldModification) IsReadable() bool { return fm.Modifiers&ModReadable != 0 }
func (fm FieldModification) IsWritable() bool { return fm.Modifiers&ModWritable != 0 }

// DocMode says how a documentation modification combines with the original.
type DocMode int

const (
	DocAppend DocMode = iota
	DocPrepend
	DocReplace
	DocXPathReplace
)

// DocModification rewrites the documentation of a type or function.
type DocModification struct {
	Mode      DocMode
	Code      string
	XPath     string
	Signature string
	Format    Language
}

// NewXPathDocModification returns an XPath replacement in native format.
func NewXPathDocModification(xpath, signature string) DocModification {
	return DocModification{Mode: DocXPathReplace, XPath: xpath, Signature: signature, Format: NativeCode}
}
