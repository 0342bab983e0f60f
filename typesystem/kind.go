// Package typesystem describes native types and the customization rules
// attached to them.
//
// Every native type is a *TypeEntry: one struct carrying a Kind discriminator,
// the state shared by all kinds and a kind-specific payload. Payload state is
// reached only through the typed accessors (Enum, Complex, Primitive, ...),
// which check the discriminator, so an entry can never be read as the wrong
// kind.
package typesystem

import "strings"

// Kind discriminates the TypeEntry variant.
type Kind int

const (
	KindPrimitive Kind = iota
	KindVoid
	KindVarargs
	KindFlags
	KindEnum
	KindTemplateArgument
	KindThread
	KindValue
	KindString
	KindChar
	KindContainer
	KindInterface
	KindObject
	KindNamespace
	KindVariant
	KindArray
	KindTypeSystem
	KindCustom
)

var kindNames = [...]string{
	KindPrimitive:        "primitive",
	KindVoid:             "void",
	KindVarargs:          "varargs",
	KindFlags:            "flags",
	KindEnum:             "enum",
	KindTemplateArgument: "template-argument",
	KindThread:           "thread",
	KindValue:            "value",
	KindString:           "string",
	KindChar:             "char",
	KindContainer:        "container",
	KindInterface:        "interface",
	KindObject:           "object",
	KindNamespace:        "namespace",
	KindVariant:          "variant",
	KindArray:            "array",
	KindTypeSystem:       "typesystem",
	KindCustom:           "custom",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind returns the Kind named s (as rendered by Kind.String).
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// isComplex reports whether entries of this kind carry a ComplexPayload.
func (k Kind) isComplex() bool {
	switch k {
	case KindValue, KindString, KindChar, KindVariant,
		KindContainer, KindInterface, KindObject, KindNamespace:
		return true
	}
	return false
}

// isValue reports whether the kind is a value type (copied, not referenced).
func (k Kind) isValue() bool {
	switch k {
	case KindValue, KindString, KindChar, KindVariant:
		return true
	}
	return false
}

// CodeGeneration is the generation policy bitmask of a type entry.
type CodeGeneration uint

const (
	GenerateNothing     CodeGeneration = 0
	GenerateTargetLang  CodeGeneration = 0x0001
	GenerateNative      CodeGeneration = 0x0002
	GenerateForSubclass CodeGeneration = 0x0004
	GenerateAll         CodeGeneration = 0xffff
	GenerateCode                       = GenerateTargetLang | GenerateNative
)

func (g CodeGeneration) String() string {
	switch g {
	case GenerateNothing:
		return "nothing"
	case GenerateAll:
		return "all"
	case GenerateForSubclass:
		return "subclass-only"
	}
	var parts []string
	if g&GenerateTargetLang != 0 {
		parts = append(parts, "target")
	}
	if g&GenerateNative != 0 {
		parts = append(parts, "native")
	}
	if g&GenerateForSubclass != 0 {
		parts = append(parts, "subclass")
	}
	return strings.Join(parts, "|")
}

var codeGenerationNames = map[string]CodeGeneration{
	"all":           GenerateAll,
	"yes":           GenerateAll,
	"nothing":       GenerateNothing,
	"no":            GenerateNothing,
	"subclass-only": GenerateForSubclass,
	"subclass":      GenerateForSubclass,
	"target":        GenerateTargetLang,
	"native":        GenerateNative,
}

// ParseCodeGeneration maps a rule-file generation policy to its mask. An
// empty string means GenerateAll.
func ParseCodeGeneration(s string) (CodeGeneration, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return GenerateAll, true
	}
	g, ok := codeGenerationNames[s]
	return g, ok
}
