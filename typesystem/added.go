package typesystem

import (
	"strings"
)

// IncludeType says how an include is rendered.
type IncludeType int

const (
	IncludePath IncludeType = iota
	LocalPath
	TargetLangImport
)

// Include is a header (or target-language import) needed by a type.
type Include struct {
	Type IncludeType
	Name string
}

func (i Include) IsValid() bool { return i.Name != "" }

func (i Include) String() string {
	switch i.Type {
	case LocalPath:
		return `#include "` + i.Name + `"`
	case TargetLangImport:
		return "import " + i.Name + ";"
	default:
		return "#include <" + i.Name + ">"
	}
}

// AddedAccess is the access level of a function added by the rules.
type AddedAccess int

const (
	AddedProtected AddedAccess = 0x1
	AddedPublic    AddedAccess = 0x2
)

// TypeInfo describes an argument or return type of an added function.
type TypeInfo struct {
	Name         string
	IsConstant   bool
	Indirections int
	IsReference  bool
	DefaultValue string
}

// AddedFunction is a synthetic function declared by the rules rather than
// found by the extractor.
type AddedFunction struct {
	Name       string
	Access     AddedAccess
	Arguments  []TypeInfo
	ReturnType TypeInfo
	IsConstant bool
	IsStatic   bool
}

// NewAddedFunction parses a signature such as "add(int, const Point& p = Point())"
// with the given return type. Argument names are dropped; default values kept.
func NewAddedFunction(signature, returnType string) AddedFunction {
	af := AddedFunction{Access: AddedPublic}
	sig := strings.TrimSpace(signature)
	open := strings.IndexByte(sig, '(')
	if open < 0 {
		af.Name = sig
		af.ReturnType = parseTypeInfo(returnType)
		return af
	}
	af.Name = strings.TrimSpace(sig[:open])
	closeIdx := strings.LastIndexByte(sig, ')')
	if closeIdx < open {
		closeIdx = len(sig)
	}
	for _, arg := range splitTopLevel(sig[open+1 : closeIdx]) {
		if strings.TrimSpace(arg) == "" {
			continue
		}
		af.Arguments = append(af.Arguments, parseTypeInfo(arg))
	}
	if closeIdx < len(sig) {
		af.IsConstant = strings.HasPrefix(strings.TrimSpace(sig[closeIdx+1:]), "const")
	}
	af.ReturnType = parseTypeInfo(returnType)
	return af
}

// splitTopLevel splits s on commas that are not nested in <>, () or [].
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func parseTypeInfo(s string) TypeInfo {
	var ti TypeInfo
	s = strings.TrimSpace(s)
	if eq := strings.IndexByte(s, '='); eq >= 0 {
		ti.DefaultValue = strings.TrimSpace(s[eq+1:])
		s = strings.TrimSpace(s[:eq])
	}
	if strings.HasPrefix(s, "const ") {
		ti.IsConstant = true
		s = strings.TrimSpace(s[len("const "):])
	}
	for {
		switch {
		case strings.HasSuffix(s, "&"):
			ti.IsReference = true
			s = strings.TrimSpace(s[:len(s)-1])
			continue
		case strings.HasSuffix(s, "*"):
			ti.Indirections++
			s = strings.TrimSpace(s[:len(s)-1])
			continue
		}
		break
	}
	// "const Point& p": drop a trailing parameter name when a type precedes it.
	if sp := strings.LastIndexByte(s, ' '); sp > 0 && !strings.ContainsAny(s[sp:], "<>:") {
		head := strings.TrimSpace(s[:sp])
		if head != "unsigned" && head != "signed" && head != "long" && head != "short" {
			rest := strings.TrimSpace(s[sp+1:])
			if strings.HasSuffix(head, "&") || strings.HasSuffix(head, "*") {
				s = head
				for strings.HasSuffix(s, "&") || strings.HasSuffix(s, "*") {
					if s[len(s)-1] == '&' {
						ti.IsReference = true
					} else {
						ti.Indirections++
					}
					s = strings.TrimSpace(s[:len(s)-1])
				}
			} else if rest != "" && !isBuiltinTypeWord(rest) {
				s = head
			}
		}
	}
	ti.Name = s
	return ti
}

func isBuiltinTypeWord(s string) bool {
	switch s {
	case "int", "char", "short", "long", "double", "float", "bool":
		return true
	}
	return false
}

// Signature renders the added function back in normalized form.
func (af AddedFunction) Signature() string {
	var args []string
	for _, a := range af.Arguments {
		args = append(args, a.String())
	}
	return af.Name + "(" + strings.Join(args, ",") + ")"
}

func (ti TypeInfo) String() string {
	var sb strings.Builder
	if ti.IsConstant {
		sb.WriteString("const ")
	}
	sb.WriteString(ti.Name)
	sb.WriteString(strings.Repeat("*", ti.Indirections))
	if ti.IsReference {
		sb.WriteByte('&')
	}
	return sb.String()
}
