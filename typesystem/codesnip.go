package typesystem

import (
	"sort"
	"strings"

	"github.com/rubiojr/wrapgen/errors"
	"go.uber.org/multierr"
)

// Position is where a code snippet is injected.
type Position int

const (
	PositionBeginning Position = iota
	PositionEnd
	PositionAfterThis
	PositionDeclaration
	PositionPrototypeInitialization
	PositionConstructorInitialization
	PositionConstructor
	PositionAny
)

var positionNames = map[string]Position{
	"beginning":                  PositionBeginning,
	"end":                        PositionEnd,
	"after-this":                 PositionAfterThis,
	"declaration":                PositionDeclaration,
	"prototype-initialization":   PositionPrototypeInitialization,
	"constructor-initialization": PositionConstructorInitialization,
	"constructor":                PositionConstructor,
	"any":                        PositionAny,
}

// ParsePosition maps a rule-file position name to a Position.
func ParsePosition(s string) (Position, bool) {
	p, ok := positionNames[strings.ToLower(strings.TrimSpace(s))]
	return p, ok
}

// TemplateResolver finds reusable code templates by name.
type TemplateResolver interface {
	FindTemplate(name string) *TemplateEntry
}

// TemplateEntry is a named, reusable code fragment with ${name} placeholders.
type TemplateEntry struct {
	Name string
	Code string
}

// TemplateInstance is a use of a template with a placeholder replacement map.
type TemplateInstance struct {
	Name    string
	Replace map[string]string
}

// AddReplaceRule sets the replacement for placeholder name.
func (ti *TemplateInstance) AddReplaceRule(name, value string) {
	if ti.Replace == nil {
		ti.Replace = make(map[string]string)
	}
	ti.Replace[name] = value
}

// Expand looks up the template and substitutes its placeholders in one
// left-to-right pass. Replacement text is never re-scanned. Placeholders
// without a replacement are kept verbatim and reported through the
// returned error, which wraps errors.ErrUnresolvedPlaceholder; the text is
// valid either way.
func (ti *TemplateInstance) Expand(r TemplateResolver) (string, error) {
	var tmpl *TemplateEntry
	if r != nil {
		tmpl = r.FindTemplate(ti.Name)
	}
	if tmpl == nil {
		return "// TEMPLATE - " + ti.Name + " - NOT FOUND\n",
			errors.Wrapf(errors.ErrTemplateNotFound, "template %q", ti.Name)
	}
	out, unresolved := expandPlaceholders(tmpl.Code, ti.Replace)
	if len(unresolved) > 0 {
		return out, errors.Wrapf(errors.ErrUnresolvedPlaceholder,
			"template %q: %s", ti.Name, strings.Join(unresolved, ", "))
	}
	return out, nil
}

// expandPlaceholders replaces ${name} occurrences found in body. It returns
// the sorted, deduplicated names that had no replacement.
func expandPlaceholders(body string, repl map[string]string) (string, []string) {
	var sb strings.Builder
	missing := map[string]bool{}
	for i := 0; i < len(body); {
		if body[i] == '$' && i+1 < len(body) && body[i+1] == '{' {
			end := strings.IndexByte(body[i+2:], '}')
			if end >= 0 {
				name := body[i+2 : i+2+end]
				if v, ok := repl[name]; ok {
					sb.WriteString(v)
				} else {
					sb.WriteString(body[i : i+3+end])
					missing[name] = true
				}
				i += 3 + end
				continue
			}
		}
		sb.WriteByte(body[i])
		i++
	}
	var names []string
	for n := range missing {
		names = append(names, "${"+n+"}")
	}
	sort.Strings(names)
	return sb.String(), names
}

// CodeSnipFragment is either literal code or a template instance.
type CodeSnipFragment struct {
	Code     string
	Instance *TemplateInstance
}

// CodeSnip is an ordered list of fragments injected at a position.
type CodeSnip struct {
	Language    Language
	Position    Position
	ArgumentMap map[int]string
	Fragments   []CodeSnipFragment
}

// NewCodeSnip returns a snippet holding a single literal fragment.
func NewCodeSnip(lang Language, pos Position, code string) CodeSnip {
	cs := CodeSnip{Language: lang, Position: pos}
	cs.AddCode(code)
	return cs
}

func (cs *CodeSnip) AddCode(code string) {
	cs.Fragments = append(cs.Fragments, CodeSnipFragment{Code: code})
}

func (cs *CodeSnip) AddTemplateInstance(ti *TemplateInstance) {
	cs.Fragments = append(cs.Fragments, CodeSnipFragment{Instance: ti})
}

// Code concatenates the fragments, expanding template instances through r.
// All expansion problems are joined into the returned error; the returned
// text always contains every fragment.
func (cs *CodeSnip) Code(r TemplateResolver) (string, error) {
	var sb strings.Builder
	var errs []error
	for _, f := range cs.Fragments {
		if f.Instance == nil {
			sb.WriteString(f.Code)
			continue
		}
		code, err := f.Instance.Expand(r)
		if err != nil {
			errs = append(errs, err)
		}
		sb.WriteString(code)
	}
	return sb.String(), multierr.Combine(errs...)
}

// CustomFunction is a user-supplied constructor or destructor override.
type CustomFunction struct {
	Name      string
	ParamName string
	Snip      CodeSnip
}

// IsSet reports whether the override was supplied.
func (cf CustomFunction) IsSet() bool { return cf.Name != "" }
