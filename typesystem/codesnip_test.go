package typesystem

import (
	"testing"

	"github.com/rubiojr/wrapgen/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type templates map[string]string

func (m templates) FindTemplate(name string) *TemplateEntry {
	code, ok := m[name]
	if !ok {
		return nil
	}
	return &TemplateEntry{Name: name, Code: code}
}

func TestTemplateExpand(t *testing.T) {
	db := templates{
		"convert": "${out} = convert(${in});",
		"nested":  "${a}${b}",
	}

	tests := []struct {
		name       string
		template   string
		replace    map[string]string
		want       string
		unresolved bool
		notFound   bool
	}{
		{
			name:     "all placeholders",
			template: "convert",
			replace:  map[string]string{"out": "x", "in": "y"},
			want:     "x = convert(y);",
		},
		{
			name:     "replacement is not rescanned",
			template: "nested",
			replace:  map[string]string{"a": "${b}", "b": "B"},
			want:     "${b}B",
		},
		{
			name:       "unresolved kept verbatim",
			template:   "convert",
			replace:    map[string]string{"out": "x"},
			want:       "x = convert(${in});",
			unresolved: true,
		},
		{
			name:     "unknown template",
			template: "missing",
			want:     "// TEMPLATE - missing - NOT FOUND\n",
			notFound: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ti := &TemplateInstance{Name: tt.template}
			for k, v := range tt.replace {
				ti.AddReplaceRule(k, v)
			}
			got, err := ti.Expand(db)
			assert.Equal(t, tt.want, got)
			switch {
			case tt.unresolved:
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrUnresolvedPlaceholder))
				assert.Contains(t, err.Error(), "${in}")
			case tt.notFound:
				assert.True(t, errors.Is(err, errors.ErrTemplateNotFound))
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestCodeSnipJoinsFragments(t *testing.T) {
	db := templates{"greet": "hello ${who}"}

	cs := NewCodeSnip(NativeCode, PositionBeginning, "// start\n")
	ti := &TemplateInstance{Name: "greet"}
	ti.AddReplaceRule("who", "world")
	cs.AddTemplateInstance(ti)
	cs.AddTemplateInstance(&TemplateInstance{Name: "gone"})
	cs.AddTemplateInstance(&TemplateInstance{Name: "greet"})

	code, err := cs.Code(db)
	assert.Equal(t, "// start\nhello world// TEMPLATE - gone - NOT FOUND\nhello ${who}", code)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTemplateNotFound))
	assert.True(t, errors.Is(err, errors.ErrUnresolvedPlaceholder))
}

func TestCodeSnipsFor(t *testing.T) {
	e := NewValue("Point")
	e.AddCodeSnip(NewCodeSnip(NativeCode, PositionDeclaration, "int a;"))
	e.AddCodeSnip(NewCodeSnip(TargetLangCode, PositionDeclaration, "b"))
	e.AddCodeSnip(NewCodeSnip(NativeCode|TargetLangCode, PositionDeclaration, "int c;"))
	e.AddCodeSnip(NewCodeSnip(NativeCode, PositionEnd, "int d;"))

	snips := e.CodeSnipsFor(PositionDeclaration, NativeCode)
	require.Len(t, snips, 2)
	assert.Equal(t, "int a;", snips[0].Fragments[0].Code)
	assert.Equal(t, "int c;", snips[1].Fragments[0].Code)
}

func TestParsePositionAndLanguage(t *testing.T) {
	p, ok := ParsePosition("after-this")
	require.True(t, ok)
	assert.Equal(t, PositionAfterThis, p)

	l, ok := ParseLanguage("Native")
	require.True(t, ok)
	assert.Equal(t, NativeCode, l)

	l, ok = ParseLanguage("all")
	require.True(t, ok)
	assert.Equal(t, LangAll, l)
}
