package typedb

import (
	"testing"

	"github.com/rubiojr/wrapgen/errors"
	ts "github.com/rubiojr/wrapgen/typesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchWarning(t *testing.T) {
	tests := []struct {
		pattern string
		msg     string
		want    bool
	}{
		{"foo*bar", "foobazbar", true},
		{"foo*bar", "barfoo", false},
		{"foo*bar", "foobar", true},
		{"foo", "a foo b", true},
		{"*foo*", "xfoox", true},
		{"abab", "aba", false},
		{"ab*ab", "abab", true},
		{"ab*ab", "aba", false},
		{`skipping \*`, "skipping * pointer", true},
		{`skipping \*`, "skipping pointer", false},
		{"a?b", "a?b", true},
		{"a?b", "axb", false},
		{"[x]", "[x]", true},
		{"*", "anything", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchWarning(tt.pattern, tt.msg))
		})
	}
}

func TestIsSuppressedWarning(t *testing.T) {
	db := New()
	db.AddSuppressedWarning("enum '*' does not have a type entry")
	db.AddSuppressedWarning("**")

	assert.True(t, db.IsSuppressedWarning("enum 'Qt::Key' does not have a type entry"))
	assert.False(t, db.IsSuppressedWarning("class 'Foo' does not have a type entry"))
	assert.Equal(t, []string{"enum '*' does not have a type entry", "**"}, db.SuppressedWarnings())

	db.SetSuppressWarnings(false)
	assert.False(t, db.IsSuppressedWarning("enum 'Qt::Key' does not have a type entry"))
}

func TestRejections(t *testing.T) {
	db := New()
	require.NoError(t, db.AddRejection(TypeRejection{Class: "Foo"}))
	require.NoError(t, db.AddRejection(TypeRejection{Function: "qt_*"}))
	require.NoError(t, db.AddRejection(TypeRejection{Class: "Bar", Field: "d_ptr"}))
	require.NoError(t, db.AddRejection(TypeRejection{Class: "*Private", Enum: "Flag*"}))

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"class rule rejects class", db.IsClassRejected("Foo"), true},
		{"class rule leaves other class", db.IsClassRejected("Bar"), false},
		{"class rule rejects every function", db.IsFunctionRejected("Foo", "draw"), true},
		{"class rule leaves other functions", db.IsFunctionRejected("Bar", "draw"), false},
		{"function rule in any class", db.IsFunctionRejected("Bar", "qt_metacall"), true},
		{"function rule as free function", db.IsFunctionRejected("", "qt_check"), true},
		{"field rule does not reject class", db.IsClassRejected("Bar"), false},
		{"field rule", db.IsFieldRejected("Bar", "d_ptr"), true},
		{"field rule other field", db.IsFieldRejected("Bar", "x"), false},
		{"enum rule", db.IsEnumRejected("WidgetPrivate", "FlagA"), true},
		{"enum rule other class", db.IsEnumRejected("Widget", "FlagA"), false},
		{"enum rule needs enum", db.IsClassRejected("WidgetPrivate"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
	assert.Len(t, db.Rejections(), 4)
}

func TestAddRejectionInvalid(t *testing.T) {
	db := New()
	err := db.AddRejection(TypeRejection{})
	assert.True(t, errors.Is(err, errors.ErrInvalidRejection))

	err = db.AddRejection(TypeRejection{Function: "operator["})
	assert.True(t, errors.Is(err, errors.ErrInvalidRejection))
	assert.Empty(t, db.Rejections())
}

func TestNormalizedSignature(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"foo( int , const Point & p )", "foo(int,const Point&p)"},
		{"foo(const Point&p)", "foo(const Point&p)"},
		{"  bar ( unsigned   int ) const ", "bar(unsigned int)const"},
		{"baz(QList< int >)", "baz(QList<int>)"},
		{"qux()", "qux()"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizedSignature(tt.in))
		})
	}
}

func TestGlobalFunctionModifications(t *testing.T) {
	db := New()
	db.AddFunctionModification(ts.FunctionModification{Signature: "qAbs( int )", AllowThread: true})
	db.AddFunctionModification(ts.FunctionModification{Signature: "qAbs(int)", Removal: ts.TargetLangCode})
	db.AddFunctionModification(ts.FunctionModification{Signature: "qMax(int,int)"})

	mods := db.FunctionModifications("qAbs(int)")
	require.Len(t, mods, 2)
	assert.True(t, mods[0].AllowThread)
	assert.True(t, mods[1].IsRemoveModifier())
	assert.Len(t, db.AllFunctionModifications(), 3)
}

func TestAddedFunctions(t *testing.T) {
	db := New()
	db.AddAddedFunction(ts.NewAddedFunction("qVersion()", "const char*"))
	db.AddAddedFunction(ts.NewAddedFunction("qMin(int,int)", "int"))
	db.AddAddedFunction(ts.NewAddedFunction("qVersion(int)", "const char*"))

	found := db.FindAddedFunctions("qVersion")
	require.Len(t, found, 2)
	assert.Equal(t, "qVersion(int)", found[1].Signature())
	assert.Len(t, db.AddedFunctions(), 3)
}
