package typesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddedFunction(t *testing.T) {
	af := NewAddedFunction("add(int, const Point& p = Point(), QList<int, float> list, char* name)", "bool")
	assert.Equal(t, "add", af.Name)
	assert.Equal(t, AddedPublic, af.Access)
	require.Len(t, af.Arguments, 4)

	assert.Equal(t, TypeInfo{Name: "int"}, af.Arguments[0])
	assert.Equal(t, TypeInfo{Name: "Point", IsConstant: true, IsReference: true, DefaultValue: "Point()"}, af.Arguments[1])
	assert.Equal(t, "QList<int, float>", af.Arguments[2].Name)
	assert.Equal(t, TypeInfo{Name: "char", Indirections: 1}, af.Arguments[3])
	assert.Equal(t, "bool", af.ReturnType.Name)

	assert.Equal(t, "add(int,const Point&,QList<int, float>,char*)", af.Signature())
}

func TestNewAddedFunctionKeepsMultiWordTypes(t *testing.T) {
	af := NewAddedFunction("f(unsigned int, long long x) const", "void")
	require.Len(t, af.Arguments, 2)
	assert.Equal(t, "unsigned int", af.Arguments[0].Name)
	assert.Equal(t, "long long", af.Arguments[1].Name)
	assert.True(t, af.IsConstant)
}

func TestNewAddedFunctionNoArguments(t *testing.T) {
	af := NewAddedFunction("clear()", "")
	assert.Equal(t, "clear", af.Name)
	assert.Empty(t, af.Arguments)
	assert.Equal(t, "clear()", af.Signature())
}

func TestIncludeString(t *testing.T) {
	assert.Equal(t, "import QtCore;", Include{Type: TargetLangImport, Name: "QtCore"}.String())
	assert.False(t, Include{}.IsValid())
}
