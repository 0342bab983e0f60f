package ruleset

import (
	"context"
	"strings"
	"testing"

	"github.com/rubiojr/wrapgen/headergen"
	"github.com/rubiojr/wrapgen/metamodel"
	"github.com/rubiojr/wrapgen/typedb"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleModel = `
package: sample
classes:
  - name: Shape
    include: shape.h
    abstract: true
    virtual_destructor: true
    functions:
      - name: Shape
        flags: [constructor]
      - name: area
        flags: [virtual, abstract, const]
        return: double
      - name: reset
        access: protected
  - name: Point
    include: point.h
    base: Shape
    functions:
      - name: Point
        flags: [constructor]
        arguments:
          - {name: t, type: "const Tuple &"}
      - name: setX
        arguments:
          - {name: x, type: double, default: "0"}
      - name: data
        return: "char**"
    fields:
      - {name: x, type: double}
      - {name: count, type: int, access: private, static: true}
  - name: Geo
    enums:
      - name: Unit
        values: [{name: Meter}, {name: Foot, value: "2"}]
  - name: Geo::Inner
enums:
  - name: Color
    include: color.h
functions:
  - name: globalHelper
    arguments: [{type: int}]
`

func loadSampleModel(t *testing.T) (*metamodel.Model, *typedb.Database) {
	t.Helper()
	db := loadSample(t)
	fs := newRulesFs(t, map[string]string{"/model/sample.yaml": sampleModel})
	m, err := LoadModelFile(fs, "/model/sample.yaml", db)
	require.NoError(t, err)
	return m, db
}

func TestLoadModelClasses(t *testing.T) {
	m, db := loadSampleModel(t)

	assert.Equal(t, "sample", m.Package)
	require.Len(t, m.Classes, 4)

	shape := m.FindClass("Shape")
	require.NotNil(t, shape)
	assert.Same(t, db.FindType("Shape"), shape.Entry)
	assert.True(t, shape.Abstract)
	assert.True(t, shape.HasVirtualDestructor)
	assert.Equal(t, "shape.h", shape.IncludeFile)

	area := shape.FindFunctions("area")
	require.Len(t, area, 1)
	assert.True(t, area[0].IsVirtual())
	assert.True(t, area[0].IsAbstract())
	assert.True(t, area[0].IsConstant())
	assert.Equal(t, "area()const", area[0].MinimalSignature())

	reset := shape.FindFunctions("reset")
	require.Len(t, reset, 1)
	assert.Equal(t, metamodel.Protected, reset[0].Access)

	point := m.FindClass("Point")
	require.NotNil(t, point)
	assert.Same(t, shape, point.BaseClass)
	assert.True(t, point.BaseHasVirtualDestructor())
}

func TestLoadModelTypeRefs(t *testing.T) {
	m, db := loadSampleModel(t)
	point := m.FindClass("Point")

	ctor := point.FunctionBySignature("Point(const Tuple&)")
	require.NotNil(t, ctor)
	arg := ctor.Arguments[0].Type
	assert.True(t, arg.Const)
	assert.True(t, arg.Reference)
	assert.True(t, arg.IsOpaque())

	setX := point.FindFunctions("setX")
	require.Len(t, setX, 1)
	assert.Same(t, db.FindPrimitiveType("double"), setX[0].Arguments[0].Type.Entry)
	assert.Equal(t, "0", setX[0].Arguments[0].DefaultValue)

	data := point.FindFunctions("data")
	require.Len(t, data, 1)
	assert.Equal(t, "char", data[0].Return.Name)
	assert.Equal(t, 2, data[0].Return.Indirections)

	require.Len(t, point.Fields, 2)
	assert.Equal(t, metamodel.Private, point.Fields[1].Access)
	assert.True(t, point.Fields[1].Static)
}

func TestLoadModelEnumsAndNesting(t *testing.T) {
	m, db := loadSampleModel(t)

	geo := m.FindClass("Geo")
	require.NotNil(t, geo)
	require.Len(t, geo.Enums, 1)
	unit := geo.Enums[0]
	assert.Equal(t, "Unit", unit.Name)
	assert.Same(t, db.FindType("Geo::Unit"), unit.Entry)
	assert.Same(t, geo, unit.Enclosing)
	assert.Equal(t, []metamodel.EnumValue{{Name: "Meter"}, {Name: "Foot", Value: "2"}}, unit.Values)
	assert.NotNil(t, unit.FlagsEntry())

	inner := m.FindClass("Geo::Inner")
	require.NotNil(t, inner)
	assert.Same(t, geo, inner.Enclosing)
	assert.Nil(t, inner.Entry)

	require.Len(t, m.GlobalEnums, 1)
	assert.Equal(t, "color.h", m.GlobalEnums[0].IncludeFile)
	assert.Same(t, db.FindType("Color"), m.GlobalEnums[0].Entry)
}

func TestLoadModelAddedFunctions(t *testing.T) {
	m, _ := loadSampleModel(t)

	// Point(int) is added by the rules and becomes a constructor
	var added *metamodel.Function
	for _, fn := range m.FindClass("Point").Functions {
		if fn.IsUserAdded() {
			added = fn
		}
	}
	require.NotNil(t, added)
	assert.True(t, added.IsConstructor())
	assert.Equal(t, "Point(int)", added.MinimalSignature())

	// version() is a global added function
	require.Len(t, m.GlobalFunctions, 2)
	assert.Equal(t, "globalHelper", m.GlobalFunctions[0].Name)
	assert.Equal(t, "version", m.GlobalFunctions[1].Name)
	assert.True(t, m.GlobalFunctions[1].IsUserAdded())
	assert.Equal(t, "int", m.GlobalFunctions[1].Return.Name)
}

func TestLoadModelErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown base", "package: x\nclasses:\n  - name: A\n    base: Missing\n"},
		{"unknown flag", "package: x\nclasses:\n  - name: A\n    functions:\n      - {name: f, flags: [inline]}\n"},
		{"bad access", "package: x\nfunctions:\n  - {name: f, access: secret}\n"},
		{"unnamed class", "package: x\nclasses:\n  - include: a.h\n"},
		{"unknown key", "package: x\nstructs: []\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadModel(strings.NewReader(tt.doc), typedb.New())
			assert.Error(t, err)
		})
	}
}

func TestLoadModelFileMissing(t *testing.T) {
	_, err := LoadModelFile(afero.NewMemMapFs(), "/nope.yaml", typedb.New())
	assert.Error(t, err)
}

func TestLoadTestdata(t *testing.T) {
	db := typedb.New()
	db.SetSuppressWarnings(true)
	require.NoError(t, NewLoader(nil, db).LoadFile("testdata/typesystem_sample.yaml"))
	m, err := LoadModelFile(nil, "testdata/sample_model.yaml", db)
	require.NoError(t, err)

	assert.False(t, db.FindType("int").GenerateCode())
	assert.True(t, db.FindType("Point").GenerateCode())
	assert.True(t, db.IsSuppressedWarning("type entry not found: class Hidden"))

	setX := m.FindClass("Point").FindFunctions("setX")
	require.Len(t, setX, 1)
	assert.Same(t, db.FindType("double"), setX[0].Arguments[0].Type.Entry)

	gen := &headergen.Generator{
		DB:      db,
		Model:   m,
		Options: headergen.Options{ModuleName: "sample", Jobs: 2},
	}
	res, err := gen.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Classes, 2)
	assert.Equal(t, "sample/shape_wrapper.h", res.Classes[1].Name)
	assert.Contains(t, res.Classes[1].Content, "int shapeTag;")
	assert.Contains(t, res.Module.Content, "#include <color.h>")
}
