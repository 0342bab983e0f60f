package ruleset

import (
	"strings"
	"testing"

	"github.com/rubiojr/wrapgen/errors"
	"github.com/rubiojr/wrapgen/typedb"
	ts "github.com/rubiojr/wrapgen/typesystem"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

const sampleRules = `
package: sample
required_imports: [core]
suppress_warnings: ["*opaque*"]
rejections:
  - class: Point
    function: "internal*"
templates:
  - name: check_point
    code: "if (!${ARG}) return 0;"
modify_functions:
  - signature: "globalHelper(int)"
    rename: helper
add_functions:
  - signature: "version()"
    return: int
types:
  - kind: primitive
    name: int
    target_lang_api_name: PyInt
  - kind: primitive
    name: double
  - kind: value
    name: Point
    include: {file: point.h}
    extra_includes:
      - {file: extra.h, local: true}
    modify_functions:
      - signature: "Point(const Tuple &)"
        remove: all
      - signature: "setX(double)"
        access: protected
        inject_code:
          - position: beginning
            language: native
            code: "// guard\n"
            templates:
              - name: check_point
                replace: {ARG: x}
        arguments:
          - index: 1
            replace_default_expression: "0.0"
            ownership: {target: native}
    modify_fields:
      - name: x
        write: false
    add_functions:
      - signature: "Point(int)"
  - kind: object
    name: Shape
    qobject: true
    copyable: false
    force_abstract: true
    interface: true
    custom_destructor: destroyShape
  - kind: enum
    name: Geo::Unit
    flags: Units
    reject_values: [Invalid]
  - kind: enum
    name: Color
    flags: Colors
    flags_native: "QFlags<Color>"
  - kind: container
    name: QList
    container: list
  - kind: value
    name: Hidden
    generate: nothing
`

func newRulesFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func loadSample(t *testing.T) *typedb.Database {
	t.Helper()
	db := typedb.New()
	fs := newRulesFs(t, map[string]string{"/rules/typesystem_sample.yaml": sampleRules})
	require.NoError(t, NewLoader(fs, db).LoadFile("/rules/typesystem_sample.yaml"))
	return db
}

func TestLoadTypes(t *testing.T) {
	db := loadSample(t)

	intType := db.FindPrimitiveType("int")
	require.NotNil(t, intType)
	pp, _ := intType.Primitive()
	assert.Equal(t, "PyInt", pp.TargetLangAPIName)

	point := db.FindType("Point")
	require.NotNil(t, point)
	assert.True(t, point.IsValue())
	assert.True(t, point.GenerateCode())
	assert.Equal(t, ts.Include{Type: ts.IncludePath, Name: "point.h"}, point.Include())
	assert.Equal(t, []ts.Include{{Type: ts.LocalPath, Name: "extra.h"}}, point.ExtraIncludes())

	hidden := db.FindType("Hidden")
	require.NotNil(t, hidden)
	assert.False(t, hidden.GenerateCode())

	list := db.FindContainerType("QList")
	require.NotNil(t, list)
	cp, ok := list.Container()
	require.True(t, ok)
	assert.Equal(t, ts.ListContainer, cp.ContainerKind)
}

func TestLoadFunctionModifications(t *testing.T) {
	db := loadSample(t)
	cp, _ := db.FindType("Point").Complex()

	removed := cp.FunctionModifications("Point(const Tuple&)")
	require.Len(t, removed, 1)
	assert.Equal(t, ts.LangAll, removed[0].Removal)

	mods := cp.FunctionModifications("setX(double)")
	require.Len(t, mods, 1)
	fm := mods[0]
	assert.True(t, fm.IsProtected())
	assert.True(t, fm.IsCodeInjection())
	require.Len(t, fm.Snips, 1)
	code, err := fm.Snips[0].Code(db)
	require.NoError(t, err)
	assert.Equal(t, "// guard\nif (!x) return 0;", code)

	am, ok := fm.ArgumentMod(1)
	require.True(t, ok)
	assert.Equal(t, "0.0", am.ReplacedDefaultExpression)
	assert.Equal(t, ts.NativeOwnership, am.Ownership(ts.TargetLangCode))

	field := cp.FieldModification("x")
	assert.True(t, field.IsReadable())
	assert.False(t, field.IsWritable())

	added := cp.AddedFunctions()
	require.Len(t, added, 1)
	assert.Equal(t, "Point", added[0].Name)

	global := db.FunctionModifications("globalHelper(int)")
	require.Len(t, global, 1)
	assert.Equal(t, "helper", global[0].RenamedTo)
	require.Len(t, db.AddedFunctions(), 1)
}

func TestLoadObjectAndInterface(t *testing.T) {
	db := loadSample(t)

	shape := db.FindObjectType("Shape")
	require.NotNil(t, shape)
	cp, _ := shape.Complex()
	assert.True(t, cp.QObject)
	assert.Equal(t, ts.NonCopyable, cp.Copyable)
	assert.True(t, cp.HasTypeFlag(ts.ForceAbstract))
	assert.Equal(t, "destroyShape", shape.CustomDestructor.Name)

	// the interface is registered under the object's native name
	iface := cp.DesignatedInterface
	require.NotNil(t, iface)
	assert.Equal(t, "ShapeInterface", iface.Name())
	assert.True(t, iface.IsInterface())
	assert.Equal(t, []*ts.TypeEntry{shape, iface}, db.FindTypes("Shape"))
}

func TestLoadEnumsAndFlags(t *testing.T) {
	db := loadSample(t)

	unit := db.FindType("Geo::Unit")
	require.NotNil(t, unit)
	ep, _ := unit.Enum()
	assert.Equal(t, "Geo", ep.Qualifier)
	assert.True(t, ep.IsValueRejected("Invalid"))
	require.NotNil(t, ep.Flags)
	assert.Equal(t, "Geo::Units", ep.Flags.Name())
	assert.Same(t, ep.Flags, db.FindFlagsType("QFlags<Geo::Unit>"))

	color := db.FindType("Color")
	require.NotNil(t, color)
	cep, _ := color.Enum()
	assert.Same(t, cep.Flags, db.FindFlagsType("QFlags<Color>"))
	assert.Len(t, db.FlagsEntries(), 2)
}

func TestLoadDatabaseRules(t *testing.T) {
	db := loadSample(t)

	assert.Equal(t, []string{"core"}, db.RequiredTargetImports())
	assert.True(t, db.IsFunctionRejected("Point", "internalReset"))
	assert.False(t, db.IsFunctionRejected("Shape", "internalReset"))
	assert.NotNil(t, db.FindTemplate("check_point"))
	db.SetSuppressWarnings(true)
	assert.True(t, db.IsSuppressedWarning("type double is opaque"))
}

func TestLoadImports(t *testing.T) {
	fs := newRulesFs(t, map[string]string{
		"/rules/typesystem_core.yaml": `
package: core
types:
  - kind: value
    name: Size
`,
		"/rules/typesystem_extra.yaml": `
package: extra
types:
  - kind: value
    name: Margin
`,
		"/rules/main/typesystem_app.yaml": `
package: app
typesystem_paths: /rules
imports:
  - file: typesystem_core.yaml
  - file: typesystem_extra.yaml
    generate: true
types:
  - kind: value
    name: Window
`,
	})
	db := typedb.New()
	l := NewLoader(fs, db)
	require.NoError(t, l.LoadFile("/rules/main/typesystem_app.yaml"))

	assert.True(t, db.FindType("Window").GenerateCode())
	assert.True(t, db.FindType("Margin").GenerateCode())
	size := db.FindType("Size")
	require.NotNil(t, size)
	assert.False(t, size.GenerateCode())
	assert.Equal(t, ts.GenerateForSubclass, size.CodeGeneration())

	// loading twice is a no-op
	require.NoError(t, l.LoadFile("/rules/main/typesystem_app.yaml"))
	assert.Len(t, db.FindTypes("Window"), 1)
}

func TestLoadMissingFile(t *testing.T) {
	db := typedb.New()
	err := NewLoader(afero.NewMemMapFs(), db).LoadFile("typesystem_none.yaml")
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "typesystem_paths")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	db := typedb.New()
	err := NewLoader(nil, db).Load(strings.NewReader("package: x\ntypez: []\n"))
	assert.Error(t, err)
}

func TestLoadCollectsEntryErrors(t *testing.T) {
	db := typedb.New()
	err := NewLoader(nil, db).Load(strings.NewReader(`
package: broken
rejections:
  - {}
types:
  - kind: gadget
    name: Thing
  - kind: value
    name: Good
  - kind: value
    name: Bad
    generate: sometimes
  - kind: object
    name: Odd
    modify_functions:
      - signature: "f()"
        access: secret
`))
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 4)
	assert.NotNil(t, db.FindType("Good"))
	assert.NotNil(t, db.FindType("Odd"))
}

func TestFunctionModificationSpec(t *testing.T) {
	tests := []struct {
		name    string
		spec    FunctionModSpec
		wantErr bool
		check   func(t *testing.T, fm ts.FunctionModification)
	}{
		{
			name: "rename",
			spec: FunctionModSpec{Signature: "f()", Rename: "g"},
			check: func(t *testing.T, fm ts.FunctionModification) {
				assert.True(t, fm.IsRenameModifier())
				assert.Equal(t, "g", fm.RenamedTo)
			},
		},
		{
			name: "remove target only",
			spec: FunctionModSpec{Signature: "f()", Remove: "target"},
			check: func(t *testing.T, fm ts.FunctionModification) {
				assert.Equal(t, ts.TargetLangCode, fm.Removal)
			},
		},
		{
			name: "thread flags",
			spec: FunctionModSpec{Signature: "f()", Thread: true, AllowThread: true},
			check: func(t *testing.T, fm ts.FunctionModification) {
				assert.True(t, fm.Thread)
				assert.True(t, fm.AllowThread)
			},
		},
		{name: "no signature", spec: FunctionModSpec{Rename: "g"}, wantErr: true},
		{name: "bad removal", spec: FunctionModSpec{Signature: "f()", Remove: "python"}, wantErr: true},
		{
			name: "bad ownership",
			spec: FunctionModSpec{Signature: "f()", Arguments: []ArgumentModSpec{
				{Index: 1, Ownership: map[string]string{"target": "mine"}},
			}},
			wantErr: true,
		},
		{
			name:    "bad snip position",
			spec:    FunctionModSpec{Signature: "f()", InjectCode: []SnipSpec{{Position: "middle", Language: "native"}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, err := functionModification(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, fm)
		})
	}
}

func TestAddedFunctionSpec(t *testing.T) {
	af, err := addedFunction(AddedFunctionSpec{Signature: "scale(double)", Return: "Point", Access: "protected", Static: true})
	require.NoError(t, err)
	assert.Equal(t, "scale", af.Name)
	assert.Equal(t, ts.AddedProtected, af.Access)
	assert.True(t, af.IsStatic)

	_, err = addedFunction(AddedFunctionSpec{Signature: "f()", Access: "private"})
	assert.Error(t, err)
}
