package headergen

import (
	"github.com/rubiojr/wrapgen/metamodel"
	ts "github.com/rubiojr/wrapgen/typesystem"
)

// TypeIndex is the slot of one type entry in the module's runtime type array.
type TypeIndex struct {
	Entry *ts.TypeEntry
	Index int
}

// AssignTypeIndices numbers the generatable entries of the module with one
// counter: each class in order (namespaces excepted), then each of its enums
// followed by the enum's flags, and finally the global enums and their
// flags. Entries that are missing or not generated take no slot. The result
// depends only on the order of classes and enums.
func AssignTypeIndices(classes []*metamodel.Class, globalEnums []*metamodel.Enum) []TypeIndex {
	return assignTypeIndices(classes, globalEnums, func(c *metamodel.Class) []*metamodel.Enum { return c.Enums })
}

func assignTypeIndices(classes []*metamodel.Class, globalEnums []*metamodel.Enum, enumsOf func(*metamodel.Class) []*metamodel.Enum) []TypeIndex {
	var out []TypeIndex
	add := func(e *ts.TypeEntry) {
		if e == nil || !e.GenerateCode() {
			return
		}
		out = append(out, TypeIndex{Entry: e, Index: len(out)})
		if ep, ok := e.Enum(); ok && ep.Flags != nil && ep.Flags.GenerateCode() {
			out = append(out, TypeIndex{Entry: ep.Flags, Index: len(out)})
		}
	}
	for _, c := range classes {
		if c.Entry == nil || !c.Entry.GenerateCode() {
			continue
		}
		if !c.Namespace {
			add(c.Entry)
		}
		for _, e := range enumsOf(c) {
			add(e.Entry)
		}
	}
	for _, e := range globalEnums {
		add(e.Entry)
	}
	return out
}

// indexTable answers index lookups for a run.
type indexTable map[*ts.TypeEntry]int

func newIndexTable(indices []TypeIndex) indexTable {
	t := make(indexTable, len(indices))
	for _, ti := range indices {
		t[ti.Entry] = ti.Index
	}
	return t
}

func (t indexTable) has(e *ts.TypeEntry) bool {
	_, ok := t[e]
	return ok
}

// writeTypeIndices renders the index defines and the count macro.
func (n Naming) writeTypeIndices(w *headerWriter, indices []TypeIndex) {
	w.Raw("// Type indices\n")
	for _, ti := range indices {
		w.Raw(defineLine(n.TypeIndexName(ti.Entry), ti.Index))
	}
	w.Raw(defineLine(n.IndexCountName(), len(indices)))
}
