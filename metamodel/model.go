// Package metamodel describes the native class library as surfaced by the
// extractor: classes, their functions, fields and enums, each linked to the
// type entry that drives its generation.
package metamodel

import (
	"container/heap"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/rubiojr/wrapgen/errors"
	"github.com/rubiojr/wrapgen/typedb"
	ts "github.com/rubiojr/wrapgen/typesystem"
)

// Access is the declared access level of a member.
type Access int

const (
	Public Access = iota
	Protected
	Private
)

func (a Access) String() string {
	switch a {
	case Protected:
		return "protected"
	case Private:
		return "private"
	}
	return "public"
}

// ParseAccess maps "public", "protected" and "private" to an Access.
func ParseAccess(s string) (Access, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "public":
		return Public, true
	case "protected":
		return Protected, true
	case "private":
		return Private, true
	}
	return Public, false
}

// Model is the metamodel of one module.
type Model struct {
	Package         string
	DB              *typedb.Database
	Classes         []*Class
	GlobalEnums     []*Enum
	GlobalFunctions []*Function

	byName map[string]*Class
}

// New returns an empty model for package pkg whose entries come from db.
func New(pkg string, db *typedb.Database) *Model {
	return &Model{Package: pkg, DB: db, byName: make(map[string]*Class)}
}

// AddClass appends c in declaration order and links it to its enclosing
// class when that class is already known.
func (m *Model) AddClass(c *Class) {
	if m.byName == nil {
		m.byName = make(map[string]*Class)
	}
	m.Classes = append(m.Classes, c)
	m.byName[c.Name] = c
	if c.Enclosing == nil {
		if i := strings.LastIndex(c.Name, "::"); i > 0 {
			if outer, ok := m.byName[c.Name[:i]]; ok {
				outer.AddInner(c)
			}
		}
	}
}

func (m *Model) AddGlobalEnum(e *Enum) { m.GlobalEnums = append(m.GlobalEnums, e) }

func (m *Model) AddGlobalFunction(fn *Function) {
	fn.Owner = nil
	m.GlobalFunctions = append(m.GlobalFunctions, fn)
}

// FindClass returns the class with the qualified name, or nil.
func (m *Model) FindClass(name string) *Class {
	if m.byName != nil {
		if c, ok := m.byName[name]; ok {
			return c
		}
	}
	for _, c := range m.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ClassForEntry returns the class generated from entry, or nil.
func (m *Model) ClassForEntry(entry *ts.TypeEntry) *Class {
	if entry == nil {
		return nil
	}
	for _, c := range m.Classes {
		if c.Entry == entry {
			return c
		}
	}
	return m.FindClass(entry.QualifiedNativeName())
}

// Ordered returns the classes in declaration order, except that a class
// declared before its enclosing class is moved right after it.
func (m *Model) Ordered() ([]*Class, error) {
	position := make(map[string]int, len(m.Classes))
	for i, c := range m.Classes {
		position[c.Name] = i
	}

	g := graph.New(func(c *Class) string { return c.Name }, graph.Directed(), graph.PreventCycles())
	for _, c := range m.Classes {
		if err := g.AddVertex(c); err != nil {
			return nil, errors.Wrapf(err, "class %s", c.Name)
		}
	}
	for _, c := range m.Classes {
		if c.Enclosing == nil {
			continue
		}
		if _, ok := position[c.Enclosing.Name]; !ok {
			continue
		}
		if err := g.AddEdge(c.Enclosing.Name, c.Name); err != nil {
			return nil, errors.Wrapf(err, "nesting %s in %s", c.Name, c.Enclosing.Name)
		}
	}

	preds, err := g.PredecessorMap()
	if err != nil {
		return nil, errors.Wrap(err, "ordering classes")
	}
	succs, err := g.AdjacencyMap()
	if err != nil {
		return nil, errors.Wrap(err, "ordering classes")
	}

	pending := make(map[string]int, len(preds))
	ready := &declarationHeap{}
	for name, in := range preds {
		pending[name] = len(in)
		if len(in) == 0 {
			heap.Push(ready, position[name])
		}
	}
	out := make([]*Class, 0, len(m.Classes))
	for ready.Len() > 0 {
		c := m.Classes[heap.Pop(ready).(int)]
		out = append(out, c)
		for next := range succs[c.Name] {
			pending[next]--
			if pending[next] == 0 {
				heap.Push(ready, position[next])
			}
		}
	}
	return out, nil
}

// declarationHeap is a min-heap of declaration positions.
type declarationHeap []int

func (h declarationHeap) Len() int           { return len(h) }
func (h declarationHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h declarationHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *declarationHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *declarationHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}

// AllEnums returns the enums of the ordered classes followed by the global
// enums.
func (m *Model) AllEnums() ([]*Enum, error) {
	classes, err := m.Ordered()
	if err != nil {
		return nil, err
	}
	var out []*Enum
	for _, c := range classes {
		out = append(out, c.Enums...)
	}
	return append(out, m.GlobalEnums...), nil
}

// Modifications returns the rules that apply to fn: the rules of the owning
// class entry for member functions, the database-level rules for free
// functions.
func (m *Model) Modifications(fn *Function) []ts.FunctionModification {
	sig := fn.MinimalSignature()
	if fn.Owner == nil {
		if m.DB == nil {
			return nil
		}
		return m.DB.FunctionModifications(sig)
	}
	if fn.Owner.Entry == nil {
		return nil
	}
	cp, ok := fn.Owner.Entry.Complex()
	if !ok {
		return nil
	}
	return cp.FunctionModifications(sig)
}

// IsModifiedRemoved reports whether a rule removes fn from every language in
// langs. LangAll is used when langs is NoLanguage.
func (m *Model) IsModifiedRemoved(fn *Function, langs ts.Language) bool {
	if langs == ts.NoLanguage {
		langs = ts.LangAll
	}
	for _, mod := range m.Modifications(fn) {
		if mod.Removal&langs == langs {
			return true
		}
	}
	return false
}

// EffectiveAccess applies the last access override among fn's rules.
func (m *Model) EffectiveAccess(fn *Function) Access {
	access := fn.Access
	for _, mod := range m.Modifications(fn) {
		switch {
		case mod.IsPrivate():
			access = Private
		case mod.IsProtected():
			access = Protected
		case mod.IsPublic():
			access = Public
		}
	}
	return access
}

func (m *Model) IsProtected(fn *Function) bool { return m.EffectiveAccess(fn) == Protected }
func (m *Model) IsPrivate(fn *Function) bool { return m.EffectiveAccess(fn) == Private }

// ImplicitConversions lists the ways to obtain a value of entry implicitly:
// the converting constructors of its class in declaration order, then the
// conversion operators of the other classes returning it, in class order.
func (m *Model) ImplicitConversions(entry *ts.TypeEntry) []*Function {
	if entry == nil {
		return nil
	}
	var out []*Function
	if c := m.ClassForEntry(entry); c != nil {
		for _, fn := range c.Functions {
			if fn.IsImplicitConstructor() && m.EffectiveAccess(fn) != Private {
				out = append(out, fn)
			}
		}
	}
	for _, c := range m.Classes {
		if c.Entry == entry {
			continue
		}
		for _, fn := range c.Functions {
			if fn.IsConversionOperator() && fn.Return.Entry == entry {
				out = append(out, fn)
			}
		}
	}
	return out
}

// IsCopyable resolves the copy policy of c. An unknown policy means copyable
// when the class has a public copy constructor, or when it declares none and
// is a value type.
func (m *Model) IsCopyable(c *Class) bool {
	if c.Entry != nil {
		if cp, ok := c.Entry.Complex(); ok {
			switch cp.Copyable {
			case ts.Copyable:
				return true
			case ts.NonCopyable:
				return false
			}
		}
	}
	declared := false
	for _, fn := range c.Functions {
		if !fn.IsCopyConstructor() {
			continue
		}
		declared = true
		if m.EffectiveAccess(fn) == Public {
			return true
		}
	}
	return !declared && c.Entry != nil && c.Entry.IsValue()
}
