package typedb

import (
	"strings"

	ts "github.com/rubiojr/wrapgen/typesystem"
)

// NormalizedSignature removes the whitespace of a function signature except
// the single space needed between two words, so "foo( const Point & p )"
// and "foo(const Point&p)" compare equal.
func NormalizedSignature(sig string) string {
	var sb strings.Builder
	pendingSpace := false
	var last byte
	for i := 0; i < len(sig); i++ {
		c := sig[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			pendingSpace = sb.Len() > 0
			continue
		}
		if pendingSpace && isWordByte(last) && isWordByte(c) {
			sb.WriteByte(' ')
		}
		pendingSpace = false
		sb.WriteByte(c)
		last = c
	}
	return sb.String()
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// AddFunctionModification stores a rule for a free (namespace-level) function.
// The signature is normalized before it is stored.
func (db *Database) AddFunctionModification(fm ts.FunctionModification) {
	fm.Signature = NormalizedSignature(fm.Signature)
	db.functionMods = append(db.functionMods, fm)
}

// FunctionModifications returns the free-function rules for signature in
// registration order.
func (db *Database) FunctionModifications(signature string) []ts.FunctionModification {
	signature = NormalizedSignature(signature)
	var out []ts.FunctionModification
	for _, fm := range db.functionMods {
		if fm.Signature == signature {
			out = append(out, fm)
		}
	}
	return out
}

func (db *Database) AllFunctionModifications() []ts.FunctionModification { return db.functionMods }

func (db *Database) AddAddedFunction(af ts.AddedFunction) {
	db.addedFunctions = append(db.addedFunctions, af)
}

func (db *Database) AddedFunctions() []ts.AddedFunction { return db.addedFunctions }

// FindAddedFunctions returns the global added functions called name.
func (db *Database) FindAddedFunctions(name string) []ts.AddedFunction {
	var out []ts.AddedFunction
	for _, af := range db.addedFunctions {
		if af.Name == name {
			out = append(out, af)
		}
	}
	return out
}
