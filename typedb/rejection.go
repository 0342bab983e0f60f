package typedb

import (
	"github.com/gobwas/glob"
	"github.com/rubiojr/wrapgen/errors"
)

// TypeRejection excludes classes, functions, fields or enums from
// generation. Each non-empty axis is a pattern where * matches any text.
type TypeRejection struct {
	Class    string
	Function string
	Field    string
	Enum     string
}

const (
	axisClass = iota
	axisFunction
	axisField
	axisEnum
	axisCount
)

type rejection struct {
	rule TypeRejection
	axes [axisCount]glob.Glob
}

// AddRejection compiles and stores a rejection rule. Rules with no axis set
// would reject everything and are refused.
func (db *Database) AddRejection(r TypeRejection) error {
	patterns := [axisCount]string{r.Class, r.Function, r.Field, r.Enum}
	compiled := &rejection{rule: r}
	empty := true
	for i, p := range patterns {
		if p == "" {
			continue
		}
		empty = false
		g, err := glob.Compile(p)
		if err != nil {
			return errors.Wrapf(errors.ErrInvalidRejection, "pattern %q: %v", p, err)
		}
		compiled.axes[i] = g
	}
	if empty {
		return errors.Wrap(errors.ErrInvalidRejection, "rejection without class, function, field or enum")
	}
	db.rejections = append(db.rejections, compiled)
	return nil
}

// Rejections returns the stored rules in registration order.
func (db *Database) Rejections() []TypeRejection {
	out := make([]TypeRejection, len(db.rejections))
	for i, r := range db.rejections {
		out[i] = r.rule
	}
	return out
}

// matches reports whether every axis the rule sets is present in the query
// and matches it. Absent query axes are passed as "".
func (r *rejection) matches(query [axisCount]string) bool {
	for i, g := range r.axes {
		if g == nil {
			continue
		}
		if query[i] == "" || !g.Match(query[i]) {
			return false
		}
	}
	return true
}

func (db *Database) rejected(query [axisCount]string) bool {
	for _, r := range db.rejections {
		if r.matches(query) {
			return true
		}
	}
	return false
}

// IsClassRejected reports whether a rule rejects the whole class.
func (db *Database) IsClassRejected(class string) bool {
	return db.rejected([axisCount]string{axisClass: class})
}

// IsFunctionRejected reports whether a rule rejects function of class. A rule
// naming only the class rejects all of its functions; a rule naming only the
// function rejects it in every class.
func (db *Database) IsFunctionRejected(class, function string) bool {
	return db.rejected([axisCount]string{axisClass: class, axisFunction: function})
}

func (db *Database) IsFieldRejected(class, field string) bool {
	return db.rejected([axisCount]string{axisClass: class, axisField: field})
}

func (db *Database) IsEnumRejected(class, enum string) bool {
	return db.rejected([axisCount]string{axisClass: class, axisEnum: enum})
}
