package typedb

import (
	"strings"

	"github.com/gobwas/glob"
)

const escapedStar = "\x00star\x00"

type warningPattern struct {
	source string
	g      glob.Glob
}

// SetSuppressWarnings turns pattern-based suppression on or off.
func (db *Database) SetSuppressWarnings(on bool) { db.suppressWarnings = on }

func (db *Database) SuppressWarnings() bool { return db.suppressWarnings }

// AddSuppressedWarning registers a pattern where * matches any text and \*
// is a literal star.
func (db *Database) AddSuppressedWarning(pattern string) {
	db.suppressed = append(db.suppressed, &warningPattern{source: pattern, g: compileWarning(pattern)})
}

// SuppressedWarnings returns the registered patterns as written.
func (db *Database) SuppressedWarnings() []string {
	out := make([]string, len(db.suppressed))
	for i, p := range db.suppressed {
		out[i] = p.source
	}
	return out
}

// IsSuppressedWarning reports whether msg matches any registered pattern.
// A message matches when the literal segments of the pattern occur in it in
// order without overlapping.
func (db *Database) IsSuppressedWarning(msg string) bool {
	if !db.suppressWarnings {
		return false
	}
	for _, p := range db.suppressed {
		if p.g != nil && p.g.Match(msg) {
			return true
		}
	}
	return false
}

// MatchWarning reports whether msg matches the single pattern.
func MatchWarning(pattern, msg string) bool {
	g := compileWarning(pattern)
	return g != nil && g.Match(msg)
}

// compileWarning turns a pattern into the glob *seg1*seg2*...*. Patterns
// without any literal segment yield nil and never match.
func compileWarning(pattern string) glob.Glob {
	pattern = strings.ReplaceAll(pattern, `\*`, escapedStar)
	var quoted []string
	for _, seg := range strings.Split(pattern, "*") {
		if seg == "" {
			continue
		}
		seg = strings.ReplaceAll(seg, escapedStar, "*")
		quoted = append(quoted, glob.QuoteMeta(seg))
	}
	if len(quoted) == 0 {
		return nil
	}
	return glob.MustCompile("*" + strings.Join(quoted, "*") + "*")
}
