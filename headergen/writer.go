package headergen

import (
	"fmt"
	"strings"
)

const indentUnit = "    "

// headerWriter manages indented C++ header output.
type headerWriter struct {
	sb     strings.Builder
	indent int
}

// Line writes the formatted text prefixed by the current indentation. No
// newline is appended, and a bare newline is written without indentation.
func (w *headerWriter) Line(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if line == "\n" {
		w.sb.WriteString(line)
		return
	}
	w.sb.WriteString(strings.Repeat(indentUnit, w.indent) + line)
}

// Linef writes an indented, formatted line with a trailing newline appended.
func (w *headerWriter) Linef(format string, args ...any) {
	w.Line(format+"\n", args...)
}

// Raw writes unindented text directly to the buffer.
func (w *headerWriter) Raw(s string) {
	w.sb.WriteString(s)
}

// Rawf writes unindented formatted text.
func (w *headerWriter) Rawf(format string, args ...any) {
	fmt.Fprintf(&w.sb, format, args...)
}

// Blank writes an empty line.
func (w *headerWriter) Blank() { w.sb.WriteByte('\n') }

// Block writes every line of code at the current indentation. Blank lines
// stay empty and a missing final newline is added.
func (w *headerWriter) Block(code string) {
	code = strings.TrimRight(code, "\n")
	if code == "" {
		return
	}
	for _, line := range strings.Split(code, "\n") {
		if strings.TrimSpace(line) == "" {
			w.Blank()
			continue
		}
		w.Linef("%s", line)
	}
}

// Indent increases the indentation level.
func (w *headerWriter) Indent() { w.indent++ }

// Dedent decreases the indentation level.
func (w *headerWriter) Dedent() { w.indent-- }

// String returns the accumulated output.
func (w *headerWriter) String() string { return w.sb.String() }

// defineLine renders "#define NAME VALUE" with NAME left-aligned in a
// 60-column field.
func defineLine(name string, value int) string {
	return fmt.Sprintf("#define %-60s %d\n", name, value)
}
