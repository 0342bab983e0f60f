// Package report is the diagnostics sink of the generator. Warnings pass
// through the type database's suppression patterns before they are logged
// and every warning is counted, so a run can end with a summary line.
package report

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rubiojr/wrapgen/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// DebugLevel selects how much generator tracing is logged.
type DebugLevel int

const (
	DebugNone DebugLevel = iota
	DebugSparse
	DebugMedium
	DebugFull
)

var debugLevelNames = [...]string{"none", "sparse", "medium", "full"}

func (l DebugLevel) String() string {
	if l < DebugNone || l > DebugFull {
		return "unknown"
	}
	return debugLevelNames[l]
}

// ParseDebugLevel maps "none", "sparse", "medium" or "full" to a level.
func ParseDebugLevel(s string) (DebugLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DebugNone, nil
	}
	for i, name := range debugLevelNames {
		if name == s {
			return DebugLevel(i), nil
		}
	}
	return DebugNone, errors.Newf("unknown debug level %q", s)
}

// NewLogger builds the process logger: JSON for machines, or a console
// encoder on stderr, coloured only when stderr is a terminal.
func NewLogger(jsonOutput bool, level string) (*zap.SugaredLogger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, errors.Wrapf(err, "log level %q", level)
		}
	}

	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(lvl)
		config.OutputPaths = []string{"stderr"}
		logger, err := config.Build()
		if err != nil {
			return nil, errors.Wrap(err, "building json logger")
		}
		return logger.Sugar(), nil
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if term.IsTerminal(int(os.Stderr.Fd())) {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), lvl)
	return zap.New(core).Sugar(), nil
}

// Suppressor decides whether a warning message is a known issue.
type Suppressor interface {
	IsSuppressedWarning(msg string) bool
}

// Reporter logs diagnostics and keeps warning counts. It is safe for
// concurrent use.
type Reporter struct {
	log        *zap.SugaredLogger
	suppressor Suppressor
	debug      DebugLevel

	warnings   atomic.Int64
	suppressed atomic.Int64
}

// New returns a reporter logging to log. A nil suppressor suppresses nothing.
func New(log *zap.SugaredLogger, suppressor Suppressor) *Reporter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Reporter{log: log, suppressor: suppressor}
}

// Nop returns a reporter that logs nothing but still counts.
func Nop() *Reporter { return New(nil, nil) }

func (r *Reporter) SetDebugLevel(l DebugLevel) { r.debug = l }
func (r *Reporter) DebugLevel() DebugLevel { return r.debug }
func (r *Reporter) Logger() *zap.SugaredLogger { return r.log }

// Warn logs msg unless it matches a suppressed pattern.
func (r *Reporter) Warn(msg string, keysAndValues ...any) {
	if r.suppressor != nil && r.suppressor.IsSuppressedWarning(msg) {
		r.suppressed.Add(1)
		return
	}
	r.warnings.Add(1)
	r.log.Warnw(msg, keysAndValues...)
}

func (r *Reporter) Warnf(format string, args ...any) {
	r.Warn(fmt.Sprintf(format, args...))
}

func (r *Reporter) Info(msg string, keysAndValues ...any) {
	r.log.Infow(msg, keysAndValues...)
}

// Debug logs msg when the reporter's debug level is at least level.
func (r *Reporter) Debug(level DebugLevel, msg string, keysAndValues ...any) {
	if r.debug < level || level == DebugNone {
		return
	}
	r.log.Debugw(msg, keysAndValues...)
}

// Report routes err by category: lookup misses are debug traces, other
// recoverable problems are warnings and anything else is an error.
func (r *Reporter) Report(err error, keysAndValues ...any) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, errors.ErrTypeNotFound):
		r.Debug(DebugSparse, err.Error(), keysAndValues...)
	case errors.IsDiagnostic(err):
		r.Warn(err.Error(), keysAndValues...)
	default:
		r.log.Errorw(err.Error(), keysAndValues...)
	}
}

// Warnings is the number of warnings logged.
func (r *Reporter) Warnings() int { return int(r.warnings.Load()) }

// Suppressed is the number of warnings dropped as known issues.
func (r *Reporter) Suppressed() int { return int(r.suppressed.Load()) }

// Summary renders the end-of-run warning count.
func (r *Reporter) Summary() string {
	w, s := r.Warnings(), r.Suppressed()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d warning", w)
	if w != 1 {
		sb.WriteByte('s')
	}
	if s > 0 {
		fmt.Fprintf(&sb, " (%d known issue", s)
		if s != 1 {
			sb.WriteByte('s')
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

// Sync flushes the underlying logger.
func (r *Reporter) Sync() {
	_ = r.log.Sync()
}
