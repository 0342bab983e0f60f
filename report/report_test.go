package report

import (
	"testing"

	"github.com/rubiojr/wrapgen/errors"
	"github.com/rubiojr/wrapgen/typedb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(t *testing.T, patterns ...string) (*Reporter, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	db := typedb.New()
	for _, p := range patterns {
		db.AddSuppressedWarning(p)
	}
	return New(zap.New(core).Sugar(), db), logs
}

func TestWarnSuppression(t *testing.T) {
	r, logs := newObserved(t, "skipping * of class 'Foo'")

	r.Warn("skipping function draw(int) of class 'Foo'")
	r.Warn("skipping function draw(int) of class 'Bar'", "rule", "draw(int)")
	r.Warnf("type %q not found", "QVariant")

	assert.Equal(t, 2, r.Warnings())
	assert.Equal(t, 1, r.Suppressed())
	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "skipping function draw(int) of class 'Bar'", entry.Message)
	assert.Equal(t, "draw(int)", entry.ContextMap()["rule"])
	assert.Equal(t, "2 warnings (1 known issue)", r.Summary())
}

func TestDebugLevels(t *testing.T) {
	r, logs := newObserved(t)
	r.Debug(DebugSparse, "hidden")
	r.SetDebugLevel(DebugMedium)
	r.Debug(DebugSparse, "sparse")
	r.Debug(DebugMedium, "medium")
	r.Debug(DebugFull, "full")

	var msgs []string
	for _, e := range logs.All() {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{"sparse", "medium"}, msgs)
}

func TestReportRoutesByCategory(t *testing.T) {
	r, logs := newObserved(t)
	r.SetDebugLevel(DebugSparse)

	r.Report(nil)
	r.Report(errors.Wrap(errors.ErrTypeNotFound, "argument 1 of Point(Tuple)"))
	r.Report(errors.Wrap(errors.ErrRuleInconsistency, "no function foo()"))
	r.Report(errors.New("disk full"))

	all := logs.All()
	require.Len(t, all, 3)
	assert.Equal(t, zapcore.DebugLevel, all[0].Level)
	assert.Equal(t, zapcore.WarnLevel, all[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, all[2].Level)
	assert.Equal(t, 1, r.Warnings())
}

func TestParseDebugLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    DebugLevel
		wantErr bool
	}{
		{"", DebugNone, false},
		{"sparse", DebugSparse, false},
		{"Medium", DebugMedium, false},
		{"full", DebugFull, false},
		{"verbose", DebugNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDebugLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, jsonOutput := range []bool{true, false} {
		log, err := NewLogger(jsonOutput, "debug")
		require.NoError(t, err)
		require.NotNil(t, log)
	}
	_, err := NewLogger(false, "loud")
	assert.Error(t, err)
}

func TestNopReporter(t *testing.T) {
	r := Nop()
	r.Warn("anything")
	assert.Equal(t, 1, r.Warnings())
	assert.Equal(t, "1 warning", r.Summary())
}
