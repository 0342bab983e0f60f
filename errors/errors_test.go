package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDiagnostic(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"type not found", Wrapf(ErrTypeNotFound, "argument %d of %s", 1, "f(int)"), true},
		{"rule inconsistency", Wrap(ErrRuleInconsistency, "signature"), true},
		{"placeholder", Wrap(ErrUnresolvedPlaceholder, "${ARG}"), true},
		{"template", Wrap(ErrTemplateNotFound, "check"), true},
		{"kind mismatch", Wrap(ErrKindMismatch, "Point"), false},
		{"artifact write", Mark(New("disk full"), ErrArtifactWrite), false},
		{"plain", New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDiagnostic(tt.err))
		})
	}
}

func TestMarkKeepsMessage(t *testing.T) {
	err := Mark(New("disk full"), ErrArtifactWrite)
	assert.True(t, Is(err, ErrArtifactWrite))
	assert.Equal(t, "disk full", err.Error())
}

func TestHints(t *testing.T) {
	err := WithHint(New("rule file missing"), "add its directory to typesystem_paths")
	assert.Equal(t, "add its directory to typesystem_paths", FlattenHints(Wrap(err, "loading")))
}
