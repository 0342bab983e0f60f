package output

import (
	"path/filepath"
	"testing"

	"github.com/rubiojr/wrapgen/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestSinkWrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewSink(fs, "/out")

	a := Artifact{Name: "sample/point_wrapper.h", Content: "#ifndef X\n"}
	require.NoError(t, s.Write(a))

	data, err := afero.ReadFile(fs, filepath.Join("/out", "sample", "point_wrapper.h"))
	require.NoError(t, err)
	assert.Equal(t, "#ifndef X\n", string(data))
	assert.True(t, s.Exists(a))
	assert.False(t, s.Exists(Artifact{Name: "sample/missing.h"}))
}

func TestSinkRejectsBadNames(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewSink(fs, "/out")
	for _, name := range []string{"", "/etc/passwd", ".", "..", "../escaped.h", "sample/../../escaped.h"} {
		err := s.Write(Artifact{Name: name, Content: "x"})
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, errors.ErrArtifactWrite), name)
	}
	ok, err := afero.Exists(fs, "/escaped.h")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSinkKeepsInnerDotDot(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewSink(fs, "/out")
	require.NoError(t, s.Write(Artifact{Name: "sample/extra/../a.h", Content: "a"}))

	data, err := afero.ReadFile(fs, "/out/sample/a.h")
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
}

func TestWriteAllContinuesPastFailures(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/out/sample/existing.h", []byte("old"), 0o644))
	s := NewSink(afero.NewReadOnlyFs(base), "/out")

	var seen []string
	s.OnWrite = func(a Artifact, err error) {
		seen = append(seen, a.Name)
	}

	err := s.WriteAll([]Artifact{
		{Name: "sample/a.h", Content: "a"},
		{Name: "sample/b.h", Content: "b"},
	})
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	for _, e := range multierr.Errors(err) {
		assert.True(t, errors.Is(e, errors.ErrArtifactWrite))
	}
	assert.Equal(t, []string{"sample/a.h", "sample/b.h"}, seen)
}

func TestWriteAllEmpty(t *testing.T) {
	s := NewSink(afero.NewMemMapFs(), "/out")
	assert.NoError(t, s.WriteAll(nil))
}
