// Package output writes generated artifacts below an output directory.
package output

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rubiojr/wrapgen/errors"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// Artifact is one generated file. Name is slash separated and relative to
// the output directory.
type Artifact struct {
	Name    string
	Content string
}

// Sink writes artifacts to a filesystem.
type Sink struct {
	fs  afero.Fs
	dir string

	// OnWrite, when set, is called after each artifact, written or not.
	OnWrite func(a Artifact, err error)
}

// NewSink returns a sink writing below dir on fs. A nil fs means the OS
// filesystem.
func NewSink(fs afero.Fs, dir string) *Sink {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Sink{fs: fs, dir: dir}
}

// Dir returns the output directory.
func (s *Sink) Dir() string { return s.dir }

// Path returns the filesystem path of an artifact.
func (s *Sink) Path(a Artifact) string {
	return filepath.Join(s.dir, filepath.FromSlash(path.Clean(a.Name)))
}

// Write writes one artifact, creating its directory as needed.
func (s *Sink) Write(a Artifact) error {
	if !validName(a.Name) {
		return errors.Wrapf(errors.ErrArtifactWrite, "invalid artifact name %q", a.Name)
	}
	p := s.Path(a)
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Wrapf(errors.Mark(err, errors.ErrArtifactWrite), "creating directory for %s", a.Name)
	}
	if err := afero.WriteFile(s.fs, p, []byte(a.Content), 0o644); err != nil {
		return errors.Wrapf(errors.Mark(err, errors.ErrArtifactWrite), "writing %s", a.Name)
	}
	return nil
}

// validName reports whether name is a relative slash path that stays inside
// the output directory once cleaned.
func validName(name string) bool {
	if name == "" || path.IsAbs(name) || filepath.IsAbs(name) {
		return false
	}
	clean := path.Clean(filepath.ToSlash(name))
	return clean != "." && clean != ".." && !strings.HasPrefix(clean, "../")
}

// WriteAll writes every artifact. A failed write does not stop the others;
// all failures are returned together.
func (s *Sink) WriteAll(artifacts []Artifact) error {
	var errs error
	for _, a := range artifacts {
		err := s.Write(a)
		if s.OnWrite != nil {
			s.OnWrite(a, err)
		}
		errs = multierr.Append(errs, err)
	}
	return errs
}

// Exists reports whether the artifact is present on disk.
func (s *Sink) Exists(a Artifact) bool {
	_, err := s.fs.Stat(s.Path(a))
	return err == nil || !os.IsNotExist(err)
}
