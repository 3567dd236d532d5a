package pipeline

import (
	"context"
	"os"
	"strings"

	"github.com/arthur-debert/deobf/pkg/artifact"
	"github.com/arthur-debert/deobf/pkg/errors"
)

// librariesStep lists the jars of the client's direct dependencies, one
// "-e=<path>" line each, in the format decompilers accept as extra libraries
type librariesStep struct {
	base
	client     artifact.Coordinate
	repository *artifact.Repository

	libraries []string
}

func newLibrariesStep(name, output string, client artifact.Coordinate, opts Options) *librariesStep {
	return &librariesStep{
		base:       base{name: name, output: output},
		client:     client,
		repository: opts.Repository,
	}
}

func (s *librariesStep) Kind() Kind { return KindListLibraries }

func (s *librariesStep) Prepare(ctx context.Context) error {
	deps, err := s.repository.Dependencies(s.client)
	if err != nil {
		return err
	}

	s.libraries = s.libraries[:0]
	for _, dep := range deps {
		if !s.repository.IsInstalled(dep.Coordinate) {
			return errors.Newf(errors.ErrArtifactMissing, "direct dependency %s of %s is not installed", dep.Coordinate, s.client).
				WithDetail("dependency", dep.Coordinate.String())
		}
		s.libraries = append(s.libraries, s.repository.Path(dep.Coordinate))
	}
	return nil
}

func (s *librariesStep) Execute(ctx context.Context) error {
	var b strings.Builder
	for _, lib := range s.libraries {
		b.WriteString("-e=")
		b.WriteString(lib)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(s.output, []byte(b.String()), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write library list %s", s.output)
	}
	return nil
}
