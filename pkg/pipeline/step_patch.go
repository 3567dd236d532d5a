package pipeline

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/deobf/pkg/logging"
	"github.com/arthur-debert/deobf/pkg/patch"
)

// patchStep applies a directory of unified diffs to the matching entries of its input
type patchStep struct {
	base
	input   string
	patches string
	suffix  string
	fs      afero.Fs
	logger  zerolog.Logger

	set patch.Set
}

func newPatchStep(name, input, output, patches string, opts Options) *patchStep {
	return &patchStep{
		base:    base{name: name, output: output},
		input:   input,
		patches: patches,
		suffix:  opts.PatchSuffix,
		fs:      opts.Fs,
		logger:  logging.OrDefault(opts.Logger, "pipeline"),
	}
}

func (s *patchStep) Kind() Kind { return KindPatch }

func (s *patchStep) Prepare(ctx context.Context) error {
	set, err := patch.LoadSet(s.fs, s.patches, s.suffix)
	if err != nil {
		return err
	}
	s.set = set
	s.logger.Debug().Str("step", s.name).Int("patches", len(set)).Msg("Patches loaded")
	return nil
}

// Execute patches every entry it has a patch for. Patches without a matching
// entry are only warned about.
func (s *patchStep) Execute(ctx context.Context) error {
	report, err := s.set.ApplyArchive(ctx, s.input, s.output, s.logger)
	if err != nil {
		return err
	}
	for _, target := range report.Unmatched {
		s.logger.Warn().Str("step", s.name).Str("target", target).Msg("Patch has no matching entry")
	}
	return nil
}
