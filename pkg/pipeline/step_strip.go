package pipeline

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/deobf/pkg/archive"
	"github.com/arthur-debert/deobf/pkg/logging"
	"github.com/arthur-debert/deobf/pkg/mappings"
)

const (
	modeWhitelist = "whitelist"
	modeBlacklist = "blacklist"
)

// protectedPrefix entries survive stripping in both modes
const protectedPrefix = "assets/"

// stripStep filters class entries against the classes named by a mappings file
type stripStep struct {
	base
	input     string
	mappings  string
	whitelist bool
	fs        afero.Fs
	logger    zerolog.Logger

	classes mappings.ClassSet
}

func newStripStep(name, input, output, mappingsPath string, whitelist bool, opts Options) *stripStep {
	return &stripStep{
		base:      base{name: name, output: output},
		input:     input,
		mappings:  mappingsPath,
		whitelist: whitelist,
		fs:        opts.Fs,
		logger:    logging.OrDefault(opts.Logger, "pipeline"),
	}
}

func (s *stripStep) Kind() Kind { return KindStrip }

func (s *stripStep) Prepare(ctx context.Context) error {
	classes, err := mappings.ReadClassSet(s.fs, s.mappings)
	if err != nil {
		return err
	}
	s.classes = classes
	return nil
}

func (s *stripStep) Execute(ctx context.Context) error {
	dropped := 0
	err := archive.Rewrite(ctx, s.input, s.output, func(e *archive.Entry) (archive.Result, error) {
		if e.IsDir() || !s.keep(e.Name()) {
			dropped++
			return archive.Drop(), nil
		}
		return archive.Keep(), nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug().Str("step", s.name).Int("dropped", dropped).Bool("whitelist", s.whitelist).Msg("Entries stripped")
	return nil
}

// keep applies the whitelist or blacklist to a non-directory entry
func (s *stripStep) keep(name string) bool {
	if strings.HasPrefix(name, protectedPrefix) {
		return true
	}
	return s.classes.Contains(name) == s.whitelist
}
