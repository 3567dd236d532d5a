package pipeline

import (
	"context"

	"github.com/arthur-debert/deobf/pkg/archive"
)

// injectStep copies its input and appends a zero-length marker entry
type injectStep struct {
	base
	input  string
	marker string
}

func newInjectStep(name, input, output string, opts Options) *injectStep {
	return &injectStep{base: base{name: name, output: output}, input: input, marker: opts.Marker}
}

func (s *injectStep) Kind() Kind { return KindInject }

func (s *injectStep) Prepare(ctx context.Context) error { return nil }

func (s *injectStep) Execute(ctx context.Context) error {
	return archive.Rewrite(ctx, s.input, s.output, nil, archive.File{Name: s.marker})
}
