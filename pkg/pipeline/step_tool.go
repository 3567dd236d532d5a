package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/deobf/pkg/artifact"
	"github.com/arthur-debert/deobf/pkg/errors"
	"github.com/arthur-debert/deobf/pkg/logging"
	"github.com/arthur-debert/deobf/pkg/process"
)

// toolStep runs a jar tool declared in the functions block
type toolStep struct {
	base
	tool       artifact.Coordinate
	remote     string
	args       []string
	jvmArgs    []string
	repository *artifact.Repository
	java       *process.Java
	logger     zerolog.Logger
}

// newToolStep resolves every argument template of fn. extra must already
// hold the resolved input and the step output.
func newToolStep(name, output string, fn function, side string, reg *Registry, extra map[string]string, opts Options) (*toolStep, error) {
	tool, err := artifact.Parse(fn.Version)
	if err != nil {
		return nil, err
	}
	args, err := reg.resolveAll(fn.Args, side, extra)
	if err != nil {
		return nil, err
	}
	jvmArgs, err := reg.resolveAll(fn.JVMArgs, side, extra)
	if err != nil {
		return nil, err
	}
	if opts.Repository == nil || opts.Java == nil {
		return nil, errors.New(errors.ErrConfigValid, "tool steps need a repository and a java launcher")
	}

	return &toolStep{
		base:       base{name: name, output: output},
		tool:       tool,
		remote:     fn.Repo,
		args:       args,
		jvmArgs:    jvmArgs,
		repository: opts.Repository,
		java:       opts.Java,
		logger:     logging.OrDefault(opts.Logger, "pipeline"),
	}, nil
}

func (s *toolStep) Kind() Kind { return KindTool }

// Args returns the resolved tool arguments
func (s *toolStep) Args() []string { return s.args }

func (s *toolStep) Prepare(ctx context.Context) error {
	_, err := s.repository.InstallFrom(ctx, s.tool, s.remote)
	return err
}

func (s *toolStep) Execute(ctx context.Context) error {
	jar, err := s.repository.InstallFrom(ctx, s.tool, s.remote)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.output)
	result, err := s.java.RunJar(ctx, dir, jar, s.jvmArgs, s.args)
	if err != nil {
		return err
	}
	if result.Success() {
		return nil
	}

	stdoutLog := filepath.Join(dir, s.name+".stdout.log")
	stderrLog := filepath.Join(dir, s.name+".stderr.log")
	for path, content := range map[string][]byte{stdoutLog: result.Stdout, stderrLog: result.Stderr} {
		if werr := os.WriteFile(path, content, 0644); werr != nil {
			s.logger.Warn().Err(werr).Str("path", path).Msg("Failed to save tool output")
		}
	}

	return errors.Newf(errors.ErrToolFailed, "%s exited with code %d", s.tool, result.ExitCode).
		WithDetail("exit_code", result.ExitCode).
		WithDetail("stdout", string(result.Stdout)).
		WithDetail("stderr", string(result.Stderr)).
		WithDetail("stdout_log", stdoutLog).
		WithDetail("stderr_log", stderrLog)
}
