package environment

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/deobf/pkg/archive"
	"github.com/arthur-debert/deobf/pkg/artifact"
	"github.com/arthur-debert/deobf/pkg/config"
	"github.com/arthur-debert/deobf/pkg/errors"
	"github.com/arthur-debert/deobf/pkg/fetch"
	"github.com/arthur-debert/deobf/pkg/logging"
	"github.com/arthur-debert/deobf/pkg/pipeline"
	"github.com/arthur-debert/deobf/pkg/process"
	"github.com/arthur-debert/deobf/pkg/transform"
)

// Group of every artifact an environment produces
const Group = "net.minecraft"

// Sides
const (
	SideClient = "client"
	SideServer = "server"
	SideJoined = "joined"
)

// Options carries everything an Environment needs
type Options struct {
	Descriptor *config.Descriptor
	// WorkDir receives the downloaded archives, their extracted trees and the step outputs
	WorkDir string

	Repository *artifact.Repository
	// Fetcher is nil when running offline
	Fetcher  fetch.Fetcher
	Launcher process.Launcher

	JavaBinary  string
	JavacBinary string
	JVMArgs     []string

	// Fs reads mappings and patches; defaults to the OS filesystem
	Fs     afero.Fs
	Logger *zerolog.Logger
}

// SideResult lists what Run produced for one side
type SideResult struct {
	Side string
	// Output is the final pipeline output of the side
	Output string
	// Sources is the installed sources artifact
	Sources string
	// Compiled is the installed class artifact, empty when the side was not recompiled
	Compiled string
}

// backend holds what differs between mcp and yarn
type backend interface {
	name() string
	sides(client, server bool) []string
	chain(fs afero.Fs, mappingsDir string) (*transform.Chain, error)
	recompiles(side string) bool
	primarySide() string
	afterExecute(ctx context.Context, env *Environment, run *pipeline.Run, side, output string) error
}

// Environment runs one descriptor end to end
type Environment struct {
	opts    Options
	desc    *config.Descriptor
	backend backend
	client  *artifact.Coordinate
	server  *artifact.Coordinate
	logger  zerolog.Logger
}

// New creates the environment selected by the descriptor's backend
func New(opts Options) (*Environment, error) {
	if opts.Descriptor == nil {
		return nil, errors.New(errors.ErrInvalidInput, "an environment needs a descriptor")
	}
	if err := opts.Descriptor.Validate(); err != nil {
		return nil, err
	}
	if opts.Repository == nil {
		return nil, errors.New(errors.ErrInvalidInput, "an environment needs an artifact repository")
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	env := &Environment{
		opts:   opts,
		desc:   opts.Descriptor,
		logger: logging.OrDefault(opts.Logger, "environment").With().Str("backend", opts.Descriptor.Backend).Logger(),
	}

	switch opts.Descriptor.Backend {
	case config.BackendMCP:
		env.backend = mcpBackend{}
	case config.BackendYarn:
		env.backend = yarnBackend{}
	}

	var err error
	if env.client, err = parseOptional(opts.Descriptor.Client, "client"); err != nil {
		return nil, err
	}
	if env.server, err = parseOptional(opts.Descriptor.Server, "server"); err != nil {
		return nil, err
	}
	return env, nil
}

func parseOptional(value, what string) (*artifact.Coordinate, error) {
	if value == "" {
		return nil, nil
	}
	c, err := artifact.Parse(value)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigValid, "invalid %s coordinate", what)
	}
	return &c, nil
}

// Name returns the backend name
func (e *Environment) Name() string { return e.backend.name() }

// Sides lists the sides Run processes by default
func (e *Environment) Sides() []string {
	return e.backend.sides(e.client != nil, e.server != nil)
}

// Version is the game version shared by the client and server jars
func (e *Environment) Version() (string, error) {
	switch {
	case e.client != nil && e.server != nil:
		if e.client.Version != e.server.Version {
			return "", errors.Newf(errors.ErrVersionMismatch, "client version %s does not match server version %s",
				e.client.Version, e.server.Version).
				WithDetail("client", e.client.Version).
				WithDetail("server", e.server.Version)
		}
		return e.client.Version, nil
	case e.client != nil:
		return e.client.Version, nil
	case e.server != nil:
		return e.server.Version, nil
	}
	return "", errors.New(errors.ErrConfigValid, "neither a client nor a server artifact is configured")
}

// Classifier of the produced artifacts
func (e *Environment) Classifier(sources bool) string {
	c := e.backend.name() + "-" + e.desc.ConfigVersion + "_" + e.desc.MappingsVersion
	if sources {
		c += "-sources"
	}
	return c
}

// Artifact is the coordinate of the compiled artifact of side
func (e *Environment) Artifact(side, version string) artifact.Coordinate {
	return artifact.Coordinate{Group: Group, Name: side, Version: version, Classifier: e.Classifier(false)}
}

// SourcesArtifact is the coordinate of the sources artifact of side
func (e *Environment) SourcesArtifact(side, version string) artifact.Coordinate {
	return e.Artifact(side, version).WithClassifier(e.Classifier(true))
}

// CompileArtifacts lists what a consumer compiles against
func (e *Environment) CompileArtifacts() ([]artifact.Coordinate, error) {
	version, err := e.Version()
	if err != nil {
		return nil, err
	}
	return []artifact.Coordinate{e.Artifact(e.backend.primarySide(), version)}, nil
}

// RuntimeArtifacts lists what a consumer runs against
func (e *Environment) RuntimeArtifacts() ([]artifact.Coordinate, error) {
	return e.CompileArtifacts()
}

// ConfigDir is where the configuration archive is extracted
func (e *Environment) ConfigDir() string {
	return filepath.Join(e.opts.WorkDir, e.backend.name()+"-config_"+e.desc.ConfigVersion)
}

// MappingsDir is where the mappings archive is extracted
func (e *Environment) MappingsDir() string {
	return filepath.Join(e.opts.WorkDir, e.backend.name()+"-mappings_"+e.desc.MappingsVersion)
}

// Download fetches and extracts the configuration and mappings archives concurrently
func (e *Environment) Download(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, target := range []struct{ url, dir string }{
		{e.desc.ConfigURL, e.ConfigDir()},
		{e.desc.MappingsURL, e.MappingsDir()},
	} {
		g.Go(func() error {
			return fetch.DownloadAndExtract(ctx, e.opts.Fetcher, target.url, target.dir+".zip", target.dir)
		})
	}
	return g.Wait()
}

// Load parses the downloaded pipeline configuration
func (e *Environment) Load() (*pipeline.Run, error) {
	return pipeline.Load(pipeline.Options{
		Dir:        e.ConfigDir(),
		Backend:    e.desc.Backend,
		Marker:     e.desc.Marker,
		Client:     e.client,
		Server:     e.server,
		Repository: e.opts.Repository,
		Java: &process.Java{
			Launcher: e.opts.Launcher,
			Binary:   e.opts.JavaBinary,
			JVMArgs:  e.opts.JVMArgs,
		},
		Fs:     e.opts.Fs,
		Logger: &e.logger,
	})
}

// Run processes the requested sides, or every default side when none are
// given: prepare all, execute all, then transform, recompile and install.
func (e *Environment) Run(ctx context.Context, requested ...string) ([]SideResult, error) {
	done := logging.LogOperationStart(e.logger, "deobfuscation")
	defer done()

	version, err := e.Version()
	if err != nil {
		return nil, err
	}
	sides, err := e.selectSides(requested)
	if err != nil {
		return nil, err
	}
	if err := e.Download(ctx); err != nil {
		return nil, err
	}
	run, err := e.Load()
	if err != nil {
		return nil, err
	}

	var deps []artifact.Dependency
	var libraries []string
	if e.client != nil {
		deps, libraries, err = e.clientLibraries()
		if err != nil {
			return nil, err
		}
	}

	for _, side := range sides {
		if err := run.Prepare(ctx, side); err != nil {
			return nil, err
		}
	}
	results := make([]SideResult, 0, len(sides))
	for _, side := range sides {
		output, err := run.Execute(ctx, side)
		if rerr := run.WriteReport(); rerr != nil {
			e.logger.Warn().Err(rerr).Msg("Failed to write step report")
		}
		if err != nil {
			return nil, err
		}
		if err := e.backend.afterExecute(ctx, e, run, side, output); err != nil {
			return nil, err
		}
		results = append(results, SideResult{Side: side, Output: output})
	}

	chain, err := e.backend.chain(e.opts.Fs, e.MappingsDir())
	if err != nil {
		return nil, err
	}

	for i := range results {
		res := &results[i]
		sources := e.SourcesArtifact(res.Side, version)
		res.Sources = e.opts.Repository.Path(sources)

		e.logger.Info().Str("side", res.Side).Str("version", version).Msg("Processing sources")
		if err := chain.Process(ctx, res.Output, res.Sources); err != nil {
			return nil, errors.Wrapf(err, errors.GetErrorCode(err), "failed to process %s %s", res.Side, version).
				WithDetail("side", res.Side)
		}

		if e.client == nil {
			e.logger.Warn().Str("side", res.Side).Msg("Cannot recompile without the client libraries")
			continue
		}
		if err := e.install(ctx, res, version, deps, libraries); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (e *Environment) selectSides(requested []string) ([]string, error) {
	available := e.Sides()
	if len(requested) == 0 {
		return available, nil
	}
	known := make(map[string]bool, len(available))
	for _, s := range available {
		known[s] = true
	}
	for _, s := range requested {
		if !known[s] {
			return nil, errors.Newf(errors.ErrNoSuchSide, "side %s is not available", s).
				WithDetail("side", s).
				WithDetail("sides", available)
		}
	}
	return requested, nil
}

// clientLibraries returns the direct dependencies of the client and their local paths
func (e *Environment) clientLibraries() ([]artifact.Dependency, []string, error) {
	deps, err := e.opts.Repository.Dependencies(*e.client)
	if err != nil {
		return nil, nil, err
	}
	paths := make([]string, 0, len(deps))
	for _, dep := range deps {
		if !e.opts.Repository.IsInstalled(dep.Coordinate) {
			return nil, nil, errors.Newf(errors.ErrArtifactMissing, "game dependency %s is not installed", dep.Coordinate).
				WithDetail("dependency", dep.Coordinate.String())
		}
		paths = append(paths, e.opts.Repository.Path(dep.Coordinate))
	}
	return deps, paths, nil
}

// install recompiles the sources of one side, writes its POM and, for the
// joined side, carries over the game resources
func (e *Environment) install(ctx context.Context, res *SideResult, version string, deps []artifact.Dependency, libraries []string) error {
	compiled := e.Artifact(res.Side, version)

	if e.backend.recompiles(res.Side) {
		res.Compiled = e.opts.Repository.Path(compiled)
		e.logger.Info().Str("side", res.Side).Str("version", version).Msg("Recompiling")
		compiler := &process.Compiler{Launcher: e.opts.Launcher, Binary: e.opts.JavacBinary}
		if err := compiler.Compile(ctx, res.Sources, res.Compiled, libraries); err != nil {
			return errors.Wrapf(err, errors.GetErrorCode(err), "failed to recompile %s %s", res.Side, version).
				WithDetail("side", res.Side)
		}

		if res.Side == SideJoined {
			for _, src := range []*artifact.Coordinate{e.client, e.server} {
				if src == nil {
					continue
				}
				added, err := archive.MergeResources(ctx, res.Compiled, e.opts.Repository.Path(*src), archive.IsGameResource)
				if err != nil {
					return err
				}
				e.logger.Debug().Str("from", src.String()).Int("resources", added).Msg("Resources merged into joined jar")
			}
		}
	}

	if _, err := os.Stat(e.opts.Repository.PomPath(compiled)); os.IsNotExist(err) {
		if err := e.opts.Repository.WritePom(compiled, deps); err != nil {
			return err
		}
	}
	return nil
}
