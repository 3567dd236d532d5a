package artifact

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/deobf/pkg/errors"
	"github.com/arthur-debert/deobf/pkg/fetch"
	"github.com/arthur-debert/deobf/pkg/logging"
)

// Repository is a local maven-layout directory backed by remote repositories
type Repository struct {
	root    string
	remotes []string
	fetcher fetch.Fetcher
	logger  zerolog.Logger
}

// NewRepository opens the repository rooted at root. fetcher may be nil, in
// which case Install only succeeds for artifacts already present.
func NewRepository(root string, fetcher fetch.Fetcher, remotes ...string) *Repository {
	return &Repository{
		root:    root,
		remotes: remotes,
		fetcher: fetcher,
		logger:  logging.GetLogger("artifact").With().Str("repository", root).Logger(),
	}
}

// Root returns the repository directory
func (r *Repository) Root() string { return r.root }

// Path is where c lives in the repository, installed or not
func (r *Repository) Path(c Coordinate) string {
	return filepath.Join(r.root, filepath.FromSlash(c.RelativePath()))
}

// PomPath is where the POM for c lives
func (r *Repository) PomPath(c Coordinate) string {
	return filepath.Join(r.root, filepath.FromSlash(c.PomRelativePath()))
}

// IsInstalled reports whether the artifact file exists
func (r *Repository) IsInstalled(c Coordinate) bool {
	info, err := os.Stat(r.Path(c))
	return err == nil && info.Mode().IsRegular()
}

// Install returns the local path of c, downloading it from the first remote
// that has it when missing. The POM is fetched alongside when available.
func (r *Repository) Install(ctx context.Context, c Coordinate) (string, error) {
	return r.InstallFrom(ctx, c, r.remotes...)
}

// InstallFrom is Install with an explicit list of remotes
func (r *Repository) InstallFrom(ctx context.Context, c Coordinate, remotes ...string) (string, error) {
	target := r.Path(c)
	if r.IsInstalled(c) {
		return target, nil
	}
	if err := fetch.Require(r.fetcher, c.String()); err != nil {
		return "", err
	}
	if len(remotes) == 0 {
		return "", errors.Newf(errors.ErrArtifactMissing, "%s is not installed and no remote repositories are configured", c)
	}

	tried := make([]string, 0, len(remotes))
	for _, remote := range remotes {
		url := strings.TrimRight(remote, "/") + "/" + c.RelativePath()
		tried = append(tried, url)
		if err := r.fetcher.Fetch(ctx, url, target); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			r.logger.Debug().Err(err).Str("url", url).Msg("Remote does not provide artifact")
			continue
		}

		pomURL := strings.TrimRight(remote, "/") + "/" + c.PomRelativePath()
		if _, err := os.Stat(r.PomPath(c)); os.IsNotExist(err) {
			if err := r.fetcher.Fetch(ctx, pomURL, r.PomPath(c)); err != nil {
				r.logger.Debug().Err(err).Str("url", pomURL).Msg("No POM for artifact")
			}
		}
		r.logger.Info().Str("artifact", c.String()).Str("remote", remote).Msg("Artifact installed")
		return target, nil
	}

	return "", errors.Newf(errors.ErrArtifactMissing, "%s was not found in any remote repository", c).
		WithDetail("tried", tried)
}

// Dependencies returns the direct compile and runtime dependencies of c
func (r *Repository) Dependencies(c Coordinate) ([]Dependency, error) {
	deps, err := ReadPom(r.PomPath(c))
	if err != nil {
		return nil, errors.Wrapf(err, errors.GetErrorCode(err), "cannot read dependencies of %s", c)
	}
	return deps, nil
}

// WritePom writes the POM of c into the repository, replacing an existing one
func (r *Repository) WritePom(c Coordinate, deps []Dependency) error {
	return WritePom(r.PomPath(c), c, deps)
}
