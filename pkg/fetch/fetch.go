package fetch

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/deobf/pkg/archive"
	"github.com/arthur-debert/deobf/pkg/errors"
	"github.com/arthur-debert/deobf/pkg/logging"
)

// DefaultTimeout bounds a single download
const DefaultTimeout = 10 * time.Minute

// Fetcher downloads url into dst
type Fetcher interface {
	Fetch(ctx context.Context, url, dst string) error
}

// Offline returns the fetcher used when network access is disabled
func Offline() Fetcher {
	return nil
}

// Require fails with NETWORK_UNAVAILABLE when f is offline. what names the
// resource that needed downloading.
func Require(f Fetcher, what string) error {
	if f == nil {
		return errors.Newf(errors.ErrNetworkUnavailable, "%s is not available locally and the network is disabled", what).
			WithDetail("resource", what)
	}
	return nil
}

// HTTPFetcher downloads over HTTP(S). Files are written to a temporary name
// next to dst and renamed once complete.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
	logger    zerolog.Logger
}

// NewHTTPFetcher creates a fetcher with the given per-request timeout
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: "deobf",
		logger:    logging.GetLogger("fetch"),
	}
}

// Fetch implements Fetcher
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dst string) (err error) {
	done := logging.LogOperationStart(f.logger, "fetch "+url)
	defer done()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFetch, "invalid url %s", url)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFetch, "failed to fetch %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		code := errors.ErrFetch
		if resp.StatusCode == http.StatusNotFound {
			code = errors.ErrNotFound
		}
		return errors.Newf(code, "failed to fetch %s: HTTP %d", url, resp.StatusCode).
			WithDetail("url", url).
			WithDetail("status", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrCacheIO, "failed to create %s", filepath.Dir(dst))
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrCacheIO, "failed to create temporary file for %s", dst)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFetch, "failed to download %s", url)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrCacheIO, "failed to write %s", dst)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return errors.Wrapf(err, errors.ErrCacheIO, "failed to move download into %s", dst)
	}

	f.logger.Debug().Str("url", url).Str("dst", dst).Int64("bytes", n).Msg("Downloaded")
	return nil
}

// DownloadAndExtract makes sure dir holds the extracted contents of the zip at
// url. The zip is cached at zipPath; nothing is downloaded when it already
// exists and nothing is extracted when dir already exists.
func DownloadAndExtract(ctx context.Context, f Fetcher, url, zipPath, dir string) error {
	logger := logging.GetLogger("fetch").With().Str("url", url).Str("dir", dir).Logger()

	if _, err := os.Stat(dir); err == nil {
		logger.Debug().Msg("Already extracted")
		return nil
	}

	if _, err := os.Stat(zipPath); os.IsNotExist(err) {
		if err := Require(f, url); err != nil {
			return err
		}
		if err := f.Fetch(ctx, url, zipPath); err != nil {
			return err
		}
	}

	if err := archive.Extract(ctx, zipPath, dir, archive.ExtractOptions{}); err != nil {
		// A half-extracted directory would be mistaken for a complete one
		_ = os.RemoveAll(dir)
		return err
	}
	logger.Info().Msg("Extracted")
	return nil
}
