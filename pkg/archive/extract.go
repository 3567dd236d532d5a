package archive

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/deobf/pkg/errors"
)

// ExtractOptions controls Extract
type ExtractOptions struct {
	// Filter, when set, selects the entries to extract by name
	Filter func(name string) bool
	// Overwrite replaces files that already exist; otherwise they are left untouched
	Overwrite bool
}

// Extract writes the entries of in below dir.
// Entry names escaping dir are rejected.
func Extract(ctx context.Context, in, dir string, opts ExtractOptions) error {
	root, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to resolve %s", dir)
	}

	return Walk(in, func(e *Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if opts.Filter != nil && !opts.Filter(e.Name()) {
			return nil
		}

		target, err := entryTarget(root, e.Name())
		if err != nil {
			return err
		}
		if e.IsDir() {
			return mkdir(target)
		}
		if !opts.Overwrite {
			if _, err := os.Stat(target); err == nil {
				return nil
			}
		}
		if err := mkdir(filepath.Dir(target)); err != nil {
			return err
		}
		return extractFile(e, target)
	})
}

func entryTarget(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrArchive, "entry %s escapes the extraction directory", name)
	}
	return target, nil
}

func mkdir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", path)
	}
	return nil
}

func extractFile(e *Entry, target string) error {
	r, err := e.Open()
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "failed to open entry %s", e.Name())
	}
	defer func() { _ = r.Close() }()

	f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", target)
	}
	if _, err := io.Copy(f, io.LimitReader(r, maxEntryBytes)); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", target)
	}
	return f.Close()
}
