package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/deobf/pkg/errors"
)

// IsGameResource reports whether an entry is a non-code resource carried over
// into joined jars.
func IsGameResource(name string) bool {
	return strings.HasPrefix(name, "assets/") ||
		strings.HasPrefix(name, "data/") ||
		name == "pack.png" ||
		name == "version.json" ||
		name == "pack.mcmeta"
}

// MergeResources adds the entries of src accepted by isResource to jar,
// skipping names jar already contains. jar is rewritten in place.
func MergeResources(ctx context.Context, jar, src string, isResource func(name string) bool) (added int, err error) {
	existing := make(map[string]bool)
	if err := Walk(jar, func(e *Entry) error {
		existing[e.Name()] = true
		return nil
	}); err != nil {
		return 0, err
	}

	var resources []File
	err = Walk(src, func(e *Entry) error {
		name := e.Name()
		if e.IsDir() || !isResource(name) || existing[name] {
			return nil
		}
		data, err := e.ReadAll()
		if err != nil {
			return errors.Wrapf(err, errors.ErrArchive, "failed to read %s from %s", name, src)
		}
		existing[name] = true
		resources = append(resources, File{Name: name, Data: data})
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(resources) == 0 {
		return 0, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(jar), filepath.Base(jar)+".*.tmp")
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrFileWrite, "failed to create temporary jar next to %s", jar)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	if err := Rewrite(ctx, jar, tmpPath, nil, resources...); err != nil {
		_ = os.Remove(tmpPath)
		return 0, err
	}
	if err := os.Rename(tmpPath, jar); err != nil {
		_ = os.Remove(tmpPath)
		return 0, errors.Wrapf(err, errors.ErrFileWrite, "failed to replace %s", jar)
	}
	return len(resources), nil
}
