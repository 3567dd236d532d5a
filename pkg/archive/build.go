package archive

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/deobf/pkg/errors"
)

// Write creates out containing files, sorted by name.
func Write(out string, files []File) (err error) {
	sorted := append([]File(nil), files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	w, err := create(out)
	if err != nil {
		return err
	}
	defer w.finish(out, &err)

	for _, file := range sorted {
		if err := w.writeEntry(newHeader(file.Name), file.Data); err != nil {
			return errors.Wrapf(err, errors.ErrArchive, "failed to add %s", file.Name)
		}
	}
	return nil
}

// WriteTrees packs the regular files below each root into out. Paths are
// taken relative to their root; a later root wins when two roots contain the
// same relative path. skip, when set, excludes files by relative path.
func WriteTrees(out string, skip func(rel string) bool, roots ...string) (err error) {
	sources := make(map[string]string)
	for _, root := range roots {
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if skip != nil && skip(rel) {
				return nil
			}
			sources[rel] = path
			return nil
		})
		if walkErr != nil {
			return errors.Wrapf(walkErr, errors.ErrArchive, "failed to walk %s", root)
		}
	}

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	w, err := create(out)
	if err != nil {
		return err
	}
	defer w.finish(out, &err)

	for _, name := range names {
		data, err := os.ReadFile(sources[name])
		if err != nil {
			return errors.Wrapf(err, errors.ErrArchive, "failed to read %s", sources[name])
		}
		if err := w.writeEntry(newHeader(name), data); err != nil {
			return errors.Wrapf(err, errors.ErrArchive, "failed to add %s", name)
		}
	}
	return nil
}
