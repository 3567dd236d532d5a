package patch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/arthur-debert/deobf/pkg/errors"
)

// Suffixes of patch files per backend
const (
	SuffixJava = ".java.patch"
	SuffixAny  = ".patch"
)

// Set maps archive entry names to the patch that modifies them
type Set map[string]*Patch

// Key converts a path relative to the patch root into an archive entry name.
func Key(rel string) string {
	key := strings.TrimSuffix(rel, SuffixAny)
	key = strings.ReplaceAll(key, "\\", "/")
	return strings.TrimPrefix(key, "/")
}

// LoadSet walks root for regular files ending in suffix and parses each one.
func LoadSet(fs afero.Fs, root, suffix string) (Set, error) {
	set := make(Set)
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() || !strings.HasSuffix(info.Name(), suffix) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return err
		}
		p, err := Parse(data)
		if err != nil {
			return errors.Wrapf(err, errors.ErrConfigParse, "invalid patch %s", rel)
		}
		set[Key(filepath.ToSlash(rel))] = p
		return nil
	})
	if err != nil {
		if errors.IsConfiguration(err) {
			return nil, err
		}
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to collect patches from %s", root)
	}
	return set, nil
}

// Targets lists the entry names of the set in sorted order
func (s Set) Targets() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
