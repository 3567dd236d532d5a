package mappings

import (
	"bufio"
	"strings"

	"github.com/spf13/afero"

	"github.com/arthur-debert/deobf/pkg/errors"
)

// ClassSet holds archive entry names (with .class suffix) of known classes
type ClassSet map[string]struct{}

// Contains reports whether entry is a known class
func (s ClassSet) Contains(entry string) bool {
	_, ok := s[entry]
	return ok
}

// ReadClassSet collects the first space-separated token of every line in an
// SRG/TSRG file that does not start with a tab, suffixed with ".class".
func ReadClassSet(fs afero.Fs, path string) (ClassSet, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrMappingsInvalid, "failed to open class mappings %s", path)
	}
	defer func() { _ = f.Close() }()

	set := make(ClassSet)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "\t") {
			continue
		}
		name, _, _ := strings.Cut(line, " ")
		set[name+".class"] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrMappingsInvalid, "failed to read class mappings %s", path)
	}
	return set, nil
}
