package mappings

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/arthur-debert/deobf/pkg/errors"
	"github.com/arthur-debert/deobf/pkg/logging"
)

// Header names recognised in CSV sources
const (
	ColumnSearge = "searge"
	ColumnParam  = "param"
	ColumnName   = "name"
)

// Table maps obfuscated identifiers to human names.
// It is not safe for concurrent mutation; lookups after loading are.
type Table struct {
	names   map[string]string
	sources []string
}

// NewTable returns an empty table
func NewTable() *Table {
	return &Table{names: make(map[string]string)}
}

// Len returns the number of mapped identifiers
func (t *Table) Len() int {
	return len(t.names)
}

// Sources lists the sources loaded so far, in load order
func (t *Table) Sources() []string {
	return append([]string(nil), t.sources...)
}

// Lookup returns the human name for key
func (t *Table) Lookup(key string) (string, bool) {
	name, ok := t.names[key]
	return name, ok
}

// Put adds or overwrites a single mapping
func (t *Table) Put(key, name string) {
	t.names[key] = name
}

// LoadCSV reads one CSV source. source names it in error messages.
func (t *Table) LoadCSV(r io.Reader, source string) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	keyIndex, nameIndex := -1, -1
	lineNo := 0
	loaded := make(map[string]string)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if keyIndex == -1 {
			var err error
			keyIndex, nameIndex, err = parseHeader(line, source)
			if err != nil {
				return err
			}
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := splitRow(line)
		if keyIndex >= len(parts) || nameIndex >= len(parts) {
			return errors.Newf(errors.ErrMappingsInvalid, "line %d does not contain enough fields", lineNo).
				WithDetail("source", source).
				WithDetail("line", line)
		}
		loaded[parts[keyIndex]] = parts[nameIndex]
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, errors.ErrMappingsInvalid, "failed to read %s", source)
	}
	if lineNo == 0 {
		return errors.New(errors.ErrMappingsInvalid, "empty CSV file").WithDetail("source", source)
	}

	for k, v := range loaded {
		t.names[k] = v
	}
	t.sources = append(t.sources, source)
	return nil
}

func parseHeader(line, source string) (int, int, error) {
	parts := splitRow(line)
	if len(parts) < 2 {
		return -1, -1, errors.New(errors.ErrMappingsInvalid, "header contains less than 2 columns").
			WithDetail("source", source)
	}

	keyIndex, nameIndex := -1, -1
	for i, part := range parts {
		switch part {
		case ColumnSearge, ColumnParam:
			if keyIndex != -1 {
				return -1, -1, errors.New(errors.ErrMappingsInvalid, "duplicated searge or param column").
					WithDetail("source", source)
			}
			keyIndex = i
		case ColumnName:
			if nameIndex != -1 {
				return -1, -1, errors.New(errors.ErrMappingsInvalid, "duplicated name column").
					WithDetail("source", source)
			}
			nameIndex = i
		}
	}

	if keyIndex == -1 {
		return -1, -1, errors.New(errors.ErrMappingsInvalid, "header has no searge or param column").
			WithDetail("source", source)
	}
	if nameIndex == -1 {
		return -1, -1, errors.New(errors.ErrMappingsInvalid, "header has no name column").
			WithDetail("source", source)
	}
	return keyIndex, nameIndex, nil
}

// splitRow splits on commas and drops trailing empty fields
func splitRow(line string) []string {
	parts := strings.Split(line, ",")
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// LoadFile reads a CSV source from fs
func (t *Table) LoadFile(fs afero.Fs, path string) error {
	f, err := fs.Open(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrMappingsInvalid, "failed to open %s", path)
	}
	defer func() { _ = f.Close() }()
	return t.LoadCSV(f, path)
}

// LoadDir walks dir and loads every *.csv file in lexical path order.
func LoadDir(fs afero.Fs, dir string) (*Table, error) {
	logger := logging.GetLogger("mappings")

	var files []string
	err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() && strings.HasSuffix(info.Name(), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrMappingsInvalid, "failed to walk %s", dir)
	}
	sort.Strings(files)

	t := NewTable()
	for _, file := range files {
		if err := t.LoadFile(fs, file); err != nil {
			return nil, err
		}
		logger.Debug().Str("file", filepath.Base(file)).Int("total", t.Len()).Msg("Loaded mappings table")
	}
	return t, nil
}
