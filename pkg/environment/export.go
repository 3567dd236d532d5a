package environment

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/deobf/pkg/archive"
)

// Subdirectories of an export root
const (
	ExportClean    = "clean"
	ExportModified = "modified"
)

var exportExcluded = []string{"assets", "pack.png", "META-INF", "log4j2.xml"}

// exportable reports whether an entry belongs in an exported source tree
func exportable(name string) bool {
	for _, ex := range exportExcluded {
		if strings.Contains(name, ex) {
			return false
		}
	}
	return true
}

// ExportSources extracts the clean and modified source jars into dir/clean
// and dir/modified. Existing files are left alone. An empty clean path skips
// the clean tree.
func ExportSources(ctx context.Context, dir, clean, modified string) error {
	opts := archive.ExtractOptions{Filter: exportable}
	if clean != "" {
		if err := archive.Extract(ctx, clean, filepath.Join(dir, ExportClean), opts); err != nil {
			return err
		}
	}
	return archive.Extract(ctx, modified, filepath.Join(dir, ExportModified), opts)
}
