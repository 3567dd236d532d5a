// Package display holds the renderer-independent values commands hand to pkg/ui.
package display

import (
	"fmt"
	"sort"

	"github.com/arthur-debert/deobf/pkg/errors"
)

// Table is a titled grid of cells. Every row has len(Header) cells.
type Table struct {
	Title  string     `json:"title,omitempty"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// AddRow appends a row, padding or truncating it to the header width
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.Header))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Records returns the rows as header-keyed maps
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Header))
		for i, h := range t.Header {
			rec[h] = row[i]
		}
		out = append(out, rec)
	}
	return out
}

// ErrorDetails formats the details attached to err as sorted "key: value" lines
func ErrorDetails(err error) []string {
	details := errors.GetErrorDetails(err)
	lines := make([]string, 0, len(details))
	for k, v := range details {
		lines = append(lines, fmt.Sprintf("%s: %v", k, v))
	}
	sort.Strings(lines)
	return lines
}
