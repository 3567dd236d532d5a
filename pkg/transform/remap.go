package transform

import (
	"regexp"

	"github.com/arthur-debert/deobf/pkg/errors"
	"github.com/arthur-debert/deobf/pkg/mappings"
)

// obfuscatedName matches SRG method, field and parameter names
var obfuscatedName = regexp.MustCompile(`func_[0-9]+_[a-zA-Z_]+|field_[0-9]+_[a-zA-Z_]+|p_[\w]+_\d+_\b`)

// Remapper substitutes obfuscated identifiers with their mapped names.
// Identifiers missing from the table are left exactly as they are.
type Remapper struct {
	table *mappings.Table
}

// NewRemapper creates a remapper backed by table
func NewRemapper(table *mappings.Table) *Remapper {
	return &Remapper{table: table}
}

// Name identifies the action in errors and logs
func (r *Remapper) Name() string { return "remap" }

// Apply replaces every mapped identifier in text
func (r *Remapper) Apply(text string) (string, error) {
	if r.table == nil || r.table.Len() == 0 {
		return "", errors.New(errors.ErrNoMappings, "no mappings have been loaded")
	}
	return obfuscatedName.ReplaceAllStringFunc(text, func(match string) string {
		if name, ok := r.table.Lookup(match); ok {
			return name
		}
		return match
	}), nil
}
