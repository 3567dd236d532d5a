package ui

import (
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/arthur-debert/deobf/pkg/errors"
)

// Format selects a Renderer
type Format int

const (
	FormatAuto Format = iota
	FormatTerminal
	FormatText
	FormatJSON
)

// formatNames holds the canonical --format value of each Format
var formatNames = map[Format]string{
	FormatAuto:     "auto",
	FormatTerminal: "term",
	FormatText:     "text",
	FormatJSON:     "json",
}

// formatAliases are accepted by ParseFormat besides the canonical names
var formatAliases = map[string]Format{
	"":         FormatAuto,
	"terminal": FormatTerminal,
	"plain":    FormatText,
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// FormatNames lists the canonical format names, sorted
func FormatNames() []string {
	names := make([]string, 0, len(formatNames))
	for _, name := range formatNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseFormat maps a --format value to a Format, ignoring case
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(s)
	if f, ok := formatAliases[name]; ok {
		return f, nil
	}
	for f, canonical := range formatNames {
		if canonical == name {
			return f, nil
		}
	}
	return FormatAuto, errors.Newf(errors.ErrInvalidInput, "unknown format: %s", s).
		WithDetail("accepted", strings.Join(FormatNames(), ", "))
}

// DetectFormat resolves FormatAuto for output. Styled output needs a terminal
// with at least basic colors and an empty NO_COLOR.
func DetectFormat(output *os.File) Format {
	switch {
	case os.Getenv("NO_COLOR") != "":
		return FormatText
	case !IsTerminal(output):
		return FormatText
	case termenv.NewOutput(output).ColorProfile() == termenv.Ascii:
		return FormatText
	}
	return FormatTerminal
}

// IsTerminal reports whether f is a tty, Cygwin ptys included
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
