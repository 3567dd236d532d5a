package patch

import (
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/arthur-debert/deobf/pkg/errors"
)

// Hunk is one contiguous change of a unified diff
type Hunk struct {
	OrigStart int
	OrigLines int
	NewStart  int
	NewLines  int
	Lines     []string
}

// Patch is a parsed unified diff for a single file
type Patch struct {
	OrigName string
	NewName  string
	Hunks    []Hunk
}

// ConflictError describes the first line a hunk failed to match
type ConflictError struct {
	Target   string
	Hunk     int
	Line     int
	Expected string
	Actual   string
	Reason   string
}

func (e *ConflictError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: hunk #%d at line %d: %s", e.Target, e.Hunk, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: hunk #%d at line %d: expected %q, found %q", e.Target, e.Hunk, e.Line, e.Expected, e.Actual)
}

// Parse reads a single-file unified diff.
func Parse(data []byte) (*Patch, error) {
	fd, err := diff.ParseFileDiff(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse unified diff")
	}

	p := &Patch{OrigName: fd.OrigName, NewName: fd.NewName}
	for _, h := range fd.Hunks {
		body := strings.TrimSuffix(string(h.Body), "\n")
		var lines []string
		if body != "" {
			lines = strings.Split(body, "\n")
		}
		p.Hunks = append(p.Hunks, Hunk{
			OrigStart: int(h.OrigStartLine),
			OrigLines: int(h.OrigLines),
			NewStart:  int(h.NewStartLine),
			NewLines:  int(h.NewLines),
			Lines:     lines,
		})
	}
	return p, nil
}

// Apply applies every hunk of p to lines and returns the patched lines.
// target names the file in a *ConflictError.
func (p *Patch) Apply(target string, lines []string) ([]string, error) {
	result := make([]string, 0, len(lines))
	pos := 0

	for i, h := range p.Hunks {
		hunkNo := i + 1
		start := h.OrigStart - 1
		if h.OrigLines == 0 {
			// Pure insertion: the hunk goes after line OrigStart
			start = h.OrigStart
		}
		if start < pos {
			return nil, conflict(target, hunkNo, start+1, "overlaps the previous hunk")
		}
		if start > len(lines) {
			return nil, conflict(target, hunkNo, start+1, fmt.Sprintf("starts beyond end of file (%d lines)", len(lines)))
		}

		result = append(result, lines[pos:start]...)
		pos = start

		for _, line := range h.Lines {
			op, text := byte(' '), ""
			if line != "" {
				op, text = line[0], line[1:]
			}

			switch op {
			case ' ', '-':
				if pos >= len(lines) {
					return nil, &ConflictError{Target: target, Hunk: hunkNo, Line: pos + 1, Expected: text, Reason: "unexpected end of file"}
				}
				if lines[pos] != text {
					return nil, &ConflictError{Target: target, Hunk: hunkNo, Line: pos + 1, Expected: text, Actual: lines[pos]}
				}
				if op == ' ' {
					result = append(result, text)
				}
				pos++
			case '+':
				result = append(result, text)
			case '\\':
				// "\ No newline at end of file"
			default:
				return nil, conflict(target, hunkNo, pos+1, fmt.Sprintf("malformed hunk line %q", line))
			}
		}
	}

	return append(result, lines[pos:]...), nil
}

func conflict(target string, hunk, line int, reason string) *ConflictError {
	return &ConflictError{Target: target, Hunk: hunk, Line: line, Reason: reason}
}

// SplitLines splits text into lines, accepting \n, \r\n and \r terminators.
// A trailing terminator does not produce an empty last line.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// ApplyText patches text. Every resulting line ends with "\n".
func (p *Patch) ApplyText(target, text string) (string, error) {
	lines, err := p.Apply(target, SplitLines(text))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrPatchConflict, "patch does not apply to %s", target).
			WithDetail("target", target)
	}
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
