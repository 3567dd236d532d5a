package transform

import (
	"strings"

	"github.com/arthur-debert/deobf/pkg/errors"
)

// DefaultStrippedImports are removed as whole import lines
var DefaultStrippedImports = []string{
	"javax.annotation.Nullable",
	"javax.annotation.Nonnull",
	"javax.annotation.concurrent.Immutable",
	"net.minecraftforge.api.distmarker.Dist",
	"net.minecraftforge.api.distmarker.OnlyIn",
}

// DefaultStrippedAnnotations are removed at every use site
var DefaultStrippedAnnotations = []string{
	"Nullable",
	"Nonnull",
	"Immutable",
	"OnlyIn",
}

// AnnotationStripper deletes annotations, and the imports that bring them in,
// that have no counterpart on the recompilation classpath.
//
// Argument lists are skipped by counting parentheses. String literals are not
// recognised, so an argument containing an unbalanced parenthesis inside a
// string would be cut at the wrong place. None of the default annotations
// take string arguments.
type AnnotationStripper struct {
	imports     []string
	annotations []string
}

// NewAnnotationStripper uses the default import and annotation lists
func NewAnnotationStripper() *AnnotationStripper {
	return &AnnotationStripper{imports: DefaultStrippedImports, annotations: DefaultStrippedAnnotations}
}

// NewAnnotationStripperFor strips the given qualified imports and simple annotation names
func NewAnnotationStripperFor(imports, annotations []string) *AnnotationStripper {
	return &AnnotationStripper{imports: imports, annotations: annotations}
}

// Name identifies the action in errors and logs
func (s *AnnotationStripper) Name() string { return "strip-annotations" }

// Apply removes import lines first, then annotation uses
func (s *AnnotationStripper) Apply(text string) (string, error) {
	text = s.stripImports(text)
	for _, name := range s.annotations {
		var err error
		text, err = stripAnnotation(text, name)
		if err != nil {
			return "", err
		}
	}
	return text, nil
}

func (s *AnnotationStripper) stripImports(text string) string {
	if len(s.imports) == 0 {
		return text
	}
	drop := make(map[string]bool, len(s.imports))
	for _, imp := range s.imports {
		drop["import "+imp+";"] = true
	}

	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	b.Grow(len(text))
	for _, line := range lines {
		if drop[strings.TrimSpace(line)] {
			continue
		}
		b.WriteString(line)
	}
	return b.String()
}

// stripAnnotation removes every "@name" use. The removed span is the
// annotation plus its parenthesized arguments, or plus the single character
// that follows it.
func stripAnnotation(text, name string) (string, error) {
	token := "@" + name
	var b strings.Builder
	b.Grow(len(text))

	rest := text
	for {
		idx := strings.Index(rest, token)
		if idx == -1 {
			b.WriteString(rest)
			return b.String(), nil
		}

		end := idx + len(token)
		if end < len(rest) && isIdentPart(rest[end]) {
			// @NullableFoo is a different annotation
			b.WriteString(rest[:end])
			rest = rest[end:]
			continue
		}

		b.WriteString(rest[:idx])
		if end < len(rest) && rest[end] == '(' {
			closing, err := matchParen(rest, end)
			if err != nil {
				return "", errors.Wrapf(err, errors.ErrStepExecute, "cannot strip %s", token)
			}
			end = closing
		}
		// Remove one trailing character: the closing paren or a separator
		if end < len(rest) {
			end++
		}
		rest = rest[end:]
	}
}

// matchParen returns the index of the parenthesis closing the one at open
func matchParen(text string, open int) (int, error) {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, errors.New(errors.ErrStepExecute, "unbalanced parentheses in annotation arguments")
}

func isIdentPart(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
