// Package ui renders command results as rich terminal output, plain text or JSON.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/deobf/pkg/ui/display"
	"github.com/arthur-debert/deobf/pkg/ui/json"
	"github.com/arthur-debert/deobf/pkg/ui/terminal"
	"github.com/arthur-debert/deobf/pkg/ui/text"
)

// Renderer is implemented by every output format
type Renderer interface {
	RenderTable(t display.Table) error
	RenderSuccess(msg string) error
	RenderWarning(msg string) error
	RenderError(err error) error
	RenderMessage(msg string) error
}

// NewRenderer creates the renderer for format. FormatAuto inspects output
// when it is a file and falls back to plain text otherwise.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRenderer(DetectFormat(file), output)
		}
		return NewRenderer(FormatText, output)
	case FormatTerminal:
		return terminal.New(output)
	case FormatText:
		return text.New(output)
	case FormatJSON:
		return json.New(output)
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}
