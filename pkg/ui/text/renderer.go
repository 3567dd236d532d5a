// Package text renders plain output without colors or styling
package text

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/arthur-debert/deobf/pkg/ui/display"
)

// Renderer writes unstyled output, suitable for pipes and log files
type Renderer struct {
	output io.Writer
}

// New creates a text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderTable writes t as tab-aligned columns
func (r *Renderer) RenderTable(t display.Table) error {
	if t.Title != "" {
		if _, err := fmt.Fprintln(r.output, t.Title); err != nil {
			return err
		}
	}
	tw := tabwriter.NewWriter(r.output, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.ToUpper(strings.Join(t.Header, "\t"))); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// RenderSuccess writes msg
func (r *Renderer) RenderSuccess(msg string) error {
	return r.RenderMessage(msg)
}

// RenderWarning writes msg with a "Warning: " prefix
func (r *Renderer) RenderWarning(msg string) error {
	return r.RenderMessage("Warning: " + msg)
}

// RenderError writes err followed by one indented line per detail
func (r *Renderer) RenderError(err error) error {
	if werr := r.RenderMessage("Error: " + err.Error()); werr != nil {
		return werr
	}
	for _, line := range display.ErrorDetails(err) {
		if werr := r.RenderMessage("  " + line); werr != nil {
			return werr
		}
	}
	return nil
}

// RenderMessage writes msg as is
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
