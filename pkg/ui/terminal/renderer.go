// Package terminal renders rich terminal output with pterm and the lipgloss styles
package terminal

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/deobf/pkg/ui/display"
	"github.com/arthur-debert/deobf/pkg/ui/styles"
)

// Renderer writes styled output for an interactive terminal
type Renderer struct {
	output io.Writer
}

// New creates a terminal renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{output: w}, nil
}

// RenderTable draws t as a boxed pterm table below its title
func (r *Renderer) RenderTable(t display.Table) error {
	if t.Title != "" {
		if _, err := fmt.Fprintln(r.output, styles.Render("Title", t.Title)); err != nil {
			return err
		}
	}
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(r.output, styles.Render("Muted", "(empty)"))
		return err
	}

	data := pterm.TableData{t.Header}
	data = append(data, t.Rows...)
	out, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.output, out)
	return err
}

// RenderSuccess prints msg with pterm's success prefix
func (r *Renderer) RenderSuccess(msg string) error {
	_, err := fmt.Fprint(r.output, pterm.Success.Sprintln(msg))
	return err
}

// RenderWarning prints msg with pterm's warning prefix
func (r *Renderer) RenderWarning(msg string) error {
	_, err := fmt.Fprint(r.output, pterm.Warning.Sprintln(msg))
	return err
}

// RenderError prints err and its details in the Error styles
func (r *Renderer) RenderError(err error) error {
	if _, werr := fmt.Fprintln(r.output, styles.Render("Error", "Error: "+err.Error())); werr != nil {
		return werr
	}
	for _, line := range display.ErrorDetails(err) {
		if _, werr := fmt.Fprintln(r.output, styles.Render("ErrorDetail", line)); werr != nil {
			return werr
		}
	}
	return nil
}

// RenderMessage prints msg as is
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
