// Package json renders machine-readable output
package json

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/deobf/pkg/errors"
	"github.com/arthur-debert/deobf/pkg/ui/display"
)

// Renderer writes one indented JSON document per call
type Renderer struct {
	encoder *json.Encoder
}

// New creates a JSON renderer
func New(output io.Writer) (*Renderer, error) {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return &Renderer{encoder: encoder}, nil
}

// RenderTable encodes the rows of t as objects keyed by header
func (r *Renderer) RenderTable(t display.Table) error {
	return r.encoder.Encode(struct {
		Title string              `json:"title,omitempty"`
		Rows  []map[string]string `json:"rows"`
	}{t.Title, t.Records()})
}

// RenderSuccess encodes {"success": msg}
func (r *Renderer) RenderSuccess(msg string) error {
	return r.encoder.Encode(map[string]string{"success": msg})
}

// RenderWarning encodes {"warning": msg}
func (r *Renderer) RenderWarning(msg string) error {
	return r.encoder.Encode(map[string]string{"warning": msg})
}

// RenderError encodes the error message, its code and its details
func (r *Renderer) RenderError(err error) error {
	return r.encoder.Encode(struct {
		Error   string                 `json:"error"`
		Code    errors.ErrorCode       `json:"code"`
		Details map[string]interface{} `json:"details,omitempty"`
	}{err.Error(), errors.GetErrorCode(err), errors.GetErrorDetails(err)})
}

// RenderMessage encodes {"message": msg}
func (r *Renderer) RenderMessage(msg string) error {
	return r.encoder.Encode(map[string]string{"message": msg})
}
