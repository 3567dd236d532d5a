package transform

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/deobf/pkg/archive"
	"github.com/arthur-debert/deobf/pkg/errors"
	"github.com/arthur-debert/deobf/pkg/logging"
)

// SourceSuffix selects the entries a Chain is applied to
const SourceSuffix = ".java"

// Action transforms the full text of one source file
type Action interface {
	Name() string
	Apply(text string) (string, error)
}

// ActionFunc adapts a function to the Action interface
type ActionFunc struct {
	Label string
	Fn    func(text string) (string, error)
}

// Name returns the label of the action
func (a ActionFunc) Name() string { return a.Label }

// Apply calls the wrapped function
func (a ActionFunc) Apply(text string) (string, error) { return a.Fn(text) }

// Identity returns source text unchanged
var Identity Action = ActionFunc{Label: "identity", Fn: func(text string) (string, error) { return text, nil }}

// Chain is an ordered list of actions
type Chain struct {
	actions []Action
	logger  zerolog.Logger
}

// NewChain creates a chain running actions in the given order
func NewChain(actions ...Action) *Chain {
	return &Chain{actions: actions, logger: logging.GetLogger("transform")}
}

// Add appends an action to the chain
func (c *Chain) Add(action Action) {
	c.actions = append(c.actions, action)
}

// Len returns the number of actions
func (c *Chain) Len() int {
	return len(c.actions)
}

// Apply runs text through every action in order.
func (c *Chain) Apply(text string) (string, error) {
	if len(c.actions) == 0 {
		return "", errors.New(errors.ErrNoActions, "no source actions configured")
	}
	for _, action := range c.actions {
		out, err := action.Apply(text)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrStepExecute, "action %s failed", action.Name())
		}
		text = out
	}
	return text, nil
}

// Process copies in to out, applying the chain to every source entry.
// Source text is normalized to "\n" line endings and written with a trailing
// newline.
func (c *Chain) Process(ctx context.Context, in, out string) error {
	if len(c.actions) == 0 {
		return errors.New(errors.ErrNoActions, "no source actions configured")
	}
	done := logging.LogOperationStart(c.logger, "process "+in)
	defer done()

	processed := 0
	err := archive.Rewrite(ctx, in, out, func(e *archive.Entry) (archive.Result, error) {
		if e.IsDir() || !strings.HasSuffix(e.Name(), SourceSuffix) {
			return archive.Keep(), nil
		}

		data, err := e.ReadAll()
		if err != nil {
			return archive.Result{}, errors.Wrapf(err, errors.ErrArchive, "failed to read %s", e.Name())
		}
		text, err := c.Apply(normalize(string(data)))
		if err != nil {
			return archive.Result{}, errors.Wrapf(err, errors.ErrStepExecute, "failed to transform %s", e.Name())
		}
		processed++
		return archive.Replace([]byte(text + "\n")), nil
	})
	if err != nil {
		return err
	}

	c.logger.Debug().Str("output", out).Int("sources", processed).Msg("Source archive processed")
	return nil
}

// normalize converts line endings to "\n" and terminates every line.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text
}
