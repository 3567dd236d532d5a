package pipeline

import (
	"context"
	"time"
)

// Kind enumerates the step variants
type Kind int

const (
	KindInject Kind = iota
	KindStrip
	KindPatch
	KindListLibraries
	KindTool
)

var kindNames = map[Kind]string{
	KindInject:        "inject",
	KindStrip:         "strip",
	KindPatch:         "patch",
	KindListLibraries: "listLibraries",
	KindTool:          "tool",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ignoredTypes are download steps handled by the environment before the run
var ignoredTypes = map[string]bool{
	"downloadManifest": true,
	"downloadJson":     true,
	"downloadServer":   true,
	"downloadClient":   true,
}

// Step is one cacheable unit of work producing a single output file
type Step interface {
	Name() string
	Kind() Kind
	// Output is the file the step writes
	Output() string
	// Prepare loads whatever Execute needs. It is only called when the
	// output does not exist.
	Prepare(ctx context.Context) error
	Execute(ctx context.Context) error
}

// State tracks a step through one run
type State int

const (
	StateUnprepared State = iota
	StatePrepared
	StateSkipped
	StateExecuted
	StateFailed
)

var stateNames = map[State]string{
	StateUnprepared: "unprepared",
	StatePrepared:   "prepared",
	StateSkipped:    "skipped",
	StateExecuted:   "executed",
	StateFailed:     "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the state by name in reports
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StepResult records what happened to one step during Execute
type StepResult struct {
	Side     string
	Step     string
	Kind     Kind
	State    State
	Duration time.Duration
}

type base struct {
	name   string
	output string
}

func (b *base) Name() string   { return b.name }
func (b *base) Output() string { return b.output }
