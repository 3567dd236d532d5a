package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/deobf/pkg/errors"
)

// ReportFileName is written below Dir/steps after each Execute
const ReportFileName = "report.toml"

// Run owns the registry and the per-side step lists of one configuration
type Run struct {
	opts     Options
	registry *Registry
	sides    map[string][]Step
	order    []string
	logger   zerolog.Logger

	states  map[Step]State
	results []StepResult
}

func newRun(opts Options, logger zerolog.Logger) *Run {
	return &Run{
		opts:     opts,
		registry: NewRegistry(),
		sides:    make(map[string][]Step),
		logger:   logger,
		states:   make(map[Step]State),
	}
}

func (r *Run) addSide(side string, steps []Step) {
	r.sides[side] = steps
	r.order = append(r.order, side)
}

// Registry exposes the variables of the run
func (r *Run) Registry() *Registry { return r.registry }

// Sides lists the sides in configuration order
func (r *Run) Sides() []string {
	return append([]string(nil), r.order...)
}

// Steps returns the steps of side in execution order
func (r *Run) Steps(side string) ([]Step, error) {
	steps, ok := r.sides[side]
	if !ok {
		return nil, r.noSuchSide(side)
	}
	return steps, nil
}

// StepOutput returns the output path of the named step of side
func (r *Run) StepOutput(side, name string) (string, bool) {
	for _, step := range r.sides[side] {
		if step.Name() == name {
			return step.Output(), true
		}
	}
	return "", false
}

// State returns the state step reached in this run
func (r *Run) State(step Step) State {
	return r.states[step]
}

// Results returns the results recorded by every Execute so far
func (r *Run) Results() []StepResult {
	return append([]StepResult(nil), r.results...)
}

// Prepare prepares every step of side whose output does not exist yet
func (r *Run) Prepare(ctx context.Context, side string) error {
	steps, ok := r.sides[side]
	if !ok {
		return r.noSuchSide(side)
	}
	for _, step := range steps {
		if exists(step.Output()) {
			continue
		}
		if err := r.prepare(ctx, side, step); err != nil {
			return err
		}
	}
	return nil
}

func (r *Run) prepare(ctx context.Context, side string, step Step) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(step.Output()), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrCacheIO, "failed to create output directory for step %s of %s", step.Name(), side).
			WithDetail("side", side).
			WithDetail("step", step.Name())
	}

	r.logger.Info().Str("side", side).Str("step", step.Name()).Msg("Preparing step")
	if err := step.Prepare(ctx); err != nil {
		r.states[step] = StateFailed
		return errors.Wrapf(err, errors.ErrStepPrepare, "failed to prepare step %s of %s", step.Name(), side).
			WithDetail("side", side).
			WithDetail("step", step.Name()).
			WithDetail("kind", step.Kind().String())
	}
	r.states[step] = StatePrepared
	return nil
}

// Execute runs the steps of side whose output is missing, and every step
// after the first one that runs. It returns the output of the last step.
func (r *Run) Execute(ctx context.Context, side string) (string, error) {
	steps, ok := r.sides[side]
	if !ok {
		return "", r.noSuchSide(side)
	}

	forceRerun := false
	last := ""
	for _, step := range steps {
		output := step.Output()
		last = output

		if forceRerun && exists(output) {
			if err := os.Remove(output); err != nil {
				return "", errors.Wrapf(err, errors.ErrCacheIO, "failed to delete outdated output of %s", step.Name()).
					WithDetail("side", side).
					WithDetail("step", step.Name()).
					WithDetail("output", output)
			}
		}

		if exists(output) {
			r.record(side, step, StateSkipped, 0)
			r.logger.Debug().Str("side", side).Str("step", step.Name()).Msg("Step output cached")
			continue
		}

		// Outputs deleted by the cascade were present when Prepare ran
		if r.states[step] != StatePrepared {
			if err := r.prepare(ctx, side, step); err != nil {
				r.record(side, step, StateFailed, 0)
				return "", err
			}
		}

		r.logger.Info().Str("side", side).Str("step", step.Name()).Msg("Executing step")
		start := time.Now()
		err := executeStep(ctx, step)
		elapsed := time.Since(start)
		if err != nil {
			if rmErr := os.Remove(output); rmErr != nil && !os.IsNotExist(rmErr) {
				r.logger.Warn().Err(rmErr).Str("output", output).Msg("Failed to remove partial step output")
			}
			r.record(side, step, StateFailed, elapsed)
			return "", errors.Wrapf(err, errors.ErrStepExecute, "step %s of %s failed", step.Name(), side).
				WithDetail("side", side).
				WithDetail("step", step.Name()).
				WithDetail("kind", step.Kind().String())
		}

		r.record(side, step, StateExecuted, elapsed)
		r.logger.Info().Str("side", side).Str("step", step.Name()).Dur("duration", elapsed).Msg("Step executed")
		forceRerun = true
	}
	return last, nil
}

// executeStep turns a panicking step into an error so its partial output is
// discarded like any other failure.
func executeStep(ctx context.Context, step Step) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Newf(errors.ErrInternal, "step panicked: %v", p).WithDetail("panic", fmt.Sprint(p))
		}
	}()
	return step.Execute(ctx)
}

func (r *Run) record(side string, step Step, state State, d time.Duration) {
	r.states[step] = state
	r.results = append(r.results, StepResult{
		Side:     side,
		Step:     step.Name(),
		Kind:     step.Kind(),
		State:    state,
		Duration: d,
	})
}

func (r *Run) noSuchSide(side string) error {
	return errors.Newf(errors.ErrNoSuchSide, "no steps are defined for side %s", side).
		WithDetail("side", side).
		WithDetail("sides", r.Sides())
}

type reportEntry struct {
	Step       string `toml:"step"`
	Kind       string `toml:"kind"`
	State      State  `toml:"state"`
	DurationMS int64  `toml:"duration_ms"`
}

// WriteReport writes the latest result of every step to Dir/steps/report.toml,
// one array of tables per side
func (r *Run) WriteReport() error {
	latest := make(map[string]map[string]int)
	report := make(map[string][]reportEntry)
	for _, res := range r.results {
		if latest[res.Side] == nil {
			latest[res.Side] = make(map[string]int)
		}
		entry := reportEntry{
			Step:       res.Step,
			Kind:       res.Kind.String(),
			State:      res.State,
			DurationMS: res.Duration.Milliseconds(),
		}
		if idx, ok := latest[res.Side][res.Step]; ok {
			report[res.Side][idx] = entry
			continue
		}
		latest[res.Side][res.Step] = len(report[res.Side])
		report[res.Side] = append(report[res.Side], entry)
	}

	path := filepath.Join(r.opts.Dir, StepsDir, ReportFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", filepath.Dir(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", path)
	}
	if err := toml.NewEncoder(f).Encode(report); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to encode %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", path)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
