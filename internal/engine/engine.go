// Package engine runs an ordered list of generation stages over a file set
// and a metadata context.
//
// Stages run strictly one after another. The first failing stage stops the
// run; no stage is retried.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/mifan-labs/mifan/internal/fileset"
	"github.com/mifan-labs/mifan/internal/metadata"
	"github.com/mifan-labs/mifan/internal/output"
)

// Stage is one transformation step.
type Stage interface {
	Name() string
	Run(ctx context.Context, files *fileset.FileSet, meta *metadata.Context) error
}

// StageFunc adapts a function to a Stage.
type StageFunc func(ctx context.Context, files *fileset.FileSet, meta *metadata.Context) error

type funcStage struct {
	name string
	fn   StageFunc
}

func (s funcStage) Name() string { return s.name }

func (s funcStage) Run(ctx context.Context, files *fileset.FileSet, meta *metadata.Context) error {
	return s.fn(ctx, files, meta)
}

// NewStage names fn as a Stage.
func NewStage(name string, fn StageFunc) Stage {
	return funcStage{name: name, fn: fn}
}

// StageRecord captures timing and outcome for one executed stage.
type StageRecord struct {
	Name     string
	Duration time.Duration
	Err      error
}

// Result describes a pipeline run.
type Result struct {
	Stages   []StageRecord
	Duration time.Duration
}

// StageError reports the first stage that failed.
type StageError struct {
	Stage string
	Index int
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d (%s): %v", e.Index+1, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Pipeline is an ordered stage list.
type Pipeline struct {
	stages []Stage
}

// New creates a pipeline from stages.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Use appends stages and returns the pipeline for chaining.
func (p *Pipeline) Use(stages ...Stage) *Pipeline {
	p.stages = append(p.stages, stages...)
	return p
}

// Names lists the stage names in run order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run executes every stage in order. The returned Result always lists the
// stages that ran, including a failing one.
func (p *Pipeline) Run(ctx context.Context, files *fileset.FileSet, meta *metadata.Context) (*Result, error) {
	res := &Result{}
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	for i, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return res, &StageError{Stage: s.Name(), Index: i, Err: err}
		}

		output.Debug("stage started", "stage", s.Name(), "files", files.Len())
		t := time.Now()
		err := s.Run(ctx, files, meta)
		rec := StageRecord{Name: s.Name(), Duration: time.Since(t), Err: err}
		res.Stages = append(res.Stages, rec)

		if err != nil {
			output.Debug("stage failed", "stage", s.Name(), "duration", rec.Duration, "err", err)
			return res, &StageError{Stage: s.Name(), Index: i, Err: err}
		}
		output.Debug("stage finished", "stage", s.Name(), "duration", rec.Duration, "files", files.Len())
	}
	return res, nil
}
