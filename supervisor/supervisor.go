// Package supervisor is the top-level controller described in spec.md
// §4.4: given a parsed configuration, it prepares the staging area,
// spawns one executor goroutine per pipeline, reaps them in completion
// order, and drives the report for each as it is reaped.
package supervisor

import (
	"context"
	"io"

	"github.com/pipeyard/pipeyard/config"
	"github.com/pipeyard/pipeyard/executor"
	"github.com/pipeyard/pipeyard/plan"
	"github.com/pipeyard/pipeyard/report"
	"github.com/pipeyard/pipeyard/staging"
)

// completion is what one executor goroutine sends back on finishing.
type completion struct {
	pipeline *plan.Pipeline
	status   executor.Status
	err      error
}

// Run executes every pipeline in doc concurrently and reports each one
// to out as it finishes, in completion order (spec.md §5 "Ordering
// guarantees"). The default pipeline, if any job is left unreferenced by
// a configured pipeline, is synthesized and appended before staging is
// prepared (spec.md §4.1).
//
// Run returns staging.ErrStagingUnavailable, before any pipeline starts,
// when the staging area cannot be prepared. Once pipelines are running,
// it returns the first error met while writing a report or removing a
// staging file; pipelines not yet reported at that point get no report.
// Individual pipeline failures never propagate here — they are reported,
// not returned, per spec.md §7 ("No error kills sibling pipelines").
func Run(ctx context.Context, out io.Writer, doc *config.Document, stagingDir string) error {
	pipelines := doc.Pipelines
	if def := plan.BuildDefaultPipeline(len(doc.Jobs), doc.Assigned); def != nil {
		pipelines = append(pipelines, def)
	}

	mgr := staging.New(stagingDir, staging.DefaultExt)
	if err := mgr.Prepare(pipelines); err != nil {
		return err
	}
	defer mgr.Cleanup()

	done := make(chan completion, len(pipelines))
	for _, p := range pipelines {
		p := p
		go func() {
			status, err := executor.Run(ctx, p, doc.Jobs)
			done <- completion{pipeline: p, status: status, err: err}
		}()
	}

	for range pipelines {
		c := <-done
		if c.err != nil {
			// The executor couldn't even wire the pipeline up
			// (WiringFailed). Spec.md §7: this is surfaced as
			// ChildNonZero in the report rather than aborting the
			// supervisor or the sibling pipelines.
			c.status = executor.Status{Code: 1}
		}
		if err := report.Emit(out, c.pipeline, c.status); err != nil {
			return err
		}
		if err := mgr.Remove(c.pipeline); err != nil {
			return err
		}
	}

	return nil
}
