package executor

import (
	"context"
	"fmt"
	"os"

	"github.com/pipeyard/pipeyard/pipe"
	"github.com/pipeyard/pipeyard/plan"
)

// ErrWiringFailed is returned when a pipeline's input/output
// redirections can't be set up — for instance a File-backed input whose
// path doesn't exist, the one case spec.md §9 calls out explicitly as
// "a safe choice is to fail the executor with WiringFailed".
var ErrWiringFailed = fmt.Errorf("pipeline wiring failed")

// Run executes one pipeline to completion: it installs the input/output
// redirections (spec.md §4.3 steps 1-2), handles the trivial empty-chain
// case (step 3), allocates the inter-job channels and spawns every job
// (steps 4-6), then waits for every job to exit and takes the pipeline's
// status from the tail job alone (step 7). A pipeline whose upstream job
// keeps running after the tail has exited does not return until that job
// exits too. The returned
// Status is always valid when err is nil; a non-nil err means the
// pipeline could not even be wired up (ErrWiringFailed) and never ran.
func Run(ctx context.Context, p *plan.Pipeline, jobs []plan.Job) (Status, error) {
	stdin, closeStdin, err := openInput(p.Input)
	if err != nil {
		return Status{}, fmt.Errorf("%w: %v", ErrWiringFailed, err)
	}
	defer closeStdin()

	stdout, err := openOutput(p)
	if err != nil {
		return Status{}, fmt.Errorf("%w: %v", ErrWiringFailed, err)
	}
	// The tail stage normally takes over closing stdout the moment it
	// starts (see pipe.commandStage.Start's *os.File case). This defer
	// is the backstop for every path that never gets that far: the
	// trivial zero-job pipeline, and a pipeline whose chain fails to
	// start at all. Closing an already-closed *os.File is harmless.
	defer func() { _ = stdout.Close() }()

	if len(p.Members) == 0 {
		// The trivial pipeline: no jobs to run, so it succeeds
		// immediately with an empty captured block.
		return Status{Success: true}, nil
	}

	pl := pipe.New(
		pipe.WithStdin(stdin),
		pipe.WithStdoutCloser(stdout),
	)
	for _, idx := range p.Members {
		job := jobs[idx]
		pl.Add(pipe.Command(job.Name, job.Exec, job.Args...))
	}

	err = pl.Run(ctx)
	return statusFromError(err), nil
}

// openInput returns the reader to use as the pipeline's overall stdin,
// and a closer the caller must defer. Standard input is never closed by
// us: it is either the supervisor's own inherited stdin (potentially
// shared by other concurrently running pipelines) or not used at all.
func openInput(spec plan.StreamSpec) (*os.File, func(), error) {
	if spec.Kind == plan.Standard {
		return os.Stdin, func() {}, nil
	}

	f, err := os.Open(spec.Path)
	if err != nil {
		return nil, func() {}, err
	}
	return f, func() { _ = f.Close() }, nil
}

// openOutput opens the pipeline's staging file for read-write,
// unconditionally — spec.md §4.3 step 2 redirects a pipeline's stdout to
// its staging file regardless of what the pipeline's own configured
// output destination is; the Reporter is what later copies the staging
// file to stdout or to the configured output file.
func openOutput(p *plan.Pipeline) (*os.File, error) {
	return os.OpenFile(p.Staging, os.O_RDWR|os.O_CREATE, 0o644)
}
