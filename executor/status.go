// Package executor runs one plan.Pipeline: it opens the pipeline's input
// and output redirections, builds the chain of pipe.Stage processes, and
// reports the single terminal status that matters — the tail stage's —
// translated into an exit code or a terminating signal number.
package executor

import (
	"errors"
	"os/exec"
)

// Status is a pipeline's terminal status, derived from its tail stage
// alone, per spec.md §4.3 step 7.
type Status struct {
	// Success is true iff the tail exited normally with code 0.
	Success bool
	// Code is the tail's exit code (normal non-zero exit) or the
	// terminating signal number (Signaled is true). Meaningless when
	// Success is true.
	Code int
	// Signaled is true iff Code is a signal number rather than an exit
	// code.
	Signaled bool
}

// statusFromError turns the error returned by running a pipeline (its
// tail stage's Wait() result, or the error from starting any of its
// stages) into a Status. A nil error is success. An *exec.ExitError is a
// normal non-zero exit or a signal, decided by platform-specific
// signalOrCode. Any other error (a stage could not even be started —
// SpawnFailed/WiringFailed in spec.md §7 terms) is reported as
// ChildNonZero with exit code 1, since there is no more specific number
// to report.
func statusFromError(err error) Status {
	if err == nil {
		return Status{Success: true}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code, signaled := signalOrCode(exitErr)
		return Status{Code: code, Signaled: signaled}
	}

	return Status{Code: 1}
}
