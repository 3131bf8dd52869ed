// Package pipe provides the low-level machinery for wiring one pipeline's
// jobs together: allocating the anonymous channel between each adjacent
// pair, starting each job as a subprocess with the correct stdin/stdout,
// and closing every descriptor the parent no longer needs.
//
// Who closes stdin and stdout?
//
// A Stage is responsible for closing its end of stdin and stdout once
// Start returns successfully. Doing so promptly is what lets the
// downstream job see EOF; holding an endpoint open past when it's needed
// is a deadlock waiting to happen. See the endpoint-ownership discussion
// on Pipeline.
package pipe

import (
	"context"
	"io"
)

// Stage is one element of a Pipeline: it reads from stdin and writes to
// stdout. Every Stage pipeyard constructs wraps an external command; the
// anonymous channel between two adjacent stages is always a real kernel
// pipe (os.Pipe()), never an in-process io.Pipe(), so that file
// descriptors are inherited across exec without extra copying.
type Stage interface {
	// Name returns the stage's name, used in diagnostic Events.
	Name() string

	// Start starts the stage in the background using stdin as input
	// (nil if the stage is first in the pipeline and has no piped
	// input) and stdout as output (nil if the stage is last and has no
	// piped output). If Start returns without error, Wait must also be
	// called to free resources.
	Start(ctx context.Context, stdin io.ReadCloser, stdout io.WriteCloser) error

	// Wait waits for the stage to finish and returns its result. If the
	// stage is an external command, the returned error is either nil
	// (clean exit code 0), an *exec.ExitError (non-zero exit code or
	// termination by signal), or some other error if the process could
	// never be started at all.
	Wait() error
}
