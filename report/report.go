// Package report implements the supervisor's fixed stdout report format
// (spec.md §4.5, §6): one header/body/footer block per reaped pipeline,
// emitted as soon as that pipeline finishes.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pipeyard/pipeyard/executor"
	"github.com/pipeyard/pipeyard/plan"
)

// maxLineSize bounds a single captured line; a captured block with a
// longer line than this fails loudly instead of silently truncating.
const maxLineSize = 16 * 1024 * 1024

// Emit writes one pipeline's report block to w: the `## Output <name> ##`
// header, the contents of the pipeline's staging file (to w, or to the
// pipeline's configured output file instead), and the success/failure
// footer. It is the caller's responsibility to invoke
// Emit in pipeline-completion order and to serialize calls — Emit itself
// does no locking, matching the single-threaded supervisor of spec.md
// §5 ("reports are serialized by the single-threaded supervisor").
func Emit(w io.Writer, p *plan.Pipeline, status executor.Status) error {
	if _, err := fmt.Fprintf(w, "## Output %s ##\n", p.Name); err != nil {
		return err
	}

	if err := copyBody(w, p); err != nil {
		return err
	}

	return emitFooter(w, p, status)
}

// copyBody streams the pipeline's captured output to stdout, or to its
// configured output file (truncated), per spec.md §4.5. It is emitted
// line by line, each line followed by a trailing newline, so a captured
// block whose last line was never newline-terminated by the job that
// produced it (e.g. `echo -n hello`) still gets one — spec.md §4.5:
// "Each line is emitted with a trailing newline."
func copyBody(w io.Writer, p *plan.Pipeline) error {
	staged, err := os.Open(p.Staging)
	if err != nil {
		return fmt.Errorf("report: opening staging file for %s: %w", p.Name, err)
	}
	defer staged.Close()

	if p.Output.Kind == plan.Standard {
		return writeLines(w, staged)
	}

	out, err := os.OpenFile(p.Output.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("report: opening output file for %s: %w", p.Name, err)
	}
	defer out.Close()

	return writeLines(out, staged)
}

// writeLines copies src to dst one line at a time, appending a newline
// after every line regardless of whether src's final line had one.
func writeLines(dst io.Writer, src io.Reader) error {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if _, err := fmt.Fprintln(dst, scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func emitFooter(w io.Writer, p *plan.Pipeline, status executor.Status) error {
	if status.Success {
		_, err := fmt.Fprintf(w, "## %s finished successfully ##\n", p.Name)
		return err
	}

	_, err := fmt.Fprintf(w, "## %s finished unsuccessfully (Err: %d) ##\n", p.Name, status.Code)
	return err
}
