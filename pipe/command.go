package pipe

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

// commandStage is a Stage that runs one job as an external command,
// piping data through its stdin and stdout exactly as the Pipeline
// wired it up. Its stderr is captured separately so it can be attached
// to any *exec.ExitError the command produces.
type commandStage struct {
	name string
	cmd  *exec.Cmd

	// lateClosers are closed only after the command has exited: they are
	// the non-*os.File stdin/stdout the caller passed in, which must
	// stay open for as long as the subprocess might still be copying
	// through them.
	lateClosers []io.Closer

	wg     errgroup.Group
	stderr bytes.Buffer
}

var _ Stage = (*commandStage)(nil)

// Command returns a Stage that runs the given executable with the given
// arguments.
func Command(name, exec string, args ...string) Stage {
	return &commandStage{
		name: name,
		cmd:  newCmd(exec, args),
	}
}

func (s *commandStage) Name() string {
	return s.name
}

func (s *commandStage) Start(ctx context.Context, stdin io.ReadCloser, stdout io.WriteCloser) error {
	if stdin != nil {
		switch stdin := stdin.(type) {
		case readerNopCloser:
			// Unwrap so that an underlying *os.File can be passed to
			// exec.Cmd directly, instead of being copied through a pipe.
			s.cmd.Stdin = stdin.Reader
		case *os.File:
			// exec.Cmd dup()s this for the child; our copy can close as
			// soon as Start() returns.
			s.cmd.Stdin = stdin
			defer func() { _ = stdin.Close() }()
		default:
			s.cmd.Stdin = stdin
			s.lateClosers = append(s.lateClosers, stdin)
		}
	}

	if stdout != nil {
		switch stdout := stdout.(type) {
		case writerNopCloser:
			s.cmd.Stdout = stdout.Writer
		case *os.File:
			s.cmd.Stdout = stdout
			defer func() { _ = stdout.Close() }()
		default:
			s.cmd.Stdout = stdout
			s.lateClosers = append(s.lateClosers, stdout)
		}
	}

	if s.cmd.Stderr == nil {
		// Don't just set cmd.Stderr = &s.stderr: that races with
		// cmd.Wait() closing the pipe before all stderr is read. Doing
		// it ourselves with an explicit pipe and goroutine means
		// Wait() can block until every byte is copied.
		p, err := s.cmd.StderrPipe()
		if err != nil {
			return err
		}
		s.wg.Go(func() error {
			_, err := io.Copy(&s.stderr, p)
			if err != nil && !errors.Is(err, os.ErrClosed) {
				return err
			}
			return nil
		})
	}

	return s.cmd.Start()
}

// filterCmdError attaches captured stderr to a *exec.ExitError so a
// failure report can include it; anything else (including nil) passes
// through unchanged.
func (s *commandStage) filterCmdError(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitErr.Stderr = s.stderr.Bytes()
	}
	return err
}

func (s *commandStage) Wait() error {
	wgErr := s.wg.Wait()

	err := s.filterCmdError(s.cmd.Wait())

	for _, closer := range s.lateClosers {
		if closeErr := closer.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}

	if err == nil {
		err = wgErr
	}

	return err
}
