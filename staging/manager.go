// Package staging implements the Output Sink Manager: it owns the
// transient per-pipeline staging area that each pipeline's aggregate
// stdout is captured into, so that concurrently running pipelines never
// interleave their output on the supervisor's own stdout.
package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pipeyard/pipeyard/plan"
)

// ErrStagingUnavailable is returned when the staging directory already
// exists or cannot be created. The supervisor must abort without
// spawning any pipeline when it sees this error.
var ErrStagingUnavailable = errors.New("staging area unavailable")

const (
	// DefaultDir is the staging directory path used when the caller
	// doesn't configure one.
	DefaultDir = "./tmp/"
	// DefaultExt is the per-pipeline staging file extension used when
	// the caller doesn't configure one.
	DefaultExt = ".out"

	// dirPerm grants the owner read/write/execute and the group and
	// everyone else read/execute, per spec.md §4.2.
	dirPerm = 0o755
)

// Manager owns the staging directory and the lifecycle of every
// pipeline's staging file within it.
type Manager struct {
	dir   string
	ext   string
	files []string
}

// New returns a Manager rooted at dir, naming staging files with ext. An
// empty dir/ext falls back to DefaultDir/DefaultExt.
func New(dir, ext string) *Manager {
	if dir == "" {
		dir = DefaultDir
	}
	if ext == "" {
		ext = DefaultExt
	}
	return &Manager{dir: dir, ext: ext}
}

// Prepare creates the staging directory and an empty staging file for
// every pipeline, assigning each Pipeline.Staging in place. It fails with
// ErrStagingUnavailable if the directory already exists or can't be
// created; the caller must not spawn any pipeline in that case.
func (m *Manager) Prepare(pipelines []*plan.Pipeline) error {
	if _, err := os.Stat(m.dir); err == nil {
		return fmt.Errorf("%w: %q already exists", ErrStagingUnavailable, m.dir)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrStagingUnavailable, err)
	}

	if err := os.MkdirAll(m.dir, dirPerm); err != nil {
		return fmt.Errorf("%w: %v", ErrStagingUnavailable, err)
	}

	for _, p := range pipelines {
		path := filepath.Join(m.dir, p.Name+m.ext)
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("%w: creating staging file for %q: %v", ErrStagingUnavailable, p.Name, err)
		}
		_ = f.Close()

		p.Staging = path
		m.files = append(m.files, path)
	}

	return nil
}

// Remove deletes one pipeline's staging file, immediately after its
// report has been emitted — spec.md §8 invariant 1 requires that a
// pipeline's staging file is gone by the time its own report completes,
// not merely by supervisor exit.
func (m *Manager) Remove(p *plan.Pipeline) error {
	if err := os.Remove(p.Staging); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Cleanup removes every staging file and then the staging directory
// itself. It is safe to call even if Prepare partially failed, and even
// if every file was already individually removed via Remove.
func (m *Manager) Cleanup() error {
	var firstErr error
	for _, f := range m.files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	if err := os.Remove(m.dir); err != nil && !os.IsNotExist(err) && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
