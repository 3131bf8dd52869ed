package pipe

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// Pipeline wires together the Stages of one job chain: it allocates the
// anonymous channel between every adjacent pair, starts every stage, and
// determines the pipeline's terminal status from its tail stage alone.
//
// Endpoint-ownership invariant: once Start returns, channel i's write
// endpoint is held only by stage i, and its read endpoint only by stage
// i+1. The parent (this Pipeline) holds no endpoint of any inter-stage
// channel. Violating this — the parent or a non-adjacent stage retaining
// an endpoint — means a downstream reader never sees EOF.
type Pipeline struct {
	stdin  io.ReadCloser
	stdout io.WriteCloser
	stages []Stage
	cancel func()

	started uint32

	eventHandler func(*Event)
}

// Event is emitted for noteworthy occurrences during a Pipeline's
// execution (a stage failing to start, a stage's final error). It is a
// diagnostic aid, not the user-facing report — see the report package for
// that.
type Event struct {
	Stage string
	Msg   string
	Err   error
}

var emptyEventHandler = func(*Event) {}

// Option configures a Pipeline.
type Option func(*Pipeline)

// New returns a Pipeline with the given options applied.
func New(options ...Option) *Pipeline {
	p := &Pipeline{eventHandler: emptyEventHandler}
	for _, o := range options {
		o(p)
	}
	return p
}

// WithStdin arranges for the first stage's input to come from stdin. The
// Pipeline never closes a stdin supplied this way — ownership stays with
// the caller (this matters when stdin is the supervisor's own inherited
// stdin, shared by other concurrent pipelines' default cases).
func WithStdin(stdin io.Reader) Option {
	return func(p *Pipeline) {
		p.stdin = newReaderNopCloser(stdin)
	}
}

// WithStdoutCloser arranges for the last stage's output to go to stdout,
// which the Pipeline closes: an *os.File as soon as that stage has
// started (the child holds its own copy), any other io.WriteCloser once
// that stage exits. pipeyard always opens
// a fresh staging file for this, so closing it here is exactly the
// "staging file exists between creation and cleanup" lifecycle the
// Output Sink Manager expects.
func WithStdoutCloser(stdout io.WriteCloser) Option {
	return func(p *Pipeline) {
		p.stdout = stdout
	}
}

// WithEventHandler installs a diagnostic event handler.
func WithEventHandler(handler func(*Event)) Option {
	return func(p *Pipeline) {
		p.eventHandler = handler
	}
}

func (p *Pipeline) hasStarted() bool {
	return atomic.LoadUint32(&p.started) != 0
}

// Add appends stages to the pipeline, in head-to-tail order.
func (p *Pipeline) Add(stages ...Stage) {
	if p.hasStarted() {
		panic("attempt to modify a pipeline that has already started")
	}
	p.stages = append(p.stages, stages...)
}

type stageIO struct {
	stdin  io.ReadCloser
	stdout io.WriteCloser
}

// Start starts every stage of the pipeline. If it returns without error,
// Wait must be called to free resources and reap every child.
func (p *Pipeline) Start(ctx context.Context) error {
	if p.hasStarted() {
		panic("attempt to start a pipeline that has already started")
	}
	if len(p.stages) == 0 {
		panic("attempt to start a pipeline with no stages")
	}
	atomic.StoreUint32(&p.started, 1)
	ctx, p.cancel = context.WithCancel(ctx)

	ios := make([]stageIO, len(p.stages))
	if p.stdin != nil {
		ios[0].stdin = p.stdin
	}
	if p.stdout != nil {
		ios[len(p.stages)-1].stdout = p.stdout
	}

	abort := func(i int, err error) error {
		if ios[i].stdin != nil {
			_ = ios[i].stdin.Close()
		}
		p.cancel()
		for _, s := range p.stages[:i] {
			_ = s.Wait()
		}
		p.eventHandler(&Event{
			Stage: p.stages[i].Name(),
			Msg:   "failed to start pipeline stage",
			Err:   err,
		})
		return fmt.Errorf("starting pipeline stage %q: %w", p.stages[i].Name(), err)
	}

	// Allocate channel i (the anonymous pipe between stage i and stage
	// i+1) immediately before starting stage i, for every stage but the
	// last — the last stage's stdout was already set above, if any.
	for i, s := range p.stages[:len(p.stages)-1] {
		r, w, err := os.Pipe()
		if err != nil {
			return abort(i, err)
		}
		ios[i+1].stdin = r
		ios[i].stdout = w

		if err := s.Start(ctx, ios[i].stdin, ios[i].stdout); err != nil {
			_ = r.Close()
			_ = w.Close()
			return abort(i, err)
		}
	}

	last := len(p.stages) - 1
	if err := p.stages[last].Start(ctx, ios[last].stdin, ios[last].stdout); err != nil {
		return abort(last, err)
	}

	return nil
}

// Wait waits for every stage to exit, so that none are left as zombies,
// and returns the tail stage's result: the pipeline's status is defined
// entirely by its last stage (see package executor for how that result is
// turned into an exit code or signal number). Errors from any stage
// other than the tail are discarded — a closed downstream pipe commonly
// makes an upstream stage exit with a "broken pipe" error, and that is
// expected, not a pipeline failure.
func (p *Pipeline) Wait() error {
	if !p.hasStarted() {
		panic("unable to wait on a pipeline that has not started")
	}
	defer p.cancel()

	last := len(p.stages) - 1

	var wg sync.WaitGroup
	wg.Add(last)
	for _, s := range p.stages[:last] {
		s := s
		go func() {
			defer wg.Done()
			_ = s.Wait()
		}()
	}

	err := p.stages[last].Wait()
	wg.Wait()

	if err != nil {
		p.eventHandler(&Event{
			Stage: p.stages[last].Name(),
			Msg:   "pipeline tail exited with an error",
			Err:   err,
		})
	}
	return err
}

// Run starts and waits for the pipeline.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	return p.Wait()
}
