package procpool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Result is the outcome of one probe execution.
type Result struct {
	Stdout   string
	ExitCode int
}

// Pool is a fixed-size pool of shell workers. The zero value is not usable;
// construct with New.
type Pool struct {
	workers chan *worker
	size    int
}

// New creates a pool with the given number of workers. Size must be
// positive.
func New(size int) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("procpool: size must be positive, got %d", size)
	}

	p := &Pool{
		workers: make(chan *worker, size),
		size:    size,
	}
	for i := 0; i < size; i++ {
		w, err := newWorker()
		if err != nil {
			return nil, fmt.Errorf("procpool: failed to create worker %d: %w", i, err)
		}
		p.workers <- w
	}
	return p, nil
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return p.size
}

// Exec runs the given shell script on an exclusively-held worker and
// returns its captured stdout and exit code. If all workers are busy the
// call queues until one frees up or the context is done. A non-zero exit is
// not an error; err is reserved for infrastructure failures (syntax errors,
// cancellation while queued or mid-run).
func (p *Pool) Exec(ctx context.Context, script string) (Result, error) {
	select {
	case w := <-p.workers:
		defer func() { p.workers <- w }()
		return w.exec(ctx, script)
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// worker owns one reusable shell interpreter.
type worker struct {
	parser *syntax.Parser
	runner *interp.Runner
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newWorker() (*worker, error) {
	w := &worker{parser: syntax.NewParser()}

	runner, err := interp.New(
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, &w.stdout, &w.stderr),
	)
	if err != nil {
		return nil, err
	}
	w.runner = runner
	return w, nil
}

// exec parses and runs one script, resetting the interpreter state left by
// the previous probe.
func (w *worker) exec(ctx context.Context, script string) (Result, error) {
	prog, err := w.parser.Parse(strings.NewReader(script), "probe")
	if err != nil {
		return Result{}, fmt.Errorf("probe syntax error: %w", err)
	}

	w.runner.Reset()
	w.stdout.Reset()
	w.stderr.Reset()

	if err := w.runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return Result{Stdout: w.stdout.String(), ExitCode: int(exitStatus)}, nil
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("probe execution failed: %w", err)
	}
	return Result{Stdout: w.stdout.String(), ExitCode: 0}, nil
}
