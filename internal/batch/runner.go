package batch

import (
	"context"
	"runtime"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/munsellkit/internal/convert"
)

// Converter runs a single conversion. *convert.Converter satisfies it.
type Converter interface {
	Convert(ctx context.Context, req convert.Request) convert.Result
}

// DefaultWorkers returns the number of CPUs, capped at 8.
func DefaultWorkers() int {
	return min(runtime.NumCPU(), 8)
}

// Runner executes job requests concurrently.
type Runner struct {
	conv    Converter
	workers int
	logger  hclog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets the worker count. Values below 1 select DefaultWorkers.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a Runner.
func NewRunner(conv Converter, opts ...RunnerOption) *Runner {
	r := &Runner{conv: conv, logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		r.workers = DefaultWorkers()
	}
	return r
}

type task struct {
	index int
	req   convert.Request
}

type outcome struct {
	index  int
	result convert.Result
}

// Run converts every request in job and returns the results in job order.
// A failing conversion does not stop the others. Requests not started
// before ctx is cancelled carry ctx.Err().
func (r *Runner) Run(ctx context.Context, job *Job) []convert.Result {
	results := make([]convert.Result, len(job.Requests))
	done := make([]bool, len(job.Requests))

	tasks := make(chan task, len(job.Requests))
	outcomes := make(chan outcome, len(job.Requests))

	workers := min(r.workers, max(len(job.Requests), 1))
	r.logger.Debug("running batch", "path", job.Path, "conversions", len(job.Requests), "workers", workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r.worker(ctx, workerID, tasks, outcomes)
		}(i)
	}

	go func() {
		defer close(tasks)
		for i, req := range job.Requests {
			select {
			case tasks <- task{index: i, req: req}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for o := range outcomes {
		results[o.index] = o.result
		done[o.index] = true
	}

	for i, req := range job.Requests {
		if done[i] {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		results[i] = convert.Result{
			Name: req.Name, Input: req.Input, From: req.From, To: req.To, Method: req.Method,
			Err: err, Error: err.Error(),
		}
	}
	return results
}

func (r *Runner) worker(ctx context.Context, workerID int, tasks <-chan task, outcomes chan<- outcome) {
	for {
		select {
		case t, ok := <-tasks:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				return
			}
			res := r.conv.Convert(ctx, t.req)
			if res.Err != nil {
				r.logger.Warn("conversion failed", "worker", workerID, "name", t.req.Name, "error", res.Err)
			}
			outcomes <- outcome{index: t.index, result: res}
		case <-ctx.Done():
			return
		}
	}
}
