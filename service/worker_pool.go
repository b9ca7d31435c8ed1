package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ludo-technologies/dexstruct/domain"
)

// WorkerPool runs method jobs on a fixed number of goroutines
type WorkerPool struct {
	workers int
	timeout time.Duration
}

// NewWorkerPool creates a pool. workers <= 0 means one per CPU and a zero
// timeout leaves the deadline to the caller's context.
func NewWorkerPool(workers int, timeout time.Duration) *WorkerPool {
	return &WorkerPool{workers: workers, timeout: timeout}
}

var _ domain.MethodRunner = (*WorkerPool)(nil)

// Run executes every job and returns the job errors joined. Jobs that were
// never dispatched because ctx ended are reported through ctx.Err().
func (p *WorkerPool) Run(ctx context.Context, jobs []domain.MethodJob) error {
	if len(jobs) == 0 {
		return nil
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	queue := make(chan int)
	errs := make([]error, len(jobs))

	var wg sync.WaitGroup
	for w := p.size(len(jobs)); w > 0; w-- {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				errs[i] = p.runJob(ctx, jobs[i])
			}
		}()
	}

	sent := 0
dispatch:
	for i := range jobs {
		select {
		case queue <- i:
			sent++
		case <-ctx.Done():
			break dispatch
		}
	}
	close(queue)
	wg.Wait()

	if err := errors.Join(errs...); err != nil || sent < len(jobs) {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return fmt.Errorf("structuring timed out after %v: %w", p.timeout, ctx.Err())
		case ctx.Err() != nil:
			return fmt.Errorf("structuring cancelled: %w", ctx.Err())
		default:
			return err
		}
	}
	return nil
}

func (p *WorkerPool) runJob(ctx context.Context, job domain.MethodJob) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("method %s skipped: %w", job.Name, err)
	}
	if job.Run == nil {
		return fmt.Errorf("method %s has nothing to run", job.Name)
	}
	if err := job.Run(ctx); err != nil {
		return fmt.Errorf("method %s: %w", job.Name, err)
	}
	return nil
}

func (p *WorkerPool) size(jobs int) int {
	n := p.workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return min(n, jobs)
}
