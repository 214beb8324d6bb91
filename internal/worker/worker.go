// Package worker provides a delay-queue worker pool. Jobs carry an
// optional eligibility time; a worker picking up a job that is not yet
// due waits for it in place rather than re-queueing.
package worker

import (
	"context"
	"sync"
	"time"
)

type Job struct {
	Payload any
	DueAt   time.Time // zero value means immediately due
}

type ProcessFunc func(ctx context.Context, job Job) error

type Pool struct {
	numWorkers int
	jobs       chan Job
	processor  ProcessFunc
	wg         sync.WaitGroup
}

func NewPool(numWorkers int, bufferSize int, processor ProcessFunc) *Pool {
	return &Pool{
		numWorkers: numWorkers,
		jobs:       make(chan Job, bufferSize),
		processor:  processor,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 1; i <= p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			if !p.waitUntilDue(ctx, job.DueAt) {
				return
			}
			p.processor(ctx, job)
		}
	}
}

// waitUntilDue blocks until dueAt (false if the context is cancelled first).
func (p *Pool) waitUntilDue(ctx context.Context, dueAt time.Time) bool {
	delay := time.Until(dueAt)
	if delay <= 0 {
		return true
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (p *Pool) Submit(job Job) {
	p.jobs <- job
}

func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}
