package scanner

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Pool bounds how many analyses run at once and how long each may take.
type Pool struct {
	maxInFlight int
	taskTimeout time.Duration
}

// NewPool clamps maxInFlight to at least 1; a non-positive taskTimeout disables the per-task deadline.
func NewPool(maxInFlight int, taskTimeout time.Duration) *Pool {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Pool{
		maxInFlight: maxInFlight,
		taskTimeout: taskTimeout,
	}
}

func (p *Pool) MaxInFlight() int           { return p.maxInFlight }
func (p *Pool) TaskTimeout() time.Duration { return p.taskTimeout }

// Run calls task for every index in [0, n) and returns once all calls have returned.
// Each call gets its own deadline derived from ctx; one task finishing early or
// late never cancels another.
func (p *Pool) Run(ctx context.Context, n int, task func(ctx context.Context, i int)) {
	var g errgroup.Group
	g.SetLimit(p.maxInFlight)

	for i := range n {
		g.Go(func() error {
			taskCtx, cancel := p.taskContext(ctx)
			defer cancel()
			task(taskCtx, i)
			return nil
		})
	}

	_ = g.Wait()
}

func (p *Pool) taskContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.taskTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.taskTimeout)
}
