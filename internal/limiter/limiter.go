package limiter

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds the number of concurrent outbound calls shared by the
// guardrail client and the generation providers. A nil Limiter admits
// everything.
type Limiter struct {
	sem  *semaphore.Weighted
	size int64
}

// New returns a limiter admitting n concurrent holders, or nil when n <= 0.
func New(n int) *Limiter {
	if n <= 0 {
		return nil
	}
	return &Limiter{
		sem:  semaphore.NewWeighted(int64(n)),
		size: int64(n),
	}
}

// Acquire blocks until a slot is free or ctx ends. The returned release must
// be called exactly once.
func (l *Limiter) Acquire(ctx context.Context) (func(), error) {
	if l == nil {
		return func() {}, nil
	}
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { l.sem.Release(1) }, nil
}

func (l *Limiter) Size() int {
	if l == nil {
		return 0
	}
	return int(l.size)
}
