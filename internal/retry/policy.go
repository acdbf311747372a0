package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

// Policy bounds how often and how patiently an outbound call is retried.
// MaxAttempts counts every call, the first one included.
type Policy struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	Multiplier    float64
	MaxDelay      time.Duration
	JitterPercent uint64
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:   2,
		BaseDelay:     200 * time.Millisecond,
		Multiplier:    2.0,
		MaxDelay:      5 * time.Second,
		JitterPercent: 10,
	}
}

func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.BaseDelay < 0 {
		return fmt.Errorf("negative base delay: %s", p.BaseDelay)
	}
	if p.Multiplier < 1 {
		return fmt.Errorf("multiplier must be >= 1, got %.2f", p.Multiplier)
	}
	if p.MaxDelay > 0 && p.MaxDelay < p.BaseDelay {
		return fmt.Errorf("max delay %s is below base delay %s", p.MaxDelay, p.BaseDelay)
	}
	if p.JitterPercent > 100 {
		return fmt.Errorf("jitter percent must be within [0, 100], got %d", p.JitterPercent)
	}
	return nil
}

// delay returns the wait before retry n (0-based), without jitter or cap.
func (p Policy) delay(n int) time.Duration {
	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(n))
	if d > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

func (p Policy) backoff() goretry.Backoff {
	n := 0
	var b goretry.Backoff = goretry.BackoffFunc(func() (time.Duration, bool) {
		d := p.delay(n)
		n++
		return d, false
	})

	if p.JitterPercent > 0 {
		b = goretry.WithJitterPercent(p.JitterPercent, b)
	}
	if p.MaxDelay > 0 {
		b = goretry.WithCappedDuration(p.MaxDelay, b)
	}
	return goretry.WithMaxRetries(uint64(p.attempts()-1), b)
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Budget is the longest time Do can take when every attempt runs for
// perAttempt: all attempts plus the worst-case backoff between them.
func (p Policy) Budget(perAttempt time.Duration) time.Duration {
	total := time.Duration(p.attempts()) * perAttempt
	for n := 0; n < p.attempts()-1; n++ {
		d := p.delay(n)
		d += d * time.Duration(p.JitterPercent) / 100
		if p.MaxDelay > 0 && d > p.MaxDelay {
			d = p.MaxDelay
		}
		total += d
	}
	return total
}

// Do calls fn until it succeeds, returns an error retryable rejects, or the
// attempts run out. attempt is 1-based. The returned count is the number of
// calls made; the returned error is the last one fn produced, or the context
// error if ctx ended while waiting.
func (p Policy) Do(ctx context.Context, retryable func(error) bool, fn func(ctx context.Context, attempt int) error) (int, error) {
	attempts := 0
	err := goretry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempts++
		err := fn(ctx, attempts)
		if err == nil {
			return nil
		}
		if retryable != nil && retryable(err) {
			return goretry.RetryableError(err)
		}
		return err
	})
	return attempts, err
}
