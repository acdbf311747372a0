package outputchecks

import (
	"sync"
	"time"
)

// Candidate is a generated rewrite together with the text it replaces.
type Candidate struct {
	Original  string
	Rewritten string
}

type Result struct {
	Name     string
	Passed   bool
	Reason   string
	Duration time.Duration
}

type Checker interface {
	Check(candidate Candidate) Result
}

type Runner struct {
	Checkers []Checker
}

func NewRunner(checkers ...Checker) *Runner {
	return &Runner{
		Checkers: checkers,
	}
}

// DefaultRunner runs every check a rewrite must pass before it is returned.
func DefaultRunner() *Runner {
	return NewRunner(NewFormatChecker(), NewPlaceholderChecker(), NewLengthChecker())
}

// Run executes all checkers concurrently. Results keep the checker order.
func (r *Runner) Run(candidate Candidate) []Result {
	results := make([]Result, len(r.Checkers))
	var wg sync.WaitGroup

	for i, checker := range r.Checkers {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			results[i] = c.Check(candidate)
		}(i, checker)
	}

	wg.Wait()
	return results
}

// Passed returns the first failed result, if any.
func Passed(results []Result) (Result, bool) {
	for _, r := range results {
		if !r.Passed {
			return r, false
		}
	}
	return Result{}, true
}
