package outputchecks

import (
	"fmt"
	"time"
)

const (
	minRatio = 0.2
	maxRatio = 20.0

	// minGrowthBase is the smallest length the upper ratio is measured
	// against, so a one-word original can still get a full sentence.
	minGrowthBase = 64
)

type LengthChecker struct {
}

func NewLengthChecker() *LengthChecker {
	return &LengthChecker{}
}

// Check compares the rewrite length with the original answer. Rewrites that
// lose most of the text, or balloon far beyond it, are rejected.
func (c *LengthChecker) Check(candidate Candidate) (result Result) {
	result = Result{Name: "length-checker"}
	now := time.Now()
	defer func() { result.Duration = time.Since(now) }()

	originalLength := len(candidate.Original)
	if originalLength == 0 {
		result.Passed = true
		result.Reason = "No original to compare with"
		return result
	}

	ratio := float64(len(candidate.Rewritten)) / float64(originalLength)
	growth := float64(len(candidate.Rewritten)) / float64(max(originalLength, minGrowthBase))

	switch {
	case ratio < minRatio:
		result.Reason = fmt.Sprintf("Rewrite is %.2f times the original length", ratio)
	case growth > maxRatio:
		result.Reason = fmt.Sprintf("Rewrite is %.1f times longer than the original", ratio)
	default:
		result.Passed = true
		result.Reason = "Rewrite length is acceptable"
	}
	return result
}
