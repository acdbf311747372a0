package outputchecks

import (
	"strings"
	"time"
)

type FormatChecker struct {
}

func NewFormatChecker() *FormatChecker {
	return &FormatChecker{}
}

func (c *FormatChecker) Check(candidate Candidate) (result Result) {
	result = Result{Name: "format-checker"}
	now := time.Now()
	defer func() { result.Duration = time.Since(now) }()

	answer := strings.TrimSpace(candidate.Rewritten)

	if len(answer) == 0 {
		result.Reason = "Empty rewrite"
		return result
	}

	if len(strings.Fields(answer)) < 2 {
		result.Reason = "Rewrite is a single word"
		return result
	}

	result.Passed = true
	result.Reason = "Valid rewrite"
	return result
}
