package outputchecks

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/arc-agent/internal/templates"
)

var templateAction = regexp.MustCompile(`\{\{[^}]*\}\}`)

// PlaceholderChecker rejects output that still carries template syntax or a
// bare {name} token for a known placeholder.
type PlaceholderChecker struct {
	bare *regexp.Regexp
}

func NewPlaceholderChecker() *PlaceholderChecker {
	names := make([]string, len(templates.Placeholders))
	for i, p := range templates.Placeholders {
		names[i] = regexp.QuoteMeta(p)
	}
	return &PlaceholderChecker{
		bare: regexp.MustCompile(`\{\s*(` + strings.Join(names, "|") + `)\s*\}`),
	}
}

func (c *PlaceholderChecker) Check(candidate Candidate) (result Result) {
	result = Result{Name: "placeholder-checker"}
	now := time.Now()
	defer func() { result.Duration = time.Since(now) }()

	// Placeholders quoted from the original answer are not our leak.
	if m := leaked(templateAction, candidate); m != "" {
		result.Reason = fmt.Sprintf("Rewrite contains unresolved template action %s", m)
		return result
	}
	if m := leaked(c.bare, candidate); m != "" {
		result.Reason = fmt.Sprintf("Rewrite contains unresolved placeholder %s", m)
		return result
	}

	result.Passed = true
	result.Reason = "No unresolved placeholders"
	return result
}

// leaked returns the first match in the rewrite that the original does not contain.
func leaked(re *regexp.Regexp, candidate Candidate) string {
	for _, m := range re.FindAllString(candidate.Rewritten, -1) {
		if !strings.Contains(candidate.Original, m) {
			return m
		}
	}
	return ""
}
