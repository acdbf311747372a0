package findings

import (
	"errors"
	"strings"

	"github.com/povarna/generative-ai-agents/arc-agent/internal/metrics"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/models"
	"github.com/rs/zerolog"
)

var ErrNilAssessment = errors.New("validator returned no assessment")

// precedence lists finding types from most to least severe.
var precedence = []models.FindingType{
	models.FindingInvalid,
	models.FindingNoData,
	models.FindingTranslationAmbiguous,
	models.FindingTooComplex,
	models.FindingSatisfiable,
	models.FindingValid,
}

const noFindingsExplanation = "No automated reasoning findings were reported"

// Classifier turns raw validator entries into canonical findings.
type Classifier struct {
	logger *zerolog.Logger
}

func NewClassifier(logger *zerolog.Logger) *Classifier {
	return &Classifier{
		logger: logger,
	}
}

// ParseFindingType maps a validator tag onto the closed set of finding types.
// Unknown tags map to TOO_COMPLEX and ok is false.
func ParseFindingType(tag string) (findingType models.FindingType, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case "VALID":
		return models.FindingValid, true
	case "INVALID":
		return models.FindingInvalid, true
	case "SATISFIABLE":
		return models.FindingSatisfiable, true
	case "NO_DATA", "NO_TRANSLATIONS":
		return models.FindingNoData, true
	case "TRANSLATION_AMBIGUOUS":
		return models.FindingTranslationAmbiguous, true
	case "TOO_COMPLEX":
		return models.FindingTooComplex, true
	default:
		return models.FindingTooComplex, false
	}
}

// Classify normalizes an assessment. The outcome always carries at least one
// finding; an assessment without findings yields a single VALID finding.
func (c *Classifier) Classify(assessment *models.RawAssessment) (models.ValidationOutcome, error) {
	if assessment == nil {
		return models.ValidationOutcome{}, ErrNilAssessment
	}

	outcome := models.ValidationOutcome{
		Usage: assessment.Usage,
	}

	for _, raw := range assessment.Findings {
		outcome.Findings = append(outcome.Findings, c.normalize(raw))
	}

	if len(outcome.Findings) == 0 {
		outcome.Findings = []models.Finding{{
			Result:      models.FindingValid,
			Explanation: noFindingsExplanation,
		}}
	}

	outcome.Action = models.ActionNone
	for _, f := range outcome.Findings {
		if f.Result != models.FindingValid {
			outcome.Action = models.ActionIntervened
			break
		}
	}

	if vendor := vendorAction(assessment.Action); vendor != "" && vendor != outcome.Action {
		c.logger.Debug().
			Str("vendor_action", assessment.Action).
			Str("derived_action", string(outcome.Action)).
			Msg("validator action differs from finding-derived action")
	}

	return outcome, nil
}

func (c *Classifier) normalize(raw models.RawFinding) models.Finding {
	findingType, ok := ParseFindingType(raw.Result)
	if !ok {
		c.logger.Warn().
			Str("raw_result", raw.Result).
			Str("classified_as", string(findingType)).
			Msg("unrecognized finding result")
		metrics.UnrecognizedFindings.WithLabelValues(raw.Result).Inc()
	}

	return models.Finding{
		Result:       findingType,
		RawResult:    raw.Result,
		Unrecognized: !ok,
		Variables:    copyMap(raw.Variables),
		AppliedRules: copyStrings(raw.AppliedRules),
		Explanation:  raw.Explanation,
		Violations:   copyStrings(raw.Violations),
		Suggestions:  copyStrings(raw.Suggestions),
	}
}

func vendorAction(action string) models.Action {
	switch strings.ToUpper(action) {
	case "NONE":
		return models.ActionNone
	case "GUARDRAIL_INTERVENED", "INTERVENED":
		return models.ActionIntervened
	default:
		return ""
	}
}

func rank(t models.FindingType) int {
	for i, p := range precedence {
		if p == t {
			return i
		}
	}
	return len(precedence)
}

// Dominant returns the most severe finding type. No findings means VALID.
func Dominant(findings []models.Finding) models.FindingType {
	dominant := models.FindingValid
	for _, f := range findings {
		if rank(f.Result) < rank(dominant) {
			dominant = f.Result
		}
	}
	return dominant
}

// Types returns the distinct finding types present, most severe first.
func Types(findings []models.Finding) []models.FindingType {
	seen := make(map[models.FindingType]bool, len(findings))
	for _, f := range findings {
		seen[f.Result] = true
	}

	types := make([]models.FindingType, 0, len(seen))
	for _, p := range precedence {
		if seen[p] {
			types = append(types, p)
		}
	}
	return types
}

func GroupByType(findings []models.Finding) map[models.FindingType][]models.Finding {
	grouped := make(map[models.FindingType][]models.Finding)
	for _, f := range findings {
		grouped[f.Result] = append(grouped[f.Result], f)
	}
	return grouped
}

// Merge folds findings of one type into a single finding for prompt building.
// Lists are concatenated in order and the first value of a variable wins.
func Merge(findings []models.Finding) models.Finding {
	if len(findings) == 0 {
		return models.Finding{}
	}

	merged := models.Finding{
		Result:    findings[0].Result,
		RawResult: findings[0].RawResult,
		Variables: map[string]string{},
	}

	var explanations []string
	for _, f := range findings {
		merged.Unrecognized = merged.Unrecognized || f.Unrecognized
		merged.AppliedRules = append(merged.AppliedRules, f.AppliedRules...)
		merged.Violations = append(merged.Violations, f.Violations...)
		merged.Suggestions = append(merged.Suggestions, f.Suggestions...)
		for k, v := range f.Variables {
			if _, exists := merged.Variables[k]; !exists {
				merged.Variables[k] = v
			}
		}
		if e := strings.TrimSpace(f.Explanation); e != "" {
			explanations = append(explanations, e)
		}
	}
	merged.Explanation = strings.Join(explanations, "\n")

	return merged
}

func copyStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
