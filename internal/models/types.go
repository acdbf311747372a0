package models

import (
	"time"
)

// FindingType is the canonical kind of an automated reasoning finding.
type FindingType string

const (
	FindingValid                FindingType = "VALID"
	FindingInvalid              FindingType = "INVALID"
	FindingSatisfiable          FindingType = "SATISFIABLE"
	FindingNoData               FindingType = "NO_DATA"
	FindingTranslationAmbiguous FindingType = "TRANSLATION_AMBIGUOUS"
	FindingTooComplex           FindingType = "TOO_COMPLEX"
)

// RequiresAction reports whether a finding of this type calls for a rewrite.
func (t FindingType) RequiresAction() bool {
	return t != FindingValid && t != ""
}

func (t FindingType) String() string {
	return string(t)
}

// ActionableTypes lists every finding type that has a remediation template.
func ActionableTypes() []FindingType {
	return []FindingType{
		FindingInvalid,
		FindingNoData,
		FindingTranslationAmbiguous,
		FindingTooComplex,
		FindingSatisfiable,
	}
}

type Action string

const (
	ActionNone       Action = "NONE"
	ActionIntervened Action = "INTERVENED"
)

// Raw validator output, before classification

type RawFinding struct {
	Result       string            `json:"result"`
	Variables    map[string]string `json:"variables,omitempty"`
	AppliedRules []string          `json:"applied_rules,omitempty"`
	Explanation  string            `json:"explanation,omitempty"`
	Violations   []string          `json:"violations,omitempty"`
	Suggestions  []string          `json:"suggestions,omitempty"`
}

type RawAssessment struct {
	Action   string       `json:"action"`
	Findings []RawFinding `json:"findings"`
	Usage    Usage        `json:"usage"`
}

// Usage reports what the validator consumed for one call.
type Usage struct {
	Policies         int   `json:"automated_reasoning_policies"`
	PolicyUnits      int   `json:"automated_reasoning_policy_units"`
	ProcessingTimeMS int64 `json:"processing_time_ms"`
}

// Finding is one canonical verdict. RawResult keeps the vendor tag so that
// unrecognized values stay visible after being mapped to TOO_COMPLEX.
type Finding struct {
	Result       FindingType       `json:"result"`
	RawResult    string            `json:"raw_result,omitempty"`
	Unrecognized bool              `json:"unrecognized,omitempty"`
	Variables    map[string]string `json:"variables,omitempty"`
	AppliedRules []string          `json:"applied_rules,omitempty"`
	Explanation  string            `json:"explanation,omitempty"`
	Violations   []string          `json:"violations,omitempty"`
	Suggestions  []string          `json:"suggestions,omitempty"`
}

// ValidationOutcome holds at least one finding. Action is NONE iff every
// finding is VALID.
type ValidationOutcome struct {
	Action   Action    `json:"action"`
	Findings []Finding `json:"findings"`
	Usage    Usage     `json:"usage"`
}

// Input message

type ValidationRequest struct {
	GuardrailID      string `json:"guardrail_id" validate:"required"`
	GuardrailVersion string `json:"guardrail_version,omitempty"`
	Source           string `json:"source,omitempty" validate:"omitempty,oneof=INPUT OUTPUT input output"`
	Query            string `json:"query,omitempty" validate:"maxbytes"`
	Content          string `json:"content" validate:"required,maxbytes"`
}

type RewriteRequest struct {
	RequestID        string `json:"request_id,omitempty"`
	UserQuery        string `json:"user_query" validate:"required,maxbytes"`
	OriginalResponse string `json:"original_response" validate:"required,maxbytes"`
	GuardrailID      string `json:"guardrail_id" validate:"required"`
	GuardrailVersion string `json:"guardrail_version,omitempty"`
	ModelID          string `json:"model_id,omitempty"`
	Domain           string `json:"domain,omitempty"`
	PolicyContext    string `json:"policy_context,omitempty" validate:"maxbytes"`
}

// RewriteOutcome is the rewrite part of a response. When Rewritten is false
// RewrittenText equals the original response.
type RewriteOutcome struct {
	RewrittenText       string      `json:"rewritten_text"`
	Rewritten           bool        `json:"rewritten"`
	DominantFindingType FindingType `json:"dominant_finding_type"`
	Message             string      `json:"message"`
}

// Final output returned to callers
type RewriteEnvelope struct {
	RequestID           string        `json:"request_id"`
	Query               string        `json:"query"`
	OriginalResponse    string        `json:"original_response"`
	RewrittenResponse   string        `json:"rewritten_response"`
	Rewritten           bool          `json:"rewritten"`
	Findings            []Finding     `json:"findings"`
	FindingTypes        []FindingType `json:"finding_types"`
	DominantFindingType FindingType   `json:"dominant_finding_type"`
	FindingsCount       int           `json:"findings_count"`
	Domain              string        `json:"domain"`
	Message             string        `json:"message"`
	GuardrailID         string        `json:"guardrail_id"`
	GuardrailVersion    string        `json:"guardrail_version"`
	Usage               Usage         `json:"usage"`
	CompletedAt         time.Time     `json:"completed_at"`
}

func (e RewriteEnvelope) Outcome() RewriteOutcome {
	return RewriteOutcome{
		RewrittenText:       e.RewrittenResponse,
		Rewritten:           e.Rewritten,
		DominantFindingType: e.DominantFindingType,
		Message:             e.Message,
	}
}

type ValidationReport struct {
	GuardrailID         string        `json:"guardrail_id"`
	GuardrailVersion    string        `json:"guardrail_version"`
	Action              Action        `json:"action"`
	Valid               bool          `json:"valid"`
	Findings            []Finding     `json:"findings"`
	FindingTypes        []FindingType `json:"finding_types"`
	DominantFindingType FindingType   `json:"dominant_finding_type"`
	ContentLength       int           `json:"content_length"`
	Usage               Usage         `json:"usage"`
}
