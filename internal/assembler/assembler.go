package assembler

import (
	"fmt"
	"time"

	"github.com/povarna/generative-ai-agents/arc-agent/internal/findings"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/guardrail"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/models"
)

const (
	MessageClean    = "validated clean"
	MessageFallback = "rewrite failed, returning original response"
)

// RewriteMessage is the message of a successful rewrite for findingType.
func RewriteMessage(findingType models.FindingType) string {
	return fmt.Sprintf("rewritten for %s", findingType)
}

// RewriteResult is what the generation stage produced, if it ran at all.
type RewriteResult struct {
	Attempted bool
	Text      string
	Succeeded bool
	Reason    string
}

type Assembler struct {
	defaultDomain string
	now           func() time.Time
}

func NewAssembler(defaultDomain string) *Assembler {
	return &Assembler{
		defaultDomain: defaultDomain,
		now:           time.Now,
	}
}

// Assemble builds the response envelope. The original response is always
// carried verbatim, and it is also the rewritten response unless a rewrite
// was required and succeeded.
func (a *Assembler) Assemble(req models.RewriteRequest, outcome models.ValidationOutcome, dominant models.FindingType, rw *RewriteResult) models.RewriteEnvelope {
	envelope := models.RewriteEnvelope{
		RequestID:           req.RequestID,
		Query:               req.UserQuery,
		OriginalResponse:    req.OriginalResponse,
		RewrittenResponse:   req.OriginalResponse,
		Findings:            outcome.Findings,
		FindingTypes:        findings.Types(outcome.Findings),
		DominantFindingType: dominant,
		FindingsCount:       len(outcome.Findings),
		Domain:              req.Domain,
		GuardrailID:         req.GuardrailID,
		GuardrailVersion:    req.GuardrailVersion,
		Usage:               outcome.Usage,
		CompletedAt:         a.now().UTC(),
	}
	if envelope.Domain == "" {
		envelope.Domain = a.defaultDomain
	}
	if envelope.GuardrailVersion == "" {
		envelope.GuardrailVersion = guardrail.DraftVersion
	}
	if envelope.Findings == nil {
		envelope.Findings = []models.Finding{}
	}

	switch {
	case !dominant.RequiresAction():
		envelope.Message = MessageClean
	case rw != nil && rw.Attempted && rw.Succeeded && rw.Text != "":
		envelope.RewrittenResponse = rw.Text
		envelope.Rewritten = true
		envelope.Message = RewriteMessage(dominant)
	default:
		envelope.Message = MessageFallback
		if rw != nil && rw.Reason != "" {
			envelope.Message = MessageFallback + ": " + rw.Reason
		}
	}

	return envelope
}
