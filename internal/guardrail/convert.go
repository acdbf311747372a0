package guardrail

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/models"
)

const unknownResult = "UNKNOWN"

func buildInput(req models.ValidationRequest) *bedrockruntime.ApplyGuardrailInput {
	var content []types.GuardrailContentBlock
	if req.Query != "" {
		content = append(content, textBlock(req.Query, types.GuardrailContentQualifierQuery))
	}
	content = append(content, textBlock(req.Content, types.GuardrailContentQualifierGuardContent))

	return &bedrockruntime.ApplyGuardrailInput{
		GuardrailIdentifier: aws.String(req.GuardrailID),
		GuardrailVersion:    aws.String(versionOrDraft(req.GuardrailVersion)),
		Source:              sourceOf(req.Source),
		Content:             content,
	}
}

func textBlock(text string, qualifier types.GuardrailContentQualifier) types.GuardrailContentBlock {
	return &types.GuardrailContentBlockMemberText{
		Value: types.GuardrailTextBlock{
			Text:       aws.String(text),
			Qualifiers: []types.GuardrailContentQualifier{qualifier},
		},
	}
}

func sourceOf(source string) types.GuardrailContentSource {
	if strings.EqualFold(source, "INPUT") {
		return types.GuardrailContentSourceInput
	}
	return types.GuardrailContentSourceOutput
}

func versionOrDraft(version string) string {
	if version == "" {
		return DraftVersion
	}
	return version
}

// toAssessment flattens the automated reasoning part of a guardrail response.
func toAssessment(out *bedrockruntime.ApplyGuardrailOutput) *models.RawAssessment {
	assessment := &models.RawAssessment{
		Action: string(out.Action),
	}

	if out.Usage != nil {
		assessment.Usage.Policies = int(aws.ToInt32(out.Usage.AutomatedReasoningPolicies))
		assessment.Usage.PolicyUnits = int(aws.ToInt32(out.Usage.AutomatedReasoningPolicyUnits))
	}

	for _, a := range out.Assessments {
		if a.InvocationMetrics != nil {
			assessment.Usage.ProcessingTimeMS += aws.ToInt64(a.InvocationMetrics.GuardrailProcessingLatency)
		}
		if a.AutomatedReasoningPolicy == nil {
			continue
		}
		for _, f := range a.AutomatedReasoningPolicy.Findings {
			assessment.Findings = append(assessment.Findings, toRawFinding(f))
		}
	}

	return assessment
}

func toRawFinding(f types.GuardrailAutomatedReasoningFinding) models.RawFinding {
	switch v := f.(type) {
	case *types.GuardrailAutomatedReasoningFindingMemberValid:
		raw := models.RawFinding{
			Result:       "VALID",
			AppliedRules: ruleIDs(v.Value.SupportingRules),
		}
		addTranslation(&raw, v.Value.Translation)
		addWarning(&raw, v.Value.LogicWarning)
		return raw

	case *types.GuardrailAutomatedReasoningFindingMemberInvalid:
		raw := models.RawFinding{
			Result:       "INVALID",
			AppliedRules: ruleIDs(v.Value.ContradictingRules),
		}
		addTranslation(&raw, v.Value.Translation)
		for _, id := range raw.AppliedRules {
			raw.Violations = append(raw.Violations, fmt.Sprintf("Contradicts policy rule %s", id))
		}
		addWarning(&raw, v.Value.LogicWarning)
		return raw

	case *types.GuardrailAutomatedReasoningFindingMemberSatisfiable:
		raw := models.RawFinding{Result: "SATISFIABLE"}
		addTranslation(&raw, v.Value.Translation)
		if v.Value.ClaimsFalseScenario != nil {
			for _, s := range v.Value.ClaimsFalseScenario.Statements {
				if text := statementText(s); text != "" {
					raw.Suggestions = append(raw.Suggestions, "State whether "+text)
				}
			}
		}
		addWarning(&raw, v.Value.LogicWarning)
		return raw

	case *types.GuardrailAutomatedReasoningFindingMemberImpossible:
		raw := models.RawFinding{
			Result:       "IMPOSSIBLE",
			AppliedRules: ruleIDs(v.Value.ContradictingRules),
			Explanation:  "The premises of the answer contradict each other or the policy",
		}
		addTranslation(&raw, v.Value.Translation)
		addWarning(&raw, v.Value.LogicWarning)
		return raw

	case *types.GuardrailAutomatedReasoningFindingMemberTranslationAmbiguous:
		raw := models.RawFinding{
			Result:      "TRANSLATION_AMBIGUOUS",
			Explanation: fmt.Sprintf("The answer has %d possible interpretations", len(v.Value.Options)),
		}
		for i, opt := range v.Value.Options {
			var claims []string
			for _, tr := range opt.Translations {
				for _, c := range tr.Claims {
					if text := statementText(c); text != "" {
						claims = append(claims, text)
					}
				}
			}
			if len(claims) > 0 {
				raw.Suggestions = append(raw.Suggestions, fmt.Sprintf("Interpretation %d: %s", i+1, strings.Join(claims, "; ")))
			}
		}
		return raw

	case *types.GuardrailAutomatedReasoningFindingMemberTooComplex:
		return models.RawFinding{
			Result:      "TOO_COMPLEX",
			Explanation: "The answer contains too much information to verify within the processing limits",
		}

	case *types.GuardrailAutomatedReasoningFindingMemberNoTranslations:
		return models.RawFinding{
			Result:      "NO_TRANSLATIONS",
			Explanation: "No part of the answer could be translated into policy variables",
			Suggestions: []string{"Refer to the conditions the policy is defined over"},
		}

	case *types.UnknownUnionMember:
		return models.RawFinding{Result: strings.ToUpper(v.Tag)}

	default:
		return models.RawFinding{Result: unknownResult}
	}
}

// addTranslation copies premises and claims into variables keyed by their
// logic form, and records untranslated text in the explanation.
func addTranslation(raw *models.RawFinding, tr *types.GuardrailAutomatedReasoningTranslation) {
	if tr == nil {
		return
	}

	for _, s := range append(append([]types.GuardrailAutomatedReasoningStatement{}, tr.Premises...), tr.Claims...) {
		logic := aws.ToString(s.Logic)
		if logic == "" {
			continue
		}
		if raw.Variables == nil {
			raw.Variables = map[string]string{}
		}
		if _, exists := raw.Variables[logic]; !exists {
			raw.Variables[logic] = aws.ToString(s.NaturalLanguage)
		}
	}

	var claims []string
	for _, c := range tr.Claims {
		if text := statementText(c); text != "" {
			claims = append(claims, text)
		}
	}
	if len(claims) > 0 {
		appendExplanation(raw, "Claims checked: "+strings.Join(claims, "; "))
	}

	var untranslated []string
	for _, ref := range append(append([]types.GuardrailAutomatedReasoningInputTextReference{}, tr.UntranslatedPremises...), tr.UntranslatedClaims...) {
		if text := aws.ToString(ref.Text); text != "" {
			untranslated = append(untranslated, text)
		}
	}
	if len(untranslated) > 0 {
		appendExplanation(raw, "Not translated: "+strings.Join(untranslated, "; "))
	}
}

func addWarning(raw *models.RawFinding, w *types.GuardrailAutomatedReasoningLogicWarning) {
	if w == nil || w.Type == "" {
		return
	}
	appendExplanation(raw, fmt.Sprintf("Logic warning: %s", w.Type))
}

func appendExplanation(raw *models.RawFinding, line string) {
	if raw.Explanation == "" {
		raw.Explanation = line
		return
	}
	raw.Explanation += "\n" + line
}

func statementText(s types.GuardrailAutomatedReasoningStatement) string {
	if text := aws.ToString(s.NaturalLanguage); text != "" {
		return text
	}
	return aws.ToString(s.Logic)
}

func ruleIDs(rules []types.GuardrailAutomatedReasoningRule) []string {
	var ids []string
	for _, r := range rules {
		if id := aws.ToString(r.Identifier); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
