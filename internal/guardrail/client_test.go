package guardrail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/models"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/retry"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuntime struct {
	outputs []*bedrockruntime.ApplyGuardrailOutput
	errs    []error
	inputs  []*bedrockruntime.ApplyGuardrailInput
}

func (f *fakeRuntime) ApplyGuardrail(ctx context.Context, params *bedrockruntime.ApplyGuardrailInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ApplyGuardrailOutput, error) {
	i := len(f.inputs)
	f.inputs = append(f.inputs, params)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.outputs) {
		return f.outputs[i], nil
	}
	return &bedrockruntime.ApplyGuardrailOutput{Action: types.GuardrailActionNone}, nil
}

func newTestClient(runtime RuntimeAPI) *Client {
	logger := zerolog.Nop()
	return NewClient(runtime, Config{
		Timeout: time.Second,
		Policy:  retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 1},
	}, nil, &logger)
}

func validationRequest() models.ValidationRequest {
	return models.ValidationRequest{
		GuardrailID: "gr-123",
		Query:       "Am I eligible for parental leave?",
		Content:     "Yes, all employees are eligible.",
	}
}

func invalidOutput() *bedrockruntime.ApplyGuardrailOutput {
	return &bedrockruntime.ApplyGuardrailOutput{
		Action: types.GuardrailActionGuardrailIntervened,
		Usage: &types.GuardrailUsage{
			AutomatedReasoningPolicies:    aws.Int32(1),
			AutomatedReasoningPolicyUnits: aws.Int32(2),
		},
		Assessments: []types.GuardrailAssessment{{
			InvocationMetrics: &types.GuardrailInvocationMetrics{
				GuardrailProcessingLatency: aws.Int64(120),
			},
			AutomatedReasoningPolicy: &types.GuardrailAutomatedReasoningPolicyAssessment{
				Findings: []types.GuardrailAutomatedReasoningFinding{
					&types.GuardrailAutomatedReasoningFindingMemberInvalid{
						Value: types.GuardrailAutomatedReasoningInvalidFinding{
							Translation: &types.GuardrailAutomatedReasoningTranslation{
								Premises: []types.GuardrailAutomatedReasoningStatement{{
									Logic:           aws.String("tenure_months"),
									NaturalLanguage: aws.String("any tenure"),
								}},
								Claims: []types.GuardrailAutomatedReasoningStatement{{
									Logic:           aws.String("is_eligible"),
									NaturalLanguage: aws.String("the employee is eligible"),
								}},
							},
							ContradictingRules: []types.GuardrailAutomatedReasoningRule{{
								Identifier: aws.String("rule-tenure"),
							}},
						},
					},
					&types.GuardrailAutomatedReasoningFindingMemberImpossible{},
					&types.UnknownUnionMember{Tag: "futureResult"},
				},
			},
		}},
	}
}

func TestApply_ConvertsFindings(t *testing.T) {
	runtime := &fakeRuntime{outputs: []*bedrockruntime.ApplyGuardrailOutput{invalidOutput()}}

	assessment, err := newTestClient(runtime).Apply(context.Background(), validationRequest())
	require.NoError(t, err)

	assert.Equal(t, "GUARDRAIL_INTERVENED", assessment.Action)
	require.Len(t, assessment.Findings, 3)

	invalid := assessment.Findings[0]
	assert.Equal(t, "INVALID", invalid.Result)
	assert.Equal(t, []string{"rule-tenure"}, invalid.AppliedRules)
	assert.Equal(t, "any tenure", invalid.Variables["tenure_months"])
	assert.Equal(t, "the employee is eligible", invalid.Variables["is_eligible"])
	assert.NotEmpty(t, invalid.Violations)
	assert.Contains(t, invalid.Explanation, "the employee is eligible")

	assert.Equal(t, "IMPOSSIBLE", assessment.Findings[1].Result)
	assert.Equal(t, "FUTURERESULT", assessment.Findings[2].Result)

	assert.Equal(t, 1, assessment.Usage.Policies)
	assert.Equal(t, 2, assessment.Usage.PolicyUnits)
	assert.Equal(t, int64(120), assessment.Usage.ProcessingTimeMS)
}

func TestApply_BuildsInput(t *testing.T) {
	runtime := &fakeRuntime{}

	_, err := newTestClient(runtime).Apply(context.Background(), validationRequest())
	require.NoError(t, err)
	require.Len(t, runtime.inputs, 1)

	input := runtime.inputs[0]
	assert.Equal(t, "gr-123", aws.ToString(input.GuardrailIdentifier))
	assert.Equal(t, DraftVersion, aws.ToString(input.GuardrailVersion))
	assert.Equal(t, types.GuardrailContentSourceOutput, input.Source)
	require.Len(t, input.Content, 2)

	query, ok := input.Content[0].(*types.GuardrailContentBlockMemberText)
	require.True(t, ok)
	assert.Equal(t, "Am I eligible for parental leave?", aws.ToString(query.Value.Text))
	assert.Equal(t, []types.GuardrailContentQualifier{types.GuardrailContentQualifierQuery}, query.Value.Qualifiers)

	content, ok := input.Content[1].(*types.GuardrailContentBlockMemberText)
	require.True(t, ok)
	assert.Equal(t, []types.GuardrailContentQualifier{types.GuardrailContentQualifierGuardContent}, content.Value.Qualifiers)
}

func TestApply_NoAutomatedReasoningFindings(t *testing.T) {
	assessment, err := newTestClient(&fakeRuntime{}).Apply(context.Background(), validationRequest())
	require.NoError(t, err)

	assert.Equal(t, "NONE", assessment.Action)
	assert.Empty(t, assessment.Findings)
}

func TestApply_RetriesThrottling(t *testing.T) {
	throttled := &smithy.GenericAPIError{Code: "ThrottlingException", Message: "Rate exceeded"}
	runtime := &fakeRuntime{
		errs:    []error{throttled, throttled},
		outputs: []*bedrockruntime.ApplyGuardrailOutput{nil, nil, invalidOutput()},
	}

	assessment, err := newTestClient(runtime).Apply(context.Background(), validationRequest())
	require.NoError(t, err)
	assert.Len(t, runtime.inputs, 3)
	assert.Len(t, assessment.Findings, 3)
}

func TestApply_ThrottlingExhausted(t *testing.T) {
	throttled := &smithy.GenericAPIError{Code: "ThrottlingException"}
	runtime := &fakeRuntime{errs: []error{throttled, throttled, throttled, throttled}}

	_, err := newTestClient(runtime).Apply(context.Background(), validationRequest())

	var vse *ValidationServiceError
	require.True(t, errors.As(err, &vse))
	assert.True(t, vse.Throttling)
	assert.Equal(t, "ThrottlingException", vse.Code)
	assert.Len(t, runtime.inputs, 3)
}

func TestApply_OtherErrorsNotRetried(t *testing.T) {
	runtime := &fakeRuntime{errs: []error{&smithy.GenericAPIError{Code: "ResourceNotFoundException"}}}

	_, err := newTestClient(runtime).Apply(context.Background(), validationRequest())

	var vse *ValidationServiceError
	require.True(t, errors.As(err, &vse))
	assert.False(t, vse.Throttling)
	assert.Equal(t, "gr-123", vse.GuardrailID)
	assert.Len(t, runtime.inputs, 1)
}

func TestApply_RejectsInvalidRequest(t *testing.T) {
	runtime := &fakeRuntime{}

	_, err := newTestClient(runtime).Apply(context.Background(), models.ValidationRequest{GuardrailID: "gr-123"})

	var vse *ValidationServiceError
	require.True(t, errors.As(err, &vse))
	assert.Equal(t, "ValidationException", vse.Code)
	assert.Empty(t, runtime.inputs)
}

func TestToRawFinding_Variants(t *testing.T) {
	tests := []struct {
		name    string
		finding types.GuardrailAutomatedReasoningFinding
		want    string
	}{
		{"valid", &types.GuardrailAutomatedReasoningFindingMemberValid{}, "VALID"},
		{"satisfiable", &types.GuardrailAutomatedReasoningFindingMemberSatisfiable{}, "SATISFIABLE"},
		{"ambiguous", &types.GuardrailAutomatedReasoningFindingMemberTranslationAmbiguous{}, "TRANSLATION_AMBIGUOUS"},
		{"too complex", &types.GuardrailAutomatedReasoningFindingMemberTooComplex{}, "TOO_COMPLEX"},
		{"no translations", &types.GuardrailAutomatedReasoningFindingMemberNoTranslations{}, "NO_TRANSLATIONS"},
		{"nil", nil, unknownResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toRawFinding(tt.finding).Result)
		})
	}
}

func TestToRawFinding_SatisfiableSuggestions(t *testing.T) {
	raw := toRawFinding(&types.GuardrailAutomatedReasoningFindingMemberSatisfiable{
		Value: types.GuardrailAutomatedReasoningSatisfiableFinding{
			ClaimsFalseScenario: &types.GuardrailAutomatedReasoningScenario{
				Statements: []types.GuardrailAutomatedReasoningStatement{{
					NaturalLanguage: aws.String("the employee has worked 6 months"),
				}},
			},
		},
	})

	assert.Equal(t, []string{"State whether the employee has worked 6 months"}, raw.Suggestions)
}
