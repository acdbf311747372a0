package mcpadapter

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/models"
)

// Service is the pipeline as seen by the MCP tools.
type Service interface {
	Rewrite(ctx context.Context, req models.RewriteRequest) (*models.RewriteEnvelope, error)
	Validate(ctx context.Context, req models.ValidationRequest) (*models.ValidationReport, error)
}

// ValidateInput is the MCP tool input schema for content validation.
type ValidateInput struct {
	GuardrailID      string `json:"guardrail_id" jsonschema:"automated reasoning guardrail identifier"`
	GuardrailVersion string `json:"guardrail_version,omitempty" jsonschema:"guardrail version, DRAFT when omitted"`
	Content          string `json:"content" jsonschema:"text to validate"`
	Query            string `json:"query,omitempty" jsonschema:"optional question the content answers"`
	Source           string `json:"source,omitempty" jsonschema:"INPUT or OUTPUT (default OUTPUT)"`
}

// RewriteInput is the MCP tool input schema for validate-and-rewrite.
type RewriteInput struct {
	RequestID        string `json:"request_id,omitempty" jsonschema:"optional request identifier"`
	UserQuery        string `json:"user_query" jsonschema:"user's original question"`
	OriginalResponse string `json:"original_response" jsonschema:"response to validate and rewrite"`
	GuardrailID      string `json:"guardrail_id" jsonschema:"automated reasoning guardrail identifier"`
	GuardrailVersion string `json:"guardrail_version,omitempty" jsonschema:"guardrail version, DRAFT when omitted"`
	ModelID          string `json:"model_id,omitempty" jsonschema:"generation model override"`
	Domain           string `json:"domain,omitempty" jsonschema:"domain of the assistant, e.g. HR"`
	PolicyContext    string `json:"policy_context,omitempty" jsonschema:"optional policy text for the rewrite prompt"`
}

type ValidateOutput struct {
	GuardrailID         string           `json:"guardrail_id"`
	GuardrailVersion    string           `json:"guardrail_version"`
	Valid               bool             `json:"valid"`
	Action              string           `json:"action"`
	DominantFindingType string           `json:"dominant_finding_type"`
	FindingTypes        []string         `json:"finding_types"`
	Findings            []models.Finding `json:"findings"`
	ContentLength       int              `json:"content_length"`
}

type RewriteOutput struct {
	RequestID           string           `json:"request_id"`
	OriginalResponse    string           `json:"original_response"`
	RewrittenResponse   string           `json:"rewritten_response"`
	Rewritten           bool             `json:"rewritten"`
	DominantFindingType string           `json:"dominant_finding_type"`
	FindingTypes        []string         `json:"finding_types"`
	FindingsCount       int              `json:"findings_count"`
	Findings            []models.Finding `json:"findings"`
	Domain              string           `json:"domain"`
	Message             string           `json:"message"`
	CompletedAt         string           `json:"completed_at"`
}

// NewValidateHandler returns a tool handler for validate_content.
// Pass the returned function to mcp.AddTool.
func NewValidateHandler(service Service) func(context.Context, *mcp.CallToolRequest, ValidateInput) (*mcp.CallToolResult, ValidateOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ValidateInput) (*mcp.CallToolResult, ValidateOutput, error) {
		report, err := service.Validate(ctx, models.ValidationRequest{
			GuardrailID:      input.GuardrailID,
			GuardrailVersion: input.GuardrailVersion,
			Content:          input.Content,
			Query:            input.Query,
			Source:           input.Source,
		})
		if err != nil {
			return nil, ValidateOutput{}, err
		}

		return nil, ValidateOutput{
			GuardrailID:         report.GuardrailID,
			GuardrailVersion:    report.GuardrailVersion,
			Valid:               report.Valid,
			Action:              string(report.Action),
			DominantFindingType: string(report.DominantFindingType),
			FindingTypes:        typeNames(report.FindingTypes),
			Findings:            report.Findings,
			ContentLength:       report.ContentLength,
		}, nil
	}
}

// NewRewriteHandler returns a tool handler for rewrite_response.
// Pass the returned function to mcp.AddTool.
func NewRewriteHandler(service Service) func(context.Context, *mcp.CallToolRequest, RewriteInput) (*mcp.CallToolResult, RewriteOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RewriteInput) (*mcp.CallToolResult, RewriteOutput, error) {
		envelope, err := service.Rewrite(ctx, models.RewriteRequest{
			RequestID:        input.RequestID,
			UserQuery:        input.UserQuery,
			OriginalResponse: input.OriginalResponse,
			GuardrailID:      input.GuardrailID,
			GuardrailVersion: input.GuardrailVersion,
			ModelID:          input.ModelID,
			Domain:           input.Domain,
			PolicyContext:    input.PolicyContext,
		})
		if err != nil {
			return nil, RewriteOutput{}, err
		}

		return nil, RewriteOutput{
			RequestID:           envelope.RequestID,
			OriginalResponse:    envelope.OriginalResponse,
			RewrittenResponse:   envelope.RewrittenResponse,
			Rewritten:           envelope.Rewritten,
			DominantFindingType: string(envelope.DominantFindingType),
			FindingTypes:        typeNames(envelope.FindingTypes),
			FindingsCount:       envelope.FindingsCount,
			Findings:            envelope.Findings,
			Domain:              envelope.Domain,
			Message:             envelope.Message,
			CompletedAt:         envelope.CompletedAt.Format(time.RFC3339Nano),
		}, nil
	}
}

// NewServer registers both tools on a new MCP server.
func NewServer(service Service, version string) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "arc-agent",
			Version: version,
		}, nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_content",
		Description: "Validate content against an automated reasoning guardrail and return the classified findings",
	}, NewValidateHandler(service))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "rewrite_response",
		Description: "Validate a response and, when policy findings call for it, rewrite it to comply. Returns the original response if no rewrite is needed or the rewrite fails.",
	}, NewRewriteHandler(service))

	return server
}

func typeNames(types []models.FindingType) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}
