package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/awserr"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/llm"
)

const providerName = "bedrock"

type claudeMessageRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float64         `json:"temperature"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeMessageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

var anthropicVersion = "bedrock-2023-05-31"

// Generate sends one prompt to a Claude model hosted on Bedrock.
func (c *Client) Generate(ctx context.Context, request llm.GenerateRequest) (*llm.GenerateResponse, error) {
	if err := request.Validate(); err != nil {
		return nil, &llm.ProviderError{Provider: providerName, Err: err}
	}

	payload := claudeMessageRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        request.MaxTokens,
		Temperature:      request.Temperature,
		Messages: []claudeMessage{
			{
				Role:    "user",
				Content: request.Prompt,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &llm.ProviderError{Provider: providerName, Err: fmt.Errorf("unable to serialize claude request: %w", err)}
	}

	output, err := c.Runtime.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(request.ModelID),
		Body:        body,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		code, transient := awserr.Classify(err)
		return nil, &llm.ProviderError{
			Provider:  providerName,
			Code:      code,
			Transient: transient,
			Err:       fmt.Errorf("unable to invoke claude model %s: %w", request.ModelID, err),
		}
	}

	var response claudeMessageResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return nil, &llm.ProviderError{Provider: providerName, Err: fmt.Errorf("failed to unmarshal bedrock response: %w", err)}
	}

	var parts []string
	for _, block := range response.Content {
		if block.Type == "" || block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}

	return &llm.GenerateResponse{
		Content:    strings.Join(parts, ""),
		StopReason: response.StopReason,
	}, nil
}
