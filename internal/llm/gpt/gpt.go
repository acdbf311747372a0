package gpt

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/povarna/generative-ai-agents/arc-agent/internal/awserr"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/llm"
	"github.com/sashabaranov/go-openai"
)

const providerName = "openai"

func (c *Client) Generate(ctx context.Context, request llm.GenerateRequest) (*llm.GenerateResponse, error) {
	if err := request.Validate(); err != nil {
		return nil, &llm.ProviderError{Provider: providerName, Err: err}
	}

	output, err := c.Chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: request.ModelID,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: request.Prompt},
		},
		MaxCompletionTokens: request.MaxTokens,
		Temperature:         float32(request.Temperature),
	})
	if err != nil {
		code, transient := classify(err)
		return nil, &llm.ProviderError{
			Provider:  providerName,
			Code:      code,
			Transient: transient,
			Err:       fmt.Errorf("unable to invoke gpt model %s: %w", request.ModelID, err),
		}
	}

	if len(output.Choices) == 0 {
		return nil, &llm.ProviderError{Provider: providerName, Err: fmt.Errorf("no choices in response")}
	}

	choice := output.Choices[0]
	return &llm.GenerateResponse{
		Content:    choice.Message.Content,
		StopReason: string(choice.FinishReason),
	}, nil
}

func classify(err error) (string, bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Type, retryableStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatus, retryableStatus(reqErr.HTTPStatusCode)
	}

	// Network failures and deadlines carry no status.
	_, transient := awserr.Classify(err)
	return "", transient
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
