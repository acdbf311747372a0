package gpt

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// ChatCompleter is the part of the OpenAI client used for generation.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Client struct {
	Chat ChatCompleter
}

func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	return &Client{
		Chat: openai.NewClient(apiKey),
	}, nil
}
