package llm

type GenerateRequest struct {
	Prompt      string
	ModelID     string
	MaxTokens   int
	Temperature float64
}

type GenerateResponse struct {
	Content    string
	StopReason string
}
