package llm

import (
	"context"
	"errors"
	"fmt"
)

// Generator is implemented by every text generation provider.
// Implementations make exactly one call per Generate; retries belong to the
// caller.
type Generator interface {
	Generate(ctx context.Context, request GenerateRequest) (*GenerateResponse, error)
}

// ErrInvalidRequest marks requests rejected before reaching the provider.
var ErrInvalidRequest = errors.New("invalid generation request")

// ProviderError is a failed call to a generation provider.
type ProviderError struct {
	Provider  string
	Code      string
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.Code != "" {
		return fmt.Sprintf("%s provider error (%s, %s): %v", e.Provider, kind, e.Code, e.Err)
	}
	return fmt.Sprintf("%s provider error (%s): %v", e.Provider, kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a provider failure worth retrying.
func IsTransient(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Transient
}

// Validate rejects requests that cannot succeed on any provider.
func (r GenerateRequest) Validate() error {
	if r.Prompt == "" {
		return fmt.Errorf("%w: empty prompt", ErrInvalidRequest)
	}
	if r.ModelID == "" {
		return fmt.Errorf("%w: empty model id", ErrInvalidRequest)
	}
	if r.MaxTokens < 0 {
		return fmt.Errorf("%w: negative max tokens", ErrInvalidRequest)
	}
	return nil
}
