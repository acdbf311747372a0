package rewrite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/arc-agent/internal/limiter"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/metrics"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/retry"
	"github.com/rs/zerolog"
)

var (
	ErrEmptyResponse    = errors.New("model returned an empty response")
	ErrAttemptTimeout   = errors.New("generation attempt timed out")
	errProviderPanicked = errors.New("generation provider panicked")
)

type Config struct {
	Timeout     time.Duration
	Policy      retry.Policy
	MaxTokens   int
	Temperature float64
}

// Result is either generated text or a fallback signal. Err and Attempts
// describe why the fallback was taken.
type Result struct {
	Text     string
	Fallback bool
	Err      error
	Attempts int
	Duration time.Duration
}

type Orchestrator struct {
	generator llm.Generator
	cfg       Config
	limiter   *limiter.Limiter
	logger    *zerolog.Logger
}

func NewOrchestrator(generator llm.Generator, cfg Config, lim *limiter.Limiter, logger *zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		generator: generator,
		cfg:       cfg,
		limiter:   lim,
		logger:    logger,
	}
}

// Generate asks the model for a rewrite. It never returns an error: every
// failure is reported as a fallback Result.
func (o *Orchestrator) Generate(ctx context.Context, prompt string, modelID string) Result {
	start := time.Now()

	if prompt == "" || modelID == "" {
		err := fmt.Errorf("%w: empty prompt or model id", llm.ErrInvalidRequest)
		return Result{Fallback: true, Err: err, Duration: time.Since(start)}
	}

	request := llm.GenerateRequest{
		Prompt:      prompt,
		ModelID:     modelID,
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	}

	var text string
	attempts, err := o.cfg.Policy.Do(ctx, llm.IsTransient, func(ctx context.Context, attempt int) error {
		out, err := o.attempt(ctx, request)
		if err != nil {
			o.logger.Warn().
				Err(err).
				Str("model_id", modelID).
				Int("attempt", attempt).
				Bool("transient", llm.IsTransient(err)).
				Msg("generation attempt failed")
			return err
		}
		text = out
		return nil
	})

	duration := time.Since(start)
	metrics.GenerationDuration.Observe(duration.Seconds())

	if err != nil {
		return Result{Fallback: true, Err: err, Attempts: attempts, Duration: duration}
	}

	o.logger.Debug().
		Str("model_id", modelID).
		Int("attempts", attempts).
		Dur("duration", duration).
		Msg("generation succeeded")

	return Result{Text: text, Attempts: attempts, Duration: duration}
}

func (o *Orchestrator) attempt(ctx context.Context, request llm.GenerateRequest) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.GenerationAttempts.WithLabelValues("permanent").Inc()
			text, err = "", fmt.Errorf("%w: %v", errProviderPanicked, r)
		}
	}()

	release, err := o.limiter.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	attemptCtx := ctx
	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}

	resp, err := o.generator.Generate(attemptCtx, request)
	if err != nil {
		// Our own deadline fired while the caller is still waiting.
		if attemptCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			metrics.GenerationAttempts.WithLabelValues("transient").Inc()
			return "", &llm.ProviderError{Provider: "model", Transient: true, Err: fmt.Errorf("%w after %s: %v", ErrAttemptTimeout, o.cfg.Timeout, err)}
		}
		if llm.IsTransient(err) {
			metrics.GenerationAttempts.WithLabelValues("transient").Inc()
		} else {
			metrics.GenerationAttempts.WithLabelValues("permanent").Inc()
		}
		return "", err
	}

	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		metrics.GenerationAttempts.WithLabelValues("permanent").Inc()
		return "", ErrEmptyResponse
	}

	metrics.GenerationAttempts.WithLabelValues("success").Inc()
	return resp.Content, nil
}
