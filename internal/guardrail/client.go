package guardrail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/awserr"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/limiter"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/metrics"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/models"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/retry"
	"github.com/rs/zerolog"
)

// DraftVersion is used when a request names no guardrail version.
const DraftVersion = "DRAFT"

// RuntimeAPI is the part of the Bedrock runtime client used for validation.
type RuntimeAPI interface {
	ApplyGuardrail(ctx context.Context, params *bedrockruntime.ApplyGuardrailInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ApplyGuardrailOutput, error)
}

// ValidationServiceError is a failed guardrail call.
type ValidationServiceError struct {
	GuardrailID string
	Code        string
	Throttling  bool
	Err         error
}

func (e *ValidationServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("guardrail %s validation failed (%s): %v", e.GuardrailID, e.Code, e.Err)
	}
	return fmt.Sprintf("guardrail %s validation failed: %v", e.GuardrailID, e.Err)
}

func (e *ValidationServiceError) Unwrap() error {
	return e.Err
}

type Config struct {
	Timeout time.Duration
	Policy  retry.Policy
}

type Client struct {
	runtime RuntimeAPI
	cfg     Config
	limiter *limiter.Limiter
	logger  *zerolog.Logger
}

func NewClient(runtime RuntimeAPI, cfg Config, lim *limiter.Limiter, logger *zerolog.Logger) *Client {
	return &Client{
		runtime: runtime,
		cfg:     cfg,
		limiter: lim,
		logger:  logger,
	}
}

// Apply validates req against its guardrail. Throttled calls are retried
// with the configured policy; every other failure is returned at once.
func (c *Client) Apply(ctx context.Context, req models.ValidationRequest) (*models.RawAssessment, error) {
	if err := models.Validate(req); err != nil {
		return nil, &ValidationServiceError{GuardrailID: req.GuardrailID, Code: "ValidationException", Err: err}
	}

	input := buildInput(req)
	start := time.Now()
	defer func() {
		metrics.ValidationDuration.Observe(time.Since(start).Seconds())
	}()

	var output *bedrockruntime.ApplyGuardrailOutput
	attempts, err := c.cfg.Policy.Do(ctx, isThrottling, func(ctx context.Context, attempt int) error {
		out, err := c.call(ctx, input)
		if err != nil {
			c.logger.Warn().
				Err(err).
				Str("guardrail_id", req.GuardrailID).
				Int("attempt", attempt).
				Msg("guardrail call failed")
			return err
		}
		output = out
		return nil
	})
	if err != nil {
		var vse *ValidationServiceError
		if errors.As(err, &vse) {
			return nil, vse
		}
		// ctx ended between attempts
		return nil, &ValidationServiceError{GuardrailID: req.GuardrailID, Err: err}
	}

	assessment := toAssessment(output)
	c.logger.Debug().
		Str("guardrail_id", req.GuardrailID).
		Str("action", assessment.Action).
		Int("findings", len(assessment.Findings)).
		Int("attempts", attempts).
		Msg("guardrail applied")

	return assessment, nil
}

func (c *Client) call(ctx context.Context, input *bedrockruntime.ApplyGuardrailInput) (*bedrockruntime.ApplyGuardrailOutput, error) {
	release, err := c.limiter.Acquire(ctx)
	if err != nil {
		return nil, &ValidationServiceError{GuardrailID: *input.GuardrailIdentifier, Err: err}
	}
	defer release()

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	out, err := c.runtime.ApplyGuardrail(ctx, input)
	if err != nil {
		code, _ := awserr.Classify(err)
		return nil, &ValidationServiceError{
			GuardrailID: *input.GuardrailIdentifier,
			Code:        code,
			Throttling:  awserr.IsThrottling(err),
			Err:         err,
		}
	}
	if out == nil {
		return nil, &ValidationServiceError{GuardrailID: *input.GuardrailIdentifier, Err: errors.New("empty guardrail response")}
	}
	return out, nil
}

func isThrottling(err error) bool {
	var vse *ValidationServiceError
	return errors.As(err, &vse) && vse.Throttling
}
