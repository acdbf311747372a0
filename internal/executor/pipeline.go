package executor

//go:generate mockgen -source=pipeline.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/assembler"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/findings"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/guardrail"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/metrics"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/models"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/outputchecks"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/retry"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/rewrite"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/templates"
	"github.com/rs/zerolog"
)

// Validator applies a guardrail to content
type Validator interface {
	Apply(ctx context.Context, req models.ValidationRequest) (*models.RawAssessment, error)
}

// TemplateLookup resolves the remediation template of a finding type
type TemplateLookup interface {
	Lookup(findingType models.FindingType) (*templates.Template, error)
}

// PromptBuilder renders a template for one request
type PromptBuilder interface {
	Build(tmpl *templates.Template, req models.RewriteRequest, finding models.Finding) (string, error)
}

// Generator produces a rewrite or a fallback signal
type Generator interface {
	Generate(ctx context.Context, prompt string, modelID string) rewrite.Result
}

// OutputChecker runs post-generation checks
type OutputChecker interface {
	Run(candidate outputchecks.Candidate) []outputchecks.Result
}

type State string

const (
	StateValidating     State = "VALIDATING"
	StateClassifying    State = "CLASSIFYING"
	StateSkip           State = "SKIP"
	StateSelectTemplate State = "SELECT_TEMPLATE"
	StateBuildPrompt    State = "BUILD_PROMPT"
	StateGenerate       State = "GENERATE"
	StateCheckOutput    State = "CHECK_OUTPUT"
	StateFallback       State = "FALLBACK_ORIGINAL"
	StateAssemble       State = "ASSEMBLE"
	StateDone           State = "DONE"
	StateError          State = "ERROR"
)

const (
	KindInvalidRequest = "invalid_request"
	KindValidation     = "validation_service"
	KindClassification = "classification"
	KindCancelled      = "cancelled"
)

var ErrCancelled = errors.New("request cancelled")

// PipelineError is a terminal failure. State is where the request stopped.
type PipelineError struct {
	RequestID string
	State     State
	Kind      string
	Err       error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("request %s failed in %s (%s): %v", e.RequestID, e.State, e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

type Config struct {
	ValidationTimeout time.Duration
	GenerationTimeout time.Duration
	Policy            retry.Policy
	DefaultModelID    string
	DefaultDomain     string
}

// RequestDeadline bounds one request: validation, every generation attempt
// and the backoff between them.
func (c Config) RequestDeadline() time.Duration {
	return c.ValidationTimeout + c.Policy.Budget(c.GenerationTimeout)
}

type Pipeline struct {
	validator  Validator
	classifier *findings.Classifier
	templates  TemplateLookup
	prompts    PromptBuilder
	generator  Generator
	checks     OutputChecker
	assembler  *assembler.Assembler
	cfg        Config
	logger     *zerolog.Logger
}

func NewPipeline(
	validator Validator,
	classifier *findings.Classifier,
	templates TemplateLookup,
	prompts PromptBuilder,
	generator Generator,
	checks OutputChecker,
	cfg Config,
	logger *zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		validator:  validator,
		classifier: classifier,
		templates:  templates,
		prompts:    prompts,
		generator:  generator,
		checks:     checks,
		assembler:  assembler.NewAssembler(cfg.DefaultDomain),
		cfg:        cfg,
		logger:     logger,
	}
}

// Rewrite validates the original response and, when the dominant finding
// calls for it, replaces it with a generated rewrite. Failures after
// classification fall back to the original response; only validation,
// classification and cancellation are returned as errors.
func (p *Pipeline) Rewrite(ctx context.Context, req models.RewriteRequest) (*models.RewriteEnvelope, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if err := models.Validate(req); err != nil {
		return nil, p.fail(req.RequestID, StateValidating, KindInvalidRequest, err)
	}

	log := p.logger.With().
		Str("request_id", req.RequestID).
		Str("guardrail_id", req.GuardrailID).
		Logger()
	log.Info().Msg("starting rewrite")

	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, p.cfg.RequestDeadline())
	defer cancel()

	outcome, state, err := p.validate(ctx, models.ValidationRequest{
		GuardrailID:      req.GuardrailID,
		GuardrailVersion: req.GuardrailVersion,
		Source:           "OUTPUT",
		Query:            req.UserQuery,
		Content:          req.OriginalResponse,
	})
	if err != nil {
		if parent.Err() != nil {
			return nil, p.cancelled(req.RequestID, state, parent.Err())
		}
		return nil, p.fail(req.RequestID, state, kindOf(state), err)
	}

	dominant := findings.Dominant(outcome.Findings)
	metrics.DominantFindings.WithLabelValues(string(dominant)).Inc()
	log.Debug().
		Str("state", string(StateClassifying)).
		Str("finding_type", string(dominant)).
		Int("findings", len(outcome.Findings)).
		Msg("findings classified")

	var rw *assembler.RewriteResult
	if dominant.RequiresAction() {
		rw = p.rewrite(ctx, &log, req, outcome, dominant)
	} else {
		log.Debug().Str("state", string(StateSkip)).Msg("no rewrite required")
	}

	if parent.Err() != nil {
		return nil, p.cancelled(req.RequestID, StateAssemble, parent.Err())
	}

	envelope := p.assembler.Assemble(req, outcome, dominant, rw)
	metrics.PipelineOutcomes.WithLabelValues(outcomeLabel(envelope)).Inc()

	log.Info().
		Str("state", string(StateDone)).
		Str("finding_type", string(dominant)).
		Bool("rewritten", envelope.Rewritten).
		Str("message", envelope.Message).
		Msg("rewrite complete")

	return &envelope, nil
}

func (p *Pipeline) rewrite(ctx context.Context, log *zerolog.Logger, req models.RewriteRequest, outcome models.ValidationOutcome, dominant models.FindingType) *assembler.RewriteResult {
	tmpl, err := p.templates.Lookup(dominant)
	if err != nil {
		log.Warn().Err(err).Str("state", string(StateSelectTemplate)).Str("finding_type", string(dominant)).Msg("falling back to original")
		return &assembler.RewriteResult{Reason: fmt.Sprintf("no template for %s", dominant)}
	}

	finding := findings.Merge(findings.GroupByType(outcome.Findings)[dominant])
	prompt, err := p.prompts.Build(tmpl, req, finding)
	if err != nil {
		log.Warn().Err(err).Str("state", string(StateBuildPrompt)).Msg("falling back to original")
		return &assembler.RewriteResult{Reason: fmt.Sprintf("prompt build failed: %v", err)}
	}

	modelID := req.ModelID
	if modelID == "" {
		modelID = p.cfg.DefaultModelID
	}

	res := p.generator.Generate(ctx, prompt, modelID)
	if res.Fallback {
		log.Warn().
			Err(res.Err).
			Str("state", string(StateGenerate)).
			Int("attempt", res.Attempts).
			Msg("falling back to original")
		return &assembler.RewriteResult{
			Attempted: true,
			Reason:    fmt.Sprintf("generation failed after %d attempt(s): %v", res.Attempts, res.Err),
		}
	}

	if p.checks != nil {
		results := p.checks.Run(outputchecks.Candidate{Original: req.OriginalResponse, Rewritten: res.Text})
		if failed, ok := outputchecks.Passed(results); !ok {
			log.Warn().
				Str("state", string(StateCheckOutput)).
				Str("check", failed.Name).
				Str("reason", failed.Reason).
				Msg("falling back to original")
			return &assembler.RewriteResult{
				Attempted: true,
				Reason:    fmt.Sprintf("%s rejected the rewrite: %s", failed.Name, failed.Reason),
			}
		}
	}

	return &assembler.RewriteResult{Attempted: true, Succeeded: true, Text: res.Text}
}

// Validate runs only the validation and classification stages.
func (p *Pipeline) Validate(ctx context.Context, req models.ValidationRequest) (*models.ValidationReport, error) {
	if err := models.Validate(req); err != nil {
		return nil, p.fail("", StateValidating, KindInvalidRequest, err)
	}

	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Policy.Budget(p.cfg.ValidationTimeout))
	defer cancel()

	outcome, state, err := p.validate(ctx, req)
	if err != nil {
		if parent.Err() != nil {
			return nil, p.cancelled("", state, parent.Err())
		}
		return nil, p.fail("", state, kindOf(state), err)
	}

	version := req.GuardrailVersion
	if version == "" {
		version = guardrail.DraftVersion
	}

	return &models.ValidationReport{
		GuardrailID:         req.GuardrailID,
		GuardrailVersion:    version,
		Action:              outcome.Action,
		Valid:               outcome.Action == models.ActionNone,
		Findings:            outcome.Findings,
		FindingTypes:        findings.Types(outcome.Findings),
		DominantFindingType: findings.Dominant(outcome.Findings),
		ContentLength:       len(req.Content),
		Usage:               outcome.Usage,
	}, nil
}

// validate returns the state it stopped in when it fails.
func (p *Pipeline) validate(ctx context.Context, req models.ValidationRequest) (models.ValidationOutcome, State, error) {
	assessment, err := p.validator.Apply(ctx, req)
	if err != nil {
		return models.ValidationOutcome{}, StateValidating, err
	}

	outcome, err := p.classifier.Classify(assessment)
	if err != nil {
		return models.ValidationOutcome{}, StateClassifying, err
	}
	return outcome, StateClassifying, nil
}

func kindOf(state State) string {
	if state == StateClassifying {
		return KindClassification
	}
	return KindValidation
}

func (p *Pipeline) fail(requestID string, state State, kind string, err error) *PipelineError {
	metrics.PipelineOutcomes.WithLabelValues("error").Inc()
	p.logger.Error().
		Err(err).
		Str("request_id", requestID).
		Str("state", string(state)).
		Str("kind", kind).
		Msg("request failed")
	return &PipelineError{RequestID: requestID, State: state, Kind: kind, Err: err}
}

func (p *Pipeline) cancelled(requestID string, state State, cause error) *PipelineError {
	metrics.PipelineOutcomes.WithLabelValues("cancelled").Inc()
	p.logger.Info().
		Str("request_id", requestID).
		Str("state", string(state)).
		Msg("request cancelled")
	return &PipelineError{
		RequestID: requestID,
		State:     state,
		Kind:      KindCancelled,
		Err:       fmt.Errorf("%w: %w", ErrCancelled, cause),
	}
}

func outcomeLabel(e models.RewriteEnvelope) string {
	switch {
	case e.Rewritten:
		return "rewritten"
	case e.Message == assembler.MessageClean:
		return "clean"
	default:
		return "fallback"
	}
}
