package setup

import (
	"context"
	"fmt"

	"github.com/povarna/generative-ai-agents/arc-agent/internal/config"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/executor"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/findings"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/guardrail"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/limiter"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/llm/bedrock"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/llm/gpt"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/models"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/outputchecks"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/prompt"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/rewrite"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/templates"
	"github.com/rs/zerolog"
)

type Dependencies struct {
	Pipeline *executor.Pipeline
	Logger   *zerolog.Logger
}

// Wire builds the pipeline against the real Bedrock and OpenAI clients.
func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	runtime, err := bedrock.NewRuntimeClient(ctx, cfg.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bedrock client: %w", err)
	}

	generator, err := createGenerator(cfg, runtime)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s generator: %w", cfg.DefaultProvider, err)
	}

	return NewDependencies(cfg, runtime, generator, logger)
}

// NewDependencies assembles the pipeline from already built clients.
func NewDependencies(cfg *Config, runtime guardrail.RuntimeAPI, generator llm.Generator, logger *zerolog.Logger) (*Dependencies, error) {
	templatesConfig, err := config.LoadTemplatesConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates config: %w", err)
	}

	store, err := templates.NewStore(templatesConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build template store: %w", err)
	}
	if err := store.Require(models.ActionableTypes()...); err != nil {
		return nil, err
	}

	policy := cfg.Policy()
	lim := limiter.New(cfg.MaxInflight)

	validator := guardrail.NewClient(runtime, guardrail.Config{
		Timeout: cfg.ValidationTimeout,
		Policy:  policy,
	}, lim, logger)

	modelConfig := store.ModelConfig()
	orchestrator := rewrite.NewOrchestrator(generator, rewrite.Config{
		Timeout:     cfg.GenerationTimeout,
		Policy:      policy,
		MaxTokens:   modelConfig.MaxTokens,
		Temperature: modelConfig.Temperature,
	}, lim, logger)

	pipeline := executor.NewPipeline(
		validator,
		findings.NewClassifier(logger),
		store,
		prompt.NewBuilder(cfg.DefaultDomain),
		orchestrator,
		outputchecks.DefaultRunner(),
		executor.Config{
			ValidationTimeout: cfg.ValidationTimeout,
			GenerationTimeout: cfg.GenerationTimeout,
			Policy:            policy,
			DefaultModelID:    cfg.ModelID(),
			DefaultDomain:     cfg.DefaultDomain,
		},
		logger,
	)

	logger.Info().
		Str("provider", cfg.DefaultProvider).
		Str("model_id", cfg.ModelID()).
		Int("templates", store.Len()).
		Int("max_inflight", lim.Size()).
		Dur("request_deadline", RequestDeadline(cfg)).
		Msg("Pipeline wired")

	return &Dependencies{
		Pipeline: pipeline,
		Logger:   logger,
	}, nil
}

func createGenerator(cfg *Config, runtime bedrock.RuntimeAPI) (llm.Generator, error) {
	switch cfg.DefaultProvider {
	case "openai":
		client, err := gpt.NewClient(cfg.OpenAIKey)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return bedrock.NewClient(runtime), nil
	}
}
