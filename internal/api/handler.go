package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/executor"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/models"
	"github.com/rs/zerolog"
)

const Version = "1.0.0"

// Service is the pipeline as seen by the HTTP layer.
type Service interface {
	Rewrite(ctx context.Context, req models.RewriteRequest) (*models.RewriteEnvelope, error)
	Validate(ctx context.Context, req models.ValidationRequest) (*models.ValidationReport, error)
}

type Handler struct {
	service Service
	logger  *zerolog.Logger
}

func NewHandler(service Service, logger *zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// POST /api/v1/rewrite
// Body: RewriteRequest
// Returns: RewriteEnvelope
func (h *Handler) Rewrite(req *restful.Request, resp *restful.Response) {
	var rewriteRequest models.RewriteRequest
	if err := req.ReadEntity(&rewriteRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	h.logger.Info().
		Str("request_id", rewriteRequest.RequestID).
		Str("guardrail_id", rewriteRequest.GuardrailID).
		Msg("Start rewrite")

	envelope, err := h.service.Rewrite(req.Request.Context(), rewriteRequest)
	if err != nil {
		middleware.HandleError(resp, err, statusFor(err))
		return
	}

	h.logger.Info().
		Str("request_id", envelope.RequestID).
		Str("finding_type", string(envelope.DominantFindingType)).
		Bool("rewritten", envelope.Rewritten).
		Msg("Rewrite complete")

	resp.WriteHeaderAndEntity(http.StatusOK, envelope)
}

// POST /api/v1/validate
// Body: ValidationRequest
// Returns: ValidationReport
func (h *Handler) Validate(req *restful.Request, resp *restful.Response) {
	var validationRequest models.ValidationRequest
	if err := req.ReadEntity(&validationRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	report, err := h.service.Validate(req.Request.Context(), validationRequest)
	if err != nil {
		middleware.HandleError(resp, err, statusFor(err))
		return
	}

	h.logger.Info().
		Str("guardrail_id", report.GuardrailID).
		Bool("valid", report.Valid).
		Str("finding_type", string(report.DominantFindingType)).
		Msg("Validation complete")

	resp.WriteHeaderAndEntity(http.StatusOK, report)
}

// Health handler GET API /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

func statusFor(err error) int {
	var pe *executor.PipelineError
	if !errors.As(err, &pe) {
		return http.StatusInternalServerError
	}

	switch pe.Kind {
	case executor.KindInvalidRequest:
		return http.StatusBadRequest
	case executor.KindCancelled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
