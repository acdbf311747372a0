package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const APIDocsPath = "/apidocs.json"

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/validate").
			To(handler.Validate).
			Doc("Validate content against an automated reasoning guardrail").
			Metadata(restfulspec.KeyOpenAPITags, []string{"validate"}).
			Reads(models.ValidationRequest{}).
			Writes(models.ValidationReport{}).
			Returns(200, "OK", models.ValidationReport{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(502, "Validation Service Error", middleware.ErrorResponse{}).
			Returns(503, "Cancelled", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/rewrite").
			To(handler.Rewrite).
			Doc("Validate a response and rewrite it when the findings call for it").
			Metadata(restfulspec.KeyOpenAPITags, []string{"rewrite"}).
			Reads(models.RewriteRequest{}).
			Writes(models.RewriteEnvelope{}).
			Returns(200, "OK", models.RewriteEnvelope{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(502, "Validation Service Error", middleware.ErrorResponse{}).
			Returns(503, "Cancelled", middleware.ErrorResponse{}))

	container.Add(ws)
}

// NewContainer builds the full HTTP surface: filters, API routes, the
// OpenAPI document and Prometheus metrics.
func NewContainer(handler *Handler) *restful.Container {
	container := restful.NewContainer()

	container.Filter(middleware.Logger)
	container.Filter(middleware.RecoverPanic)

	RegisterRoutes(container, handler)

	container.Add(restfulspec.NewOpenAPIService(restfulspec.Config{
		WebServices: container.RegisteredWebServices(),
		APIPath:     APIDocsPath,
	}))

	container.Handle("/metrics", promhttp.Handler())

	return container
}
