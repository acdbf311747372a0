package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/api"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/executor"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/models"
	"github.com/rs/zerolog"
)

type fakeService struct {
	envelope *models.RewriteEnvelope
	report   *models.ValidationReport
	err      error
	panics   bool

	rewrites []models.RewriteRequest
}

func (f *fakeService) Rewrite(ctx context.Context, req models.RewriteRequest) (*models.RewriteEnvelope, error) {
	if f.panics {
		panic("boom")
	}
	f.rewrites = append(f.rewrites, req)
	return f.envelope, f.err
}

func (f *fakeService) Validate(ctx context.Context, req models.ValidationRequest) (*models.ValidationReport, error) {
	return f.report, f.err
}

func setupTestAPI(t *testing.T, service api.Service) *restful.Container {
	t.Helper()
	logger := zerolog.Nop()
	return api.NewContainer(api.NewHandler(service, &logger))
}

func post(t *testing.T, container *restful.Container, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)
	return recorder
}

func rewriteRequest() models.RewriteRequest {
	return models.RewriteRequest{
		RequestID:        "req-1",
		UserQuery:        "Am I eligible for parental leave?",
		OriginalResponse: "Yes, immediately.",
		GuardrailID:      "gr-hr",
	}
}

func TestAPI_Health(t *testing.T) {
	container := setupTestAPI(t, &fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}

	var response api.HealthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", response.Status)
	}
}

func TestAPI_Rewrite(t *testing.T) {
	service := &fakeService{envelope: &models.RewriteEnvelope{
		RequestID:           "req-1",
		RewrittenResponse:   "Employees qualify after 6 months of tenure.",
		Rewritten:           true,
		DominantFindingType: models.FindingInvalid,
		Message:             "rewritten for INVALID",
	}}
	container := setupTestAPI(t, service)

	recorder := post(t, container, "/api/v1/rewrite", rewriteRequest())
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var envelope models.RewriteEnvelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if !envelope.Rewritten || envelope.Message != "rewritten for INVALID" {
		t.Errorf("Unexpected envelope: %+v", envelope)
	}
	if len(service.rewrites) != 1 || service.rewrites[0].GuardrailID != "gr-hr" {
		t.Errorf("Request not passed through: %+v", service.rewrites)
	}
}

func TestAPI_Rewrite_Errors(t *testing.T) {
	invalid := models.Validate(models.RewriteRequest{})

	tests := []struct {
		name       string
		body       any
		err        error
		wantStatus int
		wantDetail bool
	}{
		{
			name:       "malformed body",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid request",
			body:       models.RewriteRequest{},
			err:        &executor.PipelineError{State: executor.StateValidating, Kind: executor.KindInvalidRequest, Err: invalid},
			wantStatus: http.StatusBadRequest,
			wantDetail: true,
		},
		{
			name:       "validation service",
			body:       rewriteRequest(),
			err:        &executor.PipelineError{State: executor.StateValidating, Kind: executor.KindValidation, Err: errors.New("throttled")},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "cancelled",
			body:       rewriteRequest(),
			err:        &executor.PipelineError{State: executor.StateGenerate, Kind: executor.KindCancelled, Err: executor.ErrCancelled},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "unexpected",
			body:       rewriteRequest(),
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			container := setupTestAPI(t, &fakeService{err: tt.err})

			recorder := post(t, container, "/api/v1/rewrite", tt.body)
			if recorder.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, recorder.Code)
			}

			var response middleware.ErrorResponse
			if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
				t.Fatalf("Failed to parse error response: %v", err)
			}
			if response.Code != tt.wantStatus {
				t.Errorf("Expected code %d in body, got %d", tt.wantStatus, response.Code)
			}
			if tt.wantDetail && len(response.Details) == 0 {
				t.Error("Expected field details for an invalid request")
			}
		})
	}
}

func TestAPI_Rewrite_RecoversPanic(t *testing.T) {
	container := setupTestAPI(t, &fakeService{panics: true})

	recorder := post(t, container, "/api/v1/rewrite", rewriteRequest())
	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", recorder.Code)
	}
}

func TestAPI_Validate(t *testing.T) {
	service := &fakeService{report: &models.ValidationReport{
		GuardrailID:         "gr-hr",
		GuardrailVersion:    "DRAFT",
		Action:              models.ActionNone,
		Valid:               true,
		DominantFindingType: models.FindingValid,
	}}
	container := setupTestAPI(t, service)

	recorder := post(t, container, "/api/v1/validate", models.ValidationRequest{GuardrailID: "gr-hr", Content: "text"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}

	var report models.ValidationReport
	if err := json.Unmarshal(recorder.Body.Bytes(), &report); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if !report.Valid || report.GuardrailVersion != "DRAFT" {
		t.Errorf("Unexpected report: %+v", report)
	}
}

func TestAPI_Docs(t *testing.T) {
	container := setupTestAPI(t, &fakeService{})

	req := httptest.NewRequest(http.MethodGet, api.APIDocsPath, nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}
	for _, path := range []string{"/api/v1/rewrite", "/api/v1/validate", "/api/v1/health"} {
		if !strings.Contains(recorder.Body.String(), path) {
			t.Errorf("OpenAPI document is missing %s", path)
		}
	}
}

func TestAPI_Metrics(t *testing.T) {
	container := setupTestAPI(t, &fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", recorder.Code)
	}
}
