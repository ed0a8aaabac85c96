// Package engine provides HTTP handlers that drive evaluation and dispatch.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/obraguard/obraguard/internal/alerting"
	"github.com/obraguard/obraguard/internal/api/middleware"
	"github.com/obraguard/obraguard/internal/notifier"
	"github.com/obraguard/obraguard/internal/storage"
)

// Response helpers
type errorResponse struct {
	Error errorBody `json:"error"`
}
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
type dataResponse struct {
	Data any `json:"data"`
}

const (
	errCodeBadRequest       = "BAD_REQUEST"
	errCodeValidationFailed = "VALIDATION_FAILED"
	errCodeNotFound         = "NOT_FOUND"
	errCodeInternalError    = "INTERNAL_ERROR"
)

func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: code, Message: message}}); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

func jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dataResponse{Data: data}); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// Evaluator runs one threshold evaluation pass for a project.
type Evaluator interface {
	Evaluate(ctx context.Context, projectID, tenantID string) (alerting.Result, error)
}

// Dispatcher runs one delivery pass over deliverable notifications.
type Dispatcher interface {
	Dispatch(ctx context.Context, alertID string) (notifier.Summary, error)
}

// WebhookTester probes a webhook URL with a synthetic payload.
type WebhookTester func(ctx context.Context, url string) (string, error)

// Handler handles engine endpoints.
type Handler struct {
	evaluator  Evaluator
	dispatcher Dispatcher
	tester     WebhookTester
}

func NewHandler(evaluator Evaluator, dispatcher Dispatcher, tester WebhookTester) *Handler {
	return &Handler{evaluator: evaluator, dispatcher: dispatcher, tester: tester}
}

// Request types
type EvaluateRequest struct {
	ProjectID string `json:"project_id"`
}

type DispatchRequest struct {
	AlertID string `json:"alert_id,omitempty"`
}

type TestWebhookRequest struct {
	URL string `json:"url"`
}

type TestWebhookResponse struct {
	OK     bool   `json:"ok"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Evaluate runs a deviation evaluation pass for one project.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}
	if req.ProjectID == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "project id is required")
		return
	}

	ctx := r.Context()
	result, err := h.evaluator.Evaluate(ctx, req.ProjectID, middleware.GetTenantID(ctx))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			jsonError(w, http.StatusNotFound, errCodeNotFound, "project not found")
			return
		}
		log.Printf("evaluate project %s error: %v", req.ProjectID, err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	log.Printf("evaluated project %s: %d alerts from %d categories",
		req.ProjectID, result.AlertsCreated, result.CategoriesAnalyzed)
	jsonOK(w, result)
}

// Dispatch runs a delivery pass, optionally limited to one alert's
// notifications. Per-notification failures are reflected in the summary,
// not in the HTTP status.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
			return
		}
	}

	summary, err := h.dispatcher.Dispatch(r.Context(), req.AlertID)
	if err != nil {
		log.Printf("dispatch error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	jsonOK(w, summary)
}

// TestWebhook probes a caller-supplied URL without touching the store.
func (h *Handler) TestWebhook(w http.ResponseWriter, r *http.Request) {
	var req TestWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "url must be a well-formed http(s) URL")
		return
	}

	status, err := h.tester(r.Context(), req.URL)
	if err != nil {
		// The probe ran but the remote side rejected it; that is a
		// result, not a server error.
		jsonOK(w, TestWebhookResponse{OK: false, Error: err.Error()})
		return
	}

	jsonOK(w, TestWebhookResponse{OK: true, Status: status})
}
