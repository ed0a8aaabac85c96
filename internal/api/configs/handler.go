// Package configs provides HTTP handlers for alert configuration endpoints.
package configs

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/obraguard/obraguard/internal/api/middleware"
	"github.com/obraguard/obraguard/internal/models"
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

func jsonNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Handler handles alert configuration endpoints.
type Handler struct {
	storage storage.Storage
}

func NewHandler(store storage.Storage) *Handler {
	return &Handler{storage: store}
}

// SaveRequest carries a full alert configuration. Omitted thresholds and
// toggles fall back to the defaults.
type SaveRequest struct {
	UserID            string   `json:"user_id,omitempty"`
	ThresholdLow      *float64 `json:"threshold_low,omitempty"`
	ThresholdMedium   *float64 `json:"threshold_medium,omitempty"`
	ThresholdHigh     *float64 `json:"threshold_high,omitempty"`
	ThresholdCritical *float64 `json:"threshold_critical,omitempty"`
	NotifyDashboard   *bool    `json:"notify_dashboard,omitempty"`
	NotifyEmail       bool     `json:"notify_email"`
	NotifyWebhook     bool     `json:"notify_webhook"`
	WebhookURL        string   `json:"webhook_url,omitempty"`
	PerCategory       *bool    `json:"per_category,omitempty"`
	PerStage          bool     `json:"per_stage"`
	CheckIntervalMin  int      `json:"check_interval_minutes,omitempty"`
}

// Get returns the caller's configuration for the project.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if projectID == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "project id required")
		return
	}

	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		userID = r.URL.Query().Get("user_id")
	}
	if userID == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "user id is required")
		return
	}

	cfg, err := h.storage.Configs().GetForProjectUser(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			jsonError(w, http.StatusNotFound, errCodeNotFound, "alert configuration not found")
			return
		}
		log.Printf("get alert config error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	jsonOK(w, cfg)
}

// Save creates or replaces the caller's configuration for the project.
// Invalid configurations are rejected before anything is persisted.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if projectID == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "project id required")
		return
	}

	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	userID := req.UserID
	if userID == "" {
		userID = middleware.GetUserID(ctx)
	}
	if userID == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "user id is required")
		return
	}

	if _, err := h.storage.Projects().GetByID(ctx, projectID, middleware.GetTenantID(ctx)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			jsonError(w, http.StatusNotFound, errCodeNotFound, "project not found")
			return
		}
		log.Printf("save alert config error: check project: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	cfg := configFromRequest(projectID, userID, middleware.GetTenantID(ctx), &req)
	if err := cfg.Validate(); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}

	if err := h.storage.Configs().Save(ctx, cfg); err != nil {
		log.Printf("save alert config error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	saved, err := h.storage.Configs().GetForProjectUser(ctx, projectID, userID)
	if err != nil {
		log.Printf("save alert config: reload: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	log.Printf("alert config saved for project %s user %s", projectID, userID)
	jsonOK(w, saved)
}

// Deactivate marks the caller's configuration inactive. Deactivated
// configurations no longer participate in evaluation or fan-out.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if projectID == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "project id required")
		return
	}

	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		userID = r.URL.Query().Get("user_id")
	}
	if userID == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "user id is required")
		return
	}

	if err := h.storage.Configs().Deactivate(ctx, projectID, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			jsonError(w, http.StatusNotFound, errCodeNotFound, "alert configuration not found")
			return
		}
		log.Printf("deactivate alert config error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	jsonNoContent(w)
}

// configFromRequest merges the request over the default configuration.
func configFromRequest(projectID, userID, tenantID string, req *SaveRequest) *models.AlertConfig {
	cfg := models.DefaultAlertConfig(projectID, userID)
	cfg.ID = uuid.New().String()
	cfg.TenantID = tenantID

	if req.ThresholdLow != nil {
		cfg.ThresholdLow = *req.ThresholdLow
	}
	if req.ThresholdMedium != nil {
		cfg.ThresholdMedium = *req.ThresholdMedium
	}
	if req.ThresholdHigh != nil {
		cfg.ThresholdHigh = *req.ThresholdHigh
	}
	if req.ThresholdCritical != nil {
		cfg.ThresholdCritical = *req.ThresholdCritical
	}
	if req.NotifyDashboard != nil {
		cfg.NotifyDashboard = *req.NotifyDashboard
	}
	cfg.NotifyEmail = req.NotifyEmail
	cfg.NotifyWebhook = req.NotifyWebhook
	cfg.WebhookURL = req.WebhookURL
	if req.PerCategory != nil {
		cfg.PerCategory = *req.PerCategory
	}
	cfg.PerStage = req.PerStage
	if req.CheckIntervalMin > 0 {
		cfg.CheckInterval = time.Duration(req.CheckIntervalMin) * time.Minute
	}
	return cfg
}
