// Package alerts provides HTTP handlers for deviation alert endpoints.
package alerts

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

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
	errCodeConflict         = "CONFLICT"
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

// Handler handles alert endpoints.
type Handler struct {
	storage storage.Storage
}

func NewHandler(store storage.Storage) *Handler {
	return &Handler{storage: store}
}

// Request types
type TransitionRequest struct {
	Note string `json:"note,omitempty"`
}

type ReadRequest struct {
	UserID string `json:"user_id,omitempty"`
}

type PurgeRequest struct {
	Days int `json:"days"`
}

// List returns alerts matching the query filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := filterFromQuery(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}
	filter.TenantID = middleware.GetTenantID(ctx)

	alerts, err := h.storage.Alerts().List(ctx, filter)
	if err != nil {
		log.Printf("list alerts error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	jsonOK(w, alerts)
}

// GetByID returns one alert.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "alert id required")
		return
	}

	alert, err := h.storage.Alerts().GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			jsonError(w, http.StatusNotFound, errCodeNotFound, "alert not found")
			return
		}
		log.Printf("get alert error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	jsonOK(w, alert)
}

// History returns the append-only audit trail for one alert, oldest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "alert id required")
		return
	}

	ctx := r.Context()
	if _, err := h.storage.Alerts().GetByID(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			jsonError(w, http.StatusNotFound, errCodeNotFound, "alert not found")
			return
		}
		log.Printf("alert history error: get alert: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	entries, err := h.storage.History().ListByAlert(ctx, id)
	if err != nil {
		log.Printf("alert history error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	jsonOK(w, entries)
}

// Notifications returns the delivery records for one alert.
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "alert id required")
		return
	}

	items, err := h.storage.Notifications().ListByAlert(r.Context(), id)
	if err != nil {
		log.Printf("alert notifications error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	jsonOK(w, items)
}

// Resolve transitions an alert to RESOLVED.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.AlertStatusResolved)
}

// Ignore transitions an alert to IGNORED.
func (h *Handler) Ignore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.AlertStatusIgnored)
}

// Reactivate transitions a resolved or ignored alert back to ACTIVE.
func (h *Handler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.AlertStatusActive)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, status models.AlertStatus) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "alert id required")
		return
	}

	var req TransitionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
			return
		}
	}

	ctx := r.Context()
	if err := h.storage.Alerts().Transition(ctx, id, status, req.Note); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			jsonError(w, http.StatusNotFound, errCodeNotFound, "alert not found")
		case errors.Is(err, storage.ErrConflict):
			jsonError(w, http.StatusConflict, errCodeConflict, "alert does not admit this transition")
		default:
			log.Printf("transition alert %s to %s error: %v", id, status, err)
			jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		}
		return
	}

	alert, err := h.storage.Alerts().GetByID(ctx, id)
	if err != nil {
		log.Printf("transition alert %s: reload: %v", id, err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	log.Printf("alert %s transitioned to %s", id, status)
	jsonOK(w, alert)
}

// Visualize records that the alert was seen without changing its status.
func (h *Handler) Visualize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "alert id required")
		return
	}

	var req TransitionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
			return
		}
	}

	if err := h.storage.Alerts().MarkVisualized(r.Context(), id, req.Note); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			jsonError(w, http.StatusNotFound, errCodeNotFound, "alert not found")
			return
		}
		log.Printf("visualize alert %s error: %v", id, err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	jsonOK(w, map[string]string{"status": "visualized"})
}

// Read acknowledges the alert's SENT dashboard notifications for the caller.
func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "alert id required")
		return
	}

	var req ReadRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
			return
		}
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

	updated, err := h.storage.Notifications().MarkRead(ctx, id, userID)
	if err != nil {
		log.Printf("mark alert %s read error: %v", id, err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	jsonOK(w, map[string]int64{"updated": updated})
}

// Stats returns alert statistics, optionally scoped to one project.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.storage.Alerts().Stats(r.Context(), r.URL.Query().Get("project_id"))
	if err != nil {
		log.Printf("alert stats error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	jsonOK(w, stats)
}

// Purge deletes resolved and ignored alerts older than the requested number
// of days (default 90).
func (h *Handler) Purge(w http.ResponseWriter, r *http.Request) {
	var req PurgeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
			return
		}
	}
	if req.Days == 0 {
		req.Days = 90
	}
	if req.Days < 0 {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "days must be positive")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -req.Days)
	deleted, err := h.storage.Alerts().DeleteResolvedBefore(r.Context(), cutoff)
	if err != nil {
		log.Printf("purge alerts error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	log.Printf("purged %d alerts older than %d days", deleted, req.Days)
	jsonOK(w, map[string]int64{"deleted": deleted})
}
