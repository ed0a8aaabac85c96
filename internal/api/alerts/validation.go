package alerts

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/obraguard/obraguard/internal/models"
	"github.com/obraguard/obraguard/internal/storage"
)

// filterFromQuery builds an AlertFilter from list query parameters.
func filterFromQuery(r *http.Request) (storage.AlertFilter, error) {
	q := r.URL.Query()
	var filter storage.AlertFilter

	filter.ProjectID = q.Get("project_id")

	if s := q.Get("status"); s != "" {
		status, ok := models.ParseAlertStatus(s)
		if !ok {
			return filter, errors.New("status must be 'ACTIVE', 'RESOLVED', or 'IGNORED'")
		}
		filter.Status = status
	}

	if s := q.Get("severity"); s != "" {
		severity, ok := models.ParseSeverity(s)
		if !ok {
			return filter, errors.New("severity must be 'LOW', 'MEDIUM', 'HIGH', or 'CRITICAL'")
		}
		filter.Severity = severity
	}

	if s := q.Get("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return filter, errors.New("since must be an RFC 3339 timestamp")
		}
		filter.Since = t
	}

	if s := q.Get("until"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return filter, errors.New("until must be an RFC 3339 timestamp")
		}
		filter.Until = t
	}

	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 || limit > 1000 {
			return filter, errors.New("limit must be between 1 and 1000")
		}
		filter.Limit = limit
	}

	return filter, nil
}
