// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/agreeverse/internal/app/store/audit"
	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/paging"
	"github.com/dalemusser/agreeverse/internal/app/system/respond"
	"github.com/dalemusser/agreeverse/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeList handles GET /audit-events. Filters: category, event_type, role,
// user_id, start_date and end_date (YYYY-MM-DD), page.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter, page, err := parseFilter(r)
	if err != nil {
		apierr.Write(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	events, err := h.Store.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		apierr.Write(w, apierr.Wrap(err, "query audit events"))
		return
	}
	total, err := h.Store.Count(ctx, filter)
	if err != nil {
		h.Log.Error("failed to count audit events", zap.Error(err))
		apierr.Write(w, apierr.Wrap(err, "count audit events"))
		return
	}

	respond.OK(w, http.StatusOK, "Audit events retrieved successfully", map[string]any{
		"events":     events,
		"page":       page.Number,
		"totalPages": page.TotalPages(total),
		"total":      total,
	})
}

func parseFilter(r *http.Request) (audit.QueryFilter, paging.Page, error) {
	q := r.URL.Query()
	page := paging.Parse(r)

	filter := audit.QueryFilter{
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		Role:      strings.TrimSpace(q.Get("role")),
		Limit:     page.Limit(),
		Offset:    page.Offset(),
	}

	if raw := strings.TrimSpace(q.Get("user_id")); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return filter, page, apierr.New(apierr.Validation, "Invalid user id")
		}
		filter.UserID = &id
	}
	if raw := strings.TrimSpace(q.Get("start_date")); raw != "" {
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return filter, page, apierr.New(apierr.Validation, "start_date must be YYYY-MM-DD")
		}
		filter.StartTime = &t
	}
	if raw := strings.TrimSpace(q.Get("end_date")); raw != "" {
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return filter, page, apierr.New(apierr.Validation, "end_date must be YYYY-MM-DD")
		}
		// end of day
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &end
	}
	return filter, page, nil
}
