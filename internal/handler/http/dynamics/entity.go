package dynamics

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"nexuspulse/internal/handler/http/requestid"
	"nexuspulse/internal/handler/http/respond"
	"nexuspulse/internal/observability/logging"
	"nexuspulse/internal/usecase/aggregate"
)

// EntityHandler serves GET /dynamics?slug=<slug>: the aggregated
// timeline for one tracked entity.
type EntityHandler struct {
	Svc    *aggregate.Service
	Logger *slog.Logger
}

func (h EntityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	reqID := requestid.FromContext(ctx)
	logger := logging.WithRequestID(ctx, h.Logger)

	slug := r.URL.Query().Get("slug")
	if slug == "" {
		logger.Warn("dynamics request without slug", "request_id", reqID)
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidRequest,
			"Missing required parameter", "Slug parameter is required", "Request Validation")
		return
	}

	logger.Info("dynamics request",
		"slug", slug,
		"request_id", reqID)

	result, err := h.Svc.AggregateEntity(ctx, slug)
	if err != nil {
		switch {
		case errors.Is(err, aggregate.ErrEntityNotFound):
			logger.Warn("entity not found",
				"slug", slug,
				"request_id", reqID)
			respond.Error(w, http.StatusNotFound, respond.CodeEntityNotFound,
				"Entity configuration not found",
				fmt.Sprintf("Entity not found for slug: %s", slug), "Entity Lookup")
		case errors.Is(err, aggregate.ErrConfigLookup):
			logger.Error("entity configuration lookup failed",
				"slug", slug,
				"error", respond.SanitizeError(err),
				"request_id", reqID)
			respond.Error(w, http.StatusInternalServerError, respond.CodeConfigFetch,
				"Failed to fetch configuration data", "", "Config Fetch")
		default:
			respond.InternalError(w, "Request Processing", err)
		}
		return
	}

	logger.Info("dynamics request completed",
		"slug", slug,
		"items", len(result.Items),
		"feeds_failed", result.Stats.FeedsFailed,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", reqID)

	respond.JSON(w, http.StatusOK, NewResponse(result))
}
