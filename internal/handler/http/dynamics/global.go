package dynamics

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"nexuspulse/internal/handler/http/requestid"
	"nexuspulse/internal/handler/http/respond"
	"nexuspulse/internal/observability/logging"
	"nexuspulse/internal/usecase/aggregate"
)

// GlobalHandler serves GET /dynamics/global: the condensed timeline
// across every configured entity.
type GlobalHandler struct {
	Svc    *aggregate.Service
	Logger *slog.Logger
}

func (h GlobalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	reqID := requestid.FromContext(ctx)
	logger := logging.WithRequestID(ctx, h.Logger)

	result, err := h.Svc.AggregateGlobal(ctx)
	if err != nil {
		if errors.Is(err, aggregate.ErrConfigLookup) {
			logger.Error("global configuration lookup failed",
				"error", respond.SanitizeError(err),
				"request_id", reqID)
			respond.Error(w, http.StatusInternalServerError, respond.CodeConfigFetch,
				"Failed to fetch configuration data", "", "Config Fetch")
			return
		}
		respond.InternalError(w, "Request Processing", err)
		return
	}

	logger.Info("global dynamics request completed",
		"items", len(result.Items),
		"feeds_attempted", result.Stats.FeedsAttempted,
		"feeds_failed", result.Stats.FeedsFailed,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", reqID)

	respond.JSON(w, http.StatusOK, NewResponse(result))
}
