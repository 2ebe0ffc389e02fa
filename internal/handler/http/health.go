package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"nexuspulse/internal/handler/http/respond"
)

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the status of a single health check.
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthHandler serves liveness and readiness information. DB is nil
// when the process runs on file-backed configuration; that mode is
// healthy by definition.
type HealthHandler struct {
	DB      *sql.DB
	Version string
}

// ServeHTTP answers 200 when every check passes and 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]CheckStatus)
	healthy := true

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.DB.PingContext(ctx); err != nil {
			healthy = false
			checks["database"] = CheckStatus{
				Status:  "unhealthy",
				Message: respond.SanitizeError(err),
			}
		} else {
			checks["database"] = CheckStatus{Status: "healthy"}
		}
	} else {
		checks["config"] = CheckStatus{Status: "healthy", Message: "file-backed configuration"}
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}
