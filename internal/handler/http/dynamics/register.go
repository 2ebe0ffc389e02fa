package dynamics

import (
	"log/slog"
	"net/http"

	"nexuspulse/internal/usecase/aggregate"
)

// Register registers the timeline endpoints with the given mux.
func Register(mux *http.ServeMux, svc *aggregate.Service, logger *slog.Logger) {
	mux.Handle("GET /dynamics", EntityHandler{Svc: svc, Logger: logger})
	mux.Handle("GET /dynamics/global", GlobalHandler{Svc: svc, Logger: logger})
}
