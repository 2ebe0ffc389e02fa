// Package requestid assigns each HTTP request a unique ID so one
// aggregation request can be followed across log lines and traces.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey is a private type so this package's context entries
// cannot collide with other packages.
type contextKey struct{}

// Header is the HTTP header used to propagate request IDs.
const Header = "X-Request-ID"

var requestIDKey contextKey

// FromContext returns the request ID stored in ctx, or "" when none is set.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// NewContext returns a copy of ctx carrying the given request ID.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// Middleware propagates an incoming X-Request-ID header or generates a
// fresh UUID when the client sent none. The ID is echoed on the
// response so callers can correlate their request with server logs.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.New().String()
		}

		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), id)))
	})
}
