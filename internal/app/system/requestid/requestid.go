// Package requestid tags every request with an id and exposes a logger
// that carries it.
package requestid

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Header is the request and response header that carries the id.
const Header = "X-Request-ID"

// Middleware assigns a request id, reusing a well-formed incoming
// X-Request-ID and otherwise generating a UUID. The id is stored where
// chi's middleware.GetReqID finds it and echoed in the response header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(Header))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Get returns the request id stored in ctx, or "".
func Get(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}

// Logger returns base annotated with the request's id, if any.
func Logger(r *http.Request, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	if id := Get(r.Context()); id != "" {
		return base.With(zap.String("request_id", id))
	}
	return base
}
