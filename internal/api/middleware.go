package api

import (
	"net/http"

	"github.com/signalsfoundry/orbit-risk/internal/logging"
)

const requestIDHeader = "X-Request-Id"

// RequestIDMiddleware ensures a request_id is present on the context,
// sourcing it from the inbound header if provided, attaches a per-request
// logger annotated with request_id and route, and echoes the ID on the
// response.
func RequestIDMiddleware(base logging.Logger, next http.Handler) http.Handler {
	if base == nil {
		base = logging.Noop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if incoming := r.Header.Get(requestIDHeader); incoming != "" {
			ctx = logging.ContextWithRequestID(ctx, incoming)
		}

		ctx, reqLog := logging.WithRequestLogger(ctx, base.With(logging.String("route", r.URL.Path)))
		ctx = logging.ContextWithLogger(ctx, reqLog)

		w.Header().Set(requestIDHeader, logging.RequestIDFromContext(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
