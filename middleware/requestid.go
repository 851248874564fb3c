package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/vitalvas/signgate/logging"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// maxIncomingRequestID bounds a trusted client-supplied ID.
const maxIncomingRequestID = 128

type requestIDKey struct{}

// RequestIDFromContext returns the ID stored by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)

	return id
}

// RequestIDConfig configures RequestID.
type RequestIDConfig struct {
	// Logger is the base of the request-scoped logger. When nil, the logger
	// already in the request context is used; with neither, no logger is
	// stored.
	Logger *zap.Logger

	// Generate returns a new ID. Defaults to GenerateUUIDv7.
	Generate func() string

	// TrustIncoming reuses the client's X-Request-ID when it is a short
	// printable token.
	TrustIncoming bool
}

// RequestID assigns every request an ID, echoes it in X-Request-ID and
// stores a logger carrying a request_id field in the request context (see
// logging.FromContext).
func RequestID(cfg RequestIDConfig) Func {
	generate := cfg.Generate
	if generate == nil {
		generate = GenerateUUIDv7
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if cfg.TrustIncoming {
				id = incomingRequestID(r.Header.Get(RequestIDHeader))
			}

			if id == "" {
				id = generate()
			}

			if id == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set(RequestIDHeader, id)

			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			if logger := logging.FromContext(ctx, cfg.Logger); logger != nil {
				ctx = logging.NewContext(ctx, logger.With(zap.String("request_id", id)))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// incomingRequestID returns v if it is usable as a request ID, otherwise "".
func incomingRequestID(v string) string {
	if len(v) > maxIncomingRequestID {
		return ""
	}

	for i := range len(v) {
		if v[i] < 0x21 || v[i] > 0x7e {
			return ""
		}
	}

	return v
}

// GenerateUUIDv4 returns a random UUID (RFC 9562 section 5.4).
func GenerateUUIDv4() string {
	return uuid.NewString()
}

// GenerateUUIDv7 returns a time-ordered UUID (RFC 9562 section 5.7).
func GenerateUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}
