package middleware

import (
	"errors"
	"net/http"

	"github.com/vitalvas/signgate/logging"
	"go.uber.org/zap"
)

// RecoveryConfig configures Recovery.
type RecoveryConfig struct {
	// Logger is used when the request context carries no logger. When both
	// are absent, panics are not logged.
	Logger *zap.Logger

	// Header returns the header sent with the 500 response, for example the
	// CORS headers the rest of the service always sends. Content-Length is
	// always set to 0.
	Header func() http.Header
}

// Recovery turns a panic in a downstream handler into an empty 500 response.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recovery(cfg RecoveryConfig) Func {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}

				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}

				if logger := logging.FromContext(r.Context(), cfg.Logger); logger != nil {
					logger.Error("recovered from panic",
						zap.String("method", r.Method),
						zap.String("uri", r.RequestURI),
						zap.Any("panic", v),
						zap.Stack("stack"),
					)
				}

				dst := w.Header()
				if cfg.Header != nil {
					for key, values := range cfg.Header() {
						dst[key] = values
					}
				}

				dst.Set("Content-Length", "0")
				w.WriteHeader(http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
