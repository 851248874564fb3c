package middleware

import (
	"errors"
	"net/http"
)

// ErrInvalidMaxSize is returned when RequestSizeLimitConfig.MaxBytes is not
// greater than zero.
var ErrInvalidMaxSize = errors.New("request size limit: max size must be greater than zero")

// RequestSizeLimitConfig configures the Request Size Limit middleware.
type RequestSizeLimitConfig struct {
	// MaxBytes is the maximum allowed request body size in bytes.
	MaxBytes int64
}

// RequestSizeLimit returns a middleware that wraps r.Body with
// http.MaxBytesReader, so reads beyond MaxBytes fail with
// *http.MaxBytesError.
//
// It returns ErrInvalidMaxSize if MaxBytes is not greater than zero.
func RequestSizeLimit(cfg RequestSizeLimitConfig) (Func, error) {
	if cfg.MaxBytes <= 0 {
		return nil, ErrInvalidMaxSize
	}

	maxBytes := cfg.MaxBytes

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}
