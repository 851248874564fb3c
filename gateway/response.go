package gateway

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures the CORS headers sent with every response.
//
// See https://fetch.spec.whatwg.org/#http-cors-protocol
type CORSConfig struct {
	// AllowedOrigin is the Access-Control-Allow-Origin value.
	AllowedOrigin string

	// AllowedMethods is joined into Access-Control-Allow-Methods.
	AllowedMethods []string

	// AllowedHeaders is joined into Access-Control-Allow-Headers.
	AllowedHeaders []string

	// MaxAge is the duration in seconds a preflight result may be cached.
	MaxAge int
}

// DefaultCORSConfig allows any origin to POST JSON and caches preflight
// results for a day.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigin:  "*",
		AllowedMethods: []string{http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400,
	}
}

// BuildHeader returns the response header for a response with the given
// body. Content-Length always matches len(body) and the CORS headers are
// present regardless of status.
func BuildHeader(status int, body []byte, cors CORSConfig) http.Header {
	h := make(http.Header, 6)

	h.Set("Content-Length", strconv.Itoa(len(body)))

	if len(body) > 0 && status != http.StatusNoContent {
		h.Set("Content-Type", "application/json")
	}

	h.Set("Access-Control-Allow-Origin", cors.AllowedOrigin)
	h.Set("Access-Control-Allow-Methods", strings.Join(cors.AllowedMethods, ","))
	h.Set("Access-Control-Allow-Headers", strings.Join(cors.AllowedHeaders, ","))
	h.Set("Access-Control-Max-Age", strconv.Itoa(cors.MaxAge))

	return h
}

// WriteResponse writes the header built by BuildHeader followed by body.
func WriteResponse(s Session, status int, body []byte, cors CORSConfig) error {
	if err := s.WriteResponseHeader(status, BuildHeader(status, body, cors)); err != nil {
		return err
	}

	return s.WriteResponseBody(body)
}
