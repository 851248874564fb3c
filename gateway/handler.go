package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vitalvas/signgate/logging"
	"github.com/vitalvas/signgate/signer"
	"go.uber.org/zap"
)

// Handler serves the sign and verify routes.
type Handler struct {
	dispatcher *Dispatcher
	logger     *zap.Logger
	cors       CORSConfig
	chunkSize  int
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used for request and access logging.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithCORS overrides DefaultCORSConfig.
func WithCORS(cfg CORSConfig) Option {
	return func(h *Handler) {
		h.cors = cfg
	}
}

// WithChunkSize sets the body chunk size used by ServeHTTP.
func WithChunkSize(n int) Option {
	return func(h *Handler) {
		h.chunkSize = n
	}
}

// NewHandler returns a Handler answering requests with s.
func NewHandler(s signer.Signer, opts ...Option) *Handler {
	h := &Handler{
		logger:    zap.NewNop(),
		cors:      DefaultCORSConfig(),
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(h)
	}

	h.dispatcher = NewDispatcher(s, h.logger)

	return h
}

// ServeHTTP serves r through an HTTP session.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := NewHTTPSession(w, r, h.chunkSize)

	if err := h.Serve(ctx, sess); err != nil {
		h.requestLogger(ctx).Error("request abandoned",
			zap.String("summary", sess.RequestSummary()),
			zap.Error(err),
		)
	}
}

// Serve runs the pipeline for one request. Rejected requests are answered
// without reading the body. A non-nil error means the request was abandoned:
// either the caller went away while the body was read, or the response could
// not be written.
func (h *Handler) Serve(ctx context.Context, s Session) error {
	logger := h.requestLogger(ctx)
	summary := s.RequestSummary()

	parsed, err := ParseSummary(summary)
	if err != nil {
		logger.Error("invalid request summary", zap.Error(err))
	}

	c := Classify(parsed)
	status := c.Status

	var body []byte

	if c.Accepted() {
		status, body, err = h.handle(ctx, logger, c.Route, s)
		if err != nil {
			return err
		}
	}

	if err := WriteResponse(s, status, body, h.cors); err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	logger.Info("request served",
		zap.String("summary", summary),
		zap.String("method", parsed.Method),
		zap.String("route", parsed.Route),
		zap.Int("status", status),
	)

	return nil
}

func (h *Handler) handle(ctx context.Context, logger *zap.Logger, route Route, s Session) (int, []byte, error) {
	reqBody, ok := ReadRequestBody(ctx, s, logger)
	if !ok {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}

		return http.StatusBadRequest, nil, nil
	}

	resp, ok := h.dispatcher.Dispatch(route, reqBody)
	if !ok {
		return http.StatusBadRequest, nil, nil
	}

	out, err := json.Marshal(resp)
	if err != nil {
		logger.Error("failed to encode response body", zap.Error(err))
		return http.StatusInternalServerError, nil, nil
	}

	return http.StatusOK, out, nil
}

// requestLogger prefers the request-scoped logger installed by the
// middleware chain, which carries request_id and hostname.
func (h *Handler) requestLogger(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx, h.logger)
}
