// Package middleware provides net/http middleware used in front of the
// gateway handler.
//
// Middleware are plain func(http.Handler) http.Handler values and are
// composed with Chain; the first middleware passed is the outermost:
//
//	h := middleware.Chain(gatewayHandler,
//	    middleware.RequestID(middleware.RequestIDConfig{Logger: logger}),
//	    metrics.Middleware(),
//	    middleware.Recovery(middleware.RecoveryConfig{Logger: logger}),
//	)
//
// # Request-scoped logging
//
// RequestID stores a logger carrying request_id in the request context and
// Hostname adds a hostname field to it. Handlers read it back with
// logging.FromContext; the gateway's access log and Recovery both do.
//
// # Request Size Limit Middleware
//
// RequestSizeLimit wraps the request body with http.MaxBytesReader. Reads
// beyond the limit fail, which the gateway reports as an unreadable body.
//
//	mw, err := middleware.RequestSizeLimit(middleware.RequestSizeLimitConfig{
//	    MaxBytes: 1 << 20,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Metrics Middleware
//
// Metrics counts requests and observes their duration, labelled by status
// code and method, in a Prometheus registry.
//
//	m, err := middleware.NewMetrics(prometheus.DefaultRegisterer)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	h = m.Middleware()(h)
package middleware
