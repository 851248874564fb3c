package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vitalvas/signgate/config"
	"github.com/vitalvas/signgate/gateway"
	"github.com/vitalvas/signgate/logging"
	"github.com/vitalvas/signgate/middleware"
	"github.com/vitalvas/signgate/server"
	"github.com/vitalvas/signgate/signer"
	"go.uber.org/zap"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sign/verify gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}

			if listen != "" {
				cfg.Listen = listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "public listen address (overrides configuration)")

	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	base, err := newSigner(cfg)
	if err != nil {
		logger.Error("cannot derive signing key", zap.Error(err))
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s, err := signer.Instrument(base, reg)
	if err != nil {
		return err
	}

	handler, err := newPublicHandler(cfg, s, logger, reg)
	if err != nil {
		return err
	}

	opts := server.Options{
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.ShutdownTimeout,
		Logger:            logger,
	}

	public := server.New("public", cfg.Listen, handler, opts)

	var admin *server.Server
	if cfg.AdminListen != "" {
		admin = server.New("admin", cfg.AdminListen, server.AdminHandler(reg), opts)
	}

	logger.Info("starting signgate",
		zap.String("listen", cfg.Listen),
		zap.String("admin_listen", cfg.AdminListen),
	)

	return server.Run(ctx, public, admin)
}

// newPublicHandler wraps the gateway in the public middleware chain.
func newPublicHandler(cfg config.Config, s signer.Signer, logger *zap.Logger, reg prometheus.Registerer) (http.Handler, error) {
	cors := gateway.CORSConfig{
		AllowedOrigin:  cfg.CORS.AllowedOrigin,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
		MaxAge:         cfg.CORS.MaxAge,
	}

	mws, err := newPublicMiddleware(cfg, cors, logger, reg)
	if err != nil {
		return nil, err
	}

	gw := gateway.NewHandler(s,
		gateway.WithLogger(logger),
		gateway.WithCORS(cors),
	)

	return middleware.Chain(gw, mws...), nil
}

// newPublicMiddleware returns the public chain, outermost first. RequestID
// and Hostname run first so every later log line carries their fields;
// Metrics sits outside Recovery so recovered panics are counted as 500s.
func newPublicMiddleware(cfg config.Config, cors gateway.CORSConfig, logger *zap.Logger, reg prometheus.Registerer) ([]middleware.Func, error) {
	sizeLimit, err := middleware.RequestSizeLimit(middleware.RequestSizeLimitConfig{MaxBytes: cfg.MaxBodyBytes})
	if err != nil {
		return nil, err
	}

	metrics, err := middleware.NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	var hostname middleware.Func
	if cfg.HostnameHeader {
		hostname, err = middleware.Hostname(middleware.HostnameConfig{Env: []string{"POD_NAME", "HOSTNAME"}})
		if err != nil {
			return nil, err
		}
	}

	return []middleware.Func{
		middleware.RequestID(middleware.RequestIDConfig{Logger: logger}),
		hostname,
		metrics.Middleware(),
		middleware.Recovery(middleware.RecoveryConfig{
			Logger: logger,
			Header: func() http.Header {
				return gateway.BuildHeader(http.StatusInternalServerError, nil, cors)
			},
		}),
		sizeLimit,
	}, nil
}
