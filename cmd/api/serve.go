package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"agendaapi/docs"
	"agendaapi/internal/config"
	handlers "agendaapi/internal/http/handler"
	"agendaapi/internal/http/middleware"
	"agendaapi/internal/otel"
)

const (
	shutdownGracePeriod = 10 * time.Second
	maxUploadBytes      = 20 << 20
)

var swaggerMu sync.Mutex

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "starts the agenda HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), globalCfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.AppConfig) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, otel.SettingsFromEnv(appName), logger)
	if err != nil {
		logger.Error("tracing_disabled", zap.Error(err))
		shutdownTracing = func(context.Context) error { return nil }
	}

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup_failed", zap.Error(err))
		return multierr.Append(err, shutdownTracing(context.Background()))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app, err := newApp(cfg, b, reg)
	if err != nil {
		return multierr.Combine(err, b.Close(), shutdownTracing(context.Background()))
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("server_starting", zap.String("addr", addr))
		errCh <- app.Listen(addr)
	}()

	select {
	case err = <-errCh:
		if err != nil {
			logger.Error("server_failed", zap.Error(err))
			err = fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown_signal_received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()

	err = multierr.Combine(
		err,
		app.ShutdownWithContext(shutdownCtx),
		b.Close(),
		shutdownTracing(shutdownCtx),
	)
	if err != nil {
		logger.Error("shutdown_failed", zap.Error(err))
		return err
	}

	logger.Info("server_stopped")
	return nil
}

// newApp builds the Fiber application with the global middleware chain and every route.
func newApp(cfg *config.AppConfig, b *backends, reg *prometheus.Registry) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		AppName:      appName,
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    maxUploadBytes,
	})

	prom, err := middleware.NewPrometheusMiddleware(reg, "/metrics", "/healthz")
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(logger))
	app.Use(prom.Handler())
	app.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst, "/auth", "/metrics", "/healthz"))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme. SwaggerInfo is shared by every
	// request, so it is only touched under swaggerMu.
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		swaggerMu.Lock()
		defer swaggerMu.Unlock()
		docs.SwaggerInfo.Host = utils.CopyString(c.Get("Host"))
		docs.SwaggerInfo.Schemes = []string{utils.CopyString(scheme)}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, b.db, b.agenda, b.attachments, cfg.Location())

	return app, nil
}
