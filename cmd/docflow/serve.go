package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	handlers "docflow/internal/http/handler"
	"docflow/internal/http/middleware"
	"docflow/internal/otel"
	"docflow/internal/service"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook intake and analysis HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		shutdownTracing, err := otel.Init(ctx, zap.L())
		if err != nil {
			return err
		}
		defer shutdownTracing(context.Background())

		policies, err := parsePolicies(cfg.Stages)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, envOptions{vault: true, temporal: true})
		if err != nil {
			return err
		}
		defer env.Close()

		deps := handlers.Deps{
			Uploads:   newIntake(env, service.Uploads, policies.uploads),
			Contracts: newIntake(env, service.Contracts, policies.contracts),
			Gatherer:  prometheus.DefaultGatherer,
		}
		if env.DB != nil {
			deps.DB = env.DB
		}

		// /analysis is only served when an LLM backend is configured; the
		// worker is the usual host for that stage.
		if completer, err := newCompleter(ctx); err != nil {
			zap.L().Warn("analysis endpoint disabled", zap.Error(err))
		} else {
			env.LLM = completer
			deps.Analysis = newAnalysis(env, policies.analysis)
		}

		app, err := newApp(deps, zap.L(), prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}

		port := servePort
		if port == "" {
			port = cfg.Port
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = app.ShutdownWithContext(sctx)
		}()

		zap.L().Info("starting server", zap.String("port", port))
		if err := app.Listen(":" + port); err != nil {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// newApp assembles the Fiber app: tracing, request ids, access logs and
// metrics wrap every route.
func newApp(deps handlers.Deps, log *zap.Logger, reg prometheus.Registerer) (*fiber.App, error) {
	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, eris.Wrap(err, "register http metrics")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(log),
		DisableStartupMessage: true,
	})
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(prom.Handler())

	handlers.RegisterRoutes(app, deps)
	return app, nil
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "server port (default from PORT)")
	rootCmd.AddCommand(serveCmd)
}
