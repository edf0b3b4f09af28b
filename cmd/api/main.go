package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smart-calculator/internal/calculator"
	"smart-calculator/internal/config"
	"smart-calculator/internal/currency"
	"smart-calculator/internal/observability"
	"smart-calculator/internal/server"

	"go.uber.org/zap"
)

func main() {

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Config
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		panic(err)
	}

	// Logger
	if err := observability.InitLogger(cfg.LogFormat); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Tracing, metrics and log export
	telemetryShutdown, err := initTelemetry(ctx, cfg)
	if err != nil {
		panic(err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			observability.Logger.Error("telemetry shutdown", zap.Error(err))
		}
	}()

	if err := initMetrics(); err != nil {
		panic(err)
	}

	// Rates
	provider, err := newRateProvider(ctx, cfg)
	if err != nil {
		panic(err)
	}

	// Sessions
	calculators := calculator.NewSessions()
	converters := currency.NewSessions()

	go calculators.RunJanitor(ctx, cfg.SessionSweepInterval, cfg.SessionTTL, observability.Logger.With(zap.String("surface", "calculator")))
	go converters.RunJanitor(ctx, cfg.SessionSweepInterval, cfg.SessionTTL, observability.Logger.With(zap.String("surface", "currency")))

	// Router
	router, err := server.NewRouter(server.Deps{
		Calculators: calculators,
		Converters:  converters,
		Rates:       provider,
	})
	if err != nil {
		panic(err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		observability.Logger.Info("server started", zap.String("addr", cfg.HTTPAddr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	waitForShutdown(srv)
}

func waitForShutdown(srv *http.Server) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Error("server shutdown", zap.Error(err))
	}

	observability.Logger.Info("server stopped")
}
