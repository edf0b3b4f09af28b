package main

import (
	"context"
	"errors"

	"smart-calculator/internal/calculator"
	"smart-calculator/internal/config"
	"smart-calculator/internal/currency"
	"smart-calculator/internal/observability"
	"smart-calculator/internal/rates"

	"go.uber.org/zap"
)

type shutdownFunc func(context.Context) error

// initTelemetry starts the OTLP pipelines enabled in cfg and returns a
// function flushing all of them.
func initTelemetry(ctx context.Context, cfg config.Config) (shutdownFunc, error) {
	var shutdowns []shutdownFunc

	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	if !cfg.OTelEnabled {
		return shutdown, nil
	}

	traceShutdown, err := observability.InitTracing(ctx, cfg.ServiceName)
	if err != nil {
		return nil, err
	}
	shutdowns = append(shutdowns, traceShutdown)

	metricShutdown, err := observability.InitMetrics(ctx, cfg.ServiceName)
	if err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}
	shutdowns = append(shutdowns, metricShutdown)

	if cfg.OTelLogsEnabled {
		logShutdown, err := observability.InitLogging(ctx, cfg.ServiceName)
		if err != nil {
			return nil, errors.Join(err, shutdown(ctx))
		}
		shutdowns = append(shutdowns, logShutdown)
	}

	return shutdown, nil
}

// initMetrics creates the application-specific metric instruments. Add new
// domain InitMetrics calls here as the project grows.
func initMetrics() error {
	if err := calculator.InitMetrics(); err != nil {
		return err
	}

	return currency.InitMetrics()
}

// newRateProvider reads rates from RATES_FILE when set, following edits to
// the file, and from the HTTP service otherwise.
func newRateProvider(ctx context.Context, cfg config.Config) (rates.Provider, error) {
	if cfg.RatesFile == "" {
		observability.Logger.Info("using HTTP rate provider",
			zap.String("base_url", cfg.RatesBaseURL),
			zap.Duration("cache_ttl", cfg.RatesCacheTTL),
		)

		return rates.NewHTTPProvider(cfg.RatesBaseURL,
			rates.WithTimeout(cfg.RatesTimeout),
			rates.WithCacheTTL(cfg.RatesCacheTTL),
		), nil
	}

	p, err := rates.NewFileProvider(cfg.RatesFile, rates.WithLogger(observability.Logger))
	if err != nil {
		return nil, err
	}

	go func() {
		if err := p.Watch(ctx); err != nil {
			observability.Logger.Error("rate file watcher stopped", zap.Error(err))
		}
	}()

	observability.Logger.Info("using file rate provider", zap.String("path", cfg.RatesFile))

	return p, nil
}
