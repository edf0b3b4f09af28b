package currency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments, initialized once via InitMetrics().
var (
	lookupCounter   metric.Int64Counter
	lookupHistogram metric.Float64Histogram
	keysCounter     metric.Int64Counter
	errorCounter    metric.Int64Counter
)

// InitMetrics registers the OTel instruments of the currency surface.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("currency")

	var err error

	lookupCounter, err = meter.Int64Counter("currency.rate_lookups.total",
		metric.WithDescription("Total number of exchange rate lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return fmt.Errorf("creating rate lookup counter: %w", err)
	}

	lookupHistogram, err = meter.Float64Histogram("currency.rate_lookup.duration",
		metric.WithDescription("Duration of exchange rate lookups"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("creating rate lookup histogram: %w", err)
	}

	keysCounter, err = meter.Int64Counter("currency.keys.total",
		metric.WithDescription("Total number of key presses applied to currency keypads"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return fmt.Errorf("creating keys counter: %w", err)
	}

	errorCounter, err = meter.Int64Counter("currency.errors.total",
		metric.WithDescription("Total number of rejected currency requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	return nil
}

// recordLookup tolerates missing instruments: cmd/keypad runs converters
// without calling InitMetrics.
func recordLookup(ctx context.Context, from, to string, d time.Duration, err error) {
	outcome := "success"
	switch {
	case errors.Is(err, context.Canceled):
		outcome = "cancelled"
	case err != nil:
		outcome = "error"
	}

	attrs := metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
		attribute.String("outcome", outcome),
	)

	if lookupCounter != nil {
		lookupCounter.Add(ctx, 1, attrs)
	}
	if lookupHistogram != nil {
		lookupHistogram.Record(ctx, d.Seconds(), attrs)
	}
}
