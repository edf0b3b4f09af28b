package calculator

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments, initialized once via InitMetrics().
var (
	keysCounter  metric.Int64Counter
	evalCounter  metric.Int64Counter
	errorCounter metric.Int64Counter
	resultGauge  metric.Float64Gauge
)

// InitMetrics registers the OTel instruments of the calculator surface.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	keysCounter, err = meter.Int64Counter("keypad.keys.total",
		metric.WithDescription("Total number of key presses applied to calculator keypads"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return fmt.Errorf("creating keys counter: %w", err)
	}

	evalCounter, err = meter.Int64Counter("keypad.evaluations.total",
		metric.WithDescription("Total number of binary operations evaluated by operator or equals keys"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return fmt.Errorf("creating evaluations counter: %w", err)
	}

	errorCounter, err = meter.Int64Counter("keypad.errors.total",
		metric.WithDescription("Total number of rejected calculator requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("keypad.last_result",
		metric.WithDescription("The most recent finite result evaluated on a calculator keypad"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	return nil
}
