package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Logger is the process-wide logger. It is a no-op logger until InitLogger
// or InitFileLogger runs.
var Logger = zap.NewNop()

// InitLogger builds the stdout logger: JSON for "json", human-readable for
// "console".
func InitLogger(format string) error {
	var (
		l   *zap.Logger
		err error
	)

	switch format {
	case "", "json":
		l, err = zap.NewProduction()
	case "console":
		l, err = zap.NewDevelopment()
	default:
		return fmt.Errorf("unsupported log format %q", format)
	}
	if err != nil {
		return err
	}

	Logger = l
	return nil
}

// InitFileLogger sends JSON logs to path. Terminal clients use it so log
// lines never land on the screen they draw.
func InitFileLogger(path string) error {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("building file logger: %w", err)
	}

	Logger = l
	return nil
}

func SyncLogger() {
	_ = Logger.Sync()
}

// LoggerWithTrace returns a child logger carrying trace_id and span_id of the
// active span in ctx.
//
// ctx itself is attached as zap.Any("context", ctx): the otelzap bridge uses
// any context-valued field as the context of log.Logger.Emit, which fills the
// native TraceID/SpanID of the exported OTLP record. Without it the bridge
// emits with context.Background() and logs cannot be joined to traces.
func LoggerWithTrace(ctx context.Context) *zap.Logger {
	span := trace.SpanContextFromContext(ctx)

	if !span.IsValid() {
		return Logger
	}

	return Logger.With(
		zap.Any("context", ctx),
		zap.String("trace_id", span.TraceID().String()),
		zap.String("span_id", span.SpanID().String()),
	)
}
