package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/op-shuffle/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/AdamBeresnev/op-shuffle/internal/service"

// Telemetry bundles what every service reports to.
type Telemetry struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Tracer  trace.Tracer
}

// NewTelemetry fills in defaults for nil arguments. The tracer comes from the
// global otel provider, which is a no-op unless the host installs one.
func NewTelemetry(logger *slog.Logger, m *metrics.Metrics) *Telemetry {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	return &Telemetry{
		Logger:  logger,
		Metrics: m,
		Tracer:  otel.Tracer(tracerName),
	}
}

// observe runs op inside a span and records its outcome.
func (t *Telemetry) observe(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, span := t.Tracer.Start(ctx, op)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	t.Metrics.RecordOperation(op, err, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
