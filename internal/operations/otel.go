package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"salesforecast/internal/infrastructure"
)

const (
	TracerName = "salesforecast.operation"
)

// OperationTracer provides spans and metrics for pipeline runs
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer bound to the run's providers.
// With nil providers spans go to the global tracer and metrics are dropped.
func NewOperationTracer(providers *infrastructure.OTelProviders) *OperationTracer {
	if providers == nil || providers.Tracer == nil {
		return &OperationTracer{tracer: otel.Tracer(TracerName)}
	}
	return &OperationTracer{
		tracer:  providers.Tracer,
		metrics: providers.Metrics,
	}
}

// Metrics exposes the pipeline instruments; may be nil
func (pt *OperationTracer) Metrics() *infrastructure.PipelineMetrics {
	return pt.metrics
}

// TraceOperationExecution creates a span for the entire operation execution
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, operationID string, stageIDs []string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.StringSlice("operation.stages", stageIDs),
		),
	)
}

// TraceStageExecution creates a span for individual Step execution
func (pt *OperationTracer) TraceStageExecution(ctx context.Context, operationID, stageID string) (context.Context, trace.Span) {
	spanName := fmt.Sprintf("operation.stage.%s", stageID)
	return pt.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("stage.id", stageID),
		),
	)
}

// RecordStageCompletion closes out a stage span and records its metrics
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stageID string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	span.SetAttributes(
		attribute.String("stage.status", status),
		attribute.Float64("stage.duration_seconds", duration.Seconds()),
	)
	pt.metrics.RecordStage(ctx, stageID, duration, err)

	if err != nil {
		infrastructure.RecordError(ctx, err,
			trace.WithAttributes(
				attribute.String("stage_id", stageID),
				attribute.String("error.type", string(GetErrorType(err))),
			),
		)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	infrastructure.AddSpanEvent(ctx, "stage.completed", map[string]interface{}{
		"stage_id": stageID,
		"duration": duration.Seconds(),
	})
	span.SetStatus(codes.Ok, "stage completed")
}

// RecordOperationCompletion closes out the run span
func (pt *OperationTracer) RecordOperationCompletion(ctx context.Context, span trace.Span, duration time.Duration, files int, err error) {
	span.SetAttributes(
		attribute.Float64("operation.duration_seconds", duration.Seconds()),
		attribute.Int("operation.files_written", files),
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "operation completed")
}
