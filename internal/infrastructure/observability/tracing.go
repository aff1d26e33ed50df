package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"zooworld/assistant-api/internal/config"
)

const (
	tracerName = "zooworld/assistant-api"
)

// Setup installs an OTLP trace exporter when tracing is enabled. The returned
// shutdown function flushes pending spans.
func Setup(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.EnableTracing {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{}
	if cfg.OTLPEndpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint), otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}

// GetTracer returns the tracer for the assistant service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// TurnAttributes returns common attributes for conversation turn spans.
func TurnAttributes(sessionID, animalID, userID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("turn.session_id", sessionID),
		attribute.String("turn.animal_id", animalID),
		attribute.String("turn.user_id", userID),
	}
}

// SandboxAttributes returns common attributes for sandbox spans.
func SandboxAttributes(sandboxID, animalID, status string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("sandbox.id", sandboxID),
		attribute.String("sandbox.animal_id", animalID),
		attribute.String("sandbox.status", status),
	}
}

// StartTurnSpan starts a new span for conversation turn handling.
func StartTurnSpan(ctx context.Context, sessionID, animalID, userID string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "conversation.turn",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(TurnAttributes(sessionID, animalID, userID)...),
	)
}

// StartSandboxSpan starts a new span for a sandbox operation.
func StartSandboxSpan(ctx context.Context, operation, sandboxID, animalID, status string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "sandbox."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(SandboxAttributes(sandboxID, animalID, status)...),
	)
}

// StartPromptSpan starts a new span for prompt resolution.
func StartPromptSpan(ctx context.Context, assistantID string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "prompt.resolve",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("prompt.assistant_id", assistantID)),
	)
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddStatusTransition adds a lifecycle transition event to a span.
func AddStatusTransition(span trace.Span, fromStatus, toStatus string) {
	span.AddEvent("status.transition",
		trace.WithAttributes(
			attribute.String("status.from", fromStatus),
			attribute.String("status.to", toStatus),
		),
	)
}
