package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Invocation holds observability context for one participant invocation.
type Invocation struct {
	Participant string
	WorkItemID  string
	Method      string
	StartTime   time.Time
	Metrics     *Metrics
}

// NewInvocation creates an invocation context.
// If metrics is nil, metric recording is silently skipped.
func NewInvocation(participant, workItemID string, metrics *Metrics) *Invocation {
	return &Invocation{
		Participant: participant,
		WorkItemID:  workItemID,
		StartTime:   time.Now(),
		Metrics:     metrics,
	}
}

type invocationContextKey struct{}

// WithInvocation stores an Invocation in the context.
func WithInvocation(ctx context.Context, inv *Invocation) context.Context {
	return context.WithValue(ctx, invocationContextKey{}, inv)
}

// InvocationFromContext retrieves the Invocation from context, or nil.
func InvocationFromContext(ctx context.Context) *Invocation {
	if inv, ok := ctx.Value(invocationContextKey{}).(*Invocation); ok {
		return inv
	}
	return nil
}

// Start starts the invocation span and records the in-flight metric. The
// returned context carries both the span and the Invocation.
func (inv *Invocation) Start(ctx context.Context) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanConsume, trace.WithAttributes(
		attribute.String(AttrParticipant, inv.Participant),
		attribute.String(AttrWorkItemID, inv.WorkItemID),
	))
	if inv.Metrics != nil {
		inv.Metrics.RecordInvocationStart(ctx)
	}
	return WithInvocation(ctx, inv), span
}

// Stage records a lifecycle stage as a span event.
func (inv *Invocation) Stage(ctx context.Context, stage string) {
	AddSpanEvent(ctx, stage, attribute.String(AttrStage, stage))
}

// End ends the span and records the invocation metrics. status is the HTTP
// status code on success or the error code on failure.
func (inv *Invocation) End(ctx context.Context, span trace.Span, status string, err error) {
	duration := time.Since(inv.StartTime)

	if err != nil {
		SetSpanError(ctx, err)
		span.SetAttributes(
			attribute.String(AttrErrorCode, status),
			attribute.String(AttrErrorMessage, err.Error()),
		)
	}
	if inv.Method != "" {
		span.SetAttributes(attribute.String(AttrHTTPMethod, inv.Method))
	}
	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if inv.Metrics != nil {
		inv.Metrics.RecordInvocation(ctx, inv.Participant, inv.Method, status, duration)
		if err != nil {
			inv.Metrics.RecordError(ctx, status, inv.Participant)
		}
	}
}

// Duration returns the elapsed time since the invocation started.
func (inv *Invocation) Duration() time.Duration {
	return time.Since(inv.StartTime)
}
