// Package observability provides OpenTelemetry tracing and metrics for
// participant invocations.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, &cfg.Tracing)
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &cfg.Metrics)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("jig"))
//
// Each invocation runs inside a "jig.consume" span. Lifecycle stages are added
// as span events:
//
//	inv := observability.NewInvocation("jig", wi.ID(), metrics)
//	ctx, span := inv.Start(ctx)
//	inv.Stage(ctx, "resolved")
//	inv.End(ctx, span, "200", nil)
package observability
