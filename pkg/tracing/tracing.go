package tracing

import (
	"context"
	"runtime"
	"strings"

	"github.com/serum-errors/go-serum"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey struct{}

// TracerFromCtx returns the tracer set for the current context.
// If no tracer is currently set in ctx, a new no-op tracer will be returned.
func TracerFromCtx(ctx context.Context) trace.Tracer {
	tracer, ok := ctx.Value(ctxKey{}).(trace.Tracer)
	// SetTracer never stores a nil tracer, so ok covers the nil case too.
	if !ok {
		return trace.NewNoopTracerProvider().Tracer("")
	}
	return tracer
}

// SetTracer returns a new context with the given tracer associated with it.
// Setting the tracer to nil will create a noop tracer and insert it into the context.
func SetTracer(ctx context.Context, tracer trace.Tracer) context.Context {
	if tracer == nil {
		tracer = trace.NewNoopTracerProvider().Tracer("")
	}
	if existing, ok := ctx.Value(ctxKey{}).(trace.Tracer); ok {
		if existing == tracer {
			return ctx
		}
	}
	return context.WithValue(ctx, ctxKey{}, tracer)
}

// Start is a shortcut for retrieving the context tracer and calling Start.
// Start creates a span and a context.Context containing the newly-created span.
//
// If the current context does not contain a tracer then a new no-op tracer will be created for the new context.
// See go.opentelemetry.io/otel/trace.Tracer.Start for more information on the Start function.
func Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return TracerFromCtx(ctx).Start(ctx, spanName, opts...)
}

// StartFn is like Start, but names the span after the calling function, prefixed by spanName.
func StartFn(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	pc, _, _, ok := runtime.Caller(1)
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			name := fn.Name()
			name = name[strings.LastIndex(name, "/")+1:]
			spanName = spanName + " " + name
		}
	}
	return Start(ctx, spanName, opts...)
}

// EndWithStatus sets the span status from err, then ends the span.
// A nil err marks the span Ok.
func EndWithStatus(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	if code := serum.Code(err); code != "" {
		span.SetAttributes(attribute.String(AttrKeyEnvforgeErrorCode, code))
	}
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanError records a serum error's code and message on the span found in ctx.
func SetSpanError(ctx context.Context, err serum.ErrorInterface) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String(AttrKeyEnvforgeErrorCode, err.Code()),
	)
	span.SetStatus(codes.Error, err.Error())
}
