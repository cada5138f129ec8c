/*
Package tracing wraps go.opentelemetry.io/otel/trace for setting and retrieving tracers in a context.Context.

Tracers travel in the context rather than in package globals,
so commands and tests can each decide whether (and where) spans are exported.
*/
package tracing
