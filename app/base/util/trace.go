package util

import (
	"context"
	"io"
	"os"

	"github.com/serum-errors/go-serum"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"

	"github.com/warptools/envforge/pkg/envapi"
	"github.com/warptools/envforge/pkg/logging"
	"github.com/warptools/envforge/pkg/tracing"
)

// Module names this program in tracing identifiers.
const Module = "github.com/warptools/envforge"

func setSpanError(ctx context.Context, err error) {
	sErr, ok := err.(serum.ErrorInterface)
	if !ok {
		sErr = envapi.ErrorUnknown("command failed", err).(serum.ErrorInterface)
	}
	tracing.SetSpanError(ctx, sErr)
}

// newResource identifies this program in exported spans.
func newResource(version string, module string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(module),
		semconv.ServiceVersionKey.String(version),
	)
}

// newTracingProvider returns nil when no exporter is configured.
func newTracingProvider(c *cli.Context) (_ *sdktrace.TracerProvider, retErr error) {
	logger := logging.Ctx(c.Context)
	var exporters []sdktrace.SpanExporter

	if name := c.String("trace.file"); name != "" {
		logger.Debug("", "trace file path: %s", name)
		fileExporter, err := newFileSpanExporter(name)
		if err != nil {
			return nil, envapi.ErrorIo("opening trace file", name, err)
		}
		defer func() {
			if retErr != nil {
				fileExporter.Shutdown(c.Context)
			}
		}()
		exporters = append(exporters, fileExporter)
	}

	if c.Bool("trace.http.enable") {
		var httpOpts []otlptracehttp.Option
		if c.Bool("trace.http.insecure") {
			httpOpts = append(httpOpts, otlptracehttp.WithInsecure())
		}
		if endpoint := c.String("trace.http.endpoint"); endpoint != "" {
			logger.Debug("", "trace endpoint: %s", endpoint)
			httpOpts = append(httpOpts, otlptracehttp.WithEndpoint(endpoint))
		}
		httpExporter, err := otlptrace.New(c.Context, otlptracehttp.NewClient(httpOpts...))
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, httpExporter)
	}
	if len(exporters) == 0 {
		return nil, nil
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(newResource(c.App.Version, Module)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	for _, exp := range exporters {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

// fileSpanExporter closes its file on Shutdown.
type fileSpanExporter struct {
	sdktrace.SpanExporter
	io.Closer
}

// Shutdown flushes spans and closes the file.
//
// Errors:
//
//   - envforge-error-internal -- when the exporter fails to shut down
func (e *fileSpanExporter) Shutdown(ctx context.Context) error {
	defer e.Closer.Close()
	if err := e.SpanExporter.Shutdown(ctx); err != nil {
		return envapi.ErrorInternal("tracing shutdown failed", err)
	}
	return nil
}

// newFileSpanExporter creates or truncates the named file and writes pretty-printed spans to it.
func newFileSpanExporter(name string) (*fileSpanExporter, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(f),
		stdouttrace.WithPrettyPrint(),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileSpanExporter{exp, f}, nil
}
