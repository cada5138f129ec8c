package util

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/warptools/envforge/pkg/logging"
	"github.com/warptools/envforge/pkg/tracing"
)

// ChainCmdMiddleware wraps cmd in the given middlewares.
// The first middleware is outermost: `middlewares[0](middlewares[1](cmd))`.
func ChainCmdMiddleware(cmd cli.ActionFunc, middlewares ...func(cli.ActionFunc) cli.ActionFunc) cli.ActionFunc {
	wrapped := cmd
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

// CmdMiddlewareLogging puts a logger configured from the global flags into the command's context.
func CmdMiddlewareLogging(f cli.ActionFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		logger := logging.NewLogger(c.App.Writer, c.App.ErrWriter, c.Bool("json"), c.Bool("quiet"), c.Bool("verbose"))
		c.Context = logger.WithContext(c.Context)
		return f(c)
	}
}

// CmdMiddlewareTracingSpan wraps the rest of the command in a span named after it.
func CmdMiddlewareTracingSpan(f cli.ActionFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx, span := tracing.Start(c.Context, commandPath(c))
		defer span.End()
		c.Context = ctx
		err := f(c)
		if err != nil {
			setSpanError(ctx, err)
		}
		return err
	}
}

// commandPath names the running command with its parents, e.g. "env list".
// The root command is left out.
func commandPath(c *cli.Context) string {
	var names []string
	var last *cli.Command
	for _, ctx := range c.Lineage() {
		cmd := ctx.Command
		if cmd == nil || cmd == last || cmd.Name == c.App.Name {
			continue
		}
		last = cmd
		names = append([]string{cmd.Name}, names...)
	}
	return strings.Join(names, " ")
}

// CmdMiddlewareTracingConfig sets up a tracer provider from the trace flags.
// Without any trace flags, spans are no-ops.
func CmdMiddlewareTracingConfig(f cli.ActionFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		tracerProvider, err := newTracingProvider(c)
		if err != nil {
			return fmt.Errorf("could not initialize tracing: %w", err)
		}
		if tracerProvider == nil {
			c.Context = tracing.SetTracer(c.Context, nil)
			return f(c)
		}
		ctx := c.Context
		defer func() {
			if err := tracerProvider.Shutdown(ctx); err != nil {
				logging.Ctx(ctx).Debug("", "tracing shutdown error: %s", err.Error())
			}
		}()
		c.Context = tracing.SetTracer(ctx, tracerProvider.Tracer(Module))
		return f(c)
	}
}
