// Package middleware holds Transport decorators that wrap another
// Transport to add cross-cutting behavior, the same wrapping shape the
// teacher's interceptor chain uses for RPC handlers.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/routeprobe/routeprobe"
)

// loggingTransport wraps an inner routeprobe.Transport, logging the
// start and end of every Send call via slog.
type loggingTransport struct {
	inner  routeprobe.Transport
	logger *slog.Logger
}

// LoggingTransport wraps inner so every request it sends is logged with
// method, URL, duration, and outcome.
func LoggingTransport(inner routeprobe.Transport, logger *slog.Logger) routeprobe.Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingTransport{inner: inner, logger: logger}
}

func (t *loggingTransport) Send(ctx context.Context, req *routeprobe.Request) (*routeprobe.Response, error) {
	start := time.Now()

	t.logger.InfoContext(ctx, "request started",
		slog.String("method", req.Method),
		slog.String("url", req.URL),
	)

	resp, err := t.inner.Send(ctx, req)
	duration := time.Since(start)

	if err != nil {
		t.logger.ErrorContext(ctx, "request failed",
			slog.String("method", req.Method),
			slog.String("url", req.URL),
			slog.Duration("duration", duration),
			slog.Any("error", err),
		)
		return nil, err
	}

	t.logger.InfoContext(ctx, "request completed",
		slog.String("method", req.Method),
		slog.String("url", req.URL),
		slog.Duration("duration", duration),
		slog.Int("status", resp.Status),
	)

	return resp, nil
}
