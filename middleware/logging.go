// Package middleware provides interceptors for a typemirror App.
package middleware

import (
	"log/slog"
	"time"

	"github.com/broady/typemirror"
)

// LoggingInterceptor logs each call with its endpoint and duration. Calls
// rejected for a bad argument are logged at Warn, other failures at Error.
func LoggingInterceptor(logger *slog.Logger) typemirror.UnaryInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx *typemirror.Context, req any, handler typemirror.HandlerFunc) (any, error) {
		start := time.Now()
		logger.DebugContext(ctx, "request started",
			slog.String("endpoint", ctx.EndpointID()),
			slog.Any("request", req),
		)

		res, err := handler(ctx, req)
		duration := time.Since(start)

		if err != nil {
			level := slog.LevelError
			if typemirror.DefaultErrorTransformer(err).Code != typemirror.CodeInternal {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "request failed",
				slog.String("endpoint", ctx.EndpointID()),
				slog.Duration("duration", duration),
				slog.Any("error", err),
			)
		} else {
			logger.InfoContext(ctx, "request completed",
				slog.String("endpoint", ctx.EndpointID()),
				slog.Duration("duration", duration),
			)
		}

		return res, err
	}
}
