package typemirror

import (
	"context"
)

// HandlerFunc is the next handler in an interceptor chain.
type HandlerFunc func(ctx context.Context, req any) (res any, err error)

// UnaryInterceptor wraps the execution of a handler. It may inspect or replace
// the request and response, or return an error without calling handler.
//
//	func timing(ctx *typemirror.Context, req any, handler typemirror.HandlerFunc) (any, error) {
//	    start := time.Now()
//	    res, err := handler(ctx, req)
//	    slog.Info("call", "endpoint", ctx.EndpointID(), "took", time.Since(start))
//	    return res, err
//	}
type UnaryInterceptor func(ctx *Context, req any, handler HandlerFunc) (res any, err error)

// chainInterceptors combines interceptors into one. The first runs outermost.
func chainInterceptors(interceptors []UnaryInterceptor) UnaryInterceptor {
	if len(interceptors) == 0 {
		return nil
	}
	if len(interceptors) == 1 {
		return interceptors[0]
	}
	return func(ctx *Context, req any, handler HandlerFunc) (any, error) {
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			current := interceptors[i]
			next := chain
			chain = func(c context.Context, req any) (any, error) {
				rc, ok := FromContext(c)
				if !ok {
					rc = ctx
				}
				return current(rc, req, next)
			}
		}
		return chain(ctx, req)
	}
}
