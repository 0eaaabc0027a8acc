package typemirror

import (
	"context"
	"log/slog"
	"net/http"
)

var contextKey = &struct{ name string }{"typemirror"}

// Context carries the metadata of one RPC call. It is passed to interceptors
// and is the context.Context seen by handler functions.
type Context struct {
	context.Context
	service string
	method  string
	request *http.Request
	writer  http.ResponseWriter

	// Per-call configuration copied from the App and the Service.
	errorTransformer   ErrorTransformer
	maskInternalErrors bool
	interceptors       []UnaryInterceptor
	logger             *slog.Logger
	maxRequestBodySize int64
}

func newContext(parent context.Context, w http.ResponseWriter, r *http.Request, service, method string) *Context {
	ctx := &Context{
		service: service,
		method:  method,
		request: r,
		writer:  w,
	}
	ctx.Context = context.WithValue(parent, contextKey, ctx)
	return ctx
}

// NewContext returns a Context for calling interceptors or handler functions
// outside an App, as tests do. It has no request or response writer.
func NewContext(parent context.Context, service, method string) *Context {
	return newContext(parent, nil, nil, service, method)
}

// Service returns the service name, e.g. "Types".
func (c *Context) Service() string { return c.service }

// Method returns the method name, e.g. "IsSubtype".
func (c *Context) Method() string { return c.method }

// EndpointID returns "Service.Method".
func (c *Context) EndpointID() string { return c.service + "." + c.method }

// HTTPRequest returns the underlying request.
func (c *Context) HTTPRequest() *http.Request { return c.request }

// SetHeader sets a response header. It has no effect once the body is written.
func (c *Context) SetHeader(key, value string) {
	if c.writer != nil {
		c.writer.Header().Set(key, value)
	}
}

// FromContext returns the *Context stored in ctx by the App.
func FromContext(ctx context.Context) (*Context, bool) {
	if c, ok := ctx.(*Context); ok {
		return c, true
	}
	c, ok := ctx.Value(contextKey).(*Context)
	return c, ok
}

// MethodFromContext returns the service and method name of the current call.
func MethodFromContext(ctx context.Context) (service, method string, ok bool) {
	c, ok := FromContext(ctx)
	if !ok {
		return "", "", false
	}
	return c.service, c.method, true
}
