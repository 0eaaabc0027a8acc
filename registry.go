// Package typemirror serves the type algebra in mirror/ over HTTP as a small
// RPC app. Endpoints are grouped into services and routed as
// /{Service}/{Method}; query endpoints take GET parameters, exec endpoints a
// JSON body. Responses are wrapped as {"result": ...} or {"error": {...}}.
package typemirror

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"sync"

	"github.com/broady/typemirror/internal/meta"
)

// App is the central router for endpoints.
// Use Handler to get an http.Handler for use with http.ListenAndServe.
type App struct {
	mu                 sync.RWMutex
	routes             map[string]Endpoint
	errorTransformer   ErrorTransformer
	maskInternalErrors bool
	interceptors       []UnaryInterceptor
	middlewares        []func(http.Handler) http.Handler
	logger             *slog.Logger
	maxRequestBodySize int64
}

// NewApp returns an App with a 1MB request body limit.
func NewApp() *App {
	return &App{
		routes:             make(map[string]Endpoint),
		maxRequestBodySize: 1 << 20,
	}
}

// WithErrorTransformer sets a custom error transformer.
func (a *App) WithErrorTransformer(fn ErrorTransformer) *App {
	a.errorTransformer = fn
	return a
}

// WithMaskInternalErrors replaces the message of internal errors before they
// are sent. Interceptors still see the original error.
func (a *App) WithMaskInternalErrors() *App {
	a.maskInternalErrors = true
	return a
}

// WithUnaryInterceptor adds a global interceptor.
//
// Interceptor execution order:
//  1. Global interceptors (App.WithUnaryInterceptor)
//  2. Service interceptors (Service.WithUnaryInterceptor)
//  3. Handler interceptors (Handler.WithUnaryInterceptor)
//  4. Handler function
func (a *App) WithUnaryInterceptor(i UnaryInterceptor) *App {
	a.interceptors = append(a.interceptors, i)
	return a
}

// WithMiddleware adds an HTTP middleware. The first added is outermost.
func (a *App) WithMiddleware(mw func(http.Handler) http.Handler) *App {
	a.middlewares = append(a.middlewares, mw)
	return a
}

// WithLogger sets the logger. If not set, slog.Default() is used.
func (a *App) WithLogger(logger *slog.Logger) *App {
	a.logger = logger
	return a
}

// WithMaxRequestBodySize sets the maximum JSON body size. 0 means no limit.
func (a *App) WithMaxRequestBodySize(size int64) *App {
	a.maxRequestBodySize = size
	return a
}

func (a *App) log() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return slog.Default()
}

// Handler returns an http.Handler that serves all registered endpoints
// wrapped in the configured middleware.
func (a *App) Handler() http.Handler {
	var h http.Handler = http.HandlerFunc(a.serveHTTP)
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		h = a.middlewares[i](h)
	}
	return h
}

// Service returns the named service namespace.
func (a *App) Service(name string) *Service {
	return &Service{app: a, name: name}
}

// Route describes a registered endpoint.
type Route struct {
	Name       string // "Service.Method"
	Path       string // "/Service/Method"
	HTTPMethod string
	Metadata   *meta.MethodMetadata
}

// Routes returns the registered endpoints sorted by name.
func (a *App) Routes() []Route {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Route, 0, len(a.routes))
	for k, ep := range a.routes {
		md := ep.Metadata()
		out = append(out, Route{
			Name:       k,
			Path:       "/" + strings.Replace(k, ".", "/", 1),
			HTTPMethod: md.HTTPMethod(),
			Metadata:   md,
		})
	}
	slices.SortFunc(out, func(x, y Route) int { return strings.Compare(x.Name, y.Name) })
	return out
}

func (a *App) serveHTTP(w http.ResponseWriter, req *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			a.log().Error("PANIC recovered",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			msg := fmt.Sprintf("internal server error (panic): %v", rec)
			if a.maskInternalErrors {
				msg = "internal server error"
			}
			writeError(w, NewError(CodeInternal, msg), a.logger)
		}
	}()

	parts := strings.Split(strings.TrimPrefix(req.URL.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, NewError(CodeNotFound, "route not found"), a.logger)
		return
	}
	service, method := parts[0], parts[1]

	a.mu.RLock()
	ep, ok := a.routes[service+"."+method]
	a.mu.RUnlock()
	if !ok {
		writeError(w, Errorf(CodeNotFound, "route %s.%s not found", service, method), a.logger)
		return
	}

	if expected := ep.Metadata().HTTPMethod(); req.Method != expected {
		w.Header().Set("Allow", expected)
		writeError(w, Errorf(CodeMethodNotAllowed, "method %s not allowed, expected %s", req.Method, expected), a.logger)
		return
	}

	ctx := newContext(req.Context(), w, req, service, method)
	ctx.errorTransformer = a.errorTransformer
	ctx.maskInternalErrors = a.maskInternalErrors
	ctx.interceptors = a.interceptors
	ctx.logger = a.logger
	ctx.maxRequestBodySize = a.maxRequestBodySize

	ep.serveHTTP(ctx)
}

// Service groups endpoints under one name.
type Service struct {
	app          *App
	name         string
	interceptors []UnaryInterceptor
}

// WithUnaryInterceptor adds an interceptor to this service.
// See App.WithUnaryInterceptor for the execution order.
func (s *Service) WithUnaryInterceptor(i UnaryInterceptor) *Service {
	s.interceptors = append(s.interceptors, i)
	return s
}

// Register registers an endpoint under the given method name. A duplicate
// registration replaces the earlier endpoint and logs a warning.
func (s *Service) Register(name string, ep Endpoint) {
	key := s.name + "." + name
	s.app.mu.Lock()
	defer s.app.mu.Unlock()

	if _, exists := s.app.routes[key]; exists {
		s.app.log().Warn("duplicate route registration",
			slog.String("service", s.name),
			slog.String("method", name),
			slog.String("route", key))
	}

	s.app.routes[key] = &serviceEndpoint{inner: ep, interceptors: slices.Clone(s.interceptors)}
}

// serviceEndpoint adds a service's interceptors after the global ones.
type serviceEndpoint struct {
	inner        Endpoint
	interceptors []UnaryInterceptor
}

func (e *serviceEndpoint) Metadata() *meta.MethodMetadata { return e.inner.Metadata() }

func (e *serviceEndpoint) serveHTTP(ctx *Context) {
	combined := make([]UnaryInterceptor, 0, len(ctx.interceptors)+len(e.interceptors))
	combined = append(combined, ctx.interceptors...)
	combined = append(combined, e.interceptors...)
	ctx.interceptors = combined
	e.inner.serveHTTP(ctx)
}
