package typemirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"time"

	"github.com/broady/typemirror/internal/meta"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

var (
	validate      = validator.New(validator.WithRequiredStructEnabled())
	schemaDecoder = schema.NewDecoder()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
	schemaDecoder.SetAliasTag("json")
}

// Endpoint is a handler that can be registered with Service.Register.
// It is sealed: create one with Query or Exec.
type Endpoint interface {
	Metadata() *meta.MethodMetadata
	serveHTTP(ctx *Context)
}

// Handler serves one endpoint for a request/response pair.
type Handler[Req any, Res any] struct {
	fn           func(context.Context, Req) (Res, error)
	primitive    string
	cacheTTL     time.Duration
	interceptors []UnaryInterceptor
}

// Query creates a GET endpoint. The request is decoded from the URL query
// string, so Req must be a struct or a pointer to one.
func Query[Req any, Res any](fn func(context.Context, Req) (Res, error)) *Handler[Req, Res] {
	return &Handler[Req, Res]{fn: fn, primitive: meta.PrimitiveQuery}
}

// Exec creates a POST endpoint. The request is decoded from a JSON body.
func Exec[Req any, Res any](fn func(context.Context, Req) (Res, error)) *Handler[Req, Res] {
	return &Handler[Req, Res]{fn: fn, primitive: meta.PrimitiveExec}
}

// CacheControl sets a max-age for successful responses.
func (h *Handler[Req, Res]) CacheControl(d time.Duration) *Handler[Req, Res] {
	h.cacheTTL = d
	return h
}

// WithUnaryInterceptor adds an interceptor that runs after the App and
// Service interceptors.
func (h *Handler[Req, Res]) WithUnaryInterceptor(i UnaryInterceptor) *Handler[Req, Res] {
	h.interceptors = append(h.interceptors, i)
	return h
}

// Metadata returns the endpoint's route metadata.
func (h *Handler[Req, Res]) Metadata() *meta.MethodMetadata {
	return &meta.MethodMetadata{
		Primitive: h.primitive,
		Request:   reflect.TypeFor[Req](),
		Response:  reflect.TypeFor[Res](),
		CacheTTL:  h.cacheTTL,
	}
}

func (h *Handler[Req, Res]) serveHTTP(ctx *Context) {
	req, err := h.decode(ctx)
	if err != nil {
		handleError(ctx, err)
		return
	}

	final := func(c context.Context, reqAny any) (any, error) {
		typed, ok := reqAny.(Req)
		if !ok {
			return nil, Errorf(CodeInternal, "interceptor changed request type to %T", reqAny)
		}
		return h.fn(c, typed)
	}

	all := make([]UnaryInterceptor, 0, len(ctx.interceptors)+len(h.interceptors))
	all = append(all, ctx.interceptors...)
	all = append(all, h.interceptors...)

	var res any
	if chain := chainInterceptors(all); chain != nil {
		res, err = chain(ctx, req, final)
	} else {
		res, err = final(ctx, req)
	}
	if err != nil {
		handleError(ctx, err)
		return
	}

	w := ctx.writer
	w.Header().Set("Content-Type", "application/json")
	if h.cacheTTL > 0 {
		w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(h.cacheTTL.Seconds())))
	}
	if err := encodeResponse(w, res); err != nil {
		// Response may be partially written.
		loggerOf(ctx).Error("failed to encode response",
			slog.String("endpoint", ctx.EndpointID()),
			slog.Any("error", err))
	}
}

func (h *Handler[Req, Res]) decode(ctx *Context) (Req, error) {
	var req Req
	r := ctx.request

	// Decode into a fresh value when Req is a pointer type.
	target := any(&req)
	if rt := reflect.TypeFor[Req](); rt.Kind() == reflect.Pointer {
		req = reflect.New(rt.Elem()).Interface().(Req)
		target = req
	}

	if h.primitive == meta.PrimitiveQuery {
		if err := schemaDecoder.Decode(target, r.URL.Query()); err != nil {
			return req, Errorf(CodeInvalidArgument, "failed to decode query: %v", err)
		}
	} else if r.Body != nil {
		body := io.Reader(r.Body)
		if ctx.maxRequestBodySize > 0 {
			body = http.MaxBytesReader(ctx.writer, r.Body, ctx.maxRequestBodySize)
		}
		if err := json.NewDecoder(body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
			return req, Errorf(CodeInvalidArgument, "failed to decode body: %v", err)
		}
	}

	if isStruct(reflect.TypeFor[Req]()) {
		if err := validate.Struct(req); err != nil {
			return req, err
		}
	}
	return req, nil
}

func isStruct(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func handleError(ctx *Context, err error) {
	var rpcErr *Error
	if ctx.errorTransformer != nil {
		rpcErr = ctx.errorTransformer(err)
	}
	if rpcErr == nil {
		rpcErr = DefaultErrorTransformer(err)
	}
	if ctx.maskInternalErrors && rpcErr.Code == CodeInternal {
		rpcErr = NewError(CodeInternal, "internal server error")
	}
	writeError(ctx.writer, rpcErr, ctx.logger)
}

func loggerOf(ctx *Context) *slog.Logger {
	if ctx.logger != nil {
		return ctx.logger
	}
	return slog.Default()
}
