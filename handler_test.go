package typemirror

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/broady/typemirror/internal/meta"
	"github.com/broady/typemirror/testutil"
)

type pairParams struct {
	Left  string `json:"left" validate:"required"`
	Right string `json:"right" validate:"required"`
}

type listRequest struct {
	Types []string `json:"types" validate:"required,min=1"`
}

type textResponse struct {
	Text string `json:"text"`
}

func joinPair(ctx context.Context, p pairParams) (*textResponse, error) {
	return &textResponse{Text: p.Left + " <: " + p.Right}, nil
}

func joinList(ctx context.Context, r *listRequest) (*textResponse, error) {
	return &textResponse{Text: strings.Join(r.Types, " | ")}, nil
}

func TestQuery_Metadata(t *testing.T) {
	h := Query(joinPair).CacheControl(time.Minute)
	md := h.Metadata()
	if md.Primitive != meta.PrimitiveQuery || md.HTTPMethod() != "GET" {
		t.Errorf("unexpected primitive %s / %s", md.Primitive, md.HTTPMethod())
	}
	if md.Request != reflect.TypeFor[pairParams]() {
		t.Errorf("unexpected request type %v", md.Request)
	}
	if md.Response != reflect.TypeFor[*textResponse]() {
		t.Errorf("unexpected response type %v", md.Response)
	}
	if md.CacheTTL != time.Minute {
		t.Errorf("unexpected cache TTL %v", md.CacheTTL)
	}
}

func TestExec_Metadata(t *testing.T) {
	md := Exec(joinList).Metadata()
	if md.Primitive != meta.PrimitiveExec || md.HTTPMethod() != "POST" {
		t.Errorf("unexpected primitive %s / %s", md.Primitive, md.HTTPMethod())
	}
}

func TestQuery_DecodesParams(t *testing.T) {
	app := NewApp()
	app.Service("Test").Register("Method", Query(joinPair))

	w := testutil.NewRequest().
		GET("/Test/Method").
		WithQuery("left", "java.lang.Integer").
		WithQuery("right", "java.lang.Number").
		Serve(app.Handler())

	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSONResponse(t, w, textResponse{Text: "java.lang.Integer <: java.lang.Number"})
}

func TestQuery_ValidationError(t *testing.T) {
	app := NewApp()
	app.Service("Test").Register("Method", Query(joinPair))

	w := testutil.NewRequest().GET("/Test/Method").WithQuery("left", "int").Serve(app.Handler())

	testutil.AssertStatus(t, w, http.StatusBadRequest)
	errResp := testutil.AssertJSONError(t, w, string(CodeInvalidArgument))
	if _, ok := errResp.Details["Right"]; !ok {
		t.Errorf("expected a detail for Right, got %v", errResp.Details)
	}
}

func TestQuery_CacheControl(t *testing.T) {
	app := NewApp()
	app.Service("Test").Register("Method", Query(joinPair).CacheControl(5*time.Minute))

	w := testutil.NewRequest().
		GET("/Test/Method").
		WithQuery("left", "a").
		WithQuery("right", "b").
		Serve(app.Handler())

	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertHeader(t, w, "Cache-Control", "max-age=300")
}

func TestExec_DecodesBody(t *testing.T) {
	app := NewApp()
	app.Service("Test").Register("Method", Exec(joinList))

	w := testutil.NewRequest().
		POST("/Test/Method").
		WithJSON(listRequest{Types: []string{"int", "long"}}).
		Serve(app.Handler())

	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSONResponse(t, w, textResponse{Text: "int | long"})
	testutil.AssertHeader(t, w, "Cache-Control", "")
}

func TestExec_InvalidJSON(t *testing.T) {
	app := NewApp()
	app.Service("Test").Register("Method", Exec(joinList))

	w := testutil.NewRequest().POST("/Test/Method").WithBody(`{"types":`).Serve(app.Handler())

	testutil.AssertStatus(t, w, http.StatusBadRequest)
	testutil.AssertJSONError(t, w, string(CodeInvalidArgument))
}

func TestExec_EmptyBodyIsValidated(t *testing.T) {
	app := NewApp()
	app.Service("Test").Register("Method", Exec(joinList))

	w := testutil.NewRequest().POST("/Test/Method").Serve(app.Handler())

	testutil.AssertStatus(t, w, http.StatusBadRequest)
	errResp := testutil.AssertJSONError(t, w, string(CodeInvalidArgument))
	if !strings.Contains(errResp.Message, "Types") {
		t.Errorf("expected message to name Types, got %q", errResp.Message)
	}
}

func TestExec_BodyTooLarge(t *testing.T) {
	app := NewApp().WithMaxRequestBodySize(16)
	app.Service("Test").Register("Method", Exec(joinList))

	w := testutil.NewRequest().
		POST("/Test/Method").
		WithJSON(listRequest{Types: []string{"java.lang.Integer", "java.lang.String"}}).
		Serve(app.Handler())

	testutil.AssertStatus(t, w, http.StatusBadRequest)
	testutil.AssertJSONError(t, w, string(CodeInvalidArgument))
}

func TestHandler_Error(t *testing.T) {
	fail := func(ctx context.Context, r *listRequest) (*textResponse, error) {
		return nil, Errorf(CodeNotFound, "class %s not found", r.Types[0])
	}
	app := NewApp()
	app.Service("Test").Register("Method", Exec(fail))

	w := testutil.NewRequest().
		POST("/Test/Method").
		WithJSON(listRequest{Types: []string{"Missing"}}).
		Serve(app.Handler())

	testutil.AssertStatus(t, w, http.StatusNotFound)
	errResp := testutil.AssertJSONError(t, w, string(CodeNotFound))
	if errResp.Message != "class Missing not found" {
		t.Errorf("unexpected message %q", errResp.Message)
	}
}

func TestHandler_MaskInternalErrors(t *testing.T) {
	fail := func(ctx context.Context, r *listRequest) (*textResponse, error) {
		return nil, errors.New("secret detail")
	}
	app := NewApp().WithMaskInternalErrors()
	app.Service("Test").Register("Method", Exec(fail))

	w := testutil.NewRequest().POST("/Test/Method").WithJSON(listRequest{Types: []string{"a"}}).Serve(app.Handler())

	testutil.AssertStatus(t, w, http.StatusInternalServerError)
	errResp := testutil.AssertJSONError(t, w, string(CodeInternal))
	if errResp.Message != "internal server error" {
		t.Errorf("expected masked message, got %q", errResp.Message)
	}
}

func TestHandler_CustomErrorTransformer(t *testing.T) {
	fail := func(ctx context.Context, r *listRequest) (*textResponse, error) {
		return nil, errors.New("custom")
	}
	app := NewApp().WithErrorTransformer(func(err error) *Error {
		if err.Error() == "custom" {
			return NewError(CodeNotImplemented, "not yet")
		}
		return nil
	})
	app.Service("Test").Register("Method", Exec(fail))

	w := testutil.NewRequest().POST("/Test/Method").WithJSON(listRequest{Types: []string{"a"}}).Serve(app.Handler())

	testutil.AssertStatus(t, w, http.StatusNotImplemented)
	testutil.AssertJSONError(t, w, string(CodeNotImplemented))
}

func TestHandler_InterceptorOrder(t *testing.T) {
	var order []string
	record := func(name string) UnaryInterceptor {
		return func(ctx *Context, req any, handler HandlerFunc) (any, error) {
			order = append(order, name)
			return handler(ctx, req)
		}
	}

	app := NewApp().WithUnaryInterceptor(record("global"))
	svc := app.Service("Test").WithUnaryInterceptor(record("service"))
	svc.Register("Method", Exec(joinList).WithUnaryInterceptor(record("handler")))

	w := testutil.NewRequest().POST("/Test/Method").WithJSON(listRequest{Types: []string{"a"}}).Serve(app.Handler())

	testutil.AssertStatus(t, w, http.StatusOK)
	want := []string{"global", "service", "handler"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("expected order %v, got %v", want, order)
	}
}

func TestHandler_InterceptorChangesRequestType(t *testing.T) {
	bad := func(ctx *Context, req any, handler HandlerFunc) (any, error) {
		return handler(ctx, "not a request")
	}
	app := NewApp()
	app.Service("Test").Register("Method", Exec(joinList).WithUnaryInterceptor(bad))

	w := testutil.NewRequest().POST("/Test/Method").WithJSON(listRequest{Types: []string{"a"}}).Serve(app.Handler())

	testutil.AssertStatus(t, w, http.StatusInternalServerError)
	testutil.AssertJSONError(t, w, string(CodeInternal))
}

func TestHandler_ContextCarriesMethod(t *testing.T) {
	var service, method string
	fn := func(ctx context.Context, r *listRequest) (*textResponse, error) {
		service, method, _ = MethodFromContext(ctx)
		return &textResponse{}, nil
	}
	app := NewApp()
	app.Service("Types").Register("LeastUpperBounds", Exec(fn))

	w := testutil.NewRequest().POST("/Types/LeastUpperBounds").WithJSON(listRequest{Types: []string{"a"}}).Serve(app.Handler())

	testutil.AssertStatus(t, w, http.StatusOK)
	if service != "Types" || method != "LeastUpperBounds" {
		t.Errorf("unexpected method %s.%s", service, method)
	}
}
