// Package oracle exposes the type algebra of one classpath as the "Types" and
// "Elements" services of a typemirror App.
//
// Type arguments are source expressions such as "java.util.List<? extends
// Number>", resolved with java.lang imported. An optional scope names a class
// whose type parameters and member classes are visible, so "E" can be written
// with scope "java.util.List".
package oracle

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/broady/typemirror"
	"github.com/broady/typemirror/mirror/classpath"
	"github.com/broady/typemirror/mirror/ir"
	"github.com/broady/typemirror/mirror/provider"
	"github.com/broady/typemirror/mirror/typeops"
)

// Queries that do not depend on capture are cached by clients this long.
const queryTTL = 10 * time.Minute

// Oracle answers type questions against a provider.
type Oracle struct {
	p      *provider.Provider
	ts     *typeops.Types
	logger *slog.Logger
}

// New returns an Oracle backed by ts and its provider.
func New(ts *typeops.Types) *Oracle {
	p := ts.Provider()
	return &Oracle{p: p, ts: ts, logger: p.Logger()}
}

// Register adds the Types and Elements services to app.
func (o *Oracle) Register(app *typemirror.App) {
	types := app.Service("Types")
	types.Register("Erase", typemirror.Query(o.Erase).CacheControl(queryTTL))
	types.Register("IsSubtype", typemirror.Query(o.IsSubtype).CacheControl(queryTTL))
	types.Register("IsAssignable", typemirror.Query(o.IsAssignable).CacheControl(queryTTL))
	types.Register("IsSameType", typemirror.Query(o.IsSameType).CacheControl(queryTTL))
	types.Register("DirectSupertypes", typemirror.Query(o.DirectSupertypes).CacheControl(queryTTL))
	types.Register("AllSupertypes", typemirror.Query(o.AllSupertypes).CacheControl(queryTTL))
	types.Register("LeastUpperBounds", typemirror.Exec(o.LeastUpperBounds))
	types.Register("Capture", typemirror.Exec(o.Capture))
	types.Register("AsMemberOf", typemirror.Exec(o.AsMemberOf))

	elements := app.Service("Elements")
	elements.Register("Describe", typemirror.Query(o.Describe).CacheControl(queryTTL))
	elements.Register("Members", typemirror.Query(o.Members).CacheControl(queryTTL))
	elements.Register("Overrides", typemirror.Query(o.Overrides).CacheControl(queryTTL))
	elements.Register("Packages", typemirror.Query(o.Packages).CacheControl(queryTTL))
}

// TypeResult is a type descriptor with its source rendering.
type TypeResult struct {
	Text string  `json:"text"`
	Type ir.Type `json:"type"`
}

func typeResult(t ir.Type) TypeResult {
	return TypeResult{Text: t.String(), Type: t}
}

func typeResults(ts []ir.Type) []TypeResult {
	out := make([]TypeResult, len(ts))
	for i, t := range ts {
		out[i] = typeResult(t)
	}
	return out
}

// parse resolves a type expression in the given scope.
func (o *Oracle) parse(expr, scope string) (ir.Type, error) {
	var sc *classpath.Scope
	if scope != "" {
		c, err := o.p.Classpath().Lookup(scope)
		if err != nil {
			return nil, typemirror.Errorf(typemirror.CodeNotFound, "scope %s: %v", scope, err)
		}
		sc = classpath.ScopeOf(c)
	}
	t, err := o.p.ParseType(strings.TrimSpace(expr), sc)
	if err != nil {
		o.logger.Debug("parse failed", slog.String("expr", expr), slog.Any("error", err))
		return nil, parseError(expr, err)
	}
	return t, nil
}

func (o *Oracle) parseAll(exprs []string, scope string) ([]ir.Type, error) {
	out := make([]ir.Type, len(exprs))
	for i, e := range exprs {
		t, err := o.parse(e, scope)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// parseError keeps not-found and algebra errors for the default transformer
// and reports anything else as a malformed expression.
func parseError(expr string, err error) error {
	if provider.IsNotFound(err) {
		return err
	}
	var opErr *ir.Error
	if errors.As(err, &opErr) {
		return err
	}
	return typemirror.Errorf(typemirror.CodeInvalidArgument, "%v", err).WithDetail("expr", expr)
}

// lookupElement resolves an element reference:
//
//	java.util.List                 class or interface
//	java.util                      package
//	java.util.List#get(int)        method or constructor by erased signature
//	java.util.List#size            method by name when it is not overloaded
//	java.util.ArrayList.size       field or member class
//	java.util.List<E               type parameter
func (o *Oracle) lookupElement(ref string) (ir.Element, error) {
	ref = strings.TrimSpace(ref)
	if class, member, ok := strings.Cut(ref, "#"); ok {
		te, err := o.p.TypeElement(class)
		if err != nil {
			return nil, err
		}
		return o.lookupExecutable(te, ref, member)
	}
	if class, name, ok := strings.Cut(ref, "<"); ok {
		te, err := o.p.TypeElement(class)
		if err != nil {
			return nil, err
		}
		for _, tp := range o.p.TypeParameters(te) {
			if tp.SimpleName() == name {
				return tp, nil
			}
		}
		return nil, typemirror.Errorf(typemirror.CodeNotFound, "%s has no type parameter %s", class, name)
	}
	if te, err := o.p.TypeElement(ref); err == nil {
		return te, nil
	}
	if pe, err := o.p.PackageElement(ref); err == nil {
		return pe, nil
	}
	i := strings.LastIndex(ref, ".")
	if i < 0 {
		return nil, typemirror.Errorf(typemirror.CodeNotFound, "no element %s", ref)
	}
	te, err := o.p.TypeElement(ref[:i])
	if err != nil {
		return nil, err
	}
	for _, e := range o.p.EnclosedElements(te) {
		if _, isExec := e.(*ir.ExecutableElement); !isExec && e.SimpleName() == ref[i+1:] {
			return e, nil
		}
	}
	return nil, typemirror.Errorf(typemirror.CodeNotFound, "%s has no field or member class %s", te, ref[i+1:])
}

func (o *Oracle) lookupExecutable(te *ir.TypeElement, ref, member string) (*ir.ExecutableElement, error) {
	var candidates []*ir.ExecutableElement
	for _, e := range o.p.Members(te) {
		if ee, ok := e.(*ir.ExecutableElement); ok {
			candidates = append(candidates, ee)
		}
	}
	// Constructors, named <init>, are not inherited so Members omits them.
	for _, e := range o.p.EnclosedElements(te) {
		if ee, ok := e.(*ir.ExecutableElement); ok && ee.Kind() == ir.ElementConstructor {
			candidates = append(candidates, ee)
		}
	}

	if strings.Contains(member, "(") {
		for _, ee := range candidates {
			if ee.SimpleName()+"("+ir.ErasedParams(ee.Native)+")" == member {
				return ee, nil
			}
		}
		return nil, typemirror.Errorf(typemirror.CodeNotFound, "%s has no method %s", te, member)
	}

	var matches []*ir.ExecutableElement
	for _, ee := range candidates {
		if ee.SimpleName() == member {
			matches = append(matches, ee)
		}
	}
	switch len(matches) {
	case 0:
		return nil, typemirror.Errorf(typemirror.CodeNotFound, "%s has no method %s", te, member)
	case 1:
		return matches[0], nil
	}
	keys := make([]string, len(matches))
	for i, ee := range matches {
		keys[i] = ee.Key()
	}
	return nil, typemirror.Errorf(typemirror.CodeInvalidArgument, "%s is overloaded", ref).WithDetail("candidates", keys)
}

func declared(t ir.Type, what string) (*ir.DeclaredType, error) {
	d, ok := t.(*ir.DeclaredType)
	if !ok {
		return nil, typemirror.Errorf(typemirror.CodeInvalidArgument, "%s %s is a %s type, not a class or interface", what, t, t.Kind())
	}
	return d, nil
}
