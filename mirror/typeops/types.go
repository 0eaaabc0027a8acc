// Package typeops implements the operations of the type algebra over the
// descriptors built by a provider: capture conversion, erasure, subtyping and
// assignability, member substitution, supertypes and least upper bounds.
//
// A Types value is immutable after New and safe for concurrent use. None of its
// operations block.
package typeops

import (
	"log/slog"

	"github.com/broady/typemirror/mirror/ir"
	"github.com/broady/typemirror/mirror/provider"
)

// Well-known class names the algebra depends on.
const (
	cloneableName    = "java.lang.Cloneable"
	serializableName = "java.io.Serializable"
)

var boxNames = map[ir.TypeKind]string{
	ir.KindBoolean: "java.lang.Boolean",
	ir.KindByte:    "java.lang.Byte",
	ir.KindShort:   "java.lang.Short",
	ir.KindInt:     "java.lang.Integer",
	ir.KindLong:    "java.lang.Long",
	ir.KindChar:    "java.lang.Character",
	ir.KindFloat:   "java.lang.Float",
	ir.KindDouble:  "java.lang.Double",
}

// Types evaluates type operations against one provider.
type Types struct {
	p      *provider.Provider
	logger *slog.Logger

	object       *ir.DeclaredType
	cloneable    *ir.DeclaredType // nil when not on the classpath
	serializable *ir.DeclaredType // nil when not on the classpath

	boxes   map[ir.TypeKind]*ir.TypeElement
	unboxes map[*ir.TypeElement]ir.TypeKind
}

// Option configures Types.
type Option func(*Types)

// WithLogger sets the logger. The default is the provider's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(ts *Types) { ts.logger = logger }
}

// New returns the type operations for p.
func New(p *provider.Provider, opts ...Option) *Types {
	ts := &Types{
		p:       p,
		logger:  p.Logger(),
		object:  p.Object(),
		boxes:   make(map[ir.TypeKind]*ir.TypeElement),
		unboxes: make(map[*ir.TypeElement]ir.TypeKind),
	}
	for _, opt := range opts {
		opt(ts)
	}
	ts.cloneable = ts.rawNamed(cloneableName)
	ts.serializable = ts.rawNamed(serializableName)
	for k, name := range boxNames {
		if te, err := p.TypeElement(name); err == nil {
			ts.boxes[k] = te
			ts.unboxes[te] = k
		}
	}
	return ts
}

// Provider returns the provider the operations resolve declarations with.
func (ts *Types) Provider() *provider.Provider { return ts.p }

func (ts *Types) rawNamed(name string) *ir.DeclaredType {
	te, err := ts.p.TypeElement(name)
	if err != nil {
		return nil
	}
	return raw(te)
}

func raw(te *ir.TypeElement) *ir.DeclaredType {
	return &ir.DeclaredType{Owner: ir.None, Element: te}
}

// arraySupertypes are the supertypes every array type has.
func (ts *Types) arraySupertypes() []ir.Type {
	out := []ir.Type{ts.object}
	if ts.cloneable != nil {
		out = append(out, ts.cloneable)
	}
	if ts.serializable != nil {
		out = append(out, ts.serializable)
	}
	return out
}

func (ts *Types) isArraySupertype(d *ir.DeclaredType) bool {
	if ir.IsObject(d) {
		return true
	}
	return (ts.cloneable != nil && d.Element == ts.cloneable.Element) ||
		(ts.serializable != nil && d.Element == ts.serializable.Element)
}

func isInterface(te *ir.TypeElement) bool { return te.Native.IsInterface() }

// checkOperand rejects the kinds no relational operation accepts.
func checkOperand(op string, t ir.Type) error {
	if t == nil {
		return ir.Errorf(op, ir.ErrInvalidArgumentKind, "nil type")
	}
	switch t.Kind() {
	case ir.KindExecutable, ir.KindPackage:
		return ir.Errorf(op, ir.ErrInvalidArgumentKind, "%s type %s", t.Kind(), t)
	}
	return nil
}

// isReference reports whether t can hold a reference: declared, array, null,
// type variables and the compound kinds.
func isReference(t ir.Type) bool {
	switch t.Kind() {
	case ir.KindDeclared, ir.KindArray, ir.KindNull, ir.KindTypeVariable,
		ir.KindCaptured, ir.KindIntersection, ir.KindUnion, ir.KindWildcard:
		return true
	}
	return false
}

func samePackage(a, b *ir.TypeElement) bool { return a.Native.Pkg == b.Native.Pkg }

func hasMod(e ir.Element, bit int) bool {
	switch e := e.(type) {
	case *ir.ExecutableElement:
		return e.Native.Modifiers&bit != 0
	case *ir.VariableElement:
		if e.Field != nil {
			return e.Field.Modifiers&bit != 0
		}
	case *ir.TypeElement:
		return e.Native.Modifiers&bit != 0
	}
	return false
}
