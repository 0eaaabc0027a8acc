package typeops

import (
	"github.com/broady/typemirror/mirror/ir"
)

// PrimitiveType returns the primitive type of kind k.
func (ts *Types) PrimitiveType(k ir.TypeKind) (*ir.PrimitiveType, error) {
	if !k.IsPrimitive() {
		return nil, ir.Errorf("primitive_type", ir.ErrInvalidArgumentKind, "%s is not a primitive kind", k)
	}
	return ir.Primitive(k), nil
}

// NullType returns the null type.
func (ts *Types) NullType() *ir.NullType { return ir.Null }

// NoType returns the void or none pseudo-type.
func (ts *Types) NoType(k ir.TypeKind) (*ir.NoType, error) {
	switch k {
	case ir.KindVoid:
		return ir.Void, nil
	case ir.KindNone:
		return ir.None, nil
	}
	return nil, ir.Errorf("no_type", ir.ErrInvalidArgumentKind, "%s is not void or none", k)
}

// ArrayType returns the array type with the given component.
func (ts *Types) ArrayType(component ir.Type) (*ir.ArrayType, error) {
	if component == nil {
		return nil, ir.Errorf("array_type", ir.ErrInvalidArgumentKind, "nil component")
	}
	switch component.Kind() {
	case ir.KindVoid, ir.KindNone, ir.KindNull, ir.KindExecutable, ir.KindPackage, ir.KindWildcard:
		return nil, ir.Errorf("array_type", ir.ErrInvalidArgumentKind, "%s component", component.Kind())
	}
	return &ir.ArrayType{Component: component}, nil
}

// WildcardType returns a wildcard with at most one bound. A nil extends bound
// means Object and a nil super bound means null.
func (ts *Types) WildcardType(extends, super ir.Type) (*ir.WildcardType, error) {
	if extends != nil && super != nil {
		return nil, ir.Errorf("wildcard_type", ir.ErrStructuralMismatch, "wildcard has both bounds")
	}
	for _, b := range []ir.Type{extends, super} {
		if b == nil {
			continue
		}
		switch b.Kind() {
		case ir.KindDeclared, ir.KindArray, ir.KindTypeVariable, ir.KindCaptured, ir.KindIntersection:
		default:
			return nil, ir.Errorf("wildcard_type", ir.ErrInvalidArgumentKind, "%s bound", b.Kind())
		}
	}
	w := &ir.WildcardType{Extends: ts.object, Super: ir.Null}
	if extends != nil {
		w.Extends = extends
	}
	if super != nil {
		w.Super = super
	}
	return w, nil
}

// DeclaredType returns te parameterized by args, or its raw type when args is
// empty. owner may be nil or None for top-level and static member classes; an
// inner class of a generic class needs an explicit owner.
//
// The number of arguments must match te's type parameters and every argument
// that is not a wildcard must lie within its parameter's bounds. Wildcard
// arguments are not checked against the bounds.
func (ts *Types) DeclaredType(owner ir.Type, te *ir.TypeElement, args ...ir.Type) (*ir.DeclaredType, error) {
	if te == nil {
		return nil, ir.Errorf("declared_type", ir.ErrInvalidArgumentKind, "nil element")
	}
	if len(args) > 0 && len(args) != len(te.Native.TypeParams) {
		return nil, ir.Errorf("declared_type", ir.ErrStructuralMismatch,
			"%s takes %d type arguments, got %d", te, len(te.Native.TypeParams), len(args))
	}
	for _, a := range args {
		if a == nil || (!isReference(a) || a.Kind() == ir.KindNull || a.Kind() == ir.KindUnion || a.Kind() == ir.KindIntersection) {
			return nil, ir.Errorf("declared_type", ir.ErrInvalidArgumentKind, "type argument %v", a)
		}
	}

	o, err := ts.ownerFor(owner, te)
	if err != nil {
		return nil, err
	}
	d := &ir.DeclaredType{Owner: o, Element: te, Args: args}
	if len(args) == 0 {
		return d, nil
	}

	m := ts.bindingsOf(d)
	c := checker{ts: ts}
	for i, tpe := range ts.p.TypeParameters(te) {
		if args[i].Kind() == ir.KindWildcard {
			continue
		}
		for _, b := range ts.p.Bounds(tpe) {
			if !c.sub(args[i], subst(b, m)) {
				return nil, ir.Errorf("declared_type", ir.ErrStructuralMismatch,
					"%s is not within the bound %s of %s", args[i], subst(b, m), tpe)
			}
		}
	}
	return d, nil
}

func (ts *Types) ownerFor(owner ir.Type, te *ir.TypeElement) (ir.Type, error) {
	enclosing := te.Native.Enclosing
	if ir.IsNone(owner) {
		if enclosing == nil || te.IsStatic() {
			return ir.None, nil
		}
		et := ts.p.DeclaringType(te)
		if et.IsGeneric() {
			return nil, ir.Errorf("declared_type", ir.ErrStructuralMismatch, "inner class %s needs an owner type", te)
		}
		return ts.p.DeclaredTypeOf(et), nil
	}
	od, ok := owner.(*ir.DeclaredType)
	if !ok {
		return nil, ir.Errorf("declared_type", ir.ErrInvalidArgumentKind, "%s owner", owner.Kind())
	}
	if enclosing == nil || !ts.p.IsSubclass(od.Element, ts.p.DeclaringType(te)) {
		return nil, ir.Errorf("declared_type", ir.ErrStructuralMismatch, "%s does not enclose %s", owner, te)
	}
	if te.IsStatic() {
		return ir.None, nil
	}
	return od, nil
}

// BoxedClass returns the wrapper class of a primitive type.
func (ts *Types) BoxedClass(p *ir.PrimitiveType) (*ir.TypeElement, error) {
	if p == nil {
		return nil, ir.Errorf("boxed_class", ir.ErrInvalidArgumentKind, "nil type")
	}
	te := ts.boxes[p.PrimitiveKind]
	if te == nil {
		return nil, ir.Errorf("boxed_class", ir.ErrStructuralMismatch, "no wrapper class for %s on this classpath", p)
	}
	return te, nil
}

// UnboxedType returns the primitive type a wrapper class unboxes to.
func (ts *Types) UnboxedType(t ir.Type) (*ir.PrimitiveType, error) {
	if d, ok := t.(*ir.DeclaredType); ok {
		if k, ok := ts.unbox(d); ok {
			return ir.Primitive(k), nil
		}
	}
	return nil, ir.Errorf("unboxed_type", ir.ErrInvalidArgumentKind, "%v has no unboxed type", t)
}
