package provider

import (
	"github.com/broady/typemirror/mirror/classpath"
	"github.com/broady/typemirror/mirror/ir"
)

// TypeOf returns the descriptor for a native type expression. It recurses into
// array components, type arguments and wildcard bounds; type variables become
// references to their parameter elements without expanding bounds.
func (p *Provider) TypeOf(native classpath.Type) (ir.Type, error) {
	switch t := native.(type) {
	case *classpath.AnnotatedType:
		inner, err := p.TypeOf(t.Type)
		if err != nil {
			return nil, err
		}
		anns, err := p.mirrors(t.Annotations)
		if err != nil {
			return nil, err
		}
		return ir.WithAnnotations(inner, anns), nil

	case *classpath.Class:
		switch t.Kind {
		case classpath.KindPrimitive:
			k, _ := ir.PrimitiveKindOf(t.Name)
			return ir.Primitive(k), nil
		case classpath.KindVoid:
			return ir.Void, nil
		}
		te := p.types[t]
		if te == nil {
			return nil, ir.Errorf("descriptor_of", ErrUnsupportedKind, "class %s is not on this classpath", t.Name)
		}
		return &ir.DeclaredType{Owner: p.implicitOwner(te), Element: te}, nil

	case *classpath.ParameterizedType:
		te := p.types[t.Raw]
		if te == nil {
			return nil, ir.Errorf("descriptor_of", ErrUnsupportedKind, "class %s is not on this classpath", t.Raw.Name)
		}
		args := make([]ir.Type, len(t.Args))
		for i, a := range t.Args {
			arg, err := p.TypeOf(a)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		owner := p.implicitOwner(te)
		if t.Owner != nil {
			o, err := p.TypeOf(t.Owner)
			if err != nil {
				return nil, err
			}
			owner = o
		}
		return &ir.DeclaredType{Owner: owner, Element: te, Args: args}, nil

	case *classpath.WildcardType:
		w := &ir.WildcardType{Extends: p.object, Super: ir.Null}
		if len(t.Upper) > 0 {
			b, err := p.boundOf(t.Upper)
			if err != nil {
				return nil, err
			}
			w.Extends = b
		}
		if len(t.Lower) > 0 {
			b, err := p.boundOf(t.Lower)
			if err != nil {
				return nil, err
			}
			w.Super = b
		}
		return w, nil

	case *classpath.TypeVar:
		tpe := p.tparams[t]
		if tpe == nil {
			return nil, ir.Errorf("descriptor_of", ErrUnsupportedKind, "type variable %s is not declared on this classpath", t.Name)
		}
		return &ir.TypeVariable{Element: tpe}, nil

	case *classpath.GenericArrayType:
		comp, err := p.TypeOf(t.Component)
		if err != nil {
			return nil, err
		}
		return &ir.ArrayType{Component: comp}, nil
	}
	return nil, ir.Errorf("descriptor_of", ErrUnsupportedKind, "%T", native)
}

// boundOf converts a wildcard bound list; several bounds form an intersection.
func (p *Provider) boundOf(ts []classpath.Type) (ir.Type, error) {
	bounds := make([]ir.Type, len(ts))
	for i, b := range ts {
		t, err := p.TypeOf(b)
		if err != nil {
			return nil, err
		}
		bounds[i] = t
	}
	if len(bounds) == 1 {
		return bounds[0], nil
	}
	return &ir.IntersectionType{Bounds: bounds}, nil
}

// implicitOwner is the owner of a member type written without one: the generic
// self type of the enclosing class for inner classes, None otherwise.
func (p *Provider) implicitOwner(te *ir.TypeElement) ir.Type {
	c := te.Native
	if c.Enclosing == nil || c.IsStatic() {
		return ir.None
	}
	return p.DeclaredTypeOf(p.types[c.Enclosing])
}

// DeclaredTypeOf returns the generic self type of a type element, C<T1..Tn>,
// with its enclosing instance type as owner for inner classes.
func (p *Provider) DeclaredTypeOf(te *ir.TypeElement) *ir.DeclaredType {
	c := te.Native
	var args []ir.Type
	for _, tv := range c.TypeParams {
		args = append(args, &ir.TypeVariable{Element: p.tparams[tv]})
	}
	return &ir.DeclaredType{Owner: p.implicitOwner(te), Element: te, Args: args}
}

// ExecutableTypeOf returns the declared signature of a method or constructor.
func (p *Provider) ExecutableTypeOf(ee *ir.ExecutableElement) (*ir.ExecutableType, error) {
	m := ee.Native
	et := &ir.ExecutableType{Element: ee, Receiver: ir.None}
	for _, tv := range m.TypeParams {
		et.TypeParams = append(et.TypeParams, &ir.TypeVariable{Element: p.tparams[tv]})
	}
	var err error
	if et.Return, err = p.TypeOf(m.Return); err != nil {
		return nil, err
	}
	for _, param := range m.Params {
		t, err := p.TypeOf(param.Type)
		if err != nil {
			return nil, err
		}
		et.Params = append(et.Params, t)
	}
	if m.Receiver != nil {
		if et.Receiver, err = p.TypeOf(m.Receiver); err != nil {
			return nil, err
		}
	}
	for _, x := range m.Exceptions {
		t, err := p.TypeOf(x)
		if err != nil {
			return nil, err
		}
		et.Thrown = append(et.Thrown, t)
	}
	return et, nil
}

// TypeOfElement returns the type an element declares: the generic self type of
// a class, the signature of an executable, the declared type of a variable, the
// variable of a type parameter or the package pseudo-type.
func (p *Provider) TypeOfElement(e ir.Element) (ir.Type, error) {
	switch e := e.(type) {
	case *ir.TypeElement:
		return p.DeclaredTypeOf(e), nil
	case *ir.ExecutableElement:
		return p.ExecutableTypeOf(e)
	case *ir.VariableElement:
		if e.Field != nil {
			return p.TypeOf(e.Field.Type)
		}
		return p.TypeOf(e.Param.Type)
	case *ir.TypeParameterElement:
		return &ir.TypeVariable{Element: e}, nil
	case *ir.PackageElement:
		return &ir.PackageType{Element: e}, nil
	}
	return nil, ir.Errorf("type_of_element", ErrUnsupportedKind, "%T", e)
}

// Superclass returns the generic superclass of a type element, or None for
// Object and interfaces.
func (p *Provider) Superclass(te *ir.TypeElement) ir.Type {
	if h, ok := p.supers[te]; ok {
		return h.superclass
	}
	return ir.None
}

// Interfaces returns the generic direct superinterfaces of a type element.
func (p *Provider) Interfaces(te *ir.TypeElement) []ir.Type {
	return p.supers[te].interfaces
}

// Bounds returns the upper bounds of a type parameter; a parameter without an
// explicit bound is bounded by Object. Synthetic parameters have no recorded
// bounds and return nil.
func (p *Provider) Bounds(tpe *ir.TypeParameterElement) []ir.Type {
	return p.bounds[tpe]
}

// UpperBound returns the bound of a type parameter as a single type, an
// intersection when it has several.
func (p *Provider) UpperBound(tpe *ir.TypeParameterElement) ir.Type {
	bs := p.bounds[tpe]
	switch len(bs) {
	case 0:
		return p.object
	case 1:
		return bs[0]
	}
	return &ir.IntersectionType{Bounds: bs}
}

// TypeOfClass returns the raw declared type of a qualified class name, or the
// primitive type for a primitive keyword.
func (p *Provider) TypeOfClass(name string) (ir.Type, error) {
	c, err := p.cp.Lookup(name)
	if err != nil {
		return nil, err
	}
	return p.TypeOf(c)
}

// ParseType parses a type expression and returns its descriptor. Simple names
// resolve against java.lang and, when scope is non-nil, the scope's
// declarations, package and imports.
func (p *Provider) ParseType(expr string, scope *classpath.Scope) (ir.Type, error) {
	native, err := p.cp.ParseType(expr, scope)
	if err != nil {
		return nil, err
	}
	return p.TypeOf(native)
}
