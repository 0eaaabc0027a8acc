package typeops

import (
	"github.com/broady/typemirror/mirror/ir"
)

// Erase returns the erasure of t. Declared types lose their arguments and
// owner, arrays erase their component, and type variables, wildcards and
// captured variables erase to their first upper bound. An intersection erases
// to its first bound and a union to the erasure of its least upper bound.
// Primitives, null and the no-type pseudo-types erase to themselves. Executable
// types are erased only when generic. Packages have no erasure.
//
// The result contains no type variables, wildcards or captured types, and
// Erase(Erase(t)) equals Erase(t).
func (ts *Types) Erase(t ir.Type) (ir.Type, error) {
	if t == nil {
		return nil, ir.Errorf("erase", ir.ErrInvalidArgumentKind, "nil type")
	}
	return ts.erase(t, 0)
}

// maxEraseDepth bounds recursion through type variable bounds, which may refer
// back to the variable in malformed input. Array dimensions do not count.
const maxEraseDepth = 64

func (ts *Types) erase(t ir.Type, depth int) (ir.Type, error) {
	if depth > maxEraseDepth {
		return ts.object, nil
	}
	switch t := t.(type) {
	case *ir.PrimitiveType, *ir.NullType, *ir.NoType:
		return t, nil
	case *ir.PackageType:
		return nil, ir.Errorf("erase", ir.ErrInvalidArgumentKind, "package %s has no erasure", t)
	case *ir.DeclaredType:
		if len(t.Args) == 0 && ir.IsNone(t.Owner) && len(t.Annotations()) == 0 {
			return t, nil
		}
		return raw(t.Element), nil
	case *ir.ArrayType:
		c, err := ts.erase(t.Component, depth)
		if err != nil {
			return nil, err
		}
		if c == t.Component && len(t.Annotations()) == 0 {
			return t, nil
		}
		return &ir.ArrayType{Component: c}, nil
	case *ir.TypeVariable:
		return ts.erase(ts.upperBound(t.Element), depth+1)
	case *ir.WildcardType:
		if t.Extends == nil {
			return ts.object, nil
		}
		return ts.erase(t.Extends, depth+1)
	case *ir.CapturedType:
		return ts.erase(t.Upper, depth+1)
	case *ir.IntersectionType:
		if len(t.Bounds) == 0 {
			return ts.object, nil
		}
		return ts.erase(t.Bounds[0], depth+1)
	case *ir.UnionType:
		lub, err := ts.LeastUpperBounds(t.Alternatives...)
		if err != nil {
			return nil, err
		}
		if len(lub) == 0 {
			return ts.object, nil
		}
		return ts.erase(lub[0], depth+1)
	case *ir.ExecutableType:
		if !ts.needsErasure(t) {
			return t, nil
		}
		return ts.eraseSignature(t)
	}
	return nil, ir.Errorf("erase", ir.ErrInvalidArgumentKind, "%T", t)
}

// eraseSignature erases every component of an executable type and drops its
// type parameters.
func (ts *Types) eraseSignature(t *ir.ExecutableType) (*ir.ExecutableType, error) {
	out := &ir.ExecutableType{Element: t.Element}
	var err error
	if out.Return, err = ts.erase(t.Return, 0); err != nil {
		return nil, err
	}
	if out.Receiver, err = ts.erase(orNone(t.Receiver), 0); err != nil {
		return nil, err
	}
	if out.Params, err = ts.eraseAll(t.Params); err != nil {
		return nil, err
	}
	if out.Thrown, err = ts.eraseAll(t.Thrown); err != nil {
		return nil, err
	}
	return out, nil
}

func (ts *Types) eraseAll(in []ir.Type) ([]ir.Type, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]ir.Type, len(in))
	for i, t := range in {
		e, err := ts.erase(t, 0)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func orNone(t ir.Type) ir.Type {
	if t == nil {
		return ir.None
	}
	return t
}

// needsErasure reports whether an executable type mentions anything erasure
// would change.
func (ts *Types) needsErasure(t *ir.ExecutableType) bool {
	if t.IsGeneric() || generic(t.Return) || generic(t.Receiver) {
		return true
	}
	for _, p := range t.Params {
		if generic(p) {
			return true
		}
	}
	for _, x := range t.Thrown {
		if generic(x) {
			return true
		}
	}
	return false
}

// generic reports whether t is not its own erasure.
func generic(t ir.Type) bool {
	switch t := t.(type) {
	case *ir.DeclaredType:
		return len(t.Args) > 0 || !ir.IsNone(t.Owner)
	case *ir.ArrayType:
		return generic(t.Component)
	case *ir.TypeVariable, *ir.WildcardType, *ir.CapturedType, *ir.IntersectionType, *ir.UnionType:
		return true
	}
	return false
}
