package typeops

import (
	"github.com/broady/typemirror/mirror/ir"
)

// bindings maps formal type parameters to actual arguments.
type bindings map[*ir.TypeParameterElement]ir.Type

// bindingsOf collects the parameter bindings of a parameterized type and of its
// parameterized owners. A raw type binds nothing.
func (ts *Types) bindingsOf(d *ir.DeclaredType) bindings {
	m := make(bindings)
	for d != nil {
		if len(d.Args) > 0 {
			for i, tpe := range ts.p.TypeParameters(d.Element) {
				if i < len(d.Args) {
					m[tpe] = d.Args[i]
				}
			}
		}
		owner, _ := d.Owner.(*ir.DeclaredType)
		d = owner
	}
	return m
}

// subst replaces every type variable bound in m by its actual argument.
// Captured types are opaque and left alone. Unchanged subtrees are shared with
// the input.
func subst(t ir.Type, m bindings) ir.Type {
	if len(m) == 0 || t == nil {
		return t
	}
	switch t := t.(type) {
	case *ir.TypeVariable:
		if a, ok := m[t.Element]; ok {
			return ir.WithAnnotations(a, t.Annotations())
		}
		return t
	case *ir.DeclaredType:
		owner := subst(t.Owner, m)
		args, changed := substAll(t.Args, m)
		if !changed && owner == t.Owner {
			return t
		}
		out := *t
		out.Owner, out.Args = owner, args
		return &out
	case *ir.ArrayType:
		c := subst(t.Component, m)
		if c == t.Component {
			return t
		}
		out := *t
		out.Component = c
		return &out
	case *ir.WildcardType:
		ext, sup := subst(t.Extends, m), subst(t.Super, m)
		if ext == t.Extends && sup == t.Super {
			return t
		}
		out := *t
		out.Extends, out.Super = ext, sup
		return &out
	case *ir.IntersectionType:
		bounds, changed := substAll(t.Bounds, m)
		if !changed {
			return t
		}
		out := *t
		out.Bounds = bounds
		return &out
	case *ir.UnionType:
		alts, changed := substAll(t.Alternatives, m)
		if !changed {
			return t
		}
		out := *t
		out.Alternatives = alts
		return &out
	case *ir.ExecutableType:
		out := *t
		out.Return = subst(t.Return, m)
		out.Receiver = subst(t.Receiver, m)
		out.Params, _ = substAll(t.Params, m)
		out.Thrown, _ = substAll(t.Thrown, m)
		return &out
	}
	return t
}

func substAll(ts []ir.Type, m bindings) ([]ir.Type, bool) {
	var out []ir.Type
	for i, t := range ts {
		s := subst(t, m)
		if s != t && out == nil {
			out = make([]ir.Type, len(ts))
			copy(out, ts[:i])
		}
		if out != nil {
			out[i] = s
		}
	}
	if out == nil {
		return ts, false
	}
	return out, true
}
