package typeops

import (
	"github.com/broady/typemirror/mirror/ir"
)

// IsSubtype reports whether t1 is a subtype of t2. It applies no boxing and no
// unchecked conversion. Executable and package types are rejected.
//
// A union is a subtype when all its alternatives are, and a type is a subtype of
// an intersection when it is a subtype of all its bounds. An intersection is a
// subtype when any bound is, and a type is a subtype of a union when it is a
// subtype of any alternative. Wildcards and captured types are subtypes of
// themselves only by identity.
func (ts *Types) IsSubtype(t1, t2 ir.Type) (bool, error) {
	if err := checkPair("is_subtype", t1, t2); err != nil {
		return false, err
	}
	c := checker{ts: ts}
	return c.sub(t1, t2), nil
}

// IsAssignable reports whether a value of type t1 can be assigned to t2. Beyond
// subtyping it permits boxing, unboxing and the unchecked conversion from a raw
// type to any parameterization of the same class.
func (ts *Types) IsAssignable(t1, t2 ir.Type) (bool, error) {
	if err := checkPair("is_assignable", t1, t2); err != nil {
		return false, err
	}
	c := checker{ts: ts, assign: true}
	return c.sub(t1, t2), nil
}

// IsSameType reports whether t1 and t2 denote the same type. Wildcards are
// never the same type as anything, including themselves.
func (ts *Types) IsSameType(t1, t2 ir.Type) (bool, error) {
	if t1 == nil || t2 == nil {
		return false, ir.Errorf("is_same_type", ir.ErrInvalidArgumentKind, "nil type")
	}
	if t1.Kind() == ir.KindPackage || t2.Kind() == ir.KindPackage {
		return false, ir.Errorf("is_same_type", ir.ErrInvalidArgumentKind, "package type")
	}
	if t1.Kind() == ir.KindWildcard || t2.Kind() == ir.KindWildcard {
		return false, nil
	}
	return ir.Equal(t1, t2), nil
}

// Contains reports whether the type argument t1 contains t2: t2 lies within
// the bounds of wildcard t1, or equals t1 when t1 is not a wildcard.
func (ts *Types) Contains(t1, t2 ir.Type) (bool, error) {
	if err := checkPair("contains", t1, t2); err != nil {
		return false, err
	}
	c := checker{ts: ts}
	return c.contains(t1, t2), nil
}

// IsSubsignature reports whether m1 is a subsignature of m2: both have the same
// parameter types after renaming m2's type parameters to m1's, or m1 has the
// parameter types of the erasure of m2.
func (ts *Types) IsSubsignature(m1, m2 *ir.ExecutableType) (bool, error) {
	if m1 == nil || m2 == nil {
		return false, ir.Errorf("is_subsignature", ir.ErrInvalidArgumentKind, "nil executable type")
	}
	if len(m1.Params) != len(m2.Params) {
		return false, nil
	}
	if sameSignature(m1, m2) {
		return true, nil
	}
	if m1.IsGeneric() {
		return false, nil
	}
	e2, err := ts.eraseSignature(m2)
	if err != nil {
		return false, err
	}
	return ir.EqualAll(m1.Params, e2.Params), nil
}

// sameSignature compares parameter types with m2's type parameters renamed to
// m1's. Type parameter bounds are not compared.
func sameSignature(m1, m2 *ir.ExecutableType) bool {
	if len(m1.TypeParams) != len(m2.TypeParams) {
		return false
	}
	params := m2.Params
	if len(m2.TypeParams) > 0 {
		m := make(bindings, len(m2.TypeParams))
		for i, tv := range m2.TypeParams {
			m[tv.Element] = m1.TypeParams[i]
		}
		params, _ = substAll(params, m)
	}
	return ir.EqualAll(m1.Params, params)
}

func checkPair(op string, t1, t2 ir.Type) error {
	if err := checkOperand(op, t1); err != nil {
		return err
	}
	return checkOperand(op, t2)
}

// checker evaluates subtyping, or assignability when assign is set.
type checker struct {
	ts     *Types
	assign bool
	depth  int
}

// maxCheckDepth bounds recursion through bounds and type arguments. Array
// dimensions are peeled without recursing, so they do not count.
const maxCheckDepth = 100

func (c *checker) sub(s, t ir.Type) bool {
	if c.depth > maxCheckDepth {
		return false
	}
	c.depth++
	defer func() { c.depth-- }()

	if u, ok := s.(*ir.UnionType); ok {
		for _, a := range u.Alternatives {
			if !c.sub(a, t) {
				return false
			}
		}
		return true
	}
	if i, ok := t.(*ir.IntersectionType); ok {
		for _, b := range i.Bounds {
			if !c.sub(s, b) {
				return false
			}
		}
		return true
	}
	if i, ok := s.(*ir.IntersectionType); ok {
		for _, b := range i.Bounds {
			if c.sub(b, t) {
				return true
			}
		}
		return false
	}
	if u, ok := t.(*ir.UnionType); ok {
		for _, a := range u.Alternatives {
			if c.sub(s, a) {
				return true
			}
		}
		return false
	}
	return c.subKind(s, t)
}

func (c *checker) subKind(s, t ir.Type) bool {
	if s == t {
		return true
	}
	if cs, ok := s.(*ir.CapturedType); ok {
		if ct, ok := t.(*ir.CapturedType); ok && cs.ID() == ct.ID() {
			return true
		}
	}

	// Targets that only admit a few sources.
	switch tt := t.(type) {
	case *ir.WildcardType:
		if tt.HasSuperBound() && s.Kind() != ir.KindWildcard {
			return c.sub(s, tt.Super)
		}
		return false
	case *ir.CapturedType:
		if s.Kind() == ir.KindNull {
			return true
		}
		if cs, ok := s.(*ir.CapturedType); ok && c.sub(cs.Upper, t) {
			return true
		}
		if tt.Lower != nil && tt.Lower.Kind() != ir.KindNull && s.Kind() != ir.KindWildcard {
			return c.sub(s, tt.Lower)
		}
		return false
	case *ir.TypeVariable:
		switch ss := s.(type) {
		case *ir.NullType:
			return true
		case *ir.TypeVariable:
			if ss.Element == tt.Element {
				return true
			}
			return c.sub(c.ts.upperBound(ss.Element), t)
		case *ir.CapturedType:
			return c.sub(ss.Upper, t)
		}
		return false
	case *ir.NoType:
		return s.Kind() == tt.Kind()
	}

	switch ss := s.(type) {
	case *ir.WildcardType:
		return false
	case *ir.NoType:
		return false
	case *ir.NullType:
		return isReference(t)
	case *ir.PrimitiveType:
		if pt, ok := t.(*ir.PrimitiveType); ok {
			return widens(ss.PrimitiveKind, pt.PrimitiveKind)
		}
		if c.assign {
			if box := c.ts.box(ss.PrimitiveKind); box != nil {
				return c.sub(box, t)
			}
		}
		return false
	case *ir.CapturedType:
		return c.sub(ss.Upper, t)
	case *ir.TypeVariable:
		return c.sub(c.ts.upperBound(ss.Element), t)
	case *ir.ArrayType:
		return c.arraySub(ss, t)
	case *ir.DeclaredType:
		return c.declaredSub(ss, t)
	}
	return false
}

func (c *checker) arraySub(s *ir.ArrayType, t ir.Type) bool {
	switch tt := t.(type) {
	case *ir.ArrayType:
		sc, tc := s.Component, tt.Component
		for {
			sa, ok := sc.(*ir.ArrayType)
			ta, ok2 := tc.(*ir.ArrayType)
			if !ok || !ok2 {
				break
			}
			sc, tc = sa.Component, ta.Component
		}
		if sc.Kind().IsPrimitive() || tc.Kind().IsPrimitive() {
			return sc.Kind() == tc.Kind()
		}
		return c.sub(sc, tc)
	case *ir.DeclaredType:
		return c.ts.isArraySupertype(tt)
	}
	return false
}

func (c *checker) declaredSub(s *ir.DeclaredType, t ir.Type) bool {
	if pt, ok := t.(*ir.PrimitiveType); ok {
		if !c.assign {
			return false
		}
		k, ok := c.ts.unbox(s)
		return ok && widens(k, pt.PrimitiveKind)
	}
	td, ok := t.(*ir.DeclaredType)
	if !ok {
		return false
	}
	if ir.IsObject(td) {
		return true
	}
	sup := c.ts.asSuper(c.ts.Capture(s), td.Element)
	if sup == nil {
		return false
	}
	if len(td.Args) == 0 {
		return true
	}
	if len(sup.Args) == 0 {
		// Unchecked conversion from a raw type.
		return c.assign
	}
	if len(sup.Args) != len(td.Args) {
		return false
	}
	for i := range td.Args {
		if !c.contains(td.Args[i], sup.Args[i]) {
			return false
		}
	}
	so, sok := sup.Owner.(*ir.DeclaredType)
	to, tok := td.Owner.(*ir.DeclaredType)
	if sok && tok && len(to.Args) > 0 {
		return c.sub(so, to)
	}
	return true
}

// contains reports whether type argument t contains type argument s.
func (c *checker) contains(t, s ir.Type) bool {
	w, ok := t.(*ir.WildcardType)
	if !ok {
		if s.Kind() == ir.KindWildcard {
			return false
		}
		return ir.Equal(t, s)
	}
	if ws, ok := s.(*ir.WildcardType); ok && ir.Equal(w, ws) {
		return true
	}
	if w.HasSuperBound() {
		lower := s
		if ws, ok := s.(*ir.WildcardType); ok {
			if !ws.HasSuperBound() {
				return false
			}
			lower = ws.Super
		}
		return c.sub(w.Super, lower)
	}
	upper := s
	if ws, ok := s.(*ir.WildcardType); ok {
		upper = ws.Extends
		if ws.HasSuperBound() || upper == nil {
			upper = c.ts.object
		}
	}
	bound := w.Extends
	if bound == nil {
		bound = c.ts.object
	}
	return c.sub(upper, bound)
}

// widens reports whether primitive kind from converts to to by identity or
// widening.
func widens(from, to ir.TypeKind) bool {
	for k := from; ; {
		if k == to {
			return true
		}
		next, ok := widerPrimitive[k]
		if !ok {
			return false
		}
		k = next
	}
}

func (ts *Types) box(k ir.TypeKind) *ir.DeclaredType {
	te := ts.boxes[k]
	if te == nil {
		return nil
	}
	return raw(te)
}

func (ts *Types) unbox(d *ir.DeclaredType) (ir.TypeKind, bool) {
	k, ok := ts.unboxes[d.Element]
	return k, ok
}
