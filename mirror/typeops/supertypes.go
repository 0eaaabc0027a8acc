package typeops

import (
	"log/slog"
	"slices"
	"strings"

	set "github.com/hashicorp/go-set/v3"

	"github.com/broady/typemirror/mirror/ir"
)

func (ts *Types) upperBound(tpe *ir.TypeParameterElement) ir.Type {
	return ts.p.UpperBound(tpe)
}

// DirectSupertypes returns the immediate supertypes of t.
//
// For a declared type these are its superclass and direct superinterfaces,
// parameterized by t's type arguments; an interface without superinterfaces has
// Object as its only supertype, and a raw type has erased supertypes. An array
// of a reference type has the arrays of its component's direct supertypes; Object
// arrays and primitive arrays have Object, Cloneable and Serializable. Type
// variables and captured types yield their upper bounds, wildcards their
// extends bound and intersections their bounds. A union yields its least upper
// bound, as an intersection when there is more than one. A primitive yields the
// next wider primitive. Object, null and the no-type pseudo-types have none.
func (ts *Types) DirectSupertypes(t ir.Type) ([]ir.Type, error) {
	if err := checkOperand("direct_supertypes", t); err != nil {
		return nil, err
	}
	if u, ok := t.(*ir.UnionType); ok {
		lub, err := ts.LeastUpperBounds(u.Alternatives...)
		if err != nil {
			return nil, err
		}
		switch len(lub) {
		case 0:
			return nil, nil
		case 1:
			return lub, nil
		}
		return []ir.Type{&ir.IntersectionType{Bounds: lub}}, nil
	}
	return ts.directSupertypes(t), nil
}

func (ts *Types) directSupertypes(t ir.Type) []ir.Type {
	switch t := t.(type) {
	case *ir.DeclaredType:
		return ts.declaredSupertypes(t)
	case *ir.ArrayType:
		comp := t.Component
		if comp.Kind().IsPrimitive() || ir.IsObject(comp) {
			return ts.arraySupertypes()
		}
		var out []ir.Type
		for _, s := range ts.directSupertypes(comp) {
			out = append(out, &ir.ArrayType{Component: s})
		}
		if len(out) == 0 {
			return ts.arraySupertypes()
		}
		return out
	case *ir.TypeVariable:
		return flatten(ts.upperBound(t.Element))
	case *ir.CapturedType:
		return flatten(t.Upper)
	case *ir.WildcardType:
		if t.Extends == nil {
			return []ir.Type{ts.object}
		}
		return flatten(t.Extends)
	case *ir.IntersectionType:
		return slices.Clone(t.Bounds)
	case *ir.UnionType:
		lub, _ := ts.LeastUpperBounds(t.Alternatives...)
		if len(lub) > 1 {
			return []ir.Type{&ir.IntersectionType{Bounds: lub}}
		}
		return lub
	case *ir.PrimitiveType:
		if k, ok := widerPrimitive[t.PrimitiveKind]; ok {
			return []ir.Type{ir.Primitive(k)}
		}
	}
	return nil
}

func flatten(t ir.Type) []ir.Type {
	if i, ok := t.(*ir.IntersectionType); ok {
		return slices.Clone(i.Bounds)
	}
	return []ir.Type{t}
}

// widerPrimitive is the direct supertype of each primitive.
var widerPrimitive = map[ir.TypeKind]ir.TypeKind{
	ir.KindByte:  ir.KindShort,
	ir.KindShort: ir.KindInt,
	ir.KindChar:  ir.KindInt,
	ir.KindInt:   ir.KindLong,
	ir.KindLong:  ir.KindFloat,
	ir.KindFloat: ir.KindDouble,
}

func (ts *Types) declaredSupertypes(d *ir.DeclaredType) []ir.Type {
	if ir.IsObject(d) {
		return nil
	}
	te := d.Element
	rawUse := d.IsRaw()
	m := ts.bindingsOf(d)
	resolve := func(s ir.Type) ir.Type {
		if rawUse {
			e, err := ts.erase(s, 0)
			if err != nil {
				return s
			}
			return e
		}
		return subst(s, m)
	}
	var out []ir.Type
	ifaces := ts.p.Interfaces(te)
	if sc := ts.p.Superclass(te); !ir.IsNone(sc) {
		out = append(out, resolve(sc))
	} else if isInterface(te) && len(ifaces) == 0 {
		out = append(out, ts.object)
	}
	for _, i := range ifaces {
		out = append(out, resolve(i))
	}
	return out
}

// AllSupertypes returns the transitive closure of DirectSupertypes in
// breadth-first order, without t itself and without duplicates. Each supertype is
// expanded once, so self-referential bounds such as T extends Comparable<T>
// terminate.
func (ts *Types) AllSupertypes(t ir.Type) ([]ir.Type, error) {
	direct, err := ts.DirectSupertypes(t)
	if err != nil {
		return nil, err
	}
	return ts.closure(t, direct), nil
}

func (ts *Types) closure(t ir.Type, queue []ir.Type) []ir.Type {
	seen := set.NewHashSet[ir.Type, string](8)
	seen.Insert(t)
	var out []ir.Type
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if !seen.Insert(s) {
			continue
		}
		out = append(out, s)
		queue = append(queue, ts.directSupertypes(s)...)
	}
	return out
}

// asSuper returns the supertype of t, or t itself, whose class is te. It returns
// nil when te is not a supertype of t.
func (ts *Types) asSuper(t ir.Type, te *ir.TypeElement) *ir.DeclaredType {
	if d, ok := t.(*ir.DeclaredType); ok && d.Element == te {
		return d
	}
	seen := set.NewHashSet[ir.Type, string](8)
	queue := ts.directSupertypes(t)
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if !seen.Insert(s) {
			continue
		}
		if d, ok := s.(*ir.DeclaredType); ok {
			if d.Element == te {
				return d
			}
			// Only declared types can lead to a declared supertype other than
			// through bounds, so prune branches that cannot reach te.
			if !ts.p.IsSubclass(d.Element, te) {
				continue
			}
		}
		queue = append(queue, ts.directSupertypes(s)...)
	}
	return nil
}

// LeastUpperBounds returns the least upper bound of the given types as the set
// of its most specific common supertypes. Classes come before interfaces.
//
// Reference inputs are reduced to the erased supertypes they all share, keeping
// only those with no more specific common supertype. A generic candidate is
// parameterized by the least containing type arguments: an argument every input
// agrees on is kept, otherwise it becomes ? extends the least upper bound of the
// observed arguments. Null inputs are ignored. Arrays of references yield an
// array of the least upper bound of their components. Primitive inputs have a
// least upper bound only when one of them is wider than all others; mixing
// primitives with references yields an empty result.
func (ts *Types) LeastUpperBounds(types ...ir.Type) ([]ir.Type, error) {
	for _, t := range types {
		if err := checkOperand("least_upper_bounds", t); err != nil {
			return nil, err
		}
	}
	l := &lubber{ts: ts, active: make(map[string]bool)}
	return l.lub(types), nil
}

// lubber carries the inputs whose least upper bound is being computed, so that
// recursion through type arguments can be cut off.
type lubber struct {
	ts     *Types
	active map[string]bool
}

func (l *lubber) lub(types []ir.Type) []ir.Type {
	var in []ir.Type
	for _, t := range types {
		if u, ok := t.(*ir.UnionType); ok {
			in = append(in, u.Alternatives...)
			continue
		}
		if t.Kind() != ir.KindNull {
			in = append(in, t)
		}
	}
	switch {
	case len(in) == 0 && len(types) > 0:
		return []ir.Type{ir.Null}
	case len(in) == 0:
		return nil
	}
	if allEqual(in) {
		return []ir.Type{in[0]}
	}
	key := lubKey(in)
	l.active[key] = true
	defer delete(l.active, key)

	var prims int
	for _, t := range in {
		if t.Kind().IsPrimitive() {
			prims++
		} else if !isReference(t) {
			return nil
		}
	}
	if prims > 0 {
		if prims < len(in) {
			return nil
		}
		return l.ts.primitiveLub(in)
	}

	if arrays := l.arrayLub(in); arrays != nil {
		return arrays
	}

	candidates := l.erasedCandidates(in)
	minimal := l.ts.minimal(candidates)
	out := make([]ir.Type, 0, len(minimal))
	for _, te := range minimal {
		out = append(out, l.parameterize(te, in))
	}
	return out
}

func allEqual(ts []ir.Type) bool {
	for _, t := range ts[1:] {
		if !ir.Equal(ts[0], t) {
			return false
		}
	}
	return true
}

func (ts *Types) primitiveLub(in []ir.Type) []ir.Type {
	for _, cand := range in {
		ok := true
		for _, t := range in {
			if !widens(t.Kind(), cand.Kind()) {
				ok = false
				break
			}
		}
		if ok {
			return []ir.Type{ir.Primitive(cand.Kind())}
		}
	}
	return nil
}

// arrayLub handles inputs that are all arrays. It returns nil when some input is
// not an array.
func (l *lubber) arrayLub(in []ir.Type) []ir.Type {
	comps := make([]ir.Type, len(in))
	var prims int
	for i, t := range in {
		a, ok := t.(*ir.ArrayType)
		if !ok {
			return nil
		}
		comps[i] = a.Component
		if a.Component.Kind().IsPrimitive() {
			prims++
		}
	}
	if prims > 0 {
		// Equal primitive arrays were handled by the caller.
		return l.ts.commonArraySupertypes()
	}
	c := l.lub(comps)
	switch len(c) {
	case 0:
		return l.ts.commonArraySupertypes()
	case 1:
		return []ir.Type{&ir.ArrayType{Component: c[0]}}
	}
	return []ir.Type{&ir.ArrayType{Component: &ir.IntersectionType{Bounds: c}}}
}

// commonArraySupertypes is the least upper bound of arrays with no common
// component type: the most specific of the array supertypes.
func (ts *Types) commonArraySupertypes() []ir.Type {
	var tes []*ir.TypeElement
	for _, t := range ts.arraySupertypes() {
		tes = append(tes, t.(*ir.DeclaredType).Element)
	}
	var out []ir.Type
	for _, te := range ts.minimal(tes) {
		out = append(out, raw(te))
	}
	return out
}

// erasedCandidates returns the classes that every input is a subclass of, in
// the breadth-first order of the first input's supertypes.
func (l *lubber) erasedCandidates(in []ir.Type) []*ir.TypeElement {
	var common []*ir.TypeElement
	for i, t := range in {
		own := l.ts.erasedSupertypes(t)
		if i == 0 {
			common = own
			continue
		}
		has := set.From(own)
		common = slices.DeleteFunc(common, func(te *ir.TypeElement) bool { return !has.Contains(te) })
	}
	return common
}

// erasedSupertypes lists the classes of t and of all its declared supertypes.
// Arrays contribute Object, Cloneable and Serializable.
func (ts *Types) erasedSupertypes(t ir.Type) []*ir.TypeElement {
	var out []*ir.TypeElement
	seen := set.New[*ir.TypeElement](8)
	add := func(s ir.Type) {
		switch s := s.(type) {
		case *ir.DeclaredType:
			if seen.Insert(s.Element) {
				out = append(out, s.Element)
			}
		case *ir.ArrayType:
			for _, a := range ts.arraySupertypes() {
				if d := a.(*ir.DeclaredType); seen.Insert(d.Element) {
					out = append(out, d.Element)
				}
			}
		}
	}
	add(t)
	for _, s := range ts.closure(t, ts.directSupertypes(t)) {
		add(s)
	}
	return out
}

// minimal keeps the candidates that are not a proper superclass of another
// candidate, classes first.
func (ts *Types) minimal(cands []*ir.TypeElement) []*ir.TypeElement {
	var out []*ir.TypeElement
	for _, c := range cands {
		redundant := false
		for _, d := range cands {
			if d != c && ts.p.IsSubclass(d, c) {
				redundant = true
				break
			}
		}
		if !redundant {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b *ir.TypeElement) int {
		switch ia, ib := isInterface(a), isInterface(b); {
		case ia == ib:
			return 0
		case ib:
			return -1
		}
		return 1
	})
	return out
}

// parameterize returns the least containing parameterization of te over the
// inputs, or the raw type when te is not generic or some input reaches it raw.
func (l *lubber) parameterize(te *ir.TypeElement, in []ir.Type) ir.Type {
	if !te.IsGeneric() {
		return raw(te)
	}
	sups := make([]*ir.DeclaredType, len(in))
	for i, t := range in {
		s := l.ts.asSuper(t, te)
		if s == nil || len(s.Args) == 0 {
			return raw(te)
		}
		sups[i] = s
	}
	args := make([]ir.Type, len(sups[0].Args))
	for i := range args {
		col := make([]ir.Type, len(sups))
		for j, s := range sups {
			col[j] = s.Args[i]
		}
		args[i] = l.lcta(col)
	}
	return &ir.DeclaredType{Owner: ir.None, Element: te, Args: args}
}

// lcta computes the least containing type argument of a column of arguments.
func (l *lubber) lcta(args []ir.Type) ir.Type {
	if allEqual(args) && args[0].Kind() != ir.KindWildcard {
		return args[0]
	}
	uppers := make([]ir.Type, len(args))
	for i, a := range args {
		w, ok := a.(*ir.WildcardType)
		if !ok {
			uppers[i] = a
			continue
		}
		if w.HasSuperBound() {
			return l.unbounded()
		}
		uppers[i] = w.Extends
		if uppers[i] == nil {
			return l.unbounded()
		}
	}

	if key := lubKey(uppers); l.active[key] {
		l.ts.logger.Debug("least upper bound recursion cut off", slog.String("types", key))
		return l.unbounded()
	}
	bound := l.lub(uppers)

	switch len(bound) {
	case 0:
		return l.unbounded()
	case 1:
		if ir.IsObject(bound[0]) {
			return l.unbounded()
		}
		return &ir.WildcardType{Extends: bound[0], Super: ir.Null}
	}
	return &ir.WildcardType{Extends: &ir.IntersectionType{Bounds: bound}, Super: ir.Null}
}

func (l *lubber) unbounded() *ir.WildcardType {
	return &ir.WildcardType{Extends: l.ts.object, Super: ir.Null}
}

func lubKey(ts []ir.Type) string {
	hs := make([]string, len(ts))
	for i, t := range ts {
		hs[i] = t.Hash()
	}
	slices.Sort(hs)
	return strings.Join(slices.Compact(hs), ",")
}
