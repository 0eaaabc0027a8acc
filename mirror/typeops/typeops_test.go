package typeops

import (
	"context"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/typemirror/mirror/classpath"
	"github.com/broady/typemirror/mirror/ir"
	"github.com/broady/typemirror/mirror/provider"
)

const shapesUnit = `
package = "com.example"
imports = ["java.util.List"]

[[class]]
name = "Shape"
modifiers = ["public"]

  [[class.field]]
  name = "id"
  type = "int"
  modifiers = ["public"]

  [[class.field]]
  name = "secret"
  type = "int"
  modifiers = ["private"]

  [[class.method]]
  name = "create"
  modifiers = ["public", "static"]
  returns = "Shape"

  [[class.method]]
  name = "area"
  modifiers = ["public"]
  returns = "double"

  [[class.method]]
  name = "draw"
  modifiers = ["public"]
  params = ["List<String> parts"]

[[class]]
name = "Circle"
modifiers = ["public"]
extends = "Shape"

  [[class.field]]
  name = "id"
  type = "int"
  modifiers = ["public"]

  [[class.field]]
  name = "secret"
  type = "int"
  modifiers = ["private"]

  [[class.method]]
  name = "create"
  modifiers = ["public", "static"]
  returns = "Circle"

  [[class.method]]
  name = "area"
  modifiers = ["public"]
  returns = "double"

  [[class.method]]
  name = "draw"
  modifiers = ["public"]
  params = ["List parts"]

[[class]]
name = "Box"
modifiers = ["public"]
type_params = ["T"]

  [[class.field]]
  name = "items"
  type = "List<T>"
  modifiers = ["public"]

  [[class.method]]
  name = "put"
  modifiers = ["public"]
  type_params = ["U extends T"]
  returns = "T"
  params = ["U value"]

[[class]]
name = "Box.Inner"
modifiers = ["public"]

  [[class.method]]
  name = "outer"
  modifiers = ["public"]
  returns = "T"

[[class]]
name = "Box.1"
anonymous = true
implements = ["Comparable<T>"]

[[class]]
name = "Sorted"
modifiers = ["public"]
type_params = ["S extends Comparable<S>"]
`

var (
	fixtureOnce sync.Once
	fixture     *Types
	fixtureErr  error
)

func newTypes(t *testing.T) *Types {
	t.Helper()
	fixtureOnce.Do(func() {
		var cp *classpath.Classpath
		cp, fixtureErr = classpath.NewLoader().WithBootstrap().AddUnit("shapes.toml", []byte(shapesUnit)).Load(context.Background())
		if fixtureErr != nil {
			return
		}
		var p *provider.Provider
		if p, fixtureErr = provider.New(cp); fixtureErr != nil {
			return
		}
		fixture = New(p)
	})
	require.NoError(t, fixtureErr)
	return fixture
}

func typ(t *testing.T, ts *Types, expr string) ir.Type {
	t.Helper()
	got, err := ts.Provider().ParseType(expr, nil)
	require.NoError(t, err, expr)
	return got
}

func declared(t *testing.T, ts *Types, expr string) *ir.DeclaredType {
	t.Helper()
	d, ok := typ(t, ts, expr).(*ir.DeclaredType)
	require.True(t, ok, "%s is not a declared type", expr)
	return d
}

func method(t *testing.T, ts *Types, class, name string, arity int) *ir.ExecutableElement {
	t.Helper()
	te := ts.Provider().MustTypeElement(class)
	m := te.Native.Method(name, arity)
	require.NotNil(t, m, "%s.%s", class, name)
	e, err := ts.Provider().ElementOf(m)
	require.NoError(t, err)
	return e.(*ir.ExecutableElement)
}

func field(t *testing.T, ts *Types, class, name string) *ir.VariableElement {
	t.Helper()
	te := ts.Provider().MustTypeElement(class)
	f := te.Native.Field(name)
	require.NotNil(t, f, "%s.%s", class, name)
	e, err := ts.Provider().ElementOf(f)
	require.NoError(t, err)
	return e.(*ir.VariableElement)
}

func texts(ts []ir.Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}

// hasFreeVariables reports whether t mentions a type variable, wildcard or
// captured type anywhere.
func hasFreeVariables(t ir.Type) bool {
	switch t := t.(type) {
	case *ir.TypeVariable, *ir.WildcardType, *ir.CapturedType:
		return true
	case *ir.DeclaredType:
		if !ir.IsNone(t.Owner) && hasFreeVariables(t.Owner) {
			return true
		}
		for _, a := range t.Args {
			if hasFreeVariables(a) {
				return true
			}
		}
	case *ir.ArrayType:
		return hasFreeVariables(t.Component)
	case *ir.IntersectionType:
		for _, b := range t.Bounds {
			if hasFreeVariables(b) {
				return true
			}
		}
	case *ir.ExecutableType:
		if len(t.TypeParams) > 0 || hasFreeVariables(t.Return) {
			return true
		}
		for _, p := range t.Params {
			if hasFreeVariables(p) {
				return true
			}
		}
	}
	return false
}

func TestErase(t *testing.T) {
	ts := newTypes(t)
	p := ts.Provider()

	sorted := p.DeclaredTypeOf(p.MustTypeElement("com.example.Sorted"))
	union := &ir.UnionType{Alternatives: []ir.Type{typ(t, ts, "java.io.IOException"), typ(t, ts, "IllegalArgumentException")}}
	inter := &ir.IntersectionType{Bounds: []ir.Type{typ(t, ts, "java.io.Serializable"), typ(t, ts, "Comparable<String>")}}
	of, err := p.ExecutableTypeOf(method(t, ts, "java.util.List", "of", 1))
	require.NoError(t, err)

	tests := []struct {
		name string
		in   ir.Type
		want string
	}{
		{"parameterized", typ(t, ts, "java.util.List<String>"), "java.util.List"},
		{"wildcard args", typ(t, ts, "java.util.Map<String, ? super Integer>"), "java.util.Map"},
		{"primitive", typ(t, ts, "int"), "int"},
		{"array", typ(t, ts, "java.util.List<String>[]"), "java.util.List[]"},
		{"primitive array", typ(t, ts, "long[][]"), "long[][]"},
		{"inner", typ(t, ts, "com.example.Box<String>.Inner"), "com.example.Box.Inner"},
		{"type variable", sorted.Args[0], "java.lang.Comparable"},
		{"extends wildcard", declared(t, ts, "java.util.List<? extends Number>").Args[0], "java.lang.Number"},
		{"super wildcard", declared(t, ts, "java.util.List<? super Integer>").Args[0], "java.lang.Object"},
		{"intersection", inter, "java.io.Serializable"},
		{"union", union, "java.lang.Exception"},
		{"generic method", of, "(java.lang.Object[])java.util.List"},
		{"null", ir.Null, "null"},
		{"none", ir.None, "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ts.Erase(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.False(t, hasFreeVariables(got), "erasure left variables in %s", spew.Sdump(got))

			again, err := ts.Erase(got)
			require.NoError(t, err)
			assert.True(t, ir.Equal(got, again), "erasure is idempotent: %s vs %s", got, again)
		})
	}
}

func arrayOf(t ir.Type, dims int) ir.Type {
	for range dims {
		t = &ir.ArrayType{Component: t}
	}
	return t
}

func TestDeepArrays(t *testing.T) {
	ts := newTypes(t)

	ints := arrayOf(typ(t, ts, "int"), 200)
	got, err := ts.Erase(ints)
	require.NoError(t, err)
	assert.True(t, ir.Equal(ints, got), "erasure changed %s", got)

	lists := arrayOf(typ(t, ts, "java.util.List<String>"), 150)
	got, err = ts.Erase(lists)
	require.NoError(t, err)
	assert.True(t, ir.Equal(arrayOf(typ(t, ts, "java.util.List"), 150), got))

	strs, objects := arrayOf(typ(t, ts, "String"), 120), arrayOf(typ(t, ts, "Object"), 120)
	ok, err := ts.IsSubtype(strs, objects)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = ts.IsSubtype(strs, arrayOf(typ(t, ts, "Object"), 119))
	require.NoError(t, err)
	assert.True(t, ok, "String[120] is an Object[119]")
	ok, err = ts.IsSubtype(objects, strs)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = ts.IsSubtype(arrayOf(typ(t, ts, "int"), 100), arrayOf(typ(t, ts, "long"), 100))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEraseKeepsNonGenerics(t *testing.T) {
	ts := newTypes(t)
	hash, err := ts.Provider().ExecutableTypeOf(method(t, ts, "java.lang.Object", "hashCode", 0))
	require.NoError(t, err)
	got, err := ts.Erase(hash)
	require.NoError(t, err)
	assert.Same(t, hash, got)

	str := typ(t, ts, "String")
	got, err = ts.Erase(str)
	require.NoError(t, err)
	assert.Same(t, str, got)
}

func TestEraseRejectsPackages(t *testing.T) {
	ts := newTypes(t)
	pkg, err := ts.Provider().PackageElement("java.util")
	require.NoError(t, err)
	_, err = ts.Erase(&ir.PackageType{Element: pkg})
	assert.ErrorIs(t, err, ir.ErrInvalidArgumentKind)
}

func TestCapture(t *testing.T) {
	ts := newTypes(t)
	list := typ(t, ts, "java.util.List<? extends Number>")

	c1 := ts.Capture(list).(*ir.DeclaredType)
	c2 := ts.Capture(list).(*ir.DeclaredType)
	a1, ok := c1.Args[0].(*ir.CapturedType)
	require.True(t, ok)
	a2 := c2.Args[0].(*ir.CapturedType)

	assert.False(t, ir.Equal(a1, a2), "two captures never share a variable")
	assert.True(t, ir.Equal(a1, a1))
	assert.NotEqual(t, a1.ID(), a2.ID())
	assert.NotEqual(t, a1.Element.Key(), a2.Element.Key())
	assert.True(t, a1.Element.Synthetic)

	assert.Equal(t, "java.lang.Number", a1.Upper.String())
	assert.Equal(t, ir.KindNull, a1.Lower.Kind())
	assert.Same(t, c1, ts.Capture(c1), "capture is idempotent on its own output")

	plain := typ(t, ts, "java.util.List<String>")
	assert.Same(t, plain, ts.Capture(plain))
	assert.Same(t, ir.Null, ts.Capture(ir.Null))

	sup := ts.Capture(typ(t, ts, "java.util.List<? super Integer>")).(*ir.DeclaredType).Args[0].(*ir.CapturedType)
	assert.True(t, ir.IsObject(sup.Upper))
	assert.Equal(t, "java.lang.Integer", sup.Lower.String())

	mixed := ts.Capture(typ(t, ts, "java.util.Map<String, ?>")).(*ir.DeclaredType)
	assert.Equal(t, "java.lang.String", mixed.Args[0].String())
	assert.Equal(t, ir.KindCaptured, mixed.Args[1].Kind())
}

func TestCaptureConcurrent(t *testing.T) {
	ts := newTypes(t)
	list := typ(t, ts, "java.util.List<?>")
	const n = 50
	ids := make(chan uint64, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- ts.Capture(list).(*ir.DeclaredType).Args[0].(*ir.CapturedType).ID()
		}()
	}
	wg.Wait()
	close(ids)
	seen := make(map[uint64]bool)
	for id := range ids {
		assert.False(t, seen[id], "capture id %d reused", id)
		seen[id] = true
	}
}

func TestIsSubtypeAndAssignable(t *testing.T) {
	ts := newTypes(t)
	tests := []struct {
		sub, super string
		subtype    bool
		assignable bool
	}{
		{"String", "Object", true, true},
		{"String", "CharSequence", true, true},
		{"Integer", "Number", true, true},
		{"Number", "Integer", false, false},
		{"int", "long", true, true},
		{"long", "int", false, false},
		{"char", "int", true, true},
		{"byte", "char", false, false},
		{"boolean", "int", false, false},
		{"int", "Integer", false, true},
		{"Integer", "int", false, true},
		{"Integer", "long", false, true},
		{"int", "Object", false, true},
		{"int", "Long", false, false},
		{"java.util.List", "java.util.List<String>", false, true},
		{"java.util.ArrayList", "java.util.List<String>", false, true},
		{"java.util.List<String>", "java.util.List", true, true},
		{"java.util.ArrayList<String>", "java.util.List<String>", true, true},
		{"java.util.ArrayList<String>", "java.util.Collection<? extends CharSequence>", true, true},
		{"java.util.List<String>", "java.util.List<CharSequence>", false, false},
		{"java.util.List<String>", "java.util.List<? super String>", true, true},
		{"java.util.List<Object>", "java.util.List<? super String>", true, true},
		{"java.util.List<? extends Integer>", "java.util.List<? extends Number>", true, true},
		{"java.util.List<? extends Number>", "java.util.List<Number>", false, false},
		{"java.util.List<?>", "java.util.List<?>", true, true},
		{"String[]", "CharSequence[]", true, true},
		{"String[]", "Object[]", true, true},
		{"String[]", "java.io.Serializable", true, true},
		{"int[]", "Object[]", false, false},
		{"int[]", "long[]", false, false},
		{"int[]", "int[]", true, true},
		{"int[]", "Object", true, true},
		{"int[]", "Cloneable", true, true},
		{"int[]", "String", false, false},
		{"Integer", "Comparable<Integer>", true, true},
		{"Integer", "Comparable<? super Integer>", true, true},
		{"Integer", "Comparable<Number>", false, false},
		{"java.lang.annotation.RetentionPolicy", "Enum<java.lang.annotation.RetentionPolicy>", true, true},
		{"com.example.Circle", "com.example.Shape", true, true},
		{"void", "Object", false, false},
		{"void", "void", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.sub+" <: "+tt.super, func(t *testing.T) {
			s, u := typ(t, ts, tt.sub), typ(t, ts, tt.super)
			got, err := ts.IsSubtype(s, u)
			require.NoError(t, err)
			assert.Equal(t, tt.subtype, got, "IsSubtype")
			got, err = ts.IsAssignable(s, u)
			require.NoError(t, err)
			assert.Equal(t, tt.assignable, got, "IsAssignable")
		})
	}
}

func TestIsSubtypeReflexive(t *testing.T) {
	ts := newTypes(t)
	exprs := []string{
		"boolean", "int", "double", "String", "Object", "java.util.List<String>",
		"java.util.List", "java.util.Map<String, java.util.List<Integer>>", "int[]",
		"String[][]", "com.example.Box<String>.Inner", "void",
	}
	for _, expr := range exprs {
		a, b := typ(t, ts, expr), typ(t, ts, expr)
		ok, err := ts.IsSubtype(a, b)
		require.NoError(t, err)
		assert.True(t, ok, "%s <: %s", a, b)
	}
	ok, err := ts.IsSubtype(ir.Null, ir.Null)
	require.NoError(t, err)
	assert.True(t, ok)

	tv := ts.Provider().DeclaredTypeOf(ts.Provider().MustTypeElement("com.example.Sorted")).Args[0]
	ok, err = ts.IsSubtype(tv, tv)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWildcardAndCaptureIdentity(t *testing.T) {
	ts := newTypes(t)
	w1 := declared(t, ts, "java.util.List<? extends Number>").Args[0]
	w2 := declared(t, ts, "java.util.List<? extends Number>").Args[0]
	require.True(t, ir.Equal(w1, w2))

	ok, err := ts.IsSubtype(w1, w1)
	require.NoError(t, err)
	assert.True(t, ok, "a wildcard is a subtype of itself")
	ok, err = ts.IsSubtype(w1, w2)
	require.NoError(t, err)
	assert.False(t, ok, "equal wildcards are not subtypes of each other")

	s1 := declared(t, ts, "java.util.List<? super Integer>").Args[0]
	s2 := declared(t, ts, "java.util.List<? super Integer>").Args[0]
	ok, err = ts.IsSubtype(s1, s2)
	require.NoError(t, err)
	assert.False(t, ok)

	list := typ(t, ts, "java.util.List<? extends Number>")
	c1 := ts.Capture(list).(*ir.DeclaredType).Args[0]
	c2 := ts.Capture(list).(*ir.DeclaredType).Args[0]
	ok, err = ts.IsSubtype(c1, c1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = ts.IsSubtype(c1, c2)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = ts.IsSubtype(c1, typ(t, ts, "Number"))
	require.NoError(t, err)
	assert.True(t, ok, "a captured type is a subtype of its upper bound")

	same, err := ts.IsSameType(w1, w1)
	require.NoError(t, err)
	assert.False(t, same, "wildcards are never the same type")
	same, err = ts.IsSameType(c1, c2)
	require.NoError(t, err)
	assert.False(t, same)
}

func TestCompoundSubtyping(t *testing.T) {
	ts := newTypes(t)
	inter := &ir.IntersectionType{Bounds: []ir.Type{typ(t, ts, "java.io.Serializable"), typ(t, ts, "Comparable<String>")}}
	tests := []struct {
		name string
		s, u ir.Type
		want bool
	}{
		{"intersection source any", inter, typ(t, ts, "Comparable<String>"), true},
		{"intersection source none", inter, typ(t, ts, "CharSequence"), false},
		{"intersection target all", typ(t, ts, "String"), inter, true},
		{"intersection target some", typ(t, ts, "Integer"), inter, false},
		{"intersection to itself", inter, inter, true},
		{"intersection to weaker intersection", inter, &ir.IntersectionType{Bounds: []ir.Type{typ(t, ts, "java.io.Serializable")}}, true},
		{"intersection to stronger intersection", inter, &ir.IntersectionType{Bounds: []ir.Type{typ(t, ts, "java.io.Serializable"), typ(t, ts, "CharSequence")}}, false},
		{"union source all", &ir.UnionType{Alternatives: []ir.Type{typ(t, ts, "Integer"), typ(t, ts, "Long")}}, typ(t, ts, "Number"), true},
		{"union source some", &ir.UnionType{Alternatives: []ir.Type{typ(t, ts, "Integer"), typ(t, ts, "String")}}, typ(t, ts, "Number"), false},
		{"union target any", typ(t, ts, "Integer"), &ir.UnionType{Alternatives: []ir.Type{typ(t, ts, "String"), typ(t, ts, "Number")}}, true},
		{"null to reference", ir.Null, typ(t, ts, "String"), true},
		{"null to primitive", ir.Null, typ(t, ts, "int"), false},
		{"reference to null", typ(t, ts, "String"), ir.Null, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ts.IsSubtype(tt.s, tt.u)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTypeVariableSubtyping(t *testing.T) {
	ts := newTypes(t)
	s := ts.Provider().DeclaredTypeOf(ts.Provider().MustTypeElement("com.example.Sorted")).Args[0]
	self := &ir.DeclaredType{Owner: ir.None, Element: ts.Provider().MustTypeElement("java.lang.Comparable"), Args: []ir.Type{s}}

	for _, tt := range []struct {
		u    ir.Type
		want bool
	}{
		{self, true},
		{typ(t, ts, "Object"), true},
		{typ(t, ts, "String"), false},
		{typ(t, ts, "Comparable<String>"), false},
	} {
		got, err := ts.IsSubtype(s, tt.u)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s <: %s", s, tt.u)
	}
	got, err := ts.IsSubtype(typ(t, ts, "String"), s)
	require.NoError(t, err)
	assert.False(t, got, "only null and the variable itself are subtypes of a type variable")
	got, err = ts.IsSubtype(ir.Null, s)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestRelationsRejectInvalidKinds(t *testing.T) {
	ts := newTypes(t)
	p := ts.Provider()
	exec, err := p.ExecutableTypeOf(method(t, ts, "java.lang.Object", "hashCode", 0))
	require.NoError(t, err)
	pkg, err := p.PackageElement("java.lang")
	require.NoError(t, err)
	obj := typ(t, ts, "Object")

	for _, bad := range []ir.Type{exec, &ir.PackageType{Element: pkg}, nil} {
		_, err := ts.IsSubtype(bad, obj)
		assert.ErrorIs(t, err, ir.ErrInvalidArgumentKind)
		_, err = ts.IsSubtype(obj, bad)
		assert.ErrorIs(t, err, ir.ErrInvalidArgumentKind)
		_, err = ts.IsAssignable(bad, obj)
		assert.ErrorIs(t, err, ir.ErrInvalidArgumentKind)
		_, err = ts.LeastUpperBounds(obj, bad)
		assert.ErrorIs(t, err, ir.ErrInvalidArgumentKind)
		_, err = ts.DirectSupertypes(bad)
		assert.ErrorIs(t, err, ir.ErrInvalidArgumentKind)
	}
}

func TestIsSameTypeAndContains(t *testing.T) {
	ts := newTypes(t)
	same, err := ts.IsSameType(typ(t, ts, "java.util.List<String>"), typ(t, ts, "java.util.List<String>"))
	require.NoError(t, err)
	assert.True(t, same)
	same, err = ts.IsSameType(typ(t, ts, "java.util.List<?>"), typ(t, ts, "java.util.List<?>"))
	require.NoError(t, err)
	assert.True(t, same, "wildcard arguments compare structurally")
	same, err = ts.IsSameType(typ(t, ts, "java.util.List<String>"), typ(t, ts, "java.util.List"))
	require.NoError(t, err)
	assert.False(t, same)

	arg := func(expr string) ir.Type { return declared(t, ts, "java.util.List<"+expr+">").Args[0] }
	tests := []struct {
		t1, t2 string
		want   bool
	}{
		{"? extends Number", "Integer", true},
		{"? extends Number", "? extends Integer", true},
		{"? extends Number", "String", false},
		{"? super Integer", "Number", true},
		{"? super Integer", "? super Number", true},
		{"? super Number", "Integer", false},
		{"?", "String", true},
		{"String", "String", true},
		{"String", "? extends String", false},
	}
	for _, tt := range tests {
		got, err := ts.Contains(arg(tt.t1), arg(tt.t2))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s contains %s", tt.t1, tt.t2)
	}
}

func TestIsSubsignature(t *testing.T) {
	ts := newTypes(t)
	p := ts.Provider()
	exec := func(class, name string, arity int) *ir.ExecutableType {
		et, err := p.ExecutableTypeOf(method(t, ts, class, name, arity))
		require.NoError(t, err)
		return et
	}

	ok, err := ts.IsSubsignature(exec("com.example.Circle", "area", 0), exec("com.example.Shape", "area", 0))
	require.NoError(t, err)
	assert.True(t, ok)

	rawDraw, draw := exec("com.example.Circle", "draw", 1), exec("com.example.Shape", "draw", 1)
	ok, err = ts.IsSubsignature(rawDraw, draw)
	require.NoError(t, err)
	assert.True(t, ok, "a signature matching the erasure is a subsignature")
	ok, err = ts.IsSubsignature(draw, rawDraw)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ts.IsSubsignature(exec("java.util.List", "get", 1), exec("java.util.Collection", "contains", 1))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ts.IsSubsignature(exec("java.util.List", "of", 1), exec("java.util.List", "of", 1))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAsMemberOf(t *testing.T) {
	ts := newTypes(t)
	p := ts.Provider()
	list := p.MustTypeElement("java.util.List")
	box := p.MustTypeElement("com.example.Box")

	t.Run("type parameter", func(t *testing.T) {
		got, err := ts.AsMemberOf(declared(t, ts, "java.util.List<String>"), p.TypeParameters(list)[0])
		require.NoError(t, err)
		assert.True(t, ir.Equal(typ(t, ts, "String"), got), "got %s", got)
	})

	tests := []struct {
		name       string
		containing string
		member     ir.Element
		want       string
	}{
		{"method", "java.util.List<String>", method(t, ts, "java.util.List", "get", 1), "(int)java.lang.String"},
		{"inherited method", "java.util.ArrayList<String>", method(t, ts, "java.util.Collection", "addAll", 1), "(java.util.Collection<? extends java.lang.String>)boolean"},
		{"field", "com.example.Box<String>", field(t, ts, "com.example.Box", "items"), "java.util.List<java.lang.String>"},
		{"generic method", "com.example.Box<Integer>", method(t, ts, "com.example.Box", "put", 1), "<U>(U)java.lang.Integer"},
		{"inner class method", "com.example.Box<String>.Inner", method(t, ts, "com.example.Box.Inner", "outer", 0), "()java.lang.String"},
		{"named member class", "com.example.Box<String>", p.MustTypeElement("com.example.Box.Inner"), "com.example.Box<T>.Inner"},
		{"anonymous class", "com.example.Box<String>", p.MustTypeElement("com.example.Box.1"), "java.lang.Comparable<java.lang.String>"},
		{"raw field", "com.example.Box", field(t, ts, "com.example.Box", "items"), "java.util.List"},
		{"raw method", "java.util.List", method(t, ts, "java.util.List", "subList", 2), "(int,int)java.util.List"},
		{"parameter", "java.util.List<String>", p.Parameters(method(t, ts, "java.util.List", "set", 2))[1], "java.lang.String"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ts.AsMemberOf(declared(t, ts, tt.containing), tt.member)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	t.Run("captures wildcards", func(t *testing.T) {
		got, err := ts.AsMemberOf(declared(t, ts, "java.util.List<? extends Number>"), method(t, ts, "java.util.List", "get", 1))
		require.NoError(t, err)
		ret := got.(*ir.ExecutableType).Return
		require.Equal(t, ir.KindCaptured, ret.Kind())
		assert.Equal(t, "java.lang.Number", ret.(*ir.CapturedType).Upper.String())
	})

	t.Run("not a member", func(t *testing.T) {
		_, err := ts.AsMemberOf(declared(t, ts, "String"), method(t, ts, "java.util.List", "get", 1))
		assert.ErrorIs(t, err, ir.ErrStructuralMismatch)
		_, err = ts.AsMemberOf(declared(t, ts, "com.example.Box<String>"), p.TypeParameters(list)[0])
		assert.ErrorIs(t, err, ir.ErrStructuralMismatch)
	})

	t.Run("package", func(t *testing.T) {
		pkg, err := p.PackageElement("java.util")
		require.NoError(t, err)
		_, err = ts.AsMemberOf(p.DeclaredTypeOf(box), pkg)
		assert.ErrorIs(t, err, ir.ErrInvalidArgumentKind)
	})
}

func TestDirectSupertypes(t *testing.T) {
	ts := newTypes(t)
	union := &ir.UnionType{Alternatives: []ir.Type{typ(t, ts, "Integer"), typ(t, ts, "Long")}}
	tests := []struct {
		name string
		in   ir.Type
		want []string
	}{
		{"class", typ(t, ts, "String"), []string{"java.lang.Object", "java.io.Serializable", "java.lang.Comparable<java.lang.String>", "java.lang.CharSequence"}},
		{"bare interface", typ(t, ts, "Runnable"), []string{"java.lang.Object"}},
		{"parameterized", typ(t, ts, "java.util.ArrayList<String>"), []string{
			"java.util.AbstractList<java.lang.String>", "java.util.List<java.lang.String>",
			"java.util.RandomAccess", "java.lang.Cloneable", "java.io.Serializable",
		}},
		{"raw", typ(t, ts, "java.util.ArrayList"), []string{
			"java.util.AbstractList", "java.util.List", "java.util.RandomAccess", "java.lang.Cloneable", "java.io.Serializable",
		}},
		{"object", typ(t, ts, "Object"), nil},
		{"int", typ(t, ts, "int"), []string{"long"}},
		{"byte", typ(t, ts, "byte"), []string{"short"}},
		{"char", typ(t, ts, "char"), []string{"int"}},
		{"double", typ(t, ts, "double"), nil},
		{"boolean", typ(t, ts, "boolean"), nil},
		{"void", ir.Void, nil},
		{"null", ir.Null, nil},
		{"reference array", typ(t, ts, "Integer[]"), []string{"java.lang.Number[]", "java.lang.Comparable<java.lang.Integer>[]"}},
		{"primitive array", typ(t, ts, "int[]"), []string{"java.lang.Object", "java.lang.Cloneable", "java.io.Serializable"}},
		{"object array", typ(t, ts, "Object[]"), []string{"java.lang.Object", "java.lang.Cloneable", "java.io.Serializable"}},
		{"wildcard", declared(t, ts, "java.util.List<? extends Number>").Args[0], []string{"java.lang.Number"}},
		{"union", union, []string{"java.lang.Number & java.lang.Comparable<?>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ts.DirectSupertypes(tt.in)
			require.NoError(t, err)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, texts(got))
		})
	}
}

func TestAllSupertypes(t *testing.T) {
	ts := newTypes(t)
	got, err := ts.AllSupertypes(typ(t, ts, "Integer"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"java.lang.Number", "java.lang.Comparable<java.lang.Integer>",
		"java.lang.Object", "java.io.Serializable",
	}, texts(got))

	got, err = ts.AllSupertypes(typ(t, ts, "java.util.ArrayList<String>"))
	require.NoError(t, err)
	assert.Contains(t, texts(got), "java.lang.Iterable<java.lang.String>")
	assert.Contains(t, texts(got), "java.util.Collection<java.lang.String>")
	seen := make(map[string]bool)
	for _, s := range got {
		assert.False(t, seen[s.Hash()], "duplicate supertype %s", s)
		seen[s.Hash()] = true
	}

	// E extends Enum<E> refers back to itself through its bound.
	enum := ts.Provider().DeclaredTypeOf(ts.Provider().MustTypeElement("java.lang.Enum"))
	got, err = ts.AllSupertypes(enum.Args[0])
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"java.lang.Enum<E>", "java.lang.Comparable<E>", "java.io.Serializable", "java.lang.Object",
	}, texts(got))

	s := ts.Provider().DeclaredTypeOf(ts.Provider().MustTypeElement("com.example.Sorted")).Args[0]
	got, err = ts.AllSupertypes(s)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"java.lang.Comparable<S>", "java.lang.Object"}, texts(got))
}

func TestLeastUpperBounds(t *testing.T) {
	ts := newTypes(t)
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"integer and string", []string{"Integer", "String"}, []string{"java.io.Serializable", "java.lang.Comparable<?>"}},
		{"integer and long", []string{"Integer", "Long"}, []string{"java.lang.Number", "java.lang.Comparable<?>"}},
		{"same type", []string{"String", "String"}, []string{"java.lang.String"}},
		{"agreeing arguments", []string{"java.util.ArrayList<String>", "java.util.List<String>"}, []string{"java.util.List<java.lang.String>"}},
		{"differing arguments", []string{"java.util.List<Integer>", "java.util.Set<Long>"}, []string{
			"java.util.Collection<? extends java.lang.Number & java.lang.Comparable<?>>",
		}},
		{"unrelated classes", []string{"java.util.ArrayList<String>", "java.util.HashMap<String, Integer>"}, []string{"java.lang.Cloneable", "java.io.Serializable"}},
		{"class first", []string{"java.io.IOException", "IllegalArgumentException"}, []string{"java.lang.Exception"}},
		{"super wildcard", []string{"java.util.List<? super Integer>", "java.util.List<String>"}, []string{"java.util.List<?>"}},
		{"reference arrays", []string{"Integer[]", "Long[]"}, []string{"(java.lang.Number & java.lang.Comparable<?>)[]"}},
		{"primitive arrays", []string{"int[]", "long[]"}, []string{"java.lang.Cloneable", "java.io.Serializable"}},
		{"primitive and reference arrays", []string{"int[]", "String[]"}, []string{"java.lang.Cloneable", "java.io.Serializable"}},
		{"primitives", []string{"int", "short"}, []string{"int"}},
		{"incompatible primitives", []string{"int", "boolean"}, nil},
		{"primitive and reference", []string{"int", "Integer"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := make([]ir.Type, len(tt.in))
			for i, expr := range tt.in {
				in[i] = typ(t, ts, expr)
			}
			got, err := ts.LeastUpperBounds(in...)
			require.NoError(t, err)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.ElementsMatch(t, tt.want, texts(got), spew.Sdump(texts(got)))
		})
	}

	got, err := ts.LeastUpperBounds(ir.Null, typ(t, ts, "String"))
	require.NoError(t, err)
	assert.Equal(t, []string{"java.lang.String"}, texts(got), "null inputs are ignored")
	got, err = ts.LeastUpperBounds(ir.Null)
	require.NoError(t, err)
	assert.Equal(t, []string{"null"}, texts(got))
}

func TestFactories(t *testing.T) {
	ts := newTypes(t)
	p := ts.Provider()

	w, err := ts.WildcardType(nil, nil)
	require.NoError(t, err)
	assert.True(t, ir.IsObject(w.Extends), "extends bound defaults to Object")
	assert.Same(t, ir.Null, w.Super, "super bound defaults to null")
	assert.Equal(t, "?", w.String())

	w, err = ts.WildcardType(typ(t, ts, "Number"), nil)
	require.NoError(t, err)
	assert.Equal(t, "? extends java.lang.Number", w.String())
	_, err = ts.WildcardType(typ(t, ts, "Number"), typ(t, ts, "Integer"))
	assert.ErrorIs(t, err, ir.ErrStructuralMismatch)
	_, err = ts.WildcardType(typ(t, ts, "int"), nil)
	assert.ErrorIs(t, err, ir.ErrInvalidArgumentKind)

	list := p.MustTypeElement("java.util.List")
	d, err := ts.DeclaredType(nil, list, typ(t, ts, "String"))
	require.NoError(t, err)
	assert.Equal(t, "java.util.List<java.lang.String>", d.String())
	d, err = ts.DeclaredType(nil, list)
	require.NoError(t, err)
	assert.True(t, d.IsRaw())

	_, err = ts.DeclaredType(nil, list, typ(t, ts, "String"), typ(t, ts, "String"))
	assert.ErrorIs(t, err, ir.ErrStructuralMismatch, "arity")
	_, err = ts.DeclaredType(nil, list, typ(t, ts, "int"))
	assert.ErrorIs(t, err, ir.ErrInvalidArgumentKind, "primitive argument")
	both := &ir.IntersectionType{Bounds: []ir.Type{typ(t, ts, "java.io.Serializable"), typ(t, ts, "Comparable<String>")}}
	_, err = ts.DeclaredType(nil, list, both)
	assert.ErrorIs(t, err, ir.ErrInvalidArgumentKind, "intersection argument")

	sorted := p.MustTypeElement("com.example.Sorted")
	_, err = ts.DeclaredType(nil, sorted, typ(t, ts, "String"))
	assert.NoError(t, err, "String is Comparable<String>")
	_, err = ts.DeclaredType(nil, sorted, typ(t, ts, "Object"))
	assert.ErrorIs(t, err, ir.ErrStructuralMismatch, "bound violation")
	_, err = ts.DeclaredType(nil, sorted, w)
	assert.NoError(t, err, "wildcard arguments are not bound-checked")

	enum := p.MustTypeElement("java.lang.Enum")
	_, err = ts.DeclaredType(nil, enum, typ(t, ts, "java.lang.annotation.RetentionPolicy"))
	assert.NoError(t, err)
	_, err = ts.DeclaredType(nil, enum, typ(t, ts, "String"))
	assert.ErrorIs(t, err, ir.ErrStructuralMismatch)

	inner := p.MustTypeElement("com.example.Box.Inner")
	_, err = ts.DeclaredType(nil, inner)
	assert.ErrorIs(t, err, ir.ErrStructuralMismatch, "inner class of a generic class needs an owner")
	owner := declared(t, ts, "com.example.Box<String>")
	d, err = ts.DeclaredType(owner, inner)
	require.NoError(t, err)
	assert.Equal(t, "com.example.Box<java.lang.String>.Inner", d.String())
	_, err = ts.DeclaredType(typ(t, ts, "String"), inner)
	assert.ErrorIs(t, err, ir.ErrStructuralMismatch)

	prim, err := ts.PrimitiveType(ir.KindLong)
	require.NoError(t, err)
	assert.Equal(t, "long", prim.String())
	_, err = ts.PrimitiveType(ir.KindDeclared)
	assert.ErrorIs(t, err, ir.ErrInvalidArgumentKind)

	box, err := ts.BoxedClass(ir.Primitive(ir.KindChar))
	require.NoError(t, err)
	assert.Equal(t, "java.lang.Character", box.QualifiedName)
	unboxed, err := ts.UnboxedType(typ(t, ts, "Double"))
	require.NoError(t, err)
	assert.Equal(t, ir.KindDouble, unboxed.Kind())
	_, err = ts.UnboxedType(typ(t, ts, "String"))
	assert.ErrorIs(t, err, ir.ErrInvalidArgumentKind)

	arr, err := ts.ArrayType(typ(t, ts, "String"))
	require.NoError(t, err)
	assert.Equal(t, "java.lang.String[]", arr.String())
	_, err = ts.ArrayType(ir.Void)
	assert.ErrorIs(t, err, ir.ErrInvalidArgumentKind)

	void, err := ts.NoType(ir.KindVoid)
	require.NoError(t, err)
	assert.Same(t, ir.Void, void)
	_, err = ts.NoType(ir.KindInt)
	assert.ErrorIs(t, err, ir.ErrInvalidArgumentKind)
	assert.Same(t, ir.Null, ts.NullType())
}

func TestHides(t *testing.T) {
	ts := newTypes(t)
	tests := []struct {
		name          string
		hider, hidden ir.Element
		want          bool
	}{
		{"field", field(t, ts, "com.example.Circle", "id"), field(t, ts, "com.example.Shape", "id"), true},
		{"field reversed", field(t, ts, "com.example.Shape", "id"), field(t, ts, "com.example.Circle", "id"), false},
		{"private field", field(t, ts, "com.example.Circle", "secret"), field(t, ts, "com.example.Shape", "secret"), false},
		{"static method", method(t, ts, "com.example.Circle", "create", 0), method(t, ts, "com.example.Shape", "create", 0), true},
		{"instance method", method(t, ts, "com.example.Circle", "area", 0), method(t, ts, "com.example.Shape", "area", 0), false},
		{"itself", field(t, ts, "com.example.Shape", "id"), field(t, ts, "com.example.Shape", "id"), false},
		{"different kinds", field(t, ts, "com.example.Circle", "id"), method(t, ts, "com.example.Shape", "area", 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ts.Hides(tt.hider, tt.hidden)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOverrides(t *testing.T) {
	ts := newTypes(t)
	p := ts.Provider()
	circle := p.MustTypeElement("com.example.Circle")
	tests := []struct {
		name                  string
		overrider, overridden *ir.ExecutableElement
		in                    *ir.TypeElement
		want                  bool
	}{
		{"subclass method", method(t, ts, "com.example.Circle", "area", 0), method(t, ts, "com.example.Shape", "area", 0), circle, true},
		{"reversed", method(t, ts, "com.example.Shape", "area", 0), method(t, ts, "com.example.Circle", "area", 0), circle, false},
		{"itself", method(t, ts, "com.example.Shape", "area", 0), method(t, ts, "com.example.Shape", "area", 0), circle, false},
		{"static", method(t, ts, "com.example.Circle", "create", 0), method(t, ts, "com.example.Shape", "create", 0), circle, false},
		{"erased parameters", method(t, ts, "com.example.Circle", "draw", 1), method(t, ts, "com.example.Shape", "draw", 1), circle, true},
		{"generic interface", method(t, ts, "java.lang.Integer", "compareTo", 1), method(t, ts, "java.lang.Comparable", "compareTo", 1), p.MustTypeElement("java.lang.Integer"), true},
		{"abstract class implements interface", method(t, ts, "java.util.AbstractCollection", "add", 1), method(t, ts, "java.util.Collection", "add", 1), p.MustTypeElement("java.util.ArrayList"), true},
		{"different names", method(t, ts, "java.util.ArrayList", "size", 0), method(t, ts, "java.util.Collection", "isEmpty", 0), p.MustTypeElement("java.util.ArrayList"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ts.Overrides(tt.overrider, tt.overridden, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
