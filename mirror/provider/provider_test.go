package provider

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/typemirror/mirror/classpath"
	"github.com/broady/typemirror/mirror/ir"
)

const sampleUnit = `
package = "com.example"
imports = ["java.util.List", "java.lang.annotation.Retention", "java.lang.annotation.RetentionPolicy"]

[[class]]
name = "Tag"
kind = "annotation"
modifiers = ["public"]
annotations = ["@Retention(RetentionPolicy.RUNTIME)"]

  [[class.method]]
  name = "value"
  returns = "String"

  [[class.method]]
  name = "weight"
  returns = "short"
  default = "3"

  [[class.method]]
  name = "scale"
  returns = "float"
  default = "1"

  [[class.method]]
  name = "policies"
  returns = "RetentionPolicy[]"
  default = "{RetentionPolicy.CLASS, RetentionPolicy.RUNTIME}"

[[class]]
name = "Base"
modifiers = ["public"]
type_params = ["T"]

  [[class.field]]
  name = "items"
  type = "List<T>"
  modifiers = ["protected"]

  [[class.field]]
  name = "secret"
  type = "int"
  modifiers = ["private"]

  [[class.method]]
  name = "get"
  modifiers = ["public"]
  returns = "T"

  [[class.method]]
  name = "put"
  modifiers = ["public"]
  params = ["T value"]

[[class]]
name = "Derived"
modifiers = ["public"]
extends = "Base<String>"
implements = ["Comparable<Derived>"]
annotations = ['@Tag("derived")']

  [[class.constructor]]
  modifiers = ["public"]

  [[class.method]]
  name = "get"
  modifiers = ["public"]
  returns = "String"

  [[class.method]]
  name = "compareTo"
  modifiers = ["public"]
  returns = "int"
  params = ["Derived other"]

[[class]]
name = "Outer"
modifiers = ["public"]
type_params = ["E"]

[[class]]
name = "Outer.Inner"
modifiers = ["public"]

  [[class.method]]
  name = "element"
  returns = "@Tag(\"ret\") E"

[[class]]
name = "Outer.Nested"
modifiers = ["public", "static"]
`

var (
	sampleOnce sync.Once
	sample     *Provider
	sampleErr  error
)

func newSample(t *testing.T) *Provider {
	t.Helper()
	sampleOnce.Do(func() {
		var cp *classpath.Classpath
		cp, sampleErr = classpath.NewLoader().WithBootstrap().AddUnit("sample.toml", []byte(sampleUnit)).Load(context.Background())
		if sampleErr != nil {
			return
		}
		sample, sampleErr = New(cp)
	})
	require.NoError(t, sampleErr)
	return sample
}

func parse(t *testing.T, p *Provider, expr string) ir.Type {
	t.Helper()
	typ, err := p.ParseType(expr, nil)
	require.NoError(t, err, expr)
	return typ
}

func TestTypeOf(t *testing.T) {
	p := newSample(t)

	tests := []struct {
		expr string
		kind ir.TypeKind
		want string
	}{
		{"int", ir.KindInt, "int"},
		{"void", ir.KindVoid, "void"},
		{"String", ir.KindDeclared, "java.lang.String"},
		{"java.util.List", ir.KindDeclared, "java.util.List"},
		{"java.util.Map<String, ? super Integer>", ir.KindDeclared, "java.util.Map<java.lang.String, ? super java.lang.Integer>"},
		{"int[][]", ir.KindArray, "int[][]"},
		{"com.example.Outer<String>.Inner", ir.KindDeclared, "com.example.Outer<java.lang.String>.Inner"},
		{"com.example.Outer.Nested", ir.KindDeclared, "com.example.Outer.Nested"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := parse(t, p, tt.expr)
			assert.Equal(t, tt.kind, got.Kind())
			assert.Equal(t, tt.want, got.String())
		})
	}

	inner := parse(t, p, "com.example.Outer.Inner").(*ir.DeclaredType)
	assert.Equal(t, "com.example.Outer<E>", inner.Owner.String(), "inner classes get the enclosing self type as owner")
	nested := parse(t, p, "com.example.Outer.Nested").(*ir.DeclaredType)
	assert.True(t, ir.IsNone(nested.Owner))

	w := parse(t, p, "java.util.List<?>").(*ir.DeclaredType).Args[0].(*ir.WildcardType)
	assert.True(t, ir.IsObject(w.Extends), "wildcard extends defaults to Object")
	assert.Equal(t, ir.KindNull, w.Super.Kind(), "wildcard super defaults to null")
}

func TestTypeOfUnsupported(t *testing.T) {
	p := newSample(t)
	_, err := p.TypeOf(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedKind))
	assert.True(t, errors.Is(err, ir.ErrInvalidArgumentKind))

	stranger := &classpath.Class{Name: "x.Y", Kind: classpath.KindClass}
	_, err = p.TypeOf(stranger)
	assert.ErrorIs(t, err, ErrUnsupportedKind)

	_, err = p.ElementOf("java.lang.String")
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestTypeVariablesAndBounds(t *testing.T) {
	p := newSample(t)
	enum := p.MustTypeElement("java.lang.Enum")
	self := p.DeclaredTypeOf(enum)
	assert.Equal(t, "java.lang.Enum<E>", self.String())

	tps := p.TypeParameters(enum)
	require.Len(t, tps, 1)
	bounds := p.Bounds(tps[0])
	require.Len(t, bounds, 1)
	assert.Equal(t, "java.lang.Enum<E>", bounds[0].String())
	assert.Same(t, enum, p.Enclosing(tps[0]))

	base := p.MustTypeElement("com.example.Base")
	assert.True(t, ir.IsObject(p.UpperBound(p.TypeParameters(base)[0])), "unbounded parameters are bounded by Object")

	comparator := p.MustTypeElement("java.util.Comparator")
	var natural *ir.ExecutableElement
	for _, e := range p.EnclosedElements(comparator) {
		if e.SimpleName() == "naturalOrder" {
			natural = e.(*ir.ExecutableElement)
		}
	}
	require.NotNil(t, natural)
	mtps := p.TypeParameters(natural)
	require.Len(t, mtps, 1)
	assert.Equal(t, "java.lang.Comparable<? super T>", p.UpperBound(mtps[0]).String())
	assert.Same(t, natural, p.Enclosing(mtps[0]))
}

func TestSupertypes(t *testing.T) {
	p := newSample(t)
	derived := p.MustTypeElement("com.example.Derived")
	assert.Equal(t, "com.example.Base<java.lang.String>", p.Superclass(derived).String())
	require.Len(t, p.Interfaces(derived), 1)
	assert.Equal(t, "java.lang.Comparable<com.example.Derived>", p.Interfaces(derived)[0].String())

	assert.True(t, ir.IsNone(p.Superclass(p.MustTypeElement(classpath.ObjectName))))
	assert.True(t, ir.IsNone(p.Superclass(p.MustTypeElement("java.util.List"))))
	assert.True(t, p.IsSubclass(derived, p.MustTypeElement("java.lang.Comparable")))
}

func TestElementOf(t *testing.T) {
	p := newSample(t)
	cp := p.Classpath()
	list := cp.MustLookup("java.util.List")

	tests := []struct {
		native any
		kind   ir.ElementKind
		name   string
	}{
		{list, ir.ElementInterface, "List"},
		{cp.MustLookup("java.lang.String"), ir.ElementClass, "String"},
		{cp.MustLookup("java.lang.annotation.RetentionPolicy"), ir.ElementEnum, "RetentionPolicy"},
		{cp.MustLookup("java.lang.Deprecated"), ir.ElementAnnotationType, "Deprecated"},
		{list.Method("get", 1), ir.ElementMethod, "get"},
		{cp.MustLookup("java.util.ArrayList").Constructors[0], ir.ElementConstructor, "<init>"},
		{cp.MustLookup("java.lang.Integer").Field("MAX_VALUE"), ir.ElementField, "MAX_VALUE"},
		{cp.MustLookup("java.lang.annotation.RetentionPolicy").Field("SOURCE"), ir.ElementEnumConstant, "SOURCE"},
		{list.Method("get", 1).Params[0], ir.ElementParameter, "index"},
		{list.TypeParams[0], ir.ElementTypeParameter, "E"},
		{&classpath.Package{Name: "java.util"}, ir.ElementPackage, "util"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.name, func(t *testing.T) {
			e, err := p.ElementOf(tt.native)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, e.Kind())
			assert.Equal(t, tt.name, e.SimpleName())
			again, _ := p.ElementOf(tt.native)
			assert.Same(t, e, again, "one element per declaration")
		})
	}
}

func TestEnclosing(t *testing.T) {
	p := newSample(t)
	inner := p.MustTypeElement("com.example.Outer.Inner")
	outer := p.MustTypeElement("com.example.Outer")
	assert.Same(t, outer, p.Enclosing(inner))
	assert.Equal(t, "com.example", p.Enclosing(outer).(*ir.PackageElement).QualifiedName)
	assert.Equal(t, "com.example", p.PackageOf(inner).QualifiedName)
	assert.Nil(t, p.Enclosing(p.PackageOf(inner)))

	pkg, err := p.PackageElement("com.example")
	require.NoError(t, err)
	var names []string
	for _, e := range p.EnclosedElements(pkg) {
		names = append(names, e.SimpleName())
	}
	assert.Equal(t, []string{"Base", "Derived", "Outer", "Tag"}, names)

	_, err = p.PackageElement("com.missing")
	assert.True(t, IsNotFound(err))
	_, err = p.TypeElement("com.example.Missing")
	assert.True(t, IsNotFound(err))
}

func TestMembers(t *testing.T) {
	p := newSample(t)
	derived := p.MustTypeElement("com.example.Derived")

	var keys []string
	for _, e := range p.Members(derived) {
		keys = append(keys, e.Kind().String()+" "+e.Key())
	}
	assert.Contains(t, keys, "CONSTRUCTOR com.example.Derived#<init>()")
	assert.Contains(t, keys, "METHOD com.example.Derived#get()")
	assert.NotContains(t, keys, "METHOD com.example.Base#get()", "overridden methods are hidden by the closer declaration")
	assert.Contains(t, keys, "METHOD com.example.Base#put(java.lang.Object)")
	assert.Contains(t, keys, "FIELD com.example.Base.items")
	assert.NotContains(t, keys, "FIELD com.example.Base.secret", "private members are not inherited")
	assert.Contains(t, keys, "METHOD java.lang.Object#hashCode()")
	assert.NotContains(t, keys, "CONSTRUCTOR java.lang.Object#<init>()", "constructors are not inherited")
	assert.Contains(t, keys, "METHOD com.example.Derived#compareTo(com.example.Derived)")
	assert.Contains(t, keys, "METHOD java.lang.Comparable#compareTo(java.lang.Object)", "different erasure, different member")

	first := p.Members(derived)
	first[0] = nil
	assert.NotNil(t, p.Members(derived)[0], "Members returns a fresh slice")

	list := p.MustTypeElement("java.util.List")
	var listKeys []string
	for _, e := range p.Members(list) {
		listKeys = append(listKeys, e.Key())
	}
	assert.Contains(t, listKeys, "java.util.Collection#addAll(java.util.Collection)")
	assert.Contains(t, listKeys, "java.lang.Object#toString()", "interfaces see Object's public methods")
	assert.NotContains(t, listKeys, "java.lang.Object#clone()")
	assert.Contains(t, listKeys, "java.util.List#add(java.lang.Object)")
	assert.NotContains(t, listKeys, "java.util.Collection#add(java.lang.Object)")
}

func TestExecutableTypeOf(t *testing.T) {
	p := newSample(t)
	fn := p.MustTypeElement("java.util.function.Function")
	andThen, err := p.ElementOf(fn.Native.Method("andThen", 1))
	require.NoError(t, err)

	et, err := p.ExecutableTypeOf(andThen.(*ir.ExecutableElement))
	require.NoError(t, err)
	assert.True(t, et.IsGeneric())
	assert.Equal(t, "<V>(java.util.function.Function<? super R, ? extends V>)java.util.function.Function<T, V>", et.String())
	assert.True(t, ir.IsNone(et.Receiver))

	closeM, err := p.ElementOf(p.Classpath().MustLookup("java.io.Closeable").Method("close", 0))
	require.NoError(t, err)
	ct, err := p.TypeOfElement(closeM)
	require.NoError(t, err)
	assert.Equal(t, "()void throws java.io.IOException", ct.String())

	field, err := p.ElementOf(p.Classpath().MustLookup("com.example.Base").Field("items"))
	require.NoError(t, err)
	ft, err := p.TypeOfElement(field)
	require.NoError(t, err)
	assert.Equal(t, "java.util.List<T>", ft.String())
}

func TestAnnotations(t *testing.T) {
	p := newSample(t)
	derived := p.MustTypeElement("com.example.Derived")
	anns := p.Annotations(derived)
	require.Len(t, anns, 1)
	assert.Equal(t, `@com.example.Tag("derived")`, anns[0].String())
	v, ok := anns[0].Value("value")
	require.True(t, ok)
	assert.Equal(t, ir.StringValue{V: "derived"}, v)

	all, err := p.ElementValuesWithDefaults(anns[0])
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, ir.IntValue{Kind: ir.KindShort, V: 3}, all[1].Value)
	assert.Equal(t, ir.FloatValue{Kind: ir.KindFloat, V: 1}, all[2].Value)
	assert.Equal(t, "{java.lang.annotation.RetentionPolicy.CLASS, java.lang.annotation.RetentionPolicy.RUNTIME}", all[3].Value.String())

	tag := p.MustTypeElement("com.example.Tag")
	require.Len(t, tag.Annotations(), 1)
	assert.Equal(t, "@java.lang.annotation.Retention(java.lang.annotation.RetentionPolicy.RUNTIME)", tag.Annotations()[0].String())

	inner := p.Classpath().MustLookup("com.example.Outer.Inner")
	ret, err := p.ElementOf(inner.Method("element", 0))
	require.NoError(t, err)
	et, err := p.TypeOfElement(ret)
	require.NoError(t, err)
	rt := et.(*ir.ExecutableType).Return
	assert.Equal(t, ir.KindTypeVariable, rt.Kind())
	require.Len(t, rt.Annotations(), 1, "type-use annotations are attached to the descriptor")
	assert.Equal(t, `@com.example.Tag("ret") E`, rt.String())
}

func TestToAnnotationValue(t *testing.T) {
	p := newSample(t)
	cp := p.Classpath()
	intClass := cp.Primitive("int")
	longClass := cp.Primitive("long")
	charClass := cp.Primitive("char")

	tests := []struct {
		name     string
		value    any
		declared classpath.Type
		want     ir.AnnotationValue
	}{
		{"bool", true, nil, ir.BoolValue{V: true}},
		{"int", int64(7), intClass, ir.IntValue{Kind: ir.KindInt, V: 7}},
		{"long", int64(7), longClass, ir.IntValue{Kind: ir.KindLong, V: 7}},
		{"char from number", int64('a'), charClass, ir.CharValue{V: 'a'}},
		{"double", 2.5, nil, ir.FloatValue{Kind: ir.KindDouble, V: 2.5}},
		{"char", 'z', nil, ir.CharValue{V: 'z'}},
		{"string", "s", nil, ir.StringValue{V: "s"}},
		{"class", cp.MustLookup("java.lang.String"), nil, ir.ClassValue{Type: parse(t, p, "String")}},
		{"array", []any{int64(1), int64(2)}, &classpath.GenericArrayType{Component: longClass}, ir.ArrayValue{Elems: []ir.AnnotationValue{ir.IntValue{Kind: ir.KindLong, V: 1}, ir.IntValue{Kind: ir.KindLong, V: 2}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ToAnnotationValue(tt.value, tt.declared)
			require.NoError(t, err)
			assert.Equal(t, tt.want.String(), got.String())
			assert.IsType(t, tt.want, got)
		})
	}

	for name, v := range map[string]any{
		"nested array": []any{[]any{int64(1)}},
		"mixed array":  []any{int64(1), "x"},
		"unknown":      struct{}{},
		"plain field":  cp.MustLookup("java.lang.Integer").Field("MAX_VALUE"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := p.ToAnnotationValue(v, nil)
			assert.ErrorIs(t, err, ErrUnsupportedValueKind)
			assert.ErrorIs(t, err, ir.ErrInvalidArgumentKind)
		})
	}
}
