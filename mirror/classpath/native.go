package classpath

import (
	"strconv"
	"strings"
)

// ClassKind identifies the category of a native class declaration.
type ClassKind int

const (
	KindClass ClassKind = iota
	KindInterface
	KindEnum
	KindAnnotation
	KindPrimitive // boolean, byte, short, int, long, char, float, double
	KindVoid
)

// String returns the declaration keyword for the kind.
func (k ClassKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindAnnotation:
		return "annotation"
	case KindPrimitive:
		return "primitive"
	case KindVoid:
		return "void"
	default:
		return "unknown"
	}
}

// Type is a native generic type expression, as exposed by the declaration source.
// The concrete node types are *Class, *ParameterizedType, *WildcardType, *TypeVar,
// *GenericArrayType and *AnnotatedType.
type Type interface {
	// TypeName renders the expression in source syntax.
	TypeName() string
}

// GenericDeclaration is a declaration that can introduce type variables.
type GenericDeclaration interface {
	TypeParameters() []*TypeVar
	// DeclKey identifies the declaration within the classpath.
	DeclKey() string
}

// Class is a native class, interface, enum, annotation type, primitive or void.
//
// Classes are immutable once the owning Classpath has finished linking.
type Class struct {
	Name       string // qualified name, nested classes joined with '.'
	SimpleName string // empty for anonymous classes
	Pkg        string
	Kind       ClassKind
	Modifiers  int
	Anonymous  bool

	TypeParams []*TypeVar
	Superclass Type // nil for Object, interfaces, primitives and void
	Interfaces []Type
	Enclosing  *Class

	Fields        []*Field
	Methods       []*Method
	Constructors  []*Method
	MemberClasses []*Class
	Annotations   []*Annotation

	unit string // declaration unit the class came from
}

func (c *Class) TypeName() string              { return c.Name }
func (c *Class) TypeParameters() []*TypeVar    { return c.TypeParams }
func (c *Class) DeclKey() string               { return c.Name }
func (c *Class) IsInterface() bool             { return c.Kind == KindInterface || c.Kind == KindAnnotation }
func (c *Class) IsPrimitive() bool             { return c.Kind == KindPrimitive }
func (c *Class) Unit() string                  { return c.unit }
func (c *Class) HasModifier(bit int) bool      { return c.Modifiers&bit != 0 }
func (c *Class) String() string                { return c.Kind.String() + " " + c.Name }
func (c *Class) IsGeneric() bool               { return len(c.TypeParams) > 0 }
func (c *Class) IsTopLevel() bool              { return c.Enclosing == nil }
func (c *Class) IsAnnotationType() bool        { return c.Kind == KindAnnotation }
func (c *Class) IsEnum() bool                  { return c.Kind == KindEnum }

// MemberClass returns the directly declared member class with the given simple name.
func (c *Class) MemberClass(name string) *Class { return findMember(c.MemberClasses, name) }

// IsStatic reports whether the class has no enclosing instance. Top-level classes and
// member interfaces, enums and annotation types are implicitly static.
func (c *Class) IsStatic() bool {
	if c.Enclosing == nil || c.Modifiers&STATIC != 0 {
		return true
	}
	return c.Kind != KindClass || c.Enclosing.IsInterface()
}

// Method looks up a declared method by name and parameter count. It returns the
// first match in declaration order, or nil.
func (c *Class) Method(name string, arity int) *Method {
	for _, m := range c.Methods {
		if m.Name == name && (arity < 0 || len(m.Params) == arity) {
			return m
		}
	}
	return nil
}

// Field looks up a declared field by name.
func (c *Class) Field(name string) *Field {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func findMember(classes []*Class, name string) *Class {
	for _, mc := range classes {
		if mc.SimpleName == name {
			return mc
		}
	}
	return nil
}

// Method is a native method or constructor.
type Method struct {
	Name        string // "<init>" for constructors
	Declaring   *Class
	Modifiers   int
	TypeParams  []*TypeVar
	Return      Type // the void class for constructors and void methods
	Params      []*Parameter
	Receiver    Type // explicit receiver parameter type, if declared
	Exceptions  []Type
	Constructor bool
	VarArgs     bool
	Default     any // annotation element default, if any
	Annotations []*Annotation

	ordinal int // position among the declaring class's methods and constructors
}

func (m *Method) TypeParameters() []*TypeVar { return m.TypeParams }

// DeclKey identifies the method by declaring class, name and declaration position,
// so it is stable before parameter types are resolved.
func (m *Method) DeclKey() string {
	return m.Declaring.Name + "#" + m.Name + "/" + strconv.Itoa(m.ordinal)
}

// Field is a native field or enum constant.
type Field struct {
	Name         string
	Declaring    *Class
	Modifiers    int
	Type         Type
	Constant     any
	EnumConstant bool
	Annotations  []*Annotation
}

// Parameter is a formal parameter of a native method.
type Parameter struct {
	Name        string
	Method      *Method
	Index       int
	Modifiers   int
	Type        Type
	Annotations []*Annotation
}

// Package is a native package.
type Package struct {
	Name        string
	Annotations []*Annotation
}

// Annotation is an annotation instance attached to a declaration or type use.
// Values holds attribute values in the order they were written. Each value is one of
// bool, int64 (with the attribute's declared primitive), float64, string, rune,
// *Class (class literal), *Field (enum constant), *Annotation or []any.
type Annotation struct {
	Type   *Class
	Values []AnnotationAttr
}

// AnnotationAttr is a single attribute/value pair of an annotation instance.
type AnnotationAttr struct {
	Name  string
	Value any
}

// Value returns the explicitly written value of the named attribute.
func (a *Annotation) Value(name string) (any, bool) {
	for _, v := range a.Values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return nil, false
}

// ParameterizedType is a generic class applied to type arguments.
type ParameterizedType struct {
	Raw   *Class
	Owner Type // non-nil only when written as Outer<...>.Inner<...>
	Args  []Type
}

func (p *ParameterizedType) TypeName() string {
	var b strings.Builder
	if p.Owner != nil {
		b.WriteString(p.Owner.TypeName())
		b.WriteByte('.')
		b.WriteString(p.Raw.SimpleName)
	} else {
		b.WriteString(p.Raw.Name)
	}
	b.WriteByte('<')
	for i, a := range p.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.TypeName())
	}
	b.WriteByte('>')
	return b.String()
}

// WildcardType is a wildcard type argument. At most one of Upper and Lower is
// non-empty; an empty Upper means the implicit Object bound.
type WildcardType struct {
	Upper []Type
	Lower []Type
}

func (w *WildcardType) TypeName() string {
	switch {
	case len(w.Lower) > 0:
		return "? super " + joinNames(w.Lower, " & ")
	case len(w.Upper) > 0:
		return "? extends " + joinNames(w.Upper, " & ")
	default:
		return "?"
	}
}

// TypeVar is a type variable introduced by a class or method.
type TypeVar struct {
	Name   string
	Bounds []Type // empty means the implicit Object bound
	Decl   GenericDeclaration
	Index  int
}

func (v *TypeVar) TypeName() string { return v.Name }

// GenericArrayType is an array type; its component may be any native type.
type GenericArrayType struct {
	Component Type
}

func (a *GenericArrayType) TypeName() string { return a.Component.TypeName() + "[]" }

// AnnotatedType attaches type-use annotations to a type expression.
type AnnotatedType struct {
	Type        Type
	Annotations []*Annotation
}

func (a *AnnotatedType) TypeName() string {
	var b strings.Builder
	for _, ann := range a.Annotations {
		b.WriteByte('@')
		b.WriteString(ann.Type.Name)
		b.WriteByte(' ')
	}
	b.WriteString(a.Type.TypeName())
	return b.String()
}

// Unannotated strips any AnnotatedType wrappers.
func Unannotated(t Type) Type {
	for {
		a, ok := t.(*AnnotatedType)
		if !ok {
			return t
		}
		t = a.Type
	}
}

func joinNames(ts []Type, sep string) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.TypeName()
	}
	return strings.Join(names, sep)
}
