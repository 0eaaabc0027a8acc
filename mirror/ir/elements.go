package ir

import (
	"strconv"
	"strings"

	"github.com/broady/typemirror/mirror/classpath"
)

// Element is a program declaration: a package, type, executable, variable or
// type parameter.
//
// Elements are identified by Key. The accessors that need the declaration source
// (enclosing element, members, supertypes) live in the provider package.
type Element interface {
	Kind() ElementKind
	SimpleName() string
	Modifiers() ModifierSet
	Annotations() []*AnnotationMirror
	// Key identifies the declaration within its classpath.
	Key() string
	String() string
	sealed()
}

type elemBase struct {
	kind   ElementKind
	name   string
	mods   ModifierSet
	Annots []*AnnotationMirror
}

func (e *elemBase) Kind() ElementKind                { return e.kind }
func (e *elemBase) SimpleName() string               { return e.name }
func (e *elemBase) Modifiers() ModifierSet           { return e.mods }
func (e *elemBase) Annotations() []*AnnotationMirror { return e.Annots }
func (e *elemBase) sealed()                          {}

// PackageElement is a package.
type PackageElement struct {
	elemBase
	QualifiedName string
	Native        *classpath.Package
}

// NewPackageElement returns the element for a native package.
func NewPackageElement(p *classpath.Package) *PackageElement {
	simple := p.Name[strings.LastIndex(p.Name, ".")+1:]
	return &PackageElement{
		elemBase:      elemBase{kind: ElementPackage, name: simple},
		QualifiedName: p.Name,
		Native:        p,
	}
}

func (e *PackageElement) Key() string    { return e.QualifiedName }
func (e *PackageElement) String() string { return e.QualifiedName }

// IsUnnamed reports whether e is the default package.
func (e *PackageElement) IsUnnamed() bool { return e.QualifiedName == "" }

// TypeElement is a class, interface, enum or annotation type.
type TypeElement struct {
	elemBase
	QualifiedName string // empty for anonymous classes
	Anonymous     bool
	Native        *classpath.Class
}

// NewTypeElement returns the element for a native class. It panics for primitive
// and void classes, which have no declaration.
func NewTypeElement(c *classpath.Class) *TypeElement {
	var kind ElementKind
	switch c.Kind {
	case classpath.KindClass:
		kind = ElementClass
	case classpath.KindInterface:
		kind = ElementInterface
	case classpath.KindEnum:
		kind = ElementEnum
	case classpath.KindAnnotation:
		kind = ElementAnnotationType
	default:
		panic("ir: no type element for " + c.String())
	}
	e := &TypeElement{
		elemBase:      elemBase{kind: kind, name: c.SimpleName, mods: ModifiersOf(c.Modifiers)},
		QualifiedName: c.Name,
		Anonymous:     c.Anonymous,
		Native:        c,
	}
	if c.Anonymous {
		e.QualifiedName = ""
	}
	return e
}

func (e *TypeElement) Key() string { return e.Native.Name }

func (e *TypeElement) String() string {
	if e.Anonymous {
		return "<anonymous " + e.Native.Name + ">"
	}
	return e.QualifiedName
}

// IsGeneric reports whether the type declares type parameters.
func (e *TypeElement) IsGeneric() bool { return len(e.Native.TypeParams) > 0 }

// IsStatic reports whether instances have no enclosing instance.
func (e *TypeElement) IsStatic() bool { return e.Native.IsStatic() }

// ExecutableElement is a method or constructor.
type ExecutableElement struct {
	elemBase
	Native *classpath.Method
	key    string
}

// NewExecutableElement returns the element for a native method or constructor.
func NewExecutableElement(m *classpath.Method) *ExecutableElement {
	kind := ElementMethod
	if m.Constructor {
		kind = ElementConstructor
	}
	return &ExecutableElement{
		elemBase: elemBase{kind: kind, name: m.Name, mods: ModifiersOf(m.Modifiers)},
		Native:   m,
		key:      m.Declaring.Name + "#" + m.Name + "(" + ErasedParams(m) + ")",
	}
}

func (e *ExecutableElement) Key() string    { return e.key }
func (e *ExecutableElement) String() string { return e.key }

// IsVarArgs reports whether the last parameter is variable arity.
func (e *ExecutableElement) IsVarArgs() bool { return e.Native.VarArgs }

// IsDefault reports whether the method is an interface default method.
func (e *ExecutableElement) IsDefault() bool { return e.mods.Has(ModDefault) }

// ErasedParams renders the erased parameter types of a native method, joined by
// commas. Overloads differ in this string.
func ErasedParams(m *classpath.Method) string {
	names := make([]string, len(m.Params))
	for i, p := range m.Params {
		names[i] = ErasedName(p.Type)
	}
	return strings.Join(names, ",")
}

// ErasedName renders the erasure of a native type expression.
func ErasedName(t classpath.Type) string {
	switch t := classpath.Unannotated(t).(type) {
	case *classpath.Class:
		return t.Name
	case *classpath.ParameterizedType:
		return t.Raw.Name
	case *classpath.GenericArrayType:
		return ErasedName(t.Component) + "[]"
	case *classpath.TypeVar:
		if len(t.Bounds) == 0 {
			return classpath.ObjectName
		}
		return ErasedName(t.Bounds[0])
	case *classpath.WildcardType:
		if len(t.Upper) == 0 {
			return classpath.ObjectName
		}
		return ErasedName(t.Upper[0])
	}
	return "?"
}

// VariableElement is a field, enum constant or parameter.
type VariableElement struct {
	elemBase
	Field *classpath.Field     // set for fields and enum constants
	Param *classpath.Parameter // set for parameters
	key   string
}

// NewFieldElement returns the element for a native field or enum constant.
func NewFieldElement(f *classpath.Field) *VariableElement {
	kind := ElementField
	if f.EnumConstant {
		kind = ElementEnumConstant
	}
	return &VariableElement{
		elemBase: elemBase{kind: kind, name: f.Name, mods: ModifiersOf(f.Modifiers)},
		Field:    f,
		key:      f.Declaring.Name + "." + f.Name,
	}
}

// NewParameterElement returns the element for a native formal parameter.
func NewParameterElement(p *classpath.Parameter, method *ExecutableElement) *VariableElement {
	return &VariableElement{
		elemBase: elemBase{kind: ElementParameter, name: p.Name, mods: ModifiersOf(p.Modifiers)},
		Param:    p,
		key:      method.Key() + "/" + strconv.Itoa(p.Index),
	}
}

func (e *VariableElement) Key() string    { return e.key }
func (e *VariableElement) String() string { return e.name }

// ConstantValue returns the compile-time constant of a field, if any.
func (e *VariableElement) ConstantValue() any {
	if e.Field == nil {
		return nil
	}
	return e.Field.Constant
}

// TypeParameterElement is a formal type parameter of a generic class or
// executable, or the synthetic parameter of a captured type.
type TypeParameterElement struct {
	elemBase
	Native *classpath.TypeVar // nil for synthetic parameters
	// Synthetic is set for parameters created by capture conversion.
	Synthetic bool
	key       string
}

// NewTypeParameterElement returns the element for a native type variable.
func NewTypeParameterElement(tv *classpath.TypeVar) *TypeParameterElement {
	return &TypeParameterElement{
		elemBase: elemBase{kind: ElementTypeParameter, name: tv.Name},
		Native:   tv,
		key:      tv.Decl.DeclKey() + "<" + tv.Name,
	}
}

// NewSyntheticTypeParameter returns a fresh synthetic type parameter for a
// capture site.
func NewSyntheticTypeParameter(name string) *TypeParameterElement {
	return &TypeParameterElement{
		elemBase:  elemBase{kind: ElementTypeParameter, name: name},
		Synthetic: true,
		key:       name,
	}
}

func (e *TypeParameterElement) Key() string    { return e.key }
func (e *TypeParameterElement) String() string { return e.name }

// Index returns the position of the parameter in its declaration, or -1 for
// synthetic parameters.
func (e *TypeParameterElement) Index() int {
	if e.Native == nil {
		return -1
	}
	return e.Native.Index
}

// SameElement reports whether a and b denote the same declaration.
func SameElement(a, b Element) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Kind() == b.Kind() && a.Key() == b.Key()
}
