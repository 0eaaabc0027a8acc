package ir

import (
	"slices"
	"strconv"
	"strings"

	"github.com/broady/typemirror/mirror/classpath"
)

// Type is the base interface for all type descriptors.
//
// Descriptors are immutable values. Two descriptors denote the same type when
// Equal reports true; Hash returns the matching canonical key.
type Type interface {
	// Kind returns the descriptor kind for type switching.
	Kind() TypeKind

	// Annotations returns the type-use annotations attached to this occurrence.
	// They do not take part in equality.
	Annotations() []*AnnotationMirror

	// Hash returns a canonical structural key. Equal descriptors have equal keys.
	Hash() string

	// String renders the type in source syntax.
	String() string

	// Ensure only types in this package can implement Type.
	sealed()
}

// typeBase carries the type-use annotations shared by every descriptor.
type typeBase struct {
	TypeAnnotations []*AnnotationMirror `json:"annotations,omitempty"`
}

func (b typeBase) Annotations() []*AnnotationMirror { return b.TypeAnnotations }
func (typeBase) sealed()                            {}

func (b typeBase) prefix() string {
	if len(b.TypeAnnotations) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, a := range b.TypeAnnotations {
		sb.WriteString(a.String())
		sb.WriteByte(' ')
	}
	return sb.String()
}

// PrimitiveType is one of the eight primitive types.
type PrimitiveType struct {
	typeBase
	PrimitiveKind TypeKind
}

func (t *PrimitiveType) Kind() TypeKind { return t.PrimitiveKind }
func (t *PrimitiveType) Hash() string   { return t.PrimitiveKind.String() }
func (t *PrimitiveType) String() string { return t.prefix() + t.PrimitiveKind.String() }

// Primitive returns the primitive type of the given kind. It panics if k is not
// a primitive kind.
func Primitive(k TypeKind) *PrimitiveType {
	if !k.IsPrimitive() {
		panic("ir: not a primitive kind: " + k.String())
	}
	return &PrimitiveType{PrimitiveKind: k}
}

// NoType is the void pseudo-type or the absence of a type.
type NoType struct {
	typeBase
	NoKind TypeKind // KindVoid or KindNone
}

func (t *NoType) Kind() TypeKind { return t.NoKind }
func (t *NoType) Hash() string   { return t.NoKind.String() }
func (t *NoType) String() string { return t.NoKind.String() }

var (
	// None marks an absent owner, receiver or superclass.
	None = &NoType{NoKind: KindNone}
	// Void is the return type of void methods.
	Void = &NoType{NoKind: KindVoid}
)

// IsNone reports whether t is nil or the None pseudo-type.
func IsNone(t Type) bool { return t == nil || t.Kind() == KindNone }

// NullType is the type of the null reference, the bottom of all reference types.
type NullType struct {
	typeBase
}

func (t *NullType) Kind() TypeKind { return KindNull }
func (t *NullType) Hash() string   { return "null" }
func (t *NullType) String() string { return "null" }

// Null is the shared null type.
var Null = &NullType{}

// ArrayType is an array of Component.
type ArrayType struct {
	typeBase
	Component Type
}

func (t *ArrayType) Kind() TypeKind { return KindArray }
func (t *ArrayType) Hash() string   { return t.Component.Hash() + "[]" }
func (t *ArrayType) String() string {
	if t.Component.Kind() == KindIntersection {
		return t.prefix() + "(" + t.Component.String() + ")[]"
	}
	return t.prefix() + t.Component.String() + "[]"
}

// DeclaredType is a class or interface type, possibly parameterized.
//
// Owner is the enclosing-instance type for inner (non-static member) classes and
// None otherwise. Args is empty for raw and non-generic types.
type DeclaredType struct {
	typeBase
	Owner   Type
	Element *TypeElement
	Args    []Type
}

func (t *DeclaredType) Kind() TypeKind { return KindDeclared }

func (t *DeclaredType) Hash() string {
	var b strings.Builder
	if !IsNone(t.Owner) {
		b.WriteString(t.Owner.Hash())
		b.WriteByte('.')
		b.WriteString(t.Element.Key())
	} else {
		b.WriteString(t.Element.Key())
	}
	if len(t.Args) > 0 {
		b.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(a.Hash())
		}
		b.WriteByte('>')
	}
	return b.String()
}

func (t *DeclaredType) String() string {
	var b strings.Builder
	b.WriteString(t.prefix())
	if owner, ok := t.Owner.(*DeclaredType); ok && !IsNone(t.Owner) {
		b.WriteString(owner.String())
		b.WriteByte('.')
		b.WriteString(t.Element.SimpleName())
	} else {
		b.WriteString(t.Element.Key())
	}
	if len(t.Args) > 0 {
		b.WriteByte('<')
		writeJoined(&b, t.Args, ", ")
		b.WriteByte('>')
	}
	return b.String()
}

// IsRaw reports whether t names a generic class without type arguments.
func (t *DeclaredType) IsRaw() bool {
	return len(t.Args) == 0 && t.Element.IsGeneric()
}

// HasWildcardArgs reports whether any type argument is a wildcard.
func (t *DeclaredType) HasWildcardArgs() bool {
	for _, a := range t.Args {
		if a.Kind() == KindWildcard {
			return true
		}
	}
	return false
}

// IsObject reports whether t is the root class type.
func IsObject(t Type) bool {
	d, ok := t.(*DeclaredType)
	return ok && d.Element.QualifiedName == classpath.ObjectName
}

// TypeVariable is a use of a declared type parameter.
type TypeVariable struct {
	typeBase
	Element *TypeParameterElement
}

func (t *TypeVariable) Kind() TypeKind { return KindTypeVariable }
func (t *TypeVariable) Hash() string   { return "tv:" + t.Element.Key() }
func (t *TypeVariable) String() string { return t.prefix() + t.Element.SimpleName() }

// CapturedType is a fresh type variable introduced by capture conversion of a
// wildcard argument. Captured types are equal only to themselves: two captures
// are the same type exactly when they share an identity token.
type CapturedType struct {
	typeBase
	id       uint64
	Wildcard *WildcardType
	Upper    Type
	Lower    Type
	Element  *TypeParameterElement
}

// NewCaptured returns a captured type with the given identity token.
func NewCaptured(id uint64, w *WildcardType, upper, lower Type, elem *TypeParameterElement) *CapturedType {
	return &CapturedType{id: id, Wildcard: w, Upper: upper, Lower: lower, Element: elem}
}

// ID returns the identity token.
func (t *CapturedType) ID() uint64      { return t.id }
func (t *CapturedType) Kind() TypeKind  { return KindCaptured }
func (t *CapturedType) Hash() string    { return "cap#" + strconv.FormatUint(t.id, 10) }
func (t *CapturedType) String() string {
	return t.prefix() + "capture#" + strconv.FormatUint(t.id, 10) + " of " + t.Wildcard.String()
}

// WildcardType is a wildcard type argument. Extends defaults to Object and Super
// to Null; at most one of them is explicit.
type WildcardType struct {
	typeBase
	Extends Type
	Super   Type
}

func (t *WildcardType) Kind() TypeKind { return KindWildcard }

// HasExtendsBound reports whether the wildcard has an explicit upper bound.
func (t *WildcardType) HasExtendsBound() bool { return t.Extends != nil && !IsObject(t.Extends) }

// HasSuperBound reports whether the wildcard has an explicit lower bound.
func (t *WildcardType) HasSuperBound() bool { return t.Super != nil && t.Super.Kind() != KindNull }

func (t *WildcardType) Hash() string {
	switch {
	case t.HasSuperBound():
		return "?-" + t.Super.Hash()
	case t.HasExtendsBound():
		return "?+" + t.Extends.Hash()
	default:
		return "?"
	}
}

func (t *WildcardType) String() string {
	switch {
	case t.HasSuperBound():
		return t.prefix() + "? super " + t.Super.String()
	case t.HasExtendsBound():
		return t.prefix() + "? extends " + t.Extends.String()
	default:
		return t.prefix() + "?"
	}
}

// IntersectionType is the intersection of two or more bounds.
type IntersectionType struct {
	typeBase
	Bounds []Type
}

func (t *IntersectionType) Kind() TypeKind { return KindIntersection }
func (t *IntersectionType) Hash() string   { return "&(" + sortedHashes(t.Bounds) + ")" }
func (t *IntersectionType) String() string {
	var b strings.Builder
	writeJoined(&b, t.Bounds, " & ")
	return b.String()
}

// UnionType is the union of two or more alternatives, as in a multi-catch clause.
type UnionType struct {
	typeBase
	Alternatives []Type
}

func (t *UnionType) Kind() TypeKind { return KindUnion }
func (t *UnionType) Hash() string   { return "|(" + sortedHashes(t.Alternatives) + ")" }
func (t *UnionType) String() string {
	var b strings.Builder
	writeJoined(&b, t.Alternatives, " | ")
	return b.String()
}

// ExecutableType is the type of a method or constructor, possibly as seen from
// a particular containing type.
type ExecutableType struct {
	typeBase
	Element    *ExecutableElement
	TypeParams []*TypeVariable
	Return     Type
	Params     []Type
	Receiver   Type // None when absent
	Thrown     []Type
}

func (t *ExecutableType) Kind() TypeKind { return KindExecutable }

// IsGeneric reports whether the executable declares its own type parameters.
func (t *ExecutableType) IsGeneric() bool { return len(t.TypeParams) > 0 }

func (t *ExecutableType) Hash() string {
	var b strings.Builder
	b.WriteString("exec:")
	if t.Element != nil {
		b.WriteString(t.Element.Key())
	}
	b.WriteByte(':')
	b.WriteString(t.signature(func(t Type) string { return t.Hash() }))
	return b.String()
}

func (t *ExecutableType) String() string {
	return t.signature(func(t Type) string { return t.String() })
}

func (t *ExecutableType) signature(render func(Type) string) string {
	var b strings.Builder
	if len(t.TypeParams) > 0 {
		b.WriteByte('<')
		for i, tv := range t.TypeParams {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(render(tv))
		}
		b.WriteByte('>')
	}
	b.WriteByte('(')
	for i, p := range t.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(render(p))
	}
	b.WriteByte(')')
	b.WriteString(render(t.Return))
	if len(t.Thrown) > 0 {
		b.WriteString(" throws ")
		for i, x := range t.Thrown {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(render(x))
		}
	}
	return b.String()
}

// PackageType is the pseudo-type of a package.
type PackageType struct {
	typeBase
	Element *PackageElement
}

func (t *PackageType) Kind() TypeKind { return KindPackage }
func (t *PackageType) Hash() string   { return "pkg:" + t.Element.QualifiedName }
func (t *PackageType) String() string { return t.Element.QualifiedName }

// Equal reports whether a and b denote the same type. Comparison is structural
// and ignores type-use annotations; captured types compare by identity token.
// Intersections and unions compare as sets.
func Equal(a, b Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return IsNone(a) && IsNone(b)
	}
	if a.Kind() != b.Kind() {
		return false
	}
	return a.Hash() == b.Hash()
}

// EqualAll reports whether two type lists are pairwise Equal.
func EqualAll(a, b []Type) bool {
	return slices.EqualFunc(a, b, Equal)
}

// WithAnnotations returns a shallow copy of t carrying the given type-use
// annotations. It returns t itself when anns is empty.
func WithAnnotations(t Type, anns []*AnnotationMirror) Type {
	if len(anns) == 0 {
		return t
	}
	switch t := t.(type) {
	case *PrimitiveType:
		c := *t
		c.TypeAnnotations = anns
		return &c
	case *NoType:
		c := *t
		c.TypeAnnotations = anns
		return &c
	case *NullType:
		c := *t
		c.TypeAnnotations = anns
		return &c
	case *ArrayType:
		c := *t
		c.TypeAnnotations = anns
		return &c
	case *DeclaredType:
		c := *t
		c.TypeAnnotations = anns
		return &c
	case *TypeVariable:
		c := *t
		c.TypeAnnotations = anns
		return &c
	case *CapturedType:
		c := *t
		c.TypeAnnotations = anns
		return &c
	case *WildcardType:
		c := *t
		c.TypeAnnotations = anns
		return &c
	case *IntersectionType:
		c := *t
		c.TypeAnnotations = anns
		return &c
	case *UnionType:
		c := *t
		c.TypeAnnotations = anns
		return &c
	case *ExecutableType:
		c := *t
		c.TypeAnnotations = anns
		return &c
	case *PackageType:
		c := *t
		c.TypeAnnotations = anns
		return &c
	}
	return t
}

func writeJoined(b *strings.Builder, ts []Type, sep string) {
	for i, t := range ts {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(t.String())
	}
}

func sortedHashes(ts []Type) string {
	hs := make([]string, len(ts))
	for i, t := range ts {
		hs[i] = t.Hash()
	}
	slices.Sort(hs)
	hs = slices.Compact(hs)
	return strings.Join(hs, ",")
}
