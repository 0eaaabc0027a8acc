package ir

// TypeKind identifies the category of a type descriptor.
type TypeKind int

const (
	// Primitive kinds, in widening order for the numeric ones.
	KindBoolean TypeKind = iota
	KindByte
	KindShort
	KindInt
	KindLong
	KindChar
	KindFloat
	KindDouble

	// Pseudo-types
	KindVoid // return type of void methods
	KindNone // absence of a type (no owner, no receiver, Object's superclass)
	KindNull // type of the null reference

	// Reference and structural kinds
	KindArray
	KindDeclared
	KindTypeVariable
	KindCaptured // fresh type variable produced by capture conversion
	KindWildcard
	KindIntersection
	KindUnion

	// Non-value kinds
	KindExecutable
	KindPackage
)

// String returns the lower-case name of the kind, matching source keywords for
// primitives.
func (k TypeKind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindByte:
		return "byte"
	case KindShort:
		return "short"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindChar:
		return "char"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindVoid:
		return "void"
	case KindNone:
		return "none"
	case KindNull:
		return "null"
	case KindArray:
		return "array"
	case KindDeclared:
		return "declared"
	case KindTypeVariable:
		return "typevar"
	case KindCaptured:
		return "captured"
	case KindWildcard:
		return "wildcard"
	case KindIntersection:
		return "intersection"
	case KindUnion:
		return "union"
	case KindExecutable:
		return "executable"
	case KindPackage:
		return "package"
	default:
		return "unknown"
	}
}

// IsPrimitive reports whether k is one of the eight primitive kinds.
func (k TypeKind) IsPrimitive() bool { return k >= KindBoolean && k <= KindDouble }

// IsNumeric reports whether k is a primitive other than boolean.
func (k TypeKind) IsNumeric() bool { return k > KindBoolean && k <= KindDouble }

// IsReference reports whether values of kind k are references.
func (k TypeKind) IsReference() bool {
	switch k {
	case KindNull, KindArray, KindDeclared, KindTypeVariable, KindCaptured, KindIntersection, KindUnion:
		return true
	}
	return false
}

// PrimitiveKindOf returns the primitive kind for a keyword.
func PrimitiveKindOf(keyword string) (TypeKind, bool) {
	for k := KindBoolean; k <= KindDouble; k++ {
		if k.String() == keyword {
			return k, true
		}
	}
	return 0, false
}

// ElementKind identifies the category of a declaration.
type ElementKind int

const (
	ElementPackage ElementKind = iota
	ElementClass
	ElementInterface
	ElementEnum
	ElementAnnotationType
	ElementMethod
	ElementConstructor
	ElementField
	ElementEnumConstant
	ElementParameter
	ElementLocalVariable
	ElementTypeParameter
)

// String returns the upper-case name of the element kind.
func (k ElementKind) String() string {
	switch k {
	case ElementPackage:
		return "PACKAGE"
	case ElementClass:
		return "CLASS"
	case ElementInterface:
		return "INTERFACE"
	case ElementEnum:
		return "ENUM"
	case ElementAnnotationType:
		return "ANNOTATION_TYPE"
	case ElementMethod:
		return "METHOD"
	case ElementConstructor:
		return "CONSTRUCTOR"
	case ElementField:
		return "FIELD"
	case ElementEnumConstant:
		return "ENUM_CONSTANT"
	case ElementParameter:
		return "PARAMETER"
	case ElementLocalVariable:
		return "LOCAL_VARIABLE"
	case ElementTypeParameter:
		return "TYPE_PARAMETER"
	default:
		return "UNKNOWN"
	}
}

// IsType reports whether k is a class, interface, enum or annotation type.
func (k ElementKind) IsType() bool { return k >= ElementClass && k <= ElementAnnotationType }

// IsInterface reports whether k is an interface or annotation type.
func (k ElementKind) IsInterface() bool { return k == ElementInterface || k == ElementAnnotationType }
