package ir

import (
	"strconv"
	"strings"
)

// AnnotationMirror is an annotation instance: its annotation type and the
// explicitly written element values in declaration order.
type AnnotationMirror struct {
	Type   *DeclaredType
	Values []AnnotationEntry
}

// AnnotationEntry is a single element/value pair.
type AnnotationEntry struct {
	Name    string
	Element *ExecutableElement // nil when the element could not be resolved
	Value   AnnotationValue
}

// Value returns the explicitly written value of the named element.
func (a *AnnotationMirror) Value(name string) (AnnotationValue, bool) {
	for _, e := range a.Values {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

func (a *AnnotationMirror) String() string {
	var b strings.Builder
	b.WriteByte('@')
	b.WriteString(a.Type.Element.Key())
	if len(a.Values) == 0 {
		return b.String()
	}
	b.WriteByte('(')
	if len(a.Values) == 1 && a.Values[0].Name == "value" {
		b.WriteString(a.Values[0].Value.String())
	} else {
		for i, e := range a.Values {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.Name)
			b.WriteString(" = ")
			b.WriteString(e.Value.String())
		}
	}
	b.WriteByte(')')
	return b.String()
}

// AnnotationValue is the value of an annotation element.
type AnnotationValue interface {
	// String renders the value as a source literal.
	String() string
	annotationValue()
}

type (
	// BoolValue is a boolean element value.
	BoolValue struct{ V bool }
	// IntValue is an integral element value; Kind is byte, short, int or long.
	IntValue struct {
		Kind TypeKind
		V    int64
	}
	// FloatValue is a floating element value; Kind is float or double.
	FloatValue struct {
		Kind TypeKind
		V    float64
	}
	// CharValue is a char element value.
	CharValue struct{ V rune }
	// StringValue is a string element value.
	StringValue struct{ V string }
	// ClassValue is a class literal.
	ClassValue struct{ Type Type }
	// EnumValue is an enum constant.
	EnumValue struct{ Constant *VariableElement }
	// NestedValue is a nested annotation.
	NestedValue struct{ Mirror *AnnotationMirror }
	// ArrayValue is a one-dimensional array of element values.
	ArrayValue struct{ Elems []AnnotationValue }
)

func (BoolValue) annotationValue()   {}
func (IntValue) annotationValue()    {}
func (FloatValue) annotationValue()  {}
func (CharValue) annotationValue()   {}
func (StringValue) annotationValue() {}
func (ClassValue) annotationValue()  {}
func (EnumValue) annotationValue()   {}
func (NestedValue) annotationValue() {}
func (ArrayValue) annotationValue()  {}

func (v BoolValue) String() string { return strconv.FormatBool(v.V) }

func (v IntValue) String() string {
	s := strconv.FormatInt(v.V, 10)
	if v.Kind == KindLong {
		s += "L"
	}
	return s
}

func (v FloatValue) String() string {
	if v.Kind == KindFloat {
		return strconv.FormatFloat(v.V, 'g', -1, 32) + "f"
	}
	return strconv.FormatFloat(v.V, 'g', -1, 64)
}

func (v CharValue) String() string   { return strconv.QuoteRune(v.V) }
func (v StringValue) String() string { return strconv.Quote(v.V) }
func (v ClassValue) String() string  { return v.Type.String() + ".class" }

func (v EnumValue) String() string {
	return v.Constant.Field.Declaring.Name + "." + v.Constant.SimpleName()
}

func (v NestedValue) String() string { return v.Mirror.String() }

func (v ArrayValue) String() string {
	parts := make([]string, len(v.Elems))
	for i, e := range v.Elems {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
