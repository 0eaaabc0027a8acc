package provider

import (
	"fmt"
	"reflect"

	"github.com/broady/typemirror/mirror/classpath"
	"github.com/broady/typemirror/mirror/ir"
)

// AnnotationMirrorOf converts a native annotation instance. Values keep the
// order in which they were written; defaults are not filled in.
func (p *Provider) AnnotationMirrorOf(a *classpath.Annotation) (*ir.AnnotationMirror, error) {
	te := p.types[a.Type]
	if te == nil {
		return nil, ir.Errorf("annotation_mirror", ErrUnsupportedKind, "annotation type %s is not on this classpath", a.Type.Name)
	}
	m := &ir.AnnotationMirror{Type: &ir.DeclaredType{Owner: ir.None, Element: te}}
	for _, attr := range a.Values {
		var declared classpath.Type
		elem := a.Type.Method(attr.Name, 0)
		if elem != nil {
			declared = elem.Return
		}
		v, err := p.ToAnnotationValue(attr.Value, declared)
		if err != nil {
			return nil, fmt.Errorf("@%s.%s: %w", a.Type.Name, attr.Name, err)
		}
		entry := ir.AnnotationEntry{Name: attr.Name, Value: v}
		if elem != nil {
			entry.Element = p.execs[elem]
		}
		m.Values = append(m.Values, entry)
	}
	return m, nil
}

// ElementValuesWithDefaults returns the values of an annotation including the
// defaults of elements that were not written explicitly, in the order the
// annotation type declares its elements.
func (p *Provider) ElementValuesWithDefaults(m *ir.AnnotationMirror) ([]ir.AnnotationEntry, error) {
	var out []ir.AnnotationEntry
	for _, elem := range m.Type.Element.Native.Methods {
		if v, ok := m.Value(elem.Name); ok {
			out = append(out, ir.AnnotationEntry{Name: elem.Name, Element: p.execs[elem], Value: v})
			continue
		}
		if elem.Default == nil {
			continue
		}
		v, err := p.ToAnnotationValue(elem.Default, elem.Return)
		if err != nil {
			return nil, fmt.Errorf("default of %s: %w", elem.Name, err)
		}
		out = append(out, ir.AnnotationEntry{Name: elem.Name, Element: p.execs[elem], Value: v})
	}
	return out, nil
}

// ToAnnotationValue converts a native annotation value. declared is the
// element's declared type, when known; it selects the width of integral and
// floating values. Supported values are bool, int64, float64, rune, string,
// class literals, enum constants, nested annotations and one-dimensional arrays
// whose elements all have the same kind.
func (p *Provider) ToAnnotationValue(v any, declared classpath.Type) (ir.AnnotationValue, error) {
	want := primitiveKind(declared)
	switch v := v.(type) {
	case bool:
		return ir.BoolValue{V: v}, nil
	case int64:
		switch want {
		case ir.KindByte, ir.KindShort, ir.KindInt, ir.KindLong:
			return ir.IntValue{Kind: want, V: v}, nil
		case ir.KindChar:
			return ir.CharValue{V: rune(v)}, nil
		case ir.KindFloat, ir.KindDouble:
			return ir.FloatValue{Kind: want, V: float64(v)}, nil
		}
		return ir.IntValue{Kind: ir.KindInt, V: v}, nil
	case float64:
		if want == ir.KindFloat {
			return ir.FloatValue{Kind: ir.KindFloat, V: v}, nil
		}
		return ir.FloatValue{Kind: ir.KindDouble, V: v}, nil
	case rune:
		return ir.CharValue{V: v}, nil
	case string:
		return ir.StringValue{V: v}, nil
	case *classpath.Class:
		t, err := p.TypeOf(v)
		if err != nil {
			return nil, err
		}
		return ir.ClassValue{Type: t}, nil
	case *classpath.Field:
		if !v.EnumConstant {
			return nil, fmt.Errorf("%w: field %s is not an enum constant", ErrUnsupportedValueKind, v.Name)
		}
		return ir.EnumValue{Constant: p.fields[v]}, nil
	case *classpath.Annotation:
		m, err := p.AnnotationMirrorOf(v)
		if err != nil {
			return nil, err
		}
		return ir.NestedValue{Mirror: m}, nil
	case []any:
		var comp classpath.Type
		if arr, ok := classpath.Unannotated(declared).(*classpath.GenericArrayType); ok {
			comp = arr.Component
		}
		elems := make([]ir.AnnotationValue, len(v))
		for i, e := range v {
			if _, nested := e.([]any); nested {
				return nil, fmt.Errorf("%w: nested array", ErrUnsupportedValueKind)
			}
			if i > 0 && reflect.TypeOf(e) != reflect.TypeOf(v[0]) {
				return nil, fmt.Errorf("%w: mixed array of %T and %T", ErrUnsupportedValueKind, v[0], e)
			}
			ev, err := p.ToAnnotationValue(e, comp)
			if err != nil {
				return nil, err
			}
			elems[i] = ev
		}
		return ir.ArrayValue{Elems: elems}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValueKind, v)
}

func primitiveKind(t classpath.Type) ir.TypeKind {
	c, ok := classpath.Unannotated(t).(*classpath.Class)
	if !ok || !c.IsPrimitive() {
		return -1
	}
	k, _ := ir.PrimitiveKindOf(c.Name)
	return k
}

// mirrors converts a list of native annotations.
func (p *Provider) mirrors(anns []*classpath.Annotation) ([]*ir.AnnotationMirror, error) {
	if len(anns) == 0 {
		return nil, nil
	}
	out := make([]*ir.AnnotationMirror, 0, len(anns))
	for _, a := range anns {
		m, err := p.AnnotationMirrorOf(a)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
