package ir

import "encoding/json"

// JSON serialization support for type descriptors.
// All descriptors include a "kind" field for type discrimination and a "text"
// field with the source rendering.

// MarshalJSON implements json.Marshaler for PrimitiveType.
func (t *PrimitiveType) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind        string              `json:"kind"`
		Text        string              `json:"text"`
		Annotations []*AnnotationMirror `json:"annotations,omitempty"`
	}{
		Kind:        t.PrimitiveKind.String(),
		Text:        t.String(),
		Annotations: t.TypeAnnotations,
	})
}

// MarshalJSON implements json.Marshaler for NoType.
func (t *NoType) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind string `json:"kind"`
	}{
		Kind: t.NoKind.String(),
	})
}

// MarshalJSON implements json.Marshaler for NullType.
func (t *NullType) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind string `json:"kind"`
	}{
		Kind: "null",
	})
}

// MarshalJSON implements json.Marshaler for ArrayType.
func (t *ArrayType) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind        string              `json:"kind"`
		Text        string              `json:"text"`
		Component   Type                `json:"component"`
		Annotations []*AnnotationMirror `json:"annotations,omitempty"`
	}{
		Kind:        "array",
		Text:        t.String(),
		Component:   t.Component,
		Annotations: t.TypeAnnotations,
	})
}

// MarshalJSON implements json.Marshaler for DeclaredType.
func (t *DeclaredType) MarshalJSON() ([]byte, error) {
	var owner Type
	if !IsNone(t.Owner) {
		owner = t.Owner
	}
	return json.Marshal(&struct {
		Kind        string              `json:"kind"`
		Text        string              `json:"text"`
		Element     string              `json:"element"`
		Owner       Type                `json:"owner,omitempty"`
		Args        []Type              `json:"args,omitempty"`
		Annotations []*AnnotationMirror `json:"annotations,omitempty"`
	}{
		Kind:        "declared",
		Text:        t.String(),
		Element:     t.Element.Key(),
		Owner:       owner,
		Args:        t.Args,
		Annotations: t.TypeAnnotations,
	})
}

// MarshalJSON implements json.Marshaler for TypeVariable.
func (t *TypeVariable) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind        string              `json:"kind"`
		Text        string              `json:"text"`
		Element     string              `json:"element"`
		Annotations []*AnnotationMirror `json:"annotations,omitempty"`
	}{
		Kind:        "typevar",
		Text:        t.String(),
		Element:     t.Element.Key(),
		Annotations: t.TypeAnnotations,
	})
}

// MarshalJSON implements json.Marshaler for CapturedType.
func (t *CapturedType) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind     string        `json:"kind"`
		Text     string        `json:"text"`
		ID       uint64        `json:"id"`
		Wildcard *WildcardType `json:"wildcard"`
		Upper    Type          `json:"upper"`
		Lower    Type          `json:"lower"`
	}{
		Kind:     "captured",
		Text:     t.String(),
		ID:       t.id,
		Wildcard: t.Wildcard,
		Upper:    t.Upper,
		Lower:    t.Lower,
	})
}

// MarshalJSON implements json.Marshaler for WildcardType.
func (t *WildcardType) MarshalJSON() ([]byte, error) {
	var extends, super Type
	if t.HasExtendsBound() {
		extends = t.Extends
	}
	if t.HasSuperBound() {
		super = t.Super
	}
	return json.Marshal(&struct {
		Kind    string `json:"kind"`
		Text    string `json:"text"`
		Extends Type   `json:"extends,omitempty"`
		Super   Type   `json:"super,omitempty"`
	}{
		Kind:    "wildcard",
		Text:    t.String(),
		Extends: extends,
		Super:   super,
	})
}

// MarshalJSON implements json.Marshaler for IntersectionType.
func (t *IntersectionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind   string `json:"kind"`
		Text   string `json:"text"`
		Bounds []Type `json:"bounds"`
	}{
		Kind:   "intersection",
		Text:   t.String(),
		Bounds: t.Bounds,
	})
}

// MarshalJSON implements json.Marshaler for UnionType.
func (t *UnionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind         string `json:"kind"`
		Text         string `json:"text"`
		Alternatives []Type `json:"alternatives"`
	}{
		Kind:         "union",
		Text:         t.String(),
		Alternatives: t.Alternatives,
	})
}

// MarshalJSON implements json.Marshaler for ExecutableType.
func (t *ExecutableType) MarshalJSON() ([]byte, error) {
	var element string
	if t.Element != nil {
		element = t.Element.Key()
	}
	return json.Marshal(&struct {
		Kind       string          `json:"kind"`
		Text       string          `json:"text"`
		Element    string          `json:"element,omitempty"`
		TypeParams []*TypeVariable `json:"typeParams,omitempty"`
		Return     Type            `json:"return"`
		Params     []Type          `json:"params"`
		Thrown     []Type          `json:"thrown,omitempty"`
	}{
		Kind:       "executable",
		Text:       t.String(),
		Element:    element,
		TypeParams: t.TypeParams,
		Return:     t.Return,
		Params:     t.Params,
		Thrown:     t.Thrown,
	})
}

// MarshalJSON implements json.Marshaler for PackageType.
func (t *PackageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind string `json:"kind"`
		Name string `json:"name"`
	}{
		Kind: "package",
		Name: t.Element.QualifiedName,
	})
}

// MarshalJSON implements json.Marshaler for AnnotationMirror. Values are
// rendered as source literals keyed by element name.
func (a *AnnotationMirror) MarshalJSON() ([]byte, error) {
	values := make(map[string]string, len(a.Values))
	for _, e := range a.Values {
		values[e.Name] = e.Value.String()
	}
	return json.Marshal(&struct {
		Type   string            `json:"type"`
		Values map[string]string `json:"values,omitempty"`
	}{
		Type:   a.Type.Element.Key(),
		Values: values,
	})
}
