package oracle

import (
	"context"
	"strings"

	"github.com/broady/typemirror"
	"github.com/broady/typemirror/mirror/ir"
)

// ElementParams names one element. See lookupElement for the reference syntax.
type ElementParams struct {
	Name string `json:"name" validate:"required"`
}

// MembersParams names a class type whose members are listed.
type MembersParams struct {
	Type     string `json:"type" validate:"required"`
	Scope    string `json:"scope"`
	Declared bool   `json:"declared"` // only members declared by the class itself
}

// OverridesParams names two methods and the class in which they are compared.
type OverridesParams struct {
	Overrider  string `json:"overrider" validate:"required"`
	Overridden string `json:"overridden" validate:"required"`
	In         string `json:"in" validate:"required"`
}

// PackagesParams filters packages by name prefix.
type PackagesParams struct {
	Prefix string `json:"prefix"`
}

// ElementResult describes one declaration.
type ElementResult struct {
	Key            string                 `json:"key"`
	Name           string                 `json:"name"`
	Kind           string                 `json:"kind"`
	Modifiers      []string               `json:"modifiers,omitempty"`
	Enclosing      string                 `json:"enclosing,omitempty"`
	Type           *TypeResult            `json:"type,omitempty"`
	Superclass     *TypeResult            `json:"superclass,omitempty"`
	Interfaces     []TypeResult           `json:"interfaces,omitempty"`
	TypeParameters []TypeParamResult      `json:"typeParameters,omitempty"`
	Annotations    []*ir.AnnotationMirror `json:"annotations,omitempty"`
}

// TypeParamResult is a type parameter with its declared bounds.
type TypeParamResult struct {
	Name   string       `json:"name"`
	Bounds []TypeResult `json:"bounds"`
}

// MemberResult is a member with its type as seen from the listed type.
type MemberResult struct {
	Key       string   `json:"key"`
	Kind      string   `json:"kind"`
	Modifiers []string `json:"modifiers,omitempty"`
	Declaring string   `json:"declaring"`
	Type      string   `json:"type"`
}

// MembersResult lists the members of a type.
type MembersResult struct {
	Type    TypeResult     `json:"type"`
	Members []MemberResult `json:"members"`
}

// OverridesResult is the answer to an override query.
type OverridesResult struct {
	Holds bool `json:"holds"`
}

// PackageResult is a package and the number of top-level classes in it.
type PackageResult struct {
	Name    string `json:"name"`
	Classes int    `json:"classes"`
}

// PackagesResult lists packages sorted by name.
type PackagesResult struct {
	Packages []PackageResult `json:"packages"`
}

// Describe returns the declaration an element reference names.
func (o *Oracle) Describe(ctx context.Context, req ElementParams) (*ElementResult, error) {
	e, err := o.lookupElement(req.Name)
	if err != nil {
		return nil, err
	}
	res := &ElementResult{
		Key:         e.Key(),
		Name:        e.SimpleName(),
		Kind:        e.Kind().String(),
		Modifiers:   e.Modifiers().Strings(),
		Annotations: o.p.Annotations(e),
	}
	if enc := o.p.Enclosing(e); enc != nil {
		res.Enclosing = enc.Key()
	}
	if e.Kind() != ir.ElementPackage {
		t, err := o.p.TypeOfElement(e)
		if err != nil {
			return nil, err
		}
		tr := typeResult(t)
		res.Type = &tr
	}

	switch e := e.(type) {
	case *ir.TypeElement:
		if sc := o.p.Superclass(e); !ir.IsNone(sc) {
			tr := typeResult(sc)
			res.Superclass = &tr
		}
		res.Interfaces = typeResults(o.p.Interfaces(e))
		for _, tp := range o.p.TypeParameters(e) {
			res.TypeParameters = append(res.TypeParameters, TypeParamResult{
				Name:   tp.SimpleName(),
				Bounds: typeResults(o.p.Bounds(tp)),
			})
		}
	case *ir.ExecutableElement:
		for _, tp := range o.p.TypeParameters(e) {
			res.TypeParameters = append(res.TypeParameters, TypeParamResult{
				Name:   tp.SimpleName(),
				Bounds: typeResults(o.p.Bounds(tp)),
			})
		}
	case *ir.TypeParameterElement:
		res.TypeParameters = []TypeParamResult{{Name: e.SimpleName(), Bounds: typeResults(o.p.Bounds(e))}}
	}
	return res, nil
}

// Members lists the members of a class type, inherited ones included unless
// Declared is set. Member types are substituted with the type's arguments.
func (o *Oracle) Members(ctx context.Context, req MembersParams) (*MembersResult, error) {
	t, err := o.parse(req.Type, req.Scope)
	if err != nil {
		return nil, err
	}
	d, err := declared(t, "type")
	if err != nil {
		return nil, err
	}

	var elems []ir.Element
	if req.Declared {
		elems = o.p.EnclosedElements(d.Element)
	} else {
		elems = o.p.Members(d.Element)
	}

	res := &MembersResult{Type: typeResult(d), Members: make([]MemberResult, 0, len(elems))}
	for _, e := range elems {
		mt, err := o.ts.AsMemberOf(d, e)
		if err != nil {
			return nil, err
		}
		m := MemberResult{
			Key:       e.Key(),
			Kind:      e.Kind().String(),
			Modifiers: e.Modifiers().Strings(),
			Type:      mt.String(),
		}
		if dt := o.p.DeclaringType(e); dt != nil {
			m.Declaring = dt.Key()
		}
		res.Members = append(res.Members, m)
	}
	return res, nil
}

// Overrides reports whether one method overrides another as members of a class.
func (o *Oracle) Overrides(ctx context.Context, req OverridesParams) (OverridesResult, error) {
	overrider, err := o.lookupMethod(req.Overrider)
	if err != nil {
		return OverridesResult{}, err
	}
	overridden, err := o.lookupMethod(req.Overridden)
	if err != nil {
		return OverridesResult{}, err
	}
	in, err := o.p.TypeElement(req.In)
	if err != nil {
		return OverridesResult{}, err
	}
	holds, err := o.ts.Overrides(overrider, overridden, in)
	if err != nil {
		return OverridesResult{}, err
	}
	return OverridesResult{Holds: holds}, nil
}

func (o *Oracle) lookupMethod(ref string) (*ir.ExecutableElement, error) {
	e, err := o.lookupElement(ref)
	if err != nil {
		return nil, err
	}
	ee, ok := e.(*ir.ExecutableElement)
	if !ok {
		return nil, typemirror.Errorf(typemirror.CodeInvalidArgument, "%s is a %s, not a method", ref, e.Kind())
	}
	return ee, nil
}

// Packages lists the packages on the classpath.
func (o *Oracle) Packages(ctx context.Context, req PackagesParams) (*PackagesResult, error) {
	cp := o.p.Classpath()
	res := &PackagesResult{Packages: []PackageResult{}}
	for _, name := range cp.Packages() {
		if !strings.HasPrefix(name, req.Prefix) {
			continue
		}
		res.Packages = append(res.Packages, PackageResult{Name: name, Classes: len(cp.ClassesIn(name))})
	}
	return res, nil
}
