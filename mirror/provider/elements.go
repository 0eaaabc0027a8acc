package provider

import (
	"slices"

	"github.com/broady/typemirror/mirror/classpath"
	"github.com/broady/typemirror/mirror/ir"
)

// Enclosing returns the innermost element enclosing e: the enclosing type or
// package of a type, the declaring type of a member, the executable of a
// parameter and the generic declaration of a type parameter. It returns nil for
// packages and synthetic type parameters.
func (p *Provider) Enclosing(e ir.Element) ir.Element {
	switch e := e.(type) {
	case *ir.TypeElement:
		if c := e.Native.Enclosing; c != nil {
			return p.types[c]
		}
		return p.packages[e.Native.Pkg]
	case *ir.ExecutableElement:
		return p.types[e.Native.Declaring]
	case *ir.VariableElement:
		if e.Field != nil {
			return p.types[e.Field.Declaring]
		}
		return p.execs[e.Param.Method]
	case *ir.TypeParameterElement:
		if e.Native == nil {
			return nil
		}
		switch d := e.Native.Decl.(type) {
		case *classpath.Class:
			return p.types[d]
		case *classpath.Method:
			return p.execs[d]
		}
	}
	return nil
}

// PackageOf returns the package an element belongs to.
func (p *Provider) PackageOf(e ir.Element) *ir.PackageElement {
	for e != nil {
		if pe, ok := e.(*ir.PackageElement); ok {
			return pe
		}
		e = p.Enclosing(e)
	}
	return nil
}

// EnclosedElements returns the elements directly declared by e in declaration
// order: fields and enum constants, constructors, methods and member types for a
// type; the top-level types of a package. Other elements enclose nothing.
func (p *Provider) EnclosedElements(e ir.Element) []ir.Element {
	var out []ir.Element
	switch e := e.(type) {
	case *ir.TypeElement:
		c := e.Native
		for _, f := range c.Fields {
			out = append(out, p.fields[f])
		}
		for _, m := range c.Constructors {
			out = append(out, p.execs[m])
		}
		for _, m := range c.Methods {
			out = append(out, p.execs[m])
		}
		for _, mc := range c.MemberClasses {
			out = append(out, p.types[mc])
		}
	case *ir.PackageElement:
		for _, c := range p.cp.ClassesIn(e.QualifiedName) {
			out = append(out, p.types[c])
		}
	}
	return out
}

// Parameters returns the formal parameters of an executable.
func (p *Provider) Parameters(ee *ir.ExecutableElement) []*ir.VariableElement {
	out := make([]*ir.VariableElement, len(ee.Native.Params))
	for i, param := range ee.Native.Params {
		out[i] = p.params[param]
	}
	return out
}

// TypeParameters returns the formal type parameters of a type or executable.
func (p *Provider) TypeParameters(e ir.Element) []*ir.TypeParameterElement {
	var tvs []*classpath.TypeVar
	switch e := e.(type) {
	case *ir.TypeElement:
		tvs = e.Native.TypeParams
	case *ir.ExecutableElement:
		tvs = e.Native.TypeParams
	}
	out := make([]*ir.TypeParameterElement, len(tvs))
	for i, tv := range tvs {
		out[i] = p.tparams[tv]
	}
	return out
}

// Modifiers returns the modifiers of an element.
func (p *Provider) Modifiers(e ir.Element) ir.ModifierSet { return e.Modifiers() }

// Annotations returns the declaration annotations of an element.
func (p *Provider) Annotations(e ir.Element) []*ir.AnnotationMirror {
	return slices.Clone(e.Annotations())
}

// Members returns all members of a type, declared and inherited. The type's own
// members come first, then those of its superclass chain, then those of its
// superinterfaces breadth-first. A member is dropped when one with the same key
// was already collected from a type closer to te: fields and member types are
// keyed by name, methods by name and erased parameter types. Constructors,
// private members and static interface methods are not inherited.
func (p *Provider) Members(te *ir.TypeElement) []ir.Element {
	var out []ir.Element
	seen := make(map[string]bool)
	add := func(key string, e ir.Element) {
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, e)
	}

	visited := make(map[*classpath.Class]bool)
	queue := []*classpath.Class{te.Native}
	var ifaces []*classpath.Class
	// Superclass chain first, collecting interfaces along the way.
	for c := te.Native; c != nil; c = rawSuper(c) {
		if visited[c] {
			break
		}
		visited[c] = true
		if c != te.Native {
			queue = append(queue, c)
		}
		for _, i := range c.Interfaces {
			ifaces = append(ifaces, classpath.RawClass(i))
		}
	}
	for len(ifaces) > 0 {
		c := ifaces[0]
		ifaces = ifaces[1:]
		if c == nil || visited[c] {
			continue
		}
		visited[c] = true
		queue = append(queue, c)
		for _, i := range c.Interfaces {
			ifaces = append(ifaces, classpath.RawClass(i))
		}
	}
	if te.Native.IsInterface() {
		if obj, err := p.cp.Lookup(classpath.ObjectName); err == nil && !visited[obj] {
			queue = append(queue, obj)
		}
	}

	for _, c := range queue {
		own := c == te.Native
		for _, f := range c.Fields {
			if !own && f.Modifiers&classpath.PRIVATE != 0 {
				continue
			}
			add("f:"+f.Name, p.fields[f])
		}
		if own {
			for _, m := range c.Constructors {
				add("c:"+ir.ErasedParams(m), p.execs[m])
			}
		}
		for _, m := range c.Methods {
			if !own && m.Modifiers&classpath.PRIVATE != 0 {
				continue
			}
			if !own && c.IsInterface() && m.Modifiers&classpath.STATIC != 0 {
				continue
			}
			// Interfaces only see Object's public methods.
			if !own && te.Native.IsInterface() && c.Name == classpath.ObjectName && m.Modifiers&classpath.PUBLIC == 0 {
				continue
			}
			add("m:"+m.Name+"("+ir.ErasedParams(m)+")", p.execs[m])
		}
		for _, mc := range c.MemberClasses {
			if !own && mc.Modifiers&classpath.PRIVATE != 0 {
				continue
			}
			add("t:"+mc.SimpleName, p.types[mc])
		}
	}
	return out
}

func rawSuper(c *classpath.Class) *classpath.Class {
	if c.Superclass == nil {
		return nil
	}
	return classpath.RawClass(c.Superclass)
}

// IsSubclass reports whether sub is super or inherits from it, comparing raw
// classes.
func (p *Provider) IsSubclass(sub, super *ir.TypeElement) bool {
	return p.cp.IsSubclass(sub.Native, super.Native)
}

// DeclaringType returns the type element that declares a member element, or
// nil for elements that are not members.
func (p *Provider) DeclaringType(e ir.Element) *ir.TypeElement {
	switch e := e.(type) {
	case *ir.ExecutableElement:
		return p.types[e.Native.Declaring]
	case *ir.VariableElement:
		if e.Field != nil {
			return p.types[e.Field.Declaring]
		}
		return p.types[e.Param.Method.Declaring]
	case *ir.TypeElement:
		if c := e.Native.Enclosing; c != nil {
			return p.types[c]
		}
	case *ir.TypeParameterElement:
		if e.Native == nil {
			return nil
		}
		switch d := e.Native.Decl.(type) {
		case *classpath.Class:
			return p.types[d]
		case *classpath.Method:
			return p.types[d.Declaring]
		}
	}
	return nil
}
