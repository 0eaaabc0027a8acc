// Package provider builds type descriptors and declaration elements from a
// classpath. It plays the role of a reflection front end: every native class,
// member and type expression on the classpath has exactly one element, and any
// native type expression can be turned into an ir.Type.
package provider

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/broady/typemirror/mirror/classpath"
	"github.com/broady/typemirror/mirror/ir"
)

var (
	// ErrUnsupportedKind is returned for native nodes with no descriptor or element.
	ErrUnsupportedKind = fmt.Errorf("unsupported native kind: %w", ir.ErrInvalidArgumentKind)

	// ErrUnsupportedValueKind is returned for annotation values outside the
	// supported set of primitives, strings, class literals, enum constants,
	// nested annotations and one-dimensional homogeneous arrays.
	ErrUnsupportedValueKind = fmt.Errorf("unsupported annotation value kind: %w", ir.ErrInvalidArgumentKind)
)

// Provider maps classpath declarations to elements and descriptors.
//
// All elements are created when the provider is built and never change, so a
// Provider is safe for concurrent use.
type Provider struct {
	cp     *classpath.Classpath
	logger *slog.Logger

	types    map[*classpath.Class]*ir.TypeElement
	execs    map[*classpath.Method]*ir.ExecutableElement
	fields   map[*classpath.Field]*ir.VariableElement
	params   map[*classpath.Parameter]*ir.VariableElement
	tparams  map[*classpath.TypeVar]*ir.TypeParameterElement
	packages map[string]*ir.PackageElement

	// Resolved headers, computed once per type element.
	supers map[*ir.TypeElement]header
	bounds map[*ir.TypeParameterElement][]ir.Type

	object *ir.DeclaredType
}

type header struct {
	superclass ir.Type // None for Object and interfaces
	interfaces []ir.Type
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// New creates elements for every declaration on the classpath and resolves
// supertypes, bounds and declaration annotations.
func New(cp *classpath.Classpath, opts ...Option) (*Provider, error) {
	p := &Provider{
		cp:       cp,
		logger:   slog.Default(),
		types:    make(map[*classpath.Class]*ir.TypeElement),
		execs:    make(map[*classpath.Method]*ir.ExecutableElement),
		fields:   make(map[*classpath.Field]*ir.VariableElement),
		params:   make(map[*classpath.Parameter]*ir.VariableElement),
		tparams:  make(map[*classpath.TypeVar]*ir.TypeParameterElement),
		packages: make(map[string]*ir.PackageElement),
		supers:   make(map[*ir.TypeElement]header),
		bounds:   make(map[*ir.TypeParameterElement][]ir.Type),
	}
	for _, opt := range opts {
		opt(p)
	}

	objectClass, err := cp.Lookup(classpath.ObjectName)
	if err != nil {
		return nil, err
	}

	// Pass 1: elements.
	for _, name := range cp.Packages() {
		pkg, err := cp.Package(name)
		if err != nil {
			return nil, err
		}
		p.packages[name] = ir.NewPackageElement(pkg)
	}
	for _, c := range cp.Classes() {
		p.declare(c)
	}
	p.object = &ir.DeclaredType{Owner: ir.None, Element: p.types[objectClass]}

	// Pass 2: headers and bounds.
	for _, c := range cp.Classes() {
		if err := p.resolveHeader(c); err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
	}

	// Pass 3: declaration annotations.
	for _, c := range cp.Classes() {
		if err := p.annotate(c); err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
	}
	for name, pe := range p.packages {
		if pe.Annots, err = p.mirrors(pe.Native.Annotations); err != nil {
			return nil, fmt.Errorf("package %s: %w", name, err)
		}
	}

	p.logger.Debug("provider built",
		slog.Int("types", len(p.types)),
		slog.Int("executables", len(p.execs)),
		slog.Int("variables", len(p.fields)+len(p.params)))
	return p, nil
}

func (p *Provider) declare(c *classpath.Class) {
	te := ir.NewTypeElement(c)
	p.types[c] = te
	for _, tv := range c.TypeParams {
		p.tparams[tv] = ir.NewTypeParameterElement(tv)
	}
	for _, f := range c.Fields {
		p.fields[f] = ir.NewFieldElement(f)
	}
	for _, m := range append(c.Constructors[:len(c.Constructors):len(c.Constructors)], c.Methods...) {
		ee := ir.NewExecutableElement(m)
		p.execs[m] = ee
		for _, tv := range m.TypeParams {
			p.tparams[tv] = ir.NewTypeParameterElement(tv)
		}
		for _, param := range m.Params {
			p.params[param] = ir.NewParameterElement(param, ee)
		}
	}
}

func (p *Provider) resolveHeader(c *classpath.Class) error {
	te := p.types[c]
	h := header{superclass: ir.None}
	if c.Superclass != nil {
		t, err := p.TypeOf(c.Superclass)
		if err != nil {
			return err
		}
		h.superclass = t
	}
	for _, i := range c.Interfaces {
		t, err := p.TypeOf(i)
		if err != nil {
			return err
		}
		h.interfaces = append(h.interfaces, t)
	}
	p.supers[te] = h

	var tvs []*classpath.TypeVar
	tvs = append(tvs, c.TypeParams...)
	for _, m := range c.Methods {
		tvs = append(tvs, m.TypeParams...)
	}
	for _, m := range c.Constructors {
		tvs = append(tvs, m.TypeParams...)
	}
	for _, tv := range tvs {
		bounds, err := p.nativeBounds(tv)
		if err != nil {
			return fmt.Errorf("bounds of %s: %w", tv.Name, err)
		}
		p.bounds[p.tparams[tv]] = bounds
	}
	return nil
}

func (p *Provider) nativeBounds(tv *classpath.TypeVar) ([]ir.Type, error) {
	if len(tv.Bounds) == 0 {
		return []ir.Type{p.object}, nil
	}
	out := make([]ir.Type, 0, len(tv.Bounds))
	for _, b := range tv.Bounds {
		t, err := p.TypeOf(b)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (p *Provider) annotate(c *classpath.Class) error {
	var err error
	te := p.types[c]
	if te.Annots, err = p.mirrors(c.Annotations); err != nil {
		return err
	}
	for _, f := range c.Fields {
		if p.fields[f].Annots, err = p.mirrors(f.Annotations); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	for _, m := range append(c.Constructors[:len(c.Constructors):len(c.Constructors)], c.Methods...) {
		if p.execs[m].Annots, err = p.mirrors(m.Annotations); err != nil {
			return fmt.Errorf("method %s: %w", m.Name, err)
		}
		for _, param := range m.Params {
			if p.params[param].Annots, err = p.mirrors(param.Annotations); err != nil {
				return fmt.Errorf("parameter %s: %w", param.Name, err)
			}
		}
	}
	return nil
}

// Classpath returns the underlying classpath.
func (p *Provider) Classpath() *classpath.Classpath { return p.cp }

// Logger returns the provider's logger.
func (p *Provider) Logger() *slog.Logger { return p.logger }

// Object returns the root class type.
func (p *Provider) Object() *ir.DeclaredType { return p.object }

// ElementOf returns the element for a native declaration: *classpath.Class,
// *classpath.Method, *classpath.Field, *classpath.Parameter, *classpath.TypeVar
// or *classpath.Package.
func (p *Provider) ElementOf(native any) (ir.Element, error) {
	var e ir.Element
	switch n := native.(type) {
	case *classpath.Class:
		if te := p.types[n]; te != nil {
			e = te
		}
	case *classpath.Method:
		if ee := p.execs[n]; ee != nil {
			e = ee
		}
	case *classpath.Field:
		if ve := p.fields[n]; ve != nil {
			e = ve
		}
	case *classpath.Parameter:
		if ve := p.params[n]; ve != nil {
			e = ve
		}
	case *classpath.TypeVar:
		if tpe := p.tparams[n]; tpe != nil {
			e = tpe
		}
	case *classpath.Package:
		if pe := p.packages[n.Name]; pe != nil {
			e = pe
		}
	default:
		return nil, ir.Errorf("declaration_of", ErrUnsupportedKind, "%T", native)
	}
	if e == nil {
		return nil, ir.Errorf("declaration_of", ErrUnsupportedKind, "%v is not declared on this classpath", native)
	}
	return e, nil
}

// TypeElement returns the class or interface with the given qualified name.
func (p *Provider) TypeElement(name string) (*ir.TypeElement, error) {
	c, err := p.cp.Lookup(name)
	if err != nil {
		return nil, err
	}
	te := p.types[c]
	if te == nil {
		return nil, fmt.Errorf("type %s: %w", name, classpath.ErrNotFound)
	}
	return te, nil
}

// MustTypeElement is like TypeElement but panics if the type is missing.
func (p *Provider) MustTypeElement(name string) *ir.TypeElement {
	te, err := p.TypeElement(name)
	if err != nil {
		panic(err)
	}
	return te
}

// PackageElement returns the named package.
func (p *Provider) PackageElement(name string) (*ir.PackageElement, error) {
	if pe := p.packages[name]; pe != nil {
		return pe, nil
	}
	return nil, fmt.Errorf("package %s: %w", name, classpath.ErrNotFound)
}

// IsNotFound reports whether err means a class or package is not on the classpath.
func IsNotFound(err error) bool { return errors.Is(err, classpath.ErrNotFound) }
