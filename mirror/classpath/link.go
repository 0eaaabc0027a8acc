package classpath

import (
	"fmt"
	"strconv"
	"strings"
)

type linkUnit struct {
	name string
	file *unitFile
}

// pending pairs a declared class with the unit entry it came from.
type pending struct {
	class *Class
	decl  *classDecl
	unit  *linkUnit
}

type linker struct {
	cp      *Classpath
	units   []linkUnit
	pending []pending
}

// link runs the declaration, header, member and annotation phases. Every class
// exists (with type variable shells) before any type expression is resolved, so
// units may reference each other in any order. Inheritance cycles are rejected
// before members are resolved, since member class lookup walks superclasses.
func (lk *linker) link() error {
	for i := range lk.units {
		if err := lk.declare(&lk.units[i]); err != nil {
			return err
		}
	}
	for _, p := range lk.pending {
		if err := lk.attachEnclosing(p); err != nil {
			return err
		}
	}
	for _, p := range lk.pending {
		if err := lk.headers(p); err != nil {
			return fmt.Errorf("%s: %s: %w", p.unit.name, p.class.Name, err)
		}
	}
	if err := lk.checkCycles(); err != nil {
		return err
	}
	for _, p := range lk.pending {
		if err := lk.members(p); err != nil {
			return fmt.Errorf("%s: %s: %w", p.unit.name, p.class.Name, err)
		}
	}
	for _, p := range lk.pending {
		if err := lk.annotations(p); err != nil {
			return fmt.Errorf("%s: %s: %w", p.unit.name, p.class.Name, err)
		}
	}
	for i := range lk.units {
		u := &lk.units[i]
		if err := lk.packageAnnotations(u); err != nil {
			return fmt.Errorf("%s: %w", u.name, err)
		}
	}
	return nil
}

func (lk *linker) declare(u *linkUnit) error {
	pkg := u.file.Package
	if _, ok := lk.cp.packages[pkg]; !ok {
		lk.cp.packages[pkg] = &Package{Name: pkg}
	}
	for i := range u.file.Classes {
		d := &u.file.Classes[i]
		name := qualify(pkg, d.Name)
		if _, dup := lk.cp.classes[name]; dup {
			return fmt.Errorf("%s: duplicate class %s", u.name, name)
		}
		mods, err := ParseModifiers(d.Modifiers)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", u.name, name, err)
		}
		c := &Class{
			Name:       name,
			SimpleName: d.Name[strings.LastIndex(d.Name, ".")+1:],
			Pkg:        pkg,
			Modifiers:  mods,
			Anonymous:  d.Anonymous,
			unit:       u.name,
		}
		switch d.Kind {
		case "", "class":
			c.Kind = KindClass
		case "interface":
			c.Kind = KindInterface
			c.Modifiers |= INTERFACE | ABSTRACT
		case "enum":
			c.Kind = KindEnum
			c.Modifiers |= FINAL
		case "annotation":
			c.Kind = KindAnnotation
			c.Modifiers |= INTERFACE | ABSTRACT
		}
		if d.Anonymous {
			c.SimpleName = ""
		}
		for i, tp := range d.TypeParams {
			tvName, _, err := parseTypeParamHeader(tp)
			if err != nil {
				return fmt.Errorf("%s: %s: %w", u.name, name, err)
			}
			c.TypeParams = append(c.TypeParams, &TypeVar{Name: tvName, Decl: c, Index: i})
		}
		lk.cp.classes[name] = c
		lk.cp.order = append(lk.cp.order, c)
		lk.pending = append(lk.pending, pending{class: c, decl: d, unit: u})
	}
	return nil
}

func (lk *linker) attachEnclosing(p pending) error {
	idx := strings.LastIndex(p.decl.Name, ".")
	if idx < 0 {
		return nil
	}
	outerName := qualify(p.class.Pkg, p.decl.Name[:idx])
	outer := lk.cp.classes[outerName]
	if outer == nil {
		return fmt.Errorf("%s: %s: enclosing class %s not declared", p.unit.name, p.class.Name, outerName)
	}
	p.class.Enclosing = outer
	if outer.IsInterface() {
		p.class.Modifiers |= PUBLIC | STATIC
	}
	if !p.class.Anonymous {
		outer.MemberClasses = append(outer.MemberClasses, p.class)
	}
	return nil
}

func (lk *linker) scope(decl GenericDeclaration, u *linkUnit) *Scope {
	s := ScopeOf(decl)
	s.Imports = u.file.Imports
	return s
}

func (lk *linker) headers(p pending) error {
	c, d := p.class, p.decl
	scope := lk.scope(c, p.unit)
	if err := lk.typeParamBounds(c.TypeParams, d.TypeParams, scope); err != nil {
		return err
	}
	var supers []Type
	if d.Extends != "" {
		t, err := lk.cp.ParseType(d.Extends, scope)
		if err != nil {
			return err
		}
		if c.IsInterface() {
			supers = append(supers, t)
		} else {
			c.Superclass = t
		}
	}
	for _, expr := range d.Implements {
		t, err := lk.cp.ParseType(expr, scope)
		if err != nil {
			return err
		}
		supers = append(supers, t)
	}
	for _, t := range supers {
		raw := RawClass(t)
		if raw == nil || !raw.IsInterface() {
			return fmt.Errorf("%s is not an interface", t.TypeName())
		}
	}
	c.Interfaces = supers

	if sc := RawClass(c.Superclass); c.Superclass != nil && (sc == nil || sc.IsInterface() || sc.IsPrimitive()) {
		return fmt.Errorf("cannot extend %s", c.Superclass.TypeName())
	}
	if c.Superclass == nil && c.Name != ObjectName {
		switch c.Kind {
		case KindClass:
			c.Superclass = lk.cp.classes[ObjectName]
		case KindEnum:
			if enum := lk.cp.classes["java.lang.Enum"]; enum != nil {
				c.Superclass = &ParameterizedType{Raw: enum, Args: []Type{c}}
			} else {
				c.Superclass = lk.cp.classes[ObjectName]
			}
		case KindAnnotation:
			if ann := lk.cp.classes["java.lang.annotation.Annotation"]; ann != nil && len(c.Interfaces) == 0 {
				c.Interfaces = []Type{ann}
			}
		}
		if c.Kind != KindInterface && c.Kind != KindAnnotation && c.Superclass == nil {
			return fmt.Errorf("no %s on the classpath", ObjectName)
		}
	}
	if c.Anonymous && len(c.Interfaces)+btoi(c.Superclass != nil && RawClass(c.Superclass).Name != ObjectName) > 1 {
		return fmt.Errorf("anonymous class must have a single supertype")
	}
	return nil
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

// typeParamBounds resolves "T extends A & B" bounds for already declared variables.
func (lk *linker) typeParamBounds(vars []*TypeVar, exprs []string, scope *Scope) error {
	for i, expr := range exprs {
		_, bounds, err := parseTypeParamHeader(expr)
		if err != nil {
			return err
		}
		if bounds == "" {
			continue
		}
		ts, err := lk.cp.parseBounds(bounds, scope)
		if err != nil {
			return fmt.Errorf("bound of %s: %w", vars[i].Name, err)
		}
		for j, b := range ts {
			if j > 0 {
				if raw := RawClass(b); raw == nil || !raw.IsInterface() {
					return fmt.Errorf("bound of %s: additional bound %s is not an interface", vars[i].Name, b.TypeName())
				}
			}
		}
		vars[i].Bounds = ts
	}
	return nil
}

func (lk *linker) members(p pending) error {
	c, d := p.class, p.decl
	scope := lk.scope(c, p.unit)
	for _, constant := range d.Constants {
		if c.Kind != KindEnum {
			return fmt.Errorf("constants are only allowed in enums")
		}
		c.Fields = append(c.Fields, &Field{
			Name:         constant,
			Declaring:    c,
			Modifiers:    PUBLIC | STATIC | FINAL,
			Type:         c,
			EnumConstant: true,
		})
	}
	for _, fd := range d.Fields {
		mods, err := ParseModifiers(fd.Modifiers)
		if err != nil {
			return fmt.Errorf("field %s: %w", fd.Name, err)
		}
		if c.IsInterface() {
			mods |= PUBLIC | STATIC | FINAL
		}
		t, err := lk.cp.ParseType(fd.Type, scope)
		if err != nil {
			return fmt.Errorf("field %s: %w", fd.Name, err)
		}
		if c.Field(fd.Name) != nil {
			return fmt.Errorf("duplicate field %s", fd.Name)
		}
		c.Fields = append(c.Fields, &Field{Name: fd.Name, Declaring: c, Modifiers: mods, Type: t})
	}
	ordinal := 0
	for _, md := range d.Methods {
		m, err := lk.method(c, md.Name, md.TypeParams, md.Returns, md.Params, md.Throws, md.Receiver, md.Modifiers, ordinal, p.unit)
		if err != nil {
			return fmt.Errorf("method %s: %w", md.Name, err)
		}
		if c.IsInterface() {
			m.Modifiers |= PUBLIC
			if m.Modifiers&(STATIC|DEFAULT|PRIVATE) == 0 {
				m.Modifiers |= ABSTRACT
			}
		}
		c.Methods = append(c.Methods, m)
		ordinal++
	}
	for _, cd := range d.Constructors {
		if c.IsInterface() {
			return fmt.Errorf("interfaces cannot declare constructors")
		}
		m, err := lk.method(c, "<init>", cd.TypeParams, "void", cd.Params, cd.Throws, "", cd.Modifiers, ordinal, p.unit)
		if err != nil {
			return fmt.Errorf("constructor: %w", err)
		}
		m.Constructor = true
		c.Constructors = append(c.Constructors, m)
		ordinal++
	}
	return nil
}

func (lk *linker) method(c *Class, name string, typeParams []string, returns string, params, throws []string, receiver string, modifiers []string, ordinal int, u *linkUnit) (*Method, error) {
	mods, err := ParseModifiers(modifiers)
	if err != nil {
		return nil, err
	}
	m := &Method{Name: name, Declaring: c, Modifiers: mods, ordinal: ordinal}
	for i, tp := range typeParams {
		tvName, _, err := parseTypeParamHeader(tp)
		if err != nil {
			return nil, err
		}
		m.TypeParams = append(m.TypeParams, &TypeVar{Name: tvName, Decl: m, Index: i})
	}
	scope := lk.scope(m, u)
	if err := lk.typeParamBounds(m.TypeParams, typeParams, scope); err != nil {
		return nil, err
	}
	if returns == "" {
		returns = "void"
	}
	if m.Return, err = lk.cp.ParseType(returns, scope); err != nil {
		return nil, err
	}
	for i, expr := range params {
		t, pname, varargs, err := lk.cp.parseParam(expr, scope)
		if err != nil {
			return nil, err
		}
		if varargs && i != len(params)-1 {
			return nil, fmt.Errorf("varargs parameter must be last")
		}
		m.VarArgs = varargs
		if pname == "" {
			pname = "arg" + strconv.Itoa(i)
		}
		m.Params = append(m.Params, &Parameter{Name: pname, Method: m, Index: i, Type: t})
	}
	for _, expr := range throws {
		t, err := lk.cp.ParseType(expr, scope)
		if err != nil {
			return nil, err
		}
		m.Exceptions = append(m.Exceptions, t)
	}
	if receiver != "" {
		if m.Receiver, err = lk.cp.ParseType(receiver, scope); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (lk *linker) annotations(p pending) error {
	c, d := p.class, p.decl
	scope := lk.scope(c, p.unit)
	var err error
	if c.Annotations, err = lk.parseAnnotations(d.Annotations, scope); err != nil {
		return err
	}
	fields := c.Fields[len(d.Constants):]
	for i, fd := range d.Fields {
		f := fields[i]
		if f.Annotations, err = lk.parseAnnotations(fd.Annotations, scope); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		if fd.Constant != "" {
			if f.Constant, err = lk.cp.parseValue(fd.Constant, scope, &Method{Return: f.Type, Declaring: c}); err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
	}
	for i, md := range d.Methods {
		m := c.Methods[i]
		mscope := lk.scope(m, p.unit)
		if m.Annotations, err = lk.parseAnnotations(md.Annotations, mscope); err != nil {
			return fmt.Errorf("method %s: %w", m.Name, err)
		}
		if md.Default != "" {
			if c.Kind != KindAnnotation {
				return fmt.Errorf("method %s: defaults are only allowed in annotation types", m.Name)
			}
			if m.Default, err = lk.cp.parseValue(md.Default, mscope, m); err != nil {
				return fmt.Errorf("method %s: %w", m.Name, err)
			}
		}
	}
	for i, cd := range d.Constructors {
		m := c.Constructors[i]
		if m.Annotations, err = lk.parseAnnotations(cd.Annotations, lk.scope(m, p.unit)); err != nil {
			return fmt.Errorf("constructor: %w", err)
		}
	}
	return nil
}

func (lk *linker) packageAnnotations(u *linkUnit) error {
	anns, err := lk.parseAnnotations(u.file.Annotations, &Scope{Package: u.file.Package, Imports: u.file.Imports})
	if err != nil {
		return err
	}
	pkg := lk.cp.packages[u.file.Package]
	pkg.Annotations = append(pkg.Annotations, anns...)
	return nil
}

func (lk *linker) parseAnnotations(exprs []string, scope *Scope) ([]*Annotation, error) {
	var anns []*Annotation
	for _, expr := range exprs {
		a, err := lk.cp.ParseAnnotation(expr, scope)
		if err != nil {
			return nil, err
		}
		anns = append(anns, a)
	}
	return anns, nil
}

// checkCycles rejects classes that inherit from themselves.
func (lk *linker) checkCycles() error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[*Class]int)
	var visit func(c *Class) error
	visit = func(c *Class) error {
		switch state[c] {
		case visiting:
			return fmt.Errorf("%s: cyclic inheritance involving %s", c.unit, c.Name)
		case done:
			return nil
		}
		state[c] = visiting
		if sc := lk.cp.superclassOf(c); sc != nil {
			if err := visit(sc); err != nil {
				return err
			}
		}
		for _, i := range c.Interfaces {
			if err := visit(RawClass(i)); err != nil {
				return err
			}
		}
		state[c] = done
		return nil
	}
	for _, c := range lk.cp.order {
		if err := visit(c); err != nil {
			return err
		}
	}
	return nil
}
