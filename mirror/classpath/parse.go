package classpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Scope resolves simple names while parsing type expressions: type variables of the
// enclosing generic declarations, member classes of the enclosing classes, the
// current package, single-type imports and java.lang.
type Scope struct {
	Package string
	Imports []string
	// Decls lists generic declarations innermost first, e.g. a method and then its
	// declaring class and that class's enclosing classes.
	Decls []GenericDeclaration
}

// key identifies the scope for the parse cache.
func (s *Scope) key() string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(s.Package)
	for _, d := range s.Decls {
		b.WriteByte('|')
		b.WriteString(d.DeclKey())
	}
	for _, imp := range s.Imports {
		b.WriteByte(';')
		b.WriteString(imp)
	}
	return b.String()
}

// ScopeOf returns the resolution scope inside the given declaration.
func ScopeOf(decl GenericDeclaration) *Scope {
	s := &Scope{}
	var c *Class
	switch d := decl.(type) {
	case *Class:
		c = d
	case *Method:
		s.Decls = append(s.Decls, d)
		c = d.Declaring
	}
	if c != nil {
		s.Package = c.Pkg
	}
	for ; c != nil; c = c.Enclosing {
		s.Decls = append(s.Decls, c)
	}
	return s
}

type parser struct {
	cp    *Classpath
	scope *Scope
	toks  []token
	pos   int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) is(text string) bool {
	t := p.peek()
	return t.kind == tokPunct && t.text == text
}

func (p *parser) accept(text string) bool {
	if p.is(text) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(text string) error {
	if !p.accept(text) {
		return fmt.Errorf("expected %q, found %s", text, p.peek())
	}
	return nil
}

func (p *parser) ident() (string, error) {
	t := p.next()
	if t.kind != tokIdent {
		return "", fmt.Errorf("expected identifier, found %s", t)
	}
	return t.text, nil
}

// parseType parses: annotations? (primitive | classType | typeVar) ("[" "]")*
func (p *parser) parseType() (Type, error) {
	anns, err := p.parseAnnotations()
	if err != nil {
		return nil, err
	}
	t, err := p.parseBaseType()
	if err != nil {
		return nil, err
	}
	if len(anns) > 0 {
		t = &AnnotatedType{Type: t, Annotations: anns}
	}
	for p.is("[") || p.is("@") {
		dimAnns, err := p.parseAnnotations()
		if err != nil {
			return nil, err
		}
		if err := p.expect("["); err != nil {
			return nil, err
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		t = &GenericArrayType{Component: t}
		if len(dimAnns) > 0 {
			t = &AnnotatedType{Type: t, Annotations: dimAnns}
		}
	}
	return t, nil
}

func (p *parser) parseBaseType() (Type, error) {
	first, err := p.ident()
	if err != nil {
		return nil, err
	}
	if prim := p.cp.primitives[first]; prim != nil {
		return prim, nil
	}
	if !p.is(".") && !p.is("<") {
		if tv := p.lookupTypeVar(first); tv != nil {
			return tv, nil
		}
	}
	segs := []string{first}
	for p.is(".") && p.toks[p.pos+1].kind == tokIdent {
		p.pos++
		segs = append(segs, p.next().text)
	}
	class, err := p.resolveClass(segs)
	if err != nil {
		return nil, err
	}
	// owner is the parameterized enclosing-instance type when written as Outer<..>.Inner.
	var owner *ParameterizedType
	var t Type = class
	for {
		if p.is("<") || owner != nil {
			var args []Type
			if p.is("<") {
				if args, err = p.parseTypeArgs(); err != nil {
					return nil, err
				}
			}
			if len(args) != len(class.TypeParams) && (len(args) > 0 || owner == nil) {
				return nil, fmt.Errorf("%s expects %d type arguments, got %d", class.Name, len(class.TypeParams), len(args))
			}
			pt := &ParameterizedType{Raw: class, Args: args}
			if owner != nil {
				pt.Owner = owner
			}
			t = pt
		}
		if !(p.is(".") && p.toks[p.pos+1].kind == tokIdent) {
			return t, nil
		}
		p.pos++
		name := p.next().text
		member := class.MemberClass(name)
		if member == nil {
			return nil, fmt.Errorf("%s has no member class %s", class.Name, name)
		}
		owner = nil
		if pt, ok := t.(*ParameterizedType); ok && !member.IsStatic() {
			owner = pt
		}
		class = member
		t = member
	}
}

func (p *parser) parseTypeArgs() ([]Type, error) {
	if err := p.expect("<"); err != nil {
		return nil, err
	}
	var args []Type
	for {
		arg, err := p.parseTypeArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.accept(">") {
			return args, nil
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseTypeArg() (Type, error) {
	anns, err := p.parseAnnotations()
	if err != nil {
		return nil, err
	}
	if !p.accept("?") {
		if len(anns) > 0 {
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			return &AnnotatedType{Type: t, Annotations: anns}, nil
		}
		return p.parseType()
	}
	w := &WildcardType{}
	if t := p.peek(); t.kind == tokIdent && (t.text == "extends" || t.text == "super") {
		p.pos++
		bounds, err := p.parseBounds()
		if err != nil {
			return nil, err
		}
		if t.text == "extends" {
			w.Upper = bounds
		} else {
			w.Lower = bounds
		}
	}
	if len(anns) > 0 {
		return &AnnotatedType{Type: w, Annotations: anns}, nil
	}
	return w, nil
}

// parseBounds parses Type ("&" Type)*.
func (p *parser) parseBounds() ([]Type, error) {
	var bounds []Type
	for {
		b, err := p.parseType()
		if err != nil {
			return nil, err
		}
		bounds = append(bounds, b)
		if !p.accept("&") {
			return bounds, nil
		}
	}
}

func (p *parser) lookupTypeVar(name string) *TypeVar {
	if p.scope == nil {
		return nil
	}
	for _, d := range p.scope.Decls {
		for _, tv := range d.TypeParameters() {
			if tv.Name == name {
				return tv
			}
		}
	}
	return nil
}

// resolveClass resolves a dotted name: first as a simple name in scope followed by
// member classes, then as the longest qualified class name prefix.
func (p *parser) resolveClass(segs []string) (*Class, error) {
	walk := func(c *Class, rest []string) (*Class, error) {
		for _, s := range rest {
			m := c.MemberClass(s)
			if m == nil {
				return nil, fmt.Errorf("%s has no member class %s", c.Name, s)
			}
			c = m
		}
		return c, nil
	}
	if c := p.resolveSimple(segs[0]); c != nil {
		return walk(c, segs[1:])
	}
	for i := len(segs); i >= 2; i-- {
		if c := p.cp.classes[strings.Join(segs[:i], ".")]; c != nil {
			return walk(c, segs[i:])
		}
	}
	return nil, fmt.Errorf("%w: cannot resolve type %s", ErrNotFound, strings.Join(segs, "."))
}

func (p *parser) resolveSimple(name string) *Class {
	if p.scope != nil {
		for _, d := range p.scope.Decls {
			c, ok := d.(*Class)
			if !ok {
				continue
			}
			if c.SimpleName == name && c.Enclosing == nil {
				return c
			}
			for sc := c; sc != nil; sc = p.cp.superclassOf(sc) {
				if m := sc.MemberClass(name); m != nil {
					return m
				}
			}
		}
		for _, imp := range p.scope.Imports {
			if imp == name || strings.HasSuffix(imp, "."+name) {
				if c := p.cp.classes[imp]; c != nil {
					return c
				}
			}
		}
		if c := p.cp.classes[qualify(p.scope.Package, name)]; c != nil {
			return c
		}
	}
	if c := p.cp.classes["java.lang."+name]; c != nil {
		return c
	}
	if c := p.cp.classes[name]; c != nil && c.Pkg == "" {
		return c
	}
	return nil
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// parseAnnotations parses zero or more "@Name(args)" annotation instances.
func (p *parser) parseAnnotations() ([]*Annotation, error) {
	var anns []*Annotation
	for p.is("@") {
		a, err := p.parseAnnotation()
		if err != nil {
			return nil, err
		}
		anns = append(anns, a)
	}
	return anns, nil
}

func (p *parser) parseAnnotation() (*Annotation, error) {
	if err := p.expect("@"); err != nil {
		return nil, err
	}
	first, err := p.ident()
	if err != nil {
		return nil, err
	}
	segs := []string{first}
	for p.is(".") && p.toks[p.pos+1].kind == tokIdent {
		p.pos++
		segs = append(segs, p.next().text)
	}
	typ, err := p.resolveClass(segs)
	if err != nil {
		return nil, err
	}
	if typ.Kind != KindAnnotation {
		return nil, fmt.Errorf("%s is not an annotation type", typ.Name)
	}
	a := &Annotation{Type: typ}
	if !p.accept("(") {
		return a, nil
	}
	if p.accept(")") {
		return a, nil
	}
	// Single-element form: @A(value)
	if !(p.peek().kind == tokIdent && p.toks[p.pos+1].kind == tokPunct && p.toks[p.pos+1].text == "=") {
		v, err := p.parseElementValue(typ.Method("value", 0))
		if err != nil {
			return nil, err
		}
		a.Values = append(a.Values, AnnotationAttr{Name: "value", Value: v})
		return a, p.expect(")")
	}
	for {
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		if err := p.expect("="); err != nil {
			return nil, err
		}
		elem := typ.Method(name, 0)
		if elem == nil {
			return nil, fmt.Errorf("annotation %s has no element %s", typ.Name, name)
		}
		v, err := p.parseElementValue(elem)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", typ.Name, name, err)
		}
		a.Values = append(a.Values, AnnotationAttr{Name: name, Value: v})
		if p.accept(")") {
			return a, nil
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

// parseElementValue parses an annotation element value. elem, when known, supplies
// the declared element type used to pick integral widths.
func (p *parser) parseElementValue(elem *Method) (any, error) {
	var want Type
	if elem != nil {
		want = Unannotated(elem.Return)
	}
	if p.is("@") {
		return p.parseAnnotation()
	}
	if p.accept("{") {
		var compType Type
		if arr, ok := want.(*GenericArrayType); ok {
			compType = arr.Component
		}
		var elems []any
		for !p.accept("}") {
			v, err := p.parseLiteral(compType)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
			if !p.is("}") {
				if err := p.expect(","); err != nil {
					return nil, err
				}
			}
		}
		return elems, nil
	}
	return p.parseLiteral(want)
}

func (p *parser) parseLiteral(want Type) (any, error) {
	if p.is("@") {
		return p.parseAnnotation()
	}
	t := p.next()
	switch t.kind {
	case tokString:
		return strconv.Unquote(t.text)
	case tokChar:
		s, _, _, err := strconv.UnquoteChar(t.text[1:len(t.text)-1], '\'')
		if err != nil {
			return nil, err
		}
		return s, nil
	case tokNumber:
		return parseNumber(t.text, want)
	case tokIdent:
		switch t.text {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		segs := []string{t.text}
		for p.is(".") && p.toks[p.pos+1].kind == tokIdent {
			p.pos++
			segs = append(segs, p.next().text)
		}
		if segs[len(segs)-1] == "class" {
			if prim := p.cp.primitives[strings.Join(segs[:len(segs)-1], ".")]; prim != nil {
				return prim, nil
			}
			return p.resolveClass(segs[:len(segs)-1])
		}
		if len(segs) < 2 {
			return nil, fmt.Errorf("unsupported value %s", t.text)
		}
		enum, err := p.resolveClass(segs[:len(segs)-1])
		if err != nil {
			return nil, err
		}
		f := enum.Field(segs[len(segs)-1])
		if f == nil || !f.EnumConstant {
			return nil, fmt.Errorf("%s has no enum constant %s", enum.Name, segs[len(segs)-1])
		}
		return f, nil
	}
	return nil, fmt.Errorf("unexpected %s in element value", t)
}

func parseNumber(text string, want Type) (any, error) {
	lower := strings.ToLower(strings.ReplaceAll(text, "_", ""))
	isFloat := !strings.HasPrefix(lower, "0x") &&
		(strings.ContainsAny(lower, ".e") || strings.HasSuffix(lower, "f") || strings.HasSuffix(lower, "d"))
	if c, ok := want.(*Class); ok && c.IsPrimitive() && (c.Name == "float" || c.Name == "double") {
		isFloat = true
	}
	if isFloat {
		return strconv.ParseFloat(strings.TrimRight(lower, "fd"), 64)
	}
	return strconv.ParseInt(strings.TrimSuffix(lower, "l"), 0, 64)
}

// ParseType parses a type expression in the given scope. A nil scope resolves
// qualified names and java.lang simple names only.
func (cp *Classpath) ParseType(expr string, scope *Scope) (Type, error) {
	cacheKey := scope.key() + "\x00" + expr
	if cp.exprCache != nil {
		if v, ok := cp.exprCache.Get(cacheKey); ok {
			return v.(Type), nil
		}
	}
	t, err := cp.parseWith(expr, scope, func(p *parser) (any, error) { return p.parseType() })
	if err != nil {
		return nil, err
	}
	if cp.exprCache != nil {
		cp.exprCache.Add(cacheKey, t)
	}
	return t.(Type), nil
}

// ParseAnnotation parses a single annotation instance such as
// `@java.lang.Deprecated(since = "9")`.
func (cp *Classpath) ParseAnnotation(expr string, scope *Scope) (*Annotation, error) {
	v, err := cp.parseWith(expr, scope, func(p *parser) (any, error) { return p.parseAnnotation() })
	if err != nil {
		return nil, err
	}
	return v.(*Annotation), nil
}

// parseValue parses a field constant or annotation default against a declared type.
func (cp *Classpath) parseValue(expr string, scope *Scope, elem *Method) (any, error) {
	return cp.parseWith(expr, scope, func(p *parser) (any, error) { return p.parseElementValue(elem) })
}

func (cp *Classpath) parseWith(expr string, scope *Scope, fn func(*parser) (any, error)) (any, error) {
	toks, err := lex(expr)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", expr, err)
	}
	p := &parser{cp: cp, scope: scope, toks: toks}
	v, err := fn(p)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", expr, err)
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("parse %q: unexpected %s", expr, p.peek())
	}
	return v, nil
}

// parseParam parses a formal parameter "Type name" or "Type... name".
func (cp *Classpath) parseParam(expr string, scope *Scope) (t Type, name string, varargs bool, err error) {
	v, err := cp.parseWith(expr, scope, func(p *parser) (any, error) {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if p.accept("...") {
			varargs = true
			typ = &GenericArrayType{Component: typ}
		}
		if p.peek().kind == tokIdent {
			name = p.next().text
		}
		return typ, nil
	})
	if err != nil {
		return nil, "", false, err
	}
	return v.(Type), name, varargs, nil
}

// parseTypeParam parses "T", "T extends A & B" into the name and bound expressions.
// Bounds are returned unparsed so that all variables of a declaration exist before
// any bound is resolved.
func parseTypeParamHeader(expr string) (name string, bounds string, err error) {
	expr = strings.TrimSpace(expr)
	name, rest, _ := strings.Cut(expr, " ")
	if name == "" {
		return "", "", fmt.Errorf("empty type parameter")
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return name, "", nil
	}
	after, ok := strings.CutPrefix(rest, "extends ")
	if !ok {
		return "", "", fmt.Errorf("type parameter %q: expected extends", expr)
	}
	return name, strings.TrimSpace(after), nil
}

func (cp *Classpath) parseBounds(expr string, scope *Scope) ([]Type, error) {
	v, err := cp.parseWith(expr, scope, func(p *parser) (any, error) { return p.parseBounds() })
	if err != nil {
		return nil, err
	}
	return v.([]Type), nil
}
