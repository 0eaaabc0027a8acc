// Package classpath is the declaration source behind the type mirror: a read-only
// set of native class, member and package declarations with generic type expressions,
// loaded from TOML declaration units and txtar archives.
package classpath

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// ErrNotFound is returned when a class or package is not on the classpath.
var ErrNotFound = errors.New("not found")

// ObjectName is the qualified name of the root class.
const ObjectName = "java.lang.Object"

// defaultExprCacheSize bounds the number of memoized type expressions.
const defaultExprCacheSize = 4096

// PrimitiveNames lists the primitive classes in declaration order.
var PrimitiveNames = []string{"boolean", "byte", "short", "int", "long", "char", "float", "double"}

// Classpath is a linked, immutable set of native declarations.
//
// A Classpath is safe for concurrent use once returned by a Loader.
type Classpath struct {
	classes    map[string]*Class // by qualified name, including member classes
	order      []*Class          // declaration order across units
	packages   map[string]*Package
	primitives map[string]*Class // primitive classes and void
	exprCache  *lru.Cache
	logger     *slog.Logger

	// index is the package scanner's view: package name -> top-level and member
	// classes, computed on first use.
	index func() packageIndex
}

type packageIndex map[string][]*Class

func newClasspath(logger *slog.Logger) *Classpath {
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New(defaultExprCacheSize)
	if err != nil {
		// Only fails for a non-positive size.
		panic(err)
	}
	cp := &Classpath{
		classes:    make(map[string]*Class),
		packages:   make(map[string]*Package),
		primitives: make(map[string]*Class),
		exprCache:  cache,
		logger:     logger,
	}
	for _, name := range PrimitiveNames {
		cp.primitives[name] = &Class{Name: name, SimpleName: name, Kind: KindPrimitive, Modifiers: PUBLIC | FINAL | ABSTRACT}
	}
	cp.primitives["void"] = &Class{Name: "void", SimpleName: "void", Kind: KindVoid, Modifiers: PUBLIC | FINAL | ABSTRACT}
	cp.index = sync.OnceValue(cp.buildIndex)
	return cp
}

// Lookup returns the class with the given qualified name. Primitive and void classes
// are found by keyword.
func (cp *Classpath) Lookup(name string) (*Class, error) {
	if c := cp.primitives[name]; c != nil {
		return c, nil
	}
	if c := cp.classes[name]; c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("class %s: %w", name, ErrNotFound)
}

// MustLookup is like Lookup but panics if the class is missing. It is intended for
// classes the bootstrap library always provides.
func (cp *Classpath) MustLookup(name string) *Class {
	c, err := cp.Lookup(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Primitive returns the primitive (or void) class for a keyword, or nil.
func (cp *Classpath) Primitive(name string) *Class { return cp.primitives[name] }

// Classes returns all classes in declaration order.
func (cp *Classpath) Classes() []*Class { return slices.Clone(cp.order) }

// Len reports the number of declared classes.
func (cp *Classpath) Len() int { return len(cp.order) }

// Package returns the named package.
func (cp *Classpath) Package(name string) (*Package, error) {
	if p := cp.packages[name]; p != nil {
		return p, nil
	}
	if _, ok := cp.index()[name]; ok {
		return &Package{Name: name}, nil
	}
	return nil, fmt.Errorf("package %s: %w", name, ErrNotFound)
}

// PackageExists reports whether any class is declared in the named package.
func (cp *Classpath) PackageExists(name string) bool {
	_, ok := cp.index()[name]
	return ok
}

// ClassesIn returns the top-level classes of a package, sorted by name.
func (cp *Classpath) ClassesIn(pkg string) []*Class {
	var out []*Class
	for _, c := range cp.index()[pkg] {
		if c.Enclosing == nil {
			out = append(out, c)
		}
	}
	return out
}

// Packages returns the names of all packages, sorted.
func (cp *Classpath) Packages() []string {
	idx := cp.index()
	names := make([]string, 0, len(idx))
	for name := range idx {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (cp *Classpath) buildIndex() packageIndex {
	idx := make(packageIndex)
	for name := range cp.packages {
		idx[name] = nil
	}
	for _, c := range cp.order {
		idx[c.Pkg] = append(idx[c.Pkg], c)
	}
	for _, classes := range idx {
		sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	}
	cp.logger.Debug("package index built", slog.Int("packages", len(idx)), slog.Int("classes", len(cp.order)))
	return idx
}

// superclassOf returns the raw superclass, or nil.
func (cp *Classpath) superclassOf(c *Class) *Class {
	if c.Superclass == nil {
		return nil
	}
	return RawClass(c.Superclass)
}

// RawClass returns the class named by a plain or parameterized type expression,
// or nil for other node kinds.
func RawClass(t Type) *Class {
	switch t := Unannotated(t).(type) {
	case *Class:
		return t
	case *ParameterizedType:
		return t.Raw
	}
	return nil
}

// IsSubclass reports whether sub is super or inherits from it through superclasses
// or interfaces.
func (cp *Classpath) IsSubclass(sub, super *Class) bool {
	if sub == super || super.Name == ObjectName && !sub.IsPrimitive() && sub.Kind != KindVoid {
		return true
	}
	seen := map[*Class]bool{}
	var walk func(c *Class) bool
	walk = func(c *Class) bool {
		if c == nil || seen[c] {
			return false
		}
		seen[c] = true
		if c == super {
			return true
		}
		if walk(cp.superclassOf(c)) {
			return true
		}
		for _, i := range c.Interfaces {
			if walk(RawClass(i)) {
				return true
			}
		}
		return false
	}
	return walk(sub)
}

// Describe renders a short human readable summary of a class declaration.
func Describe(c *Class) string {
	var b strings.Builder
	if mods := ModifierString(c.Modifiers &^ INTERFACE); mods != "" {
		b.WriteString(mods)
		b.WriteByte(' ')
	}
	b.WriteString(c.Kind.String())
	b.WriteByte(' ')
	b.WriteString(c.Name)
	if len(c.TypeParams) > 0 {
		b.WriteByte('<')
		for i, tv := range c.TypeParams {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(tv.Name)
			if len(tv.Bounds) > 0 {
				b.WriteString(" extends ")
				b.WriteString(joinNames(tv.Bounds, " & "))
			}
		}
		b.WriteByte('>')
	}
	if c.Superclass != nil {
		b.WriteString(" extends ")
		b.WriteString(c.Superclass.TypeName())
	}
	if len(c.Interfaces) > 0 {
		if c.IsInterface() {
			b.WriteString(" extends ")
		} else {
			b.WriteString(" implements ")
		}
		b.WriteString(joinNames(c.Interfaces, ", "))
	}
	return b.String()
}
