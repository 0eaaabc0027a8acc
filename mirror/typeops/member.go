package typeops

import (
	"github.com/broady/typemirror/mirror/classpath"
	"github.com/broady/typemirror/mirror/ir"
)

// AsMemberOf returns the type of element as a member of containing, with the
// containing type's arguments substituted for the declaring class's type
// parameters. Wildcard arguments are captured first, and members of a raw type
// have erased types.
//
// Executables yield their substituted signature, fields and parameters their
// substituted declared type, and type parameters their actual argument. A named
// member class is returned unchanged as its generic self type. An anonymous
// class yields its single supertype resolved against containing.
//
// The element must be declared by containing's class or one of its supertypes;
// otherwise AsMemberOf fails with ir.ErrStructuralMismatch.
func (ts *Types) AsMemberOf(containing *ir.DeclaredType, element ir.Element) (ir.Type, error) {
	if containing == nil || element == nil {
		return nil, ir.Errorf("as_member_of", ir.ErrInvalidArgumentKind, "nil argument")
	}
	if element.Kind() == ir.ElementPackage {
		return nil, ir.Errorf("as_member_of", ir.ErrInvalidArgumentKind, "package %s is not a member", element)
	}
	declaring := ts.p.DeclaringType(element)
	if declaring == nil {
		return nil, ir.Errorf("as_member_of", ir.ErrStructuralMismatch, "%s is not a member of any type", element)
	}
	if !ts.p.IsSubclass(containing.Element, declaring) {
		return nil, ir.Errorf("as_member_of", ir.ErrStructuralMismatch, "%s is not a member of %s", element, containing)
	}

	if te, ok := element.(*ir.TypeElement); ok && !te.Anonymous {
		return ts.p.DeclaredTypeOf(te), nil
	}

	site := ts.Capture(containing)
	sup := ts.asSuper(site, declaring)
	if sup == nil {
		return nil, ir.Errorf("as_member_of", ir.ErrStructuralMismatch, "%s is not a supertype of %s", declaring, containing)
	}

	var declared ir.Type
	if te, ok := element.(*ir.TypeElement); ok {
		declared = ts.anonymousSupertype(te)
	} else {
		t, err := ts.p.TypeOfElement(element)
		if err != nil {
			return nil, err
		}
		declared = t
	}

	if sup.IsRaw() || (declaring.IsGeneric() && len(sup.Args) == 0) {
		return ts.eraseMember(declared)
	}
	return subst(declared, ts.bindingsOf(sup)), nil
}

// anonymousSupertype is the one class or interface an anonymous class extends.
func (ts *Types) anonymousSupertype(te *ir.TypeElement) ir.Type {
	if ifaces := ts.p.Interfaces(te); len(ifaces) == 1 {
		return ifaces[0]
	}
	if sc := ts.p.Superclass(te); !ir.IsNone(sc) {
		return sc
	}
	return ts.object
}

func (ts *Types) eraseMember(t ir.Type) (ir.Type, error) {
	if et, ok := t.(*ir.ExecutableType); ok {
		return ts.eraseSignature(et)
	}
	return ts.erase(t, 0)
}

// Hides reports whether hider hides hidden: both are fields, member classes or
// static methods of the same name, hider's class inherits from hidden's, and
// hidden is accessible from hider's class. Static methods must also have
// hider's signature be a subsignature of hidden's.
func (ts *Types) Hides(hider, hidden ir.Element) (bool, error) {
	if hider == nil || hidden == nil {
		return false, ir.Errorf("hides", ir.ErrInvalidArgumentKind, "nil element")
	}
	if ir.SameElement(hider, hidden) || hider.Kind() != hidden.Kind() || hider.SimpleName() != hidden.SimpleName() {
		return false, nil
	}
	switch hider.Kind() {
	case ir.ElementField, ir.ElementEnumConstant, ir.ElementMethod,
		ir.ElementClass, ir.ElementInterface, ir.ElementEnum, ir.ElementAnnotationType:
	default:
		return false, nil
	}
	hiderClass, hiddenClass := ts.p.DeclaringType(hider), ts.p.DeclaringType(hidden)
	if hiderClass == nil || hiddenClass == nil || hiderClass == hiddenClass {
		return false, nil
	}
	if !ts.p.IsSubclass(hiderClass, hiddenClass) {
		return false, nil
	}
	if m, ok := hider.(*ir.ExecutableElement); ok {
		if !hasMod(m, classpath.STATIC) {
			return false, nil
		}
		h := hidden.(*ir.ExecutableElement)
		mt, err := ts.p.ExecutableTypeOf(m)
		if err != nil {
			return false, err
		}
		ht, err := ts.p.ExecutableTypeOf(h)
		if err != nil {
			return false, err
		}
		if ok, err := ts.IsSubsignature(mt, ht); err != nil || !ok {
			return false, err
		}
	}
	return accessibleIn(hidden, hiddenClass, hiderClass), nil
}

// Overrides reports whether overrider overrides overridden when both are
// members of in. Static methods, constructors and a method itself never
// override. Return types are not compared.
func (ts *Types) Overrides(overrider, overridden *ir.ExecutableElement, in *ir.TypeElement) (bool, error) {
	if overrider == nil || overridden == nil || in == nil {
		return false, ir.Errorf("overrides", ir.ErrInvalidArgumentKind, "nil element")
	}
	if overrider == overridden || overrider.SimpleName() != overridden.SimpleName() {
		return false, nil
	}
	if overrider.Native.Constructor || overridden.Native.Constructor || hasMod(overrider, classpath.STATIC) {
		return false, nil
	}
	if !ts.isMemberOf(overridden, in) {
		return false, nil
	}
	owner := ts.p.DeclaringType(overrider)
	otherOwner := ts.p.DeclaringType(overridden)

	// Direct override: the overrider's class inherits the overridden method.
	if ts.overridableIn(overridden, otherOwner, owner) && ts.p.IsSubclass(owner, otherOwner) {
		ok, err := ts.subsignatureIn(ts.p.DeclaredTypeOf(owner), overrider, overridden)
		if err != nil || ok {
			return ok, err
		}
	}

	// Inherited implementation: a concrete method from a superclass implements an
	// abstract or default method of an interface in.
	if hasMod(overrider, classpath.ABSTRACT) {
		return false, nil
	}
	if !hasMod(overridden, classpath.ABSTRACT) && !overridden.IsDefault() {
		return false, nil
	}
	if !ts.overridableIn(overridden, otherOwner, in) || !ts.isMemberOf(overrider, in) {
		return false, nil
	}
	return ts.subsignatureIn(ts.p.DeclaredTypeOf(in), overrider, overridden)
}

func (ts *Types) subsignatureIn(site *ir.DeclaredType, m1, m2 *ir.ExecutableElement) (bool, error) {
	t1, err := ts.AsMemberOf(site, m1)
	if err != nil {
		return false, err
	}
	t2, err := ts.AsMemberOf(site, m2)
	if err != nil {
		return false, err
	}
	return ts.IsSubsignature(t1.(*ir.ExecutableType), t2.(*ir.ExecutableType))
}

// isMemberOf reports whether a method is declared by in or inherited by it.
func (ts *Types) isMemberOf(m *ir.ExecutableElement, in *ir.TypeElement) bool {
	owner := ts.p.DeclaringType(m)
	if owner == in {
		return true
	}
	if !ts.p.IsSubclass(in, owner) || hasMod(m, classpath.PRIVATE) {
		return false
	}
	if isInterface(owner) && hasMod(m, classpath.STATIC) {
		return false
	}
	return hasMod(m, classpath.PUBLIC|classpath.PROTECTED) || samePackage(owner, in)
}

// overridableIn reports whether method m of owner can be overridden by a
// declaration in origin.
func (ts *Types) overridableIn(m *ir.ExecutableElement, owner, origin *ir.TypeElement) bool {
	switch {
	case hasMod(m, classpath.PRIVATE):
		return false
	case hasMod(m, classpath.PUBLIC):
		return !isInterface(owner) || owner == origin || !hasMod(m, classpath.STATIC)
	case hasMod(m, classpath.PROTECTED):
		return !isInterface(origin)
	}
	return samePackage(owner, origin) && !isInterface(origin)
}

// accessibleIn reports whether member e of owner is visible from class from.
func accessibleIn(e ir.Element, owner, from *ir.TypeElement) bool {
	switch {
	case hasMod(e, classpath.PRIVATE):
		return false
	case hasMod(e, classpath.PUBLIC|classpath.PROTECTED):
		return true
	}
	return samePackage(owner, from)
}
