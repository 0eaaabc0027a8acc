package ir

import (
	"strings"

	"github.com/broady/typemirror/mirror/classpath"
)

// Modifier is a declaration modifier keyword.
type Modifier uint16

const (
	ModPublic Modifier = iota
	ModProtected
	ModPrivate
	ModAbstract
	ModDefault
	ModStatic
	ModFinal
	ModTransient
	ModVolatile
	ModSynchronized
	ModNative
	ModStrictfp
)

var modifierKeywords = [...]string{
	ModPublic:       "public",
	ModProtected:    "protected",
	ModPrivate:      "private",
	ModAbstract:     "abstract",
	ModDefault:      "default",
	ModStatic:       "static",
	ModFinal:        "final",
	ModTransient:    "transient",
	ModVolatile:     "volatile",
	ModSynchronized: "synchronized",
	ModNative:       "native",
	ModStrictfp:     "strictfp",
}

// maskBits maps each modifier to its bit in the native modifier mask.
var maskBits = [...]int{
	ModPublic:       classpath.PUBLIC,
	ModProtected:    classpath.PROTECTED,
	ModPrivate:      classpath.PRIVATE,
	ModAbstract:     classpath.ABSTRACT,
	ModDefault:      classpath.DEFAULT,
	ModStatic:       classpath.STATIC,
	ModFinal:        classpath.FINAL,
	ModTransient:    classpath.TRANSIENT,
	ModVolatile:     classpath.VOLATILE,
	ModSynchronized: classpath.SYNCHRONIZED,
	ModNative:       classpath.NATIVE,
	ModStrictfp:     classpath.STRICT,
}

func (m Modifier) String() string {
	if int(m) < len(modifierKeywords) {
		return modifierKeywords[m]
	}
	return "unknown"
}

// ModifierSet is a set of modifiers.
type ModifierSet uint16

// ModifiersOf converts a native modifier bit-mask. The interface bit has no
// modifier keyword and is dropped.
func ModifiersOf(mask int) ModifierSet {
	var s ModifierSet
	for m, bit := range maskBits {
		if mask&bit != 0 {
			s = s.With(Modifier(m))
		}
	}
	return s
}

// NewModifierSet returns a set holding mods.
func NewModifierSet(mods ...Modifier) ModifierSet {
	var s ModifierSet
	for _, m := range mods {
		s = s.With(m)
	}
	return s
}

func (s ModifierSet) Has(m Modifier) bool         { return s&(1<<m) != 0 }
func (s ModifierSet) With(m Modifier) ModifierSet { return s | 1<<m }
func (s ModifierSet) Len() int {
	n := 0
	for m := range modifierKeywords {
		if s.Has(Modifier(m)) {
			n++
		}
	}
	return n
}

// Slice returns the modifiers in canonical order.
func (s ModifierSet) Slice() []Modifier {
	var out []Modifier
	for m := range modifierKeywords {
		if s.Has(Modifier(m)) {
			out = append(out, Modifier(m))
		}
	}
	return out
}

// Strings returns the modifier keywords in canonical order.
func (s ModifierSet) Strings() []string {
	var out []string
	for _, m := range s.Slice() {
		out = append(out, m.String())
	}
	return out
}

func (s ModifierSet) String() string { return strings.Join(s.Strings(), " ") }
