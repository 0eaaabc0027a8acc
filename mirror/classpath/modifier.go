package classpath

import (
	"fmt"
	"strings"
)

// Modifier bits, in the layout used by the host reflection API.
const (
	PUBLIC       = 0x00001
	PRIVATE      = 0x00002
	PROTECTED    = 0x00004
	STATIC       = 0x00008
	FINAL        = 0x00010
	SYNCHRONIZED = 0x00020
	VOLATILE     = 0x00040
	TRANSIENT    = 0x00080
	NATIVE       = 0x00100
	INTERFACE    = 0x00200
	ABSTRACT     = 0x00400
	STRICT       = 0x00800
	DEFAULT      = 0x10000
)

var modifierNames = []struct {
	bit  int
	name string
}{
	{PUBLIC, "public"},
	{PROTECTED, "protected"},
	{PRIVATE, "private"},
	{ABSTRACT, "abstract"},
	{DEFAULT, "default"},
	{STATIC, "static"},
	{FINAL, "final"},
	{TRANSIENT, "transient"},
	{VOLATILE, "volatile"},
	{SYNCHRONIZED, "synchronized"},
	{NATIVE, "native"},
	{STRICT, "strictfp"},
	{INTERFACE, "interface"},
}

// ParseModifiers converts modifier keywords into a bit-mask.
func ParseModifiers(words []string) (int, error) {
	mask := 0
	for _, w := range words {
		bit := 0
		for _, m := range modifierNames {
			if m.name == w {
				bit = m.bit
				break
			}
		}
		if bit == 0 {
			return 0, fmt.Errorf("unknown modifier %q", w)
		}
		if mask&bit != 0 {
			return 0, fmt.Errorf("repeated modifier %q", w)
		}
		mask |= bit
	}
	access := mask & (PUBLIC | PROTECTED | PRIVATE)
	if access&(access-1) != 0 {
		return 0, fmt.Errorf("conflicting access modifiers in %v", words)
	}
	return mask, nil
}

// ModifierString renders a bit-mask in canonical keyword order.
func ModifierString(mask int) string {
	var words []string
	for _, m := range modifierNames {
		if mask&m.bit != 0 {
			words = append(words, m.name)
		}
	}
	return strings.Join(words, " ")
}
