package classpath

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokChar
	tokPunct // one of . , < > ? [ ] @ ( ) = & { } and "..."
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.text)
}

// lex splits a type expression or annotation literal into tokens. '>' is always a
// single token so that nested argument lists close one level at a time.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		r, w := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += w
		case r == '_' || r == '$' || unicode.IsLetter(r):
			start := i
			for i < len(src) {
				r, w = utf8.DecodeRuneInString(src[i:])
				if r != '_' && r != '$' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
					break
				}
				i += w
			}
			toks = append(toks, token{tokIdent, src[start:i], start})
		case unicode.IsDigit(r) || (r == '-' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			i++
			for i < len(src) && (isDigit(src[i]) || strings.IndexByte(".xXabcdefABCDEFlLdDeE_+", src[i]) >= 0) {
				// exponent signs only directly after e/E
				if (src[i] == '+') && !(src[i-1] == 'e' || src[i-1] == 'E') {
					break
				}
				i++
			}
			toks = append(toks, token{tokNumber, src[start:i], start})
		case r == '"' || r == '\'':
			start := i
			end, err := scanQuoted(src, i)
			if err != nil {
				return nil, err
			}
			kind := tokString
			if r == '\'' {
				kind = tokChar
			}
			toks = append(toks, token{kind, src[start:end], start})
			i = end
		case strings.HasPrefix(src[i:], "..."):
			toks = append(toks, token{tokPunct, "...", i})
			i += 3
		case strings.ContainsRune(".,<>?[]@()=&{}", r):
			toks = append(toks, token{tokPunct, string(r), i})
			i += w
		default:
			return nil, fmt.Errorf("unexpected character %q at offset %d", r, i)
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func scanQuoted(src string, start int) (int, error) {
	quote := src[start]
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("unterminated literal at offset %d", start)
}
