package mathtext

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// allowedPunct is the fixed set of literal punctuation characters that may
// appear directly in rendered plain text.
const allowedPunct = `-+,./()[]:;'"~`

// allowedSymbols are the Unicode symbols accepted as literal characters:
// dot operator, multiplication and arrow glyphs, micro sign, ohm sign and
// degree sign.
const allowedSymbols = "⋅×→←µΩ°"

// isAllowedChar reports whether ch may be placed directly into styled text.
// This predicate is the single source of truth for literal characters; any
// character outside it forces rejection of the containing fragment.
func isAllowedChar(ch rune) bool {
	if ch >= '0' && ch <= '9' {
		return true
	}
	if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') {
		return true
	}
	if ch == ' ' {
		return true
	}
	if strings.ContainsRune(allowedPunct, ch) {
		return true
	}
	if strings.ContainsRune(allowedSymbols, ch) {
		return true
	}
	_, greek := greekRunes[ch]
	return greek
}

// readGroup reads the balanced brace group starting at s[start] (which must
// be an opening brace) and returns the enclosed content together with the
// index just past the matching closing brace. A backslash always protects
// the following character from being counted toward depth. Unbalanced input
// reports failure.
func readGroup(s string, start int) (content string, next int, ok bool) {
	if start >= len(s) || s[start] != '{' {
		return "", start, false
	}
	depth := 1
	i := start + 1
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
			continue
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start+1 : i], i + 1, true
			}
		}
		i++
	}
	return "", start, false
}

// readSuperSub reads the unit following a ^ or _ operator at s[start]:
// either a braced group or a single (possibly escaped) character.
func readSuperSub(s string, start int) (content string, next int, ok bool) {
	if start >= len(s) {
		return "", start, false
	}
	if s[start] == '{' {
		return readGroup(s, start)
	}
	if s[start] == '\\' {
		if start+1 >= len(s) {
			return "", start, false
		}
		_, size := utf8.DecodeRuneInString(s[start+1:])
		return s[start : start+1+size], start + 1 + size, true
	}
	r, size := utf8.DecodeRuneInString(s[start:])
	if r == utf8.RuneError && size == 1 {
		return "", start, false
	}
	return s[start : start+size], start + size, true
}

// readCommandName reads the letter run of a LaTeX command starting just past
// a backslash. An empty name means the backslash escapes a single character.
func readCommandName(s string, start int) (name string, next int) {
	i := start
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsLetter(r) || r > unicode.MaxASCII {
			break
		}
		i += size
	}
	return s[start:i], i
}

// skipSpaces advances past ASCII whitespace between a command and its group.
func skipSpaces(s string, start int) int {
	i := start
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}
