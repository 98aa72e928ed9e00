package mathtext

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// sanitizeText recursively reduces a LaTeX text fragment (the content of
// \mathrm{}, \text{} and friends) to a flat plain-text string. It recognizes
// only the closed command set of this package; any unknown command,
// unbalanced group or disallowed character rejects the whole fragment, and
// rejection is infectious upward.
func sanitizeText(text string) (string, bool) {
	var b strings.Builder
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == '\\':
			name, next := readCommandName(text, i+1)
			if name == "" {
				// Single-character escape.
				if next >= len(text) {
					return "", false
				}
				exp, known := charEscapes[text[next]]
				if !known {
					return "", false
				}
				b.WriteString(exp)
				i = next + 1
				continue
			}
			out, rest, ok := sanitizeCommand(name, text, next)
			if !ok {
				return "", false
			}
			b.WriteString(out)
			i = rest
		case c == '{':
			content, next, ok := readGroup(text, i)
			if !ok {
				return "", false
			}
			inner, ok := sanitizeText(content)
			if !ok {
				return "", false
			}
			b.WriteString(inner)
			i = next
		case c == '}':
			// Closing brace with no matching opener.
			return "", false
		default:
			r, size := utf8.DecodeRuneInString(text[i:])
			if !isAllowedChar(r) {
				return "", false
			}
			b.WriteRune(r)
			i += size
		}
	}
	return norm.NFC.String(b.String()), true
}

// sanitizeCommand expands one named command inside a text fragment.
// It returns the expansion and the index just past the consumed input.
func sanitizeCommand(name, text string, next int) (string, int, bool) {
	switch {
	case textCommands[name]:
		start := skipSpaces(text, next)
		content, rest, ok := readGroup(text, start)
		if !ok {
			return "", next, false
		}
		inner, ok := sanitizeText(content)
		if !ok {
			return "", next, false
		}
		return inner, rest, true
	case spaceCommands[name]:
		return " ", next, true
	case name == "textsuperscript" || name == "textsubscript":
		// Styling directives are not valid inside an already-flattened
		// text run.
		return "", next, false
	default:
		if letter, ok := greekLetters[name]; ok {
			return letter, next, true
		}
		return "", next, false
	}
}
