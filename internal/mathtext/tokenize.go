package mathtext

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenize walks a full inline-math expression left to right and produces
// the ordered token stream. forcePlain is set whenever a text-mode or SI
// macro fired, signalling that the expression must be treated as text
// regardless of the other heuristics.
func tokenize(expr string) (tokens []Token, forcePlain bool, ok bool) {
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == '\\':
			name, next := readCommandName(expr, i+1)
			if name == "" {
				if next >= len(expr) {
					return nil, false, false
				}
				exp, known := charEscapes[expr[next]]
				if !known {
					return nil, false, false
				}
				tokens = appendText(tokens, exp)
				i = next + 1
				continue
			}
			var plain, cmdOK bool
			tokens, plain, i, cmdOK = tokenizeCommand(tokens, name, expr, next)
			if !cmdOK {
				return nil, false, false
			}
			forcePlain = forcePlain || plain
		case c == '^' || c == '_':
			raw, next, subOK := readSuperSub(expr, i+1)
			if !subOK {
				return nil, false, false
			}
			text, textOK := sanitizeText(raw)
			if !textOK || text == "" {
				return nil, false, false
			}
			kind := KindSuperscript
			if c == '_' {
				kind = KindSubscript
			}
			tokens = append(tokens, Token{Kind: kind, Value: text})
			i = next
		case c == '{':
			content, next, groupOK := readGroup(expr, i)
			if !groupOK {
				return nil, false, false
			}
			text, textOK := sanitizeText(content)
			if !textOK {
				return nil, false, false
			}
			tokens = appendText(tokens, text)
			i = next
		case c == '}':
			return nil, false, false
		default:
			r, size := utf8.DecodeRuneInString(expr[i:])
			if !isAllowedChar(r) {
				return nil, false, false
			}
			tokens = appendText(tokens, string(r))
			i += size
		}
	}
	return tokens, forcePlain, true
}

// tokenizeCommand dispatches one named command of a math expression. It
// returns the updated token list, whether the command forces plain-text
// treatment, and the index just past the consumed input.
func tokenizeCommand(tokens []Token, name, expr string, next int) ([]Token, bool, int, bool) {
	switch {
	case name == "SI":
		value, unit, rest, ok := readTwoGroups(expr, next)
		if !ok {
			return nil, false, next, false
		}
		valueText, ok := sanitizeText(value)
		if !ok {
			return nil, false, next, false
		}
		num, den, ok := parseUnit(unit)
		if !ok {
			return nil, false, next, false
		}
		unitTokens := buildUnitTokens(num, den)
		tokens = appendText(tokens, valueText)
		if valueText != "" && len(unitTokens) > 0 {
			tokens = appendText(tokens, " ")
		}
		tokens = spliceTokens(tokens, unitTokens)
		return tokens, true, rest, true

	case name == "si":
		spec, rest, ok := readOneGroup(expr, next)
		if !ok {
			return nil, false, next, false
		}
		num, den, ok := parseUnit(spec)
		if !ok {
			return nil, false, next, false
		}
		tokens = spliceTokens(tokens, buildUnitTokens(num, den))
		return tokens, true, rest, true

	case name == "num":
		value, rest, ok := readOneGroup(expr, next)
		if !ok {
			return nil, false, next, false
		}
		text, ok := sanitizeText(value)
		if !ok {
			return nil, false, next, false
		}
		return appendText(tokens, text), true, rest, true

	case textCommands[name]:
		content, rest, ok := readOneGroup(expr, next)
		if !ok {
			return nil, false, next, false
		}
		text, ok := sanitizeText(content)
		if !ok {
			return nil, false, next, false
		}
		return appendText(tokens, text), true, rest, true

	case spaceCommands[name]:
		return appendText(tokens, " "), false, next, true

	case name == "textsuperscript" || name == "textsubscript":
		content, rest, ok := readOneGroup(expr, next)
		if !ok {
			return nil, false, next, false
		}
		text, ok := sanitizeText(content)
		if !ok {
			return nil, false, next, false
		}
		if text != "" {
			kind := KindSuperscript
			if name == "textsubscript" {
				kind = KindSubscript
			}
			tokens = append(tokens, Token{Kind: kind, Value: text})
		}
		return tokens, false, rest, true

	case name == "xrightarrow" || name == "xleftarrow":
		arrow := "→"
		if name == "xleftarrow" {
			arrow = "←"
		}
		tokens = appendText(tokens, arrow)
		start := skipSpaces(expr, next)
		if start < len(expr) && expr[start] == '{' {
			label, rest, ok := readGroup(expr, start)
			if !ok {
				return nil, false, next, false
			}
			text, ok := sanitizeText(label)
			if !ok {
				return nil, false, next, false
			}
			if text != "" {
				tokens = append(tokens, Token{Kind: KindSuperscript, Value: text})
			}
			return tokens, false, rest, true
		}
		return tokens, false, next, true

	default:
		if glyph, isSymbol := symbolCommands[name]; isSymbol {
			return appendText(tokens, glyph), false, next, true
		}
		if letter, isGreek := greekLetters[name]; isGreek {
			return appendText(tokens, letter), false, next, true
		}
		return nil, false, next, false
	}
}

// readOneGroup reads a single mandatory brace group, allowing whitespace
// between the command and the group.
func readOneGroup(s string, start int) (content string, next int, ok bool) {
	i := skipSpaces(s, start)
	if i >= len(s) || s[i] != '{' {
		return "", start, false
	}
	return readGroup(s, i)
}

// readTwoGroups reads two consecutive mandatory brace groups.
func readTwoGroups(s string, start int) (first, second string, next int, ok bool) {
	first, i, ok := readOneGroup(s, start)
	if !ok {
		return "", "", start, false
	}
	second, next, ok = readOneGroup(s, i)
	if !ok {
		return "", "", start, false
	}
	return first, second, next, true
}

// spliceTokens appends src onto dst preserving text-run coalescing at the
// seam.
func spliceTokens(dst, src []Token) []Token {
	for _, t := range src {
		if t.Kind == KindText {
			dst = appendText(dst, t.Value)
		} else {
			dst = append(dst, t)
		}
	}
	return dst
}

// accepted applies the acceptance gate: a fragment is rewritten only when
// it contains a letter in plain text, an explicit decorator token, or a
// force-plain macro, and never when a text token carries a mathematical
// relation character.
func accepted(tokens []Token, forcePlain bool) bool {
	hasLetter := false
	hasDecorator := false
	for _, t := range tokens {
		switch t.Kind {
		case KindText:
			if strings.ContainsAny(t.Value, "=<>") {
				return false
			}
			if !hasLetter {
				for _, r := range t.Value {
					if unicode.IsLetter(r) {
						hasLetter = true
						break
					}
				}
			}
		default:
			hasDecorator = true
		}
	}
	return hasLetter || hasDecorator || forcePlain
}
