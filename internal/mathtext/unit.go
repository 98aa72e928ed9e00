package mathtext

import (
	"strings"
	"unicode/utf8"
)

// unitTerm is one factor of an SI unit specifier. An exponent of "1" is
// never rendered. Terms live only for the duration of a single unit-macro
// invocation.
type unitTerm struct {
	symbol   string
	exponent string
}

// parseUnit parses the argument of a unit macro (\si, the unit group of
// \SI) into numerator and denominator term lists. Any unrecognized command
// rejects the whole parse.
func parseUnit(spec string) (num, den []unitTerm, ok bool) {
	// Pending modifiers apply to the next emitted unit token.
	var pendingPrefix, pendingExp string
	inDenominator := false

	push := func(t unitTerm) {
		if inDenominator {
			den = append(den, t)
		} else {
			num = append(num, t)
		}
	}
	last := func() *unitTerm {
		if inDenominator {
			if len(den) == 0 {
				return nil
			}
			return &den[len(den)-1]
		}
		if len(num) == 0 {
			return nil
		}
		return &num[len(num)-1]
	}

	i := 0
	for i < len(spec) {
		c := spec[i]
		switch {
		case c == '\\':
			name, next := readCommandName(spec, i+1)
			if name == "" {
				return nil, nil, false
			}
			i = next
			switch {
			case name == "per":
				inDenominator = true
				pendingPrefix, pendingExp = "", ""
			case name == "cubic":
				pendingExp = "3"
			case name == "square":
				pendingExp = "2"
			default:
				if sym, isPrefix := siPrefixes[name]; isPrefix {
					pendingPrefix += sym
					continue
				}
				sym, isUnit := siUnits[name]
				if !isUnit {
					return nil, nil, false
				}
				term := unitTerm{symbol: pendingPrefix + sym, exponent: "1"}
				if pendingExp != "" {
					term.exponent = pendingExp
				}
				pendingPrefix, pendingExp = "", ""
				push(term)
				var modOK bool
				if i, modOK = applySuperSub(spec, i, last()); !modOK {
					return nil, nil, false
				}
			}
		case c == '/':
			inDenominator = true
			pendingPrefix, pendingExp = "", ""
			i++
		case c == '{':
			content, next, groupOK := readGroup(spec, i)
			if !groupOK {
				return nil, nil, false
			}
			text, textOK := sanitizeText(content)
			if !textOK {
				return nil, nil, false
			}
			if text != "" {
				push(unitTerm{symbol: text, exponent: "1"})
			}
			i = next
		case c == '^' || c == '_':
			if last() == nil {
				return nil, nil, false
			}
			var modOK bool
			if i, modOK = applySuperSub(spec, i, last()); !modOK {
				return nil, nil, false
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		default:
			r, size := utf8.DecodeRuneInString(spec[i:])
			if !isAllowedChar(r) {
				return nil, nil, false
			}
			push(unitTerm{symbol: string(r), exponent: "1"})
			i += size
		}
	}
	return num, den, true
}

// applySuperSub consumes an optional ^ or _ modifier at spec[i] and applies
// it to term: a superscript sets the exponent, a subscript extends the
// symbol.
func applySuperSub(spec string, i int, term *unitTerm) (int, bool) {
	if term == nil || i >= len(spec) || (spec[i] != '^' && spec[i] != '_') {
		return i, true
	}
	op := spec[i]
	raw, next, ok := readSuperSub(spec, i+1)
	if !ok {
		return i, false
	}
	text, ok := sanitizeText(raw)
	if !ok {
		return i, false
	}
	if op == '^' {
		term.exponent = text
	} else {
		term.symbol += text
	}
	return next, true
}

// buildUnitTokens renders parsed unit terms into the token stream form:
// numerator terms joined with spaces, exponents as superscripts, a slash
// before the denominator (parenthesized when it has several terms) with
// denominator exponents negated.
func buildUnitTokens(num, den []unitTerm) []Token {
	var tokens []Token
	for i, t := range num {
		if i > 0 {
			tokens = appendText(tokens, " ")
		}
		tokens = appendText(tokens, t.symbol)
		if t.exponent != "1" {
			tokens = append(tokens, Token{Kind: KindSuperscript, Value: t.exponent})
		}
	}
	if len(den) == 0 {
		return tokens
	}
	tokens = appendText(tokens, "/")
	if len(den) > 1 {
		tokens = appendText(tokens, "(")
	}
	for i, t := range den {
		if i > 0 {
			tokens = appendText(tokens, " ")
		}
		tokens = appendText(tokens, t.symbol)
		if t.exponent != "1" {
			exp := t.exponent
			if !strings.HasPrefix(exp, "-") {
				exp = "-" + exp
			}
			tokens = append(tokens, Token{Kind: KindSuperscript, Value: exp})
		}
	}
	if len(den) > 1 {
		tokens = appendText(tokens, ")")
	}
	return tokens
}
