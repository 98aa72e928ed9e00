package mathtext

import (
	"regexp"
	"strings"
	"unicode"
)

// Decision names the notational shape the renderer matched.
type Decision int

const (
	// DecisionIonCharge is a lone superscript ionic charge such as 2+
	DecisionIonCharge Decision = iota
	// DecisionIsotope is left-superscript mass-number notation
	DecisionIsotope
	// DecisionBareSubscript is a standalone digits-only subscript fragment
	DecisionBareSubscript
	// DecisionGeneric is any accepted stream without a special shape
	DecisionGeneric
)

var ionChargePattern = regexp.MustCompile(`^([+-]+|\d+[+-]+|[+-]+\d+)$`)

// matchShape matches the token stream against the special notational shapes
// in precedence order. Generic streams report no match; the caller decides
// whether they may be rewritten at all.
func matchShape(tokens []Token) (Decision, []Run, bool) {
	// Ionic charge: a lone superscript of signs with an optional count.
	if len(tokens) == 1 && tokens[0].Kind == KindSuperscript {
		value := strings.TrimSpace(tokens[0].Value)
		if ionChargePattern.MatchString(value) {
			return DecisionIonCharge, []Run{{Kind: RunSuperscript, Text: value}}, true
		}
	}

	// Isotope: mass superscript, digits-only atomic-number subscript,
	// element symbol. The atomic number is dropped on output
	// (mass-number-only convention).
	if len(tokens) == 3 &&
		tokens[0].Kind == KindSuperscript &&
		tokens[1].Kind == KindSubscript && digitsOnly(tokens[1].Value) &&
		tokens[2].Kind == KindText {
		return DecisionIsotope, []Run{
			{Kind: RunSuperscript, Text: tokens[0].Value},
			{Kind: RunPlain, Text: tokens[2].Value},
		}, true
	}

	// Bare chemical subscript fragment, e.g. the _2 of CO_2 written as its
	// own inline math node.
	if len(tokens) == 1 && tokens[0].Kind == KindSubscript && digitsOnly(tokens[0].Value) {
		return DecisionBareSubscript, []Run{{Kind: RunSubscript, Text: tokens[0].Value}}, true
	}

	return DecisionGeneric, nil, false
}

// Rewrite classifies one inline-math expression and, when it denotes
// textual notation, returns the styled runs replacing it. ok is false when
// the expression must be left unchanged.
func (s *Session) Rewrite(expr string) (runs []Run, ok bool) {
	tokens, forcePlain, ok := tokenize(expr)
	if !ok || len(tokens) == 0 {
		return nil, false
	}
	if !accepted(tokens, forcePlain) {
		return nil, false
	}

	if _, runs, matched := matchShape(tokens); matched {
		return runs, true
	}

	digits := digitsInText(tokens)
	upper := upperInText(tokens)
	textCmd := rawHasCommand(expr, textCommands)
	decorated := hasDecorator(tokens)

	if !forcePlain && !digits && !upper && !textCmd {
		// Looks like an algebraic variable, not textual notation.
		return nil, false
	}

	if textCmd && digits && !decorated && !rawHasCommand(expr, siCommands) {
		s.warnNonStandardUnit(expr)
	}

	return materialize(tokens), true
}

// siCommands are the dedicated value/unit macros, used only for the
// non-standard-unit heuristic.
var siCommands = map[string]bool{"SI": true, "si": true, "num": true}

// materialize builds the styled runs for a generic decision directly from
// the token stream. A plain run that continues a quotient right after an
// exponent keeps a separating space, matching siunitx-style unit spacing.
func materialize(tokens []Token) []Run {
	runs := make([]Run, 0, len(tokens))
	for i, t := range tokens {
		switch t.Kind {
		case KindText:
			text := t.Value
			if i > 0 && tokens[i-1].Kind != KindText && strings.HasPrefix(text, "/") {
				text = " " + text
			}
			runs = append(runs, Run{Kind: RunPlain, Text: text})
		case KindSuperscript:
			runs = append(runs, Run{Kind: RunSuperscript, Text: t.Value})
		case KindSubscript:
			runs = append(runs, Run{Kind: RunSubscript, Text: t.Value})
		}
	}
	return runs
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func digitsInText(tokens []Token) bool {
	for _, t := range tokens {
		if t.Kind != KindText {
			continue
		}
		if strings.ContainsAny(t.Value, "0123456789") {
			return true
		}
	}
	return false
}

func upperInText(tokens []Token) bool {
	for _, t := range tokens {
		if t.Kind != KindText {
			continue
		}
		for _, r := range t.Value {
			if unicode.IsUpper(r) {
				return true
			}
		}
	}
	return false
}

func hasDecorator(tokens []Token) bool {
	for _, t := range tokens {
		if t.Kind != KindText {
			return true
		}
	}
	return false
}

// rawHasCommand reports whether the raw expression invokes one of the named
// commands, requiring the name to end at a non-letter so \text never
// matches \textsuperscript.
func rawHasCommand(expr string, names map[string]bool) bool {
	for i := 0; i < len(expr); i++ {
		if expr[i] != '\\' {
			continue
		}
		name, next := readCommandName(expr, i+1)
		if name != "" && names[name] {
			return true
		}
		if next > i+1 {
			i = next - 1
		} else {
			i++ // skip the escaped character
		}
	}
	return false
}
