// Package mathtext recognizes inline LaTeX math fragments that are really
// textual scientific notation (units, isotopes, chemical formulas, ionic
// charges, decay arrows) and rewrites them into styled plain-text runs.
// Anything that looks like genuine mathematics is declined and the caller
// keeps the original math node unchanged.
package mathtext

import (
	"sync"

	"github.com/zxkjack123/latex2word/internal/logger"
)

// Kind classifies a token produced by the tokenizer.
type Kind int

const (
	// KindText is a run of already-sanitized plain text
	KindText Kind = iota
	// KindSuperscript is a superscript decorator
	KindSuperscript
	// KindSubscript is a subscript decorator
	KindSubscript
)

// Token is one ordered element of a tokenized math fragment. The value of a
// superscript or subscript token is already sanitized plain text.
type Token struct {
	Kind  Kind
	Value string
}

// RunKind is the formatting attribute of a styled output run.
type RunKind int

const (
	// RunPlain is upright plain text
	RunPlain RunKind = iota
	// RunSuperscript is an upright superscript
	RunSuperscript
	// RunSubscript is an upright subscript
	RunSubscript
)

// Run is a span of text carrying a single formatting attribute. A sequence
// of runs is the unit of output this package produces.
type Run struct {
	Kind RunKind
	Text string
}

// Session holds the per-conversion state of the rewriter. Its only mutable
// state is the deduplication set for non-standard-unit diagnostics, so one
// session must not be shared between unrelated conversions.
type Session struct {
	mu       sync.Mutex
	warned   map[string]struct{}
	warnings []string
}

// NewSession creates a rewriting session with an empty diagnostic set.
func NewSession() *Session {
	return &Session{warned: make(map[string]struct{})}
}

// Warnings returns the diagnostic lines emitted so far, one per distinct
// offending expression, in emission order.
func (s *Session) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// warnNonStandardUnit records the number-plus-\mathrm-unit heuristic hit for
// expr, at most once per distinct raw expression.
func (s *Session) warnNonStandardUnit(expr string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.warned[expr]; seen {
		return
	}
	s.warned[expr] = struct{}{}

	line := "non-standard unit notation " + expr + ": use \\SI{<value>}{<unit>} or \\si{<unit>} instead"
	s.warnings = append(s.warnings, line)
	logger.Warn("non-standard unit notation", logger.String("expr", expr))
}

// appendText appends plain text to a token list, coalescing with a trailing
// text token so adjacent text stays a single run.
func appendText(tokens []Token, text string) []Token {
	if text == "" {
		return tokens
	}
	if n := len(tokens); n > 0 && tokens[n-1].Kind == KindText {
		tokens[n-1].Value += text
		return tokens
	}
	return append(tokens, Token{Kind: KindText, Value: text})
}
