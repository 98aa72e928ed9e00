// Package pandoc drives the external pandoc binary and hosts the inline-math
// rewriting filter over pandoc's JSON document tree.
package pandoc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zxkjack123/latex2word/internal/logger"
	"github.com/zxkjack123/latex2word/internal/mathtext"
)

// Filter rewrites the inline-math nodes of a pandoc JSON document into
// styled plain-text runs where they denote textual scientific notation.
// Nodes the rewriter declines are kept unchanged, as is everything the
// walker does not recognize, so unknown AST constructs round-trip intact.
// The second return value is the number of math nodes rewritten.
func Filter(input []byte, session *mathtext.Session) ([]byte, int, error) {
	var doc map[string]any
	if err := json.Unmarshal(input, &doc); err != nil {
		return nil, 0, fmt.Errorf("failed to decode pandoc document: %w", err)
	}

	rewritten := 0
	if blocks, ok := doc["blocks"]; ok {
		doc["blocks"] = walk(blocks, session, &rewritten)
	}
	if meta, ok := doc["meta"]; ok {
		doc["meta"] = walk(meta, session, &rewritten)
	}
	logger.Debug("math filter pass finished", logger.Int("rewritten", rewritten))

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode pandoc document: %w", err)
	}
	return out, rewritten, nil
}

// walk descends the generically-decoded document. Lists are where inline
// splicing happens; a Math node can only legally occur inside a list of
// inlines, so replacing one element with several is always valid there.
func walk(node any, session *mathtext.Session, rewritten *int) any {
	switch v := node.(type) {
	case []any:
		out := make([]any, 0, len(v))
		for _, el := range v {
			if expr, ok := inlineMathExpr(el); ok {
				if runs, accepted := session.Rewrite(expr); accepted {
					out = append(out, encodeRuns(runs)...)
					*rewritten++
					continue
				}
				// Declined: the original node is kept as-is.
				out = append(out, el)
				continue
			}
			out = append(out, walk(el, session, rewritten))
		}
		return out
	case map[string]any:
		for key, child := range v {
			v[key] = walk(child, session, rewritten)
		}
		return v
	default:
		return node
	}
}

// inlineMathExpr extracts the source expression from an InlineMath node.
// Display math is never touched.
func inlineMathExpr(el any) (string, bool) {
	node, ok := el.(map[string]any)
	if !ok || node["t"] != "Math" {
		return "", false
	}
	content, ok := node["c"].([]any)
	if !ok || len(content) != 2 {
		return "", false
	}
	mathType, ok := content[0].(map[string]any)
	if !ok || mathType["t"] != "InlineMath" {
		return "", false
	}
	expr, ok := content[1].(string)
	return expr, ok
}

// encodeRuns converts styled runs into pandoc inline nodes.
func encodeRuns(runs []mathtext.Run) []any {
	var out []any
	for _, run := range runs {
		switch run.Kind {
		case mathtext.RunPlain:
			out = append(out, encodePlain(run.Text)...)
		case mathtext.RunSuperscript:
			out = append(out, inlineNode("Superscript", encodePlain(run.Text)))
		case mathtext.RunSubscript:
			out = append(out, inlineNode("Subscript", encodePlain(run.Text)))
		}
	}
	return out
}

// encodePlain splits text into the canonical Str/Space inline sequence.
func encodePlain(text string) []any {
	var out []any
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			out = append(out, map[string]any{"t": "Str", "c": word.String()})
			word.Reset()
		}
	}
	for _, r := range text {
		if r == ' ' {
			flush()
			out = append(out, map[string]any{"t": "Space"})
			continue
		}
		word.WriteRune(r)
	}
	flush()
	return out
}

func inlineNode(tag string, content []any) map[string]any {
	if content == nil {
		content = []any{}
	}
	return map[string]any{"t": tag, "c": content}
}
