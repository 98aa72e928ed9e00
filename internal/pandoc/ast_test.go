package pandoc

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/zxkjack123/latex2word/internal/mathtext"
)

// doc wraps inline nodes into a minimal pandoc JSON document.
func doc(t *testing.T, inlines ...any) []byte {
	t.Helper()
	payload := map[string]any{
		"pandoc-api-version": []any{1, 23, 1},
		"meta":               map[string]any{},
		"blocks": []any{
			map[string]any{"t": "Para", "c": inlines},
		},
	}
	out, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to build document: %v", err)
	}
	return out
}

func mathNode(expr string) map[string]any {
	return map[string]any{
		"t": "Math",
		"c": []any{map[string]any{"t": "InlineMath"}, expr},
	}
}

// firstBlockInlines decodes the filtered document and returns the inline
// list of the first block.
func firstBlockInlines(t *testing.T, data []byte) []any {
	t.Helper()
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to decode filtered document: %v", err)
	}
	blocks := decoded["blocks"].([]any)
	if len(blocks) == 0 {
		t.Fatal("filtered document has no blocks")
	}
	para := blocks[0].(map[string]any)
	inlines, _ := para["c"].([]any)
	return inlines
}

func inlineTags(inlines []any) []string {
	tags := make([]string, 0, len(inlines))
	for _, el := range inlines {
		tags = append(tags, el.(map[string]any)["t"].(string))
	}
	return tags
}

func TestFilterRewritesChemicalFormula(t *testing.T) {
	input := doc(t, mathNode("CO_{2}"))

	out, _, err := Filter(input, mathtext.NewSession())
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}

	inlines := firstBlockInlines(t, out)
	tags := inlineTags(inlines)
	if len(tags) != 2 || tags[0] != "Str" || tags[1] != "Subscript" {
		t.Fatalf("got inline tags %v, want [Str Subscript]", tags)
	}
	if text := inlines[0].(map[string]any)["c"]; text != "CO" {
		t.Errorf("got Str %q, want \"CO\"", text)
	}
	sub := inlines[1].(map[string]any)["c"].([]any)
	if inner := sub[0].(map[string]any)["c"]; inner != "2" {
		t.Errorf("got Subscript content %q, want \"2\"", inner)
	}
}

func TestFilterSplitsPlainRunsOnSpaces(t *testing.T) {
	input := doc(t, mathNode(`\SI{315}{\kelvin}`))

	out, _, err := Filter(input, mathtext.NewSession())
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}

	tags := inlineTags(firstBlockInlines(t, out))
	want := []string{"Str", "Space", "Str"}
	if len(tags) != len(want) {
		t.Fatalf("got inline tags %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("got inline tags %v, want %v", tags, want)
		}
	}
}

func TestFilterLeavesGenuineMathUnchanged(t *testing.T) {
	for _, expr := range []string{"v", "a^2 + b^2", "E=mc^2"} {
		input := doc(t, mathNode(expr))

		out, _, err := Filter(input, mathtext.NewSession())
		if err != nil {
			t.Fatalf("Filter(%q) failed: %v", expr, err)
		}

		inlines := firstBlockInlines(t, out)
		if len(inlines) != 1 {
			t.Fatalf("Filter(%q) produced %d inlines, want 1", expr, len(inlines))
		}
		got, ok := inlineMathExpr(inlines[0])
		if !ok {
			t.Fatalf("Filter(%q) replaced the math node with %v", expr, inlines[0])
		}
		if got != expr {
			t.Errorf("Filter(%q) altered the expression to %q", expr, got)
		}
	}
}

func TestFilterIgnoresDisplayMath(t *testing.T) {
	display := map[string]any{
		"t": "Math",
		"c": []any{map[string]any{"t": "DisplayMath"}, `\mathrm{m}^{3}`},
	}
	input := doc(t, display)

	out, _, err := Filter(input, mathtext.NewSession())
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}

	inlines := firstBlockInlines(t, out)
	if len(inlines) != 1 || inlines[0].(map[string]any)["t"] != "Math" {
		t.Fatalf("display math was modified: %v", inlines)
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	input := doc(t,
		map[string]any{"t": "Str", "c": "temperature"},
		map[string]any{"t": "Space"},
		mathNode(`\SI{315}{\kelvin}`),
		map[string]any{"t": "Space"},
		mathNode("CO_{2}"),
		mathNode("v"),
	)

	first, _, err := Filter(input, mathtext.NewSession())
	if err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	second, _, err := Filter(first, mathtext.NewSession())
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}

	var a, b any
	if err := json.Unmarshal(first, &a); err != nil {
		t.Fatalf("failed to decode first pass: %v", err)
	}
	if err := json.Unmarshal(second, &b); err != nil {
		t.Fatalf("failed to decode second pass: %v", err)
	}
	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	if !bytes.Equal(aj, bj) {
		t.Error("second filter pass changed the document")
	}
}
