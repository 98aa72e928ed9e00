package converter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zxkjack123/latex2word/internal/authors"
	"github.com/zxkjack123/latex2word/internal/modifier"
	"github.com/zxkjack123/latex2word/internal/types"
)

func TestModifiedName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"paper.tex", "paper_modified.tex"},
		{"/some/dir/main.tex", "main_modified.tex"},
		{"noext", "noext_modified.tex"},
	}

	for _, tt := range tests {
		if got := modifiedName(tt.input); got != tt.expected {
			t.Errorf("modifiedName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildResourcePath(t *testing.T) {
	sep := string(os.PathListSeparator)
	got := buildResourcePath("/docs", []string{"figs/", "/abs/images"}, []string{"/docs/chapters"})

	parts := strings.Split(got, sep)
	want := []string{"/docs", "/docs/figs", "/abs/images", "/docs/chapters"}
	if len(parts) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), parts)
	}
	for i, dir := range want {
		if parts[i] != dir {
			t.Errorf("entry %d = %q, want %q", i, parts[i], dir)
		}
	}
}

func TestBuildResourcePathDeduplicates(t *testing.T) {
	got := buildResourcePath("/docs", []string{".", "/docs"}, []string{"/docs"})
	if got != "/docs" {
		t.Errorf("expected deduplicated path /docs, got %q", got)
	}
}

func TestAuthorMetadataPrecedence(t *testing.T) {
	c := New(&types.Config{})
	content := `\author{Source Author}\affil{Source University}`

	// Request-supplied authors override extraction.
	meta, err := c.authorMetadata(&types.ConversionRequest{Authors: []string{"Flag Author"}}, content)
	if err != nil {
		t.Fatalf("authorMetadata returned error: %v", err)
	}
	if len(meta.Authors) != 1 || meta.Authors[0].Name != "Flag Author" {
		t.Errorf("expected request authors to win, got %+v", meta.Authors)
	}

	// Without request metadata, fall back to the source.
	meta, err = c.authorMetadata(&types.ConversionRequest{}, content)
	if err != nil {
		t.Fatalf("authorMetadata returned error: %v", err)
	}
	if meta == nil || meta.Authors[0].Name != "Source Author" {
		t.Errorf("expected extracted authors, got %+v", meta)
	}

	// Nothing anywhere yields no metadata file.
	meta, err = c.authorMetadata(&types.ConversionRequest{}, `\section{Intro}`)
	if err != nil {
		t.Fatalf("authorMetadata returned error: %v", err)
	}
	if meta != nil {
		t.Errorf("expected nil metadata, got %+v", meta)
	}
}

func TestWriteAuthorMetadata(t *testing.T) {
	meta, ok := authors.Extract(`\author[1]{Alice}\affil[1]{University X}`)
	if !ok {
		t.Fatal("Extract returned ok=false")
	}

	dir := t.TempDir()
	path, err := writeAuthorMetadata(dir, meta)
	if err != nil {
		t.Fatalf("writeAuthorMetadata returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read metadata file: %v", err)
	}
	text := string(data)
	for _, want := range []string{"author:", "name: Alice", "institute:", "affiliation-1", "name: University X"} {
		if !strings.Contains(text, want) {
			t.Errorf("metadata file missing %q:\n%s", want, text)
		}
	}
}

func TestResolveBibHint(t *testing.T) {
	dir := t.TempDir()
	bibPath := filepath.Join(dir, "refs.bib")
	if err := os.WriteFile(bibPath, []byte("@article{a,}"), 0644); err != nil {
		t.Fatalf("failed to write bib file: %v", err)
	}

	if got := resolveBibHint("refs", dir); got != bibPath {
		t.Errorf("expected %q for extensionless hint, got %q", bibPath, got)
	}
	if got := resolveBibHint("refs.bib", dir); got != bibPath {
		t.Errorf("expected %q for full hint, got %q", bibPath, got)
	}
	if got := resolveBibHint("missing", dir); got != "" {
		t.Errorf("expected empty result for missing file, got %q", got)
	}
}

func TestDescribeChanges(t *testing.T) {
	parts := describeChanges(modifier.Changes{TableLabels: 2, BrokenRefs: 1})
	joined := strings.Join(parts, ", ")
	if !strings.Contains(joined, "table labels: 2") {
		t.Errorf("missing table label count: %q", joined)
	}
	if !strings.Contains(joined, "broken refs: 1") {
		t.Errorf("missing broken ref count: %q", joined)
	}
	if strings.Contains(joined, "resizeboxes") {
		t.Errorf("zero counts should be omitted: %q", joined)
	}
}

func TestCaptionArgs(t *testing.T) {
	if args := captionArgs("en"); args != nil {
		t.Errorf("expected no args for English, got %v", args)
	}
	if args := captionArgs(""); args != nil {
		t.Errorf("expected no args for empty locale, got %v", args)
	}
	zh := strings.Join(captionArgs("zh"), " ")
	if !strings.Contains(zh, "figureTitle=图") || !strings.Contains(zh, "tableTitle=表") {
		t.Errorf("missing localized caption metadata: %q", zh)
	}
}

func TestConvertFailsWithoutPandoc(t *testing.T) {
	dir := t.TempDir()
	inputTex := filepath.Join(dir, "paper.tex")
	if err := os.WriteFile(inputTex, []byte(`\documentclass{article}\begin{document}x\end{document}`), 0644); err != nil {
		t.Fatalf("failed to write tex file: %v", err)
	}

	conv := New(&types.Config{
		PandocBinary:  "definitely-not-a-real-pandoc-binary",
		PandocTimeout: 5,
		ReportDir:     filepath.Join(dir, "reports"),
		WorkDirectory: dir,
	})

	result, err := conv.Convert(context.Background(), &types.ConversionRequest{
		InputTexFile:   inputTex,
		OutputDocxFile: filepath.Join(dir, "paper.docx"),
	})

	if err == nil {
		t.Fatal("expected error when pandoc binary is missing")
	}
	if result.Success {
		t.Error("expected unsuccessful result")
	}
	if result.ErrorMsg == "" {
		t.Error("expected error message in result")
	}

	// The failure must still produce a report.
	entries, readErr := os.ReadDir(filepath.Join(dir, "reports"))
	if readErr != nil {
		t.Fatalf("failed to read report dir: %v", readErr)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 report file, got %d", len(entries))
	}
}

func TestConvertMissingInput(t *testing.T) {
	dir := t.TempDir()
	conv := New(&types.Config{
		PandocBinary:  "sh", // something that exists on PATH
		PandocTimeout: 5,
		ReportDir:     filepath.Join(dir, "reports"),
		WorkDirectory: dir,
	})

	_, err := conv.Convert(context.Background(), &types.ConversionRequest{
		InputTexFile:   filepath.Join(dir, "missing.tex"),
		OutputDocxFile: filepath.Join(dir, "out.docx"),
	})
	if err == nil {
		t.Fatal("expected error for missing input file")
	}

	appErr, ok := err.(*types.AppError)
	if !ok {
		t.Fatalf("expected *types.AppError, got %T", err)
	}
	if appErr.Code != types.ErrFileNotFound {
		t.Errorf("expected ErrFileNotFound, got %v", appErr.Code)
	}
}
