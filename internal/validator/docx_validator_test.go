package validator

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const documentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
            xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math">
<w:body>`

const documentFooter = `</w:body>
</w:document>`

// writeTestDocx builds a minimal docx archive containing the given body XML.
func writeTestDocx(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test docx: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	entry, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("failed to create document.xml entry: %v", err)
	}
	if _, err := entry.Write([]byte(documentHeader + body + documentFooter)); err != nil {
		t.Fatalf("failed to write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return path
}

func TestValidateItalicSuperscript(t *testing.T) {
	body := `<w:p><w:r>
<w:rPr><w:vertAlign w:val="superscript"/></w:rPr>
<w:t>99</w:t>
</w:r><w:r><w:t>Mo</w:t></w:r></w:p>`

	result, err := NewDocxValidator(writeTestDocx(t, body)).Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if result.Valid {
		t.Error("expected invalid result for superscript without explicit upright style")
	}
	if result.Stats["superscript"] != 1 {
		t.Errorf("expected 1 superscript issue, got %d", result.Stats["superscript"])
	}
	if !result.HasErrors() {
		t.Error("expected HasErrors to be true")
	}
}

func TestValidateUprightSuperscriptPasses(t *testing.T) {
	body := `<w:p><w:r>
<w:rPr><w:vertAlign w:val="superscript"/><w:i w:val="0"/></w:rPr>
<w:t>99</w:t>
</w:r><w:r><w:t>Mo</w:t></w:r></w:p>`

	result, err := NewDocxValidator(writeTestDocx(t, body)).Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if !result.Valid {
		t.Errorf("expected valid result, got issues: %v", result.Issues)
	}
	if len(result.Issues) != 0 {
		t.Errorf("expected no issues, got %v", result.Issues)
	}
}

func TestValidateItalicSubscript(t *testing.T) {
	body := `<w:p><w:r><w:t>CO</w:t></w:r><w:r>
<w:rPr><w:vertAlign w:val="subscript"/></w:rPr>
<w:t>2</w:t>
</w:r></w:p>`

	result, err := NewDocxValidator(writeTestDocx(t, body)).Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if result.Stats["subscript"] != 1 {
		t.Errorf("expected 1 subscript issue, got %d", result.Stats["subscript"])
	}
}

func TestValidateLetterSuperscriptIgnored(t *testing.T) {
	// Alphabetic superscripts such as footnote markers are out of scope.
	body := `<w:p><w:r>
<w:rPr><w:vertAlign w:val="superscript"/></w:rPr>
<w:t>a</w:t>
</w:r></w:p>`

	result, err := NewDocxValidator(writeTestDocx(t, body)).Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if len(result.Issues) != 0 {
		t.Errorf("expected no issues for alphabetic superscript, got %v", result.Issues)
	}
}

func TestValidateUnitInMath(t *testing.T) {
	body := `<w:p><m:oMath><m:r><m:t>315 K</m:t></m:r></m:oMath></w:p>`

	result, err := NewDocxValidator(writeTestDocx(t, body)).Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if result.Stats["unit"] != 1 {
		t.Errorf("expected 1 unit issue, got %d: %v", result.Stats["unit"], result.Issues)
	}
}

func TestValidateGenuineMathPasses(t *testing.T) {
	body := `<w:p><m:oMath><m:r><m:t>a+b</m:t></m:r></m:oMath></w:p>`

	result, err := NewDocxValidator(writeTestDocx(t, body)).Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if len(result.Issues) != 0 {
		t.Errorf("expected no issues for genuine math, got %v", result.Issues)
	}
}

func TestValidateChemicalSubscriptInMath(t *testing.T) {
	body := `<w:p><w:r><w:t>CH</w:t></w:r><m:oMath><m:r><m:t>2</m:t></m:r></m:oMath></w:p>`

	result, err := NewDocxValidator(writeTestDocx(t, body)).Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if result.Stats["chemical"] != 1 {
		t.Errorf("expected 1 chemical warning, got %d: %v", result.Stats["chemical"], result.Issues)
	}
	// Warnings alone do not invalidate the document.
	if !result.Valid {
		t.Error("expected warnings to keep result valid")
	}
}

func TestValidateMissingFile(t *testing.T) {
	_, err := NewDocxValidator(filepath.Join(t.TempDir(), "missing.docx")).Validate()
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateMissingDocumentXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	zw := zip.NewWriter(f)
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	f.Close()

	_, err = NewDocxValidator(path).Validate()
	if err == nil {
		t.Error("expected error for archive without document.xml")
	}
}

func TestSummary(t *testing.T) {
	result := &Result{Valid: true}
	result.addIssue(Issue{Category: "superscript", Severity: "error", Message: "x"})
	result.addIssue(Issue{Category: "chemical", Severity: "warning", Message: "y"})

	summary := result.Summary()
	for _, want := range []string{"2 issues found", "Errors: 1", "Warnings: 1", "superscript: 1", "chemical: 1"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestLooksLikeUnit(t *testing.T) {
	tests := []struct {
		text     string
		expected bool
	}{
		{"315 K", true},
		{"1.8 mol", true},
		{"72h", true},
		{"K", true},
		{"a+b", false},
		{"x", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := looksLikeUnit(tt.text); got != tt.expected {
			t.Errorf("looksLikeUnit(%q) = %v, want %v", tt.text, got, tt.expected)
		}
	}
}
