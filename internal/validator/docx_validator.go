// Package validator checks converted DOCX files against scientific
// formatting conventions: superscripts and subscripts in units, isotopes and
// chemical formulas must be upright, and unit expressions must be plain text
// rather than OMML math.
package validator

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/zxkjack123/latex2word/internal/logger"
	"github.com/zxkjack123/latex2word/internal/types"
)

// WordprocessingML and Office Math namespaces used in document.xml.
const (
	wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	mathNS = "http://schemas.openxmlformats.org/officeDocument/2006/math"
)

// Issue is a single formatting problem found in a DOCX file.
type Issue struct {
	Category string // "superscript", "subscript", "unit", "chemical", "system"
	Severity string // "error", "warning", "info"
	Message  string
	Context  string
}

// Result collects all issues found during validation.
type Result struct {
	Valid  bool
	Issues []Issue
	Stats  map[string]int
}

func (r *Result) addIssue(issue Issue) {
	r.Issues = append(r.Issues, issue)
	if r.Stats == nil {
		r.Stats = map[string]int{}
	}
	r.Stats[issue.Category]++
	if issue.Severity == "error" {
		r.Valid = false
	}
}

// HasErrors reports whether any error-severity issue was found.
func (r *Result) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == "error" {
			return true
		}
	}
	return false
}

// Summary renders a human-readable validation summary.
func (r *Result) Summary() string {
	errors, warnings := 0, 0
	for _, issue := range r.Issues {
		switch issue.Severity {
		case "error":
			errors++
		case "warning":
			warnings++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Validation Summary: %d issues found\n", len(r.Issues))
	fmt.Fprintf(&b, "  Errors: %d\n", errors)
	fmt.Fprintf(&b, "  Warnings: %d\n", warnings)
	fmt.Fprintf(&b, "  Info: %d\n", len(r.Issues)-errors-warnings)

	if len(r.Stats) > 0 {
		b.WriteString("\nIssues by category:\n")
		categories := make([]string, 0, len(r.Stats))
		for category := range r.Stats {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			fmt.Fprintf(&b, "  %s: %d\n", category, r.Stats[category])
		}
	}
	return b.String()
}

// DocxValidator inspects the WordprocessingML of a converted document.
type DocxValidator struct {
	docxPath string
}

// NewDocxValidator creates a validator for the given DOCX file.
func NewDocxValidator(docxPath string) *DocxValidator {
	return &DocxValidator{docxPath: docxPath}
}

// Validate opens the DOCX archive and checks word/document.xml.
func (v *DocxValidator) Validate() (*Result, error) {
	logger.Info("validating docx output", logger.String("file", v.docxPath))

	result := &Result{Valid: true, Stats: map[string]int{}}

	reader, err := zip.OpenReader(v.docxPath)
	if err != nil {
		return nil, types.NewAppError(types.ErrValidate, "failed to open docx archive", err)
	}
	defer reader.Close()

	var document io.ReadCloser
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			document, err = f.Open()
			if err != nil {
				return nil, types.NewAppError(types.ErrValidate, "failed to open document.xml", err)
			}
			break
		}
	}
	if document == nil {
		return nil, types.NewAppError(types.ErrValidate, "document.xml not found in archive", nil)
	}
	defer document.Close()

	if err := v.scanDocument(document, result); err != nil {
		return nil, err
	}

	logger.Info("validation completed",
		logger.Bool("valid", result.Valid),
		logger.Int("issues", len(result.Issues)))
	return result, nil
}

// runState accumulates the properties of the w:r element being scanned.
type runState struct {
	vertAlign  string
	italicSeen bool
	italicVal  string
	text       strings.Builder
}

// scanDocument streams document.xml and applies all checks.
func (v *DocxValidator) scanDocument(r io.Reader, result *Result) error {
	decoder := xml.NewDecoder(r)

	var (
		run       *runState
		inRunPr   bool
		mathDepth int
		mathText  strings.Builder
		paraText  strings.Builder
		inWText   bool
		inMText   bool
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return types.NewAppError(types.ErrValidate, "failed to parse document.xml", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Space == wordNS && t.Name.Local == "p":
				paraText.Reset()
			case t.Name.Space == wordNS && t.Name.Local == "r":
				run = &runState{}
			case t.Name.Space == wordNS && t.Name.Local == "rPr" && run != nil:
				inRunPr = true
			case t.Name.Space == wordNS && t.Name.Local == "vertAlign" && inRunPr:
				run.vertAlign = attrValue(t, wordNS, "val")
			case t.Name.Space == wordNS && t.Name.Local == "i" && inRunPr:
				run.italicSeen = true
				run.italicVal = attrValue(t, wordNS, "val")
			case t.Name.Space == wordNS && t.Name.Local == "t":
				inWText = true
			case t.Name.Space == mathNS && t.Name.Local == "oMath":
				mathDepth++
				if mathDepth == 1 {
					mathText.Reset()
				}
			case t.Name.Space == mathNS && t.Name.Local == "t":
				inMText = true
			}

		case xml.EndElement:
			switch {
			case t.Name.Space == wordNS && t.Name.Local == "r":
				if run != nil {
					v.checkRun(run, paraText.String(), result)
				}
				run = nil
			case t.Name.Space == wordNS && t.Name.Local == "rPr":
				inRunPr = false
			case t.Name.Space == wordNS && t.Name.Local == "t":
				inWText = false
			case t.Name.Space == mathNS && t.Name.Local == "oMath":
				mathDepth--
				if mathDepth == 0 {
					v.checkMath(mathText.String(), paraText.String(), result)
				}
			case t.Name.Space == mathNS && t.Name.Local == "t":
				inMText = false
			}

		case xml.CharData:
			if inWText {
				if run != nil {
					run.text.Write(t)
				}
				paraText.Write(t)
			}
			if inMText {
				mathText.Write(t)
				paraText.Write(t)
			}
		}
	}
	return nil
}

var (
	exponentText  = regexp.MustCompile(`^[\d\-+]+$`)
	digitsText    = regexp.MustCompile(`^\d+$`)
	valueUnitText = regexp.MustCompile(`^\d+(\.\d+)?[a-zA-Z]`)
	unitOnlyText  = regexp.MustCompile(`^[KkJjWwNnPpAaVvΩμµ°℃℉]+(/[a-zA-Z]+)?$`)
	trailingUnit  = regexp.MustCompile(`\d+\s*[A-Z][a-z]?(\s|$)`)
	elementDigit  = regexp.MustCompile(`[A-Z][a-z]?\d`)
)

// checkRun verifies that decorated runs carrying digits or charges are
// explicitly upright via <w:i w:val="0"/>.
func (v *DocxValidator) checkRun(run *runState, context string, result *Result) {
	text := run.text.String()
	if text == "" {
		return
	}

	explicitlyUpright := run.italicSeen && run.italicVal == "0"

	switch run.vertAlign {
	case "superscript":
		if exponentText.MatchString(text) && !explicitlyUpright {
			result.addIssue(Issue{
				Category: "superscript",
				Severity: "error",
				Message:  fmt.Sprintf("superscript %q should be explicitly non-italic", text),
				Context:  truncate(context, 60),
			})
		}
	case "subscript":
		if digitsText.MatchString(text) && !explicitlyUpright {
			result.addIssue(Issue{
				Category: "subscript",
				Severity: "error",
				Message:  fmt.Sprintf("subscript %q should be explicitly non-italic", text),
				Context:  truncate(context, 60),
			})
		}
	}
}

// checkMath flags OMML islands that carry unit expressions or lone chemical
// subscripts, both of which should have been rewritten to styled text.
func (v *DocxValidator) checkMath(text, context string, result *Result) {
	if looksLikeUnit(text) {
		result.addIssue(Issue{
			Category: "unit",
			Severity: "error",
			Message:  fmt.Sprintf("unit %q should be plain text, not OMML math", strings.TrimSpace(text)),
			Context:  truncate(context, 100),
		})
		return
	}

	if digitsText.MatchString(strings.TrimSpace(text)) && contextSuggestsChemical(context) {
		result.addIssue(Issue{
			Category: "chemical",
			Severity: "warning",
			Message:  fmt.Sprintf("subscript %q in OMML may be part of a chemical formula", strings.TrimSpace(text)),
			Context:  truncate(context, 40),
		})
	}
}

// looksLikeUnit reports whether text resembles a unit expression,
// e.g. "315 K", "1.8 mol/(m² s)" or "2.4×10⁻⁹ m²/s".
func looksLikeUnit(text string) bool {
	clean := strings.ReplaceAll(text, " ", "")
	if valueUnitText.MatchString(clean) {
		return true
	}
	if unitOnlyText.MatchString(clean) {
		return true
	}
	return trailingUnit.MatchString(text)
}

var chemicalElements = []string{
	"H", "C", "N", "O", "S", "P", "Cl", "Br", "F", "I",
	"Na", "K", "Ca", "Mg", "Fe", "Cu", "Zn",
}

func contextSuggestsChemical(context string) bool {
	for _, element := range chemicalElements {
		if strings.Contains(context, element) {
			return true
		}
	}
	return elementDigit.MatchString(context)
}

func attrValue(el xml.StartElement, space, local string) string {
	for _, attr := range el.Attr {
		if attr.Name.Space == space && attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
