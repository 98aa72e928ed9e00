// Package modifier applies rule-based fixes to LaTeX content before it is
// handed to pandoc. The fixes target constructs pandoc either mishandles or
// renders poorly in docx output: booktabs rules, resizebox-wrapped tables,
// legacy label prefixes and commands broken across line ends.
package modifier

import (
	"regexp"
	"strings"

	"github.com/zxkjack123/latex2word/internal/logger"
)

// Changes reports how many replacements each fix performed.
type Changes struct {
	TableLabels   int
	TableRules    int
	Resizeboxes   int
	BrokenRefs    int
	GraphicsPaths int
}

// Total returns the sum of all change counts.
func (c Changes) Total() int {
	return c.TableLabels + c.TableRules + c.Resizeboxes + c.BrokenRefs + c.GraphicsPaths
}

// Options controls which fixes Apply runs.
type Options struct {
	FixTable bool
	// GraphicsDir, when non-empty, becomes the sole \graphicspath entry.
	GraphicsDir string
}

// Apply runs all content fixes in order and returns the modified content
// together with per-fix change counts.
func Apply(content string, opts Options) (string, Changes) {
	var changes Changes

	if opts.GraphicsDir != "" {
		content, changes.GraphicsPaths = SetGraphicsPath(content, opts.GraphicsDir)
	}
	content, changes.TableLabels = NormalizeTableLabels(content)
	content, changes.Resizeboxes = UnwrapResizebox(content)
	if opts.FixTable {
		content, changes.TableRules = NormalizeTableRules(content)
	}
	content, changes.BrokenRefs = FixBrokenRefs(content)

	if n := changes.Total(); n > 0 {
		logger.Info("applied content fixes",
			logger.Int("table_labels", changes.TableLabels),
			logger.Int("table_rules", changes.TableRules),
			logger.Int("resizeboxes", changes.Resizeboxes),
			logger.Int("broken_refs", changes.BrokenRefs))
	}
	return content, changes
}

var (
	tabLabelPattern = regexp.MustCompile(`\\label\{tab:([^}]+)\}`)
	tabRefPattern   = regexp.MustCompile(`\\ref\{tab:([^}]+)\}`)
)

// NormalizeTableLabels converts legacy tab: prefixes to tbl: in labels and
// references so pandoc-crossref recognizes them as tables.
func NormalizeTableLabels(content string) (string, int) {
	count := len(tabLabelPattern.FindAllString(content, -1)) +
		len(tabRefPattern.FindAllString(content, -1))
	if count == 0 {
		return content, 0
	}

	content = tabLabelPattern.ReplaceAllString(content, `\label{tbl:$1}`)
	content = tabRefPattern.ReplaceAllString(content, `\ref{tbl:$1}`)
	logger.Debug("normalized table label prefixes", logger.Int("count", count))
	return content, count
}

var tableEnvNames = []string{"tabular", "tabular*", "tabularx", "longtable"}

var (
	booktabsRules = []*regexp.Regexp{
		regexp.MustCompile(`\\toprule(?:\[[^\]]*\])?`),
		regexp.MustCompile(`\\midrule(?:\[[^\]]*\])?`),
		regexp.MustCompile(`\\bottomrule(?:\[[^\]]*\])?`),
		regexp.MustCompile(`\\cmidrule(?:\[[^\]]*\])?(?:\([^)]*\))?\{[^}]+\}`),
	}
	addLineSpacePattern = regexp.MustCompile(`\\addlinespace(?:\[[^\]]*\])?`)
	anyRulePattern      = regexp.MustCompile(`\\(hline|cline)`)
	rowEndPattern       = regexp.MustCompile(`\\\\`)
)

// NormalizeTableRules rewrites booktabs rule commands to \hline inside
// table body environments and applies a default three-line style to tables
// that carry no rules at all. Returns the number of table bodies changed.
func NormalizeTableRules(content string) (string, int) {
	changed := 0
	for _, env := range tableEnvNames {
		pattern := regexp.MustCompile(
			`(?s)(\\begin\{` + regexp.QuoteMeta(env) + `\}(?:\[[^\]]*\])?(?:\{[^{}]*\})*)` +
				`(.*?)` +
				`(\\end\{` + regexp.QuoteMeta(env) + `\})`)

		content = pattern.ReplaceAllStringFunc(content, func(match string) string {
			groups := pattern.FindStringSubmatch(match)
			head, body, tail := groups[1], groups[2], groups[3]

			transformed := convertBooktabsRules(body)
			if !anyRulePattern.MatchString(transformed) {
				transformed = applyThreeLineDefault(transformed)
			}
			if transformed != body {
				changed++
			}
			return head + transformed + tail
		})
	}
	if changed > 0 {
		logger.Debug("normalized table rules", logger.Int("tables", changed))
	}
	return content, changed
}

// convertBooktabsRules replaces booktabs rule macros with \hline and drops
// \addlinespace, which has no docx equivalent.
func convertBooktabsRules(body string) string {
	for _, rule := range booktabsRules {
		body = rule.ReplaceAllString(body, `\hline`)
	}
	return addLineSpacePattern.ReplaceAllString(body, "")
}

// applyThreeLineDefault inserts top, header and bottom rules into a table
// body that has none, preserving the body's indentation.
func applyThreeLineDefault(body string) string {
	lines := strings.Split(body, "\n")
	endsWithNewline := strings.HasSuffix(body, "\n")
	if endsWithNewline {
		lines = lines[:len(lines)-1]
	}

	firstIdx := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			firstIdx = i
			break
		}
	}
	if firstIdx == -1 {
		return body
	}

	indent := lines[firstIdx][:len(lines[firstIdx])-len(strings.TrimLeft(lines[firstIdx], " \t"))]

	headerIdx := -1
	for i := firstIdx; i < len(lines); i++ {
		if rowEndPattern.MatchString(lines[i]) {
			headerIdx = i
			break
		}
	}

	result := make([]string, 0, len(lines)+3)
	result = append(result, lines[:firstIdx]...)
	result = append(result, indent+`\hline`)
	result = append(result, lines[firstIdx:]...)

	if headerIdx != -1 {
		// first inserted rule shifted the header down by one line
		insertAt := headerIdx + 2
		result = append(result[:insertAt], append([]string{indent + `\hline`}, result[insertAt:]...)...)
	}

	trailingBlank := 0
	for len(result)-trailingBlank > 0 && strings.TrimSpace(result[len(result)-1-trailingBlank]) == "" {
		trailingBlank++
	}
	tail := append([]string{indent + `\hline`}, result[len(result)-trailingBlank:]...)
	result = append(result[:len(result)-trailingBlank], tail...)

	logger.Debug("applied default three-line style to table without rules")

	out := strings.Join(result, "\n")
	if endsWithNewline {
		out += "\n"
	}
	return out
}

var resizeboxStart = regexp.MustCompile(`\\resizebox\s*\{`)

// UnwrapResizebox removes \resizebox{..}{..}{<tabular>} wrappers so pandoc
// can recognize the inner tabular environment. The three arguments are
// extracted with balanced-brace scanning; wrappers around anything other
// than a tabular are left alone.
func UnwrapResizebox(content string) (string, int) {
	type replacement struct {
		start, end int
		body       string
	}
	var replacements []replacement

	searchPos := 0
	for {
		loc := resizeboxStart.FindStringIndex(content[searchPos:])
		if loc == nil {
			break
		}
		start := searchPos + loc[0]
		braceStart := searchPos + loc[1] - 1

		_, next, ok := extractBracedSegment(content, braceStart)
		if !ok {
			break
		}
		next = skipWhitespace(content, next)
		if next >= len(content) || content[next] != '{' {
			searchPos = braceStart + 1
			continue
		}

		_, next, ok = extractBracedSegment(content, next)
		if !ok {
			break
		}
		next = skipWhitespace(content, next)
		if next >= len(content) || content[next] != '{' {
			searchPos = braceStart + 1
			continue
		}

		body, bodyEnd, ok := extractBracedSegment(content, next)
		if !ok {
			break
		}
		if strings.HasPrefix(strings.TrimLeft(body, " \t\r\n"), `\begin{tabular`) {
			replacements = append(replacements, replacement{start, bodyEnd, strings.TrimSpace(body)})
		}
		searchPos = braceStart + 1
	}

	if len(replacements) == 0 {
		return content, 0
	}

	var b strings.Builder
	last := 0
	for _, r := range replacements {
		b.WriteString(content[last:r.start])
		b.WriteString(r.body)
		last = r.end
	}
	b.WriteString(content[last:])

	logger.Debug("unwrapped resizebox around tabular", logger.Int("count", len(replacements)))
	return b.String(), len(replacements)
}

// extractBracedSegment returns the content of the balanced braced group
// starting at start (which must point at '{') and the index just past its
// closing brace.
func extractBracedSegment(content string, start int) (string, int, bool) {
	if start >= len(content) || content[start] != '{' {
		return "", start, false
	}
	depth := 0
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start+1 : i], i + 1, true
			}
		}
	}
	return "", start, false
}

func skipWhitespace(content string, i int) int {
	for i < len(content) && (content[i] == ' ' || content[i] == '\t' ||
		content[i] == '\n' || content[i] == '\r') {
		i++
	}
	return i
}

var (
	brokenRefPattern   = regexp.MustCompile(`\\[\r\n]+ef\{`)
	brokenLabelPattern = regexp.MustCompile(`\\[\r\n]+label\{`)
)

// FixBrokenRefs rejoins \ref and \label commands that were split across a
// line break, usually by upstream text processing.
func FixBrokenRefs(content string) (string, int) {
	refCount := len(brokenRefPattern.FindAllString(content, -1))
	labelCount := len(brokenLabelPattern.FindAllString(content, -1))
	if refCount+labelCount == 0 {
		return content, 0
	}

	if refCount > 0 {
		content = brokenRefPattern.ReplaceAllString(content, `\ref{`)
		logger.Debug("fixed broken \\ref commands", logger.Int("count", refCount))
	}
	if labelCount > 0 {
		content = brokenLabelPattern.ReplaceAllString(content, `\label{`)
		logger.Debug("fixed broken \\label commands", logger.Int("count", labelCount))
	}
	return content, refCount + labelCount
}

var (
	graphicspathPattern = regexp.MustCompile(`\\graphicspath\{(?:\s*\{[^{}]+\}\s*)+\}`)
	preamblePattern     = regexp.MustCompile(`(?s)\\documentclass.*?\}\s*|\\usepackage.*?\}\s*`)
)

// SetGraphicsPath removes any existing \graphicspath and inserts one
// pointing at dirName after the last preamble declaration, or at the top of
// the file when none is found. Returns the content and 1 when an insertion
// happened.
func SetGraphicsPath(content, dirName string) (string, int) {
	content = graphicspathPattern.ReplaceAllString(content, "")

	newPath := `\graphicspath{{` + dirName + `/}}`

	lastEnd := 0
	for _, loc := range preamblePattern.FindAllStringIndex(content, -1) {
		lastEnd = loc[1]
	}

	if lastEnd > 0 {
		content = content[:lastEnd] + newPath + "\n" + content[lastEnd:]
		logger.Debug("inserted graphicspath after preamble", logger.String("dir", dirName))
	} else {
		content = newPath + "\n" + content
		logger.Debug("inserted graphicspath at start of file", logger.String("dir", dirName))
	}
	return content, 1
}
