// Package texparse provides LaTeX source reading and preprocessing: comment
// stripping, \include flattening and document structure analysis.
package texparse

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/zxkjack123/latex2word/internal/logger"
	"github.com/zxkjack123/latex2word/internal/types"
)

var (
	includePattern        = regexp.MustCompile(`\\include\{(.+?)\}`)
	figurePattern         = regexp.MustCompile(`(?s)\\begin\{figure\}.*?\\end\{figure\}`)
	tablePattern          = regexp.MustCompile(`(?s)\\begin\{table\}.*?\\end\{table\}`)
	graphicspathPattern   = regexp.MustCompile(`\\graphicspath\{((?:\s*\{[^{}]+\}\s*)+)\}`)
	graphicspathEntry     = regexp.MustCompile(`\{([^{}]+)\}`)
	bibliographyPattern   = regexp.MustCompile(`\\bibliography\{([^{}]+)\}`)
	addbibresourcePattern = regexp.MustCompile(`\\addbibresource\{([^{}]+)\}`)
	subcaptionPkgPattern  = regexp.MustCompile(`\\usepackage(?:\[[^\]]*\])?\{subcaption\}`)
	subfigPkgPattern      = regexp.MustCompile(`\\usepackage(?:\[[^\]]*\])?\{subfig\}`)
	subfigUsePattern      = regexp.MustCompile(`\\begin\{subfig\}|\\subfloat`)
	subfigurePkgPattern   = regexp.MustCompile(`\\usepackage(?:\[[^\]]*\])?\{subfigure\}`)
	subfigureCmdPattern   = regexp.MustCompile(`\\subfigure\b`)
	subfigureEnvPattern   = regexp.MustCompile(`\\begin\{subfigure\}`)
	cjkPattern            = regexp.MustCompile(`[\x{4e00}-\x{9fff}]`)
)

// Analysis summarizes the structure of a flattened LaTeX document.
type Analysis struct {
	NumFigures          int      `json:"num_figures"`
	NumTables           int      `json:"num_tables"`
	FigurePackage       string   `json:"figure_package,omitempty"`
	GraphicsPathEntries []string `json:"graphicspath_entries,omitempty"`
	BibliographyFiles   []string `json:"bibliography_files,omitempty"`
	ContainsCJK         bool     `json:"contains_cjk"`
}

// RemoveComments strips %-comments from LaTeX content. A % preceded by a
// backslash is an escaped percent sign and is kept. The newline ending a
// comment is removed together with the comment, joining the line with the
// next one, which matches TeX's own behavior.
func RemoveComments(content string) string {
	var b strings.Builder
	b.Grow(len(content))
	for i := 0; i < len(content); i++ {
		c := content[i]
		if c == '\\' && i+1 < len(content) {
			b.WriteByte(c)
			b.WriteByte(content[i+1])
			i++
			continue
		}
		if c == '%' {
			for i < len(content) && content[i] != '\n' {
				i++
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// FlattenIncludes resolves \include{...} directives relative to baseDir,
// inlining each referenced file with its comments stripped. Nested includes
// are handled by repeated passes; a pass that makes no replacement
// terminates the loop. Missing files are replaced with a marker comment so
// the directive cannot match again.
//
// The second return value lists the directories of all successfully
// included files, for later asset resolution.
func FlattenIncludes(content, baseDir string) (string, []string) {
	var includeDirs []string
	seenDirs := map[string]struct{}{}

	for {
		matches := includePattern.FindAllStringSubmatch(content, -1)
		if len(matches) == 0 {
			break
		}

		madeReplacement := false
		processed := map[string]struct{}{}

		for _, match := range matches {
			includeName := match[1]
			directive := match[0]
			if _, done := processed[directive]; done {
				continue
			}

			fileName := includeFileName(includeName)
			filePath := filepath.Join(baseDir, fileName)

			data, err := os.ReadFile(filePath)
			if err != nil {
				logger.Warn("include file not found",
					logger.String("file", filePath), logger.Err(err))
				content = strings.Replace(content, directive,
					fmt.Sprintf("%% Include file not found: %s %%", fileName), 1)
				processed[directive] = struct{}{}
				continue
			}

			logger.Debug("included file content", logger.String("file", fileName))
			content = strings.Replace(content, directive, RemoveComments(string(data)), 1)
			madeReplacement = true
			processed[directive] = struct{}{}

			dir := filepath.Dir(filePath)
			if _, ok := seenDirs[dir]; !ok {
				seenDirs[dir] = struct{}{}
				includeDirs = append(includeDirs, dir)
			}
		}

		if !madeReplacement {
			break
		}
	}

	return content, includeDirs
}

// includeFileName appends the .tex extension when the directive omits it.
func includeFileName(name string) string {
	if !strings.HasSuffix(strings.ToLower(name), ".tex") {
		return name + ".tex"
	}
	return name
}

// ReadAndFlatten reads the main TeX file, strips comments and resolves
// includes. It returns the flattened content and the include directories.
func ReadAndFlatten(inputFile string) (string, []string, error) {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		logger.Error("failed to read input file", err, logger.String("file", inputFile))
		return "", nil, types.NewAppError(types.ErrFileNotFound, "could not read input file", err)
	}
	logger.Info("read input file", logger.String("file", filepath.Base(inputFile)))

	content := RemoveComments(string(data))
	content, includeDirs := FlattenIncludes(content, filepath.Dir(inputFile))
	logger.Debug("finished processing includes and comments")
	return content, includeDirs, nil
}

// Analyze inspects flattened content for figures, tables, the subfigure
// package flavor, graphics paths, bibliography hints and CJK text.
func Analyze(content string) Analysis {
	analysis := Analysis{
		NumFigures:          len(figurePattern.FindAllString(content, -1)),
		NumTables:           len(tablePattern.FindAllString(content, -1)),
		FigurePackage:       findFigurePackage(content),
		GraphicsPathEntries: ExtractGraphicsPaths(content),
		BibliographyFiles:   ExtractBibliographyFiles(content),
	}
	analysis.ContainsCJK = cjkPattern.MatchString(content)

	logger.Info("analyzed document structure",
		logger.Int("figures", analysis.NumFigures),
		logger.Int("tables", analysis.NumTables),
		logger.String("figure_package", analysis.FigurePackage))
	return analysis
}

// findFigurePackage determines which subfigure package the document uses.
// Returns "subcaption", "subfig", "subfigure" or "" when none is detected.
func findFigurePackage(content string) string {
	if subcaptionPkgPattern.MatchString(content) {
		return "subcaption"
	}
	if subfigPkgPattern.MatchString(content) || subfigUsePattern.MatchString(content) {
		return "subfig"
	}
	if subfigurePkgPattern.MatchString(content) || subfigureCmdPattern.MatchString(content) {
		return "subfigure"
	}
	if subfigureEnvPattern.MatchString(content) {
		return "subcaption"
	}
	return ""
}

// ExtractGraphicsPaths returns the directories listed in the last
// \graphicspath command.
func ExtractGraphicsPaths(content string) []string {
	matches := graphicspathPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	block := matches[len(matches)-1][1]

	var paths []string
	for _, entry := range graphicspathEntry.FindAllStringSubmatch(block, -1) {
		if p := strings.TrimSpace(entry[1]); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// ExtractBibliographyFiles returns bibliography file hints declared via
// \bibliography (comma separated) and \addbibresource, deduplicated in
// order of appearance.
func ExtractBibliographyFiles(content string) []string {
	var files []string
	seen := map[string]struct{}{}

	add := func(entry string) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			return
		}
		if _, ok := seen[entry]; ok {
			return
		}
		seen[entry] = struct{}{}
		files = append(files, entry)
	}

	for _, match := range bibliographyPattern.FindAllStringSubmatch(content, -1) {
		for _, part := range strings.Split(match[1], ",") {
			add(part)
		}
	}
	for _, match := range addbibresourcePattern.FindAllStringSubmatch(content, -1) {
		add(match[1])
	}
	return files
}
