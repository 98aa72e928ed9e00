// Package converter orchestrates the LaTeX to DOCX pipeline: read and
// flatten the source, apply content fixes, convert to pandoc's JSON tree,
// rewrite textual inline math into styled runs, then write the DOCX.
package converter

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/zxkjack123/latex2word/internal/authors"
	"github.com/zxkjack123/latex2word/internal/logger"
	"github.com/zxkjack123/latex2word/internal/mathtext"
	"github.com/zxkjack123/latex2word/internal/modifier"
	"github.com/zxkjack123/latex2word/internal/pandoc"
	"github.com/zxkjack123/latex2word/internal/report"
	"github.com/zxkjack123/latex2word/internal/texparse"
	"github.com/zxkjack123/latex2word/internal/types"
)

// crossrefBinary is the pandoc filter used for figure and table references.
const crossrefBinary = "pandoc-crossref"

// Converter runs conversions with one shared configuration.
type Converter struct {
	cfg *types.Config
}

// New creates a Converter.
func New(cfg *types.Config) *Converter {
	return &Converter{cfg: cfg}
}

// Convert runs the full pipeline for one request. The returned result is
// non-nil even on failure so callers can inspect partial progress.
func (c *Converter) Convert(ctx context.Context, req *types.ConversionRequest) (*types.ConversionResult, error) {
	result := &types.ConversionResult{}

	reporter, err := report.NewManager(c.cfg.ReportDir, req.InputTexFile)
	if err != nil {
		return result, err
	}

	err = c.run(ctx, req, reporter, result)
	if err != nil {
		result.Success = false
		result.ErrorMsg = err.Error()
	} else {
		result.Success = true
		result.OutputFile = req.OutputDocxFile
	}

	reporter.SetResult(req.OutputDocxFile, result.Success, result.MathRewrites)
	if _, saveErr := reporter.Save(); saveErr != nil {
		logger.Warn("failed to save conversion report", logger.Err(saveErr))
	}
	return result, err
}

func (c *Converter) run(ctx context.Context, req *types.ConversionRequest, reporter *report.Manager, result *types.ConversionResult) error {
	inputDir, err := filepath.Abs(filepath.Dir(req.InputTexFile))
	if err != nil {
		return types.NewAppError(types.ErrInvalidInput, "failed to resolve input path", err)
	}

	timeout := time.Duration(c.cfg.PandocTimeout) * time.Second
	runner := pandoc.NewRunner(c.cfg.PandocBinary, inputDir, timeout)
	if err := runner.Check(); err != nil {
		reporter.Add(report.StagePandoc, report.SeverityError, err.Error(), "")
		return err
	}

	// Stage 1: read, strip comments, flatten includes.
	content, includeDirs, err := texparse.ReadAndFlatten(req.InputTexFile)
	if err != nil {
		reporter.Add(report.StageParse, report.SeverityError, err.Error(), "")
		return err
	}
	analysis := texparse.Analyze(content)

	authorMeta, err := c.authorMetadata(req, content)
	if err != nil {
		reporter.Add(report.StageParse, report.SeverityError, err.Error(), "")
		return err
	}

	// Stage 2: content fixes.
	content, changes := modifier.Apply(content, modifier.Options{
		FixTable:    c.cfg.FixTable,
		GraphicsDir: inputDir,
	})
	if n := changes.Total(); n > 0 {
		reporter.Add(report.StageModify, report.SeverityInfo,
			"applied content fixes", strings.Join(describeChanges(changes), ", "))
	}

	// Stage 3: write the modified source into a scratch workspace.
	workDir, err := c.makeWorkDir()
	if err != nil {
		return err
	}
	if !c.cfg.Debug {
		defer os.RemoveAll(workDir)
	} else {
		logger.Info("keeping workspace for inspection", logger.String("dir", workDir))
	}

	modifiedTex := filepath.Join(workDir, modifiedName(req.InputTexFile))
	if err := os.WriteFile(modifiedTex, []byte(content), 0644); err != nil {
		return types.NewAppError(types.ErrInternal, "failed to write modified tex file", err)
	}
	logger.Info("created modified tex file", logger.String("file", filepath.Base(modifiedTex)))

	var metadataFile string
	if authorMeta != nil {
		metadataFile, err = writeAuthorMetadata(workDir, authorMeta)
		if err != nil {
			reporter.Add(report.StageParse, report.SeverityError, err.Error(), "")
			return err
		}
		logger.Info("author metadata attached",
			logger.Int("authors", len(authorMeta.Authors)),
			logger.Int("institutes", len(authorMeta.Institutes)))
	}

	resourcePath := buildResourcePath(inputDir, analysis.GraphicsPathEntries, includeDirs)

	// Stage 4: tex to pandoc JSON.
	toJSON := []string{
		filepath.Base(modifiedTex),
		"--from", "latex",
		"--to", "json",
		"--resource-path", resourcePath,
	}
	jsonRunner := pandoc.NewRunner(c.cfg.PandocBinary, workDir, timeout)
	astJSON, err := jsonRunner.Run(ctx, toJSON, nil)
	if err != nil {
		reporter.Add(report.StagePandoc, report.SeverityError, err.Error(), "")
		return err
	}

	// Stage 5: rewrite textual inline math.
	session := mathtext.NewSession()
	filtered, rewrites, err := pandoc.Filter(astJSON, session)
	if err != nil {
		reporter.Add(report.StageMathRewrite, report.SeverityError, err.Error(), "")
		return types.NewAppError(types.ErrParse, "math rewrite failed", err)
	}
	result.MathRewrites = rewrites
	result.Warnings = session.Warnings()
	reporter.AddWarnings(report.StageMathRewrite, session.Warnings())

	// Stage 6: pandoc JSON to docx.
	outputDocx, err := filepath.Abs(req.OutputDocxFile)
	if err != nil {
		return types.NewAppError(types.ErrInvalidInput, "failed to resolve output path", err)
	}
	toDocx := []string{
		"--from", "json",
		"--to", "docx",
		"--output", outputDocx,
		"--resource-path", resourcePath,
		"--number-sections",
		"-M", "autoEqnLabels",
		"-M", "tableEqns",
	}
	if c.cfg.ReferenceDoc != "" {
		toDocx = append(toDocx, "--reference-doc", c.cfg.ReferenceDoc)
	}
	if metadataFile != "" {
		toDocx = append(toDocx, "--metadata-file", metadataFile)
	}
	if path, err := exec.LookPath(crossrefBinary); err == nil {
		logger.Debug("found pandoc-crossref", logger.String("path", path))
		toDocx = append(toDocx, "--filter", crossrefBinary)
	} else {
		logger.Warn("pandoc-crossref not found, cross-references will not be resolved")
		reporter.Add(report.StagePandoc, report.SeverityWarning,
			"pandoc-crossref not found in PATH", "")
	}
	toDocx = append(toDocx, captionArgs(c.cfg.CaptionLocale)...)
	if citeArgs := c.citationArgs(req, analysis, inputDir); len(citeArgs) > 0 {
		toDocx = append(toDocx, citeArgs...)
	}

	if _, err := jsonRunner.Run(ctx, toDocx, filtered); err != nil {
		reporter.Add(report.StagePandoc, report.SeverityError, err.Error(), "")
		return err
	}

	logger.Info("conversion finished",
		logger.String("output", outputDocx),
		logger.Int("math_rewrites", rewrites),
		logger.Int("warnings", len(result.Warnings)))
	return nil
}

// authorMetadata resolves the author block for one conversion. Metadata
// supplied with the request wins; otherwise it is extracted from the
// flattened LaTeX source. A nil result means pandoc keeps whatever the
// document itself declares.
func (c *Converter) authorMetadata(req *types.ConversionRequest, content string) (*authors.Metadata, error) {
	if len(req.Authors) > 0 || req.AuthorMetadataFile != "" {
		return authors.Collect(req.Authors, req.AuthorMetadataFile)
	}
	if meta, ok := authors.Extract(content); ok {
		logger.Debug("author metadata extracted from source",
			logger.Int("authors", len(meta.Authors)))
		return meta, nil
	}
	return nil, nil
}

// writeAuthorMetadata writes the author block as a YAML metadata file in
// the scratch workspace for pandoc's --metadata-file option.
func writeAuthorMetadata(workDir string, meta *authors.Metadata) (string, error) {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to encode author metadata", err)
	}
	path := filepath.Join(workDir, "author_metadata.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to write author metadata file", err)
	}
	return path, nil
}

// captionArgs localizes pandoc-crossref caption prefixes.
func captionArgs(locale string) []string {
	switch locale {
	case "zh":
		return []string{
			"-M", "figureTitle=图",
			"-M", "tableTitle=表",
			"-M", "figPrefix=图",
			"-M", "tblPrefix=表",
			"-M", "eqnPrefix=式",
		}
	default:
		// pandoc-crossref defaults are English
		return nil
	}
}

// citationArgs enables citeproc when a bibliography is available, either
// from the request or detected in the source.
func (c *Converter) citationArgs(req *types.ConversionRequest, analysis texparse.Analysis, inputDir string) []string {
	bibFile := req.BibFile
	if bibFile == "" {
		for _, hint := range analysis.BibliographyFiles {
			candidate := resolveBibHint(hint, inputDir)
			if candidate != "" {
				bibFile = candidate
				break
			}
		}
	}
	if bibFile == "" {
		return nil
	}
	if _, err := os.Stat(bibFile); err != nil {
		logger.Warn("bibliography file not found, skipping citations",
			logger.String("file", bibFile))
		return nil
	}

	logger.Info("enabling citation processing", logger.String("bib", bibFile))
	args := []string{
		"-M", "reference-section-title=References",
		"--citeproc",
		"--bibliography", bibFile,
	}
	if c.cfg.CSLFile != "" {
		args = append(args, "--csl", c.cfg.CSLFile)
	}
	return args
}

// resolveBibHint turns a \bibliography hint into an existing file path,
// trying the bare name and the name with a .bib extension.
func resolveBibHint(hint, inputDir string) string {
	candidate := hint
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(inputDir, hint)
	}
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	if !strings.EqualFold(filepath.Ext(candidate), ".bib") {
		withExt := candidate + ".bib"
		if _, err := os.Stat(withExt); err == nil {
			return withExt
		}
	}
	return ""
}

// makeWorkDir creates a uniquely named scratch directory for intermediate
// files.
func (c *Converter) makeWorkDir() (string, error) {
	base := c.cfg.WorkDirectory
	if base == "" {
		base = os.TempDir()
	}
	workDir := filepath.Join(base, "latex2word-"+uuid.NewString()[:8])
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to create work directory", err)
	}
	logger.Debug("created workspace", logger.String("dir", workDir))
	return workDir, nil
}

// modifiedName derives the scratch file name for the modified source.
func modifiedName(inputFile string) string {
	base := filepath.Base(inputFile)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "_modified.tex"
}

// resourcePath joins the directories pandoc should search for images and
// other assets, separated by the OS path list separator.
func buildResourcePath(inputDir string, graphicsEntries, includeDirs []string) string {
	dirs := []string{inputDir}
	seen := map[string]struct{}{inputDir: {}}

	add := func(dir string) {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(inputDir, dir)
		}
		dir = filepath.Clean(dir)
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}

	for _, entry := range graphicsEntries {
		add(entry)
	}
	for _, dir := range includeDirs {
		add(dir)
	}
	return strings.Join(dirs, string(os.PathListSeparator))
}

func describeChanges(changes modifier.Changes) []string {
	var parts []string
	if changes.TableLabels > 0 {
		parts = append(parts, "table labels: "+strconv.Itoa(changes.TableLabels))
	}
	if changes.TableRules > 0 {
		parts = append(parts, "table rules: "+strconv.Itoa(changes.TableRules))
	}
	if changes.Resizeboxes > 0 {
		parts = append(parts, "resizeboxes: "+strconv.Itoa(changes.Resizeboxes))
	}
	if changes.BrokenRefs > 0 {
		parts = append(parts, "broken refs: "+strconv.Itoa(changes.BrokenRefs))
	}
	if changes.GraphicsPaths > 0 {
		parts = append(parts, "graphicspath: "+strconv.Itoa(changes.GraphicsPaths))
	}
	return parts
}
