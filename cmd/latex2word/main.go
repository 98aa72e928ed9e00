// Command latex2word converts LaTeX documents to Word with scientific
// notation rendered as styled text instead of OMML math.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zxkjack123/latex2word/internal/config"
	"github.com/zxkjack123/latex2word/internal/converter"
	"github.com/zxkjack123/latex2word/internal/logger"
	"github.com/zxkjack123/latex2word/internal/mathtext"
	"github.com/zxkjack123/latex2word/internal/pandoc"
	"github.com/zxkjack123/latex2word/internal/types"
	"github.com/zxkjack123/latex2word/internal/validator"
)

var (
	// Global flags
	configPath string
	debug      bool

	cfgManager *config.Manager
)

var rootCmd = &cobra.Command{
	Use:   "latex2word",
	Short: "Convert LaTeX documents to Word with upright scientific notation",
	Long: `latex2word converts LaTeX documents to DOCX via pandoc.

Inline math that denotes textual scientific notation (units, isotopes,
chemical formulas, ion charges) is rewritten into styled text runs so
Word renders it upright instead of as italic math.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfgManager, err = config.NewManager(configPath)
		if err != nil {
			return err
		}
		if err := cfgManager.Load(); err != nil {
			return err
		}
		if debug {
			cfgManager.GetConfig().Debug = true
		}

		level := logger.LevelInfo
		if cfgManager.GetConfig().Debug {
			level = logger.LevelDebug
		}
		logCfg := logger.DefaultConfig()
		logCfg.Level = level
		logCfg.EnableConsole = cfgManager.GetConfig().Debug
		if home, err := os.UserHomeDir(); err == nil {
			logCfg.LogFilePath = filepath.Join(home, ".latex2word", "latex2word.log")
		}
		return logger.Init(logCfg)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

var (
	// convert flags
	inputTex      string
	outputDocx    string
	referenceDoc  string
	bibFile       string
	cslFile       string
	captionLocale string
	workDir       string
	reportDir     string
	fixTable      bool
	runValidation bool
	authorEntries []string
	authorFile    string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a LaTeX file to a Word document",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := cfgManager.GetConfig()
		if referenceDoc != "" {
			cfg.ReferenceDoc = referenceDoc
		}
		if cslFile != "" {
			cfg.CSLFile = cslFile
		}
		if captionLocale != "" {
			cfg.CaptionLocale = captionLocale
		}
		if workDir != "" {
			cfg.WorkDirectory = workDir
		}
		if reportDir != "" {
			cfg.ReportDir = reportDir
		}
		if cmd.Flags().Changed("fix-table") {
			cfg.FixTable = fixTable
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		result, err := converter.New(cfg).Convert(ctx, &types.ConversionRequest{
			InputTexFile:       inputTex,
			OutputDocxFile:     outputDocx,
			BibFile:            bibFile,
			Authors:            authorEntries,
			AuthorMetadataFile: authorFile,
		})
		if err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}

		fmt.Printf("Converted %s -> %s (%d math rewrites)\n",
			inputTex, result.OutputFile, result.MathRewrites)
		for _, warning := range result.Warnings {
			fmt.Fprintln(os.Stderr, "warning: "+warning)
		}

		if runValidation {
			return validateFile(result.OutputFile)
		}
		return nil
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter [target-format]",
	Short: "Run the inline-math rewriter as a pandoc JSON filter",
	Long: `Reads a pandoc JSON document from stdin, rewrites textual inline
math into styled runs and writes the document to stdout. Suitable for
direct use as a pandoc filter:

    pandoc input.tex --filter latex2word-filter -o output.docx`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}

		session := mathtext.NewSession()
		output, _, err := pandoc.Filter(input, session)
		if err != nil {
			return err
		}
		for _, warning := range session.Warnings() {
			fmt.Fprintln(os.Stderr, "warning: "+warning)
		}

		_, err = os.Stdout.Write(output)
		return err
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <file.docx>",
	Short: "Check a converted DOCX for upright scientific notation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateFile(args[0])
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that pandoc is installed",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := pandoc.NewRunner(cfgManager.GetConfig().PandocBinary, "", 0)
		if err := runner.Check(); err != nil {
			return err
		}
		fmt.Println("pandoc found")
		return nil
	},
}

func validateFile(path string) error {
	result, err := validator.NewDocxValidator(path).Validate()
	if err != nil {
		return err
	}

	fmt.Print(result.Summary())
	for i, issue := range result.Issues {
		fmt.Printf("\n%d. [%s] %s\n   %s\n", i+1, issue.Severity, issue.Category, issue.Message)
		if issue.Context != "" {
			fmt.Printf("   Context: %s\n", issue.Context)
		}
	}

	if result.HasErrors() {
		return fmt.Errorf("validation found %d error issues", result.Stats["superscript"]+
			result.Stats["subscript"]+result.Stats["unit"])
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	convertCmd.Flags().StringVarP(&inputTex, "input", "i", "", "input LaTeX file (required)")
	convertCmd.Flags().StringVarP(&outputDocx, "output", "o", "", "output Word document (required)")
	convertCmd.Flags().StringVar(&referenceDoc, "reference-doc", "", "reference Word document for styling")
	convertCmd.Flags().StringVar(&bibFile, "bib", "", "BibTeX file (default: detected from the source)")
	convertCmd.Flags().StringVar(&cslFile, "csl", "", "CSL citation style file")
	convertCmd.Flags().StringVar(&captionLocale, "caption-locale", "", "locale for figure and table captions")
	convertCmd.Flags().StringVar(&workDir, "work-dir", "", "directory for intermediate files")
	convertCmd.Flags().StringVar(&reportDir, "report-dir", "", "directory for conversion reports")
	convertCmd.Flags().StringArrayVar(&authorEntries, "author", nil, "author as JSON, key=value pairs or a plain name (repeatable)")
	convertCmd.Flags().StringVar(&authorFile, "author-metadata-file", "", "JSON file describing authors (object or array)")
	convertCmd.Flags().BoolVar(&fixTable, "fix-table", true, "normalize table rules for Word output")
	convertCmd.Flags().BoolVar(&runValidation, "validate", false, "validate the DOCX after conversion")
	_ = convertCmd.MarkFlagRequired("input")
	_ = convertCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(convertCmd, filterCmd, validateCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}
