// Package types defines core data types and enums shared across the
// LaTeX-to-Word converter.
package types

// Config holds the persisted application configuration.
type Config struct {
	PandocBinary  string `json:"pandoc_binary"`  // pandoc executable, defaults to "pandoc" on PATH
	ReferenceDoc  string `json:"reference_doc"`  // reference .docx supplying Word styles
	CSLFile       string `json:"csl_file"`       // citation style file passed to citeproc
	FixTable      bool   `json:"fix_table"`      // normalize table rules and labels
	CaptionLocale string `json:"caption_locale"` // locale for figure/table captions, e.g. "en"
	WorkDirectory string `json:"work_directory"` // scratch directory for intermediate files
	PandocTimeout int    `json:"pandoc_timeout"` // seconds per pandoc invocation, 0 = default
	ReportDir     string `json:"report_dir"`     // directory for conversion issue reports
	Debug         bool   `json:"debug"`          // verbose logging
}

// ConversionRequest describes one LaTeX-to-Word conversion.
type ConversionRequest struct {
	InputTexFile   string `json:"input_texfile"`
	OutputDocxFile string `json:"output_docxfile"`
	BibFile        string `json:"bibfile,omitempty"`
	// Authors holds inline author descriptions: JSON, key=value pairs
	// or plain names. AuthorMetadataFile points at a JSON file with the
	// same information. When both are empty, author metadata is
	// extracted from the LaTeX source.
	Authors            []string `json:"authors,omitempty"`
	AuthorMetadataFile string   `json:"author_metadata_file,omitempty"`
}

// ConversionResult reports the outcome of one conversion.
type ConversionResult struct {
	Success      bool     `json:"success"`
	OutputFile   string   `json:"output_file,omitempty"`
	MathRewrites int      `json:"math_rewrites"`
	Warnings     []string `json:"warnings,omitempty"`
	ErrorMsg     string   `json:"error_msg,omitempty"`
}

// ErrorCode classifies application errors.
type ErrorCode string

const (
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrParse        ErrorCode = "PARSE_ERROR"
	ErrPandoc       ErrorCode = "PANDOC_ERROR"
	ErrValidate     ErrorCode = "VALIDATION_ERROR"
	ErrConfig       ErrorCode = "CONFIG_ERROR"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError is the application error type carrying a machine-readable code.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}
