// Package report collects per-conversion issues and persists them as a JSON
// report file next to the conversion output.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zxkjack123/latex2word/internal/logger"
	"github.com/zxkjack123/latex2word/internal/types"
)

// Stage identifies the pipeline stage an issue was found in.
type Stage string

const (
	StageParse       Stage = "parse"
	StageModify      Stage = "modify"
	StagePandoc      Stage = "pandoc"
	StageMathRewrite Stage = "math_rewrite"
	StageValidate    Stage = "validate"
)

// Severity classifies an issue.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is a single finding recorded during a conversion run.
type Issue struct {
	ID        string    `json:"id"`
	Stage     Stage     `json:"stage"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Report is the persisted result of one conversion run.
type Report struct {
	ID           string    `json:"id"`
	InputFile    string    `json:"input_file"`
	OutputFile   string    `json:"output_file,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at,omitempty"`
	Success      bool      `json:"success"`
	MathRewrites int       `json:"math_rewrites"`
	Issues       []Issue   `json:"issues"`
}

// Manager accumulates issues for one conversion run.
type Manager struct {
	baseDir string
	mu      sync.RWMutex
	report  *Report
}

// NewManager creates a report manager for one conversion of inputFile.
// Reports are written under baseDir, which is created if missing.
func NewManager(baseDir, inputFile string) (*Manager, error) {
	if baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, types.NewAppError(types.ErrConfig, "failed to get home directory", err)
		}
		baseDir = filepath.Join(homeDir, ".latex2word", "reports")
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, types.NewAppError(types.ErrInternal, "failed to create report directory", err)
	}

	return &Manager{
		baseDir: baseDir,
		report: &Report{
			ID:        uuid.NewString(),
			InputFile: inputFile,
			StartedAt: time.Now(),
			Issues:    []Issue{},
		},
	}, nil
}

// Add records one issue.
func (m *Manager) Add(stage Stage, severity Severity, message, detail string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.report.Issues = append(m.report.Issues, Issue{
		ID:        uuid.NewString(),
		Stage:     stage,
		Severity:  severity,
		Message:   message,
		Detail:    detail,
		Timestamp: time.Now(),
	})
}

// AddWarnings records a batch of warning messages for one stage.
func (m *Manager) AddWarnings(stage Stage, messages []string) {
	for _, msg := range messages {
		m.Add(stage, SeverityWarning, msg, "")
	}
}

// SetResult records the final outcome of the run.
func (m *Manager) SetResult(outputFile string, success bool, mathRewrites int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.report.OutputFile = outputFile
	m.report.Success = success
	m.report.MathRewrites = mathRewrites
	m.report.FinishedAt = time.Now()
}

// Issues returns a copy of the recorded issues.
func (m *Manager) Issues() []Issue {
	m.mu.RLock()
	defer m.mu.RUnlock()

	issues := make([]Issue, len(m.report.Issues))
	copy(issues, m.report.Issues)
	return issues
}

// CountBySeverity returns how many issues carry the given severity.
func (m *Manager) CountBySeverity(severity Severity) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, issue := range m.report.Issues {
		if issue.Severity == severity {
			count++
		}
	}
	return count
}

// Save writes the report to disk and returns the file path.
func (m *Manager) Save() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := json.MarshalIndent(m.report, "", "  ")
	if err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to marshal report", err)
	}

	filePath := filepath.Join(m.baseDir, "report-"+m.report.ID+".json")
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to write report file", err)
	}

	logger.Info("conversion report written",
		logger.String("path", filePath),
		logger.Int("issues", len(m.report.Issues)))
	return filePath, nil
}
