package pandoc

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/zxkjack123/latex2word/internal/logger"
	"github.com/zxkjack123/latex2word/internal/types"
)

// DefaultBinary is the pandoc executable looked up on PATH.
const DefaultBinary = "pandoc"

// DefaultTimeout bounds one pandoc invocation.
const DefaultTimeout = 5 * time.Minute

// Runner executes the external pandoc binary.
type Runner struct {
	binary  string
	workDir string
	timeout time.Duration
}

// NewRunner creates a Runner. Empty arguments select the defaults.
func NewRunner(binary, workDir string, timeout time.Duration) *Runner {
	if binary == "" {
		binary = DefaultBinary
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Runner{binary: binary, workDir: workDir, timeout: timeout}
}

// Check verifies that pandoc is installed and logs its version for
// reproducibility.
func (r *Runner) Check() error {
	path, err := exec.LookPath(r.binary)
	if err != nil {
		return types.NewAppError(types.ErrPandoc,
			"pandoc not found in PATH, install it from https://pandoc.org", err)
	}
	logger.Debug("found pandoc", logger.String("path", path))

	if version := r.version(); version != "" {
		logger.Info("detected pandoc", logger.String("version", version))
	} else {
		logger.Warn("could not detect pandoc version")
	}
	return nil
}

// version returns the first line of `pandoc --version` output.
func (r *Runner) version() string {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, r.binary, "--version").Output()
	if err != nil {
		return ""
	}
	lines := strings.SplitN(string(out), "\n", 2)
	return strings.TrimSpace(lines[0])
}

// Run invokes pandoc with the given arguments, feeding stdin when non-nil,
// and returns its stdout. The invocation is bounded by the runner timeout.
func (r *Runner) Run(ctx context.Context, args []string, stdin []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	logger.Debug("running pandoc", logger.String("args", strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Dir = r.workDir
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, types.NewAppError(types.ErrPandoc, "pandoc timed out", err)
		}
		return nil, types.NewAppErrorWithDetails(types.ErrPandoc,
			"pandoc failed", strings.TrimSpace(stderr.String()), err)
	}
	return stdout.Bytes(), nil
}
