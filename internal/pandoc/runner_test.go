package pandoc

import (
	"context"
	"testing"
	"time"

	"github.com/zxkjack123/latex2word/internal/types"
)

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner("", "", 0)
	if r.binary != DefaultBinary {
		t.Errorf("expected default binary %q, got %q", DefaultBinary, r.binary)
	}
	if r.timeout != DefaultTimeout {
		t.Errorf("expected default timeout %v, got %v", DefaultTimeout, r.timeout)
	}
}

func TestCheckMissingBinary(t *testing.T) {
	r := NewRunner("definitely-not-a-real-pandoc-binary", "", time.Second)
	err := r.Check()
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	appErr, ok := err.(*types.AppError)
	if !ok {
		t.Fatalf("expected *types.AppError, got %T", err)
	}
	if appErr.Code != types.ErrPandoc {
		t.Errorf("expected ErrPandoc, got %v", appErr.Code)
	}
}

func TestRunMissingBinary(t *testing.T) {
	r := NewRunner("definitely-not-a-real-pandoc-binary", "", time.Second)
	_, err := r.Run(context.Background(), []string{"--version"}, nil)
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}
