package analysis

import (
	"errors"
	"fmt"
)

// Pipeline stages an AnalysisError can point at
const (
	StageExtract = "extract"
	StageDecode  = "decode"
	StageFlow    = "flow"
)

// AnalysisError provides structured error information for a failed pass.
type AnalysisError struct {
	Op      string // Operation that failed (e.g., "Run")
	Stage   string // Pipeline stage (e.g., "extract", "decode", "flow")
	Network int    // Network ID when the failure is network-scoped, -1 otherwise
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	if e.Network >= 0 {
		return fmt.Sprintf("%s %s (network %d): %v", e.Op, e.Stage, e.Network, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Stage, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *AnalysisError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// stageError wraps a pass-level failure with its pipeline stage
func stageError(stage string, cause error) *AnalysisError {
	return &AnalysisError{Op: "Run", Stage: stage, Network: -1, Cause: cause}
}
