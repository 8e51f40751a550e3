package types

import (
	"fmt"
)

// Error codes for the engine's failure taxonomy. Parse failures and
// feedback replays are recovered internally and never reach callers as
// errors; they exist here for logging and diagnostics.
const (
	ErrCodeParse              = "PARSE_ERROR"
	ErrCodeMissingProfile     = "MISSING_PROFILE"
	ErrCodeSamplingDegeneracy = "SAMPLING_DEGENERACY"
	ErrCodeFeedbackReplay     = "FEEDBACK_REPLAY_CONFLICT"
	ErrCodeStorage            = "STORAGE_ERROR"
	ErrCodeInvalidInput       = "INVALID_INPUT"
)

// EngineError provides structured error information.
type EngineError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewEngineError creates a new structured engine error.
func NewEngineError(code string, message string, details map[string]interface{}) *EngineError {
	return &EngineError{
		Code:    code,
		Message: message,
		Details: details,
	}
}
