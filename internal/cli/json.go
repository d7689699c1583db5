package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"

	"github.com/rileyhilliard/cq/internal/errors"
)

// Machine mode flag - when true, outputs JSON and suppresses human-friendly decorations
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigInvalid   = "CONFIG_INVALID"
	ErrCodeTemplateInvalid = "TEMPLATE_INVALID"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeStoreFailed     = "STORE_FAILED"
	ErrCodeStoreLocked     = "STORE_LOCKED"
	ErrCodeLaunchFailed    = "LAUNCH_FAILED"
	ErrCodeCommandFailed   = "COMMAND_FAILED"
	ErrCodeCancelled       = "CANCELLED"
	ErrCodeUnknown         = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	env := JSONEnvelope{
		Success: true,
		Data:    data,
	}
	return writeJSONEnvelope(w, env)
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	env := JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	}
	return writeJSONEnvelope(w, env)
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	env := JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	}
	return writeJSONEnvelope(w, env)
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var cqErr *errors.Error
	if stderrors.As(err, &cqErr) {
		je := &JSONError{
			Code:       mapErrorCode(cqErr.Code),
			Message:    cqErr.Message,
			Suggestion: cqErr.Suggestion,
		}
		if cqErr.Cause != nil {
			je.Details = map[string]string{"cause": cqErr.Cause.Error()}
		}
		return je
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode string) string {
	switch internalCode {
	case errors.ErrConfig:
		return ErrCodeConfigInvalid
	case errors.ErrTemplate:
		return ErrCodeTemplateInvalid
	case errors.ErrNotFound:
		return ErrCodeNotFound
	case errors.ErrStore:
		return ErrCodeStoreFailed
	case errors.ErrLock:
		return ErrCodeStoreLocked
	case errors.ErrLaunch:
		return ErrCodeLaunchFailed
	case errors.ErrExec:
		return ErrCodeCommandFailed
	case errors.ErrCancelled:
		return ErrCodeCancelled
	}
	return ErrCodeUnknown
}
