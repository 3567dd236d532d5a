package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad         ErrorCode = "CONFIG_LOAD"
	ErrConfigParse        ErrorCode = "CONFIG_PARSE"
	ErrConfigValid        ErrorCode = "CONFIG_INVALID"
	ErrUnsupportedSpec    ErrorCode = "UNSUPPORTED_SPEC"
	ErrUnresolvedVariable ErrorCode = "UNRESOLVED_VARIABLE"
	ErrMappingsInvalid    ErrorCode = "MAPPINGS_INVALID"

	// Pipeline errors
	ErrNoSuchSide    ErrorCode = "NO_SUCH_SIDE"
	ErrStepPrepare   ErrorCode = "STEP_PREPARE"
	ErrStepExecute   ErrorCode = "STEP_EXECUTE"
	ErrToolFailed    ErrorCode = "TOOL_FAILED"
	ErrPatchConflict ErrorCode = "PATCH_CONFLICT"

	// Transform errors
	ErrNoActions  ErrorCode = "NO_ACTIONS"
	ErrNoMappings ErrorCode = "NO_MAPPINGS"

	// Cache and archive errors
	ErrCacheIO   ErrorCode = "CACHE_IO"
	ErrArchive   ErrorCode = "ARCHIVE"
	ErrFileWrite ErrorCode = "FILE_WRITE"

	// Collaborator errors
	ErrNetworkUnavailable ErrorCode = "NETWORK_UNAVAILABLE"
	ErrFetch              ErrorCode = "FETCH"
	ErrArtifactMissing    ErrorCode = "ARTIFACT_MISSING"
	ErrVersionMismatch    ErrorCode = "VERSION_MISMATCH"
	ErrCompile            ErrorCode = "COMPILE"
)

// DeobfError represents a structured error with code and details
type DeobfError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DeobfError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DeobfError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DeobfError) Is(target error) bool {
	var targetErr *DeobfError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DeobfError with the given code and message
func New(code ErrorCode, message string) *DeobfError {
	return &DeobfError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DeobfError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DeobfError {
	return &DeobfError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DeobfError
func Wrap(err error, code ErrorCode, message string) *DeobfError {
	if err == nil {
		return nil
	}
	return &DeobfError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DeobfError {
	if err == nil {
		return nil
	}
	return &DeobfError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DeobfError) WithDetail(key string, value interface{}) *DeobfError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *DeobfError) WithDetails(details map[string]interface{}) *DeobfError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if any error in the chain has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var deobfErr *DeobfError
		if !errors.As(err, &deobfErr) {
			return false
		}
		if deobfErr.Code == code {
			return true
		}
		err = deobfErr.Wrapped
	}
	return false
}

// GetErrorCode returns the outermost error code, or ErrUnknown if not a DeobfError
func GetErrorCode(err error) ErrorCode {
	var deobfErr *DeobfError
	if errors.As(err, &deobfErr) {
		return deobfErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a DeobfError
func GetErrorDetails(err error) map[string]interface{} {
	var deobfErr *DeobfError
	if errors.As(err, &deobfErr) {
		return deobfErr.Details
	}
	return nil
}

var configurationCodes = map[ErrorCode]bool{
	ErrConfigLoad:         true,
	ErrConfigParse:        true,
	ErrConfigValid:        true,
	ErrUnsupportedSpec:    true,
	ErrUnresolvedVariable: true,
	ErrMappingsInvalid:    true,
}

var stepCodes = map[ErrorCode]bool{
	ErrStepPrepare:   true,
	ErrStepExecute:   true,
	ErrToolFailed:    true,
	ErrPatchConflict: true,
}

// IsConfiguration reports whether err stems from a malformed or unsupported configuration.
func IsConfiguration(err error) bool {
	return anyCode(err, configurationCodes)
}

// IsStepFailure reports whether err was raised while preparing or executing a pipeline step.
func IsStepFailure(err error) bool {
	return anyCode(err, stepCodes)
}

// IsNetworkUnavailable reports whether err was caused by a fetch attempted in offline mode.
func IsNetworkUnavailable(err error) bool {
	return IsErrorCode(err, ErrNetworkUnavailable)
}

func anyCode(err error, codes map[ErrorCode]bool) bool {
	for err != nil {
		var deobfErr *DeobfError
		if !errors.As(err, &deobfErr) {
			return false
		}
		if codes[deobfErr.Code] {
			return true
		}
		err = deobfErr.Wrapped
	}
	return false
}
