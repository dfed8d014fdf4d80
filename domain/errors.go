package domain

import "fmt"

// Error codes for domain errors
const (
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeFileNotFound    = "FILE_NOT_FOUND"
	ErrCodeParseError      = "PARSE_ERROR"
	ErrCodeAnalysisError   = "ANALYSIS_ERROR"
	ErrCodeConfigError     = "CONFIG_ERROR"
	ErrCodeOutputError     = "OUTPUT_ERROR"
	ErrCodeExternalService = "EXTERNAL_SERVICE_ERROR"
)

// DomainError is the error type shared across the application layers
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError creates a DomainError with an explicit code
func NewDomainError(code, message string, cause error) error {
	return DomainError{Code: code, Message: message, Cause: cause}
}

// NewInvalidInputError creates an error for invalid request input
func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

// NewFileNotFoundError creates an error for a missing file or directory
func NewFileNotFoundError(path string, cause error) error {
	return NewDomainError(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path), cause)
}

// NewParseError creates an error for an unparsable source file
func NewParseError(path string, cause error) error {
	return NewDomainError(ErrCodeParseError, fmt.Sprintf("failed to parse: %s", path), cause)
}

// NewAnalysisError creates an error for a failed analysis run
func NewAnalysisError(message string, cause error) error {
	return NewDomainError(ErrCodeAnalysisError, message, cause)
}

// NewConfigError creates an error for invalid configuration
func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

// NewOutputError creates an error for output writing failures
func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

// NewExternalServiceError creates an error for review collaborator failures
func NewExternalServiceError(message string, cause error) error {
	return NewDomainError(ErrCodeExternalService, message, cause)
}
