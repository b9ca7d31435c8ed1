package domain

import (
	"errors"
	"fmt"
)

// Error codes carried by DomainError. The first group covers reading
// input, the second the structuring engine, the last reporting.
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeFileNotFound = "FILE_NOT_FOUND"
	ErrCodeParseError   = "PARSE_ERROR"
	ErrCodeConfigError  = "CONFIG_ERROR"

	ErrCodeAnalysisError    = "ANALYSIS_ERROR"
	ErrCodeStructureError   = "STRUCTURE_ERROR"
	ErrCodeNondeterministic = "NONDETERMINISTIC"

	ErrCodeOutputError       = "OUTPUT_ERROR"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
)

// DomainError is a coded error crossing the service boundary
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e DomainError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
}

func (e DomainError) Unwrap() error { return e.Cause }

// NewDomainError builds a DomainError with the given code
func NewDomainError(code, message string, cause error) error {
	return DomainError{Code: code, Message: message, Cause: cause}
}

// ErrorCode returns the code of the outermost DomainError in err's chain,
// or "" when there is none.
func ErrorCode(err error) string {
	var de DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Input

func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

// NewValidationError is NewInvalidInputError without a cause
func NewValidationError(message string) error {
	return NewDomainError(ErrCodeInvalidInput, message, nil)
}

func NewFileNotFoundError(path string, cause error) error {
	return NewDomainError(ErrCodeFileNotFound, "file not found: "+path, cause)
}

// NewParseError reports a graph document that cannot be decoded
func NewParseError(file string, cause error) error {
	return NewDomainError(ErrCodeParseError, "failed to parse graph document: "+file, cause)
}

func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

// Structuring

func NewAnalysisError(message string, cause error) error {
	return NewDomainError(ErrCodeAnalysisError, message, cause)
}

// NewStructureError reports a method whose graph could not be structured
func NewStructureError(method string, cause error) error {
	return NewDomainError(ErrCodeStructureError, "failed to structure method: "+method, cause)
}

// NewNondeterministicError reports two structuring runs of one method that
// produced different source.
func NewNondeterministicError(method string) error {
	return NewDomainError(ErrCodeNondeterministic, "structuring is not deterministic for method: "+method, nil)
}

// Reporting

func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

func NewUnsupportedFormatError(format string) error {
	return NewDomainError(ErrCodeUnsupportedFormat, "unsupported format: "+format, nil)
}
