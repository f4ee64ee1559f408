package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// EmptyOracleResponse indicates the oracle returned nothing for a non-empty input
	EmptyOracleResponse ErrorCode = "EMPTY_ORACLE_RESPONSE"
	// OracleUnavailable indicates the oracle transport is not reachable
	OracleUnavailable ErrorCode = "ORACLE_UNAVAILABLE"
	// SymbolNotFound indicates a symbol is missing from the repository
	SymbolNotFound ErrorCode = "SYMBOL_NOT_FOUND"
	// CycleDetected indicates a dependency cycle was hit during traversal
	CycleDetected ErrorCode = "CYCLE_DETECTED"
	// KindMismatch indicates a generated item matched by name but not by syntactic kind
	KindMismatch ErrorCode = "KIND_MISMATCH"
	// ExtractFailed indicates generated code yielded no matching item
	ExtractFailed ErrorCode = "EXTRACT_FAILED"
	// ParseFailed indicates the external parser output could not be decoded
	ParseFailed ErrorCode = "PARSE_FAILED"
	// CacheFailed indicates a persistent cache read/write failed
	CacheFailed ErrorCode = "CACHE_FAILED"
	// RepoNotFound indicates the repository path or clone target does not exist
	RepoNotFound ErrorCode = "REPO_NOT_FOUND"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// XlateError represents an xlate error with a stable code and optional cause
type XlateError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

// New creates a new XlateError
func New(code ErrorCode, message string) *XlateError {
	return &XlateError{Code: code, Message: message}
}

// Wrap creates a new XlateError with an underlying cause
func Wrap(code ErrorCode, message string, cause error) *XlateError {
	return &XlateError{Code: code, Message: message, cause: cause}
}

// Newf creates a new XlateError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *XlateError {
	return &XlateError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface
func (e *XlateError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *XlateError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *XlateError) WithDetails(details interface{}) *XlateError {
	e.Details = details
	return e
}

// CodeOf extracts the ErrorCode from err, or InternalError when err carries none
func CodeOf(err error) ErrorCode {
	var xe *XlateError
	if errors.As(err, &xe) {
		return xe.Code
	}
	return InternalError
}

// Is reports whether err carries the given code
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
