package types

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an engine failure.
type ErrorCode string

const (
	// CodeInvalidCommitValue marks a commit value outside [-1, 1].
	// Rejected locally, before any store I/O.
	CodeInvalidCommitValue ErrorCode = "INVALID_COMMIT_VALUE"

	// CodeStoreUnavailable marks a failed or timed-out store operation.
	// Always propagated, never silently defaulted.
	CodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// CodePermutationSpaceTooLarge marks a multivariate expansion whose
	// permutation count exceeds the safety ceiling.
	CodePermutationSpaceTooLarge ErrorCode = "PERMUTATION_SPACE_TOO_LARGE"

	// CodeRenameConflict marks a partially failed test rename.
	CodeRenameConflict ErrorCode = "RENAME_CONFLICT"

	// CodeKeyNotFound marks an absent key. Internal to the selection and
	// commit flows; callers normally never see it.
	CodeKeyNotFound ErrorCode = "KEY_NOT_FOUND"
)

// Error is a structured error with a code, message, and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates an Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError creates an Error with the given code, message, and cause.
func WrapError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// GetCode extracts the error code from err, or "" if err carries none.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether err (or any error it wraps) carries code.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// IsStoreUnavailable reports whether err is a store failure.
func IsStoreUnavailable(err error) bool {
	return HasCode(err, CodeStoreUnavailable)
}

// IsKeyNotFound reports whether err marks an absent key.
func IsKeyNotFound(err error) bool {
	return HasCode(err, CodeKeyNotFound)
}

// RenameConflict reports a partially completed test rename. Keys listed in
// Failed stayed under the old test id; every other key moved.
type RenameConflict struct {
	OldID  string
	NewID  string
	Failed []string
}

// Error implements the error interface.
func (e *RenameConflict) Error() string {
	return fmt.Sprintf("[%s] rename %q -> %q left %d key(s) unmoved",
		CodeRenameConflict, e.OldID, e.NewID, len(e.Failed))
}

// As allows errors.As to match a RenameConflict against *types.Error, so
// GetCode and HasCode see CodeRenameConflict.
func (e *RenameConflict) As(target any) bool {
	if t, ok := target.(**Error); ok {
		*t = &Error{Code: CodeRenameConflict, Message: e.Error()}
		return true
	}
	return false
}
