// Package errors defines custom error types and error handling utilities for
// the PairGate pairing gateway. Every structural or validation failure the
// registries can produce is represented by a typed error carrying a
// machine-readable code, so callers (the RPC layer, the CLI) decide
// user-visible messaging without string matching.
package errors

import (
	"fmt"
	"net/http"

	"github.com/turtacn/pairgate/pkg/constants"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// GateError represents a structured error with additional metadata
type GateError interface {
	error

	// Code returns the machine-readable error code
	Code() constants.ErrorCode

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) GateError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) GateError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

// baseError is the internal implementation of GateError
type baseError struct {
	code        constants.ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

// Error implements the error interface
func (e *baseError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.description
}

// Code returns the machine-readable error code
func (e *baseError) Code() constants.ErrorCode {
	return e.code
}

// HTTPStatus returns the HTTP status code
func (e *baseError) HTTPStatus() int {
	return e.httpStatus
}

// Description returns the error description
func (e *baseError) Description() string {
	return e.description
}

// Unwrap returns the underlying cause error
func (e *baseError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause error to the error chain
func (e *baseError) WithCause(cause error) GateError {
	e.cause = cause
	return e
}

// WithMetadata adds additional context metadata
func (e *baseError) WithMetadata(key string, value interface{}) GateError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

// Metadata returns all metadata
func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

// ================================================================================
// Error Constructor
// ================================================================================

// NewError creates a new GateError with the specified parameters
func NewError(code constants.ErrorCode, httpStatus int, description string, message string) GateError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Pairing Error Constructors
// ================================================================================

// ErrUnknownRequest creates an unknown_request error
func ErrUnknownRequest(requestID string) GateError {
	return NewError(
		constants.ErrCodeUnknownRequest,
		http.StatusNotFound,
		"No pending pairing request exists with the given id. It may have been approved, rejected, or expired.",
		fmt.Sprintf("unknown pairing request: %s", requestID),
	).WithMetadata("request_id", requestID)
}

// ErrUnknownEntity creates an unknown_entity error
func ErrUnknownEntity(entityID string) GateError {
	return NewError(
		constants.ErrCodeUnknownEntity,
		http.StatusNotFound,
		"The entity is not paired.",
		fmt.Sprintf("unknown entity: %s", entityID),
	).WithMetadata("entity_id", entityID)
}

// ErrUnknownRole creates an unknown_role error
func ErrUnknownRole(entityID, role string) GateError {
	return NewError(
		constants.ErrCodeUnknownRole,
		http.StatusNotFound,
		"The entity holds no token for the given role. Rotation and revocation require a prior issuance.",
		fmt.Sprintf("entity %s has no token for role %q", entityID, role),
	).WithMetadata("entity_id", entityID).WithMetadata("role", role)
}

// ErrInvalidEntityID creates an invalid_entity_id error
func ErrInvalidEntityID() GateError {
	return NewError(
		constants.ErrCodeInvalidEntityID,
		http.StatusBadRequest,
		"The entity id is empty after trimming whitespace.",
		"invalid entity id",
	)
}

// ErrInvalidRequest creates an invalid_request error
func ErrInvalidRequest(message string) GateError {
	return NewError(
		constants.ErrCodeInvalidRequest,
		http.StatusBadRequest,
		"The request is missing a required parameter or includes an invalid parameter value.",
		message,
	)
}

// ErrInternal creates an internal_error error
func ErrInternal(message string) GateError {
	return NewError(
		constants.ErrCodeInternal,
		http.StatusInternalServerError,
		"The gateway encountered an unexpected condition that prevented it from fulfilling the request.",
		message,
	)
}

// ================================================================================
// Verification Error Constructors
// ================================================================================

// Verification failures carry one of four exact discriminants, in the priority
// order the verifier checks them: role_missing, token_revoked, token_mismatch,
// scope_mismatch. The transport layer logs the discriminant without ever
// learning the expected token value.

// ErrRoleMissing creates a role_missing verification error
func ErrRoleMissing(entityID, role string) GateError {
	return NewError(
		constants.ErrCodeRoleMissing,
		http.StatusUnauthorized,
		"The entity was never granted a token for this role.",
		fmt.Sprintf("no token for role %q on entity %s", role, entityID),
	).WithMetadata("entity_id", entityID).WithMetadata("role", role)
}

// ErrTokenRevoked creates a token_revoked verification error
func ErrTokenRevoked(entityID, role string) GateError {
	return NewError(
		constants.ErrCodeTokenRevoked,
		http.StatusUnauthorized,
		"The token for this role has been permanently revoked.",
		fmt.Sprintf("token revoked for role %q on entity %s", role, entityID),
	).WithMetadata("entity_id", entityID).WithMetadata("role", role)
}

// ErrTokenMismatch creates a token_mismatch verification error
func ErrTokenMismatch(entityID, role string) GateError {
	return NewError(
		constants.ErrCodeTokenMismatch,
		http.StatusUnauthorized,
		"The presented token value does not match the stored token.",
		fmt.Sprintf("token mismatch for role %q on entity %s", role, entityID),
	).WithMetadata("entity_id", entityID).WithMetadata("role", role)
}

// ErrScopeMismatch creates a scope_mismatch verification error
func ErrScopeMismatch(entityID, role string, requested []string) GateError {
	return NewError(
		constants.ErrCodeScopeMismatch,
		http.StatusForbidden,
		"The requested scopes are not contained in the scopes granted to the token.",
		fmt.Sprintf("scope mismatch for role %q on entity %s", role, entityID),
	).WithMetadata("entity_id", entityID).
		WithMetadata("role", role).
		WithMetadata("requested_scopes", requested)
}

// ================================================================================
// Error Validation Utilities
// ================================================================================

// IsGateError checks if an error is a GateError
func IsGateError(err error) bool {
	_, ok := err.(GateError)
	return ok
}

// AsGateError attempts to cast an error to GateError
func AsGateError(err error) (GateError, bool) {
	gateErr, ok := err.(GateError)
	return gateErr, ok
}

// CodeOf returns the error code of a GateError, or internal_error for any
// other error.
func CodeOf(err error) constants.ErrorCode {
	if gateErr, ok := AsGateError(err); ok {
		return gateErr.Code()
	}
	return constants.ErrCodeInternal
}

// IsVerifyError checks if an error carries one of the verification
// discriminants.
func IsVerifyError(err error) bool {
	switch CodeOf(err) {
	case constants.ErrCodeRoleMissing, constants.ErrCodeTokenRevoked,
		constants.ErrCodeTokenMismatch, constants.ErrCodeScopeMismatch,
		constants.ErrCodeUnknownEntity:
		return true
	}
	return false
}

// WrapError wraps a generic error into a GateError
func WrapError(err error, code constants.ErrorCode, message string) GateError {
	var httpStatus int

	switch code {
	case constants.ErrCodeInvalidRequest, constants.ErrCodeInvalidEntityID:
		httpStatus = http.StatusBadRequest
	case constants.ErrCodeUnknownRequest, constants.ErrCodeUnknownEntity, constants.ErrCodeUnknownRole:
		httpStatus = http.StatusNotFound
	case constants.ErrCodeRoleMissing, constants.ErrCodeTokenRevoked, constants.ErrCodeTokenMismatch:
		httpStatus = http.StatusUnauthorized
	case constants.ErrCodeScopeMismatch:
		httpStatus = http.StatusForbidden
	default:
		httpStatus = http.StatusInternalServerError
	}

	return NewError(code, httpStatus, err.Error(), message).WithCause(err)
}

// ================================================================================
// Error Response Builder
// ================================================================================

// ErrorResponse represents the JSON structure for error responses
type ErrorResponse struct {
	Error            string                 `json:"error"`
	ErrorDescription string                 `json:"error_description"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts a GateError to an ErrorResponse
func ToErrorResponse(err GateError) *ErrorResponse {
	return &ErrorResponse{
		Error:            string(err.Code()),
		ErrorDescription: err.Description(),
		Metadata:         err.Metadata(),
	}
}

// ToGenericErrorResponse converts any error to an ErrorResponse
func ToGenericErrorResponse(err error) *ErrorResponse {
	if gateErr, ok := AsGateError(err); ok {
		return ToErrorResponse(gateErr)
	}

	// Fallback to generic server error
	return &ErrorResponse{
		Error:            string(constants.ErrCodeInternal),
		ErrorDescription: "An unexpected error occurred",
	}
}

//Personal.AI order the ending
