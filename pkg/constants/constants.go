// Package constants defines shared constants for the PairGate pairing gateway.
// This includes error codes, pairing states, persisted file names, and default
// values used across the registry, storage, and transport layers.
package constants

import "time"

// ================================================================================
// Error Codes
// ================================================================================

// ErrorCode is a machine-readable error code returned to callers.
type ErrorCode string

const (
	// ErrCodeUnknownRequest indicates the referenced pending request does not exist.
	ErrCodeUnknownRequest ErrorCode = "unknown_request"

	// ErrCodeUnknownEntity indicates the referenced device or node is not paired.
	ErrCodeUnknownEntity ErrorCode = "unknown_entity"

	// ErrCodeUnknownRole indicates the paired entity holds no token for the role.
	ErrCodeUnknownRole ErrorCode = "unknown_role"

	// ErrCodeRoleMissing indicates verification was attempted for a role the
	// entity was never granted.
	ErrCodeRoleMissing ErrorCode = "role_missing"

	// ErrCodeTokenRevoked indicates the presented token has been revoked.
	ErrCodeTokenRevoked ErrorCode = "token_revoked"

	// ErrCodeTokenMismatch indicates the presented token value did not match.
	ErrCodeTokenMismatch ErrorCode = "token_mismatch"

	// ErrCodeScopeMismatch indicates the requested scopes exceed the granted set.
	ErrCodeScopeMismatch ErrorCode = "scope_mismatch"

	// ErrCodeInvalidEntityID indicates an empty or whitespace-only entity id.
	ErrCodeInvalidEntityID ErrorCode = "invalid_entity_id"

	// ErrCodeInvalidRequest indicates a malformed request from the caller.
	ErrCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "internal_error"
)

// ================================================================================
// Pairing States and Decisions
// ================================================================================

// PairingDecision is the terminal outcome of a pending request, broadcast to
// connected operator consoles.
type PairingDecision string

const (
	DecisionApproved PairingDecision = "approved"
	DecisionRejected PairingDecision = "rejected"
)

// EntityKind distinguishes the two registry variants.
type EntityKind string

const (
	EntityKindDevice EntityKind = "device"
	EntityKindNode   EntityKind = "node"
)

// ================================================================================
// Persistence Defaults
// ================================================================================

const (
	// PendingRequestTTL is how long a pending pairing request stays valid.
	// Pruning is lazy: entries past the TTL are dropped on the next load,
	// never by a background sweep.
	PendingRequestTTL = 5 * time.Minute

	// TokenByteLength is the number of random bytes in a token secret.
	// 16 bytes gives 128 bits of entropy, rendered as hex without separators.
	TokenByteLength = 16

	// StateFileMode is the permission set for every persisted state file.
	StateFileMode = 0o600

	// StateDirMode is the permission set for state directories.
	StateDirMode = 0o700

	// PendingFileName and PairedFileName are the two documents backing a
	// pairing store.
	PendingFileName = "pending.json"
	PairedFileName  = "paired.json"

	// DeviceStateDir and NodeStateDir are the per-variant subdirectories
	// under the state root.
	DeviceStateDir = "devices"
	NodeStateDir   = "nodes"

	// IdentityStateDir and CredentialFileName locate the client-side
	// credential cache.
	IdentityStateDir   = "identity"
	CredentialFileName = "device-auth.json"

	// CredentialCacheVersion is the schema version written into the
	// client-side credential cache file.
	CredentialCacheVersion = 1
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is the type used for request-scoped context values.
type ContextKey string

const (
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyEntityID  ContextKey = "entity_id"
	ContextKeyRole      ContextKey = "role"
)

//Personal.AI order the ending
