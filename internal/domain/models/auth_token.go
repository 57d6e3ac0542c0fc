// Package models defines the domain models for the PairGate pairing gateway:
// pending pairing requests, paired entities, and the auth tokens that back an
// approved pairing.
package models

// AuthToken represents a rotating, scope-limited bearer credential issued to a
// paired device for a single role. The token value is an opaque
// cryptographically-random string; it carries no structure and is compared by
// value only.
//
// Exactly one live (non-revoked) token value is valid per (entity, role) at a
// time. Rotation replaces the value but preserves CreatedAtMs; revocation is
// permanent and keeps the record for audit.
type AuthToken struct {
	// Token is the opaque secret value. Redacted from list responses.
	Token string `json:"token"`

	// Role is the grant level this token authenticates (e.g. "admin").
	Role string `json:"role"`

	// Scopes is the sorted, de-duplicated list of capability strings
	// granted to this token.
	Scopes []string `json:"scopes"`

	// CreatedAtMs is the epoch-millisecond timestamp of first issuance.
	// Immutable once set, including across rotations.
	CreatedAtMs int64 `json:"createdAtMs"`

	// RotatedAtMs is set each time the secret value is replaced.
	RotatedAtMs *int64 `json:"rotatedAtMs,omitempty"`

	// RevokedAtMs marks permanent invalidation. A revoked token is never
	// reactivated.
	RevokedAtMs *int64 `json:"revokedAtMs,omitempty"`

	// LastUsedAtMs is stamped on every successful verification.
	LastUsedAtMs *int64 `json:"lastUsedAtMs,omitempty"`
}

// Revoked reports whether the token has been permanently invalidated.
func (t *AuthToken) Revoked() bool {
	return t != nil && t.RevokedAtMs != nil
}

// Clone returns a deep copy of the token.
func (t *AuthToken) Clone() *AuthToken {
	if t == nil {
		return nil
	}
	clone := *t
	clone.Scopes = append([]string(nil), t.Scopes...)
	clone.RotatedAtMs = cloneInt64(t.RotatedAtMs)
	clone.RevokedAtMs = cloneInt64(t.RevokedAtMs)
	clone.LastUsedAtMs = cloneInt64(t.LastUsedAtMs)
	return &clone
}

// TokenSummary is the redacted view of an AuthToken returned from list
// responses. The secret value is stripped; only role, scopes, and lifecycle
// timestamps remain.
type TokenSummary struct {
	Role         string   `json:"role"`
	Scopes       []string `json:"scopes"`
	CreatedAtMs  int64    `json:"createdAtMs"`
	RotatedAtMs  *int64   `json:"rotatedAtMs,omitempty"`
	RevokedAtMs  *int64   `json:"revokedAtMs,omitempty"`
	LastUsedAtMs *int64   `json:"lastUsedAtMs,omitempty"`
}

// Summarize strips the secret value from the token.
func (t *AuthToken) Summarize() *TokenSummary {
	if t == nil {
		return nil
	}
	return &TokenSummary{
		Role:         t.Role,
		Scopes:       append([]string(nil), t.Scopes...),
		CreatedAtMs:  t.CreatedAtMs,
		RotatedAtMs:  cloneInt64(t.RotatedAtMs),
		RevokedAtMs:  cloneInt64(t.RevokedAtMs),
		LastUsedAtMs: cloneInt64(t.LastUsedAtMs),
	}
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

//Personal.AI order the ending
