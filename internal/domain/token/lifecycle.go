// Package token implements the pure token lifecycle shared by the device and
// node pairing registries: issuance, rotation, revocation bookkeeping, and
// verification with scope containment. The package performs no I/O; callers
// own persistence and locking.
package token

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/turtacn/pairgate/internal/domain/models"
	"github.com/turtacn/pairgate/pkg/constants"
	"github.com/turtacn/pairgate/pkg/errors"
)

// NewValue returns a fresh opaque token secret: 128 bits from the system
// CSPRNG rendered as lowercase hex without separators. Collision probability
// is negligible at this length.
func NewValue() (string, error) {
	buf := make([]byte, constants.TokenByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.ErrInternal("failed to read random source").WithCause(err)
	}
	return hex.EncodeToString(buf), nil
}

// NormalizeScopes trims, de-duplicates, and sorts a scope list. Empty entries
// are dropped. The result is never nil.
func NormalizeScopes(scopes []string) []string {
	seen := make(map[string]struct{}, len(scopes))
	normalized := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" {
			continue
		}
		if _, dup := seen[scope]; dup {
			continue
		}
		seen[scope] = struct{}{}
		normalized = append(normalized, scope)
	}
	sort.Strings(normalized)
	return normalized
}

// ScopesAllow reports whether a requested scope set is contained in an
// allowed set. An empty request is always allowed: asking for no scopes means
// no restriction check. A non-empty request against an empty grant is always
// denied.
func ScopesAllow(requested, allowed []string) bool {
	if len(requested) == 0 {
		return true
	}
	granted := make(map[string]struct{}, len(allowed))
	for _, scope := range allowed {
		granted[scope] = struct{}{}
	}
	for _, scope := range requested {
		if _, ok := granted[scope]; !ok {
			return false
		}
	}
	return true
}

// Issue mints a token for (role, scopes), always assigning a fresh secret
// value. When an unrevoked existing token is supplied its CreatedAtMs and
// LastUsedAtMs survive and RotatedAtMs is stamped; otherwise the token starts
// a new audit trail at nowMs. A revoked existing token is ignored entirely —
// revocation is permanent and never feeds a new issuance.
func Issue(existing *models.AuthToken, role string, scopes []string, nowMs int64) (*models.AuthToken, error) {
	value, err := NewValue()
	if err != nil {
		return nil, err
	}

	issued := &models.AuthToken{
		Token:       value,
		Role:        role,
		Scopes:      NormalizeScopes(scopes),
		CreatedAtMs: nowMs,
	}

	if existing != nil && !existing.Revoked() {
		issued.CreatedAtMs = existing.CreatedAtMs
		issued.LastUsedAtMs = existing.LastUsedAtMs
		rotated := nowMs
		issued.RotatedAtMs = &rotated
	}

	return issued, nil
}

// EnsureOrReuse returns the existing token unchanged when it is unrevoked and
// its granted scopes already cover the requested ones; the second return
// value reports whether a new token was issued. Callers persist only on
// issuance, so the idempotent path causes no timestamp churn.
func EnsureOrReuse(existing *models.AuthToken, role string, requestedScopes []string, nowMs int64) (*models.AuthToken, bool, error) {
	requested := NormalizeScopes(requestedScopes)
	if existing != nil && !existing.Revoked() && ScopesAllow(requested, existing.Scopes) {
		return existing, false, nil
	}
	issued, err := Issue(existing, role, requested, nowMs)
	if err != nil {
		return nil, false, err
	}
	return issued, true, nil
}

// Verify checks a presented token value against the stored entry. Failures
// are reported with exact discriminants in priority order: role missing,
// token revoked, token mismatch, scope mismatch. The value comparison is
// constant-time.
func Verify(entry *models.AuthToken, presented string, requestedScopes []string, entityID, role string) error {
	if entry == nil {
		return errors.ErrRoleMissing(entityID, role)
	}
	if entry.Revoked() {
		return errors.ErrTokenRevoked(entityID, role)
	}
	if subtle.ConstantTimeCompare([]byte(entry.Token), []byte(presented)) != 1 {
		return errors.ErrTokenMismatch(entityID, role)
	}
	if !ScopesAllow(requestedScopes, entry.Scopes) {
		return errors.ErrScopeMismatch(entityID, role, requestedScopes)
	}
	return nil
}

// MergeScopeSets returns the sorted union of two scope lists.
func MergeScopeSets(a, b []string) []string {
	return NormalizeScopes(append(append([]string(nil), a...), b...))
}

//Personal.AI order the ending
