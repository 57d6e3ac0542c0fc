// Package pairing implements the request/approve/reject state machine for
// devices and mesh nodes, built on the atomic state store and the pure token
// lifecycle. Each registry funnels every mutating operation through a single
// FIFO critical section per store instance; list is the one lock-free read
// and may observe a not-yet-persisted pruning of expired pending entries.
package pairing

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/pairgate/internal/domain/models"
	"github.com/turtacn/pairgate/internal/domain/token"
	"github.com/turtacn/pairgate/internal/storage/statestore"
	"github.com/turtacn/pairgate/pkg/constants"
	"github.com/turtacn/pairgate/pkg/errors"
	"github.com/turtacn/pairgate/pkg/logger"
)

// DecisionEvent is broadcast to connected operator consoles when a pending
// request resolves, so every approver UI converges on the outcome.
type DecisionEvent struct {
	RequestID string                    `json:"requestId"`
	EntityID  string                    `json:"entityId"`
	Decision  constants.PairingDecision `json:"decision"`
	TS        int64                     `json:"ts"`
}

// nowMillis is the default clock: epoch milliseconds.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// DeviceRequestInput carries the caller-supplied fields of a device pairing
// request.
type DeviceRequestInput struct {
	DeviceID  string
	PublicKey string
	Role      string
	Roles     []string
	Scopes    []string
	RemoteIP  string
	Silent    bool
}

// DeviceRegistry is the pairing registry variant for interactive devices:
// multiple roles may be granted to one device over time, each role holding
// its own independently rotated and revoked token.
type DeviceRegistry struct {
	mu    sync.Mutex
	store *statestore.Store[*models.DevicePairingRequest, *models.PairedDevice]
	log   logger.Logger
	now   func() int64
}

// NewDeviceRegistry creates a device registry persisting under dir.
func NewDeviceRegistry(dir string, log logger.Logger) *DeviceRegistry {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &DeviceRegistry{
		store: statestore.New[*models.DevicePairingRequest, *models.PairedDevice](dir, log),
		log:   log.WithComponent("device-registry"),
		now:   nowMillis,
	}
}

// WithClock overrides the millisecond clock. Test hook.
func (r *DeviceRegistry) WithClock(now func() int64) *DeviceRegistry {
	r.now = now
	return r
}

// Request records a pending pairing request for the device, or returns the
// existing one unchanged when the device already has a request in flight.
// The second return value reports whether a new request was created.
func (r *DeviceRegistry) Request(ctx context.Context, input DeviceRequestInput) (*models.DevicePairingRequest, bool, error) {
	deviceID := strings.TrimSpace(input.DeviceID)
	if deviceID == "" {
		return nil, false, errors.ErrInvalidEntityID()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	nowMs := r.now()
	pending, paired := r.store.Load(ctx, nowMs)

	for _, existing := range pending {
		if existing.DeviceID == deviceID {
			return existing, false, nil
		}
	}

	_, isRepair := paired[deviceID]
	request := &models.DevicePairingRequest{
		RequestID: uuid.NewString(),
		DeviceID:  deviceID,
		PublicKey: input.PublicKey,
		Role:      strings.TrimSpace(input.Role),
		Roles:     token.NormalizeScopes(input.Roles),
		Scopes:    token.NormalizeScopes(input.Scopes),
		RemoteIP:  input.RemoteIP,
		Silent:    input.Silent,
		IsRepair:  isRepair,
		TS:        nowMs,
	}

	pending[request.RequestID] = request
	if err := r.store.Persist(ctx, pending, paired); err != nil {
		return nil, false, err
	}

	r.log.Info(ctx, "device pairing requested", logger.Fields{
		"request_id": request.RequestID,
		"device_id":  deviceID,
		"role":       request.Role,
		"is_repair":  isRepair,
	})
	return request, true, nil
}

// Approve resolves a pending request into a paired device. Re-approval
// merges with the existing record: roles and scopes accumulate, other roles'
// tokens stay untouched. When the request carried a role, a token for that
// role is always minted — approval is the explicit issuance path and is
// deliberately not idempotent (EnsureToken is the idempotent alternative).
//
// The returned record is the only place the raw token value appears; list
// responses are redacted.
func (r *DeviceRegistry) Approve(ctx context.Context, requestID string) (*models.PairedDevice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nowMs := r.now()
	pending, paired := r.store.Load(ctx, nowMs)

	request, ok := pending[requestID]
	if !ok {
		return nil, errors.ErrUnknownRequest(requestID)
	}

	device, exists := paired[request.DeviceID]
	if !exists {
		device = &models.PairedDevice{
			DeviceID:    request.DeviceID,
			Tokens:      make(map[string]*models.AuthToken),
			CreatedAtMs: nowMs,
		}
	}
	if device.Tokens == nil {
		device.Tokens = make(map[string]*models.AuthToken)
	}

	grantedRoles := request.Roles
	if request.Role != "" {
		grantedRoles = append(append([]string(nil), grantedRoles...), request.Role)
	}
	device.Roles = token.MergeScopeSets(device.Roles, grantedRoles)
	device.Scopes = token.MergeScopeSets(device.Scopes, request.Scopes)
	if request.PublicKey != "" {
		device.PublicKey = request.PublicKey
	}
	if request.RemoteIP != "" {
		device.RemoteIP = request.RemoteIP
	}
	device.ApprovedAtMs = nowMs

	if request.Role != "" {
		issued, err := token.Issue(device.Tokens[request.Role], request.Role, request.Scopes, nowMs)
		if err != nil {
			return nil, err
		}
		device.Tokens[request.Role] = issued
	}

	delete(pending, requestID)
	paired[request.DeviceID] = device
	if err := r.store.Persist(ctx, pending, paired); err != nil {
		return nil, err
	}

	r.log.Info(ctx, "device pairing approved", logger.Fields{
		"request_id": requestID,
		"device_id":  request.DeviceID,
		"roles":      device.Roles,
		"is_repair":  exists,
	})
	return device, nil
}

// Reject removes a pending request without touching paired state. Returns
// the device id the request belonged to.
func (r *DeviceRegistry) Reject(ctx context.Context, requestID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, paired := r.store.Load(ctx, r.now())

	request, ok := pending[requestID]
	if !ok {
		return "", errors.ErrUnknownRequest(requestID)
	}

	delete(pending, requestID)
	if err := r.store.Persist(ctx, pending, paired); err != nil {
		return "", err
	}

	r.log.Info(ctx, "device pairing rejected", logger.Fields{
		"request_id": requestID,
		"device_id":  request.DeviceID,
	})
	return request.DeviceID, nil
}

// RotateToken replaces the secret value of an existing role token, keeping
// its audit trail (CreatedAtMs survives). Rotation never originates a new
// role grant, and a revoked token stays revoked — re-granting the role takes
// a new approval.
//
// A nil scopes argument keeps the token's granted scopes; otherwise the
// grant is replaced with the normalized list.
func (r *DeviceRegistry) RotateToken(ctx context.Context, deviceID, role string, scopes []string) (*models.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nowMs := r.now()
	pending, paired := r.store.Load(ctx, nowMs)

	device, ok := paired[deviceID]
	if !ok {
		return nil, errors.ErrUnknownEntity(deviceID)
	}
	existing := device.Tokens[role]
	if existing == nil {
		return nil, errors.ErrUnknownRole(deviceID, role)
	}
	if existing.Revoked() {
		return nil, errors.ErrTokenRevoked(deviceID, role)
	}

	newScopes := existing.Scopes
	if scopes != nil {
		newScopes = scopes
	}
	issued, err := token.Issue(existing, role, newScopes, nowMs)
	if err != nil {
		return nil, err
	}
	device.Tokens[role] = issued

	if err := r.store.Persist(ctx, pending, paired); err != nil {
		return nil, err
	}

	r.log.Info(ctx, "device token rotated", logger.Fields{
		"device_id": deviceID,
		"role":      role,
	})
	return issued, nil
}

// RevokeToken permanently invalidates a role's token, keeping the record for
// audit. Revoking an already-revoked token is a no-op that returns the
// stored record unchanged. Other roles' tokens on the same device are not
// affected.
func (r *DeviceRegistry) RevokeToken(ctx context.Context, deviceID, role string) (*models.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nowMs := r.now()
	pending, paired := r.store.Load(ctx, nowMs)

	device, ok := paired[deviceID]
	if !ok {
		return nil, errors.ErrUnknownEntity(deviceID)
	}
	existing := device.Tokens[role]
	if existing == nil {
		return nil, errors.ErrUnknownRole(deviceID, role)
	}
	if existing.Revoked() {
		return existing, nil
	}

	revoked := nowMs
	existing.RevokedAtMs = &revoked

	if err := r.store.Persist(ctx, pending, paired); err != nil {
		return nil, err
	}

	r.log.Info(ctx, "device token revoked", logger.Fields{
		"device_id": deviceID,
		"role":      role,
	})
	return existing, nil
}

// EnsureToken returns the existing role token unchanged when it is unrevoked
// and already covers the requested scopes; otherwise it mints a fresh value.
// Persisting happens only when a new token was actually issued. A revoked
// token is never resurrected by ensure.
func (r *DeviceRegistry) EnsureToken(ctx context.Context, deviceID, role string, scopes []string) (*models.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nowMs := r.now()
	pending, paired := r.store.Load(ctx, nowMs)

	device, ok := paired[deviceID]
	if !ok {
		return nil, errors.ErrUnknownEntity(deviceID)
	}
	existing := device.Tokens[role]
	if existing.Revoked() {
		return nil, errors.ErrTokenRevoked(deviceID, role)
	}

	ensured, issued, err := token.EnsureOrReuse(existing, role, scopes, nowMs)
	if err != nil {
		return nil, err
	}
	if !issued {
		return ensured, nil
	}

	if device.Tokens == nil {
		device.Tokens = make(map[string]*models.AuthToken)
	}
	device.Tokens[role] = ensured
	device.Roles = token.MergeScopeSets(device.Roles, []string{role})

	if err := r.store.Persist(ctx, pending, paired); err != nil {
		return nil, err
	}

	r.log.Info(ctx, "device token ensured", logger.Fields{
		"device_id": deviceID,
		"role":      role,
	})
	return ensured, nil
}

// VerifyToken checks a presented (deviceID, token, role, scopes) combination
// and stamps LastUsedAtMs on success. The stamp is a read-then-write, which
// is why verification runs inside the same critical section as rotate and
// revoke. Failure reasons are exact discriminants; the expected token value
// never leaves the store.
func (r *DeviceRegistry) VerifyToken(ctx context.Context, deviceID, presented, role string, scopes []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	nowMs := r.now()
	pending, paired := r.store.Load(ctx, nowMs)

	device, ok := paired[deviceID]
	if !ok {
		return errors.ErrUnknownEntity(deviceID)
	}

	entry := device.Tokens[role]
	if err := token.Verify(entry, presented, scopes, deviceID, role); err != nil {
		return err
	}

	used := nowMs
	entry.LastUsedAtMs = &used
	return r.store.Persist(ctx, pending, paired)
}

// List returns a snapshot of pending requests (newest first) and paired
// devices (most recently approved first). It takes no lock: the snapshot may
// contain a request that is logically expired but not yet pruned on disk,
// which is documented staleness, not a correctness bug. Callers redact token
// values before transmission.
func (r *DeviceRegistry) List(ctx context.Context) ([]*models.DevicePairingRequest, []*models.PairedDevice) {
	pending, paired := r.store.Load(ctx, r.now())

	requests := make([]*models.DevicePairingRequest, 0, len(pending))
	for _, request := range pending {
		requests = append(requests, request)
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].TS > requests[j].TS
	})

	devices := make([]*models.PairedDevice, 0, len(paired))
	for _, device := range paired {
		devices = append(devices, device)
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].ApprovedAtMs > devices[j].ApprovedAtMs
	})

	return requests, devices
}

// UpdateMetadata merges non-nil patch fields into the paired device. Unknown
// devices are a no-op, and tokens are never touched by a metadata patch.
func (r *DeviceRegistry) UpdateMetadata(ctx context.Context, deviceID string, patch models.DeviceMetadataPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, paired := r.store.Load(ctx, r.now())

	device, ok := paired[deviceID]
	if !ok {
		return nil
	}

	if patch.PublicKey != nil {
		device.PublicKey = *patch.PublicKey
	}
	if patch.DisplayName != nil {
		device.DisplayName = *patch.DisplayName
	}
	if patch.RemoteIP != nil {
		device.RemoteIP = *patch.RemoteIP
	}

	return r.store.Persist(ctx, pending, paired)
}

//Personal.AI order the ending
