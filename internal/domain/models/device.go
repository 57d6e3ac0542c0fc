package models

// DevicePairingRequest is a pending request from an interactive device asking
// to be paired. At most one pending request exists per device id; a duplicate
// request returns the existing record unchanged.
//
// Requests are short-lived: entries older than the pending TTL are dropped
// lazily the next time the store is loaded.
type DevicePairingRequest struct {
	// RequestID is the opaque unique id generated at creation. It is the
	// primary key for approve/reject.
	RequestID string `json:"requestId"`

	// DeviceID is the caller-supplied device identity, trimmed, non-empty.
	DeviceID string `json:"deviceId"`

	// PublicKey is stored opaquely; the handshake that produced it is not
	// this gateway's concern.
	PublicKey string `json:"publicKey,omitempty"`

	// Role is the single role whose token will be minted on approval.
	Role string `json:"role,omitempty"`

	// Roles and Scopes are the requested grant, merged additively into the
	// paired record on approval.
	Roles  []string `json:"roles,omitempty"`
	Scopes []string `json:"scopes,omitempty"`

	RemoteIP string `json:"remoteIp,omitempty"`
	Silent   bool   `json:"silent,omitempty"`

	// IsRepair is true when the device id already existed in the paired map
	// at request time.
	IsRepair bool `json:"isRepair,omitempty"`

	// TS is the creation epoch-millisecond timestamp.
	TS int64 `json:"ts"`
}

// Timestamp returns the creation time in epoch milliseconds. Used by the
// state store for lazy TTL pruning.
func (r *DevicePairingRequest) Timestamp() int64 {
	return r.TS
}

// PairedDevice is an approved device with its accumulated grants. Re-approval
// merges, never replaces: roles and scopes are unions of everything ever
// granted, and each role keeps its own independent token lifecycle.
type PairedDevice struct {
	DeviceID  string `json:"deviceId"`
	PublicKey string `json:"publicKey,omitempty"`

	DisplayName string `json:"displayName,omitempty"`
	RemoteIP    string `json:"remoteIp,omitempty"`

	Roles  []string `json:"roles"`
	Scopes []string `json:"scopes"`

	// Tokens maps role -> token. A token is only minted when the approved
	// request carried a role.
	Tokens map[string]*AuthToken `json:"tokens,omitempty"`

	// CreatedAtMs is the first approval time, preserved across re-pairing.
	CreatedAtMs int64 `json:"createdAtMs"`

	// ApprovedAtMs is the most recent approval time.
	ApprovedAtMs int64 `json:"approvedAtMs"`
}

// Clone returns a deep copy of the device record.
func (d *PairedDevice) Clone() *PairedDevice {
	if d == nil {
		return nil
	}
	clone := *d
	clone.Roles = append([]string(nil), d.Roles...)
	clone.Scopes = append([]string(nil), d.Scopes...)
	if d.Tokens != nil {
		clone.Tokens = make(map[string]*AuthToken, len(d.Tokens))
		for role, tok := range d.Tokens {
			clone.Tokens[role] = tok.Clone()
		}
	}
	return &clone
}

// PairedDeviceSummary is the redacted list view of a paired device: token
// secrets are stripped, everything else carries over.
type PairedDeviceSummary struct {
	DeviceID     string                   `json:"deviceId"`
	PublicKey    string                   `json:"publicKey,omitempty"`
	DisplayName  string                   `json:"displayName,omitempty"`
	RemoteIP     string                   `json:"remoteIp,omitempty"`
	Roles        []string                 `json:"roles"`
	Scopes       []string                 `json:"scopes"`
	Tokens       map[string]*TokenSummary `json:"tokens,omitempty"`
	CreatedAtMs  int64                    `json:"createdAtMs"`
	ApprovedAtMs int64                    `json:"approvedAtMs"`
}

// Summarize redacts token secrets for list responses. Raw token values are
// returned only immediately after approve, rotate, or ensure.
func (d *PairedDevice) Summarize() *PairedDeviceSummary {
	if d == nil {
		return nil
	}
	summary := &PairedDeviceSummary{
		DeviceID:     d.DeviceID,
		PublicKey:    d.PublicKey,
		DisplayName:  d.DisplayName,
		RemoteIP:     d.RemoteIP,
		Roles:        append([]string(nil), d.Roles...),
		Scopes:       append([]string(nil), d.Scopes...),
		CreatedAtMs:  d.CreatedAtMs,
		ApprovedAtMs: d.ApprovedAtMs,
	}
	if d.Tokens != nil {
		summary.Tokens = make(map[string]*TokenSummary, len(d.Tokens))
		for role, tok := range d.Tokens {
			summary.Tokens[role] = tok.Summarize()
		}
	}
	return summary
}

// DeviceMetadataPatch carries the patchable device fields. Nil fields are
// left untouched; tokens are never affected by a metadata patch.
type DeviceMetadataPatch struct {
	PublicKey   *string `json:"publicKey,omitempty"`
	DisplayName *string `json:"displayName,omitempty"`
	RemoteIP    *string `json:"remoteIp,omitempty"`
}

//Personal.AI order the ending
