package models

// NodePairingRequest is a pending request from a peer execution host asking to
// join the mesh. Nodes carry capability metadata instead of roles and scopes.
type NodePairingRequest struct {
	RequestID string `json:"requestId"`

	// NodeID is the caller-supplied node identity, trimmed, non-empty.
	NodeID string `json:"nodeId"`

	DisplayName string `json:"displayName,omitempty"`
	Platform    string `json:"platform,omitempty"`
	Version     string `json:"version,omitempty"`

	// Commands and Caps are the capability lists the node advertises.
	Commands []string `json:"commands,omitempty"`
	Caps     []string `json:"caps,omitempty"`

	RemoteIP string `json:"remoteIp,omitempty"`
	Silent   bool   `json:"silent,omitempty"`
	IsRepair bool   `json:"isRepair,omitempty"`

	TS int64 `json:"ts"`
}

// Timestamp returns the creation time in epoch milliseconds.
func (r *NodePairingRequest) Timestamp() int64 {
	return r.TS
}

// PairedNode is an approved mesh node. Unlike devices, a node holds a single
// bare token compared with plain equality, and carries capability metadata
// (commands, caps, probed bins) consumed by the skill loader's eligibility
// query.
type PairedNode struct {
	NodeID string `json:"nodeId"`

	DisplayName string `json:"displayName,omitempty"`
	Platform    string `json:"platform,omitempty"`
	Version     string `json:"version,omitempty"`

	Commands []string `json:"commands,omitempty"`
	Caps     []string `json:"caps,omitempty"`

	// Bins lists binaries probed as available on the node.
	Bins []string `json:"bins,omitempty"`

	// Token is the node's single credential. An empty value means the node
	// currently holds no usable credential (revoked or never issued).
	Token string `json:"token,omitempty"`

	RemoteIP string `json:"remoteIp,omitempty"`

	CreatedAtMs  int64 `json:"createdAtMs"`
	ApprovedAtMs int64 `json:"approvedAtMs"`

	// LastConnectedAtMs tracks the node's most recent connection, patched
	// in by the transport layer.
	LastConnectedAtMs *int64 `json:"lastConnectedAtMs,omitempty"`
}

// Clone returns a deep copy of the node record.
func (n *PairedNode) Clone() *PairedNode {
	if n == nil {
		return nil
	}
	clone := *n
	clone.Commands = append([]string(nil), n.Commands...)
	clone.Caps = append([]string(nil), n.Caps...)
	clone.Bins = append([]string(nil), n.Bins...)
	clone.LastConnectedAtMs = cloneInt64(n.LastConnectedAtMs)
	return &clone
}

// PairedNodeSummary is the redacted list view of a paired node.
type PairedNodeSummary struct {
	NodeID            string   `json:"nodeId"`
	DisplayName       string   `json:"displayName,omitempty"`
	Platform          string   `json:"platform,omitempty"`
	Version           string   `json:"version,omitempty"`
	Commands          []string `json:"commands,omitempty"`
	Caps              []string `json:"caps,omitempty"`
	Bins              []string `json:"bins,omitempty"`
	HasToken          bool     `json:"hasToken"`
	RemoteIP          string   `json:"remoteIp,omitempty"`
	CreatedAtMs       int64    `json:"createdAtMs"`
	ApprovedAtMs      int64    `json:"approvedAtMs"`
	LastConnectedAtMs *int64   `json:"lastConnectedAtMs,omitempty"`
}

// Summarize strips the token value, keeping only whether one exists.
func (n *PairedNode) Summarize() *PairedNodeSummary {
	if n == nil {
		return nil
	}
	return &PairedNodeSummary{
		NodeID:            n.NodeID,
		DisplayName:       n.DisplayName,
		Platform:          n.Platform,
		Version:           n.Version,
		Commands:          append([]string(nil), n.Commands...),
		Caps:              append([]string(nil), n.Caps...),
		Bins:              append([]string(nil), n.Bins...),
		HasToken:          n.Token != "",
		RemoteIP:          n.RemoteIP,
		CreatedAtMs:       n.CreatedAtMs,
		ApprovedAtMs:      n.ApprovedAtMs,
		LastConnectedAtMs: cloneInt64(n.LastConnectedAtMs),
	}
}

// NodeMetadataPatch carries the patchable node fields. Nil fields are left
// untouched; the token is never affected by a metadata patch.
type NodeMetadataPatch struct {
	DisplayName       *string  `json:"displayName,omitempty"`
	Platform          *string  `json:"platform,omitempty"`
	Version           *string  `json:"version,omitempty"`
	Commands          []string `json:"commands,omitempty"`
	Caps              []string `json:"caps,omitempty"`
	Bins              []string `json:"bins,omitempty"`
	RemoteIP          *string  `json:"remoteIp,omitempty"`
	LastConnectedAtMs *int64   `json:"lastConnectedAtMs,omitempty"`
}

//Personal.AI order the ending
