package pairing

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/turtacn/pairgate/internal/domain/models"
	"github.com/turtacn/pairgate/internal/domain/token"
	"github.com/turtacn/pairgate/internal/storage/statestore"
	"github.com/turtacn/pairgate/pkg/errors"
	"github.com/turtacn/pairgate/pkg/logger"
)

// NodeRequestInput carries the caller-supplied fields of a node pairing
// request.
type NodeRequestInput struct {
	NodeID      string
	DisplayName string
	Platform    string
	Version     string
	Commands    []string
	Caps        []string
	RemoteIP    string
	Silent      bool
}

// NodeRegistry is the pairing registry variant for mesh execution nodes. A
// node holds a single bare token compared with plain equality — there is no
// per-role token map and no scope containment — and carries capability
// metadata (commands, caps, probed bins) consumed by the skill loader.
type NodeRegistry struct {
	mu    sync.Mutex
	store *statestore.Store[*models.NodePairingRequest, *models.PairedNode]
	log   logger.Logger
	now   func() int64
}

// NewNodeRegistry creates a node registry persisting under dir.
func NewNodeRegistry(dir string, log logger.Logger) *NodeRegistry {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &NodeRegistry{
		store: statestore.New[*models.NodePairingRequest, *models.PairedNode](dir, log),
		log:   log.WithComponent("node-registry"),
		now:   nowMillis,
	}
}

// WithClock overrides the millisecond clock. Test hook.
func (r *NodeRegistry) WithClock(now func() int64) *NodeRegistry {
	r.now = now
	return r
}

// Request records a pending pairing request for the node, or returns the
// existing one unchanged when the node already has a request in flight.
func (r *NodeRegistry) Request(ctx context.Context, input NodeRequestInput) (*models.NodePairingRequest, bool, error) {
	nodeID := strings.TrimSpace(input.NodeID)
	if nodeID == "" {
		return nil, false, errors.ErrInvalidEntityID()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	nowMs := r.now()
	pending, paired := r.store.Load(ctx, nowMs)

	for _, existing := range pending {
		if existing.NodeID == nodeID {
			return existing, false, nil
		}
	}

	_, isRepair := paired[nodeID]
	request := &models.NodePairingRequest{
		RequestID:   uuid.NewString(),
		NodeID:      nodeID,
		DisplayName: input.DisplayName,
		Platform:    input.Platform,
		Version:     input.Version,
		Commands:    token.NormalizeScopes(input.Commands),
		Caps:        token.NormalizeScopes(input.Caps),
		RemoteIP:    input.RemoteIP,
		Silent:      input.Silent,
		IsRepair:    isRepair,
		TS:          nowMs,
	}

	pending[request.RequestID] = request
	if err := r.store.Persist(ctx, pending, paired); err != nil {
		return nil, false, err
	}

	r.log.Info(ctx, "node pairing requested", logger.Fields{
		"request_id": request.RequestID,
		"node_id":    nodeID,
		"platform":   input.Platform,
		"is_repair":  isRepair,
	})
	return request, true, nil
}

// Approve resolves a pending request into a paired node and always mints a
// fresh token, replacing the node's single credential. Re-approval merges
// capability lists with the prior record and preserves CreatedAtMs.
func (r *NodeRegistry) Approve(ctx context.Context, requestID string) (*models.PairedNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nowMs := r.now()
	pending, paired := r.store.Load(ctx, nowMs)

	request, ok := pending[requestID]
	if !ok {
		return nil, errors.ErrUnknownRequest(requestID)
	}

	node, exists := paired[request.NodeID]
	if !exists {
		node = &models.PairedNode{
			NodeID:      request.NodeID,
			CreatedAtMs: nowMs,
		}
	}

	node.Commands = token.MergeScopeSets(node.Commands, request.Commands)
	node.Caps = token.MergeScopeSets(node.Caps, request.Caps)
	if request.DisplayName != "" {
		node.DisplayName = request.DisplayName
	}
	if request.Platform != "" {
		node.Platform = request.Platform
	}
	if request.Version != "" {
		node.Version = request.Version
	}
	if request.RemoteIP != "" {
		node.RemoteIP = request.RemoteIP
	}
	node.ApprovedAtMs = nowMs

	value, err := token.NewValue()
	if err != nil {
		return nil, err
	}
	node.Token = value

	delete(pending, requestID)
	paired[request.NodeID] = node
	if err := r.store.Persist(ctx, pending, paired); err != nil {
		return nil, err
	}

	r.log.Info(ctx, "node pairing approved", logger.Fields{
		"request_id": requestID,
		"node_id":    request.NodeID,
		"is_repair":  exists,
	})
	return node, nil
}

// Reject removes a pending request without touching paired state.
func (r *NodeRegistry) Reject(ctx context.Context, requestID string) (string, error) {
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

	r.log.Info(ctx, "node pairing rejected", logger.Fields{
		"request_id": requestID,
		"node_id":    request.NodeID,
	})
	return request.NodeID, nil
}

// RotateToken replaces the node's single token with a fresh value. Rotation
// requires a live credential: a node whose token was revoked must go through
// approval again.
func (r *NodeRegistry) RotateToken(ctx context.Context, nodeID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, paired := r.store.Load(ctx, r.now())

	node, ok := paired[nodeID]
	if !ok {
		return "", errors.ErrUnknownEntity(nodeID)
	}
	if node.Token == "" {
		return "", errors.ErrTokenRevoked(nodeID, "node")
	}

	value, err := token.NewValue()
	if err != nil {
		return "", err
	}
	node.Token = value

	if err := r.store.Persist(ctx, pending, paired); err != nil {
		return "", err
	}

	r.log.Info(ctx, "node token rotated", logger.Fields{"node_id": nodeID})
	return value, nil
}

// RevokeToken clears the node's credential. Idempotent: revoking a node that
// holds no token succeeds without change.
func (r *NodeRegistry) RevokeToken(ctx context.Context, nodeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, paired := r.store.Load(ctx, r.now())

	node, ok := paired[nodeID]
	if !ok {
		return errors.ErrUnknownEntity(nodeID)
	}
	if node.Token == "" {
		return nil
	}

	node.Token = ""
	if err := r.store.Persist(ctx, pending, paired); err != nil {
		return err
	}

	r.log.Info(ctx, "node token revoked", logger.Fields{"node_id": nodeID})
	return nil
}

// VerifyToken checks a presented node credential by plain equality and
// stamps LastConnectedAtMs on success.
func (r *NodeRegistry) VerifyToken(ctx context.Context, nodeID, presented string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	nowMs := r.now()
	pending, paired := r.store.Load(ctx, nowMs)

	node, ok := paired[nodeID]
	if !ok {
		return errors.ErrUnknownEntity(nodeID)
	}
	if node.Token == "" {
		return errors.ErrTokenRevoked(nodeID, "node")
	}
	if node.Token != presented {
		return errors.ErrTokenMismatch(nodeID, "node")
	}

	connected := nowMs
	node.LastConnectedAtMs = &connected
	return r.store.Persist(ctx, pending, paired)
}

// List returns a snapshot of pending requests (newest first) and paired
// nodes (most recently approved first). Lock-free; see DeviceRegistry.List.
func (r *NodeRegistry) List(ctx context.Context) ([]*models.NodePairingRequest, []*models.PairedNode) {
	pending, paired := r.store.Load(ctx, r.now())

	requests := make([]*models.NodePairingRequest, 0, len(pending))
	for _, request := range pending {
		requests = append(requests, request)
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].TS > requests[j].TS
	})

	nodes := make([]*models.PairedNode, 0, len(paired))
	for _, node := range paired {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ApprovedAtMs > nodes[j].ApprovedAtMs
	})

	return requests, nodes
}

// UpdateMetadata merges non-nil patch fields into the paired node. Unknown
// nodes are a no-op; the token is never touched. Probed bins and
// lastConnectedAtMs arrive through this path from the transport layer.
func (r *NodeRegistry) UpdateMetadata(ctx context.Context, nodeID string, patch models.NodeMetadataPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, paired := r.store.Load(ctx, r.now())

	node, ok := paired[nodeID]
	if !ok {
		return nil
	}

	if patch.DisplayName != nil {
		node.DisplayName = *patch.DisplayName
	}
	if patch.Platform != nil {
		node.Platform = *patch.Platform
	}
	if patch.Version != nil {
		node.Version = *patch.Version
	}
	if patch.Commands != nil {
		node.Commands = token.NormalizeScopes(patch.Commands)
	}
	if patch.Caps != nil {
		node.Caps = token.NormalizeScopes(patch.Caps)
	}
	if patch.Bins != nil {
		node.Bins = token.NormalizeScopes(patch.Bins)
	}
	if patch.RemoteIP != nil {
		node.RemoteIP = *patch.RemoteIP
	}
	if patch.LastConnectedAtMs != nil {
		node.LastConnectedAtMs = patch.LastConnectedAtMs
	}

	return r.store.Persist(ctx, pending, paired)
}

//Personal.AI order the ending
