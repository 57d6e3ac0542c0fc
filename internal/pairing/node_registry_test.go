package pairing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/pairgate/internal/domain/models"
	"github.com/turtacn/pairgate/internal/pairing"
	"github.com/turtacn/pairgate/pkg/constants"
	"github.com/turtacn/pairgate/pkg/errors"
	"github.com/turtacn/pairgate/pkg/logger"
)

func newNodeRegistry(t *testing.T) (*pairing.NodeRegistry, *fakeClock) {
	t.Helper()
	clock := &fakeClock{nowMs: time.Now().UnixMilli()}
	registry := pairing.NewNodeRegistry(t.TempDir(), logger.NewNoopLogger()).WithClock(clock.Now)
	return registry, clock
}

func pairNode(t *testing.T, registry *pairing.NodeRegistry, nodeID string, commands, caps []string) *models.PairedNode {
	t.Helper()
	ctx := context.Background()
	request, created, err := registry.Request(ctx, pairing.NodeRequestInput{
		NodeID:   nodeID,
		Platform: "linux",
		Commands: commands,
		Caps:     caps,
	})
	require.NoError(t, err)
	require.True(t, created)
	node, err := registry.Approve(ctx, request.RequestID)
	require.NoError(t, err)
	return node
}

func TestNodeRequestIdempotentPerNode(t *testing.T) {
	registry, _ := newNodeRegistry(t)
	ctx := context.Background()

	first, created, err := registry.Request(ctx, pairing.NodeRequestInput{NodeID: "node-1"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := registry.Request(ctx, pairing.NodeRequestInput{NodeID: "node-1", Platform: "darwin"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.RequestID, second.RequestID)

	_, _, err = registry.Request(ctx, pairing.NodeRequestInput{NodeID: ""})
	assert.Equal(t, constants.ErrCodeInvalidEntityID, errors.CodeOf(err))
}

func TestNodeApproveMintsSingleToken(t *testing.T) {
	registry, clock := newNodeRegistry(t)
	ctx := context.Background()

	node := pairNode(t, registry, "node-1", []string{"exec", "copy"}, []string{"gpu"})

	assert.NotEmpty(t, node.Token)
	assert.Equal(t, []string{"copy", "exec"}, node.Commands)
	assert.Equal(t, []string{"gpu"}, node.Caps)
	assert.Equal(t, clock.Now(), node.ApprovedAtMs)

	requests, nodes := registry.List(ctx)
	assert.Empty(t, requests)
	require.Len(t, nodes, 1)
}

func TestNodeReapprovalReplacesTokenAndMergesCapabilities(t *testing.T) {
	registry, clock := newNodeRegistry(t)
	ctx := context.Background()

	node := pairNode(t, registry, "node-1", []string{"exec"}, nil)
	firstToken := node.Token
	createdAt := node.CreatedAtMs

	clock.Advance(time.Second)
	request, _, err := registry.Request(ctx, pairing.NodeRequestInput{NodeID: "node-1", Caps: []string{"gpu"}})
	require.NoError(t, err)
	assert.True(t, request.IsRepair)

	repaired, err := registry.Approve(ctx, request.RequestID)
	require.NoError(t, err)

	assert.NotEqual(t, firstToken, repaired.Token, "re-approval always mints")
	assert.Equal(t, createdAt, repaired.CreatedAtMs)
	assert.Equal(t, []string{"exec"}, repaired.Commands)
	assert.Equal(t, []string{"gpu"}, repaired.Caps)
}

func TestNodeRotateToken(t *testing.T) {
	registry, _ := newNodeRegistry(t)
	ctx := context.Background()

	node := pairNode(t, registry, "node-1", nil, nil)

	rotated, err := registry.RotateToken(ctx, "node-1")
	require.NoError(t, err)
	assert.NotEqual(t, node.Token, rotated)
	assert.NotEmpty(t, rotated)

	_, err = registry.RotateToken(ctx, "node-ghost")
	assert.Equal(t, constants.ErrCodeUnknownEntity, errors.CodeOf(err))

	require.NoError(t, registry.RevokeToken(ctx, "node-1"))
	_, err = registry.RotateToken(ctx, "node-1")
	assert.Equal(t, constants.ErrCodeTokenRevoked, errors.CodeOf(err), "rotation requires a live credential")
}

func TestNodeRevokeTokenIdempotent(t *testing.T) {
	registry, _ := newNodeRegistry(t)
	ctx := context.Background()

	pairNode(t, registry, "node-1", nil, nil)

	require.NoError(t, registry.RevokeToken(ctx, "node-1"))
	require.NoError(t, registry.RevokeToken(ctx, "node-1"))

	_, nodes := registry.List(ctx)
	require.Len(t, nodes, 1)
	assert.Empty(t, nodes[0].Token)

	err := registry.RevokeToken(ctx, "node-ghost")
	assert.Equal(t, constants.ErrCodeUnknownEntity, errors.CodeOf(err))
}

func TestNodeVerifyToken(t *testing.T) {
	registry, clock := newNodeRegistry(t)
	ctx := context.Background()

	node := pairNode(t, registry, "node-1", nil, nil)

	require.NoError(t, registry.VerifyToken(ctx, "node-1", node.Token))

	_, nodes := registry.List(ctx)
	require.NotNil(t, nodes[0].LastConnectedAtMs)
	assert.Equal(t, clock.Now(), *nodes[0].LastConnectedAtMs)

	err := registry.VerifyToken(ctx, "node-ghost", node.Token)
	assert.Equal(t, constants.ErrCodeUnknownEntity, errors.CodeOf(err))

	err = registry.VerifyToken(ctx, "node-1", "wrong")
	assert.Equal(t, constants.ErrCodeTokenMismatch, errors.CodeOf(err))

	require.NoError(t, registry.RevokeToken(ctx, "node-1"))
	err = registry.VerifyToken(ctx, "node-1", node.Token)
	assert.Equal(t, constants.ErrCodeTokenRevoked, errors.CodeOf(err))
}

func TestNodeUpdateMetadata(t *testing.T) {
	registry, _ := newNodeRegistry(t)
	ctx := context.Background()

	node := pairNode(t, registry, "node-1", nil, nil)
	secret := node.Token

	connected := time.Now().UnixMilli()
	version := "1.4.2"
	require.NoError(t, registry.UpdateMetadata(ctx, "node-1", models.NodeMetadataPatch{
		Version:           &version,
		Bins:              []string{"ffmpeg", "curl", "ffmpeg"},
		LastConnectedAtMs: &connected,
	}))

	_, nodes := registry.List(ctx)
	assert.Equal(t, version, nodes[0].Version)
	assert.Equal(t, []string{"curl", "ffmpeg"}, nodes[0].Bins)
	assert.Equal(t, secret, nodes[0].Token, "patch never touches the token")

	require.NoError(t, registry.UpdateMetadata(ctx, "node-ghost", models.NodeMetadataPatch{Version: &version}),
		"unknown node is a no-op")
}
