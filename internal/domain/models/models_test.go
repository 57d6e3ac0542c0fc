package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/pairgate/internal/domain/models"
)

func TestAuthTokenRevoked(t *testing.T) {
	stamp := int64(1000)

	var nilToken *models.AuthToken
	assert.False(t, nilToken.Revoked())
	assert.False(t, (&models.AuthToken{Token: "x"}).Revoked())
	assert.True(t, (&models.AuthToken{Token: "x", RevokedAtMs: &stamp}).Revoked())
}

func TestPairedDeviceCloneIsDeep(t *testing.T) {
	used := int64(2000)
	device := &models.PairedDevice{
		DeviceID: "dev-1",
		Roles:    []string{"operator"},
		Scopes:   []string{"read"},
		Tokens: map[string]*models.AuthToken{
			"operator": {Token: "secret", Role: "operator", CreatedAtMs: 1000, LastUsedAtMs: &used},
		},
		CreatedAtMs: 1000,
	}

	clone := device.Clone()
	clone.Roles[0] = "changed"
	clone.Tokens["operator"].Token = "changed"
	*clone.Tokens["operator"].LastUsedAtMs = 9999

	assert.Equal(t, "operator", device.Roles[0])
	assert.Equal(t, "secret", device.Tokens["operator"].Token)
	assert.Equal(t, int64(2000), *device.Tokens["operator"].LastUsedAtMs)

	var nilDevice *models.PairedDevice
	assert.Nil(t, nilDevice.Clone())
}

func TestPairedDeviceSummaryRedactsSecrets(t *testing.T) {
	device := &models.PairedDevice{
		DeviceID: "dev-1",
		Roles:    []string{"operator"},
		Tokens: map[string]*models.AuthToken{
			"operator": {Token: "super-secret-value", Role: "operator", Scopes: []string{"read"}, CreatedAtMs: 1000},
		},
	}

	raw, err := json.Marshal(device.Summarize())
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "super-secret-value")
	assert.Contains(t, string(raw), "\"role\":\"operator\"")
	assert.Contains(t, string(raw), "\"createdAtMs\":1000")
}

func TestPairedNodeSummaryRedactsToken(t *testing.T) {
	node := &models.PairedNode{
		NodeID: "node-1",
		Token:  "node-secret-value",
		Caps:   []string{"gpu"},
	}

	summary := node.Summarize()
	assert.True(t, summary.HasToken)

	raw, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "node-secret-value")

	revoked := node.Clone()
	revoked.Token = ""
	assert.False(t, revoked.Summarize().HasToken)
	assert.Equal(t, "node-secret-value", node.Token, "clone does not alias")
}
