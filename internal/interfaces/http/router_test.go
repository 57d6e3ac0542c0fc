package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/pairgate/internal/config"
	httpiface "github.com/turtacn/pairgate/internal/interfaces/http"
	"github.com/turtacn/pairgate/internal/interfaces/http/handlers"
	"github.com/turtacn/pairgate/internal/interfaces/http/middleware"
	"github.com/turtacn/pairgate/internal/monitoring"
	"github.com/turtacn/pairgate/internal/pairing"
	"github.com/turtacn/pairgate/pkg/logger"
)

type testGateway struct {
	engine  *gin.Engine
	devices *pairing.DeviceRegistry
	nodes   *pairing.NodeRegistry
	hub     *handlers.Hub

	adminDevice string
	adminToken  string
}

// newTestGateway wires the full route table against temp-dir registries and
// pairs one admin device whose credential the test requests present.
func newTestGateway(t *testing.T) *testGateway {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNoopLogger()
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	stateRoot := t.TempDir()

	devices := pairing.NewDeviceRegistry(stateRoot+"/devices", log)
	nodes := pairing.NewNodeRegistry(stateRoot+"/nodes", log)
	capabilities := pairing.NewCapabilityRegistry(time.Minute)
	hub := handlers.NewHub()
	now := func() int64 { return time.Now().UnixMilli() }

	engine := httpiface.NewRouter(httpiface.RouterDependencies{
		Config:        &config.ServerConfig{Environment: "test"},
		Logger:        log,
		DeviceHandler: handlers.NewDeviceHandler(devices, hub, metrics, log, now),
		NodeHandler:   handlers.NewNodeHandler(nodes, capabilities, hub, metrics, log, now),
		EventsHandler: handlers.NewEventsHandler(hub),
		HealthHandler: handlers.NewHealthHandler(stateRoot),
		Middleware:    []gin.HandlerFunc{middleware.Recovery(log), middleware.RequestID()},
		Authenticate:  middleware.Authenticate(devices, metrics),
	})

	ctx := context.Background()
	request, _, err := devices.Request(ctx, pairing.DeviceRequestInput{DeviceID: "admin-console", Role: "admin"})
	require.NoError(t, err)
	admin, err := devices.Approve(ctx, request.RequestID)
	require.NoError(t, err)

	return &testGateway{
		engine:      engine,
		devices:     devices,
		nodes:       nodes,
		hub:         hub,
		adminDevice: admin.DeviceID,
		adminToken:  admin.Tokens["admin"].Token,
	}
}

func (g *testGateway) do(t *testing.T, method, path string, body interface{}, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+g.adminToken)
		req.Header.Set(middleware.HeaderDeviceID, g.adminDevice)
		req.Header.Set(middleware.HeaderRole, "admin")
	}

	recorder := httptest.NewRecorder()
	g.engine.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestHealthEndpoints(t *testing.T) {
	gateway := newTestGateway(t)

	assert.Equal(t, http.StatusOK, gateway.do(t, "GET", "/health", nil, false).Code)
	assert.Equal(t, http.StatusOK, gateway.do(t, "GET", "/ready", nil, false).Code)
	assert.Equal(t, http.StatusOK, gateway.do(t, "GET", "/metrics", nil, false).Code)
}

func TestAdminRoutesRequireCredential(t *testing.T) {
	gateway := newTestGateway(t)

	recorder := gateway.do(t, "GET", "/api/v1/pairing/devices", nil, false)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	req := httptest.NewRequest("GET", "/api/v1/pairing/devices", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	req.Header.Set(middleware.HeaderDeviceID, gateway.adminDevice)
	req.Header.Set(middleware.HeaderRole, "admin")
	recorder = httptest.NewRecorder()
	gateway.engine.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestDevicePairingFlowOverHTTP(t *testing.T) {
	gateway := newTestGateway(t)

	// Request is open (the asking device has no credential yet).
	recorder := gateway.do(t, "POST", "/api/v1/pairing/devices/requests", gin.H{
		"deviceId": "dev-1",
		"role":     "operator",
		"scopes":   []string{"read"},
	}, false)
	require.Equal(t, http.StatusCreated, recorder.Code)
	body := decodeBody(t, recorder)
	requestID := body["request"].(map[string]interface{})["requestId"].(string)

	// A duplicate request returns 200 with the same id.
	recorder = gateway.do(t, "POST", "/api/v1/pairing/devices/requests", gin.H{
		"deviceId": "dev-1",
	}, false)
	require.Equal(t, http.StatusOK, recorder.Code)
	dup := decodeBody(t, recorder)
	assert.Equal(t, requestID, dup["request"].(map[string]interface{})["requestId"])
	assert.Equal(t, false, dup["created"])

	// Approve mints the token.
	recorder = gateway.do(t, "POST", "/api/v1/pairing/devices/requests/"+requestID+"/approve", nil, true)
	require.Equal(t, http.StatusOK, recorder.Code)
	approved := decodeBody(t, recorder)
	tokens := approved["device"].(map[string]interface{})["tokens"].(map[string]interface{})
	secret := tokens["operator"].(map[string]interface{})["token"].(string)
	require.NotEmpty(t, secret)

	// Verify is open and answers 204 for a valid credential.
	recorder = gateway.do(t, "POST", "/api/v1/pairing/devices/dev-1/tokens/operator/verify", gin.H{
		"token":  secret,
		"scopes": []string{"read"},
	}, false)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	// Scope escalation is refused with 403.
	recorder = gateway.do(t, "POST", "/api/v1/pairing/devices/dev-1/tokens/operator/verify", gin.H{
		"token":  secret,
		"scopes": []string{"admin"},
	}, false)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	// The list response never carries token values.
	recorder = gateway.do(t, "GET", "/api/v1/pairing/devices", nil, true)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), secret)

	// Rotation invalidates the old secret.
	recorder = gateway.do(t, "POST", "/api/v1/pairing/devices/dev-1/tokens/operator/rotate", nil, true)
	require.Equal(t, http.StatusOK, recorder.Code)
	recorder = gateway.do(t, "POST", "/api/v1/pairing/devices/dev-1/tokens/operator/verify", gin.H{
		"token": secret,
	}, false)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// Revocation is permanent.
	recorder = gateway.do(t, "POST", "/api/v1/pairing/devices/dev-1/tokens/operator/revoke", nil, true)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), secret)
	recorder = gateway.do(t, "POST", "/api/v1/pairing/devices/dev-1/tokens/operator/ensure", nil, true)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestDeviceRejectOverHTTP(t *testing.T) {
	gateway := newTestGateway(t)

	recorder := gateway.do(t, "POST", "/api/v1/pairing/devices/requests", gin.H{"deviceId": "dev-1"}, false)
	require.Equal(t, http.StatusCreated, recorder.Code)
	requestID := decodeBody(t, recorder)["request"].(map[string]interface{})["requestId"].(string)

	recorder = gateway.do(t, "POST", "/api/v1/pairing/devices/requests/"+requestID+"/reject", nil, true)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = gateway.do(t, "POST", "/api/v1/pairing/devices/requests/"+requestID+"/approve", nil, true)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestNodePairingFlowOverHTTP(t *testing.T) {
	gateway := newTestGateway(t)

	recorder := gateway.do(t, "POST", "/api/v1/pairing/nodes/requests", gin.H{
		"nodeId":   "node-1",
		"platform": "linux",
		"caps":     []string{"gpu"},
		"commands": []string{"exec"},
	}, false)
	require.Equal(t, http.StatusCreated, recorder.Code)
	requestID := decodeBody(t, recorder)["request"].(map[string]interface{})["requestId"].(string)

	recorder = gateway.do(t, "POST", "/api/v1/pairing/nodes/requests/"+requestID+"/approve", nil, true)
	require.Equal(t, http.StatusOK, recorder.Code)
	secret := decodeBody(t, recorder)["node"].(map[string]interface{})["token"].(string)
	require.NotEmpty(t, secret)

	recorder = gateway.do(t, "POST", "/api/v1/pairing/nodes/node-1/token/verify", gin.H{"token": secret}, false)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	// Approval feeds the capability registry.
	recorder = gateway.do(t, "GET", "/api/v1/pairing/nodes/eligible?caps=gpu", nil, true)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "node-1")

	// Revoking drops the node from eligibility and clears the token.
	recorder = gateway.do(t, "POST", "/api/v1/pairing/nodes/node-1/token/revoke", nil, true)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = gateway.do(t, "POST", "/api/v1/pairing/nodes/node-1/token/verify", gin.H{"token": secret}, false)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = gateway.do(t, "GET", "/api/v1/pairing/nodes/eligible?caps=gpu", nil, true)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "node-1")
}

func TestHubBroadcastsDecisions(t *testing.T) {
	gateway := newTestGateway(t)

	events, cancel := gateway.hub.Subscribe()
	defer cancel()

	recorder := gateway.do(t, "POST", "/api/v1/pairing/devices/requests", gin.H{"deviceId": "dev-1"}, false)
	require.Equal(t, http.StatusCreated, recorder.Code)
	requestID := decodeBody(t, recorder)["request"].(map[string]interface{})["requestId"].(string)

	recorder = gateway.do(t, "POST", "/api/v1/pairing/devices/requests/"+requestID+"/approve", nil, true)
	require.Equal(t, http.StatusOK, recorder.Code)

	select {
	case event := <-events:
		assert.Equal(t, requestID, event.RequestID)
		assert.Equal(t, "dev-1", event.EntityID)
	case <-time.After(time.Second):
		t.Fatal("no decision event received")
	}
}
