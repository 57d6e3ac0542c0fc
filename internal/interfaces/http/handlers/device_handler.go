// Package handlers implements the HTTP handlers through which the RPC layer
// and the admin CLI drive the pairing registries. Raw token values appear
// only in approve/rotate/ensure responses; every list response is redacted.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/pairgate/internal/domain/models"
	"github.com/turtacn/pairgate/internal/monitoring"
	"github.com/turtacn/pairgate/internal/pairing"
	"github.com/turtacn/pairgate/pkg/constants"
	"github.com/turtacn/pairgate/pkg/errors"
	"github.com/turtacn/pairgate/pkg/logger"
)

// DeviceHandler serves the device pairing surface.
type DeviceHandler struct {
	registry *pairing.DeviceRegistry
	hub      *Hub
	metrics  *monitoring.Metrics
	log      logger.Logger
	now      func() int64
}

// NewDeviceHandler creates a device pairing handler.
func NewDeviceHandler(registry *pairing.DeviceRegistry, hub *Hub, metrics *monitoring.Metrics, log logger.Logger, now func() int64) *DeviceHandler {
	return &DeviceHandler{
		registry: registry,
		hub:      hub,
		metrics:  metrics,
		log:      log.WithComponent("device-handler"),
		now:      now,
	}
}

type deviceRequestBody struct {
	DeviceID  string   `json:"deviceId" binding:"required"`
	PublicKey string   `json:"publicKey"`
	Role      string   `json:"role"`
	Roles     []string `json:"roles"`
	Scopes    []string `json:"scopes"`
	Silent    bool     `json:"silent"`
}

// Request handles POST /devices/requests.
func (h *DeviceHandler) Request(c *gin.Context) {
	var body deviceRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	request, created, err := h.registry.Request(c.Request.Context(), pairing.DeviceRequestInput{
		DeviceID:  body.DeviceID,
		PublicKey: body.PublicKey,
		Role:      body.Role,
		Roles:     body.Roles,
		Scopes:    body.Scopes,
		RemoteIP:  c.ClientIP(),
		Silent:    body.Silent,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	result := "duplicate"
	status := http.StatusOK
	if created {
		result = "created"
		status = http.StatusCreated
	}
	h.metrics.RecordPairingRequest(string(constants.EntityKindDevice), result)
	c.JSON(status, gin.H{"request": request, "created": created})
}

// Approve handles POST /devices/requests/:id/approve. The response is the
// one place device token values cross the wire in full.
func (h *DeviceHandler) Approve(c *gin.Context) {
	requestID := c.Param("id")

	device, err := h.registry.Approve(c.Request.Context(), requestID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.metrics.RecordDecision(string(constants.EntityKindDevice), string(constants.DecisionApproved))
	h.hub.Publish(pairing.DecisionEvent{
		RequestID: requestID,
		EntityID:  device.DeviceID,
		Decision:  constants.DecisionApproved,
		TS:        h.now(),
	})
	c.JSON(http.StatusOK, gin.H{"device": device})
}

// Reject handles POST /devices/requests/:id/reject.
func (h *DeviceHandler) Reject(c *gin.Context) {
	requestID := c.Param("id")

	deviceID, err := h.registry.Reject(c.Request.Context(), requestID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.metrics.RecordDecision(string(constants.EntityKindDevice), string(constants.DecisionRejected))
	h.hub.Publish(pairing.DecisionEvent{
		RequestID: requestID,
		EntityID:  deviceID,
		Decision:  constants.DecisionRejected,
		TS:        h.now(),
	})
	c.JSON(http.StatusOK, gin.H{"deviceId": deviceID})
}

// List handles GET /devices. Token values are stripped from the response.
func (h *DeviceHandler) List(c *gin.Context) {
	requests, devices := h.registry.List(c.Request.Context())

	summaries := make([]*models.PairedDeviceSummary, 0, len(devices))
	for _, device := range devices {
		summaries = append(summaries, device.Summarize())
	}

	c.JSON(http.StatusOK, gin.H{"pending": requests, "paired": summaries})
}

type scopesBody struct {
	Scopes []string `json:"scopes"`
}

// RotateToken handles POST /devices/:deviceId/tokens/:role/rotate.
func (h *DeviceHandler) RotateToken(c *gin.Context) {
	var body scopesBody
	if err := c.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		abortWithError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	rotated, err := h.registry.RotateToken(c.Request.Context(), c.Param("deviceId"), c.Param("role"), body.Scopes)
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.metrics.RecordRotation(string(constants.EntityKindDevice))
	c.JSON(http.StatusOK, gin.H{"token": rotated})
}

// RevokeToken handles POST /devices/:deviceId/tokens/:role/revoke. The
// response is redacted; a revoked secret has no reason to travel again.
func (h *DeviceHandler) RevokeToken(c *gin.Context) {
	revoked, err := h.registry.RevokeToken(c.Request.Context(), c.Param("deviceId"), c.Param("role"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.metrics.RecordRevocation(string(constants.EntityKindDevice))
	c.JSON(http.StatusOK, gin.H{"token": revoked.Summarize()})
}

// EnsureToken handles POST /devices/:deviceId/tokens/:role/ensure.
func (h *DeviceHandler) EnsureToken(c *gin.Context) {
	var body scopesBody
	if err := c.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		abortWithError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	ensured, err := h.registry.EnsureToken(c.Request.Context(), c.Param("deviceId"), c.Param("role"), body.Scopes)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": ensured})
}

type verifyBody struct {
	Token  string   `json:"token" binding:"required"`
	Scopes []string `json:"scopes"`
}

// VerifyToken handles POST /devices/:deviceId/tokens/:role/verify, the
// endpoint the transport-layer authentication middleware of peer services
// calls for inbound device credentials.
func (h *DeviceHandler) VerifyToken(c *gin.Context) {
	var body verifyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	err := h.registry.VerifyToken(c.Request.Context(), c.Param("deviceId"), body.Token, c.Param("role"), body.Scopes)
	if err != nil {
		h.metrics.RecordVerification(string(constants.EntityKindDevice), string(errors.CodeOf(err)))
		abortWithError(c, err)
		return
	}

	h.metrics.RecordVerification(string(constants.EntityKindDevice), "ok")
	c.Status(http.StatusNoContent)
}

// UpdateMetadata handles PATCH /devices/:deviceId.
func (h *DeviceHandler) UpdateMetadata(c *gin.Context) {
	var patch models.DeviceMetadataPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	if err := h.registry.UpdateMetadata(c.Request.Context(), c.Param("deviceId"), patch); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// abortWithError renders a GateError with its mapped status, falling back to
// 500 for anything untyped.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if gateErr, ok := errors.AsGateError(err); ok {
		status = gateErr.HTTPStatus()
	}
	c.AbortWithStatusJSON(status, errors.ToGenericErrorResponse(err))
}

//Personal.AI order the ending
