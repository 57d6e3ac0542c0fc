package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/pairgate/internal/domain/models"
	"github.com/turtacn/pairgate/internal/monitoring"
	"github.com/turtacn/pairgate/internal/pairing"
	"github.com/turtacn/pairgate/pkg/constants"
	"github.com/turtacn/pairgate/pkg/errors"
	"github.com/turtacn/pairgate/pkg/logger"
)

// NodeHandler serves the node pairing surface.
type NodeHandler struct {
	registry     *pairing.NodeRegistry
	capabilities *pairing.CapabilityRegistry
	hub          *Hub
	metrics      *monitoring.Metrics
	log          logger.Logger
	now          func() int64
}

// NewNodeHandler creates a node pairing handler.
func NewNodeHandler(registry *pairing.NodeRegistry, capabilities *pairing.CapabilityRegistry, hub *Hub, metrics *monitoring.Metrics, log logger.Logger, now func() int64) *NodeHandler {
	return &NodeHandler{
		registry:     registry,
		capabilities: capabilities,
		hub:          hub,
		metrics:      metrics,
		log:          log.WithComponent("node-handler"),
		now:          now,
	}
}

type nodeRequestBody struct {
	NodeID      string   `json:"nodeId" binding:"required"`
	DisplayName string   `json:"displayName"`
	Platform    string   `json:"platform"`
	Version     string   `json:"version"`
	Commands    []string `json:"commands"`
	Caps        []string `json:"caps"`
	Silent      bool     `json:"silent"`
}

// Request handles POST /nodes/requests.
func (h *NodeHandler) Request(c *gin.Context) {
	var body nodeRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	request, created, err := h.registry.Request(c.Request.Context(), pairing.NodeRequestInput{
		NodeID:      body.NodeID,
		DisplayName: body.DisplayName,
		Platform:    body.Platform,
		Version:     body.Version,
		Commands:    body.Commands,
		Caps:        body.Caps,
		RemoteIP:    c.ClientIP(),
		Silent:      body.Silent,
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
	h.metrics.RecordPairingRequest(string(constants.EntityKindNode), result)
	c.JSON(status, gin.H{"request": request, "created": created})
}

// Approve handles POST /nodes/requests/:id/approve. The response carries the
// node's freshly minted token in full.
func (h *NodeHandler) Approve(c *gin.Context) {
	requestID := c.Param("id")

	node, err := h.registry.Approve(c.Request.Context(), requestID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.capabilities.RecordProbe(node.NodeID, node.Caps, node.Commands, node.Bins)
	h.metrics.RecordDecision(string(constants.EntityKindNode), string(constants.DecisionApproved))
	h.hub.Publish(pairing.DecisionEvent{
		RequestID: requestID,
		EntityID:  node.NodeID,
		Decision:  constants.DecisionApproved,
		TS:        h.now(),
	})
	c.JSON(http.StatusOK, gin.H{"node": node})
}

// Reject handles POST /nodes/requests/:id/reject.
func (h *NodeHandler) Reject(c *gin.Context) {
	requestID := c.Param("id")

	nodeID, err := h.registry.Reject(c.Request.Context(), requestID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.metrics.RecordDecision(string(constants.EntityKindNode), string(constants.DecisionRejected))
	h.hub.Publish(pairing.DecisionEvent{
		RequestID: requestID,
		EntityID:  nodeID,
		Decision:  constants.DecisionRejected,
		TS:        h.now(),
	})
	c.JSON(http.StatusOK, gin.H{"nodeId": nodeID})
}

// List handles GET /nodes. Token values never appear in list responses.
func (h *NodeHandler) List(c *gin.Context) {
	requests, nodes := h.registry.List(c.Request.Context())

	summaries := make([]*models.PairedNodeSummary, 0, len(nodes))
	for _, node := range nodes {
		summaries = append(summaries, node.Summarize())
	}

	c.JSON(http.StatusOK, gin.H{"pending": requests, "paired": summaries})
}

// RotateToken handles POST /nodes/:nodeId/token/rotate.
func (h *NodeHandler) RotateToken(c *gin.Context) {
	value, err := h.registry.RotateToken(c.Request.Context(), c.Param("nodeId"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.metrics.RecordRotation(string(constants.EntityKindNode))
	c.JSON(http.StatusOK, gin.H{"token": value})
}

// RevokeToken handles POST /nodes/:nodeId/token/revoke. The node also drops
// out of capability eligibility immediately.
func (h *NodeHandler) RevokeToken(c *gin.Context) {
	nodeID := c.Param("nodeId")
	if err := h.registry.RevokeToken(c.Request.Context(), nodeID); err != nil {
		abortWithError(c, err)
		return
	}

	h.capabilities.Forget(nodeID)
	h.metrics.RecordRevocation(string(constants.EntityKindNode))
	c.Status(http.StatusNoContent)
}

type nodeVerifyBody struct {
	Token string `json:"token" binding:"required"`
}

// VerifyToken handles POST /nodes/:nodeId/token/verify.
func (h *NodeHandler) VerifyToken(c *gin.Context) {
	var body nodeVerifyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	err := h.registry.VerifyToken(c.Request.Context(), c.Param("nodeId"), body.Token)
	if err != nil {
		h.metrics.RecordVerification(string(constants.EntityKindNode), string(errors.CodeOf(err)))
		abortWithError(c, err)
		return
	}

	h.metrics.RecordVerification(string(constants.EntityKindNode), "ok")
	c.Status(http.StatusNoContent)
}

// UpdateMetadata handles PATCH /nodes/:nodeId. A patch carrying capability
// fields also refreshes the node's probe in the capability registry.
func (h *NodeHandler) UpdateMetadata(c *gin.Context) {
	var patch models.NodeMetadataPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithError(c, errors.ErrInvalidRequest(err.Error()))
		return
	}

	nodeID := c.Param("nodeId")
	if err := h.registry.UpdateMetadata(c.Request.Context(), nodeID, patch); err != nil {
		abortWithError(c, err)
		return
	}

	if patch.Caps != nil || patch.Commands != nil || patch.Bins != nil {
		h.capabilities.RecordProbe(nodeID, patch.Caps, patch.Commands, patch.Bins)
	}
	c.Status(http.StatusNoContent)
}

// Eligible handles GET /nodes/eligible?caps=a,b&bins=x,y — the capability-
// eligibility query consumed by the skill loader.
func (h *NodeHandler) Eligible(c *gin.Context) {
	caps := splitList(c.Query("caps"))
	bins := splitList(c.Query("bins"))

	c.JSON(http.StatusOK, gin.H{"nodes": h.capabilities.EligibleNodes(caps, bins)})
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

//Personal.AI order the ending
