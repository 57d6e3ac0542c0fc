// Package middleware provides the gin middleware chain for the pairing
// gateway: request ids, structured request logging, metrics, panic recovery,
// and the authentication middleware that guards administrative routes with
// the device registry's own token verification.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/pairgate/internal/monitoring"
	"github.com/turtacn/pairgate/internal/pairing"
	"github.com/turtacn/pairgate/pkg/constants"
	"github.com/turtacn/pairgate/pkg/errors"
	"github.com/turtacn/pairgate/pkg/logger"
)

const (
	// HeaderRequestID carries the request id assigned to each inbound call.
	HeaderRequestID = "X-Request-ID"

	// HeaderDeviceID and HeaderRole identify the credential presented on
	// authenticated routes; the token itself travels as a bearer token.
	HeaderDeviceID = "X-PairGate-Device"
	HeaderRole     = "X-PairGate-Role"
)

// RequestID assigns each request a unique id, honoring a caller-supplied one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)

		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Logging logs each request after completion.
func Logging(log logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info(c.Request.Context(), "request completed", logger.Fields{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
		})
	}
}

// Metrics records request latency.
func Metrics(metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.RecordHTTPRequest(
			c.Request.Method,
			c.FullPath(),
			http.StatusText(c.Writer.Status()),
			time.Since(start),
		)
	}
}

// Recovery converts panics into 500 responses with a structured log entry.
func Recovery(log logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error(c.Request.Context(), "handler panic", nil, logger.Fields{
			"panic": recovered,
			"path":  c.FullPath(),
		})
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			errors.ToErrorResponse(errors.ErrInternal("internal error")))
	})
}

// Authenticate verifies the presented device credential against the device
// registry on every request carrying it. Per-method authorization policy is
// the caller's concern; this middleware only answers whether the
// (device, role, token) combination is currently valid.
func Authenticate(devices *pairing.DeviceRegistry, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := c.GetHeader(HeaderDeviceID)
		role := c.GetHeader(HeaderRole)
		presented := bearerToken(c.GetHeader("Authorization"))

		if deviceID == "" || role == "" || presented == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errors.ToErrorResponse(errors.ErrInvalidRequest("missing device credential headers")))
			return
		}

		if err := devices.VerifyToken(c.Request.Context(), deviceID, presented, role, nil); err != nil {
			metrics.RecordVerification(string(constants.EntityKindDevice), string(errors.CodeOf(err)))
			status := http.StatusUnauthorized
			if gateErr, ok := errors.AsGateError(err); ok {
				status = gateErr.HTTPStatus()
			}
			c.AbortWithStatusJSON(status, errors.ToGenericErrorResponse(err))
			return
		}

		metrics.RecordVerification(string(constants.EntityKindDevice), "ok")
		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyEntityID, deviceID)
		ctx = context.WithValue(ctx, constants.ContextKeyRole, role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

//Personal.AI order the ending
