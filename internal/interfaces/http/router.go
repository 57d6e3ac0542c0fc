// Package http assembles the gin router exposing the pairing gateway's
// administrative surface: pairing calls, token lifecycle calls, the decision
// event stream, health probes, and Prometheus metrics.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/pairgate/internal/config"
	"github.com/turtacn/pairgate/internal/interfaces/http/handlers"
	"github.com/turtacn/pairgate/internal/interfaces/http/middleware"
	"github.com/turtacn/pairgate/pkg/logger"
)

// RouterDependencies carries everything the router needs, injected from the
// wiring main.
type RouterDependencies struct {
	Config        *config.ServerConfig
	Logger        logger.Logger
	DeviceHandler *handlers.DeviceHandler
	NodeHandler   *handlers.NodeHandler
	EventsHandler *handlers.EventsHandler
	HealthHandler *handlers.HealthHandler
	Middleware    []gin.HandlerFunc
	Authenticate  gin.HandlerFunc
}

// NewRouter builds the gin engine with the full route table.
func NewRouter(deps RouterDependencies) *gin.Engine {
	if deps.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	for _, mw := range deps.Middleware {
		engine.Use(mw)
	}

	corsConfig := cors.Config{
		AllowOrigins:     deps.Config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID, middleware.HeaderDeviceID, middleware.HeaderRole},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) > 0 {
		engine.Use(cors.New(corsConfig))
	}

	engine.GET("/health", deps.HealthHandler.HealthCheck)
	engine.GET("/ready", deps.HealthHandler.ReadinessCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/api/v1/pairing")
	{
		devices := v1.Group("/devices")
		{
			// Request and verify are open: they are the paths an
			// unauthenticated device uses to obtain or present a credential.
			devices.POST("/requests", deps.DeviceHandler.Request)
			devices.POST("/:deviceId/tokens/:role/verify", deps.DeviceHandler.VerifyToken)

			devices.GET("", deps.Authenticate, deps.DeviceHandler.List)
			devices.POST("/requests/:id/approve", deps.Authenticate, deps.DeviceHandler.Approve)
			devices.POST("/requests/:id/reject", deps.Authenticate, deps.DeviceHandler.Reject)
			devices.POST("/:deviceId/tokens/:role/rotate", deps.Authenticate, deps.DeviceHandler.RotateToken)
			devices.POST("/:deviceId/tokens/:role/revoke", deps.Authenticate, deps.DeviceHandler.RevokeToken)
			devices.POST("/:deviceId/tokens/:role/ensure", deps.Authenticate, deps.DeviceHandler.EnsureToken)
			devices.PATCH("/:deviceId", deps.Authenticate, deps.DeviceHandler.UpdateMetadata)
		}

		nodes := v1.Group("/nodes")
		{
			nodes.POST("/requests", deps.NodeHandler.Request)
			nodes.POST("/:nodeId/token/verify", deps.NodeHandler.VerifyToken)

			nodes.GET("", deps.Authenticate, deps.NodeHandler.List)
			nodes.GET("/eligible", deps.Authenticate, deps.NodeHandler.Eligible)
			nodes.POST("/requests/:id/approve", deps.Authenticate, deps.NodeHandler.Approve)
			nodes.POST("/requests/:id/reject", deps.Authenticate, deps.NodeHandler.Reject)
			nodes.POST("/:nodeId/token/rotate", deps.Authenticate, deps.NodeHandler.RotateToken)
			nodes.POST("/:nodeId/token/revoke", deps.Authenticate, deps.NodeHandler.RevokeToken)
			nodes.PATCH("/:nodeId", deps.Authenticate, deps.NodeHandler.UpdateMetadata)
		}

		v1.GET("/events", deps.Authenticate, deps.EventsHandler.Stream)
	}

	return engine
}

// NewServer wraps the engine in an http.Server with the configured timeouts.
// The write timeout is left open-ended only for the SSE event stream, which
// gin handles per-request; everything else observes the configured value.
func NewServer(engine *gin.Engine, cfg *config.ServerConfig) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}
}

// Shutdown drains the server with a bounded grace period.
func Shutdown(server *http.Server, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error(ctx, "server shutdown failed", err)
	}
}

//Personal.AI order the ending
