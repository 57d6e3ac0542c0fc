package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/pairgate/internal/config"
	httpiface "github.com/turtacn/pairgate/internal/interfaces/http"
	"github.com/turtacn/pairgate/internal/interfaces/http/handlers"
	"github.com/turtacn/pairgate/internal/interfaces/http/middleware"
	"github.com/turtacn/pairgate/internal/monitoring"
	"github.com/turtacn/pairgate/internal/pairing"
	"github.com/turtacn/pairgate/pkg/logger"
)

func main() {
	// Load config
	cfg, v, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, level := logger.NewZapLogger(cfg.Log.Level)
	config.WatchLogLevel(v, appLogger, func(lvl string) {
		if parsed, parseErr := zapcore.ParseLevel(lvl); parseErr == nil {
			level.SetLevel(parsed)
		}
	})

	ctx := context.Background()

	// Initialize infrastructure
	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	hub := handlers.NewHub()

	// Initialize registries
	deviceRegistry := pairing.NewDeviceRegistry(cfg.State.DeviceDir(), appLogger)
	nodeRegistry := pairing.NewNodeRegistry(cfg.State.NodeDir(), appLogger)
	capabilityRegistry := pairing.NewCapabilityRegistry(pairing.DefaultProbeTTL)

	// Initialize HTTP handlers and router
	now := func() int64 { return time.Now().UnixMilli() }
	deviceHandler := handlers.NewDeviceHandler(deviceRegistry, hub, metrics, appLogger, now)
	nodeHandler := handlers.NewNodeHandler(nodeRegistry, capabilityRegistry, hub, metrics, appLogger, now)
	eventsHandler := handlers.NewEventsHandler(hub)
	healthHandler := handlers.NewHealthHandler(cfg.State.Root)

	engine := httpiface.NewRouter(httpiface.RouterDependencies{
		Config:        &cfg.Server,
		Logger:        appLogger,
		DeviceHandler: deviceHandler,
		NodeHandler:   nodeHandler,
		EventsHandler: eventsHandler,
		HealthHandler: healthHandler,
		Middleware: []gin.HandlerFunc{
			middleware.Recovery(appLogger),
			middleware.RequestID(),
			middleware.Logging(appLogger),
			middleware.Metrics(metrics),
		},
		Authenticate: middleware.Authenticate(deviceRegistry, metrics),
	})

	server := httpiface.NewServer(engine, &cfg.Server)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		appLogger.Info(groupCtx, "pairing gateway listening", logger.Fields{
			"addr":       server.Addr,
			"state_root": cfg.State.Root,
		})
		if serveErr := server.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			return serveErr
		}
		return nil
	})
	group.Go(func() error {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-signals:
			appLogger.Info(groupCtx, "shutting down", logger.Fields{"signal": sig.String()})
		case <-groupCtx.Done():
		}
		httpiface.Shutdown(server, appLogger)
		return nil
	})

	if err := group.Wait(); err != nil {
		appLogger.Fatal(ctx, "gateway exited", err)
	}
}

//Personal.AI order the ending
