package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/ecommerce-client/internal/adapters/logging"
	"github.com/kevin07696/ecommerce-client/internal/config"
	"github.com/kevin07696/ecommerce-client/internal/sandbox"
	"github.com/kevin07696/ecommerce-client/pkg/observability"
	"github.com/kevin07696/ecommerce-client/pkg/shutdown"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Logger.Environment, cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	if err := cfg.ResolveSharedSecret(ctx, logger); err != nil {
		logger.Fatal("Failed to resolve shared secret", zap.Error(err))
	}

	sb, err := sandbox.New(
		map[string]string{cfg.Gateway.CardAcceptor: cfg.Gateway.SharedSecret},
		logging.NewZapLogger(logger),
		sandbox.WithRateLimit(cfg.Sandbox.RateLimitRPS, cfg.Sandbox.RateLimitBurst),
	)
	if err != nil {
		logger.Fatal("Failed to initialize sandbox", zap.Error(err))
	}

	health := observability.NewHealthChecker()
	health.Register("card_acceptor", func(context.Context) error {
		if cfg.Gateway.CardAcceptor == "" {
			return errors.New("no card acceptor configured")
		}
		return nil
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Sandbox.Port),
		Handler:           sb.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Stopped in reverse order: gateway listener, then metrics, then sandbox state
	sm := shutdown.NewManager(logger, 10*time.Second)
	sm.Register("sandbox", sb.Close)
	sm.RegisterHTTPServer("metrics", observability.StartMetricsServer(fmt.Sprintf(":%d", cfg.Sandbox.MetricsPort), health, logger))
	sm.RegisterHTTPServer("gateway", httpServer)

	go func() {
		logger.Info("Gateway sandbox listening",
			zap.Int("port", cfg.Sandbox.Port),
			zap.String("card_acceptor", cfg.Gateway.CardAcceptor),
			zap.Float64("rate_limit_rps", cfg.Sandbox.RateLimitRPS),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	if err := sm.WaitForShutdown(ctx); err != nil {
		logger.Error("Shutdown completed with errors", zap.Error(err))
		os.Exit(1)
	}
}
