package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/dice-bridge/internal/clients/rolling"
	"github.com/KirkDiggler/dice-bridge/internal/config"
	"github.com/KirkDiggler/dice-bridge/internal/engine"
	"github.com/KirkDiggler/dice-bridge/internal/handlers/control"
	pagehandler "github.com/KirkDiggler/dice-bridge/internal/handlers/page"
	"github.com/KirkDiggler/dice-bridge/internal/logger"
	"github.com/KirkDiggler/dice-bridge/internal/notify"
	"github.com/KirkDiggler/dice-bridge/internal/orchestrators/dispatch"
	"github.com/KirkDiggler/dice-bridge/internal/orchestrators/lifecycle"
	"github.com/KirkDiggler/dice-bridge/internal/orchestrators/participant"
	"github.com/KirkDiggler/dice-bridge/internal/page"
	"github.com/KirkDiggler/dice-bridge/internal/pkg/clock"
	"github.com/KirkDiggler/dice-bridge/internal/pkg/idgen"
	"github.com/KirkDiggler/dice-bridge/internal/redis"
	rollhistory "github.com/KirkDiggler/dice-bridge/internal/repositories/roll_history"
	"github.com/KirkDiggler/dice-bridge/internal/repositories/settings"
	"github.com/KirkDiggler/dice-bridge/internal/systems"
	"github.com/KirkDiggler/dice-bridge/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

var (
	httpAddr string
	grpcPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dice bridge",
	Long:  `Start the page bridge HTTP API and the gRPC control service.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&httpAddr, "http-addr", "", "page bridge HTTP address (overrides HTTP_ADDR)")
	serveCmd.Flags().IntVar(&grpcPort, "grpc-port", 0, "control service port (overrides GRPC_PORT)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("http-addr") {
		cfg.HTTPAddr = httpAddr
	}
	if cmd.Flags().Changed("grpc-port") {
		cfg.GRPCPort = grpcPort
	}

	logger.Setup(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("Failed to flush traces", "error", err)
		}
	}()

	app, err := wire(cfg)
	if err != nil {
		return err
	}
	defer app.lifecycle.Close()

	grpcServer, healthServer := control.NewServer(app.control)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.page.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Control service starting", "port", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("failed to serve grpc: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("Page bridge starting", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		healthServer.Shutdown()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP shutdown did not complete", "error", err)
		}

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-shutdownCtx.Done():
			slog.Warn("Graceful shutdown timeout exceeded, forcing stop")
			grpcServer.Stop()
		case <-stopped:
		}
		return nil
	})

	return g.Wait()
}

type application struct {
	lifecycle lifecycle.Service
	page      *pagehandler.Handler
	control   *control.Handler
}

// wire builds the object graph from configuration
func wire(cfg *config.Config) (*application, error) {
	redisClient, err := redis.NewClient(cfg.RedisAddr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	settingsStore, err := settings.NewRedisStore(&settings.Config{Client: redisClient})
	if err != nil {
		return nil, fmt.Errorf("failed to create settings store: %w", err)
	}

	history, err := rollhistory.NewRedisRepository(&rollhistory.Config{
		Client: redisClient,
		Clock:  clock.New(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create roll history repository: %w", err)
	}

	bus := events.NewBus()

	notifier, err := notify.New(&notify.Config{
		Client: redisClient,
		Bus:    bus,
		Clock:  clock.New(),
		IDGen:  idgen.NewUUID("note"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}

	registry, err := systems.NewRegistry(&systems.RegistryConfig{Settings: settingsStore})
	if err != nil {
		return nil, fmt.Errorf("failed to create game system registry: %w", err)
	}

	diceEngine, err := engine.New(&engine.Config{
		Settings: settingsStore,
		NewClient: func(apiKey string) (rolling.Client, error) {
			return rolling.New(&rolling.Config{
				APIKey:      apiKey,
				BaseURL:     cfg.RollingAPIURL,
				HTTPTimeout: cfg.RollingAPITimeout,
			})
		},
		InitAttempts: cfg.EngineInitAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dice engine: %w", err)
	}

	dispatcher, err := dispatch.NewOrchestrator(&dispatch.Config{
		Engine:        diceEngine,
		Settings:      settingsStore,
		Notifier:      notifier,
		EventBus:      bus,
		IDGenerator:   idgen.NewUUID("roll"),
		ReadyInterval: cfg.EngineReadyInterval,
		ReadyAttempts: cfg.EngineReadyAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatch orchestrator: %w", err)
	}

	bridge := page.NewBridge()

	participants, err := participant.NewOrchestrator(&participant.Config{
		Engine:   diceEngine,
		Settings: settingsStore,
		Document: bridge,
		Notifier: notifier,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create participant orchestrator: %w", err)
	}

	session, err := lifecycle.NewOrchestrator(&lifecycle.Config{
		Registry:     registry,
		Engine:       diceEngine,
		Settings:     settingsStore,
		History:      history,
		Page:         bridge,
		Dispatcher:   dispatcher,
		Participants: participants,
		Notifier:     notifier,
		PollInterval: cfg.PollInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lifecycle orchestrator: %w", err)
	}

	pageHandler, err := pagehandler.NewHandler(&pagehandler.Config{
		Lifecycle: session,
		Bridge:    bridge,
		History:   history,
		Settings:  settingsStore,
		Notifier:  notifier,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create page handler: %w", err)
	}

	controlHandler, err := control.NewHandler(&control.HandlerConfig{
		Lifecycle: session,
		Notifier:  notifier,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create control handler: %w", err)
	}

	return &application{
		lifecycle: session,
		page:      pageHandler,
		control:   controlHandler,
	}, nil
}
