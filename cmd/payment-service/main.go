package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/shvark-payment-service/internal/app/setup"
	"github.com/LavaJover/shvark-payment-service/internal/config"
	"github.com/LavaJover/shvark-payment-service/internal/delivery/grpcapi"
	httpapi "github.com/LavaJover/shvark-payment-service/internal/delivery/http"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	appLogger, closeLog, err := logger.New(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer closeLog()
	slog.SetDefault(appLogger)

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps, err := setup.InitializeDependencies(cfg)
	if err != nil {
		slog.Error("failed to init dependencies", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			slog.Error("failed to close dependencies", "error", err)
		}
	}()

	useCases, err := setup.InitializeUseCases(deps)
	if err != nil {
		slog.Error("failed to init usecases", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Outbox relay
	useCases.BackgroundTasks.StartAll()

	// gRPC health
	healthHandler := grpcapi.NewHealthHandler(deps.Ping)
	go healthHandler.Run(ctx, 10*time.Second)

	grpcServer := grpcapi.NewServer(healthHandler)
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", cfg.GRPCServer.Host, cfg.GRPCServer.Port))
	if err != nil {
		slog.Error("failed to listen", "error", err)
		os.Exit(1)
	}
	go func() {
		slog.Info("gRPC server started", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC server stopped", "error", err)
			stop()
		}
	}()

	// HTTP API
	router := httpapi.NewRouter(httpapi.RouterDeps{
		Usecase:       useCases.PaymentUsecase,
		JWTSecret:     cfg.Auth.JWTSecret,
		ServerMetrics: deps.ServerMetrics,
		Gatherer:      deps.Registry,
		Health:        deps.Ping,
	})
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}
	go func() {
		slog.Info("HTTP server started", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	useCases.BackgroundTasks.Stop(shutdownCtx)
}
