package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"shipment-tracker/internal/config"
	"shipment-tracker/internal/infrastructure/database/postgres"
	"shipment-tracker/internal/ingestion"
	"shipment-tracker/internal/logger"
	"shipment-tracker/internal/metrics"
	"shipment-tracker/internal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
	)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, "up"); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ingestionMetrics := metrics.NewIngestionMetrics(registry)
	services := routes.NewServices(cfg, db, ingestionMetrics)

	if cfg.Bootstrap.AdminUsername != "" {
		if err := services.Users.EnsureAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
			logger.Fatal("Failed to create bootstrap admin", zap.Error(err))
		}
	}

	var subscriber *ingestion.Subscriber
	if cfg.MQTT.Enabled() {
		processor := ingestion.NewProcessor(
			services.ControlUnits,
			services.Auth,
			ingestionMetrics,
			cfg.MQTT.Workers,
			cfg.MQTT.QueueSize,
		)
		subscriber, err = ingestion.NewSubscriber(&cfg.MQTT, processor)
		if err != nil {
			logger.Fatal("Failed to configure MQTT ingestion", zap.Error(err))
		}
		if err := subscriber.Start(); err != nil {
			logger.Fatal("Failed to start MQTT ingestion", zap.Error(err))
		}
	}

	router := routes.SetupRoutes(ctx, cfg, db, services, metrics.NewHTTPMetrics(registry), registry)

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", zap.Error(err))
	}
	if subscriber != nil {
		subscriber.Stop()
	}

	logger.Info("Server exited properly")
}
