package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gravadigital/rosterly-api/internal/auth"
	"github.com/gravadigital/rosterly-api/internal/config"
	"github.com/gravadigital/rosterly-api/internal/logger"
	"github.com/gravadigital/rosterly-api/internal/server"
	"github.com/gravadigital/rosterly-api/internal/storage"
)

func main() {
	cfg := config.Load()

	logger.Initialize(cfg.Log.Level)
	log := logger.Get()

	log.Info("Starting Rosterly API", "port", cfg.Server.Port, "db_driver", cfg.DB.Driver)

	container, err := storage.NewContainer(cfg)
	if err != nil {
		log.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error("Failed to close storage", "error", err)
		}
	}()

	if err := auth.EnsureAdminExists(container.DB(), cfg); err != nil {
		log.Error("Failed to bootstrap admin account", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg, container)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server stopped with error", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		log.Info("Received shutdown signal", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Stop(ctx); err != nil {
			log.Error("Graceful shutdown failed", "error", err)
			os.Exit(1)
		}

		log.Info("Server stopped cleanly")
	}
}
