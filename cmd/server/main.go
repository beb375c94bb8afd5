package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/addissystems/erp-dashboard/internal/cache"
	"github.com/addissystems/erp-dashboard/internal/config"
	"github.com/addissystems/erp-dashboard/internal/dashboard"
	"github.com/addissystems/erp-dashboard/internal/odoo"
	"github.com/addissystems/erp-dashboard/internal/server"
	"github.com/addissystems/erp-dashboard/pkg/utils"
)

func main() {
	// Load .env if present, then configuration
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting ERP finance dashboard",
		zap.String("odoo_url", cfg.Odoo.URL),
		zap.String("database", cfg.Odoo.Database),
		zap.Int("port", cfg.Server.Port))

	// Load the bank journal allow-list resource
	journals, err := dashboard.LoadJournalAllowList(cfg.Odoo.JournalsFile)
	if err != nil {
		logger.Fatal("Failed to load journal allow-list", zap.Error(err))
	}

	// Initialize the Odoo client and the fetchers behind the cache
	client, err := odoo.NewClient(odoo.Config{
		URL:      cfg.Odoo.URL,
		Database: cfg.Odoo.Database,
		Username: cfg.Odoo.Username,
		Password: cfg.Odoo.Password,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create Odoo client", zap.Error(err))
	}

	fetcher := dashboard.NewFetcher(client, journals, logger)

	store := cache.NewStore(func() *dashboard.Snapshot {
		if err := client.Authenticate(); err != nil {
			logger.Error("Odoo connection failed", zap.Error(err))
			return nil
		}
		return fetcher.BuildSnapshot()
	}, cfg.Cache.TTL, logger)

	// Background refresh loop
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := store.Start(ctx, cfg.Cache.RefreshInterval); err != nil {
		logger.Fatal("Failed to start refresh scheduler", zap.Error(err))
	}
	defer store.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		OdooURL:      cfg.Odoo.URL,
		TemplateGlob: "web/templates/*",
	}, store, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
