// Package main runs the deckvault REST API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mtgvault/deckvault/internal/api"
	"github.com/mtgvault/deckvault/internal/config"
	"github.com/mtgvault/deckvault/internal/storage"
	"github.com/mtgvault/deckvault/internal/versioning"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	dbPath      = flag.String("db-path", "", "Database path (default: ~/.deckvault/data.db)")
	migrateOnly = flag.Bool("migrate", false, "Run pending migrations and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	finalDBPath := *dbPath
	if finalDBPath == "" {
		finalDBPath = cfg.Database.Path
	}
	if finalDBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		finalDBPath = filepath.Join(home, ".deckvault", "data.db")
	}

	if *migrateOnly {
		mgr, err := storage.NewMigrationManager(finalDBPath)
		if err != nil {
			log.Fatalf("Failed to create migration manager: %v", err)
		}
		if err := mgr.Up(); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		version, dirty, err := mgr.Version()
		if err != nil {
			log.Fatalf("Failed to read migration version: %v", err)
		}
		if err := mgr.Close(); err != nil {
			log.Fatalf("Failed to close migration manager: %v", err)
		}
		fmt.Printf("database at %s migrated to version %d (dirty=%v)\n", finalDBPath, version, dirty)
		return
	}

	dbConfig := storage.DefaultConfig(finalDBPath)
	dbConfig.AutoMigrate = cfg.Database.AutoMigrate
	db, err := storage.Open(dbConfig)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	debounceWindow, err := cfg.GetDebounceWindow()
	if err != nil {
		log.Fatalf("Invalid debounce window: %v", err)
	}

	serverConfig := &api.Config{
		Port:           cfg.Server.Port,
		RateLimit:      cfg.Server.RateLimit,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		Versioning:     versioning.Config{DebounceWindow: debounceWindow},
	}
	if *port != 0 {
		serverConfig.Port = *port
	}

	server := api.NewServer(serverConfig, db)

	// Shut down cleanly on interrupt.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-done
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	fmt.Printf("deckvault listening on port %d (database: %s)\n", serverConfig.Port, finalDBPath)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
