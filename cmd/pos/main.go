// Package main is the entry point for the POS device agent. It keeps a
// local SQLite mirror of the catalog, queues sales made while offline
// and exchanges state with the server on a fixed interval.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Senanu-web/bskal-enterprise/internal/pos/client"
	"github.com/Senanu-web/bskal-enterprise/internal/pos/store"
	"github.com/Senanu-web/bskal-enterprise/internal/pos/syncer"
	"github.com/Senanu-web/bskal-enterprise/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	serverURL := getEnv("POS_SERVER_URL", "http://localhost:8080")
	token := getEnv("POS_SYNC_TOKEN", "")
	if token == "" {
		log.Fatalw("POS_SYNC_TOKEN is required")
	}

	dataDir := getEnv("POS_DATA_DIR", ".")
	local, err := store.Open(dataDir)
	if err != nil {
		log.Fatalw("local store initialization failed", "error", err)
	}

	interval := time.Duration(getEnvInt("POS_SYNC_INTERVAL_SECONDS", 30)) * time.Second
	remote := client.New(serverURL, token)
	s := syncer.New(remote, local, interval, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("pos agent started", "server", serverURL, "interval", interval.String(), "data_dir", dataDir)
	s.Run(ctx)
	log.Info("pos agent stopped")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}
