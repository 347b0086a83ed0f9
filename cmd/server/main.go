// Package main is the entry point for the birrificio server: a local
// single-user app that serves the management API on localhost and opens
// the system browser.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"birrificio/internal/domain/brewing"
	"birrificio/internal/domain/catalog"
	"birrificio/internal/domain/expiry"
	"birrificio/internal/domain/sales"
	"birrificio/internal/domain/warehouse"
	"birrificio/internal/domain/year"
	"birrificio/internal/infrastructure/backup"
	v1 "birrificio/internal/infrastructure/http/v1"
	"birrificio/internal/infrastructure/storage/sqlite"
	"birrificio/pkg/logger"
)

func main() {
	// .env is optional; a missing file just means defaults.
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Info("starting birrificio server")

	store, err := sqlite.Open(getEnv("DB_PATH", "./birrificio.db"))
	if err != nil {
		log.Fatalw("failed to open database", "error", err)
	}
	defer store.Close()
	log.Info("database opened")

	router := v1.NewRouter(v1.RouterConfig{
		Logger:     log,
		Warehouse:  warehouse.NewService(store),
		Brewing:    brewing.NewService(store),
		Sales:      sales.NewService(store),
		Catalog:    catalog.NewService(store),
		Years:      year.NewService(store),
		Reconciler: expiry.NewReconciler(store),
		Backup:     backup.NewService(store),
	})

	port := getEnv("APP_PORT", "8080")
	addr := "localhost:" + port
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	if getEnv("OPEN_BROWSER", "true") == "true" {
		openBrowser("http://" + addr)
	}

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = exec.Command("xdg-open", url).Start()
	}
	if err != nil {
		fmt.Printf("could not open browser: %v\n", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
