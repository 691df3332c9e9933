package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mjholt/crewdeck/internal/database"
	"github.com/mjholt/crewdeck/internal/logging"
	"github.com/mjholt/crewdeck/internal/logparse"
	"github.com/mjholt/crewdeck/internal/server"
)

func main() {
	port := os.Getenv("CREWDECK_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("CREWDECK_DB_PATH")
	if dbPath == "" {
		dbPath = "crewdeck.db"
	}

	logger := logging.Setup(os.Getenv("CREWDECK_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	parseCfg := logparse.Config{
		APIKey:  os.Getenv("CREWDECK_ANTHROPIC_KEY"),
		Model:   os.Getenv("CREWDECK_PARSE_MODEL"),
		BaseURL: os.Getenv("CREWDECK_PARSE_URL"),
	}
	parser := logparse.NewService(parseCfg, logger.With("component", "logparse"))

	srv := server.New(db, parser, logger)

	if err := bootstrapAdmin(srv); err != nil {
		log.Fatalf("failed to bootstrap admin user: %v", err)
	}

	// Expired sessions accumulate otherwise
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := srv.SessionStore().DeleteExpired(); err != nil {
				logger.Warn("session cleanup", "error", err)
			} else if n > 0 {
				logger.Debug("session cleanup", "deleted", n)
			}
			srv.RateLimiter().Cleanup()
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Crewdeck running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

// bootstrapAdmin creates the first admin account on an empty database so the
// instance is reachable after a fresh install.
func bootstrapAdmin(srv *server.Server) error {
	count, err := srv.UserStore().Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := os.Getenv("CREWDECK_ADMIN_EMAIL")
	password := os.Getenv("CREWDECK_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("no users exist and CREWDECK_ADMIN_EMAIL/CREWDECK_ADMIN_PASSWORD are unset; skipping admin bootstrap")
		return nil
	}

	_, err = srv.UserStore().Create(email, "Admin", "admin", password)
	return err
}
