package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nestpoint/internal/database"
	"nestpoint/internal/logging"
	"nestpoint/internal/media"
	"nestpoint/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("NESTPOINT_LOG_LEVEL"))

	port := os.Getenv("NESTPOINT_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("NESTPOINT_DB_PATH")
	if dbPath == "" {
		dbPath = "nestpoint.db"
	}

	adminCode := os.Getenv("NESTPOINT_ADMIN_CODE")
	if adminCode == "" {
		adminCode = "Admin"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	mediaSvc := media.NewService(media.Config{
		Endpoint:  os.Getenv("NESTPOINT_S3_ENDPOINT"),
		Bucket:    os.Getenv("NESTPOINT_S3_BUCKET"),
		Region:    os.Getenv("NESTPOINT_S3_REGION"),
		AccessKey: os.Getenv("NESTPOINT_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("NESTPOINT_S3_SECRET_KEY"),
	})
	if mediaSvc == nil {
		logger.Warn("media storage not configured, upload links disabled")
	}

	srv := server.New(db, mediaSvc, adminCode, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Background cleanup goroutine
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("nestpoint listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
