package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/rescuelink/disaster-response/internal/api"
	"github.com/rescuelink/disaster-response/internal/classify"
	"github.com/rescuelink/disaster-response/internal/config"
	"github.com/rescuelink/disaster-response/internal/ingestion"
	"github.com/rescuelink/disaster-response/internal/logging"
	"github.com/rescuelink/disaster-response/internal/news"
	"github.com/rescuelink/disaster-response/internal/repository"
	"github.com/rescuelink/disaster-response/internal/verify"
	"github.com/rescuelink/disaster-response/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		logging.Fatalf("Failed to create upload dir: %v", err)
	}

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := news.NewGoogleNews(cfg.News.BaseURL, cfg.News.Language,
		cfg.News.Country, cfg.News.Edition, cfg.News.FetchTimeout)
	verifier := verify.New(db, source, cfg.News.Region)
	oracle := classify.NewClient(cfg.Oracle.Command, cfg.Oracle.Args, cfg.Oracle.Timeout)

	// Deferred corroboration queue
	verifyPool := worker.NewPool(cfg.Worker.Count, cfg.Worker.BufferSize,
		func(ctx context.Context, job worker.Job) error {
			id := job.Payload.(string)
			if err := verifier.VerifyByID(ctx, id); err != nil {
				slog.Error("deferred verification failed", "id", id, "error", err)
				return err
			}
			return nil
		})
	verifyPool.Start(ctx)

	// News ingestion
	mgr := ingestion.NewManager(cfg, db, source)
	mgr.Start(ctx)

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimit))

	handler := api.NewHandler(db, db, oracle, verifier, verifyPool,
		cfg.Upload.Dir, cfg.Verify.Delay)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	mgr.Stop()
	verifyPool.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
