package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/gorm"

	"trashsort-backend/cmd"
	"trashsort-backend/internal/api"
	"trashsort-backend/internal/classifier"
	"trashsort-backend/internal/config"
	"trashsort-backend/internal/database"
	"trashsort-backend/internal/storage"
)

func createStorage(cfg *config.Config) (storage.Provider, error) {
	if cfg.HasS3() {
		return storage.NewS3Provider(&storage.S3ProviderConfig{
			S3EndpointURL:     cfg.S3EndpointURL,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
			S3Region:          cfg.S3Region,
		})
	}

	slog.Info("no object storage credentials configured, using local storage", "dir", cfg.LocalStorageDir)
	return storage.NewLocalProvider(cfg.LocalStorageDir)
}

func createClassifier(cfg *config.Config) classifier.Classifier {
	if !cfg.HasClassifier() {
		slog.Info("no classifier configured, running in degraded mode")
		return nil
	}

	switch cfg.ClassifierBackend {
	case config.BackendOpenAI:
		return classifier.NewOpenAIClassifier(cfg.OpenAIModel)
	default:
		return classifier.NewWatsonClassifier(cfg.VREndpoint, cfg.VRAPIKey, cfg.VRModel)
	}
}

func main() {
	log.Println("Starting API Server...")

	cmd.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	var db *gorm.DB
	if cfg.HasDatabase() {
		db, err = database.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
	} else {
		slog.Info("no database configured, running in degraded mode")
	}

	store, err := createStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to create storage client: %v", err)
	}
	if err := store.CreateBucket(context.Background(), cfg.ImageBucket); err != nil {
		log.Fatalf("Failed to create image bucket: %v", err)
	}

	clf := createClassifier(cfg)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	service := api.NewLabelingService(db, store, clf, cfg.ImageBucket, api.DefaultSampling())
	service.AddRoutes(r)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	// Goroutine for graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	slog.Info("server started", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %d: %v\n", cfg.Port, err)
	}

	slog.Info("server stopped")
}
