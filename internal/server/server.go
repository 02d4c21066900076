package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"legalscan/internal/config"
	"legalscan/internal/db"
	"legalscan/internal/extractor"
	"legalscan/internal/handlers"
	"legalscan/internal/middleware"
	"legalscan/internal/repositories"
	"legalscan/internal/routes"
	"legalscan/internal/services"
	"legalscan/internal/storage"
)

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, x-access-token")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewServer wires configuration, storage, services and routes into an
// http.Server ready to listen.
func NewServer(cfg *config.Config) (*http.Server, error) {
	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Redis is the system of record; without it nothing can be served
	logger.Printf("Connecting to Redis: %s (DB: %d)", cfg.RedisAddr(), cfg.RedisDB)
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		PoolSize: cfg.RedisPoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis client: %w", err)
	}
	if err := redisClient.Ping(ctx); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	logger.Println("✅ Redis connected successfully")

	docRepo := repositories.NewRedisDocumentRepository(redisClient.GetClient())

	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	ocrExtractor := extractor.NewPythonExtractor(extractor.PythonConfig{
		Python:  cfg.ExtractorPython,
		Script:  cfg.ExtractorScript,
		Timeout: cfg.ExtractorTimeout,
	}, log.New(os.Stdout, "[OCR] ", log.LstdFlags))

	// Object storage is optional; uploads are mirrored best-effort
	var objects storage.ObjectStorage
	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCSStorage(ctx, cfg.GCSBucket, log.New(os.Stdout, "[GCS] ", log.LstdFlags))
		if err != nil {
			logger.Printf("⚠️  Object storage disabled: %v", err)
		} else {
			objects = gcs
			logger.Printf("✅ Object storage connected (bucket: %s)", cfg.GCSBucket)
		}
	} else {
		logger.Println("⚠️  Object storage disabled - no bucket configured")
	}

	uploadService := services.NewUploadService(ocrExtractor, docRepo, objects, services.UploadConfig{
		TempDir:           cfg.TempDir,
		MaxFileSizeBytes:  cfg.MaxFileSizeBytes,
		AllowedMimeTypes:  cfg.AllowedMimeTypes,
		ChunkWindowWords:  cfg.ChunkWindowWords,
		ChunkOverlapWords: cfg.ChunkOverlapWords,
	}, log.New(os.Stdout, "[UPLOAD] ", log.LstdFlags))

	docHandler := handlers.NewDocumentHandler(uploadService, cfg.MaxFileSizeBytes, cfg.MaxBatchFiles, logger)

	analysisLogger := log.New(os.Stdout, "[ANALYSIS] ", log.LstdFlags)
	analysisDeps := handlers.AnalysisDeps{
		Entities: services.NewEntityExtractor(docRepo, analysisLogger),
	}
	if cfg.GeminiAPIKey != "" {
		generator, err := services.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Printf("⚠️  LLM analysis disabled: %v", err)
		} else {
			analysisDeps.Analyzer = services.NewAnalysisService(generator, docRepo, analysisLogger)
			logger.Printf("✅ LLM analysis enabled (model: %s)", cfg.GeminiModel)
		}
	} else {
		logger.Println("⚠️  LLM analysis disabled - no API key configured")
	}
	analysisHandler := handlers.NewAnalysisHandler(analysisDeps, analysisLogger)

	h := &routes.Handlers{
		Doc:      docHandler,
		Analysis: analysisHandler,
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, h, middleware.Auth(cfg.JWTSecret, logger))

	// Add Swagger endpoints
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.ServerPort)),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: corsMiddleware(router),
	}, nil
}
