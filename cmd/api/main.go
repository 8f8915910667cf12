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

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/videogen-team/videogen/pkg/validator"

	"github.com/videogen-team/videogen/internal/adapter/handler"
	"github.com/videogen-team/videogen/internal/adapter/repository"
	"github.com/videogen-team/videogen/internal/infrastructure/cache"
	"github.com/videogen-team/videogen/internal/infrastructure/database"
	"github.com/videogen-team/videogen/internal/infrastructure/queue"
	"github.com/videogen-team/videogen/internal/infrastructure/storage"
	"github.com/videogen-team/videogen/internal/usecase/media"
	"github.com/videogen-team/videogen/internal/usecase/script"
	"github.com/videogen-team/videogen/internal/usecase/video"
	pkgai "github.com/videogen-team/videogen/pkg/ai"
	"github.com/videogen-team/videogen/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run AutoMigrate only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Running migrations (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize Redis
	log.Println("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize asset directories
	log.Println("📁 Preparing asset directories...")
	assetPaths := media.NewAssetPaths(&cfg.Media)
	if err := assetPaths.EnsureDirs(); err != nil {
		log.Fatalf("Failed to prepare asset directories: %v", err)
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	generationRepo := repository.NewGenerationRepository(db)

	// Initialize provider clients and synthesizers
	log.Println("🤖 Initializing generation providers...")
	deepseekClient := pkgai.NewDeepSeekClient(&cfg.DeepSeek)
	openaiClient := pkgai.NewOpenAIClient(&cfg.OpenAI)

	scriptGenerator := script.NewGenerator(deepseekClient, logger)
	imageSynth := media.NewImageSynthesizer(openaiClient, assetPaths, logger)
	audioSynth := media.NewAudioSynthesizer(openaiClient, assetPaths, logger)
	assembler := video.NewFFmpegAssembler(assetPaths, &cfg.Media, logger)

	// Initialize archive storage (optional)
	var archive video.ArchiveStore
	if cfg.ArchiveEnabled() {
		log.Println("🗄️  Initializing archive storage...")
		minioClient, err := storage.NewMinIOClient(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize archive storage: %v", err)
		}
		archive = minioClient
	} else {
		log.Println("🗄️  Archive storage disabled; videos served from local disk only")
	}

	// Initialize work queue and pipeline
	log.Println("📬 Initializing work queue...")
	workQueue := queue.NewRedisQueue(redisClient)

	pipeline := video.NewPipeline(generationRepo, scriptGenerator, imageSynth, audioSynth, assembler, archive, logger)
	videoService := video.NewVideoService(generationRepo, workQueue, pipeline, assetPaths, cfg, logger)

	// Start the pipeline worker pool
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if err := videoService.StartWorkerPool(workerCtx, cfg.Pipeline.WorkerCount); err != nil {
		log.Fatalf("Failed to start worker pool: %v", err)
	}

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	generationHandler := handler.NewGenerationHandler(videoService, logger)
	providersHandler := handler.NewProvidersHandler(scriptGenerator, imageSynth, audioSynth, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, generationHandler, providersHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	// Let in-flight pipelines finish their current task before exit
	if err := videoService.StopWorkerPool(); err != nil {
		log.Printf("⚠️  Worker pool shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
