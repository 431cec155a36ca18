package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/ai"
	"github.com/FelipeCgrillo/liquidapp/internal/ai/gemini"
	"github.com/FelipeCgrillo/liquidapp/internal/ai/openai"
	"github.com/FelipeCgrillo/liquidapp/internal/config"
	"github.com/FelipeCgrillo/liquidapp/internal/database/minio"
	"github.com/FelipeCgrillo/liquidapp/internal/database/postgres"
	"github.com/FelipeCgrillo/liquidapp/internal/database/redis"
	"github.com/FelipeCgrillo/liquidapp/internal/event"
	"github.com/FelipeCgrillo/liquidapp/internal/handlers"
	"github.com/FelipeCgrillo/liquidapp/internal/repository"
	"github.com/FelipeCgrillo/liquidapp/internal/services"
	"github.com/FelipeCgrillo/liquidapp/internal/worker"

	"github.com/gofiber/fiber/v3"
	"github.com/jmoiron/sqlx"
)

func setupLogging(logDir string) (*os.File, error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
		}
	}()

	fmt.Println("Log directory:", logDir)
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	if absPath, err := filepath.Abs(logFile); err == nil {
		fmt.Printf("Logging to: %s\n", absPath)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	slog.SetDefault(slog.New(slog.NewJSONHandler(file, nil)))

	return file, nil
}

// newAIProvider returns nil models when no credentials are configured; the
// analysis endpoints then answer with a configuration error.
func newAIProvider(ctx context.Context, cfg *config.LiquidAppConfig) (ai.VisionModel, ai.TextModel, func()) {
	noop := func() {}
	if !cfg.AIConfigured() {
		log.Printf("AI provider %q has no credentials, analysis endpoints are disabled", cfg.AIProvider)
		return nil, nil, noop
	}

	switch cfg.AIProvider {
	case config.ProviderGemini:
		provider, err := gemini.NewProvider(ctx, cfg.GeminiAPICfg, ai.NewHTTPImageFetcher())
		if err != nil {
			log.Printf("Failed to initialize Gemini provider: %v", err)
			return nil, nil, noop
		}
		log.Printf("Using Gemini provider with %d key(s)", len(cfg.GeminiAPICfg.APIKeys))
		return provider, provider, provider.Close
	default:
		client := openai.NewClient(cfg.GroqCfg)
		log.Printf("Using OpenAI-compatible provider at %s", cfg.GroqCfg.BaseURL)
		return client, client, noop
	}
}

func connectDB(cfg config.PostgresConfig) *sqlx.DB {
	log.Printf("Connecting to PostgreSQL with: host=%s, port=%s, user=%s, dbname=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.DBname)
	db, err := postgres.ConnectAndCreateDB(cfg)
	if err != nil {
		log.Printf("error connect to database: %s", err)
		// repositories need a live handle, so wait here instead of in the background
		postgres.RetryConnectOnFailed(30*time.Second, &db, cfg)
	}
	return db
}

func main() {
	cfg := config.New()

	logFile, err := setupLogging(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := connectDB(cfg.PostgresCfg)
	defer db.Close()

	minioClient, err := minio.NewMinioClient(cfg.MinioCfg)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}
	evidenceBucket := minioClient.EvidenceBucket()

	var realtime services.AnalysisEventPublisher
	redisClient, err := redis.NewRedisClient(cfg.RedisCfg, "liquidapp-api")
	if err != nil {
		log.Printf("Redis unavailable, realtime analysis events disabled: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		realtime = redisClient.Publisher()
	}

	var alerts services.FraudAlertSink
	var fraudPublisher *event.FraudAlertPublisher
	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		log.Printf("RabbitMQ unavailable, fraud alerts disabled: %v", err)
	} else {
		defer rabbitConn.Close()
		fraudPublisher = event.NewFraudAlertPublisher(rabbitConn)
		alerts = fraudPublisher
	}

	vision, text, closeAI := newAIProvider(ctx, cfg)
	defer closeAI()

	// Repositories
	evidenceRepo := repository.NewEvidenceRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	claimRepo := repository.NewClaimRepository(db)
	reportRepo := repository.NewReportRepository(db)
	clientRepo := repository.NewClientRepository(db)
	analysisStore := repository.NewPostgresAnalysisStore(db)

	// Worker pools
	poolCtx, cancelPools := context.WithCancel(context.Background())
	var poolWg sync.WaitGroup
	analysisPool := worker.NewWorkingPool("analysis", cfg.WorkerCfg.AnalysisWorkers, cfg.WorkerCfg.QueueSize, cfg.WorkerCfg.JobTimeout)
	maintenancePool := worker.NewWorkingPool("maintenance", 1, 4, 10*time.Minute)
	poolWg.Add(2)
	go analysisPool.Start(poolCtx, &poolWg)
	go maintenancePool.Start(poolCtx, &poolWg)

	// Services
	analysisService := services.NewAnalysisService(analysisStore, evidenceRepo, vision, realtime, alerts, analysisPool)
	evidenceService := services.NewEvidenceService(evidenceBucket, evidenceRepo, cfg.SignedURLTTL)
	claimService := services.NewClaimService(claimRepo, evidenceRepo, analysisRepo, reportRepo)
	reportService := services.NewReportService(claimService, text, reportRepo)
	lookupService := services.NewClientLookupService(clientRepo, cfg.ClientCache.Size, cfg.ClientCache.TTL)
	reconciliationService := services.NewReconciliationService(evidenceBucket, evidenceRepo, cfg.ReconcileCfg.GracePeriod)

	scheduler := worker.NewJobScheduler("storage-reconciliation", cfg.ReconcileCfg.Interval, maintenancePool)
	scheduler.AddJob(worker.ScheduledJob{Name: "orphan-sweep", Run: reconciliationService.SweepJob})
	go scheduler.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:   "liquidapp-api",
		BodyLimit: 20 * 1024 * 1024,
	})
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		status := fiber.Map{
			"status":         "ok",
			"ai_configured":  vision != nil,
			"analysis_queue": analysisPool.QueueLength(),
		}
		if fraudPublisher != nil {
			status["fraud_alerts"] = fraudPublisher.HealthCheck()
		}
		if redisClient != nil {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			status["realtime"] = redisClient.Health(pingCtx)
		}
		return c.Status(fiber.StatusOK).JSON(status)
	})

	handlers.NewAnalysisHandler(analysisService).Register(app)
	handlers.NewEvidenceHandler(evidenceService).Register(app)
	handlers.NewClaimHandler(claimService, reportService).Register(app)
	handlers.NewClientHandler(lookupService).Register(app)
	handlers.NewAdminHandler(reconciliationService).Register(app)

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := app.Listen(fmt.Sprintf("0.0.0.0:%s", cfg.Port)); err != nil {
			log.Printf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(15 * time.Second); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// accepted analyses finish before the connections close
	cancelPools()
	poolWg.Wait()
	log.Println("Server stopped")
}
