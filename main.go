package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"template-service/controllers"
	"template-service/database"
	"template-service/repository"
	"template-service/routes"
	"template-service/services"
	"template-service/sheet"
	"template-service/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var TemplateRedis *redis.Client

func main() {
	// Initialize structured logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()        // Flushes buffer, if any
	zap.ReplaceGlobals(logger) // Set the global logger

	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	// --- 1. Initialization ---
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379"
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		zap.L().Warn("Failed to parse REDIS_URL, falling back to default", zap.Error(err))
		redisOpts = &redis.Options{Addr: "redis:6379", DB: 0}
	}
	TemplateRedis = redis.NewClient(redisOpts)

	// Load configuration from environment variables
	cfg, err := LoadConfig()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	if err := database.ConnectWithConfig(cfg.MongoURL, cfg.MongoDBName); err != nil {
		zap.L().Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := database.Close(); err != nil {
			zap.L().Error("Failed to close MongoDB", zap.Error(err))
		}
	}()

	// Initialize AWS configuration (LocalStack-compatible) using AWS SDK v2
	awsRegion := os.Getenv("AWS_REGION")
	if awsRegion == "" {
		awsRegion = "us-east-1"
	}
	awsEndpoint := os.Getenv("AWS_ENDPOINT") // e.g. http://localstack:4566
	awsS3Endpoint := os.Getenv("AWS_S3_ENDPOINT")
	if awsS3Endpoint == "" {
		awsS3Endpoint = awsEndpoint
	}
	awsAccessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	awsSecret := os.Getenv("AWS_SECRET_ACCESS_KEY")

	cfgOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(awsRegion),
	}
	if awsAccessKey != "" || awsSecret != "" {
		cfgOpts = append(cfgOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecret, ""),
		))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(context.Background(), cfgOpts...)
	if err != nil {
		zap.L().Fatal("Failed to load AWS config", zap.Error(err))
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if awsS3Endpoint != "" {
			o.BaseEndpoint = aws.String(awsS3Endpoint)
		}
	})

	// Presign client for generating presigned URLs
	presignClient := s3.NewPresignClient(s3Client)

	// --- 2. Dependency Injection (Wiring the layers together) ---

	bucket := os.Getenv("AWS_S3_BUCKET")
	if bucket == "" {
		bucket = "spreadsheet-templates"
	}
	prefix := os.Getenv("AWS_S3_PREFIX")

	blobStore := storage.NewS3Store(s3Client, presignClient, bucket, prefix)

	templateRepo := repository.NewTemplateRepository(database.DB)
	scenarioRepo := repository.NewScenarioRepository(database.DB)
	overrideRepo := repository.NewOverrideRepository(database.DB)

	encoderOpts := sheet.EncoderOptions{
		XlsBinaryPath: cfg.XlsBinaryPath,
		TempDir:       cfg.ExportTempDir,
	}

	templateService := services.NewTemplateService(templateRepo, scenarioRepo, overrideRepo, blobStore)
	scenarioService := services.NewScenarioService(templateRepo, scenarioRepo, overrideRepo)
	overrideService := services.NewOverrideService(templateRepo, overrideRepo)
	exportService := services.NewExportService(templateRepo, scenarioRepo, overrideRepo, blobStore, encoderOpts)

	validator := controllers.NewRequestValidator()
	templateController := controllers.NewTemplateController(templateService, validator)
	scenarioController := controllers.NewScenarioController(scenarioService, validator)
	overrideController := controllers.NewOverrideController(overrideService, validator)
	exportController := controllers.NewExportController(exportService, validator)
	exportJobHandler := controllers.NewExportJobHandler(exportService, TemplateRedis, validator)
	presignHandler := controllers.NewPresignedURLHandler(templateService)

	// Background export worker
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	services.StartExportWorker(workerCtx, TemplateRedis, exportService, blobStore)

	// --- 3. HTTP Server & Middleware ---

	r := gin.New()
	r.Use(gin.Recovery()) // Recover from panics

	// Add request timeout middleware
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// --- 4. Route Registration ---

	routes.RegisterRoutes(r, templateController, scenarioController, overrideController,
		exportController, exportJobHandler, presignHandler)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// --- 5. Graceful Shutdown ---

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zap.L().Info("Template Service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for an interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down Template Service...")

	workerCancel()

	// Create a context with a timeout to allow for cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Close Redis connection
	if TemplateRedis != nil {
		if err := TemplateRedis.Close(); err != nil {
			zap.L().Error("Failed to close Redis", zap.Error(err))
		}
	}

	zap.L().Info("Template Service stopped gracefully")
}
