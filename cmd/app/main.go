package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"GridVision/internal/config"
	"GridVision/pkg/log"
	"GridVision/pkg/oracle"
	"GridVision/pkg/redis"
	"GridVision/pkg/spatial"
	"github.com/joho/godotenv"
)

func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded: %v", err)
	}

	ctx := context.Background()

	provider, err := config.ParseProvider(os.Getenv("ORACLE_PROVIDER"))
	if err != nil {
		logger.Fatal(err)
	}

	policy, err := config.LoadPolicy()
	if err != nil {
		logger.Fatalf("Invalid detection policy: %v", err)
	}

	timeout, err := config.DurationEnv("DETECTION_TIMEOUT", 120*time.Second)
	if err != nil {
		logger.Fatal(err)
	}

	model, closeModel, err := config.NewVisionModel(ctx, provider)
	if err != nil {
		logger.Fatalf("Failed to create vision model: %v", err)
	}
	defer closeModel()

	var redisServer redis.IRedis
	var cache oracle.Store
	if os.Getenv("REDIS_ADDRESS") != "" {
		if redisServer, err = redis.New(logger); err != nil {
			logger.Warnf("Oracle cache disabled: %v", err)
		} else {
			cache = redisServer
		}
	}

	visionOracle, err := config.NewOracle(model, cache, logger)
	if err != nil {
		logger.Fatal(err)
	}

	detector, err := spatial.New(visionOracle, logger, spatial.WithPolicy(policy))
	if err != nil {
		logger.Fatal(err)
	}

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithMiddleware(),
		config.WithDetector(detector),
		config.WithRedisServer(redisServer),
		config.WithS3Client(),
		config.WithUploadsDir(os.Getenv("UPLOADS_DIR")),
		config.WithDetectionTimeout(timeout),
		config.WithUtils(),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.WithField("provider", provider).Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
