package config

import (
	"context"
	"fmt"
	"os"
	"time"

	detectionHandler "GridVision/internal/api/detection/handler"
	detectionService "GridVision/internal/api/detection/service"
	"GridVision/internal/middleware"
	"GridVision/pkg/redis"
	"GridVision/pkg/s3"
	"GridVision/pkg/spatial"
	"GridVision/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	handlers    []handler
	detector    *spatial.Detector
	redisServer redis.IRedis
	s3Client    s3.ItfS3
	uploadsDir  string
	timeout     time.Duration
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{
		uploadsDir: "uploads",
		timeout:    120 * time.Second,
	}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.detector == nil {
		return nil, fmt.Errorf("detector is required")
	}
	if server.middleware == nil {
		return nil, fmt.Errorf("middleware is required")
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New()
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDetector(detector *spatial.Detector) ServerOption {
	return func(s *Server) error {
		s.detector = detector
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, 2, 5)
		return nil
	}
}

// WithS3Client stores results in S3 when RESULT_STORAGE is "s3".
func WithS3Client() ServerOption {
	return func(s *Server) error {
		if os.Getenv("RESULT_STORAGE") != "s3" {
			return nil
		}

		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithUploadsDir(dir string) ServerOption {
	return func(s *Server) error {
		if dir != "" {
			s.uploadsDir = dir
		}
		return nil
	}
}

func WithDetectionTimeout(timeout time.Duration) ServerOption {
	return func(s *Server) error {
		if timeout <= 0 {
			return fmt.Errorf("detection timeout must be positive")
		}
		s.timeout = timeout
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())

	// Detection
	store := detectionService.NewResultStore(s.s3Client, s.uploadsDir)
	detectionServices := detectionService.NewDetectionService(s.log, s.detector, store, s.utils, s.uploadsDir)
	detectionHandlers := detectionHandler.New(s.log, s.validator, s.middleware, detectionServices, s.timeout)

	s.setupHealthCheck()
	s.engine.Static("/uploads", s.uploadsDir)

	router := s.engine.Group("/api/v1")
	router.Get("/health", healthCheck)

	// unversioned routes kept for clients of the first API release
	legacy := s.engine.Group("/api")

	s.handlers = append(s.handlers, detectionHandlers)
	for _, h := range s.handlers {
		h.Start(router)
		h.Start(legacy)
	}
}

func (s *Server) Run() error {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.engine.ShutdownWithContext(ctx)
	if s.redisServer != nil {
		if cerr := s.redisServer.Close(); cerr != nil {
			s.log.Warnf("Failed to close Redis client: %v", cerr)
		}
	}
	return err
}

func (s *Server) App() *fiber.App {
	return s.engine
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", healthCheck)
}

func healthCheck(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"message": "Vision Detection API is running",
	})
}
