package config

import (
	"context"
	"fmt"
	"time"

	landmarkHandler "LandmarkGolang/internal/api/landmark/handler"
	landmarkService "LandmarkGolang/internal/api/landmark/service"
	"LandmarkGolang/internal/middleware"
	"LandmarkGolang/pkg/catalog"
	"LandmarkGolang/pkg/facemesh"
	"LandmarkGolang/pkg/gemini"
	landmarkPkg "LandmarkGolang/pkg/landmark"
	"LandmarkGolang/pkg/metrics"
	"LandmarkGolang/pkg/rekognition"
	"LandmarkGolang/pkg/replicate"
	"LandmarkGolang/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine          *fiber.App
	log             *logrus.Logger
	env             *Env
	middleware      middleware.Middleware
	validator       *validator.Validate
	utils           utils.IUtils
	handlers        []handler
	metrics         *metrics.Metrics
	catalog         *catalog.Catalog
	replicateClient *replicate.Client
	faceMesh        *facemesh.Client
	rekognition     *rekognition.Detector
	geminiClient    gemini.IGemini
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

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
	if server.env == nil {
		return nil, fmt.Errorf("environment is required")
	}
	if server.middleware == nil {
		return nil, fmt.Errorf("middleware is required")
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

func WithEnv(env *Env) ServerOption {
	return func(s *Server) error {
		s.env = env
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		if s.env == nil {
			return fmt.Errorf("environment must be loaded before utils")
		}
		s.utils = utils.New(s.env.MaxUploadBytes)
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		if s.env == nil {
			return fmt.Errorf("environment must be loaded before middleware")
		}
		s.middleware = middleware.New(s.log, s.utils, middleware.Config{
			RequestsPerSecond: s.env.RateLimit,
			Burst:             s.env.RateBurst,
		})
		return nil
	}
}

func WithMetrics() ServerOption {
	return func(s *Server) error {
		s.metrics = metrics.New()
		return nil
	}
}

func WithCatalog() ServerOption {
	return func(s *Server) error {
		c, err := catalog.Load()
		if err != nil {
			return fmt.Errorf("failed to load model catalogue: %w", err)
		}
		s.catalog = c
		return nil
	}
}

func WithReplicateClient() ServerOption {
	return func(s *Server) error {
		if s.env == nil {
			return fmt.Errorf("environment must be loaded before the Replicate client")
		}
		s.replicateClient = replicate.New(replicate.Config{
			Token:   s.env.ReplicateAPIToken,
			BaseURL: s.env.ReplicateBaseURL,
			Timeout: s.env.DetectorTimeout,
		})
		return nil
	}
}

func WithFaceMeshClient() ServerOption {
	return func(s *Server) error {
		if s.env == nil {
			return fmt.Errorf("environment must be loaded before the face mesh client")
		}
		s.faceMesh = facemesh.New(facemesh.Config{
			URL:         s.env.FaceMeshURL,
			ReadTimeout: s.env.DetectorTimeout,
		})
		s.faceMesh.ConnectInBackground()
		return nil
	}
}

// WithRekognition enables the AWS detector when AWS_REGION is set.
func WithRekognition() ServerOption {
	return func(s *Server) error {
		if s.env == nil || !s.env.RekognitionEnabled() {
			return nil
		}
		detector, err := rekognition.New(rekognition.Config{
			Region:          s.env.AWSRegion,
			AccessKeyID:     s.env.AWSAccessKeyID,
			SecretAccessKey: s.env.AWSSecretAccessKey,
		})
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize Rekognition client: %v", err)
			}
			return fmt.Errorf("failed to create Rekognition client: %w", err)
		}
		s.rekognition = detector
		return nil
	}
}

// WithGeminiClient enables the Gemini detector when GEMINI_API_KEY is set.
func WithGeminiClient() ServerOption {
	return func(s *Server) error {
		if s.env == nil || !s.env.GeminiEnabled() {
			return nil
		}
		client, err := gemini.NewGeminiClient(context.Background(), s.env.GeminiAPIKey, s.env.GeminiModelName)
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create Gemini client: %v", err)
			}
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		s.geminiClient = client
		return nil
	}
}

// detectors lists every detector available at startup. Catalogue models are
// registered as hosted detectors so they show up in /health.
func (s *Server) detectors() []landmarkPkg.Detector {
	var detectors []landmarkPkg.Detector
	if s.faceMesh != nil {
		detectors = append(detectors, s.faceMesh)
	}
	if s.rekognition != nil {
		detectors = append(detectors, s.rekognition)
	}
	if s.geminiClient != nil {
		detectors = append(detectors, gemini.NewDetector(s.geminiClient))
	}
	if s.replicateClient != nil && s.catalog != nil {
		for _, m := range s.catalog.List() {
			detectors = append(detectors, replicate.NewDetector(s.replicateClient, m.Ref(), m.Coordinates))
		}
	}
	return detectors
}

func (s *Server) RegisterHandler() error {
	if s.utils == nil {
		s.utils = utils.New(s.env.MaxUploadBytes)
	}
	if s.validator == nil {
		s.validator = NewValidator()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}

	registry, err := landmarkService.NewRegistry(s.detectors()...)
	if err != nil {
		return fmt.Errorf("failed to register detectors: %w", err)
	}
	if _, ok := registry.Get(s.env.DefaultDetector); !ok {
		s.log.WithFields(logrus.Fields{
			"default_detector": s.env.DefaultDetector,
			"registered":       registry.IDs(),
		}).Warn("Default detector is not registered, it will be resolved as a hosted model")
	}

	colors, err := s.env.ColorTable()
	if err != nil {
		return fmt.Errorf("failed to build color table: %w", err)
	}

	// Landmark
	landmarkServices := landmarkService.NewLandmarkService(s.log, registry, s.replicateClient, s.catalog, s.metrics, landmarkService.Config{
		DefaultDetector: s.env.DefaultDetector,
		DetectorTimeout: s.env.DetectorTimeout,
		Colors:          colors,
	})
	landmarkHandlers := landmarkHandler.New(s.log, s.validator, s.middleware, landmarkServices, s.utils)

	s.handlers = append(s.handlers, landmarkHandlers)
	return nil
}

func (s *Server) Run() error {
	s.mount()
	return s.engine.Listen(fmt.Sprintf(":%s", s.env.AppPort))
}

// mount installs middleware and routes. Routes sit at the root, not under a
// versioned prefix.
func (s *Server) mount() {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	s.setupMetrics()

	for _, h := range s.handlers {
		h.Start(s.engine)
	}
}

func (s *Server) Shutdown(timeout time.Duration) error {
	if s.faceMesh != nil {
		s.faceMesh.Close()
	}
	if s.geminiClient != nil {
		s.geminiClient.Close()
	}
	return s.engine.ShutdownWithTimeout(timeout)
}

func (s *Server) setupMetrics() {
	s.engine.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
}
