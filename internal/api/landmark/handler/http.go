package landmarkHandler

import (
	landmarkService "LandmarkGolang/internal/api/landmark/service"
	"LandmarkGolang/internal/middleware"
	"LandmarkGolang/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type LandmarkHandler struct {
	log             *logrus.Logger
	validator       *validator.Validate
	middleware      middleware.Middleware
	landmarkService landmarkService.ILandmarkService
	utils           utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ls landmarkService.ILandmarkService,
	utils utils.IUtils,
) *LandmarkHandler {
	return &LandmarkHandler{
		landmarkService: ls,
		log:             log,
		validator:       validator,
		middleware:      middleware,
		utils:           utils,
	}
}

func (h *LandmarkHandler) Start(srv fiber.Router) {
	srv.Get("/", h.Root)
	srv.Get("/health", h.Health)
	srv.Get("/models", h.ListModels)

	srv.Post("/detect-landmarks", h.middleware.NewRateLimiter, h.DetectLandmarks)
	srv.Post("/detect-landmarks-advanced", h.middleware.NewRateLimiter, h.DetectLandmarksAdvanced)
	srv.Post("/detect-nose", h.middleware.NewRateLimiter, h.DetectNose)
}
