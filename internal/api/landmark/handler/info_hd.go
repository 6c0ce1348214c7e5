package landmarkHandler

import (
	"LandmarkGolang/internal/api/landmark"
	"LandmarkGolang/pkg/handlerUtil"

	"github.com/gofiber/fiber/v2"
)

func (h *LandmarkHandler) Root(ctx *fiber.Ctx) error {
	errHandler := handlerUtil.New(h.log)

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, landmark.RootResponse{
		Message: "Facial landmark annotation service",
		Endpoints: map[string]string{
			"GET /health":                     "Service and detector status",
			"GET /models":                     "Hosted models and local detectors",
			"GET /metrics":                    "Prometheus metrics",
			"POST /detect-landmarks":          "Annotate facial landmarks with the default detector",
			"POST /detect-landmarks-advanced": "Annotate facial landmarks with a chosen model",
			"POST /detect-nose":               "Annotate nose landmarks only",
		},
	})
}

func (h *LandmarkHandler) Health(ctx *fiber.Ctx) error {
	errHandler := handlerUtil.New(h.log)
	return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.landmarkService.Health())
}

func (h *LandmarkHandler) ListModels(ctx *fiber.Ctx) error {
	errHandler := handlerUtil.New(h.log)
	return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.landmarkService.Models())
}
