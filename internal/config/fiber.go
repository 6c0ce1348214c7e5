package config

import (
	"errors"

	"LandmarkGolang/internal/api/landmark"
	"LandmarkGolang/pkg/handlerUtil"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// multipartOverhead leaves room for boundaries and form fields around the
// uploaded file.
const multipartOverhead = 1024 * 1024

func NewFiber(logger *logrus.Logger, maxUploadBytes int64) *fiber.App {
	app := fiber.New(
		fiber.Config{
			AppName:           "Landmark Annotation Service",
			BodyLimit:         int(maxUploadBytes) + multipartOverhead,
			DisableKeepalive:  false,
			StrictRouting:     true,
			CaseSensitive:     true,
			EnablePrintRoutes: false,
			JSONEncoder:       jsoniter.Marshal,
			JSONDecoder:       jsoniter.Unmarshal,
			ErrorHandler:      errorHandler(logger),
		})

	return app
}

// errorHandler answers errors that escape the handlers, such as oversized
// bodies and unknown routes, in the same JSON shape the handlers use.
func errorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}

		logger.WithFields(logrus.Fields{
			"path":   ctx.Path(),
			"status": code,
			"error":  err.Error(),
		}).Warn("Request failed before reaching a handler")

		resp := handlerUtil.ErrorResponse{Error: err.Error()}
		if code == fiber.StatusRequestEntityTooLarge {
			resp.Code = landmark.CodeInvalidInput
		}
		return ctx.Status(code).JSON(resp)
	}
}
