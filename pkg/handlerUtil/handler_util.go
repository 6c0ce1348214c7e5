package handlerUtil

import (
	"errors"

	"LandmarkGolang/internal/api/landmark"
	"LandmarkGolang/pkg/log"
	"LandmarkGolang/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}

	if category, ok := landmark.Classify(err); ok {
		status := response.StatusCode(category.Err, fiber.StatusInternalServerError)
		fields["code"] = category.Code
		fields["status"] = status

		if status >= fiber.StatusInternalServerError {
			h.logger.WithFields(fields).Error(category.Message)
		} else {
			h.logger.WithFields(fields).Warn(category.Message)
		}

		return c.Status(status).JSON(ErrorResponse{
			Error:   category.Message,
			Code:    category.Code,
			Details: err.Error(),
		})
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		fields["code"] = respErr.Code
		h.logger.WithFields(fields).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(ErrorResponse{
			Error: err.Error(),
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		h.logger.WithFields(fields).Warn("Request rejected")
		return c.Status(fiberErr.Code).JSON(ErrorResponse{
			Error:   fiberErr.Message,
			Code:    landmark.CodeInvalidInput,
			Details: err.Error(),
		})
	}

	traceID := log.ErrorWithTraceID(fields, "Unhandled error")
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "Internal server error",
		Code:    "INTERNAL_SERVER_ERROR",
		Details: "trace id " + traceID,
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "Validation failed",
		Code:    landmark.CodeInvalidInput,
		Details: err.Error(),
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
