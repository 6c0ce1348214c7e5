package landmarkHandler

import (
	"fmt"
	"strconv"
	"strings"

	"LandmarkGolang/internal/api/landmark"
	"LandmarkGolang/internal/entity"
	contextPkg "LandmarkGolang/pkg/context"
	"LandmarkGolang/pkg/facemesh"
	"LandmarkGolang/pkg/handlerUtil"
	landmarkPkg "LandmarkGolang/pkg/landmark"
	"LandmarkGolang/pkg/log"

	"github.com/gofiber/fiber/v2"
)

func (h *LandmarkHandler) DetectLandmarks(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req landmark.DetectLandmarksRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, fmt.Errorf("%w: %v", landmark.ErrInvalidInput, err), ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	regions, err := parseRegions(req.Regions)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_regions")
	}

	return h.annotate(ctx, "detect_landmarks", landmark.AnnotateRequest{
		DetectorID: h.landmarkService.DefaultDetector(),
		Preset:     presetOrDefault(req.Preset, landmarkPkg.PresetFullFace),
		Config: landmarkPkg.RenderConfig{
			Regions:      regions,
			MarkerRadius: req.Radius,
		},
		Purpose: landmark.PurposeLandmarks,
	})
}

func (h *LandmarkHandler) DetectLandmarksAdvanced(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req landmark.DetectAdvancedRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, fmt.Errorf("%w: %v", landmark.ErrInvalidInput, err), ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	modelName := strings.TrimSpace(req.ModelName)
	if modelName == "" {
		modelName = landmark.DefaultAdvancedModel
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"model_name": modelName,
	}).Debug("Processing advanced landmark request")

	return h.annotate(ctx, "detect_landmarks_advanced", landmark.AnnotateRequest{
		DetectorID: modelName,
		Preset:     presetOrDefault(req.Preset, landmarkPkg.PresetFullFace),
		Config: landmarkPkg.RenderConfig{
			MarkerRadius: req.Radius,
		},
		Purpose: landmark.PurposeLandmarks,
	})
}

func (h *LandmarkHandler) DetectNose(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req landmark.DetectNoseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, fmt.Errorf("%w: %v", landmark.ErrInvalidInput, err), ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	preset := landmarkPkg.PresetNoseOnly
	if req.Extended {
		preset = landmarkPkg.PresetNoseExtended
	}

	return h.annotate(ctx, "detect_nose", landmark.AnnotateRequest{
		DetectorID: facemesh.DetectorID,
		Preset:     preset,
		Config: landmarkPkg.RenderConfig{
			MarkerRadius: req.Radius,
		},
		Purpose: landmark.PurposeNose,
	})
}

// annotate reads the uploaded file, runs the pipeline and writes the JPEG.
func (h *LandmarkHandler) annotate(ctx *fiber.Ctx, operation string, req landmark.AnnotateRequest) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	file, err := ctx.FormFile("file")
	if err != nil {
		return errHandler.Handle(ctx, requestID, fmt.Errorf("%w: multipart field \"file\" is required", landmark.ErrInvalidInput), ctx.Path(), "read_form_file")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"file_name":  file.Filename,
		"file_size":  file.Size,
	}).Debug("Processing file upload")

	if err := h.utils.ValidateImageFile(file); err != nil {
		return errHandler.Handle(ctx, requestID, fmt.Errorf("%w: %v", landmark.ErrInvalidInput, err), ctx.Path(), "validate_image_file")
	}

	req.Image, err = h.utils.ReadFile(file)
	if err != nil {
		return errHandler.Handle(ctx, requestID, fmt.Errorf("%w: %v", landmark.ErrInvalidInput, err), ctx.Path(), "read_file")
	}

	result, err := h.landmarkService.Annotate(contextPkg.FromFiberCtx(ctx), req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), operation)
	}

	ctx.Set(fiber.HeaderContentType, "image/jpeg")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", result.Filename))
	ctx.Set("X-Detector", result.Detector)
	ctx.Set("X-Faces-Detected", strconv.Itoa(result.Faces))
	ctx.Set("X-Landmark-Points", strconv.Itoa(result.Points))

	return ctx.Status(fiber.StatusOK).Send(result.Image)
}

func presetOrDefault(name string, fallback landmarkPkg.Preset) landmarkPkg.Preset {
	if name == "" {
		return fallback
	}
	return landmarkPkg.Preset(name)
}

// parseRegions reads a comma separated region list. Aliases such as
// "left_eyebrow" are accepted.
func parseRegions(list string) ([]entity.RegionName, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}

	var regions []entity.RegionName
	seen := make(map[entity.RegionName]bool)
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		region, ok := landmarkPkg.ResolveRegion(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown region %q", landmark.ErrInvalidInput, name)
		}
		if !seen[region] {
			seen[region] = true
			regions = append(regions, region)
		}
	}
	return regions, nil
}
