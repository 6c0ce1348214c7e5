package landmark

import (
	"errors"
	"net/http"

	"LandmarkGolang/pkg/metrics"
	"LandmarkGolang/pkg/response"
)

var (
	ErrInvalidInput           = response.NewError(http.StatusBadRequest, "invalid input")
	ErrNoFaceDetected         = response.NewError(http.StatusNotFound, "no face detected")
	ErrDetectorUnavailable    = response.NewError(http.StatusBadGateway, "detector unavailable")
	ErrMalformedDetectionData = response.NewError(http.StatusBadGateway, "malformed detection data")
	ErrRenderFailure          = response.NewError(http.StatusInternalServerError, "render failure")
)

const (
	CodeInvalidInput           = "INVALID_INPUT"
	CodeNoFaceDetected         = "NO_FACE_DETECTED"
	CodeDetectorUnavailable    = "DETECTOR_UNAVAILABLE"
	CodeMalformedDetectionData = "MALFORMED_DETECTION_DATA"
	CodeRenderFailure          = "RENDER_FAILURE"
)

// Category pairs an error sentinel with the code reported to callers.
type Category struct {
	Err     error
	Code    string
	Message string
}

// Categories is checked in order; the first match wins.
var Categories = []Category{
	{ErrInvalidInput, CodeInvalidInput, "Invalid input"},
	{ErrNoFaceDetected, CodeNoFaceDetected, "No face detected in the image"},
	{ErrDetectorUnavailable, CodeDetectorUnavailable, "Landmark detector is unavailable"},
	{ErrMalformedDetectionData, CodeMalformedDetectionData, "Detector returned data that could not be interpreted"},
	{ErrRenderFailure, CodeRenderFailure, "Failed to render the annotated image"},
}

// Classify returns the category err belongs to.
func Classify(err error) (Category, bool) {
	for _, c := range Categories {
		if errors.Is(err, c.Err) {
			return c, true
		}
	}
	return Category{}, false
}

// Outcome is the metrics label for a finished annotation.
func Outcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	if c, ok := Classify(err); ok {
		return c.Code
	}
	return "INTERNAL"
}
