package landmark

import (
	"LandmarkGolang/pkg/catalog"
	landmarkPkg "LandmarkGolang/pkg/landmark"
)

type State string

const (
	StateReceived    State = "received"
	StateDetecting   State = "detecting"
	StateNormalizing State = "normalizing"
	StateSelecting   State = "selecting"
	StateRendering   State = "rendering"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

type Purpose string

const (
	PurposeLandmarks Purpose = "landmarks"
	PurposeNose      Purpose = "nose"
)

const (
	DefaultAdvancedModel = "andreasjansson/face-detection"
	MaxRadius            = 50
)

// AnnotateRequest is one run of the pipeline. DetectorID must name a
// registered detector or a hosted model reference.
type AnnotateRequest struct {
	Image      []byte
	DetectorID string
	Preset     landmarkPkg.Preset
	Config     landmarkPkg.RenderConfig
	Purpose    Purpose
}

type AnnotateResult struct {
	Image    []byte
	Filename string
	Detector string
	Faces    int
	Points   int
}

type DetectLandmarksRequest struct {
	Preset  string `form:"preset" validate:"omitempty,oneof=nose_only full_face nose_extended"`
	Radius  int    `form:"radius" validate:"omitempty,min=1,max=50"`
	Regions string `form:"regions" validate:"omitempty,max=200"`
}

type DetectAdvancedRequest struct {
	ModelName string `form:"model_name" validate:"omitempty,max=200"`
	Preset    string `form:"preset" validate:"omitempty,oneof=nose_only full_face nose_extended"`
	Radius    int    `form:"radius" validate:"omitempty,min=1,max=50"`
}

type DetectNoseRequest struct {
	Extended bool `form:"extended"`
	Radius   int  `form:"radius" validate:"omitempty,min=1,max=50"`
}

type HealthResponse struct {
	Status              string          `json:"status"`
	ReplicateConfigured bool            `json:"replicate_configured"`
	DefaultDetector     string          `json:"default_detector"`
	Detectors           map[string]bool `json:"detectors"`
}

type ModelsResponse struct {
	Recommended    []catalog.Recommended `json:"recommended_models"`
	Models         []catalog.Model       `json:"models"`
	LocalDetectors []string              `json:"local_detectors"`
	Usage          string                `json:"usage"`
}

type RootResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}
