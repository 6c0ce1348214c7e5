package landmarkService

import (
	"context"
	"time"

	"LandmarkGolang/internal/api/landmark"
	"LandmarkGolang/pkg/catalog"
	"LandmarkGolang/pkg/metrics"
	"LandmarkGolang/pkg/overlay"
	"LandmarkGolang/pkg/replicate"

	"github.com/sirupsen/logrus"
)

const DefaultDetectorTimeout = 60 * time.Second

type ILandmarkService interface {
	Annotate(ctx context.Context, req landmark.AnnotateRequest) (*landmark.AnnotateResult, error)
	DefaultDetector() string
	Health() landmark.HealthResponse
	Models() landmark.ModelsResponse
}

type Config struct {
	DefaultDetector string
	DetectorTimeout time.Duration
	Colors          *overlay.ColorTable
}

type landmarkService struct {
	log             *logrus.Logger
	registry        *Registry
	replicate       *replicate.Client
	catalog         *catalog.Catalog
	metrics         *metrics.Metrics
	colors          *overlay.ColorTable
	defaultDetector string
	timeout         time.Duration
}

// NewLandmarkService wires the pipeline. replicateClient may be nil, in which
// case only registered detectors can be used.
func NewLandmarkService(
	log *logrus.Logger,
	registry *Registry,
	replicateClient *replicate.Client,
	modelCatalog *catalog.Catalog,
	m *metrics.Metrics,
	cfg Config,
) ILandmarkService {
	if cfg.DetectorTimeout <= 0 {
		cfg.DetectorTimeout = DefaultDetectorTimeout
	}
	if cfg.Colors == nil {
		cfg.Colors = overlay.DefaultColorTable()
	}
	if modelCatalog == nil {
		modelCatalog = &catalog.Catalog{}
	}
	if m == nil {
		m = metrics.New()
	}

	return &landmarkService{
		log:             log,
		registry:        registry,
		replicate:       replicateClient,
		catalog:         modelCatalog,
		metrics:         m,
		colors:          cfg.Colors,
		defaultDetector: cfg.DefaultDetector,
		timeout:         cfg.DetectorTimeout,
	}
}
