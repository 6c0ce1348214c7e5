package landmarkService

import (
	"LandmarkGolang/internal/api/landmark"
)

type connectivity interface {
	IsConnected() bool
}

func (s *landmarkService) DefaultDetector() string {
	return s.defaultDetector
}

// Health reports each registered detector. Detectors behind a persistent
// connection report whether it is currently up; the rest are assumed ready.
func (s *landmarkService) Health() landmark.HealthResponse {
	detectors := make(map[string]bool)
	for _, id := range s.registry.IDs() {
		d, _ := s.registry.Get(id)
		ready := true
		if c, ok := d.(connectivity); ok {
			ready = c.IsConnected()
		}
		detectors[id] = ready
	}

	return landmark.HealthResponse{
		Status:              "healthy",
		ReplicateConfigured: s.replicate != nil,
		DefaultDetector:     s.defaultDetector,
		Detectors:           detectors,
	}
}

func (s *landmarkService) Models() landmark.ModelsResponse {
	return landmark.ModelsResponse{
		Recommended:    s.catalog.Recommended,
		Models:         s.catalog.List(),
		LocalDetectors: s.registry.IDs(),
		Usage:          "POST /detect-landmarks-advanced with form fields file and model_name",
	}
}
