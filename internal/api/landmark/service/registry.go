package landmarkService

import (
	"fmt"

	landmarkPkg "LandmarkGolang/pkg/landmark"
)

// Registry holds the detectors known at startup, keyed by ID. It is built
// once and only read afterwards.
type Registry struct {
	detectors map[string]landmarkPkg.Detector
	order     []string
}

func NewRegistry(detectors ...landmarkPkg.Detector) (*Registry, error) {
	r := &Registry{
		detectors: make(map[string]landmarkPkg.Detector, len(detectors)),
	}
	for _, d := range detectors {
		if d == nil {
			continue
		}
		id := d.ID()
		if _, exists := r.detectors[id]; exists {
			return nil, fmt.Errorf("detector %q registered twice", id)
		}
		r.detectors[id] = d
		r.order = append(r.order, id)
	}
	return r, nil
}

func (r *Registry) Get(id string) (landmarkPkg.Detector, bool) {
	d, ok := r.detectors[id]
	return d, ok
}

// IDs returns detector IDs in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}
