package landmark

import (
	"errors"
	"fmt"

	"LandmarkGolang/internal/entity"
)

const (
	DefaultMarkerRadius = 3
	NoseMarkerRadius    = 4
	DefaultBoxWidth     = 2
)

var ErrUnknownPreset = errors.New("unknown preset")

type Preset string

const (
	PresetNoseOnly     Preset = "nose_only"
	PresetFullFace     Preset = "full_face"
	PresetNoseExtended Preset = "nose_extended"
)

func ParsePreset(s string) (Preset, error) {
	switch p := Preset(s); p {
	case PresetNoseOnly, PresetFullFace, PresetNoseExtended:
		return p, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownPreset, s)
}

// RenderConfig narrows and styles a preset per request. Zero values fall
// back to the preset defaults.
type RenderConfig struct {
	Regions      []entity.RegionName
	MarkerRadius int
	BoxWidth     int
}

func (c RenderConfig) LineWidth() int {
	if c.BoxWidth > 0 {
		return c.BoxWidth
	}
	return DefaultBoxWidth
}

// Selection is what the renderer draws for one detection.
type Selection struct {
	Box     *entity.BoundingBox
	Regions map[entity.RegionName]entity.Region
	Radius  int
}

// Select restricts every detection to the regions the preset asks for. The
// result has one Selection per detection, in detection order.
func Select(result entity.DetectionResult, preset Preset, cfg RenderConfig) []Selection {
	selections := make([]Selection, 0, len(result.Detections))
	for _, det := range result.Detections {
		sel := Selection{
			Regions: make(map[entity.RegionName]entity.Region),
			Radius:  DefaultMarkerRadius,
		}

		switch preset {
		case PresetFullFace:
			sel.Box = det.Box
			for name, region := range det.Regions {
				sel.Regions[name] = region
			}
		case PresetNoseOnly:
			if det.IsDenseMesh() {
				sel.Regions[entity.RegionNose] = entity.Region{
					Name:   entity.RegionNose,
					Points: pickMesh(det.Mesh, NoseMeshIndices),
				}
				sel.Radius = NoseMarkerRadius
			} else if nose, ok := det.Regions[entity.RegionNose]; ok {
				sel.Regions[entity.RegionNose] = nose
			}
		case PresetNoseExtended:
			if det.IsDenseMesh() {
				sel.Regions[entity.RegionNose] = entity.Region{
					Name:   entity.RegionNose,
					Points: pickMesh(det.Mesh, NoseExtendedMeshIndices),
				}
			} else if nose, ok := det.Regions[entity.RegionNose]; ok {
				sel.Regions[entity.RegionNose] = nose
			}
		}

		if len(cfg.Regions) > 0 {
			sel.Regions = restrict(sel.Regions, cfg.Regions)
		}
		if cfg.MarkerRadius > 0 {
			sel.Radius = cfg.MarkerRadius
		}
		selections = append(selections, sel)
	}
	return selections
}

func restrict(regions map[entity.RegionName]entity.Region, keep []entity.RegionName) map[entity.RegionName]entity.Region {
	out := make(map[entity.RegionName]entity.Region, len(keep))
	for _, name := range keep {
		if region, ok := regions[name]; ok {
			out[name] = region
		}
	}
	return out
}

// PointCount is the number of markers a selection set will draw.
func PointCount(selections []Selection) int {
	n := 0
	for _, sel := range selections {
		for _, region := range sel.Regions {
			n += len(region.Points)
		}
	}
	return n
}
