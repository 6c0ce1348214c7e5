package landmark

import (
	"fmt"
	"sort"

	"LandmarkGolang/internal/entity"

	jsoniter "github.com/json-iterator/go"
)

type regionsPayload struct {
	Faces []regionsFace `json:"faces"`
}

type regionsFace struct {
	BBox      []float64                      `json:"bbox"`
	Landmarks map[string]jsoniter.RawMessage `json:"landmarks"`
}

func parseRegions(body []byte, fr frame) ([]entity.Detection, error) {
	var payload regionsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, malformed("decode regions payload: %v", err)
	}

	detections := make([]entity.Detection, 0, len(payload.Faces))
	for i, face := range payload.Faces {
		det, err := face.detection(fr)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		detections = append(detections, det)
	}
	return detections, nil
}

func (f regionsFace) detection(fr frame) (entity.Detection, error) {
	if f.BBox != nil && len(f.BBox) != 4 {
		return entity.Detection{}, malformed("bounding box has %d numbers, want 4", len(f.BBox))
	}

	// Several aliases may fold into one region; walk names sorted so the
	// merged point order does not depend on map iteration.
	names := make([]string, 0, len(f.Landmarks))
	for name := range f.Landmarks {
		names = append(names, name)
	}
	sort.Strings(names)

	grouped := make(map[entity.RegionName][][]float64)
	var pointVals []float64
	for _, name := range names {
		region, ok := ResolveRegion(name)
		if !ok {
			continue
		}

		var points [][]float64
		if err := json.Unmarshal(f.Landmarks[name], &points); err != nil {
			return entity.Detection{}, malformed("region %q: %v", name, err)
		}
		for _, p := range points {
			if len(p) != 2 && len(p) != 3 {
				return entity.Detection{}, malformed("region %q point has %d numbers, want 2 or 3", name, len(p))
			}
			pointVals = append(pointVals, p[0], p[1])
		}
		grouped[region] = append(grouped[region], points...)
	}

	relative, err := fr.resolve(f.BBox, pointVals)
	if err != nil {
		return entity.Detection{}, err
	}

	det := entity.Detection{Regions: make(map[entity.RegionName]entity.Region, len(grouped))}
	if f.BBox != nil {
		if det.Box, err = fr.box(f.BBox[0], f.BBox[1], f.BBox[2], f.BBox[3], relative); err != nil {
			return entity.Detection{}, err
		}
	}
	for region, raw := range grouped {
		points := make([]entity.Point2D, 0, len(raw))
		for _, p := range raw {
			points = append(points, fr.point(p[0], p[1], relative))
		}
		det.Regions[region] = entity.Region{Name: region, Points: points}
	}
	return det, nil
}

type meshPayload struct {
	Faces []meshFace `json:"faces"`
}

type meshFace struct {
	Landmarks []meshPoint `json:"landmarks"`
}

type meshPoint struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z float64  `json:"z"`
}

func parseMesh(body []byte, fr frame) ([]entity.Detection, error) {
	var payload meshPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, malformed("decode mesh payload: %v", err)
	}

	detections := make([]entity.Detection, 0, len(payload.Faces))
	for i, face := range payload.Faces {
		if len(face.Landmarks) < MeshPointCount {
			return nil, malformed("face %d: mesh has %d points, want at least %d", i, len(face.Landmarks), MeshPointCount)
		}

		vals := make([]float64, 0, 2*len(face.Landmarks))
		for j, p := range face.Landmarks {
			if p.X == nil || p.Y == nil {
				return nil, malformed("face %d: mesh point %d is missing x or y", i, j)
			}
			vals = append(vals, *p.X, *p.Y)
		}

		relative, err := fr.resolve(nil, vals)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}

		mesh := make([]entity.Point2D, 0, len(face.Landmarks))
		for _, p := range face.Landmarks {
			mesh = append(mesh, fr.point(*p.X, *p.Y, relative))
		}
		detections = append(detections, entity.Detection{
			Regions: groupMesh(mesh),
			Mesh:    mesh,
		})
	}
	return detections, nil
}

type keypointsPayload struct {
	Faces []keypointsFace `json:"faces"`
}

type keypointsFace struct {
	Box       *keypointsBox `json:"box"`
	Keypoints []keypoint    `json:"keypoints"`
}

type keypointsBox struct {
	Left   *float64 `json:"left"`
	Top    *float64 `json:"top"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

type keypoint struct {
	Type string   `json:"type"`
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
}

func parseKeypoints(body []byte, fr frame) ([]entity.Detection, error) {
	var payload keypointsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, malformed("decode keypoints payload: %v", err)
	}

	detections := make([]entity.Detection, 0, len(payload.Faces))
	for i, face := range payload.Faces {
		det, err := face.detection(fr)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		detections = append(detections, det)
	}
	return detections, nil
}

func (f keypointsFace) detection(fr frame) (entity.Detection, error) {
	var boxVals []float64
	if f.Box != nil {
		b := f.Box
		if b.Left == nil || b.Top == nil || b.Width == nil || b.Height == nil {
			return entity.Detection{}, malformed("box needs left, top, width and height")
		}
		boxVals = []float64{*b.Left, *b.Top, *b.Left + *b.Width, *b.Top + *b.Height}
	}

	var pointVals []float64
	for _, kp := range f.Keypoints {
		if _, ok := ResolveRegion(kp.Type); !ok {
			continue
		}
		if kp.X == nil || kp.Y == nil {
			return entity.Detection{}, malformed("keypoint %q is missing x or y", kp.Type)
		}
		pointVals = append(pointVals, *kp.X, *kp.Y)
	}

	relative, err := fr.resolve(boxVals, pointVals)
	if err != nil {
		return entity.Detection{}, err
	}

	det := entity.Detection{Regions: make(map[entity.RegionName]entity.Region)}
	if boxVals != nil {
		if det.Box, err = fr.box(boxVals[0], boxVals[1], boxVals[2], boxVals[3], relative); err != nil {
			return entity.Detection{}, err
		}
	}
	for _, kp := range f.Keypoints {
		region, ok := ResolveRegion(kp.Type)
		if !ok {
			continue
		}
		r := det.Regions[region]
		r.Name = region
		r.Points = append(r.Points, fr.point(*kp.X, *kp.Y, relative))
		det.Regions[region] = r
	}
	return det, nil
}
